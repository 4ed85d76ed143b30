package invocation

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// StructValue is a value type image passed to or returned from a native call. The
// backing store is word aligned and heap allocated.
type StructValue struct {
	words []uint64
	size  int
}

func NewStructValue(size int) *StructValue {
	return &StructValue{words: make([]uint64, max((size+7)/8, 1)), size: size}
}

// StructFromBytes copies a struct image
func StructFromBytes(image []byte) *StructValue {
	value := NewStructValue(len(image))
	copy(value.Bytes(), image)
	return value
}

// Bytes is a view over the struct image
func (s *StructValue) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&s.words[0])), s.size)
}

func (s *StructValue) Size() int {
	return s.size
}

// Address is valid until the StructValue is collected
func (s *StructValue) Address() uintptr {
	return uintptr(unsafe.Pointer(&s.words[0]))
}

// word packs the image into one register for by-value passing
func (s *StructValue) word() (uintptr, bool) {
	switch s.size {
	case 1, 2, 4, 8:
		return uintptr(s.words[0]), true
	}
	return 0, false
}

func (s *StructValue) Float32(offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(s.Bytes()[offset:]))
}

func (s *StructValue) SetFloat32(offset int, value float32) {
	binary.LittleEndian.PutUint32(s.Bytes()[offset:], math.Float32bits(value))
}

func (s *StructValue) Float64(offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(s.Bytes()[offset:]))
}

func (s *StructValue) SetFloat64(offset int, value float64) {
	binary.LittleEndian.PutUint64(s.Bytes()[offset:], math.Float64bits(value))
}

func (s *StructValue) Int32(offset int) int32 {
	return int32(binary.LittleEndian.Uint32(s.Bytes()[offset:]))
}

func (s *StructValue) SetInt32(offset int, value int32) {
	binary.LittleEndian.PutUint32(s.Bytes()[offset:], uint32(value))
}
