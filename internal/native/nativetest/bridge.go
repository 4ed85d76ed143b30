// Package nativetest provides an in-memory native.Bridge with programmable vtables
package nativetest

import (
	"sync"
	"unsafe"

	"github.com/google/uuid"

	"gowinrt/internal/errors"
	"gowinrt/internal/native"
)

// Function is one fake vtable entry. args[0] is the interface pointer.
type Function func(args []uintptr) native.HRESULT

// Call records one Bridge.Call
type Call struct {
	Interface uuid.UUID
	Slot      int
	Args      []uintptr
}

type function struct {
	iid  uuid.UUID
	slot int
	fn   Function
}

// Object is a fake runtime object. Every interface it implements has its own pointer.
type Object struct {
	Name string

	bridge     *Bridge
	refs       int
	interfaces map[uuid.UUID]native.Pointer
}

// Bridge is a fake native.Bridge. Pointers are opaque counters, never dereferenced.
type Bridge struct {
	mu        sync.Mutex
	next      native.Pointer
	objects   map[native.Pointer]*Object
	vtables   map[native.Pointer][]native.Pointer
	functions map[native.Pointer]function
	strings   map[native.Pointer]string
	factories map[string]*Object
	calls     []Call
}

func New() *Bridge {
	return &Bridge{
		next:      0x1000,
		objects:   make(map[native.Pointer]*Object),
		vtables:   make(map[native.Pointer][]native.Pointer),
		functions: make(map[native.Pointer]function),
		strings:   make(map[native.Pointer]string),
		factories: make(map[string]*Object),
	}
}

func (b *Bridge) allocate() native.Pointer {
	b.next += 0x10
	return b.next
}

// NewObject creates an object holding one reference
func (b *Bridge) NewObject(name string) *Object {
	return &Object{Name: name, bridge: b, refs: 1, interfaces: make(map[uuid.UUID]native.Pointer)}
}

// Implement adds an interface whose own methods start at slot native.InspectableVtableSize
func (o *Object) Implement(iid uuid.UUID, methods ...Function) native.Pointer {
	b := o.bridge
	b.mu.Lock()
	defer b.mu.Unlock()

	ptr := b.allocate()
	vtable := make([]native.Pointer, native.InspectableVtableSize+len(methods))
	for i, method := range methods {
		slot := native.InspectableVtableSize + i
		fn := b.allocate()
		b.functions[fn] = function{iid: iid, slot: slot, fn: method}
		vtable[slot] = fn
	}
	o.interfaces[iid] = ptr
	b.objects[ptr] = o
	b.vtables[ptr] = vtable
	return ptr
}

// Pointer returns the object's pointer for an interface, or zero
func (o *Object) Pointer(iid uuid.UUID) native.Pointer {
	o.bridge.mu.Lock()
	defer o.bridge.mu.Unlock()
	return o.interfaces[iid]
}

func (o *Object) Refs() int {
	o.bridge.mu.Lock()
	defer o.bridge.mu.Unlock()
	return o.refs
}

// RegisterFactory makes ActivationFactory answer the object for the class name
func (b *Bridge) RegisterFactory(className string, factory *Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.factories[className] = factory
}

// Calls returns the recorded calls in order
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// LiveStrings counts HSTRINGs created and not yet deleted
func (b *Bridge) LiveStrings() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.strings)
}

func (b *Bridge) ActivationFactory(className string) (native.Pointer, error) {
	b.mu.Lock()
	factory, found := b.factories[className]
	b.mu.Unlock()
	if !found {
		return 0, errors.NativeCall(className, int32(native.E_NOINTERFACE))
	}
	return b.QueryInterface(factory.Pointer(native.IActivationFactoryID), native.IActivationFactoryID)
}

func (b *Bridge) QueryInterface(object native.Pointer, iid uuid.UUID) (native.Pointer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, found := b.objects[object]
	if !found {
		return 0, errors.NativeCall(iid.String(), int32(native.E_POINTER))
	}
	ptr, found := o.interfaces[iid]
	if !found {
		return 0, errors.NativeCall(iid.String(), int32(native.E_NOINTERFACE))
	}
	o.refs++
	return ptr, nil
}

func (b *Bridge) AddRef(object native.Pointer) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, found := b.objects[object]
	if !found {
		return 0
	}
	o.refs++
	return uint32(o.refs)
}

func (b *Bridge) Release(object native.Pointer) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, found := b.objects[object]
	if !found || o.refs == 0 {
		return 0
	}
	o.refs--
	return uint32(o.refs)
}

func (b *Bridge) Method(object native.Pointer, slot int) (native.Pointer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	vtable, found := b.vtables[object]
	if !found {
		return 0, errors.NativeCall("vtable", int32(native.E_POINTER))
	}
	if slot < 0 || slot >= len(vtable) || vtable[slot] == 0 {
		return 0, errors.NativeCall("vtable", int32(native.E_NOTIMPL))
	}
	return vtable[slot], nil
}

func (b *Bridge) Call(fn native.Pointer, args ...uintptr) native.HRESULT {
	b.mu.Lock()
	target, found := b.functions[fn]
	if found {
		b.calls = append(b.calls, Call{Interface: target.iid, Slot: target.slot, Args: append([]uintptr(nil), args...)})
	}
	b.mu.Unlock()

	if !found {
		return native.E_POINTER
	}
	return target.fn(args)
}

func (b *Bridge) CreateString(value string) (native.Pointer, error) {
	if value == "" {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ptr := b.allocate()
	b.strings[ptr] = value
	return ptr, nil
}

func (b *Bridge) DeleteString(hstring native.Pointer) error {
	if hstring == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.strings[hstring]; !found {
		return errors.NativeCall("WindowsDeleteString", int32(native.E_INVALIDARG))
	}
	delete(b.strings, hstring)
	return nil
}

func (b *Bridge) StringValue(hstring native.Pointer) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.strings[hstring]
}

// Out-pointer helpers for fake functions. The address must come from the caller's
// argument list.

func WriteUint64(address uintptr, value uint64) {
	*(*uint64)(unsafe.Pointer(address)) = value
}

func WriteUint32(address uintptr, value uint32) {
	*(*uint32)(unsafe.Pointer(address)) = value
}

func WritePointer(address uintptr, value native.Pointer) {
	WriteUint64(address, uint64(value))
}

// WriteBytes copies a struct image to an out buffer
func WriteBytes(address uintptr, value []byte) {
	copy(unsafe.Slice((*byte)(unsafe.Pointer(address)), len(value)), value)
}

// Address returns the address of the first word of a heap buffer
func Address(words []uint64) uintptr {
	return uintptr(unsafe.Pointer(&words[0]))
}
