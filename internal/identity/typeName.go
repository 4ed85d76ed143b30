// Package identity computes the interface ids of parameterized WinRT types.
package identity

import (
	"strconv"
	"strings"

	"gowinrt/internal/errors"
)

// ParseTypeName splits a generic type name into its parts in prefix order:
// "IMap`2<String, IVector`1<Int32>>" gives [IMap`2 String IVector`1 Int32].
// The arity of every generic part must match its argument count.
func ParseTypeName(name string) ([]string, error) {
	parser := typeNameParser{input: name}
	if err := parser.parseType(); err != nil {
		return nil, err
	}
	if parser.offset != len(parser.input) {
		return nil, parser.fail("trailing characters")
	}
	return parser.parts, nil
}

type typeNameParser struct {
	input  string
	offset int
	parts  []string
}

func (p *typeNameParser) fail(msg string) error {
	return errors.New(errors.PhaseBind, errors.KindInvariantViolation).
		Name(p.input).
		Detail("malformed type name: %s", msg).
		Context("offset", p.offset).
		Build()
}

func (p *typeNameParser) skipSpaces() {
	for p.offset < len(p.input) && p.input[p.offset] == ' ' {
		p.offset++
	}
}

func (p *typeNameParser) parseType() error {
	p.skipSpaces()
	start := p.offset
	for p.offset < len(p.input) && !strings.ContainsRune("<>, ", rune(p.input[p.offset])) {
		p.offset++
	}
	name := p.input[start:p.offset]
	if name == "" {
		return p.fail("empty name")
	}
	p.parts = append(p.parts, name)

	arity := 0
	if tick := strings.LastIndexByte(name, '`'); tick >= 0 {
		n, err := strconv.Atoi(name[tick+1:])
		if err != nil || n <= 0 {
			return p.fail("bad generic arity")
		}
		arity = n
	}

	p.skipSpaces()
	if p.offset == len(p.input) || p.input[p.offset] != '<' {
		if arity != 0 {
			return p.fail("missing type arguments")
		}
		return nil
	}
	if arity == 0 {
		return p.fail("type arguments on a non-generic name")
	}
	p.offset++

	for i := 0; i < arity; i++ {
		if i > 0 {
			p.skipSpaces()
			if p.offset == len(p.input) || p.input[p.offset] != ',' {
				return p.fail("expected ','")
			}
			p.offset++
		}
		if err := p.parseType(); err != nil {
			return err
		}
	}

	p.skipSpaces()
	if p.offset == len(p.input) || p.input[p.offset] != '>' {
		return p.fail("expected '>'")
	}
	p.offset++
	return nil
}
