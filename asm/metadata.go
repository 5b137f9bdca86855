package asm

import (
	"strings"

	"github.com/gogpu/magma/ir"
)

// Metadata assembles metadata text into a binary blob of at most max bytes.
func Metadata(text string, max int) ([]byte, error) {
	out, err := assembleMetadata(text)
	if err != nil {
		return nil, err
	}
	return finish(out, max, "metadata")
}

// MetadataInto assembles metadata text into dst and returns the number of
// bytes written.
func MetadataInto(dst []byte, text string) (int, error) {
	out, err := assembleMetadata(text)
	if err != nil {
		return 0, err
	}
	return copyInto(dst, out, "metadata")
}

func assembleMetadata(text string) ([]byte, error) {
	m, err := ParseMetadata(text)
	if err != nil {
		return nil, err
	}
	return ir.AppendMetadata(make([]byte, 0, 256), m), nil
}

// metaBlock collects the fields of one BEGIN ... END block.
type metaBlock struct {
	begin    parsedLine
	category ir.MetadataCategory
	v        ir.MetaBufferVariable
	seen     map[string]bool
}

// ParseMetadata reads metadata text into a MetaData value.
func ParseMetadata(text string) (*ir.MetaData, error) {
	m := &ir.MetaData{Major: ir.CurrentMajor, Minor: ir.CurrentMinor}
	var (
		block    *metaBlock
		seenKind bool
	)

	for _, p := range parseLines(text) {
		if block != nil {
			done, err := block.field(p)
			if err != nil {
				return nil, err
			}
			if done {
				if err := block.store(m); err != nil {
					return nil, err
				}
				block = nil
			}
			continue
		}

		var err error
		switch p.mnemonic {
		case "MAJOR":
			m.Major, err = p.version()
		case "MINOR":
			m.Minor, err = p.version()
		case "SHADER":
			if err := p.expectOperands(1); err != nil {
				return nil, err
			}
			kind, ok := ir.ParseShaderKind(p.operands[0])
			if !ok {
				return nil, p.errorf("unknown shader kind %q", p.operands[0])
			}
			m.Kind = kind
			seenKind = true
		case "BEGIN":
			if err := p.expectOperands(1); err != nil {
				return nil, err
			}
			c, ok := ir.ParseMetadataCategory(strings.ToUpper(p.operands[0]))
			if !ok {
				return nil, p.errorf("unknown metadata block %q", p.operands[0])
			}
			block = &metaBlock{begin: p, category: c, seen: map[string]bool{}}
		default:
			return nil, p.errorf("unexpected %s outside a BEGIN/END block", p.mnemonic)
		}
		if err != nil {
			return nil, err
		}
	}

	if block != nil {
		return nil, ir.NewErrorAt(ir.ErrUnexpectedEOF, block.begin.lineNo, 0,
			"BEGIN %s is never closed by END", block.category)
	}
	if !seenKind {
		return nil, ir.NewError(ir.ErrMissingShaderType, "metadata has no SHADER line")
	}
	if m.Major != ir.CurrentMajor {
		return nil, ir.NewError(ir.ErrUnsupportedVersion,
			"metadata version %d.%d is not supported (want %d.x)", m.Major, m.Minor, ir.CurrentMajor)
	}
	return m, nil
}

// field consumes one line inside a block and reports whether it was END.
func (b *metaBlock) field(p parsedLine) (bool, error) {
	key := p.mnemonic
	operands := p.operands
	if key == "BUFFER" && len(operands) > 0 {
		key = "BUFFER " + strings.ToUpper(operands[0])
		operands = operands[1:]
		p.mnemonic, p.operands = key, operands
	}
	if key == "END" {
		return true, p.expectOperands(0)
	}
	if b.seen[key] {
		return false, p.errorf("%s given twice in %s block", key, b.category)
	}
	b.seen[key] = true

	var err error
	switch key {
	case "INDEX":
		if err = p.expectOperands(1); err == nil {
			b.v.Index, err = p.uint32At(0)
		}
	case "NAME":
		if err = p.expectOperands(1); err == nil {
			b.v.Name = operands[0]
		}
	case "TYPE":
		if err = p.expectOperands(1); err == nil {
			t, ok := ir.ParseVariableType(operands[0])
			if !ok || !t.Valid() {
				return false, p.errorf("unknown type %q", operands[0])
			}
			b.v.Type = t
		}
	case "BUFFER INDEX", "BUFFER OFFSET":
		if b.category != ir.CategoryConstantBufferVar {
			return false, p.errorf("%s is only valid in CONSTANT_BUFFER_VAR blocks", key)
		}
		if err = p.expectOperands(1); err == nil {
			if key == "BUFFER INDEX" {
				b.v.BufferIndex, err = p.uint32At(0)
			} else {
				b.v.BufferOffset, err = p.uint32At(0)
			}
		}
	default:
		return false, p.errorf("unknown field %s in %s block", key, b.category)
	}
	return false, err
}

// store appends the finished block to its category list.
func (b *metaBlock) store(m *ir.MetaData) error {
	required := []string{"INDEX", "NAME", "TYPE"}
	if b.category == ir.CategoryConstantBufferVar {
		required = append(required, "BUFFER INDEX", "BUFFER OFFSET")
	}
	for _, f := range required {
		if !b.seen[f] {
			return b.begin.errorf("%s block is missing %s", b.category, f)
		}
	}

	switch b.category {
	case ir.CategoryInput:
		m.Inputs = append(m.Inputs, b.v.MetaVariable)
	case ir.CategoryOutput:
		m.Outputs = append(m.Outputs, b.v.MetaVariable)
	case ir.CategoryTexture2D:
		m.Textures2D = append(m.Textures2D, b.v.MetaVariable)
	case ir.CategoryConstantBuffer:
		m.ConstantBuffers = append(m.ConstantBuffers, b.v.MetaVariable)
	case ir.CategoryConstantBufferVar:
		m.ConstantBufferVars = append(m.ConstantBufferVars, b.v)
	}
	return nil
}
