package ir

import (
	"encoding/binary"
	"fmt"
)

// MetaVariable is one entry of the shader interface.
type MetaVariable struct {
	Index uint32
	Name  string
	Type  VariableType
}

// MetaBufferVariable is a member of a constant buffer.
type MetaBufferVariable struct {
	BufferIndex  uint32
	BufferOffset uint32
	MetaVariable
}

// MetaData describes the interface of a compiled shader: what it reads,
// what it writes and which binding points it exposes.
type MetaData struct {
	Major uint32
	Minor uint32
	Kind  ShaderKind

	Inputs             []MetaVariable
	Outputs            []MetaVariable
	Textures2D         []MetaVariable
	ConstantBuffers    []MetaVariable
	ConstantBufferVars []MetaBufferVariable
}

// MetadataCategory names the five lists of a MetaData in binary order.
type MetadataCategory uint8

const (
	CategoryInput MetadataCategory = iota
	CategoryOutput
	CategoryTexture2D
	CategoryConstantBuffer
	CategoryConstantBufferVar
)

// String returns the metadata assembly block name of the category.
func (c MetadataCategory) String() string {
	switch c {
	case CategoryInput:
		return "INPUT"
	case CategoryOutput:
		return "OUTPUT"
	case CategoryTexture2D:
		return "TEXTURE_2D"
	case CategoryConstantBuffer:
		return "CONSTANT_BUFFER"
	case CategoryConstantBufferVar:
		return "CONSTANT_BUFFER_VAR"
	default:
		return "INVALID"
	}
}

// ParseMetadataCategory is the inverse of String.
func ParseMetadataCategory(s string) (MetadataCategory, bool) {
	for c := CategoryInput; c <= CategoryConstantBufferVar; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// FindInput returns the input with the given index.
func (m *MetaData) FindInput(index uint32) (MetaVariable, bool) {
	return findVariable(m.Inputs, index)
}

// FindOutput returns the output with the given index.
func (m *MetaData) FindOutput(index uint32) (MetaVariable, bool) {
	return findVariable(m.Outputs, index)
}

func findVariable(list []MetaVariable, index uint32) (MetaVariable, bool) {
	for _, v := range list {
		if v.Index == index {
			return v, true
		}
	}
	return MetaVariable{}, false
}

// BufferMembers returns the members of constant buffer bufferIndex ordered
// by their offset within the buffer.
func (m *MetaData) BufferMembers(bufferIndex uint32) []MetaBufferVariable {
	var members []MetaBufferVariable
	for _, v := range m.ConstantBufferVars {
		if v.BufferIndex == bufferIndex {
			members = append(members, v)
		}
	}
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && members[j].BufferOffset < members[j-1].BufferOffset; j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
	return members
}

// AppendMetadata appends the binary encoding of m to b.
func AppendMetadata(b []byte, m *MetaData) []byte {
	b = append(b, MetadataMagic[:]...)
	b = binary.BigEndian.AppendUint32(b, m.Major)
	b = binary.BigEndian.AppendUint32(b, m.Minor)
	b = binary.BigEndian.AppendUint32(b, uint32(m.Kind))

	for _, list := range [][]MetaVariable{m.Inputs, m.Outputs, m.Textures2D, m.ConstantBuffers} {
		b = binary.BigEndian.AppendUint32(b, uint32(len(list)))
		for _, v := range list {
			b = appendMetaVariable(b, v)
		}
	}

	b = binary.BigEndian.AppendUint32(b, uint32(len(m.ConstantBufferVars)))
	for _, v := range m.ConstantBufferVars {
		b = binary.BigEndian.AppendUint32(b, v.BufferIndex)
		b = binary.BigEndian.AppendUint32(b, v.BufferOffset)
		b = appendMetaVariable(b, v.MetaVariable)
	}
	return b
}

func appendMetaVariable(b []byte, v MetaVariable) []byte {
	b = binary.BigEndian.AppendUint32(b, v.Index)
	b = binary.BigEndian.AppendUint32(b, uint32(len(v.Name)))
	b = append(b, v.Name...)
	return binary.BigEndian.AppendUint32(b, uint32(v.Type))
}

// metaDecoder reads big-endian fields from a metadata blob.
type metaDecoder struct {
	b   []byte
	pos int
}

func (d *metaDecoder) u32(what string) (uint32, error) {
	if d.pos+4 > len(d.b) {
		return 0, NewError(ErrInvalidBinary, "metadata truncated reading %s at offset %d", what, d.pos)
	}
	v := binary.BigEndian.Uint32(d.b[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *metaDecoder) variable() (MetaVariable, error) {
	var v MetaVariable
	var err error
	if v.Index, err = d.u32("index"); err != nil {
		return v, err
	}
	n, err := d.u32("name length")
	if err != nil {
		return v, err
	}
	if uint64(d.pos)+uint64(n) > uint64(len(d.b)) {
		return v, NewError(ErrInvalidBinary, "metadata name of %d bytes at offset %d overruns the blob", n, d.pos)
	}
	v.Name = string(d.b[d.pos : d.pos+int(n)])
	d.pos += int(n)
	t, err := d.u32("type")
	if err != nil {
		return v, err
	}
	if t > uint32(TypeTexture2D) {
		return v, NewError(ErrInvalidBinary, "metadata variable %q has unknown type %d", v.Name, t)
	}
	v.Type = VariableType(t)
	return v, nil
}

func (d *metaDecoder) list(c MetadataCategory) ([]MetaVariable, error) {
	n, err := d.u32(c.String() + " count")
	if err != nil {
		return nil, err
	}
	var list []MetaVariable
	for i := uint32(0); i < n; i++ {
		v, err := d.variable()
		if err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", c, i, err)
		}
		list = append(list, v)
	}
	return list, nil
}

// DecodeMetadata parses a metadata blob produced by AppendMetadata.
func DecodeMetadata(b []byte) (*MetaData, error) {
	if len(b) < 4 || [4]byte(b[:4]) != MetadataMagic {
		return nil, NewError(ErrUnsupportedVersion, "metadata blob does not start with marker %q", MetadataMagic[:])
	}
	d := &metaDecoder{b: b, pos: 4}
	m := &MetaData{}
	var err error
	if m.Major, err = d.u32("major version"); err != nil {
		return nil, err
	}
	if m.Minor, err = d.u32("minor version"); err != nil {
		return nil, err
	}
	if m.Major != CurrentMajor {
		return nil, NewError(ErrUnsupportedVersion, "metadata version %d.%d is not supported (want %d.x)", m.Major, m.Minor, CurrentMajor)
	}
	kind, err := d.u32("shader kind")
	if err != nil {
		return nil, err
	}
	if kind > uint32(ShaderPixel) {
		return nil, NewError(ErrInvalidBinary, "unknown shader kind %d", kind)
	}
	m.Kind = ShaderKind(kind)

	if m.Inputs, err = d.list(CategoryInput); err != nil {
		return nil, err
	}
	if m.Outputs, err = d.list(CategoryOutput); err != nil {
		return nil, err
	}
	if m.Textures2D, err = d.list(CategoryTexture2D); err != nil {
		return nil, err
	}
	if m.ConstantBuffers, err = d.list(CategoryConstantBuffer); err != nil {
		return nil, err
	}

	n, err := d.u32("CONSTANT_BUFFER_VAR count")
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		var v MetaBufferVariable
		if v.BufferIndex, err = d.u32("buffer index"); err != nil {
			return nil, err
		}
		if v.BufferOffset, err = d.u32("buffer offset"); err != nil {
			return nil, err
		}
		if v.MetaVariable, err = d.variable(); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", CategoryConstantBufferVar, i, err)
		}
		m.ConstantBufferVars = append(m.ConstantBufferVars, v)
	}

	if d.pos != len(b) {
		return nil, NewError(ErrInvalidBinary, "%d trailing bytes after metadata", len(b)-d.pos)
	}
	return m, nil
}
