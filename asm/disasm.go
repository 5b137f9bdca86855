package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/magma/ir"
)

// DisassembleBytecode renders a bytecode blob as assembly text that
// Bytecode accepts again.
func DisassembleBytecode(blob []byte) (string, error) {
	bc, err := ir.DecodeBytecode(blob)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "MAJOR %d\nMINOR %d\n", bc.Major, bc.Minor)
	r := ir.NewReader(bc.Code)
	for r.Next() {
		sb.WriteString(FormatInstruction(r.Instruction()))
		sb.WriteByte('\n')
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatInstruction renders one instruction in assembly syntax.
func FormatInstruction(in ir.Instruction) string {
	op := in.Op
	switch {
	case op == ir.OpSetB:
		if in.Bool() {
			return op.String() + " 1"
		}
		return op.String() + " 0"

	case op.IsSet() && op.SetsFloat():
		parts := []string{op.String()}
		for _, f := range in.Floats() {
			parts = append(parts, strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
		return strings.Join(parts, " ")

	case op.IsSet():
		parts := []string{op.String()}
		for _, v := range in.Ints() {
			parts = append(parts, strconv.FormatInt(int64(v), 10))
		}
		return strings.Join(parts, " ")

	case op.Width() == 4:
		return fmt.Sprintf("%s %d", op, in.Index())
	}
	return op.String()
}

// DisassembleMetadata renders a metadata blob as assembly text that
// Metadata accepts again.
func DisassembleMetadata(blob []byte) (string, error) {
	m, err := ir.DecodeMetadata(blob)
	if err != nil {
		return "", err
	}
	return FormatMetadata(m), nil
}

// FormatMetadata renders m as metadata assembly text.
func FormatMetadata(m *ir.MetaData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "MAJOR %d\nMINOR %d\nSHADER %s\n", m.Major, m.Minor, m.Kind)

	lists := []struct {
		c    ir.MetadataCategory
		vars []ir.MetaVariable
	}{
		{ir.CategoryInput, m.Inputs},
		{ir.CategoryOutput, m.Outputs},
		{ir.CategoryTexture2D, m.Textures2D},
		{ir.CategoryConstantBuffer, m.ConstantBuffers},
	}
	for _, l := range lists {
		for _, v := range l.vars {
			fmt.Fprintf(&sb, "BEGIN %s\nINDEX %d\nNAME %s\nTYPE %s\nEND\n", l.c, v.Index, v.Name, v.Type)
		}
	}
	for _, v := range m.ConstantBufferVars {
		fmt.Fprintf(&sb, "BEGIN %s\nINDEX %d\nNAME %s\nTYPE %s\nBUFFER INDEX %d\nBUFFER OFFSET %d\nEND\n",
			ir.CategoryConstantBufferVar, v.Index, v.Name, v.Type, v.BufferIndex, v.BufferOffset)
	}
	return sb.String()
}
