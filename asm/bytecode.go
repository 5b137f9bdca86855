package asm

import (
	"strconv"

	"github.com/gogpu/magma/ir"
)

// Bytecode assembles bytecode text into a binary blob of at most max bytes.
func Bytecode(text string, max int) ([]byte, error) {
	out, err := assembleBytecode(text)
	if err != nil {
		return nil, err
	}
	return finish(out, max, "bytecode")
}

// BytecodeInto assembles bytecode text into dst and returns the number of
// bytes written.
func BytecodeInto(dst []byte, text string) (int, error) {
	out, err := assembleBytecode(text)
	if err != nil {
		return 0, err
	}
	return copyInto(dst, out, "bytecode")
}

func assembleBytecode(text string) ([]byte, error) {
	major, minor := uint32(ir.CurrentMajor), uint32(ir.CurrentMinor)
	lines := parseLines(text)

	// Header lines come first, in either order.
	body := 0
header:
	for ; body < len(lines); body++ {
		p := lines[body]
		var err error
		switch p.mnemonic {
		case "MAJOR":
			major, err = p.version()
		case "MINOR":
			minor, err = p.version()
		default:
			break header
		}
		if err != nil {
			return nil, err
		}
	}
	if major != ir.CurrentMajor || minor > 0xFF {
		return nil, ir.NewError(ir.ErrUnsupportedVersion,
			"bytecode version %d.%d is not supported (want %d.x)", major, minor, ir.CurrentMajor)
	}

	out := make([]byte, 0, ir.BytecodeHeaderSize+4*len(lines))
	out = ir.AppendBytecodeHeader(out, uint8(major), uint8(minor))
	for _, p := range lines[body:] {
		var err error
		out, err = appendInstruction(out, p)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendInstruction(out []byte, p parsedLine) ([]byte, error) {
	op, ok := ir.LookupOpcode(p.mnemonic)
	if !ok {
		return nil, p.errorf("unknown instruction %s", p.mnemonic)
	}

	switch {
	case op == ir.OpSetB:
		if err := p.expectOperands(1); err != nil {
			return nil, err
		}
		switch p.operands[0] {
		case "1", "true", "TRUE":
			return ir.AppendBool(out, true), nil
		case "0", "false", "FALSE":
			return ir.AppendBool(out, false), nil
		}
		return nil, p.errorf("invalid SETB operand %q: want 0 or 1", p.operands[0])

	case op.IsSet() && op.SetsFloat():
		if err := p.expectOperands(op.SetLanes()); err != nil {
			return nil, err
		}
		lanes := make([]float32, len(p.operands))
		for i, s := range p.operands {
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return nil, p.errorf("invalid %s operand %q: want a float", p.mnemonic, s)
			}
			lanes[i] = float32(v)
		}
		return ir.AppendFloats(out, op, lanes), nil

	case op.IsSet():
		if err := p.expectOperands(op.SetLanes()); err != nil {
			return nil, err
		}
		lanes := make([]int32, len(p.operands))
		for i, s := range p.operands {
			v, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil, p.errorf("invalid %s operand %q: want a 32-bit integer", p.mnemonic, s)
			}
			lanes[i] = int32(v)
		}
		return ir.AppendInts(out, op, lanes), nil

	case op.Width() == 4:
		if err := p.expectOperands(1); err != nil {
			return nil, err
		}
		idx, err := p.uint32At(0)
		if err != nil {
			return nil, err
		}
		return ir.AppendIndex(out, op, idx), nil
	}

	if err := p.expectOperands(0); err != nil {
		return nil, err
	}
	return ir.AppendOp(out, op), nil
}
