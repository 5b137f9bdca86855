// Package asm assembles the textual bytecode and metadata produced by the
// MSL generator into their big-endian binary forms, and disassembles the
// binary forms back into text.
//
// Each assembler grows its output internally and only checks the caller's
// size limit once the blob is complete, so the NotEnoughSpace contract is
// enforced in one place.
package asm

import (
	"strconv"
	"strings"

	"github.com/gogpu/magma/ir"
)

// DefaultMaxSize is the output limit used when callers do not choose one.
const DefaultMaxSize = 4096

type parsedLine struct {
	lineNo   int
	mnemonic string
	operands []string
}

// parseLines splits assembly text into non-empty lines. Everything after
// ';' on a line is a comment.
func parseLines(text string) []parsedLine {
	var out []parsedLine
	for i, raw := range strings.Split(text, "\n") {
		if c := strings.IndexByte(raw, ';'); c >= 0 {
			raw = raw[:c]
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		out = append(out, parsedLine{
			lineNo:   i + 1,
			mnemonic: strings.ToUpper(fields[0]),
			operands: fields[1:],
		})
	}
	return out
}

func (p parsedLine) errorf(format string, args ...any) error {
	return ir.NewErrorAt(ir.ErrUnexpectedToken, p.lineNo, 0, format, args...)
}

func (p parsedLine) expectOperands(n int) error {
	if len(p.operands) != n {
		return p.errorf("%s expects %d operands, got %d", p.mnemonic, n, len(p.operands))
	}
	return nil
}

func (p parsedLine) uint32At(i int) (uint32, error) {
	v, err := strconv.ParseUint(p.operands[i], 10, 32)
	if err != nil {
		return 0, p.errorf("invalid %s operand %q: want an unsigned 32-bit integer", p.mnemonic, p.operands[i])
	}
	return uint32(v), nil
}

// version parses a MAJOR or MINOR header line.
func (p parsedLine) version() (uint32, error) {
	if err := p.expectOperands(1); err != nil {
		return 0, err
	}
	return p.uint32At(0)
}

// finish bounds an assembled blob by max.
func finish(out []byte, max int, what string) ([]byte, error) {
	if len(out) > max {
		return nil, ir.NewError(ir.ErrNotEnoughSpace,
			"%s needs %d bytes, only %d available", what, len(out), max)
	}
	return out, nil
}

// copyInto copies an assembled blob into dst and returns its length.
func copyInto(dst, out []byte, what string) (int, error) {
	if len(out) > len(dst) {
		return 0, ir.NewError(ir.ErrNotEnoughSpace,
			"%s needs %d bytes, only %d available", what, len(out), len(dst))
	}
	return copy(dst, out), nil
}
