package ir

import (
	"encoding/binary"
	"math"
)

// Version of the bytecode and metadata formats produced by this module.
const (
	CurrentMajor = 2
	CurrentMinor = 0
)

// BytecodeMagic and MetadataMagic tag the two binary formats. A blob that
// starts with any other marker is a different (or older) layout.
var (
	BytecodeMagic = [4]byte{'M', 'S', 'L', 'B'}
	MetadataMagic = [4]byte{'M', 'S', 'L', 'M'}
)

// BytecodeHeaderSize is the marker plus the major and minor version bytes.
const BytecodeHeaderSize = 6

// Bytecode is a decoded bytecode blob.
type Bytecode struct {
	Major uint8
	Minor uint8

	// Code holds the instruction records following the header.
	Code []byte
}

// DecodeBytecode validates the header of a bytecode blob. The instruction
// stream is not copied; use NewReader to walk it.
func DecodeBytecode(b []byte) (*Bytecode, error) {
	if len(b) < BytecodeHeaderSize {
		return nil, NewError(ErrInvalidBinary, "bytecode blob is %d bytes, shorter than its %d byte header", len(b), BytecodeHeaderSize)
	}
	if [4]byte(b[:4]) != BytecodeMagic {
		return nil, NewError(ErrUnsupportedVersion, "bytecode marker %q is not %q", b[:4], BytecodeMagic[:])
	}
	bc := &Bytecode{Major: b[4], Minor: b[5], Code: b[BytecodeHeaderSize:]}
	if bc.Major != CurrentMajor {
		return nil, NewError(ErrUnsupportedVersion, "bytecode version %d.%d is not supported (want %d.x)", bc.Major, bc.Minor, CurrentMajor)
	}
	return bc, nil
}

// Instruction is one decoded bytecode record.
type Instruction struct {
	Op      Opcode
	Operand []byte

	// Offset is the byte offset of the opcode within the code stream.
	Offset int
}

// Index returns the variable index operand of declaration and register
// instructions.
func (in Instruction) Index() uint32 {
	if len(in.Operand) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(in.Operand)
}

// Ints returns the lanes of a SETI* instruction.
func (in Instruction) Ints() []int32 {
	n := in.Op.SetLanes()
	out := make([]int32, 0, n)
	for i := 0; i < n && 4*i+4 <= len(in.Operand); i++ {
		out = append(out, int32(binary.BigEndian.Uint32(in.Operand[4*i:])))
	}
	return out
}

// Floats returns the lanes of a SETF* instruction.
func (in Instruction) Floats() []float32 {
	n := in.Op.SetLanes()
	out := make([]float32, 0, n)
	for i := 0; i < n && 4*i+4 <= len(in.Operand); i++ {
		out = append(out, math.Float32frombits(binary.BigEndian.Uint32(in.Operand[4*i:])))
	}
	return out
}

// Bool returns the operand of a SETB instruction.
func (in Instruction) Bool() bool {
	return len(in.Operand) > 0 && in.Operand[0] != 0
}

// Reader walks an instruction stream one record at a time. Each record
// advances the reader by exactly 1 + Op.Width() bytes.
type Reader struct {
	code []byte
	pos  int
	cur  Instruction
	err  error
}

// NewReader returns a Reader over an instruction stream (without header).
func NewReader(code []byte) *Reader {
	return &Reader{code: code}
}

// Next decodes the next instruction. It returns false at the end of the
// stream or on error; check Err afterwards.
func (r *Reader) Next() bool {
	if r.err != nil || r.pos >= len(r.code) {
		return false
	}
	op := Opcode(r.code[r.pos])
	if !op.Valid() {
		r.err = NewError(ErrUnsupportedOpcode, "unknown opcode 0x%02X at offset %d", r.code[r.pos], r.pos)
		return false
	}
	end := r.pos + 1 + op.Width()
	if end > len(r.code) {
		r.err = NewError(ErrInvalidBinary, "%s at offset %d needs %d operand bytes, %d left", op, r.pos, op.Width(), len(r.code)-r.pos-1)
		return false
	}
	r.cur = Instruction{Op: op, Operand: r.code[r.pos+1 : end], Offset: r.pos}
	r.pos = end
	return true
}

// Instruction returns the record decoded by the last call to Next.
func (r *Reader) Instruction() Instruction {
	return r.cur
}

// Err returns the first decoding error, if any.
func (r *Reader) Err() error {
	return r.err
}

// AppendBytecodeHeader appends the marker and version bytes to b.
func AppendBytecodeHeader(b []byte, major, minor uint8) []byte {
	b = append(b, BytecodeMagic[:]...)
	return append(b, major, minor)
}

// AppendIndex appends an instruction with a variable index operand.
func AppendIndex(b []byte, op Opcode, index uint32) []byte {
	b = append(b, byte(op))
	return binary.BigEndian.AppendUint32(b, index)
}

// AppendInts appends a SETI* instruction. Missing lanes are zero.
func AppendInts(b []byte, op Opcode, lanes []int32) []byte {
	b = append(b, byte(op))
	for i := 0; i < op.Width()/4; i++ {
		var v int32
		if i < len(lanes) {
			v = lanes[i]
		}
		b = binary.BigEndian.AppendUint32(b, uint32(v))
	}
	return b
}

// AppendFloats appends a SETF* instruction. Missing lanes are zero.
func AppendFloats(b []byte, op Opcode, lanes []float32) []byte {
	b = append(b, byte(op))
	for i := 0; i < op.Width()/4; i++ {
		var v float32
		if i < len(lanes) {
			v = lanes[i]
		}
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

// AppendBool appends a SETB instruction.
func AppendBool(b []byte, v bool) []byte {
	if v {
		return append(b, byte(OpSetB), 1)
	}
	return append(b, byte(OpSetB), 0)
}

// AppendOp appends an instruction without operands.
func AppendOp(b []byte, op Opcode) []byte {
	return append(b, byte(op))
}
