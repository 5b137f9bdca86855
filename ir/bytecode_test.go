package ir

import (
	"bytes"
	"testing"
)

// sampleCode builds a small instruction stream with every operand width.
func sampleCode() []byte {
	var b []byte
	b = AppendOp(b, OpOpScope)
	b = AppendIndex(b, OpDeclF3, 6)
	b = AppendIndex(b, OpVarOut, 6)
	b = AppendFloats(b, OpSetF3, []float32{1, -0.5, 2})
	b = AppendIndex(b, OpDeclI2, 7)
	b = AppendIndex(b, OpVarOut, 7)
	b = AppendInts(b, OpSetI2, []int32{-3})
	b = AppendIndex(b, OpDeclB, 8)
	b = AppendIndex(b, OpVarOut, 8)
	b = AppendBool(b, true)
	b = AppendOp(b, OpClScope)
	return b
}

func TestDecodeBytecode(t *testing.T) {
	blob := AppendBytecodeHeader(nil, CurrentMajor, CurrentMinor)
	blob = append(blob, sampleCode()...)

	bc, err := DecodeBytecode(blob)
	if err != nil {
		t.Fatalf("DecodeBytecode: %v", err)
	}
	if bc.Major != 2 || bc.Minor != 0 {
		t.Errorf("version = %d.%d, want 2.0", bc.Major, bc.Minor)
	}
	if !bytes.Equal(bc.Code, sampleCode()) {
		t.Error("Code should be the stream after the header")
	}
	if !bytes.HasPrefix(blob, []byte("MSLB\x02\x00")) {
		t.Errorf("header = % x", blob[:BytecodeHeaderSize])
	}
}

func TestDecodeBytecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		kind ErrorKind
	}{
		{"empty", nil, ErrInvalidBinary},
		{"short header", []byte("MSLB\x02"), ErrInvalidBinary},
		{"legacy marker", []byte("SHDR\x02\x00"), ErrUnsupportedVersion},
		{"metadata marker", []byte("MSLM\x02\x00"), ErrUnsupportedVersion},
		{"old version", []byte("MSLB\x01\x00"), ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytecode(tt.blob)
			if !IsKind(err, tt.kind) {
				t.Errorf("error = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestReader(t *testing.T) {
	r := NewReader(sampleCode())

	var ops []Opcode
	var ins []Instruction
	for r.Next() {
		in := r.Instruction()
		ops = append(ops, in.Op)
		ins = append(ins, in)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Reader error: %v", err)
	}

	want := []Opcode{OpOpScope, OpDeclF3, OpVarOut, OpSetF3, OpDeclI2, OpVarOut, OpSetI2, OpDeclB, OpVarOut, OpSetB, OpClScope}
	if len(ops) != len(want) {
		t.Fatalf("decoded %d instructions, want %d", len(ops), len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("instruction %d = %s, want %s", i, ops[i], want[i])
		}
	}

	// Offsets advance by 1 + width.
	if ins[1].Offset != 1 || ins[2].Offset != 6 || ins[3].Offset != 11 {
		t.Errorf("offsets = %d %d %d", ins[1].Offset, ins[2].Offset, ins[3].Offset)
	}
	if ins[1].Index() != 6 {
		t.Errorf("DECLF3 index = %d, want 6", ins[1].Index())
	}

	floats := ins[3].Floats()
	if len(floats) != 3 || floats[0] != 1 || floats[1] != -0.5 || floats[2] != 2 {
		t.Errorf("SETF3 lanes = %v", floats)
	}
	if len(ins[3].Operand) != 16 {
		t.Errorf("SETF3 operand is %d bytes, want 16 with the padding lane", len(ins[3].Operand))
	}

	ints := ins[6].Ints()
	if len(ints) != 2 || ints[0] != -3 || ints[1] != 0 {
		t.Errorf("SETI2 lanes = %v, want [-3 0]", ints)
	}
	if !ins[9].Bool() {
		t.Error("SETB operand should be true")
	}
}

func TestReader_Errors(t *testing.T) {
	t.Run("unknown opcode", func(t *testing.T) {
		r := NewReader([]byte{byte(OpOpScope), 0xFE})
		for r.Next() {
		}
		if !IsKind(r.Err(), ErrUnsupportedOpcode) {
			t.Errorf("error = %v, want UnsupportedOpcode", r.Err())
		}
	})

	t.Run("truncated operand", func(t *testing.T) {
		r := NewReader([]byte{byte(OpVarIn0), 0, 0})
		if r.Next() {
			t.Fatal("Next should fail on a short operand")
		}
		if !IsKind(r.Err(), ErrInvalidBinary) {
			t.Errorf("error = %v, want InvalidBinary", r.Err())
		}
		if r.Next() {
			t.Error("Next should keep failing after an error")
		}
	})

	t.Run("empty", func(t *testing.T) {
		r := NewReader(nil)
		if r.Next() || r.Err() != nil {
			t.Errorf("empty stream: Next true or error %v", r.Err())
		}
	})
}
