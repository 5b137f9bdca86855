package ir

import "strings"

// Opcode is a single bytecode instruction. The numeric values are stable:
// they are written verbatim into bytecode blobs.
type Opcode uint8

// Declarations. Operand: 4-byte variable index.
const (
	OpDeclI1 Opcode = iota
	OpDeclI2
	OpDeclI3
	OpDeclI4
	OpDeclI22
	OpDeclI33
	OpDeclI44
	OpDeclF1
	OpDeclF2
	OpDeclF3
	OpDeclF4
	OpDeclF22
	OpDeclF33
	OpDeclF44
	OpDeclB

	// Register selectors. Operand: 4-byte variable index.
	OpVarIn0
	OpVarIn1
	OpVarOut

	// Operations on the registers: out = in0 <op> in1.
	OpAssign
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMulMat
	OpOr
	OpAnd
	OpNot
	OpNegate
	OpEq
	OpNEq
	OpGt
	OpLs
	OpGEq
	OpLEq

	// Literal setters write into the out register.
	OpSetI1
	OpSetI2
	OpSetI3
	OpSetI4
	OpSetF1
	OpSetF2
	OpSetF3
	OpSetF4
	OpSetB

	// Component access: As*Cmp is out.c = in0, Ge*Cmp is out = in0.c.
	OpAsXCmp
	OpAsYCmp
	OpAsZCmp
	OpAsWCmp
	OpGeXCmp
	OpGeYCmp
	OpGeZCmp
	OpGeWCmp

	// Control flow. If reads its condition from in0.
	OpOpScope
	OpClScope
	OpIf
	OpElse
	OpWhile
	OpBreak
	OpReturn
	OpDiscard

	// Intrinsics: out = f(in0) or out = f(in0, in1).
	OpAbs
	OpSign
	OpSin
	OpCos
	OpTan
	OpASin
	OpACos
	OpATan
	OpSinH
	OpCosH
	OpTanH
	OpExp
	OpExp2
	OpLog
	OpLog2
	OpSqrt
	OpRSqrt
	OpFloor
	OpCeil
	OpRound
	OpTrunc
	OpFract
	OpSaturate
	OpDegrees
	OpRadians
	OpNormalize
	OpLength
	OpTranspose
	OpInverse
	OpDeterminant
	OpPow
	OpMod
	OpStep
	OpATan2
	OpReflect
	OpMin
	OpMax
	OpDot
	OpDistance
	OpCross
	OpSmple2D

	opcodeCount
)

// OpcodeInfo describes the static properties of an opcode.
type OpcodeInfo struct {
	// Mnemonic is the bytecode assembly spelling.
	Mnemonic string

	// Width is the number of operand bytes following the opcode byte.
	Width int

	// Inputs is how many input registers an operation or intrinsic reads.
	Inputs int
}

var opcodeTable = [opcodeCount]OpcodeInfo{
	OpDeclI1:  {"DECLI1", 4, 0},
	OpDeclI2:  {"DECLI2", 4, 0},
	OpDeclI3:  {"DECLI3", 4, 0},
	OpDeclI4:  {"DECLI4", 4, 0},
	OpDeclI22: {"DECLI22", 4, 0},
	OpDeclI33: {"DECLI33", 4, 0},
	OpDeclI44: {"DECLI44", 4, 0},
	OpDeclF1:  {"DECLF1", 4, 0},
	OpDeclF2:  {"DECLF2", 4, 0},
	OpDeclF3:  {"DECLF3", 4, 0},
	OpDeclF4:  {"DECLF4", 4, 0},
	OpDeclF22: {"DECLF22", 4, 0},
	OpDeclF33: {"DECLF33", 4, 0},
	OpDeclF44: {"DECLF44", 4, 0},
	OpDeclB:   {"DECLB", 4, 0},

	OpVarIn0: {"VARIN0", 4, 0},
	OpVarIn1: {"VARIN1", 4, 0},
	OpVarOut: {"VAROUT", 4, 0},

	OpAssign: {"ASSIGN", 0, 1},
	OpAdd:    {"ADD", 0, 2},
	OpSub:    {"SUB", 0, 2},
	OpMul:    {"MUL", 0, 2},
	OpDiv:    {"DIV", 0, 2},
	OpMulMat: {"MULMAT", 0, 2},
	OpOr:     {"OR", 0, 2},
	OpAnd:    {"AND", 0, 2},
	OpNot:    {"NOT", 0, 1},
	OpNegate: {"NEGATE", 0, 1},
	OpEq:     {"EQ", 0, 2},
	OpNEq:    {"NEQ", 0, 2},
	OpGt:     {"GT", 0, 2},
	OpLs:     {"LS", 0, 2},
	OpGEq:    {"GEQ", 0, 2},
	OpLEq:    {"LEQ", 0, 2},

	OpSetI1: {"SETI1", 4, 0},
	OpSetI2: {"SETI2", 8, 0},
	OpSetI3: {"SETI3", 16, 0},
	OpSetI4: {"SETI4", 16, 0},
	OpSetF1: {"SETF1", 4, 0},
	OpSetF2: {"SETF2", 8, 0},
	OpSetF3: {"SETF3", 16, 0},
	OpSetF4: {"SETF4", 16, 0},
	OpSetB:  {"SETB", 1, 0},

	OpAsXCmp: {"ASXCMP", 0, 1},
	OpAsYCmp: {"ASYCMP", 0, 1},
	OpAsZCmp: {"ASZCMP", 0, 1},
	OpAsWCmp: {"ASWCMP", 0, 1},
	OpGeXCmp: {"GEXCMP", 0, 1},
	OpGeYCmp: {"GEYCMP", 0, 1},
	OpGeZCmp: {"GEZCMP", 0, 1},
	OpGeWCmp: {"GEWCMP", 0, 1},

	OpOpScope: {"OPSCOPE", 0, 0},
	OpClScope: {"CLSCOPE", 0, 0},
	OpIf:      {"IF", 0, 1},
	OpElse:    {"ELSE", 0, 0},
	OpWhile:   {"WHILE", 0, 0},
	OpBreak:   {"BREAK", 0, 0},
	OpReturn:  {"RETURN", 0, 0},
	OpDiscard: {"DISCARD", 0, 0},

	OpAbs:         {"ABS", 0, 1},
	OpSign:        {"SIGN", 0, 1},
	OpSin:         {"SIN", 0, 1},
	OpCos:         {"COS", 0, 1},
	OpTan:         {"TAN", 0, 1},
	OpASin:        {"ASIN", 0, 1},
	OpACos:        {"ACOS", 0, 1},
	OpATan:        {"ATAN", 0, 1},
	OpSinH:        {"SINH", 0, 1},
	OpCosH:        {"COSH", 0, 1},
	OpTanH:        {"TANH", 0, 1},
	OpExp:         {"EXP", 0, 1},
	OpExp2:        {"EXP2", 0, 1},
	OpLog:         {"LOG", 0, 1},
	OpLog2:        {"LOG2", 0, 1},
	OpSqrt:        {"SQRT", 0, 1},
	OpRSqrt:       {"RSQRT", 0, 1},
	OpFloor:       {"FLOOR", 0, 1},
	OpCeil:        {"CEIL", 0, 1},
	OpRound:       {"ROUND", 0, 1},
	OpTrunc:       {"TRUNC", 0, 1},
	OpFract:       {"FRACT", 0, 1},
	OpSaturate:    {"SATURATE", 0, 1},
	OpDegrees:     {"DEGREES", 0, 1},
	OpRadians:     {"RADIANS", 0, 1},
	OpNormalize:   {"NORMALIZE", 0, 1},
	OpLength:      {"LENGTH", 0, 1},
	OpTranspose:   {"TRANSPOSE", 0, 1},
	OpInverse:     {"INVERSE", 0, 1},
	OpDeterminant: {"DETERMINANT", 0, 1},
	OpPow:         {"POW", 0, 2},
	OpMod:         {"MOD", 0, 2},
	OpStep:        {"STEP", 0, 2},
	OpATan2:       {"ATAN2", 0, 2},
	OpReflect:     {"REFLECT", 0, 2},
	OpMin:         {"MIN", 0, 2},
	OpMax:         {"MAX", 0, 2},
	OpDot:         {"DOT", 0, 2},
	OpDistance:    {"DISTANCE", 0, 2},
	OpCross:       {"CROSS", 0, 2},
	OpSmple2D:     {"SMPLE2D", 0, 2},
}

var opcodeByMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for i, info := range opcodeTable {
		m[info.Mnemonic] = Opcode(i)
	}
	return m
}()

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

// Info returns the static description of op. Undefined opcodes yield a
// zero OpcodeInfo.
func (op Opcode) Info() OpcodeInfo {
	if !op.Valid() {
		return OpcodeInfo{}
	}
	return opcodeTable[op]
}

// Width returns the operand byte count of op.
func (op Opcode) Width() int {
	return op.Info().Width
}

// String returns the mnemonic of op.
func (op Opcode) String() string {
	if !op.Valid() {
		return "UNKNOWN"
	}
	return opcodeTable[op].Mnemonic
}

// LookupOpcode finds an opcode by mnemonic, ignoring case.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := opcodeByMnemonic[strings.ToUpper(mnemonic)]
	return op, ok
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return int(opcodeCount)
}

// IsDecl reports whether op declares a variable.
func (op Opcode) IsDecl() bool {
	return op <= OpDeclB
}

// IsSet reports whether op loads a literal into the out register.
func (op Opcode) IsSet() bool {
	return op >= OpSetI1 && op <= OpSetB
}

// DeclOpcode returns the declaration opcode for a value type.
func DeclOpcode(t VariableType) (Opcode, bool) {
	if t > TypeBool {
		return 0, false
	}
	// Declarations are laid out in VariableType order.
	return Opcode(t), true
}

// DeclType returns the type declared by a declaration opcode.
func (op Opcode) DeclType() VariableType {
	if !op.IsDecl() {
		return TypeInvalid
	}
	return VariableType(op)
}

// SetOpcode returns the literal setter for a scalar, vector or bool type.
func SetOpcode(t VariableType) (Opcode, bool) {
	switch t {
	case TypeInt1:
		return OpSetI1, true
	case TypeInt2:
		return OpSetI2, true
	case TypeInt3:
		return OpSetI3, true
	case TypeInt4:
		return OpSetI4, true
	case TypeFloat1:
		return OpSetF1, true
	case TypeFloat2:
		return OpSetF2, true
	case TypeFloat3:
		return OpSetF3, true
	case TypeFloat4:
		return OpSetF4, true
	case TypeBool:
		return OpSetB, true
	}
	return 0, false
}

// SetLanes returns how many literal values a setter carries (the padding
// lane of the three-lane forms is not counted).
func (op Opcode) SetLanes() int {
	switch op {
	case OpSetI1, OpSetF1, OpSetB:
		return 1
	case OpSetI2, OpSetF2:
		return 2
	case OpSetI3, OpSetF3:
		return 3
	case OpSetI4, OpSetF4:
		return 4
	}
	return 0
}

// SetsFloat reports whether a setter carries float32 lanes.
func (op Opcode) SetsFloat() bool {
	return op >= OpSetF1 && op <= OpSetF4
}

// AssignComponentOpcode returns As<c>Cmp for component index 0..3.
func AssignComponentOpcode(component int) (Opcode, bool) {
	if component < 0 || component > 3 {
		return 0, false
	}
	return OpAsXCmp + Opcode(component), true
}

// GetComponentOpcode returns Ge<c>Cmp for component index 0..3.
func GetComponentOpcode(component int) (Opcode, bool) {
	if component < 0 || component > 3 {
		return 0, false
	}
	return OpGeXCmp + Opcode(component), true
}

// Component returns the lane index addressed by a component opcode, or -1.
func (op Opcode) Component() int {
	switch {
	case op >= OpAsXCmp && op <= OpAsWCmp:
		return int(op - OpAsXCmp)
	case op >= OpGeXCmp && op <= OpGeWCmp:
		return int(op - OpGeXCmp)
	}
	return -1
}

// ComponentLetters maps lane indices to swizzle letters.
const ComponentLetters = "xyzw"
