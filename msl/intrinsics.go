package msl

import "github.com/gogpu/magma/ir"

// intrinsic describes a built-in function callable from MSL.
type intrinsic struct {
	op        ir.Opcode
	arity     int
	signature string

	// result returns the call's type for the given argument types, or false
	// when the arguments do not fit the signature.
	result func(args []ir.VariableType) (ir.VariableType, bool)
}

func isFloatValue(t ir.VariableType) bool {
	return t == ir.TypeFloat1 || (t.IsFloat() && t.IsVector())
}

func isNumericValue(t ir.VariableType) bool {
	return t == ir.TypeInt1 || t == ir.TypeFloat1 || (t.IsNumeric() && t.IsVector())
}

func isFloatMatrix(t ir.VariableType) bool {
	return t.IsFloat() && t.IsMatrix()
}

func isFloat3(t ir.VariableType) bool {
	return t == ir.TypeFloat3
}

func unary(op ir.Opcode, sig string, accept func(ir.VariableType) bool, result func(ir.VariableType) ir.VariableType) intrinsic {
	return intrinsic{op: op, arity: 1, signature: sig, result: func(args []ir.VariableType) (ir.VariableType, bool) {
		if !accept(args[0]) {
			return ir.TypeInvalid, false
		}
		return result(args[0]), true
	}}
}

func binarySame(op ir.Opcode, sig string, accept func(ir.VariableType) bool, result func(ir.VariableType) ir.VariableType) intrinsic {
	return intrinsic{op: op, arity: 2, signature: sig, result: func(args []ir.VariableType) (ir.VariableType, bool) {
		if args[0] != args[1] || !accept(args[0]) {
			return ir.TypeInvalid, false
		}
		return result(args[0]), true
	}}
}

func same(t ir.VariableType) ir.VariableType {
	return t
}

func scalar(ir.VariableType) ir.VariableType {
	return ir.TypeFloat1
}

func floatUnary(op ir.Opcode) intrinsic {
	return unary(op, "(floatN) -> floatN", isFloatValue, same)
}

func floatBinary(op ir.Opcode) intrinsic {
	return binarySame(op, "(floatN, floatN) -> floatN", isFloatValue, same)
}

func numericBinary(op ir.Opcode) intrinsic {
	return binarySame(op, "(T, T) -> T for int or float T", isNumericValue, same)
}

func matrixUnary(op ir.Opcode, sig string) intrinsic {
	return unary(op, sig, isFloatMatrix, same)
}

var intrinsics = map[string]intrinsic{
	"sin":      floatUnary(ir.OpSin),
	"cos":      floatUnary(ir.OpCos),
	"tan":      floatUnary(ir.OpTan),
	"asin":     floatUnary(ir.OpASin),
	"acos":     floatUnary(ir.OpACos),
	"atan":     floatUnary(ir.OpATan),
	"sinh":     floatUnary(ir.OpSinH),
	"cosh":     floatUnary(ir.OpCosH),
	"tanh":     floatUnary(ir.OpTanH),
	"exp":      floatUnary(ir.OpExp),
	"exp2":     floatUnary(ir.OpExp2),
	"log":      floatUnary(ir.OpLog),
	"log2":     floatUnary(ir.OpLog2),
	"sqrt":     floatUnary(ir.OpSqrt),
	"rsqrt":    floatUnary(ir.OpRSqrt),
	"floor":    floatUnary(ir.OpFloor),
	"ceil":     floatUnary(ir.OpCeil),
	"round":    floatUnary(ir.OpRound),
	"trunc":    floatUnary(ir.OpTrunc),
	"fract":    floatUnary(ir.OpFract),
	"saturate": floatUnary(ir.OpSaturate),
	"degrees":  floatUnary(ir.OpDegrees),
	"radians":  floatUnary(ir.OpRadians),

	"normalize": floatUnary(ir.OpNormalize),
	"length":    unary(ir.OpLength, "(floatN) -> float", isFloatValue, scalar),
	"abs":       unary(ir.OpAbs, "(T) -> T for int or float T", isNumericValue, same),
	"sign":      unary(ir.OpSign, "(T) -> T for int or float T", isNumericValue, same),

	"transpose":   matrixUnary(ir.OpTranspose, "(floatNN) -> floatNN"),
	"inverse":     matrixUnary(ir.OpInverse, "(floatNN) -> floatNN"),
	"determinant": unary(ir.OpDeterminant, "(floatNN) -> float", isFloatMatrix, scalar),

	"pow":     floatBinary(ir.OpPow),
	"mod":     floatBinary(ir.OpMod),
	"step":    floatBinary(ir.OpStep),
	"atan2":   floatBinary(ir.OpATan2),
	"reflect": floatBinary(ir.OpReflect),
	"min":     numericBinary(ir.OpMin),
	"max":     numericBinary(ir.OpMax),

	"dot":      binarySame(ir.OpDot, "(floatN, floatN) -> float", isFloatValue, scalar),
	"distance": binarySame(ir.OpDistance, "(floatN, floatN) -> float", isFloatValue, scalar),
	"cross":    binarySame(ir.OpCross, "(float3, float3) -> float3", isFloat3, same),

	"sample": {op: ir.OpSmple2D, arity: 2, signature: "(Texture2D, float2) -> float4",
		result: func(args []ir.VariableType) (ir.VariableType, bool) {
			if args[0] != ir.TypeTexture2D || args[1] != ir.TypeFloat2 {
				return ir.TypeInvalid, false
			}
			return ir.TypeFloat4, true
		}},
}

// lookupIntrinsic returns the built-in function called name.
func lookupIntrinsic(name string) (intrinsic, bool) {
	in, ok := intrinsics[name]
	return in, ok
}
