// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/magma/ir"
)

// HLSL type name constants.
const (
	hlslTexture = "Texture2D"
	hlslSampler = "SamplerState"
)

// TypeToHLSL returns the HLSL type name for a value type.
// Ref: https://docs.microsoft.com/en-us/windows/win32/direct3dhlsl/dx-graphics-hlsl-data-types
func TypeToHLSL(t ir.VariableType) (string, error) {
	switch {
	case t == ir.TypeBool:
		return "bool", nil
	case t == ir.TypeTexture2D:
		return hlslTexture, nil
	case t.IsScalar():
		return scalarToHLSL(t), nil
	case t.IsVector():
		return fmt.Sprintf("%s%d", scalarToHLSL(t.ComponentType()), t.Dimension()), nil
	case t.IsMatrix():
		n := t.Dimension()
		return fmt.Sprintf("%s%dx%d", scalarToHLSL(t.ComponentType()), n, n), nil
	}
	return "", ir.NewError(ir.ErrUnsupportedType, "type %s has no HLSL equivalent", t)
}

// scalarToHLSL returns the HLSL name of a scalar component type.
func scalarToHLSL(t ir.VariableType) string {
	if t == ir.TypeInt1 {
		return "int"
	}
	return "float"
}

// InterfaceTypeToHLSL returns the HLSL type for a stage input or output
// field. Booleans cannot be interpolated between stages.
func InterfaceTypeToHLSL(t ir.VariableType) (string, error) {
	if t == ir.TypeBool || t.IsResource() {
		return "", ir.NewError(ir.ErrUnsupportedType, "type %s cannot be an HLSL stage input or output", t)
	}
	return TypeToHLSL(t)
}

// InterpolationToHLSL returns the HLSL interpolation modifier for an
// inter-stage field, with a trailing space. Integers are never
// interpolated. Returns empty string for the default interpolation.
func InterpolationToHLSL(t ir.VariableType) string {
	if t.IsInt() {
		return "nointerpolation "
	}
	return ""
}

// ShaderStageToHLSL returns the profile prefix for a shader kind.
func ShaderStageToHLSL(kind ir.ShaderKind) string {
	switch kind {
	case ir.ShaderVertex:
		return "vs"
	case ir.ShaderPixel:
		return "ps" // Pixel shader in HLSL terminology
	default:
		return "vs"
	}
}

// OutputSemantic returns the semantic of an output. Index 0 is the
// position of a vertex shader or the depth of a pixel shader; other pixel
// outputs are render targets numbered by target.
func OutputSemantic(kind ir.ShaderKind, v ir.MetaVariable, target int) string {
	switch {
	case v.Index == 0 && kind == ir.ShaderPixel:
		return "SV_Depth"
	case v.Index == 0:
		return "SV_Position"
	case kind == ir.ShaderPixel:
		return "SV_Target" + strconv.Itoa(target)
	}
	return Escape(v.Name)
}

// intrinsicFunctions maps intrinsic opcodes to HLSL intrinsics.
// INVERSE has no HLSL intrinsic and is absent.
var intrinsicFunctions = map[ir.Opcode]string{
	ir.OpAbs:         "abs",
	ir.OpSign:        "sign",
	ir.OpSin:         "sin",
	ir.OpCos:         "cos",
	ir.OpTan:         "tan",
	ir.OpASin:        "asin",
	ir.OpACos:        "acos",
	ir.OpATan:        "atan",
	ir.OpSinH:        "sinh",
	ir.OpCosH:        "cosh",
	ir.OpTanH:        "tanh",
	ir.OpExp:         "exp",
	ir.OpExp2:        "exp2",
	ir.OpLog:         "log",
	ir.OpLog2:        "log2",
	ir.OpSqrt:        "sqrt",
	ir.OpRSqrt:       "rsqrt",
	ir.OpFloor:       "floor",
	ir.OpCeil:        "ceil",
	ir.OpRound:       "round",
	ir.OpTrunc:       "trunc",
	ir.OpFract:       "frac",
	ir.OpSaturate:    "saturate",
	ir.OpDegrees:     "degrees",
	ir.OpRadians:     "radians",
	ir.OpNormalize:   "normalize",
	ir.OpLength:      "length",
	ir.OpTranspose:   "transpose",
	ir.OpDeterminant: "determinant",
	ir.OpPow:         "pow",
	ir.OpMod:         "fmod",
	ir.OpStep:        "step",
	ir.OpATan2:       "atan2",
	ir.OpReflect:     "reflect",
	ir.OpMin:         "min",
	ir.OpMax:         "max",
	ir.OpDot:         "dot",
	ir.OpDistance:    "distance",
	ir.OpCross:       "cross",
	ir.OpMulMat:      "mul",
}

// binaryOperators maps two-input operations to HLSL infix operators.
var binaryOperators = map[ir.Opcode]string{
	ir.OpAdd: "+",
	ir.OpSub: "-",
	ir.OpMul: "*",
	ir.OpDiv: "/",
	ir.OpOr:  "||",
	ir.OpAnd: "&&",
	ir.OpGt:  ">",
	ir.OpLs:  "<",
	ir.OpGEq: ">=",
	ir.OpLEq: "<=",
}

// formatFloat formats a float32 as an HLSL literal.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
