// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/magma/ir"
)

// glslTypeSampler is the GLSL type name for 2D textures.
const glslTypeSampler = "sampler2D"

// glslTypeNames maps the value types GLSL can express to their names.
// Integer matrices have no GLSL counterpart and are absent.
var glslTypeNames = map[ir.VariableType]string{
	ir.TypeInt1:      "int",
	ir.TypeInt2:      "ivec2",
	ir.TypeInt3:      "ivec3",
	ir.TypeInt4:      "ivec4",
	ir.TypeFloat1:    "float",
	ir.TypeFloat2:    "vec2",
	ir.TypeFloat3:    "vec3",
	ir.TypeFloat4:    "vec4",
	ir.TypeFloat22:   "mat2",
	ir.TypeFloat33:   "mat3",
	ir.TypeFloat44:   "mat4",
	ir.TypeBool:      "bool",
	ir.TypeTexture2D: glslTypeSampler,
}

// typeToGLSL returns the GLSL type name for a value type.
func typeToGLSL(t ir.VariableType) (string, error) {
	if name, ok := glslTypeNames[t]; ok {
		return name, nil
	}
	return "", ir.NewError(ir.ErrUnsupportedType, "type %s has no GLSL equivalent", t)
}

// interfaceTypeToGLSL returns the GLSL type for a stage input or output.
// Booleans cannot cross shader stage boundaries.
func interfaceTypeToGLSL(t ir.VariableType) (string, error) {
	if t == ir.TypeBool || t.IsResource() {
		return "", ir.NewError(ir.ErrUnsupportedType, "type %s cannot be a GLSL stage input or output", t)
	}
	return typeToGLSL(t)
}

// literalConstructor returns the constructor used for a multi-lane literal.
func literalConstructor(op ir.Opcode) string {
	n := op.SetLanes()
	if op.SetsFloat() {
		return glslTypeNames[ir.VectorOf(ir.TypeFloat1, n)]
	}
	return glslTypeNames[ir.VectorOf(ir.TypeInt1, n)]
}
