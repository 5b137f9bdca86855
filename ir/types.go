package ir

import "strings"

// VariableType is the closed set of MSL value types.
// The numeric values are part of the metadata binary format.
type VariableType uint8

const (
	TypeInt1 VariableType = iota
	TypeInt2
	TypeInt3
	TypeInt4
	TypeInt22
	TypeInt33
	TypeInt44
	TypeFloat1
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeFloat22
	TypeFloat33
	TypeFloat44
	TypeBool
	TypeConstantBuffer
	TypeTexture2D
	TypeInvalid
)

var variableTypeNames = [...]string{
	TypeInt1:           "INT1",
	TypeInt2:           "INT2",
	TypeInt3:           "INT3",
	TypeInt4:           "INT4",
	TypeInt22:          "INT22",
	TypeInt33:          "INT33",
	TypeInt44:          "INT44",
	TypeFloat1:         "FLOAT1",
	TypeFloat2:         "FLOAT2",
	TypeFloat3:         "FLOAT3",
	TypeFloat4:         "FLOAT4",
	TypeFloat22:        "FLOAT22",
	TypeFloat33:        "FLOAT33",
	TypeFloat44:        "FLOAT44",
	TypeBool:           "BOOL",
	TypeConstantBuffer: "CONSTANT_BUFFER",
	TypeTexture2D:      "TEXTURE_2D",
	TypeInvalid:        "INVALID",
}

// String returns the metadata assembly spelling of the type (e.g. "FLOAT4").
func (t VariableType) String() string {
	if int(t) < len(variableTypeNames) {
		return variableTypeNames[t]
	}
	return "INVALID"
}

// ParseVariableType is the inverse of String. Matching is case-insensitive.
func ParseVariableType(s string) (VariableType, bool) {
	s = strings.ToUpper(s)
	for i, name := range variableTypeNames {
		if name == s && VariableType(i) != TypeInvalid {
			return VariableType(i), true
		}
	}
	return TypeInvalid, false
}

// Valid reports whether t is a known type other than TypeInvalid.
func (t VariableType) Valid() bool {
	return t < TypeInvalid
}

// IsInt reports whether t has integer components.
func (t VariableType) IsInt() bool {
	return t <= TypeInt44
}

// IsFloat reports whether t has floating point components.
func (t VariableType) IsFloat() bool {
	return t >= TypeFloat1 && t <= TypeFloat44
}

// IsNumeric reports whether t supports arithmetic.
func (t VariableType) IsNumeric() bool {
	return t.IsInt() || t.IsFloat()
}

// IsScalar reports whether t is a single-component value type.
func (t VariableType) IsScalar() bool {
	return t == TypeInt1 || t == TypeFloat1 || t == TypeBool
}

// IsVector reports whether t is a 2, 3 or 4 component vector.
func (t VariableType) IsVector() bool {
	switch t {
	case TypeInt2, TypeInt3, TypeInt4, TypeFloat2, TypeFloat3, TypeFloat4:
		return true
	}
	return false
}

// IsMatrix reports whether t is a square matrix type.
func (t VariableType) IsMatrix() bool {
	switch t {
	case TypeInt22, TypeInt33, TypeInt44, TypeFloat22, TypeFloat33, TypeFloat44:
		return true
	}
	return false
}

// IsResource reports whether t names a binding point rather than a value.
func (t VariableType) IsResource() bool {
	return t == TypeConstantBuffer || t == TypeTexture2D
}

// Components returns the number of scalar lanes in t (rows*columns for
// matrices) and 0 for resources.
func (t VariableType) Components() int {
	switch t {
	case TypeInt1, TypeFloat1, TypeBool:
		return 1
	case TypeInt2, TypeFloat2:
		return 2
	case TypeInt3, TypeFloat3:
		return 3
	case TypeInt4, TypeFloat4, TypeInt22, TypeFloat22:
		return 4
	case TypeInt33, TypeFloat33:
		return 9
	case TypeInt44, TypeFloat44:
		return 16
	}
	return 0
}

// Dimension returns the vector width or matrix order of t (1 for scalars).
func (t VariableType) Dimension() int {
	switch t {
	case TypeInt22, TypeFloat22:
		return 2
	case TypeInt33, TypeFloat33:
		return 3
	case TypeInt44, TypeFloat44:
		return 4
	}
	return t.Components()
}

// ComponentType returns the scalar type of a single lane of t.
func (t VariableType) ComponentType() VariableType {
	switch {
	case t.IsInt():
		return TypeInt1
	case t.IsFloat():
		return TypeFloat1
	case t == TypeBool:
		return TypeBool
	}
	return TypeInvalid
}

// VectorOf returns the vector type with n lanes of the scalar type s.
func VectorOf(s VariableType, n int) VariableType {
	if n < 1 || n > 4 {
		return TypeInvalid
	}
	switch s {
	case TypeInt1:
		return TypeInt1 + VariableType(n-1)
	case TypeFloat1:
		return TypeFloat1 + VariableType(n-1)
	case TypeBool:
		if n == 1 {
			return TypeBool
		}
	}
	return TypeInvalid
}

// ShaderKind is the pipeline stage a shader is compiled for.
type ShaderKind uint8

const (
	ShaderVertex ShaderKind = iota
	ShaderPixel
)

// String returns "VERTEX" or "PIXEL".
func (k ShaderKind) String() string {
	switch k {
	case ShaderVertex:
		return "VERTEX"
	case ShaderPixel:
		return "PIXEL"
	default:
		return "INVALID"
	}
}

// ParseShaderKind accepts "vertex" or "pixel" in any case.
func ParseShaderKind(s string) (ShaderKind, bool) {
	switch strings.ToLower(s) {
	case "vertex":
		return ShaderVertex, true
	case "pixel":
		return ShaderPixel, true
	}
	return 0, false
}
