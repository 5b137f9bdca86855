package msl

import "github.com/gogpu/magma/ir"

var sourceTypeNames = map[ir.VariableType]string{
	ir.TypeInt1:           "int",
	ir.TypeInt2:           "int2",
	ir.TypeInt3:           "int3",
	ir.TypeInt4:           "int4",
	ir.TypeInt22:          "int22",
	ir.TypeInt33:          "int33",
	ir.TypeInt44:          "int44",
	ir.TypeFloat1:         "float",
	ir.TypeFloat2:         "float2",
	ir.TypeFloat3:         "float3",
	ir.TypeFloat4:         "float4",
	ir.TypeFloat22:        "float22",
	ir.TypeFloat33:        "float33",
	ir.TypeFloat44:        "float44",
	ir.TypeBool:           "bool",
	ir.TypeConstantBuffer: "ConstantBuffer",
	ir.TypeTexture2D:      "Texture2D",
}

// TypeName returns the MSL source spelling of t.
func TypeName(t ir.VariableType) string {
	if name, ok := sourceTypeNames[t]; ok {
		return name
	}
	return "<invalid>"
}
