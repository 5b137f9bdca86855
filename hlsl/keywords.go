// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// Names the writer emits itself, reserved so cbuffer names taken from
// metadata cannot shadow them.
const (
	EntryPointName = "main"
	InputParamName = "input"
	OutputVarName  = "output"
	SamplerSuffix  = "_sampler"
	VSInputStruct  = "VSInput"
	VSOutputStruct = "VSOutput"
	PSInputStruct  = "PSInput"
	PSOutputStruct = "PSOutput"
)

// reservedKeywords contains the HLSL reserved keywords and type names.
var reservedKeywords = map[string]struct{}{
	"AppendStructuredBuffer": {}, "asm": {}, "BlendState": {}, "bool": {},
	"break": {}, "Buffer": {}, "ByteAddressBuffer": {}, "case": {},
	"cbuffer": {}, "centroid": {}, "class": {}, "column_major": {},
	"compile": {}, "const": {}, "continue": {}, "default": {}, "discard": {},
	"do": {}, "double": {}, "else": {}, "export": {}, "extern": {},
	"false": {}, "float": {}, "for": {}, "groupshared": {}, "half": {},
	"if": {}, "in": {}, "inline": {}, "inout": {}, "int": {},
	"interface": {}, "line": {}, "linear": {}, "matrix": {}, "min16float": {},
	"namespace": {}, "nointerpolation": {}, "noperspective": {}, "out": {},
	"packoffset": {}, "pass": {}, "point": {}, "precise": {}, "register": {},
	"return": {}, "row_major": {}, "sample": {}, "sampler": {},
	"SamplerState": {}, "SamplerComparisonState": {}, "shared": {},
	"snorm": {}, "static": {}, "string": {}, "struct": {}, "switch": {},
	"tbuffer": {}, "technique": {}, "texture": {}, "Texture1D": {},
	"Texture2D": {}, "Texture2DArray": {}, "Texture3D": {}, "TextureCube": {},
	"triangle": {}, "true": {}, "typedef": {}, "uint": {}, "uniform": {},
	"unorm": {}, "unsigned": {}, "vector": {}, "void": {}, "volatile": {},
	"while": {},

	// Intrinsics the writer calls
	"abs": {}, "clamp": {}, "cross": {}, "dot": {}, "frac": {}, "lerp": {},
	"mul": {}, "normalize": {}, "rsqrt": {}, "saturate": {},
}

// caseInsensitiveKeywords are legacy effect keywords matched in any case.
var caseInsensitiveKeywords = map[string]struct{}{
	"asm":       {},
	"decl":      {},
	"pass":      {},
	"technique": {},
	"texture":   {},
}

// typeShorthands contains vector and matrix type names: baseN and baseRxC.
var typeShorthands = func() map[string]struct{} {
	result := make(map[string]struct{})
	for _, base := range []string{"bool", "int", "uint", "half", "float", "double"} {
		for n := 1; n <= 4; n++ {
			result[base+string(rune('0'+n))] = struct{}{}
			for c := 1; c <= 4; c++ {
				result[base+string(rune('0'+n))+"x"+string(rune('0'+c))] = struct{}{}
			}
		}
	}
	return result
}()

// IsReserved checks if a name is an HLSL reserved keyword.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	if _, ok := typeShorthands[name]; ok {
		return true
	}
	return false
}

// IsCaseInsensitiveReserved checks if a name conflicts with case-insensitive keywords.
// HLSL has some keywords that are case-insensitive (legacy behavior).
func IsCaseInsensitiveReserved(name string) bool {
	lower := strings.ToLower(name)
	_, ok := caseInsensitiveKeywords[lower]
	return ok
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	if IsReserved(name) || IsCaseInsensitiveReserved(name) {
		return "_" + name
	}
	return name
}
