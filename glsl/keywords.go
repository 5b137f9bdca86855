// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// glslKeywords contains the GLSL reserved words a metadata binding name can
// collide with when it is used as a uniform block name.
var glslKeywords = map[string]struct{}{
	// Basic types
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},

	// Vector and matrix types
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat3x3": {}, "mat4x4": {},

	// Samplers
	"sampler": {}, "sampler2D": {}, "sampler3D": {}, "samplerCube": {},

	// Qualifiers
	"attribute": {}, "const": {}, "uniform": {}, "varying": {}, "buffer": {},
	"shared": {}, "layout": {}, "centroid": {}, "flat": {}, "smooth": {},
	"noperspective": {}, "patch": {}, "sample": {}, "in": {}, "out": {},
	"inout": {}, "invariant": {}, "precise": {}, "highp": {}, "mediump": {},
	"lowp": {}, "precision": {}, "coherent": {}, "volatile": {}, "restrict": {},
	"readonly": {}, "writeonly": {},

	// Control flow
	"break": {}, "continue": {}, "do": {}, "for": {}, "while": {}, "switch": {},
	"case": {}, "default": {}, "if": {}, "else": {}, "discard": {}, "return": {},

	// Other keywords
	"struct": {}, "true": {}, "false": {}, "subroutine": {},

	// Future reserved
	"common": {}, "partition": {}, "active": {}, "asm": {}, "class": {},
	"union": {}, "enum": {}, "typedef": {}, "template": {}, "this": {},
	"resource": {}, "goto": {}, "inline": {}, "noinline": {}, "public": {},
	"static": {}, "extern": {}, "external": {}, "interface": {}, "long": {},
	"short": {}, "half": {}, "fixed": {}, "unsigned": {}, "superp": {},
	"input": {}, "output": {}, "filter": {}, "sizeof": {}, "cast": {},
	"namespace": {}, "using": {},

	// Entry point
	"main": {},
}

// isKeyword returns true if the name is a GLSL reserved word.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeName returns a GLSL-safe identifier for a metadata name. Reserved
// words, the gl_ prefix and double underscores are all off limits in GLSL.
func escapeName(name string) string {
	if isKeyword(name) || strings.HasPrefix(name, "gl_") {
		name = "_" + name
	}
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}
