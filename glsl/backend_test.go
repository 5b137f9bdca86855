// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/magma/asm"
	"github.com/gogpu/magma/ir"
)

// =============================================================================
// Shared fixtures
// =============================================================================

const vertexMetadata = `MAJOR 2
MINOR 0
SHADER VERTEX
BEGIN INPUT
INDEX 1
NAME POSITION
TYPE FLOAT4
END
BEGIN OUTPUT
INDEX 0
NAME SV_POSITION
TYPE FLOAT4
END
BEGIN CONSTANT_BUFFER
INDEX 0
NAME Transform
TYPE CONSTANT_BUFFER
END
BEGIN CONSTANT_BUFFER_VAR
INDEX 2
NAME mvp
TYPE FLOAT44
BUFFER INDEX 0
BUFFER OFFSET 0
END
`

const vertexBytecode = `MAJOR 2
MINOR 0
OPSCOPE
VARIN0 2
VARIN1 1
VAROUT 0
MULMAT
CLSCOPE
`

// pixelMetadata: inputs uv 0 and color 1, output 2, texture 3, buffer
// members tint 4 and roughness 5.
const pixelMetadata = `MAJOR 2
MINOR 0
SHADER PIXEL
BEGIN INPUT
INDEX 0
NAME TEXCOORD
TYPE FLOAT2
END
BEGIN INPUT
INDEX 1
NAME COLOR
TYPE FLOAT4
END
BEGIN OUTPUT
INDEX 2
NAME SV_TARGET
TYPE FLOAT4
END
BEGIN TEXTURE_2D
INDEX 3
NAME albedo
TYPE TEXTURE_2D
END
BEGIN CONSTANT_BUFFER
INDEX 0
NAME Material
TYPE CONSTANT_BUFFER
END
BEGIN CONSTANT_BUFFER_VAR
INDEX 4
NAME tint
TYPE FLOAT4
BUFFER INDEX 0
BUFFER OFFSET 0
END
BEGIN CONSTANT_BUFFER_VAR
INDEX 5
NAME roughness
TYPE FLOAT1
BUFFER INDEX 0
BUFFER OFFSET 1
END
`

// compileText assembles both texts and runs the GLSL backend.
func compileText(t testing.TB, code, meta string, options Options) (string, TranslationInfo, error) {
	t.Helper()
	bc, err := asm.Bytecode(code, asm.DefaultMaxSize)
	if err != nil {
		t.Fatalf("assemble bytecode: %v", err)
	}
	md, err := asm.Metadata(meta, asm.DefaultMaxSize)
	if err != nil {
		t.Fatalf("assemble metadata: %v", err)
	}
	return Compile(bc, md, options)
}

// pixelBody wraps body instructions in the root scope of a pixel shader.
func pixelBody(body string) string {
	return "MAJOR 2\nMINOR 0\nOPSCOPE\n" + body + "CLSCOPE\n"
}

// =============================================================================
// Version Tests
// =============================================================================

func TestVersion_String(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{Version330, "330 core"},
		{Version400, "400 core"},
		{Version410, "410 core"},
		{Version420, "420 core"},
		{Version430, "430 core"},
		{Version450, "450 core"},
		{Version460, "460 core"},
		{VersionES300, "300 es"},
		{VersionES310, "310 es"},
		{VersionES320, "320 es"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.version.String()
			if got != tt.want {
				t.Errorf("Version.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersion_VersionNumber(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{Version330, "330"},
		{Version410, "410"},
		{VersionES300, "300"},
		{VersionES310, "310"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.version.VersionNumber()
			if got != tt.want {
				t.Errorf("Version.VersionNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"", Version410},
		{"330", Version330},
		{"410 core", Version410},
		{"  450   core ", Version450},
		{"300 es", VersionES300},
		{"310 ES", VersionES310},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"300", "110", "es", "410 compatibility"} {
		if _, err := ParseVersion(bad); !ir.IsKind(err, ir.ErrUnsupportedVersion) {
			t.Errorf("ParseVersion(%q) error = %v, want UnsupportedVersion", bad, err)
		}
	}
}

func TestVersion_Capabilities(t *testing.T) {
	tests := []struct {
		version   Version
		locations bool
		bindings  bool
	}{
		{Version330, false, false},
		{Version400, false, false},
		{Version410, true, false},
		{Version420, true, true},
		{Version460, true, true},
		{VersionES300, false, false},
		{VersionES310, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			if got := tt.version.SupportsStageLocations(); got != tt.locations {
				t.Errorf("SupportsStageLocations() = %v, want %v", got, tt.locations)
			}
			if got := tt.version.SupportsBindings(); got != tt.bindings {
				t.Errorf("SupportsBindings() = %v, want %v", got, tt.bindings)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.LangVersion != Version410 {
		t.Errorf("LangVersion = %v, want %v", opts.LangVersion, Version410)
	}
	if !opts.ForceHighPrecision {
		t.Error("ForceHighPrecision should default to true")
	}
}

// =============================================================================
// Type and name helpers
// =============================================================================

func TestTypeToGLSL(t *testing.T) {
	tests := []struct {
		typ  ir.VariableType
		want string
	}{
		{ir.TypeInt1, "int"},
		{ir.TypeInt3, "ivec3"},
		{ir.TypeFloat1, "float"},
		{ir.TypeFloat4, "vec4"},
		{ir.TypeFloat22, "mat2"},
		{ir.TypeFloat44, "mat4"},
		{ir.TypeBool, "bool"},
		{ir.TypeTexture2D, "sampler2D"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, err := typeToGLSL(tt.typ)
			if err != nil {
				t.Fatalf("typeToGLSL(%s) error: %v", tt.typ, err)
			}
			if got != tt.want {
				t.Errorf("typeToGLSL(%s) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestTypeToGLSL_Unsupported(t *testing.T) {
	for _, typ := range []ir.VariableType{ir.TypeInt22, ir.TypeInt33, ir.TypeInt44, ir.TypeConstantBuffer, ir.TypeInvalid} {
		t.Run(typ.String(), func(t *testing.T) {
			_, err := typeToGLSL(typ)
			if !ir.IsKind(err, ir.ErrUnsupportedType) {
				t.Errorf("typeToGLSL(%s) error = %v, want UnsupportedType", typ, err)
			}
		})
	}
}

func TestEscapeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Transform", "Transform"},
		{"uniform", "_uniform"},
		{"main", "_main"},
		{"gl_Data", "_gl_Data"},
		{"my__block", "my_block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeName(tt.name); got != tt.want {
				t.Errorf("escapeName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		value float32
		want  string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{0.5, "0.5"},
		{-2.25, "-2.25"},
		{1e10, "1e+10"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatFloat(tt.value); got != tt.want {
				t.Errorf("formatFloat(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Compile Tests
// =============================================================================

func TestCompile_EndToEnd(t *testing.T) {
	source, info, err := compileText(t, vertexBytecode, vertexMetadata, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := `#version 410 core

layout(std140) uniform Transform
{
    mat4 buf_0_0;
};

layout(location = 0) in vec4 in_1;

void main()
{
    gl_Position = buf_0_0 * in_1;
}
`
	if source != want {
		t.Errorf("Compile output:\n%s\nwant:\n%s", source, want)
	}
	if info.RequiredVersion != Version410 {
		t.Errorf("RequiredVersion = %v, want %v", info.RequiredVersion, Version410)
	}
	if info.UniformBlocks["Transform"] != "Transform" {
		t.Errorf("UniformBlocks = %v", info.UniformBlocks)
	}
	if info.InputLocations["POSITION"] != 0 {
		t.Errorf("InputLocations = %v", info.InputLocations)
	}
	if len(info.UsedExtensions) != 0 {
		t.Errorf("UsedExtensions = %v, want none", info.UsedExtensions)
	}
}

func TestCompile_ZeroVersion(t *testing.T) {
	source, _, err := compileText(t, vertexBytecode, vertexMetadata, Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.HasPrefix(source, "#version 410 core\n") {
		t.Errorf("zero version should default to 410 core:\n%s", source)
	}
}

func TestCompile_PixelDeclarations(t *testing.T) {
	source, info, err := compileText(t, pixelBody(""), pixelMetadata, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := `#version 410 core

layout(std140) uniform Material
{
    vec4 buf_0_0;
    float buf_0_1;
};

uniform sampler2D tex_3;

layout(location = 0) in vec2 in_0;
layout(location = 1) in vec4 in_1;

layout(location = 0) out vec4 out_2;

void main()
{
}
`
	if source != want {
		t.Errorf("Compile output:\n%s\nwant:\n%s", source, want)
	}
	if info.Samplers["albedo"] != "tex_3" {
		t.Errorf("Samplers = %v", info.Samplers)
	}
	if info.InputLocations["COLOR"] != 1 {
		t.Errorf("InputLocations = %v", info.InputLocations)
	}
}

func TestCompile_PixelDepthOutput(t *testing.T) {
	meta := `MAJOR 2
MINOR 0
SHADER PIXEL
BEGIN OUTPUT
INDEX 0
NAME SV_DEPTH
TYPE FLOAT1
END
`
	code := pixelBody("DECLF1 1\nVAROUT 1\nSETF1 0.5\nVARIN0 1\nVAROUT 0\nASSIGN\n")
	source, _, err := compileText(t, code, meta, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(source, "gl_FragDepth = local_1;") {
		t.Errorf("missing depth write:\n%s", source)
	}
	if strings.Contains(source, " out ") {
		t.Errorf("built-in output must not be declared:\n%s", source)
	}
}

func TestCompile_Versions(t *testing.T) {
	tests := []struct {
		name     string
		options  Options
		contains []string
		ext      string
	}{
		{
			name:     "330 needs separate shader objects",
			options:  Options{LangVersion: Version330},
			contains: []string{"#version 330 core\n#extension GL_ARB_separate_shader_objects : require\n"},
			ext:      "GL_ARB_separate_shader_objects",
		},
		{
			name:     "ES 300 precision",
			options:  Options{LangVersion: VersionES300, ForceHighPrecision: true},
			contains: []string{"#version 300 es", "precision highp float;", "precision highp sampler2D;"},
			ext:      "GL_EXT_separate_shader_objects",
		},
		{
			name:     "ES 310 mediump",
			options:  Options{LangVersion: VersionES310},
			contains: []string{"precision mediump float;", "layout(std140, binding = 0) uniform Material"},
		},
		{
			name:    "450 bindings with bases",
			options: Options{LangVersion: Version450, UniformBindingBase: 2, TextureBindingBase: 5},
			contains: []string{
				"layout(std140, binding = 2) uniform Material",
				"layout(binding = 5) uniform sampler2D tex_3;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, info, err := compileText(t, pixelBody(""), pixelMetadata, tt.options)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(source, want) {
					t.Errorf("missing %q in:\n%s", want, source)
				}
			}
			if tt.ext == "" && len(info.UsedExtensions) != 0 {
				t.Errorf("UsedExtensions = %v, want none", info.UsedExtensions)
			}
			if tt.ext != "" && (len(info.UsedExtensions) != 1 || info.UsedExtensions[0] != tt.ext) {
				t.Errorf("UsedExtensions = %v, want [%s]", info.UsedExtensions, tt.ext)
			}
		})
	}
}

func TestCompile_DebugInfo(t *testing.T) {
	opts := DefaultOptions()
	opts.WriterFlags = WriterFlagDebugInfo
	source, _, err := compileText(t, vertexBytecode, vertexMetadata, opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	for _, want := range []string{"// 0000 OPSCOPE", "    // 0001 VARIN0 2", "    // 0010 MULMAT"} {
		if !strings.Contains(source, want) {
			t.Errorf("missing %q in:\n%s", want, source)
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		code string
		meta string
		kind ir.ErrorKind
	}{
		{"int matrix local", pixelBody("DECLI44 6\n"), pixelMetadata, ir.ErrUnsupportedType},
		{"discard in vertex shader", pixelBody("DISCARD\n"), vertexMetadata, ir.ErrUnsupportedOpcode},
		{"register not selected", pixelBody("VAROUT 2\nNEGATE\n"), pixelMetadata, ir.ErrInvalidBinary},
		{"undeclared variable", pixelBody("VARIN0 9\n"), pixelMetadata, ir.ErrInvalidBinary},
		{"redeclared variable", pixelBody("DECLF1 1\n"), pixelMetadata, ir.ErrInvalidBinary},
		{"outside body", "MAJOR 2\nMINOR 0\nDECLF1 6\n", pixelMetadata, ir.ErrInvalidBinary},
		{"unclosed scope", "MAJOR 2\nMINOR 0\nOPSCOPE\n", pixelMetadata, ir.ErrInvalidBinary},
		{"empty body", "MAJOR 2\nMINOR 0\n", pixelMetadata, ir.ErrInvalidBinary},
		{"two bodies", pixelBody("") + "OPSCOPE\nCLSCOPE\n", pixelMetadata, ir.ErrInvalidBinary},
		{
			name: "non float4 position",
			code: pixelBody(""),
			meta: "MAJOR 2\nMINOR 0\nSHADER VERTEX\nBEGIN OUTPUT\nINDEX 0\nNAME SV_POSITION\nTYPE FLOAT3\nEND\n",
			kind: ir.ErrUnsupportedType,
		},
		{
			name: "bool input",
			code: pixelBody(""),
			meta: "MAJOR 2\nMINOR 0\nSHADER PIXEL\nBEGIN INPUT\nINDEX 0\nNAME FLAG\nTYPE BOOL\nEND\n",
			kind: ir.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compileText(t, tt.code, tt.meta, DefaultOptions())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %s", err, tt.kind)
			}
			if !strings.HasPrefix(err.Error(), "glsl: ") {
				t.Errorf("error %q should carry the glsl prefix", err)
			}
		})
	}
}

func TestCompile_RejectsForeignBlobs(t *testing.T) {
	md, err := asm.Metadata(vertexMetadata, asm.DefaultMaxSize)
	if err != nil {
		t.Fatal(err)
	}
	bc, err := asm.Bytecode(vertexBytecode, asm.DefaultMaxSize)
	if err != nil {
		t.Fatal(err)
	}

	legacy := append([]byte("SHDR"), bc[4:]...)
	if _, _, err := Compile(legacy, md, DefaultOptions()); !ir.IsKind(err, ir.ErrUnsupportedVersion) {
		t.Errorf("legacy marker: error = %v, want UnsupportedVersion", err)
	}
	if _, _, err := Compile(bc, md[:10], DefaultOptions()); !ir.IsKind(err, ir.ErrInvalidBinary) {
		t.Errorf("truncated metadata: error = %v, want InvalidBinary", err)
	}
	if _, _, err := Compile(append(bc, 0xFF), md, DefaultOptions()); !ir.IsKind(err, ir.ErrUnsupportedOpcode) {
		t.Errorf("unknown opcode: error = %v, want UnsupportedOpcode", err)
	}
}
