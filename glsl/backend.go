// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/magma/ir"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version400 = Version{Major: 4, Minor: 0, ES: false}  // OpenGL 4.0
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1
	Version420 = Version{Major: 4, Minor: 20, ES: false} // OpenGL 4.2 (binding qualifiers)
	Version430 = Version{Major: 4, Minor: 30, ES: false} // OpenGL 4.3
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5
	Version460 = Version{Major: 4, Minor: 60, ES: false} // OpenGL 4.6

	// OpenGL ES / WebGL versions
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1
	VersionES320 = Version{Major: 3, Minor: 20, ES: true} // ES 3.2
)

// knownVersions lists the versions ParseVersion accepts.
var knownVersions = []Version{
	Version330, Version400, Version410, Version420, Version430, Version450, Version460,
	VersionES300, VersionES310, VersionES320,
}

// ParseVersion parses a version written as in a #version directive:
// "410", "410 core" or "300 es". An empty string selects Version410.
func ParseVersion(s string) (Version, error) {
	v := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if v == "" {
		return Version410, nil
	}
	v = strings.TrimSuffix(v, " core")
	for _, known := range knownVersions {
		if v == known.String() || (!known.ES && v == known.VersionNumber()) {
			return known, nil
		}
	}
	return Version{}, &ir.Error{Kind: ir.ErrUnsupportedVersion, Message: fmt.Sprintf("unknown GLSL version %q", s)}
}

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "410", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// versionLessThan returns true if the numeric version (Major*100+Minor) is
// less than the given number. For example, versionLessThan(410) returns true
// for GLSL 330 (3*100+30=330 < 410) and false for GLSL 410 (4*100+10=410).
func (v Version) versionLessThan(number int) bool {
	return int(v.Major)*100+int(v.Minor) < number
}

// SupportsStageLocations reports whether layout(location) may be used on
// vertex outputs and pixel inputs without an extension.
func (v Version) SupportsStageLocations() bool {
	if v.ES {
		return !v.versionLessThan(310)
	}
	return !v.versionLessThan(410)
}

// SupportsBindings reports whether uniforms accept layout(binding = n).
func (v Version) SupportsBindings() bool {
	if v.ES {
		return !v.versionLessThan(310)
	}
	return !v.versionLessThan(420)
}

// WriterFlags control output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagDebugInfo adds a comment with the bytecode offset and
	// instruction before every emitted statement.
	WriterFlagDebugInfo WriterFlags = 1 << iota
)

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version410 if zero.
	LangVersion Version

	// TextureBindingBase adds offset to sampler binding indices.
	// Only written when the version supports binding qualifiers.
	TextureBindingBase uint32

	// UniformBindingBase adds offset to uniform block binding indices.
	// Only written when the version supports binding qualifiers.
	UniformBindingBase uint32

	// WriterFlags control output formatting.
	WriterFlags WriterFlags

	// ForceHighPrecision selects highp default precision (ES only).
	// If false, mediump is used.
	ForceHighPrecision bool
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:        Version410,
		ForceHighPrecision: true,
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// UsedExtensions lists GLSL extensions required by the shader.
	UsedExtensions []string

	// RequiredVersion is the GLSL version written in the #version directive.
	RequiredVersion Version

	// UniformBlocks maps constant buffer binding names to GLSL block names.
	UniformBlocks map[string]string

	// Samplers maps texture binding names to GLSL sampler uniforms.
	Samplers map[string]string

	// InputLocations maps input semantics to their layout locations.
	InputLocations map[string]int
}

// Compile generates GLSL source code from a bytecode blob and its metadata
// blob. Returns the GLSL source as a string, translation info, or an error.
func Compile(bytecode, metadata []byte, options Options) (string, TranslationInfo, error) {
	// Apply defaults for zero values
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version410
	}

	bc, err := ir.DecodeBytecode(bytecode)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}
	meta, err := ir.DecodeMetadata(metadata)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	w := newWriter(bc, meta, &options)
	if err := w.writeShader(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	info := TranslationInfo{
		UsedExtensions:  w.extensions,
		RequiredVersion: options.LangVersion,
		UniformBlocks:   w.uniformBlocks,
		Samplers:        w.samplers,
		InputLocations:  w.inputLocations,
	}
	return w.String(), info, nil
}
