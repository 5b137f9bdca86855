// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/magma/ir"
)

// ShaderModel represents a DirectX Shader Model version.
// Shader Models define the feature set available for shader compilation.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel5_0 is the base SM5 version (DirectX 11).
	// Registers have no space qualifier.
	ShaderModel5_0 ShaderModel = iota

	// ShaderModel5_1 provides register spaces (default).
	// This is the recommended minimum for maximum compatibility.
	ShaderModel5_1

	// ShaderModel6_0 introduces DXIL.
	ShaderModel6_0
)

// ParseShaderModel parses a shader model written as "5.1" or "5_1".
// An empty string selects ShaderModel5_1.
func ParseShaderModel(s string) (ShaderModel, error) {
	v := strings.ReplaceAll(strings.TrimSpace(s), ".", "_")
	if v == "" {
		return ShaderModel5_1, nil
	}
	for sm := ShaderModel5_0; sm <= ShaderModel6_0; sm++ {
		if v == sm.ProfileSuffix() {
			return sm, nil
		}
	}
	return 0, &ir.Error{Kind: ir.ErrUnsupportedVersion, Message: fmt.Sprintf("unknown shader model %q", s)}
}

// String returns a human-readable representation of the shader model.
// Example: "SM 5.1", "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "5_1", "6_0"
// Used to construct profiles like "vs_5_1", "ps_6_0".
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Profile returns the compiler target profile for a shader kind,
// e.g. "vs_5_1" or "ps_5_0".
func (sm ShaderModel) Profile(kind ir.ShaderKind) string {
	return ShaderStageToHLSL(kind) + "_" + sm.ProfileSuffix()
}

// version returns the major and minor version numbers.
func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel5_0:
		return 5, 0
	case ShaderModel5_1:
		return 5, 1
	case ShaderModel6_0:
		return 6, 0
	default:
		return 5, 1 // Default to 5.1 for unknown
	}
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// SupportsRegisterSpaces returns true if registers accept a space
// qualifier. Register spaces were introduced in Shader Model 5.1.
func (sm ShaderModel) SupportsRegisterSpaces() bool {
	return sm >= ShaderModel5_1
}

// SupportsDXIL returns true if this shader model uses DXIL output.
// Shader Model 6.0+ uses DXIL (DirectX Intermediate Language).
// Earlier models use DXBC (DirectX Bytecode).
func (sm ShaderModel) SupportsDXIL() bool {
	return sm >= ShaderModel6_0
}
