// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/magma/ir"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_1 for maximum compatibility.
	ShaderModel ShaderModel

	// BindingMap maps metadata binding names of constant buffers and
	// textures to HLSL register targets. A texture's sampler uses the
	// same register index in the s registers.
	// If a binding is not found in the map and FakeMissingBindings is false,
	// compilation will fail with ErrMissingBinding.
	BindingMap map[string]BindTarget

	// FakeMissingBindings generates automatic bindings for resources
	// not found in BindingMap. Useful for testing or simple shaders.
	FakeMissingBindings bool
}

// DefaultOptions returns sensible default options for HLSL generation.
// Uses Shader Model 5.1 with automatic bindings.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel:         ShaderModel5_1,
		BindingMap:          make(map[string]BindTarget),
		FakeMissingBindings: true,
	}
}

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// EntryPointName is the name of the generated entry point.
	EntryPointName string

	// Profile is the compiler target profile, e.g. "vs_5_1".
	Profile string

	// RegisterBindings maps resource names to their HLSL register bindings.
	// Format: "resourceName" -> "register(t0, space0)"
	RegisterBindings map[string]string
}

// Compile generates HLSL source code from a bytecode blob and its metadata
// blob. Returns the HLSL source, translation info, or an error.
func Compile(bytecode, metadata []byte, options *Options) (string, *TranslationInfo, error) {
	// Apply defaults for nil options
	if options == nil {
		options = DefaultOptions()
	}

	bc, err := ir.DecodeBytecode(bytecode)
	if err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}
	meta, err := ir.DecodeMetadata(metadata)
	if err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}

	// Create writer
	w := newWriter(bc, meta, options)

	// Generate HLSL code
	if err := w.writeShader(); err != nil {
		return "", nil, fmt.Errorf("hlsl: %w", err)
	}

	info := &TranslationInfo{
		EntryPointName:   EntryPointName,
		Profile:          options.ShaderModel.Profile(meta.Kind),
		RegisterBindings: w.registerBindings,
	}

	return w.String(), info, nil
}
