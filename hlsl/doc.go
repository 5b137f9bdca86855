// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl provides HLSL (High-Level Shading Language) code generation
// from magma bytecode and metadata.
//
// HLSL is Microsoft's shader language for DirectX. This package generates
// HLSL source code for Shader Model 5.0 and 5.1 (FXC) and 6.0 (DXC).
//
// # Usage
//
//	options := hlsl.DefaultOptions()
//	options.ShaderModel = hlsl.ShaderModel5_0
//
//	hlslCode, info, err := hlsl.Compile(bytecode, metadata, options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// compile hlslCode with profile info.Profile, entry point info.EntryPointName
//
// # Register Binding
//
// HLSL uses register-based resource binding with spaces:
//
//	cbuffer      : register(b#, space#)  // Constant buffers
//	Texture2D    : register(t#, space#)  // Textures
//	SamplerState : register(s#, space#)  // One sampler per texture
//
// The BindingMap in Options maps metadata binding names to registers.
// Shader Model 5.0 has no register spaces.
//
// # Stage Interface
//
// Inputs and outputs become fields of the VSInput/VSOutput (or
// PSInput/PSOutput) structs, using the metadata names as semantics. Output
// index 0 is SV_Position in vertex shaders and SV_Depth in pixel shaders;
// the remaining pixel outputs are SV_Target0, SV_Target1 and so on.
package hlsl
