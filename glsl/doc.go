// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl provides a GLSL (OpenGL Shading Language) backend for magma.
//
// This package generates GLSL source code from a compiled bytecode blob and
// its metadata blob. It supports multiple GLSL versions:
//
//   - GLSL 4.10 Core: the default, Desktop OpenGL 4.1+
//   - GLSL 3.30 Core: Desktop OpenGL 3.3+ (separate shader objects extension)
//   - GLSL 4.20+ Core: explicit binding qualifiers
//   - GLSL ES 3.00 / 3.10: WebGL 2.0 and mobile
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(bytecode, metadata, glsl.DefaultOptions())
//
// # Naming
//
// Every variable is named after its metadata index: in_<i> for inputs,
// out_<i> for outputs, tex_<i> for textures, buf_<buffer>_<offset> for
// constant buffer members and local_<i> for declarations in the body.
// Output index 0 is gl_Position in vertex shaders and gl_FragDepth in
// pixel shaders.
//
// # Bytecode Interpretation
//
// VARIN0, VARIN1 and VAROUT select the operands of the next operations and
// emit nothing. Each other instruction becomes one line of GLSL, for
// example MULMAT becomes "out = in0 * in1;".
package glsl
