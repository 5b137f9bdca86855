// Package msl implements the front end of the MSL (Magma Shading Language)
// compiler.
//
// MSL is a small C-like shading language. A shader declares its interface
// at the top level and its body in a single Shader block:
//
//	#version 2.0
//	#type vertex
//
//	Output vertexOut { float4 position : SV_POSITION; }
//	Input vertexIn { float4 position : POSITION; }
//	ConstantBuffer transform : Transform { float44 mvp; }
//
//	Shader {
//	    vertexOut.position = transform.mvp * vertexIn.position;
//	}
//
// # Components
//
// The stages run strictly in order, each consuming the previous output:
//
//   - Preprocess: strips comments and reads #version and #type
//   - Tokenize: table-driven regular expression lexer
//   - Parse: recursive descent parser building a Tree and a State
//   - Annotate: scope and name resolution, rewriting the Tree in place
//   - Check: type checking
//   - Generate: bytecode and metadata assembly text
//
// The assembly text is turned into binary blobs by package asm and into
// native shader source by the glsl and hlsl backends.
//
// # Memory
//
// The syntax tree, the scopes and the variables are arenas addressed by
// NodeID, ScopeID and VariableID. Nothing points back into them, so a
// compilation releases everything by dropping its Tree and State.
package msl
