// Package ir defines the portable form of a compiled MSL shader.
//
// A compiled shader is a pair of binary blobs:
//   - Bytecode: a register-indexed instruction stream (see Opcode)
//   - Metadata: the shader interface (inputs, outputs, textures, constant buffers)
//
// Both are produced by the asm package and consumed by the backends
// (glsl, hlsl). This package owns the shared vocabulary used by every
// stage: VariableType, ShaderKind, the opcode table with its fixed operand
// widths, the binary codecs and the Error taxonomy.
//
// # Bytecode layout
//
//	"MSLB" major:u8 minor:u8 (opcode:u8 operand:[Width]byte)*
//
// # Metadata layout
//
//	"MSLM" major:u32 minor:u32 kind:u32
//	for inputs, outputs, textures, constant buffers:
//	    count:u32 (index:u32 nameLen:u32 name type:u32)*
//	count:u32 (bufferIndex:u32 bufferOffset:u32 index:u32 nameLen:u32 name type:u32)*
//
// All multi-byte fields are big-endian.
package ir
