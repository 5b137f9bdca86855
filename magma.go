// Package magma provides a Pure Go compiler for MSL, the Magma Shading
// Language.
//
// magma compiles MSL source into a pair of portable blobs:
//   - Bytecode: the shader body as a big-endian instruction stream
//   - Metadata: the shader interface (inputs, outputs, textures, constant buffers)
//
// A render device hands both blobs to a backend assembler that produces
// native source:
//   - GLSL: OpenGL Shading Language 3.3+ and ES 3.0+ (default 4.1 core)
//   - HLSL: High Level Shading Language for Shader Model 5.x
//
// Example usage:
//
//	source := `
//	#type vertex
//	Output vertexOut { float4 position : SV_POSITION; }
//	Input vertexIn { float4 position : POSITION; }
//	Shader {
//	    vertexOut.position = vertexIn.position;
//	}
//	`
//	shader, err := magma.Compile(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For GLSL output, use the glsl package:
//
//	glslCode, info, err := glsl.Compile(shader.Bytecode, shader.Metadata, glsl.DefaultOptions())
//
// For HLSL output, use the hlsl package:
//
//	hlslCode, info, err := hlsl.Compile(shader.Bytecode, shader.Metadata, hlsl.DefaultOptions())
package magma

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/gogpu/magma/asm"
	"github.com/gogpu/magma/glsl"
	"github.com/gogpu/magma/hlsl"
	"github.com/gogpu/magma/ir"
	"github.com/gogpu/magma/msl"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// MaxBytecodeSize bounds the bytecode blob in bytes (default: 4096).
	// A larger program fails with NotEnoughSpace.
	MaxBytecodeSize int

	// MaxMetadataSize bounds the metadata blob in bytes (default: 4096).
	MaxMetadataSize int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		MaxBytecodeSize: asm.DefaultMaxSize,
		MaxMetadataSize: asm.DefaultMaxSize,
	}
}

// Shader is a compiled shader as a render device receives it.
type Shader struct {
	Kind     ir.ShaderKind
	Bytecode []byte
	Metadata []byte
}

// Fingerprint returns a BLAKE2b-256 digest of both blobs. Two shaders with
// the same fingerprint produce the same native source for the same backend
// options, so devices can key a translation cache on it.
func (s *Shader) Fingerprint() [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s.Bytecode)))
	h.Write(n[:])
	h.Write(s.Bytecode)
	h.Write(s.Metadata)

	var sum [blake2b.Size256]byte
	h.Sum(sum[:0])
	return sum
}

// FingerprintHex returns Fingerprint as a lowercase hex string.
func (s *Shader) FingerprintHex() string {
	sum := s.Fingerprint()
	return hex.EncodeToString(sum[:])
}

// Compile compiles MSL source code to bytecode and metadata using default
// options.
//
// This is the simplest way to compile a shader. For more control, use
// CompileWithOptions or the individual Parse/Analyze/Generate functions.
func Compile(source string) (*Shader, error) {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions compiles MSL source code with custom options.
//
// The compilation pipeline is:
//  1. Preprocess, tokenize and parse MSL source to a syntax tree
//  2. Annotate references and check types
//  3. Generate bytecode and metadata text
//  4. Assemble both texts into their binary forms
func CompileWithOptions(source string, opts CompileOptions) (*Shader, error) {
	bytecodeText, metadataText, err := GenerateText(source)
	if err != nil {
		return nil, err
	}
	return Assemble(bytecodeText, metadataText, opts)
}

// Parse runs the preprocessor, lexer and parser over MSL source.
//
// This is the first stage of compilation. The tree holds the syntactic
// structure of the shader; references are not resolved yet.
func Parse(source string) (*msl.Tree, *msl.State, error) {
	lines, header, err := msl.Preprocess(source)
	if err != nil {
		return nil, nil, fmt.Errorf("preprocess error: %w", err)
	}

	tokens, err := msl.Tokenize(lines)
	if err != nil {
		return nil, nil, fmt.Errorf("tokenization error: %w", err)
	}

	tree, state, err := msl.Parse(tokens, header)
	if err != nil {
		return nil, nil, fmt.Errorf("parse error: %w", err)
	}
	return tree, state, nil
}

// Analyze parses MSL source and resolves and type checks the tree.
func Analyze(source string) (*msl.Tree, *msl.State, error) {
	tree, state, err := Parse(source)
	if err != nil {
		return nil, nil, err
	}
	if err := msl.Annotate(tree, state); err != nil {
		return nil, nil, fmt.Errorf("annotation error: %w", err)
	}
	if err := msl.Check(tree, state); err != nil {
		return nil, nil, fmt.Errorf("type error: %w", err)
	}
	return tree, state, nil
}

// GenerateText compiles MSL source to bytecode and metadata assembly text.
func GenerateText(source string) (bytecode, metadata string, err error) {
	tree, state, err := Analyze(source)
	if err != nil {
		return "", "", err
	}
	bytecode, metadata, err = msl.Generate(tree, state)
	if err != nil {
		return "", "", fmt.Errorf("generation error: %w", err)
	}
	return bytecode, metadata, nil
}

// Assemble converts bytecode and metadata text into a Shader.
func Assemble(bytecodeText, metadataText string, opts CompileOptions) (*Shader, error) {
	if opts.MaxBytecodeSize <= 0 {
		opts.MaxBytecodeSize = asm.DefaultMaxSize
	}
	if opts.MaxMetadataSize <= 0 {
		opts.MaxMetadataSize = asm.DefaultMaxSize
	}

	metadata, err := asm.Metadata(metadataText, opts.MaxMetadataSize)
	if err != nil {
		return nil, fmt.Errorf("metadata assembly error: %w", err)
	}
	meta, err := ir.DecodeMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata assembly error: %w", err)
	}
	bytecode, err := asm.Bytecode(bytecodeText, opts.MaxBytecodeSize)
	if err != nil {
		return nil, fmt.Errorf("bytecode assembly error: %w", err)
	}

	return &Shader{Kind: meta.Kind, Bytecode: bytecode, Metadata: metadata}, nil
}

// CompileGLSL compiles MSL source straight to GLSL.
func CompileGLSL(source string, opts glsl.Options) (string, glsl.TranslationInfo, error) {
	shader, err := Compile(source)
	if err != nil {
		return "", glsl.TranslationInfo{}, err
	}
	return glsl.Compile(shader.Bytecode, shader.Metadata, opts)
}

// CompileHLSL compiles MSL source straight to HLSL.
func CompileHLSL(source string, opts *hlsl.Options) (string, *hlsl.TranslationInfo, error) {
	shader, err := Compile(source)
	if err != nil {
		return "", nil, err
	}
	return hlsl.Compile(shader.Bytecode, shader.Metadata, opts)
}
