package glsl

import (
	"runtime"
	"testing"

	"github.com/gogpu/magma/asm"
)

// ---------------------------------------------------------------------------
// Test programs for GLSL backend benchmarks
// ---------------------------------------------------------------------------

// glslBenchLarge is a lighting-style pixel program.
var glslBenchLarge = pixelBody("DECLF4 6\nVARIN0 3\nVARIN1 0\nVAROUT 6\nSMPLE2D\n" +
	"DECLF1 7\nVARIN0 1\nVARIN1 4\nVAROUT 7\nDOT\n" +
	"VARIN0 6\nVARIN1 7\nVAROUT 6\nMUL\n" +
	"DECLB 8\nVARIN0 7\nVARIN1 5\nVAROUT 8\nGT\nVARIN0 8\nIF\nOPSCOPE\nDISCARD\nCLSCOPE\n" +
	"VARIN0 6\nVAROUT 2\nSATURATE\n")

type glslBenchCase struct {
	name string
	code string
	meta string
}

var glslBenchPrograms = []glslBenchCase{
	{"small", vertexBytecode, vertexMetadata},
	{"large", glslBenchLarge, pixelMetadata},
}

// ---------------------------------------------------------------------------
// GLSL emit benchmarks
// ---------------------------------------------------------------------------

// BenchmarkGLSLEmit benchmarks GLSL code generation (bytecode to string)
// for programs of different length.
func BenchmarkGLSLEmit(b *testing.B) {
	for _, bc := range glslBenchPrograms {
		b.Run(bc.name, func(b *testing.B) {
			code, err := asm.Bytecode(bc.code, asm.DefaultMaxSize)
			if err != nil {
				b.Fatalf("assemble bytecode: %v", err)
			}
			meta, err := asm.Metadata(bc.meta, asm.DefaultMaxSize)
			if err != nil {
				b.Fatalf("assemble metadata: %v", err)
			}
			opts := DefaultOptions()

			b.ReportAllocs()
			b.SetBytes(int64(len(code)))
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				result, _, err = Compile(code, meta, opts)
				if err != nil {
					b.Fatalf("glsl emit failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// BenchmarkGLSLEmitES benchmarks GLSL ES code generation to compare
// overhead of extensions and precision qualifiers.
func BenchmarkGLSLEmitES(b *testing.B) {
	for _, bc := range glslBenchPrograms {
		b.Run(bc.name, func(b *testing.B) {
			code, err := asm.Bytecode(bc.code, asm.DefaultMaxSize)
			if err != nil {
				b.Fatalf("assemble bytecode: %v", err)
			}
			meta, err := asm.Metadata(bc.meta, asm.DefaultMaxSize)
			if err != nil {
				b.Fatalf("assemble metadata: %v", err)
			}
			opts := Options{LangVersion: VersionES300, ForceHighPrecision: true}

			b.ReportAllocs()
			b.ResetTimer()

			var result string
			for i := 0; i < b.N; i++ {
				result, _, err = Compile(code, meta, opts)
				if err != nil {
					b.Fatalf("glsl emit failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}
