package magma

import (
	"runtime"
	"testing"

	"github.com/gogpu/magma/glsl"
	"github.com/gogpu/magma/hlsl"
	"github.com/gogpu/magma/msl"
)

// ---------------------------------------------------------------------------
// Test shaders at different complexity levels
// ---------------------------------------------------------------------------

// shaderSmall is a pass-through vertex shader.
const shaderSmall = `#type vertex
Output vsOut { float4 position : SV_POSITION; }
Input vsIn { float4 position : POSITION; }
Shader {
    vsOut.position = vsIn.position;
}
`

// shaderLarge is a lighting-style pixel shader with control flow and
// intrinsics.
const shaderLarge = `#type pixel
Input psIn { float2 uv : TEXCOORD; float3 normal : NORMAL; float3 worldPos : WORLDPOS; }
Output psOut { float4 color : SV_TARGET; }
Texture2D albedo : AlbedoMap;
ConstantBuffer light : Light { float3 position; float3 color; float ambient; int steps; }

Shader {
    float3 n = normalize(psIn.normal);
    float3 l = normalize(light.position - psIn.worldPos);
    float diffuse = max(dot(n, l), 0.0);
    float4 base = sample(albedo, psIn.uv);
    float3 lit = float3(base.x, base.y, base.z) * light.color * (diffuse + light.ambient);
    int i = 0;
    while (i < light.steps) {
        lit = lit * 0.5;
        i = i + 1;
    }
    if (base.w < 0.1) {
        discard;
    }
    psOut.color = float4(lit.x, lit.y, lit.z, base.w);
}
`

type benchShader struct {
	name   string
	source string
}

var shadersByComplexity = []benchShader{
	{"small", vertexSource},
	{"passthrough", shaderSmall},
	{"large", shaderLarge},
}

// ---------------------------------------------------------------------------
// End-to-End: source to blobs
// ---------------------------------------------------------------------------

// BenchmarkCompile benchmarks full MSL-to-blob compilation grouped by
// shader complexity. Reports allocations and throughput in bytes/sec.
func BenchmarkCompile(b *testing.B) {
	for _, sc := range shadersByComplexity {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(sc.source)))
			b.ResetTimer()

			var result *Shader
			for i := 0; i < b.N; i++ {
				var err error
				result, err = Compile(sc.source)
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
			}
			runtime.KeepAlive(result)
		})
	}
}

// ---------------------------------------------------------------------------
// Cross-backend comparison: same blobs assembled to every target
// ---------------------------------------------------------------------------

// BenchmarkCompileAllBackends benchmarks the backend assemblers on the same
// compiled shader.
func BenchmarkCompileAllBackends(b *testing.B) {
	shader, err := Compile(shaderLarge)
	if err != nil {
		b.Fatalf("compile failed: %v", err)
	}

	b.Run("GLSL", func(b *testing.B) {
		opts := glsl.DefaultOptions()
		b.ReportAllocs()
		b.ResetTimer()
		var result string
		for i := 0; i < b.N; i++ {
			result, _, err = glsl.Compile(shader.Bytecode, shader.Metadata, opts)
			if err != nil {
				b.Fatalf("glsl failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})

	b.Run("HLSL", func(b *testing.B) {
		opts := hlsl.DefaultOptions()
		b.ReportAllocs()
		b.ResetTimer()
		var result string
		for i := 0; i < b.N; i++ {
			result, _, err = hlsl.Compile(shader.Bytecode, shader.Metadata, opts)
			if err != nil {
				b.Fatalf("hlsl failed: %v", err)
			}
		}
		runtime.KeepAlive(result)
	})
}

// ---------------------------------------------------------------------------
// Per-stage benchmarks
// ---------------------------------------------------------------------------

// BenchmarkFullPipeline breaks the large shader down by stage.
func BenchmarkFullPipeline(b *testing.B) {
	source := shaderLarge

	b.Run("Parse", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, _, err := Parse(source); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Analyze", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, _, err := Analyze(source); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Generate", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			// Generate needs a fresh tree: annotation mutates it in place.
			b.StopTimer()
			tree, state, err := Analyze(source)
			if err != nil {
				b.Fatal(err)
			}
			b.StartTimer()
			if _, _, err := msl.Generate(tree, state); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Assemble", func(b *testing.B) {
		code, meta, err := GenerateText(source)
		if err != nil {
			b.Fatal(err)
		}
		opts := DefaultOptions()
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Assemble(code, meta, opts); err != nil {
				b.Fatal(err)
			}
		}
	})
}
