package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/magma/glsl"
	"github.com/gogpu/magma/hlsl"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
target: hlsl
limits:
  max_bytecode_size: 8192
glsl:
  version: 300 es
  uniform_binding_base: 2
  high_precision: false
  debug_info: true
hlsl:
  shader_model: "5.0"
  fake_missing_bindings: false
  bindings:
    Material: {space: 0, register: 3}
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Target != targetHLSL {
		t.Errorf("Target = %q, want hlsl", cfg.Target)
	}

	opts := cfg.CompileOptions()
	if opts.MaxBytecodeSize != 8192 || opts.MaxMetadataSize != 4096 {
		t.Errorf("CompileOptions = %+v", opts)
	}

	g, err := cfg.GLSLOptions()
	if err != nil {
		t.Fatalf("GLSLOptions: %v", err)
	}
	if g.LangVersion != glsl.VersionES300 || g.UniformBindingBase != 2 || g.ForceHighPrecision {
		t.Errorf("GLSLOptions = %+v", g)
	}
	if g.WriterFlags&glsl.WriterFlagDebugInfo == 0 {
		t.Error("debug_info should set WriterFlagDebugInfo")
	}

	h, err := cfg.HLSLOptions()
	if err != nil {
		t.Fatalf("HLSLOptions: %v", err)
	}
	if h.ShaderModel != hlsl.ShaderModel5_0 || h.FakeMissingBindings {
		t.Errorf("HLSLOptions = %+v", h)
	}
	if bt := h.BindingMap["Material"]; bt.Register != 3 || bt.Space != 0 {
		t.Errorf("Material binding = %+v", bt)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("ParseConfig(empty): %v", err)
	}
	if cfg.Target != targetBytecode {
		t.Errorf("Target = %q, want bytecode", cfg.Target)
	}
	g, err := cfg.GLSLOptions()
	if err != nil || g.LangVersion != glsl.Version410 || !g.ForceHighPrecision {
		t.Errorf("default GLSLOptions = %+v, %v", g, err)
	}
	h, err := cfg.HLSLOptions()
	if err != nil || h.ShaderModel != hlsl.ShaderModel5_1 || !h.FakeMissingBindings {
		t.Errorf("default HLSLOptions = %+v, %v", h, err)
	}
}

func TestParseConfig_GLSLVersions(t *testing.T) {
	tests := []struct {
		in   string
		want glsl.Version
	}{
		{"410", glsl.Version410},
		{"410 core", glsl.Version410},
		{"330", glsl.Version330},
		{"460 core", glsl.Version460},
		{"310 es", glsl.VersionES310},
		{"320 ES", glsl.VersionES320},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{Target: targetGLSL, GLSL: GLSLConfig{Version: tt.in}}
			got, err := cfg.glslVersion()
			if err != nil {
				t.Fatalf("glslVersion: %v", err)
			}
			if got != tt.want {
				t.Errorf("glslVersion(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown target", "target: spirv\n", "unknown target"},
		{"unknown glsl version", "glsl:\n  version: \"300\"\n", "unknown GLSL version"},
		{"unknown shader model", "hlsl:\n  shader_model: \"4.0\"\n", "unknown shader model"},
		{"unknown key", "tagret: glsl\n", "tagret"},
		{"bad yaml", "target: [\n", "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mslc.yaml")
	if err := os.WriteFile(path, []byte("target: glsl\nglsl:\n  version: \"450\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Target != targetGLSL || cfg.GLSL.Version != "450" {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
