package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/magma"
	"github.com/gogpu/magma/glsl"
	"github.com/gogpu/magma/hlsl"
)

// Output targets.
const (
	targetBytecode = "bytecode"
	targetGLSL     = "glsl"
	targetHLSL     = "hlsl"
	targetAsm      = "asm"
)

// Config is the optional YAML configuration file of mslc. Flags given on
// the command line override it.
type Config struct {
	Target string       `yaml:"target,omitempty"` // bytecode|glsl|hlsl|asm
	Limits LimitsConfig `yaml:"limits,omitempty"`
	GLSL   GLSLConfig   `yaml:"glsl,omitempty"`
	HLSL   HLSLConfig   `yaml:"hlsl,omitempty"`
}

// LimitsConfig bounds the size of the compiled blobs.
type LimitsConfig struct {
	MaxBytecodeSize int `yaml:"max_bytecode_size,omitempty"`
	MaxMetadataSize int `yaml:"max_metadata_size,omitempty"`
}

// GLSLConfig selects GLSL backend options.
type GLSLConfig struct {
	Version            string `yaml:"version,omitempty"` // "410", "330", "300 es", ...
	TextureBindingBase uint32 `yaml:"texture_binding_base,omitempty"`
	UniformBindingBase uint32 `yaml:"uniform_binding_base,omitempty"`
	HighPrecision      *bool  `yaml:"high_precision,omitempty"`
	DebugInfo          bool   `yaml:"debug_info,omitempty"`
}

// HLSLConfig selects HLSL backend options.
type HLSLConfig struct {
	ShaderModel         string                   `yaml:"shader_model,omitempty"` // "5.0", "5.1", "6.0"
	FakeMissingBindings *bool                    `yaml:"fake_missing_bindings,omitempty"`
	Bindings            map[string]BindingConfig `yaml:"bindings,omitempty"`
}

// BindingConfig is the register of one cbuffer or texture.
type BindingConfig struct {
	Space    uint8  `yaml:"space"`
	Register uint32 `yaml:"register"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{Target: targetBytecode}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration. Unknown keys are an error so a
// misspelled option does not go unnoticed.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Target {
	case targetBytecode, targetGLSL, targetHLSL, targetAsm:
	default:
		return fmt.Errorf("config: unknown target %q (want bytecode, glsl, hlsl or asm)", c.Target)
	}
	if _, err := c.glslVersion(); err != nil {
		return err
	}
	if _, err := c.shaderModel(); err != nil {
		return err
	}
	return nil
}

// CompileOptions returns the front end options.
func (c *Config) CompileOptions() magma.CompileOptions {
	opts := magma.DefaultOptions()
	if c.Limits.MaxBytecodeSize > 0 {
		opts.MaxBytecodeSize = c.Limits.MaxBytecodeSize
	}
	if c.Limits.MaxMetadataSize > 0 {
		opts.MaxMetadataSize = c.Limits.MaxMetadataSize
	}
	return opts
}

// GLSLOptions returns the GLSL backend options.
func (c *Config) GLSLOptions() (glsl.Options, error) {
	opts := glsl.DefaultOptions()
	version, err := c.glslVersion()
	if err != nil {
		return opts, err
	}
	opts.LangVersion = version
	opts.TextureBindingBase = c.GLSL.TextureBindingBase
	opts.UniformBindingBase = c.GLSL.UniformBindingBase
	if c.GLSL.HighPrecision != nil {
		opts.ForceHighPrecision = *c.GLSL.HighPrecision
	}
	if c.GLSL.DebugInfo {
		opts.WriterFlags |= glsl.WriterFlagDebugInfo
	}
	return opts, nil
}

// HLSLOptions returns the HLSL backend options.
func (c *Config) HLSLOptions() (*hlsl.Options, error) {
	opts := hlsl.DefaultOptions()
	sm, err := c.shaderModel()
	if err != nil {
		return nil, err
	}
	opts.ShaderModel = sm
	if c.HLSL.FakeMissingBindings != nil {
		opts.FakeMissingBindings = *c.HLSL.FakeMissingBindings
	}
	for name, b := range c.HLSL.Bindings {
		opts.BindingMap[name] = hlsl.DefaultBindTarget().WithSpace(b.Space).WithRegister(b.Register)
	}
	return opts, nil
}

// glslVersion parses GLSL.Version; "410" and "410 core" are the same.
func (c *Config) glslVersion() (glsl.Version, error) {
	v, err := glsl.ParseVersion(c.GLSL.Version)
	if err != nil {
		return v, fmt.Errorf("config: %w", err)
	}
	return v, nil
}

// shaderModel parses HLSL.ShaderModel written as "5.1" or "5_1".
func (c *Config) shaderModel() (hlsl.ShaderModel, error) {
	sm, err := hlsl.ParseShaderModel(c.HLSL.ShaderModel)
	if err != nil {
		return sm, fmt.Errorf("config: %w", err)
	}
	return sm, nil
}
