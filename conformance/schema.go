package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single shader compilation within a suite
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"`         // bool or string
	Source      string      `yaml:"source"`                 // MSL program text
	Target      string      `yaml:"target,omitempty"`       // bytecode|asm|glsl|hlsl
	GLSLVersion string      `yaml:"glsl_version,omitempty"` // "410", "300 es", ...
	ShaderModel string      `yaml:"shader_model,omitempty"` // "5.0", "5.1", "6.0"
	Bindings    []Binding   `yaml:"bindings,omitempty"`     // hlsl register overrides
	MaxSize     int         `yaml:"max_size,omitempty"`     // bytecode and metadata limit
	Expect      Expectation `yaml:"expect"`
}

// Binding assigns an HLSL register to a named cbuffer or texture
type Binding struct {
	Name     string `yaml:"name"`
	Space    uint8  `yaml:"space"`
	Register uint32 `yaml:"register"`
}

// Expectation defines what result is expected from a test
type Expectation struct {
	Error       string   `yaml:"error,omitempty"`        // error kind: TypeMismatch, NotEnoughSpace, ...
	Stage       string   `yaml:"stage,omitempty"`        // error prefix: "parse error", "hlsl", ...
	Shader      string   `yaml:"shader,omitempty"`       // VERTEX|PIXEL
	Contains    []string `yaml:"contains,omitempty"`     // substrings of the output
	NotContains []string `yaml:"not_contains,omitempty"` // substrings absent from the output
}

// Target names.
const (
	TargetBytecode = "bytecode"
	TargetAsm      = "asm"
	TargetGLSL     = "glsl"
	TargetHLSL     = "hlsl"
)

// TargetOrDefault returns the case target, bytecode when unset
func (tc *TestCase) TargetOrDefault() string {
	if tc.Target == "" {
		return TargetBytecode
	}
	return tc.Target
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}
