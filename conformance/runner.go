package conformance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/magma"
	"github.com/gogpu/magma/asm"
	"github.com/gogpu/magma/glsl"
	"github.com/gogpu/magma/hlsl"
	"github.com/gogpu/magma/ir"
)

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Output     string
	Error      error
}

// SummaryStats counts results by outcome
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// Runner compiles conformance cases and checks their expectations
type Runner struct {
	options magma.CompileOptions
}

// NewRunner creates a runner with the default blob limits
func NewRunner() *Runner {
	return &Runner{options: magma.DefaultOptions()}
}

// Run executes one test
func (r *Runner) Run(test LoadedTest) TestResult {
	result := TestResult{Test: test}

	if skip, reason := test.Test.IsSkipped(); skip {
		result.Skipped = true
		result.SkipReason = reason
		return result
	}

	output, shader, err := r.compile(test.Test)
	result.Output = output
	result.Passed, result.Error = checkExpectation(test.Test.Expect, output, shader, err)
	return result
}

// RunAll executes all tests in order
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, 0, len(tests))
	for _, test := range tests {
		results = append(results, r.Run(test))
	}
	return results
}

// ComputeStats aggregates results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}

// compile runs the pipeline up to the case target. The returned shader is
// nil for the asm target and on front end failure.
func (r *Runner) compile(tc TestCase) (string, *magma.Shader, error) {
	if tc.TargetOrDefault() == TargetAsm {
		code, meta, err := magma.GenerateText(tc.Source)
		if err != nil {
			return "", nil, err
		}
		return code + meta, nil, nil
	}

	opts := r.options
	if tc.MaxSize > 0 {
		opts.MaxBytecodeSize = tc.MaxSize
		opts.MaxMetadataSize = tc.MaxSize
	}
	shader, err := magma.CompileWithOptions(tc.Source, opts)
	if err != nil {
		return "", nil, err
	}

	switch tc.TargetOrDefault() {
	case TargetGLSL:
		gopts := glsl.DefaultOptions()
		if gopts.LangVersion, err = glsl.ParseVersion(tc.GLSLVersion); err != nil {
			return "", shader, fmt.Errorf("glsl: %w", err)
		}
		out, _, err := glsl.Compile(shader.Bytecode, shader.Metadata, gopts)
		return out, shader, err

	case TargetHLSL:
		hopts := hlsl.DefaultOptions()
		if hopts.ShaderModel, err = hlsl.ParseShaderModel(tc.ShaderModel); err != nil {
			return "", shader, fmt.Errorf("hlsl: %w", err)
		}
		for _, b := range tc.Bindings {
			hopts.BindingMap[b.Name] = hlsl.DefaultBindTarget().WithSpace(b.Space).WithRegister(b.Register)
		}
		if len(tc.Bindings) > 0 {
			hopts.FakeMissingBindings = false
		}
		out, _, err := hlsl.Compile(shader.Bytecode, shader.Metadata, hopts)
		return out, shader, err
	}

	code, err := asm.DisassembleBytecode(shader.Bytecode)
	if err != nil {
		return "", shader, err
	}
	meta, err := asm.DisassembleMetadata(shader.Metadata)
	if err != nil {
		return "", shader, err
	}
	return code + meta, shader, nil
}

// checkExpectation checks if the result matches the expected outcome
func checkExpectation(expect Expectation, output string, shader *magma.Shader, err error) (bool, error) {
	if expect.Error != "" || expect.Stage != "" {
		if err == nil {
			return false, fmt.Errorf("expected error %s, compilation succeeded", expect.Error)
		}
		if expect.Error != "" {
			want, ok := errorNameToKind(expect.Error)
			if !ok {
				return false, fmt.Errorf("unknown error kind: %s", expect.Error)
			}
			got, ok := ir.KindOf(err)
			if !ok || got != want {
				return false, fmt.Errorf("expected error %s, got %v", expect.Error, err)
			}
		}
		if expect.Stage != "" && !strings.HasPrefix(err.Error(), expect.Stage) {
			return false, fmt.Errorf("expected %s, got %v", expect.Stage, err)
		}
		return true, nil
	}

	if err != nil {
		return false, fmt.Errorf("unexpected error: %w", err)
	}

	if expect.Shader != "" {
		if shader == nil {
			return false, errors.New("shader kind is only known for compiled targets")
		}
		if got := shader.Kind.String(); got != strings.ToUpper(expect.Shader) {
			return false, fmt.Errorf("expected %s shader, got %s", expect.Shader, got)
		}
	}

	for _, want := range expect.Contains {
		if !strings.Contains(output, want) {
			return false, fmt.Errorf("output does not contain %q:\n%s", want, output)
		}
	}
	for _, unwanted := range expect.NotContains {
		if strings.Contains(output, unwanted) {
			return false, fmt.Errorf("output contains %q:\n%s", unwanted, output)
		}
	}

	return true, nil
}

// errorNameToKind maps a taxonomy name such as "TypeMismatch" to its kind
func errorNameToKind(name string) (ir.ErrorKind, bool) {
	for k := ir.ErrUnknownShaderType; k <= ir.ErrMissingBinding; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}
