// Command mslc is the magma shader compiler CLI.
//
// Usage:
//
//	mslc [options] <input>
//
// Examples:
//
//	mslc -o shader.bin shader.msl            # Compile to bytecode + shader.bin.meta
//	mslc -target glsl shader.msl             # Print GLSL
//	mslc -target hlsl -o shader.hlsl shader.msl
//	mslc -target asm shader.msl              # Print bytecode and metadata text
//	mslc -config mslc.yaml -v shader.msl     # Options from YAML, stage timings
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/magma"
	"github.com/gogpu/magma/glsl"
	"github.com/gogpu/magma/hlsl"
	"github.com/gogpu/magma/ir"
)

var (
	output     = flag.String("o", "", "output file (default: stdout)")
	metaOutput = flag.String("meta", "", "metadata output file for the bytecode target (default: <o>.meta)")
	target     = flag.String("target", targetBytecode, "output: bytecode, glsl, hlsl or asm")
	configPath = flag.String("config", "", "YAML configuration file")
	verbose    = flag.Bool("v", false, "log stage timings to stderr")
	version    = flag.Bool("version", false, "print version")
)

const magmaVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("mslc version %s\n", magmaVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inputPath := args[0]
	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, inputPath, string(source), logger); err != nil {
		var cerr *ir.Error
		if errors.As(err, &cerr) && cerr.Line > 0 {
			fmt.Fprintf(os.Stderr, "%s:\n%s", inputPath, cerr.FormatWithContext(string(source)))
		}
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies explicitly set flags.
func loadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "target" {
			cfg.Target = *target
		}
	})
	return cfg, cfg.Validate()
}

// run compiles source for the configured target and writes the result.
func run(cfg *Config, inputPath, source string, logger *slog.Logger) error {
	start := time.Now()
	codeText, metaText, err := magma.GenerateText(source)
	if err != nil {
		return err
	}
	logger.Info("front end", "file", inputPath, "elapsed", time.Since(start))

	if cfg.Target == targetAsm {
		return writeOutput(*output, []byte(codeText+"\n"+metaText))
	}

	start = time.Now()
	shader, err := magma.Assemble(codeText, metaText, cfg.CompileOptions())
	if err != nil {
		return err
	}
	logger.Info("assemble", "kind", shader.Kind, "bytecode", len(shader.Bytecode),
		"metadata", len(shader.Metadata), "fingerprint", shader.FingerprintHex(), "elapsed", time.Since(start))

	switch cfg.Target {
	case targetGLSL:
		opts, err := cfg.GLSLOptions()
		if err != nil {
			return err
		}
		start = time.Now()
		code, info, err := glsl.Compile(shader.Bytecode, shader.Metadata, opts)
		if err != nil {
			return err
		}
		logger.Info("glsl", "version", info.RequiredVersion, "extensions", info.UsedExtensions, "elapsed", time.Since(start))
		return writeOutput(*output, []byte(code))

	case targetHLSL:
		opts, err := cfg.HLSLOptions()
		if err != nil {
			return err
		}
		start = time.Now()
		code, info, err := hlsl.Compile(shader.Bytecode, shader.Metadata, opts)
		if err != nil {
			return err
		}
		logger.Info("hlsl", "profile", info.Profile, "entry", info.EntryPointName, "elapsed", time.Since(start))
		return writeOutput(*output, []byte(code))
	}

	if err := writeOutput(*output, shader.Bytecode); err != nil {
		return err
	}
	metaPath := *metaOutput
	if metaPath == "" && *output != "" {
		metaPath = *output + ".meta"
	}
	if metaPath == "" {
		logger.Warn("metadata not written; pass -o or -meta")
		return nil
	}
	if err := os.WriteFile(metaPath, shader.Metadata, 0644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	if *output != "" {
		fmt.Printf("Successfully compiled %s to %s (%d bytes) and %s (%d bytes)\n",
			inputPath, *output, len(shader.Bytecode), metaPath, len(shader.Metadata))
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: mslc [options] <input.msl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  mslc -o shader.bin shader.msl     Compile to bytecode and shader.bin.meta\n")
	fmt.Fprintf(os.Stderr, "  mslc -target glsl shader.msl      Print GLSL to stdout\n")
	fmt.Fprintf(os.Stderr, "  mslc -target asm shader.msl       Print bytecode and metadata text\n")
	fmt.Fprintf(os.Stderr, "  mslc -config mslc.yaml shader.msl Read options from YAML\n")
}
