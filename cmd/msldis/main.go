// msldis - magma bytecode and metadata disassembler
// Prints text that mslc -target asm produces and the assembler accepts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/magma/asm"
	"github.com/gogpu/magma/ir"
)

var (
	metaPath = flag.String("meta", "", "metadata blob to disassemble after the bytecode")
	offsets  = flag.Bool("offsets", false, "prefix each instruction with its code offset")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: msldis [-meta file.meta] [-offsets] <file.bin>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bc, err := ir.DecodeBytecode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("; magma bytecode\n")
	fmt.Printf("; Version: %d.%d\n", bc.Major, bc.Minor)
	fmt.Printf("; Size: %d bytes\n", len(data))

	if *offsets {
		fmt.Printf("MAJOR %d\nMINOR %d\n", bc.Major, bc.Minor)
		r := ir.NewReader(bc.Code)
		for r.Next() {
			in := r.Instruction()
			fmt.Printf("%s ; @%04X\n", asm.FormatInstruction(in), in.Offset)
		}
		if err := r.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "; ERROR: %v\n", err)
			os.Exit(1)
		}
	} else {
		text, err := asm.DisassembleBytecode(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(text)
	}

	if *metaPath == "" {
		return
	}
	meta, err := os.ReadFile(*metaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	text, err := asm.DisassembleMetadata(meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Printf("; magma metadata\n")
	fmt.Printf("; Size: %d bytes\n", len(meta))
	fmt.Print(text)
}
