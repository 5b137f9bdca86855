package msl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/magma/ir"
)

// SourceLine is a line of shader source with comments removed.
type SourceLine struct {
	Text string
	Line int // 1-based line number in the original source
}

// Header holds the directives extracted by the preprocessor.
type Header struct {
	Major int
	Minor int
	Kind  ir.ShaderKind
}

var (
	versionDirective = regexp.MustCompile(`^\s*#version\s+(\d+)\.(\d+)\s*$`)
	typeDirective    = regexp.MustCompile(`^\s*#type\s+(\w+)\s*$`)
)

// Preprocess strips comments and directives from source.
//
// Lines that are empty after stripping are dropped, so every returned line
// has some content. A missing #version directive means the current version;
// a missing #type directive is an error.
func Preprocess(source string) ([]SourceLine, Header, error) {
	header := Header{Major: ir.CurrentMajor, Minor: ir.CurrentMinor}
	var (
		lines       []SourceLine
		inComment   bool
		seenType    bool
		seenVersion bool
	)

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		raw = strings.TrimRight(raw, "\r")

		var text string
		text, inComment = stripComments(raw, inComment)

		if m := versionDirective.FindStringSubmatch(text); m != nil {
			if seenVersion {
				return nil, header, ir.NewErrorAt(ir.ErrDuplicateDirective, lineNo, 0, "#version is declared more than once")
			}
			seenVersion = true
			header.Major, _ = strconv.Atoi(m[1])
			header.Minor, _ = strconv.Atoi(m[2])
			continue
		}

		if m := typeDirective.FindStringSubmatch(text); m != nil {
			if seenType {
				return nil, header, ir.NewErrorAt(ir.ErrDuplicateDirective, lineNo, 0, "#type is declared more than once")
			}
			kind, ok := ir.ParseShaderKind(m[1])
			if !ok {
				return nil, header, ir.NewErrorAt(ir.ErrUnknownShaderType, lineNo, 0,
					"unknown shader type %q\nexpected \"vertex\" or \"pixel\"", m[1])
			}
			seenType = true
			header.Kind = kind
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, SourceLine{Text: text, Line: lineNo})
	}

	if !seenType {
		return nil, header, ir.NewError(ir.ErrMissingShaderType,
			"no #type directive found\nadd \"#type vertex\" or \"#type pixel\" to the shader")
	}
	return lines, header, nil
}

// stripComments blanks out comment text in one line, keeping the columns
// of the remaining characters. inComment reports whether the line starts
// inside a block comment; the returned flag says whether the next line does.
func stripComments(line string, inComment bool) (string, bool) {
	b := []byte(line)
	for i := 0; i < len(b); i++ {
		if inComment {
			if b[i] == '*' && i+1 < len(b) && b[i+1] == '/' {
				inComment = false
				b[i+1] = ' '
			}
			b[i] = ' '
			continue
		}
		if b[i] == '/' && i+1 < len(b) {
			switch b[i+1] {
			case '/':
				return string(b[:i]), false
			case '*':
				inComment = true
				b[i] = ' '
				i++
				b[i] = ' '
			}
		}
	}
	return string(b), inComment
}
