package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes shader compilation errors.
type ErrorKind uint8

const (
	// ErrUnknownShaderType indicates a #type directive with an unknown value.
	ErrUnknownShaderType ErrorKind = iota

	// ErrMissingShaderType indicates the source has no #type directive.
	ErrMissingShaderType

	// ErrDuplicateDirective indicates #type or #version appeared twice.
	ErrDuplicateDirective

	// ErrUnknownCharacter indicates input that no lexer rule matches.
	ErrUnknownCharacter

	// ErrUnexpectedToken indicates a token other than the one the grammar requires.
	ErrUnexpectedToken

	// ErrUnexpectedEOF indicates the token stream ended early.
	ErrUnexpectedEOF

	// ErrDuplicateShaderBlock indicates a second Shader, Input or Output block.
	ErrDuplicateShaderBlock

	// ErrDuplicateIdentifier indicates a name declared twice in one scope.
	ErrDuplicateIdentifier

	// ErrUnresolvedIdentifier indicates a name that resolves to nothing.
	ErrUnresolvedIdentifier

	// ErrInvalidLValue indicates assignment to something that is not writable.
	ErrInvalidLValue

	// ErrTypeMismatch indicates operand types that do not fit together.
	ErrTypeMismatch

	// ErrInvalidComponentAccess indicates a swizzle the operand does not have.
	ErrInvalidComponentAccess

	// ErrArityMismatch indicates a constructor or call with the wrong argument count.
	ErrArityMismatch

	// ErrNotYetImplemented indicates a construct the generator cannot lower.
	ErrNotYetImplemented

	// ErrNotEnoughSpace indicates output larger than the caller's limit.
	ErrNotEnoughSpace

	// ErrUnsupportedVersion indicates a language or binary version that is not handled.
	ErrUnsupportedVersion

	// ErrUnsupportedType indicates a type the target language cannot express.
	ErrUnsupportedType

	// ErrUnsupportedOpcode indicates an opcode the target cannot emit.
	ErrUnsupportedOpcode

	// ErrInvalidBinary indicates a truncated or malformed bytecode/metadata blob.
	ErrInvalidBinary

	// ErrMissingBinding indicates a resource with no register assignment.
	ErrMissingBinding
)

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownShaderType:
		return "UnknownShaderType"
	case ErrMissingShaderType:
		return "MissingShaderType"
	case ErrDuplicateDirective:
		return "DuplicateDirective"
	case ErrUnknownCharacter:
		return "UnknownCharacter"
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrUnexpectedEOF:
		return "UnexpectedEOF"
	case ErrDuplicateShaderBlock:
		return "DuplicateShaderBlock"
	case ErrDuplicateIdentifier:
		return "DuplicateIdentifier"
	case ErrUnresolvedIdentifier:
		return "UnresolvedIdentifier"
	case ErrInvalidLValue:
		return "InvalidLValue"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrInvalidComponentAccess:
		return "InvalidComponentAccess"
	case ErrArityMismatch:
		return "ArityMismatch"
	case ErrNotYetImplemented:
		return "NotYetImplemented"
	case ErrNotEnoughSpace:
		return "NotEnoughSpace"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrUnsupportedOpcode:
		return "UnsupportedOpcode"
	case ErrInvalidBinary:
		return "InvalidBinary"
	case ErrMissingBinding:
		return "MissingBinding"
	default:
		return "Unknown"
	}
}

// Error is the single error type raised by every compilation stage.
// Line and Column are 1-based; zero means the error has no source position.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Column == 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s at line %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
}

// FormatWithContext returns the error message with the offending source line
// and a caret under the reported column.
func (e *Error) FormatWithContext(source string) string {
	if source == "" || e.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(source, "\n")
	if e.Line > len(lines) {
		return e.Error()
	}

	line := strings.TrimRight(lines[e.Line-1], "\r")
	col := e.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error[%s]: %s\n", e.Kind, e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Line, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

// Is lets errors.Is match on the error kind alone:
// errors.Is(err, &ir.Error{Kind: ir.ErrTypeMismatch}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError creates an error without a source position.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewErrorAt creates an error at the given line and column.
func NewErrorAt(kind ErrorKind, line, column int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
