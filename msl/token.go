package msl

import (
	"fmt"

	"github.com/gogpu/magma/ir"
)

// TokenKind represents the category of a token.
type TokenKind uint8

const (
	TokenType TokenKind = iota
	TokenOperator
	TokenPunctuation
	TokenLiteral
	TokenIdentifier
	TokenKeyword
	TokenEOF
)

// String returns the name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenType:
		return "type"
	case TokenOperator:
		return "operator"
	case TokenPunctuation:
		return "punctuation"
	case TokenLiteral:
		return "literal"
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenEOF:
		return "end of file"
	default:
		return "unknown"
	}
}

// OperatorType identifies an operator token.
type OperatorType uint8

const (
	OpAssign OperatorType = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterOrEqual
	OpLessOrEqual
	OpAnd
	OpOr
	OpMember
)

var operatorSpellings = [...]string{
	OpAssign:         "=",
	OpAdd:            "+",
	OpSubtract:       "-",
	OpMultiply:       "*",
	OpDivide:         "/",
	OpNot:            "!",
	OpEqual:          "==",
	OpNotEqual:       "!=",
	OpGreater:        ">",
	OpLess:           "<",
	OpGreaterOrEqual: ">=",
	OpLessOrEqual:    "<=",
	OpAnd:            "&&",
	OpOr:             "||",
	OpMember:         ".",
}

// String returns the source spelling of the operator.
func (o OperatorType) String() string {
	if int(o) < len(operatorSpellings) {
		return operatorSpellings[o]
	}
	return "?"
}

// Keyword identifies a reserved word.
type Keyword uint8

const (
	KeywordShader Keyword = iota
	KeywordInput
	KeywordOutput
	KeywordTexture2D
	KeywordConstantBuffer
	KeywordIf
	KeywordElse
	KeywordWhile
	KeywordReturn
	KeywordDiscard
)

var keywordSpellings = [...]string{
	KeywordShader:         "Shader",
	KeywordInput:          "Input",
	KeywordOutput:         "Output",
	KeywordTexture2D:      "Texture2D",
	KeywordConstantBuffer: "ConstantBuffer",
	KeywordIf:             "if",
	KeywordElse:           "else",
	KeywordWhile:          "while",
	KeywordReturn:         "return",
	KeywordDiscard:        "discard",
}

// String returns the source spelling of the keyword.
func (k Keyword) String() string {
	if int(k) < len(keywordSpellings) {
		return keywordSpellings[k]
	}
	return "?"
}

// LiteralKind distinguishes literal tokens.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
)

// Type returns the MSL type of a literal of this kind.
func (k LiteralKind) Type() ir.VariableType {
	switch k {
	case LiteralInt:
		return ir.TypeInt1
	case LiteralFloat:
		return ir.TypeFloat1
	default:
		return ir.TypeBool
	}
}

// Token represents a lexical token. Only the payload field matching Kind
// is meaningful: VarType for types, Op for operators, Keyword for keywords
// and Literal for literals.
type Token struct {
	Kind    TokenKind
	VarType ir.VariableType
	Op      OperatorType
	Keyword Keyword
	Literal LiteralKind
	Text    string
	Line    int
	Column  int
}

// IsPunct reports whether the token is the given punctuation character.
func (t Token) IsPunct(p string) bool {
	return t.Kind == TokenPunctuation && t.Text == p
}

// IsOp reports whether the token is the given operator.
func (t Token) IsOp(op OperatorType) bool {
	return t.Kind == TokenOperator && t.Op == op
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(k Keyword) bool {
	return t.Kind == TokenKeyword && t.Keyword == k
}

// String describes the token for error messages.
func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
