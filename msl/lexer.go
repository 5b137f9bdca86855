package msl

import (
	"regexp"

	"github.com/gogpu/magma/ir"
)

// rule is one entry of the lexer table: a pattern anchored at the current
// position and the token it produces.
type rule struct {
	pattern *regexp.Regexp
	build   func(text string) Token
}

func punct(pattern string) rule {
	return rule{
		pattern: regexp.MustCompile(`^` + pattern),
		build:   func(text string) Token { return Token{Kind: TokenPunctuation} },
	}
}

func operator(pattern string, op OperatorType) rule {
	return rule{
		pattern: regexp.MustCompile(`^` + pattern),
		build:   func(text string) Token { return Token{Kind: TokenOperator, Op: op} },
	}
}

func literal(pattern string, kind LiteralKind) rule {
	return rule{
		pattern: regexp.MustCompile(`^` + pattern),
		build:   func(text string) Token { return Token{Kind: TokenLiteral, Literal: kind} },
	}
}

func typeName(word string, t ir.VariableType) rule {
	return rule{
		pattern: regexp.MustCompile(`^` + word + `\b`),
		build:   func(text string) Token { return Token{Kind: TokenType, VarType: t} },
	}
}

func keyword(k Keyword) rule {
	return rule{
		pattern: regexp.MustCompile(`^` + k.String() + `\b`),
		build:   func(text string) Token { return Token{Kind: TokenKeyword, Keyword: k} },
	}
}

// rules is tried in order at every position; the first match wins. Longer
// operators precede their prefixes, and every fixed word precedes the
// identifier rule.
var rules = []rule{
	punct(`\{`),
	punct(`\}`),
	punct(`\(`),
	punct(`\)`),
	punct(`;`),
	punct(`:`),
	punct(`,`),

	operator(`==`, OpEqual),
	operator(`!=`, OpNotEqual),
	operator(`>=`, OpGreaterOrEqual),
	operator(`<=`, OpLessOrEqual),
	operator(`&&`, OpAnd),
	operator(`\|\|`, OpOr),
	operator(`=`, OpAssign),
	operator(`\+`, OpAdd),
	operator(`-`, OpSubtract),
	operator(`\*`, OpMultiply),
	operator(`/`, OpDivide),
	operator(`!`, OpNot),
	operator(`>`, OpGreater),
	operator(`<`, OpLess),

	literal(`(\d+\.\d*|\.\d+)([eE][+-]?\d+)?f?`, LiteralFloat),
	// A dot with no digit after it is the member operator.
	operator(`\.`, OpMember),
	literal(`\d+`, LiteralInt),
	literal(`(true|false)\b`, LiteralBool),

	typeName(`int22`, ir.TypeInt22),
	typeName(`int33`, ir.TypeInt33),
	typeName(`int44`, ir.TypeInt44),
	typeName(`int2`, ir.TypeInt2),
	typeName(`int3`, ir.TypeInt3),
	typeName(`int4`, ir.TypeInt4),
	typeName(`int1?`, ir.TypeInt1),
	typeName(`float22`, ir.TypeFloat22),
	typeName(`float33`, ir.TypeFloat33),
	typeName(`float44`, ir.TypeFloat44),
	typeName(`float2`, ir.TypeFloat2),
	typeName(`float3`, ir.TypeFloat3),
	typeName(`float4`, ir.TypeFloat4),
	typeName(`float1?`, ir.TypeFloat1),
	typeName(`bool`, ir.TypeBool),

	keyword(KeywordShader),
	keyword(KeywordInput),
	keyword(KeywordOutput),
	keyword(KeywordTexture2D),
	keyword(KeywordConstantBuffer),
	keyword(KeywordIf),
	keyword(KeywordElse),
	keyword(KeywordWhile),
	keyword(KeywordReturn),
	keyword(KeywordDiscard),

	{
		pattern: regexp.MustCompile(`^[a-zA-Z_]\w*`),
		build:   func(text string) Token { return Token{Kind: TokenIdentifier} },
	},
}

// Tokenize converts preprocessed lines into tokens. The returned slice is
// terminated by a TokenEOF token.
func Tokenize(lines []SourceLine) ([]Token, error) {
	tokens := make([]Token, 0, len(lines)*8)
	lastLine := 0

	for _, line := range lines {
		lastLine = line.Line
		text := line.Text
		pos := 0
		for pos < len(text) {
			if isSpace(text[pos]) {
				pos++
				continue
			}
			tok, n := matchRule(text[pos:])
			if n == 0 {
				return nil, ir.NewErrorAt(ir.ErrUnknownCharacter, line.Line, pos+1,
					"unknown character %q\n%s", text[pos], line.Text)
			}
			tok.Text = text[pos : pos+n]
			tok.Line = line.Line
			tok.Column = pos + 1
			tokens = append(tokens, tok)
			pos += n
		}
	}

	tokens = append(tokens, Token{Kind: TokenEOF, Line: lastLine})
	return tokens, nil
}

func matchRule(rest string) (Token, int) {
	for _, r := range rules {
		loc := r.pattern.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}
		return r.build(rest[:loc[1]]), loc[1]
	}
	return Token{}, 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}
