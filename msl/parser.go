package msl

import (
	"github.com/gogpu/magma/ir"
)

// Parser builds a syntax tree and the global declarations from tokens.
// It stops at the first error; there is no resynchronization.
type Parser struct {
	tokens  []Token
	current int
	tree    *Tree
	state   *State
}

// NewParser creates a parser for the given tokens. The slice must end with
// a TokenEOF token, as returned by Tokenize.
func NewParser(tokens []Token, header Header) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(tokens, Token{Kind: TokenEOF})
	}
	return &Parser{
		tokens: tokens,
		tree:   NewTree(),
		state:  NewState(header),
	}
}

// Parse is shorthand for NewParser(tokens, header).Parse().
func Parse(tokens []Token, header Header) (*Tree, *State, error) {
	return NewParser(tokens, header).Parse()
}

// Parse parses the top-level declarations and the Shader block.
func (p *Parser) Parse() (*Tree, *State, error) {
	for !p.isAtEnd() {
		tok := p.peek()
		var err error
		switch {
		case tok.IsKeyword(KeywordInput):
			err = p.ioBlock(ClassInput)
		case tok.IsKeyword(KeywordOutput):
			err = p.ioBlock(ClassOutput)
		case tok.IsKeyword(KeywordTexture2D):
			err = p.texture()
		case tok.IsKeyword(KeywordConstantBuffer):
			err = p.constantBuffer()
		case tok.IsKeyword(KeywordShader):
			err = p.shaderBlock()
		default:
			err = p.unexpected("Input, Output, Texture2D, ConstantBuffer or Shader")
		}
		if err != nil {
			return nil, nil, err
		}
	}

	if p.tree.Root == NoNode {
		return nil, nil, ir.NewErrorAt(ir.ErrUnexpectedEOF, p.peek().Line, 0,
			"reached end of file without a Shader block")
	}
	return p.tree, p.state, nil
}

// ioBlock parses `Input <id> { (<type> <id> : <id> ;)* }` and its Output twin.
func (p *Parser) ioBlock(class VariableClass) error {
	blockTok := p.advance()
	block := &p.state.InputBlock
	list := &p.state.Inputs
	if class == ClassOutput {
		block = &p.state.OutputBlock
		list = &p.state.Outputs
	}
	if *block != "" {
		return ir.NewErrorAt(ir.ErrDuplicateShaderBlock, blockTok.Line, blockTok.Column,
			"second %s block; a shader has at most one", blockTok.Text)
	}

	name, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if p.state.globalNameTaken(name.Text) {
		return duplicateName(name)
	}
	*block = name.Text

	if err := p.expectPunct("{"); err != nil {
		return err
	}
	for !p.check("}") {
		typeTok, err := p.expectType()
		if err != nil {
			return err
		}
		field, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if err := p.expectPunct(":"); err != nil {
			return err
		}
		binding, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if err := p.expectPunct(";"); err != nil {
			return err
		}
		if _, dup := p.state.find(*list, field.Text); dup {
			return duplicateName(field)
		}
		id := p.state.AddVariable(Variable{
			Name:    field.Text,
			Class:   class,
			Type:    typeTok.VarType,
			ID:      len(*list),
			Binding: binding.Text,
			Line:    field.Line,
		})
		*list = append(*list, id)
	}
	return p.expectPunct("}")
}

// texture parses `Texture2D <id> : <id> ;`.
func (p *Parser) texture() error {
	p.advance()
	name, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if err := p.expectPunct(":"); err != nil {
		return err
	}
	binding, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if err := p.expectPunct(";"); err != nil {
		return err
	}
	if p.state.globalNameTaken(name.Text) {
		return duplicateName(name)
	}
	id := p.state.AddVariable(Variable{
		Name:    name.Text,
		Class:   ClassTexture2D,
		Type:    ir.TypeTexture2D,
		ID:      len(p.state.Textures),
		Binding: binding.Text,
		Line:    name.Line,
	})
	p.state.Textures = append(p.state.Textures, id)
	return nil
}

// constantBuffer parses `ConstantBuffer <id> : <id> { (<type> <id> ;)* }`.
func (p *Parser) constantBuffer() error {
	p.advance()
	name, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if err := p.expectPunct(":"); err != nil {
		return err
	}
	binding, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	if p.state.globalNameTaken(name.Text) {
		return duplicateName(name)
	}
	cb := ConstantBuffer{
		Name:    name.Text,
		Binding: binding.Text,
		Index:   uint32(len(p.state.ConstantBuffers)),
		Line:    name.Line,
	}

	if err := p.expectPunct("{"); err != nil {
		return err
	}
	for !p.check("}") {
		typeTok, err := p.expectType()
		if err != nil {
			return err
		}
		member, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if err := p.expectPunct(";"); err != nil {
			return err
		}
		if _, dup := cb.Member(p.state, member.Text); dup {
			return duplicateName(member)
		}
		id := p.state.AddVariable(Variable{
			Name:         member.Text,
			Class:        ClassBufferMember,
			Type:         typeTok.VarType,
			ID:           len(cb.Members),
			Buffer:       cb.Name,
			BufferIndex:  cb.Index,
			BufferOffset: uint32(len(cb.Members)),
			Line:         member.Line,
		})
		cb.Members = append(cb.Members, id)
		p.state.BufferVars = append(p.state.BufferVars, id)
	}
	if err := p.expectPunct("}"); err != nil {
		return err
	}
	p.state.ConstantBuffers = append(p.state.ConstantBuffers, cb)
	return nil
}

// shaderBlock parses `Shader { ... }`.
func (p *Parser) shaderBlock() error {
	tok := p.advance()
	if p.tree.Root != NoNode {
		return ir.NewErrorAt(ir.ErrDuplicateShaderBlock, tok.Line, tok.Column,
			"second Shader block; a shader has exactly one")
	}
	root, err := p.scope()
	if err != nil {
		return err
	}
	p.tree.Root = root
	return nil
}

// scope parses `{ statement* }`.
func (p *Parser) scope() (NodeID, error) {
	open := p.peek()
	if err := p.expectPunct("{"); err != nil {
		return NoNode, err
	}
	node := p.tree.New(NodeScope, open)
	for !p.check("}") {
		if p.isAtEnd() {
			return NoNode, p.unexpected("'}'")
		}
		stmt, err := p.statement()
		if err != nil {
			return NoNode, err
		}
		p.tree.Append(node, stmt)
	}
	p.advance()
	return node, nil
}

func (p *Parser) statement() (NodeID, error) {
	tok := p.peek()
	switch {
	case tok.IsPunct("{"):
		return p.scope()
	case tok.Kind == TokenType && p.peekAt(1).Kind == TokenIdentifier:
		return p.declaration()
	case tok.IsKeyword(KeywordIf):
		return p.branch()
	case tok.IsKeyword(KeywordWhile):
		return p.while()
	case tok.IsKeyword(KeywordReturn):
		return p.jump(NodeReturn)
	case tok.IsKeyword(KeywordDiscard):
		return p.jump(NodeDiscard)
	}

	expr, err := p.expression()
	if err != nil {
		return NoNode, err
	}
	if err := p.expectPunct(";"); err != nil {
		return NoNode, err
	}
	return expr, nil
}

// declaration parses `<type> <id> [= <expr>] ;`.
func (p *Parser) declaration() (NodeID, error) {
	typeTok := p.advance()
	nameTok := p.advance()

	decl := p.tree.New(NodeDeclaration, typeTok)
	typeNode := p.tree.New(NodeType, typeTok)
	p.tree.Node(typeNode).VarType = typeTok.VarType
	ident := p.tree.New(NodeIdentifier, nameTok)
	p.tree.Node(ident).Text = nameTok.Text
	p.tree.Append(decl, typeNode)
	p.tree.Append(decl, ident)

	if p.peek().IsOp(OpAssign) {
		p.advance()
		init, err := p.expression()
		if err != nil {
			return NoNode, err
		}
		p.tree.Append(decl, init)
	}
	if err := p.expectPunct(";"); err != nil {
		return NoNode, err
	}
	return decl, nil
}

// branch parses `if ( <expr> ) <statement> [else <statement>]`.
func (p *Parser) branch() (NodeID, error) {
	tok := p.advance()
	cond, err := p.condition()
	if err != nil {
		return NoNode, err
	}
	then, err := p.statement()
	if err != nil {
		return NoNode, err
	}
	node := p.tree.New(NodeBranch, tok)
	p.tree.Append(node, cond)
	p.tree.Append(node, then)

	if p.peek().IsKeyword(KeywordElse) {
		p.advance()
		els, err := p.statement()
		if err != nil {
			return NoNode, err
		}
		p.tree.Append(node, els)
	}
	return node, nil
}

// while parses `while ( <expr> ) <statement>`.
func (p *Parser) while() (NodeID, error) {
	tok := p.advance()
	cond, err := p.condition()
	if err != nil {
		return NoNode, err
	}
	body, err := p.statement()
	if err != nil {
		return NoNode, err
	}
	node := p.tree.New(NodeWhile, tok)
	p.tree.Append(node, cond)
	p.tree.Append(node, body)
	return node, nil
}

func (p *Parser) condition() (NodeID, error) {
	if err := p.expectPunct("("); err != nil {
		return NoNode, err
	}
	cond, err := p.expression()
	if err != nil {
		return NoNode, err
	}
	if err := p.expectPunct(")"); err != nil {
		return NoNode, err
	}
	return cond, nil
}

// jump parses `return ;` and `discard ;`.
func (p *Parser) jump(kind NodeKind) (NodeID, error) {
	tok := p.advance()
	if err := p.expectPunct(";"); err != nil {
		return NoNode, err
	}
	return p.tree.New(kind, tok), nil
}

// expression parses an expression at the lowest precedence.
func (p *Parser) expression() (NodeID, error) {
	return p.assignment()
}

// assignment parses right-associative `=`.
func (p *Parser) assignment() (NodeID, error) {
	left, err := p.logicalOr()
	if err != nil {
		return NoNode, err
	}
	if !p.peek().IsOp(OpAssign) {
		return left, nil
	}
	op := p.advance()
	right, err := p.assignment()
	if err != nil {
		return NoNode, err
	}
	return p.binary(op, left, right), nil
}

func (p *Parser) logicalOr() (NodeID, error) {
	return p.binaryLevel(p.logicalAnd, OpOr)
}

func (p *Parser) logicalAnd() (NodeID, error) {
	return p.binaryLevel(p.equality, OpAnd)
}

func (p *Parser) equality() (NodeID, error) {
	return p.binaryLevel(p.relational, OpEqual, OpNotEqual)
}

func (p *Parser) relational() (NodeID, error) {
	return p.binaryLevel(p.additive, OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual)
}

func (p *Parser) additive() (NodeID, error) {
	return p.binaryLevel(p.multiplicative, OpAdd, OpSubtract)
}

func (p *Parser) multiplicative() (NodeID, error) {
	return p.binaryLevel(p.unary, OpMultiply, OpDivide)
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (NodeID, error), ops ...OperatorType) (NodeID, error) {
	left, err := next()
	if err != nil {
		return NoNode, err
	}
	for p.matchOp(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return NoNode, err
		}
		left = p.binary(op, left, right)
	}
	return left, nil
}

func (p *Parser) binary(op Token, left, right NodeID) NodeID {
	node := p.tree.New(NodeOperator, op)
	p.tree.Node(node).Op = op.Op
	p.tree.Append(node, left)
	p.tree.Append(node, right)
	return node
}

// unary parses prefix `+`, `-` and `!`.
func (p *Parser) unary() (NodeID, error) {
	if p.matchOp(OpAdd, OpSubtract, OpNot) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return NoNode, err
		}
		node := p.tree.New(NodeOperator, op)
		p.tree.Node(node).Op = op.Op
		p.tree.Append(node, operand)
		return node, nil
	}
	return p.member()
}

// member parses `<primary> (. <id>)*`.
func (p *Parser) member() (NodeID, error) {
	expr, err := p.primary()
	if err != nil {
		return NoNode, err
	}
	for p.matchOp(OpMember) {
		op := p.previous()
		name, err := p.expectIdentifier()
		if err != nil {
			return NoNode, err
		}
		ident := p.tree.New(NodeIdentifier, name)
		p.tree.Node(ident).Text = name.Text
		expr = p.binary(op, expr, ident)
	}
	return expr, nil
}

// primary parses literals, identifiers, calls, constructors and
// parenthesized expressions.
func (p *Parser) primary() (NodeID, error) {
	tok := p.peek()
	switch {
	case tok.Kind == TokenLiteral:
		p.advance()
		node := p.tree.New(NodeLiteral, tok)
		n := p.tree.Node(node)
		n.Text = tok.Text
		n.Literal = tok.Literal
		return node, nil

	case tok.Kind == TokenIdentifier:
		p.advance()
		if p.check("(") {
			call := p.tree.New(NodeCall, tok)
			p.tree.Node(call).Text = tok.Text
			return call, p.arguments(call)
		}
		node := p.tree.New(NodeIdentifier, tok)
		p.tree.Node(node).Text = tok.Text
		return node, nil

	case tok.Kind == TokenType:
		p.advance()
		ctor := p.tree.New(NodeConstructor, tok)
		p.tree.Node(ctor).VarType = tok.VarType
		if !p.check("(") {
			return NoNode, p.unexpected("'(' after type name in constructor")
		}
		return ctor, p.arguments(ctor)

	case tok.IsPunct("("):
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return NoNode, err
		}
		if err := p.expectPunct(")"); err != nil {
			return NoNode, err
		}
		return expr, nil
	}
	return NoNode, p.unexpected("expression")
}

// arguments parses `( [<expr> (, <expr>)*] )` into children of node.
func (p *Parser) arguments(node NodeID) error {
	if err := p.expectPunct("("); err != nil {
		return err
	}
	if p.check(")") {
		p.advance()
		return nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return err
		}
		p.tree.Append(node, arg)
		if !p.check(",") {
			break
		}
		p.advance()
	}
	return p.expectPunct(")")
}

// Helper methods

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

// check reports whether the next token is the punctuation p.
func (p *Parser) check(punct string) bool {
	return p.peek().IsPunct(punct)
}

func (p *Parser) matchOp(ops ...OperatorType) bool {
	tok := p.peek()
	for _, op := range ops {
		if tok.IsOp(op) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expectPunct(punct string) error {
	if p.check(punct) {
		p.advance()
		return nil
	}
	return p.unexpected("'" + punct + "'")
}

func (p *Parser) expectIdentifier() (Token, error) {
	if p.peek().Kind == TokenIdentifier {
		return p.advance(), nil
	}
	return Token{}, p.unexpected("identifier")
}

func (p *Parser) expectType() (Token, error) {
	if p.peek().Kind == TokenType {
		return p.advance(), nil
	}
	return Token{}, p.unexpected("type name")
}

// unexpected reports the next token as not matching expected.
func (p *Parser) unexpected(expected string) error {
	tok := p.peek()
	if tok.Kind == TokenEOF {
		return ir.NewErrorAt(ir.ErrUnexpectedEOF, tok.Line, 0,
			"unexpected end of file\nexpected %s", expected)
	}
	return ir.NewErrorAt(ir.ErrUnexpectedToken, tok.Line, tok.Column,
		"unexpected %s\nexpected %s", tok, expected)
}

func duplicateName(tok Token) error {
	return ir.NewErrorAt(ir.ErrDuplicateIdentifier, tok.Line, tok.Column,
		"%q is already declared", tok.Text)
}
