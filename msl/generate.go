package msl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/magma/asm"
	"github.com/gogpu/magma/ir"
)

// generator lowers a checked tree into bytecode and metadata assembly text.
//
// Expressions are lowered with destination passing: gen writes the value of
// a node straight into a variable index chosen by the caller, so the
// result of `a = b * c` lands in a without an intermediate copy.
type generator struct {
	tree  *Tree
	state *State
	code  strings.Builder
}

// Generate emits the bytecode assembly and metadata assembly of a checked
// shader.
func Generate(tree *Tree, state *State) (bytecode, metadata string, err error) {
	if state.Major != ir.CurrentMajor || state.Minor < 0 || state.Minor > 0xFF {
		return "", "", ir.NewError(ir.ErrUnsupportedVersion,
			"MSL version %d.%d is not supported (want %d.x)", state.Major, state.Minor, ir.CurrentMajor)
	}
	g := &generator{tree: tree, state: state}
	fmt.Fprintf(&g.code, "MAJOR %d\nMINOR %d\n", state.Major, state.Minor)
	if err := g.statement(tree.Root); err != nil {
		return "", "", err
	}
	return g.code.String(), GenerateMetadata(state), nil
}

// GenerateMetadata renders the interface of state as metadata assembly.
func GenerateMetadata(state *State) string {
	return asm.FormatMetadata(state.MetaData())
}

func (g *generator) op(op ir.Opcode) {
	g.code.WriteString(op.String())
	g.code.WriteByte('\n')
}

func (g *generator) opIndex(op ir.Opcode, index uint32) {
	fmt.Fprintf(&g.code, "%s %d\n", op, index)
}

// operation selects the registers and emits op. A single input leaves
// VARIN1 untouched.
func (g *generator) operation(op ir.Opcode, dst uint32, in ...uint32) {
	g.opIndex(ir.OpVarIn0, in[0])
	if len(in) > 1 {
		g.opIndex(ir.OpVarIn1, in[1])
	}
	g.opIndex(ir.OpVarOut, dst)
	g.op(op)
}

// temp declares a fresh temporary of type t.
func (g *generator) temp(t ir.VariableType) (uint32, error) {
	decl, ok := ir.DeclOpcode(t)
	if !ok {
		return 0, ir.NewError(ir.ErrNotYetImplemented, "no temporary of type %s", TypeName(t))
	}
	idx := g.state.AllocIndex()
	g.opIndex(decl, idx)
	return idx, nil
}

func (g *generator) statement(id NodeID) error {
	n := g.tree.Node(id)
	switch n.Kind {
	case NodeScope:
		g.op(ir.OpOpScope)
		for _, s := range n.Children {
			if err := g.statement(s); err != nil {
				return err
			}
		}
		g.op(ir.OpClScope)
		return nil

	case NodeDeclaration:
		ref := g.tree.Node(n.Children[0])
		v := g.state.Variable(ref.Variable)
		decl, ok := ir.DeclOpcode(v.Type)
		if !ok {
			return ir.NewErrorAt(ir.ErrNotYetImplemented, ref.Line, ref.Column,
				"locals of type %s", TypeName(v.Type))
		}
		g.opIndex(decl, v.Index)
		if len(n.Children) > 1 {
			return g.gen(n.Children[1], v.Index)
		}
		return nil

	case NodeBranch:
		return g.branch(id)

	case NodeWhile:
		return g.while(id)

	case NodeReturn:
		g.op(ir.OpReturn)
		return nil

	case NodeDiscard:
		g.op(ir.OpDiscard)
		return nil

	case NodeOperator:
		if n.Op == OpAssign {
			_, err := g.assign(id)
			return err
		}
	}

	_, err := g.operand(id)
	return err
}

// block emits a statement as a scope, wrapping it when it is not one.
func (g *generator) block(id NodeID) error {
	if g.tree.Node(id).Kind == NodeScope {
		return g.statement(id)
	}
	g.op(ir.OpOpScope)
	if err := g.statement(id); err != nil {
		return err
	}
	g.op(ir.OpClScope)
	return nil
}

func (g *generator) branch(id NodeID) error {
	children := g.tree.Children(id)
	cond, err := g.operand(children[0])
	if err != nil {
		return err
	}
	g.opIndex(ir.OpVarIn0, cond)
	g.op(ir.OpIf)
	if err := g.block(children[1]); err != nil {
		return err
	}
	if len(children) > 2 {
		g.op(ir.OpElse)
		return g.block(children[2])
	}
	return nil
}

// while lowers `while (c) body` to an endless loop that breaks out when c
// no longer holds. The condition is evaluated inside the loop so it is
// recomputed on every iteration.
func (g *generator) while(id NodeID) error {
	children := g.tree.Children(id)
	g.op(ir.OpWhile)
	g.op(ir.OpOpScope)

	cond, err := g.operand(children[0])
	if err != nil {
		return err
	}
	exit, err := g.temp(ir.TypeBool)
	if err != nil {
		return err
	}
	g.operation(ir.OpNot, exit, cond)
	g.opIndex(ir.OpVarIn0, exit)
	g.op(ir.OpIf)
	g.op(ir.OpOpScope)
	g.op(ir.OpBreak)
	g.op(ir.OpClScope)

	if err := g.block(children[1]); err != nil {
		return err
	}
	g.op(ir.OpClScope)
	return nil
}

// operand returns a variable index holding the value of id. References are
// used in place; anything else is evaluated into a new temporary.
func (g *generator) operand(id NodeID) (uint32, error) {
	n := g.tree.Node(id)
	switch {
	case n.Kind == NodeReference:
		return g.state.Variable(n.Variable).Index, nil
	case n.Kind == NodeOperator && n.Op == OpAssign:
		return g.assign(id)
	}
	tmp, err := g.temp(n.Type)
	if err != nil {
		return 0, err
	}
	return tmp, g.gen(id, tmp)
}

// assign lowers `lhs = rhs` and returns the index of the storage written.
func (g *generator) assign(id NodeID) (uint32, error) {
	children := g.tree.Children(id)
	lhs, rhs := g.tree.Node(children[0]), children[1]

	if lhs.Kind == NodeReference {
		dst := g.state.Variable(lhs.Variable).Index
		return dst, g.gen(rhs, dst)
	}

	// Component write: only references can carry components here, nested
	// components are rejected by Check.
	base := g.tree.Node(lhs.Children[0])
	if base.Kind != NodeReference {
		return 0, ir.NewErrorAt(ir.ErrInvalidLValue, lhs.Line, lhs.Column,
			"component write needs a variable")
	}
	dst := g.state.Variable(base.Variable).Index
	src, err := g.operand(rhs)
	if err != nil {
		return 0, err
	}
	op, _ := ir.AssignComponentOpcode(lhs.Kind.Component())
	g.operation(op, dst, src)
	return src, nil
}

// gen evaluates id into the variable dst.
func (g *generator) gen(id NodeID, dst uint32) error {
	n := g.tree.Node(id)
	switch {
	case n.Kind == NodeReference:
		g.operation(ir.OpAssign, dst, g.state.Variable(n.Variable).Index)
		return nil

	case n.Kind == NodeLiteral:
		return g.literal(id, dst)

	case n.Kind.IsComponent():
		src, err := g.operand(n.Children[0])
		if err != nil {
			return err
		}
		op, _ := ir.GetComponentOpcode(n.Kind.Component())
		g.operation(op, dst, src)
		return nil

	case n.Kind == NodeConstructor:
		return g.constructor(id, dst)

	case n.Kind == NodeCall:
		fn, ok := lookupIntrinsic(n.Text)
		if !ok {
			return ir.NewErrorAt(ir.ErrUnresolvedIdentifier, n.Line, n.Column,
				"%q is not a built-in function", n.Text)
		}
		args, err := g.operands(n.Children)
		if err != nil {
			return err
		}
		g.operation(fn.op, dst, args...)
		return nil

	case n.Kind == NodeOperator && n.Op == OpAssign:
		src, err := g.assign(id)
		if err != nil {
			return err
		}
		if src != dst {
			g.operation(ir.OpAssign, dst, src)
		}
		return nil

	case n.Kind == NodeOperator && len(n.Children) == 1:
		return g.unary(id, dst)

	case n.Kind == NodeOperator:
		return g.binary(id, dst)
	}
	return ir.NewErrorAt(ir.ErrNotYetImplemented, n.Line, n.Column,
		"cannot generate code for %s", n.Kind)
}

// operands evaluates every node before any result is written, so a
// destination that is also read by an argument still sees its old value.
func (g *generator) operands(ids []NodeID) ([]uint32, error) {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		idx, err := g.operand(id)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

func (g *generator) unary(id NodeID, dst uint32) error {
	n := g.tree.Node(id)
	if lit, ok := g.constant(id); ok {
		return g.set(n.Type, []string{lit}, dst)
	}
	child := n.Children[0]
	switch n.Op {
	case OpAdd:
		return g.gen(child, dst)
	case OpSubtract:
		src, err := g.operand(child)
		if err != nil {
			return err
		}
		g.operation(ir.OpNegate, dst, src)
	case OpNot:
		src, err := g.operand(child)
		if err != nil {
			return err
		}
		g.operation(ir.OpNot, dst, src)
	}
	return nil
}

var binaryOpcodes = map[OperatorType]ir.Opcode{
	OpAdd:            ir.OpAdd,
	OpSubtract:       ir.OpSub,
	OpMultiply:       ir.OpMul,
	OpDivide:         ir.OpDiv,
	OpOr:             ir.OpOr,
	OpAnd:            ir.OpAnd,
	OpEqual:          ir.OpEq,
	OpNotEqual:       ir.OpNEq,
	OpGreater:        ir.OpGt,
	OpLess:           ir.OpLs,
	OpGreaterOrEqual: ir.OpGEq,
	OpLessOrEqual:    ir.OpLEq,
}

func (g *generator) binary(id NodeID, dst uint32) error {
	n := g.tree.Node(id)
	op, ok := binaryOpcodes[n.Op]
	if !ok {
		return ir.NewErrorAt(ir.ErrNotYetImplemented, n.Line, n.Column,
			"operator %s", n.Op)
	}
	l, r := g.tree.Node(n.Children[0]), g.tree.Node(n.Children[1])
	if op == ir.OpMul && (l.Type.IsMatrix() || r.Type.IsMatrix()) {
		op = ir.OpMulMat
	}
	args, err := g.operands(n.Children)
	if err != nil {
		return err
	}
	g.operation(op, dst, args...)
	return nil
}

func (g *generator) constructor(id NodeID, dst uint32) error {
	n := g.tree.Node(id)
	if n.VarType.IsMatrix() {
		return ir.NewErrorAt(ir.ErrNotYetImplemented, n.Line, n.Column,
			"%s constructors", TypeName(n.VarType))
	}

	if n.VarType.Components() == 1 {
		return g.gen(n.Children[0], dst)
	}

	lanes := make([]string, 0, len(n.Children))
	for _, arg := range n.Children {
		lit, ok := g.constant(arg)
		if !ok {
			break
		}
		lanes = append(lanes, lit)
	}
	if len(lanes) == len(n.Children) {
		return g.set(n.VarType, lanes, dst)
	}

	args, err := g.operands(n.Children)
	if err != nil {
		return err
	}
	for i, src := range args {
		op, _ := ir.AssignComponentOpcode(i)
		g.operation(op, dst, src)
	}
	return nil
}

func (g *generator) literal(id NodeID, dst uint32) error {
	n := g.tree.Node(id)
	lit, ok := g.constant(id)
	if !ok {
		return ir.NewErrorAt(ir.ErrUnexpectedToken, n.Line, n.Column,
			"literal %s is out of range", n.Text)
	}
	return g.set(n.Type, []string{lit}, dst)
}

// set emits a literal setter for t writing into dst.
func (g *generator) set(t ir.VariableType, lanes []string, dst uint32) error {
	op, ok := ir.SetOpcode(t)
	if !ok {
		return ir.NewError(ir.ErrNotYetImplemented, "literal of type %s", TypeName(t))
	}
	g.opIndex(ir.OpVarOut, dst)
	g.code.WriteString(op.String())
	for _, l := range lanes {
		g.code.WriteByte(' ')
		g.code.WriteString(l)
	}
	g.code.WriteByte('\n')
	return nil
}

// constant returns the assembly spelling of a literal, optionally negated,
// or false when id is not a constant.
func (g *generator) constant(id NodeID) (string, bool) {
	n := g.tree.Node(id)
	neg := false
	for n.Kind == NodeOperator && len(n.Children) == 1 && (n.Op == OpSubtract || n.Op == OpAdd) {
		if n.Op == OpSubtract {
			neg = !neg
		}
		n = g.tree.Node(n.Children[0])
	}
	if n.Kind != NodeLiteral {
		return "", false
	}

	switch n.Literal {
	case LiteralBool:
		if neg {
			return "", false
		}
		if n.Text == "true" {
			return "1", true
		}
		return "0", true

	case LiteralInt:
		v, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			return "", false
		}
		if neg {
			v = -v
		}
		if v < -1<<31 || v > 1<<31-1 {
			return "", false
		}
		return strconv.FormatInt(v, 10), true

	default:
		v, err := strconv.ParseFloat(strings.TrimSuffix(n.Text, "f"), 32)
		if err != nil {
			return "", false
		}
		if neg {
			v = -v
		}
		return strconv.FormatFloat(v, 'g', -1, 32), true
	}
}
