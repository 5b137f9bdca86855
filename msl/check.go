package msl

import (
	"github.com/gogpu/magma/ir"
)

// checker computes the value type of every expression node.
type checker struct {
	tree  *Tree
	state *State
}

// Check type checks an annotated tree, storing each expression's type in
// Node.Type. It must run after Annotate.
func Check(tree *Tree, state *State) error {
	c := &checker{tree: tree, state: state}
	return c.statement(tree.Root)
}

func (c *checker) statement(id NodeID) error {
	n := c.tree.Node(id)
	switch n.Kind {
	case NodeScope:
		for _, s := range n.Children {
			if err := c.statement(s); err != nil {
				return err
			}
		}
		return nil

	case NodeDeclaration:
		return c.declaration(id)

	case NodeBranch:
		children := c.tree.Children(id)
		if err := c.condition(children[0], "if"); err != nil {
			return err
		}
		for _, s := range children[1:] {
			if err := c.statement(s); err != nil {
				return err
			}
		}
		return nil

	case NodeWhile:
		children := c.tree.Children(id)
		if err := c.condition(children[0], "while"); err != nil {
			return err
		}
		return c.statement(children[1])

	case NodeReturn, NodeDiscard:
		return nil
	}

	_, err := c.value(id)
	return err
}

func (c *checker) declaration(id NodeID) error {
	children := c.tree.Children(id)
	ref := c.tree.Node(children[0])
	declared := c.state.Variable(ref.Variable).Type
	ref.Type = declared
	if len(children) < 2 {
		return nil
	}
	t, err := c.value(children[1])
	if err != nil {
		return err
	}
	if t != declared {
		init := c.tree.Node(children[1])
		return ir.NewErrorAt(ir.ErrTypeMismatch, init.Line, init.Column,
			"cannot initialize %s %q with a value of type %s",
			TypeName(declared), c.state.Variable(ref.Variable).Name, TypeName(t))
	}
	return nil
}

func (c *checker) condition(id NodeID, what string) error {
	t, err := c.value(id)
	if err != nil {
		return err
	}
	if t != ir.TypeBool {
		n := c.tree.Node(id)
		return ir.NewErrorAt(ir.ErrTypeMismatch, n.Line, n.Column,
			"%s condition has type %s, want bool", what, TypeName(t))
	}
	return nil
}

// value checks an expression whose result is used as a value; binding
// points are rejected.
func (c *checker) value(id NodeID) (ir.VariableType, error) {
	t, err := c.expr(id)
	if err != nil {
		return ir.TypeInvalid, err
	}
	if t.IsResource() {
		n := c.tree.Node(id)
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, n.Line, n.Column,
			"%s cannot be used as a value", TypeName(t))
	}
	return t, nil
}

func (c *checker) expr(id NodeID) (ir.VariableType, error) {
	t, err := c.exprType(id)
	if err != nil {
		return ir.TypeInvalid, err
	}
	c.tree.Node(id).Type = t
	return t, nil
}

func (c *checker) exprType(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	switch {
	case n.Kind == NodeReference:
		return c.state.Variable(n.Variable).Type, nil

	case n.Kind == NodeLiteral:
		return n.Literal.Type(), nil

	case n.Kind.IsComponent():
		return c.component(id)

	case n.Kind == NodeConstructor:
		return c.constructor(id)

	case n.Kind == NodeCall:
		return c.call(id)

	case n.Kind == NodeOperator:
		if len(n.Children) == 1 {
			return c.unary(id)
		}
		if n.Op == OpAssign {
			return c.assign(id)
		}
		return c.binary(id)
	}
	return ir.TypeInvalid, ir.NewErrorAt(ir.ErrUnexpectedToken, n.Line, n.Column,
		"%s is not an expression", n.Kind)
}

func (c *checker) component(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	lane := n.Kind.Component()
	t, err := c.value(n.Children[0])
	if err != nil {
		return ir.TypeInvalid, err
	}
	if !t.IsVector() || t.Dimension() <= lane {
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrInvalidComponentAccess, n.Line, n.Column,
			"component %c does not exist on %s", ir.ComponentLetters[lane], TypeName(t))
	}
	return t.ComponentType(), nil
}

func (c *checker) constructor(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	target := n.VarType
	args := n.Children
	if len(args) != target.Components() {
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrArityMismatch, n.Line, n.Column,
			"%s constructor takes %d arguments, got %d", TypeName(target), target.Components(), len(args))
	}
	want := target.ComponentType()
	for i, arg := range args {
		t, err := c.value(arg)
		if err != nil {
			return ir.TypeInvalid, err
		}
		if t != want {
			a := c.tree.Node(arg)
			return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, a.Line, a.Column,
				"argument %d of %s constructor has type %s, want %s",
				i+1, TypeName(target), TypeName(t), TypeName(want))
		}
	}
	return target, nil
}

func (c *checker) call(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	fn, ok := lookupIntrinsic(n.Text)
	if !ok {
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrUnresolvedIdentifier, n.Line, n.Column,
			"%q is not a built-in function", n.Text)
	}
	if len(n.Children) != fn.arity {
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrArityMismatch, n.Line, n.Column,
			"%s takes %d arguments, got %d", n.Text, fn.arity, len(n.Children))
	}

	args := make([]ir.VariableType, len(n.Children))
	for i, arg := range n.Children {
		var (
			t   ir.VariableType
			err error
		)
		if fn.op == ir.OpSmple2D && i == 0 {
			t, err = c.texture(arg)
		} else {
			t, err = c.value(arg)
		}
		if err != nil {
			return ir.TypeInvalid, err
		}
		args[i] = t
	}

	result, ok := fn.result(args)
	if !ok {
		names := ""
		for i, t := range args {
			if i > 0 {
				names += ", "
			}
			names += TypeName(t)
		}
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, n.Line, n.Column,
			"no %s(%s)\nsignature is %s", n.Text, names, fn.signature)
	}
	return result, nil
}

// texture checks the texture operand of sample, which must name a texture
// directly.
func (c *checker) texture(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	if n.Kind != NodeReference || c.state.Variable(n.Variable).Class != ClassTexture2D {
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, n.Line, n.Column,
			"first argument of sample must be a Texture2D")
	}
	return c.expr(id)
}

func (c *checker) unary(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	op := n.Op
	line, column := n.Line, n.Column
	t, err := c.value(n.Children[0])
	if err != nil {
		return ir.TypeInvalid, err
	}
	switch op {
	case OpNot:
		if t != ir.TypeBool {
			return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, line, column,
				"operator ! needs bool, got %s", TypeName(t))
		}
	default:
		if !t.IsNumeric() {
			return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, line, column,
				"unary %s needs a numeric operand, got %s", op, TypeName(t))
		}
	}
	return t, nil
}

func (c *checker) assign(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	lhs, rhs := n.Children[0], n.Children[1]
	line, column := n.Line, n.Column

	if !c.isLValue(lhs) {
		l := c.tree.Node(lhs)
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrInvalidLValue, l.Line, l.Column,
			"left side of = is not assignable\nonly locals, outputs and their components can be assigned")
	}
	lt, err := c.value(lhs)
	if err != nil {
		return ir.TypeInvalid, err
	}
	rt, err := c.value(rhs)
	if err != nil {
		return ir.TypeInvalid, err
	}
	if lt != rt {
		return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, line, column,
			"cannot assign %s to %s", TypeName(rt), TypeName(lt))
	}
	return lt, nil
}

// isLValue reports whether id names storage the shader may write: a local,
// an output or a component of either.
func (c *checker) isLValue(id NodeID) bool {
	n := c.tree.Node(id)
	switch {
	case n.Kind == NodeReference:
		class := c.state.Variable(n.Variable).Class
		return class == ClassLocal || class == ClassOutput
	case n.Kind.IsComponent():
		return c.isLValue(n.Children[0])
	}
	return false
}

func (c *checker) binary(id NodeID) (ir.VariableType, error) {
	n := c.tree.Node(id)
	op := n.Op
	line, column := n.Line, n.Column
	lt, err := c.value(n.Children[0])
	if err != nil {
		return ir.TypeInvalid, err
	}
	rt, err := c.value(n.Children[1])
	if err != nil {
		return ir.TypeInvalid, err
	}

	if t, ok := binaryResult(op, lt, rt); ok {
		return t, nil
	}
	return ir.TypeInvalid, ir.NewErrorAt(ir.ErrTypeMismatch, line, column,
		"operator %s cannot combine %s and %s", op, TypeName(lt), TypeName(rt))
}

// binaryResult returns the type of `l op r`.
func binaryResult(op OperatorType, l, r ir.VariableType) (ir.VariableType, bool) {
	switch op {
	case OpAdd, OpSubtract:
		if l == r && l.IsNumeric() {
			return l, true
		}

	case OpMultiply:
		switch {
		case !l.IsNumeric() || !r.IsNumeric() || l.ComponentType() != r.ComponentType():
		case l == r:
			return l, true
		case l.IsMatrix() && r.IsVector() && l.Dimension() == r.Dimension():
			return r, true
		case l.IsVector() && r.IsMatrix() && l.Dimension() == r.Dimension():
			return l, true
		case r.IsScalar():
			return l, true
		case l.IsScalar():
			return r, true
		}

	case OpDivide:
		if !l.IsNumeric() || !r.IsNumeric() {
			break
		}
		if l == r || (r.IsScalar() && l.ComponentType() == r) {
			return l, true
		}

	case OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual:
		if l == r && (l == ir.TypeInt1 || l == ir.TypeFloat1) {
			return ir.TypeBool, true
		}

	case OpEqual, OpNotEqual:
		if l == r && l.Valid() && !l.IsResource() {
			return ir.TypeBool, true
		}

	case OpAnd, OpOr:
		if l == ir.TypeBool && r == ir.TypeBool {
			return ir.TypeBool, true
		}
	}
	return ir.TypeInvalid, false
}
