package msl

import (
	"github.com/gogpu/magma/ir"
)

// annotator resolves scopes and names, rewriting the tree in place.
type annotator struct {
	tree  *Tree
	state *State
}

// Annotate assigns every node its scope, registers declared locals and
// turns identifiers and member accesses into references or swizzles.
//
// After Annotate succeeds every Reference node points at a live Variable
// in state.
func Annotate(tree *Tree, state *State) error {
	a := &annotator{tree: tree, state: state}
	return a.node(tree.Root, NoScope)
}

func (a *annotator) node(id NodeID, scope ScopeID) error {
	n := a.tree.Node(id)
	n.Scope = scope

	switch n.Kind {
	case NodeScope:
		inner := a.state.NewScope(scope)
		if scope == NoScope {
			a.state.RootScope = inner
		}
		n.Scope = inner
		for _, c := range n.Children {
			if err := a.node(c, inner); err != nil {
				return err
			}
		}
		return nil

	case NodeDeclaration:
		return a.declaration(id, scope)

	case NodeBranch, NodeWhile:
		children := a.tree.Children(id)
		if err := a.node(children[0], scope); err != nil {
			return err
		}
		for _, body := range children[1:] {
			if err := a.body(body, scope); err != nil {
				return err
			}
		}
		return nil

	case NodeIdentifier:
		return a.identifier(id, scope)

	case NodeOperator:
		if n.Op == OpMember {
			return a.member(id, scope)
		}
	}

	for _, c := range a.tree.Children(id) {
		if err := a.node(c, scope); err != nil {
			return err
		}
	}
	return nil
}

// body resolves the body of an if, else or while. A body that is not a
// braced scope still gets a scope of its own, so a declaration there is
// not visible after the statement.
func (a *annotator) body(id NodeID, scope ScopeID) error {
	if a.tree.Node(id).Kind == NodeScope {
		return a.node(id, scope)
	}
	return a.node(id, a.state.NewScope(scope))
}

// declaration registers a local and replaces the type and name children
// with a single reference.
func (a *annotator) declaration(id NodeID, scope ScopeID) error {
	children := a.tree.Children(id)
	typeNode, nameNode := children[0], children[1]
	init := NoNode
	if len(children) > 2 {
		init = children[2]
	}

	// The initializer is resolved before the name is visible.
	if init != NoNode {
		if err := a.node(init, scope); err != nil {
			return err
		}
	}

	name := a.tree.Node(nameNode)
	if _, dup := a.state.LookupLocal(scope, name.Text); dup || a.state.globalNameTaken(name.Text) {
		return ir.NewErrorAt(ir.ErrDuplicateIdentifier, name.Line, name.Column,
			"%q is already declared", name.Text)
	}

	v := a.state.Declare(scope, Variable{
		Name:  name.Text,
		Class: ClassLocal,
		Type:  a.tree.Node(typeNode).VarType,
		ID:    len(a.state.Scopes[scope].Variables),
		Line:  name.Line,
	})

	name.Kind = NodeReference
	name.Variable = v
	name.Scope = scope

	if init != NoNode {
		a.tree.SetChildren(id, nameNode, init)
	} else {
		a.tree.SetChildren(id, nameNode)
	}
	return nil
}

// identifier resolves a bare name: textures first, then the scope chain
// from the innermost scope outwards.
func (a *annotator) identifier(id NodeID, scope ScopeID) error {
	n := a.tree.Node(id)
	if v, ok := a.state.FindTexture(n.Text); ok {
		n.Kind = NodeReference
		n.Variable = v
		return nil
	}
	if scope != NoScope {
		if v, ok := a.state.Lookup(scope, n.Text); ok {
			n.Kind = NodeReference
			n.Variable = v
			return nil
		}
	}

	hint := ""
	switch {
	case n.Text == a.state.InputBlock, n.Text == a.state.OutputBlock:
		hint = "\nblock members are accessed as " + n.Text + ".<member>"
	default:
		if _, ok := a.state.FindConstantBuffer(n.Text); ok {
			hint = "\nconstant buffer members are accessed as " + n.Text + ".<member>"
		}
	}
	return ir.NewErrorAt(ir.ErrUnresolvedIdentifier, n.Line, n.Column,
		"%q is not declared%s", n.Text, hint)
}

// member resolves `a.b` as an input or output block member, a constant
// buffer member or a swizzle, in that order.
func (a *annotator) member(id NodeID, scope ScopeID) error {
	lhs := a.tree.Child(id, 0)
	rhs := a.tree.Node(a.tree.Child(id, 1))
	field := rhs.Text
	line, column := rhs.Line, rhs.Column

	if l := a.tree.Node(lhs); l.Kind == NodeIdentifier {
		base := l.Text
		var (
			v     VariableID
			found bool
			what  string
		)
		switch {
		case base == a.state.InputBlock:
			v, found = a.state.FindInput(field)
			what = "input block"
		case base == a.state.OutputBlock:
			v, found = a.state.FindOutput(field)
			what = "output block"
		default:
			if cb, ok := a.state.FindConstantBuffer(base); ok {
				v, found = cb.Member(a.state, field)
				what = "constant buffer"
			}
		}
		if what != "" {
			if !found {
				return ir.NewErrorAt(ir.ErrUnresolvedIdentifier, line, column,
					"%s %q has no member %q", what, base, field)
			}
			n := a.tree.Node(id)
			n.Kind = NodeReference
			n.Variable = v
			n.Children = nil
			return nil
		}
	}

	if err := a.node(lhs, scope); err != nil {
		return err
	}
	component, ok := swizzleComponent(field)
	if !ok {
		return ir.NewErrorAt(ir.ErrInvalidComponentAccess, line, column,
			"%q is not a vector component\nuse one of x, y, z, w or r, g, b, a", field)
	}
	n := a.tree.Node(id)
	n.Kind = NodeComponentX + NodeKind(component)
	n.Children = []NodeID{lhs}
	return nil
}

func swizzleComponent(name string) (int, bool) {
	switch name {
	case "x", "r":
		return 0, true
	case "y", "g":
		return 1, true
	case "z", "b":
		return 2, true
	case "w", "a":
		return 3, true
	}
	return 0, false
}
