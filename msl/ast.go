package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/magma/ir"
)

// NodeKind represents the variant of a syntax node.
type NodeKind uint8

const (
	NodeType NodeKind = iota
	NodeOperator
	NodeIdentifier
	NodeReference
	NodeComponentX
	NodeComponentY
	NodeComponentZ
	NodeComponentW
	NodeLiteral
	NodeDeclaration
	NodeConstructor
	NodeScope
	NodeBranch
	NodeWhile
	NodeReturn
	NodeDiscard
	NodeCall
)

var nodeKindNames = [...]string{
	NodeType:        "Type",
	NodeOperator:    "Operator",
	NodeIdentifier:  "Identifier",
	NodeReference:   "Reference",
	NodeComponentX:  "ComponentX",
	NodeComponentY:  "ComponentY",
	NodeComponentZ:  "ComponentZ",
	NodeComponentW:  "ComponentW",
	NodeLiteral:     "Literal",
	NodeDeclaration: "Declaration",
	NodeConstructor: "Constructor",
	NodeScope:       "Scope",
	NodeBranch:      "Branch",
	NodeWhile:       "While",
	NodeReturn:      "Return",
	NodeDiscard:     "Discard",
	NodeCall:        "Call",
}

// String returns the name of the node kind.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// IsComponent reports whether k is one of the swizzle kinds.
func (k NodeKind) IsComponent() bool {
	return k >= NodeComponentX && k <= NodeComponentW
}

// Component returns the lane index of a swizzle kind.
func (k NodeKind) Component() int {
	return int(k - NodeComponentX)
}

// NodeID addresses a node in a Tree.
type NodeID int32

// NoNode is the absent node.
const NoNode NodeID = -1

// Node is one syntax tree node. Which payload fields are set depends on
// Kind:
//
//	Type, Constructor  VarType
//	Operator           Op (one child for unary operators, two for binary)
//	Identifier, Call   Text (the name)
//	Literal            Text, Literal
//	Reference          Variable
//	Scope              Scope (the scope it opens, set by Annotate)
//
// Children are owned by the node; Parent is a back index, never an owner.
type Node struct {
	Kind     NodeKind
	Parent   NodeID
	Children []NodeID
	Line     int
	Column   int

	VarType  ir.VariableType
	Op       OperatorType
	Text     string
	Literal  LiteralKind
	Variable VariableID

	// Scope is the enclosing scope of the node after annotation.
	Scope ScopeID

	// Type is the value type computed by Check.
	Type ir.VariableType
}

// Tree is an arena of syntax nodes. All nodes of one compilation live in
// the same Tree and are released together with it.
type Tree struct {
	nodes []Node

	// Root is the Scope node of the Shader block.
	Root NodeID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make([]Node, 0, 64), Root: NoNode}
}

// Len returns the number of nodes ever allocated in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id. The pointer is invalidated by
// the next call to New.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// New allocates a detached node.
func (t *Tree) New(kind NodeKind, tok Token) NodeID {
	t.nodes = append(t.nodes, Node{
		Kind:     kind,
		Parent:   NoNode,
		Line:     tok.Line,
		Column:   tok.Column,
		Variable: NoVariable,
		Scope:    NoScope,
		Type:     ir.TypeInvalid,
		VarType:  ir.TypeInvalid,
	})
	return NodeID(len(t.nodes) - 1)
}

// Append attaches child as the last child of parent.
func (t *Tree) Append(parent, child NodeID) {
	t.nodes[child].Parent = parent
	t.nodes[parent].Children = append(t.nodes[parent].Children, child)
}

// Children returns the children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].Children
}

// Child returns the i-th child of id, or NoNode.
func (t *Tree) Child(id NodeID, i int) NodeID {
	c := t.nodes[id].Children
	if i < 0 || i >= len(c) {
		return NoNode
	}
	return c[i]
}

// SetChildren replaces the children of id. Detached nodes stay in the
// arena but are no longer reachable from the root.
func (t *Tree) SetChildren(id NodeID, children ...NodeID) {
	for _, c := range children {
		t.nodes[c].Parent = id
	}
	t.nodes[id].Children = children
}

// Dump renders the subtree rooted at id, one node per line, for tests and
// debugging.
func (t *Tree) Dump(id NodeID) string {
	var sb strings.Builder
	t.dump(&sb, id, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, id NodeID, depth int) {
	n := t.Node(id)
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Kind.String())
	switch n.Kind {
	case NodeType, NodeConstructor:
		fmt.Fprintf(sb, " %s", n.VarType)
	case NodeOperator:
		fmt.Fprintf(sb, " %s", n.Op)
	case NodeIdentifier, NodeCall, NodeLiteral:
		fmt.Fprintf(sb, " %s", n.Text)
	case NodeReference:
		fmt.Fprintf(sb, " #%d", n.Variable)
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		t.dump(sb, c, depth+1)
	}
}
