package msl

import "github.com/gogpu/magma/ir"

// VariableID addresses a Variable in a State.
type VariableID int32

// NoVariable is the absent variable.
const NoVariable VariableID = -1

// VariableClass says where a variable lives.
type VariableClass uint8

const (
	ClassInput VariableClass = iota
	ClassOutput
	ClassTexture2D
	ClassBufferMember
	ClassLocal
)

// String returns the name of the class.
func (c VariableClass) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassOutput:
		return "output"
	case ClassTexture2D:
		return "texture"
	case ClassBufferMember:
		return "constant buffer member"
	case ClassLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Variable describes inputs, outputs, textures, constant buffer members and
// scope locals uniformly.
type Variable struct {
	Name  string
	Class VariableClass
	Type  ir.VariableType

	// Index is unique across the whole shader; it is the symbol the
	// bytecode refers to.
	Index uint32

	// ID is the position of the variable within its category: the
	// location of inputs and outputs, the slot of textures.
	ID int

	// Binding is the name after ':' of inputs, outputs and textures.
	Binding string

	// Buffer, BufferIndex and BufferOffset locate constant buffer members.
	Buffer       string
	BufferIndex  uint32
	BufferOffset uint32

	Line int
}

// ConstantBuffer is a declared constant buffer binding point.
type ConstantBuffer struct {
	Name    string
	Binding string
	Index   uint32
	Members []VariableID
	Line    int
}

// Member finds a member by name.
func (cb *ConstantBuffer) Member(s *State, name string) (VariableID, bool) {
	for _, id := range cb.Members {
		if s.Variables[id].Name == name {
			return id, true
		}
	}
	return NoVariable, false
}

// ScopeID addresses a Scope in a State.
type ScopeID int32

// NoScope is the absent scope; it is the parent of the root scope.
const NoScope ScopeID = -1

// Scope holds the locals declared directly in one `{ }` block. The parent
// link is an index, so scopes form a tree without owning each other.
type Scope struct {
	Parent    ScopeID
	Variables []VariableID
}

// State is the global compilation context shared by the front end stages.
type State struct {
	Major int
	Minor int
	Kind  ir.ShaderKind

	// InputBlock and OutputBlock are the names of the Input and Output
	// blocks, empty when the shader declares none.
	InputBlock  string
	OutputBlock string

	Inputs          []VariableID
	Outputs         []VariableID
	Textures        []VariableID
	ConstantBuffers []ConstantBuffer
	BufferVars      []VariableID

	Variables []Variable
	Scopes    []Scope

	// RootScope is the scope of the Shader block, set by Annotate.
	RootScope ScopeID

	nextIndex uint32
}

// NewState returns an empty state for a shader with the given header.
func NewState(h Header) *State {
	return &State{
		Major:     h.Major,
		Minor:     h.Minor,
		Kind:      h.Kind,
		RootScope: NoScope,
	}
}

// Variable returns the variable with the given id.
func (s *State) Variable(id VariableID) *Variable {
	return &s.Variables[id]
}

// AddVariable registers v, assigns it the next free index and returns its id.
func (s *State) AddVariable(v Variable) VariableID {
	v.Index = s.AllocIndex()
	s.Variables = append(s.Variables, v)
	return VariableID(len(s.Variables) - 1)
}

// AllocIndex reserves a fresh symbol index without creating a variable.
// The generator uses it for temporaries.
func (s *State) AllocIndex() uint32 {
	idx := s.nextIndex
	s.nextIndex++
	return idx
}

// FindConstantBuffer returns the constant buffer with the given name.
func (s *State) FindConstantBuffer(name string) (*ConstantBuffer, bool) {
	for i := range s.ConstantBuffers {
		if s.ConstantBuffers[i].Name == name {
			return &s.ConstantBuffers[i], true
		}
	}
	return nil, false
}

// FindTexture returns the texture with the given name.
func (s *State) FindTexture(name string) (VariableID, bool) {
	return s.find(s.Textures, name)
}

// FindInput returns the input block member with the given name.
func (s *State) FindInput(name string) (VariableID, bool) {
	return s.find(s.Inputs, name)
}

// FindOutput returns the output block member with the given name.
func (s *State) FindOutput(name string) (VariableID, bool) {
	return s.find(s.Outputs, name)
}

func (s *State) find(list []VariableID, name string) (VariableID, bool) {
	for _, id := range list {
		if s.Variables[id].Name == name {
			return id, true
		}
	}
	return NoVariable, false
}

// NewScope opens a scope nested in parent.
func (s *State) NewScope(parent ScopeID) ScopeID {
	s.Scopes = append(s.Scopes, Scope{Parent: parent})
	return ScopeID(len(s.Scopes) - 1)
}

// Declare adds a local variable to scope.
func (s *State) Declare(scope ScopeID, v Variable) VariableID {
	id := s.AddVariable(v)
	s.Scopes[scope].Variables = append(s.Scopes[scope].Variables, id)
	return id
}

// LookupLocal searches scope only.
func (s *State) LookupLocal(scope ScopeID, name string) (VariableID, bool) {
	return s.find(s.Scopes[scope].Variables, name)
}

// Lookup searches scope and then its parents, innermost first.
func (s *State) Lookup(scope ScopeID, name string) (VariableID, bool) {
	for sc := scope; sc != NoScope; sc = s.Scopes[sc].Parent {
		if id, ok := s.LookupLocal(sc, name); ok {
			return id, true
		}
	}
	return NoVariable, false
}

// globalNameTaken reports whether name is already used by a block, buffer
// or texture at the top level.
func (s *State) globalNameTaken(name string) bool {
	if name == s.InputBlock || name == s.OutputBlock {
		return true
	}
	if _, ok := s.FindConstantBuffer(name); ok {
		return true
	}
	_, ok := s.FindTexture(name)
	return ok
}

// MetaData describes the interface of the shader: inputs and outputs by
// semantic, textures and constant buffers by binding name, buffer members
// by member name.
func (s *State) MetaData() *ir.MetaData {
	m := &ir.MetaData{
		Major: uint32(s.Major),
		Minor: uint32(s.Minor),
		Kind:  s.Kind,
	}
	meta := func(id VariableID) ir.MetaVariable {
		v := s.Variable(id)
		return ir.MetaVariable{Index: v.Index, Name: v.Binding, Type: v.Type}
	}
	for _, id := range s.Inputs {
		m.Inputs = append(m.Inputs, meta(id))
	}
	for _, id := range s.Outputs {
		m.Outputs = append(m.Outputs, meta(id))
	}
	for _, id := range s.Textures {
		m.Textures2D = append(m.Textures2D, meta(id))
	}
	for _, cb := range s.ConstantBuffers {
		m.ConstantBuffers = append(m.ConstantBuffers, ir.MetaVariable{
			Index: cb.Index,
			Name:  cb.Binding,
			Type:  ir.TypeConstantBuffer,
		})
	}
	for _, id := range s.BufferVars {
		v := s.Variable(id)
		m.ConstantBufferVars = append(m.ConstantBufferVars, ir.MetaBufferVariable{
			BufferIndex:  v.BufferIndex,
			BufferOffset: v.BufferOffset,
			MetaVariable: ir.MetaVariable{Index: v.Index, Name: v.Name, Type: v.Type},
		})
	}
	return m
}
