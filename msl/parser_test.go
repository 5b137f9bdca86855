package msl

import (
	"strings"
	"testing"

	"github.com/gogpu/magma/ir"
)

func parse(src string) (*Tree, *State, error) {
	lines, header, err := Preprocess(src)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := Tokenize(lines)
	if err != nil {
		return nil, nil, err
	}
	return Parse(tokens, header)
}

func mustParse(t *testing.T, src string) (*Tree, *State) {
	t.Helper()
	tree, state, err := parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return tree, state
}

const e2eSource = `#version 2.0
#type vertex

Output vertexOut { float4 position : SV_POSITION; }
Input vertexIn { float4 position : POSITION; }
ConstantBuffer transform : Transform { float44 mvp; }

Shader {
    vertexOut.position = transform.mvp * vertexIn.position;
}
`

func TestParseGlobals(t *testing.T) {
	src := `#type pixel
Input psIn { float2 uv : TEXCOORD; float4 color : COLOR; }
Output psOut { float4 color : SV_TARGET; }
Texture2D albedo : AlbedoMap;
ConstantBuffer material : Material { float4 tint; float roughness; }
Shader { }
`
	_, state := mustParse(t, src)

	if state.Kind != ir.ShaderPixel {
		t.Errorf("kind = %v, want PIXEL", state.Kind)
	}
	if state.InputBlock != "psIn" || state.OutputBlock != "psOut" {
		t.Errorf("blocks = %q/%q, want psIn/psOut", state.InputBlock, state.OutputBlock)
	}

	wantIndex := map[string]uint32{"uv": 0, "color": 1, "albedo": 3, "tint": 4, "roughness": 5}
	for _, id := range append(append(append([]VariableID{}, state.Inputs...), state.Textures...), state.BufferVars...) {
		v := state.Variable(id)
		if want, ok := wantIndex[v.Name]; ok && v.Index != want {
			t.Errorf("%s: index = %d, want %d", v.Name, v.Index, want)
		}
	}

	out := state.Variable(state.Outputs[0])
	if out.Index != 2 || out.Binding != "SV_TARGET" || out.Type != ir.TypeFloat4 {
		t.Errorf("output = %+v", out)
	}

	tex := state.Variable(state.Textures[0])
	if tex.Binding != "AlbedoMap" || tex.Type != ir.TypeTexture2D {
		t.Errorf("texture = %+v", tex)
	}

	cb := state.ConstantBuffers[0]
	if cb.Name != "material" || cb.Binding != "Material" || len(cb.Members) != 2 {
		t.Fatalf("constant buffer = %+v", cb)
	}
	rough := state.Variable(cb.Members[1])
	if rough.BufferIndex != 0 || rough.BufferOffset != 1 || rough.Buffer != "material" {
		t.Errorf("roughness = %+v", rough)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{
			"mul binds tighter than add",
			"a + b * c",
			"Operator +\n  Identifier a\n  Operator *\n    Identifier b\n    Identifier c\n",
		},
		{
			"left associative",
			"a - b - c",
			"Operator -\n  Operator -\n    Identifier a\n    Identifier b\n  Identifier c\n",
		},
		{
			"assignment is right associative",
			"a = b = c",
			"Operator =\n  Identifier a\n  Operator =\n    Identifier b\n    Identifier c\n",
		},
		{
			"relational below logical",
			"a < b && c",
			"Operator &&\n  Operator <\n    Identifier a\n    Identifier b\n  Identifier c\n",
		},
		{
			"unary and member",
			"-v.x",
			"Operator -\n  Operator .\n    Identifier v\n    Identifier x\n",
		},
		{
			"parentheses",
			"(a + b) * c",
			"Operator *\n  Operator +\n    Identifier a\n    Identifier b\n  Identifier c\n",
		},
		{
			"constructor and call",
			"float2(1.0, dot(a, b))",
			"Constructor FLOAT2\n  Literal 1.0\n  Call dot\n    Identifier a\n    Identifier b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := mustParse(t, "#type vertex\nShader { "+tt.expr+"; }")
			stmt := tree.Child(tree.Root, 0)
			if got := tree.Dump(stmt); got != tt.want {
				t.Errorf("tree:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	src := `#type pixel
Shader {
    float x = 1.0;
    if (x > 0.5) { x = 0.0; } else x = 1.0;
    while (x < 2.0) x = x + 1.0;
    { bool b; }
    discard;
    return;
}`
	tree, _ := mustParse(t, src)

	want := []NodeKind{NodeDeclaration, NodeBranch, NodeWhile, NodeScope, NodeDiscard, NodeReturn}
	children := tree.Children(tree.Root)
	if len(children) != len(want) {
		t.Fatalf("got %d statements, want %d:\n%s", len(children), len(want), tree.Dump(tree.Root))
	}
	for i, k := range want {
		if got := tree.Node(children[i]).Kind; got != k {
			t.Errorf("statement %d: %v, want %v", i, got, k)
		}
	}
	if n := len(tree.Children(children[1])); n != 3 {
		t.Errorf("if/else has %d children, want 3", n)
	}
	for _, c := range tree.Children(children[0]) {
		if tree.Node(c).Parent != children[0] {
			t.Errorf("child %d of declaration has parent %d", c, tree.Node(c).Parent)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ir.ErrorKind
		msg  string
	}{
		{"no shader block", "#type vertex\nInput i { float a : A; }", ir.ErrUnexpectedEOF, "Shader block"},
		{"second shader block", "#type vertex\nShader {}\nShader {}", ir.ErrDuplicateShaderBlock, "second Shader"},
		{"second input block", "#type vertex\nInput a {}\nInput b {}\nShader {}", ir.ErrDuplicateShaderBlock, "second Input"},
		{"missing semicolon", "#type vertex\nShader { float x = 1.0 }", ir.ErrUnexpectedToken, "expected ';'"},
		{"missing binding", "#type vertex\nInput i { float a; }\nShader {}", ir.ErrUnexpectedToken, "expected ':'"},
		{"unterminated scope", "#type vertex\nShader { float x;", ir.ErrUnexpectedEOF, "'}'"},
		{"bad top level", "#type vertex\nfloat x;\nShader {}", ir.ErrUnexpectedToken, "Input, Output"},
		{"constructor without args", "#type vertex\nShader { float4; }", ir.ErrUnexpectedToken, "constructor"},
		{"duplicate member", "#type vertex\nInput i { float a : A; float a : B; }\nShader {}", ir.ErrDuplicateIdentifier, `"a"`},
		{"duplicate global", "#type vertex\nTexture2D t : T;\nTexture2D t : U;\nShader {}", ir.ErrDuplicateIdentifier, `"t"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parse(tt.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	_, _, err := parse("#type vertex\nShader {\n\n  x = ;\n}")
	e, ok := err.(*ir.Error)
	if !ok {
		t.Fatalf("error = %v (%T), want *ir.Error", err, err)
	}
	if e.Line != 4 || e.Column != 7 {
		t.Errorf("position = %d:%d, want 4:7", e.Line, e.Column)
	}
}
