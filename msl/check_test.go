package msl

import (
	"fmt"
	"testing"

	"github.com/gogpu/magma/ir"
)

func analyze(src string) (*Tree, *State, error) {
	tree, state, err := parse(src)
	if err != nil {
		return nil, nil, err
	}
	if err := Annotate(tree, state); err != nil {
		return nil, nil, err
	}
	if err := Check(tree, state); err != nil {
		return nil, nil, err
	}
	return tree, state, nil
}

// body wraps statements in a pixel shader with a small interface.
func body(stmts string) string {
	return `#type pixel
Input psIn { float2 uv : TEXCOORD; float4 color : COLOR; }
Output psOut { float4 color : SV_TARGET; }
Texture2D albedo : AlbedoMap;
ConstantBuffer material : Material { float4 tint; float44 model; int count; }
Shader {
` + stmts + `
}`
}

func TestAnnotateReferences(t *testing.T) {
	tree, state, err := analyze(body(`
    float4 c = psIn.color * material.tint;
    psOut.color = c;
`))
	if err != nil {
		t.Fatal(err)
	}

	decl := tree.Child(tree.Root, 0)
	ref := tree.Node(tree.Child(decl, 0))
	if ref.Kind != NodeReference {
		t.Fatalf("declaration child 0 is %v, want Reference", ref.Kind)
	}
	local := state.Variable(ref.Variable)
	if local.Name != "c" || local.Class != ClassLocal || local.Type != ir.TypeFloat4 {
		t.Errorf("local = %+v", local)
	}

	mul := tree.Node(tree.Child(decl, 1))
	lhs := tree.Node(mul.Children[0])
	if lhs.Kind != NodeReference || state.Variable(lhs.Variable).Class != ClassInput {
		t.Errorf("psIn.color resolved to %v", lhs.Kind)
	}
	rhs := tree.Node(mul.Children[1])
	if rhs.Kind != NodeReference || state.Variable(rhs.Variable).Class != ClassBufferMember {
		t.Errorf("material.tint resolved to %v", rhs.Kind)
	}

	// The local is indexed after every global.
	if local.Index != 7 {
		t.Errorf("local index = %d, want 7", local.Index)
	}
	if state.RootScope == NoScope {
		t.Error("root scope not set")
	}
}

func TestAnnotateScopes(t *testing.T) {
	tests := []struct {
		name  string
		stmts string
		kind  ir.ErrorKind
	}{
		{"inner sees outer", "float a; { a = 1.0; }", 0},
		{"shadowing in inner scope", "float a; { int a; a = 1; }", 0},
		{"outer does not see inner", "{ float a; } a = 1.0;", ir.ErrUnresolvedIdentifier},
		{"redeclared in same scope", "float a; int a;", ir.ErrDuplicateIdentifier},
		{"local named like a global", "float albedo;", ir.ErrDuplicateIdentifier},
		{"unknown identifier", "psOut.color = missing;", ir.ErrUnresolvedIdentifier},
		{"unknown block member", "psOut.color = psIn.normal;", ir.ErrUnresolvedIdentifier},
		{"unknown buffer member", "float4 x = material.shine;", ir.ErrUnresolvedIdentifier},
		{"bad swizzle letter", "float4 v; float f = v.q;", ir.ErrInvalidComponentAccess},
		{"initializer cannot see its own name", "float a = a;", ir.ErrUnresolvedIdentifier},
		{"unbraced if body sees outer", "bool c; float a; if (c) a = 1.0;", 0},
		{"unbraced if body may shadow", "float a; bool c; if (c) int a = 1;", 0},
		{"unbraced if body is scoped", "bool c; if (c) float4 x = psIn.color; x = psIn.color;", ir.ErrUnresolvedIdentifier},
		{"unbraced else body is scoped", "bool c; if (c) psOut.color = psIn.color; else float a = 1.0; a = 2.0;", ir.ErrUnresolvedIdentifier},
		{"unbraced while body is scoped", "bool c; while (c) float a = 1.0; a = 2.0;", ir.ErrUnresolvedIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := analyze(body(tt.stmts))
			if tt.kind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestCheckTypeSoundness(t *testing.T) {
	types := []string{"int", "int2", "int3", "int4", "float", "float2", "float3", "float4", "bool", "float44"}
	for _, lt := range types {
		for _, rt := range types {
			t.Run(lt+"="+rt, func(t *testing.T) {
				_, _, err := analyze(body(fmt.Sprintf("%s a; %s b; a = b;", lt, rt)))
				if lt == rt {
					if err != nil {
						t.Errorf("unexpected error: %v", err)
					}
					return
				}
				if !ir.IsKind(err, ir.ErrTypeMismatch) {
					t.Errorf("error = %v, want TypeMismatch", err)
				}
			})
		}
	}
}

func TestCheckSwizzleBounds(t *testing.T) {
	tests := []struct {
		stmts string
		ok    bool
	}{
		{"float4 v; float f = v.w;", true},
		{"float4 v; float f = v.a;", true},
		{"float2 v; float f = v.y;", true},
		{"float2 v; float f = v.z;", false},
		{"float f; float g = f.x;", false},
		{"float3 v; float f = v.w;", false},
		{"float44 m; float f = m.x;", false},
		{"int3 v; int i = v.b;", true},
		{"float4 v; v.x = 1.0;", true},
		{"psOut.color.w = psIn.uv.x;", true},
	}

	for _, tt := range tests {
		t.Run(tt.stmts, func(t *testing.T) {
			_, _, err := analyze(body(tt.stmts))
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !ir.IsKind(err, ir.ErrInvalidComponentAccess) {
				t.Errorf("error = %v, want InvalidComponentAccess", err)
			}
		})
	}
}

func TestCheckComponentType(t *testing.T) {
	tree, _, err := analyze(body("float4 v; v.w;"))
	if err != nil {
		t.Fatal(err)
	}
	access := tree.Node(tree.Child(tree.Root, 1))
	if !access.Kind.IsComponent() || access.Kind.Component() != 3 {
		t.Fatalf("statement is %v", access.Kind)
	}
	if access.Type != ir.TypeFloat1 {
		t.Errorf("v.w has type %v, want FLOAT1", access.Type)
	}
}

func TestCheckConstructors(t *testing.T) {
	tests := []struct {
		stmts string
		kind  ir.ErrorKind
	}{
		{"float a; float b; float c; float3 v = float3(a, b, c);", 0},
		{"float a; float b; float3 v = float3(a, b);", ir.ErrArityMismatch},
		{"float3 v = float3(1.0, 2.0, 3.0, 4.0);", ir.ErrArityMismatch},
		{"float3 v = float3(1.0, 2, 3.0);", ir.ErrTypeMismatch},
		{"int2 v = int2(1, 2);", 0},
		{"float4 v = float4(psIn.uv, 0.0, 1.0);", ir.ErrArityMismatch},
		{"float4 v = float4(psIn.uv, 0.0, 0.0, 1.0);", ir.ErrTypeMismatch},
		{"float f = float(2.0);", 0},
		{"float44 m = float44(1.0, 0.0);", ir.ErrArityMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.stmts, func(t *testing.T) {
			_, _, err := analyze(body(tt.stmts))
			if tt.kind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestCheckConstructorType(t *testing.T) {
	tree, _, err := analyze(body("float a; float3(a, a, a);"))
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Node(tree.Child(tree.Root, 1)).Type; got != ir.TypeFloat3 {
		t.Errorf("constructor type = %v, want FLOAT3", got)
	}
}

func TestCheckOperators(t *testing.T) {
	tests := []struct {
		stmts string
		kind  ir.ErrorKind
	}{
		{"float4 v = material.model * psIn.color;", 0},
		{"float4 v = psIn.color * material.model;", 0},
		{"float44 m = material.model * material.model;", 0},
		{"float4 v = psIn.color * 2.0;", 0},
		{"float4 v = 2.0 * psIn.color;", 0},
		{"float4 v = psIn.color / 2.0;", 0},
		{"float4 v = 2.0 / psIn.color;", ir.ErrTypeMismatch},
		{"float4 v = psIn.color * 2;", ir.ErrTypeMismatch},
		{"float2 v = psIn.uv + psIn.color;", ir.ErrTypeMismatch},
		{"int i = material.count + 1;", 0},
		{"bool b = material.count < 3;", 0},
		{"bool b = psIn.uv < psIn.uv;", ir.ErrTypeMismatch},
		{"bool b = psIn.uv == psIn.uv;", 0},
		{"bool b = true && 1;", ir.ErrTypeMismatch},
		{"bool b = !true || false;", 0},
		{"bool b = !1;", ir.ErrTypeMismatch},
		{"float f = -psIn.uv.x;", 0},
		{"bool b = -true;", ir.ErrTypeMismatch},
		{"if (1) discard;", ir.ErrTypeMismatch},
		{"while (psIn.uv.x) return;", ir.ErrTypeMismatch},
		{"if (psIn.uv.x > 0.5) discard; else return;", 0},
	}

	for _, tt := range tests {
		t.Run(tt.stmts, func(t *testing.T) {
			_, _, err := analyze(body(tt.stmts))
			if tt.kind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestCheckLValues(t *testing.T) {
	tests := []struct {
		stmts string
		kind  ir.ErrorKind
	}{
		{"psOut.color = psIn.color;", 0},
		{"psIn.color = psOut.color;", ir.ErrInvalidLValue},
		{"material.tint = psIn.color;", ir.ErrInvalidLValue},
		{"float a; float b; a + b = 1.0;", ir.ErrInvalidLValue},
		{"1.0 = 2.0;", ir.ErrInvalidLValue},
		{"psIn.uv.x = 1.0;", ir.ErrInvalidLValue},
		{"albedo = albedo;", ir.ErrInvalidLValue},
		{"float a; float b; a = b = 1.0;", 0},
	}

	for _, tt := range tests {
		t.Run(tt.stmts, func(t *testing.T) {
			_, _, err := analyze(body(tt.stmts))
			if tt.kind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestCheckIntrinsics(t *testing.T) {
	tests := []struct {
		stmts string
		kind  ir.ErrorKind
	}{
		{"float4 c = sample(albedo, psIn.uv);", 0},
		{"float4 c = sample(albedo, psIn.color);", ir.ErrTypeMismatch},
		{"float4 c = sample(psIn.uv, psIn.uv);", ir.ErrTypeMismatch},
		{"float4 c = sample(albedo);", ir.ErrArityMismatch},
		{"float f = dot(psIn.color, material.tint);", 0},
		{"float f = length(psIn.uv);", 0},
		{"float2 v = normalize(psIn.uv);", 0},
		{"float f = sin(1);", ir.ErrTypeMismatch},
		{"int i = max(material.count, 3);", 0},
		{"float44 m = transpose(material.model);", 0},
		{"float f = determinant(material.model);", 0},
		{"float3 v = cross(psIn.color.x, psIn.color.y);", ir.ErrTypeMismatch},
		{"float f = noise(1.0);", ir.ErrUnresolvedIdentifier},
		{"float4 t = albedo;", ir.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.stmts, func(t *testing.T) {
			_, _, err := analyze(body(tt.stmts))
			if tt.kind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !ir.IsKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}
