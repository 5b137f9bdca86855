// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestNamer_Call(t *testing.T) {
	n := newNamer()

	// First call should return the base name
	got := n.call("Transform")
	if got != "Transform" {
		t.Errorf("call(\"Transform\") = %q, want \"Transform\"", got)
	}

	// Second call with same base should get a suffix
	got = n.call("Transform")
	if got != "Transform_1" {
		t.Errorf("second call = %q, want \"Transform_1\"", got)
	}

	// Different base should work
	got = n.call("Material")
	if got != "Material" {
		t.Errorf("call(\"Material\") = %q, want \"Material\"", got)
	}
}

func TestNamer_CaseInsensitivity(t *testing.T) {
	n := newNamer()

	if got := n.call("camera"); got != "camera" {
		t.Errorf("first call = %q, want \"camera\"", got)
	}

	// HLSL is case-insensitive, so CAMERA should conflict
	if got := n.call("CAMERA"); got == "CAMERA" {
		t.Error("CAMERA should conflict with camera in HLSL (case-insensitive)")
	}
}

func TestNamer_ReservedKeywords(t *testing.T) {
	n := newNamer()

	// Reserved keywords should be escaped
	tests := []struct {
		input string
		want  string
	}{
		{"float", "_float"},
		{"cbuffer", "_cbuffer"},
		{"float4x4", "_float4x4"},
		{"", UnnamedIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := n.call(tt.input)
			if got != tt.want {
				t.Errorf("call(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNamer_WriterNamesReserved(t *testing.T) {
	n := newNamer()

	for _, name := range []string{"main", "input", "output", "VSInput", "PSOutput"} {
		if got := n.call(name); got == name {
			t.Errorf("call(%q) should not hand out a writer name", name)
		}
	}
}

func TestNamer_Reserve(t *testing.T) {
	n := newNamer()

	n.reserve("tex_3")
	if got := n.call("TEX_3"); got == "TEX_3" {
		t.Error("call should not return a reserved name")
	}
}
