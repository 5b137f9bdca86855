// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/magma/ir"
)

// BindTarget specifies the HLSL register binding for a resource.
// HLSL uses register(x#, space#) syntax for resource binding.
type BindTarget struct {
	// Space is the register space (0-based).
	// Spaces allow multiple resources to use the same register index.
	Space uint8

	// Register is the register index within the space.
	Register uint32
}

// RegisterType represents the HLSL register type.
type RegisterType uint8

const (
	// RegisterTypeB is for constant buffers (cbuffer).
	RegisterTypeB RegisterType = iota

	// RegisterTypeT is for textures and shader resource views.
	RegisterTypeT

	// RegisterTypeS is for samplers.
	RegisterTypeS
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeB:
		return "b"
	case RegisterTypeT:
		return "t"
	case RegisterTypeS:
		return "s"
	default:
		return "b"
	}
}

// DefaultBindTarget returns a BindTarget with default values.
// Defaults to space 0, register 0.
func DefaultBindTarget() BindTarget {
	return BindTarget{
		Space:    0,
		Register: 0,
	}
}

// WithSpace returns a copy of the BindTarget with the specified space.
func (bt BindTarget) WithSpace(space uint8) BindTarget {
	bt.Space = space
	return bt
}

// WithRegister returns a copy of the BindTarget with the specified register.
func (bt BindTarget) WithRegister(register uint32) BindTarget {
	bt.Register = register
	return bt
}

// registerString formats the register clause for a target.
func registerString(rt RegisterType, bt BindTarget, sm ShaderModel) (string, error) {
	if !sm.SupportsRegisterSpaces() {
		if bt.Space != 0 {
			return "", ir.NewError(ir.ErrUnsupportedVersion, "register space %d needs shader model 5.1, target is %s", bt.Space, sm)
		}
		return fmt.Sprintf("register(%s%d)", rt, bt.Register), nil
	}
	return fmt.Sprintf("register(%s%d, space%d)", rt, bt.Register, bt.Space), nil
}

// binder resolves metadata binding names to register targets.
type binder struct {
	options *Options

	// next free register per type, used when faking missing bindings
	next [3]uint32
}

// resolve returns the target for a resource binding name.
func (b *binder) resolve(rt RegisterType, name string) (BindTarget, error) {
	if bt, ok := b.options.BindingMap[name]; ok {
		return bt, nil
	}
	if !b.options.FakeMissingBindings {
		return BindTarget{}, ir.NewError(ir.ErrMissingBinding, "resource %q has no entry in the binding map", name)
	}
	bt := DefaultBindTarget().WithRegister(b.next[rt])
	b.next[rt]++
	return bt, nil
}
