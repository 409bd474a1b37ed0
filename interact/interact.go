// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package interact implements the Flory and Poisson interaction terms of
// spec.md §4.4/§4.5: functional derivatives ∂F/∂φ and free-energy
// contributions, dispatched through a name-keyed registry in the same
// style as the teacher's mdl/solid model allocators.
package interact

import (
	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/field"
)

// Interaction binds two or more named PhysFields through a functional
// derivative and a local free-energy density.
type Interaction interface {
	Name() string
	// CalcDfD adds this interaction's contribution to ∂F/∂fieldName into
	// dest, or panics if fieldName is not one this interaction contains.
	CalcDfD(fieldName string, dest *field.Field)
	// CalcFe adds the local free-energy density into dest. If
	// includeDisorder is false, the disorder-subtraction term (Flory) is
	// omitted.
	CalcFe(dest *field.Field, includeDisorder bool)
	// Fields lists the PhysField names this interaction contributes to.
	Fields() []string
}

// allocators is the name-keyed registry of interaction kinds, following
// the teacher's mdl/solid.allocators pattern.
var allocators = map[string]func() Interaction{
	"flory":   func() Interaction { return &Flory{} },
	"poisson": func() Interaction { return &Poisson{} },
}

// New returns a zero-valued interaction of the given kind.
func New(kind string) Interaction {
	alloc, ok := allocators[kind]
	if !ok {
		chk.Panic("interact: unknown interaction kind %q", kind)
	}
	return alloc()
}
