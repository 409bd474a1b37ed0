// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package domain implements the dependency-ordered build, the exact
// per-step control flow, and the dump/restore lifecycle of spec.md §2/§4.8:
// the top-level object that owns every other package's instances for one
// simulation run.
package domain

import "github.com/cpmech/gosl/chk"

// Registry resolves named objects created during different build phases
// against each other — the cyclic block/polymer back-reference of
// spec.md §9 is handled this way: blocks are built first, the polymer
// resolves junction names against its own block map (chain.Polymer
// already does this internally), and this registry exists one level up,
// for cross-cutting lookups such as "which PhysField owns block X" used
// when wiring density targets.
type Registry struct {
	blockOwner map[string]string // block name -> owning PhysField name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{blockOwner: make(map[string]string)}
}

// BindBlock records that a block belongs to the named PhysField.
func (o *Registry) BindBlock(blockName, physFieldName string) {
	o.blockOwner[blockName] = physFieldName
}

// OwnerOf resolves a block's owning PhysField name, panicking on an
// unresolved reference (a configuration error: the build order violated
// the leaves-first dependency, or the block's physfield name is wrong).
func (o *Registry) OwnerOf(blockName string) string {
	name, ok := o.blockOwner[blockName]
	if !ok {
		chk.Panic("domain: block %q has no registered owning PhysField", blockName)
	}
	return name
}
