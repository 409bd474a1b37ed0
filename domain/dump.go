// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
)

// DumpSink is the external dump/restore collaborator of spec.md §1/§4.8:
// the core only ever exchanges raw contiguous field buffers keyed by
// dataset name and a dump number; HDF5 formatting, visualization-schema
// attributes, and history time series live entirely outside the core.
type DumpSink interface {
	// PutField writes data under the given dump number and dataset name.
	PutField(dumpNum int, name string, data []float64) error
	// GetField reads data for the given dump number and dataset name into
	// the caller-provided buffer, which must already be sized correctly.
	GetField(dumpNum int, name string, data []float64) error
	// PutParticles writes the centers and per-particle radii of the named
	// boundary's particles.
	PutParticles(dumpNum int, boundaryName string, centers [][]float64, radii []float64) error
	// GetParticles reads back the centers/radii written by PutParticles.
	GetParticles(dumpNum int, boundaryName string) (centers [][]float64, radii []float64, err error)
}

// FlatFileDumpSink is a reference DumpSink storing each dataset as a
// little-endian float64 binary file under dir/<dumpNum>/<name>.bin — the
// practical in-repo stand-in for the HDF5 writer spec.md places outside
// the core.
type FlatFileDumpSink struct {
	Dir string
}

// NewFlatFileDumpSink returns a sink rooted at dir, created on first use.
func NewFlatFileDumpSink(dir string) *FlatFileDumpSink {
	return &FlatFileDumpSink{Dir: dir}
}

func (o *FlatFileDumpSink) path(dumpNum int, name string) string {
	return filepath.Join(o.Dir, fmt.Sprintf("%d", dumpNum), name+".bin")
}

// PutField implements DumpSink.
func (o *FlatFileDumpSink) PutField(dumpNum int, name string, data []float64) error {
	p := o.path(dumpNum, name)
	if err := os.MkdirAll(filepath.Dir(p), 0777); err != nil {
		return chk.Err("dump: cannot create directory for %q: %v", p, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return chk.Err("dump: cannot create %q: %v", p, err)
	}
	defer f.Close()
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	if _, err := f.Write(buf); err != nil {
		return chk.Err("dump: cannot write %q: %v", p, err)
	}
	return nil
}

// GetField implements DumpSink.
func (o *FlatFileDumpSink) GetField(dumpNum int, name string, data []float64) error {
	p := o.path(dumpNum, name)
	b, err := os.ReadFile(p)
	if err != nil {
		return chk.Err("dump: cannot read %q: %v", p, err)
	}
	if len(b) != 8*len(data) {
		return chk.Err("dump: %q has %d bytes, expected %d", p, len(b), 8*len(data))
	}
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return nil
}

// PutParticles implements DumpSink, flattening centers/radii into one
// field buffer of length 1+n*(dim+1): a leading entry holding dim, then
// dim center components and the radius per particle.
func (o *FlatFileDumpSink) PutParticles(dumpNum int, boundaryName string, centers [][]float64, radii []float64) error {
	if len(centers) == 0 {
		return o.PutField(dumpNum, boundaryName+".ptcl", nil)
	}
	dim := len(centers[0])
	flat := make([]float64, 0, len(centers)*(dim+1))
	for i, c := range centers {
		flat = append(flat, c...)
		flat = append(flat, radii[i])
	}
	flat = append([]float64{float64(dim)}, flat...)
	return o.PutField(dumpNum, boundaryName+".ptcl", flat)
}

// GetParticles implements DumpSink.
func (o *FlatFileDumpSink) GetParticles(dumpNum int, boundaryName string) (centers [][]float64, radii []float64, err error) {
	p := o.path(dumpNum, boundaryName+".ptcl")
	b, rerr := os.ReadFile(p)
	if rerr != nil {
		return nil, nil, chk.Err("dump: cannot read %q: %v", p, rerr)
	}
	if len(b) == 0 {
		return nil, nil, nil
	}
	n := len(b) / 8
	flat := make([]float64, n)
	for i := range flat {
		flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	if len(flat) < 1 {
		return nil, nil, nil
	}
	dim := int(flat[0])
	rest := flat[1:]
	stride := dim + 1
	if stride == 0 || len(rest)%stride != 0 {
		return nil, nil, chk.Err("dump: %q has malformed particle record layout", p)
	}
	count := len(rest) / stride
	centers = make([][]float64, count)
	radii = make([]float64, count)
	for i := 0; i < count; i++ {
		base := i * stride
		centers[i] = append([]float64{}, rest[base:base+dim]...)
		radii[i] = rest[base+dim]
	}
	return centers, radii, nil
}
