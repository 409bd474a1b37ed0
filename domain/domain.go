// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"github.com/cpmech/gosl/chk"
	"github.com/polyswift-go/scftcore/bndry"
	"github.com/polyswift-go/scftcore/chain"
	"github.com/polyswift-go/scftcore/comm"
	"github.com/polyswift-go/scftcore/field"
	"github.com/polyswift-go/scftcore/grid"
	"github.com/polyswift-go/scftcore/inp"
	"github.com/polyswift-go/scftcore/interact"
	"github.com/polyswift-go/scftcore/physfield"
	"github.com/polyswift-go/scftcore/psrand"
	"github.com/polyswift-go/scftcore/update"
)

// Domain owns every package instance wired up for one simulation run —
// the object the CLI driver builds once and advances step by step
// (spec.md §4.8 build order: communicator → grid → decomposition → FFT
// plans → PhysField registry → boundaries → polymers → solvents →
// effective Hamiltonian → histories).
type Domain struct {
	Cfg *inp.Config

	Comm    *comm.Communicator
	Grid    *grid.Grid
	Decomp  *grid.Decomp
	FFT     *grid.FFT
	Streams *psrand.Streams

	PhysFields     map[string]*physfield.PhysField
	physFieldOrder []string // insertion order, for deterministic dump/log output

	Interactions []interact.Interaction
	Polymers     []*chain.Polymer
	Solvents     []*chain.Solvent
	Updater      *update.Updater

	Constraint    *physfield.PhysField // the "defaultPressure" PhysField, nil if no boundaries configured
	BoundaryReg   *bndry.Registry
	Walls         []*bndry.Wall
	Particles           []*bndry.NanoParticle
	ParticleSteps       *bndry.ParticleStepper
	particleMgr         *bndry.ParticleManager
	particleRad         float64
	particleWidth       float64
	particleMaxAttempts int

	Registry *Registry

	EffVol float64 // Π N_i - V_constraint
	NRef   float64 // reference chain length for density-weight normalization

	StepNum int
}

// Build constructs a Domain from a parsed configuration, in the
// dependency order spec.md §4.8 requires: leaves first so that later
// stages can bind against already-built collaborators.
func Build(cfg *inp.Config, distributed bool) (*Domain, error) {
	d := &Domain{Cfg: cfg, PhysFields: make(map[string]*physfield.PhysField), Registry: NewRegistry()}

	d.Comm = comm.Start(distributed)
	d.Grid = grid.New(cfg.Grid.N, cfg.Grid.Delta)
	nranks := cfg.Grid.NRanks
	if nranks == 0 {
		nranks = d.Comm.Size()
	}
	d.Decomp = grid.NewDecomp(d.Grid, d.Comm.Rank(), nranks)
	d.FFT = grid.NewFFT(d.Grid, d.Decomp, d.Comm)
	d.Streams = psrand.New(cfg.Seed, d.Comm.Rank())

	for _, pfc := range cfg.PhysFields {
		dens := field.New(d.Decomp, d.Comm, 1)
		conj := field.New(d.Decomp, d.Comm, 1)
		pf := physfield.New(pfc.Name, dens, conj)
		d.PhysFields[pfc.Name] = pf
		d.physFieldOrder = append(d.physFieldOrder, pfc.Name)
		if pfc.Constraint {
			d.Constraint = pf
		}
	}

	if err := d.buildBoundaries(); err != nil {
		return nil, err
	}

	d.NRef = 1.0
	for _, p := range cfg.Polymers {
		if p.N > d.NRef {
			d.NRef = p.N
		}
	}
	d.EffVol = float64(d.Grid.NumCellsGlobal())
	if d.Constraint != nil {
		d.EffVol -= d.Constraint.GetDensField().SumAll()
	}

	if err := d.buildPolymers(); err != nil {
		return nil, err
	}
	d.buildSolvents()

	if err := d.buildInteractions(); err != nil {
		return nil, err
	}
	if err := d.buildUpdater(); err != nil {
		return nil, err
	}

	for _, name := range d.physFieldOrder {
		d.PhysFields[name].Initialize(d.Streams, -0.1, 0.1)
	}

	return d, nil
}

func (d *Domain) buildBoundaries() error {
	d.BoundaryReg = bndry.NewRegistry()
	for _, bc := range d.Cfg.Boundaries {
		switch bc.Type {
		case "wall":
			dens := field.New(d.Decomp, d.Comm, 1)
			idx := d.BoundaryReg.NextIndex()
			var w *bndry.Wall
			if bc.RasterFile != "" {
				values, err := bndry.ReadRasterFile(bc.RasterFile, bc.RasterSize)
				if err != nil {
					return err
				}
				w = bndry.NewWallFromRaster(idx, bc.Name, d.Decomp, dens, values, bc.Threshold, bc.Saturate)
			} else {
				fn, err := d.Cfg.STFuncs.Get(bc.STFunc)
				if err != nil {
					return err
				}
				w = bndry.NewWallFromFunc(idx, bc.Name, d.Grid, d.Decomp, dens, func(x []float64) float64 {
					return fn.F(0, x)
				}, bc.Threshold, bc.Saturate)
			}
			d.BoundaryReg.Add(w)
			d.Walls = append(d.Walls, w)
		case "particle":
			for i := 0; i < bc.MaxNumPtcls; i++ {
				pdens := field.New(d.Decomp, d.Comm, 1)
				idx := d.BoundaryReg.NextIndex()
				p, err := bndry.InsertParticle(idx, d.Grid, d.Decomp, d.Comm, pdens, d.BoundaryReg, d.Streams, bc.Radius, bc.Width, bc.MaxInsertAttempts)
				if err != nil {
					return err
				}
				d.BoundaryReg.Add(p)
				d.Particles = append(d.Particles, p)
			}
			d.particleMgr = &bndry.ParticleManager{Registry: d.BoundaryReg, MaxNumPtcls: bc.MaxNumPtcls, UpdateAddPeriod: bc.UpdateAddPeriod, TstepBeforeFirstAdd: bc.TstepBeforeFirstAdd}
			d.particleRad, d.particleWidth, d.particleMaxAttempts = bc.Radius, bc.Width, bc.MaxInsertAttempts
			d.ParticleSteps = bndry.NewParticleStepper(d.Grid, d.FFT, d.BoundaryReg, d.Streams, bc.LambdaF, bc.SigmaP, bc.DrMax)
		default:
			chk.Panic("domain: unknown boundary type %q", bc.Type)
		}
	}
	if d.Constraint != nil && len(d.BoundaryReg.All()) > 0 {
		d.BoundaryReg.DepositInto(d.Constraint.GetDensField())
	}
	return nil
}

func (d *Domain) buildPolymers() error {
	for _, pc := range d.Cfg.Polymers {
		var blocks []*chain.Block
		for _, bc := range pc.Blocks {
			b := chain.NewBlock(bc.Name, bc.F, bc.Ds, bc.B, pc.N, bc.ForceBlockSteps, bc.HeadJoined, bc.TailJoined)
			b.QuadWeight = bc.QuadWeight
			b.Bind(d.Grid, d.FFT)
			pf, ok := d.PhysFields[bc.PhysField]
			if !ok {
				chk.Panic("polymer %q: block %q references unknown physfield %q", pc.Name, bc.Name, bc.PhysField)
			}
			b.SetWField(pf.GetConjgField())
			d.Registry.BindBlock(bc.Name, bc.PhysField)
			blocks = append(blocks, b)
		}
		d.Polymers = append(d.Polymers, chain.NewPolymer(pc.Name, pc.VolFrac, pc.N, blocks))
	}
	return nil
}

func (d *Domain) buildSolvents() {
	for _, sc := range d.Cfg.Solvents {
		d.Solvents = append(d.Solvents, &chain.Solvent{Name: sc.Name, VolFrac: sc.VolFrac})
	}
}

func (d *Domain) buildInteractions() error {
	for _, ic := range d.Cfg.Interactions {
		switch ic.Type {
		case "flory":
			a, ok := d.PhysFields[ic.FieldA]
			if !ok {
				chk.Panic("interaction %q: unknown field %q", ic.Name, ic.FieldA)
			}
			b, ok := d.PhysFields[ic.FieldB]
			if !ok {
				chk.Panic("interaction %q: unknown field %q", ic.Name, ic.FieldB)
			}
			chiN := field.New(d.Decomp, d.Comm, 1)
			chiN.Fill(ic.ChiN)
			var phiWall *field.Field
			if d.Constraint != nil {
				phiWall = d.Constraint.GetDensField()
			}
			fl := interact.New("flory").(*interact.Flory)
			fl.NameStr, fl.FieldA, fl.FieldB = ic.Name, ic.FieldA, ic.FieldB
			fl.PhiA, fl.PhiB, fl.PhiWall, fl.ChiN, fl.EffVol = a.GetDensField(), b.GetDensField(), phiWall, chiN, d.EffVol
			if ic.ChiFunc != "" {
				fn, err := d.Cfg.STFuncs.Get(ic.ChiFunc)
				if err != nil {
					return err
				}
				fl.SetChiRamp(fn)
			}
			d.addInteraction(fl, ic.IsConstraint)
		case "poisson":
			c, ok := d.PhysFields[ic.ChargeField]
			if !ok {
				chk.Panic("interaction %q: unknown charge field %q", ic.Name, ic.ChargeField)
			}
			ps := interact.New("poisson").(*interact.Poisson)
			ps.NameStr, ps.ChargeField = ic.Name, ic.ChargeField
			ps.Charge, ps.Psi, ps.BjerrumLen, ps.G, ps.FFT = c.GetDensField(), c.GetConjgField(), ic.BjerrumLen, d.Grid, d.FFT
			if ps.BjerrumLen <= 0 {
				chk.Panic("poisson %q: Bjerrum length must be positive, got %g", ic.Name, ps.BjerrumLen)
			}
			d.addInteraction(ps, ic.IsConstraint)
		default:
			chk.Panic("domain: unknown interaction type %q", ic.Type)
		}
	}
	return nil
}

func (d *Domain) addInteraction(it interact.Interaction, isConstraint bool) {
	if !isConstraint {
		d.Interactions = append(d.Interactions, it)
	}
}

func (d *Domain) buildUpdater() error {
	uc := d.Cfg.Updater
	u := &update.Updater{FieldNames: uc.FieldNames, Lambda0: uc.Lambda0, Lambda1: uc.Lambda1, Sigma: uc.Sigma, Streams: d.Streams}
	for _, name := range uc.FieldNames {
		pf, ok := d.PhysFields[name]
		if !ok {
			chk.Panic("updater: unknown field %q", name)
		}
		u.W = append(u.W, pf.GetConjgField())
		u.Phi = append(u.Phi, pf.GetDensField())
	}
	if d.Constraint != nil {
		u.Pressure = d.Constraint.GetConjgField()
		u.PhiWall = d.Constraint.GetDensField()
	} else {
		u.Pressure = field.New(d.Decomp, d.Comm, 1)
	}
	u.Interactions = append([]interact.Interaction{}, d.Interactions...)
	for _, name := range uc.Constraints {
		for _, ic := range d.Cfg.Interactions {
			if ic.Name == name && ic.Type == "flory" {
				a := d.PhysFields[ic.FieldA]
				b := d.PhysFields[ic.FieldB]
				chiN := field.New(d.Decomp, d.Comm, 1)
				chiN.Fill(ic.ChiN)
				fl := interact.New("flory").(*interact.Flory)
				fl.NameStr, fl.FieldA, fl.FieldB = ic.Name, ic.FieldA, ic.FieldB
				fl.PhiA, fl.PhiB, fl.PhiWall, fl.ChiN, fl.EffVol = a.GetDensField(), b.GetDensField(), d.Constraint.GetDensField(), chiN, d.EffVol
				u.Constraints = append(u.Constraints, fl)
			}
		}
	}
	d.Updater = u
	return nil
}

// Step advances the simulation by one update, exactly the control-flow
// sequence of spec.md §2: reset densities → solve propagators → Q and
// density integrals → redeposit boundaries → interaction derivatives →
// steepest-descent update → spectral filter → Poisson solve → particle
// advance.
func (d *Domain) Step() {
	for _, name := range d.physFieldOrder {
		if d.PhysFields[name] == d.Constraint {
			continue
		}
		d.PhysFields[name].ResetDensField()
	}

	densityTargets := make(map[string]*field.Field)
	for blockName := range d.Registry.blockOwner {
		owner := d.Registry.OwnerOf(blockName)
		densityTargets[blockName] = d.PhysFields[owner].GetDensField()
	}
	for _, p := range d.Polymers {
		p.Update(densityTargets, d.EffVol, d.NRef)
	}
	for i, s := range d.Solvents {
		// a solvent bound to a PhysField uses that field's conjugate and
		// density; an unbound solvent accumulates into the first updater
		// field.
		if pf, ok := d.PhysFields[d.Cfg.Solvents[i].PhysField]; ok {
			s.Update(pf.GetConjgField(), pf.GetDensField(), d.EffVol)
			continue
		}
		if len(d.Updater.Phi) == 0 {
			continue
		}
		s.Update(d.Updater.W[0], d.Updater.Phi[0], d.EffVol)
	}

	if d.Constraint != nil && len(d.BoundaryReg.All()) > 0 {
		d.BoundaryReg.DepositInto(d.Constraint.GetDensField())
	}

	d.Updater.Step()

	if d.Cfg.Updater.FilterFactor > 0 {
		for _, w := range d.Updater.W {
			update.SpectralFilter(w, d.Grid, d.FFT, d.Cfg.Updater.FilterFactor, d.Cfg.Updater.FilterStrength, d.filterRegion())
		}
	}

	for _, it := range d.Interactions {
		if ps, ok := it.(*interact.Poisson); ok {
			ps.Solve()
		}
	}

	if d.ParticleSteps != nil && len(d.Particles) > 0 {
		order := bndry.ShuffleOrder(d.Particles, d.Streams)
		fieldsFor := func(p *bndry.NanoParticle) []bndry.ForceField {
			fields := []bndry.ForceField{{Values: d.Updater.Pressure.Data, Weight: 1}}
			return fields
		}
		d.ParticleSteps.Step(order, fieldsFor, -1)
	}

	if d.particleMgr != nil && d.particleMgr.ShouldAddAt(d.StepNum, len(d.Particles)) {
		d.insertParticle()
	}

	for _, name := range d.physFieldOrder {
		d.PhysFields[name].AddToDensAverage()
	}

	d.StepNum++
}

// filterRegion returns nil for a global spectral filter, or the
// configured per-region block counts (spec.md §4.6).
func (d *Domain) filterRegion() []int {
	if len(d.Cfg.Updater.FilterRegion) == 0 {
		return nil
	}
	return d.Cfg.Updater.FilterRegion
}

// insertParticle grows the mobile population by one when
// d.particleMgr.ShouldAddAt allows it. Build already inserts MaxNumPtcls
// particles for a particle boundary and no step removes any, so the
// count check in ShouldAddAt keeps Step from adding particles during a
// run. A failed insertion (population too crowded) returns silently
// rather than aborting the run.
func (d *Domain) insertParticle() {
	idx := d.BoundaryReg.NextIndex()
	dens := field.New(d.Decomp, d.Comm, 1)
	p, err := bndry.InsertParticle(idx, d.Grid, d.Decomp, d.Comm, dens, d.BoundaryReg, d.Streams, d.particleRad, d.particleWidth, d.particleMaxAttempts)
	if err != nil {
		return
	}
	d.BoundaryReg.Add(p)
	d.Particles = append(d.Particles, p)
}

// Run advances the domain for nsteps, dumping every dumpPeriod steps (0
// disables dumping) through sink.
func (d *Domain) Run(nsteps int, sink DumpSink, dumpPeriod int) error {
	for i := 0; i < nsteps; i++ {
		d.Step()
		if sink != nil && dumpPeriod > 0 && d.StepNum%dumpPeriod == 0 {
			if err := d.Dump(sink); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dump writes every PhysField's density/conjugate buffers and every
// particle boundary's centers to sink, keyed by the current step number
// (spec.md §4.8/§6).
func (d *Domain) Dump(sink DumpSink) error {
	for _, name := range d.physFieldOrder {
		pf := d.PhysFields[name]
		if err := sink.PutField(d.StepNum, name+".dens", pf.GetDensField().Data); err != nil {
			return err
		}
		if err := sink.PutField(d.StepNum, name+".conj", pf.GetConjgField().Data); err != nil {
			return err
		}
	}
	if len(d.Particles) > 0 {
		centers := make([][]float64, len(d.Particles))
		radii := make([]float64, len(d.Particles))
		for i, p := range d.Particles {
			centers[i] = p.CenterPt
			radii[i] = p.Rad
		}
		if err := sink.PutParticles(d.StepNum, "particles", centers, radii); err != nil {
			return err
		}
	}
	return nil
}

// Restore reads back the dump written at dumpNum, overwriting current
// field and particle state (spec.md §4.8 restore, §8 restart equivalence).
func (d *Domain) Restore(sink DumpSink, dumpNum int) error {
	for _, name := range d.physFieldOrder {
		pf := d.PhysFields[name]
		if err := sink.GetField(dumpNum, name+".dens", pf.GetDensField().Data); err != nil {
			return err
		}
		if err := sink.GetField(dumpNum, name+".conj", pf.GetConjgField().Data); err != nil {
			return err
		}
	}
	if len(d.Particles) > 0 {
		centers, radii, err := sink.GetParticles(dumpNum, "particles")
		if err != nil {
			return err
		}
		for i, p := range d.Particles {
			if i >= len(centers) {
				break
			}
			p.SetState(centers[i], radii[i])
		}
	}
	d.StepNum = dumpNum
	return nil
}

// Clean tears down the communicator, mirroring the teacher's
// FEM.onexit/Domain.Clean lifecycle.
func (d *Domain) Clean() {
	d.Comm.Stop()
}
