// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
)

// GridConfig describes the periodic Cartesian box and its rank
// decomposition (spec.md §6 Grid/Decomp/FFT blocks).
type GridConfig struct {
	N      []int     `json:"n"`      // global cell counts per axis
	Delta  []float64 `json:"delta"`  // cell sizes per axis
	NRanks int       `json:"nranks"` // number of ranks along the slab axis; 0 => use communicator size
}

// BlockConfig describes one polymer block (spec.md §3 Block, §6).
type BlockConfig struct {
	Name            string   `json:"name"`
	PhysField       string   `json:"physfield"`       // owning monomer species / PhysField name
	F               float64  `json:"f"`                // length fraction of total chain
	Ds              float64  `json:"ds"`                // contour step size
	B               float64  `json:"b"`                 // segment-length ratio
	ForceBlockSteps bool     `json:"forceblocksteps"`
	QuadWeight      float64  `json:"quadweight"` // 1.0 unless polydisperse
	HeadJoined      []string `json:"headjoined"` // block names, or the literal "freeEnd"
	TailJoined      []string `json:"tailjoined"`
}

// SetDefault fills in conventional defaults.
func (o *BlockConfig) SetDefault() {
	if o.B == 0 {
		o.B = 1.0
	}
	if o.QuadWeight == 0 {
		o.QuadWeight = 1.0
	}
	if len(o.HeadJoined) == 0 {
		o.HeadJoined = []string{"freeEnd"}
	}
	if len(o.TailJoined) == 0 {
		o.TailJoined = []string{"freeEnd"}
	}
}

// PolydisperseConfig describes a Gauss-Laguerre/Schulz quadrature for a
// seed block (spec.md §4.3). It is decoded from the configuration, but
// domain.Build does not read it: no quadrature copies of a block are
// generated from a configuration file.
type PolydisperseConfig struct {
	Seed  string  `json:"seed"`  // name of the seed block to replicate
	NG    int     `json:"ng"`    // number of quadrature copies
	Alpha float64 `json:"alpha"` // Schulz shape parameter
	FPoly float64 `json:"fpoly"` // polydisperse fraction of the block's length
}

// PolymerConfig describes a polymer species (spec.md §3 Polymer).
type PolymerConfig struct {
	Name         string               `json:"name"`
	VolFrac      float64              `json:"volfrac"`
	N            float64              `json:"n"` // total scaled chain length
	Blocks       []*BlockConfig       `json:"blocks"`
	Polydisperse []*PolydisperseConfig `json:"polydisperse"`
}

// SolventConfig describes a point-particle solvent species (spec.md §3
// Solvent).
type SolventConfig struct {
	Name      string  `json:"name"`
	VolFrac   float64 `json:"volfrac"`
	PhysField string  `json:"physfield"`
}

// PhysFieldConfig describes one named density/conjugate-field pair
// (spec.md §3 PhysField).
type PhysFieldConfig struct {
	Name         string `json:"name"`
	Constraint   bool   `json:"constraint"` // true for the distinguished "defaultPressure" field
	InitWMean    float64 `json:"initwmean"`
	InitWStdev   float64 `json:"initwstdev"`
}

// InteractionConfig describes a Flory or Poisson interaction term
// (spec.md §4.4/§4.5).
type InteractionConfig struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"` // "flory" | "poisson"
	FieldA        string  `json:"fielda"`
	FieldB        string  `json:"fieldb"`
	ChiN          float64 `json:"chin"`
	ChiFunc       string  `json:"chifunc"` // name of an STFunc; mutually exclusive with ChiN != 0
	IsConstraint  bool    `json:"isconstraint"`
	IncludeDisorder bool  `json:"includedisorder"`
	ChargeField   string  `json:"chargefield"`
	BjerrumLen    float64 `json:"bjerrumlen"`
}

// PostProcess rejects a configuration error caught early: a constant chiN
// and a ramp function are mutually exclusive (spec.md §4.4, §7).
func (o *InteractionConfig) PostProcess() {
	if o.ChiN != 0 && o.ChiFunc != "" {
		chk.Panic("interaction %q: chin and chifunc are mutually exclusive", o.Name)
	}
}

// UpdaterConfig describes the steepest-descent relaxation (spec.md §4.6).
type UpdaterConfig struct {
	FieldNames      []string `json:"fieldnames"` // 2 or 3 monomer PhysField names
	Lambda0         float64  `json:"lambda0"`
	Lambda1         float64  `json:"lambda1"`
	Sigma           float64  `json:"sigma"`
	Constraints     []string `json:"constraints"` // interaction names acting as wall-polymer χ terms
	FilterFactor    float64  `json:"filterfactor"`
	FilterStrength  float64  `json:"filterstrength"`
	FilterRegion    []int    `json:"filterregion"` // 0 => global filter
}

// BoundaryConfig describes a fixed wall or a mobile nanoparticle
// population (spec.md §4.7).
type BoundaryConfig struct {
	Name      string `json:"name"`
	Type      string `json:"type"` // "wall" | "particle"
	STFunc    string `json:"stfunc"` // name of an STFunc sampled at t=0 for a wall
	RasterFile string `json:"rasterfile"`
	RasterSize []int  `json:"rastersize"`
	Threshold float64 `json:"threshold"`
	Saturate  bool    `json:"saturate"`

	Radius              float64 `json:"radius"`
	Width               float64 `json:"width"`
	MaxNumPtcls         int     `json:"maxnumptcls"`
	UpdateAddPeriod     int     `json:"updateaddperiod"`
	TstepBeforeFirstAdd int     `json:"tstepbeforefirstadd"`
	LambdaF             float64 `json:"lambdaf"`
	SigmaP              float64 `json:"sigmap"`
	DrMax               float64 `json:"drmax"`
	MaxInsertAttempts   int     `json:"maxinsertattempts"`
}

// SetDefault fills conventional boundary defaults.
func (o *BoundaryConfig) SetDefault() {
	if o.MaxInsertAttempts == 0 {
		o.MaxInsertAttempts = 10000
	}
	if o.DrMax == 0 {
		o.DrMax = 1.0
	}
}

// STFuncConfig names a time/space function usable as a χN ramp or wall
// profile, in the same type+params idiom as the teacher's FuncData
// (spec.md §6 STFunc block).
type STFuncConfig struct {
	Name string     `json:"name"`
	Type string     `json:"type"`
	Prms dbf.Params `json:"prms"`
}

// STFuncs is a lookup table of named functions, mirroring FuncsData.Get.
type STFuncs []*STFuncConfig

// Get resolves a named function; "zero"/"none" resolve to the zero
// function without requiring a table entry.
func (o STFuncs) Get(name string) (fun.Func, error) {
	if name == "" || name == "zero" || name == "none" {
		return &fun.Zero, nil
	}
	for _, f := range o {
		if f.Name == name {
			fcn, err := fun.New(f.Type, f.Prms)
			if err != nil {
				return nil, chk.Err("stfunc %q: %v", name, err)
			}
			return fcn, nil
		}
	}
	return nil, chk.Err("stfunc: cannot find function named %q", name)
}

// HistoryConfig names a scalar diagnostic time series; recording itself
// is an external collaborator (spec.md §1), so this block is carried
// through configuration only, for the CLI driver to forward.
type HistoryConfig struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// Config is the root hierarchical attribute set consumed by the domain
// build (spec.md §6).
type Config struct {
	Desc    string `json:"desc"`
	DirOut  string `json:"dirout"`
	Seed    int64  `json:"seed"`

	Grid GridConfig `json:"grid"`

	PhysFields   []*PhysFieldConfig   `json:"physfields"`
	Interactions []*InteractionConfig `json:"interactions"`
	Polymers     []*PolymerConfig     `json:"polymers"`
	Solvents     []*SolventConfig     `json:"solvents"`
	Updater      UpdaterConfig        `json:"updater"`
	Boundaries   []*BoundaryConfig    `json:"boundaries"`
	STFuncs      STFuncs              `json:"stfuncs"`
	Histories    []*HistoryConfig     `json:"histories"`

	NSteps         int `json:"nsteps"`
	DumpPeriod     int `json:"dumpperiod"`
	RestartNum     int `json:"restartnum"`

	// derived
	Key string
}

// SetDefault fills in conventional defaults prior to unmarshalling, so
// zero-valued JSON fields retain a sane value (teacher's SetDefault
// idiom, inp/sim.go). Its block and boundary loops only reach entries
// already present; ReadConfig applies those defaults after decoding.
func (o *Config) SetDefault() {
	o.DumpPeriod = 0
	for _, b := range o.Boundaries {
		b.SetDefault()
	}
	for _, p := range o.Polymers {
		for _, bl := range p.Blocks {
			bl.SetDefault()
		}
	}
}

// PostProcess validates cross-block invariants once the whole tree has
// been decoded (spec.md §7 Configuration error).
func (o *Config) PostProcess() {
	if len(o.Updater.FieldNames) != 2 && len(o.Updater.FieldNames) != 3 {
		chk.Panic("config: updater.fieldnames must list 2 or 3 monomer PhysFields, got %d", len(o.Updater.FieldNames))
	}
	for _, it := range o.Interactions {
		it.PostProcess()
	}
	total := 0.0
	for _, p := range o.Polymers {
		total += p.VolFrac
	}
	for _, s := range o.Solvents {
		total += s.VolFrac
	}
	if total < 1-1e-5 || total > 1+1e-5 {
		chk.Panic("config: sum of volume fractions must equal 1±1e-5, got %g", total)
	}
}

// ReadConfig reads and validates the hierarchical configuration from a
// JSON file (spec.md §6), mirroring the teacher's ReadSim idiom.
func ReadConfig(path string) (*Config, error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("config: cannot read file %q: %v", path, err)
	}
	var cfg Config
	cfg.SetDefault()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, chk.Err("config: cannot unmarshal %q: %v", path, err)
	}
	// block and boundary lists only exist once decoded, so their
	// defaults are filled here.
	for _, bc := range cfg.Boundaries {
		bc.SetDefault()
	}
	for _, p := range cfg.Polymers {
		for _, bl := range p.Blocks {
			bl.SetDefault()
		}
	}
	cfg.Key = io.FnKey(filepath.Base(path))
	if cfg.DirOut == "" {
		cfg.DirOut = filepath.Join(os.TempDir(), "scftcore", cfg.Key)
	}
	cfg.PostProcess()
	return &cfg, nil
}
