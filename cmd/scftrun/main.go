// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scftrun drives one SCFT simulation run: read configuration,
// build the domain, advance nsteps, dumping periodically, optionally
// restarting from a prior dump (spec.md §6 CLI surface).
package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/polyswift-go/scftcore/domain"
	"github.com/polyswift-go/scftcore/inp"
)

// exit codes (spec.md §6): 0 ok, 2 bad command line, 3 bad attribute,
// 4 run error, 6 bad input.
const (
	exitOK        = 0
	exitBadArgs   = 2
	exitBadAttr   = 3
	exitRunError  = 4
	exitBadInput  = 6
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	var (
		input       = flag.String("i", "", "input configuration file (required)")
		outPrefix   = flag.String("o", "", "output directory prefix")
		nsteps      = flag.Int("n", 0, "number of steps to run")
		restartNum  = flag.Int("r", -1, "dump number to restart from, -1 to start fresh")
		dumpPeriod  = flag.Int("d", 0, "dump period in steps, 0 disables dumping")
		iargsRaw    = flag.String("iargs", "", "comma-separated K=V attribute overrides")
		imPath      = flag.String("im", "", "unused import path placeholder, reserved for plugin interactions")
		licensePath = flag.String("license-path", "", "unused license file path placeholder")
	)
	flag.Parse()
	_ = imPath
	_ = licensePath

	if *input == "" {
		io.PfRed("ERROR: -i <input> is required\n")
		return exitBadArgs
	}

	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
			code = exitRunError
		}
	}()

	cfg, err := inp.ReadConfig(*input)
	if err != nil {
		io.PfRed("ERROR: %v\n", err)
		return exitBadInput
	}

	if err := applyIargs(cfg, *iargsRaw); err != nil {
		io.PfRed("ERROR: %v\n", err)
		return exitBadAttr
	}

	if *outPrefix != "" {
		cfg.DirOut = *outPrefix
	}
	if *nsteps > 0 {
		cfg.NSteps = *nsteps
	}
	if *dumpPeriod > 0 {
		cfg.DumpPeriod = *dumpPeriod
	}

	d, err := domain.Build(cfg, false)
	if err != nil {
		io.PfRed("ERROR: %v\n", err)
		return exitBadAttr
	}
	defer d.Clean()

	if err := os.MkdirAll(cfg.DirOut, 0777); err != nil {
		io.PfRed("ERROR: cannot create output directory %q: %v\n", cfg.DirOut, err)
		return exitRunError
	}
	sink := domain.NewFlatFileDumpSink(cfg.DirOut)

	if *restartNum >= 0 {
		if err := d.Restore(sink, *restartNum); err != nil {
			io.PfRed("ERROR: %v\n", err)
			return exitRunError
		}
	}

	if err := d.Run(cfg.NSteps, sink, cfg.DumpPeriod); err != nil {
		io.PfRed("ERROR: %v\n", err)
		return exitRunError
	}

	io.Pf("scftrun: finished %d steps, output in %q\n", cfg.NSteps, cfg.DirOut)
	return exitOK
}

// applyIargs parses "-iargs K=V,K=V" attribute overrides against the small
// set of scalar top-level fields a run commonly needs to tweak without
// editing the input file (spec.md §6 "-iargs K=V,...").
func applyIargs(cfg *inp.Config, raw string) error {
	if raw == "" {
		return nil
	}
	for _, kv := range strings.Split(raw, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return chk.Err("iargs: malformed entry %q, want K=V", kv)
		}
		key, val := strings.ToLower(strings.TrimSpace(parts[0])), strings.TrimSpace(parts[1])
		switch key {
		case "seed":
			// gosl/utl has no int64 parser; the rest of -iargs' integer
			// leaves go through utl.Atoi below, same as the teacher's
			// main.go CLI-argument parsing (utl.Atob(flag.Arg(...))).
			v, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return chk.Err("iargs: seed must be an integer, got %q", val)
			}
			cfg.Seed = v
		case "nsteps":
			v, err := parseIargsInt("nsteps", val)
			if err != nil {
				return err
			}
			cfg.NSteps = v
		case "dumpperiod":
			v, err := parseIargsInt("dumpperiod", val)
			if err != nil {
				return err
			}
			cfg.DumpPeriod = v
		default:
			return chk.Err("iargs: unknown attribute %q", key)
		}
	}
	return nil
}

// parseIargsInt converts one -iargs integer value through utl.Atoi, the
// same conversion the teacher's main.go uses for its CLI arguments
// (utl.Atob(flag.Arg(...))); utl.Atoi panics on a malformed value rather
// than returning an error, so the panic is recovered here and turned into
// the exitBadAttr error path the rest of applyIargs uses.
func parseIargsInt(key, val string) (v int, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, chk.Err("iargs: %s must be an integer, got %q", key, val)
		}
	}()
	v = utl.Atoi(val)
	return v, nil
}
