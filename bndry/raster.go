// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bndry

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// ReadRasterFile parses the wall raster file format of spec.md §6: 3
// skipped lines, 1 coordinate header line (space-separated, trailing
// junk discarded), 1 skipped line, then "ix iy iz value" records. The
// total record count must equal the product of rasterSize.
func ReadRasterFile(path string, rasterSize []int) (values []float64, err error) {
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, chk.Err("bndry: cannot open wall raster file %q: %v", path, ferr)
	}
	defer f.Close()

	expected := 1
	for _, n := range rasterSize {
		expected *= n
	}
	values = make([]float64, expected)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	lineNo := 0
	recordCount := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch {
		case lineNo <= 3:
			continue // skipped header lines
		case lineNo == 4:
			continue // coordinate header line, space-separated, trailing junk discarded
		case lineNo == 5:
			continue // skipped line
		default:
			fields := strings.Fields(line)
			if len(fields) < 4 {
				continue
			}
			ix, e1 := strconv.Atoi(fields[0])
			iy, e2 := strconv.Atoi(fields[1])
			iz, e3 := strconv.Atoi(fields[2])
			val, e4 := strconv.ParseFloat(fields[3], 64)
			if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
				return nil, chk.Err("bndry: malformed raster record at line %d of %q", lineNo, path)
			}
			idx := rasterLinearIndex(rasterSize, ix, iy, iz)
			if idx >= 0 && idx < len(values) {
				values[idx] = val
			}
			recordCount++
		}
	}
	if scerr := sc.Err(); scerr != nil {
		return nil, chk.Err("bndry: error reading raster file %q: %v", path, scerr)
	}
	if recordCount != expected {
		return nil, chk.Err("bndry: raster file %q has %d records, expected %d (dimension mismatch between header and grid)", path, recordCount, expected)
	}
	return values, nil
}

func rasterLinearIndex(size []int, ix, iy, iz int) int {
	idx := []int{ix, iy, iz}
	lin := 0
	for a := 0; a < len(size); a++ {
		lin = lin*size[a] + idx[a]
	}
	return lin
}
