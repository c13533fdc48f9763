// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/autosome-ru/negbinfit/gof"
)

var statsColumns = []string{"ref", "alt", "counts"}

// readStatsTable loads a tab-separated stats table (optionally
// gzipped) and returns it along with a name derived from the file
// name, for labeling outputs.
func readStatsTable(fnm string) (gof.Table, string, error) {
	f, err := zopen(fnm)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	table, err := parseStatsTable(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", fnm, err)
	}
	return table, trimExt(fnm), nil
}

// parseStatsTable reads a header row whose columns are exactly ref,
// alt, and counts (in any order), followed by one integer row per
// (ref, alt) pair.
func parseStatsTable(r io.Reader) (gof.Table, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var table gof.Table
	var cols []int // cols[i] is the position of statsColumns[i]
	for lineno, tsv := range bytes.Split(buf, []byte{'\n'}) {
		line := strings.TrimSuffix(string(tsv), "\r")
		if len(line) == 0 {
			continue
		}
		split := strings.Split(line, "\t")
		if cols == nil {
			cols, err = statsHeader(split)
			if err != nil {
				return nil, err
			}
			continue
		}
		if len(split) != len(statsColumns) {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", gof.ErrDataIntegrity, lineno+1, len(statsColumns), len(split))
		}
		var vals [3]int
		for i, col := range cols {
			vals[i], err = parseCount(split[col])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %s", gof.ErrDataIntegrity, lineno+1, statsColumns[i], err)
			}
		}
		table = append(table, gof.Row{Ref: vals[0], Alt: vals[1], Counts: vals[2]})
	}
	if cols == nil {
		return nil, fmt.Errorf("%w: missing header row", gof.ErrDataIntegrity)
	}
	return table, nil
}

func statsHeader(names []string) ([]int, error) {
	pos := map[string]int{}
	for i, name := range names {
		pos[strings.TrimSpace(name)] = i
	}
	cols := make([]int, len(statsColumns))
	for i, want := range statsColumns {
		col, ok := pos[want]
		if !ok || len(pos) != len(statsColumns) || len(names) != len(statsColumns) {
			return nil, fmt.Errorf("%w: header %q does not match columns %q", gof.ErrDataIntegrity, names, statsColumns)
		}
		cols[i] = col
	}
	return cols, nil
}

// parseCount accepts a non-negative integer, written either as an
// integer or as an integral float ("12.0").
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %q", s)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value %q", s)
	}
	return int(f), nil
}
