// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package gof builds observed count matrices from allelic read-count
// tables and scores fitted densities against them.
package gof

import (
	"fmt"

	"github.com/autosome-ru/negbinfit/fiterr"
)

var (
	ErrDataIntegrity     = fiterr.ErrDataIntegrity
	ErrContractViolation = fiterr.ErrContractViolation
)

// Allele labels one side of a heterozygous site.
type Allele string

const (
	Ref Allele = "ref"
	Alt Allele = "alt"
)

// Alleles lists the recognized labels in canonical order.
var Alleles = []Allele{Ref, Alt}

// ParseAllele returns the Allele named by s.
func ParseAllele(s string) (Allele, error) {
	switch a := Allele(s); a {
	case Ref, Alt:
		return a, nil
	}
	return "", fmt.Errorf("%w: unrecognized allele %q", ErrContractViolation, s)
}

// Opposite returns the counterpart allele (ref for alt and vice
// versa). Weight files are cross-indexed this way.
func (a Allele) Opposite() Allele {
	switch a {
	case Ref:
		return Alt
	case Alt:
		return Ref
	}
	panic(fmt.Sprintf("bug: Opposite() called on unrecognized allele %q", string(a)))
}

// Row is one line of a stats table: the number of sites (Counts)
// observed with Ref reference reads and Alt alternative reads.
type Row struct {
	Ref    int
	Alt    int
	Counts int
}

type Table []Row

// CountMatrix is a square matrix of counts indexed by (ref, alt).
type CountMatrix struct {
	n    int
	data []int
}

// NewCountMatrix returns an all-zero n x n matrix.
func NewCountMatrix(n int) *CountMatrix {
	return &CountMatrix{n: n, data: make([]int, n*n)}
}

// Size returns the number of rows (and columns).
func (m *CountMatrix) Size() int { return m.n }

func (m *CountMatrix) At(ref, alt int) int { return m.data[ref*m.n+alt] }

func (m *CountMatrix) Set(ref, alt, v int) { m.data[ref*m.n+alt] = v }

// T returns the transpose of m as a new matrix.
func (m *CountMatrix) T() *CountMatrix {
	t := NewCountMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			t.data[j*m.n+i] = m.data[i*m.n+j]
		}
	}
	return t
}

// Column returns a copy of column j.
func (m *CountMatrix) Column(j int) []int {
	col := make([]int, m.n)
	for i := range col {
		col[i] = m.data[i*m.n+j]
	}
	return col
}

// Flatten returns a copy of the matrix in row-major order.
func (m *CountMatrix) Flatten() []int {
	return append([]int(nil), m.data...)
}

func (m *CountMatrix) Sum() int {
	sum := 0
	for _, v := range m.data {
		sum += v
	}
	return sum
}

// ToMatrix returns a (maxTr+1) x (maxTr+1) matrix holding, for each
// (ref, alt) in [minTr, maxTr]^2, the Counts of the matching table
// row. Cells outside that range, and cells with no matching row, are
// zero. More than one row for an in-range (ref, alt) pair is an
// ErrDataIntegrity error.
func ToMatrix(table Table, minTr, maxTr int) (*CountMatrix, error) {
	m := NewCountMatrix(maxTr + 1)
	seen := make(map[[2]int]bool)
	for _, row := range table {
		if row.Ref < minTr || row.Ref > maxTr || row.Alt < minTr || row.Alt > maxTr {
			continue
		}
		key := [2]int{row.Ref, row.Alt}
		if seen[key] {
			return nil, fmt.Errorf("%w: multiple rows with ref=%d alt=%d", ErrDataIntegrity, row.Ref, row.Alt)
		}
		seen[key] = true
		m.Set(row.Ref, row.Alt, row.Counts)
	}
	return m, nil
}

// CoverageDistribution returns the total Counts per coverage
// (ref+alt) for coverage 0, 1, ..., max-1, where max is the largest
// coverage in the table. The largest coverage itself is not included.
func CoverageDistribution(table Table) []int {
	if len(table) == 0 {
		return nil
	}
	maxCover := 0
	for _, row := range table {
		if cover := row.Ref + row.Alt; cover > maxCover {
			maxCover = cover
		}
	}
	dist := make([]int, maxCover)
	for _, row := range table {
		if cover := row.Ref + row.Alt; cover >= 0 && cover < maxCover {
			dist[cover] += row.Counts
		}
	}
	return dist
}
