// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package density builds truncated probability mass arrays for the
// negative binomial and geometric models of allelic read counts, and
// mixes them.
//
// Every array returned here has one entry per count 0..size. When the
// probability mass on the truncated support is not positive the fit is
// degenerate, and the array is all zeros (all -Inf in log form)
// instead of an error.
package density

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GetP returns the expected allelic fraction for a given BAD (allelic
// dosage) value.
func GetP(bad float64) float64 {
	return 1 / (bad + 1)
}

// NegativeBinomial returns the two-mode negative binomial density with
// modes p and 1-p. See NegativeBinomialTwoMode.
func NegativeBinomial(r, p, w float64, size, leftMost int) []float64 {
	return NegativeBinomialTwoMode(r, p, p, w, size, leftMost)
}

// NegativeBinomialTwoMode returns the mixture w*NB(r, p2) +
// (1-w)*NB(r, 1-p) over 0..size, where NB(r, q) has success
// probability q. Entries below leftMost are zero, and the rest are
// divided by the mixture's mass on [leftMost, size].
func NegativeBinomialTwoMode(r, p, p2, w float64, size, leftMost int) []float64 {
	dens := make([]float64, size+1)
	right := negBinom{R: r, P: p2}
	left := negBinom{R: r, P: 1 - p}
	norm := truncatedNorm(right.CDF, size, leftMost)*w +
		truncatedNorm(left.CDF, size, leftMost)*(1-w)
	if norm <= 0 {
		return dens
	}
	start := leftMost
	if start < 0 {
		start = 0
	}
	for k := start; k <= size; k++ {
		dens[k] = (w*right.PMF(k) + (1-w)*left.PMF(k)) / norm
	}
	return dens
}

// InferredNegativeBinomial returns the density of one allele's count
// given that the other allele has m reads, for base shape r0 and base
// probability p0, at allelic fraction p.
func InferredNegativeBinomial(m int, r0, p0, p float64, maxC, minC int) []float64 {
	mf := float64(m)
	odds := math.Pow(p, mf) *
		math.Pow((1-p*p0)/(1-p0*(1-p)), mf+r0) /
		math.Pow(1-p, r0)
	w := 1 / (1 + odds)
	return NegativeBinomialTwoMode(mf+r0, p*p0, (1-p)*p0, w, maxC, minC)
}

// CoverNegativeBinomial returns the single-mode density NB(r, 1-p)
// over 0..size, truncated at leftMost.
//
// Entries below leftMost are zero (-Inf if log is set) unless drawRest
// is set, in which case they are filled in too. Either way only
// [leftMost, size] counts toward the normalizer.
func CoverNegativeBinomial(r, p float64, size, leftMost int, log, drawRest bool) []float64 {
	dist := negBinom{R: r, P: 1 - p}
	norm := truncatedNorm(dist.CDF, size, leftMost)
	dens := make([]float64, size+1)
	if norm <= 0 {
		if log {
			fill(dens, math.Inf(-1))
		}
		return dens
	}
	for k := range dens {
		switch {
		case k < leftMost && !drawRest && log:
			dens[k] = math.Inf(-1)
		case k < leftMost && !drawRest:
		case log:
			dens[k] = dist.LogPMF(k)
		default:
			dens[k] = dist.PMF(k)
		}
	}
	if log {
		floats.AddConst(-math.Log(norm), dens)
	} else {
		floats.Scale(1/norm, dens)
	}
	return dens
}

// Geometric returns the density of the geometric distribution with
// failure probability p (trials counted from 1, so entry 0 is always
// zero) over 0..b, truncated at a. The result is non-increasing from
// index 1 onward. drawRest has the same meaning as in
// CoverNegativeBinomial.
func Geometric(p float64, a, b int, drawRest bool) []float64 {
	dist := geom{P: 1 - p}
	norm := truncatedNorm(dist.CDF, b, a)
	dens := make([]float64, b+1)
	if norm <= 0 {
		return dens
	}
	for k := range dens {
		if k >= a || drawRest {
			dens[k] = dist.PMF(k)
		}
	}
	floats.Scale(1/norm, dens)
	return dens
}

// Log returns the elementwise natural log of dens, with -Inf for zero
// entries.
func Log(dens []float64) []float64 {
	out := make([]float64, len(dens))
	for i, v := range dens {
		out[i] = math.Log(v)
	}
	return out
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
