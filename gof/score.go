// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package gof

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// RMSEA returns the root mean square error of approximation for a
// chi-squared-like statistic with df degrees of freedom over a sample
// of size norm. It is 0 when norm <= 1.
func RMSEA(stat float64, df int, norm float64) float64 {
	if norm <= 1 {
		return 0
	}
	return math.Sqrt(math.Max(stat-float64(df), 0) / (float64(df) * (norm - 1)))
}

// likelihoodRatio returns the G statistic 2*sum(o*log(o/e)) over the
// indices at or above leftMost where both observed and expected are
// nonzero, along with the number of such indices.
func likelihoodRatio(observed []int, expected []float64, leftMost int) (stat float64, valid int) {
	if len(observed) != len(expected) {
		panic(fmt.Sprintf("bug: observed (%d) and expected (%d) lengths differ", len(observed), len(expected)))
	}
	if leftMost < 0 {
		leftMost = 0
	}
	for i := leftMost; i < len(observed); i++ {
		o := float64(observed[i])
		if o == 0 || expected[i] == 0 {
			continue
		}
		valid++
		stat += o * math.Log(o/expected[i])
	}
	return 2 * stat, valid
}

// PointFit scores how well expected counts fit observed counts. Only
// indices >= leftMost where both are nonzero take part. If there are
// no more than nParams+1 such indices there are no degrees of freedom
// left and the score is 0.
//
// PointFit panics if observed and expected differ in length.
func PointFit(observed []int, expected []float64, norm float64, nParams, leftMost int) float64 {
	stat, valid := likelihoodRatio(observed, expected, leftMost)
	if valid <= nParams+1 {
		return 0
	}
	return RMSEA(stat, valid-1-nParams, norm)
}

// PValue returns the chi-squared survival probability of the same
// likelihood-ratio statistic PointFit uses, or 1 if there are no
// degrees of freedom left.
func PValue(observed []int, expected []float64, nParams, leftMost int) float64 {
	stat, valid := likelihoodRatio(observed, expected, leftMost)
	if valid <= nParams+1 {
		return 1
	}
	return distuv.ChiSquared{K: float64(valid - 1 - nParams)}.Survival(stat)
}

// Result holds per-point and overall goodness of fit.
type Result struct {
	// Points maps a fixed count of the other allele to the fit score
	// of the main allele's distribution at that count.
	Points map[int]float64

	// PValues is keyed the same way as Points.
	PValues map[int]float64

	Overall       float64
	OverallPValue float64
}

// Overall scores densityFn against the observed counts in table, for
// every fixed count fixC of the other allele in [minTr, maxTr].
//
// densityFn(fixC) must return the density of mainAllele's count over
// 0..maxTr. Expected counts are the density times the observed total
// at fixC, truncated toward zero. nParams is the number of fitted
// parameters behind densityFn.
func Overall(table Table, densityFn func(fixC int) []float64, nParams int, mainAllele Allele, minTr, maxTr int) (*Result, error) {
	observed, err := ToMatrix(table, minTr, maxTr)
	if err != nil {
		return nil, err
	}
	switch mainAllele {
	case Ref:
	case Alt:
		observed = observed.T()
	default:
		return nil, fmt.Errorf("%w: unrecognized main allele %q", ErrContractViolation, string(mainAllele))
	}

	n := observed.Size()
	expected := make([]float64, n*n)
	res := &Result{
		Points:  map[int]float64{},
		PValues: map[int]float64{},
	}
	for fixC := minTr; fixC <= maxTr; fixC++ {
		col := observed.Column(fixC)
		norm := 0
		for _, v := range col {
			norm += v
		}
		dens := densityFn(fixC)
		if len(dens) != n {
			return nil, fmt.Errorf("%w: density for fixed count %d has %d entries, expected %d", ErrContractViolation, fixC, len(dens), n)
		}
		expCol := make([]float64, n)
		for i, d := range dens {
			expCol[i] = math.Trunc(d * float64(norm))
			expected[i*n+fixC] = expCol[i]
		}
		res.Points[fixC] = PointFit(col, expCol, float64(norm), nParams, minTr)
		res.PValues[fixC] = PValue(col, expCol, nParams, minTr)
	}
	flat := observed.Flatten()
	res.Overall = PointFit(flat, expected, float64(observed.Sum()), nParams, minTr)
	res.OverallPValue = PValue(flat, expected, nParams, minTr)
	return res, nil
}
