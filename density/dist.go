// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package density

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// negBinom is the negative binomial distribution of the number of
// failures before the R-th success, with success probability P.
type negBinom struct {
	R float64
	P float64
}

func (d negBinom) LogPMF(k int) float64 {
	if k < 0 {
		return math.Inf(-1)
	}
	kf := float64(k)
	lg1, _ := math.Lgamma(kf + d.R)
	lg2, _ := math.Lgamma(d.R)
	lg3, _ := math.Lgamma(kf + 1)
	return lg1 - lg2 - lg3 + d.R*math.Log(d.P) + xlog1py(kf, -d.P)
}

func (d negBinom) PMF(k int) float64 {
	return math.Exp(d.LogPMF(k))
}

func (d negBinom) CDF(k int) float64 {
	if k < 0 {
		return 0
	}
	return mathext.RegIncBeta(d.R, float64(k)+1, d.P)
}

// geom is the geometric distribution of the number of trials up to
// and including the first success, so its support starts at 1.
type geom struct {
	P float64
}

func (d geom) PMF(k int) float64 {
	if k < 1 {
		return 0
	}
	return math.Exp(xlog1py(float64(k-1), -d.P) + math.Log(d.P))
}

func (d geom) CDF(k int) float64 {
	if k < 1 {
		return 0
	}
	return -math.Expm1(xlog1py(float64(k), -d.P))
}

// xlog1py returns x*log1p(y), with 0 when x == 0 even if log1p(y) is
// infinite.
func xlog1py(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log1p(y)
}

// truncatedNorm returns the probability mass a distribution puts on
// [left, size].
func truncatedNorm(cdf func(int) float64, size, left int) float64 {
	norm := cdf(size)
	if left >= 1 {
		norm -= cdf(left - 1)
	}
	return norm
}
