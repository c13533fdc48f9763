// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package density

import (
	"fmt"
	"sort"
	"strings"

	"github.com/autosome-ru/negbinfit/fiterr"
	"gonum.org/v1/gonum/floats"
)

// ErrMissingParam is returned by ParseLineParams when a required
// parameter is absent. It matches fiterr.ErrContractViolation.
var ErrMissingParam = fmt.Errorf("%w: missing required parameter", fiterr.ErrContractViolation)

// LineParams holds the fitted parameters of a line fit for one allele.
type LineParams struct {
	R0  float64 `json:"r0"`  // negbin shape offset
	P0  float64 `json:"p0"`  // negbin base probability
	W0  float64 `json:"w0"`  // weight of the secondary component
	Th0 float64 `json:"th0"` // secondary component probability
}

var lineParamNames = []string{"r0", "p0", "w0", "th0"}

// ParseLineParams builds LineParams from a name->value mapping, such as
// a decoded weights file. Unrecognized names are ignored.
func ParseLineParams(m map[string]float64) (LineParams, error) {
	var missing []string
	for _, name := range lineParamNames {
		if _, ok := m[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return LineParams{}, fmt.Errorf("%w: %s", ErrMissingParam, strings.Join(missing, ", "))
	}
	return LineParams{R0: m["r0"], P0: m["p0"], W0: m["w0"], Th0: m["th0"]}, nil
}

// Len returns the number of fitted parameters.
func (lp LineParams) Len() int {
	return len(lineParamNames)
}

func (lp LineParams) Map() map[string]float64 {
	return map[string]float64{"r0": lp.R0, "p0": lp.P0, "w0": lp.W0, "th0": lp.Th0}
}

func (lp LineParams) String() string {
	m := lp.Map()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %g", name, m[name])
	}
	b.WriteByte('}')
	return b.String()
}

// Line returns the density of one allele's count at fixed count fixC
// of the other allele: (1-W0) * inferred(R0, P0) + W0 * inferred(1,
// Th0), over 0..n truncated at alleleThreshold. If log is set the
// natural log is returned.
func Line(fixC int, params LineParams, p float64, n, alleleThreshold int, log bool) []float64 {
	dens := InferredNegativeBinomial(fixC, params.R0, params.P0, p, n, alleleThreshold)
	floats.Scale(1-params.W0, dens)
	floats.AddScaled(dens, params.W0, InferredNegativeBinomial(fixC, 1, params.Th0, p, n, alleleThreshold))
	if log {
		return Log(dens)
	}
	return dens
}

// Combine mixes a negative binomial density with a geometric one as
// w*geom + (1-w)*negbin and renormalizes the result to sum to 1. If
// onlyNegbin is set, only the negative binomial part (1-w)*negbin is
// returned, still divided by the total mass of the whole mixture.
//
// Combine applies no correction for geometric mass below the allele
// threshold, so it takes no frac, p or alleleThreshold arguments.
//
// Combine panics if the two densities differ in length.
func Combine(negbin, geom []float64, w float64, onlyNegbin bool) []float64 {
	comb := append([]float64(nil), negbin...)
	floats.Scale(1-w, comb)
	floats.AddScaled(comb, w, geom)
	total := floats.Sum(comb)
	if total == 0 {
		return make([]float64, len(negbin))
	}
	if onlyNegbin {
		out := append([]float64(nil), negbin...)
		floats.Scale((1-w)/total, out)
		return out
	}
	floats.Scale(1/total, comb)
	return comb
}
