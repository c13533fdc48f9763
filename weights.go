// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/autosome-ru/negbinfit/density"
	"github.com/autosome-ru/negbinfit/gof"
	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

// weights holds one allele's fitted parameters: either a single line
// fit, or one (r, w, ...) row per fixed count of the other allele.
type weights struct {
	LineFit bool
	Line    density.LineParams
	Rows    [][]float64
}

func makeArrayPath(out string, allele gof.Allele, lineFit bool) string {
	ext := "npy"
	if lineFit {
		ext = "json"
	}
	return filepath.Join(out, string(allele)+"."+ext)
}

func nbWeightPath(out string, allele gof.Allele) string {
	return filepath.Join(out, fmt.Sprintf("NBweights_%s.tsv", allele))
}

// checkWeights loads the weights for both alleles from dir. The
// parameters describing allele a are stored in the file named after
// a.Opposite().
func checkWeights(dir string, lineFit bool) (map[gof.Allele]weights, error) {
	ret := make(map[gof.Allele]weights, len(gof.Alleles))
	for _, allele := range gof.Alleles {
		w, err := readWeights(allele.Opposite(), dir, lineFit)
		if err != nil {
			return nil, err
		}
		ret[allele] = w
	}
	return ret, nil
}

func readWeights(allele gof.Allele, dir string, lineFit bool) (weights, error) {
	fnm := makeArrayPath(dir, allele, lineFit)
	log.Infof("reading %s weights from %s", allele, fnm)
	f, err := zopen(fnm)
	if err != nil {
		return weights{}, err
	}
	defer f.Close()
	if lineFit {
		var raw map[string]interface{}
		err = json.NewDecoder(f).Decode(&raw)
		if err != nil {
			return weights{}, fmt.Errorf("%s: %w", fnm, err)
		}
		m := map[string]float64{}
		for k, v := range raw {
			if x, ok := v.(float64); ok {
				m[k] = x
			}
		}
		lp, err := density.ParseLineParams(m)
		if err != nil {
			return weights{}, fmt.Errorf("%s: %w", fnm, err)
		}
		err = checkLineParams(lp)
		if err != nil {
			return weights{}, fmt.Errorf("%w: %s: %s", gof.ErrDataIntegrity, fnm, err)
		}
		return weights{LineFit: true, Line: lp}, nil
	}
	npy, err := gonpy.NewReader(f)
	if err != nil {
		return weights{}, fmt.Errorf("%s: %w", fnm, err)
	}
	if len(npy.Shape) != 2 || npy.Shape[1] < 2 {
		return weights{}, fmt.Errorf("%w: %s: expected an N x 2 (or wider) array, got shape %v", gof.ErrDataIntegrity, fnm, npy.Shape)
	}
	data, err := npy.GetFloat64()
	if err != nil {
		return weights{}, fmt.Errorf("%s: %w", fnm, err)
	}
	rows, cols := npy.Shape[0], npy.Shape[1]
	w := weights{Rows: make([][]float64, rows)}
	for i := range w.Rows {
		if !npy.ColumnMajor {
			w.Rows[i] = data[i*cols : (i+1)*cols]
			continue
		}
		w.Rows[i] = make([]float64, cols)
		for j := range w.Rows[i] {
			w.Rows[i][j] = data[j*rows+i]
		}
	}
	return w, nil
}

func checkLineParams(lp density.LineParams) error {
	for _, prob := range []struct {
		name string
		val  float64
	}{{"p0", lp.P0}, {"w0", lp.W0}, {"th0", lp.Th0}} {
		if !(prob.val >= 0 && prob.val <= 1) {
			return fmt.Errorf("%s=%g is not in [0,1]", prob.name, prob.val)
		}
	}
	if !(lp.R0 > 0) {
		return fmt.Errorf("r0=%g is not positive", lp.R0)
	}
	return nil
}

// densityFunc returns the density of the main allele's count at each
// fixed count of the other allele, along with the number of fitted
// parameters behind it.
func (w weights) densityFunc(p float64, maxTr, alleleTr int) (func(fixC int) []float64, int) {
	if w.LineFit {
		return func(fixC int) []float64 {
			return density.Line(fixC, w.Line, p, maxTr, alleleTr, false)
		}, w.Line.Len()
	}
	return func(fixC int) []float64 {
		if fixC >= len(w.Rows) {
			log.Debugf("no weights for fixed count %d (have %d rows)", fixC, len(w.Rows))
			return make([]float64, maxTr+1)
		}
		r, mix := w.Rows[fixC][0], w.Rows[fixC][1]
		if !(r > 0) {
			log.Debugf("no usable fit for fixed count %d (r=%g)", fixC, r)
			return make([]float64, maxTr+1)
		}
		return density.NegativeBinomial(r, p, mix, maxTr, alleleTr)
	}, 2
}
