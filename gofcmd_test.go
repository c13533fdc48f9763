// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"strings"

	"github.com/autosome-ru/negbinfit/density"
	"github.com/autosome-ru/negbinfit/gof"
	"github.com/kshedden/gonpy"
	"gopkg.in/check.v1"
)

type gofcmdSuite struct{}

var _ = check.Suite(&gofcmdSuite{})

const testAlleleTr, testMaxTr = 5, 40

// writeStatsTable writes a stats table where, for main allele ref, the
// ref count at each fixed alt count follows refDens(alt), and
// likewise for alt. Counts for the same (ref, alt) cell are summed.
func writeStatsTable(c *check.C, fnm string, refDens, altDens func(int) []float64) {
	cells := map[[2]int]int{}
	for fix := testAlleleTr; fix <= testMaxTr; fix++ {
		for k, d := range refDens(fix) {
			cells[[2]int{k, fix}] += int(math.Round(d * 2000))
		}
		for k, d := range altDens(fix) {
			cells[[2]int{fix, k}] += int(math.Round(d * 2000))
		}
	}
	var buf bytes.Buffer
	fmt.Fprint(&buf, "ref\talt\tcounts\n")
	for cell, n := range cells {
		if n > 0 {
			fmt.Fprintf(&buf, "%d\t%d\t%d\n", cell[0], cell[1], n)
		}
	}
	c.Assert(ioutil.WriteFile(fnm, buf.Bytes(), 0644), check.IsNil)
}

func checkGofOutput(c *check.C, fnm string, fields int) {
	buf, err := ioutil.ReadFile(fnm)
	c.Assert(err, check.IsNil)
	lines := strings.Split(strings.TrimSuffix(string(buf), "\n"), "\n")
	c.Assert(lines, check.HasLen, 1+testMaxTr-testAlleleTr+1+1)
	c.Check(strings.Split(lines[0], "\t"), check.HasLen, fields)
	c.Check(lines[1], check.Matches, fmt.Sprintf(`%d\t.*`, testAlleleTr))
	last := strings.Split(lines[len(lines)-1], "\t")
	c.Check(last, check.HasLen, fields)
	c.Check(last[0], check.Equals, "overall")
}

func (s *gofcmdSuite) TestLineFit(c *check.C) {
	tmpdir := c.MkDir()
	params := density.LineParams{R0: 3, P0: 0.6, W0: 0.1, Th0: 0.4}
	dens := func(fix int) []float64 { return density.Line(fix, params, 0.5, testMaxTr, testAlleleTr, false) }
	writeStatsTable(c, tmpdir+"/sample.tsv", dens, dens)
	for _, allele := range gof.Alleles {
		buf, err := json.Marshal(params)
		c.Assert(err, check.IsNil)
		c.Assert(ioutil.WriteFile(makeArrayPath(tmpdir, allele, true), buf, 0644), check.IsNil)
	}

	exited := (&gofcmd{}).RunCommand("calc-gof", []string{
		"-i", tmpdir + "/sample.tsv",
		"-weights", tmpdir,
		"-line-fit",
		"-bad", "1",
		"-allele-tr", fmt.Sprint(testAlleleTr),
		"-max-tr", fmt.Sprint(testMaxTr),
		"-o", tmpdir + "/out",
	}, &bytes.Buffer{}, os.Stderr, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	for _, allele := range gof.Alleles {
		checkGofOutput(c, nbWeightPath(tmpdir+"/out/sample", allele), 3)
	}
}

func (s *gofcmdSuite) TestPerCoverageFit(c *check.C) {
	tmpdir := c.MkDir()
	rows := make([][]float64, testMaxTr+1)
	for i := range rows {
		rows[i] = []float64{2 + float64(i)/4, 0.5}
	}
	dens := func(fix int) []float64 {
		return density.NegativeBinomial(rows[fix][0], 0.5, rows[fix][1], testMaxTr, testAlleleTr)
	}
	writeStatsTable(c, tmpdir+"/sample.tsv", dens, dens)
	for _, allele := range gof.Alleles {
		npw, err := gonpy.NewFileWriter(makeArrayPath(tmpdir, allele, false))
		c.Assert(err, check.IsNil)
		var data []float64
		for _, row := range rows {
			data = append(data, row...)
		}
		npw.Shape = []int{len(rows), 2}
		c.Assert(npw.WriteFloat64(data), check.IsNil)
	}

	exited := (&gofcmd{}).RunCommand("calc-gof", []string{
		"-i", tmpdir + "/sample.tsv",
		"-weights", tmpdir,
		"-allele-tr", fmt.Sprint(testAlleleTr),
		"-max-tr", fmt.Sprint(testMaxTr),
		"-o", tmpdir + "/out",
	}, &bytes.Buffer{}, os.Stderr, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	for _, allele := range gof.Alleles {
		checkGofOutput(c, nbWeightPath(tmpdir+"/out/sample", allele), 5)
	}
}

func (s *gofcmdSuite) TestUsageErrors(c *check.C) {
	var stderr bytes.Buffer
	exited := (&gofcmd{}).RunCommand("calc-gof", []string{"-weights", "/nonexistent"}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 2)
	c.Check(stderr.String(), check.Matches, `(?ms).*-i and -weights must be specified.*`)

	exited = (&gofcmd{}).RunCommand("calc-gof", []string{"-i", "x", "-weights", "y", "-allele-tr", "50", "-max-tr", "10"}, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	c.Check(exited, check.Equals, 2)

	exited = (&gofcmd{}).RunCommand("calc-gof", []string{"-i", "x", "-weights", "y", "-allele-tr", "-1"}, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	c.Check(exited, check.Equals, 2)

	stderr.Reset()
	exited = (&gofcmd{}).RunCommand("calc-gof", []string{"-i", "x", "-weights", "y", "-bad", "-0.5"}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 2)
	c.Check(stderr.String(), check.Matches, `(?ms).*-bad=-0.5 must be non-negative.*`)

	exited = (&gofcmd{}).RunCommand("calc-gof", []string{"-i", c.MkDir() + "/missing.tsv", "-weights", c.MkDir()}, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	c.Check(exited, check.Equals, 1)

	exited = (&gofcmd{}).RunCommand("calc-gof", []string{"-h"}, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	c.Check(exited, check.Equals, 0)
}

func (s *gofcmdSuite) TestDuplicateRows(c *check.C) {
	tmpdir := c.MkDir()
	c.Assert(ioutil.WriteFile(tmpdir+"/dup.tsv", []byte("ref\talt\tcounts\n6\t6\t1\n6\t6\t2\n"), 0644), check.IsNil)
	for _, allele := range gof.Alleles {
		c.Assert(ioutil.WriteFile(makeArrayPath(tmpdir, allele, true), []byte(`{"r0": 3, "p0": 0.6, "w0": 0.1, "th0": 0.4}`), 0644), check.IsNil)
	}
	var stderr bytes.Buffer
	exited := (&gofcmd{}).RunCommand("calc-gof", []string{"-i", tmpdir + "/dup.tsv", "-weights", tmpdir, "-line-fit", "-max-tr", "10", "-o", tmpdir + "/out"}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 1)
	c.Check(stderr.String(), check.Matches, `(?ms).*data integrity error: multiple rows with ref=6 alt=6.*`)
}

func (s *gofcmdSuite) TestWeightsOutOfRange(c *check.C) {
	tmpdir := c.MkDir()
	c.Assert(ioutil.WriteFile(tmpdir+"/sample.tsv", []byte("ref\talt\tcounts\n6\t7\t1\n"), 0644), check.IsNil)
	c.Assert(ioutil.WriteFile(makeArrayPath(tmpdir, gof.Ref, true), []byte(`{"r0": 3, "p0": 0.6, "w0": 0.1, "th0": 0.4}`), 0644), check.IsNil)
	c.Assert(ioutil.WriteFile(makeArrayPath(tmpdir, gof.Alt, true), []byte(`{"r0": 3, "p0": 1.6, "w0": 0.1, "th0": 0.4}`), 0644), check.IsNil)
	var stderr bytes.Buffer
	exited := (&gofcmd{}).RunCommand("calc-gof", []string{"-i", tmpdir + "/sample.tsv", "-weights", tmpdir, "-line-fit", "-max-tr", "10", "-o", tmpdir + "/out"}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 1)
	c.Check(stderr.String(), check.Matches, `(?ms).*data integrity error: .*alt\.json: p0=1.6 is not in \[0,1\].*`)
}
