// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sort"

	"github.com/autosome-ru/negbinfit/density"
	"github.com/autosome-ru/negbinfit/gof"
	log "github.com/sirupsen/logrus"
)

type gofcmd struct {
	bad      float64
	alleleTr int
	maxTr    int
	lineFit  bool
	threads  int
}

func (cmd *gofcmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	pprof := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	inputFilename := flags.String("i", "", "stats table `file` (tab-separated ref, alt, counts; may be gzipped)")
	weightsDir := flags.String("weights", "", "`directory` containing fitted weights (ref.npy/alt.npy, or ref.json/alt.json with -line-fit)")
	outputDir := flags.String("o", "./out", "output `directory`")
	flags.Float64Var(&cmd.bad, "bad", 1, "allelic dosage (BAD) of the sites in the stats table")
	flags.IntVar(&cmd.alleleTr, "allele-tr", 5, "minimum read count per allele (left truncation)")
	flags.IntVar(&cmd.maxTr, "max-tr", 500, "maximum read count per allele")
	flags.BoolVar(&cmd.lineFit, "line-fit", false, "weights are line fits (json) rather than per-coverage arrays (npy)")
	flags.IntVar(&cmd.threads, "threads", 2, "number of alleles to score concurrently")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() > 0 {
		err = fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())
		return 2
	}

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	if *inputFilename == "" || *weightsDir == "" {
		err = errors.New("both -i and -weights must be specified")
		return 2
	}
	if cmd.alleleTr < 0 || cmd.alleleTr > cmd.maxTr {
		err = fmt.Errorf("-allele-tr=%d must be in [0, -max-tr=%d]", cmd.alleleTr, cmd.maxTr)
		return 2
	}
	if !(cmd.bad >= 0) {
		err = fmt.Errorf("-bad=%g must be non-negative", cmd.bad)
		return 2
	}

	table, name, err := readStatsTable(*inputFilename)
	if err != nil {
		return 1
	}
	log.Infof("read %d rows from %s", len(table), *inputFilename)
	allWeights, err := checkWeights(*weightsDir, cmd.lineFit)
	if err != nil {
		return 1
	}
	outdir, err := makeOutPath(*outputDir, name)
	if err != nil {
		return 1
	}

	thr := throttle{Max: cmd.threads}
	for _, allele := range gof.Alleles {
		allele := allele
		thr.Go(func() error {
			return cmd.scoreAllele(table, allele, allWeights[allele], outdir)
		})
	}
	err = thr.Wait()
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *gofcmd) scoreAllele(table gof.Table, allele gof.Allele, w weights, outdir string) error {
	densityFn, nParams := w.densityFunc(density.GetP(cmd.bad), cmd.maxTr, cmd.alleleTr)
	log.Infof("scoring %s (%d parameters)", allele, nParams)
	res, err := gof.Overall(table, densityFn, nParams, allele, cmd.alleleTr, cmd.maxTr)
	if err != nil {
		return fmt.Errorf("%s: %w", allele, err)
	}
	log.Infof("%s overall gof %g (p-value %g)", allele, res.Overall, res.OverallPValue)
	fnm := nbWeightPath(outdir, allele)
	err = writeGof(fnm, res, w)
	if err != nil {
		return fmt.Errorf("write %s: %w", fnm, err)
	}
	return nil
}

// writeGof writes one row per fixed count (with its weights, for
// per-coverage fits) and a final "overall" row.
func writeGof(fnm string, res *gof.Result, w weights) error {
	f, err := os.OpenFile(fnm, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()
	bufw := bufio.NewWriter(f)
	if w.LineFit {
		fmt.Fprintf(bufw, "fix_c\tgof\tpvalue\n")
	} else {
		fmt.Fprintf(bufw, "fix_c\tr\tw\tgof\tpvalue\n")
	}
	fixes := make([]int, 0, len(res.Points))
	for fixC := range res.Points {
		fixes = append(fixes, fixC)
	}
	sort.Ints(fixes)
	for _, fixC := range fixes {
		if w.LineFit {
			fmt.Fprintf(bufw, "%d\t%g\t%g\n", fixC, res.Points[fixC], res.PValues[fixC])
		} else if fixC < len(w.Rows) {
			fmt.Fprintf(bufw, "%d\t%g\t%g\t%g\t%g\n", fixC, w.Rows[fixC][0], w.Rows[fixC][1], res.Points[fixC], res.PValues[fixC])
		} else {
			fmt.Fprintf(bufw, "%d\t\t\t%g\t%g\n", fixC, res.Points[fixC], res.PValues[fixC])
		}
	}
	if w.LineFit {
		fmt.Fprintf(bufw, "overall\t%g\t%g\n", res.Overall, res.OverallPValue)
	} else {
		fmt.Fprintf(bufw, "overall\t\t\t%g\t%g\n", res.Overall, res.OverallPValue)
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return f.Close()
}
