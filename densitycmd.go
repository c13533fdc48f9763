// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/autosome-ru/negbinfit/density"
	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

// densitycmd writes a single density array to a .npy file.
type densitycmd struct {
	kind     string
	r        float64
	p        float64
	w        float64
	size     int
	leftMost int
	log      bool
	drawRest bool
}

func (cmd *densitycmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	outputFilename := flags.String("o", "-", "output `file` (.npy)")
	flags.StringVar(&cmd.kind, "kind", "nb", "density `type`: nb (two-mode negative binomial), cover (single-mode negative binomial), or geom")
	flags.Float64Var(&cmd.r, "r", 1, "negative binomial shape")
	flags.Float64Var(&cmd.p, "p", 0.5, "probability parameter")
	flags.Float64Var(&cmd.w, "w", 0.5, "mixture weight of the right mode (nb only)")
	flags.IntVar(&cmd.size, "size", 100, "largest count")
	flags.IntVar(&cmd.leftMost, "left", 0, "left truncation: smallest count in the normalized support")
	flags.BoolVar(&cmd.log, "log", false, "output natural log of the density")
	flags.BoolVar(&cmd.drawRest, "draw-rest", false, "fill in entries below -left instead of zeroing them (cover and geom only)")
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

	dens, err := cmd.build()
	if err != nil {
		return 2
	}

	var output io.WriteCloser
	if *outputFilename == "-" {
		output = nopCloser{stdout}
	} else {
		output, err = os.OpenFile(*outputFilename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
		if err != nil {
			return 1
		}
		defer output.Close()
	}
	bufw := bufio.NewWriter(output)
	err = writeDensity(bufw, dens)
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	log.Infof("wrote %s density with %d entries", cmd.kind, len(dens))
	return 0
}

func (cmd *densitycmd) build() ([]float64, error) {
	if cmd.size < 0 {
		return nil, fmt.Errorf("invalid -size=%d", cmd.size)
	}
	if cmd.p < 0 || cmd.p > 1 {
		return nil, fmt.Errorf("invalid -p=%v: must be between 0 and 1", cmd.p)
	}
	switch cmd.kind {
	case "nb":
		dens := density.NegativeBinomial(cmd.r, cmd.p, cmd.w, cmd.size, cmd.leftMost)
		if cmd.log {
			dens = density.Log(dens)
		}
		return dens, nil
	case "cover":
		return density.CoverNegativeBinomial(cmd.r, cmd.p, cmd.size, cmd.leftMost, cmd.log, cmd.drawRest), nil
	case "geom":
		dens := density.Geometric(cmd.p, cmd.leftMost, cmd.size, cmd.drawRest)
		if cmd.log {
			dens = density.Log(dens)
		}
		return dens, nil
	default:
		return nil, fmt.Errorf("unknown -kind=%q", cmd.kind)
	}
}

func writeDensity(w io.Writer, dens []float64) error {
	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return err
	}
	npw.Shape = []int{len(dens)}
	return npw.WriteFloat64(dens)
}
