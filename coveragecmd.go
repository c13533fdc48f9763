// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/autosome-ru/negbinfit/gof"
	log "github.com/sirupsen/logrus"
)

type coveragecmd struct{}

func (cmd *coveragecmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "stats table `file`")
	outputFilename := flags.String("o", "-", "output `file`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}

	var table gof.Table
	name := "stdin"
	if *inputFilename == "-" {
		table, err = parseStatsTable(stdin)
	} else {
		table, name, err = readStatsTable(*inputFilename)
	}
	if err != nil {
		return 1
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
	err = writeCoverage(bufw, name, table)
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
	return 0
}

func writeCoverage(w io.Writer, name string, table gof.Table) error {
	var ret struct {
		Name   string
		Total  int
		Counts []int // Counts[c] is the number of sites with coverage (ref+alt) c
	}
	ret.Name = name
	ret.Counts = gof.CoverageDistribution(table)
	for _, n := range ret.Counts {
		ret.Total += n
	}
	log.Infof("%s: %d coverage values, %d sites", name, len(ret.Counts), ret.Total)
	return json.NewEncoder(w).Encode(ret)
}
