// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3"
)

// Help strings for command line arguments.
var (
	verboseModeHelp = "Enable verbose logging."
	printEventsHelp = "Print every decoded event to stdout."
	printStacksHelp = "Print resolved stack samples to stdout."
)

type arguments struct {
	verboseMode bool
	printEvents bool
	printStacks bool

	// Trace files to inspect.
	traces []string
}

func parseArgs() (*arguments, error) {
	var args arguments

	fs := flag.NewFlagSet("traceinspect", flag.ContinueOnError)

	// Please keep the parameters ordered alphabetically in the source-code.
	fs.BoolVar(&args.printEvents, "print-events", false, printEventsHelp)
	fs.BoolVar(&args.printStacks, "print-stacks", false, printStacksHelp)
	fs.BoolVar(&args.verboseMode, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&args.verboseMode, "verbose", false, verboseModeHelp)

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] trace.etl...\n", fs.Name())
		fs.PrintDefaults()
	}

	err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("LIBTRACE"))
	if err != nil {
		return nil, err
	}

	args.traces = fs.Args()
	if len(args.traces) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no trace file given")
	}
	return &args, nil
}
