// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

// traceinspect decodes kernel trace files and prints what they contain.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/fdoray/libtrace/etw"
	"github.com/fdoray/libtrace/event"
	"github.com/fdoray/libtrace/state"
	"github.com/fdoray/libtrace/symbols"
)

type exitCode int

const (
	exitSuccess exitCode = 0
	exitFailure exitCode = 1
)

// noSymbols is used when no debug-symbol binding is available; every
// image resolves to an empty table.
type noSymbols struct{}

func (noSymbols) Enumerate(symbols.Image) ([]symbols.Symbol, error) {
	return nil, nil
}

func main() {
	os.Exit(int(mainWithExitCode()))
}

func mainWithExitCode() exitCode {
	args, err := parseArgs()
	if err != nil {
		log.Errorf("Failed to parse arguments: %v", err)
		return exitFailure
	}

	if args.verboseMode {
		log.SetLevel(log.DebugLevel)
	}

	opener, err := etw.NewFileOpener()
	if err != nil {
		log.Errorf("No trace reader available: %v", err)
		return exitFailure
	}

	for _, trace := range args.traces {
		if err := inspectTrace(opener, trace, args); err != nil {
			log.Errorf("Failed to process %s: %v", trace, err)
			return exitFailure
		}
	}
	return exitSuccess
}

func inspectTrace(opener etw.TraceOpener, trace string, args *arguments) error {
	parser := etw.NewParser(opener)
	if err := parser.AddTraceSource(trace); err != nil {
		return err
	}

	sink := state.New(symbols.NewResolver(noSymbols{}))

	numEvents := 0
	err := parser.Parse(func(e *event.Event) {
		numEvents++
		if args.printEvents {
			printEvent(e)
		}
		sink.OnEvent(e)
	})
	if err != nil {
		return err
	}

	log.Infof("%s: %d events decoded, %d dropped, %d stack samples",
		trace, numEvents, parser.DroppedEvents(), len(sink.Samples()))

	if args.printStacks {
		printStacks(sink)
	}
	return nil
}

func printEvent(e *event.Event) {
	category, _ := e.Header().FieldAsString(event.CategoryFieldName)
	operation, _ := e.Header().FieldAsString(event.OperationFieldName)
	pid, _ := e.Header().FieldAsUint64(event.ProcessIDFieldName)
	tid, _ := e.Header().FieldAsUint64(event.ThreadIDFieldName)
	fmt.Printf("%d %s/%s pid=%d tid=%d\n",
		e.Timestamp(), category, operation, pid, tid)
}

func printStacks(sink *state.CurrentState) {
	for _, sample := range sink.Samples() {
		fmt.Printf("stack ts=%d pid=%d tid=%d\n",
			sample.Timestamp, sample.Pid, sample.Tid)
		for _, id := range sample.Frames {
			if name, ok := sink.Names().Get(id); ok {
				fmt.Printf("  %s\n", name)
			}
		}
	}
}
