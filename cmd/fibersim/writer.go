package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"fibersim/internal/results"
)

// newWriters sets up assignment and summary writers based on flags and env
// vars. It returns the writers, the TUI writer when one was started, and a
// cleanup function closing any resources.
//
// Without --print-only, rows go to GreptimeDB when GREPTIMEDB_ENDPOINT is
// set, otherwise to STDOUT. --log-file adds a JSONL export, --tui adds a
// terminal table (only on a real terminal).
func newWriters(printOnly bool, logFile string, useTUI bool) (results.Writer, results.SummaryWriter, *results.TUIWriter, func(), error) {
	if useTUI && printOnly {
		return nil, nil, nil, nil, fmt.Errorf("--tui and --print-only are mutually exclusive")
	}
	cleanup := func() {}

	var writers []results.Writer
	var summaryWriters []results.SummaryWriter
	var tui *results.TUIWriter

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	switch {
	case useTUI:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, nil, nil, fmt.Errorf("--tui requires a terminal")
		}
		tui = results.NewTUIWriter()
		writers = append(writers, tui)
		summaryWriters = append(summaryWriters, tui)
	case printOnly || endpoint == "":
		w := &results.StdoutWriter{}
		writers = append(writers, w)
		summaryWriters = append(summaryWriters, w)
	}

	if endpoint != "" && !printOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		gw, err := results.NewGreptimeDBWriter(endpoint, database)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("greptimedb writer: %w", err)
		}
		writers = append(writers, gw)
		summaryWriters = append(summaryWriters, gw)
	}

	if logFile != "" {
		fw, err := results.NewFileWriter(logFile, logFile+".summaries")
		if err != nil {
			return nil, nil, nil, nil, err
		}
		writers = append(writers, fw)
		summaryWriters = append(summaryWriters, fw)
		cleanup = func() { fw.Close() }
	}

	if len(writers) == 1 {
		if sw, ok := writers[0].(results.SummaryWriter); ok {
			return writers[0], sw, tui, cleanup, nil
		}
	}
	mw := results.NewMultiWriter(writers, summaryWriters)
	return mw, mw, tui, cleanup, nil
}
