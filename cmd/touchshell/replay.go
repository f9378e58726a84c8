package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/touchshell/touchshell/internal/logging"
	"github.com/touchshell/touchshell/internal/replay"
)

func runReplay(args []string) int {
	fs := newFlagSet("replay",
		"Usage: touchshell replay [--frames] [--log-level LEVEL] <script.yaml>",
		"Play an input script against an offline shell and print every backend call.")
	frames := fs.Bool("frames", false, "Also print every surface drawn per frame")
	level := fs.String("log-level", "warn", "Shell log level on stderr (debug, info, warn, error)")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "replay requires exactly one script")
		fs.Usage()
		return 2
	}

	lvl, err := logging.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	script, err := replay.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_, err = replay.Run(script, replay.Options{
		Logger: slog.New(logging.NewHandler(os.Stderr, "text", lvl)),
		Out:    os.Stdout,
		Frames: *frames,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
