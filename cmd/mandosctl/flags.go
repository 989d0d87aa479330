// Copyright (c) 2024 the mandos authors

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

var errExit = errors.New("exit")

var (
	verbose bool
	vdebug  bool
	vtrace  bool
	outFlag string
	prettyFlag bool
)

var (
	subcommand string
	scenarioPath string
)

func init() {
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.BoolVar(&vdebug, "vv", false, "debug logging")
	flag.BoolVar(&vtrace, "vvv", false, "trace logging")
	flag.StringVar(&outFlag, "out", "", "output file, stdout if not set")
	flag.BoolVar(&prettyFlag, "pretty", false, "force pretty-printed output (auto-detected from the output terminal otherwise)")
}

func parseFlags() error {
	if len(os.Args) < 2 {
		printUsage()
		return errExit
	}
	switch os.Args[1] {
	case "version":
		printVersion()
		return errExit
	case "help", "-h", "--help":
		printUsage()
		return errExit
	case "validate", "dump":
		subcommand = os.Args[1]
	default:
		return errors.Errorf("unknown subcommand %q, expected validate or dump", os.Args[1])
	}

	if err := flag.CommandLine.Parse(os.Args[2:]); err != nil {
		return err
	}
	if flag.NArg() < 1 {
		return errors.New("a scenario file path is required")
	}
	scenarioPath = flag.Arg(0)
	return nil
}

func printUsage() {
	fmt.Printf("Usage: %s <validate|dump> [flags] <scenario.json|.yaml>\n", appName)
	fmt.Println("\nFlags")
	flag.PrintDefaults()
}
