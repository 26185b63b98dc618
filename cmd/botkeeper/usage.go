package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func binaryName() string {
	if len(os.Args) == 0 {
		return "botkeeper"
	}
	name := strings.TrimSpace(filepath.Base(os.Args[0]))
	if name == "" {
		return "botkeeper"
	}
	return name
}

func isHelpArg(arg string) bool {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "-h", "--help", "-help", "help":
		return true
	default:
		return false
	}
}

func printRootUsage(w io.Writer) {
	bin := binaryName()
	fmt.Fprintf(w, `%s - bot auto-restart keeper

Usage:
  %s [command] [options]

Commands:
  run         Supervise the bot (default)
  init        Write a starter botkeeper.yaml
  version     Print version

Config:
  - --config is optional; by default we look for ./botkeeper.yaml.
  - Relative bot paths resolve against the keeper executable's directory.

Help:
  %s -h
  %s <command> -h
  %s help <command>
`, bin, bin, bin, bin, bin)
}

func printRunUsage(w io.Writer) {
	bin := binaryName()
	fmt.Fprintf(w, `Usage:
  %s run [options]
  %s [options]        (same as "run")

Options:
  --config <file>        Config file (default: ./botkeeper.yaml)
  --bot <path>           Bot program (overrides config; relative paths resolve
                         against the keeper executable's directory)
  --log-file <file>      Append lifecycle log lines to this file (overrides config)
  --redis-url <url>      Redis url for presence publishing (overrides config)
  --verbose              Echo lifecycle log lines to stderr
`, bin, bin)
}
