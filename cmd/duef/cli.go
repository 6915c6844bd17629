package main

import (
	"math"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"duef/internal/config"
	"duef/internal/crash"
)

const description = `Unreal Engine crash file decompressor.

Extracts the files packed in a .uecrash report to <root>/<directory>/ and prints
the directory path (or, with -i, the individual file paths) for piping.

Examples:
  duef CrashReport.uecrash     Decompress a crash file
  duef -v -f crash.uecrash     Decompress with verbose output
  duef -i crash.uecrash        Print individual file paths
  duef --clean                 Remove everything extracted so far

Output root: ~/.duef on Unix, %LocalAppData%\duef on Windows,
overridable with --output or $DUEF_OUTPUT.`

// CLI is the command line grammar.
type CLI struct {
	Input       string `arg:"" optional:"" name:"crash-file" help:"Crash file to process (default ${default_input})."`
	File        string `short:"f" placeholder:"FILE" help:"Crash file to process."`
	Verbose     bool   `short:"v" help:"Enable verbose output to stderr."`
	Individual  bool   `short:"i" help:"Print individual file paths instead of the directory path."`
	Clean       bool   `help:"Remove all extracted files from the output root and exit."`
	StrictIndex bool   `help:"Fail when an embedded file's index does not match its position."`
	Output      string `short:"o" placeholder:"DIR" help:"Output root directory."`
	Format      string `default:"auto" enum:"auto,zlib,lz4,zstd" help:"Compression container of the crash file (${enum})."`
	MaxSize     string `placeholder:"SIZE" help:"Refuse to inflate more than SIZE bytes (e.g. 512MiB)."`
}

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name("duef"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{"default_input": config.DefaultInputPath},
	}
}

func (c *CLI) Validate() error {
	if c.File != "" && c.Input != "" {
		return errors.New("multiple file arguments provided, only one file can be processed at a time")
	}
	_, err := parseMaxSize(c.MaxSize)
	return err
}

// parseMaxSize reads a human size such as "512MiB". Empty means no cap.
func parseMaxSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrap(err, "--max-size")
	}
	if n > math.MaxInt64 {
		return 0, errors.Errorf("--max-size: %s is too large", s)
	}
	return int64(n), nil
}

// Config turns the parsed flags into a run configuration. OutputRoot holds
// the --output value as given; the run resolves it with
// config.DiscoverOutputRoot once logging is set up.
func (c *CLI) Config() (config.Config, error) {
	cfg := config.Config{
		InputPath:   config.DefaultInputPath,
		OutputRoot:  c.Output,
		Verbose:     c.Verbose,
		StrictIndex: c.StrictIndex,
	}
	switch {
	case c.File != "":
		cfg.InputPath = c.File
	case c.Input != "":
		cfg.InputPath = c.Input
	}
	if c.Individual {
		cfg.Output = config.PrintFiles
	}

	format, err := crash.ParseFormat(c.Format)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Format = format

	if cfg.MaxSize, err = parseMaxSize(c.MaxSize); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
