package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"duef/internal/config"
	"duef/internal/crash"
	"duef/internal/extract"
	"duef/internal/utils"
)

func main() {
	var cli CLI
	kong.Parse(&cli, parserOptions()...)
	os.Exit(run(&cli, os.Stdout, os.Stderr))
}

func run(cli *CLI, stdout, stderr io.Writer) int {
	cfg, err := cli.Config()
	log := utils.NewConsoleLogger(stderr, cfg.Verbose)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	cfg.OutputRoot = config.DiscoverOutputRoot(cfg.OutputRoot, log)

	if cli.Clean {
		removed, err := utils.RemoveOutputRoot(cfg.OutputRoot)
		if err != nil {
			log.Error("Failed to clean %s: %v", cfg.OutputRoot, err)
			return 1
		}
		if removed {
			log.Debug("Crash collection directory cleared: %s", cfg.OutputRoot)
		} else {
			log.Debug("Nothing to clean at %s", cfg.OutputRoot)
		}
		return 0
	}

	report, err := extract.New(cfg, log).Run(cfg.InputPath)
	if err != nil {
		log.Error("%s: %v", crash.Kind(err), err)
		return 1
	}

	fmt.Fprintln(stdout, extract.FormatResult(report, cfg.Output))
	log.Info("%s", extract.Summary(report))

	if len(report.Files) > 0 && report.Written() == 0 {
		return 1
	}
	return 0
}
