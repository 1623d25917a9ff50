package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"syncrun/internal/config"
	"syncrun/internal/report"
	"syncrun/internal/runner"
	"syncrun/internal/ui/live"
)

var runAndWrite = runner.RunAndWrite

func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: ./"+defaultConfigName+")")
		uiMode := fs.String("ui", "auto", "UI mode: auto, live, or plain")
		outputDir := fs.String("output", "", "Override output directory")
		noColor := fs.Bool("no-color", false, "Disable terminal styling")
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			return ExitUsage
		}

		resolved, err := resolveConfigPath(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to resolve config: %v\n", err)
			return ExitError
		}
		cfg, err := config.Load(resolved)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		if *outputDir != "" {
			cfg.Output.Dir = *outputDir
		}

		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		if decision.useLive {
			return runLive(cfg, *noColor, stdout, stderr)
		}
		return runPlain(cfg, *noColor, stdout, stderr)
	}
}

// runPlain streams synchronized output directly to the terminal.
func runPlain(cfg config.Config, noColor bool, stdout, stderr io.Writer) int {
	sink := newPlainSink(stdout, stderr)
	results, paths, err := runAndWrite(context.Background(), cfg, runner.RunOptions{
		Sink:   sink,
		Styled: !noColor && isTerminal(stdout),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Run failed: %v\n", err)
		return ExitError
	}
	printRunResult(stdout, results.RunID, paths)
	return ExitOK
}

// runLive drives the bubbletea status view. Synchronized output is buffered
// during the run and replayed once the UI exits.
func runLive(cfg config.Config, noColor bool, stdout, stderr io.Writer) int {
	runID, err := runner.NewRunID()
	if err != nil {
		fmt.Fprintf(stderr, "Run failed: %v\n", err)
		return ExitError
	}

	controller := startLiveUI(stdout, live.Options{NoColor: noColor})
	controller.RunStarted(runID)

	sink := newLiveSink()
	results, paths, err := runAndWrite(context.Background(), cfg, runner.RunOptions{
		Sink:     sink,
		Observer: controller,
		RunID:    runID,
	})
	controller.RunFinished()
	controller.Wait()

	if replayErr := sink.replay(stdout, stderr); replayErr != nil && err == nil {
		err = replayErr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Run failed: %v\n", err)
		return ExitError
	}
	printRunResult(stdout, results.RunID, paths)
	return ExitOK
}

func printRunResult(stdout io.Writer, runID string, paths report.OutputPaths) {
	fmt.Fprintf(stdout, "Run %s completed\n", runID)
	fmt.Fprintf(stdout, "Results: %s\n", paths.ResultsPath())
	fmt.Fprintf(stdout, "Report: %s\n", paths.HTMLPath())
}
