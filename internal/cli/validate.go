package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"syncrun/internal/config"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: ./"+defaultConfigName+")")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		resolved, err := resolveConfigPath(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}

		cfg, err := config.Load(resolved)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}

		fmt.Fprintln(stdout, "Config OK")
		printConfigSummary(stdout, cfg)
		return ExitOK
	}
}

// printConfigSummary echoes the effective settings after defaults, so a dry
// validate shows what a run would actually use.
func printConfigSummary(w io.Writer, cfg config.Config) {
	total := 0
	for _, group := range cfg.Workload.Producers {
		total += group.Count
	}
	fmt.Fprintf(w, "  workload: %d group(s), %d producer(s)\n", len(cfg.Workload.Producers), total)
	fmt.Fprintf(w, "  sync: lock timeout %dms, max concurrent %d\n",
		cfg.Sync.LockTimeoutMs, cfg.Sync.MaxConcurrentTests)
	fmt.Fprintf(w, "  queue batching: %s, monitoring: %s\n",
		onOff(cfg.Sync.Queue.EnableBatching), onOff(cfg.Sync.EnableMonitoring))
	fmt.Fprintf(w, "  output: %s\n", cfg.Output.Dir)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
