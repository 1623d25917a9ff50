package runner

import (
	"context"

	"syncrun/internal/config"
	"syncrun/internal/report"
)

// RunAndWrite executes the workload and writes the run artifacts under the
// configured output directory.
func RunAndWrite(ctx context.Context, cfg config.Config, opts RunOptions) (report.Results, report.OutputPaths, error) {
	results, err := Run(ctx, cfg, opts)
	if err != nil {
		return report.Results{}, report.OutputPaths{}, err
	}
	paths, err := report.WriteRunOutputs(results, cfg.Output.Dir)
	if err != nil {
		return results, report.OutputPaths{}, err
	}
	return results, paths, nil
}
