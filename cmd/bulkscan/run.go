package main

import (
	"context"
	"errors"
	"time"

	"bulkscan/internal/platform/logger"
	"bulkscan/internal/services/bulk/domain"
	bulkmod "bulkscan/internal/services/bulk/module"

	"github.com/spf13/cobra"
)

type runOptions struct {
	*rootOptions
	flags   requestFlags
	workers int
	dryRun  bool
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run [command]",
		Short: "Scan one upload for a reference text and record clearing decisions",
		Long: `Run executes exactly one bulk scan. The run is described either by the
scheduler's encoded command argument or by flags.

Heartbeat lines are written to stdout while files are scanned; logs go to stderr.
Exit status is 0 on success, 1 when the run failed and 2 when it could not start.

Example:
  bulkscan run "$(bulkscan encode --upload-tree 42 --license 7 --text 'MIT License')"
  bulkscan run --mode remove --upload-tree 42 --license 7 --text "GPL" --workers 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd.Context(), opts, args)
		},
	}
	opts.flags.bind(cmd)
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "override CORE_BULK_WORKERS")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "scan and report matches without writing decisions")
	return cmd
}

func runBulk(ctx context.Context, opts *runOptions, args []string) error {
	req, err := opts.flags.request(args)
	if err != nil {
		return badUsage("invalid run", err)
	}

	a, err := build(ctx, opts.cfg, bulkmod.Options{Workers: opts.workers, DryRun: opts.dryRun}, "run")
	if err != nil {
		return badUsage("startup failed", err)
	}
	defer a.close()

	a.bulk.Heart.Start(ctx)
	out, runErr := a.bulk.Runner.Execute(ctx, req)
	a.bulk.Heart.Stop()

	// the run context may already be cancelled; metrics still go out
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	_ = a.metrics.Push(pushCtx)
	cancel()

	log := logger.Get()
	ev := log.Info()
	if !out.Success {
		ev = log.Error().Err(runErr)
	}
	ev.Str("run_id", out.RunID).
		Int64("upload_id", out.UploadID).
		Str("mode", req.Mode.String()).
		Int("files", out.Files).
		Int("truncated", out.Truncated).
		Int("matches", out.Matches).
		Int("recorded", out.Recorded).
		Int("write_failures", out.WriteFailures).
		Int("worker_failures", out.WorkerFailures).
		Dur("took", out.Duration()).
		Msg("bulk run finished")

	switch {
	case errors.Is(runErr, domain.ErrMalformedRequest):
		return badUsage("invalid run", runErr)
	case runErr != nil:
		return failed("run failed", runErr)
	case !out.Success:
		return failed("run failed", nil)
	}
	return nil
}
