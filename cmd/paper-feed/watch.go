// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/internal/pipeline"
)

const defaultSchedule = "0 */6 * * *"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the update on a cron schedule until interrupted",
	Long: `Watch keeps the process alive and runs one update per cron tick. A
tick that arrives while the previous update is still running is skipped, so
updates never overlap within the process. Stop with SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("schedule", defaultSchedule, "cron expression (5 fields)")
	watchCmd.Flags().Bool("run-on-start", false, "run one update immediately")
	viper.BindPFlag(keySchedule, watchCmd.Flags().Lookup("schedule"))

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := feedConfig(viper.GetViper())
	if err != nil {
		return err
	}
	schedule := viper.GetString(keySchedule)
	runOnStart, _ := cmd.Flags().GetBool("run-on-start")

	out := cmd.OutOrStdout()
	runner, closeIndex, err := newRunner(cfg, out)
	if err != nil {
		return err
	}
	defer closeIndex()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func() { runOnce(ctx, runner, out) }

	c, err := newScheduler(schedule, run)
	if err != nil {
		return err
	}

	if runOnStart {
		fmt.Fprintln(out, "Running initial update...")
		run()
	}

	c.Start()
	fmt.Fprintf(out, "Scheduled updates with cron expression: %s\n", schedule)

	<-ctx.Done()
	fmt.Fprintln(out, "Shutting down, waiting for a running update to finish...")
	<-c.Stop().Done()
	fmt.Fprintln(out, "Shutdown complete")
	return nil
}

// newScheduler returns a cron scheduler that calls run on schedule and
// skips ticks while a previous call is still in progress.
func newScheduler(schedule string, run func()) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, run); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return c, nil
}

func runOnce(ctx context.Context, runner *pipeline.Runner, out io.Writer) {
	printBanner(out)
	if _, err := runner.Run(ctx); err != nil && !errors.Is(err, pipeline.ErrFetchFailed) {
		fmt.Fprintf(out, "warning: update failed: %v\n", err)
	}
}
