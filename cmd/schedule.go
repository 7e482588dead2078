package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/KaramelBytes/dataclean-cli/internal/jobs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	schEvery     time.Duration
	schTick      time.Duration
	schMaxRuns   int
	schOutput    string
	schAudit     string
	schDelimiter string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <file>",
	Short: "Re-clean a file on an interval and print each job as a JSON line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		every := time.Duration(c.ScheduleEveryMinutes) * time.Minute
		if cmd.Flags().Changed("every") {
			every = schEvery
		}
		tick := time.Duration(c.ScheduleTickSeconds) * time.Second
		if cmd.Flags().Changed("tick") {
			tick = schTick
		}
		opt, err := resolveCleanOptions(c, cleanFlags{})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		pipeline := cleaning.NewPipeline(logger)
		enc := json.NewEncoder(cmd.OutOrStdout())
		history := &jobs.History{}
		var encErr error

		s := &jobs.Scheduler{
			Schedule: jobs.Schedule{Enabled: true, Every: every},
			Tick:     tick,
			History:  history,
			Logger:   logger.Named("scheduler"),
			Run: func(ctx context.Context) (*jobs.Record, error) {
				started := time.Now()
				ds, err := loadDataset(path, schDelimiter, c)
				if err != nil {
					return nil, err
				}
				rep, err := pipeline.Run(ds, nil, opt)
				if err != nil {
					return nil, err
				}
				finished := time.Now()
				if schOutput != "" {
					if err := writeCleanedCSV(schOutput, rep); err != nil {
						return nil, err
					}
				}
				if schAudit != "" {
					if err := writeAudit(schAudit, rep, finished); err != nil {
						return nil, err
					}
				}
				rec := jobs.NewRecord(filepath.Base(path), rep, started, finished)
				rec.OutPathCSV, rec.OutPathLog = schOutput, schAudit
				return &rec, nil
			},
			OnRecord: func(r jobs.Record) {
				if err := enc.Encode(r); err != nil {
					logger.Error("write job record", zap.Error(err))
					encErr = err
					cancel()
					return
				}
				if schMaxRuns > 0 && history.Len() >= schMaxRuns {
					cancel()
				}
			},
		}
		if err := s.Start(ctx); err != nil {
			return err
		}
		return encErr
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().DurationVar(&schEvery, "every", time.Hour, "interval between runs (default from schedule_every_minutes)")
	scheduleCmd.Flags().DurationVar(&schTick, "tick", 10*time.Second, "how often the schedule is checked (default from schedule_tick_seconds)")
	scheduleCmd.Flags().IntVar(&schMaxRuns, "max-runs", 0, "stop after this many successful runs (0 = until interrupted)")
	scheduleCmd.Flags().StringVarP(&schOutput, "output", "o", "", "path to rewrite the cleaned CSV after each run")
	scheduleCmd.Flags().StringVar(&schAudit, "audit", "", "path to rewrite the audit log after each run (.csv or .jsonl)")
	scheduleCmd.Flags().StringVar(&schDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
}
