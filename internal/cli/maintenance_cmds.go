package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zinincorp/taskpool/internal/scheduler"
)

// newArchiveCmd runs an archival pass or inspects cold storage.
func newArchiveCmd(flags *GlobalFlags) *cobra.Command {
	var retention time.Duration
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move old finished tasks to cold storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if retention == 0 {
				retention = app.Config.Archive.Retention
			}
			count, err := app.Archiver.ArchiveDone(retention)
			if err != nil {
				return err
			}
			cmd.Printf("archived %d task(s)\n", count)
			return nil
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 0, "override how long DONE tasks stay live")

	cmd.AddCommand(newArchiveShowCmd(flags), newArchiveStatsCmd(flags))
	return cmd
}

func newArchiveShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <date>",
		Short: "Show archive records for a day (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			records, err := app.Archiver.Records(args[0])
			if err != nil {
				return err
			}
			for _, r := range records {
				cmd.Printf("%s  archived %s\n", formatTaskLine(&r.Task), r.ArchivedAt.Format("15:04:05"))
			}
			return nil
		},
	}
}

func newArchiveStatsCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize cold storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.Archiver.Stats()
			if err != nil {
				return err
			}
			cmd.Printf("partitions: %d\nrecords:    %d\ndates:      %s\n",
				stats.Files, stats.TotalTasks, strings.Join(stats.Dates, ", "))
			return nil
		},
	}
}

// newStaleCmd prints the stale-task report.
func newStaleCmd(flags *GlobalFlags) *cobra.Command {
	var budget time.Duration
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "Report live tasks without recent progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if budget == 0 {
				budget = app.Config.Patrol.StaleBudget
			}
			report, err := app.Patrol.Report(budget)
			if err != nil {
				return err
			}
			cmd.Println(report)
			return nil
		},
	}
	cmd.Flags().DurationVar(&budget, "budget", 0, "override the staleness budget")
	return cmd
}

// newRunCmd runs the maintenance scheduler in the foreground until
// interrupted: the archiver and the stale patrol tick on independent timers.
func newRunCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the periodic maintenance jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			cfg := app.Config
			sched, err := scheduler.New(app.Logger,
				scheduler.Job{
					Name:     "archiver",
					Interval: cfg.Archive.Interval,
					Run: func(context.Context) error {
						_, aErr := app.Archiver.ArchiveDone(cfg.Archive.Retention)
						return aErr
					},
				},
				scheduler.Job{
					Name:     "stale-patrol",
					Interval: cfg.Patrol.Interval,
					Run: func(context.Context) error {
						report, pErr := app.Patrol.Report(cfg.Patrol.StaleBudget)
						if pErr != nil {
							return pErr
						}
						app.Logger.Info().Str("report", report).Msg("stale patrol pass")
						return nil
					},
				},
			)
			if err != nil {
				return err
			}

			err = sched.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
