package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/pool"
)

// newCreateCmd creates a task, auto-tagging it from its text. With --claim
// the router assigns it immediately when confidence clears the auto-claim
// threshold.
func newCreateCmd(flags *GlobalFlags) *cobra.Command {
	var (
		description string
		priority    int
		blockedBy   []string
		claim       bool
	)
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task in the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			title := args[0]
			tags := app.ExtractTags(title + " " + description)
			task, err := app.Pool.Create(pool.CreateRequest{
				Title:       title,
				Description: description,
				Tags:        tags,
				Priority:    constants.TaskPriority(priority),
				BlockedBy:   blockedBy,
				Source:      "manual",
			})
			if err != nil {
				return err
			}

			if claim && task.Status == constants.TaskStatusTodo {
				if suggestion, sErr := app.Router.SuggestAssignee(task); sErr == nil &&
					suggestion.Confidence >= app.Config.Routing.AutoClaimThreshold {
					task, err = app.Pool.Assign(task.ID, suggestion.Worker, "auto-claim", suggestion.Confidence)
					if err != nil {
						return err
					}
				}
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().IntVarP(&priority, "priority", "p", int(constants.PriorityMedium), "priority 1 (critical) to 4 (low)")
	cmd.Flags().StringSliceVar(&blockedBy, "blocked-by", nil, "ids of tasks that must finish first")
	cmd.Flags().BoolVar(&claim, "claim", false, "auto-assign when routing confidence is high enough")
	return cmd
}

// newShowCmd prints one task.
func newShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Pool.Get(args[0])
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
}

// newListCmd lists tasks with optional status/assignee/tag filters.
func newListCmd(flags *GlobalFlags) *cobra.Command {
	var (
		status   string
		assignee string
		tag      string
		ready    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if ready {
				for _, t := range app.Pool.ReadyTasks() {
					cmd.Println(formatTaskLine(t))
				}
				return nil
			}

			f := pool.Filter{
				Status:   constants.TaskStatus(status),
				Assignee: assignee,
				Tag:      tag,
			}
			if status != "" && !f.Status.IsValid() {
				return fmt.Errorf("unknown status %q", status)
			}
			for _, t := range app.Pool.List(f) {
				cmd.Println(formatTaskLine(t))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (TODO, ASSIGNED, IN_PROGRESS, BLOCKED, DONE)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "filter by worker key")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by competency tag")
	cmd.Flags().BoolVar(&ready, "ready", false, "only TODO tasks with all dependencies met")
	return cmd
}

// newSummaryCmd prints status counts.
func newSummaryCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show task counts per status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			cmd.Print(formatSummary(app.Pool.Summary()))
			return nil
		},
	}
}

// newDeleteCmd removes a task and scrubs its dependency edges.
func newDeleteCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task from the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Pool.Delete(args[0]); err != nil {
				return err
			}
			cmd.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}
