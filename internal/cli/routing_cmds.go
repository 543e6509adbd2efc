package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/zinincorp/taskpool/internal/escalate"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

// newSuggestCmd asks the router for the best worker for a task. With --claim
// the suggestion is applied when it clears the auto-claim threshold.
func newSuggestCmd(flags *GlobalFlags) *cobra.Command {
	var claim bool
	cmd := &cobra.Command{
		Use:   "suggest <task-id>",
		Short: "Suggest the best worker for a task",
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

			suggestion, err := app.Router.SuggestAssignee(task)
			if stderrors.Is(err, pkgerrors.ErrNoMatch) {
				cmd.Printf("no confident match for %s (threshold %.2f) - escalate with 'taskpool escalate'\n",
					task.ID, app.Router.Threshold())
				return nil
			}
			if err != nil {
				return err
			}

			cmd.Printf("%s -> %s (confidence %.2f)\n", task.ID, suggestion.Worker, suggestion.Confidence)
			if claim && suggestion.Confidence >= app.Config.Routing.AutoClaimThreshold {
				assigned, aErr := app.Pool.Assign(task.ID, suggestion.Worker, "auto-claim", suggestion.Confidence)
				if aErr != nil {
					return aErr
				}
				cmd.Print(formatTask(assigned))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&claim, "claim", false, "apply the suggestion when confidence is high enough")
	return cmd
}

// newEscalateCmd resolves an escalated task through one of the four paths.
func newEscalateCmd(flags *GlobalFlags) *cobra.Command {
	var (
		worker     string
		workerName string
		tags       []string
		subtasks   []string
		obsolete   bool
		decidedBy  string
	)
	cmd := &cobra.Command{
		Use:   "escalate <task-id> <path>",
		Short: "Resolve a routing escalation",
		Long: `Resolve a task the router could not match confidently. Exactly one path
is applied:

  extend      add --tags to worker --worker, then re-route the task
  new-worker  register --worker with --tags and assign the task to it
  split       replace the task with two or more --subtask entries
  manual      assign directly to --worker, or close with --obsolete`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			path, err := escalate.ParsePath(args[1])
			if err != nil {
				return err
			}

			payload := escalate.Payload{
				Worker:     worker,
				WorkerName: workerName,
				Tags:       tags,
				Obsolete:   obsolete,
			}
			for _, title := range subtasks {
				payload.Subtasks = append(payload.Subtasks, escalate.Subtask{Title: title})
			}

			tasks, err := app.Escalate.Resolve(args[0], path, payload, decidedBy)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				cmd.Print(formatTask(t))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&worker, "worker", "", "target worker key")
	cmd.Flags().StringVar(&workerName, "worker-name", "", "display name for a new worker")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "competency tags to add or seed")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "replacement subtask title (repeatable)")
	cmd.Flags().BoolVar(&obsolete, "obsolete", false, "close the task without execution (manual path)")
	cmd.Flags().StringVar(&decidedBy, "by", "manual", "identity making the decision")
	return cmd
}
