package cli

import (
	"github.com/spf13/cobra"
)

// newAssignCmd assigns a task to a worker. Routing confidence is recorded
// when the worker matches the router's best suggestion; a direct assignment
// of a different worker records the overlap the router computes for it.
func newAssignCmd(flags *GlobalFlags) *cobra.Command {
	var assignedBy string
	cmd := &cobra.Command{
		Use:   "assign <task-id> <worker>",
		Short: "Assign a task to a worker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			id, worker := args[0], args[1]
			if _, err := app.Registry.Get(worker); err != nil {
				return err
			}
			task, err := app.Pool.Get(id)
			if err != nil {
				return err
			}

			confidence := 0.0
			for _, s := range app.Router.Rank(task.Tags) {
				if s.Worker == worker {
					confidence = s.Confidence
					break
				}
			}
			task, err = app.Pool.Assign(id, worker, assignedBy, confidence)
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
	cmd.Flags().StringVar(&assignedBy, "by", "manual", "identity performing the assignment")
	return cmd
}

// newStartCmd moves an assigned task to IN_PROGRESS.
func newStartCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start an assigned task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Pool.Start(args[0])
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
}

// newCompleteCmd finishes a task and unblocks its dependents.
func newCompleteCmd(flags *GlobalFlags) *cobra.Command {
	var result string
	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Pool.Complete(args[0], result)
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
	cmd.Flags().StringVarP(&result, "result", "r", "", "completion note")
	return cmd
}

// newBlockCmd manually blocks a task.
func newBlockCmd(flags *GlobalFlags) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "block <task-id>",
		Short: "Manually block a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Pool.Block(args[0], reason)
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the task is blocked")
	return cmd
}

// newUnblockCmd returns a blocked task to TODO once its dependencies allow.
func newUnblockCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <task-id>",
		Short: "Unblock a task whose dependencies are met",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Pool.Unblock(args[0])
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
}

// newDepCmd adds a dependency edge between two tasks.
func newDepCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dep <task-id> <depends-on-id>",
		Short: "Record that a task depends on another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			task, err := app.Pool.AddDependency(args[0], args[1])
			if err != nil {
				return err
			}
			cmd.Print(formatTask(task))
			return nil
		},
	}
}
