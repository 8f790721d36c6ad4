package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/spf13/cobra"
)

func taskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks, their schedules and time clocks",
	}

	cmd.AddCommand(taskListCmd(a))
	cmd.AddCommand(taskCreateCmd(a))
	cmd.AddCommand(taskUpdateCmd(a))
	cmd.AddCommand(taskRenameCmd(a))
	cmd.AddCommand(taskDeleteCmd(a))
	cmd.AddCommand(taskClockInCmd(a))
	cmd.AddCommand(taskClockOutCmd(a))
	cmd.AddCommand(clockCmd(a))
	cmd.AddCommand(scheduleCmd(a))
	cmd.AddCommand(treeCmd(a, hierarchy{
		noun:  "task",
		empty: "No tasks found or unable to retrieve the tasks tree.",
		list: func(ctx context.Context) ([]*domain.TreeNode, error) {
			return a.client.TasksTree(ctx)
		},
		add: func(ctx context.Context, parentID, childID int64, _ string) (*domain.Created, error) {
			return a.client.CreateTaskHierarchy(ctx, parentID, childID)
		},
		update: func(ctx context.Context, id, parentID, childID int64, _ string) (*domain.Result, error) {
			return a.client.UpdateTaskHierarchy(ctx, id, parentID, childID)
		},
		remove: func(ctx context.Context, id int64) (*domain.Result, error) {
			return a.client.DeleteTaskHierarchy(ctx, id)
		},
	}))

	return cmd
}

func taskListCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their schedules and clocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			tasks, err := r.TaskDetails(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				kept := tasks[:0]
				for _, t := range tasks {
					if strings.EqualFold(t.Status, status) {
						kept = append(kept, t)
					}
				}
				tasks = kept
			}
			return a.out.Tasks(tasks)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	return cmd
}

// taskFlags are the editable task fields shared by create and update
type taskFlags struct {
	noteID   int64
	status   string
	priority int
	estimate float64
	actual   float64
	allDay   bool
	goal     int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.noteID, "note-id", 0, "note the task belongs to")
	cmd.Flags().StringVar(&f.status, "status", "", "status, e.g. todo, in_progress, done")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "priority")
	cmd.Flags().String("deadline", "", "deadline (YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)")
	cmd.Flags().Float64Var(&f.estimate, "estimate", 0, "effort estimate in hours")
	cmd.Flags().Float64Var(&f.actual, "actual", 0, "actual effort in hours")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "the task spans whole days")
	cmd.Flags().IntVar(&f.goal, "goal", 0, "goal relationship")
}

// input builds a request body holding only the flags that were given
func (f *taskFlags) input(cmd *cobra.Command) (domain.TaskInput, error) {
	var in domain.TaskInput
	changed := cmd.Flags().Changed

	if changed("note-id") {
		in.NoteID = &f.noteID
	}
	if changed("status") {
		in.Status = &f.status
	}
	if changed("priority") {
		in.Priority = &f.priority
	}
	if changed("estimate") {
		in.EffortEstimate = &f.estimate
	}
	if changed("actual") {
		in.ActualEffort = &f.actual
	}
	if changed("all-day") {
		in.AllDay = &f.allDay
	}
	if changed("goal") {
		in.GoalRelationship = &f.goal
	}

	deadline, err := timeFlag(cmd, "deadline")
	if err != nil {
		return in, err
	}
	in.Deadline = deadline
	return in, nil
}

func taskCreateCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task for a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			created, err := a.client.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Task created successfully with ID: %d", created.ID))
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("note-id")
	return cmd
}

func taskUpdateCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			if in.Empty() {
				return fmt.Errorf("%w: give at least one field flag", errNothingToUpdate)
			}
			res, err := a.client.UpdateTask(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Task with ID %d has been successfully updated.", id))
		},
	}

	f.register(cmd)
	return cmd
}

func taskRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <task-id> <title>",
		Short: "Rename a task by retitling its note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			title := strings.TrimSpace(args[1])
			if title == "" {
				return fmt.Errorf("task title cannot be empty")
			}

			task, err := a.client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			res, err := a.client.UpdateNote(cmd.Context(), task.NoteID, domain.NoteInput{Title: &title})
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Task %d renamed to %q.", id, title))
		},
	}
}

func taskDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			res, err := a.client.DeleteTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Task with ID %d has been successfully deleted.", id))
		},
	}
}

// at resolves the --at flag, defaulting to now
func (a *app) at(cmd *cobra.Command) (time.Time, error) {
	t, err := timeFlag(cmd, "at")
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return a.now(), nil
	}
	return *t, nil
}

func taskClockInCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock-in <task-id>",
		Short: "Start tracking time on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			at, err := a.at(cmd)
			if err != nil {
				return err
			}

			task, err := a.client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if open, ok := task.OpenClock(); ok {
				return fmt.Errorf("task %d already has a running clock (entry %d since %s)",
					id, open.ID, open.ClockIn.Local().Format("2006-01-02 15:04"))
			}

			created, err := a.client.CreateClock(cmd.Context(), domain.ClockInput{TaskID: &id, ClockIn: &at})
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Clocked in to task %d (clock entry %d).", id, created.ID))
		},
	}

	cmd.Flags().String("at", "", "clock-in time (default now)")
	return cmd
}

func taskClockOutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock-out <task-id>",
		Short: "Stop the running clock on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			at, err := a.at(cmd)
			if err != nil {
				return err
			}

			task, err := a.client.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			open, ok := task.OpenClock()
			if !ok {
				return fmt.Errorf("task %d has no running clock", id)
			}
			if at.Before(open.ClockIn) {
				return fmt.Errorf("clock-out time %s is before clock-in %s", at.Format(time.RFC3339), open.ClockIn.Format(time.RFC3339))
			}

			res, err := a.client.UpdateClock(cmd.Context(), open.ID, domain.ClockInput{ClockOut: &at})
			if err != nil {
				return err
			}
			spent := at.Sub(open.ClockIn).Round(time.Second)
			return a.out.Done(res, fmt.Sprintf("Clocked out of task %d after %s.", id, spent))
		},
	}

	cmd.Flags().String("at", "", "clock-out time (default now)")
	return cmd
}
