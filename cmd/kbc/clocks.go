package main

import (
	"fmt"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/store"
	"github.com/spf13/cobra"
)

func clockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Manage clock entries of a task",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <task-id>",
		Short: "List the clock entries of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.task(cmd, args[0])
			if err != nil {
				return err
			}
			return a.out.Clocks(task.Clocks)
		},
	})

	create := &cobra.Command{
		Use:   "create <task-id>",
		Short: "Record a clock entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			in, err := clockInput(cmd)
			if err != nil {
				return err
			}
			in.TaskID = &taskID
			created, err := a.client.CreateClock(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Clock entry created successfully with ID: %d", created.ID))
		},
	}
	clockFlags(create)
	_ = create.MarkFlagRequired("in")
	cmd.AddCommand(create)

	update := &cobra.Command{
		Use:   "update <clock-id>",
		Short: "Change the times of a clock entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "clock entry")
			if err != nil {
				return err
			}
			in, err := clockInput(cmd)
			if err != nil {
				return err
			}
			if in.ClockIn == nil && in.ClockOut == nil {
				return fmt.Errorf("%w: give --in and/or --out", errNothingToUpdate)
			}
			res, err := a.client.UpdateClock(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Clock entry %d updated.", id))
		},
	}
	clockFlags(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <clock-id>",
		Short: "Delete a clock entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "clock entry")
			if err != nil {
				return err
			}
			res, err := a.client.DeleteClock(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Clock entry %d deleted.", id))
		},
	})

	return cmd
}

func clockFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "clock-in time")
	cmd.Flags().String("out", "", "clock-out time")
}

func clockInput(cmd *cobra.Command) (domain.ClockInput, error) {
	var (
		in  domain.ClockInput
		err error
	)
	if in.ClockIn, err = timeFlag(cmd, "in"); err != nil {
		return in, err
	}
	if in.ClockOut, err = timeFlag(cmd, "out"); err != nil {
		return in, err
	}
	if in.ClockIn != nil && in.ClockOut != nil && in.ClockOut.Before(*in.ClockIn) {
		return in, fmt.Errorf("--out is before --in")
	}
	return in, nil
}

func scheduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage planned time slots of a task",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <task-id>",
		Short: "List the schedule entries of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.task(cmd, args[0])
			if err != nil {
				return err
			}
			return a.out.Schedules(task.Schedules)
		},
	})

	create := &cobra.Command{
		Use:   "create <task-id>",
		Short: "Plan a time slot for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			in, err := scheduleInput(cmd)
			if err != nil {
				return err
			}
			in.TaskID = &taskID
			created, err := a.client.CreateSchedule(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Schedule entry created successfully with ID: %d", created.ID))
		},
	}
	scheduleFlags(create)
	_ = create.MarkFlagRequired("start")
	_ = create.MarkFlagRequired("end")
	cmd.AddCommand(create)

	update := &cobra.Command{
		Use:   "update <schedule-id>",
		Short: "Move a schedule entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "schedule entry")
			if err != nil {
				return err
			}
			in, err := scheduleInput(cmd)
			if err != nil {
				return err
			}
			if in.StartDatetime == nil && in.EndDatetime == nil {
				return fmt.Errorf("%w: give --start and/or --end", errNothingToUpdate)
			}
			res, err := a.client.UpdateSchedule(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Schedule entry %d updated.", id))
		},
	}
	scheduleFlags(update)
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <schedule-id>",
		Short: "Delete a schedule entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "schedule entry")
			if err != nil {
				return err
			}
			res, err := a.client.DeleteSchedule(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Schedule entry %d deleted.", id))
		},
	})

	return cmd
}

func scheduleFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "start of the slot")
	cmd.Flags().String("end", "", "end of the slot")
}

func scheduleInput(cmd *cobra.Command) (domain.ScheduleInput, error) {
	var (
		in  domain.ScheduleInput
		err error
	)
	if in.StartDatetime, err = timeFlag(cmd, "start"); err != nil {
		return in, err
	}
	if in.EndDatetime, err = timeFlag(cmd, "end"); err != nil {
		return in, err
	}
	if in.StartDatetime != nil && in.EndDatetime != nil && !in.EndDatetime.After(*in.StartDatetime) {
		return in, fmt.Errorf("--end must be after --start")
	}
	return in, nil
}

// task looks up one task for the read-only subcommands, from the snapshot
// when offline
func (a *app) task(cmd *cobra.Command, arg string) (*domain.Task, error) {
	id, err := parseID(arg, "task")
	if err != nil {
		return nil, err
	}
	if !a.cfg.Offline {
		return a.client.GetTask(cmd.Context(), id)
	}

	r, done, err := a.reader(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer done()
	tasks, err := r.TaskDetails(cmd.Context())
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %d: %w", id, store.ErrNotFound)
}
