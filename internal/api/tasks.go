package api

import (
	"context"
	"fmt"

	"github.com/pbaille/kbc/internal/domain"
)

const (
	pathTasks          = "/tasks"
	pathTasksDetails   = "/tasks/details"
	pathTasksTree      = "/tasks/tree"
	pathTasksHierarchy = "/tasks/hierarchy"
	pathTaskSchedules  = "/task_schedules"
	pathTaskClocks     = "/task_clocks"
)

// CreateTask adds a task linked to a note
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Created, error) {
	if in.NoteID == nil {
		return nil, fmt.Errorf("create task: note id is required")
	}
	var out domain.Created
	if err := c.post(ctx, pathTasks, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask changes the fields set in in
func (c *Client) UpdateTask(ctx context.Context, id int64, in domain.TaskInput) (*domain.Result, error) {
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathTasks, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathTasks, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskDetails returns every task with its schedules and clocks. The service
// leaves task_id out of the nested entries, so it is filled from the parent.
func (c *Client) TaskDetails(ctx context.Context) ([]domain.Task, error) {
	var out []domain.Task
	if err := c.get(ctx, pathTasksDetails, &out); err != nil {
		return nil, err
	}
	for i := range out {
		t := &out[i]
		for j := range t.Schedules {
			t.Schedules[j].TaskID = t.ID
		}
		for j := range t.Clocks {
			t.Clocks[j].TaskID = t.ID
		}
	}
	return out, nil
}

// GetTask finds one task in the details listing
func (c *Client) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	tasks, err := c.TaskDetails(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
}

// TasksTree returns the task hierarchy as a forest
func (c *Client) TasksTree(ctx context.Context) ([]*domain.TreeNode, error) {
	var out []*domain.TreeNode
	if err := c.get(ctx, pathTasksTree, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTaskHierarchy makes one task the child of another
func (c *Client) CreateTaskHierarchy(ctx context.Context, parentID, childID int64) (*domain.Created, error) {
	in := domain.TaskHierarchyInput{ParentTaskID: parentID, ChildTaskID: childID}
	var out domain.Created
	if err := c.post(ctx, pathTasksHierarchy, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskHierarchy rewrites a task hierarchy entry
func (c *Client) UpdateTaskHierarchy(ctx context.Context, id, parentID, childID int64) (*domain.Result, error) {
	in := domain.TaskHierarchyInput{ParentTaskID: parentID, ChildTaskID: childID}
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathTasksHierarchy, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTaskHierarchy removes a task hierarchy entry
func (c *Client) DeleteTaskHierarchy(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathTasksHierarchy, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSchedule plans a time slot for a task
func (c *Client) CreateSchedule(ctx context.Context, in domain.ScheduleInput) (*domain.Created, error) {
	var out domain.Created
	if err := c.post(ctx, pathTaskSchedules, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchedule moves a schedule entry
func (c *Client) UpdateSchedule(ctx context.Context, id int64, in domain.ScheduleInput) (*domain.Result, error) {
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathTaskSchedules, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSchedule removes a schedule entry
func (c *Client) DeleteSchedule(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathTaskSchedules, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateClock records a clock entry for a task
func (c *Client) CreateClock(ctx context.Context, in domain.ClockInput) (*domain.Created, error) {
	var out domain.Created
	if err := c.post(ctx, pathTaskClocks, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClock changes a clock entry, typically to set its clock-out time
func (c *Client) UpdateClock(ctx context.Context, id int64, in domain.ClockInput) (*domain.Result, error) {
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathTaskClocks, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClock removes a clock entry
func (c *Client) DeleteClock(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathTaskClocks, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
