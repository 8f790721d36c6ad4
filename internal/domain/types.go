package domain

import "time"

// Note is a text record stored by the service
type Note struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NoteRef is the short form of a note used in search results and tag listings
type NoteRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// NoteInput is the body of a note create or update.
// Nil fields are left out so an update only touches what was given.
type NoteInput struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Tag is a named label assignable to notes
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagNotes is a tag together with the notes it is assigned to
type TagNotes struct {
	TagID   int64     `json:"tag_id"`
	TagName string    `json:"tag_name"`
	Notes   []NoteRef `json:"notes"`
}

// TagAssignment is the service's answer to assigning a tag to a note
type TagAssignment struct {
	NoteID  int64  `json:"note_id"`
	TagID   int64  `json:"tag_id"`
	Message string `json:"message"`
}

// Task is a unit of work linked to a note
type Task struct {
	ID               int64      `json:"id"`
	NoteID           int64      `json:"note_id"`
	Status           string     `json:"status"`
	EffortEstimate   float64    `json:"effort_estimate"`
	ActualEffort     float64    `json:"actual_effort"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Priority         int        `json:"priority"`
	AllDay           bool       `json:"all_day"`
	GoalRelationship int        `json:"goal_relationship"`
	CreatedAt        time.Time  `json:"created_at"`
	ModifiedAt       time.Time  `json:"modified_at"`
	Schedules        []Schedule `json:"schedules"`
	Clocks           []Clock    `json:"clocks"`
}

// OpenClock returns the task's clock entry that has not been clocked out yet
func (t Task) OpenClock() (Clock, bool) {
	for i := len(t.Clocks) - 1; i >= 0; i-- {
		if t.Clocks[i].ClockOut == nil {
			return t.Clocks[i], true
		}
	}
	return Clock{}, false
}

// TaskInput is the body of a task create or update.
// Only non-nil fields are sent.
type TaskInput struct {
	NoteID           *int64     `json:"note_id,omitempty"`
	Status           *string    `json:"status,omitempty"`
	EffortEstimate   *float64   `json:"effort_estimate,omitempty"`
	ActualEffort     *float64   `json:"actual_effort,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Priority         *int       `json:"priority,omitempty"`
	AllDay           *bool      `json:"all_day,omitempty"`
	GoalRelationship *int       `json:"goal_relationship,omitempty"`
}

// Empty reports whether no field is set
func (in TaskInput) Empty() bool {
	return in.NoteID == nil && in.Status == nil && in.EffortEstimate == nil &&
		in.ActualEffort == nil && in.Deadline == nil && in.Priority == nil &&
		in.AllDay == nil && in.GoalRelationship == nil
}

// Schedule is a planned time slot for a task
type Schedule struct {
	ID            int64     `json:"id"`
	TaskID        int64     `json:"task_id,omitempty"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
}

// ScheduleInput is the body of a schedule create or update
type ScheduleInput struct {
	TaskID        *int64     `json:"task_id,omitempty"`
	StartDatetime *time.Time `json:"start_datetime,omitempty"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
}

// Clock is a time-tracking record attached to a task.
// ClockOut is nil while the clock is running.
type Clock struct {
	ID       int64      `json:"id"`
	TaskID   int64      `json:"task_id,omitempty"`
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out"`
}

// ClockInput is the body of a clock create or update
type ClockInput struct {
	TaskID   *int64     `json:"task_id,omitempty"`
	ClockIn  *time.Time `json:"clock_in,omitempty"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
}

// TreeNode is one node of a note, task or tag hierarchy
type TreeNode struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Type     string      `json:"type,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// HierarchyEntry is a parent-child relationship between two records
type HierarchyEntry struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	ChildID  int64  `json:"child_id"`
	Type     string `json:"hierarchy_type,omitempty"`
}

// TagHierarchyEntry is a hierarchy entry between two tags, as the service spells it
type TagHierarchyEntry struct {
	ID          int64 `json:"id"`
	ParentTagID int64 `json:"parent_tag_id"`
	ChildTagID  int64 `json:"child_tag_id"`
}

// Entry converts to the generic hierarchy form
func (e TagHierarchyEntry) Entry() HierarchyEntry {
	return HierarchyEntry{ID: e.ID, ParentID: e.ParentTagID, ChildID: e.ChildTagID}
}

// NoteHierarchyInput links two notes
type NoteHierarchyInput struct {
	ParentID      int64  `json:"parent_id"`
	ChildID       int64  `json:"child_id"`
	HierarchyType string `json:"hierarchy_type,omitempty"`
}

// TagHierarchyInput links two tags
type TagHierarchyInput struct {
	ParentTagID int64 `json:"parent_tag_id"`
	ChildTagID  int64 `json:"child_tag_id"`
}

// TaskHierarchyInput links two tasks
type TaskHierarchyInput struct {
	ParentTaskID int64 `json:"parent_task_id"`
	ChildTaskID  int64 `json:"child_task_id"`
}

// Created is returned by every create endpoint
type Created struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// Result is returned by update and delete endpoints
type Result struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
