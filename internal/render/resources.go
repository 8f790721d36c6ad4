package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/tree"
)

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func stampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return stamp(*t)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Notes prints full notes; content is left out when withContent is false
func (p *Printer) Notes(notes []domain.Note, withContent bool) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(notes))
	}

	headers := []string{"id", "title", "created_at", "modified_at"}
	if withContent {
		headers = []string{"id", "title", "content", "created_at", "modified_at"}
	}
	rows := make([][]string, len(notes))
	for i, n := range notes {
		if withContent {
			rows[i] = []string{id(n.ID), n.Title, truncate(n.Content, maxCell), stamp(n.CreatedAt), stamp(n.ModifiedAt)}
		} else {
			rows[i] = []string{id(n.ID), n.Title, stamp(n.CreatedAt), stamp(n.ModifiedAt)}
		}
	}
	return p.Table(headers, rows)
}

// NoteContent prints the body of one note
func (p *Printer) NoteContent(n domain.Note) error {
	if p.format == FormatJSON {
		return p.JSON(n)
	}
	return p.Line(n.Content)
}

// NoteRefs prints id/title pairs; plain format gives "id\ttitle" lines
func (p *Printer) NoteRefs(refs []domain.NoteRef) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(refs))
	}
	rows := make([][]string, len(refs))
	for i, r := range refs {
		rows[i] = []string{id(r.ID), r.Title}
	}
	return p.Table([]string{"id", "title"}, rows)
}

// Tags prints tags
func (p *Printer) Tags(tags []domain.Tag) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(tags))
	}
	rows := make([][]string, len(tags))
	for i, t := range tags {
		rows[i] = []string{id(t.ID), t.Name}
	}
	return p.Table([]string{"id", "name"}, rows)
}

// Names prints one name per line
func (p *Printer) Names(names []string) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(names))
	}
	for _, n := range names {
		if err := p.Line(n); err != nil {
			return err
		}
	}
	return nil
}

// TagNotes prints every tag with the notes it carries
func (p *Printer) TagNotes(list []domain.TagNotes) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(list))
	}
	rows := make([][]string, len(list))
	for i, tn := range list {
		notes := make([]string, len(tn.Notes))
		for j, n := range tn.Notes {
			notes[j] = fmt.Sprintf("%d: %s", n.ID, n.Title)
		}
		rows[i] = []string{id(tn.TagID), tn.TagName, strings.Join(notes, ", ")}
	}
	return p.Table([]string{"tag_id", "tag_name", "notes"}, rows)
}

// Tasks prints tasks with counts of their schedules and clocks
func (p *Printer) Tasks(tasks []domain.Task) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(tasks))
	}
	headers := []string{"id", "note_id", "status", "priority", "deadline", "estimate", "actual", "all_day", "goal", "schedules", "clocks"}
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		rows[i] = []string{
			id(t.ID),
			id(t.NoteID),
			t.Status,
			strconv.Itoa(t.Priority),
			stampPtr(t.Deadline),
			num(t.EffortEstimate),
			num(t.ActualEffort),
			strconv.FormatBool(t.AllDay),
			strconv.Itoa(t.GoalRelationship),
			strconv.Itoa(len(t.Schedules)),
			strconv.Itoa(len(t.Clocks)),
		}
	}
	return p.Table(headers, rows)
}

// Schedules prints schedule entries
func (p *Printer) Schedules(list []domain.Schedule) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(list))
	}
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{id(s.ID), id(s.TaskID), stamp(s.StartDatetime), stamp(s.EndDatetime)}
	}
	return p.Table([]string{"id", "task_id", "start", "end"}, rows)
}

// Clocks prints clock entries with their duration; open clocks show "running"
func (p *Printer) Clocks(list []domain.Clock) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(list))
	}
	rows := make([][]string, len(list))
	for i, c := range list {
		spent := "running"
		if c.ClockOut != nil {
			spent = c.ClockOut.Sub(c.ClockIn).Round(time.Second).String()
		}
		rows[i] = []string{id(c.ID), id(c.TaskID), stamp(c.ClockIn), stampPtr(c.ClockOut), spent}
	}
	return p.Table([]string{"id", "task_id", "clock_in", "clock_out", "spent"}, rows)
}

// Entries prints hierarchy entries
func (p *Printer) Entries(list []domain.HierarchyEntry) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(list))
	}
	rows := make([][]string, len(list))
	for i, e := range list {
		rows[i] = []string{id(e.ID), id(e.ParentID), id(e.ChildID), e.Type}
	}
	return p.Table([]string{"id", "parent", "child", "type"}, rows)
}

// Tree prints a hierarchy as an indented outline, or nested JSON
func (p *Printer) Tree(forest []*domain.TreeNode) error {
	if p.format == FormatJSON {
		return p.JSON(nonNil(forest))
	}
	return tree.Render(p.w, forest)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
