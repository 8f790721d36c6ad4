// Package store keeps a local SQLite snapshot of the service so read commands
// can run offline.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/kbc/internal/domain"
)

//go:embed schema.sql
var schema string

var (
	// ErrNoSnapshot is returned when nothing has been synced yet
	ErrNoSnapshot = errors.New("no local snapshot, run kbc sync first")

	// ErrNotFound is returned when a record is absent from the snapshot
	ErrNotFound = errors.New("not found in local snapshot")
)

const syncedAtKey = "synced_at"

// Snapshot is everything sync pulls from the service in one go
type Snapshot struct {
	Notes    []domain.Note
	Tags     []domain.Tag
	TagNotes []domain.TagNotes
	Tasks    []domain.Task
	TakenAt  time.Time
}

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New opens the snapshot database at dbPath, creating the schema if needed
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=off&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Open opens a snapshot written by an earlier sync. Unlike New it never
// creates the file; a missing one is ErrNoSnapshot.
func Open(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return New(dbPath)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the stored snapshot for snap in a single transaction
func (s *Store) Replace(ctx context.Context, snap Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"notes", "tags", "note_tags", "tasks", "task_schedules", "task_clocks"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, n := range snap.Notes {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO notes (id, ord, title, content, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?)",
			n.ID, i, n.Title, n.Content, n.CreatedAt, n.ModifiedAt,
		)
		if err != nil {
			return fmt.Errorf("insert note %d: %w", n.ID, err)
		}
	}

	for i, t := range snap.Tags {
		if _, err = tx.ExecContext(ctx, "INSERT INTO tags (id, ord, name) VALUES (?, ?, ?)", t.ID, i, t.Name); err != nil {
			return fmt.Errorf("insert tag %d: %w", t.ID, err)
		}
	}

	ord := 0
	for _, tn := range snap.TagNotes {
		// tags-with-notes may name a tag the plain listing missed
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO tags (id, ord, name) VALUES (?, ?, ?)",
			tn.TagID, len(snap.Tags)+ord, tn.TagName,
		)
		if err != nil {
			return fmt.Errorf("insert tag %d: %w", tn.TagID, err)
		}
		for _, n := range tn.Notes {
			_, err = tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO note_tags (tag_id, note_id, note_title, ord) VALUES (?, ?, ?, ?)",
				tn.TagID, n.ID, n.Title, ord,
			)
			if err != nil {
				return fmt.Errorf("link tag %d to note %d: %w", tn.TagID, n.ID, err)
			}
			ord++
		}
		ord++
	}

	for i, t := range snap.Tasks {
		if err = insertTask(ctx, tx, i, t); err != nil {
			return err
		}
	}

	taken := snap.TakenAt
	if taken.IsZero() {
		taken = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		syncedAtKey, taken.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, ord int, t domain.Task) error {
	var deadline sql.NullTime
	if t.Deadline != nil {
		deadline = sql.NullTime{Time: *t.Deadline, Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (id, ord, note_id, status, effort_estimate, actual_effort, deadline,
			priority, all_day, goal_relationship, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, ord, t.NoteID, t.Status, t.EffortEstimate, t.ActualEffort, deadline,
		t.Priority, t.AllDay, t.GoalRelationship, t.CreatedAt, t.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task %d: %w", t.ID, err)
	}

	for _, sc := range t.Schedules {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO task_schedules (id, task_id, start_datetime, end_datetime) VALUES (?, ?, ?, ?)",
			sc.ID, t.ID, sc.StartDatetime, sc.EndDatetime,
		)
		if err != nil {
			return fmt.Errorf("insert schedule %d: %w", sc.ID, err)
		}
	}

	for _, c := range t.Clocks {
		var out sql.NullTime
		if c.ClockOut != nil {
			out = sql.NullTime{Time: *c.ClockOut, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO task_clocks (id, task_id, clock_in, clock_out) VALUES (?, ?, ?, ?)",
			c.ID, t.ID, c.ClockIn, out,
		)
		if err != nil {
			return fmt.Errorf("insert clock %d: %w", c.ID, err)
		}
	}
	return nil
}

// SyncedAt returns when the snapshot was taken, or ErrNoSnapshot
func (s *Store) SyncedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", syncedAtKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read sync time: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sync time %q: %w", value, err)
	}
	return t, nil
}

// ListNotes returns all notes in the order the service listed them
func (s *Store) ListNotes(ctx context.Context) ([]domain.Note, error) {
	return s.queryNotes(ctx,
		"SELECT id, title, content, created_at, modified_at FROM notes ORDER BY ord",
	)
}

// ListNotesNoContent returns all notes without their bodies
func (s *Store) ListNotesNoContent(ctx context.Context) ([]domain.Note, error) {
	return s.queryNotes(ctx,
		"SELECT id, title, '', created_at, modified_at FROM notes ORDER BY ord",
	)
}

// GetNote returns one note from the snapshot
func (s *Store) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	var n domain.Note
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, created_at, modified_at FROM notes WHERE id = ?",
		id,
	).Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}
	return &n, nil
}

// likeEscaper makes LIKE wildcards in a query match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchNotes finds notes whose title or content contains query
func (s *Store) SearchNotes(ctx context.Context, query string) ([]domain.NoteRef, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title FROM notes WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' ORDER BY ord`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()

	var refs []domain.NoteRef
	for rows.Next() {
		var r domain.NoteRef
		if err := rows.Scan(&r.ID, &r.Title); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *Store) queryNotes(ctx context.Context, query string) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt, &n.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ListTags returns all tags
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY ord")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagNames returns the name of every tag
func (s *Store) TagNames(ctx context.Context) ([]string, error) {
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names, nil
}

// TagsWithNotes returns every tag with the notes assigned to it.
// Tags without notes come back with an empty list.
func (s *Store) TagsWithNotes(ctx context.Context) ([]domain.TagNotes, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, nt.note_id, nt.note_title
		FROM tags t
		LEFT JOIN note_tags nt ON nt.tag_id = t.id
		ORDER BY t.ord, nt.ord`)
	if err != nil {
		return nil, fmt.Errorf("list tags with notes: %w", err)
	}
	defer rows.Close()

	var out []domain.TagNotes
	for rows.Next() {
		var (
			tagID     int64
			tagName   string
			noteID    sql.NullInt64
			noteTitle sql.NullString
		)
		if err := rows.Scan(&tagID, &tagName, &noteID, &noteTitle); err != nil {
			return nil, fmt.Errorf("scan tag notes: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].TagID != tagID {
			out = append(out, domain.TagNotes{TagID: tagID, TagName: tagName, Notes: []domain.NoteRef{}})
		}
		if noteID.Valid {
			last := &out[len(out)-1]
			last.Notes = append(last.Notes, domain.NoteRef{ID: noteID.Int64, Title: noteTitle.String})
		}
	}
	return out, rows.Err()
}

// TaskDetails returns every task with its schedules and clocks
func (s *Store) TaskDetails(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, note_id, status, effort_estimate, actual_effort, deadline,
			priority, all_day, goal_relationship, created_at, modified_at
		FROM tasks ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	index := map[int64]int{}
	for rows.Next() {
		var (
			t        domain.Task
			deadline sql.NullTime
		)
		err := rows.Scan(&t.ID, &t.NoteID, &t.Status, &t.EffortEstimate, &t.ActualEffort, &deadline,
			&t.Priority, &t.AllDay, &t.GoalRelationship, &t.CreatedAt, &t.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if deadline.Valid {
			d := deadline.Time
			t.Deadline = &d
		}
		t.Schedules = []domain.Schedule{}
		t.Clocks = []domain.Clock{}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachSchedules(ctx, tasks, index); err != nil {
		return nil, err
	}
	if err := s.attachClocks(ctx, tasks, index); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) attachSchedules(ctx context.Context, tasks []domain.Task, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, task_id, start_datetime, end_datetime FROM task_schedules ORDER BY id",
	)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc domain.Schedule
		if err := rows.Scan(&sc.ID, &sc.TaskID, &sc.StartDatetime, &sc.EndDatetime); err != nil {
			return fmt.Errorf("scan schedule: %w", err)
		}
		if i, ok := index[sc.TaskID]; ok {
			tasks[i].Schedules = append(tasks[i].Schedules, sc)
		}
	}
	return rows.Err()
}

func (s *Store) attachClocks(ctx context.Context, tasks []domain.Task, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, task_id, clock_in, clock_out FROM task_clocks ORDER BY id",
	)
	if err != nil {
		return fmt.Errorf("list clocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c   domain.Clock
			out sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.TaskID, &c.ClockIn, &out); err != nil {
			return fmt.Errorf("scan clock: %w", err)
		}
		if out.Valid {
			o := out.Time
			c.ClockOut = &o
		}
		if i, ok := index[c.TaskID]; ok {
			tasks[i].Clocks = append(tasks[i].Clocks, c)
		}
	}
	return rows.Err()
}
