package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() Snapshot {
	created := time.Date(2024, 10, 20, 5, 4, 42, 0, time.UTC)
	deadline := time.Date(2023, 6, 30, 15, 0, 0, 0, time.UTC)
	clockIn := time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(2 * time.Hour)

	return Snapshot{
		Notes: []domain.Note{
			{ID: 2, Title: "Foo", Content: "groceries and errands", CreatedAt: created, ModifiedAt: created},
			{ID: 1, Title: "Meeting", Content: "quarterly review", CreatedAt: created, ModifiedAt: created},
		},
		Tags: []domain.Tag{{ID: 3, Name: "important"}, {ID: 1, Name: "todo"}, {ID: 5, Name: "unused"}},
		TagNotes: []domain.TagNotes{
			{TagID: 3, TagName: "important", Notes: []domain.NoteRef{{ID: 1, Title: "Meeting"}}},
			{TagID: 1, TagName: "todo", Notes: []domain.NoteRef{{ID: 2, Title: "Foo"}, {ID: 1, Title: "Meeting"}}},
		},
		Tasks: []domain.Task{{
			ID: 7, NoteID: 1, Status: "todo", EffortEstimate: 2.5, Deadline: &deadline, Priority: 3,
			CreatedAt: created, ModifiedAt: created,
			Schedules: []domain.Schedule{{ID: 1, TaskID: 7, StartDatetime: clockIn, EndDatetime: clockOut}},
			Clocks: []domain.Clock{
				{ID: 1, TaskID: 7, ClockIn: clockIn, ClockOut: &clockOut},
				{ID: 2, TaskID: 7, ClockIn: clockOut},
			},
		}},
		TakenAt: created,
	}
}

func TestSyncedAt_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SyncedAt(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestOpen_MissingSnapshot(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "nodir", "snapshot.db"))
	assert.ErrorIs(t, err, ErrNoSnapshot)

	path := filepath.Join(dir, "snapshot.db")
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.NoFileExists(t, path)
}

func TestOpen_AfterReplace(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, sampleSnapshot()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	notes, err := s.ListNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, len(sampleSnapshot().Notes))
}

func TestReplace_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := sampleSnapshot()
	require.NoError(t, s.Replace(ctx, snap))

	at, err := s.SyncedAt(ctx)
	require.NoError(t, err)
	assert.True(t, at.Equal(snap.TakenAt))

	notes, err := s.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(2), notes[0].ID, "service order is kept")
	assert.Equal(t, "groceries and errands", notes[0].Content)
	assert.True(t, notes[0].CreatedAt.Equal(snap.Notes[0].CreatedAt))

	bare, err := s.ListNotesNoContent(ctx)
	require.NoError(t, err)
	assert.Empty(t, bare[0].Content)

	names, err := s.TagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"important", "todo", "unused"}, names)

	tagNotes, err := s.TagsWithNotes(ctx)
	require.NoError(t, err)
	require.Len(t, tagNotes, 3)
	assert.Equal(t, []domain.NoteRef{{ID: 2, Title: "Foo"}, {ID: 1, Title: "Meeting"}}, tagNotes[1].Notes)
	assert.Equal(t, "unused", tagNotes[2].TagName)
	assert.Empty(t, tagNotes[2].Notes)

	tasks, err := s.TaskDetails(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]
	require.NotNil(t, task.Deadline)
	assert.True(t, task.Deadline.Equal(*snap.Tasks[0].Deadline))
	assert.Len(t, task.Schedules, 1)
	require.Len(t, task.Clocks, 2)
	open, ok := task.OpenClock()
	require.True(t, ok)
	assert.Equal(t, int64(2), open.ID)
}

func TestReplace_DropsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Replace(ctx, sampleSnapshot()))

	require.NoError(t, s.Replace(ctx, Snapshot{Notes: []domain.Note{{ID: 9, Title: "Only"}}}))

	notes, err := s.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Only", notes[0].Title)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	tasks, err := s.TaskDetails(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSearchNotes_TitleOrContent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Replace(ctx, sampleSnapshot()))

	refs, err := s.SearchNotes(ctx, "REVIEW")
	require.NoError(t, err)
	assert.Equal(t, []domain.NoteRef{{ID: 1, Title: "Meeting"}}, refs)

	refs, err = s.SearchNotes(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []domain.NoteRef{{ID: 2, Title: "Foo"}}, refs)

	refs, err = s.SearchNotes(ctx, "nothing like it")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestSearchNotes_WildcardsAreLiteral(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Replace(ctx, Snapshot{
		Notes: []domain.Note{
			{ID: 1, Title: "discount 50 off"},
			{ID: 2, Title: "discount 50% off"},
			{ID: 3, Title: "snakeXcase"},
			{ID: 4, Title: "snake_case"},
			{ID: 5, Title: "path", Content: `C:\temp`},
		},
		TakenAt: time.Now(),
	}))

	refs, err := s.SearchNotes(ctx, "50%")
	require.NoError(t, err)
	assert.Equal(t, []domain.NoteRef{{ID: 2, Title: "discount 50% off"}}, refs)

	refs, err = s.SearchNotes(ctx, "snake_case")
	require.NoError(t, err)
	assert.Equal(t, []domain.NoteRef{{ID: 4, Title: "snake_case"}}, refs)

	refs, err = s.SearchNotes(ctx, `c:\t`)
	require.NoError(t, err)
	assert.Equal(t, []domain.NoteRef{{ID: 5, Title: "path"}}, refs)
}

func TestGetNote(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Replace(ctx, sampleSnapshot()))

	n, err := s.GetNote(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Meeting", n.Title)

	_, err = s.GetNote(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
