package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbaille/kbc/internal/api"
	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/fakeapi"
	"github.com/pbaille/kbc/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	fake *fakeapi.Server
	srv  *httptest.Server
	db   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	fake := fakeapi.New()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	return &harness{fake: fake, srv: srv, db: filepath.Join(t.TempDir(), "snapshot.db")}
}

// run executes kbc with plain output against the fake service
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--api-url", h.srv.URL, "--db", h.db, "-o", "plain"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestNotesCreateGetDelete(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "notes", "create", "Shopping", "milk and eggs")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Note created successfully with ID: 1", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1\tShopping\tmilk and eggs\t"), lines[1])

	assert.Equal(t, "milk and eggs\n", h.mustRun(t, "notes", "get", "1"))

	_, err := h.run(t, "notes", "get", "42")
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = h.run(t, "notes", "get", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid note id "abc"`)

	assert.Equal(t, "Note with ID 1 has been successfully deleted.\n", h.mustRun(t, "notes", "delete", "1"))
	assert.Equal(t, 1, h.fake.Hits("DELETE /notes/1"))
}

func TestNotesList(t *testing.T) {
	h := newHarness(t)
	h.fake.AddNote("First", "body one")
	h.fake.AddNote("Second", "body two")

	out := h.mustRun(t, "notes", "list")
	assert.Contains(t, out, "1\tFirst\tbody one\t")
	assert.Contains(t, out, "2\tSecond\tbody two\t")

	out = h.mustRun(t, "notes", "list", "--no-content")
	assert.NotContains(t, out, "body one")
	assert.Equal(t, 1, h.fake.Hits("GET /notes/no-content"))
}

func TestNotesSearch(t *testing.T) {
	h := newHarness(t)
	h.fake.AddNote("Meeting notes", "quarterly review")
	h.fake.AddNote("Groceries", "milk")

	out := h.mustRun(t, "-o", "table", "notes", "search", "--table=false", "quarterly review")
	assert.Equal(t, "1\tMeeting notes\n", out)

	out = h.mustRun(t, "-o", "table", "notes", "search", "milk")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "(1 rows)")
}

func TestNotesUpdate(t *testing.T) {
	h := newHarness(t)
	h.fake.AddNote("Draft", "old body")

	_, err := h.run(t, "notes", "update", "1")
	assert.ErrorIs(t, err, errNothingToUpdate)

	out := h.mustRun(t, "notes", "update", "1", "--content", "new body")
	assert.Contains(t, out, "Note with ID 1 has been successfully updated.")
	assert.Contains(t, out, "1\tDraft\tnew body\t")
}

func TestNotesTree(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "No notes found or unable to retrieve the notes tree.\n", h.mustRun(t, "notes", "tree", "list"))

	h.fake.AddNote("Project", "")
	h.fake.AddNote("Spec", "")
	h.fake.AddNote("Loose", "")

	out := h.mustRun(t, "notes", "tree", "add-parent", "2", "1", "--type", "part_of")
	assert.Equal(t, "Added note 2 under note 1 (entry 4).\n", out)

	assert.Equal(t,
		"├─ Project (ID: 1)\n  ├─ Spec (ID: 2) [part_of]\n├─ Loose (ID: 3)\n",
		h.mustRun(t, "notes", "tree", "list"))

	_, err := h.run(t, "notes", "tree", "add-parent", "2", "2")
	assert.Error(t, err)

	h.mustRun(t, "notes", "tree", "update", "4", "--parent", "3", "--child", "2")
	assert.Equal(t,
		"├─ Project (ID: 1)\n├─ Loose (ID: 3)\n  ├─ Spec (ID: 2)\n",
		h.mustRun(t, "notes", "tree", "list"))

	h.mustRun(t, "notes", "tree", "remove-child", "4")
	assert.Equal(t,
		"├─ Project (ID: 1)\n├─ Spec (ID: 2)\n├─ Loose (ID: 3)\n",
		h.mustRun(t, "notes", "tree", "list"))
}

func TestNotesTags(t *testing.T) {
	h := newHarness(t)
	note := h.fake.AddNote("Meeting", "")
	work := h.fake.AddTag("work")
	h.fake.AddTag("home")
	h.fake.Tag(note.ID, work.ID)

	assert.Equal(t, "2\twork\n", h.mustRun(t, "notes", "tags", "1"))
}

func TestNotesClip(t *testing.T) {
	h := newHarness(t)
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>Go proverbs</title></head><body><p>Clear is better than clever.</p></body></html>"))
	}))
	defer page.Close()

	out := h.mustRun(t, "notes", "clip", page.URL)
	assert.Contains(t, out, "as note 1: Go proverbs")

	assert.Equal(t, "Clear is better than clever.\n\nSource: "+page.URL+"\n", h.mustRun(t, "notes", "get", "1"))
}

func TestTagsCommands(t *testing.T) {
	h := newHarness(t)
	h.fake.AddNote("Foo", "")
	h.fake.AddNote("Bar", "")

	assert.Equal(t, "Tag created successfully with ID: 3\n", h.mustRun(t, "tags", "create", "todo"))
	h.mustRun(t, "tags", "create", "urgent")
	h.mustRun(t, "tags", "assign", "1", "3")
	h.mustRun(t, "tags", "assign", "2", "3")
	h.mustRun(t, "tags", "assign", "1", "4")

	assert.Equal(t, "todo\nurgent\n", h.mustRun(t, "tags", "list", "--names"))
	assert.Equal(t, "3\ttodo\t1: Foo, 2: Bar\n4\turgent\t1: Foo\n", h.mustRun(t, "tags", "with-notes"))

	assert.Equal(t, "1\tFoo\n", h.mustRun(t, "tags", "filter", "todo", "URGENT"))
	assert.Equal(t, "1\tFoo\n2\tBar\n", h.mustRun(t, "tags", "filter", "--any", "urgent", "todo"))
	assert.Equal(t, "", h.mustRun(t, "tags", "filter", "todo", "nope"))

	assert.Equal(t, "4\turgent\n", h.mustRun(t, "tags", "search", "RG"))

	h.mustRun(t, "tags", "rename", "4", "asap")
	assert.Equal(t, "4\tasap\n3\ttodo\n", h.mustRun(t, "tags", "list"))

	_, err := h.run(t, "tags", "assign", "1", "4")
	assert.Equal(t, 409, api.StatusCode(err))

	assert.Equal(t, "Tag with ID 4 has been successfully deleted.\n", h.mustRun(t, "tags", "delete", "4"))
	_, err = h.run(t, "tags", "delete", "4")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestTagsTree(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "No tags found.\n", h.mustRun(t, "tags", "tree", "list"))

	h.fake.AddTag("work")
	h.fake.AddTag("meetings")
	h.fake.AddTag("reviews")

	h.mustRun(t, "tags", "tree", "add-parent", "2", "1")
	h.mustRun(t, "tags", "tree", "add-parent", "3", "2")

	assert.Equal(t,
		"├─ work (ID: 1)\n  ├─ meetings (ID: 2)\n    ├─ reviews (ID: 3)\n",
		h.mustRun(t, "tags", "tree", "list"))

	assert.Equal(t, "4\t1\t2\t\n5\t2\t3\t\n", h.mustRun(t, "tags", "tree", "entries"))

	h.mustRun(t, "tags", "tree", "remove-child", "5")
	assert.Equal(t, "4\t1\t2\t\n", h.mustRun(t, "tags", "tree", "entries"))

	_, err := h.run(t, "tags", "tree", "add-parent", "2", "1", "--type", "x")
	require.Error(t, err, "tag hierarchy entries are untyped")
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	h.fake.AddNote("Write report", "")

	_, err := h.run(t, "task", "create", "--priority", "2")
	require.Error(t, err, "--note-id is required")

	assert.Equal(t, "Task created successfully with ID: 2\n",
		h.mustRun(t, "task", "create", "--note-id", "1", "--priority", "2", "--deadline", "2023-06-30 15:00"))

	_, err = h.run(t, "task", "update", "2")
	assert.ErrorIs(t, err, errNothingToUpdate)

	h.mustRun(t, "task", "update", "2", "--status", "in_progress")

	var tasks []domain.Task
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(t, "-o", "json", "task", "list")), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "in_progress", tasks[0].Status)
	assert.Equal(t, 2, tasks[0].Priority)
	require.NotNil(t, tasks[0].Deadline)

	assert.Empty(t, h.mustRun(t, "task", "list", "--status", "done"))
	assert.Contains(t, h.mustRun(t, "task", "list", "--status", "IN_PROGRESS"), "2\t1\tin_progress\t2\t")

	h.mustRun(t, "task", "rename", "2", "Write final report")
	assert.Contains(t, h.mustRun(t, "notes", "list"), "1\tWrite final report\t")

	_, err = h.run(t, "task", "rename", "99", "x")
	assert.ErrorIs(t, err, api.ErrNotFound)

	assert.Equal(t, "Task with ID 2 has been successfully deleted.\n", h.mustRun(t, "task", "delete", "2"))
}

func TestTaskClock(t *testing.T) {
	h := newHarness(t)
	note := h.fake.AddNote("Report", "")
	h.fake.AddTask(domain.Task{NoteID: note.ID, Status: "todo"})

	_, err := h.run(t, "task", "clock-out", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no running clock")

	assert.Equal(t, "Clocked in to task 2 (clock entry 3).\n",
		h.mustRun(t, "task", "clock-in", "2", "--at", "2024-01-02 09:00"))

	_, err = h.run(t, "task", "clock-in", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a running clock")

	_, err = h.run(t, "task", "clock-out", "2", "--at", "2024-01-02 08:00")
	assert.Error(t, err)

	assert.Equal(t, "Clocked out of task 2 after 1h30m0s.\n",
		h.mustRun(t, "task", "clock-out", "2", "--at", "2024-01-02 10:30"))

	out := h.mustRun(t, "task", "clock", "list", "2")
	assert.True(t, strings.HasPrefix(out, "3\t2\t"), out)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "\t1h30m0s"), out)

	h.mustRun(t, "task", "clock", "create", "2", "--in", "2024-01-03 09:00", "--out", "2024-01-03 09:45")
	h.mustRun(t, "task", "clock", "update", "4", "--out", "2024-01-03 10:00")
	out = h.mustRun(t, "task", "clock", "list", "2")
	assert.Contains(t, out, "\t1h0m0s\n")

	_, err = h.run(t, "task", "clock", "update", "4")
	assert.ErrorIs(t, err, errNothingToUpdate)

	h.mustRun(t, "task", "clock", "delete", "4")
	assert.Len(t, strings.Split(strings.TrimSpace(h.mustRun(t, "task", "clock", "list", "2")), "\n"), 1)
}

func TestTaskSchedule(t *testing.T) {
	h := newHarness(t)
	note := h.fake.AddNote("Report", "")
	h.fake.AddTask(domain.Task{NoteID: note.ID, Status: "todo"})

	_, err := h.run(t, "task", "schedule", "create", "2", "--start", "2024-01-02 10:00", "--end", "2024-01-02 09:00")
	assert.Error(t, err)

	assert.Equal(t, "Schedule entry created successfully with ID: 3\n",
		h.mustRun(t, "task", "schedule", "create", "2", "--start", "2024-01-02T09:00:00Z", "--end", "2024-01-02T11:00:00Z"))
	assert.Equal(t, "3\t2\t2024-01-02 09:00:00\t2024-01-02 11:00:00\n", h.mustRun(t, "task", "schedule", "list", "2"))

	h.mustRun(t, "task", "schedule", "update", "3", "--end", "2024-01-02T12:00:00Z")
	assert.Equal(t, "3\t2\t2024-01-02 09:00:00\t2024-01-02 12:00:00\n", h.mustRun(t, "task", "schedule", "list", "2"))

	h.mustRun(t, "task", "schedule", "delete", "3")
	assert.Empty(t, h.mustRun(t, "task", "schedule", "list", "2"))
}

func TestTaskTree(t *testing.T) {
	h := newHarness(t)
	launch := h.fake.AddNote("Launch", "")
	docs := h.fake.AddNote("Docs", "")
	h.fake.AddTask(domain.Task{NoteID: launch.ID})
	h.fake.AddTask(domain.Task{NoteID: docs.ID})

	h.mustRun(t, "task", "tree", "add-parent", "4", "3")
	assert.Equal(t, "├─ Launch (ID: 3)\n  ├─ Docs (ID: 4)\n", h.mustRun(t, "task", "tree", "list"))
}

func TestOfflineBeforeFirstSync(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// default snapshot path, whose directory does not exist yet
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--offline", "notes", "list"})
	assert.ErrorIs(t, cmd.Execute(), store.ErrNoSnapshot)
	assert.NoDirExists(t, filepath.Join(home, ".kbc"))

	h := newHarness(t)
	_, err := h.run(t, "--offline", "tags", "list")
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
	assert.NoFileExists(t, h.db)
}

func TestSyncAndOffline(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "--offline", "notes", "list")
	assert.ErrorIs(t, err, store.ErrNoSnapshot)

	note := h.fake.AddNote("Meeting", "quarterly review")
	tag := h.fake.AddTag("work")
	h.fake.Tag(note.ID, tag.ID)
	h.fake.AddTask(domain.Task{NoteID: note.ID, Status: "todo"})

	out := h.mustRun(t, "sync")
	assert.Equal(t, "Synced 1 notes, 1 tags and 1 tasks to "+h.db+".\n", out)

	// later changes on the service are not visible offline
	h.fake.AddNote("After sync", "")

	out = h.mustRun(t, "--offline", "notes", "list")
	assert.Contains(t, out, "1\tMeeting\tquarterly review\t")
	assert.NotContains(t, out, "After sync")

	assert.Equal(t, "1\tMeeting\n", h.mustRun(t, "--offline", "notes", "search", "REVIEW"))
	assert.Equal(t, "quarterly review\n", h.mustRun(t, "--offline", "notes", "get", "1"))
	assert.Equal(t, "1\tMeeting\n", h.mustRun(t, "--offline", "tags", "filter", "work"))
	assert.Equal(t, "2\twork\t1: Meeting\n", h.mustRun(t, "--offline", "tags", "with-notes"))
	assert.Contains(t, h.mustRun(t, "--offline", "task", "list"), "3\t1\ttodo\t")

	_, err = h.run(t, "--offline", "notes", "get", "9")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = h.run(t, "--offline", "notes", "create", "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--offline")

	// the snapshot is served without touching the network
	h.srv.Close()
	assert.Equal(t, "work\n", h.mustRun(t, "--offline", "tags", "list", "--names"))
}

func TestJSONOutput(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "-o", "json", "tags", "create", "todo")
	assert.JSONEq(t, `{"id": 1, "message": "Tag created successfully"}`, out)

	out = h.mustRun(t, "-o", "json", "notes", "list")
	assert.Equal(t, "[]\n", out)
}

func TestConfigFromEnvironment(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTag("work")

	t.Setenv("KBC_API_URL", h.srv.URL)
	t.Setenv("KBC_OUTPUT", "plain")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tags", "list"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1\twork\n", out.String())
}

func TestBadConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "-o", "xml", "notes", "list")
	assert.Error(t, err)

	_, err = h.run(t, "--log-level", "chatty", "notes", "list")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "kbc dev"), out.String())
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{"2024-01-02", "2024-01-02 09:30", "2024-01-02 09:30:15", "2024-01-02T09:30:15", "2024-01-02T09:30:15+02:00"} {
		_, err := parseTime(in)
		assert.NoError(t, err, in)
	}
	_, err := parseTime("tomorrow")
	assert.Error(t, err)
}
