// Package fakeapi is an in-memory stand-in for the note/task/tag service.
// Tests point the client at it through httptest.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/tree"
)

// Server holds the fake service state
type Server struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time

	notes     []domain.Note
	tags      []domain.Tag
	noteTags  map[int64][]int64 // tag id -> note ids
	noteHier  []domain.HierarchyEntry
	tagHier   []domain.TagHierarchyEntry
	tasks     []domain.Task
	taskHier  []domain.HierarchyEntry
	schedules []domain.Schedule
	clocks    []domain.Clock

	// Requests counts handled requests by "METHOD /path"
	Requests map[string]int
}

// New creates an empty fake service
func New() *Server {
	return &Server{
		nextID:   1,
		now:      func() time.Time { return time.Now().UTC() },
		noteTags: make(map[int64][]int64),
		Requests: make(map[string]int),
	}
}

// Handler returns the HTTP routes of the service
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Notes
	mux.HandleFunc("GET /notes", s.listNotes)
	mux.HandleFunc("POST /notes", s.createNote)
	mux.HandleFunc("GET /notes/no-content", s.listNotesNoContent)
	mux.HandleFunc("GET /notes/search", s.searchNotes)
	mux.HandleFunc("GET /notes/tree", s.notesTree)
	mux.HandleFunc("PUT /notes/{id}", s.updateNote)
	mux.HandleFunc("DELETE /notes/{id}", s.deleteNote)
	mux.HandleFunc("POST /notes/{id}/tags", s.assignTag)
	mux.HandleFunc("POST /notes/hierarchy", s.createNoteHierarchy)
	mux.HandleFunc("PUT /notes/hierarchy/{id}", s.updateNoteHierarchy)
	mux.HandleFunc("DELETE /notes/hierarchy/{id}", s.deleteNoteHierarchy)

	// Tags
	mux.HandleFunc("GET /tags", s.listTags)
	mux.HandleFunc("POST /tags", s.createTag)
	mux.HandleFunc("GET /tags/with-notes", s.tagsWithNotes)
	mux.HandleFunc("PUT /tags/{id}", s.updateTag)
	mux.HandleFunc("DELETE /tags/{id}", s.deleteTag)
	mux.HandleFunc("GET /tags/hierarchy", s.listTagHierarchy)
	mux.HandleFunc("POST /tags/hierarchy", s.createTagHierarchy)
	mux.HandleFunc("PUT /tags/hierarchy/{id}", s.updateTagHierarchy)
	mux.HandleFunc("DELETE /tags/hierarchy/{id}", s.deleteTagHierarchy)

	// Tasks
	mux.HandleFunc("POST /tasks", s.createTask)
	mux.HandleFunc("GET /tasks/details", s.taskDetails)
	mux.HandleFunc("GET /tasks/tree", s.tasksTree)
	mux.HandleFunc("PUT /tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.deleteTask)
	mux.HandleFunc("POST /tasks/hierarchy", s.createTaskHierarchy)
	mux.HandleFunc("PUT /tasks/hierarchy/{id}", s.updateTaskHierarchy)
	mux.HandleFunc("DELETE /tasks/hierarchy/{id}", s.deleteTaskHierarchy)
	mux.HandleFunc("POST /task_schedules", s.createSchedule)
	mux.HandleFunc("PUT /task_schedules/{id}", s.updateSchedule)
	mux.HandleFunc("DELETE /task_schedules/{id}", s.deleteSchedule)
	mux.HandleFunc("POST /task_clocks", s.createClock)
	mux.HandleFunc("PUT /task_clocks/{id}", s.updateClock)
	mux.HandleFunc("DELETE /task_clocks/{id}", s.deleteClock)

	return s.count(mux)
}

func (s *Server) count(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.Requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		h.ServeHTTP(w, r)
	})
}

// Hits returns how many times "METHOD /path" was requested
func (s *Server) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Requests[key]
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// Seeding helpers, for tests

// AddNote stores a note directly
func (s *Server) AddNote(title, content string) domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := domain.Note{ID: s.id(), Title: title, Content: content, CreatedAt: now, ModifiedAt: now}
	s.notes = append(s.notes, n)
	return n
}

// AddTag stores a tag directly
func (s *Server) AddTag(name string) domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Tag{ID: s.id(), Name: name}
	s.tags = append(s.tags, t)
	return t
}

// Tag assigns a tag to a note directly
func (s *Server) Tag(noteID, tagID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteTags[tagID] = append(s.noteTags[tagID], noteID)
}

// AddTask stores a task directly
func (s *Server) AddTask(t domain.Task) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	now := s.now()
	t.CreatedAt, t.ModifiedAt = now, now
	s.tasks = append(s.tasks, t)
	return t
}

// AddClock stores a clock entry directly
func (s *Server) AddClock(c domain.Clock) domain.Clock {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.clocks = append(s.clocks, c)
	return c
}

// Notes

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.notes))
}

func (s *Server) listNotesNoContent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Note, len(s.notes))
	for i, n := range s.notes {
		n.Content = ""
		out[i] = n
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) searchNotes(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.NoteRef{}
	for _, n := range s.notes {
		if strings.Contains(strings.ToLower(n.Title), query) || strings.Contains(strings.ToLower(n.Content), query) {
			out = append(out, domain.NoteRef{ID: n.ID, Title: n.Title})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type noteBody struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteBody
	if !decode(w, r, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	n := s.AddNote(*req.Title, content)
	writeJSON(w, http.StatusCreated, domain.Created{ID: n.ID, Message: "Note created successfully"})
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req noteBody
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID != id {
			continue
		}
		if req.Title != nil {
			s.notes[i].Title = *req.Title
		}
		if req.Content != nil {
			s.notes[i].Content = *req.Content
		}
		s.notes[i].ModifiedAt = s.now()
		writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Note updated successfully"})
		return
	}
	writeError(w, http.StatusNotFound, "note not found")
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			for tagID, noteIDs := range s.noteTags {
				s.noteTags[tagID] = without(noteIDs, id)
			}
			writeJSON(w, http.StatusOK, domain.Result{Message: "Note deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "note not found")
}

func (s *Server) assignTag(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		TagID int64 `json:"tag_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasNote(noteID) || !s.hasTag(req.TagID) {
		writeError(w, http.StatusNotFound, "note or tag not found")
		return
	}
	for _, id := range s.noteTags[req.TagID] {
		if id == noteID {
			writeError(w, http.StatusConflict, "tag already assigned")
			return
		}
	}
	s.noteTags[req.TagID] = append(s.noteTags[req.TagID], noteID)
	writeJSON(w, http.StatusCreated, domain.TagAssignment{NoteID: noteID, TagID: req.TagID, Message: "Tag assigned successfully"})
}

func (s *Server) notesTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]tree.Item, len(s.notes))
	for i, n := range s.notes {
		items[i] = tree.Item{ID: n.ID, Title: n.Title}
	}
	writeJSON(w, http.StatusOK, nonNil(tree.Build(items, s.noteHier)))
}

func (s *Server) createNoteHierarchy(w http.ResponseWriter, r *http.Request) {
	var req domain.NoteHierarchyInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasNote(req.ParentID) || !s.hasNote(req.ChildID) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	e := domain.HierarchyEntry{ID: s.id(), ParentID: req.ParentID, ChildID: req.ChildID, Type: req.HierarchyType}
	s.noteHier = append(s.noteHier, e)
	writeJSON(w, http.StatusCreated, domain.Created{ID: e.ID, Message: "Note hierarchy entry added successfully"})
}

func (s *Server) updateNoteHierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.NoteHierarchyInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.noteHier {
		if s.noteHier[i].ID == id {
			s.noteHier[i] = domain.HierarchyEntry{ID: id, ParentID: req.ParentID, ChildID: req.ChildID, Type: req.HierarchyType}
			writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Note hierarchy entry updated successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "hierarchy entry not found")
}

func (s *Server) deleteNoteHierarchy(w http.ResponseWriter, r *http.Request) {
	s.deleteEntry(w, r, &s.noteHier, "Note hierarchy entry deleted successfully")
}

// Tags

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.Tag{}, s.tags...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	t := s.AddTag(req.Name)
	writeJSON(w, http.StatusCreated, domain.Created{ID: t.ID, Message: "Tag created successfully"})
}

func (s *Server) tagsWithNotes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TagNotes, 0, len(s.tags))
	for _, t := range s.tags {
		tn := domain.TagNotes{TagID: t.ID, TagName: t.Name}
		for _, noteID := range s.noteTags[t.ID] {
			for _, n := range s.notes {
				if n.ID == noteID {
					tn.Notes = append(tn.Notes, domain.NoteRef{ID: n.ID, Title: n.Title})
				}
			}
		}
		out = append(out, tn)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags[i].Name = req.Name
			writeJSON(w, http.StatusOK, domain.Result{Message: "Tag updated successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "tag not found")
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			delete(s.noteTags, id)
			writeJSON(w, http.StatusOK, domain.Result{Message: "Tag deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "tag not found")
}

func (s *Server) listTagHierarchy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.tagHier))
}

func (s *Server) createTagHierarchy(w http.ResponseWriter, r *http.Request) {
	var req domain.TagHierarchyInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTag(req.ParentTagID) || !s.hasTag(req.ChildTagID) {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	e := domain.TagHierarchyEntry{ID: s.id(), ParentTagID: req.ParentTagID, ChildTagID: req.ChildTagID}
	s.tagHier = append(s.tagHier, e)
	writeJSON(w, http.StatusCreated, domain.Created{ID: e.ID, Message: "Tag hierarchy entry added successfully"})
}

func (s *Server) updateTagHierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.TagHierarchyInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tagHier {
		if s.tagHier[i].ID == id {
			s.tagHier[i] = domain.TagHierarchyEntry{ID: id, ParentTagID: req.ParentTagID, ChildTagID: req.ChildTagID}
			writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Tag hierarchy entry updated successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "hierarchy entry not found")
}

func (s *Server) deleteTagHierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tagHier {
		if s.tagHier[i].ID == id {
			s.tagHier = append(s.tagHier[:i], s.tagHier[i+1:]...)
			writeJSON(w, http.StatusOK, domain.Result{Message: "Tag hierarchy entry deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "hierarchy entry not found")
}

// Tasks

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req domain.TaskInput
	if !decode(w, r, &req) {
		return
	}
	if req.NoteID == nil {
		writeError(w, http.StatusBadRequest, "note_id is required")
		return
	}

	s.mu.Lock()
	if !s.hasNote(*req.NoteID) {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	s.mu.Unlock()

	t := domain.Task{NoteID: *req.NoteID, Status: "todo"}
	applyTask(&t, req)
	t = s.AddTask(t)
	writeJSON(w, http.StatusCreated, domain.Created{ID: t.ID, Message: "Task created successfully"})
}

func applyTask(t *domain.Task, in domain.TaskInput) {
	if in.NoteID != nil {
		t.NoteID = *in.NoteID
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.EffortEstimate != nil {
		t.EffortEstimate = *in.EffortEstimate
	}
	if in.ActualEffort != nil {
		t.ActualEffort = *in.ActualEffort
	}
	if in.Deadline != nil {
		d := *in.Deadline
		t.Deadline = &d
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.AllDay != nil {
		t.AllDay = *in.AllDay
	}
	if in.GoalRelationship != nil {
		t.GoalRelationship = *in.GoalRelationship
	}
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.TaskInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			applyTask(&s.tasks[i], req)
			s.tasks[i].ModifiedAt = s.now()
			writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Task updated successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, domain.Result{Message: "Task deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (s *Server) taskDetails(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		t.Schedules, t.Clocks = nil, nil
		// nested entries go out without task_id, like the real service
		for _, sc := range s.schedules {
			if sc.TaskID == t.ID {
				sc.TaskID = 0
				t.Schedules = append(t.Schedules, sc)
			}
		}
		for _, c := range s.clocks {
			if c.TaskID == t.ID {
				c.TaskID = 0
				t.Clocks = append(t.Clocks, c)
			}
		}
		out[i] = t
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) tasksTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]tree.Item, len(s.tasks))
	for i, t := range s.tasks {
		title := ""
		for _, n := range s.notes {
			if n.ID == t.NoteID {
				title = n.Title
			}
		}
		items[i] = tree.Item{ID: t.ID, Title: title}
	}
	writeJSON(w, http.StatusOK, nonNil(tree.Build(items, s.taskHier)))
}

func (s *Server) createTaskHierarchy(w http.ResponseWriter, r *http.Request) {
	var req domain.TaskHierarchyInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTask(req.ParentTaskID) || !s.hasTask(req.ChildTaskID) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	e := domain.HierarchyEntry{ID: s.id(), ParentID: req.ParentTaskID, ChildID: req.ChildTaskID}
	s.taskHier = append(s.taskHier, e)
	writeJSON(w, http.StatusCreated, domain.Created{ID: e.ID, Message: "Task hierarchy entry added successfully"})
}

func (s *Server) updateTaskHierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.TaskHierarchyInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.taskHier {
		if s.taskHier[i].ID == id {
			s.taskHier[i] = domain.HierarchyEntry{ID: id, ParentID: req.ParentTaskID, ChildID: req.ChildTaskID}
			writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Task hierarchy entry updated successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "hierarchy entry not found")
}

func (s *Server) deleteTaskHierarchy(w http.ResponseWriter, r *http.Request) {
	s.deleteEntry(w, r, &s.taskHier, "Task hierarchy entry deleted successfully")
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req domain.ScheduleInput
	if !decode(w, r, &req) {
		return
	}
	if req.TaskID == nil || req.StartDatetime == nil || req.EndDatetime == nil {
		writeError(w, http.StatusBadRequest, "task_id, start_datetime and end_datetime are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasTask(*req.TaskID) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	sc := domain.Schedule{ID: s.id(), TaskID: *req.TaskID, StartDatetime: *req.StartDatetime, EndDatetime: *req.EndDatetime}
	s.schedules = append(s.schedules, sc)
	writeJSON(w, http.StatusCreated, domain.Created{ID: sc.ID, Message: "Task schedule created successfully"})
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.ScheduleInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID != id {
			continue
		}
		if req.StartDatetime != nil {
			s.schedules[i].StartDatetime = *req.StartDatetime
		}
		if req.EndDatetime != nil {
			s.schedules[i].EndDatetime = *req.EndDatetime
		}
		writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Task schedule updated successfully"})
		return
	}
	writeError(w, http.StatusNotFound, "schedule not found")
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
			writeJSON(w, http.StatusOK, domain.Result{Message: "Task schedule deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "schedule not found")
}

func (s *Server) createClock(w http.ResponseWriter, r *http.Request) {
	var req domain.ClockInput
	if !decode(w, r, &req) {
		return
	}
	if req.TaskID == nil || req.ClockIn == nil {
		writeError(w, http.StatusBadRequest, "task_id and clock_in are required")
		return
	}

	s.mu.Lock()
	ok := s.hasTask(*req.TaskID)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	c := s.AddClock(domain.Clock{TaskID: *req.TaskID, ClockIn: *req.ClockIn, ClockOut: req.ClockOut})
	writeJSON(w, http.StatusCreated, domain.Created{ID: c.ID, Message: "Task clock created successfully"})
}

func (s *Server) updateClock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req domain.ClockInput
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clocks {
		if s.clocks[i].ID != id {
			continue
		}
		if req.ClockIn != nil {
			s.clocks[i].ClockIn = *req.ClockIn
		}
		if req.ClockOut != nil {
			out := *req.ClockOut
			s.clocks[i].ClockOut = &out
		}
		writeJSON(w, http.StatusOK, domain.Result{ID: id, Message: "Task clock updated successfully"})
		return
	}
	writeError(w, http.StatusNotFound, "clock not found")
}

func (s *Server) deleteClock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clocks {
		if s.clocks[i].ID == id {
			s.clocks = append(s.clocks[:i], s.clocks[i+1:]...)
			writeJSON(w, http.StatusOK, domain.Result{Message: "Task clock deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "clock not found")
}

// helpers

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request, entries *[]domain.HierarchyEntry, msg string) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range *entries {
		if e.ID == id {
			*entries = append((*entries)[:i], (*entries)[i+1:]...)
			writeJSON(w, http.StatusOK, domain.Result{Message: msg})
			return
		}
	}
	writeError(w, http.StatusNotFound, "hierarchy entry not found")
}

func (s *Server) hasNote(id int64) bool {
	for _, n := range s.notes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) hasTag(id int64) bool {
	for _, t := range s.tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) hasTask(id int64) bool {
	for _, t := range s.tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func without(ids []int64, drop int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// nonNil keeps empty lists from encoding as null
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
