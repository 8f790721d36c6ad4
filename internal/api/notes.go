package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pbaille/kbc/internal/domain"
)

const (
	pathNotes          = "/notes"
	pathNotesNoContent = "/notes/no-content"
	pathNotesSearch    = "/notes/search"
	pathNotesTree      = "/notes/tree"
	pathNotesHierarchy = "/notes/hierarchy"
)

func notePath(id int64) string {
	return fmt.Sprintf("%s/%d", pathNotes, id)
}

// CreateNote stores a new note
func (c *Client) CreateNote(ctx context.Context, in domain.NoteInput) (*domain.Created, error) {
	var out domain.Created
	if err := c.post(ctx, pathNotes, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNote changes the title and/or content of a note
func (c *Client) UpdateNote(ctx context.Context, id int64, in domain.NoteInput) (*domain.Result, error) {
	var out domain.Result
	if err := c.put(ctx, notePath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote removes a note
func (c *Client) DeleteNote(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, notePath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotes returns every note with its content
func (c *Client) ListNotes(ctx context.Context) ([]domain.Note, error) {
	var out []domain.Note
	if err := c.get(ctx, pathNotes, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotesNoContent returns note metadata only
func (c *Client) ListNotesNoContent(ctx context.Context) ([]domain.Note, error) {
	var out []domain.Note
	if err := c.get(ctx, pathNotesNoContent, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNote finds one note. The service has no single-note endpoint, so the
// full list is fetched and filtered.
func (c *Client) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	notes, err := c.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}
	return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
}

// SearchNotes runs the service's full-text search
func (c *Client) SearchNotes(ctx context.Context, query string) ([]domain.NoteRef, error) {
	// Spaces go out as %20 rather than '+'.
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	var out []domain.NoteRef
	if err := c.get(ctx, pathNotesSearch+"?q="+q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NotesTree returns the note hierarchy as a forest
func (c *Client) NotesTree(ctx context.Context) ([]*domain.TreeNode, error) {
	var out []*domain.TreeNode
	if err := c.get(ctx, pathNotesTree, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNoteHierarchy makes one note the child of another
func (c *Client) CreateNoteHierarchy(ctx context.Context, in domain.NoteHierarchyInput) (*domain.Created, error) {
	var out domain.Created
	if err := c.post(ctx, pathNotesHierarchy, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNoteHierarchy rewrites a note hierarchy entry
func (c *Client) UpdateNoteHierarchy(ctx context.Context, id int64, in domain.NoteHierarchyInput) (*domain.Result, error) {
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathNotesHierarchy, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNoteHierarchy removes a note hierarchy entry
func (c *Client) DeleteNoteHierarchy(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathNotesHierarchy, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
