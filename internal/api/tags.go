package api

import (
	"context"
	"fmt"

	"github.com/pbaille/kbc/internal/domain"
)

const (
	pathTags          = "/tags"
	pathTagsWithNotes = "/tags/with-notes"
	pathTagsHierarchy = "/tags/hierarchy"
)

type tagName struct {
	Name string `json:"name"`
}

// CreateTag adds a tag
func (c *Client) CreateTag(ctx context.Context, name string) (*domain.Created, error) {
	var out domain.Created
	if err := c.post(ctx, pathTags, tagName{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignTag attaches a tag to a note
func (c *Client) AssignTag(ctx context.Context, noteID, tagID int64) (*domain.TagAssignment, error) {
	body := struct {
		TagID int64 `json:"tag_id"`
	}{TagID: tagID}

	var out domain.TagAssignment
	if err := c.post(ctx, fmt.Sprintf("%s/tags", notePath(noteID)), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTag renames a tag
func (c *Client) UpdateTag(ctx context.Context, id int64, name string) (*domain.Result, error) {
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathTags, id), tagName{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag removes a tag
func (c *Client) DeleteTag(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathTags, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTags returns every tag in the order the service sorts them
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	if err := c.get(ctx, pathTags, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TagNames returns just the tag names, duplicates included
func (c *Client) TagNames(ctx context.Context) ([]string, error) {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names, nil
}

// TagsWithNotes returns every tag with the notes it is assigned to
func (c *Client) TagsWithNotes(ctx context.Context) ([]domain.TagNotes, error) {
	var out []domain.TagNotes
	if err := c.get(ctx, pathTagsWithNotes, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TagHierarchy returns the flat list of tag hierarchy entries
func (c *Client) TagHierarchy(ctx context.Context) ([]domain.TagHierarchyEntry, error) {
	var out []domain.TagHierarchyEntry
	if err := c.get(ctx, pathTagsHierarchy, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTagHierarchy makes one tag the child of another
func (c *Client) CreateTagHierarchy(ctx context.Context, parentID, childID int64) (*domain.Created, error) {
	in := domain.TagHierarchyInput{ParentTagID: parentID, ChildTagID: childID}
	var out domain.Created
	if err := c.post(ctx, pathTagsHierarchy, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTagHierarchy rewrites a tag hierarchy entry
func (c *Client) UpdateTagHierarchy(ctx context.Context, id, parentID, childID int64) (*domain.Result, error) {
	in := domain.TagHierarchyInput{ParentTagID: parentID, ChildTagID: childID}
	var out domain.Result
	if err := c.put(ctx, fmt.Sprintf("%s/%d", pathTagsHierarchy, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTagHierarchy removes a tag hierarchy entry
func (c *Client) DeleteTagHierarchy(ctx context.Context, id int64) (*domain.Result, error) {
	var out domain.Result
	if err := c.delete(ctx, fmt.Sprintf("%s/%d", pathTagsHierarchy, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
