// Package filter answers tag questions over data already fetched from the
// service: which notes carry a set of tags, which tags match a query.
package filter

import (
	"errors"
	"sort"
	"strings"

	"github.com/pbaille/kbc/internal/domain"
)

// Mode decides how several tag names combine
type Mode int

const (
	// All keeps notes that carry every named tag.
	All Mode = iota
	// Any keeps notes that carry at least one named tag.
	Any
)

var (
	ErrNoTags    = errors.New("at least one tag name is required")
	ErrEmptyTerm = errors.New("search term is empty")
)

// ByTags returns the notes selected by names under mode, sorted by ID.
// Names compare case-insensitively and tags sharing a name pool their notes.
func ByTags(tagNotes []domain.TagNotes, names []string, mode Mode) ([]domain.NoteRef, error) {
	wanted := make([]string, 0, len(names))
	seen := make(map[string]bool)
	for _, n := range names {
		key := normalize(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		wanted = append(wanted, key)
	}
	if len(wanted) == 0 {
		return nil, ErrNoTags
	}

	// notes per tag name, and every note seen by title
	byName := make(map[string]map[int64]bool)
	refs := make(map[int64]domain.NoteRef)
	for _, tn := range tagNotes {
		key := normalize(tn.TagName)
		if !seen[key] {
			continue
		}
		set := byName[key]
		if set == nil {
			set = make(map[int64]bool)
			byName[key] = set
		}
		for _, n := range tn.Notes {
			set[n.ID] = true
			refs[n.ID] = n
		}
	}

	var ids []int64
	switch mode {
	case Any:
		for id := range refs {
			ids = append(ids, id)
		}
	default:
		first := byName[wanted[0]]
		for id := range first {
			inAll := true
			for _, name := range wanted[1:] {
				if !byName[name][id] {
					inAll = false
					break
				}
			}
			if inAll {
				ids = append(ids, id)
			}
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.NoteRef, len(ids))
	for i, id := range ids {
		out[i] = refs[id]
	}
	return out, nil
}

// MatchTags returns the tags whose name contains query, case-insensitively,
// sorted by name then ID
func MatchTags(tags []domain.Tag, query string) ([]domain.Tag, error) {
	q := normalize(query)
	if q == "" {
		return nil, ErrEmptyTerm
	}

	var out []domain.Tag
	for _, t := range tags {
		if strings.Contains(normalize(t.Name), q) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// NoteTags returns the tags assigned to one note
func NoteTags(tagNotes []domain.TagNotes, noteID int64) []domain.Tag {
	var out []domain.Tag
	for _, tn := range tagNotes {
		for _, n := range tn.Notes {
			if n.ID == noteID {
				out = append(out, domain.Tag{ID: tn.TagID, Name: tn.TagName})
				break
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
