package filter

import (
	"testing"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// same shape the service returns from /tags/with-notes
var sample = []domain.TagNotes{
	{TagID: 1, TagName: "important", Notes: nil},
	{TagID: 3, TagName: "todo", Notes: []domain.NoteRef{{ID: 2, Title: "Foo"}, {ID: 7, Title: "Bar"}}},
	{TagID: 2, TagName: "urgent", Notes: []domain.NoteRef{{ID: 2, Title: "Foo"}}},
	{TagID: 4, TagName: "done", Notes: nil},
	{TagID: 5, TagName: "important", Notes: []domain.NoteRef{{ID: 7, Title: "Bar"}}},
}

func ids(refs []domain.NoteRef) []int64 {
	out := make([]int64, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}

func TestByTags_All(t *testing.T) {
	got, err := ByTags(sample, []string{"todo", "urgent"}, All)
	require.NoError(t, err)
	assert.Equal(t, []domain.NoteRef{{ID: 2, Title: "Foo"}}, got)
}

func TestByTags_SingleTagSortedByID(t *testing.T) {
	got, err := ByTags(sample, []string{"todo"}, All)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 7}, ids(got))
}

func TestByTags_DuplicateNamesPoolNotes(t *testing.T) {
	// tags 1 and 5 are both "important"; only 5 has notes
	got, err := ByTags(sample, []string{"IMPORTANT", "todo"}, All)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids(got))
}

func TestByTags_Any(t *testing.T) {
	got, err := ByTags(sample, []string{"urgent", "important"}, Any)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 7}, ids(got))
}

func TestByTags_UnknownTagUnderAllIsEmpty(t *testing.T) {
	got, err := ByTags(sample, []string{"todo", "nope"}, All)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestByTags_NoNames(t *testing.T) {
	_, err := ByTags(sample, []string{" ", ""}, All)
	assert.ErrorIs(t, err, ErrNoTags)
}

func TestMatchTags(t *testing.T) {
	tags := []domain.Tag{
		{ID: 4, Name: "done"},
		{ID: 5, Name: "important"},
		{ID: 1, Name: "important"},
		{ID: 3, Name: "todo"},
		{ID: 2, Name: "urgent"},
	}

	got, err := MatchTags(tags, "OR")
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{{ID: 1, Name: "important"}, {ID: 5, Name: "important"}}, got)

	got, err = MatchTags(tags, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = MatchTags(tags, "  ")
	assert.ErrorIs(t, err, ErrEmptyTerm)
}

func TestNoteTags(t *testing.T) {
	got := NoteTags(sample, 2)
	assert.Equal(t, []domain.Tag{{ID: 3, Name: "todo"}, {ID: 2, Name: "urgent"}}, got)
	assert.Empty(t, NoteTags(sample, 99))
}
