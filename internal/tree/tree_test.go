package tree

import (
	"bytes"
	"testing"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(titles ...string) []Item {
	out := make([]Item, len(titles))
	for i, t := range titles {
		out[i] = Item{ID: int64(i + 1), Title: t}
	}
	return out
}

func edge(parent, child int64) domain.HierarchyEntry {
	return domain.HierarchyEntry{ParentID: parent, ChildID: child}
}

func TestBuild_RootsAndChildrenKeepOrder(t *testing.T) {
	forest := Build(items("work", "golang", "home", "rust"), []domain.HierarchyEntry{
		edge(1, 4),
		edge(1, 2),
	})

	require.Len(t, forest, 2)
	assert.Equal(t, "work", forest[0].Title)
	assert.Equal(t, "home", forest[1].Title)

	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "rust", forest[0].Children[0].Title)
	assert.Equal(t, "golang", forest[0].Children[1].Title)
	assert.Equal(t, 4, Count(forest))
}

func TestBuild_IgnoresUnknownAndSelfEntries(t *testing.T) {
	forest := Build(items("a", "b"), []domain.HierarchyEntry{
		edge(1, 99),
		edge(42, 2),
		edge(2, 2),
	})

	require.Len(t, forest, 2)
	assert.Empty(t, forest[0].Children)
	assert.Empty(t, forest[1].Children)
}

func TestBuild_CycleTerminatesAndKeepsEveryItem(t *testing.T) {
	forest := Build(items("a", "b", "c"), []domain.HierarchyEntry{
		edge(1, 2),
		edge(2, 3),
		edge(3, 1),
	})

	// Every item is a child, so nothing is a natural root; the first item
	// becomes a root and the cycle back to it is cut.
	require.Len(t, forest, 1)
	assert.Equal(t, int64(1), forest[0].ID)
	assert.Equal(t, 3, Count(forest))
	require.Len(t, forest[0].Children, 1)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Empty(t, forest[0].Children[0].Children[0].Children)
}

func TestBuild_EntryTypeLandsOnChild(t *testing.T) {
	forest := Build(items("page", "block"), []domain.HierarchyEntry{
		{ParentID: 1, ChildID: 2, Type: "block"},
	})

	require.Len(t, forest, 1)
	assert.Empty(t, forest[0].Type)
	assert.Equal(t, "block", forest[0].Children[0].Type)
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil, nil))
}

func TestRender(t *testing.T) {
	forest := []*domain.TreeNode{
		{
			ID:    1,
			Title: "First note",
			Children: []*domain.TreeNode{
				{
					ID:       2,
					Title:    "Second note",
					Type:     "block",
					Children: []*domain.TreeNode{{ID: 3, Title: "Third note", Type: "subpage"}},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, forest))

	want := "├─ First note (ID: 1)\n" +
		"  ├─ Second note (ID: 2) [block]\n" +
		"    ├─ Third note (ID: 3) [subpage]\n"
	assert.Equal(t, want, buf.String())
}

func TestTagAdapters(t *testing.T) {
	tags := []domain.Tag{{ID: 10, Name: "lang"}, {ID: 5, Name: "go"}}
	entries := []domain.TagHierarchyEntry{{ID: 1, ParentTagID: 10, ChildTagID: 5}}

	forest := Build(TagItems(tags), TagEntries(entries))

	require.Len(t, forest, 1)
	assert.Equal(t, "lang", forest[0].Title)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "go", forest[0].Children[0].Title)
}
