package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/filter"
	"github.com/pbaille/kbc/internal/tree"
	"github.com/spf13/cobra"
)

func tagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "Manage tags and find notes by tag",
	}

	cmd.AddCommand(tagsListCmd(a))
	cmd.AddCommand(tagsWithNotesCmd(a))
	cmd.AddCommand(tagsCreateCmd(a))
	cmd.AddCommand(tagsAssignCmd(a))
	cmd.AddCommand(tagsRenameCmd(a))
	cmd.AddCommand(tagsDeleteCmd(a))
	cmd.AddCommand(tagsFilterCmd(a))
	cmd.AddCommand(tagsSearchCmd(a))
	cmd.AddCommand(treeCmd(a, hierarchy{
		noun:  "tag",
		empty: "No tags found.",
		list:  a.tagForest,
		entries: func(ctx context.Context) ([]domain.HierarchyEntry, error) {
			list, err := a.client.TagHierarchy(ctx)
			if err != nil {
				return nil, err
			}
			return tree.TagEntries(list), nil
		},
		add: func(ctx context.Context, parentID, childID int64, _ string) (*domain.Created, error) {
			return a.client.CreateTagHierarchy(ctx, parentID, childID)
		},
		update: func(ctx context.Context, id, parentID, childID int64, _ string) (*domain.Result, error) {
			return a.client.UpdateTagHierarchy(ctx, id, parentID, childID)
		},
		remove: func(ctx context.Context, id int64) (*domain.Result, error) {
			return a.client.DeleteTagHierarchy(ctx, id)
		},
	}))

	return cmd
}

// tagForest assembles the tag tree from the flat tag list and hierarchy
// entries; the service has no tree endpoint for tags
func (a *app) tagForest(ctx context.Context) ([]*domain.TreeNode, error) {
	tags, err := a.client.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := a.client.TagHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Build(tree.TagItems(tags), tree.TagEntries(entries)), nil
}

func tagsListCmd(a *app) *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if namesOnly {
				names, err := r.TagNames(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Names(names)
			}
			tags, err := r.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Tags(tags)
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "names", false, "print tag names only, one per line")
	return cmd
}

func tagsWithNotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "with-notes",
		Short: "List every tag with the notes it is assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			list, err := r.TagsWithNotes(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.TagNotes(list)
		},
	}
}

func tagsCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("tag name cannot be empty")
			}
			created, err := a.client.CreateTag(cmd.Context(), name)
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Tag created successfully with ID: %d", created.ID))
		},
	}
}

func tagsAssignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <note-id> <tag-id>",
		Short: "Assign a tag to a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			noteID, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			tagID, err := parseID(args[1], "tag")
			if err != nil {
				return err
			}
			res, err := a.client.AssignTag(cmd.Context(), noteID, tagID)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Tag %d assigned to note %d.", tagID, noteID))
		},
	}
}

func tagsRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <tag-id> <name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "tag")
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if name == "" {
				return fmt.Errorf("tag name cannot be empty")
			}
			res, err := a.client.UpdateTag(cmd.Context(), id, name)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Tag %d renamed to %q.", id, name))
		},
	}
}

func tagsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag-id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "tag")
			if err != nil {
				return err
			}
			res, err := a.client.DeleteTag(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Tag with ID %d has been successfully deleted.", id))
		},
	}
}

func tagsFilterCmd(a *app) *cobra.Command {
	var matchAny bool

	cmd := &cobra.Command{
		Use:   "filter <tag-name>...",
		Short: "List notes carrying all (or, with --any, some) of the named tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			tagNotes, err := r.TagsWithNotes(cmd.Context())
			if err != nil {
				return err
			}
			mode := filter.All
			if matchAny {
				mode = filter.Any
			}
			refs, err := filter.ByTags(tagNotes, args, mode)
			if err != nil {
				return err
			}
			a.logger.Debug("tag filter", "tags", args, "any", matchAny, "matches", len(refs))
			return a.out.NoteRefs(refs)
		},
	}

	cmd.Flags().BoolVar(&matchAny, "any", false, "match notes with at least one of the tags")
	return cmd
}

func tagsSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find tags whose name contains the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			tags, err := r.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			matches, err := filter.MatchTags(tags, args[0])
			if err != nil {
				return err
			}
			return a.out.Tags(matches)
		},
	}
}
