package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/fetcher"
	"github.com/pbaille/kbc/internal/filter"
	"github.com/pbaille/kbc/internal/render"
	"github.com/spf13/cobra"
)

func notesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "Manage notes",
	}

	cmd.AddCommand(notesListCmd(a))
	cmd.AddCommand(notesGetCmd(a))
	cmd.AddCommand(notesSearchCmd(a))
	cmd.AddCommand(notesCreateCmd(a))
	cmd.AddCommand(notesUpdateCmd(a))
	cmd.AddCommand(notesDeleteCmd(a))
	cmd.AddCommand(notesClipCmd(a))
	cmd.AddCommand(notesTagsCmd(a))
	cmd.AddCommand(treeCmd(a, hierarchy{
		noun:  "note",
		empty: "No notes found or unable to retrieve the notes tree.",
		typed: true,
		list: func(ctx context.Context) ([]*domain.TreeNode, error) {
			return a.client.NotesTree(ctx)
		},
		add: func(ctx context.Context, parentID, childID int64, kind string) (*domain.Created, error) {
			return a.client.CreateNoteHierarchy(ctx, domain.NoteHierarchyInput{ParentID: parentID, ChildID: childID, HierarchyType: kind})
		},
		update: func(ctx context.Context, id, parentID, childID int64, kind string) (*domain.Result, error) {
			return a.client.UpdateNoteHierarchy(ctx, id, domain.NoteHierarchyInput{ParentID: parentID, ChildID: childID, HierarchyType: kind})
		},
		remove: func(ctx context.Context, id int64) (*domain.Result, error) {
			return a.client.DeleteNoteHierarchy(ctx, id)
		},
	}))

	return cmd
}

func notesListCmd(a *app) *cobra.Command {
	var noContent bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			var notes []domain.Note
			if noContent {
				notes, err = r.ListNotesNoContent(cmd.Context())
			} else {
				notes, err = r.ListNotes(cmd.Context())
			}
			if err != nil {
				return err
			}
			return a.out.Notes(notes, !noContent)
		},
	}

	cmd.Flags().BoolVar(&noContent, "no-content", false, "leave note bodies out")
	return cmd
}

func notesGetCmd(a *app) *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "get <note-id>",
		Short: "Print the content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			n, err := r.GetNote(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asTable {
				return a.out.Notes([]domain.Note{*n}, true)
			}
			return a.out.NoteContent(*n)
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "print the whole record instead of the content")
	return cmd
}

func notesSearchCmd(a *app) *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over note titles and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			refs, err := r.SearchNotes(cmd.Context(), query)
			if err != nil {
				return err
			}
			if !asTable && a.out.Format() != render.FormatJSON {
				return render.New(a.out.Writer(), render.FormatPlain).NoteRefs(refs)
			}
			return a.out.NoteRefs(refs)
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", true, `print a table; --table=false prints "id<TAB>title" lines`)
	return cmd
}

func notesCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <title> <content>",
		Short: "Create a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			title, content := args[0], args[1]
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("note title cannot be empty")
			}

			created, err := a.client.CreateNote(cmd.Context(), domain.NoteInput{Title: &title, Content: &content})
			if err != nil {
				return err
			}
			if err := a.out.Done(created, fmt.Sprintf("Note created successfully with ID: %d", created.ID)); err != nil {
				return err
			}
			return a.showNote(cmd.Context(), created.ID)
		},
	}
}

func notesUpdateCmd(a *app) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "update <note-id>",
		Short: "Change the title and/or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}

			var in domain.NoteInput
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("content") {
				in.Content = &content
			}
			if in.Title == nil && in.Content == nil {
				return fmt.Errorf("%w: give --title and/or --content", errNothingToUpdate)
			}

			res, err := a.client.UpdateNote(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			if err := a.out.Done(res, fmt.Sprintf("Note with ID %d has been successfully updated.", id)); err != nil {
				return err
			}
			return a.showNote(cmd.Context(), id)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	return cmd
}

// showNote prints the current state of a note after a change. JSON output
// already carries the service response, so it is skipped there.
func (a *app) showNote(ctx context.Context, id int64) error {
	if a.out.Format() == render.FormatJSON {
		return nil
	}
	n, err := a.client.GetNote(ctx, id)
	if err != nil {
		return err
	}
	return a.out.Notes([]domain.Note{*n}, true)
}

func notesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			res, err := a.client.DeleteNote(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Note with ID %d has been successfully deleted.", id))
		},
	}
}

func notesClipCmd(a *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "clip <url>",
		Short: "Fetch a web page and save its text as a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			page, err := fetcher.New(a.cfg.Timeout).Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.logger.Info("page fetched", "url", page.URL, "title", page.Title, "chars", len(page.Text))

			if title == "" {
				title = page.Title
			}
			content := page.Text + "\n\nSource: " + page.URL

			created, err := a.client.CreateNote(cmd.Context(), domain.NoteInput{Title: &title, Content: &content})
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Clipped %s as note %d: %s", page.URL, created.ID, title))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title (default: the page title)")
	return cmd
}

func notesTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <note-id>",
		Short: "List the tags assigned to a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			r, done, err := a.reader(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			tagNotes, err := r.TagsWithNotes(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Tags(filter.NoteTags(tagNotes, id))
		},
	}
}
