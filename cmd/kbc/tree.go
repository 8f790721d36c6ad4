package main

import (
	"context"
	"fmt"

	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/render"
	"github.com/pbaille/kbc/internal/tree"
	"github.com/spf13/cobra"
)

// hierarchy wires the tree subcommands to one kind of record
type hierarchy struct {
	noun  string
	empty string
	// typed hierarchies accept a --type on their entries
	typed bool

	list func(ctx context.Context) ([]*domain.TreeNode, error)
	// entries lists the raw hierarchy rows, when the service exposes them
	entries func(ctx context.Context) ([]domain.HierarchyEntry, error)
	add     func(ctx context.Context, parentID, childID int64, kind string) (*domain.Created, error)
	update  func(ctx context.Context, id, parentID, childID int64, kind string) (*domain.Result, error)
	remove  func(ctx context.Context, id int64) (*domain.Result, error)
}

func treeCmd(a *app, h hierarchy) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: fmt.Sprintf("Show and edit the %s hierarchy", h.noun),
	}
	cmd.AddCommand(treeListCmd(a, h))
	if h.entries != nil {
		cmd.AddCommand(treeEntriesCmd(a, h))
	}
	cmd.AddCommand(treeAddParentCmd(a, h))
	cmd.AddCommand(treeUpdateCmd(a, h))
	cmd.AddCommand(treeRemoveChildCmd(a, h))
	return cmd
}

func treeListCmd(a *app, h hierarchy) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("Print the %s hierarchy", h.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			forest, err := h.list(cmd.Context())
			if err != nil {
				return err
			}
			if tree.Count(forest) == 0 && a.out.Format() != render.FormatJSON {
				return a.out.Info(h.empty)
			}
			return a.out.Tree(forest)
		},
	}
}

func treeEntriesCmd(a *app, h hierarchy) *cobra.Command {
	return &cobra.Command{
		Use:   "entries",
		Short: "List hierarchy entries with their ids, for update and remove-child",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			list, err := h.entries(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Entries(list)
		},
	}
}

func treeAddParentCmd(a *app, h hierarchy) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "add-parent <child-id> <parent-id>",
		Short: fmt.Sprintf("Make one %s the child of another", h.noun),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			childID, err := parseID(args[0], h.noun)
			if err != nil {
				return err
			}
			parentID, err := parseID(args[1], h.noun)
			if err != nil {
				return err
			}
			if childID == parentID {
				return fmt.Errorf("a %s cannot be its own parent", h.noun)
			}

			created, err := h.add(cmd.Context(), parentID, childID, kind)
			if err != nil {
				return err
			}
			return a.out.Done(created, fmt.Sprintf("Added %s %d under %s %d (entry %d).", h.noun, childID, h.noun, parentID, created.ID))
		},
	}

	if h.typed {
		cmd.Flags().StringVar(&kind, "type", "", "relationship type stored on the entry")
	}
	return cmd
}

func treeUpdateCmd(a *app, h hierarchy) *cobra.Command {
	var (
		parent, child int64
		kind          string
	)

	cmd := &cobra.Command{
		Use:   "update <entry-id>",
		Short: "Rewrite a hierarchy entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "hierarchy entry")
			if err != nil {
				return err
			}
			if parent == child {
				return fmt.Errorf("a %s cannot be its own parent", h.noun)
			}

			res, err := h.update(cmd.Context(), id, parent, child, kind)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Hierarchy entry %d updated.", id))
		},
	}

	cmd.Flags().Int64Var(&parent, "parent", 0, fmt.Sprintf("parent %s id", h.noun))
	cmd.Flags().Int64Var(&child, "child", 0, fmt.Sprintf("child %s id", h.noun))
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("child")
	if h.typed {
		cmd.Flags().StringVar(&kind, "type", "", "relationship type stored on the entry")
	}
	return cmd
}

func treeRemoveChildCmd(a *app, h hierarchy) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-child <entry-id>",
		Short: "Delete a hierarchy entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0], "hierarchy entry")
			if err != nil {
				return err
			}
			res, err := h.remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Done(res, fmt.Sprintf("Hierarchy entry %d removed.", id))
		},
	}
}
