package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pbaille/kbc/internal/store"
	"github.com/spf13/cobra"
)

type syncSummary struct {
	DB     string `json:"db"`
	Notes  int    `json:"notes"`
	Tags   int    `json:"tags"`
	Tasks  int    `json:"tasks"`
	Synced string `json:"synced_at"`
}

func syncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy notes, tags and tasks into the local snapshot for --offline use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.online(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()

			snap := store.Snapshot{TakenAt: a.now()}
			var err error
			if snap.Notes, err = a.client.ListNotes(ctx); err != nil {
				return fmt.Errorf("sync notes: %w", err)
			}
			if snap.Tags, err = a.client.ListTags(ctx); err != nil {
				return fmt.Errorf("sync tags: %w", err)
			}
			if snap.TagNotes, err = a.client.TagsWithNotes(ctx); err != nil {
				return fmt.Errorf("sync tag assignments: %w", err)
			}
			if snap.Tasks, err = a.client.TaskDetails(ctx); err != nil {
				return fmt.Errorf("sync tasks: %w", err)
			}

			if err := os.MkdirAll(filepath.Dir(a.cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("create db dir: %w", err)
			}
			s, err := store.New(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Replace(ctx, snap); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			a.logger.Info("snapshot written", "db", a.cfg.DBPath,
				"notes", len(snap.Notes), "tags", len(snap.Tags), "tasks", len(snap.Tasks))

			summary := syncSummary{
				DB:     a.cfg.DBPath,
				Notes:  len(snap.Notes),
				Tags:   len(snap.Tags),
				Tasks:  len(snap.Tasks),
				Synced: snap.TakenAt.UTC().Format(time.RFC3339),
			}
			return a.out.Done(summary, fmt.Sprintf("Synced %d notes, %d tags and %d tasks to %s.",
				summary.Notes, summary.Tags, summary.Tasks, summary.DB))
		},
	}
}
