package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pbaille/kbc/internal/api"
	"github.com/pbaille/kbc/internal/config"
	"github.com/pbaille/kbc/internal/domain"
	"github.com/pbaille/kbc/internal/logging"
	"github.com/pbaille/kbc/internal/render"
	"github.com/pbaille/kbc/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags and config are resolved
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	client *api.Client
	out    *render.Printer
	now    func() time.Time
}

// reader is the read side shared by the service client and the local snapshot
type reader interface {
	ListNotes(ctx context.Context) ([]domain.Note, error)
	ListNotesNoContent(ctx context.Context) ([]domain.Note, error)
	GetNote(ctx context.Context, id int64) (*domain.Note, error)
	SearchNotes(ctx context.Context, query string) ([]domain.NoteRef, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	TagNames(ctx context.Context) ([]string, error)
	TagsWithNotes(ctx context.Context) ([]domain.TagNotes, error)
	TaskDetails(ctx context.Context) ([]domain.Task, error)
}

var (
	_ reader = (*api.Client)(nil)
	_ reader = (*store.Store)(nil)
)

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), now: time.Now}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "kbc",
		Short:         "Command-line client for the notes, tags and tasks service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, configFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ~/.kbc/config.yaml)")
	flags.String("api-url", config.DefaultAPIURL, "service base URL")
	flags.Duration("timeout", config.DefaultTimeout, "request timeout")
	flags.String("log-level", logging.DefaultLevel, "log level: debug, info, warn or error")
	flags.StringP("output", "o", string(render.FormatTable), "output format: table, plain or json")
	flags.String("db", "", "local snapshot database (default ~/.kbc/snapshot.db)")
	flags.Bool("offline", false, "read from the local snapshot instead of the service")

	rootCmd.AddCommand(notesCmd(a))
	rootCmd.AddCommand(tagsCmd(a))
	rootCmd.AddCommand(taskCmd(a))
	rootCmd.AddCommand(syncCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, configFile string) error {
	if err := config.BindFlags(a.v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.APIURL, cfg.Timeout, api.WithLogger(logger))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.client = client
	a.out = render.New(cmd.OutOrStdout(), cfg.Output)

	logger.Debug("configuration loaded",
		"api_url", cfg.APIURL,
		"timeout", cfg.Timeout,
		"config_file", cfg.File,
		"offline", cfg.Offline,
	)
	return nil
}

// reader returns the snapshot store in offline mode and the service client
// otherwise. The returned func releases it.
func (a *app) reader(ctx context.Context) (reader, func(), error) {
	if !a.cfg.Offline {
		return a.client, func() {}, nil
	}

	s, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	at, err := s.SyncedAt(ctx)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	a.logger.Info("reading local snapshot", "db", a.cfg.DBPath, "synced_at", at)
	return s, func() { s.Close() }, nil
}

// online fails commands that change data while in offline mode
func (a *app) online(cmd *cobra.Command) error {
	if a.cfg.Offline {
		return fmt.Errorf("%q needs the service and cannot run with --offline", cmd.CommandPath())
	}
	return nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// timeLayouts are tried in order when parsing date flags
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)", s)
}

// timeFlag parses the named flag when it was given, nil otherwise
func timeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}

var errNothingToUpdate = errors.New("nothing to update")
