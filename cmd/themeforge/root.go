package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/themeforge/internal/app"
	"github.com/dshills/themeforge/internal/config"
	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/logging"
	"github.com/dshills/themeforge/internal/storage"
)

// errQuit ends the edit loop without an error exit.
var errQuit = errors.New("quit")

type rootFlags struct {
	configPath string
	logLevel   string
	dsn        string
	catalogDir string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "themeforge",
		Short:         "Design Material themes from templates, composables and edits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to settings file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "Design database (sqlite path or postgres URL)")
	cmd.PersistentFlags().StringVar(&flags.catalogDir, "catalog", "", "Catalog directory with templates/ and composables/")

	cmd.AddCommand(newTemplatesCmd(flags))
	cmd.AddCommand(newComposablesCmd(flags))
	cmd.AddCommand(newDesignsCmd(flags))
	cmd.AddCommand(newNewCmd(flags))
	cmd.AddCommand(newResolveCmd(flags))
	cmd.AddCommand(newExportCmd(flags))
	cmd.AddCommand(newImportCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newEditCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "themeforge %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			return nil
		},
	}
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show effective settings and where each came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(flags)
			if err != nil {
				return err
			}
			values, err := settings.Values()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SETTING\tVALUE\tSOURCE")
			for _, path := range layer.SortedPaths(values) {
				fmt.Fprintf(tw, "%s\t%v\t%s\n", path, values[path], settings.Origin(path))
			}
			return tw.Flush()
		},
	}
}

// session is an editor plus the resources it was opened with.
type session struct {
	editor   *app.Editor
	settings *config.Settings
	closeDB  func() error
}

func (s *session) Close() error {
	err := s.editor.Close()
	if s.closeDB != nil {
		err = errors.Join(err, s.closeDB())
	}
	return err
}

// loadSettings applies flag overrides on top of the settings file and
// environment.
func loadSettings(flags *rootFlags) (*config.Settings, error) {
	settings, err := config.Load(config.Options{Path: flags.configPath})
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		settings.Logging.Level = flags.logLevel
		settings.SetOrigin("logging.level", "flag")
	}
	if flags.dsn != "" {
		settings.Storage.DSN = flags.dsn
		settings.SetOrigin("storage.dsn", "flag")
	}
	if flags.catalogDir != "" {
		settings.Catalog.Dir = flags.catalogDir
		settings.SetOrigin("catalog.dir", "flag")
	}
	return settings, settings.Validate()
}

func newLogger(settings *config.Settings, w io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(settings.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:         level,
		HumanReadable: settings.Logging.Human || isTerminal(w),
		Writer:        w,
	}), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// openSession builds an editor. withDB also opens the design database.
func openSession(cmd *cobra.Command, flags *rootFlags, withDB bool) (*session, error) {
	settings, err := loadSettings(flags)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(settings, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	s := &session{settings: settings}
	opts := app.Options{Settings: settings, Logger: logger}
	if withDB {
		db, err := storage.Open(storage.Config{DSN: settings.Storage.DSN})
		if err != nil {
			return nil, err
		}
		opts.Repository = storage.NewRepository(db)
		s.closeDB = func() error { return storage.Close(db) }
	}

	s.editor, err = app.New(opts)
	if err != nil {
		if s.closeDB != nil {
			_ = s.closeDB()
		}
		return nil, err
	}
	if err := s.editor.Start(cmd.Context()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// openDesign opens a session on a saved design. An empty name opens a
// fresh unsaved design.
func openDesign(cmd *cobra.Command, flags *rootFlags, name string) (*session, error) {
	s, err := openSession(cmd, flags, true)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return s, nil
	}
	if err := s.editor.Open(cmd.Context(), name); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
