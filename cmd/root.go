package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corpeningc/keepours/internal/config"
	"github.com/corpeningc/keepours/internal/run"
	"github.com/corpeningc/keepours/internal/ui"
)

var (
	dryRun      bool
	excludeDirs []string
	gitOnly     bool
	stage       bool
	selectFiles bool
	configPath  string
	verbose     bool
)

// ErrConflictsFound is returned by check when any file would be rewritten.
var ErrConflictsFound = errors.New("conflict markers found")

var rootCmd = &cobra.Command{
	Use:   "keepours [root]",
	Short: "Strip merge-conflict markers, keeping our side",
	Long: `Walks a directory tree and removes unresolved merge-conflict blocks from
text files, keeping the current ("ours") side and dropping the incoming side.
Files without a conflict-start marker are never rewritten.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args, false)
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	pf.StringArrayVar(&excludeDirs, "exclude", nil, "directory name to skip (repeatable)")
	pf.BoolVar(&gitOnly, "git", false, "only look at files git reports as unmerged")
	pf.BoolVar(&stage, "stage", false, "git add files after resolving them")
	pf.BoolVar(&selectFiles, "select", false, "pick which conflicted files to rewrite")
	pf.StringVar(&configPath, "config", "", "config file (default <root>/"+config.FileName+")")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(previewCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [root]",
	Short: "Resolve conflicts in place (default command)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "List files that would be rewritten; exits 1 if there are any",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args, true)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show what resolving a file would change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.ShowPreview(args[0])
	},
}

func runResolve(cmd *cobra.Command, args []string, check bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("read working directory: %w", err)
	}

	cli := config.CLIArgs{
		ConfigPath:  configPath,
		ExcludeDirs: excludeDirs,
		SelfNames:   executableName(),
		DryRun:      dryRun,
		DryRunSet:   cmd.Flags().Changed("dry-run"),
		Stage:       stage,
		StageSet:    cmd.Flags().Changed("stage"),
		GitOnly:     gitOnly,
		Select:      selectFiles,
	}
	if len(args) > 0 {
		cli.Root = args[0]
	}
	if check {
		cli.DryRun, cli.DryRunSet = true, true
		cli.Stage, cli.StageSet = false, true
		cli.Select = false
	}

	cfg, err := config.Load(cwd, cli)
	if err != nil {
		return err
	}

	logger := newLogger(verbose)
	logger.Debug("config loaded", "root", cfg.Root, "file", cfg.File, "exclude", cfg.ExcludeDirs, "dry_run", cfg.DryRun)

	console := ui.NewConsole(cmd.OutOrStdout())
	console.DryRun = cfg.DryRun

	rr, err := run.Execute(cmd.Context(), cfg, run.Options{
		Logger:   logger,
		Observer: console,
		Select:   ui.SelectFiles,
	})
	if err != nil {
		return err
	}

	if rr.Summary.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be rewritten", rr.Summary.Failed)
	}
	if check && rr.Summary.Resolved > 0 {
		return fmt.Errorf("%w in %d file(s)", ErrConflictsFound, rr.Summary.Resolved)
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// executableName keeps the binary itself out of the scan when it was
// built into the tree being cleaned.
func executableName() []string {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	return []string{filepath.Base(exe)}
}
