package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/browser"
	"issue-tracker/internal/config"
	"issue-tracker/internal/forge"
	"issue-tracker/internal/model"
	"issue-tracker/internal/session"
	"issue-tracker/internal/tui"
)

const fetchLabel = "Fetching issues..."

// Progress wraps the issue fetch with user feedback.
type Progress interface {
	Run(ctx context.Context, label string, fetch tui.FetchFunc) ([]model.Issue, error)
}

// App holds the collaborators of one run. Every field has a production
// default installed by New; tests swap them.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    map[string]string
	Logger *slog.Logger

	NewForge func(cfg config.Record, log *slog.Logger) forge.Forge
	Progress Progress
	Chooser  session.Chooser
	Opener   session.Opener
}

// New returns an App wired to the terminal, GitHub and the system browser.
// TUI output goes to stderr so stdout stays clean.
func New(stdin io.Reader, stdout, stderr io.Writer, env map[string]string, log *slog.Logger) *App {
	return &App{
		Stdout: stdout,
		Stderr: stderr,
		Env:    env,
		Logger: log,
		NewForge: func(cfg config.Record, log *slog.Logger) forge.Forge {
			return forge.NewGitHub(cfg, forge.WithLogger(log))
		},
		Progress: tui.Progress{In: stdin, Out: stderr},
		Chooser:  &tui.Picker{In: stdin, Out: stderr, TTY: ttyOf(stdin)},
		Opener:   browser.Opener{},
	}
}

func ttyOf(r io.Reader) *os.File {
	if f, ok := r.(*os.File); ok {
		return f
	}
	return nil
}

// Run executes one invocation and returns the process exit code. It is the
// only place errors are reported to the user.
func (a *App) Run(ctx context.Context, args []string) int {
	if a.Logger == nil {
		a.Logger = slog.New(slog.DiscardHandler)
	}

	flags, err := ParseFlags(args)
	if err != nil {
		a.report(apperr.Wrap(apperr.Usage, err))
		printUsage(a.Stderr)
		return 1
	}
	if flags.Help {
		printUsage(a.Stdout)
		return 0
	}

	path, err := config.DefaultPath(a.Env)
	if err != nil {
		return a.report(err)
	}

	// informational only: nothing is read, merged or written
	if flags.Overrides.ShowPathOnly {
		fmt.Fprintln(a.Stderr, path)
		return 1
	}

	err = a.run(ctx, config.NewStore(path), flags.Overrides)
	if err != nil {
		return a.report(err)
	}
	return 0
}

func (a *App) run(ctx context.Context, store *config.Store, ov config.Overrides) error {
	log := a.Logger

	stored, err := store.Load()
	if err != nil {
		return err
	}

	cfg, err := config.Resolve(store, stored, ov)
	if err != nil {
		return err
	}
	log.Debug("config resolved", "path", store.Path(), "user", cfg.UserName,
		"token_changed", cfg.GitHubAccessToken != stored.GitHubAccessToken,
		"user_changed", cfg.UserName != stored.UserName)

	if err := config.Check(cfg); err != nil {
		return err
	}

	f := a.NewForge(cfg, log)
	issues, err := a.Progress.Run(ctx, fetchLabel, f.FetchIssues)
	if errors.Is(err, session.ErrInterrupted) {
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.Network, err)
	}
	log.Info("issues fetched", "forge", f.Kind(), "count", len(issues))

	if len(issues) == 0 {
		fmt.Fprintln(a.Stderr, "No open issues found.")
		return nil
	}

	loop := &session.Loop{
		Issues:  issues,
		Chooser: a.Chooser,
		Opener:  a.Opener,
		Logger:  log,
	}
	return loop.Run(ctx)
}

func (a *App) report(err error) int {
	r := lipgloss.NewRenderer(a.Stderr)
	fmt.Fprintf(a.Stderr, "%s: %v\n", tui.ErrorLabel(r, apperr.KindOf(err).String()), err)
	a.Logger.Error("fatal", "kind", apperr.KindOf(err).String(), "err", err)
	return 1
}

// NewLogger returns a debug logger writing to the file named by
// ISSUE_TRACKER_LOG, or a discarding logger when it is unset. The terminal
// belongs to the TUI, so logs never go to stdout or stderr.
func NewLogger(env map[string]string) (*slog.Logger, func() error, error) {
	path := env["ISSUE_TRACKER_LOG"]
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, f.Close, nil
}
