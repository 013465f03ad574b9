// Package session runs the pick-an-issue, open-it loop over a fixed snapshot
// of issues.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/model"
)

// ErrInterrupted is returned by a Chooser when the user asks to leave.
var ErrInterrupted = errors.New("interrupted")

// Chooser presents issues and returns the index the user picked.
type Chooser interface {
	Choose(ctx context.Context, issues []model.Issue) (int, error)
}

// Opener opens a URL in the user's browser.
type Opener interface {
	Open(url string) error
}

// State of the loop.
type State int

const (
	AwaitingSelection State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "awaiting-selection"
}

// Loop repeatedly asks for an issue and opens it. Issues are never refetched.
type Loop struct {
	Issues  []model.Issue
	Chooser Chooser
	Opener  Opener
	Logger  *slog.Logger

	state  State
	opened int
}

// State reports where the loop is.
func (l *Loop) State() State { return l.state }

// Opened is the number of issues handed to the opener so far.
func (l *Loop) Opened() int { return l.opened }

// Run blocks until the user interrupts (nil) or a collaborator fails.
func (l *Loop) Run(ctx context.Context) error {
	log := l.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	for l.state == AwaitingSelection {
		if err := l.step(ctx, log); err != nil {
			l.state = Terminated
			if errors.Is(err, ErrInterrupted) || ctx.Err() != nil {
				log.Info("selection loop interrupted", "state", l.state.String(), "opened", l.opened)
				return nil
			}
			return err
		}
	}
	return nil
}

func (l *Loop) step(ctx context.Context, log *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx, err := l.Chooser.Choose(ctx, l.Issues)
	if err != nil {
		if errors.Is(err, ErrInterrupted) {
			return err
		}
		return apperr.Wrap(apperr.Interaction, fmt.Errorf("select issue: %w", err))
	}
	if idx < 0 || idx >= len(l.Issues) {
		return apperr.Wrap(apperr.Interaction, fmt.Errorf("select issue: index %d out of range [0,%d)", idx, len(l.Issues)))
	}

	issue := l.Issues[idx]
	log.Debug("issue selected", "index", idx, "number", issue.Number, "url", issue.URL)

	if err := l.Opener.Open(issue.URL); err != nil {
		return apperr.Wrap(apperr.Launch, fmt.Errorf("open %s: %w", issue.URL, err))
	}
	l.opened++
	return nil
}
