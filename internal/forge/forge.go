package forge

import (
	"context"

	"issue-tracker/internal/model"
)

// Forge abstracts the issue host.
type Forge interface {
	Kind() string // "github"
	FetchIssues(ctx context.Context) ([]model.Issue, error)
}
