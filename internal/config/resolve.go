package config

import (
	"errors"

	"issue-tracker/internal/apperr"
)

// Overrides are the values supplied on the command line for one run.
// Empty strings mean "not given".
type Overrides struct {
	GitHubAccessToken string
	UserName          string
	ShowPathOnly      bool
}

// Saver persists a record. *Store satisfies it.
type Saver interface {
	Save(Record) error
}

// Merge applies every non-empty override that differs from the stored value.
func Merge(current Record, ov Overrides) Record {
	if ov.GitHubAccessToken != "" && ov.GitHubAccessToken != current.GitHubAccessToken {
		current.GitHubAccessToken = ov.GitHubAccessToken
	}
	if ov.UserName != "" && ov.UserName != current.UserName {
		current.UserName = ov.UserName
	}
	return current
}

// Resolve merges ov into current and persists the result, changed or not,
// so the file always reflects the last resolved configuration.
func Resolve(s Saver, current Record, ov Overrides) (Record, error) {
	rec := Merge(current, ov)
	if err := s.Save(rec); err != nil {
		return Record{}, apperr.Wrap(apperr.ConfigIO, err)
	}
	return rec, nil
}

var (
	ErrMissingToken    = errors.New("no GitHub access token configured, set one with the --token (-t) flag")
	ErrMissingUserName = errors.New("no GitHub user name configured, set one with the --user-name (-u) flag")
)

// Check reports the first unset credential field.
func Check(rec Record) error {
	if rec.GitHubAccessToken == "" {
		return apperr.Wrap(apperr.MissingCredential, ErrMissingToken)
	}
	if rec.UserName == "" {
		return apperr.Wrap(apperr.MissingCredential, ErrMissingUserName)
	}
	return nil
}
