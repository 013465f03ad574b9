package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/config"
	"issue-tracker/internal/model"
)

const (
	DefaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
	fetchTimeout   = 30 * time.Second
	maxErrBody     = 4 << 10
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMissingField     = errors.New("issue is missing a required field")
)

type gitHub struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       *slog.Logger
}

// Option configures the GitHub forge.
type Option func(*options)

type options struct {
	baseURL string
	base    *http.Client
	log     *slog.Logger
}

// WithBaseURL points the forge at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the client whose transport carries the authenticated requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.base = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// NewGitHub returns a Forge authenticated as cfg. The token is sent as a
// bearer token and the user name as User-Agent, which GitHub requires.
func NewGitHub(cfg config.Record, opts ...Option) Forge {
	o := options{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}

	ctx := context.Background()
	if o.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.GitHubAccessToken,
		TokenType:   "Bearer",
	}))

	return &gitHub{
		baseURL:   o.baseURL,
		userAgent: cfg.UserName,
		client:    client,
		log:       o.log,
	}
}

func (g *gitHub) Kind() string { return "github" }

// FetchIssues lists the issues assigned to the authenticated user.
func (g *gitHub) FetchIssues(ctx context.Context) ([]model.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	url := g.baseURL + "/issues"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Network, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", g.userAgent)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Network, fmt.Errorf("GET %s: %w", url, err))
	}
	defer resp.Body.Close()

	g.log.Debug("github response",
		"url", url,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return nil, apperr.Wrap(apperr.Network, fmt.Errorf("GET %s: %w: %s", url, ErrUnexpectedStatus, statusDetail(resp.Status, body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Network, fmt.Errorf("read response: %w", err))
	}
	return DecodeIssues(body)
}

// ghIssue mirrors the fields we care about from GET /issues. Pointers
// distinguish absent or null fields from zero values.
type ghIssue struct {
	HTMLURL *string `json:"html_url"`
	Number  *uint   `json:"number"`
	Title   *string `json:"title"`
}

// DecodeIssues parses a GET /issues body. Every element must carry
// html_url, number and title; otherwise nothing is returned.
func DecodeIssues(body []byte) ([]model.Issue, error) {
	var raw []ghIssue
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Wrap(apperr.Decode, fmt.Errorf("decode issues: %w", err))
	}
	if raw == nil {
		return nil, apperr.Wrap(apperr.Decode, errors.New("decode issues: expected a JSON array, got null"))
	}

	issues := make([]model.Issue, 0, len(raw))
	for i, r := range raw {
		var missing []string
		if r.HTMLURL == nil {
			missing = append(missing, "html_url")
		}
		if r.Number == nil {
			missing = append(missing, "number")
		}
		if r.Title == nil {
			missing = append(missing, "title")
		}
		if len(missing) > 0 {
			return nil, apperr.Wrap(apperr.Decode,
				fmt.Errorf("decode issues: element %d: %w: %s", i, ErrMissingField, strings.Join(missing, ", ")))
		}
		issues = append(issues, model.Issue{
			URL:    *r.HTMLURL,
			Number: *r.Number,
			Title:  *r.Title,
		})
	}
	return issues, nil
}

// statusDetail prefers GitHub's {"message": ...} over the raw body.
func statusDetail(status string, body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return status + " (" + apiErr.Message + ")"
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return status + " (" + trimOutput(s) + ")"
	}
	return status
}

// trimOutput shortens s to at most 200 runes.
func trimOutput(s string) string {
	if utf8.RuneCountInString(s) <= 200 {
		return s
	}
	return string([]rune(s)[:200]) + "…"
}
