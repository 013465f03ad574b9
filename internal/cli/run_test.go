package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/config"
	"issue-tracker/internal/forge"
	"issue-tracker/internal/model"
	"issue-tracker/internal/session"
	"issue-tracker/internal/tui"
)

// Test helpers.

type fakeForge struct {
	issues []model.Issue
	err    error
	calls  int
}

func (f *fakeForge) Kind() string { return "fake" }

func (f *fakeForge) FetchIssues(context.Context) ([]model.Issue, error) {
	f.calls++
	return f.issues, f.err
}

// passthroughProgress calls fetch directly.
type passthroughProgress struct{ labels []string }

func (p *passthroughProgress) Run(ctx context.Context, label string, fetch tui.FetchFunc) ([]model.Issue, error) {
	p.labels = append(p.labels, label)
	return fetch(ctx)
}

type pickFirstThenQuit struct{ calls int }

func (c *pickFirstThenQuit) Choose(context.Context, []model.Issue) (int, error) {
	c.calls++
	if c.calls == 1 {
		return 0, nil
	}
	return -1, session.ErrInterrupted
}

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

type harness struct {
	app      *App
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	forge    *fakeForge
	forgeCfg []config.Record
	chooser  *pickFirstThenQuit
	opener   *recordingOpener
	cfgPath  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		forge: &fakeForge{issues: []model.Issue{
			{URL: "https://github.com/o/r/issues/4", Number: 4, Title: "four"},
		}},
		chooser: &pickFirstThenQuit{},
		opener:  &recordingOpener{},
		cfgPath: filepath.Join(dir, "issue-tracker", "config.json"),
	}
	h.app = &App{
		Stdout: h.stdout,
		Stderr: h.stderr,
		Env:    map[string]string{"XDG_CONFIG_HOME": dir},
		Logger: slog.New(slog.DiscardHandler),
		NewForge: func(cfg config.Record, _ *slog.Logger) forge.Forge {
			h.forgeCfg = append(h.forgeCfg, cfg)
			return h.forge
		},
		Progress: &passthroughProgress{},
		Chooser:  h.chooser,
		Opener:   h.opener,
	}
	return h
}

func (h *harness) seed(t *testing.T, rec config.Record) {
	t.Helper()
	require.NoError(t, config.NewStore(h.cfgPath).Save(rec))
}

func (h *harness) stored(t *testing.T) config.Record {
	t.Helper()
	rec, err := config.NewStore(h.cfgPath).Load()
	require.NoError(t, err)
	return rec
}

func (h *harness) run(args ...string) int {
	return h.app.Run(context.Background(), args)
}

// Scenarios.

func TestFirstRunWithOverrides(t *testing.T) {
	h := newHarness(t)

	code := h.run("--token", "abc", "-u", "bob")
	require.Equal(t, 0, code, "stderr: %s", h.stderr.String())

	want := config.Record{GitHubAccessToken: "abc", UserName: "bob"}
	if diff := cmp.Diff(want, h.stored(t)); diff != "" {
		t.Errorf("persisted record (-want +got):\n%s", diff)
	}
	assert.Equal(t, []config.Record{want}, h.forgeCfg)
	assert.Equal(t, 1, h.forge.calls)
	assert.Equal(t, []string{"https://github.com/o/r/issues/4"}, h.opener.urls)
	assert.Equal(t, 2, h.chooser.calls)
}

func TestStoredCredentialsNoOverrides(t *testing.T) {
	h := newHarness(t)
	h.seed(t, config.Record{GitHubAccessToken: "abc", UserName: "bob"})

	require.Equal(t, 0, h.run())
	assert.Equal(t, config.Record{GitHubAccessToken: "abc", UserName: "bob"}, h.stored(t))
	assert.Equal(t, 1, h.forge.calls)
}

func TestOverrideReplacesOneField(t *testing.T) {
	h := newHarness(t)
	h.seed(t, config.Record{GitHubAccessToken: "abc", UserName: "bob"})

	require.Equal(t, 0, h.run("-t", "xyz"))
	assert.Equal(t, config.Record{GitHubAccessToken: "xyz", UserName: "bob"}, h.stored(t))
}

func TestFilePathShortCircuits(t *testing.T) {
	h := newHarness(t)
	h.seed(t, config.Record{GitHubAccessToken: "abc", UserName: "bob"})
	before, err := os.ReadFile(h.cfgPath)
	require.NoError(t, err)
	info, err := os.Stat(h.cfgPath)
	require.NoError(t, err)

	code := h.run("--file-path", "--token", "other")

	assert.Equal(t, 1, code)
	assert.Equal(t, h.cfgPath+"\n", h.stderr.String())
	assert.Empty(t, h.stdout.String())
	assert.Zero(t, h.forge.calls)
	assert.Empty(t, h.forgeCfg)

	after, err := os.ReadFile(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	infoAfter, err := os.Stat(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), infoAfter.ModTime())
}

func TestFilePathDoesNotCreateConfig(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("--file-path"))
	_, err := os.Stat(h.cfgPath)
	assert.True(t, os.IsNotExist(err))
}

func TestMissingUserName(t *testing.T) {
	h := newHarness(t)
	h.seed(t, config.Record{GitHubAccessToken: "abc"})

	code := h.run()

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Error (credentials)")
	assert.Contains(t, h.stderr.String(), "--user-name (-u)")
	assert.Empty(t, h.forgeCfg, "no fetch may be attempted")
}

func TestMissingToken(t *testing.T) {
	h := newHarness(t)

	code := h.run("-u", "bob")

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "--token (-t)")
	assert.Empty(t, h.forgeCfg)
	// the merged record is persisted before the gate runs
	assert.Equal(t, config.Record{UserName: "bob"}, h.stored(t))
}

func TestFetchFailure(t *testing.T) {
	h := newHarness(t)
	h.forge.err = apperr.Wrap(apperr.Network, errors.New("dial tcp: connection refused"))

	code := h.run("-t", "abc", "-u", "bob")

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Error (network): dial tcp: connection refused")
	assert.Zero(t, h.chooser.calls)
}

func TestDecodeFailure(t *testing.T) {
	h := newHarness(t)
	h.forge.err = apperr.Wrap(apperr.Decode, errors.New("decode issues: element 0: missing title"))

	assert.Equal(t, 1, h.run("-t", "abc", "-u", "bob"))
	assert.Contains(t, h.stderr.String(), "Error (decode)")
}

func TestFetchInterrupted(t *testing.T) {
	h := newHarness(t)
	h.forge.err = session.ErrInterrupted

	assert.Equal(t, 0, h.run("-t", "abc", "-u", "bob"))
	assert.Zero(t, h.chooser.calls)
}

func TestNoIssues(t *testing.T) {
	h := newHarness(t)
	h.forge.issues = []model.Issue{}

	assert.Equal(t, 0, h.run("-t", "abc", "-u", "bob"))
	assert.Contains(t, h.stderr.String(), "No open issues found.")
	assert.Zero(t, h.chooser.calls)
}

func TestOpenerFailure(t *testing.T) {
	h := newHarness(t)
	h.opener.err = errors.New("xdg-open: executable file not found")

	assert.Equal(t, 1, h.run("-t", "abc", "-u", "bob"))
	assert.Contains(t, h.stderr.String(), "Error (browser)")
}

func TestUnwritableConfig(t *testing.T) {
	h := newHarness(t)
	// make the app directory a file so the store can't write
	require.NoError(t, os.WriteFile(filepath.Dir(h.cfgPath), nil, 0o600))

	assert.Equal(t, 1, h.run("-t", "abc", "-u", "bob"))
	assert.Contains(t, h.stderr.String(), "Error (config)")
	assert.Empty(t, h.forgeCfg)
}

func TestPositionalArgsRejected(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("extra"))
	assert.Contains(t, h.stderr.String(), "Error (usage)")
	assert.Contains(t, h.stderr.String(), "Usage:")
}

func TestUnknownFlag(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("--bogus"))
	assert.Contains(t, h.stderr.String(), "unknown flag")
}

func TestHelp(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 0, h.run("-h"))
	out := h.stdout.String()
	for _, flag := range []string{"--token", "--user-name", "--file-path"} {
		assert.True(t, strings.Contains(out, flag), "usage should mention %s", flag)
	}
	assert.Empty(t, h.stderr.String())
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"-t", "abc", "--user-name=bob", "--file-path"})
	require.NoError(t, err)
	assert.Equal(t, config.Overrides{GitHubAccessToken: "abc", UserName: "bob", ShowPathOnly: true}, f.Overrides)

	f, err = ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Overrides{}, f.Overrides)
}

func TestNewLogger(t *testing.T) {
	log, closeLog, err := NewLogger(map[string]string{})
	require.NoError(t, err)
	log.Info("dropped")
	require.NoError(t, closeLog())

	path := filepath.Join(t.TempDir(), "debug.log")
	log, closeLog, err = NewLogger(map[string]string{"ISSUE_TRACKER_LOG": path})
	require.NoError(t, err)
	log.Debug("config resolved", "user", "bob")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "config resolved")
	assert.Contains(t, string(data), "user=bob")
}
