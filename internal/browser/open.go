package browser

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Command returns the platform command that opens url in the default browser.
func Command(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// Opener opens URLs with the platform launcher.
type Opener struct {
	// GOOS selects the launcher; empty means runtime.GOOS.
	GOOS string
	// command builds the launcher; tests replace it.
	command func(goos, url string) *exec.Cmd
}

func (o Opener) Open(url string) error {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	build := o.command
	if build == nil {
		build = Command
	}

	cmd := build(goos, url)
	// The launcher may hand off to a browser that inherits stderr and
	// outlives it; WaitDelay stops Wait from blocking on that pipe.
	var stderr limitedBuffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr
	cmd.WaitDelay = launcherWaitDelay

	err := cmd.Run()
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s: %w: %s", cmd.Args[0], err, msg)
	}
	return fmt.Errorf("%s: %w", cmd.Args[0], err)
}

const (
	launcherWaitDelay = 500 * time.Millisecond
	maxLauncherOutput = 4 << 10
)

// limitedBuffer keeps the first maxLauncherOutput bytes and drops the rest.
type limitedBuffer struct {
	bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := maxLauncherOutput - b.Len(); room > 0 {
		b.Buffer.Write(p[:min(len(p), room)])
	}
	return len(p), nil
}
