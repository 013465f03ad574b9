package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"issue-tracker/internal/config"
)

var errUnexpectedArgs = errors.New("unexpected arguments")

// Flags is the parsed command line.
type Flags struct {
	Overrides config.Overrides
	Help      bool
}

func newFlagSet(f *Flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&f.Overrides.GitHubAccessToken, "token", "t", "", "GitHub access token to use and remember")
	fs.StringVarP(&f.Overrides.UserName, "user-name", "u", "", "GitHub user name to use and remember")
	fs.BoolVar(&f.Overrides.ShowPathOnly, "file-path", false, "print the config file path and exit")
	fs.BoolVarP(&f.Help, "help", "h", false, "show this help")
	return fs
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string) (Flags, error) {
	var f Flags
	fs := newFlagSet(&f)
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	if fs.NArg() > 0 {
		return Flags{}, fmt.Errorf("%w: %s", errUnexpectedArgs, strings.Join(fs.Args(), " "))
	}
	return f, nil
}

func printUsage(w io.Writer) {
	var f Flags
	fmt.Fprintf(w, "Usage: %s [flags]\n\n", config.AppName)
	fmt.Fprintln(w, "Pick one of your open GitHub issues and open it in the browser.")
	fmt.Fprintln(w, "Token and user name are remembered between runs.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, newFlagSet(&f).FlagUsages())
}
