package model

import "fmt"

// Issue is a GitHub issue as returned by GET /issues. Only the fields the
// picker needs are kept.
type Issue struct {
	URL    string // html_url, opened in the browser
	Number uint
	Title  string
}

// String renders the issue the way it appears in the picker.
func (i Issue) String() string {
	return fmt.Sprintf("(Issue %d: %s)", i.Number, i.Title)
}
