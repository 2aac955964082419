// Package sanitizer strips dangerous markup from caller-supplied email HTML.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailPolicy *bluemonday.Policy
	initOnce    sync.Once
)

func initPolicy() {
	initOnce.Do(func() {
		// UGC policy plus the layout elements transactional email
		// bodies commonly rely on.
		emailPolicy = bluemonday.UGCPolicy()
		emailPolicy.AllowImages()
		emailPolicy.AllowTables()
		emailPolicy.AllowAttrs("style").OnElements(
			"p", "div", "span", "td", "th", "table", "a", "img",
		)
	})
}

// SanitizeEmailHTML removes scripts, event handlers, and javascript: URLs
// from HTML while keeping the formatting and table layout typical of email
// bodies intact.
func SanitizeEmailHTML(s string) string {
	initPolicy()
	return emailPolicy.Sanitize(s)
}
