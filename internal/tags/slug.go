// Package tags maps free-form catalog tags onto the shared tag vocabulary.
package tags

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Runs of whitespace and underscores inside a tag become a single dash.
var wordSeparatorRe = regexp.MustCompile(`[\s_]+`)

// Slug converts a catalog tag to its reconciliation key.
//
//	"Roguelike"       -> "roguelike"
//	"  Space  Sim "   -> "space-sim"
//	"STRASSE"         -> "strasse"
//	"Straße"          -> "strasse"
//	"Turn_Based"      -> "turn-based"
//
// Punctuation is kept, so "4X" and "sci-fi" survive intact.
func Slug(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = cases.Fold().String(s)
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Label returns the display form of a raw tag: trimmed, inner whitespace collapsed.
func Label(raw string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
}

// Dedupe returns the labels of raw in first-seen order, dropping entries
// whose slug is empty or already seen.
func Dedupe(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		slug := Slug(r)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, Label(r))
	}
	return out
}
