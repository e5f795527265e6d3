// Package id generates prefixed identifiers for records that have no
// external identity of their own.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated identifiers.
const (
	PrefixTag = "tag"
	PrefixRun = "run"
)

// runAlphabet avoids look-alike characters so run ids can be read back from logs.
const runAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Generate creates a prefixed NanoID, e.g. "tag-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// NewTagID returns an identifier for a newly created vocabulary tag.
func NewTagID() (string, error) {
	return Generate(PrefixTag)
}

// NewRunID returns a short identifier for one ingestion or recommendation run.
func NewRunID() (string, error) {
	nid, err := gonanoid.Generate(runAlphabet, 10)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return PrefixRun + "-" + nid, nil
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
