package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_SetDefaults(t *testing.T) {
	var opts Options
	opts.setDefaults()

	assert.Equal(t, 250*time.Millisecond, opts.SettleDelay)
	assert.NotEmpty(t, opts.IgnorePatterns)
	assert.True(t, opts.IgnoreHidden)
}

func TestOptions_ExplicitEmptyPatterns(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}}
	opts.setDefaults()

	assert.Empty(t, opts.IgnorePatterns)
	assert.False(t, opts.IgnoreHidden)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{Extensions: []string{".json", ".jsonl"}}
	opts.setDefaults()

	tests := []struct {
		path   string
		ignore bool
	}{
		{"/inbox/games.json", false},
		{"/inbox/games.JSONL", false},
		{"/inbox/games.csv", true},
		{"/inbox/.games.json", true},
		{"/inbox/games.json.tmp", true},
		{"/inbox/.DS_Store", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, opts.shouldIgnore(tt.path))
		})
	}
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "modified", EventModified.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
