package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 1000 {
		id, err := NewTagID()
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}
	assert.Len(t, ids, 1000)
}

func TestNewTagID_Format(t *testing.T) {
	id, err := NewTagID()
	require.NoError(t, err)

	assert.True(t, HasPrefix(id, PrefixTag))
	assert.Len(t, strings.TrimPrefix(id, "tag-"), 21)
}

func TestNewRunID_Format(t *testing.T) {
	id, err := NewRunID()
	require.NoError(t, err)

	require.True(t, HasPrefix(id, PrefixRun))
	suffix := strings.TrimPrefix(id, "run-")
	assert.Len(t, suffix, 10)
	for _, r := range suffix {
		assert.Contains(t, runAlphabet, string(r))
	}
}

func TestHasPrefix(t *testing.T) {
	assert.False(t, HasPrefix("tag-", PrefixTag))
	assert.False(t, HasPrefix("tagabc", PrefixTag))
	assert.False(t, HasPrefix("run-abc", PrefixTag))
	assert.True(t, HasPrefix("run-abc", PrefixRun))
}
