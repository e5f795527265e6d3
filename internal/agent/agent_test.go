package agent

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gamerec/gamerec/internal/errors"
	"github.com/gamerec/gamerec/internal/logger"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		recommend bool
		reason    string
		wantErr   bool
	}{
		{"bare object", `{"recommend": true, "reason": "Shares the roguelike loop."}`, true, "Shares the roguelike loop.", false},
		{"surrounded by prose", "Sure!\n{\"recommend\": false, \"reason\": \"Too slow.\"}\nHope that helps.", false, "Too slow.", false},
		{"skips objects without recommend", `{"note": 1} {"recommend": true, "reason": " ok "}`, true, "ok", false},
		{"empty", "  \n", false, "", true},
		{"no object", "I would recommend it.", false, "", true},
		{"broken json", `{"recommend": tru`, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.recommend, v.Recommend)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "agent.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCommandJudge_ReadsPromptFromStdin(t *testing.T) {
	script := writeScript(t, `
input=$(cat)
case "$input" in
  *Nova*) echo '{"recommend": true, "reason": "saw the prompt"}' ;;
  *) echo '{"recommend": false, "reason": "no prompt"}' ;;
esac
`)
	j := NewCommandJudge(script, nil, 5*time.Second, logger.Discard())

	v, err := j.Judge(context.Background(), "1. Nova Drift (id 7)")
	require.NoError(t, err)
	assert.True(t, v.Recommend)
	assert.Equal(t, "saw the prompt", v.Reason)
}

func TestCommandJudge_Failures(t *testing.T) {
	t.Run("non-zero exit", func(t *testing.T) {
		script := writeScript(t, "echo 'model overloaded' >&2\nexit 3\n")
		_, err := NewCommandJudge(script, nil, 5*time.Second, logger.Discard()).Judge(context.Background(), "p")
		assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
		assert.ErrorContains(t, err, "model overloaded")
	})

	t.Run("empty stdout", func(t *testing.T) {
		script := writeScript(t, "cat >/dev/null\n")
		_, err := NewCommandJudge(script, nil, 5*time.Second, logger.Discard()).Judge(context.Background(), "p")
		assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
	})

	t.Run("timeout", func(t *testing.T) {
		script := writeScript(t, "exec sleep 5\n")
		_, err := NewCommandJudge(script, nil, 100*time.Millisecond, logger.Discard()).Judge(context.Background(), "p")
		assert.ErrorContains(t, err, "timed out")
	})
}
