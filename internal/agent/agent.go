// Package agent asks an external program to judge a rendered prompt.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/gamerec/gamerec/internal/domain"
	domainerrors "github.com/gamerec/gamerec/internal/errors"
)

// Judge decides whether a single-candidate prompt is worth recommending.
type Judge interface {
	Judge(ctx context.Context, prompt string) (*domain.Verdict, error)
}

// CommandJudge runs an executable with the prompt on stdin and reads a
// verdict object from its stdout.
type CommandJudge struct {
	command string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

var _ Judge = (*CommandJudge)(nil)

// NewCommandJudge creates a judge. A zero timeout means two minutes.
func NewCommandJudge(command string, args []string, timeout time.Duration, logger *slog.Logger) *CommandJudge {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &CommandJudge{command: command, args: args, timeout: timeout, logger: logger}
}

// Judge implements Judge.
func (j *CommandJudge) Judge(ctx context.Context, prompt string) (*domain.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, j.command, j.args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, domainerrors.Unavailable(fmt.Sprintf("agent timed out after %s", j.timeout))
	}
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUnavailable, "agent failed: %s", tail(stderr.String(), 200))
	}

	j.logger.Debug("agent finished", "command", j.command, "duration", elapsed, "bytes", stdout.Len())

	v, err := ParseVerdict(stdout.String())
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUnavailable, "agent returned no verdict")
	}
	return v, nil
}

// ParseVerdict extracts the first {"recommend": bool, "reason": string}
// object from output. Text before and after the object is ignored.
func ParseVerdict(output string) (*domain.Verdict, error) {
	if strings.TrimSpace(output) == "" {
		return nil, errors.New("empty output")
	}

	for start := strings.IndexByte(output, '{'); start >= 0; {
		var raw struct {
			Recommend *bool  `json:"recommend"`
			Reason    string `json:"reason"`
		}
		dec := json.NewDecoder(strings.NewReader(output[start:]))
		if err := dec.Decode(&raw); err == nil && raw.Recommend != nil {
			return &domain.Verdict{Recommend: *raw.Recommend, Reason: strings.TrimSpace(raw.Reason)}, nil
		}

		next := strings.IndexByte(output[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, errors.New("no verdict object in output")
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
