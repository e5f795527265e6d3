package similarity

import (
	"fmt"

	"github.com/gamerec/gamerec/internal/domain"
)

// Signal names one component of the composite score.
type Signal string

// Signals.
const (
	SignalTag       Signal = "tag"
	SignalTitle     Signal = "title"
	SignalStoryline Signal = "storyline"
	SignalSummary   Signal = "summary"
)

// Signals lists every signal in tie-break priority order.
var Signals = []Signal{SignalTag, SignalTitle, SignalStoryline, SignalSummary}

// SignalForField maps a semantic field to its signal.
func SignalForField(f domain.Field) Signal {
	return Signal(f)
}

// Weights are the relative importance of each signal. Only the weights of
// available signals are used, renormalized to sum to 1.
type Weights struct {
	Tag       float64 `json:"tag"`
	Title     float64 `json:"title"`
	Storyline float64 `json:"storyline"`
	Summary   float64 `json:"summary"`
}

// DefaultWeights favors tag overlap and splits the rest evenly across fields.
func DefaultWeights() Weights {
	return Weights{Tag: 0.4, Title: 0.2, Storyline: 0.2, Summary: 0.2}
}

// For returns the weight of s.
func (w Weights) For(s Signal) float64 {
	switch s {
	case SignalTag:
		return w.Tag
	case SignalTitle:
		return w.Title
	case SignalStoryline:
		return w.Storyline
	case SignalSummary:
		return w.Summary
	default:
		return 0
	}
}

// Validate rejects negative weights and an all-zero map.
func (w Weights) Validate() error {
	var total float64
	for _, s := range Signals {
		v := w.For(s)
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %v", s, v)
		}
		total += v
	}
	if total == 0 {
		return fmt.Errorf("all weights are zero")
	}
	return nil
}
