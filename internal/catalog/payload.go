package catalog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Payload is one raw game record as delivered by the catalog source.
type Payload struct {
	ExternalID   int64       `json:"id" validate:"gt=0"`
	Slug         string      `json:"slug,omitempty" validate:"max=255"`
	Title        string      `json:"name" validate:"notblank,max=512"`
	Description  string      `json:"description" validate:"notblank"`
	Summary      string      `json:"summary,omitempty"`
	Storyline    string      `json:"storyline,omitempty"`
	Tags         []string    `json:"tags,omitempty" validate:"max=256,dive,max=128"`
	ReleaseDate  ReleaseDate `json:"release_date"`
	CoverURL     string      `json:"cover_url,omitempty" validate:"omitempty,http_url"`
	CoverImageID string      `json:"cover_image_id,omitempty" validate:"omitempty,alphanum"`
}

// ReleaseDate accepts either "YYYY-MM-DD" or a unix timestamp in seconds.
type ReleaseDate struct {
	t     time.Time
	valid bool
}

// NewReleaseDate returns a set release date truncated to the UTC day.
func NewReleaseDate(t time.Time) ReleaseDate {
	y, m, d := t.UTC().Date()
	return ReleaseDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// IsZero reports whether no date was supplied.
func (r ReleaseDate) IsZero() bool { return !r.valid }

// Time returns the date, or nil when unset.
func (r ReleaseDate) Time() *time.Time {
	if !r.valid {
		return nil
	}
	t := r.t
	return &t
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ReleaseDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ReleaseDate{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*r = ReleaseDate{}
			return nil
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return fmt.Errorf("release date %q: want YYYY-MM-DD", s)
		}
		*r = NewReleaseDate(t)
		return nil
	}

	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("release date %s: want date string or unix seconds", data)
	}
	*r = NewReleaseDate(time.Unix(secs, 0))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r ReleaseDate) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.t.Format(time.DateOnly))
}

// DecodePayloads reads either a JSON array of payloads or JSON lines.
func DecodePayloads(data []byte) ([]Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var payloads []Payload
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("decode payload array: %w", err)
		}
		return payloads, nil
	}

	var payloads []Payload
	for i, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var p Payload
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("decode payload line %d: %w", i+1, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}
