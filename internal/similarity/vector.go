package similarity

import (
	"math"
	"sort"

	domainerrors "github.com/gamerec/gamerec/internal/errors"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length are a DimensionMismatch error; a zero vector
// has similarity 0 with everything. Non-finite components are a Validation
// error.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domainerrors.DimensionMismatchf("vector lengths differ: %d != %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(c) || math.IsInf(na, 0) || math.IsInf(nb, 0) {
		return 0, domainerrors.Validation("vector has non-finite components")
	}
	// Rounding can push identical vectors a hair past 1.
	return math.Max(-1, math.Min(1, c)), nil
}

// Jaccard returns |a ∩ b| / |a ∪ b| over the distinct values of a and b.
// Two empty sets score 0.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	union := len(setA)
	inter := 0
	for s := range setB {
		if _, ok := setA[s]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Intersection returns the sorted distinct values present in both a and b.
func Intersection(a, b []string) []string {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	var out []string
	for _, s := range b {
		if _, ok := setA[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
