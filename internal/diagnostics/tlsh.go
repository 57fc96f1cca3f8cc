package diagnostics

import (
	"errors"

	"github.com/glaslos/tlsh"
)

// minFuzzySize is the smallest content TLSH will hash meaningfully.
const minFuzzySize = 50

// ErrContentTooSmall is returned when content is below minFuzzySize.
var ErrContentTooSmall = errors.New("diagnostics: content too small for fuzzy hash")

// FuzzyHash wraps a TLSH hash of one file's content.
type FuzzyHash struct {
	hash *tlsh.TLSH
	raw  string
}

// ComputeFuzzy computes the TLSH fuzzy hash of content.
func ComputeFuzzy(content []byte) (*FuzzyHash, error) {
	if len(content) < minFuzzySize {
		return nil, ErrContentTooSmall
	}
	h, err := tlsh.HashBytes(content)
	if err != nil {
		return nil, err
	}
	return &FuzzyHash{hash: h, raw: h.String()}, nil
}

// String returns the hash digest.
func (h *FuzzyHash) String() string {
	if h == nil || h.hash == nil {
		return ""
	}
	return h.raw
}

// Distance returns the TLSH distance to other: 0 means identical, values
// past ~200 mean unrelated content. Returns -1 if either hash is absent.
func (h *FuzzyHash) Distance(other *FuzzyHash) int {
	if h == nil || other == nil || h.hash == nil || other.hash == nil {
		return -1
	}
	return h.hash.Diff(other.hash)
}

// FuzzySimilarity maps a TLSH distance onto a 0-100 percentage, on the
// same ~300-point scale the distance saturates at in practice.
func (h *FuzzyHash) FuzzySimilarity(other *FuzzyHash) float64 {
	distance := h.Distance(other)
	if distance < 0 {
		return 0
	}
	similarity := (1.0 - float64(distance)/300.0) * 100.0
	if similarity < 0 {
		return 0
	}
	return similarity
}

// FuzzyLevel buckets a TLSH distance into a coarse label for report
// output.
type FuzzyLevel int

const (
	FuzzyIdentical FuzzyLevel = iota
	FuzzyNearlySame
	FuzzyVerySimilar
	FuzzySimilar
	FuzzySomewhatSimilar
	FuzzyDifferent
)

func (l FuzzyLevel) String() string {
	switch l {
	case FuzzyIdentical:
		return "identical"
	case FuzzyNearlySame:
		return "nearly_same"
	case FuzzyVerySimilar:
		return "very_similar"
	case FuzzySimilar:
		return "similar"
	case FuzzySomewhatSimilar:
		return "somewhat_similar"
	default:
		return "different"
	}
}

// ClassifyDistance buckets a TLSH distance into a FuzzyLevel.
func ClassifyDistance(distance int) FuzzyLevel {
	switch {
	case distance == 0:
		return FuzzyIdentical
	case distance <= 10:
		return FuzzyNearlySame
	case distance <= 30:
		return FuzzyVerySimilar
	case distance <= 100:
		return FuzzySimilar
	case distance <= 200:
		return FuzzySomewhatSimilar
	default:
		return FuzzyDifferent
	}
}
