// Package classify implements the byte-distribution classifier:
// deciding whether a byte stream is ASCII, uniform-random-looking, or
// other, from a running 256-wide histogram.
package classify

import "github.com/cohesort/cohesort/pkg/types"

// Counter accumulates a byte histogram incrementally, the way a streaming
// sketch builder would feed it one window at a time.
type Counter struct {
	hist [256]uint64
	seen uint64
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Write feeds bytes into the histogram. It never returns an error; the
// signature matches io.Writer so a Counter can sit in a io.MultiWriter
// alongside a hashing writer.
func (c *Counter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.hist[b]++
	}
	c.seen += uint64(len(p))
	return len(p), nil
}

// Histogram returns the accumulated frequency table.
func (c *Counter) Histogram() [256]uint64 { return c.hist }

// Count returns the total number of bytes observed.
func (c *Counter) Count() uint64 { return c.seen }

// Classify derives the ByteDistribution from the accumulated histogram.
//
// A stream with no bytes >= 128 is Ascii. Otherwise the histogram is
// checked for flatness with a chi-square style statistic over bins
// [0,254]; bin 255 is deliberately excluded from the statistic.
func (c *Counter) Classify() types.ByteDistribution {
	ascii := true
	for b := 128; b < 256; b++ {
		if c.hist[b] > 0 {
			ascii = false
			break
		}
	}
	if ascii {
		return types.Ascii
	}

	if isUniform(c.hist, c.seen) {
		return types.Uniform
	}
	return types.NonAscii
}

// isUniform computes V = sum_{i=0..254} (hist[i] - expected)^2 /
// expected and classifies Uniform iff V/256 < 254.0, a cutoff
// approximating the 50th percentile at 255 degrees of freedom.
func isUniform(hist [256]uint64, count uint64) bool {
	if count == 0 {
		return false
	}
	expected := float64(count) / 256.0
	var v float64
	for i := 0; i < 255; i++ {
		d := float64(hist[i]) - expected
		v += (d * d) / expected
	}
	return v/256.0 < 254.0
}

// ClassifyBytes is a convenience one-shot classifier for callers that
// already hold the full byte slice (used by the directory-path case,
// where the "stream" is just the path bytes).
func ClassifyBytes(b []byte) types.ByteDistribution {
	c := NewCounter()
	c.Write(b)
	return c.Classify()
}
