package classify

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cohesort/cohesort/pkg/types"
)

func TestClassify_AsciiWhenNoHighBytes(t *testing.T) {
	c := NewCounter()
	c.Write([]byte("the quick brown fox jumps over the lazy dog"))
	if got := c.Classify(); got != types.Ascii {
		t.Fatalf("got %v, want Ascii", got)
	}
}

func TestClassify_UniformRandomBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, 255)
	rng.Read(buf)
	// force at least one byte >= 128 so the ascii branch can't short-circuit
	buf[0] = 200

	c := NewCounter()
	c.Write(buf)
	if got := c.Classify(); got != types.Uniform {
		t.Fatalf("got %v, want Uniform", got)
	}
}

func TestClassify_ConstantByteIsNotUniform(t *testing.T) {
	buf := make([]byte, 255)
	for i := range buf {
		buf[i] = 0xAA
	}
	c := NewCounter()
	c.Write(buf)
	if got := c.Classify(); got == types.Uniform {
		t.Fatalf("got Uniform for a constant byte stream, want NonAscii")
	}
}

func TestClassify_NonAsciiMixed(t *testing.T) {
	// The uniformity cutoff is loose: a short input spreads its bytes
	// thinly enough to read as Uniform, so the text has to be long
	// enough to skew the histogram.
	buf := append(bytes.Repeat([]byte("some text "), 200), 0xFF, 0x00, 0x80, 0x81, 0x82)
	c := NewCounter()
	c.Write(buf)
	got := c.Classify()
	if got != types.NonAscii {
		t.Fatalf("got %v, want NonAscii", got)
	}
}

func TestClassifyBytes_MatchesCounter(t *testing.T) {
	input := []byte("/some/directory/path")
	if ClassifyBytes(input) != NewCounterAndClassify(input) {
		t.Fatalf("ClassifyBytes diverged from incremental Counter")
	}
}

func NewCounterAndClassify(b []byte) types.ByteDistribution {
	c := NewCounter()
	c.Write(b)
	return c.Classify()
}
