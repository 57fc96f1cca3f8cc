// Package sketch implements the MinHash-style content fingerprint:
// a fixed-size feature set over fixed-length shingles of a byte stream,
// and the Jaccard-style scoring function between two such sketches.
//
// The signature is the set of the 128 smallest distinct CRC32 hashes
// over all sliding 8-byte windows of the input, kept in a bounded
// max-heap so the current worst candidate can be evicted in O(log F).
package sketch

import (
	"container/heap"
	"hash/crc32"
	"io"
	"sort"

	"github.com/cohesort/cohesort/internal/classify"
	"github.com/cohesort/cohesort/pkg/types"
)

const (
	// ShingleSize is the fixed window length over which CRC32 hashes are
	// computed.
	ShingleSize = 8
	// FeatureCapacity is the maximum number of distinct feature hashes a
	// Sketch retains.
	FeatureCapacity = 128
)

// Sketch is a file fingerprint: up to FeatureCapacity distinct CRC32
// hashes of the stream's shingles, sorted ascending, plus the byte
// distribution tag of its source.
type Sketch struct {
	Features     []uint32
	Distribution types.ByteDistribution
}

// maxHeap keeps the smallest FeatureCapacity hashes seen so far, with the
// current maximum at the root so it can be evicted in O(log F).
type maxHeap []uint32

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(uint32)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// shingler accumulates a sliding 8-byte window across successive Write
// calls and feeds each complete window's CRC32 into the bounded heap.
// The window survives across a path/content boundary: callers write the
// path bytes and then the content bytes into the same shingler.
type shingler struct {
	window  []byte
	present map[uint32]struct{}
	heap    maxHeap
}

func newShingler() *shingler {
	return &shingler{
		window:  make([]byte, 0, ShingleSize),
		present: make(map[uint32]struct{}, FeatureCapacity),
	}
}

func (s *shingler) write(p []byte) {
	for _, b := range p {
		if len(s.window) == ShingleSize {
			copy(s.window, s.window[1:])
			s.window[ShingleSize-1] = b
		} else {
			s.window = append(s.window, b)
		}
		if len(s.window) == ShingleSize {
			s.insert(crc32.ChecksumIEEE(s.window))
		}
	}
}

func (s *shingler) insert(h uint32) {
	if _, ok := s.present[h]; ok {
		return
	}
	if len(s.heap) < FeatureCapacity {
		heap.Push(&s.heap, h)
		s.present[h] = struct{}{}
		return
	}
	if h < s.heap[0] {
		delete(s.present, s.heap[0])
		s.heap[0] = h
		heap.Fix(&s.heap, 0)
		s.present[h] = struct{}{}
	}
}

func (s *shingler) features() []uint32 {
	out := make([]uint32, len(s.heap))
	copy(out, s.heap)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildDirectory fingerprints a directory target over the bytes of its
// path only; the distribution tag is derived from the same path bytes.
func BuildDirectory(path string) *Sketch {
	sh := newShingler()
	sh.write([]byte(path))
	return &Sketch{
		Features:     sh.features(),
		Distribution: classify.ClassifyBytes([]byte(path)),
	}
}

// BuildFile fingerprints a file target over its path bytes followed by
// its content bytes read from r, carrying the shingle window across the
// boundary without reset. The distribution tag is derived from the
// content bytes alone, not the path.
func BuildFile(path string, r io.Reader, readBuf []byte) (*Sketch, error) {
	sh := newShingler()
	sh.write([]byte(path))

	counter := classify.NewCounter()
	if len(readBuf) == 0 {
		readBuf = make([]byte, 64*1024)
	}
	for {
		n, err := r.Read(readBuf)
		if n > 0 {
			chunk := readBuf[:n]
			sh.write(chunk)
			counter.Write(chunk)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return &Sketch{
		Features:     sh.features(),
		Distribution: counter.Classify(),
	}, nil
}

// Score computes the Jaccard-style similarity between two sketches:
// |A∩B| / (2*min(|A|,|B|) - |A∩B|), via a two-pointer sweep from the
// high ends of both sorted feature lists. Result is in [0,1]; an empty
// sketch on either side scores 0.
func Score(a, b *Sketch) float64 {
	na, nb := len(a.Features), len(b.Features)
	if na == 0 || nb == 0 {
		return 0
	}

	i, j := na-1, nb-1
	m := 0
	for i >= 0 && j >= 0 {
		switch {
		case a.Features[i] == b.Features[j]:
			m++
			i--
			j--
		case a.Features[i] > b.Features[j]:
			i--
		default:
			j--
		}
	}

	n := na
	if nb < n {
		n = nb
	}
	denom := 2*n - m
	if denom <= 0 {
		return 0
	}
	return float64(m) / float64(denom)
}
