// Package orchestrator implements the batch orchestrator: bucket
// files by byte distribution, cap batch size, drive the selected
// optimizer over each bucket, and concatenate the results into the
// final ordering.
package orchestrator

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/cohesort/cohesort/internal/binsort"
	"github.com/cohesort/cohesort/internal/distmatrix"
	"github.com/cohesort/cohesort/internal/errs"
	"github.com/cohesort/cohesort/internal/memory"
	"github.com/cohesort/cohesort/internal/parallel"
	"github.com/cohesort/cohesort/internal/sketch"
	"github.com/cohesort/cohesort/internal/tsp"
	"github.com/cohesort/cohesort/pkg/types"
)

// Progress receives events as the orchestrator completes work, without
// blocking the worker that produced them: events are pushed onto a
// lock-free queue and a separate atomic tally tracks completion count,
// so a TUI or websocket consumer can drain at its own pace.
type Progress struct {
	Events    *parallel.LockFreeQueue
	Completed *parallel.AtomicCounter
	Total     int
}

// Event is one unit of orchestrator progress, pushed to Progress.Events.
type Event struct {
	Stage string // "sketch" or "optimize"
	Index int
	Total int
}

func (p *Progress) emit(ev Event) {
	if p == nil {
		return
	}
	if p.Events != nil {
		p.Events.Enqueue(ev)
	}
	if p.Completed != nil {
		p.Completed.Inc()
	}
}

// Options configures a single Order invocation.
type Options struct {
	Algorithm    types.Algorithm
	Pool         *ants.Pool         // optional; nil runs everything serially
	Progress     *Progress          // optional
	Log          *slog.Logger       // optional; nil discards
	ReadLimiter  *rate.Limiter      // optional cap on file opens per second
	Buffers      *memory.BufferPool // optional read-buffer reuse across files
	MemoryBudget int64              // bytes; 0 disables the check
	Seed         int64              // binsort RNG seed; 0 uses seed 1
	ReadBufSize  int
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.New(slog.DiscardHandler)
}

// BucketStats summarizes one distribution bucket's contribution to the
// run, for the report.
type BucketStats struct {
	Distribution string
	Count        int
	SubBatches   int
	TourBefore   uint64
	TourAfter    uint64
}

// PhaseDurations records wall-clock time per pipeline phase, for the
// report.
type PhaseDurations struct {
	Sketch   time.Duration
	Distance time.Duration
	Optimize time.Duration
}

// Result is the outcome of one Order call.
type Result struct {
	Ordered  []types.Target
	Unhashed []types.Unhashed
	Buckets  []BucketStats
	Timings  PhaseDurations
}

// scored pairs a target with its computed sketch.
type scored struct {
	target types.Target
	sketch *sketch.Sketch
}

// Order is the pipeline entry point: fingerprint every target, bucket by byte
// distribution, optimize each non-uniform bucket in capped sub-batches,
// and concatenate per the documented final order: Uniform ++
// NonAscii_ordered ++ Ascii_ordered ++ Unhashed.
func Order(targets []types.Target, opts Options) (*Result, error) {
	log := opts.logger()

	if opts.Algorithm == types.OnlyExtensions {
		return orderByExtension(targets), nil
	}

	log.Info("sketching targets", "count", len(targets), "algorithm", opts.Algorithm.String())
	sketchStart := time.Now()
	scoredTargets, unhashed := buildSketches(targets, opts)
	sketchDuration := time.Since(sketchStart)
	log.Info("sketching done", "hashed", len(scoredTargets), "unhashed", len(unhashed), "took", sketchDuration)

	var uniform, nonAscii, ascii []scored
	for _, s := range scoredTargets {
		switch s.sketch.Distribution {
		case types.Uniform:
			uniform = append(uniform, s)
		case types.Ascii:
			ascii = append(ascii, s)
		default:
			nonAscii = append(nonAscii, s)
		}
	}
	log.Debug("bucketed targets",
		"uniform", len(uniform), "non_ascii", len(nonAscii), "ascii", len(ascii))

	result := &Result{
		Ordered:  make([]types.Target, 0, len(targets)),
		Unhashed: unhashed,
	}
	result.Timings.Sketch = sketchDuration
	for _, s := range uniform {
		result.Ordered = append(result.Ordered, s.target)
	}
	if len(uniform) > 0 {
		result.Buckets = append(result.Buckets, BucketStats{
			Distribution: types.Uniform.String(),
			Count:        len(uniform),
		})
	}

	if opts.Algorithm == types.ByteDistributions {
		for _, s := range nonAscii {
			result.Ordered = append(result.Ordered, s.target)
		}
		for _, s := range ascii {
			result.Ordered = append(result.Ordered, s.target)
		}
		appendBucketCount(result, types.NonAscii, len(nonAscii))
		appendBucketCount(result, types.Ascii, len(ascii))
		for _, u := range unhashed {
			result.Ordered = append(result.Ordered, u.Target)
		}
		return result, nil
	}

	maxBatch := opts.Algorithm.MaxBatch()

	nonAsciiOrdered, nonAsciiStats, err := optimizeBucket(nonAscii, types.NonAscii, opts, maxBatch, &result.Timings)
	if err != nil {
		return nil, err
	}
	asciiOrdered, asciiStats, err := optimizeBucket(ascii, types.Ascii, opts, maxBatch, &result.Timings)
	if err != nil {
		return nil, err
	}

	result.Ordered = append(result.Ordered, nonAsciiOrdered...)
	result.Ordered = append(result.Ordered, asciiOrdered...)
	if nonAsciiStats.Count > 0 {
		result.Buckets = append(result.Buckets, nonAsciiStats)
	}
	if asciiStats.Count > 0 {
		result.Buckets = append(result.Buckets, asciiStats)
	}
	for _, u := range unhashed {
		result.Ordered = append(result.Ordered, u.Target)
	}

	return result, nil
}

func appendBucketCount(result *Result, dist types.ByteDistribution, count int) {
	if count > 0 {
		result.Buckets = append(result.Buckets, BucketStats{
			Distribution: dist.String(),
			Count:        count,
		})
	}
}

// buildSketches fingerprints every target, recovering Io failures
// locally into the Unhashed list instead of aborting the run. When
// opts.Pool is set, sketch construction is fanned out across it; each
// task writes only to its own index of a preallocated slot, so ordering
// is deterministic regardless of goroutine scheduling.
func buildSketches(targets []types.Target, opts Options) ([]scored, []types.Unhashed) {
	log := opts.logger()
	slots := make([]*scored, len(targets))
	errSlots := make([]*types.Unhashed, len(targets))

	build := func(i int) {
		defer opts.Progress.emit(Event{Stage: "sketch", Index: i, Total: len(targets)})

		t := targets[i]
		if t.IsDirectory() {
			slots[i] = &scored{target: t, sketch: sketch.BuildDirectory(t.Path)}
			return
		}

		if opts.ReadLimiter != nil {
			opts.ReadLimiter.Wait(context.Background())
		}

		f, err := os.Open(t.Path)
		if err != nil {
			log.Warn("cannot open target, leaving unordered", "path", t.Path, "err", err)
			errSlots[i] = &types.Unhashed{Target: t, Err: errs.New(errs.Io, t.Path, err)}
			return
		}
		defer f.Close()

		var readBuf []byte
		if opts.Buffers != nil {
			readBuf = opts.Buffers.Get()
			defer opts.Buffers.Put(readBuf)
		} else if opts.ReadBufSize > 0 {
			readBuf = make([]byte, opts.ReadBufSize)
		}

		sk, err := sketch.BuildFile(t.Path, f, readBuf)
		if err != nil {
			log.Warn("cannot read target, leaving unordered", "path", t.Path, "err", err)
			errSlots[i] = &types.Unhashed{Target: t, Err: errs.New(errs.Io, t.Path, err)}
			return
		}
		slots[i] = &scored{target: t, sketch: sk}
	}

	if opts.Pool == nil {
		for i := range targets {
			build(i)
		}
	} else {
		done := make(chan struct{}, len(targets))
		for i := range targets {
			i := i
			if err := opts.Pool.Submit(func() {
				build(i)
				done <- struct{}{}
			}); err != nil {
				build(i)
				done <- struct{}{}
			}
		}
		for range targets {
			<-done
		}
	}

	var results []scored
	var unhashed []types.Unhashed
	for i := range targets {
		if slots[i] != nil {
			results = append(results, *slots[i])
		} else if errSlots[i] != nil {
			unhashed = append(unhashed, *errSlots[i])
		}
	}
	return results, unhashed
}

// optimizeBucket splits bucket into contiguous sub-batches no larger
// than maxBatch, orders each independently, and concatenates them in
// arrival order.
func optimizeBucket(bucket []scored, dist types.ByteDistribution, opts Options, maxBatch int, tim *PhaseDurations) ([]types.Target, BucketStats, error) {
	stats := BucketStats{Distribution: dist.String(), Count: len(bucket)}
	out := make([]types.Target, 0, len(bucket))

	for start := 0; start < len(bucket); start += maxBatch {
		end := start + maxBatch
		if end > len(bucket) {
			end = len(bucket)
		}
		sub := bucket[start:end]
		stats.SubBatches++

		if err := memory.Check(len(sub), opts.MemoryBudget); err != nil {
			return nil, stats, err
		}

		orderedSub, before, after, err := optimizeSubBatch(sub, opts, tim)
		if err != nil {
			return nil, stats, err
		}
		stats.TourBefore += before
		stats.TourAfter += after
		out = append(out, orderedSub...)

		opts.Progress.emit(Event{Stage: "optimize", Index: stats.SubBatches - 1, Total: (len(bucket) + maxBatch - 1) / maxBatch})
	}

	if stats.Count > 0 {
		opts.logger().Info("bucket ordered",
			"distribution", stats.Distribution,
			"count", stats.Count,
			"sub_batches", stats.SubBatches,
			"tour_before", stats.TourBefore,
			"tour_after", stats.TourAfter)
	}
	return out, stats, nil
}

func optimizeSubBatch(sub []scored, opts Options, tim *PhaseDurations) ([]types.Target, uint64, uint64, error) {
	n := len(sub)
	if n < 3 {
		out := make([]types.Target, n)
		for i, s := range sub {
			out[i] = s.target
		}
		return out, 0, 0, nil
	}

	sketches := make([]*sketch.Sketch, n)
	for i, s := range sub {
		sketches[i] = s.sketch
	}

	distanceStart := time.Now()
	var matrix *distmatrix.Matrix[uint8]
	if opts.Pool != nil {
		matrix = distmatrix.BuildFromSketchesParallel(sketches, opts.Pool)
	} else {
		matrix = distmatrix.BuildFromSketches(sketches)
	}
	neighbors := distmatrix.Build(matrix, distmatrix.NeighborCount)
	tim.Distance += time.Since(distanceStart)

	identity := make([]int, n)
	for i := range identity {
		identity[i] = i
	}
	before := tourLength(matrix, identity)

	optimizeStart := time.Now()
	var perm []int
	switch opts.Algorithm {
	case types.BinsortOriginal:
		seed := opts.Seed
		if seed == 0 {
			seed = 1
		}
		perm = binsort.Run(matrix, identity, rand.New(rand.NewSource(seed)))
	default:
		nn := tsp.NearestNeighborTour(matrix, neighbors, 0)
		perm = tsp.TwoOpt(matrix, neighbors, nn)
	}
	tim.Optimize += time.Since(optimizeStart)
	after := tourLength(matrix, perm)

	out := make([]types.Target, n)
	for i, idx := range perm {
		out[i] = sub[idx].target
	}
	return out, before, after, nil
}

// tourLength is the cyclic length of perm under the matrix distances.
func tourLength(m *distmatrix.Matrix[uint8], perm []int) uint64 {
	var total uint64
	n := len(perm)
	for p := 0; p < n; p++ {
		total += uint64(m.At(perm[p], perm[(p+1)%n]))
	}
	return total
}

// orderByExtension implements the OnlyExtensions algorithm: group by
// filename extension, no sketch-based ordering at all.
func orderByExtension(targets []types.Target) *Result {
	groups := make(map[string][]types.Target)
	var exts []string
	for _, t := range targets {
		ext := filepath.Ext(t.Path)
		if _, ok := groups[ext]; !ok {
			exts = append(exts, ext)
		}
		groups[ext] = append(groups[ext], t)
	}
	sort.Strings(exts)

	ordered := make([]types.Target, 0, len(targets))
	for _, ext := range exts {
		ordered = append(ordered, groups[ext]...)
	}
	return &Result{Ordered: ordered}
}
