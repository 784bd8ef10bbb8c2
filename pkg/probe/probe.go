// Package probe discovers how many frames of a video can actually be decoded.
//
// Container metadata for frame count is unreliable for some formats, so the
// last decodable frame is found empirically by binary search, using
// SeekAndRead as the oracle.
package probe

import (
	"context"
	"math/bits"
	"sync"
	"time"

	"github.com/user/framestep/pkg/ports"
)

const (
	// DefaultMaxFrameBound covers an 18 hour video at 60 fps.
	DefaultMaxFrameBound = 1 << 22

	// DefaultExtraIterations absorbs search boundary error.
	DefaultExtraIterations = 2
)

// Options controls the search.
type Options struct {
	MaxFrameBound   int
	ExtraIterations int
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		MaxFrameBound:   DefaultMaxFrameBound,
		ExtraIterations: DefaultExtraIterations,
	}
}

// Iterations returns ceil(log2(maxFrameBound)) + extra.
func Iterations(maxFrameBound, extra int) int {
	if maxFrameBound <= 1 {
		return extra
	}
	return bits.Len(uint(maxFrameBound-1)) + extra
}

// FindLastValidFrame returns the index of the last frame h can decode within
// [0, opts.MaxFrameBound]. The frame count is the result plus one.
//
// Each iteration probes the midpoint of [bottom, top]; a successful read
// moves bottom up, a failed one moves top down. The result is exact whenever
// the true frame count does not exceed MaxFrameBound.
func FindLastValidFrame(ctx context.Context, h ports.VideoHandle, opts Options, log ports.Logger) (int, error) {
	bottom, top := 0, opts.MaxFrameBound
	n := Iterations(opts.MaxFrameBound, opts.ExtraIterations)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mid := bottom + (top-bottom)/2
		_, err := h.SeekAndRead(ctx, mid)
		if err == nil {
			bottom = mid
		} else {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			top = mid
		}
		log.Debug("Probe %d/%d: frame %d valid=%t", i+1, n, mid, err == nil)
	}
	return bottom, nil
}

// Cache remembers the probe result for the currently loaded file.
type Cache struct {
	mu    sync.Mutex
	path  string
	last  int
	valid bool

	opts   Options
	logger ports.Logger
}

// NewCache creates a cache that probes with opts.
func NewCache(opts Options, logger ports.Logger) *Cache {
	return &Cache{
		opts:   opts,
		logger: logger.WithComponent("probe"),
	}
}

// LastValidFrame returns the cached result for h's path, probing when the
// path differs from the cached one.
func (c *Cache) LastValidFrame(ctx context.Context, h ports.VideoHandle) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.path == h.Path() {
		return c.last, nil
	}

	start := time.Now()
	c.logger.Info("Probing frame count of %s", h.Path())
	last, err := FindLastValidFrame(ctx, h, c.opts, c.logger)
	if err != nil {
		return 0, err
	}
	c.logger.Info("Last valid frame is %d (%d frames), probed in %d ms",
		last, last+1, time.Since(start).Milliseconds())

	c.path = h.Path()
	c.last = last
	c.valid = true
	return last, nil
}

// Invalidate drops the cached result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.path = ""
}
