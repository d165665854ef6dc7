// Package clean measures and empties the well-known junk locations listed
// by config.GetCleanTargets.
package clean

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/diskord/internal/config"
	"github.com/lakshaymaurya-felt/diskord/internal/core"
)

// ErrUnsafeTarget is returned for user targets whose paths are not safe to
// empty.
var ErrUnsafeTarget = errors.New("refusing to clean unsafe path")

// settleTimeout bounds how long Clean waits for the after-size to stop
// changing.
const settleTimeout = 2 * time.Second

// Result is the outcome of cleaning one target.
type Result struct {
	Target string `json:"target"`
	Before int64  `json:"before"`
	After  int64  `json:"after"`
	DryRun bool   `json:"dry_run"`
	Err    error  `json:"-"`
}

// Freed returns the number of bytes reclaimed, never negative.
func (r Result) Freed() int64 {
	if r.After >= r.Before {
		return 0
	}
	return r.Before - r.After
}

// Measurement is the current size of one target.
type Measurement struct {
	Target config.CleanTarget
	Size   int64
}

// Cleaner runs clean targets. Admin targets go through the privileged
// runner; user targets have their directory contents removed.
type Cleaner struct {
	runner    core.Runner
	log       *zap.Logger
	protected map[string]bool
	settle    time.Duration
	measure   func(ctx context.Context, path string) int64
}

// NewCleaner creates a cleaner. runner may be nil if no admin target will be
// cleaned.
func NewCleaner(runner core.Runner, logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	protected := make(map[string]bool)
	for _, p := range config.GetNeverDeletePaths() {
		protected[filepath.Clean(p)] = true
	}
	return &Cleaner{
		runner:    runner,
		log:       logger,
		protected: protected,
		settle:    settleTimeout,
		measure:   MeasurePath,
	}
}

// Measure returns the combined size of every path of target.
func (c *Cleaner) Measure(ctx context.Context, target config.CleanTarget) int64 {
	var total int64
	for _, p := range target.Paths {
		total += c.measure(ctx, p)
	}
	return total
}

// MeasureAll measures targets concurrently and returns them in input order.
func (c *Cleaner) MeasureAll(ctx context.Context, targets []config.CleanTarget) []Measurement {
	out := make([]Measurement, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		out[i].Target = t
		wg.Add(1)
		go func(i int, t config.CleanTarget) {
			defer wg.Done()
			out[i].Size = c.Measure(ctx, t)
		}(i, t)
	}
	wg.Wait()
	return out
}

// Clean empties target and reports its size before and after. In dry-run
// mode nothing is touched and After equals Before.
func (c *Cleaner) Clean(ctx context.Context, target config.CleanTarget, dryRun bool) Result {
	res := Result{Target: target.Name, DryRun: dryRun}
	res.Before = c.Measure(ctx, target)
	if dryRun {
		res.After = res.Before
		return res
	}

	if target.RequiresAdmin {
		res.Err = c.runAdmin(ctx, target)
	} else {
		res.Err = c.emptyPaths(target)
	}

	res.After = c.measureSettled(ctx, target)

	c.log.Info("cleaned target",
		zap.String("target", target.Name),
		zap.Int64("before", res.Before),
		zap.Int64("after", res.After),
		zap.Error(res.Err))
	return res
}

// measureSettled re-measures target with backoff until two consecutive
// readings agree or the settle timeout passes, and returns the last reading.
func (c *Cleaner) measureSettled(ctx context.Context, target config.CleanTarget) int64 {
	deadline := time.Now().Add(c.settle)
	delay := 10 * time.Millisecond
	last := c.Measure(ctx, target)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return last
		case <-time.After(delay):
		}
		next := c.Measure(ctx, target)
		if next == last {
			return next
		}
		last = next
		if delay < 250*time.Millisecond {
			delay *= 2
		}
	}
	return last
}

func (c *Cleaner) runAdmin(ctx context.Context, target config.CleanTarget) error {
	if len(target.Command) == 0 {
		return fmt.Errorf("%s: no command configured", target.Name)
	}
	if c.runner == nil {
		return fmt.Errorf("%s: no privilege helper available", target.Name)
	}
	if err := c.runner.Run(ctx, target.Command...); err != nil {
		return fmt.Errorf("%s: %w", target.Name, err)
	}
	return nil
}

// emptyPaths removes the contents of each target directory, keeping the
// directory itself. Missing directories are already clean.
func (c *Cleaner) emptyPaths(target config.CleanTarget) error {
	var errs []error
	for _, dir := range target.Paths {
		dir = filepath.Clean(dir)
		if !filepath.IsAbs(dir) || c.protected[dir] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnsafeTarget, dir))
			continue
		}

		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// MeasurePath returns the apparent size of path. It asks du first, since du
// copes with trees the walker cannot fully read, and falls back to summing
// regular files. A missing path measures 0.
func MeasurePath(ctx context.Context, path string) int64 {
	if _, err := os.Lstat(path); err != nil {
		return 0
	}
	if size, err := duSize(ctx, path); err == nil {
		return size
	}
	return walkSize(path)
}

func duSize(ctx context.Context, path string) (int64, error) {
	out, err := exec.CommandContext(ctx, "du", "-sb", path).Output()
	// du exits non-zero on partial permission errors but still prints a
	// total for what it could read.
	if len(out) == 0 {
		if err == nil {
			err = errors.New("du: empty output")
		}
		return 0, err
	}
	fields := bytes.Fields(out)
	if len(fields) == 0 {
		return 0, errors.New("du: unparseable output")
	}
	return strconv.ParseInt(string(fields[0]), 10, 64)
}

func walkSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
