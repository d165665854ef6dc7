package analyze

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// MaxEntries caps how many direct children Aggregate returns.
const MaxEntries = 50

// maxWarnings bounds the warning list kept per scan.
const maxWarnings = 500

// ScanEntry is one direct child of the browsed directory.
type ScanEntry struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir"`
}

// Percentage returns the entry's size as a percentage of total.
func (e ScanEntry) Percentage(total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(e.Size) / float64(total) * 100
}

// Scanner aggregates file sizes per direct child of a root directory.
// Subtrees of different children are walked in parallel with bounded
// concurrency; Aggregate itself blocks until every walk has finished.
type Scanner struct {
	sem          chan struct{}
	log          *zap.Logger
	mu           sync.Mutex
	warnings     []string
	partial      bool
	scannedCount atomic.Int64
}

// NewScanner creates a scanner that walks at most maxConcurrency subtrees
// at once.
func NewScanner(maxConcurrency int, logger *zap.Logger) *Scanner {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		sem: make(chan struct{}, maxConcurrency),
		log: logger,
	}
}

// Warnings returns the warnings from the last Aggregate call.
func (s *Scanner) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// Partial reports whether the last Aggregate call skipped any subtree it
// could not read. Sizes are then lower bounds.
func (s *Scanner) Partial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partial
}

// ScannedCount returns the number of entries visited by the last scan.
func (s *Scanner) ScannedCount() int64 {
	return s.scannedCount.Load()
}

func (s *Scanner) reset() {
	s.mu.Lock()
	s.warnings = nil
	s.partial = false
	s.mu.Unlock()
	s.scannedCount.Store(0)
}

func (s *Scanner) addWarning(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partial = true
	if len(s.warnings) < maxWarnings {
		s.warnings = append(s.warnings, "cannot read "+path+": "+err.Error())
	}
	s.log.Debug("skipped unreadable path", zap.String("path", path), zap.Error(err))
}

// Canonical returns path made absolute with symlinks resolved, or path
// unchanged if that fails.
func Canonical(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return path
	}
	return abs
}

// Aggregate returns the direct children of root with the total size of the
// regular files beneath each, largest first (ties by path), capped at
// MaxEntries. Hidden entries are included. A missing root yields nil.
// Unreadable subtrees are skipped and reported through Warnings/Partial.
func (s *Scanner) Aggregate(root string) []ScanEntry {
	s.reset()

	if _, err := os.Stat(root); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.addWarning(root, err)
		}
		return nil
	}
	base := Canonical(root)

	info, err := os.Stat(base)
	if err != nil {
		s.addWarning(base, err)
		return nil
	}
	if !info.IsDir() {
		// A file root is its own only child.
		var size int64
		if info.Mode().IsRegular() {
			size = info.Size()
		}
		return []ScanEntry{{Path: base, Name: filepath.Base(base), Size: size}}
	}

	children, err := os.ReadDir(base)
	if err != nil {
		s.addWarning(base, err)
		return nil
	}

	sizes := make([]int64, len(children))
	var wg sync.WaitGroup

	for i, c := range children {
		childPath := filepath.Join(base, c.Name())
		s.scannedCount.Add(1)

		switch {
		case c.Type().IsRegular():
			fi, err := c.Info()
			if err != nil {
				s.addWarning(childPath, err)
				continue
			}
			sizes[i] = fi.Size()

		case c.IsDir():
			wg.Add(1)
			go func(i int, dir string) {
				defer wg.Done()
				s.sem <- struct{}{}
				defer func() { <-s.sem }()
				sizes[i] = s.walk(dir)
			}(i, childPath)
		}
		// Symlinks and special files are listed but contribute nothing.
	}
	wg.Wait()

	entries := make([]ScanEntry, 0, len(children))
	for i, c := range children {
		childPath := filepath.Join(base, c.Name())
		entries = append(entries, ScanEntry{
			Path:  childPath,
			Name:  c.Name(),
			Size:  sizes[i],
			IsDir: isDir(childPath),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].Path < entries[j].Path
	})
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	s.log.Debug("aggregated",
		zap.String("root", base),
		zap.Int("children", len(children)),
		zap.Int64("scanned", s.scannedCount.Load()),
		zap.Bool("partial", s.Partial()))
	return entries
}

// walk sums regular file sizes below dir without following symlinks.
func (s *Scanner) walk(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission denied or vanished: skip, don't fail.
			s.addWarning(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		s.scannedCount.Add(1)
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.addWarning(path, err)
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}

// isDir checks the filesystem at call time, following symlinks.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
