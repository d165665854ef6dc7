package analyze

import (
	"context"
	"path/filepath"
)

// Aggregator computes the entries of one directory.
type Aggregator interface {
	Aggregate(root string) []ScanEntry
}

// Session is the scanner's browse state: the current root, its entries,
// the highlighted entry and the marked paths. Accessors return copies.
type Session struct {
	agg     Aggregator
	root    string
	entries []ScanEntry
	cursor  int
	marks   *Selection
	stale   bool
}

// NewSession aggregates root and returns a session positioned on its first
// entry.
func NewSession(root string, agg Aggregator) *Session {
	s := &Session{
		agg:   agg,
		root:  Canonical(root),
		marks: NewSelection(),
	}
	s.Refresh()
	return s
}

// Root returns the directory being browsed.
func (s *Session) Root() string { return s.root }

// Entries returns a copy of the current entries.
func (s *Session) Entries() []ScanEntry {
	return append([]ScanEntry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Session) Len() int { return len(s.entries) }

// Cursor returns the index of the highlighted entry.
func (s *Session) Cursor() int { return s.cursor }

// Total returns the summed size of the listed entries.
func (s *Session) Total() int64 {
	var total int64
	for _, e := range s.entries {
		total += e.Size
	}
	return total
}

// Current returns the highlighted entry.
func (s *Session) Current() (ScanEntry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return ScanEntry{}, false
	}
	return s.entries[s.cursor], true
}

// MoveCursor moves the highlight by delta, wrapping at both ends.
func (s *Session) MoveCursor(delta int) {
	n := len(s.entries)
	if n == 0 {
		return
	}
	s.cursor = ((s.cursor+delta)%n + n) % n
}

// DrillDown makes the highlighted directory the new root. It reports
// whether the root changed.
func (s *Session) DrillDown() bool {
	e, ok := s.Current()
	if !ok || !e.IsDir {
		return false
	}
	// A symlinked directory is browsed at its target so every entry stays
	// a direct child of Root.
	s.root = Canonical(e.Path)
	s.Refresh()
	return true
}

// DrillUp makes the parent of the current root the new root. It reports
// whether the root changed; the filesystem root has no parent.
func (s *Session) DrillUp() bool {
	parent := filepath.Dir(s.root)
	if parent == s.root {
		return false
	}
	s.root = parent
	s.Refresh()
	return true
}

// ToggleMark marks path, or unmarks it if already marked.
func (s *Session) ToggleMark(path string) bool {
	return s.marks.Toggle(path)
}

// ToggleCurrent toggles the mark on the highlighted entry.
func (s *Session) ToggleCurrent() {
	if e, ok := s.Current(); ok {
		s.marks.Toggle(e.Path)
	}
}

// IsMarked reports whether path is marked.
func (s *Session) IsMarked(path string) bool {
	return s.marks.Contains(path)
}

// Marked returns the marked paths in lexical order.
func (s *Session) Marked() []string {
	return s.marks.Paths()
}

// MarkCount returns the number of marked paths.
func (s *Session) MarkCount() int {
	return s.marks.Len()
}

// Commit passes the marked paths to gate. When deletions ran, the current
// root is re-aggregated so removed entries are never shown.
func (s *Session) Commit(ctx context.Context, gate *Gate) (CommitOutcome, []DeleteResult) {
	outcome, results := gate.RequestCommit(ctx, s.marks)
	if outcome == CommitExecuted {
		s.Refresh()
	}
	return outcome, results
}

// Irreversible returns the marked paths gate would delete permanently.
func (s *Session) Irreversible(gate *Gate) []string {
	return gate.Irreversible(s.marks)
}

// MarkStale records that the tree under the root may have changed outside
// the session, e.g. after a restore.
func (s *Session) MarkStale() { s.stale = true }

// Stale reports whether entries may be out of date.
func (s *Session) Stale() bool { return s.stale }

// Refresh re-aggregates the current root and resets the cursor.
func (s *Session) Refresh() {
	s.entries = s.agg.Aggregate(s.root)
	s.cursor = 0
	s.stale = false
}
