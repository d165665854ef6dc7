package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeAggregator serves canned entries per root and records each call.
type fakeAggregator struct {
	trees map[string][]ScanEntry
	calls []string
}

func (f *fakeAggregator) Aggregate(root string) []ScanEntry {
	f.calls = append(f.calls, root)
	return append([]ScanEntry(nil), f.trees[root]...)
}

func newFakeTree() *fakeAggregator {
	return &fakeAggregator{trees: map[string][]ScanEntry{
		"/data": {
			{Path: "/data/videos", Name: "videos", Size: 900, IsDir: true},
			{Path: "/data/notes.txt", Name: "notes.txt", Size: 10},
			{Path: "/data/empty", Name: "empty", IsDir: true},
		},
		"/data/videos": {
			{Path: "/data/videos/a.mkv", Name: "a.mkv", Size: 600},
			{Path: "/data/videos/b.mkv", Name: "b.mkv", Size: 300},
		},
		"/": {
			{Path: "/data", Name: "data", Size: 910, IsDir: true},
		},
	}}
}

func TestSession_Navigation(t *testing.T) {
	agg := newFakeTree()
	s := NewSession("/data", agg)

	if s.Root() != "/data" || s.Len() != 3 || s.Cursor() != 0 {
		t.Fatalf("initial session root=%q len=%d cursor=%d", s.Root(), s.Len(), s.Cursor())
	}
	if s.Total() != 910 {
		t.Errorf("Total() = %d, want 910", s.Total())
	}

	// Drilling into a file does nothing.
	s.MoveCursor(1)
	if s.DrillDown() {
		t.Fatal("DrillDown() on a file changed the root")
	}
	if s.Cursor() != 1 || len(agg.calls) != 1 {
		t.Errorf("file drill-down re-scanned or moved cursor")
	}

	s.MoveCursor(-1)
	if !s.DrillDown() {
		t.Fatal("DrillDown() on a directory failed")
	}
	if s.Root() != "/data/videos" || s.Cursor() != 0 || s.Len() != 2 {
		t.Errorf("after drill-down root=%q cursor=%d len=%d", s.Root(), s.Cursor(), s.Len())
	}

	s.MoveCursor(1)
	if !s.DrillUp() || s.Root() != "/data" || s.Cursor() != 0 {
		t.Errorf("after drill-up root=%q cursor=%d", s.Root(), s.Cursor())
	}
	if !s.DrillUp() || s.Root() != "/" {
		t.Fatalf("drill-up to / failed: %q", s.Root())
	}
	calls := len(agg.calls)
	if s.DrillUp() {
		t.Error("DrillUp() at / should be a no-op")
	}
	if len(agg.calls) != calls {
		t.Error("no-op DrillUp() re-scanned")
	}
}

func TestSession_MoveCursorWraps(t *testing.T) {
	s := NewSession("/data", newFakeTree())
	s.MoveCursor(-1)
	if s.Cursor() != 2 {
		t.Errorf("cursor after -1 = %d, want 2", s.Cursor())
	}
	s.MoveCursor(1)
	if s.Cursor() != 0 {
		t.Errorf("cursor after wrap = %d, want 0", s.Cursor())
	}
	s.MoveCursor(7)
	if s.Cursor() != 1 {
		t.Errorf("cursor after +7 = %d, want 1", s.Cursor())
	}

	empty := NewSession("/nowhere", newFakeTree())
	empty.MoveCursor(1)
	if _, ok := empty.Current(); ok || empty.DrillDown() {
		t.Error("empty session should have no current entry")
	}
}

func TestSession_ToggleMark(t *testing.T) {
	s := NewSession("/data", newFakeTree())
	s.ToggleCurrent()
	s.ToggleMark("/data/notes.txt")
	if !s.IsMarked("/data/videos") || !s.IsMarked("/data/notes.txt") || s.MarkCount() != 2 {
		t.Fatalf("marks = %v", s.Marked())
	}
	s.ToggleMark("/data/notes.txt")
	if s.IsMarked("/data/notes.txt") {
		t.Error("second toggle did not unmark")
	}

	// Marks survive navigation.
	s.DrillDown()
	if !s.IsMarked("/data/videos") {
		t.Error("mark lost after drill-down")
	}
}

func TestSession_CommitRefreshes(t *testing.T) {
	root := canonicalTemp(t)
	mkfile(t, filepath.Join(root, "junk", "big"), 500)
	mkfile(t, filepath.Join(root, "keep"), 5)

	s := NewSession(root, NewScanner(0, nil))
	s.MoveCursor(0)
	if e, _ := s.Current(); e.Name != "junk" {
		t.Fatalf("first entry = %q, want junk", e.Name)
	}
	s.ToggleCurrent()
	s.MoveCursor(1)

	trasher := &fakeTrasher{remove: true}
	gate := NewGate(root, trasher, nil)

	outcome, results := s.Commit(context.Background(), gate)
	if outcome != CommitExecuted || len(results) != 1 || results[0].Err != nil {
		t.Fatalf("Commit() = %v, %+v", outcome, results)
	}
	if s.Len() != 1 || s.Cursor() != 0 {
		t.Errorf("after commit len=%d cursor=%d, want 1 and 0", s.Len(), s.Cursor())
	}
	if e, _ := s.Current(); e.Name != "keep" {
		t.Errorf("stale entry shown: %+v", e)
	}
	if s.MarkCount() != 0 {
		t.Error("selection not cleared after commit")
	}
}

func TestSession_Stale(t *testing.T) {
	agg := newFakeTree()
	s := NewSession("/data", agg)
	s.MarkStale()
	if !s.Stale() {
		t.Fatal("MarkStale() not recorded")
	}
	s.Refresh()
	if s.Stale() || len(agg.calls) != 2 {
		t.Errorf("Refresh() stale=%v calls=%d", s.Stale(), len(agg.calls))
	}
}

func TestNewSession_CanonicalRoot(t *testing.T) {
	root := canonicalTemp(t)
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, filepath.Join(root, "sub"))

	s := NewSession(".", NewScanner(0, nil))
	if s.Root() != filepath.Join(root, "sub") {
		t.Fatalf("Root() = %q", s.Root())
	}
	if !s.DrillUp() || s.Root() != root {
		t.Errorf("DrillUp() from relative root landed at %q", s.Root())
	}
}

func TestSession_DrillDownThroughSymlink(t *testing.T) {
	root := canonicalTemp(t)
	mkfile(t, filepath.Join(root, "real", "x"), 5)
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	s := NewSession(root, NewScanner(0, nil))
	for i := 0; i < s.Len(); i++ {
		if e, _ := s.Current(); e.Name == "link" {
			break
		}
		s.MoveCursor(1)
	}
	if e, _ := s.Current(); e.Name != "link" || !e.IsDir {
		t.Fatalf("symlinked directory not listed as a directory: %+v", e)
	}

	if !s.DrillDown() {
		t.Fatal("DrillDown() through symlink failed")
	}
	want := filepath.Join(root, "real")
	if s.Root() != want {
		t.Fatalf("Root() = %q, want %q", s.Root(), want)
	}
	for _, e := range s.Entries() {
		if filepath.Dir(e.Path) != s.Root() {
			t.Errorf("entry %q is not a direct child of %q", e.Path, s.Root())
		}
	}
}
