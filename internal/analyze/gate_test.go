package analyze

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/lakshaymaurya-felt/diskord/internal/config"
	"github.com/lakshaymaurya-felt/diskord/internal/trash"
)

// fakeTrasher records every Put. With remove set it deletes the path so
// callers can observe the filesystem change.
type fakeTrasher struct {
	puts   []string
	fail   map[string]error
	remove bool
}

func (f *fakeTrasher) Put(_ context.Context, path string) (trash.Item, error) {
	f.puts = append(f.puts, path)
	if err := f.fail[path]; err != nil {
		return trash.Item{}, err
	}
	if f.remove {
		if err := os.RemoveAll(path); err != nil {
			return trash.Item{}, err
		}
	}
	return trash.Item{OriginalPath: path, DeletedAt: time.Now()}, nil
}

func selectionOf(paths ...string) *Selection {
	sel := NewSelection()
	for _, p := range paths {
		sel.Toggle(p)
	}
	return sel
}

func TestGate_EmptySelection(t *testing.T) {
	tr := &fakeTrasher{}
	g := NewGate("/home/alice", tr, nil)

	outcome, results := g.RequestCommit(context.Background(), NewSelection())
	if outcome != CommitNothing || results != nil || len(tr.puts) != 0 {
		t.Fatalf("RequestCommit(empty) = %v, %v", outcome, results)
	}
	if g.State() != GateIdle {
		t.Errorf("State() = %v, want idle", g.State())
	}
}

func TestGate_ReversibleExecutesImmediately(t *testing.T) {
	tr := &fakeTrasher{}
	g := NewGate("/home/alice", tr, nil)
	sel := selectionOf("/home/alice/b", "/home/alice/a")

	outcome, results := g.RequestCommit(context.Background(), sel)
	if outcome != CommitExecuted {
		t.Fatalf("outcome = %v, want executed", outcome)
	}
	if !slices.Equal(tr.puts, []string{"/home/alice/a", "/home/alice/b"}) {
		t.Errorf("puts = %v", tr.puts)
	}
	if len(results) != 2 || sel.Len() != 0 || g.State() != GateIdle {
		t.Errorf("results=%d selection=%d state=%v", len(results), sel.Len(), g.State())
	}
}

func TestGate_IrreversibleNeedsSecondCommit(t *testing.T) {
	tr := &fakeTrasher{}
	g := NewGate("/home/alice", tr, nil)
	sel := selectionOf("/home/alice/a", "/etc/foo")

	outcome, results := g.RequestCommit(context.Background(), sel)
	if outcome != CommitConfirmationRequired || results != nil {
		t.Fatalf("first commit = %v, %v", outcome, results)
	}
	if len(tr.puts) != 0 {
		t.Fatalf("first commit deleted %v", tr.puts)
	}
	if g.State() != GateAwaitingConfirmation || sel.Len() != 2 {
		t.Fatalf("state=%v selection=%d", g.State(), sel.Len())
	}

	outcome, results = g.RequestCommit(context.Background(), sel)
	if outcome != CommitExecuted || len(results) != 2 {
		t.Fatalf("second commit = %v, %v", outcome, results)
	}
	if g.State() != GateIdle || sel.Len() != 0 {
		t.Errorf("after execute state=%v selection=%d", g.State(), sel.Len())
	}
}

func TestGate_CancelKeepsSelection(t *testing.T) {
	tr := &fakeTrasher{}
	g := NewGate("/home/alice", tr, nil)
	sel := selectionOf("/etc/foo")

	g.RequestCommit(context.Background(), sel)
	g.Cancel()
	if g.State() != GateIdle || !sel.Contains("/etc/foo") || len(tr.puts) != 0 {
		t.Fatalf("after cancel state=%v selection=%v puts=%v", g.State(), sel.Paths(), tr.puts)
	}

	// Cancelling re-arms the requirement.
	outcome, _ := g.RequestCommit(context.Background(), sel)
	if outcome != CommitConfirmationRequired {
		t.Errorf("commit after cancel = %v, want confirmation required", outcome)
	}
}

func TestGate_FailuresAreIndependent(t *testing.T) {
	boom := errors.New("boom")
	tr := &fakeTrasher{fail: map[string]error{"/home/alice/b": boom}}
	g := NewGate("/home/alice", tr, nil)

	_, results := g.RequestCommit(context.Background(), selectionOf("/home/alice/a", "/home/alice/b", "/home/alice/c"))
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for _, r := range results {
		wantErr := r.Path == "/home/alice/b"
		if (r.Err != nil) != wantErr {
			t.Errorf("%s: err = %v", r.Path, r.Err)
		}
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("results[1].Err = %v, want boom", results[1].Err)
	}
}

func TestGate_Irreversible(t *testing.T) {
	g := NewGate("/home/alice", &fakeTrasher{}, nil)
	got := g.Irreversible(selectionOf("/home/alice/x", "/tmp/y", "/home/alicex", "/home/alice"))
	want := []string{"/home/alicex", "/tmp/y"}
	if !slices.Equal(got, want) {
		t.Errorf("Irreversible() = %v, want %v", got, want)
	}
}

type removingRunner struct{ calls int }

func (r *removingRunner) Run(_ context.Context, argv ...string) error {
	r.calls++
	return os.RemoveAll(argv[len(argv)-1])
}

func TestGate_WithStoreOutsideHome(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	foo := filepath.Join(root, "etc", "foo")
	mkfile(t, foo, 10)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}

	runner := &removingRunner{}
	store := trash.NewStore(trash.Options{
		Dir:           filepath.Join(home, ".local", "share", "Trash"),
		Home:          home,
		Runner:        runner,
		SettleTimeout: time.Second,
	})
	g := NewGate(home, store, nil)
	sel := selectionOf(foo)

	outcome, _ := g.RequestCommit(context.Background(), sel)
	if outcome != CommitConfirmationRequired {
		t.Fatalf("first commit = %v", outcome)
	}
	if _, err := os.Stat(foo); err != nil {
		t.Fatalf("%s removed before confirmation: %v", foo, err)
	}
	if runner.calls != 0 || store.Len() != 0 {
		t.Fatalf("first commit touched the store: calls=%d items=%d", runner.calls, store.Len())
	}

	outcome, results := g.RequestCommit(context.Background(), sel)
	if outcome != CommitExecuted || len(results) != 1 || results[0].Err != nil {
		t.Fatalf("second commit = %v, %+v", outcome, results)
	}
	if _, err := os.Stat(foo); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("%s still exists: %v", foo, err)
	}
	item, _ := store.Last()
	if !item.IsRoot || item.Restorable() {
		t.Errorf("item = %+v, want a permanent deletion", item)
	}
	if err := store.Restore(item); !errors.Is(err, trash.ErrIrrecoverable) {
		t.Errorf("Restore() = %v, want ErrIrrecoverable", err)
	}
}

func TestGate_SymlinkedHomeStaysReversible(t *testing.T) {
	root := canonicalTemp(t)
	realHome := filepath.Join(root, "var", "home", "u")
	mkfile(t, filepath.Join(realHome, "report.txt"), 20)
	if err := os.Symlink(filepath.Join(root, "var", "home"), filepath.Join(root, "home")); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", filepath.Join(root, "home", "u"))

	home := config.HomeDir()
	runner := &removingRunner{}
	store := trash.NewStore(trash.Options{
		Dir:    filepath.Join(home, ".local", "share", "Trash"),
		Home:   home,
		Runner: runner,
	})
	g := NewGate(home, store, nil)
	s := NewSession(filepath.Join(root, "home", "u"), NewScanner(0, nil))

	e, ok := s.Current()
	if !ok || e.Name != "report.txt" {
		t.Fatalf("Current() = %+v", e)
	}
	s.ToggleCurrent()

	outcome, results := s.Commit(context.Background(), g)
	if outcome != CommitExecuted || len(results) != 1 || results[0].Err != nil {
		t.Fatalf("Commit() = %v, %+v", outcome, results)
	}
	if results[0].Item.IsRoot || runner.calls != 0 {
		t.Fatalf("file in home deleted permanently: item=%+v runner calls=%d", results[0].Item, runner.calls)
	}
	if err := store.Restore(results[0].Item); err != nil {
		t.Fatalf("Restore() = %v", err)
	}
	if _, err := os.Stat(filepath.Join(realHome, "report.txt")); err != nil {
		t.Errorf("report.txt not restored: %v", err)
	}
}
