package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lakshaymaurya-felt/diskord/internal/trash"
)

type dashboard struct {
	m      AnalyzeModel
	root   string
	home   string
	store  *trash.Store
	runner *removingRunner
}

// newDashboard builds root/home/docs/report.txt (100 bytes) and
// root/etc/foo (10 bytes) and browses browse, relative to root.
func newDashboard(t *testing.T, browse string) *dashboard {
	t.Helper()
	root := canonicalTemp(t)
	home := filepath.Join(root, "home")
	mkfile(t, filepath.Join(home, "docs", "report.txt"), 100)
	mkfile(t, filepath.Join(root, "etc", "foo"), 10)

	d := &dashboard{root: root, home: home, runner: &removingRunner{}}
	d.store = trash.NewStore(trash.Options{
		Dir:           filepath.Join(home, ".local", "share", "Trash"),
		Home:          home,
		Runner:        d.runner,
		SettleTimeout: time.Second,
		Protected:     []string{home},
	})
	scanner := NewScanner(2, nil)
	d.m = NewAnalyzeModel(context.Background(), Deps{
		Session: NewSession(filepath.Join(root, browse), scanner),
		Gate:    NewGate(home, d.store, nil),
		Store:   d.store,
		Scanner: scanner,
	})
	return d
}

func (d *dashboard) press(t *testing.T, keys ...tea.Msg) {
	t.Helper()
	for _, k := range keys {
		next, _ := d.m.Update(k)
		d.m = next.(AnalyzeModel)
	}
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestAnalyzeModel_TrashAndUndo(t *testing.T) {
	d := newDashboard(t, "home")
	docs := filepath.Join(d.home, "docs")

	if e, _ := d.m.session.Current(); e.Path != docs {
		t.Fatalf("cursor on %q, want %q", e.Path, docs)
	}
	d.press(t, keySpace, keyEnter)

	if exists(docs) || d.store.Len() != 1 {
		t.Fatalf("docs exists=%v trash=%d", exists(docs), d.store.Len())
	}
	if d.m.gate.State() != GateIdle || d.m.session.MarkCount() != 0 {
		t.Errorf("gate=%v marks=%d", d.m.gate.State(), d.m.session.MarkCount())
	}
	for _, e := range d.m.session.Entries() {
		if e.Path == docs {
			t.Error("trashed entry still listed")
		}
	}

	d.press(t, runes("u"))
	if !exists(filepath.Join(docs, "report.txt")) || d.store.Len() != 0 {
		t.Fatalf("undo failed: notice %q", d.m.notice)
	}
	if e, _ := d.m.session.Current(); e.Path != docs {
		t.Errorf("restored entry not listed first: %+v", e)
	}
}

func TestAnalyzeModel_PermanentDeleteNeedsConfirmation(t *testing.T) {
	d := newDashboard(t, "")
	foo := filepath.Join(d.root, "etc", "foo")

	// Entries are home (100) then etc (10).
	d.press(t, runes("j"), keySpace, keyEnter)
	if d.m.gate.State() != GateAwaitingConfirmation {
		t.Fatalf("gate = %v, want awaiting confirmation", d.m.gate.State())
	}
	if !exists(foo) || d.runner.calls != 0 {
		t.Fatal("first commit deleted something")
	}
	if !strings.Contains(d.m.View(), "Permanent deletion") {
		t.Error("confirmation not rendered")
	}

	// Other keys are ignored while awaiting.
	cursor := d.m.session.Cursor()
	d.press(t, runes("j"), keyTab, runes("q"))
	if d.m.session.Cursor() != cursor || d.m.tab != TabScanner || d.m.quitting {
		t.Fatal("key handled while awaiting confirmation")
	}

	d.press(t, keyEsc)
	if d.m.gate.State() != GateIdle || d.m.session.MarkCount() != 1 || !exists(foo) {
		t.Fatalf("cancel: gate=%v marks=%d", d.m.gate.State(), d.m.session.MarkCount())
	}

	d.press(t, keyEnter, keyEnter)
	if exists(filepath.Join(d.root, "etc")) {
		t.Fatal("confirmed delete did not remove the path")
	}
	item, ok := d.store.Last()
	if !ok || !item.IsRoot {
		t.Fatalf("last item = %+v", item)
	}

	d.press(t, runes("u"))
	if !strings.Contains(d.m.notice, "cannot be restored") {
		t.Errorf("notice = %q", d.m.notice)
	}
	if d.store.Len() != 1 {
		t.Error("failed restore dropped the item")
	}
}

func TestAnalyzeModel_SessionTrashTab(t *testing.T) {
	d := newDashboard(t, "home")
	d.press(t, tea.WindowSizeMsg{Width: 300, Height: 40}, keySpace, keyEnter, keyTab)
	if d.m.tab != TabTrash {
		t.Fatalf("tab = %v", d.m.tab)
	}
	if !strings.Contains(d.m.View(), filepath.Join(d.home, "docs")) {
		t.Error("trash tab does not list the deleted path")
	}

	item, _ := d.store.Last()
	d.press(t, keyEnter)
	if d.store.Len() != 0 || exists(item.TrashFilePath) || exists(item.TrashInfoPath) {
		t.Fatalf("erase left state behind: len=%d", d.store.Len())
	}
}

func TestAnalyzeModel_StaleRefreshOnTabSwitch(t *testing.T) {
	d := newDashboard(t, "home")
	d.press(t, keySpace, keyEnter, keyTab)

	d.press(t, runes("u"))
	if !d.m.session.Stale() {
		t.Fatal("restore from trash tab should mark the scanner stale")
	}

	d.press(t, tea.KeyMsg{Type: tea.KeyShiftTab})
	if d.m.tab != TabScanner || d.m.session.Stale() {
		t.Fatalf("tab=%v stale=%v", d.m.tab, d.m.session.Stale())
	}
	if e, _ := d.m.session.Current(); e.Name != "docs" {
		t.Errorf("restored entry missing after refresh: %+v", e)
	}
}

func TestAnalyzeModel_Navigation(t *testing.T) {
	d := newDashboard(t, "")
	d.press(t, runes("l"))
	if d.m.session.Root() != d.home {
		t.Fatalf("root = %q, want %q", d.m.session.Root(), d.home)
	}
	d.press(t, runes("h"))
	if d.m.session.Root() != d.root {
		t.Fatalf("root = %q, want %q", d.m.session.Root(), d.root)
	}

	d.press(t, keyEnter)
	if d.m.notice != "Nothing selected" {
		t.Errorf("notice = %q", d.m.notice)
	}

	_, cmd := d.m.Update(runes("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestAnalyzeModel_RestoreConflictKeepsItem(t *testing.T) {
	d := newDashboard(t, "home")
	docs := filepath.Join(d.home, "docs")
	d.press(t, keySpace, keyEnter)
	mkfile(t, filepath.Join(docs, "new.txt"), 1)

	d.press(t, runes("u"))
	if d.store.Len() != 1 || !strings.Contains(d.m.notice, "Restore failed") {
		t.Errorf("len=%d notice=%q", d.store.Len(), d.m.notice)
	}
	item, _ := d.store.Last()
	if err := d.store.Restore(item); !errors.Is(err, trash.ErrRestoreConflict) {
		t.Errorf("Restore() = %v, want ErrRestoreConflict", err)
	}
}

func TestWindowStart(t *testing.T) {
	tests := []struct{ cursor, n, vh, want int }{
		{0, 5, 10, 0},
		{9, 20, 10, 0},
		{10, 20, 10, 1},
		{19, 20, 10, 10},
	}
	for _, tt := range tests {
		if got := windowStart(tt.cursor, tt.n, tt.vh); got != tt.want {
			t.Errorf("windowStart(%d, %d, %d) = %d, want %d", tt.cursor, tt.n, tt.vh, got, tt.want)
		}
	}
}

func TestAnalyzeModel_ViewShowsScanCountAndGoneItems(t *testing.T) {
	d := newDashboard(t, "")
	d.press(t, tea.WindowSizeMsg{Width: 300, Height: 40})

	n := d.m.scanner.ScannedCount()
	if n == 0 {
		t.Fatal("scanner visited nothing")
	}
	if want := fmt.Sprintf("%d scanned", n); !strings.Contains(d.m.View(), want) {
		t.Errorf("scanner view missing %q", want)
	}

	// Entries sort by size, so etc follows home.
	d.press(t, runes("j"), keySpace, keyEnter, keyEnter, keyTab)
	item, ok := d.store.Last()
	if !ok || item.Restorable() {
		t.Fatalf("last item = %+v", item)
	}
	if !strings.Contains(d.m.View(), " gone ") {
		t.Error("trash tab does not flag the permanent deletion")
	}
}
