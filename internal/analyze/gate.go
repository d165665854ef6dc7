package analyze

import (
	"context"

	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/diskord/internal/trash"
)

// GateState is the state of the confirmation gate.
type GateState int

const (
	GateIdle GateState = iota
	GateAwaitingConfirmation
)

func (s GateState) String() string {
	if s == GateAwaitingConfirmation {
		return "awaiting-confirmation"
	}
	return "idle"
}

// CommitOutcome says what a commit request did.
type CommitOutcome int

const (
	// CommitNothing means the selection was empty.
	CommitNothing CommitOutcome = iota
	// CommitConfirmationRequired means nothing was deleted; the selection
	// contains irreversible paths and the user must commit again.
	CommitConfirmationRequired
	// CommitExecuted means every selected path was attempted.
	CommitExecuted
)

// Trasher deletes one path, reversibly or not.
type Trasher interface {
	Put(ctx context.Context, path string) (trash.Item, error)
}

// DeleteResult is the outcome for one selected path.
type DeleteResult struct {
	Path string
	Item trash.Item
	Err  error
}

// Gate requires a second commit before any path outside the home boundary
// is deleted.
type Gate struct {
	state   GateState
	home    string
	trasher Trasher
	log     *zap.Logger
}

// NewGate creates an idle gate.
func NewGate(home string, trasher Trasher, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{home: home, trasher: trasher, log: logger}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	return g.state
}

// Irreversible returns the selected paths that would be deleted permanently.
func (g *Gate) Irreversible(sel *Selection) []string {
	var out []string
	for _, p := range sel.Paths() {
		if trash.Classify(p, g.home) == trash.Irreversible {
			out = append(out, p)
		}
	}
	return out
}

// RequestCommit deletes every selected path, unless some are irreversible
// and the gate is idle, in which case it only arms the gate. After
// executing, the selection is cleared and the gate returns to idle. A
// failure on one path does not stop the others.
func (g *Gate) RequestCommit(ctx context.Context, sel *Selection) (CommitOutcome, []DeleteResult) {
	if sel.Len() == 0 {
		g.state = GateIdle
		return CommitNothing, nil
	}

	if g.state == GateIdle {
		if irr := g.Irreversible(sel); len(irr) > 0 {
			g.state = GateAwaitingConfirmation
			g.log.Info("confirmation required", zap.Strings("irreversible", irr))
			return CommitConfirmationRequired, nil
		}
	}

	paths := sel.Paths()
	results := make([]DeleteResult, 0, len(paths))
	for _, p := range paths {
		item, err := g.trasher.Put(ctx, p)
		results = append(results, DeleteResult{Path: p, Item: item, Err: err})
	}

	sel.Clear()
	g.state = GateIdle
	return CommitExecuted, results
}

// Cancel disarms the gate without deleting anything or touching the
// selection.
func (g *Gate) Cancel() {
	g.state = GateIdle
}
