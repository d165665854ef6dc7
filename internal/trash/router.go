package trash

import (
	"path/filepath"
	"strings"
)

// Disposition says how a path would be deleted.
type Disposition int

const (
	// Reversible paths are moved into the staging area and can be restored.
	Reversible Disposition = iota
	// Irreversible paths lie outside the home boundary and are removed
	// permanently through the privilege helper.
	Irreversible
)

func (d Disposition) String() string {
	if d == Irreversible {
		return "irreversible"
	}
	return "reversible"
}

// Classify reports whether path lies within home. The comparison is
// lexical and component-wise: "/home/al" is not within "/home/alice", and
// no existence check or symlink resolution happens here.
func Classify(path, home string) Disposition {
	if within(path, home) {
		return Reversible
	}
	return Irreversible
}

func within(path, root string) bool {
	if !filepath.IsAbs(root) {
		return false
	}
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return filepath.IsAbs(path)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
