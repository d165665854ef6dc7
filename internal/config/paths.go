package config

import (
	"os"
	"path/filepath"
)

// HomeFallback is returned by HomeDir when the home directory cannot be
// determined. It is not an absolute path, so no real path lies within it and
// every deletion is treated as irreversible.
const HomeFallback = "~"

// CleanTarget represents a category of files that can be cleaned.
type CleanTarget struct {
	// Name is the unique identifier for this target.
	Name string

	// Paths is the list of filesystem paths measured (and, for user
	// targets, emptied) by the cleaner.
	Paths []string

	// Description is a human-readable description.
	Description string

	// RequiresAdmin indicates whether elevated privileges are needed.
	RequiresAdmin bool

	// Command is run through the privilege helper for admin targets instead
	// of removing Paths directly.
	Command []string

	// Category groups related targets ("system", "dev").
	Category string

	// RiskLevel is one of "low", "medium", "high".
	RiskLevel string
}

// HomeDir returns the user's home directory, falling back to $HOME and then
// to HomeFallback. Symlinks are resolved so the boundary compares equal to
// scanned paths, which are always canonical.
func HomeDir() string {
	h, err := os.UserHomeDir()
	if err != nil || h == "" {
		h = os.Getenv("HOME")
	}
	if h == "" {
		return HomeFallback
	}
	if resolved, err := filepath.EvalSymlinks(h); err == nil {
		h = resolved
	}
	return filepath.Clean(h)
}

// DataDir returns $XDG_DATA_HOME, or ~/.local/share if unset.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d
	}
	return filepath.Join(HomeDir(), ".local", "share")
}

// CacheDir returns $XDG_CACHE_HOME, or ~/.cache if unset.
func CacheDir() string {
	if d := os.Getenv("XDG_CACHE_HOME"); d != "" {
		return d
	}
	return filepath.Join(HomeDir(), ".cache")
}

// ConfigDir returns $XDG_CONFIG_HOME, or ~/.config if unset.
func ConfigDir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d
	}
	return filepath.Join(HomeDir(), ".config")
}

// TrashDir returns the default trash staging root (<data>/Trash).
func TrashDir() string {
	return filepath.Join(DataDir(), "Trash")
}

// GetCleanTargets returns all available cleanup targets with paths expanded.
func GetCleanTargets() []CleanTarget {
	home := HomeDir()
	cache := CacheDir()

	return []CleanTarget{
		// ── System ──────────────────────────────────────────────
		{
			Name:          "PacmanCache",
			Paths:         []string{"/var/cache/pacman/pkg"},
			Description:   "Pacman package cache",
			RequiresAdmin: true,
			Command:       []string{"bash", "-c", "yes | pacman -Scc"},
			Category:      "system",
			RiskLevel:     "low",
		},
		{
			Name:        "YayCache",
			Paths:       []string{filepath.Join(cache, "yay")},
			Description: "Yay AUR build cache",
			Category:    "system",
			RiskLevel:   "low",
		},
		{
			Name:          "SystemdJournal",
			Paths:         []string{"/var/log/journal"},
			Description:   "Systemd journals older than 14 days",
			RequiresAdmin: true,
			Command:       []string{"journalctl", "--vacuum-time=14d"},
			Category:      "system",
			RiskLevel:     "low",
		},
		{
			Name:        "UserTrash",
			Paths:       []string{TrashDir()},
			Description: "Desktop trash, including items staged by diskord",
			Category:    "system",
			RiskLevel:   "medium",
		},

		// ── Developer Caches ────────────────────────────────────
		{
			Name:          "DockerCache",
			Paths:         []string{"/var/lib/docker"},
			Description:   "Unused Docker images, containers and build cache",
			RequiresAdmin: true,
			Command:       []string{"docker", "system", "prune", "-af"},
			Category:      "dev",
			RiskLevel:     "medium",
		},
		{
			Name:        "CargoCache",
			Paths:       []string{filepath.Join(home, ".cargo", "registry", "cache")},
			Description: "Rust cargo registry cache",
			Category:    "dev",
			RiskLevel:   "low",
		},
		{
			Name:        "NpmCache",
			Paths:       []string{filepath.Join(home, ".npm", "_cacache")},
			Description: "npm package manager cache",
			Category:    "dev",
			RiskLevel:   "low",
		},
		{
			Name: "GoModCache",
			Paths: []string{
				filepath.Join(home, "go", "pkg", "mod", "cache"),
			},
			Description: "Go module download cache",
			Category:    "dev",
			RiskLevel:   "low",
		},
	}
}

// GetTargetsByCategory returns clean targets filtered by category.
func GetTargetsByCategory(category string) []CleanTarget {
	var result []CleanTarget
	for _, t := range GetCleanTargets() {
		if t.Category == category {
			result = append(result, t)
		}
	}
	return result
}

// GetNeverDeletePaths returns paths that must never be deleted, reversibly
// or not. Only the exact paths are protected; their contents are not.
func GetNeverDeletePaths() []string {
	return []string{
		"/",
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/home",
		"/lib",
		"/lib64",
		"/proc",
		"/root",
		"/run",
		"/sbin",
		"/sys",
		"/usr",
		"/var",
		HomeDir(),
	}
}
