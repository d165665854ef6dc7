// Package trash stages deleted files so they can be restored, and routes
// deletions outside the home directory to a permanent privileged remove.
package trash

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/lakshaymaurya-felt/diskord/internal/core"
)

var (
	// ErrIrrecoverable is returned when restoring an item that was deleted
	// permanently.
	ErrIrrecoverable = errors.New("item was permanently deleted and cannot be restored")

	// ErrPrivilegedCommandFailed is returned when the privileged remove
	// fails or the user cancels the elevation prompt.
	ErrPrivilegedCommandFailed = errors.New("privileged remove failed")

	// ErrCrossDevice is returned when the source and the staging area are on
	// different filesystems.
	ErrCrossDevice = errors.New("source is on a different filesystem than the trash")

	// ErrRestoreConflict is returned when something already exists at the
	// original location. Restore never overwrites.
	ErrRestoreConflict = errors.New("original location is occupied")

	// ErrProtected is returned for paths that must never be deleted.
	ErrProtected = errors.New("path is protected")

	// ErrNotPending is returned for items that are not in the session trash.
	ErrNotPending = errors.New("item is not in the session trash")
)

// Item records one deletion made during this session.
type Item struct {
	OriginalPath  string    `json:"original_path"`
	TrashFilePath string    `json:"trash_file_path,omitempty"`
	TrashInfoPath string    `json:"trash_info_path,omitempty"`
	IsRoot        bool      `json:"is_root"`
	DeletedAt     time.Time `json:"deleted_at"`
}

// Restorable reports whether Restore can succeed for this item.
func (i Item) Restorable() bool {
	return !i.IsRoot
}

// Options configures a Store.
type Options struct {
	// Dir is the staging root holding files/ and info/.
	Dir string
	// Home is the boundary inside which deletions are reversible.
	Home string
	// Runner performs privileged removals outside Home.
	Runner core.Runner
	// SettleTimeout bounds the wait for a privileged removal to become
	// visible. Zero skips the wait.
	SettleTimeout time.Duration
	// Protected lists exact paths Put refuses to touch.
	Protected []string
	Logger    *zap.Logger
}

// Store is the session trash. It is not safe for concurrent use; the
// dashboard owns it from a single goroutine.
type Store struct {
	filesDir  string
	infoDir   string
	home      string
	runner    core.Runner
	settle    time.Duration
	protected map[string]bool
	log       *zap.Logger
	now       func() time.Time

	items []Item
}

// NewStore creates a Store. Staging directories are created lazily on the
// first reversible Put.
func NewStore(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	protected := make(map[string]bool, len(opts.Protected))
	for _, p := range opts.Protected {
		protected[filepath.Clean(p)] = true
	}
	return &Store{
		filesDir:  filepath.Join(opts.Dir, "files"),
		infoDir:   filepath.Join(opts.Dir, "info"),
		home:      opts.Home,
		runner:    opts.Runner,
		settle:    opts.SettleTimeout,
		protected: protected,
		log:       logger,
		now:       time.Now,
	}
}

// Home returns the reversibility boundary.
func (s *Store) Home() string {
	return s.home
}

// Items returns a copy of the session trash, oldest first.
func (s *Store) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Len returns the number of pending items.
func (s *Store) Len() int {
	return len(s.items)
}

// Last returns the most recent pending item.
func (s *Store) Last() (Item, bool) {
	if len(s.items) == 0 {
		return Item{}, false
	}
	return s.items[len(s.items)-1], true
}

// Put deletes path: paths inside the home boundary are staged and can be
// restored, anything else is removed permanently through the privileged
// runner. Successful deletions are appended to the session trash.
func (s *Store) Put(ctx context.Context, path string) (Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Item{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	if s.protected[abs] {
		return Item{}, fmt.Errorf("delete %s: %w", abs, ErrProtected)
	}

	var item Item
	if Classify(abs, s.home) == Irreversible {
		item, err = s.removePrivileged(ctx, abs)
	} else {
		item, err = s.stage(abs)
	}
	if err != nil {
		s.log.Warn("delete failed", zap.String("path", abs), zap.Error(err))
		return Item{}, err
	}

	s.items = append(s.items, item)
	return item, nil
}

func (s *Store) stage(path string) (Item, error) {
	for _, dir := range []string{s.filesDir, s.infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return Item{}, fmt.Errorf("create trash directory: %w", err)
		}
	}

	base := filepath.Base(path)
	deletedAt := s.now()

	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		filePath := filepath.Join(s.filesDir, name)
		infoPath := filepath.Join(s.infoDir, name+infoExt)
		if exists(filePath) || exists(infoPath) {
			continue
		}

		// O_EXCL claims the name even if another process raced us to it.
		f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Item{}, fmt.Errorf("write trash info: %w", err)
		}
		_, werr := Info{Path: path, DeletionDate: deletedAt}.WriteTo(f)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = os.Remove(infoPath)
			return Item{}, fmt.Errorf("write trash info: %w", werr)
		}

		if err := os.Rename(path, filePath); err != nil {
			if rmErr := os.Remove(infoPath); rmErr != nil {
				s.log.Warn("orphaned trash info", zap.String("info", infoPath), zap.Error(rmErr))
			}
			if errors.Is(err, unix.EXDEV) {
				return Item{}, fmt.Errorf("move %s to trash: %w", path, ErrCrossDevice)
			}
			return Item{}, fmt.Errorf("move %s to trash: %w", path, err)
		}

		s.log.Info("staged",
			zap.String("path", path),
			zap.String("staged", filePath))
		return Item{
			OriginalPath:  path,
			TrashFilePath: filePath,
			TrashInfoPath: infoPath,
			DeletedAt:     deletedAt,
		}, nil
	}
}

func (s *Store) removePrivileged(ctx context.Context, path string) (Item, error) {
	if s.runner == nil {
		return Item{}, fmt.Errorf("%w: %s: no privileged runner configured", ErrPrivilegedCommandFailed, path)
	}
	if err := s.runner.Run(ctx, "rm", "-rf", "--", path); err != nil {
		return Item{}, fmt.Errorf("%w: %s: %w", ErrPrivilegedCommandFailed, path, err)
	}
	if s.settle > 0 && !core.WaitGone(path, s.settle) {
		s.log.Warn("path still visible after privileged remove",
			zap.String("path", path),
			zap.Duration("waited", s.settle))
	}

	s.log.Info("permanently deleted", zap.String("path", path))
	return Item{OriginalPath: path, IsRoot: true, DeletedAt: s.now()}, nil
}

// Restore moves a staged item back to its original location, recreating
// missing parent directories. Permanently deleted items always fail with
// ErrIrrecoverable and the filesystem is not touched.
func (s *Store) Restore(item Item) error {
	if item.IsRoot {
		return fmt.Errorf("restore %s: %w", item.OriginalPath, ErrIrrecoverable)
	}
	idx := s.indexOf(item)
	if idx < 0 {
		return fmt.Errorf("restore %s: %w", item.OriginalPath, ErrNotPending)
	}

	if _, err := os.Lstat(item.OriginalPath); err == nil {
		return fmt.Errorf("restore %s: %w", item.OriginalPath, ErrRestoreConflict)
	}
	if err := os.MkdirAll(filepath.Dir(item.OriginalPath), 0o755); err != nil {
		return fmt.Errorf("restore %s: %w", item.OriginalPath, err)
	}
	if err := os.Rename(item.TrashFilePath, item.OriginalPath); err != nil {
		return fmt.Errorf("restore %s: %w", item.OriginalPath, err)
	}
	s.removeInfo(item)

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.log.Info("restored", zap.String("path", item.OriginalPath))
	return nil
}

// Erase permanently deletes a staged item. Permanently deleted items are
// already gone, so erasing one only drops it from the session trash. If the
// staged content cannot be removed the item stays pending.
func (s *Store) Erase(item Item) error {
	idx := s.indexOf(item)
	if idx < 0 {
		return fmt.Errorf("erase %s: %w", item.OriginalPath, ErrNotPending)
	}

	if !item.IsRoot {
		if err := removeStaged(item.TrashFilePath); err != nil {
			s.log.Warn("staged content not removed",
				zap.String("staged", item.TrashFilePath),
				zap.Error(err))
			return fmt.Errorf("erase %s: %w", item.OriginalPath, err)
		}
		s.removeInfo(item)
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.log.Info("erased", zap.String("path", item.OriginalPath), zap.Bool("is_root", item.IsRoot))
	return nil
}

func removeStaged(path string) error {
	info, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	case info.IsDir():
		return os.RemoveAll(path)
	default:
		return os.Remove(path)
	}
}

// removeInfo deletes the sidecar; failure is logged, not returned.
func (s *Store) removeInfo(item Item) {
	if item.TrashInfoPath == "" {
		return
	}
	if err := os.Remove(item.TrashInfoPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("trash info not removed", zap.String("info", item.TrashInfoPath), zap.Error(err))
	}
}

func (s *Store) indexOf(item Item) int {
	for i, it := range s.items {
		if it == item {
			return i
		}
	}
	return -1
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
