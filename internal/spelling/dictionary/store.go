package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
)

// Store persists a built Dictionary so later runs skip the corpus scan.
// Load returns an error wrapping apperrors.ErrCacheNotFound when nothing
// has been saved yet.
type Store interface {
	Name() string
	Load(ctx context.Context) (*Dictionary, error)
	Save(ctx context.Context, d *Dictionary) error
}

// Locker is implemented by stores that can exclude other processes while
// the dictionary is being built. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// lockRetryDelay is how often a blocked writer polls for the lock.
const lockRetryDelay = 200 * time.Millisecond

// FileStore keeps the dictionary in a local text file. Builders serialize
// on an advisory lock file next to it.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Name() string {
	return "file:" + s.path
}

func (s *FileStore) Load(ctx context.Context) (*Dictionary, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrCacheNotFound, s.path)
		}
		return nil, fmt.Errorf("opening dictionary cache: %w", err)
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("loading dictionary cache %s: %w", s.path, err)
	}
	return d, nil
}

// Save writes to a temporary file and renames it into place, so a reader
// never observes a half-written cache. The temporary file is removed when
// any step fails.
func (s *FileStore) Save(ctx context.Context, d *Dictionary) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dictionary cache directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp dictionary file: %w", err)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()
	if _, err := d.WriteTo(f); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fmt.Errorf("setting dictionary file mode: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing dictionary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing dictionary file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming dictionary file: %w", err)
	}
	return nil
}

func (s *FileStore) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrLockTimeout, s.lock.Path())
		}
		return nil, fmt.Errorf("acquiring dictionary lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrLockTimeout, s.lock.Path())
	}
	return func() { _ = s.lock.Unlock() }, nil
}
