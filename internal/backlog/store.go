package backlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/calvinalkan/prio/internal/fs"
)

// DefaultLockTimeout bounds how long a writer waits for another writer.
const DefaultLockTimeout = 2 * time.Second

const (
	filePerm     = 0o644
	locksDirName = ".locks"
)

// Snapshot is a decoded backlog together with the version of the bytes it
// was decoded from.
type Snapshot struct {
	Backlog Backlog
	Version Version
}

// UpdateResult describes a completed [Store.Update].
type UpdateResult struct {
	Backlog Backlog
	Before  Version
	After   Version

	// Changed is false when the mutation produced byte-identical output
	// and nothing was written.
	Changed bool
}

// Store persists a backlog document at a single path.
//
// Every write holds an exclusive lock on <dir>/.locks/<name>.lock, re-reads
// the document, validates the new content, and replaces the file atomically.
// Readers never need the lock because the file is only ever replaced whole.
type Store struct {
	fs          fs.FS
	locker      *fs.Locker
	path        string
	lockPath    string
	lockTimeout time.Duration
	log         *slog.Logger
}

// NewStore returns a store for the backlog at path. A zero lockTimeout means
// [DefaultLockTimeout]; a nil logger discards logs.
func NewStore(fsys fs.FS, path string, lockTimeout time.Duration, logger *slog.Logger) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		fs:          fsys,
		locker:      fs.NewLocker(fsys),
		path:        path,
		lockPath:    filepath.Join(filepath.Dir(path), locksDirName, filepath.Base(path)+".lock"),
		lockTimeout: lockTimeout,
		log:         logger.With("backlog", path),
	}
}

// Path returns the backlog file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the backlog. Returns [ErrNotFound] if the file
// does not exist and [ErrMalformed] if it cannot be decoded or violates the
// ordering invariant.
func (s *Store) Load(_ context.Context) (Snapshot, error) {
	data, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}

	b, err := Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", s.path, err)
	}

	return Snapshot{Backlog: b, Version: VersionOf(data)}, nil
}

// Create writes b as a new backlog. Fails with [ErrExists] if the file is
// already present.
func (s *Store) Create(ctx context.Context, b Backlog) (Version, error) {
	var version Version

	err := s.withLock(ctx, func() error {
		exists, err := s.fs.Exists(s.path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", s.path, err)
		}

		if exists {
			return fmt.Errorf("%w: %s", ErrExists, s.path)
		}

		version, err = s.write(b)

		return err
	})

	return version, err
}

// Update applies mutate to the current backlog under the store lock and
// persists the result. Nothing is written when mutate fails, when the result
// violates the invariant, or when the encoded result equals the current file.
func (s *Store) Update(ctx context.Context, mutate func(Backlog) (Backlog, error)) (UpdateResult, error) {
	var result UpdateResult

	err := s.withLock(ctx, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}

		current, err := Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", s.path, err)
		}

		next, err := mutate(current.Clone())
		if err != nil {
			return err
		}

		encoded, err := s.encodeValid(next)
		if err != nil {
			return err
		}

		result = UpdateResult{
			Backlog: next.Sorted(),
			Before:  VersionOf(data),
			After:   VersionOf(encoded),
		}

		if bytes.Equal(encoded, data) {
			s.log.Debug("backlog unchanged, skipping write", "version", result.Before)

			return nil
		}

		if err := s.fs.WriteFileAtomic(s.path, encoded, filePerm); err != nil {
			return fmt.Errorf("writing %s: %w", s.path, err)
		}

		result.Changed = true

		s.log.Debug("backlog written", "before", result.Before, "after", result.After, "items", next.Len())

		return nil
	})

	return result, err
}

// Save writes b only if the file still has version expected, the version a
// caller got from an earlier [Store.Load]. An empty expected version means
// the file must not exist. Returns [ErrConflict] otherwise.
func (s *Store) Save(ctx context.Context, b Backlog, expected Version) (Version, error) {
	var version Version

	err := s.withLock(ctx, func() error {
		data, err := s.read()

		switch {
		case errors.Is(err, ErrNotFound):
			data = nil
		case err != nil:
			return err
		}

		if actual := VersionOf(data); actual != expected {
			return fmt.Errorf("%w: have %s, want %s", ErrConflict, short(actual), short(expected))
		}

		version, err = s.write(b)

		return err
	})

	return version, err
}

func (s *Store) read() ([]byte, error) {
	data, err := s.fs.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	return data, nil
}

func (s *Store) write(b Backlog) (Version, error) {
	encoded, err := s.encodeValid(b)
	if err != nil {
		return "", err
	}

	if err := s.fs.WriteFileAtomic(s.path, encoded, filePerm); err != nil {
		return "", fmt.Errorf("writing %s: %w", s.path, err)
	}

	version := VersionOf(encoded)

	s.log.Debug("backlog written", "after", version, "items", b.Len())

	return version, nil
}

func (s *Store) encodeValid(b Backlog) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to write %s: %w", s.path, err)
	}

	return Encode(b)
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	start := time.Now()

	lock, err := s.locker.LockWithTimeout(ctx, s.lockPath, s.lockTimeout)
	if err != nil {
		return fmt.Errorf("locking %s: %w", s.path, err)
	}

	s.log.Debug("lock acquired", "waited", time.Since(start))

	defer func() {
		if err := lock.Close(); err != nil {
			s.log.Warn("releasing lock", "error", err)
		}
	}()

	return fn()
}

func short(v Version) string {
	if v == "" {
		return "(none)"
	}

	if len(v) > 12 {
		return string(v[:12])
	}

	return string(v)
}
