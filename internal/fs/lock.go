package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned when the lock is still held by someone else
	// after the timeout expires.
	ErrWouldBlock = errors.New("lock would block")

	// ErrInvalidTimeout is returned when a timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid lock timeout")

	errInodeMismatch = errors.New("inode mismatch")
)

const (
	lockFilePerm = 0o600
	maxBackoff   = 25 * time.Millisecond
)

// Locker takes exclusive advisory flock(2) locks on lock files.
//
// Locks are advisory: every writer must go through a Locker for them to mean
// anything. Lock a dedicated lock file, never the data file itself, because
// the data file is replaced by rename on every write.
type Locker struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewLocker creates a Locker that opens lock files through fsys.
func NewLocker(fsys FS) *Locker {
	return &Locker{fs: fsys, flock: unix.Flock}
}

// Lock is a held lock. Call [Lock.Close] to release it.
type Lock struct {
	mu    sync.Mutex
	file  File
	flock func(fd int, how int) error
}

// Close releases the lock. It is safe to call more than once.
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	unlockErr := flockRetryEINTR(lk.flock, int(lk.file.Fd()), unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock file: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// LockWithTimeout acquires an exclusive lock on path, polling with
// exponential backoff (1ms up to 25ms) until timeout expires or ctx is done.
// The lock file and its directory are created when missing.
//
// Returns an error wrapping [ErrWouldBlock] on timeout, ctx.Err() on
// cancellation and [ErrInvalidTimeout] if timeout <= 0.
func (l *Locker) LockWithTimeout(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeout, timeout)
	}

	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		lock, err := l.tryLock(path)
		if err == nil {
			return lock, nil
		}

		if !errors.Is(err, ErrWouldBlock) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s held for more than %s", ErrWouldBlock, path, timeout)
		}

		timer := time.NewTimer(min(backoff, remaining))

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (l *Locker) tryLock(path string) (*Lock, error) {
	file, err := l.open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	fd := int(file.Fd())

	if err := flockRetryEINTR(l.flock, fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return nil, ErrWouldBlock
		}

		return nil, fmt.Errorf("flock: %w", err)
	}

	// flock locks the inode. If the path was replaced between open and
	// flock we hold a lock nobody else will see; retry on the new file.
	same, err := l.samePath(path, file)
	if err != nil || !same {
		_ = flockRetryEINTR(l.flock, fd, unix.LOCK_UN)
		_ = file.Close()

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("verifying lock file: %w", err)
		}

		return nil, errInodeMismatch
	}

	return &Lock{file: file, flock: l.flock}, nil
}

func (l *Locker) open(path string) (File, error) {
	f, err := l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, err
	}

	return l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
}

func (l *Locker) samePath(path string, f File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	pathInfo, err := l.fs.Stat(path)
	if err != nil {
		return false, err
	}

	a, okA := openInfo.Sys().(*syscall.Stat_t)
	b, okB := pathInfo.Sys().(*syscall.Stat_t)

	if !okA || !okB {
		return false, fmt.Errorf("stat of %s is %T, want *syscall.Stat_t", path, pathInfo.Sys())
	}

	return a.Dev == b.Dev && a.Ino == b.Ino, nil
}

// flockRetryEINTR retries flock when a signal interrupts it, with a cap so a
// signal storm cannot spin forever.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	const maxRetries = 10000

	var err error
	for range maxRetries {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
