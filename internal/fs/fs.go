// Package fs is the small filesystem surface the backlog store needs: whole
// file reads, atomic replacement, and advisory locking.
//
// [Real] talks to the operating system. [Faulty] wraps another [FS] and fails
// selected operations so callers can test that a failed write leaves the
// previous file intact.
package fs

import (
	"io"
	"os"
)

// File is an open file descriptor. [os.File] satisfies it.
type File interface {
	io.ReadWriteCloser

	// Fd returns the descriptor, used for flock.
	Fd() uintptr

	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations used by this module.
type FS interface {
	// ReadFile reads an entire file. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces path with data via a temp file and rename,
	// so readers observe either the old or the new content, never a mix.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// OpenFile opens a file with the given flags. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// MkdirAll creates a directory and its parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether path exists. Returns (false, nil) if it does
	// not and (false, err) on other errors.
	Exists(path string) (bool, error)
}

// Compile-time interface checks.
var (
	_ File = (*os.File)(nil)
	_ FS   = (*Real)(nil)
	_ FS   = (*Faulty)(nil)
)
