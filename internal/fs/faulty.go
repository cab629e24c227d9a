package fs

import (
	"errors"
	"os"
	"sync"
)

// ErrInjected is the error [Faulty] returns for a failed operation.
var ErrInjected = errors.New("injected fault")

// Op names an [FS] operation that [Faulty] can fail.
type Op string

// Operations that can be failed.
const (
	OpReadFile        Op = "ReadFile"
	OpWriteFileAtomic Op = "WriteFileAtomic"
	OpOpenFile        Op = "OpenFile"
	OpMkdirAll        Op = "MkdirAll"
	OpStat            Op = "Stat"
)

// Faulty wraps an [FS] and fails the operations it is told to fail. Failed
// operations do not reach the wrapped FS. Safe for concurrent use.
type Faulty struct {
	inner FS

	mu    sync.Mutex
	fail  map[Op]bool
	calls map[Op]int
}

// NewFaulty wraps inner.
func NewFaulty(inner FS) *Faulty {
	return &Faulty{inner: inner, fail: map[Op]bool{}, calls: map[Op]int{}}
}

// Fail makes every subsequent call of op return [ErrInjected].
func (f *Faulty) Fail(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fail[op] = true
}

// Heal undoes [Faulty.Fail] for op.
func (f *Faulty) Heal(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.fail, op)
}

// Calls returns how often op was invoked, failed calls included.
func (f *Faulty) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *Faulty) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	if f.fail[op] {
		return &os.PathError{Op: string(op), Path: path, Err: ErrInjected}
	}

	return nil
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpReadFile, path); err != nil {
		return nil, err
	}

	return f.inner.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWriteFileAtomic, path); err != nil {
		return err
	}

	return f.inner.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := f.check(OpOpenFile, path); err != nil {
		return nil, err
	}

	return f.inner.OpenFile(path, flag, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}

	return f.inner.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat, path); err != nil {
		return nil, err
	}

	return f.inner.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.check(OpStat, path); err != nil {
		return false, err
	}

	return f.inner.Exists(path)
}
