package nursery

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("nursery: package not found")
	ErrHashMismatch = errors.New("nursery: hash mismatch")
	ErrCreateDir    = errors.New("nursery: failed to create directory")
	ErrReadFile     = errors.New("nursery: failed to read file")
	ErrWriteFile    = errors.New("nursery: failed to write file")
	ErrUnpack       = errors.New("nursery: failed to unpack archive")
)

// Error describes a failed store operation. It matches its Kind with
// errors.Is and unwraps to the underlying cause.
type Error struct {
	Op   string // operation, e.g. "add" or "activate"
	Kind error  // one of the Err* sentinels
	Path string // file, link or hash involved
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("nursery: ")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimPrefix(e.Kind.Error(), "nursery: "))
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// HashMismatchError is returned by AddBytes when the content does not hash to
// the expected value.
type HashMismatchError struct {
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("nursery: hash mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *HashMismatchError) Is(target error) bool {
	return target == ErrHashMismatch
}
