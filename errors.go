package stuffer

import (
	"errors"
	"fmt"
)

var (
	// ErrRead returned if read(2) on the source descriptor failed.
	ErrRead = errors.New("read failed")
	// ErrWrite returned if write(2) on the sink descriptor failed.
	ErrWrite = errors.New("write failed")
	// ErrStat returned if fstat(2) failed.
	ErrStat = errors.New("fstat failed")
	// ErrMmap returned if the file couldn't be mapped.
	ErrMmap = errors.New("mmap failed")
	// ErrOpen returned if the file couldn't be opened.
	ErrOpen = errors.New("open failed")
	// ErrClose returned if the descriptor couldn't be closed.
	ErrClose = errors.New("close failed")
	// ErrFileSize returned if a file is empty or larger than math.MaxUint32.
	ErrFileSize = errors.New("invalid file size")

	// ErrInvariant returned if cursors or storage are inconsistent.
	ErrInvariant = errors.New("invariant violation")
	// ErrFull returned if a fixed buffer has no space for the requested write.
	ErrFull = errors.New("buffer is full")
	// ErrOutOfData returned if fewer unread bytes exist than requested.
	ErrOutOfData = errors.New("out of data")
	// ErrOverflow returned if a cursor would exceed math.MaxUint32.
	ErrOverflow = errors.New("cursor overflow")
	// ErrReadOnly returned on attempts to write into mapped storage.
	ErrReadOnly = errors.New("read-only")
	// ErrClosed returned if the buffer storage was released.
	ErrClosed = errors.New("closed")
)

// sysError joins the kind with the errno, so that callers can match on either.
func sysError(kind error, op string, err error) error {
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}
