// Package stuffer implements a bounded byte buffer with independent read and write
// cursors, and moves bytes between it and file descriptors or memory-mapped files.
//
// Cursors are 32-bit: 0 <= ReadCursor <= WriteCursor <= Cap <= math.MaxUint32.
// A Stuffer is not safe for concurrent use.
package stuffer

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

// New allocates heap storage of the given size.
func New(size uint32, opts ...Option) *Stuffer {
	cfg := newConfig(opts)
	return newStuffer(&heap{data: make([]byte, size), growable: cfg.growable}, 0, cfg)
}

// NewGrowable is New with WithGrowable.
func NewGrowable(size uint32, opts ...Option) *Stuffer {
	return New(size, append(opts, WithGrowable())...)
}

func newStuffer(store storage, written uint32, cfg config) *Stuffer {
	return &Stuffer{
		store:   store,
		write:   written,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

type Stuffer struct {
	store       storage
	read, write uint32
	closed      bool

	logger  *slog.Logger
	metrics Metrics
}

// Validate checks that cursors are consistent with storage.
func (s *Stuffer) Validate() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvariant)
	}
	if s.closed {
		return ErrClosed
	}
	size := uint64(len(s.store.bytes()))
	if size > math.MaxUint32 || s.read > s.write || uint64(s.write) > size {
		return fmt.Errorf("%w: read=%d write=%d cap=%d", ErrInvariant, s.read, s.write, size)
	}
	return nil
}

// reserveWrite checks that n more bytes can be written, growing storage if allowed.
// Cursors are not moved.
func (s *Stuffer) reserveWrite(n uint32) error {
	if !s.store.writable() {
		return ErrReadOnly
	}
	end := uint64(s.write) + uint64(n)
	if end > maxStorage {
		return fmt.Errorf("%w: write=%d n=%d", ErrOverflow, s.write, n)
	}
	if end <= uint64(len(s.store.bytes())) {
		return nil
	}
	if err := s.store.grow(uint32(end)); err != nil {
		return fmt.Errorf("%w: space=%d n=%d", err, s.Space(), n)
	}
	return nil
}

func (s *Stuffer) commitWrite(n uint32) {
	s.write += n
}

// reserveRead checks that n unread bytes exist. Cursors are not moved.
func (s *Stuffer) reserveRead(n uint32) error {
	if s.write-s.read < n {
		return fmt.Errorf("%w: unread=%d n=%d", ErrOutOfData, s.write-s.read, n)
	}
	return nil
}

func (s *Stuffer) commitRead(n uint32) {
	s.read += n
}

// Write copies all of p into the buffer or nothing.
func (s *Stuffer) Write(p []byte) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if uint64(len(p)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: n=%d", ErrOverflow, len(p))
	}
	n := uint32(len(p))
	if err := s.reserveWrite(n); err != nil {
		return 0, err
	}
	copy(s.store.bytes()[s.write:], p)
	s.commitWrite(n)
	return len(p), nil
}

// Read consumes up to len(p) unread bytes. Returns io.EOF once everything written was read.
func (s *Stuffer) Read(p []byte) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if s.read == s.write {
		return 0, io.EOF
	}
	n := copy(p, s.store.bytes()[s.read:s.write])
	s.commitRead(uint32(n))
	return n, nil
}

// Bytes returns the unread region. It is valid until the next write or Close.
func (s *Stuffer) Bytes() []byte {
	if s.closed {
		return nil
	}
	return s.store.bytes()[s.read:s.write]
}

// Len returns the number of unread bytes.
func (s *Stuffer) Len() int {
	return int(s.write - s.read)
}

// Cap returns the size of the storage.
func (s *Stuffer) Cap() int {
	return len(s.store.bytes())
}

// Space returns the number of bytes that can be written without growing.
func (s *Stuffer) Space() int {
	return s.Cap() - int(s.write)
}

func (s *Stuffer) ReadCursor() uint32 {
	return s.read
}

func (s *Stuffer) WriteCursor() uint32 {
	return s.write
}

// Reread moves the read cursor back to the start, making written data readable again.
func (s *Stuffer) Reread() error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.read = 0
	return nil
}

// Rewrite resets both cursors, storage is kept.
func (s *Stuffer) Rewrite() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.store.writable() {
		return ErrReadOnly
	}
	s.read, s.write = 0, 0
	return nil
}

// Close releases storage. Mapped storage is unmapped; once that succeeded
// calling Close again is a no-op. If unmapping fails the buffer is left intact
// and Close may be retried.
// Any slice returned by Bytes must not be used after Close.
func (s *Stuffer) Close() error {
	if s.closed {
		return nil
	}
	size := s.Cap()
	if err := s.store.release(); err != nil {
		s.logger.Error("failed to release storage", "bytes", size, "error", err)
		return err
	}
	s.closed = true
	s.read, s.write = 0, 0
	if _, ok := s.store.(*mapping); ok {
		if s.metrics != nil {
			s.metrics.ObserveMapping(int64(size), false)
		}
		s.logger.Debug("released mapping", "bytes", size)
	}
	return nil
}
