package stuffer

import (
	"errors"
	"fmt"
	"math"
)

// ssizeMax is SSIZE_MAX, the largest count accepted by a single read(2) or write(2).
var ssizeMax uint64 = math.MaxInt

// clampTransfer limits n so that it is representable as ssize_t.
func clampTransfer(n uint32) uint32 {
	if uint64(n) > ssizeMax {
		return uint32(ssizeMax)
	}
	return n
}

func (s *Stuffer) onRetry(op string, fd int) func(error) {
	return func(err error) {
		s.logger.Debug("interrupted, retrying", "op", op, "fd", fd, "error", err)
		if s.metrics != nil {
			s.metrics.ObserveRetry(op)
		}
	}
}

// released reports a closed buffer as a failed transfer of the given kind.
func released(kind error, err error) error {
	if errors.Is(err, ErrClosed) {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

func (s *Stuffer) observe(op string, requested, transferred uint32) {
	if s.metrics != nil {
		s.metrics.ObserveTransfer(op, requested, transferred)
	}
}

// RecvFromFd reads up to n bytes from fd into the writable region and advances
// the write cursor by the number of bytes read. A short read is not an error and
// is not retried; 0 is returned at the end of stream.
//
// Space for all n bytes must be available (or obtainable by growing) before
// anything is read.
func (s *Stuffer) RecvFromFd(fd int, n uint32) (uint32, error) {
	if err := s.Validate(); err != nil {
		return 0, released(ErrRead, err)
	}
	if err := s.reserveWrite(n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	rlen := clampTransfer(n)
	data := s.store.bytes()
	r, err := retryIf(interrupted, s.onRetry("recv", fd), func() (int, error) {
		return sys.Read(fd, data[s.write:s.write+rlen])
	})
	if err != nil {
		return 0, sysError(ErrRead, fmt.Sprintf("fd %d", fd), err)
	}
	if r < 0 || uint64(r) > uint64(rlen) {
		return 0, fmt.Errorf("%w: %w: read(2) returned %d for %d bytes", ErrRead, ErrInvariant, r, rlen)
	}
	s.commitWrite(uint32(r))
	s.observe("recv", rlen, uint32(r))
	return uint32(r), nil
}

// SendToFd writes up to n unread bytes to fd and advances the read cursor by the
// number of bytes written. A short write is not an error and is not retried.
//
// At least n unread bytes must exist, otherwise nothing is written.
func (s *Stuffer) SendToFd(fd int, n uint32) (uint32, error) {
	if err := s.Validate(); err != nil {
		return 0, released(ErrWrite, err)
	}
	if err := s.reserveRead(n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	rlen := clampTransfer(n)
	if s.read > math.MaxUint32-rlen {
		rlen = math.MaxUint32 - s.read
	}
	data := s.store.bytes()
	w, err := retryIf(interrupted, s.onRetry("send", fd), func() (int, error) {
		return sys.Write(fd, data[s.read:s.read+rlen])
	})
	if err != nil {
		return 0, sysError(ErrWrite, fmt.Sprintf("fd %d", fd), err)
	}
	if w < 0 || uint64(w) > uint64(rlen) {
		return 0, fmt.Errorf("%w: %w: write(2) returned %d for %d bytes", ErrWrite, ErrInvariant, w, rlen)
	}
	s.commitRead(uint32(w))
	s.observe("send", rlen, uint32(w))
	return uint32(w), nil
}
