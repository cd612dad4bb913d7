package stuffer

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// ReadOnly is a fully written buffer backed by a private read-only file mapping.
// It exposes only the reading side of Stuffer. Close unmaps the file.
type ReadOnly struct {
	s *Stuffer
}

// AllocROFromFd maps the file behind fd. fd must be open for reading and
// remains owned by the caller; the mapping stays valid after fd is closed.
//
// The file size must be in (0, math.MaxUint32].
func AllocROFromFd(fd int, opts ...Option) (*ReadOnly, error) {
	cfg := newConfig(opts)
	var st unix.Stat_t
	if err := sys.Fstat(fd, &st); err != nil {
		return nil, sysError(ErrStat, fmt.Sprintf("fd %d", fd), err)
	}
	if st.Size <= 0 || st.Size > math.MaxUint32 || uint64(st.Size) > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: fd %d has %d bytes", ErrFileSize, fd, st.Size)
	}
	data, err := sys.Mmap(fd, int(st.Size))
	if err != nil {
		return nil, sysError(ErrMmap, fmt.Sprintf("fd %d", fd), err)
	}
	if int64(len(data)) != st.Size {
		_ = sys.Munmap(data)
		return nil, fmt.Errorf("%w: fd %d mapped %d out of %d bytes", ErrMmap, fd, len(data), st.Size)
	}
	if cfg.metrics != nil {
		cfg.metrics.ObserveMapping(st.Size, true)
	}
	cfg.logger.Debug("mapped file", "fd", fd, "bytes", st.Size)
	return &ReadOnly{s: newStuffer(&mapping{data: data}, uint32(st.Size), cfg)}, nil
}

// AllocROFromFile opens path read-only, maps it with AllocROFromFd and closes
// the descriptor before returning.
//
// If closing fails the mapping is released and the close error is returned,
// even when mapping failed as well.
func AllocROFromFile(path string, opts ...Option) (*ReadOnly, error) {
	cfg := newConfig(opts)
	fd, err := retryIf(interrupted, nil, func() (int, error) {
		return sys.Open(path)
	})
	if err != nil {
		return nil, sysError(ErrOpen, path, err)
	}
	if fd < 0 {
		return nil, fmt.Errorf("%w: %s: invalid descriptor %d", ErrOpen, path, fd)
	}

	ro, loadErr := AllocROFromFd(fd, opts...)

	// close(2) is not retried on EINTR, the descriptor is released either way on linux.
	if err := sys.Close(fd); err != nil {
		closeErr := sysError(ErrClose, path, err)
		if loadErr != nil {
			cfg.logger.Warn("load error superseded by close error",
				"path", path, "load_error", loadErr, "error", closeErr)
			return nil, closeErr
		}
		if err := ro.Close(); err != nil {
			cfg.logger.Error("failed to release mapping after close error", "path", path, "error", err)
		}
		return nil, closeErr
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return ro, nil
}

// SendToFd writes up to n unread bytes to fd. See Stuffer.SendToFd.
func (r *ReadOnly) SendToFd(fd int, n uint32) (uint32, error) {
	return r.s.SendToFd(fd, n)
}

// Read implements io.Reader.
func (r *ReadOnly) Read(p []byte) (int, error) {
	return r.s.Read(p)
}

// Bytes returns the unread part of the mapping. It is invalid after Close.
func (r *ReadOnly) Bytes() []byte {
	return r.s.Bytes()
}

func (r *ReadOnly) Len() int {
	return r.s.Len()
}

func (r *ReadOnly) Cap() int {
	return r.s.Cap()
}

func (r *ReadOnly) ReadCursor() uint32 {
	return r.s.ReadCursor()
}

func (r *ReadOnly) WriteCursor() uint32 {
	return r.s.WriteCursor()
}

func (r *ReadOnly) Reread() error {
	return r.s.Reread()
}

func (r *ReadOnly) Validate() error {
	return r.s.Validate()
}

// Close unmaps the file. Subsequent calls return nil.
func (r *ReadOnly) Close() error {
	return r.s.Close()
}
