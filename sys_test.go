package stuffer

import (
	"testing"

	"golang.org/x/sys/unix"
)

// fakeSyscalls delegates to the real system calls unless a hook is set.
type fakeSyscalls struct {
	unixSyscalls

	read   func(fd int, p []byte) (int, error)
	write  func(fd int, p []byte) (int, error)
	fstat  func(fd int, st *unix.Stat_t) error
	mmap   func(fd int, length int) ([]byte, error)
	open   func(path string) (int, error)
	close  func(fd int) error
	munmap func(b []byte) error

	opened, closed []int
	unmapped       int
}

func (f *fakeSyscalls) Read(fd int, p []byte) (int, error) {
	if f.read != nil {
		return f.read(fd, p)
	}
	return f.unixSyscalls.Read(fd, p)
}

func (f *fakeSyscalls) Write(fd int, p []byte) (int, error) {
	if f.write != nil {
		return f.write(fd, p)
	}
	return f.unixSyscalls.Write(fd, p)
}

func (f *fakeSyscalls) Fstat(fd int, st *unix.Stat_t) error {
	if f.fstat != nil {
		return f.fstat(fd, st)
	}
	return f.unixSyscalls.Fstat(fd, st)
}

func (f *fakeSyscalls) Mmap(fd int, length int) ([]byte, error) {
	if f.mmap != nil {
		return f.mmap(fd, length)
	}
	return f.unixSyscalls.Mmap(fd, length)
}

func (f *fakeSyscalls) Munmap(b []byte) error {
	if f.munmap != nil {
		if err := f.munmap(b); err != nil {
			return err
		}
	}
	if err := f.unixSyscalls.Munmap(b); err != nil {
		return err
	}
	f.unmapped++
	return nil
}

func (f *fakeSyscalls) Open(path string) (int, error) {
	var (
		fd  int
		err error
	)
	if f.open != nil {
		fd, err = f.open(path)
	} else {
		fd, err = f.unixSyscalls.Open(path)
	}
	if err == nil {
		f.opened = append(f.opened, fd)
	}
	return fd, err
}

func (f *fakeSyscalls) Close(fd int) error {
	// the descriptor is always released, like close(2) does on linux
	err := f.unixSyscalls.Close(fd)
	if err == nil {
		f.closed = append(f.closed, fd)
	}
	if f.close != nil {
		return f.close(fd)
	}
	return err
}

func withSyscalls(tb testing.TB, f *fakeSyscalls) *fakeSyscalls {
	tb.Helper()
	prev := sys
	sys = f
	tb.Cleanup(func() {
		sys = prev
	})
	return f
}

func withSsizeMax(tb testing.TB, limit uint64) {
	tb.Helper()
	prev := ssizeMax
	ssizeMax = limit
	tb.Cleanup(func() {
		ssizeMax = prev
	})
}

// interruptOnce returns EINTR on the first call and then delegates to fn.
func interruptOnce(fn func(fd int, p []byte) (int, error)) (func(fd int, p []byte) (int, error), *int) {
	calls := 0
	return func(fd int, p []byte) (int, error) {
		calls++
		if calls == 1 {
			return -1, unix.EINTR
		}
		return fn(fd, p)
	}, &calls
}

type transfer struct {
	op                     string
	requested, transferred uint32
}

// recordingMetrics keeps every observation in memory.
type recordingMetrics struct {
	transfers []transfer
	retries   []string
	mapped    int64
}

func (m *recordingMetrics) ObserveTransfer(op string, requested, transferred uint32) {
	m.transfers = append(m.transfers, transfer{op: op, requested: requested, transferred: transferred})
}

func (m *recordingMetrics) ObserveRetry(op string) {
	m.retries = append(m.retries, op)
}

func (m *recordingMetrics) ObserveMapping(bytes int64, mapped bool) {
	if mapped {
		m.mapped += bytes
	} else {
		m.mapped -= bytes
	}
}
