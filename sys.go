package stuffer

import (
	"golang.org/x/sys/unix"
)

// syscalls is the narrow set of system calls used by the descriptor reader,
// writer and mapped loaders. Tests substitute it to inject EINTR and failures.
type syscalls interface {
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	Fstat(fd int, st *unix.Stat_t) error
	Mmap(fd int, length int) ([]byte, error)
	Munmap(b []byte) error
	Open(path string) (int, error)
	Close(fd int) error
}

var sys syscalls = unixSyscalls{}

type unixSyscalls struct{}

func (unixSyscalls) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (unixSyscalls) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (unixSyscalls) Fstat(fd int, st *unix.Stat_t) error {
	return unix.Fstat(fd, st)
}

// Mmap maps the whole file private and read-only.
func (unixSyscalls) Mmap(fd int, length int) ([]byte, error) {
	return unix.Mmap(fd, 0, length, unix.PROT_READ, unix.MAP_PRIVATE)
}

func (unixSyscalls) Munmap(b []byte) error {
	return unix.Munmap(b)
}

func (unixSyscalls) Open(path string) (int, error) {
	return unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
}

func (unixSyscalls) Close(fd int) error {
	return unix.Close(fd)
}
