// Package shm allocates shared memory for display server buffers.
package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Memory is a shared memory mapping backed by a file descriptor.
type Memory struct {
	fd   int
	data []byte
}

// Allocate maps size bytes of anonymous shared memory.
func Allocate(size int) (*Memory, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid shared memory size %d", size)
	}

	fd, err := unix.MemfdCreate("riverbar-shm", unix.MFD_CLOEXEC)
	if err != nil {
		fd, err = createFile()
		if err != nil {
			return nil, err
		}
	}

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return &Memory{fd: fd, data: data}, nil
}

// createFile creates an unlinked file in XDG_RUNTIME_DIR for kernels without memfd.
func createFile() (int, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return -1, errors.New("XDG_RUNTIME_DIR is not set")
	}

	path := filepath.Join(dir, "riverbar-"+uuid.NewString())
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return -1, err
	}
	defer f.Close()

	if err := os.Remove(path); err != nil {
		return -1, err
	}

	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return -1, fmt.Errorf("dup: %w", err)
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func (m *Memory) Fd() int {
	return m.fd
}

func (m *Memory) Size() int {
	return len(m.data)
}

func (m *Memory) Bytes() []byte {
	return m.data
}

// Slice returns n bytes starting at offset.
func (m *Memory) Slice(offset, n int) []byte {
	return m.data[offset : offset+n : offset+n]
}

func (m *Memory) Close() error {
	return errors.Join(unix.Munmap(m.data), unix.Close(m.fd))
}
