//go:build unix

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const mmapSupported = true

// mapAnon maps size bytes of private anonymous memory. The kernel hands the
// pages back zero-filled.
func mapAnon(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	return data, nil
}
