//go:build unix

package bfi

import "golang.org/x/sys/unix"

// mmapFile maps the first length bytes of f into memory, read/write,
// shared with the underlying file — the same PROT_READ|PROT_WRITE,
// MAP_SHARED mapping the persistent hash table this package grew out
// of obtained via raw syscall.Mmap, but through golang.org/x/sys/unix,
// the surface entreya-csvquery already depends on (via x/sys/cpu) for
// this kind of low-level platform access.
func mmapFile(fd int, length int) ([]byte, error) {
	return unix.Mmap(fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func munmapFile(data []byte) error {
	return unix.Munmap(data)
}

// msyncRange flushes the given byte range of a memory-mapped region
// back to disk. Rather than rely on the OS's implicit writeback, this
// module calls it explicitly on page switch and Sync so durability
// does not depend on kernel scheduling: Sync flushes the active page
// region and the header region to disk.
func msyncRange(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}
