//go:build windows

package bfi

import "errors"

// errUnsupportedPlatform is returned on platforms without a mmap
// implementation. Unlike entreya-csvquery's mmap_windows.go, which
// falls back to io.ReadAll, this package cannot use a read-only
// fallback: the column store requires a writable, shared mapping so
// in-place slot updates are visible to Sync without a separate
// write-back path. A real port would wire CreateFileMapping/MapViewOfFile
// here; that is out of scope for this module.
var errUnsupportedPlatform = errors.New("bfi: memory-mapped storage is not implemented on this platform")

func mmapFile(fd int, length int) ([]byte, error) {
	return nil, errUnsupportedPlatform
}

func munmapFile(data []byte) error {
	return errUnsupportedPlatform
}

func msyncRange(data []byte) error {
	return errUnsupportedPlatform
}
