package bfi

import "errors"

// Sentinel errors returned by Open and the index operations. Check them
// with errors.Is; wrapped OS errors (mmap, file extension) are joined
// with fmt.Errorf("%w", ...) and unwrap to the underlying error.
var (
	// ErrMagic is returned by Open when the file does not begin with
	// the BFI magic number.
	ErrMagic = errors.New("bfi: bad magic number")

	// ErrVersion is returned by Open when the file's header version
	// does not match the version this package writes.
	ErrVersion = errors.New("bfi: unsupported header version")

	// ErrFormat is returned by Open when the file's Bloom filter width
	// does not match the format requested by the caller.
	ErrFormat = errors.New("bfi: format mismatch")

	// ErrBadFormat is returned by Open when the requested format, and
	// by RestoreSnapshot when the snapshot's format, is not one of the
	// legal Bloom filter widths.
	ErrBadFormat = errors.New("bfi: format must be 128 or 256")

	// ErrReservedPK is returned by Insert and Delete when called with
	// primary key 0, which is reserved for tombstones.
	ErrReservedPK = errors.New("bfi: primary key 0 is reserved")

	// ErrNotFound is returned by Delete when the primary key is not
	// present in the index.
	ErrNotFound = errors.New("bfi: primary key not found")

	// ErrEmptyValues is returned by Append, Insert and Lookup when
	// called with an empty value list.
	ErrEmptyValues = errors.New("bfi: value list must be non-empty")

	// ErrClosed is returned by any operation attempted on a handle
	// after Close has been called.
	ErrClosed = errors.New("bfi: index is closed")
)
