package bfi

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Options configures Open. Only Path and Format are required; the
// rest have zero-value defaults, following the Options-struct idiom
// for optional configuration used elsewhere in this style of codebase
// (e.g. calvinalkan-agent-task's slotcache.Options).
type Options struct {
	// Path is the index file to create or open.
	Path string

	// Format is the Bloom filter width in bytes: Format128 or
	// Format256. On an existing file it must match the format the
	// file was created with, or Open returns ErrFormat.
	Format uint16

	// Logger receives progress lines for page growth and Compact.
	// Defaults to a discarding logger.
	Logger *log.Logger
}

// Index is a handle to an open Bloom filter index file. The zero
// value is not usable; construct one with Open or OpenFile.
//
// Index is single-threaded and single-writer: no internal locking is
// provided, and sharing one file between independent handles is
// undefined behavior. Close must be called exactly once per
// successful Open/OpenFile.
type Index struct {
	file   *os.File
	path   string
	format uint16
	pageSz int64
	logger *log.Logger

	hdr header

	totalPages  int
	currentPage int
	mapped      []byte
	pks         []byte
	cols        []byte

	closed bool
}

// OpenFile is a convenience wrapper around Open for the common case of
// just needing a path and a format.
func OpenFile(path string, format uint16) (*Index, error) {
	return Open(Options{Path: path, Format: format})
}

// Open creates or opens an index file:
//
//  1. Open the file read/write, creating it with mode 0600 if absent.
//  2. Read the header. A freshly created (empty) file is initialized
//     with the requested format and zero counters.
//  3. An existing file is validated: magic, version and format must
//     match, or Open fails with ErrMagic, ErrVersion or ErrFormat and
//     no handle is returned.
//
// The memory map is left unallocated; the first page access creates it.
func Open(opts Options) (*Index, error) {
	if !validFormat(opts.Format) {
		return nil, ErrBadFormat
	}

	file, err := os.OpenFile(opts.Path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("bfi: open %s: %w", opts.Path, err)
	}

	hdr, err := readOrCreateHeader(file, opts.Format)
	if err != nil {
		file.Close()
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	idx := &Index{
		file:        file,
		path:        opts.Path,
		format:      opts.Format,
		pageSz:      pageSize(opts.Format),
		logger:      logger,
		hdr:         hdr,
		totalPages:  totalPagesFor(hdr.records),
		currentPage: -1,
	}
	return idx, nil
}

// readOrCreateHeader reads the header of an existing file, or
// initializes and writes one for a brand new, empty file.
func readOrCreateHeader(file *os.File, format uint16) (header, error) {
	buf := make([]byte, headerSize)
	n, err := file.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return header{}, fmt.Errorf("bfi: read header: %w", err)
	}

	if n == 0 {
		hdr := header{magic: magicNumber, version: currentVersion, format: format}
		hdr.encode(buf)
		if _, err := file.WriteAt(buf, 0); err != nil {
			return header{}, fmt.Errorf("bfi: write header: %w", err)
		}
		return hdr, nil
	}

	hdr := decodeHeader(buf)
	if err := hdr.validate(format); err != nil {
		return header{}, err
	}
	return hdr, nil
}

func (idx *Index) logf(format string, args ...any) {
	idx.logger.Printf(format, args...)
}

// Close flushes pending changes, releases the memory mapping and
// closes the underlying file descriptor. It must be called exactly
// once per successful Open.
func (idx *Index) Close() error {
	if idx.closed {
		return ErrClosed
	}
	idx.closed = true

	var firstErr error
	if err := idx.syncLocked(); err != nil {
		firstErr = err
	}
	if err := idx.unmapLocked(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := idx.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Sync flushes the currently active page and the header to disk
// (best-effort durability) and returns the current records count.
func (idx *Index) Sync() (uint32, error) {
	if idx.closed {
		return 0, ErrClosed
	}
	if err := idx.syncLocked(); err != nil {
		return 0, err
	}
	return idx.hdr.records, nil
}

// syncLocked writes the header either through the mapped region (if a
// page has ever been loaded) or directly to the file (a brand new,
// page-less index).
func (idx *Index) syncLocked() error {
	if idx.mapped != nil {
		return idx.flushLocked()
	}
	buf := make([]byte, headerSize)
	idx.hdr.encode(buf)
	if _, err := idx.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("bfi: sync header: %w", err)
	}
	return nil
}

// Stat describes the state of an open index, including the persisted
// Deleted/tombstone counter alongside the basic record and page counts.
type Stat struct {
	Version        uint8
	Records        uint32 // live records: header records minus tombstones
	Deleted        uint32 // tombstone count
	Pages          int
	RecordsPerPage int
	BloomSize      uint16
	PageSize       int64
	Size           int64
}

// Stat reports the current counters and sizing of the index.
func (idx *Index) Stat() (Stat, error) {
	if idx.closed {
		return Stat{}, ErrClosed
	}
	size := int64(headerSize)
	if idx.totalPages > 0 {
		size = headerSize + int64(idx.totalPages)*idx.pageSz + 1
	}
	return Stat{
		Version:        currentVersion,
		Records:        idx.hdr.records - idx.hdr.deleted,
		Deleted:        idx.hdr.deleted,
		Pages:          idx.totalPages,
		RecordsPerPage: RecordsPerPage,
		BloomSize:      idx.format,
		PageSize:       idx.pageSz,
		Size:           size,
	}, nil
}

// Append writes a new slot at the end of the index without checking
// for an existing pk: it is the fast bulk-rebuild path, and using it
// with a duplicate pk produces an inconsistent index with duplicate
// entries by design — that is the caller's responsibility.
func (idx *Index) Append(pk uint32, values [][]byte) error {
	if idx.closed {
		return ErrClosed
	}
	if len(values) == 0 {
		return ErrEmptyValues
	}
	return idx.appendFilter(pk, GenerateFilter(values, idx.format))
}

// appendFilter is Append's body factored out so Insert can append a
// filter it has already computed without regenerating it from values.
func (idx *Index) appendFilter(pk uint32, filter []byte) error {
	page := int(idx.hdr.records) / RecordsPerPage
	offset := int(idx.hdr.records) % RecordsPerPage

	if err := idx.loadPage(page); err != nil {
		return err
	}
	idx.writeSlot(offset, pk, filter)
	idx.hdr.records++
	return nil
}

// Insert upserts values for pk: an existing slot for pk is overwritten
// in place; otherwise a reused tombstone or a fresh slot is allocated.
// pk == 0 is rejected since it is reserved for tombstones.
func (idx *Index) Insert(pk uint32, values [][]byte) error {
	if idx.closed {
		return ErrClosed
	}
	if pk == 0 {
		return ErrReservedPK
	}
	if len(values) == 0 {
		return ErrEmptyValues
	}

	filter := GenerateFilter(values, idx.format)

	page, offset, found, err := idx.seekPK(pk)
	if err != nil {
		return err
	}
	if found {
		if err := idx.loadPage(page); err != nil {
			return err
		}
		idx.writeSlot(offset, pk, filter)
		return nil
	}

	if idx.hdr.deleted > 0 {
		tpage, toffset, tombFound, err := idx.seekPK(0)
		if err != nil {
			return err
		}
		if tombFound {
			if err := idx.loadPage(tpage); err != nil {
				return err
			}
			idx.writeSlot(toffset, pk, filter)
			idx.hdr.deleted--
			return nil
		}
	}

	return idx.appendFilter(pk, filter)
}

// Delete removes pk from the index by writing a tombstone (pk 0, an
// all-zero filter) in its slot. records is not decremented; the slot
// is reused by a future Insert. Returns ErrNotFound if pk is absent.
func (idx *Index) Delete(pk uint32) error {
	if idx.closed {
		return ErrClosed
	}
	if pk == 0 {
		return ErrReservedPK
	}

	page, offset, found, err := idx.seekPK(pk)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	if err := idx.loadPage(page); err != nil {
		return err
	}
	idx.writeSlot(offset, 0, make([]byte, idx.format))
	idx.hdr.deleted++
	return nil
}

// Lookup returns every live primary key whose stored filter is a
// superset of the filter generated from values. Results are ordered by
// (page, offset): insertion order modulo in-place updates and
// tombstone reuse. Primary key 0 (tombstones) is always skipped.
func (idx *Index) Lookup(values [][]byte) ([]uint32, error) {
	if idx.closed {
		return nil, ErrClosed
	}
	if len(values) == 0 {
		return nil, ErrEmptyValues
	}

	query := GenerateFilter(values, idx.format)
	var results []uint32

	for p := 0; p < idx.totalPages; p++ {
		if err := idx.loadPage(p); err != nil {
			return nil, err
		}

		var match [RecordsPerPage]bool
		for r := range match {
			match[r] = true
		}

		for b, qb := range query {
			if qb == 0 {
				continue // a zero query byte cannot exclude any record
			}
			stripe := idx.stripe(b)
			for r := 0; r < RecordsPerPage; r++ {
				if !match[r] {
					continue
				}
				if stripe[r]&qb != qb {
					match[r] = false
				}
			}
		}

		for r := 0; r < RecordsPerPage; r++ {
			if !match[r] {
				continue
			}
			pk := idx.readPK(r)
			if pk == 0 {
				continue
			}
			results = append(results, pk)
		}
	}

	return results, nil
}

// ForEach walks every live (non-tombstone) slot in physical (page,
// offset) order, calling fn with the primary key and a copy of its
// stored filter. Iteration stops early if fn returns false. ForEach is
// not primary-key-ordered iteration — it is the same unordered,
// physical-order walk Lookup already performs, exposed directly since
// Compact needs it and it costs nothing extra to export.
func (idx *Index) ForEach(fn func(pk uint32, filter []byte) bool) error {
	if idx.closed {
		return ErrClosed
	}
	for p := 0; p < idx.totalPages; p++ {
		if err := idx.loadPage(p); err != nil {
			return err
		}
		for r := 0; r < RecordsPerPage; r++ {
			pk := idx.readPK(r)
			if pk == 0 {
				continue
			}
			if !fn(pk, idx.readFilter(r)) {
				return nil
			}
		}
	}
	return nil
}
