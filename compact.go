package bfi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// liveSlot is a filter copied out of the index for rebuilding; the
// index itself never retains original values, only the filter.
type liveSlot struct {
	pk     uint32
	filter []byte
}

// Compact rebuilds the index file with every tombstone removed and
// every live record packed contiguously from page 0, reassigning no
// primary keys. Deletions never reclaim pages in this file format;
// Compact is the offline maintenance operation that does, swapping in
// the rebuilt file via natefinch/atomic so the original file is never
// observed half-written.
//
// Compact is not a transaction: it is a single-writer, whole-file
// rebuild consistent with the index's single-threaded model, not an
// attempt at crash-atomic durability, which this format does not
// provide.
func (idx *Index) Compact() error {
	if idx.closed {
		return ErrClosed
	}

	var live []liveSlot
	if err := idx.ForEach(func(pk uint32, filter []byte) bool {
		live = append(live, liveSlot{pk: pk, filter: filter})
		return true
	}); err != nil {
		return fmt.Errorf("bfi: compact: collect live records: %w", err)
	}

	newRecords := uint32(len(live))
	newPages := totalPagesFor(newRecords)
	buf := make([]byte, int64(headerSize)+int64(newPages)*idx.pageSz)

	newHdr := header{magic: magicNumber, version: currentVersion, format: idx.format, records: newRecords}
	newHdr.encode(buf[:headerSize])

	for i, rec := range live {
		page := i / RecordsPerPage
		offset := i % RecordsPerPage
		pageStart := int64(headerSize) + int64(page)*idx.pageSz
		pks := buf[pageStart : pageStart+pkColumnSize]
		cols := buf[pageStart+pkColumnSize : pageStart+idx.pageSz]

		binary.LittleEndian.PutUint32(pks[offset*4:offset*4+4], rec.pk)
		for b, fb := range rec.filter {
			cols[b*RecordsPerPage+offset] = fb
		}
	}

	if err := idx.unmapLocked(); err != nil {
		return fmt.Errorf("bfi: compact: release mapping: %w", err)
	}

	if err := atomic.WriteFile(idx.path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("bfi: compact: replace file: %w", err)
	}

	if err := idx.file.Close(); err != nil {
		return fmt.Errorf("bfi: compact: close old file: %w", err)
	}
	newFile, err := os.OpenFile(idx.path, os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("bfi: compact: reopen: %w", err)
	}

	idx.file = newFile
	idx.hdr = newHdr
	idx.totalPages = newPages
	idx.currentPage = -1

	idx.logf("compacted index %s: %d live record(s) across %d page(s)", idx.path, newRecords, newPages)
	return nil
}
