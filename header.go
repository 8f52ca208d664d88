package bfi

import (
	"encoding/binary"
	"fmt"
)

const (
	// magicNumber identifies a valid BFI file. A valid file always
	// begins with the little-endian bytes 0x3E 0x05.
	magicNumber uint16 = 0x053E

	// currentVersion is the header version this package reads and
	// writes. Version 4 widens the original 12-byte v3 header to 16
	// bytes so the tombstone counter survives a restart without a
	// full page rescan (see DESIGN.md, "header.go").
	currentVersion uint8 = 0x04

	// headerSize is the fixed size in bytes of the on-disk header.
	headerSize = 16

	// Format128 and Format256 are the only legal Bloom filter widths.
	Format128 uint16 = 128
	Format256 uint16 = 256

	// RecordsPerPage is the fixed number of records stored in a
	// single page. This is a format invariant, not configurable.
	RecordsPerPage = 512

	pkColumnSize = RecordsPerPage * 4
)

// header is the 16-byte on-disk header, little-endian, packed:
//
//	offset  size  field
//	0       2     magic
//	2       1     version
//	3       1     unused1
//	4       2     format
//	6       2     unused2
//	8       4     records
//	12      4     deleted
type header struct {
	magic    uint16
	version  uint8
	unused1  uint8
	format   uint16
	unused2  uint16
	records  uint32
	deleted  uint32
}

func validFormat(format uint16) bool {
	return format == Format128 || format == Format256
}

func (h *header) encode(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], h.magic)
	buf[2] = h.version
	buf[3] = h.unused1
	binary.LittleEndian.PutUint16(buf[4:6], h.format)
	binary.LittleEndian.PutUint16(buf[6:8], h.unused2)
	binary.LittleEndian.PutUint32(buf[8:12], h.records)
	binary.LittleEndian.PutUint32(buf[12:16], h.deleted)
}

func decodeHeader(buf []byte) header {
	return header{
		magic:   binary.LittleEndian.Uint16(buf[0:2]),
		version: buf[2],
		unused1: buf[3],
		format:  binary.LittleEndian.Uint16(buf[4:6]),
		unused2: binary.LittleEndian.Uint16(buf[6:8]),
		records: binary.LittleEndian.Uint32(buf[8:12]),
		deleted: binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// validate checks a header freshly read from disk against the format
// the caller requested, returning the first mismatch as a sentinel
// error (ErrMagic, ErrVersion or ErrFormat).
func (h *header) validate(wantFormat uint16) error {
	if h.magic != magicNumber {
		return ErrMagic
	}
	if h.version != currentVersion {
		return fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrVersion, h.version, currentVersion)
	}
	if h.format != wantFormat {
		return fmt.Errorf("%w: file has %d, requested %d", ErrFormat, h.format, wantFormat)
	}
	return nil
}

// pageSize returns the size in bytes of one page for this header's
// format: a PK column (RecordsPerPage * 4 bytes) plus one byte-column
// per filter byte (format * RecordsPerPage bytes).
func pageSize(format uint16) int64 {
	return int64(pkColumnSize) + int64(format)*int64(RecordsPerPage)
}

// totalPagesFor computes total_pages = records == 0 ? 0 : records/R + 1.
// Any slot beyond the live record count that still falls on an
// already-allocated page is reserved, all-zero space.
func totalPagesFor(records uint32) int {
	if records == 0 {
		return 0
	}
	return int(records)/RecordsPerPage + 1
}
