package bfi

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// snapshotMagic identifies a BFI snapshot stream, in the same
// magic-header-then-compressed-payload shape as entreya-csvquery's
// cidx.go block format (MagicCIDX there, "BFIZ" here).
const snapshotMagic = "BFIZ"

// Snapshot writes a compressed, point-in-time copy of the index to w:
// a small plaintext header (magic + the 16-byte on-disk header) and
// an lz4-compressed stream of every allocated page's bytes. It is a
// backup/export facility, not a replacement for the live file's own
// durability story: there is no sidecar or journal for the live index,
// but a compressed export does not conflict with that.
func (idx *Index) Snapshot(w io.Writer) error {
	if idx.closed {
		return ErrClosed
	}
	if err := idx.syncLocked(); err != nil {
		return fmt.Errorf("bfi: snapshot: flush before export: %w", err)
	}

	if _, err := io.WriteString(w, snapshotMagic); err != nil {
		return fmt.Errorf("bfi: snapshot: write magic: %w", err)
	}
	hdrBuf := make([]byte, headerSize)
	idx.hdr.encode(hdrBuf)
	if _, err := w.Write(hdrBuf); err != nil {
		return fmt.Errorf("bfi: snapshot: write header: %w", err)
	}

	if idx.totalPages > 0 && idx.mapped == nil {
		if err := idx.loadPage(0); err != nil {
			return fmt.Errorf("bfi: snapshot: map pages: %w", err)
		}
	}

	lzw := lz4.NewWriter(w)
	if idx.mapped != nil {
		if _, err := lzw.Write(idx.mapped[headerSize:]); err != nil {
			return fmt.Errorf("bfi: snapshot: compress pages: %w", err)
		}
	}
	if err := lzw.Close(); err != nil {
		return fmt.Errorf("bfi: snapshot: finish compression: %w", err)
	}
	return nil
}

// RestoreSnapshot reconstructs an index file at path from a stream
// written by Snapshot, and opens it. path must not already exist as a
// live index the caller cares about: RestoreSnapshot truncates it.
func RestoreSnapshot(r io.Reader, path string) (*Index, error) {
	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("bfi: restore: read magic: %w", err)
	}
	if !bytes.Equal(magic, []byte(snapshotMagic)) {
		return nil, fmt.Errorf("bfi: restore: not a bfi snapshot stream")
	}

	hdrBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		return nil, fmt.Errorf("bfi: restore: read header: %w", err)
	}
	hdr := decodeHeader(hdrBuf)
	if hdr.magic != magicNumber {
		return nil, ErrMagic
	}
	if hdr.version != currentVersion {
		return nil, ErrVersion
	}
	if !validFormat(hdr.format) {
		return nil, ErrBadFormat
	}

	out, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("bfi: restore: create %s: %w", path, err)
	}

	if _, err := out.Write(hdrBuf); err != nil {
		out.Close()
		return nil, fmt.Errorf("bfi: restore: write header: %w", err)
	}

	lzr := lz4.NewReader(r)
	if _, err := io.Copy(out, lzr); err != nil {
		out.Close()
		return nil, fmt.Errorf("bfi: restore: decompress pages: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("bfi: restore: close %s: %w", path, err)
	}

	return OpenFile(path, hdr.format)
}
