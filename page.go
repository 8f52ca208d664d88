package bfi

import (
	"fmt"
	"os"
)

// loadPage makes page p the active page, growing the file by exactly
// one page if p does not exist yet, ported from
// original_source/src/bfi_v2.c's bfi_load_mapped_page: the file is
// extended by seeking past the new page's end and writing a single
// zero byte, which is cheaper than zero-filling the whole page and
// relies on the filesystem treating the gap as a hole.
func (idx *Index) loadPage(p int) error {
	if p == idx.currentPage {
		return nil
	}

	if p >= idx.totalPages {
		if err := idx.unmapLocked(); err != nil {
			return fmt.Errorf("bfi: unmap before growth: %w", err)
		}

		growTo := headerSize + int64(p+1)*idx.pageSz
		if _, err := idx.file.WriteAt([]byte{0}, growTo); err != nil {
			return fmt.Errorf("bfi: extend file to page %d: %w", p, err)
		}
		idx.totalPages = p + 1
		idx.logf("grew index to %d page(s)", idx.totalPages)
	} else if idx.currentPage >= 0 {
		// Switching between pages of the existing mapping: flush the
		// page being left, and the header, before moving on.
		if err := idx.flushLocked(); err != nil {
			return err
		}
	}

	if idx.mapped == nil {
		length := int(headerSize + int64(idx.totalPages)*idx.pageSz)
		data, err := mmapFile(int(idx.file.Fd()), length)
		if err != nil {
			return fmt.Errorf("bfi: mmap: %w", err)
		}
		idx.mapped = data
	}

	pageStart := headerSize + int64(p)*idx.pageSz
	idx.pks = idx.mapped[pageStart : pageStart+pkColumnSize]
	idx.cols = idx.mapped[pageStart+pkColumnSize : pageStart+idx.pageSz]
	idx.currentPage = p
	return nil
}

// unmapLocked releases the current memory mapping, if any, after
// flushing the active page and header. The caller must not use idx.pks
// / idx.cols until the next loadPage.
func (idx *Index) unmapLocked() error {
	if idx.mapped == nil {
		return nil
	}
	if err := idx.flushLocked(); err != nil {
		return err
	}
	if err := munmapFile(idx.mapped); err != nil {
		return fmt.Errorf("bfi: munmap: %w", err)
	}
	idx.mapped = nil
	idx.pks = nil
	idx.cols = nil
	idx.currentPage = -1
	return nil
}

// flushLocked writes the in-memory header into the mapped region and
// msyncs the active page plus the header range to disk. It is a no-op
// if nothing has ever been mapped.
func (idx *Index) flushLocked() error {
	if idx.mapped == nil {
		return nil
	}
	idx.hdr.encode(idx.mapped[:headerSize])
	if err := msyncRange(idx.mapped[:headerSize]); err != nil {
		return fmt.Errorf("bfi: msync header: %w", err)
	}
	if idx.currentPage >= 0 {
		pageStart := headerSize + int64(idx.currentPage)*idx.pageSz
		// msync needs a page-aligned start address; the mapping itself
		// starts page-aligned, so round the page's offset down.
		syncStart := pageStart &^ (int64(os.Getpagesize()) - 1)
		if err := msyncRange(idx.mapped[syncStart : pageStart+idx.pageSz]); err != nil {
			return fmt.Errorf("bfi: msync page %d: %w", idx.currentPage, err)
		}
	}
	return nil
}
