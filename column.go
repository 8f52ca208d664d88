package bfi

import "encoding/binary"

// readPK returns the primary key stored at record offset o of the
// active page's PK column.
func (idx *Index) readPK(o int) uint32 {
	return binary.LittleEndian.Uint32(idx.pks[o*4 : o*4+4])
}

// writeSlot scatters pk and filter across the active page's columns at
// record offset o: the PK column gets a plain little-endian uint32,
// and each filter byte b lands in the contiguous b-th stripe at
// position o — the column-major layout that lets Lookup AND one query
// byte against an entire RecordsPerPage-byte stripe in one pass.
func (idx *Index) writeSlot(o int, pk uint32, filter []byte) {
	binary.LittleEndian.PutUint32(idx.pks[o*4:o*4+4], pk)
	for b, fb := range filter {
		idx.cols[b*RecordsPerPage+o] = fb
	}
}

// readFilter reconstructs the filter stored at record offset o of the
// active page by gathering one byte from each stripe.
func (idx *Index) readFilter(o int) []byte {
	filter := make([]byte, idx.format)
	for b := range filter {
		filter[b] = idx.cols[b*RecordsPerPage+o]
	}
	return filter
}

// stripe returns the full RecordsPerPage-byte column for filter byte
// position b of the active page.
func (idx *Index) stripe(b int) []byte {
	return idx.cols[b*RecordsPerPage : b*RecordsPerPage+RecordsPerPage]
}
