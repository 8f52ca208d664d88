package bfi

// seekPK scans pages 0..totalPages for a record whose PK column equals
// pk, stopping at the first match (ported from bfi_seek_pk in
// original_source/src/bfi_v2.c). It leaves the active page at the
// page containing the match, or at the last page scanned if pk is not
// found.
func (idx *Index) seekPK(pk uint32) (page, offset int, found bool, err error) {
	for p := 0; p < idx.totalPages; p++ {
		if err := idx.loadPage(p); err != nil {
			return 0, 0, false, err
		}
		for r := 0; r < RecordsPerPage; r++ {
			if idx.readPK(r) == pk {
				return p, r, true, nil
			}
		}
	}
	return 0, 0, false, nil
}
