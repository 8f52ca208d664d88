/*
Package bfi provides a persistent Bloom filter index: a single-file,
memory-mapped structure that maps each record (a 32-bit primary key) to
a fixed-width Bloom filter summarizing a multi-valued attribute set.

An Index is used as a coarse filter in front of an authoritative store.
Lookups answer "which primary keys have an indexed value set that is a
superset of this query set", with bounded false positives and no false
negatives.

Basic usage:

	import "github.com/theflywheel/bfi"

	idx, err := bfi.OpenFile("catalog.bfi", bfi.Format128)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	err = idx.Insert(42, [][]byte{[]byte("red"), []byte("size:xl")})

	pks, err := idx.Lookup([][]byte{[]byte("red")})
	if err == nil {
		fmt.Println("matching primary keys:", pks)
	}

Implementation Details:

The on-disk file is a fixed 16-byte header followed by fixed-size
pages, each holding 512 records in a column-major ("bit-sliced")
layout: a PK column of 512 uint32s, followed by `format` byte-columns
of 512 bytes each, one column per byte position of the Bloom filter.
This lets a lookup AND a single query byte against an entire 512-byte
column in one pass, and skip the column entirely when the query byte
is zero.

Features:

  - Fixed 128- or 256-byte Bloom filters, 4 independent hash sectors
  - Memory-mapped paged storage, grown one page at a time
  - Upsert-by-primary-key with tombstone reuse on delete
  - Superset-query lookup scanning all live records in a single pass
  - Single-writer, single-process: no internal locking is provided
*/
package bfi
