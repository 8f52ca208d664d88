package bfi

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hashSeed is the fixed seed mixed into every value hashed into a
// filter, carried over from the reference implementation's murmur3
// seed (362582) so the sector-selection behavior is the same shape:
// deterministic across runs, varying only with the input bytes.
const hashSeed uint32 = 362582

// sectorCount is the number of disjoint regions a filter is split
// into; one bit is set per region per input value.
const sectorCount = 4

// hashValue derives a 32-bit, uniformly distributed hash of data,
// mixed with hashSeed. The hash primitive is an interchangeable
// collaborator of the index format; this package uses cespare/xxhash's
// 64-bit digest folded down to 32 bits rather than a seedable 32-bit
// hash, since the xxhash/v2 API takes no seed parameter directly — the
// seed is mixed in as a 4-byte prefix fed into the same digest instead.
func hashValue(seed uint32, data []byte) uint32 {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], seed)

	d := xxhash.New()
	d.Write(prefix[:])
	d.Write(data)
	sum := d.Sum64()
	return uint32(sum) ^ uint32(sum>>32)
}

// GenerateFilter builds the fixed-width Bloom filter encoding values:
// format is split into 4 equal sectors, and each value sets one bit in
// each sector, drawn from the low 8 bits of the hash after each
// sector's bits are consumed.
//
// An empty values list yields the all-zero filter.
func GenerateFilter(values [][]byte, format uint16) []byte {
	filter := make([]byte, format)
	sector := int(format) / sectorCount

	for _, v := range values {
		hash := hashValue(hashSeed, v)
		for s := 0; s < sectorCount; s++ {
			pos := hash & 0xFF
			hash >>= 8
			byteIdx := s*sector + int(pos)/8
			filter[byteIdx] |= 1 << (pos % 8)
		}
	}
	return filter
}

// Contains reports whether haystack contains every bit set in needle:
// every bit set in needle must also be set in haystack. This is the
// superset-query test the index's Lookup is built on. An all-zero
// needle (the filter for an empty query) is trivially contained by
// every haystack.
func Contains(haystack, needle []byte) bool {
	for i := range needle {
		if haystack[i]&needle[i] != needle[i] {
			return false
		}
	}
	return true
}
