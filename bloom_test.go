package bfi

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestGenerateFilterEmptyIsAllZero(t *testing.T) {
	filter := GenerateFilter(nil, Format128)
	for i, b := range filter {
		if b != 0 {
			t.Fatalf("byte %d of empty-input filter is %#x, want 0", i, b)
		}
	}
}

func TestContainsEmptyNeedleAlwaysTrue(t *testing.T) {
	haystack := GenerateFilter([][]byte{[]byte("alpha"), []byte("beta")}, Format128)
	needle := GenerateFilter(nil, Format128)
	if !Contains(haystack, needle) {
		t.Fatal("all-zero needle must be contained by any haystack")
	}
}

func TestFilterSetsExactlyOneBitPerSectorForOneValue(t *testing.T) {
	filter := GenerateFilter([][]byte{[]byte("alpha")}, Format128)
	sector := int(Format128) / sectorCount

	for s := 0; s < sectorCount; s++ {
		bits := 0
		for i := 0; i < sector; i++ {
			b := filter[s*sector+i]
			for bit := 0; bit < 8; bit++ {
				if b&(1<<bit) != 0 {
					bits++
				}
			}
		}
		if bits != 1 {
			t.Errorf("sector %d has %d bits set, want exactly 1", s, bits)
		}
	}
}

func TestContainsRoundTrip(t *testing.T) {
	values := [][]byte{[]byte("red"), []byte("size:xl"), []byte("brand:acme")}
	filter := GenerateFilter(values, Format128)

	for _, v := range values {
		needle := GenerateFilter([][]byte{v}, Format128)
		if !Contains(filter, needle) {
			t.Errorf("filter does not contain value %q it was built from", v)
		}
	}
}

func TestFormat256OnlyUsesFirstHalfOfEachSector(t *testing.T) {
	// GenerateFilter derives a bit position in [0, 256) from a single
	// hash byte regardless of format, so for format=256 (64-byte
	// sectors) only the first 32 bytes of each 64-byte sector are ever
	// touched. This test pins that surprising but intentional behavior.
	filter := GenerateFilter([][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}, Format256)
	sector := int(Format256) / sectorCount

	for s := 0; s < sectorCount; s++ {
		for i := sector / 2; i < sector; i++ {
			if filter[s*sector+i] != 0 {
				t.Fatalf("sector %d byte %d is %#x, want 0 (upper half of a format-256 sector is never addressed)", s, i, filter[s*sector+i])
			}
		}
	}
}

// TestFalsePositiveRateSanity is a loose sanity check, not a strict
// bound: the expected false-positive rate at 30 values per record for
// format=128 is roughly 1.5e-4, and this test only asks that a
// measured rate over 2000 trials not be wildly above that.
func TestFalsePositiveRateSanity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const valuesPerRecord = 30
	const trials = 2000

	falsePositives := 0
	for i := 0; i < trials; i++ {
		values := make([][]byte, valuesPerRecord)
		for j := range values {
			values[j] = []byte(fmt.Sprintf("v-%d-%d", i, j))
		}
		haystack := GenerateFilter(values, Format128)

		needle := GenerateFilter([][]byte{[]byte(fmt.Sprintf("absent-%d", rng.Int()))}, Format128)
		if Contains(haystack, needle) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / float64(trials)
	if rate > 2e-2 {
		t.Errorf("false positive rate %.4f is far above the documented ~1.5e-4 at %d values/record", rate, valuesPerRecord)
	}
}
