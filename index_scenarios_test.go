package bfi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// index_scenarios_test.go promotes the core acceptance scenarios for
// the index to end-to-end tests, one test function per scenario, each
// built from a fresh index. Where a scenario checks a whole Stat
// snapshot, it is compared with go-cmp.

func TestScenarioSingleInsertAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bfi")
	idx, err := OpenFile(path, Format128)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Insert(1, [][]byte{[]byte("red"), []byte("size:m")}))

	matches, err := idx.Lookup([][]byte{[]byte("red")})
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, matches)

	stat, err := idx.Stat()
	require.NoError(t, err)
	want := Stat{
		Version:        currentVersion,
		Records:        1,
		Deleted:        0,
		Pages:          1,
		RecordsPerPage: RecordsPerPage,
		BloomSize:      Format128,
		PageSize:       pageSize(Format128),
		Size:           headerSize + pageSize(Format128) + 1,
	}
	if diff := cmp.Diff(want, stat); diff != "" {
		t.Errorf("stat mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioUpsertSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bfi")
	idx, err := OpenFile(path, Format128)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Insert(1, [][]byte{[]byte("red")}))
	require.NoError(t, idx.Insert(1, [][]byte{[]byte("blue")}))

	redMatches, err := idx.Lookup([][]byte{[]byte("red")})
	require.NoError(t, err)
	require.Empty(t, redMatches)

	blueMatches, err := idx.Lookup([][]byte{[]byte("blue")})
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, blueMatches)

	stat, err := idx.Stat()
	require.NoError(t, err)
	require.EqualValues(t, 1, stat.Records, "upsert must not grow the record count")
}

func TestScenarioDeleteThenReuse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bfi")
	idx, err := OpenFile(path, Format128)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Insert(1, [][]byte{[]byte("a")}))
	require.NoError(t, idx.Insert(2, [][]byte{[]byte("b")}))
	require.NoError(t, idx.Delete(1))

	statAfterDelete, err := idx.Stat()
	require.NoError(t, err)
	require.EqualValues(t, 1, statAfterDelete.Records)
	require.EqualValues(t, 1, statAfterDelete.Deleted)

	require.NoError(t, idx.Insert(3, [][]byte{[]byte("c")}))

	statAfterReuse, err := idx.Stat()
	require.NoError(t, err)
	require.EqualValues(t, 2, statAfterReuse.Records, "reused tombstone slot must not grow records")
	require.EqualValues(t, 0, statAfterReuse.Deleted)
	require.EqualValues(t, 1, statAfterReuse.Pages, "reuse must not allocate a new page")

	matches, err := idx.Lookup([][]byte{[]byte("c")})
	require.NoError(t, err)
	require.Equal(t, []uint32{3}, matches)
}

func TestScenarioCrossPageGrowthAtRecordsPerPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bfi")
	idx, err := OpenFile(path, Format128)
	require.NoError(t, err)
	defer idx.Close()

	for i := uint32(1); i <= RecordsPerPage; i++ {
		require.NoError(t, idx.Insert(i, [][]byte{[]byte(pkValue(i))}))
	}
	stat, err := idx.Stat()
	require.NoError(t, err)
	require.Equal(t, 1, stat.Pages, "exactly RecordsPerPage records must still fit on one page")

	require.NoError(t, idx.Insert(RecordsPerPage+1, [][]byte{[]byte(pkValue(RecordsPerPage + 1))}))
	stat, err = idx.Stat()
	require.NoError(t, err)
	require.Equal(t, 2, stat.Pages, "record RecordsPerPage+1 must spill onto a second page")

	matches, err := idx.Lookup([][]byte{[]byte(pkValue(RecordsPerPage + 1))})
	require.NoError(t, err)
	require.Equal(t, []uint32{RecordsPerPage + 1}, matches)
}

func TestScenarioRestartPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bfi")

	idx, err := OpenFile(path, Format256)
	require.NoError(t, err)
	for i := uint32(1); i <= 50; i++ {
		require.NoError(t, idx.Insert(i, [][]byte{[]byte(pkValue(i))}))
	}
	beforeStat, err := idx.Stat()
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := OpenFile(path, Format256)
	require.NoError(t, err)
	defer reopened.Close()

	afterStat, err := reopened.Stat()
	require.NoError(t, err)
	if diff := cmp.Diff(beforeStat, afterStat); diff != "" {
		t.Errorf("stat changed across restart (-before +after):\n%s", diff)
	}

	for i := uint32(1); i <= 50; i++ {
		matches, err := reopened.Lookup([][]byte{[]byte(pkValue(i))})
		require.NoError(t, err)
		require.Equal(t, []uint32{i}, matches)
	}
}

func TestScenarioVersionAndFormatMismatchRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bfi")

	idx, err := OpenFile(path, Format128)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = OpenFile(path, Format256)
	require.ErrorIs(t, err, ErrFormat)

	raw := make([]byte, headerSize)
	hdr := header{magic: magicNumber, version: 0xFF, format: Format128}
	hdr.encode(raw)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = OpenFile(path, Format128)
	require.ErrorIs(t, err, ErrVersion)
}
