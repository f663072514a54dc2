package pagestore

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"TupleDB/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPageFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(t.TempDir(), "pages.db"), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		t.Fatalf("opening page file: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
	})
	return f
}

func allTuples(s *PageStore) []domain.Tuple {
	var tuples []domain.Tuple
	it := s.Iterate()
	for {
		tuple, ok := it.Next()
		if !ok {
			return tuples
		}
		tuples = append(tuples, tuple)
	}
}

func TestStoreInsertAndLookup(t *testing.T) {
	s := NewPageStore(4)
	s.Insert(2, 20)
	s.Insert(1, 10)
	s.Insert(3, 30)

	for _, id := range []uint32{1, 2, 3} {
		value, found := s.Lookup(id)
		if !found {
			t.Fatalf("expected to find key %d", id)
		}
		assert.Equal(t, id*10, value)
	}
	_, found := s.Lookup(99)
	assert.False(t, found)
}

func TestStoreOverwriteInPlace(t *testing.T) {
	s := NewPageStore(4)
	s.Insert(1, 10)
	s.Insert(1, 11)

	value, found := s.Lookup(1)
	require.True(t, found)
	assert.EqualValues(t, 11, value)
	assert.Equal(t, 1, s.PageCount())
	assert.Equal(t, 1, s.pages[0].Len())
}

func TestStoreSplitOnFullPage(t *testing.T) {
	// the capacity-4 scenario: 1..4 fill page 0, inserting 5 splits it
	s := NewPageStore(4)
	for i := uint32(1); i <= 5; i++ {
		s.Insert(i, i*10)
	}

	require.Equal(t, 2, s.PageCount())
	assert.Equal(t, []domain.Tuple{{ID: 1, Value: 10}, {ID: 2, Value: 20}}, s.pages[0].tuples)
	assert.Equal(t, []domain.Tuple{{ID: 3, Value: 30}, {ID: 4, Value: 40}, {ID: 5, Value: 50}}, s.pages[1].tuples)
	assert.True(t, s.pages[0].Dirty())
	assert.True(t, s.pages[1].Dirty())
}

func TestStoreSplitKeepsAllTuples(t *testing.T) {
	s := NewPageStore(4)
	keys := rand.Perm(100)
	for _, k := range keys {
		s.Insert(uint32(k+1), uint32(k))
	}

	tuples := allTuples(s)
	require.Len(t, tuples, 100)
	for i, tuple := range tuples {
		assert.EqualValues(t, i+1, tuple.ID)
		assert.EqualValues(t, i, tuple.Value)
	}
}

func TestStoreSortedInvariant(t *testing.T) {
	s := NewPageStore(4)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		id := uint32(r.Intn(200))
		if r.Intn(3) == 0 {
			s.Delete(id)
		} else {
			s.Insert(id, uint32(i))
		}

		tuples := allTuples(s)
		for j := 1; j < len(tuples); j++ {
			if tuples[j].ID <= tuples[j-1].ID {
				t.Fatalf("scan out of order after op %d: %d then %d", i, tuples[j-1].ID, tuples[j].ID)
			}
		}
	}
}

func TestStoreSplitDirtiesShiftedPages(t *testing.T) {
	s := NewPageStore(4)
	for i := uint32(1); i <= 16; i++ {
		s.Insert(i*10, i)
	}
	f := tempPageFile(t)
	require.NoError(t, s.WriteBack(f))
	require.Empty(t, s.DirtyPages())
	pageCount := s.PageCount()
	require.GreaterOrEqual(t, pageCount, 3)

	// fill page 0 to capacity, then one more insert forces the split
	s.Insert(11, 0)
	s.Insert(12, 0)
	require.Equal(t, s.capacity, s.pages[0].Len())
	require.Equal(t, pageCount, s.PageCount())
	s.Insert(13, 0)

	require.Equal(t, pageCount+1, s.PageCount())
	dirty := s.DirtyPages()
	assert.Len(t, dirty, s.PageCount(), "every page from the split point on must be dirty")
}

func TestStoreDeleteDirtiesOnlyItsPage(t *testing.T) {
	s := NewPageStore(4)
	for i := uint32(1); i <= 12; i++ {
		s.Insert(i, i)
	}
	f := tempPageFile(t)
	require.NoError(t, s.WriteBack(f))

	require.True(t, s.Delete(2))
	assert.Equal(t, []int{0}, s.DirtyPages())
}

func TestStoreDeleteMissingKey(t *testing.T) {
	s := NewPageStore(4)
	s.Insert(5, 50)
	assert.False(t, s.Delete(4))
	assert.False(t, s.Delete(6))

	empty := NewPageStore(4)
	assert.False(t, empty.Delete(1))
}

func TestStoreReclaimsEmptiedPage(t *testing.T) {
	s := NewPageStore(4)
	for i := uint32(1); i <= 6; i++ {
		s.Insert(i, i)
	}
	require.Equal(t, 2, s.PageCount())
	f := tempPageFile(t)
	require.NoError(t, s.WriteBack(f))

	first := append([]domain.Tuple(nil), s.pages[0].tuples...)
	for _, tuple := range first {
		require.True(t, s.Delete(tuple.ID))
	}
	assert.Equal(t, 1, s.PageCount())
	// the surviving page shifted down a slot, so it must be rewritten
	assert.Equal(t, []int{0}, s.DirtyPages())
}

func TestStoreMergesUnderflowedPage(t *testing.T) {
	s := NewPageStore(8)
	for i := uint32(1); i <= 16; i++ {
		s.Insert(i, i)
	}
	require.Equal(t, 3, s.PageCount())

	// shrink the middle page below half its minimum fill
	second := append([]domain.Tuple(nil), s.pages[1].tuples...)
	for _, tuple := range second[1:] {
		require.True(t, s.Delete(tuple.ID))
	}

	assert.Equal(t, 2, s.PageCount())
	_, found := s.Lookup(second[0].ID)
	assert.True(t, found, "merged tuple must survive in the left neighbor")
}

func TestStoreWriteBackIsSelective(t *testing.T) {
	s := NewPageStore(4)
	for i := uint32(1); i <= 12; i++ {
		s.Insert(i, i)
	}
	f := tempPageFile(t)
	require.NoError(t, s.WriteBack(f))
	require.Empty(t, s.DirtyPages())

	before, err := os.ReadFile(f.Name())
	require.NoError(t, err)

	// poison the clean blocks on disk; a correct write-back never touches them
	blockSize := BlockSize(4)
	poison := bytes.Repeat([]byte{0xAA}, blockSize)
	_, err = f.WriteAt(poison, int64(blockSize)) // slot 1
	require.NoError(t, err)

	s.Insert(1, 99) // dirties slot 0 only
	require.Equal(t, []int{0}, s.DirtyPages())
	require.NoError(t, s.WriteBack(f))

	after, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, poison, after[blockSize:2*blockSize], "clean slot 1 was rewritten")
	assert.NotEqual(t, before[:blockSize], after[:blockSize], "dirty slot 0 was not rewritten")
	assert.Equal(t, before[2*blockSize:], after[2*blockSize:], "clean slot 2 changed")
}

func TestStoreWriteBackShrinksFile(t *testing.T) {
	s := NewPageStore(4)
	for i := uint32(1); i <= 8; i++ {
		s.Insert(i, i)
	}
	f := tempPageFile(t)
	require.NoError(t, s.WriteBack(f))

	info, err := f.Stat()
	require.NoError(t, err)
	require.EqualValues(t, 3*BlockSize(4), info.Size())

	for i := uint32(5); i <= 8; i++ {
		require.True(t, s.Delete(i))
	}
	require.Equal(t, 2, s.PageCount())
	require.NoError(t, s.WriteBack(f))

	info, err = f.Stat()
	require.NoError(t, err)
	assert.EqualValues(t, 2*BlockSize(4), info.Size())
}

func TestStoreIterateReflectsLiveState(t *testing.T) {
	s := NewPageStore(4)
	s.Insert(1, 10)
	s.Insert(3, 30)

	it := s.Iterate()
	first, ok := it.Next()
	require.True(t, ok)
	assert.EqualValues(t, 1, first.ID)

	s.Insert(5, 50)
	second, ok := it.Next()
	require.True(t, ok)
	assert.EqualValues(t, 3, second.ID)
	third, ok := it.Next()
	require.True(t, ok)
	assert.EqualValues(t, 5, third.ID)
	_, ok = it.Next()
	assert.False(t, ok)
}
