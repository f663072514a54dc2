package pagestore

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"TupleDB/internal/domain"
)

// Page is a sorted run of tuples occupying one fixed-size block on disk.
// Its slot is its index in the store's directory; the slot alone determines
// the file offset. A page is dirty when its tuples or its slot changed since
// the last durable write-back.
type Page struct {
	tuples []domain.Tuple
	dirty  bool
}

func (p *Page) minKey() uint32 {
	return p.tuples[0].ID
}

func (p *Page) Len() int {
	return len(p.tuples)
}

func (p *Page) Dirty() bool {
	return p.dirty
}

// PageStore owns the full ordered page sequence. Pages never overlap in key
// range: every key in the page at slot i is smaller than every key in the
// page at slot i+1.
type PageStore struct {
	capacity int
	pages    []*Page
}

func NewPageStore(capacity int) *PageStore {
	return &PageStore{capacity: capacity}
}

func (s *PageStore) Capacity() int {
	return s.capacity
}

func (s *PageStore) PageCount() int {
	return len(s.pages)
}

// locate returns the slot of the only page that may contain id: the last
// page whose minimum key is <= id. Keys below every page map to slot 0 so
// inserts have a target. Returns -1 only when the store is empty.
func (s *PageStore) locate(id uint32) int {
	if len(s.pages) == 0 {
		return -1
	}
	i := sort.Search(len(s.pages), func(i int) bool {
		return s.pages[i].minKey() > id
	}) - 1
	if i < 0 {
		i = 0
	}
	return i
}

// Lookup binary-searches the directory by page minimum key, then the page
// itself.
func (s *PageStore) Lookup(id uint32) (uint32, bool) {
	slot := s.locate(id)
	if slot < 0 {
		return 0, false
	}
	p := s.pages[slot]
	j, found := slices.BinarySearchFunc(p.tuples, id, func(t domain.Tuple, id uint32) int {
		switch {
		case t.ID < id:
			return -1
		case t.ID > id:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return 0, false
	}
	return p.tuples[j].Value, true
}

// Insert adds or overwrites one tuple. An overwrite or in-capacity insert
// dirties only the target page. Inserting into a full page splits it: the
// upper half moves to a fresh page at the next slot and every page from the
// split point on is dirtied, because its file offset changed.
func (s *PageStore) Insert(id, value uint32) {
	if len(s.pages) == 0 {
		s.pages = []*Page{{tuples: []domain.Tuple{domain.NewTuple(id, value)}, dirty: true}}
		return
	}
	slot := s.locate(id)
	p := s.pages[slot]
	j := sort.Search(len(p.tuples), func(i int) bool {
		return p.tuples[i].ID >= id
	})
	if j < len(p.tuples) && p.tuples[j].ID == id {
		p.tuples[j].Value = value
		p.dirty = true
		return
	}
	if len(p.tuples) < s.capacity {
		p.tuples = slices.Insert(p.tuples, j, domain.NewTuple(id, value))
		p.dirty = true
		return
	}
	s.split(slot, j, domain.NewTuple(id, value))
}

func (s *PageStore) split(slot, pos int, t domain.Tuple) {
	p := s.pages[slot]
	run := make([]domain.Tuple, 0, len(p.tuples)+1)
	run = append(run, p.tuples[:pos]...)
	run = append(run, t)
	run = append(run, p.tuples[pos:]...)

	mid := len(run) / 2
	p.tuples = slices.Clone(run[:mid])
	upper := &Page{tuples: slices.Clone(run[mid:]), dirty: true}
	p.dirty = true
	s.pages = slices.Insert(s.pages, slot+1, upper)
	s.markShifted(slot + 1)
}

// markShifted dirties every page at or after slot; their file offsets moved.
func (s *PageStore) markShifted(slot int) {
	for _, p := range s.pages[slot:] {
		p.dirty = true
	}
}

// Delete removes id from its page if present. Removing from a page never
// moves other pages, except when the page empties out and its slot is
// reclaimed, or an underflowed page folds into its left neighbor.
func (s *PageStore) Delete(id uint32) bool {
	slot := s.locate(id)
	if slot < 0 {
		return false
	}
	p := s.pages[slot]
	j := sort.Search(len(p.tuples), func(i int) bool {
		return p.tuples[i].ID >= id
	})
	if j >= len(p.tuples) || p.tuples[j].ID != id {
		return false
	}
	p.tuples = slices.Delete(p.tuples, j, j+1)
	p.dirty = true
	if len(p.tuples) == 0 {
		s.removePage(slot)
		return true
	}
	s.maybeMerge(slot)
	return true
}

func (s *PageStore) removePage(slot int) {
	s.pages = slices.Delete(s.pages, slot, slot+1)
	s.markShifted(slot)
}

// maybeMerge folds the page at slot into its left neighbor when it dropped
// below half its minimum fill and the combined run still fits in one page.
// Purely an occupancy optimization; correctness never depends on it.
func (s *PageStore) maybeMerge(slot int) {
	threshold := ((s.capacity + 1) / 2) / 2
	p := s.pages[slot]
	if slot == 0 || len(p.tuples) >= threshold {
		return
	}
	left := s.pages[slot-1]
	if len(left.tuples)+len(p.tuples) > s.capacity {
		return
	}
	left.tuples = append(left.tuples, p.tuples...)
	left.dirty = true
	s.removePage(slot)
}

// TupleIterator walks all tuples in key order, page by page. It reads the
// live directory, so it reflects the store at the time of each Next call.
type TupleIterator struct {
	store *PageStore
	slot  int
	pos   int
}

// Iterate returns a fresh iterator positioned before the first tuple.
func (s *PageStore) Iterate() *TupleIterator {
	return &TupleIterator{store: s}
}

func (it *TupleIterator) Next() (domain.Tuple, bool) {
	for it.slot < len(it.store.pages) {
		p := it.store.pages[it.slot]
		if it.pos < len(p.tuples) {
			t := p.tuples[it.pos]
			it.pos++
			return t, true
		}
		it.slot++
		it.pos = 0
	}
	return domain.Tuple{}, false
}

// DirtyPages returns the slots whose pages must be rewritten.
func (s *PageStore) DirtyPages() []int {
	var slots []int
	for slot, p := range s.pages {
		if p.dirty {
			slots = append(slots, slot)
		}
	}
	return slots
}

// WriteBack writes every dirty page at slot * BlockSize, shrinks the file to
// the current page count so stale trailing blocks disappear, and fsyncs.
// Dirty flags are cleared only after the sync succeeds; on error every flag
// is left set and the call is safe to retry. Clean pages are never touched.
func (s *PageStore) WriteBack(f *os.File) error {
	blockSize := BlockSize(s.capacity)
	for slot, p := range s.pages {
		if !p.dirty {
			continue
		}
		block, err := EncodePage(p.tuples, s.capacity)
		if err != nil {
			return err
		}
		if _, err := f.WriteAt(block, int64(slot*blockSize)); err != nil {
			return fmt.Errorf("write page at slot %d: %w", slot, err)
		}
	}
	if err := f.Truncate(int64(len(s.pages) * blockSize)); err != nil {
		return fmt.Errorf("shrink page file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return err
	}
	for _, p := range s.pages {
		p.dirty = false
	}
	return nil
}
