package pagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"TupleDB/internal/domain"
)

const (
	pageFileName = "pages.db"
	walFileName  = "pages.wal"
)

// Engine ties the page store to its two files and defines the durability
// boundary. Mutations are appended to the WAL and applied in memory as one
// unit; Sync writes dirty pages back and only then truncates the WAL.
type Engine struct {
	mu    sync.RWMutex
	store *PageStore
	wal   *WAL
	file  *os.File
	dir   string

	// lastApplied is the sequence number of the newest WAL record already
	// reflected in the in-memory store.
	lastApplied uint64
}

// Open loads the page file at dir into a fresh store and replays any WAL
// records that survived a previous run through the same insert/delete paths
// used at runtime. Affected pages come out dirty, so an interrupted sync is
// simply retried by the next one.
func Open(dir string, capacity int) (*Engine, error) {
	if capacity < 2 {
		return nil, fmt.Errorf("page capacity must be at least 2, got %d", capacity)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filepath.Join(dir, pageFileName), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	store, err := loadPages(file, capacity)
	if err != nil {
		file.Close()
		return nil, err
	}
	wal, err := OpenWal(filepath.Join(dir, walFileName))
	if err != nil {
		file.Close()
		return nil, err
	}
	e := &Engine{store: store, wal: wal, file: file, dir: dir}
	if err := e.recover(); err != nil {
		wal.Close()
		file.Close()
		return nil, err
	}
	return e, nil
}

// loadPages reads the page file block by block. Every loaded page starts
// clean: it matches what is on disk by construction.
func loadPages(f *os.File, capacity int) (*PageStore, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	blockSize := int64(BlockSize(capacity))
	if info.Size()%blockSize != 0 {
		return nil, fmt.Errorf("%w: page file size %d is not a multiple of block size %d",
			ErrCorruptPage, info.Size(), blockSize)
	}
	store := NewPageStore(capacity)
	block := make([]byte, blockSize)
	var prevMax uint32
	for offset := int64(0); offset < info.Size(); offset += blockSize {
		if _, err := f.ReadAt(block, offset); err != nil {
			return nil, fmt.Errorf("read page at offset %d: %w", offset, err)
		}
		slot := int(offset / blockSize)
		tuples, err := DecodePage(block, capacity)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", slot, err)
		}
		if len(tuples) == 0 {
			return nil, fmt.Errorf("%w: slot %d is empty", ErrCorruptPage, slot)
		}
		if slot > 0 && tuples[0].ID <= prevMax {
			return nil, fmt.Errorf("%w: slot %d overlaps previous page (%d <= %d)",
				ErrCorruptPage, slot, tuples[0].ID, prevMax)
		}
		prevMax = tuples[len(tuples)-1].ID
		store.pages = append(store.pages, &Page{tuples: tuples})
	}
	return store, nil
}

// recover replays the WAL into the store. Replay reuses the normal mutation
// entry points, so recovered state cannot drift from runtime semantics, and
// re-applying an already synced record is idempotent.
func (e *Engine) recover() error {
	it := e.wal.Replay()
	for {
		rec, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		e.apply(rec)
	}
}

func (e *Engine) apply(rec WalRecord) {
	switch rec.Op {
	case OpInsert:
		e.store.Insert(rec.ID, rec.Value)
	case OpDelete:
		e.store.Delete(rec.ID)
	}
	e.lastApplied = rec.Seq
}

func (e *Engine) Get(id uint32) (uint32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Lookup(id)
}

// Put records the mutation durably, then applies it in memory. If the WAL
// append fails the store is left untouched, so log and memory never
// disagree about an acknowledged write.
func (e *Engine) Put(id, value uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.wal.Append(OpInsert, id, value)
	if err != nil {
		return fmt.Errorf("wal append: %w", err)
	}
	e.apply(rec)
	return nil
}

// Remove deletes id if present. A missing key is a no-op, not an error, and
// is never logged.
func (e *Engine) Remove(id uint32) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, found := e.store.Lookup(id); !found {
		return false, nil
	}
	rec, err := e.wal.Append(OpDelete, id, 0)
	if err != nil {
		return false, fmt.Errorf("wal append: %w", err)
	}
	e.apply(rec)
	return true, nil
}

// Scan returns every tuple in ascending key order.
func (e *Engine) Scan() []domain.Tuple {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tuples := make([]domain.Tuple, 0)
	it := e.store.Iterate()
	for {
		t, ok := it.Next()
		if !ok {
			return tuples
		}
		tuples = append(tuples, t)
	}
}

// Sync writes all dirty pages back to the page file and then truncates the
// WAL. Write-back strictly precedes truncation: if it fails, the WAL is left
// intact, the dirty set is unchanged and the call can be retried. A crash
// after write-back but before truncation only means recovery re-applies
// records that are already on disk.
func (e *Engine) Sync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sync()
}

func (e *Engine) sync() error {
	if err := e.store.WriteBack(e.file); err != nil {
		return fmt.Errorf("write back: %w", err)
	}
	if err := e.wal.Truncate(); err != nil {
		return fmt.Errorf("truncate wal: %w", err)
	}
	return nil
}

// Close runs a final sync and releases both files.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	syncErr := e.sync()
	if err := e.wal.Close(); err != nil && syncErr == nil {
		syncErr = err
	}
	if err := e.file.Close(); err != nil && syncErr == nil {
		syncErr = err
	}
	return syncErr
}

// Stats describes the engine's current shape, for diagnostics.
type Stats struct {
	Pages      int    `json:"pages"`
	DirtyPages int    `json:"dirty_pages"`
	Capacity   int    `json:"capacity"`
	WalBytes   int64  `json:"wal_bytes"`
	LastSeq    uint64 `json:"last_seq"`
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Pages:      e.store.PageCount(),
		DirtyPages: len(e.store.DirtyPages()),
		Capacity:   e.store.Capacity(),
		WalBytes:   e.wal.Size(),
		LastSeq:    e.lastApplied,
	}
}
