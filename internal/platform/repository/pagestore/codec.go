package pagestore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"TupleDB/internal/domain"
)

const (
	// TupleSize is the encoded size of one tuple: two little-endian uint32s.
	TupleSize = 8
	// PageHeaderSize holds the occupied-tuple count.
	PageHeaderSize = 4
)

var ErrCorruptPage = errors.New("corrupt page")

// BlockSize is the fixed on-disk size of a page holding up to capacity
// tuples. Every page occupies exactly one block so that the block at slot n
// starts at byte offset n * BlockSize(capacity).
func BlockSize(capacity int) int {
	return PageHeaderSize + capacity*TupleSize
}

// EncodePage serializes tuples into a block of exactly BlockSize(capacity)
// bytes. Slots past the occupied count are zero-filled.
func EncodePage(tuples []domain.Tuple, capacity int) ([]byte, error) {
	if len(tuples) > capacity {
		return nil, fmt.Errorf("%w: %d tuples exceed capacity %d", ErrCorruptPage, len(tuples), capacity)
	}
	block := make([]byte, BlockSize(capacity))
	binary.LittleEndian.PutUint32(block, uint32(len(tuples)))
	offset := PageHeaderSize
	for _, t := range tuples {
		binary.LittleEndian.PutUint32(block[offset:], t.ID)
		binary.LittleEndian.PutUint32(block[offset+4:], t.Value)
		offset += TupleSize
	}
	return block, nil
}

// DecodePage is the inverse of EncodePage. It fails with ErrCorruptPage when
// the occupied count exceeds the capacity or stored keys are not strictly
// ascending.
func DecodePage(block []byte, capacity int) ([]domain.Tuple, error) {
	if len(block) != BlockSize(capacity) {
		return nil, fmt.Errorf("%w: block is %d bytes, want %d", ErrCorruptPage, len(block), BlockSize(capacity))
	}
	count := binary.LittleEndian.Uint32(block)
	if int(count) > capacity {
		return nil, fmt.Errorf("%w: occupied count %d exceeds capacity %d", ErrCorruptPage, count, capacity)
	}
	tuples := make([]domain.Tuple, 0, count)
	offset := PageHeaderSize
	for i := 0; i < int(count); i++ {
		id := binary.LittleEndian.Uint32(block[offset:])
		value := binary.LittleEndian.Uint32(block[offset+4:])
		if i > 0 && id <= tuples[i-1].ID {
			return nil, fmt.Errorf("%w: keys not strictly ascending (%d after %d)", ErrCorruptPage, id, tuples[i-1].ID)
		}
		tuples = append(tuples, domain.NewTuple(id, value))
		offset += TupleSize
	}
	return tuples, nil
}
