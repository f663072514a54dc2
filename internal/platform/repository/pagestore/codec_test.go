package pagestore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"TupleDB/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tuples := []domain.Tuple{
		domain.NewTuple(1, 10),
		domain.NewTuple(2, 20),
		domain.NewTuple(7, 70),
	}

	block, err := EncodePage(tuples, 4)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(block) != BlockSize(4) {
		t.Fatalf("expected block of %d bytes, got %d", BlockSize(4), len(block))
	}

	decoded, err := DecodePage(block, 4)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	assert.Equal(t, tuples, decoded)
}

func TestEncodePageZeroFillsUnusedSlots(t *testing.T) {
	block, err := EncodePage([]domain.Tuple{domain.NewTuple(9, 90)}, 4)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	used := PageHeaderSize + TupleSize
	padding := block[used:]
	if !bytes.Equal(padding, make([]byte, len(padding))) {
		t.Errorf("unused slots are not zero-filled: %v", padding)
	}
}

func TestEncodePageOverCapacity(t *testing.T) {
	tuples := []domain.Tuple{
		domain.NewTuple(1, 1),
		domain.NewTuple(2, 2),
		domain.NewTuple(3, 3),
	}
	_, err := EncodePage(tuples, 2)
	assert.ErrorIs(t, err, ErrCorruptPage)
}

func TestDecodePageCountExceedsCapacity(t *testing.T) {
	block := make([]byte, BlockSize(4))
	binary.LittleEndian.PutUint32(block, 5)

	_, err := DecodePage(block, 4)
	assert.ErrorIs(t, err, ErrCorruptPage)
}

func TestDecodePageKeysNotAscending(t *testing.T) {
	block, err := EncodePage([]domain.Tuple{
		domain.NewTuple(3, 30),
		domain.NewTuple(5, 50),
	}, 4)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// swap the two stored keys so the order breaks
	binary.LittleEndian.PutUint32(block[PageHeaderSize:], 5)
	binary.LittleEndian.PutUint32(block[PageHeaderSize+TupleSize:], 3)

	_, err = DecodePage(block, 4)
	assert.ErrorIs(t, err, ErrCorruptPage)
}

func TestDecodePageWrongBlockLength(t *testing.T) {
	_, err := DecodePage(make([]byte, BlockSize(4)-1), 4)
	if !errors.Is(err, ErrCorruptPage) {
		t.Errorf("expected ErrCorruptPage, got %v", err)
	}
}

func TestDecodeEmptyBlock(t *testing.T) {
	decoded, err := DecodePage(make([]byte, BlockSize(4)), 4)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected no tuples, got %v", decoded)
	}
}
