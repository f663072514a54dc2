package pagestore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"
)

// Record kinds carried by the write-ahead log.
const (
	OpInsert byte = 1
	OpDelete byte = 2
)

const (
	walPayloadSize = 17                 // seq(8) + op(1) + id(4) + value(4)
	walFrameSize   = 8 + walPayloadSize // crc(4) + length(4) + payload
)

var ErrCorruptWALRecord = errors.New("corrupt wal record")

// WalRecord is one logged mutation. Seq is assigned by Append and increases
// monotonically in file order.
type WalRecord struct {
	Seq   uint64
	Op    byte
	ID    uint32
	Value uint32
}

// WAL is the append-only mutation log. Every frame is
//
//	CRC32 checksum (4 bytes, over the payload)
//	payload length (4 bytes)
//	payload: sequence number, record kind, key, value
//
// Append returns only after the frame has been fsynced, which is the
// durability boundary: a confirmed record is always replayable after a
// crash. A torn frame at the tail is discarded when the log is opened.
type WAL struct {
	mu   sync.Mutex
	fd   *os.File
	path string
	size int64
	seq  uint64
}

// OpenWal opens or creates the log at path, scans it for the last valid
// frame and truncates anything torn beyond it.
func OpenWal(path string) (*WAL, error) {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	w := &WAL{fd: fd, path: path}
	if err := w.scan(); err != nil {
		fd.Close()
		return nil, err
	}
	return w, nil
}

// scan walks every frame, remembering the offset and sequence number of the
// last valid one. A frame that cannot be read completely, or whose checksum
// fails right at end of file, is a torn tail and is cut off. A checksum
// failure with more data behind it means the log body itself is damaged.
func (w *WAL) scan() error {
	info, err := w.fd.Stat()
	if err != nil {
		return err
	}
	total := info.Size()
	reader := bufio.NewReader(io.NewSectionReader(w.fd, 0, total))

	var offset int64
	for offset < total {
		rec, frameLen, err := readFrame(reader)
		if err != nil {
			if errors.Is(err, errTornFrame) || offset+frameLen >= total {
				break
			}
			return fmt.Errorf("%w: at offset %d: %v", ErrCorruptWALRecord, offset, err)
		}
		offset += frameLen
		w.seq = rec.Seq
	}
	if offset < total {
		if err := w.fd.Truncate(offset); err != nil {
			return err
		}
	}
	w.size = offset
	return nil
}

// Append frames rec's payload, writes it at the logical end of the log and
// fsyncs before returning. A failed write never advances the logical size,
// so a partially persisted frame is overwritten by the next append and
// discarded by the next scan.
func (w *WAL) Append(op byte, id, value uint32) (WalRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := WalRecord{Seq: w.seq + 1, Op: op, ID: id, Value: value}
	if _, err := w.fd.WriteAt(encodeFrame(rec), w.size); err != nil {
		return WalRecord{}, err
	}
	if err := w.fd.Sync(); err != nil {
		return WalRecord{}, err
	}
	w.size += walFrameSize
	w.seq = rec.Seq
	return rec, nil
}

// Replay returns an iterator over all confirmed records in append order.
// Each call starts from the beginning of the log.
func (w *WAL) Replay() *WalIterator {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &WalIterator{
		reader:    bufio.NewReader(io.NewSectionReader(w.fd, 0, w.size)),
		remaining: w.size,
	}
}

// Truncate empties the log. Callers must only do this after the state the
// records describe has been durably written back to the page file.
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.fd.Truncate(0); err != nil {
		return err
	}
	if err := w.fd.Sync(); err != nil {
		return err
	}
	w.size = 0
	return nil
}

// Size returns the logical size of the log in bytes.
func (w *WAL) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fd == nil {
		return nil
	}
	err := w.fd.Close()
	w.fd = nil
	return err
}

// WalIterator yields records lazily in append order.
type WalIterator struct {
	reader    *bufio.Reader
	remaining int64
}

// Next returns the next record, or ok=false when the log is exhausted. The
// section it reads was validated at open time, so any checksum failure here
// is real corruption, not a torn tail.
func (it *WalIterator) Next() (WalRecord, bool, error) {
	if it.remaining <= 0 {
		return WalRecord{}, false, nil
	}
	rec, frameLen, err := readFrame(it.reader)
	if err != nil {
		if errors.Is(err, errTornFrame) {
			return WalRecord{}, false, fmt.Errorf("%w: log shorter than scanned", ErrCorruptWALRecord)
		}
		return WalRecord{}, false, fmt.Errorf("%w: %v", ErrCorruptWALRecord, err)
	}
	it.remaining -= frameLen
	return rec, true, nil
}

var errTornFrame = errors.New("torn frame")

func encodeFrame(rec WalRecord) []byte {
	frame := make([]byte, walFrameSize)
	payload := frame[8:]
	binary.LittleEndian.PutUint64(payload, rec.Seq)
	payload[8] = rec.Op
	binary.LittleEndian.PutUint32(payload[9:], rec.ID)
	binary.LittleEndian.PutUint32(payload[13:], rec.Value)
	binary.LittleEndian.PutUint32(frame, crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(frame[4:], walPayloadSize)
	return frame
}

// readFrame decodes one frame. errTornFrame means the reader ran out of
// bytes mid-frame; any other error describes an invalid frame.
func readFrame(r *bufio.Reader) (WalRecord, int64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return WalRecord{}, 0, errTornFrame
	}
	checksum := binary.LittleEndian.Uint32(header)
	length := binary.LittleEndian.Uint32(header[4:])
	if length != walPayloadSize {
		return WalRecord{}, 8 + int64(length), fmt.Errorf("payload length %d, want %d", length, walPayloadSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return WalRecord{}, 0, errTornFrame
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return WalRecord{}, walFrameSize, errors.New("checksum mismatch")
	}
	rec := WalRecord{
		Seq:   binary.LittleEndian.Uint64(payload),
		Op:    payload[8],
		ID:    binary.LittleEndian.Uint32(payload[9:]),
		Value: binary.LittleEndian.Uint32(payload[13:]),
	}
	if rec.Op != OpInsert && rec.Op != OpDelete {
		return WalRecord{}, walFrameSize, fmt.Errorf("unknown record kind %d", rec.Op)
	}
	return rec, walFrameSize, nil
}
