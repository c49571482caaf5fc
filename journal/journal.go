// Package journal persists pipeline run reports locally so past runs can
// be listed after the fact.
//
// The journal is an append-only file of length-prefixed msgpack frames:
// a 4-byte big-endian payload length followed by one msgpack-encoded
// RunRecord. Appends are atomic at the frame level; a truncated trailing
// frame is reported, never silently skipped.
package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bricklab/sceneflow/iox"
)

// Frame size constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
	// MaxRecordSize is the maximum encoded record size (1 MiB).
	MaxRecordSize = 1 << 20
)

// ErrTruncated indicates the journal ended mid-frame.
var ErrTruncated = errors.New("truncated journal record")

// StageRecord is the persisted form of one stage outcome.
type StageRecord struct {
	Name     string `msgpack:"name"`
	Status   string `msgpack:"status"`
	Attempts int    `msgpack:"attempts"`
	Kind     string `msgpack:"kind,omitempty"`
	Error    string `msgpack:"error,omitempty"`
}

// RunRecord is the persisted form of one pipeline run report.
type RunRecord struct {
	RunID      string        `msgpack:"run_id"`
	StartedAt  time.Time     `msgpack:"started_at"`
	DurationMS int64         `msgpack:"duration_ms"`
	Status     string        `msgpack:"status"`
	Halted     string        `msgpack:"halted,omitempty"`
	Stages     []StageRecord `msgpack:"stages"`
}

// Append encodes the record and appends one frame to the journal file,
// creating the file and its parent directory as needed.
func Append(path string, record RunRecord) error {
	payload, err := msgpack.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}
	if len(payload) > MaxRecordSize {
		return fmt.Errorf("run record size %d exceeds maximum %d", len(payload), MaxRecordSize)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal %q: %w", path, err)
	}
	defer iox.DiscardClose(f)

	frame := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame[:LengthPrefixSize], uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)

	if _, err := f.Write(frame); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return f.Close()
}

// Reader decodes run records from a journal stream.
type Reader struct {
	reader io.Reader
}

// NewReader creates a journal reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: r}
}

// Next reads one record. Returns io.EOF when the stream ends cleanly at a
// frame boundary and ErrTruncated when it ends mid-frame.
func (r *Reader) Next() (*RunRecord, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(r.reader, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	size := binary.BigEndian.Uint32(lengthBuf[:])
	if size > MaxRecordSize {
		return nil, fmt.Errorf("record size %d exceeds maximum %d", size, MaxRecordSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r.reader, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	var record RunRecord
	if err := msgpack.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode run record: %w", err)
	}
	return &record, nil
}

// ReadFile returns every record in the journal file in append order.
// A missing file yields an empty history, not an error.
func ReadFile(path string) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal %q: %w", path, err)
	}
	defer iox.DiscardClose(f)

	var records []RunRecord
	reader := NewReader(f)
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, *record)
	}
}
