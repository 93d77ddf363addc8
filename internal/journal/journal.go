// Package journal captures the raw inbound message stream as
// zstd-compressed JSONL so a session can be replayed through the reconciler
// later. It records transport frames, not visual state.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Entry is one recorded inbound frame.
type Entry struct {
	At    time.Time       `json:"at"`
	Frame json.RawMessage `json:"frame"`
}

// Writer appends inbound frames to a .jsonl.zst file.
type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter creates (or truncates) the journal file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

// Record appends one frame with the current time.
func (jw *Writer) Record(frame []byte) error {
	return jw.record(Entry{At: time.Now().UTC(), Frame: append(json.RawMessage(nil), frame...)})
}

func (jw *Writer) record(e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(b); err != nil {
		return err
	}
	return jw.w.WriteByte('\n')
}

// Close flushes and closes the journal.
func (jw *Writer) Close() error {
	if err := jw.w.Flush(); err != nil {
		return err
	}
	if err := jw.enc.Close(); err != nil {
		return err
	}
	return jw.f.Close()
}

// Reader iterates a recorded session in order.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

// NewReader opens a journal file for replay.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &Reader{f: f, dec: dec, sc: sc}, nil
}

// Next returns the next recorded entry, or io.EOF at end of session.
func (jr *Reader) Next() (Entry, error) {
	if !jr.sc.Scan() {
		if err := jr.sc.Err(); err != nil {
			return Entry{}, err
		}
		return Entry{}, io.EOF
	}
	var e Entry
	if err := json.Unmarshal(jr.sc.Bytes(), &e); err != nil {
		return Entry{}, fmt.Errorf("journal entry: %w", err)
	}
	return e, nil
}

// Close releases the reader.
func (jr *Reader) Close() error {
	jr.dec.Close()
	return jr.f.Close()
}
