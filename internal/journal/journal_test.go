package journal

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func TestJournal_RecordAndReplayInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl.zst")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	frames := []string{
		`{"type":"initial_state","data":{"step":0,"regions":{}}}`,
		`{"type":"state_update","data":{"step":1,"region_keys":["nexus"],"morale":[0.5]}}`,
		`{"type":"pong"}`,
	}
	for _, f := range frames {
		if err := w.Record([]byte(f)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer r.Close()

	for i, want := range frames {
		e, err := r.Next()
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		if string(e.Frame) != want {
			t.Fatalf("entry %d = %s, want %s", i, e.Frame, want)
		}
		if e.At.IsZero() {
			t.Fatalf("entry %d has no timestamp", i)
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("after last entry: %v, want io.EOF", err)
	}
}
