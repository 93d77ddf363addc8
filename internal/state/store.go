package state

import (
	"sync"
	"sync/atomic"
)

// Store is the shared handoff point between the network reader and the frame
// driver. The reader applies messages through the reconciler; the frame
// driver polls Generation each frame and re-reads Latest only when it moved.
// Only the most recent snapshot is retained: if messages outpace frames the
// older ones are simply never observed (last write wins).
type Store struct {
	mu  sync.Mutex
	rec Reconciler

	snap atomic.Pointer[WorldState]
	gen  atomic.Uint64

	subID int
	subs  map[int]func(*WorldState)
}

// NewStore returns an empty store with no canonical snapshot yet.
func NewStore() *Store {
	return &Store{subs: map[int]func(*WorldState){}}
}

// Latest returns the newest canonical snapshot, or nil before the first full
// snapshot arrives. The returned value is never mutated afterwards; treat it
// as read-only.
func (s *Store) Latest() *WorldState {
	return s.snap.Load()
}

// Generation increments every time a new snapshot is published. Pollers
// compare it against the last value they acted on.
func (s *Store) Generation() uint64 {
	return s.gen.Load()
}

// ApplyFull reconciles a full snapshot and publishes it.
func (s *Store) ApplyFull(ws *WorldState) *WorldState {
	s.mu.Lock()
	snap := s.rec.ApplyFull(ws)
	s.publishLocked(snap)
	subs := s.subscribersLocked()
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// ApplyCompact reconciles a compact delta and publishes the merged snapshot.
// A delta without a baseline returns ErrNoBaseline and publishes nothing.
func (s *Store) ApplyCompact(d *CompactWorldState) (*WorldState, error) {
	s.mu.Lock()
	snap, err := s.rec.ApplyCompact(d)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.publishLocked(snap)
	subs := s.subscribersLocked()
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
	return snap, nil
}

// InvalidateBaseline keeps the current snapshot visible but blocks compact
// merges until a fresh full snapshot arrives. Called on reconnect.
func (s *Store) InvalidateBaseline() {
	s.mu.Lock()
	s.rec.InvalidateBaseline()
	s.mu.Unlock()
}

// Subscribe registers a callback invoked after every published snapshot and
// returns a token for Unsubscribe. Subscribers that outlive their scene must
// unsubscribe on teardown, otherwise they fire against dead handles.
func (s *Store) Subscribe(fn func(*WorldState)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subID++
	s.subs[s.subID] = fn
	return s.subID
}

// Unsubscribe removes a previously registered callback. Unknown tokens are
// ignored.
func (s *Store) Unsubscribe(token int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, token)
}

func (s *Store) publishLocked(snap *WorldState) {
	s.snap.Store(snap)
	s.gen.Add(1)
}

func (s *Store) subscribersLocked() []func(*WorldState) {
	out := make([]func(*WorldState), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
