package state

import "testing"

func TestStore_GenerationMovesOnPublish(t *testing.T) {
	s := NewStore()
	if s.Latest() != nil {
		t.Fatal("empty store published a snapshot")
	}
	g0 := s.Generation()

	s.ApplyFull(fullSnapshot(1))
	if s.Generation() == g0 {
		t.Fatal("generation unchanged after full snapshot")
	}
	if s.Latest() == nil || s.Latest().Tick != 1 {
		t.Fatal("latest snapshot not published")
	}

	g1 := s.Generation()
	delta := &CompactWorldState{Tick: 2, RegionKeys: []RegionID{"nexus"}, Morale: []float64{0.5}}
	if _, err := s.ApplyCompact(delta); err != nil {
		t.Fatalf("apply compact: %v", err)
	}
	if s.Generation() == g1 {
		t.Fatal("generation unchanged after delta")
	}
}

func TestStore_RejectedDeltaPublishesNothing(t *testing.T) {
	s := NewStore()
	g0 := s.Generation()
	delta := &CompactWorldState{Tick: 2, RegionKeys: []RegionID{"nexus"}, Morale: []float64{0.5}}
	if _, err := s.ApplyCompact(delta); err != ErrNoBaseline {
		t.Fatalf("got %v, want ErrNoBaseline", err)
	}
	if s.Generation() != g0 || s.Latest() != nil {
		t.Fatal("rejected delta leaked a publication")
	}
}

func TestStore_SubscribeUnsubscribe(t *testing.T) {
	s := NewStore()
	var got []int
	token := s.Subscribe(func(ws *WorldState) { got = append(got, ws.Tick) })

	s.ApplyFull(fullSnapshot(1))
	s.ApplyFull(fullSnapshot(2))
	s.Unsubscribe(token)
	s.ApplyFull(fullSnapshot(3))

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("subscriber saw %v, want [1 2]", got)
	}
}
