package view

import (
	"testing"

	"github.com/kestrelworks/worldview/internal/state"
)

const frameDT = 1.0 / 60

func newTestScene() *Scene {
	proj := ProjectionFor(1280, 800, 96, 48)
	return NewScene(proj, DefaultEffectConfig(), NewSceneLog(false), 1)
}

// baseSnapshot builds a calm five-region world: hold actions, healthy
// morale, full larders, no weather.
func baseSnapshot(tick int) *state.WorldState {
	ws := &state.WorldState{
		Tick:    tick,
		Regions: map[state.RegionID]state.RegionState{},
		Agents:  map[state.RegionID]state.AgentState{},
	}
	for _, m := range Catalog {
		ws.Regions[m.ID] = state.RegionState{
			ID:            m.ID,
			Name:          m.Name,
			Resources:     state.Resources{Water: 250, Food: 250, Energy: 250, Land: 250},
			Action:        state.ActionHold,
			Morale:        0.8,
			ActiveWeather: state.WeatherNone,
		}
		ws.Agents[m.ID] = state.AgentState{RegionID: m.ID, Action: state.ActionHold}
	}
	return ws
}

// withRegion clones the snapshot and mutates one region in the copy.
func withRegion(ws *state.WorldState, id state.RegionID, mut func(*state.RegionState)) *state.WorldState {
	out := ws.Clone()
	r := out.Regions[id]
	mut(&r)
	out.Regions[id] = r
	return out
}

// stepFrames feeds the snapshot once as new, then advances n-1 plain frames.
func stepFrames(sc *Scene, snap *state.WorldState, n int) {
	sc.Step(snap, true, frameDT)
	for i := 1; i < n; i++ {
		sc.Step(snap, false, frameDT)
	}
}

func TestRainStartsAndDrainsParticleSource(t *testing.T) {
	sc := newTestScene()
	rain := withRegion(baseSnapshot(1), "verdantis", func(r *state.RegionState) {
		r.ActiveWeather = state.WeatherRain
	})

	stepFrames(sc, rain, 1)
	if got := sc.WeatherFx().ParticleState("verdantis"); got != fxActive {
		t.Fatalf("particle source should activate on the first step, got %v", got)
	}
	if !sc.Particles().EmitterActive("verdantis") {
		t.Fatal("emitter not running")
	}

	stepFrames(sc, rain, 60)
	if sc.Particles().CountFor("verdantis") == 0 {
		t.Fatal("no particles after a second of rain")
	}
	if got := sc.WeatherFx().ParticleState("verdantis"); got != fxActive {
		t.Fatalf("sustained rain should stay active, got %v", got)
	}

	// Weather ends: emission stops, in-flight drops live out their lifetime.
	clear := withRegion(rain, "verdantis", func(r *state.RegionState) {
		r.ActiveWeather = state.WeatherNone
	})
	stepFrames(sc, clear, 2)
	if got := sc.WeatherFx().ParticleState("verdantis"); got != fxFading {
		t.Fatalf("want fading after weather clears, got %v", got)
	}
	stepFrames(sc, clear, 120)
	if got := sc.WeatherFx().ParticleState("verdantis"); got != fxIdle {
		t.Fatalf("want idle once particles drain, got %v\n%s", got, sc.Log().Format())
	}
	if n := sc.Particles().CountFor("verdantis"); n != 0 {
		t.Fatalf("want 0 particles after drain, got %d", n)
	}
}

func TestWeatherTintEasesInAndOut(t *testing.T) {
	sc := newTestScene()
	drought := withRegion(baseSnapshot(1), "terranova", func(r *state.RegionState) {
		r.ActiveWeather = state.WeatherDrought
	})

	stepFrames(sc, drought, 30)
	h := sc.Registry().Lookup("terranova")
	half := h.TintAlpha
	if half <= 0 || half >= tintTargetMax {
		t.Fatalf("tint should be easing toward %g, got %g", tintTargetMax, half)
	}
	stepFrames(sc, drought, 300)
	if h.TintAlpha < tintTargetMax*0.95 {
		t.Fatalf("tint should settle near %g, got %g", tintTargetMax, h.TintAlpha)
	}
	if h.TintWeather != state.WeatherDrought {
		t.Fatalf("tint weather not recorded, got %q", h.TintWeather)
	}

	clear := withRegion(drought, "terranova", func(r *state.RegionState) {
		r.ActiveWeather = state.WeatherNone
	})
	stepFrames(sc, clear, 600)
	if got := sc.WeatherFx().TintState("terranova"); got != fxIdle {
		t.Fatalf("want idle after easing out, got %v", got)
	}
	if h.TintAlpha != 0 {
		t.Fatalf("tint alpha should land on exactly 0, got %g", h.TintAlpha)
	}
}

func TestBarFlashFiresOncePerDrop(t *testing.T) {
	sc := newTestScene()
	stepFrames(sc, baseSnapshot(1), 2) // seeds resource history

	starved := withRegion(baseSnapshot(2), "verdantis", func(r *state.RegionState) {
		r.Resources.Food = 100
	})
	stepFrames(sc, starved, 10)

	if n := sc.Log().Count("fx", "bar_flash"); n != 1 {
		t.Fatalf("want exactly 1 bar flash, got %d\n%s", n, sc.Log().Format())
	}
	if !sc.Log().HasEntry("fx", "bar_flash", "food 250.0 -> 100.0") {
		t.Fatalf("flash entry missing\n%s", sc.Log().Format())
	}
	h := sc.Registry().Lookup("verdantis")
	if h.Bars[BarFood].FlashAlpha <= 0 {
		t.Fatal("food bar flash overlay not lit")
	}

	// The same low value on later snapshots is no new drop.
	stepFrames(sc, starved.Clone(), 10)
	if n := sc.Log().Count("fx", "bar_flash"); n != 1 {
		t.Fatalf("sustained low value re-flashed: %d entries", n)
	}

	// The flash itself is time-bounded.
	stepFrames(sc, starved.Clone(), 60)
	if h.Bars[BarFood].FlashAlpha != 0 {
		t.Fatalf("flash should decay to 0, got %g", h.Bars[BarFood].FlashAlpha)
	}
}

func TestBarValuesTrackSnapshot(t *testing.T) {
	sc := newTestScene()
	snap := withRegion(baseSnapshot(1), "aquilonia", func(r *state.RegionState) {
		r.Resources = state.Resources{Water: 300, Food: 150, Energy: 0, Land: 400}
	})
	stepFrames(sc, snap, 1)

	h := sc.Registry().Lookup("aquilonia")
	if h.Bars[BarWater].Value != 1 || h.Bars[BarFood].Value != 0.5 || h.Bars[BarEnergy].Value != 0 {
		t.Fatalf("bar fills wrong: %+v", h.Bars)
	}
	if h.Bars[BarLand].Value != 1 {
		t.Fatalf("over-max resource should clamp to 1, got %g", h.Bars[BarLand].Value)
	}
}

func TestTradeBeamEasesInAndOut(t *testing.T) {
	sc := newTestScene()
	trading := baseSnapshot(1)
	for _, id := range []state.RegionID{"aquilonia", "nexus"} {
		trading = withRegion(trading, id, func(r *state.RegionState) {
			r.Action = state.ActionTrade
		})
	}
	trading = withRegion(trading, "aquilonia", func(r *state.RegionState) {
		r.TradePartners = []state.RegionID{"nexus"}
	})

	sc.Step(trading, true, frameDT)
	fx, ok := sc.BeamsFx().Beam("aquilonia", "nexus")
	if !ok {
		t.Fatal("beam not created for trading adjacent pair")
	}

	prev := fx.Alpha
	for i := 0; i < 90; i++ {
		sc.Step(trading, false, frameDT)
		if fx.Alpha < prev {
			t.Fatalf("beam alpha regressed while trading: %g -> %g", prev, fx.Alpha)
		}
		prev = fx.Alpha
	}
	if fx.Alpha < 0.9 {
		t.Fatalf("beam should be near full after 1.5s, got %g", fx.Alpha)
	}

	// One endpoint stops trading: the beam eases out and is removed.
	stopped := withRegion(trading, "nexus", func(r *state.RegionState) {
		r.Action = state.ActionHold
	})
	stepFrames(sc, stopped, 240)
	if _, ok := sc.BeamsFx().Beam("aquilonia", "nexus"); ok {
		t.Fatal("beam not removed after trading stopped")
	}
	if !sc.Log().HasEntry("fx", "beam", "fading -> idle") {
		t.Fatalf("missing beam teardown entry\n%s", sc.Log().Format())
	}
}

func TestBeamRequiresAdjacency(t *testing.T) {
	sc := newTestScene()
	// aquilonia and terranova both trade and name each other, but sit on
	// opposite corners with no edge between them.
	snap := baseSnapshot(1)
	for _, id := range []state.RegionID{"aquilonia", "terranova"} {
		id := id
		snap = withRegion(snap, id, func(r *state.RegionState) {
			r.Action = state.ActionTrade
			if id == "aquilonia" {
				r.TradePartners = []state.RegionID{"terranova"}
			} else {
				r.TradePartners = []state.RegionID{"aquilonia"}
			}
		})
	}
	stepFrames(sc, snap, 5)
	if len(sc.BeamsFx().Beams()) != 0 {
		t.Fatal("non-adjacent pair grew a beam")
	}
}

func TestConflictFlashIsEdgeTriggered(t *testing.T) {
	sc := newTestScene()
	stepFrames(sc, baseSnapshot(1), 2) // seeds action history

	steal := withRegion(baseSnapshot(2), "terranova", func(r *state.RegionState) {
		r.Action = state.ActionSteal
		r.TargetBeams = []state.Beam{{Target: "nexus", Kind: state.BeamConflict}}
	})
	stepFrames(sc, steal, 2)

	if n := sc.Log().Count("fx", "conflict_flash"); n != 1 {
		t.Fatalf("want 1 flash on the steal edge, got %d", n)
	}
	h := sc.Registry().Lookup("terranova")
	if h.FlashAlpha <= 0 {
		t.Fatal("flash overlay not lit")
	}
	if sc.Particles().CountFor("terranova") == 0 {
		t.Fatal("no debris at the attacker")
	}
	if sc.Particles().CountFor("nexus") == 0 {
		t.Fatal("no debris at the victim")
	}

	// Holding steal across further snapshots must not re-fire.
	for tick := 3; tick < 8; tick++ {
		next := steal.Clone()
		next.Tick = tick
		stepFrames(sc, next, 60)
	}
	if n := sc.Log().Count("fx", "conflict_flash"); n != 1 {
		t.Fatalf("sustained steal re-fired: %d flashes", n)
	}

	// Dropping out of steal and back in is a fresh edge.
	calm := baseSnapshot(8)
	stepFrames(sc, calm, 60)
	again := withRegion(baseSnapshot(9), "terranova", func(r *state.RegionState) {
		r.Action = state.ActionSteal
	})
	stepFrames(sc, again, 2)
	if n := sc.Log().Count("fx", "conflict_flash"); n != 2 {
		t.Fatalf("want 2 flashes after a second edge, got %d", n)
	}
}

func TestFirstSnapshotSeedsWithoutFiring(t *testing.T) {
	sc := newTestScene()
	// Joining a world already mid-conflict and mid-famine: nothing fires.
	joined := withRegion(baseSnapshot(1), "ignis_core", func(r *state.RegionState) {
		r.Action = state.ActionSteal
		r.Resources.Food = 5
	})
	stepFrames(sc, joined, 10)
	if n := sc.Log().Count("fx", "conflict_flash"); n != 0 {
		t.Fatalf("first snapshot fired %d conflict flashes", n)
	}
	if n := sc.Log().Count("fx", "bar_flash"); n != 0 {
		t.Fatalf("first snapshot fired %d bar flashes", n)
	}
}

func TestDangerHaloLifecycle(t *testing.T) {
	sc := newTestScene()
	grim := withRegion(baseSnapshot(1), "ignis_core", func(r *state.RegionState) {
		r.Morale = 0.2 // danger 0.8
	})
	stepFrames(sc, grim, 30)

	if got := sc.DangerFx().State("ignis_core"); got != fxActive {
		t.Fatalf("want active halo, got %v", got)
	}
	h := sc.Registry().Lookup("ignis_core")
	if h.HaloAlpha <= 0 {
		t.Fatal("halo not visible while active")
	}
	if !sc.Log().HasEntry("fx", "halo", "idle -> active") {
		t.Fatalf("missing halo activation entry\n%s", sc.Log().Format())
	}

	// Morale recovers: fade out, then idle, alpha gone.
	recovered := withRegion(grim, "ignis_core", func(r *state.RegionState) {
		r.Morale = 0.9
	})
	stepFrames(sc, recovered, 2)
	if got := sc.DangerFx().State("ignis_core"); got != fxFading {
		t.Fatalf("want fading halo, got %v", got)
	}
	stepFrames(sc, recovered, 60)
	if got := sc.DangerFx().State("ignis_core"); got != fxIdle {
		t.Fatalf("want idle halo after fade, got %v", got)
	}
	if h.HaloAlpha != 0 {
		t.Fatalf("halo alpha should be 0 after fade, got %g", h.HaloAlpha)
	}
}

func TestDangerResumesMidFade(t *testing.T) {
	sc := newTestScene()
	grim := withRegion(baseSnapshot(1), "nexus", func(r *state.RegionState) {
		r.Morale = 0.1
	})
	stepFrames(sc, grim, 10)
	calm := withRegion(grim, "nexus", func(r *state.RegionState) { r.Morale = 0.9 })
	stepFrames(sc, calm, 5) // partway into the 0.8s fade
	stepFrames(sc, grim.Clone(), 5)
	if got := sc.DangerFx().State("nexus"); got != fxActive {
		t.Fatalf("danger returning mid-fade should resume the pulse, got %v", got)
	}
}

func TestSpeechBubbleLifecycle(t *testing.T) {
	cfg := DefaultEffectConfig()
	cfg.SpeechSeconds = 0.5
	sc := NewScene(ProjectionFor(1280, 800, 96, 48), cfg, NewSceneLog(false), 1)

	talking := withRegion(baseSnapshot(1), "verdantis", func(r *state.RegionState) {
		r.SpeechBubble = "Trade with us!"
	})
	stepFrames(sc, talking, 2)
	h := sc.Registry().Lookup("verdantis")
	if h.BubbleText != "Trade with us!" || h.BubbleAlpha != 1 {
		t.Fatalf("bubble not showing: text=%q alpha=%g", h.BubbleText, h.BubbleAlpha)
	}

	// New text replaces the running bubble.
	replaced := withRegion(talking, "verdantis", func(r *state.RegionState) {
		r.SpeechBubble = "On second thought..."
	})
	stepFrames(sc, replaced, 2)
	if h.BubbleText != "On second thought..." {
		t.Fatalf("bubble not replaced, got %q", h.BubbleText)
	}

	// It expires on its own.
	stepFrames(sc, replaced.Clone(), 60)
	if h.BubbleText != "" || h.BubbleAlpha != 0 {
		t.Fatalf("bubble should expire: text=%q alpha=%g", h.BubbleText, h.BubbleAlpha)
	}

	// Cleared text dismisses immediately.
	stepFrames(sc, talking.Clone(), 2)
	silent := withRegion(talking, "verdantis", func(r *state.RegionState) {
		r.SpeechBubble = ""
	})
	stepFrames(sc, silent, 1)
	if h.BubbleText != "" {
		t.Fatalf("cleared text should dismiss, got %q", h.BubbleText)
	}
	if !sc.Log().HasEntry("fx", "speech", "cleared") {
		t.Fatalf("missing dismiss entry\n%s", sc.Log().Format())
	}
}

func TestRebuildPreservesEdgeHistory(t *testing.T) {
	sc := newTestScene()
	stepFrames(sc, baseSnapshot(1), 2)
	steal := withRegion(baseSnapshot(2), "terranova", func(r *state.RegionState) {
		r.Action = state.ActionSteal
	})
	stepFrames(sc, steal, 2)
	if n := sc.Log().Count("fx", "conflict_flash"); n != 1 {
		t.Fatalf("setup: want 1 flash, got %d", n)
	}
	old := sc.Registry().Lookup("terranova")

	sc.Rebuild(ProjectionFor(1920, 1080, 96, 48))

	if !old.Destroyed() {
		t.Fatal("old handle not marked destroyed")
	}
	fresh := sc.Registry().Lookup("terranova")
	if fresh == old {
		t.Fatal("rebuild should mint new handles")
	}
	// Only the idle bobs survive a rebuild.
	if got := sc.Scheduler().Len(); got != len(Catalog) {
		t.Fatalf("want %d animations after rebuild, got %d", len(Catalog), got)
	}
	if len(sc.Particles().Particles()) != 0 {
		t.Fatal("particles survived rebuild")
	}

	// Re-feeding the same steal snapshot must not re-fire: history is kept.
	next := steal.Clone()
	next.Tick = 3
	stepFrames(sc, next, 2)
	if n := sc.Log().Count("fx", "conflict_flash"); n != 1 {
		t.Fatalf("rebuild re-fired the conflict flash: %d entries", n)
	}
}

func TestTradeBeamRelightsAfterRebuild(t *testing.T) {
	sc := newTestScene()
	trading := baseSnapshot(1)
	for _, id := range []state.RegionID{"aquilonia", "nexus"} {
		trading = withRegion(trading, id, func(r *state.RegionState) {
			r.Action = state.ActionTrade
		})
	}
	trading = withRegion(trading, "aquilonia", func(r *state.RegionState) {
		r.TradePartners = []state.RegionID{"nexus"}
	})
	stepFrames(sc, trading, 90)

	sc.Rebuild(ProjectionFor(1920, 1080, 96, 48))

	// The pair keeps trading: the beam must come back with a live animation.
	next := trading.Clone()
	next.Tick = 2
	stepFrames(sc, next, 90)

	fx, ok := sc.BeamsFx().Beam("aquilonia", "nexus")
	if !ok {
		t.Fatal("beam not re-lit after rebuild")
	}
	if !sc.Scheduler().Active(pairKey("aquilonia", "nexus"), EffectTradeBeam) {
		t.Fatal("re-lit beam has no driving animation")
	}
	if fx.Alpha < 0.9 {
		t.Fatalf("re-lit beam should be near full after 1.5s, got %g", fx.Alpha)
	}

	// And it must still be able to ease out and disappear.
	stopped := withRegion(next, "nexus", func(r *state.RegionState) {
		r.Action = state.ActionHold
	})
	stepFrames(sc, stopped, 240)
	if _, ok := sc.BeamsFx().Beam("aquilonia", "nexus"); ok {
		t.Fatal("beam stuck on screen after trading stopped")
	}
}

func TestDangerHaloKeepsPulsingAfterRebuild(t *testing.T) {
	sc := newTestScene()
	grim := withRegion(baseSnapshot(1), "ignis_core", func(r *state.RegionState) {
		r.Morale = 0.2
	})
	stepFrames(sc, grim, 30)
	if got := sc.DangerFx().State("ignis_core"); got != fxActive {
		t.Fatalf("setup: want active halo, got %v", got)
	}

	sc.Rebuild(ProjectionFor(1920, 1080, 96, 48))

	next := grim.Clone()
	next.Tick = 2
	stepFrames(sc, next, 30)

	if got := sc.DangerFx().State("ignis_core"); got != fxActive {
		t.Fatalf("halo state lost across rebuild, got %v", got)
	}
	if !sc.Scheduler().Active("ignis_core", EffectDangerHalo) {
		t.Fatal("halo pulse not re-armed after rebuild")
	}
	h := sc.Registry().Lookup("ignis_core")
	if h.HaloAlpha <= 0 {
		t.Fatalf("halo invisible after rebuild: alpha=%g", h.HaloAlpha)
	}
}

func TestSpeechBubbleCarriesAcrossRebuild(t *testing.T) {
	cfg := DefaultEffectConfig()
	cfg.SpeechSeconds = 1.0
	sc := NewScene(ProjectionFor(1280, 800, 96, 48), cfg, NewSceneLog(false), 1)

	talking := withRegion(baseSnapshot(1), "verdantis", func(r *state.RegionState) {
		r.SpeechBubble = "Trade with us!"
	})
	stepFrames(sc, talking, 30) // half the display window

	sc.Rebuild(ProjectionFor(1920, 1080, 96, 48))

	h := sc.Registry().Lookup("verdantis")
	if h.BubbleText != "Trade with us!" {
		t.Fatalf("bubble lost across rebuild, got %q", h.BubbleText)
	}
	if !sc.Scheduler().Active("verdantis", EffectSpeech) {
		t.Fatal("restored bubble has no animation")
	}

	stepFrames(sc, talking.Clone(), 10)
	if h.BubbleAlpha <= 0 {
		t.Fatalf("restored bubble invisible: alpha=%g", h.BubbleAlpha)
	}

	// Only the remaining half window is left; it still expires on time.
	stepFrames(sc, talking.Clone(), 60)
	if h.BubbleText != "" || h.BubbleAlpha != 0 {
		t.Fatalf("restored bubble overstayed: text=%q alpha=%g", h.BubbleText, h.BubbleAlpha)
	}
}

func TestTeardownMakesSceneInert(t *testing.T) {
	sc := newTestScene()
	rain := withRegion(baseSnapshot(1), "verdantis", func(r *state.RegionState) {
		r.ActiveWeather = state.WeatherRain
	})
	stepFrames(sc, rain, 30)

	sc.Teardown()
	if sc.Scheduler().Len() != 0 {
		t.Fatalf("animations survived teardown: %d", sc.Scheduler().Len())
	}
	if len(sc.Particles().Particles()) != 0 {
		t.Fatal("particles survived teardown")
	}
	for _, h := range sc.Registry().Handles() {
		if !h.Destroyed() {
			t.Fatalf("handle %s not destroyed", h.Region)
		}
	}

	before := len(sc.Log().Entries())
	stepFrames(sc, rain.Clone(), 10)
	if sc.Scheduler().Len() != 0 || len(sc.Log().Entries()) != before {
		t.Fatal("torn-down scene still reacts to snapshots")
	}
}

func TestRegistryStableBind(t *testing.T) {
	reg := NewRegistry(ProjectionFor(1280, 800, 96, 48))
	a := reg.Bind("nexus")
	b := reg.Bind("nexus")
	if a == nil || a != b {
		t.Fatal("Bind should return the same handle for the lifetime of the scene")
	}
	if reg.Bind("atlantis") != nil {
		t.Fatal("unknown region should not bind")
	}

	for _, m := range Catalog {
		reg.Bind(m.ID)
	}
	handles := reg.Handles()
	if handles[0].Region != "nexus" {
		t.Fatalf("draw order should follow bind order, got %s first", handles[0].Region)
	}
}

func TestUnknownRegionInSnapshotIsIgnored(t *testing.T) {
	sc := newTestScene()
	snap := baseSnapshot(1)
	snap.Regions["atlantis"] = state.RegionState{
		ID:     "atlantis",
		Action: state.ActionSteal,
		Morale: 0, // maximum danger
	}
	stepFrames(sc, snap, 10)
	stepFrames(sc, snap.Clone(), 10)
	if n := sc.Log().Count("fx", "conflict_flash"); n != 0 {
		t.Fatalf("unbindable region fired effects: %d", n)
	}
	if n := sc.Log().Count("fx", "halo"); n != 0 {
		t.Fatalf("unbindable region grew a halo: %d", n)
	}
}

func TestStoreSubscriptionEndsAtTeardown(t *testing.T) {
	sc := newTestScene()
	st := state.NewStore()
	sc.AttachStore(st)

	st.ApplyFull(baseSnapshot(1))
	snap, changed := sc.TakePending()
	if !changed || snap == nil || snap.Tick != 1 {
		t.Fatal("published snapshot did not reach the scene")
	}
	if _, again := sc.TakePending(); again {
		t.Fatal("TakePending should consume the pending snapshot")
	}

	// Two publications between frames: only the newest is seen.
	st.ApplyFull(baseSnapshot(2))
	st.ApplyFull(baseSnapshot(3))
	snap, changed = sc.TakePending()
	if !changed || snap.Tick != 3 {
		t.Fatalf("want last-write-wins tick 3, got %+v", snap)
	}

	sc.Teardown()
	st.ApplyFull(baseSnapshot(4))
	if _, leaked := sc.TakePending(); leaked {
		t.Fatal("subscription survived teardown")
	}
}
