package view

import (
	"sync/atomic"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/kestrelworks/worldview/internal/iso"
	"github.com/kestrelworks/worldview/internal/state"
)

// Scene is the headless core of the viewer: registry, scheduler, particle
// pool and all effect controllers, advanced by plain elapsed-time steps.
// The ebiten layer draws it; tests drive it directly.
type Scene struct {
	reg   *Registry
	sched *Scheduler
	pool  *ParticlePool
	log   *SceneLog
	cfg   EffectConfig
	noise opensimplex.Noise

	danger   *DangerController
	weather  *WeatherController
	beams    *BeamController
	conflict *ConflictController
	bars     *BarController
	speech   *SpeechController
	idle     IdleController

	// Store subscription. The callback runs on the network goroutine and
	// only stashes the snapshot; handles are touched on the frame side.
	store    *state.Store
	subToken int
	pending  atomic.Pointer[state.WorldState]

	lastSnap *state.WorldState
	tornDown bool
}

// NewScene builds a scene for the given projection. Every catalog region is
// bound before any snapshot can reference it.
func NewScene(proj iso.Projection, cfg EffectConfig, log *SceneLog, seed int64) *Scene {
	if log == nil {
		log = NewSceneLog(false)
	}
	sc := &Scene{
		reg:      NewRegistry(proj),
		sched:    NewScheduler(),
		pool:     NewParticlePool(cfg.MaxParticles, seed),
		log:      log,
		cfg:      cfg,
		noise:    opensimplex.New(seed),
		danger:   NewDangerController(),
		weather:  NewWeatherController(),
		beams:    NewBeamController(),
		conflict: NewConflictController(),
		bars:     NewBarController(),
		speech:   NewSpeechController(),
	}
	sc.bindCatalog()
	return sc
}

func (sc *Scene) bindCatalog() {
	for _, meta := range Catalog {
		h := sc.reg.Bind(meta.ID)
		h.Decor = buildDecor(meta, sc.noise)
		sc.log.AddVerbose(0, string(meta.ID), "registry", "bind", meta.Name, 0)
	}
	sc.idle.Attach(sc.env(0))
}

// AttachStore subscribes the scene to snapshot publications. Teardown
// unsubscribes, so no update ever fires against destroyed handles.
func (sc *Scene) AttachStore(st *state.Store) {
	sc.store = st
	sc.subToken = st.Subscribe(func(ws *state.WorldState) {
		sc.pending.Store(ws)
	})
	// A snapshot published before the subscription still counts.
	if ws := st.Latest(); ws != nil {
		sc.pending.Store(ws)
	}
}

// TakePending returns the newest snapshot published since the last call.
// Intermediate snapshots are skipped: last write wins.
func (sc *Scene) TakePending() (*state.WorldState, bool) {
	ws := sc.pending.Swap(nil)
	return ws, ws != nil
}

func (sc *Scene) env(tick int) *fxEnv {
	return &fxEnv{
		reg:   sc.reg,
		sched: sc.sched,
		pool:  sc.pool,
		log:   sc.log,
		cfg:   sc.cfg,
		tick:  tick,
	}
}

// Step advances the scene by dt seconds against the given snapshot.
// changed marks snapshots not seen before; edge-triggered controllers run
// only then, continuous ones run every frame. snap may be nil before the
// first full snapshot arrives; animations still advance.
func (sc *Scene) Step(snap *state.WorldState, changed bool, dt float64) {
	if sc.tornDown {
		return
	}
	tick := 0
	if snap != nil {
		tick = snap.Tick
	}
	env := sc.env(tick)

	if changed && snap != nil {
		sc.lastSnap = snap
		// Edge-triggered controllers compare against retained history,
		// once per snapshot.
		sc.conflict.Step(env, snap)
		sc.bars.OnSnapshot(env, snap)
		sc.speech.OnSnapshot(env, snap)
	}

	// Level-driven controllers run every frame from the latest snapshot.
	sc.danger.Step(env, sc.lastSnap)
	sc.weather.Step(env, sc.lastSnap, dt)
	sc.beams.Step(env, sc.lastSnap)
	sc.bars.Drive(env, sc.lastSnap)

	sc.sched.Advance(dt)
	sc.pool.Advance(dt)
}

// Rebuild tears the scene's visual side down and re-derives it under a new
// projection: the explicit viewport-resize fallback. Every animation and
// emitter is cancelled, every handle replaced. Controller history (previous
// actions, resources, speech) survives so edge detection does not re-fire
// after the pop. Runtime effect state is re-seeded to match: beams are
// dropped and re-light from the next snapshot, halos re-arm on their next
// step, and bubbles still on display come back with their remaining time.
func (sc *Scene) Rebuild(proj iso.Projection) {
	env := sc.env(sc.tickOf())
	carried := sc.speech.CarryOver(env)
	sc.sched.CancelAll()
	sc.pool.Reset()
	sc.beams.Reset()
	sc.reg.RebuildAll(proj)
	for _, h := range sc.reg.Handles() {
		h.Decor = buildDecor(h.Meta, sc.noise)
	}
	sc.idle.Attach(env)
	sc.speech.Restore(env, carried)
	sc.log.Add(sc.tickOf(), "--", "registry", "rebuild", "all handles rebound", float64(len(sc.reg.Handles())))
}

// Teardown cancels every animation and detaches every particle source. The
// scene is dead afterwards; Step becomes a no-op.
func (sc *Scene) Teardown() {
	if sc.store != nil {
		sc.store.Unsubscribe(sc.subToken)
		sc.store = nil
	}
	sc.pending.Store(nil)
	sc.sched.CancelAll()
	sc.pool.Reset()
	for _, h := range sc.reg.Handles() {
		h.destroyed = true
	}
	sc.tornDown = true
	sc.log.Add(sc.tickOf(), "--", "registry", "teardown", "scene destroyed", 0)
}

func (sc *Scene) tickOf() int {
	if sc.lastSnap == nil {
		return 0
	}
	return sc.lastSnap.Tick
}

// Registry exposes the handle arena to the draw layer and tests.
func (sc *Scene) Registry() *Registry { return sc.reg }

// Scheduler exposes the animation scheduler.
func (sc *Scene) Scheduler() *Scheduler { return sc.sched }

// Particles exposes the particle pool.
func (sc *Scene) Particles() *ParticlePool { return sc.pool }

// BeamsFx exposes the live trade beams.
func (sc *Scene) BeamsFx() *BeamController { return sc.beams }

// DangerFx exposes the danger controller.
func (sc *Scene) DangerFx() *DangerController { return sc.danger }

// WeatherFx exposes the weather controller.
func (sc *Scene) WeatherFx() *WeatherController { return sc.weather }

// Log exposes the scene log.
func (sc *Scene) Log() *SceneLog { return sc.log }

// LastSnapshot returns the most recent snapshot the scene has applied.
func (sc *Scene) LastSnapshot() *state.WorldState { return sc.lastSnap }
