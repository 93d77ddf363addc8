package view

// EffectKind partitions the animation namespace: at most one animation runs
// per (target, kind) pair.
type EffectKind int

const (
	EffectDangerHalo EffectKind = iota
	EffectDangerFade
	EffectTradeBeam
	EffectConflictFlash
	EffectBarFlash
	EffectSpeech
	EffectIdle
)

// Policy decides what a trigger does when the same (target, kind) is
// already animating.
type Policy int

const (
	// PolicyIgnore drops the new request; the running animation continues.
	PolicyIgnore Policy = iota
	// PolicyReplace cancels the running animation and starts the new one.
	PolicyReplace
)

// AnimSpec describes one animation. Bounded animations run for Duration
// seconds; Repeat animations run until cancelled, with t wrapping in [0,1)
// every Duration seconds. Update receives the normalized position t and the
// frame's dt; OnDone fires only on natural completion, never on cancel.
type AnimSpec struct {
	Duration float64
	Repeat   bool
	Update   func(t, dt float64)
	OnDone   func()
}

type animKey struct {
	target string
	kind   EffectKind
}

type anim struct {
	spec    AnimSpec
	elapsed float64
}

// Scheduler advances all animations cooperatively by elapsed-time deltas.
// It guarantees no duplicate animation per (target, kind) and that every
// animation is either time-bounded or cancellable.
type Scheduler struct {
	anims map[animKey]*anim
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{anims: map[animKey]*anim{}}
}

// Trigger starts an animation for (target, kind). If one is already
// running, PolicyIgnore makes this a no-op and PolicyReplace swaps it for
// the new spec. Reports whether the new animation was installed.
func (s *Scheduler) Trigger(target string, kind EffectKind, spec AnimSpec, policy Policy) bool {
	key := animKey{target, kind}
	if _, running := s.anims[key]; running {
		if policy == PolicyIgnore {
			return false
		}
	}
	if spec.Duration <= 0 {
		spec.Duration = 1
	}
	s.anims[key] = &anim{spec: spec}
	return true
}

// Active reports whether an animation is running for (target, kind).
func (s *Scheduler) Active(target string, kind EffectKind) bool {
	_, ok := s.anims[animKey{target, kind}]
	return ok
}

// Remaining returns the time left on a bounded animation, or 0 when none is
// running. Repeat animations have no remaining time.
func (s *Scheduler) Remaining(target string, kind EffectKind) float64 {
	a, ok := s.anims[animKey{target, kind}]
	if !ok || a.spec.Repeat {
		return 0
	}
	rem := a.spec.Duration - a.elapsed
	if rem < 0 {
		return 0
	}
	return rem
}

// Cancel stops an animation without firing OnDone.
func (s *Scheduler) Cancel(target string, kind EffectKind) {
	delete(s.anims, animKey{target, kind})
}

// CancelAll drops every animation. Called on scene teardown and rebuild.
func (s *Scheduler) CancelAll() {
	s.anims = map[animKey]*anim{}
}

// Len returns the number of running animations.
func (s *Scheduler) Len() int {
	return len(s.anims)
}

// Advance moves every animation forward by dt seconds, invoking updates and
// completing bounded animations whose time is up. Nothing here blocks; an
// animation's cost is one closure call.
func (s *Scheduler) Advance(dt float64) {
	var done []animKey
	for key, a := range s.anims {
		a.elapsed += dt
		t := a.elapsed / a.spec.Duration
		if a.spec.Repeat {
			t = t - float64(int(t)) // wrap to [0,1)
			if a.spec.Update != nil {
				a.spec.Update(t, dt)
			}
			continue
		}
		if t >= 1 {
			t = 1
			done = append(done, key)
		}
		if a.spec.Update != nil {
			a.spec.Update(t, dt)
		}
	}
	for _, key := range done {
		a := s.anims[key]
		delete(s.anims, key)
		if a != nil && a.spec.OnDone != nil {
			a.spec.OnDone()
		}
	}
}
