package view

import (
	"github.com/kestrelworks/worldview/internal/state"
)

const (
	conflictFlashDuration = 0.9
	conflictDebrisCount   = 22
)

// ConflictController fires a fixed-length flash/debris sequence when a
// region transitions into a Steal action. Strictly edge-triggered: the
// previous snapshot's action is retained and compared, so a region holding
// Steal across many snapshots flashes exactly once.
type ConflictController struct {
	prevAction map[state.RegionID]state.Action
	seeded     bool
}

// NewConflictController returns a controller with no history.
func NewConflictController() *ConflictController {
	return &ConflictController{prevAction: map[state.RegionID]state.Action{}}
}

// Step inspects a snapshot for new Steal transitions. Only called with
// changed == true semantics: the scene invokes it once per new snapshot,
// never per frame, which is what makes the edge detection frame-rate
// independent.
func (cc *ConflictController) Step(env *fxEnv, snap *state.WorldState) {
	if snap == nil {
		return
	}

	// The first snapshot seeds history without firing: a world joined
	// mid-conflict should not greet the viewer with a barrage of flashes.
	if !cc.seeded {
		for id, region := range snap.Regions {
			cc.prevAction[id] = region.Action
		}
		cc.seeded = true
		return
	}

	for id, region := range snap.Regions {
		prev, known := cc.prevAction[id]
		cc.prevAction[id] = region.Action
		if region.Action != state.ActionSteal || (known && prev == state.ActionSteal) {
			continue
		}
		cc.fire(env, snap, id, region)
	}
}

func (cc *ConflictController) fire(env *fxEnv, snap *state.WorldState, id state.RegionID, region state.RegionState) {
	h := env.reg.Lookup(id)
	if h == nil {
		return
	}

	installed := env.sched.Trigger(string(id), EffectConflictFlash, AnimSpec{
		Duration: conflictFlashDuration,
		Update: func(t, dt float64) {
			if h.Destroyed() {
				return
			}
			decay := 1 - t
			h.FlashAlpha = decay * decay
		},
		OnDone: func() {
			if !h.Destroyed() {
				h.FlashAlpha = 0
			}
		},
	}, PolicyIgnore)
	if !installed {
		return
	}

	env.log.Add(env.tick, string(id), "fx", "conflict_flash", "triggered", 1)
	env.pool.Burst(id, ParticleDebris, h.X, h.Y, conflictDebrisCount)

	// Debris at the victim too, when the directed target resolves to a
	// bound handle. An unresolvable target just means no second burst.
	for _, beam := range region.TargetBeams {
		if beam.Kind != state.BeamConflict {
			continue
		}
		if victim := env.reg.Lookup(beam.Target); victim != nil {
			env.pool.Burst(beam.Target, ParticleDebris, victim.X, victim.Y, conflictDebrisCount/2)
		}
	}
}
