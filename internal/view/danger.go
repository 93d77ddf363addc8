package view

import (
	"math"

	"github.com/kestrelworks/worldview/internal/state"
)

const (
	haloBreathePeriod = 2.4 // seconds per breathing cycle
	haloFadeDuration  = 0.8 // seconds from active to fully gone
	haloBaseRadius    = 46.0
	haloPulseRadius   = 14.0
)

// DangerController runs the crime/danger halo per region: a breathing ring
// whose intensity follows 1 - morale. The breathing is phase-offset per
// region so clusters never pulse in lockstep.
type DangerController struct {
	states map[state.RegionID]fxState
}

// NewDangerController returns an idle controller.
func NewDangerController() *DangerController {
	return &DangerController{states: map[state.RegionID]fxState{}}
}

// State exposes a region's current halo state for tests and the inspector.
func (dc *DangerController) State(id state.RegionID) fxState {
	return dc.states[id]
}

// Step advances every region's halo state machine for one frame.
func (dc *DangerController) Step(env *fxEnv, snap *state.WorldState) {
	if snap == nil {
		return
	}
	for id, region := range snap.Regions {
		h := env.reg.Lookup(id)
		if h == nil {
			continue
		}
		danger := region.Danger()
		st := dc.states[id]

		switch st {
		case fxIdle:
			if danger > env.cfg.DangerThreshold {
				dc.start(env, h, danger)
				dc.transition(env, id, st, fxActive, danger)
			}
		case fxActive:
			if danger <= env.cfg.DangerThreshold {
				dc.fade(env, h)
				dc.transition(env, id, st, fxFading, danger)
				continue
			}
			// Intensity tracks the live snapshot while active.
			h.DangerIntensity = danger
			// Re-arm the pulse if a rebuild cancelled its animation.
			if !env.sched.Active(string(h.Region), EffectDangerHalo) {
				dc.start(env, h, danger)
			}
		case fxFading:
			if danger > env.cfg.DangerThreshold {
				// Danger came back mid-fade: resume the pulse.
				env.sched.Cancel(string(h.Region), EffectDangerFade)
				dc.start(env, h, danger)
				dc.transition(env, id, st, fxActive, danger)
				continue
			}
			if !env.sched.Active(string(h.Region), EffectDangerFade) {
				dc.transition(env, id, st, fxIdle, danger)
			}
		}
	}
}

// start installs the repeat-forever breathing animation. A second start on
// an already-pulsing region is ignored by the scheduler.
func (dc *DangerController) start(env *fxEnv, h *VisualHandle, danger float64) {
	h.DangerIntensity = danger
	env.sched.Trigger(string(h.Region), EffectDangerHalo, AnimSpec{
		Duration: haloBreathePeriod,
		Repeat:   true,
		Update: func(t, dt float64) {
			if h.Destroyed() {
				return
			}
			breathe := 0.5 + 0.5*math.Sin(2*math.Pi*t+h.Phase)
			h.HaloAlpha = h.DangerIntensity * (0.35 + 0.45*breathe)
			h.HaloRadius = haloBaseRadius + haloPulseRadius*breathe*h.DangerIntensity
		},
	}, PolicyIgnore)
}

// fade swaps the pulse for a bounded fade-out to zero.
func (dc *DangerController) fade(env *fxEnv, h *VisualHandle) {
	env.sched.Cancel(string(h.Region), EffectDangerHalo)
	from := h.HaloAlpha
	env.sched.Trigger(string(h.Region), EffectDangerFade, AnimSpec{
		Duration: haloFadeDuration,
		Update: func(t, dt float64) {
			if h.Destroyed() {
				return
			}
			h.HaloAlpha = from * (1 - t)
		},
		OnDone: func() {
			if !h.Destroyed() {
				h.HaloAlpha = 0
				h.DangerIntensity = 0
			}
		},
	}, PolicyReplace)
}

func (dc *DangerController) transition(env *fxEnv, id state.RegionID, from, to fxState, danger float64) {
	dc.states[id] = to
	env.log.Add(env.tick, string(id), "fx", "halo", from.String()+" -> "+to.String(), danger)
}
