package view

import (
	"github.com/kestrelworks/worldview/internal/state"
)

const (
	beamEaseRate      = 3.0 // exponential ease rate for beam alpha
	beamSparklePeriod = 1.2 // seconds for a sparkle to travel the segment
	beamRemoveBelow   = 0.02
)

// BeamFx is one live trade beam between an adjacent region pair. Alpha
// eases toward Target; Sparkle is the repeating 0..1 position of the
// traveling markers along the segment.
type BeamFx struct {
	From, To state.RegionID
	Alpha    float64
	Target   float64
	Sparkle  float64
}

// BeamController manages trade beams keyed by region pair. A beam lights up
// while both endpoints report a Trade action and the pair is in the fixed
// adjacency table; it eases out and is removed when either endpoint stops.
type BeamController struct {
	beams map[string]*BeamFx
}

// NewBeamController returns an empty controller.
func NewBeamController() *BeamController {
	return &BeamController{beams: map[string]*BeamFx{}}
}

// Beams returns the live beams for the draw layer.
func (bc *BeamController) Beams() []*BeamFx {
	out := make([]*BeamFx, 0, len(bc.beams))
	for _, b := range bc.beams {
		out = append(out, b)
	}
	return out
}

// Reset drops every beam. Called on scene rebuild, after the driving
// animations have been cancelled; pairs still trading re-light on the next
// step with a fresh animation.
func (bc *BeamController) Reset() {
	bc.beams = map[string]*BeamFx{}
}

// Beam returns the beam for a pair, if lit.
func (bc *BeamController) Beam(a, b state.RegionID) (*BeamFx, bool) {
	fx, ok := bc.beams[pairKey(a, b)]
	return fx, ok
}

// Step recomputes the desired beam set from the snapshot and advances every
// beam's lifecycle.
func (bc *BeamController) Step(env *fxEnv, snap *state.WorldState) {
	if snap == nil {
		return
	}

	desired := map[string][2]state.RegionID{}
	for id, region := range snap.Regions {
		if region.Action != state.ActionTrade {
			continue
		}
		for _, partner := range candidatePartners(region) {
			other, ok := snap.Regions[partner]
			if !ok || other.Action != state.ActionTrade {
				continue
			}
			// Pairs outside the adjacency table are not drawn; a partner
			// with no bound handle cannot anchor a beam either.
			if !Adjacent(id, partner) {
				continue
			}
			if env.reg.Lookup(id) == nil || env.reg.Lookup(partner) == nil {
				continue
			}
			desired[pairKey(id, partner)] = [2]state.RegionID{id, partner}
		}
	}

	// Light newly desired pairs.
	for key, pair := range desired {
		if _, ok := bc.beams[key]; ok {
			bc.beams[key].Target = 1
			continue
		}
		fx := &BeamFx{From: pair[0], To: pair[1], Target: 1}
		bc.beams[key] = fx
		env.log.Add(env.tick, key, "fx", "beam", "idle -> active", 0)
		env.sched.Trigger(key, EffectTradeBeam, AnimSpec{
			Duration: beamSparklePeriod,
			Repeat:   true,
			Update: func(t, dt float64) {
				fx.Sparkle = t
				step := beamEaseRate * dt
				if step > 1 {
					step = 1
				}
				fx.Alpha += (fx.Target - fx.Alpha) * step
			},
		}, PolicyIgnore)
	}

	// Ease out pairs that stopped trading; remove once invisible.
	for key, fx := range bc.beams {
		if _, ok := desired[key]; ok {
			continue
		}
		if fx.Target != 0 {
			fx.Target = 0
			env.log.Add(env.tick, key, "fx", "beam", "active -> fading", fx.Alpha)
		}
		if fx.Alpha < beamRemoveBelow {
			env.sched.Cancel(key, EffectTradeBeam)
			delete(bc.beams, key)
			env.log.Add(env.tick, key, "fx", "beam", "fading -> idle", 0)
		}
	}
}

// candidatePartners merges a region's declared trade partners with explicit
// trade beam requests.
func candidatePartners(region state.RegionState) []state.RegionID {
	out := append([]state.RegionID(nil), region.TradePartners...)
	for _, beam := range region.TargetBeams {
		if beam.Kind == state.BeamTrade {
			out = append(out, beam.Target)
		}
	}
	return out
}
