package view

import (
	"fmt"

	"github.com/kestrelworks/worldview/internal/state"
)

const barFlashDuration = 0.6

var barNames = [barCount]string{"water", "food", "energy", "land"}

// BarController drives the four resource gauges continuously and fires a
// short consumption flash when a resource drops sharply between snapshots.
// The comparison runs once per new snapshot against the retained previous
// values, so a sustained low value flashes once, on the drop.
type BarController struct {
	prev   map[state.RegionID]state.Resources
	seeded bool
}

// NewBarController returns a controller with no history.
func NewBarController() *BarController {
	return &BarController{prev: map[state.RegionID]state.Resources{}}
}

// Drive sets every region's bar fills from the snapshot. Called every frame;
// bar length is directly driven, not animated.
func (bc *BarController) Drive(env *fxEnv, snap *state.WorldState) {
	if snap == nil {
		return
	}
	for id, region := range snap.Regions {
		h := env.reg.Lookup(id)
		if h == nil {
			continue
		}
		vals := resourceValues(region.Resources)
		for i := 0; i < barCount; i++ {
			h.Bars[i].Value = clamp01(vals[i] / state.ResourceMax)
		}
	}
}

// OnSnapshot runs the consumption-flash edge detection. Called once per new
// snapshot, never per frame.
func (bc *BarController) OnSnapshot(env *fxEnv, snap *state.WorldState) {
	if snap == nil {
		return
	}
	if !bc.seeded {
		for id, region := range snap.Regions {
			bc.prev[id] = region.Resources
		}
		bc.seeded = true
		return
	}

	for id, region := range snap.Regions {
		h := env.reg.Lookup(id)
		prev, known := bc.prev[id]
		bc.prev[id] = region.Resources
		if h == nil || !known {
			continue
		}

		prevVals := resourceValues(prev)
		curVals := resourceValues(region.Resources)
		for i := 0; i < barCount; i++ {
			drop := prevVals[i] - curVals[i]
			if drop <= env.cfg.ConsumptionDelta {
				continue
			}
			bar := &h.Bars[i]
			target := string(id) + "/" + barNames[i]
			if env.sched.Trigger(target, EffectBarFlash, AnimSpec{
				Duration: barFlashDuration,
				Update: func(t, dt float64) {
					if !h.Destroyed() {
						bar.FlashAlpha = 1 - t
					}
				},
				OnDone: func() {
					if !h.Destroyed() {
						bar.FlashAlpha = 0
					}
				},
			}, PolicyIgnore) {
				env.log.Add(env.tick, string(id), "fx", "bar_flash",
					fmt.Sprintf("%s %.1f -> %.1f", barNames[i], prevVals[i], curVals[i]), drop)
			}
		}
	}
}

func resourceValues(r state.Resources) [barCount]float64 {
	return [barCount]float64{r.Water, r.Food, r.Energy, r.Land}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
