package view

import "math"

const (
	idleBobPeriod = 3.2 // seconds per bob cycle
	idleBobAmp    = 2.5 // pixels
)

// IdleController attaches the permanent agent-marker bob to every handle.
// The animations are repeat-forever but owned here: teardown and rebuild
// cancel them, nothing runs against a dead handle.
type IdleController struct{}

// Attach installs one idle bob per bound handle. Safe to call again after a
// rebuild; the scheduler keeps a single animation per handle.
func (ic IdleController) Attach(env *fxEnv) {
	for _, h := range env.reg.Handles() {
		h := h
		env.sched.Trigger(string(h.Region), EffectIdle, AnimSpec{
			Duration: idleBobPeriod,
			Repeat:   true,
			Update: func(t, dt float64) {
				if h.Destroyed() {
					return
				}
				h.Bob = idleBobAmp * math.Sin(2*math.Pi*t+h.Phase)
			},
		}, PolicyIgnore)
	}
}
