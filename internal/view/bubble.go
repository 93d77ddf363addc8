package view

import (
	"github.com/kestrelworks/worldview/internal/state"
)

// speechFadeTail is the trailing fraction of the display window spent
// fading out.
const speechFadeTail = 0.30

// SpeechController shows a region's speech_bubble text for a fixed duration
// with a fade tail. New text replaces the running bubble; cleared text
// dismisses it immediately. A bubble showing when the scene rebuilds is
// carried over with its remaining display time.
type SpeechController struct {
	prevText map[state.RegionID]string
}

// NewSpeechController returns a controller with no bubbles.
func NewSpeechController() *SpeechController {
	return &SpeechController{prevText: map[state.RegionID]string{}}
}

// OnSnapshot reacts to speech text changes. Called once per new snapshot.
func (sc *SpeechController) OnSnapshot(env *fxEnv, snap *state.WorldState) {
	if snap == nil {
		return
	}
	for id, region := range snap.Regions {
		h := env.reg.Lookup(id)
		if h == nil {
			continue
		}
		text := region.SpeechBubble
		prev := sc.prevText[id]
		sc.prevText[id] = text

		switch {
		case text == "" && prev != "":
			env.sched.Cancel(string(id), EffectSpeech)
			h.BubbleText = ""
			h.BubbleAlpha = 0
			env.log.Add(env.tick, string(id), "fx", "speech", "cleared", 0)

		case text != "" && text != prev:
			sc.show(env, h, id, text, env.cfg.SpeechSeconds)
			env.log.Add(env.tick, string(id), "fx", "speech", "show: "+text, env.cfg.SpeechSeconds)
		}
	}
}

// CarryOver captures every bubble still on display, keyed by remaining
// display time. Must run before a rebuild cancels the animations.
func (sc *SpeechController) CarryOver(env *fxEnv) map[state.RegionID]float64 {
	carried := map[state.RegionID]float64{}
	for id, text := range sc.prevText {
		if text == "" {
			continue
		}
		if rem := env.sched.Remaining(string(id), EffectSpeech); rem > 0 {
			carried[id] = rem
		}
	}
	return carried
}

// Restore re-shows carried-over bubbles on freshly bound handles, keeping
// the remaining display time each had before the rebuild.
func (sc *SpeechController) Restore(env *fxEnv, carried map[state.RegionID]float64) {
	for id, rem := range carried {
		h := env.reg.Lookup(id)
		if h == nil {
			continue
		}
		sc.show(env, h, id, sc.prevText[id], rem)
		env.log.AddVerbose(env.tick, string(id), "fx", "speech", "restored", rem)
	}
}

func (sc *SpeechController) show(env *fxEnv, h *VisualHandle, id state.RegionID, text string, dur float64) {
	h.BubbleText = text
	env.sched.Trigger(string(id), EffectSpeech, AnimSpec{
		Duration: dur,
		Update: func(t, dt float64) {
			if h.Destroyed() {
				return
			}
			if t < 1-speechFadeTail {
				h.BubbleAlpha = 1
			} else {
				h.BubbleAlpha = (1 - t) / speechFadeTail
			}
		},
		OnDone: func() {
			if !h.Destroyed() {
				h.BubbleText = ""
				h.BubbleAlpha = 0
			}
		},
	}, PolicyReplace)
}
