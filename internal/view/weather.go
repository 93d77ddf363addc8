package view

import (
	"github.com/kestrelworks/worldview/internal/state"
)

const (
	rainEmitRate   = 60.0 // particles per second
	blightEmitRate = 18.0
	tintTargetMax  = 0.38 // overlay alpha while a tint weather holds
	tintEaseRate   = 2.2  // exponential ease rate toward the target
)

// WeatherController drives both weather presentations: the particle source
// for rain/blight, and the eased tint overlay for drought/solar_flare.
// Each region runs both state machines independently.
type WeatherController struct {
	particleStates map[state.RegionID]fxState
	tintStates     map[state.RegionID]fxState
}

// NewWeatherController returns an idle controller.
func NewWeatherController() *WeatherController {
	return &WeatherController{
		particleStates: map[state.RegionID]fxState{},
		tintStates:     map[state.RegionID]fxState{},
	}
}

// ParticleState exposes a region's particle-source state.
func (wc *WeatherController) ParticleState(id state.RegionID) fxState {
	return wc.particleStates[id]
}

// TintState exposes a region's tint-overlay state.
func (wc *WeatherController) TintState(id state.RegionID) fxState {
	return wc.tintStates[id]
}

func particleWeather(w state.Weather) (ParticleKind, float64, bool) {
	switch w {
	case state.WeatherRain:
		return ParticleRain, rainEmitRate, true
	case state.WeatherBlight:
		return ParticleBlight, blightEmitRate, true
	default:
		return 0, 0, false
	}
}

func tintWeather(w state.Weather) bool {
	return w == state.WeatherDrought || w == state.WeatherSolarFlare
}

// Step advances both weather machines for one frame.
func (wc *WeatherController) Step(env *fxEnv, snap *state.WorldState, dt float64) {
	if snap == nil {
		return
	}
	for id, region := range snap.Regions {
		h := env.reg.Lookup(id)
		if h == nil {
			continue
		}
		wc.stepParticles(env, h, region.ActiveWeather)
		wc.stepTint(env, h, region.ActiveWeather, dt)
	}
}

func (wc *WeatherController) stepParticles(env *fxEnv, h *VisualHandle, w state.Weather) {
	id := h.Region
	kind, rate, wants := particleWeather(w)
	st := wc.particleStates[id]

	switch st {
	case fxIdle:
		if wants {
			spread := float64(h.Meta.Archetype.Style().Footprint) * 40
			env.pool.SetEmitter(id, kind, h.X, h.Y, spread, rate)
			wc.particleStates[id] = fxActive
			env.log.Add(env.tick, string(id), "fx", "weather_particles", "idle -> active ("+string(w)+")", rate)
		}
	case fxActive:
		if !wants {
			// Emission stops; in-flight particles expire on their own.
			env.pool.StopEmitter(id)
			wc.particleStates[id] = fxFading
			env.log.Add(env.tick, string(id), "fx", "weather_particles", "active -> fading", 0)
			return
		}
		// Weather switched between rain and blight: retarget the emitter.
		spread := float64(h.Meta.Archetype.Style().Footprint) * 40
		env.pool.SetEmitter(id, kind, h.X, h.Y, spread, rate)
	case fxFading:
		if wants {
			spread := float64(h.Meta.Archetype.Style().Footprint) * 40
			env.pool.SetEmitter(id, kind, h.X, h.Y, spread, rate)
			wc.particleStates[id] = fxActive
			env.log.Add(env.tick, string(id), "fx", "weather_particles", "fading -> active ("+string(w)+")", rate)
			return
		}
		if env.pool.CountFor(id) == 0 {
			wc.particleStates[id] = fxIdle
			env.log.Add(env.tick, string(id), "fx", "weather_particles", "fading -> idle", 0)
		}
	}
}

func (wc *WeatherController) stepTint(env *fxEnv, h *VisualHandle, w state.Weather, dt float64) {
	id := h.Region
	st := wc.tintStates[id]
	wants := tintWeather(w)

	target := 0.0
	if wants {
		target = tintTargetMax
		h.TintWeather = w
	}

	// Eased approach toward the target; same curve in and out.
	step := tintEaseRate * dt
	if step > 1 {
		step = 1
	}
	h.TintAlpha += (target - h.TintAlpha) * step

	switch st {
	case fxIdle:
		if wants {
			wc.tintStates[id] = fxActive
			env.log.Add(env.tick, string(id), "fx", "weather_tint", "idle -> active ("+string(w)+")", target)
		}
	case fxActive:
		if !wants {
			wc.tintStates[id] = fxFading
			env.log.Add(env.tick, string(id), "fx", "weather_tint", "active -> fading", h.TintAlpha)
		}
	case fxFading:
		if wants {
			wc.tintStates[id] = fxActive
			env.log.Add(env.tick, string(id), "fx", "weather_tint", "fading -> active ("+string(w)+")", target)
			return
		}
		if h.TintAlpha < 0.01 {
			h.TintAlpha = 0
			wc.tintStates[id] = fxIdle
			env.log.Add(env.tick, string(id), "fx", "weather_tint", "fading -> idle", 0)
		}
	}
}
