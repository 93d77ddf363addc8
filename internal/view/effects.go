package view

// fxState is the lifecycle of one per-target effect. Controllers hold these
// explicitly so tests assert transitions instead of inferring them from
// animation side effects.
type fxState int

const (
	fxIdle fxState = iota
	fxActive
	fxFading
)

func (s fxState) String() string {
	switch s {
	case fxActive:
		return "active"
	case fxFading:
		return "fading"
	default:
		return "idle"
	}
}

// EffectConfig carries the tunable effect thresholds.
type EffectConfig struct {
	DangerThreshold  float64 // danger above this starts the halo
	ConsumptionDelta float64 // absolute resource drop that triggers a bar flash
	SpeechSeconds    float64 // speech bubble display duration
	MaxParticles     int     // per-region particle budget
}

// DefaultEffectConfig mirrors the shipped config defaults.
func DefaultEffectConfig() EffectConfig {
	return EffectConfig{
		DangerThreshold:  0.45,
		ConsumptionDelta: 12,
		SpeechSeconds:    4,
		MaxParticles:     160,
	}
}

// fxEnv is the per-step environment handed to every controller.
type fxEnv struct {
	reg   *Registry
	sched *Scheduler
	pool  *ParticlePool
	log   *SceneLog
	cfg   EffectConfig
	tick  int // current snapshot tick, for log entries
}
