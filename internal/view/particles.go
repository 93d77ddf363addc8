package view

import (
	"math"
	"math/rand"

	"github.com/kestrelworks/worldview/internal/state"
)

// ParticleKind selects motion and rendering of a particle.
type ParticleKind int

const (
	ParticleRain ParticleKind = iota
	ParticleBlight
	ParticleDebris
	ParticleSparkle
)

// Particle is one in-flight particle in screen space.
type Particle struct {
	Kind   ParticleKind
	X, Y   float64
	VX, VY float64
	Life   float64 // seconds remaining
	Max    float64 // initial lifetime, for alpha falloff
}

// Alpha is the particle's fade fraction in [0,1].
func (p Particle) Alpha() float64 {
	if p.Max <= 0 {
		return 0
	}
	return p.Life / p.Max
}

// emitter is a continuous particle source attached to one region.
type emitter struct {
	region state.RegionID
	kind   ParticleKind
	x, y   float64
	spread float64 // horizontal emission half-width
	rate   float64 // particles per second
	accum  float64
	active bool
}

// ParticlePool owns every particle and emitter in the scene, with a hard
// per-region budget so a stuck emitter can never grow without bound.
type ParticlePool struct {
	perRegionMax int
	particles    []Particle
	counts       map[state.RegionID]int
	owners       []state.RegionID // parallel to particles
	emitters     map[state.RegionID]*emitter
	rng          *rand.Rand
}

// NewParticlePool creates a pool with the given per-region particle budget.
func NewParticlePool(perRegionMax int, seed int64) *ParticlePool {
	if perRegionMax <= 0 {
		perRegionMax = 160
	}
	return &ParticlePool{
		perRegionMax: perRegionMax,
		counts:       map[state.RegionID]int{},
		emitters:     map[state.RegionID]*emitter{},
		rng:          rand.New(rand.NewSource(seed)), // #nosec G404 -- cosmetic only
	}
}

// SetEmitter installs or retargets the single continuous emitter for a
// region. One emitter per region: a second call reconfigures, never stacks.
func (pp *ParticlePool) SetEmitter(region state.RegionID, kind ParticleKind, x, y, spread, rate float64) {
	em, ok := pp.emitters[region]
	if !ok {
		em = &emitter{region: region}
		pp.emitters[region] = em
	}
	em.kind = kind
	em.x, em.y = x, y
	em.spread = spread
	em.rate = rate
	em.active = true
}

// StopEmitter halts emission for a region. In-flight particles live out
// their natural lifetime.
func (pp *ParticlePool) StopEmitter(region state.RegionID) {
	if em, ok := pp.emitters[region]; ok {
		em.active = false
	}
}

// EmitterActive reports whether a region's emitter is currently emitting.
func (pp *ParticlePool) EmitterActive(region state.RegionID) bool {
	em, ok := pp.emitters[region]
	return ok && em.active
}

// Burst spawns n one-shot particles at once (conflict debris), still under
// the region budget.
func (pp *ParticlePool) Burst(region state.RegionID, kind ParticleKind, x, y float64, n int) {
	for i := 0; i < n; i++ {
		ang := pp.rng.Float64() * 2 * math.Pi
		speed := 30 + pp.rng.Float64()*70
		pp.spawn(region, Particle{
			Kind: kind,
			X:    x, Y: y,
			VX:   math.Cos(ang) * speed,
			VY:   math.Sin(ang)*speed - 40,
			Life: 0.5 + pp.rng.Float64()*0.4,
			Max:  0.9,
		})
	}
}

// Advance steps emitters and particles by dt seconds.
func (pp *ParticlePool) Advance(dt float64) {
	for _, em := range pp.emitters {
		if !em.active || em.rate <= 0 {
			continue
		}
		em.accum += em.rate * dt
		for em.accum >= 1 {
			em.accum--
			pp.spawnFromEmitter(em)
		}
	}

	kept := pp.particles[:0]
	keptOwners := pp.owners[:0]
	for i := range pp.particles {
		p := pp.particles[i]
		p.Life -= dt
		if p.Life <= 0 {
			pp.counts[pp.owners[i]]--
			continue
		}
		p.X += p.VX * dt
		p.Y += p.VY * dt
		if p.Kind == ParticleDebris {
			p.VY += 160 * dt // gravity
		}
		kept = append(kept, p)
		keptOwners = append(keptOwners, pp.owners[i])
	}
	pp.particles = kept
	pp.owners = keptOwners
}

// Particles returns the live particle slice; read-only, valid until the
// next Advance.
func (pp *ParticlePool) Particles() []Particle {
	return pp.particles
}

// CountFor returns the live particle count of one region.
func (pp *ParticlePool) CountFor(region state.RegionID) int {
	return pp.counts[region]
}

// Reset detaches every emitter and drops every particle. Called on scene
// teardown and rebuild so emitters never leak across scene generations.
func (pp *ParticlePool) Reset() {
	pp.particles = nil
	pp.owners = nil
	pp.counts = map[state.RegionID]int{}
	pp.emitters = map[state.RegionID]*emitter{}
}

func (pp *ParticlePool) spawnFromEmitter(em *emitter) {
	x := em.x + (pp.rng.Float64()*2-1)*em.spread
	switch em.kind {
	case ParticleRain:
		pp.spawn(em.region, Particle{
			Kind: ParticleRain,
			X:    x, Y: em.y - 80 - pp.rng.Float64()*30,
			VX:   -18, VY: 220,
			Life: 0.7, Max: 0.7,
		})
	case ParticleBlight:
		pp.spawn(em.region, Particle{
			Kind: ParticleBlight,
			X:    x, Y: em.y - 10 - pp.rng.Float64()*40,
			VX:   (pp.rng.Float64()*2 - 1) * 12, VY: 14,
			Life: 1.6, Max: 1.6,
		})
	default:
		pp.spawn(em.region, Particle{
			Kind: em.kind,
			X:    x, Y: em.y,
			VX:   0, VY: -20,
			Life: 1, Max: 1,
		})
	}
}

func (pp *ParticlePool) spawn(region state.RegionID, p Particle) {
	if pp.counts[region] >= pp.perRegionMax {
		return
	}
	pp.counts[region]++
	pp.particles = append(pp.particles, p)
	pp.owners = append(pp.owners, region)
}
