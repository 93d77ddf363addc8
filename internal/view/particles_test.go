package view

import "testing"

func TestParticleBudgetIsPerRegion(t *testing.T) {
	pp := NewParticlePool(10, 1)
	pp.Burst("nexus", ParticleDebris, 0, 0, 50)
	if n := pp.CountFor("nexus"); n != 10 {
		t.Fatalf("budget not enforced: %d particles", n)
	}
	// Another region has its own budget.
	pp.Burst("aquilonia", ParticleDebris, 0, 0, 5)
	if n := pp.CountFor("aquilonia"); n != 5 {
		t.Fatalf("second region got %d particles", n)
	}
	if len(pp.Particles()) != 15 {
		t.Fatalf("want 15 total, got %d", len(pp.Particles()))
	}
}

func TestEmitterIsSingletonPerRegion(t *testing.T) {
	pp := NewParticlePool(100, 1)
	pp.SetEmitter("verdantis", ParticleRain, 0, 0, 40, 600)
	pp.SetEmitter("verdantis", ParticleBlight, 0, 0, 40, 600)
	pp.Advance(0.1) // 60 particles worth of emission from one emitter
	for _, p := range pp.Particles() {
		if p.Kind != ParticleBlight {
			t.Fatal("retargeted emitter still produced the old kind")
		}
	}
	if n := pp.CountFor("verdantis"); n != 60 {
		t.Fatalf("emitters stacked: %d particles from 0.1s at 600/s", n)
	}
}

func TestStoppedEmitterDrainsNaturally(t *testing.T) {
	pp := NewParticlePool(100, 1)
	pp.SetEmitter("nexus", ParticleRain, 0, 0, 40, 120)
	pp.Advance(0.25)
	if pp.CountFor("nexus") == 0 {
		t.Fatal("no particles emitted")
	}
	pp.StopEmitter("nexus")
	if pp.EmitterActive("nexus") {
		t.Fatal("emitter still active after stop")
	}
	pp.Advance(2) // rain lives 0.7s
	if n := pp.CountFor("nexus"); n != 0 {
		t.Fatalf("particles did not drain: %d left", n)
	}
}

func TestResetDropsEverything(t *testing.T) {
	pp := NewParticlePool(100, 1)
	pp.SetEmitter("nexus", ParticleRain, 0, 0, 40, 120)
	pp.Advance(0.5)
	pp.Reset()
	if len(pp.Particles()) != 0 || pp.CountFor("nexus") != 0 {
		t.Fatal("reset left particles behind")
	}
	pp.Advance(1)
	if len(pp.Particles()) != 0 {
		t.Fatal("reset left an emitter running")
	}
}
