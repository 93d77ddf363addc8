package view

import (
	"math"

	"github.com/kestrelworks/worldview/internal/iso"
	"github.com/kestrelworks/worldview/internal/state"
)

// ResourceBar is one of a handle's four resource gauges. Value is the
// clamped fill fraction; FlashAlpha is the consumption-flash overlay decayed
// by the bar controller.
type ResourceBar struct {
	Value      float64
	FlashAlpha float64
}

// Bar indices within a handle, in draw order.
const (
	BarWater = iota
	BarFood
	BarEnergy
	BarLand
	barCount
)

// VisualHandle is the persistent set of mutable visual fields for one
// region. Created once per scene build, mutated every frame by controllers
// and animations, destroyed only on rebuild or teardown. It holds plain
// values; the draw layer reads them, nothing here touches ebiten.
type VisualHandle struct {
	Region    state.RegionID
	Meta      RegionMeta
	X, Y      float64 // screen anchor of the region cluster
	Phase     float64 // stable per-region phase offset, de-syncs pulses
	destroyed bool

	// Danger halo.
	HaloRadius      float64
	HaloAlpha       float64
	DangerIntensity float64 // set by the danger controller while active

	// Weather tint overlay.
	TintAlpha   float64
	TintWeather state.Weather

	// Resource bars.
	Bars [barCount]ResourceBar

	// Agent marker micro-animation.
	Bob float64

	// Conflict flash.
	FlashAlpha float64

	// Label and speech bubble.
	Label       string
	BubbleText  string
	BubbleAlpha float64

	// Static decoration, derived once per rebuild.
	Decor []DecorTile
}

// Destroyed reports whether this handle belongs to a torn-down scene.
// Late-firing callbacks check it instead of mutating a dead scene.
func (h *VisualHandle) Destroyed() bool {
	return h.destroyed
}

// Registry is the arena of visual handles, keyed by region id. Bind returns
// the same handle for the lifetime of the scene; RebuildAll is the one
// sanctioned way to throw every handle away and start over.
type Registry struct {
	proj    iso.Projection
	handles map[state.RegionID]*VisualHandle
	order   []state.RegionID // stable draw order (catalog order)
}

// NewRegistry builds an empty registry for the given projection.
func NewRegistry(proj iso.Projection) *Registry {
	return &Registry{proj: proj, handles: map[state.RegionID]*VisualHandle{}}
}

// Bind returns the stable handle for a region, creating it on first use.
// Only catalog regions are bindable; unknown ids return nil.
func (rg *Registry) Bind(id state.RegionID) *VisualHandle {
	if h, ok := rg.handles[id]; ok {
		return h
	}
	meta, ok := MetaFor(id)
	if !ok {
		return nil
	}
	x, y := rg.proj.Project(meta.Col, meta.Row, 0)
	h := &VisualHandle{
		Region: id,
		Meta:   meta,
		X:      x,
		Y:      y,
		Phase:  phaseFor(id),
		Label:  meta.Name,
	}
	rg.handles[id] = h
	rg.order = append(rg.order, id)
	return h
}

// Lookup returns the bound handle for a region, or nil if the id was never
// bound. Controllers skip nil handles silently.
func (rg *Registry) Lookup(id state.RegionID) *VisualHandle {
	return rg.handles[id]
}

// Handles returns all handles in stable draw order.
func (rg *Registry) Handles() []*VisualHandle {
	out := make([]*VisualHandle, 0, len(rg.order))
	for _, id := range rg.order {
		out = append(out, rg.handles[id])
	}
	return out
}

// Projection returns the registry's isometric projection.
func (rg *Registry) Projection() iso.Projection {
	return rg.proj
}

// RebuildAll destroys every handle and re-binds fresh ones under a new
// projection. The caller (the scene) must cancel all animations and
// emitters first; handles marked destroyed here make any stragglers inert.
func (rg *Registry) RebuildAll(proj iso.Projection) {
	for _, h := range rg.handles {
		h.destroyed = true
	}
	rg.proj = proj
	rg.handles = map[state.RegionID]*VisualHandle{}
	rg.order = nil
	for _, meta := range Catalog {
		rg.Bind(meta.ID)
	}
}

// phaseFor derives a stable phase offset in [0, 2π) from the region id, so
// breathing effects never pulse in lockstep across regions.
func phaseFor(id state.RegionID) float64 {
	var hash uint32 = 2166136261
	for i := 0; i < len(id); i++ {
		hash ^= uint32(id[i])
		hash *= 16777619
	}
	return float64(hash%628) / 628.0 * 2 * math.Pi
}
