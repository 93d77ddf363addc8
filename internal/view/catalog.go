// Package view is the scene engine: the persistent handle registry, the
// per-region effect controllers, the animation scheduler, and the ebiten
// frame driver that keeps the rendered scene consistent with the snapshot
// store. Everything except the draw layer and input is headless and driven
// by plain elapsed-time steps, so tests run without ebiten.
package view

import (
	"image/color"

	"github.com/kestrelworks/worldview/internal/state"
)

// Archetype is a region's visual family. Decoration and effect styling
// dispatch on this tag through lookup tables; region ids are never compared
// directly in rendering logic.
type Archetype int

const (
	ArchetypeAquatic Archetype = iota // island clusters, water accents
	ArchetypeVerdant                  // farmland, leaf accents
	ArchetypeVolcanic                 // energy hub, ember accents
	ArchetypeSteppe                   // dry plateau, dust accents
	ArchetypeHub                      // neutral trade crossroads
	archetypeCount
)

// RegionMeta is the static, layout-time description of one region.
type RegionMeta struct {
	ID        state.RegionID
	Name      string
	Lore      string
	Archetype Archetype
	Col, Row  float64 // isometric anchor of the region cluster
}

// ArchetypeStyle is the per-archetype styling table consulted by decoration
// and effects.
type ArchetypeStyle struct {
	Ground    color.RGBA // base tile colour
	Accent    color.RGBA // labels, beams, building caps
	Building  color.RGBA
	Footprint int     // cluster radius in tiles
	RoofRise  float64 // building height units for the tallest block
}

var archetypeStyles = [archetypeCount]ArchetypeStyle{
	ArchetypeAquatic:  {Ground: color.RGBA{46, 84, 128, 255}, Accent: color.RGBA{110, 180, 255, 255}, Building: color.RGBA{70, 110, 160, 255}, Footprint: 2, RoofRise: 1.5},
	ArchetypeVerdant:  {Ground: color.RGBA{58, 110, 52, 255}, Accent: color.RGBA{140, 220, 110, 255}, Building: color.RGBA{96, 130, 70, 255}, Footprint: 2, RoofRise: 1.0},
	ArchetypeVolcanic: {Ground: color.RGBA{110, 62, 38, 255}, Accent: color.RGBA{255, 150, 60, 255}, Building: color.RGBA{140, 84, 52, 255}, Footprint: 2, RoofRise: 2.0},
	ArchetypeSteppe:   {Ground: color.RGBA{112, 96, 60, 255}, Accent: color.RGBA{210, 180, 110, 255}, Building: color.RGBA{130, 112, 76, 255}, Footprint: 2, RoofRise: 1.2},
	ArchetypeHub:      {Ground: color.RGBA{92, 96, 104, 255}, Accent: color.RGBA{210, 214, 224, 255}, Building: color.RGBA{126, 130, 140, 255}, Footprint: 3, RoofRise: 2.5},
}

// Style returns the styling entry for an archetype.
func (a Archetype) Style() ArchetypeStyle {
	if a < 0 || a >= archetypeCount {
		return archetypeStyles[ArchetypeHub]
	}
	return archetypeStyles[a]
}

// themeArchetypes maps the backend's visual_theme strings onto archetypes,
// for regions that ever appear without catalog metadata.
var themeArchetypes = map[string]Archetype{
	"blue":   ArchetypeAquatic,
	"green":  ArchetypeVerdant,
	"orange": ArchetypeVolcanic,
	"brown":  ArchetypeSteppe,
	"silver": ArchetypeHub,
}

// ArchetypeForTheme resolves a visual_theme string, defaulting to the hub
// style for unknown themes.
func ArchetypeForTheme(theme string) Archetype {
	if a, ok := themeArchetypes[theme]; ok {
		return a
	}
	return ArchetypeHub
}

// Catalog is the fixed set of renderable regions. The five sovereign
// regions sit on a diamond: the four specialists around the Nexus.
var Catalog = []RegionMeta{
	{ID: "aquilonia", Name: "Aquilonia", Lore: "The Sapphire Archipelago — Water-rich, Energy-poor", Archetype: ArchetypeAquatic, Col: 3, Row: 3},
	{ID: "verdantis", Name: "Verdantis", Lore: "The Demeter Basin — Food-rich, Land-poor", Archetype: ArchetypeVerdant, Col: 13, Row: 3},
	{ID: "ignis_core", Name: "Ignis Core", Lore: "The Voltarian Hub — Energy-rich, Water-poor", Archetype: ArchetypeVolcanic, Col: 3, Row: 13},
	{ID: "terranova", Name: "Terranova", Lore: "The Obsidian Steppes — Land-rich, Food-poor", Archetype: ArchetypeSteppe, Col: 13, Row: 13},
	{ID: "nexus", Name: "The Nexus", Lore: "The Crossroads — Balanced, Natural Trade Hub", Archetype: ArchetypeHub, Col: 8, Row: 8},
}

// adjacency is the fixed set of region pairs a trade beam may connect.
// Beams whose pair is absent here are simply not drawn.
var adjacency = map[string]bool{
	pairKey("aquilonia", "nexus"):      true,
	pairKey("verdantis", "nexus"):      true,
	pairKey("ignis_core", "nexus"):     true,
	pairKey("terranova", "nexus"):      true,
	pairKey("aquilonia", "verdantis"):  true,
	pairKey("verdantis", "terranova"):  true,
	pairKey("terranova", "ignis_core"): true,
	pairKey("ignis_core", "aquilonia"): true,
}

// pairKey builds an order-independent key for a region pair.
func pairKey(a, b state.RegionID) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}

// Adjacent reports whether two regions may be connected by a beam.
func Adjacent(a, b state.RegionID) bool {
	return adjacency[pairKey(a, b)]
}

// MetaFor returns the catalog entry for a region id.
func MetaFor(id state.RegionID) (RegionMeta, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return RegionMeta{}, false
}
