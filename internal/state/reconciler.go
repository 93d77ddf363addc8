package state

import "errors"

// ErrNoBaseline is returned when a compact delta arrives before any full
// snapshot. The caller drops the delta and waits; fields are never guessed
// as zero.
var ErrNoBaseline = errors.New("compact delta without a full snapshot baseline")

// Reconciler folds the inbound stream into one canonical snapshot. A full
// snapshot replaces the canonical state wholesale; a compact delta is merged
// against it field by field. The canonical pointer is only ever swapped for a
// fully built snapshot, so readers holding the previous pointer always see a
// complete world.
type Reconciler struct {
	canonical *WorldState

	// Set when the transport reconnects: the old snapshot stays visible for
	// rendering but is no longer a trusted merge baseline.
	baselineStale bool
}

// Canonical returns the current canonical snapshot, or nil before the first
// full snapshot is accepted.
func (rc *Reconciler) Canonical() *WorldState {
	return rc.canonical
}

// InvalidateBaseline marks the held snapshot as unsafe to merge deltas into.
// Rendering continues from it, but compact deltas are rejected until the next
// full snapshot lands. Called after a transport reconnect.
func (rc *Reconciler) InvalidateBaseline() {
	rc.baselineStale = true
}

// ApplyFull installs a full snapshot as the new canonical state.
func (rc *Reconciler) ApplyFull(ws *WorldState) *WorldState {
	snap := ws.Clone()
	if snap.Regions == nil {
		snap.Regions = map[RegionID]RegionState{}
	}
	if snap.Agents == nil {
		snap.Agents = map[RegionID]AgentState{}
	}
	if snap.TradeNetwork == nil {
		snap.TradeNetwork = map[RegionID][]RegionID{}
	}
	rc.canonical = snap
	rc.baselineStale = false
	return snap
}

// ApplyCompact overlays a compact delta onto the previous canonical snapshot
// and installs the merged result. Only fields present in the delta change;
// regions not listed in RegionKeys carry over untouched. Region keys with no
// known region are skipped. Returns ErrNoBaseline when no usable full
// snapshot exists yet.
func (rc *Reconciler) ApplyCompact(d *CompactWorldState) (*WorldState, error) {
	if rc.canonical == nil || rc.baselineStale {
		return nil, ErrNoBaseline
	}

	next := rc.canonical.Clone()
	next.Tick = d.Tick

	for i, key := range d.RegionKeys {
		r, ok := next.Regions[key]
		if !ok {
			continue
		}
		if i < len(d.Water) {
			r.Resources.Water = d.Water[i]
		}
		if i < len(d.Food) {
			r.Resources.Food = d.Food[i]
		}
		if i < len(d.Energy) {
			r.Resources.Energy = d.Energy[i]
		}
		if i < len(d.Land) {
			r.Resources.Land = d.Land[i]
		}
		if i < len(d.Morale) {
			r.Morale = d.Morale[i]
		}
		if i < len(d.Crime) {
			r.CrimeLevel = d.Crime[i]
		}
		if i < len(d.Population) {
			r.Population = d.Population[i]
		}
		if i < len(d.Actions) {
			r.Action = d.Actions[i]
		}
		if i < len(d.Weather) {
			r.ActiveWeather = d.Weather[i]
		}
		if i < len(d.Speech) {
			r.SpeechBubble = d.Speech[i]
		}
		next.Regions[key] = r
	}

	// Small, order-sensitive collections arrive whole or not at all.
	if d.Agents != nil {
		next.Agents = make(map[RegionID]AgentState, len(d.Agents))
		for id, a := range d.Agents {
			next.Agents[id] = a
		}
	}
	if d.ClimateEvents != nil {
		next.ClimateEvents = append([]ClimateEvent(nil), d.ClimateEvents...)
	}
	if d.ActiveWeather != nil {
		next.ActiveWeather = *d.ActiveWeather
	}
	if d.WeatherRegion != nil {
		next.WeatherRegion = *d.WeatherRegion
	}

	rc.canonical = next
	return next, nil
}
