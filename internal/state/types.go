// Package state holds the world data model and the reconciler that turns the
// mixed stream of full and compact snapshots into canonical, always-complete
// world states for the scene to consume.
package state

// RegionID names one of the fixed sovereign regions.
type RegionID string

// ResourceMax is the backend's clamp ceiling for every resource pool.
const ResourceMax = 300.0

// Action is the last strategic action a region's president took.
type Action int

const (
	ActionHold Action = iota
	ActionTrade
	ActionExpand
	ActionSteal
)

func (a Action) String() string {
	switch a {
	case ActionHold:
		return "hold"
	case ActionTrade:
		return "trade"
	case ActionExpand:
		return "expand"
	case ActionSteal:
		return "steal"
	default:
		return "unknown"
	}
}

// Weather is a climate event type. Region weather and the global active event
// share this enum.
type Weather string

const (
	WeatherNone       Weather = "none"
	WeatherDrought    Weather = "drought"
	WeatherSolarFlare Weather = "solar_flare"
	WeatherBlight     Weather = "blight"
	WeatherRain       Weather = "rain"
	WeatherCalm       Weather = "calm"
)

// Resources is one region's four bounded pools, each in [0, ResourceMax].
type Resources struct {
	Water  float64 `json:"water"`
	Food   float64 `json:"food"`
	Energy float64 `json:"energy"`
	Land   float64 `json:"land"`
}

// BeamKind distinguishes trade beams from conflict beams.
type BeamKind string

const (
	BeamTrade    BeamKind = "trade"
	BeamConflict BeamKind = "conflict"
)

// Beam is a directed visual link request from one region toward a target.
type Beam struct {
	Target  RegionID `json:"target"`
	Kind    BeamKind `json:"kind"`
	Success bool     `json:"success"`
}

// RegionState is the authoritative per-region slice of a snapshot.
type RegionState struct {
	ID             RegionID   `json:"region_id"`
	Name           string     `json:"name"`
	VisualTheme    string     `json:"visual_theme"`
	Resources      Resources  `json:"resources"`
	Action         Action     `json:"president_action"`
	Strategy       string     `json:"president_strategy"`
	Morale         float64    `json:"morale"`
	TradePartners  []RegionID `json:"trade_partners"`
	ActiveWeather  Weather    `json:"active_weather"`
	TotalTrades    int        `json:"total_trades"`
	TotalConflicts int        `json:"total_conflicts"`
	Infrastructure float64    `json:"infrastructure"`
	CrimeLevel     float64    `json:"crime_level"`
	Population     int        `json:"population"`
	SpeechBubble   string     `json:"speech_bubble,omitempty"`
	TargetBeams    []Beam     `json:"target_beams,omitempty"`
}

// Danger is the region's danger level in [0,1], derived from morale with the
// backend's crime_level as fallback when morale is absent.
func (r RegionState) Danger() float64 {
	d := 1 - r.Morale
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// AgentState is the RL president attached to one region.
type AgentState struct {
	RegionID    RegionID `json:"region_id"`
	Action      Action   `json:"action"`
	Strategy    string   `json:"strategy"`
	LastReward  float64  `json:"last_reward"`
	TotalReward float64  `json:"total_reward"`
}

// ClimateEvent is one entry of the backend's trailing climate event window.
type ClimateEvent struct {
	Step        int     `json:"step"`
	Type        Weather `json:"type"`
	Region      string  `json:"region"` // region id or "global"
	Magnitude   float64 `json:"magnitude"`
	Description string  `json:"description"`
	Duration    int     `json:"duration_remaining"`
}

// WorldState is a complete snapshot of the simulation at one tick. The
// reconciler only ever hands out complete WorldStates; partial data never
// leaves it.
type WorldState struct {
	Tick          int                      `json:"step"`
	Regions       map[RegionID]RegionState `json:"regions"`
	Agents        map[RegionID]AgentState  `json:"agents"`
	ClimateEvents []ClimateEvent           `json:"climate_events"`
	TradeNetwork  map[RegionID][]RegionID  `json:"trade_network"`
	ActiveWeather Weather                  `json:"active_weather"`
	WeatherRegion string                   `json:"weather_region"`
}

// Clone deep-copies the snapshot so a merge can be built without mutating
// the currently published canonical state.
func (w *WorldState) Clone() *WorldState {
	out := &WorldState{
		Tick:          w.Tick,
		Regions:       make(map[RegionID]RegionState, len(w.Regions)),
		Agents:        make(map[RegionID]AgentState, len(w.Agents)),
		ClimateEvents: append([]ClimateEvent(nil), w.ClimateEvents...),
		TradeNetwork:  make(map[RegionID][]RegionID, len(w.TradeNetwork)),
		ActiveWeather: w.ActiveWeather,
		WeatherRegion: w.WeatherRegion,
	}
	for id, r := range w.Regions {
		r.TradePartners = append([]RegionID(nil), r.TradePartners...)
		r.TargetBeams = append([]Beam(nil), r.TargetBeams...)
		out.Regions[id] = r
	}
	for id, a := range w.Agents {
		out.Agents[id] = a
	}
	for id, partners := range w.TradeNetwork {
		out.TradeNetwork[id] = append([]RegionID(nil), partners...)
	}
	return out
}

// CompactWorldState is the delta wire form: changed per-region fields are
// flattened into parallel arrays indexed by RegionKeys. An empty array means
// "field unchanged for every region"; a missing index means unchanged for
// that region. Agents, climate events and the global weather pair are always
// sent whole when present at all.
type CompactWorldState struct {
	Tick          int                     `json:"step"`
	RegionKeys    []RegionID              `json:"region_keys"`
	Water         []float64               `json:"r_water,omitempty"`
	Food          []float64               `json:"r_food,omitempty"`
	Energy        []float64               `json:"r_energy,omitempty"`
	Land          []float64               `json:"r_land,omitempty"`
	Morale        []float64               `json:"morale,omitempty"`
	Crime         []float64               `json:"crime,omitempty"`
	Population    []int                   `json:"population,omitempty"`
	Actions       []Action                `json:"actions,omitempty"`
	Weather       []Weather               `json:"weather,omitempty"`
	Speech        []string                `json:"speech,omitempty"`
	Agents        map[RegionID]AgentState `json:"agents,omitempty"`
	ClimateEvents []ClimateEvent          `json:"climate_events,omitempty"`
	ActiveWeather *Weather                `json:"active_weather,omitempty"`
	WeatherRegion *string                 `json:"weather_region,omitempty"`
}
