package view

import (
	"fmt"
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/kestrelworks/worldview/internal/netclient"
	"github.com/kestrelworks/worldview/internal/state"
)

var statusColors = map[netclient.Status]color.RGBA{
	netclient.StatusDisconnected: {R: 220, G: 70, B: 60, A: 255},
	netclient.StatusConnecting:   {R: 230, G: 190, B: 60, A: 255},
	netclient.StatusConnected:    {R: 90, G: 200, B: 100, A: 255},
}

// drawPanel renders the HUD chrome around the scene: connection badge, tick
// counter, climate ticker, event feed, key help and the region inspector.
func drawPanel(screen *ebiten.Image, sc *Scene, status netclient.Status, picked state.RegionID) {
	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()
	snap := sc.LastSnapshot()

	// Connection badge and tick, top-left.
	vector.FillCircle(screen, 14, 14, 6, statusColors[status], true)
	line := status.String()
	if snap != nil {
		line = fmt.Sprintf("%s  step %d", line, snap.Tick)
	} else {
		line += "  waiting for snapshot"
	}
	ebitenutil.DebugPrintAt(screen, line, 26, 7)

	// Active weather, under the badge.
	if snap != nil && snap.ActiveWeather != state.WeatherNone && snap.ActiveWeather != "" {
		wl := fmt.Sprintf("weather: %s", snap.ActiveWeather)
		if snap.WeatherRegion != "" {
			wl += fmt.Sprintf(" @ %s", snap.WeatherRegion)
		}
		ebitenutil.DebugPrintAt(screen, wl, 26, 21)
	}

	drawClimateTicker(screen, snap, w)
	drawEventFeed(screen, sc, h)
	drawInspector(screen, sc, snap, picked, w)

	help := "[1] start  [2] pause  [3] reset  [G] resync  [C] copy report  [click] inspect"
	ebitenutil.DebugPrintAt(screen, help, 10, h-16)
}

// drawClimateTicker shows the most recent climate events, top centre.
func drawClimateTicker(screen *ebiten.Image, snap *state.WorldState, w int) {
	if snap == nil || len(snap.ClimateEvents) == 0 {
		return
	}
	events := snap.ClimateEvents
	if len(events) > 3 {
		events = events[len(events)-3:]
	}
	y := 7
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		line := fmt.Sprintf("! %s", ev.Description)
		if ev.Duration > 0 {
			line += fmt.Sprintf(" (%d left)", ev.Duration)
		}
		runes := utf8.RuneCountInString(line)
		x := w/2 - runes*6/2
		bgW := float32(runes*6 + 10)
		vector.FillRect(screen, float32(x)-5, float32(y)-2, bgW, 16,
			color.RGBA{R: 60, G: 34, B: 20, A: 180}, false)
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += 18
	}
}

// drawEventFeed shows the tail of the scene log, bottom-left.
func drawEventFeed(screen *ebiten.Image, sc *Scene, h int) {
	tail := sc.Log().Tail(6)
	y := h - 36 - 14*len(tail)
	for _, entry := range tail {
		ebitenutil.DebugPrintAt(screen, entry.String(), 10, y)
		y += 14
	}
}

// drawInspector renders the side panel for the picked region.
func drawInspector(screen *ebiten.Image, sc *Scene, snap *state.WorldState, picked state.RegionID, w int) {
	if picked == "" {
		return
	}
	meta, ok := MetaFor(picked)
	if !ok {
		return
	}

	const panelW = 252
	px := float32(w - panelW - 8)
	vector.FillRect(screen, px, 8, panelW, 250, color.RGBA{R: 24, G: 26, B: 32, A: 225}, false)
	accent := meta.Archetype.Style().Accent
	vector.FillRect(screen, px, 8, 3, 250, accent, false)

	x := int(px) + 10
	y := 14
	put := func(s string) {
		ebitenutil.DebugPrintAt(screen, s, x, y)
		y += 14
	}

	put(meta.Name)
	for _, line := range wrapText(meta.Lore, 38) {
		put("  " + line)
	}
	y += 6

	if snap == nil {
		put("no snapshot yet")
		return
	}
	region, ok := snap.Regions[picked]
	if !ok {
		put("not present in snapshot")
		return
	}

	put(fmt.Sprintf("action    %s", region.Action))
	if region.Strategy != "" {
		put(fmt.Sprintf("strategy  %s", region.Strategy))
	}
	put(fmt.Sprintf("morale    %.2f   danger %.2f", region.Morale, region.Danger()))
	put(fmt.Sprintf("water %.0f  food %.0f", region.Resources.Water, region.Resources.Food))
	put(fmt.Sprintf("energy %.0f  land %.0f", region.Resources.Energy, region.Resources.Land))
	put(fmt.Sprintf("population %d  crime %.2f", region.Population, region.CrimeLevel))
	put(fmt.Sprintf("infrastructure %.2f", region.Infrastructure))
	put(fmt.Sprintf("trades %d  conflicts %d", region.TotalTrades, region.TotalConflicts))
	if agent, ok := snap.Agents[picked]; ok {
		put(fmt.Sprintf("reward %.2f (total %.1f)", agent.LastReward, agent.TotalReward))
	}
	if len(region.TradePartners) > 0 {
		put(fmt.Sprintf("partners: %v", region.TradePartners))
	}
	if region.ActiveWeather != state.WeatherNone && region.ActiveWeather != "" {
		put(fmt.Sprintf("local weather: %s", region.ActiveWeather))
	}
}

// wrapText splits s into lines of at most width runes on word boundaries.
func wrapText(s string, width int) []string {
	var lines []string
	var line, word []rune
	flushWord := func() {
		if len(word) == 0 {
			return
		}
		if len(line) == 0 {
			line = append(line, word...)
		} else if len(line)+1+len(word) <= width {
			line = append(line, ' ')
			line = append(line, word...)
		} else {
			lines = append(lines, string(line))
			line = append(line[:0:0], word...)
		}
		word = word[:0]
	}
	for _, r := range s {
		if r == ' ' || r == '\n' {
			flushWord()
			continue
		}
		word = append(word, r)
	}
	flushWord()
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
