package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/kestrelworks/worldview/internal/netclient"
	"github.com/kestrelworks/worldview/internal/state"
)

// BuildReport renders a plain-text dump of the current scene and snapshot,
// suitable for pasting into a bug report.
func BuildReport(sc *Scene, status netclient.Status) string {
	var b strings.Builder
	snap := sc.LastSnapshot()

	b.WriteString("WORLDVIEW REPORT\n")
	b.WriteString(fmt.Sprintf("generated: %s\n", time.Now().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("connection: %s\n", status))
	if snap == nil {
		b.WriteString("snapshot: none\n")
	} else {
		b.WriteString(fmt.Sprintf("snapshot: step %d, %d regions, %d agents\n",
			snap.Tick, len(snap.Regions), len(snap.Agents)))
		if snap.ActiveWeather != "" && snap.ActiveWeather != state.WeatherNone {
			b.WriteString(fmt.Sprintf("active weather: %s @ %s\n", snap.ActiveWeather, snap.WeatherRegion))
		}
	}
	b.WriteString("\n")

	b.WriteString("REGIONS\n")
	for _, h := range sc.Registry().Handles() {
		if snap == nil {
			b.WriteString(fmt.Sprintf("  %-12s (no data)\n", h.Region))
			continue
		}
		region, ok := snap.Regions[h.Region]
		if !ok {
			b.WriteString(fmt.Sprintf("  %-12s (absent from snapshot)\n", h.Region))
			continue
		}
		b.WriteString(fmt.Sprintf("  %-12s %-7s morale %.2f  W%.0f F%.0f E%.0f L%.0f  pop %d  trades %d conflicts %d\n",
			region.ID, region.Action, region.Morale,
			region.Resources.Water, region.Resources.Food,
			region.Resources.Energy, region.Resources.Land,
			region.Population, region.TotalTrades, region.TotalConflicts))
		if agent, ok := snap.Agents[h.Region]; ok {
			b.WriteString(fmt.Sprintf("  %-12s agent: %s  reward %.2f total %.1f\n",
				"", agent.Strategy, agent.LastReward, agent.TotalReward))
		}
	}
	b.WriteString("\n")

	b.WriteString("EFFECTS\n")
	b.WriteString(fmt.Sprintf("  animations: %d active\n", sc.Scheduler().Len()))
	b.WriteString(fmt.Sprintf("  particles:  %d live\n", len(sc.Particles().Particles())))
	for _, beam := range sc.BeamsFx().Beams() {
		b.WriteString(fmt.Sprintf("  beam %s <-> %s  alpha %.2f\n", beam.From, beam.To, beam.Alpha))
	}
	b.WriteString("\n")

	b.WriteString("RECENT EVENTS\n")
	for _, entry := range sc.Log().Tail(20) {
		b.WriteString("  " + entry.String() + "\n")
	}
	return b.String()
}

// CopyReport builds the report and puts it on the system clipboard.
func CopyReport(sc *Scene, status netclient.Status) error {
	return clipboard.WriteAll(BuildReport(sc, status))
}
