package view

import (
	"fmt"
	"strings"
)

// SceneLogEntry is one recorded scene event: an effect state transition, a
// trigger, a teardown, a dropped entity.
type SceneLogEntry struct {
	Tick     int
	Region   string // region id, pair key, or "--" for global events
	Category string // fx, registry, net, panel
	Key      string // halo, rain, beam, flash, bar, speech, bind, rebuild
	Value    string
	NumVal   float64
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] verdantis  fx   bar_flash  food 250.0 -> 100.0
func (e SceneLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-10s %-9s %-14s %s",
		e.Tick, e.Region, e.Category, e.Key, e.Value)
}

// SceneLog collects structured scene events. The frame driver shows a tail
// of it in the HUD event feed; headless tests assert transitions against it
// directly instead of inferring them from animation side effects.
type SceneLog struct {
	entries []SceneLogEntry
	verbose bool
}

// NewSceneLog creates a SceneLog. Verbose mode also records per-frame
// continuous values (halo alpha, beam alpha) for detailed debugging.
func NewSceneLog(verbose bool) *SceneLog {
	return &SceneLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SceneLog) Add(tick int, region, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SceneLogEntry{
		Tick: tick, Region: region, Category: category, Key: key, Value: value, NumVal: numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SceneLog) AddVerbose(tick int, region, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, region, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SceneLog) Entries() []SceneLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key. Pass empty
// string to match any value for that field.
func (sl *SceneLog) Filter(category, key string) []SceneLogEntry {
	var out []SceneLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterRegion returns entries for one region or pair key.
func (sl *SceneLog) FilterRegion(region string) []SceneLogEntry {
	var out []SceneLogEntry
	for _, e := range sl.entries {
		if e.Region == region {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match category and key.
func (sl *SceneLog) Count(category, key string) int {
	return len(sl.Filter(category, key))
}

// HasEntry reports whether an entry matches category, key, and a value
// substring.
func (sl *SceneLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.Filter(category, key) {
		if valueSubstr == "" || strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

// Tail returns the last n entries, newest last.
func (sl *SceneLog) Tail(n int) []SceneLogEntry {
	if len(sl.entries) <= n {
		return sl.entries
	}
	return sl.entries[len(sl.entries)-n:]
}

// Format returns the full log as one string for t.Log output.
func (sl *SceneLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
