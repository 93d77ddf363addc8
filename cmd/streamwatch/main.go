// Command streamwatch is the headless companion to the viewer: it follows
// the backend stream (or replays a recorded journal) and prints one summary
// line per snapshot. Useful for checking the reconciler against a live
// backend without a display.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/kestrelworks/worldview/internal/config"
	"github.com/kestrelworks/worldview/internal/journal"
	"github.com/kestrelworks/worldview/internal/netclient"
	"github.com/kestrelworks/worldview/internal/protocol"
	"github.com/kestrelworks/worldview/internal/state"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	serverURL := flag.String("server", "", "override backend websocket URL")
	recordPath := flag.String("record", "", "record the raw stream to this file")
	replayPath := flag.String("replay", "", "replay a recorded journal instead of connecting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	store := state.NewStore()
	store.Subscribe(printSummary)

	if *replayPath != "" {
		if err := replay(store, *replayPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	var sink netclient.FrameSink
	if *recordPath != "" {
		jw, err := journal.NewWriter(*recordPath)
		if err != nil {
			log.Fatal(err)
		}
		defer jw.Close()
		sink = jw
		log.Printf("recording to %s", *recordPath)
	}

	reconnectMin, reconnectMax, pingInterval := cfg.Durations()
	client := netclient.New(netclient.Options{
		URL:          cfg.ServerURL,
		Store:        store,
		ReconnectMin: reconnectMin,
		ReconnectMax: reconnectMax,
		PingInterval: pingInterval,
		Sink:         sink,
		OnEvent: func(kind, detail string) {
			log.Printf("[%s] %s", kind, detail)
		},
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	log.Printf("watching %s", cfg.ServerURL)
	client.Run(ctx)
}

// replay feeds every journaled frame through the normal decode path, so a
// recorded session exercises exactly the code a live one does.
func replay(store *state.Store, path string) error {
	jr, err := journal.NewReader(path)
	if err != nil {
		return err
	}
	defer jr.Close()

	for {
		entry, err := jr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		env, err := protocol.Decode(entry.Frame)
		if err != nil {
			log.Printf("skipping frame: %v", err)
			continue
		}
		switch env.Type {
		case protocol.TypeInitialState, protocol.TypeSimulationReset, protocol.TypeStateUpdate:
			p, err := protocol.DecodePayload(env)
			if err != nil {
				log.Printf("skipping %s: %v", env.Type, err)
				continue
			}
			if p.Full != nil {
				store.ApplyFull(p.Full)
			} else if _, err := store.ApplyCompact(p.Compact); err != nil {
				log.Printf("skipping delta: %v", err)
			}
		}
	}
}

func printSummary(ws *state.WorldState) {
	ids := make([]state.RegionID, 0, len(ws.Regions))
	for id := range ws.Regions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Printf("step %-6d weather=%s\n", ws.Tick, ws.ActiveWeather)
	for _, id := range ids {
		r := ws.Regions[id]
		fmt.Printf("  %-12s %-7s morale=%.2f W=%.0f F=%.0f E=%.0f L=%.0f pop=%d\n",
			id, r.Action, r.Morale,
			r.Resources.Water, r.Resources.Food, r.Resources.Energy, r.Resources.Land,
			r.Population)
	}
}
