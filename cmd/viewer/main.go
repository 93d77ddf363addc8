package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kestrelworks/worldview/internal/config"
	"github.com/kestrelworks/worldview/internal/journal"
	"github.com/kestrelworks/worldview/internal/netclient"
	"github.com/kestrelworks/worldview/internal/state"
	"github.com/kestrelworks/worldview/internal/view"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	serverURL := flag.String("server", "", "override backend websocket URL")
	journalPath := flag.String("journal", "", "record the raw stream to this file")
	seed := flag.Int64("seed", 7, "decoration noise seed")
	verbose := flag.Bool("v", false, "verbose scene log")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *journalPath != "" {
		cfg.JournalPath = *journalPath
	}

	store := state.NewStore()

	var sink netclient.FrameSink
	if cfg.JournalPath != "" {
		jw, err := journal.NewWriter(cfg.JournalPath)
		if err != nil {
			log.Fatal(err)
		}
		defer jw.Close()
		sink = jw
		log.Printf("recording stream to %s", cfg.JournalPath)
	}

	sceneLog := view.NewSceneLog(*verbose)
	proj := view.ProjectionFor(cfg.WindowW, cfg.WindowH, cfg.TileW, cfg.TileH)
	scene := view.NewScene(proj, view.EffectConfig{
		DangerThreshold:  cfg.DangerThreshold,
		ConsumptionDelta: cfg.ConsumptionDelta,
		SpeechSeconds:    cfg.SpeechSeconds,
		MaxParticles:     cfg.MaxParticles,
	}, sceneLog, *seed)

	reconnectMin, reconnectMax, pingInterval := cfg.Durations()
	client := netclient.New(netclient.Options{
		URL:          cfg.ServerURL,
		Store:        store,
		ReconnectMin: reconnectMin,
		ReconnectMax: reconnectMax,
		PingInterval: pingInterval,
		Sink:         sink,
	})

	scene.AttachStore(store)
	app := view.NewApp(cfg, client, scene)
	client.SetOnEvent(app.EventSink())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	ebiten.SetWindowTitle("Worldview")
	ebiten.SetWindowSize(cfg.WindowW, cfg.WindowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
	scene.Teardown()
}
