package view

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/kestrelworks/worldview/internal/config"
	"github.com/kestrelworks/worldview/internal/iso"
	"github.com/kestrelworks/worldview/internal/netclient"
	"github.com/kestrelworks/worldview/internal/state"
)

// gridCenter is the grid coordinate the projection centres in the viewport:
// the midpoint of the region catalog layout.
const (
	gridCenterCol = 8.0
	gridCenterRow = 8.0
)

// ProjectionFor centres the catalog grid in a viewport of the given size.
func ProjectionFor(w, h int, tileW, tileH float64) iso.Projection {
	ox := float64(w)/2 - (gridCenterCol-gridCenterRow)*tileW/2
	oy := float64(h)/2 - (gridCenterCol+gridCenterRow)*tileH/2
	return iso.New(tileW, tileH, ox, oy)
}

// pickRadius is the maximum screen distance from a cluster anchor that still
// counts as clicking the region.
const pickRadius = 90.0

// App is the ebiten frame driver: it polls the store once per frame, routes
// input to the control surface, and hands rendering to the scene and panel.
// The render cadence is ebiten's fixed TPS regardless of how slowly the
// backend publishes snapshots.
type App struct {
	cfg    config.Config
	client *netclient.Client
	scene  *Scene

	// Net events arrive on the reader goroutine; Update drains them into the
	// scene log on the frame goroutine.
	events chan [2]string

	width, height int
	picked        state.RegionID
}

// NewApp wires the frame driver. client may be nil for offline replays.
func NewApp(cfg config.Config, client *netclient.Client, scene *Scene) *App {
	return &App{
		cfg:    cfg,
		client: client,
		scene:  scene,
		events: make(chan [2]string, 64),
		width:  cfg.WindowW,
		height: cfg.WindowH,
	}
}

// EventSink returns a callback safe to install as the net client's OnEvent.
func (a *App) EventSink() func(kind, detail string) {
	return func(kind, detail string) {
		select {
		case a.events <- [2]string{kind, detail}:
		default: // queue full, drop
		}
	}
}

// Update advances the viewer by one frame tick.
func (a *App) Update() error {
	a.drainEvents()
	a.handleInput()

	snap, changed := a.scene.TakePending()
	dt := 1.0 / float64(ebiten.TPS())
	a.scene.Step(snap, changed, dt)
	return nil
}

func (a *App) drainEvents() {
	for {
		select {
		case ev := <-a.events:
			a.scene.Log().Add(a.scene.tickOf(), "--", "net", ev[0], ev[1], 0)
		default:
			return
		}
	}
}

func (a *App) handleInput() {
	if a.client != nil {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.Key1):
			a.control("start")
		case inpututil.IsKeyJustPressed(ebiten.Key2):
			a.control("pause")
		case inpututil.IsKeyJustPressed(ebiten.Key3):
			a.control("reset")
		case inpututil.IsKeyJustPressed(ebiten.KeyG):
			if err := a.client.RequestState(); err != nil {
				log.Printf("request state: %v", err)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := CopyReport(a.scene, a.status()); err != nil {
			log.Printf("copy report: %v", err)
		} else {
			a.scene.Log().Add(a.scene.tickOf(), "--", "net", "report", "copied to clipboard", 0)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.picked = ""
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		a.picked = a.pickRegion(float64(x), float64(y))
	}
}

func (a *App) control(action string) {
	if err := a.client.SendControl(action); err != nil {
		log.Printf("control %s: %v", action, err)
		return
	}
	a.scene.Log().Add(a.scene.tickOf(), "--", "net", "control", action+" sent", 0)
}

// pickRegion returns the region whose cluster anchor is nearest the click,
// or "" when nothing is close enough.
func (a *App) pickRegion(x, y float64) state.RegionID {
	var best state.RegionID
	bestDist := pickRadius * pickRadius
	for _, h := range a.scene.Registry().Handles() {
		dx := h.X - x
		dy := h.Y - y
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = h.Region
		}
	}
	return best
}

func (a *App) status() netclient.Status {
	if a.client == nil {
		return netclient.StatusDisconnected
	}
	return a.client.Status()
}

// Draw renders the scene and the HUD.
func (a *App) Draw(screen *ebiten.Image) {
	a.scene.Draw(screen)
	drawPanel(screen, a.scene, a.status(), a.picked)
}

// Layout reports the render size and rebuilds the scene when the viewport
// changes, re-deriving every handle under the new projection.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.width = outsideWidth
		a.height = outsideHeight
		a.scene.Rebuild(ProjectionFor(a.width, a.height, a.cfg.TileW, a.cfg.TileH))
	}
	return outsideWidth, outsideHeight
}
