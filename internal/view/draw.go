package view

import (
	"fmt"
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/kestrelworks/worldview/internal/state"
)

var backgroundColor = color.RGBA{R: 16, G: 18, B: 24, A: 255}

// whiteImage is the 1x1 fill source for DrawTriangles polygon fills, carved
// from the centre of a 3x3 image to avoid edge bleeding.
var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(whiteImage.Bounds().Inset(1)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// fillQuad fills an arbitrary convex quad with a flat colour.
func fillQuad(dst *ebiten.Image, pts [4][2]float32, col color.RGBA) {
	cr := float32(col.R) / 255
	cg := float32(col.G) / 255
	cb := float32(col.B) / 255
	ca := float32(col.A) / 255
	vs := make([]ebiten.Vertex, 4)
	for i, p := range pts {
		vs[i] = ebiten.Vertex{
			DstX: p[0], DstY: p[1],
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		}
	}
	dst.DrawTriangles(vs, []uint16{0, 1, 2, 0, 2, 3}, whiteSubImage, nil)
}

// scaleAlpha multiplies a colour's alpha by a in [0,1].
func scaleAlpha(col color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	col.A = uint8(float64(col.A) * a)
	return col
}

// diamondPoints returns the screen corners of the ground diamond of a grid
// cell, lifted by height voxels.
func (sc *Scene) diamondPoints(col, row, height float64) [4][2]float32 {
	p := sc.reg.Projection()
	top := func(c, r float64) (float32, float32) {
		x, y := p.Project(c, r, height)
		return float32(x), float32(y)
	}
	var pts [4][2]float32
	pts[0][0], pts[0][1] = top(col, row-0.5)   // north corner
	pts[1][0], pts[1][1] = top(col+0.5, row)   // east
	pts[2][0], pts[2][1] = top(col, row+0.5)   // south
	pts[3][0], pts[3][1] = top(col-0.5, row)   // west
	return pts
}

// Draw renders the whole scene back-to-front: ground, buildings, tint,
// beams, halos, particles, bars, labels, bubbles.
func (sc *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	for _, h := range sc.reg.Handles() {
		sc.drawGround(screen, h)
	}
	sc.drawBeams(screen)
	for _, h := range sc.reg.Handles() {
		sc.drawBuildings(screen, h)
		sc.drawTint(screen, h)
		sc.drawHalo(screen, h)
		sc.drawFlash(screen, h)
	}
	sc.drawParticles(screen)
	for _, h := range sc.reg.Handles() {
		sc.drawBarsAndLabel(screen, h)
	}
	for _, h := range sc.reg.Handles() {
		sc.drawBubble(screen, h)
	}
}

func (sc *Scene) drawGround(screen *ebiten.Image, h *VisualHandle) {
	style := h.Meta.Archetype.Style()
	for _, tile := range h.Decor {
		if tile.Kind != DecorGround {
			continue
		}
		// Shade modulates the base ground colour by ±12%.
		f := 0.88 + 0.24*tile.Shade
		col := color.RGBA{
			R: clampU8(float64(style.Ground.R) * f),
			G: clampU8(float64(style.Ground.G) * f),
			B: clampU8(float64(style.Ground.B) * f),
			A: 255,
		}
		fillQuad(screen, sc.diamondPoints(tile.Col, tile.Row, 0), col)
	}
}

func (sc *Scene) drawBuildings(screen *ebiten.Image, h *VisualHandle) {
	p := sc.reg.Projection()
	style := h.Meta.Archetype.Style()
	for _, tile := range h.Decor {
		if tile.Kind != DecorBuilding {
			continue
		}
		// Left and right faces, then the lit top diamond.
		nx, ny := p.Project(tile.Col, tile.Row-0.5, 0)
		ex, ey := p.Project(tile.Col+0.5, tile.Row, 0)
		sx, sy := p.Project(tile.Col, tile.Row+0.5, 0)
		wx, wy := p.Project(tile.Col-0.5, tile.Row, 0)
		rise := float32(tile.Height * p.BlockH)

		dark := scaleAlpha(style.Building, 1)
		dark.R = clampU8(float64(dark.R) * 0.65)
		dark.G = clampU8(float64(dark.G) * 0.65)
		dark.B = clampU8(float64(dark.B) * 0.65)
		mid := style.Building
		mid.R = clampU8(float64(mid.R) * 0.82)
		mid.G = clampU8(float64(mid.G) * 0.82)
		mid.B = clampU8(float64(mid.B) * 0.82)

		// West face.
		fillQuad(screen, [4][2]float32{
			{float32(wx), float32(wy) - rise},
			{float32(sx), float32(sy) - rise},
			{float32(sx), float32(sy)},
			{float32(wx), float32(wy)},
		}, dark)
		// East face.
		fillQuad(screen, [4][2]float32{
			{float32(sx), float32(sy) - rise},
			{float32(ex), float32(ey) - rise},
			{float32(ex), float32(ey)},
			{float32(sx), float32(sy)},
		}, mid)
		// Top.
		fillQuad(screen, [4][2]float32{
			{float32(nx), float32(ny) - rise},
			{float32(ex), float32(ey) - rise},
			{float32(sx), float32(sy) - rise},
			{float32(wx), float32(wy) - rise},
		}, style.Building)
	}
}

// weatherTintColors dispatches overlay colour on the tint weather.
var weatherTintColors = map[state.Weather]color.RGBA{
	state.WeatherDrought:    {R: 214, G: 168, B: 60, A: 255},
	state.WeatherSolarFlare: {R: 255, G: 196, B: 110, A: 255},
}

func (sc *Scene) drawTint(screen *ebiten.Image, h *VisualHandle) {
	if h.TintAlpha < 0.01 {
		return
	}
	col, ok := weatherTintColors[h.TintWeather]
	if !ok {
		return
	}
	r := float64(h.Meta.Archetype.Style().Footprint) + 0.6
	fillQuad(screen, [4][2]float32{
		quadCorner(sc, h, 0, -r), quadCorner(sc, h, r, 0),
		quadCorner(sc, h, 0, r), quadCorner(sc, h, -r, 0),
	}, scaleAlpha(col, h.TintAlpha))
}

func quadCorner(sc *Scene, h *VisualHandle, dc, dr float64) [2]float32 {
	x, y := sc.reg.Projection().Project(h.Meta.Col+dc, h.Meta.Row+dr, 0)
	return [2]float32{float32(x), float32(y)}
}

func (sc *Scene) drawHalo(screen *ebiten.Image, h *VisualHandle) {
	if h.HaloAlpha < 0.01 {
		return
	}
	col := scaleAlpha(color.RGBA{R: 235, G: 60, B: 50, A: 200}, h.HaloAlpha)
	vector.StrokeCircle(screen, float32(h.X), float32(h.Y), float32(h.HaloRadius), 2.5, col, true)
	inner := scaleAlpha(color.RGBA{R: 235, G: 60, B: 50, A: 60}, h.HaloAlpha)
	vector.FillCircle(screen, float32(h.X), float32(h.Y), float32(h.HaloRadius)*0.8, inner, true)
}

func (sc *Scene) drawFlash(screen *ebiten.Image, h *VisualHandle) {
	if h.FlashAlpha < 0.01 {
		return
	}
	col := scaleAlpha(color.RGBA{R: 255, G: 240, B: 210, A: 230}, h.FlashAlpha)
	vector.FillCircle(screen, float32(h.X), float32(h.Y), 34, col, true)
}

func (sc *Scene) drawBeams(screen *ebiten.Image) {
	for _, b := range sc.beams.Beams() {
		from := sc.reg.Lookup(b.From)
		to := sc.reg.Lookup(b.To)
		if from == nil || to == nil {
			continue
		}
		col := scaleAlpha(color.RGBA{R: 120, G: 220, B: 255, A: 200}, b.Alpha)
		vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 2, col, true)

		// Three sparkle markers travel the segment, evenly phase-shifted.
		for k := 0; k < 3; k++ {
			t := b.Sparkle + float64(k)/3
			if t >= 1 {
				t -= 1
			}
			x := from.X + (to.X-from.X)*t
			y := from.Y + (to.Y-from.Y)*t
			sp := scaleAlpha(color.RGBA{R: 230, G: 250, B: 255, A: 255}, b.Alpha)
			vector.FillCircle(screen, float32(x), float32(y), 3, sp, true)
		}
	}
}

var particleColors = map[ParticleKind]color.RGBA{
	ParticleRain:    {R: 110, G: 170, B: 255, A: 200},
	ParticleBlight:  {R: 130, G: 90, B: 160, A: 190},
	ParticleDebris:  {R: 220, G: 160, B: 90, A: 220},
	ParticleSparkle: {R: 240, G: 250, B: 255, A: 220},
}

func (sc *Scene) drawParticles(screen *ebiten.Image) {
	for _, p := range sc.pool.Particles() {
		col := scaleAlpha(particleColors[p.Kind], p.Alpha())
		switch p.Kind {
		case ParticleRain:
			vector.StrokeLine(screen, float32(p.X), float32(p.Y), float32(p.X-2), float32(p.Y+7), 1, col, false)
		default:
			vector.FillCircle(screen, float32(p.X), float32(p.Y), 2, col, false)
		}
	}
}

var barColors = [barCount]color.RGBA{
	BarWater:  {R: 70, G: 140, B: 230, A: 255},
	BarFood:   {R: 110, G: 190, B: 80, A: 255},
	BarEnergy: {R: 235, G: 200, B: 70, A: 255},
	BarLand:   {R: 170, G: 130, B: 80, A: 255},
}

const (
	barW     = 56.0
	barH     = 5.0
	barGap   = 2.0
	barYBase = 34.0
)

func (sc *Scene) drawBarsAndLabel(screen *ebiten.Image, h *VisualHandle) {
	bx := float32(h.X - barW/2)
	by := float32(h.Y + barYBase)
	for i := 0; i < barCount; i++ {
		y := by + float32(i)*(barH+barGap)
		vector.FillRect(screen, bx, y, barW, barH, color.RGBA{R: 30, G: 32, B: 38, A: 200}, false)
		fill := float32(h.Bars[i].Value) * barW
		vector.FillRect(screen, bx, y, fill, barH, barColors[i], false)
		if h.Bars[i].FlashAlpha > 0.01 {
			flash := scaleAlpha(color.RGBA{R: 255, G: 255, B: 255, A: 200}, h.Bars[i].FlashAlpha)
			vector.FillRect(screen, bx, y, barW, barH, flash, false)
		}
	}

	// Region label, centred under the bars, in the archetype accent.
	accent := h.Meta.Archetype.Style().Accent
	lx := int(h.X) - utf8.RuneCountInString(h.Label)*7/2
	ly := int(by) + int(barCount*(barH+barGap)) + 14
	text.Draw(screen, h.Label, basicfont.Face7x13, lx, ly, accent)

	// Agent action line, when a snapshot is present.
	if snap := sc.lastSnap; snap != nil {
		if agent, ok := snap.Agents[h.Region]; ok {
			line := fmt.Sprintf("%s  r:%.1f", agent.Action, agent.LastReward)
			text.Draw(screen, line, basicfont.Face7x13, int(h.X)-utf8.RuneCountInString(line)*7/2, ly+14,
				color.RGBA{R: 170, G: 175, B: 185, A: 255})
		}
	}
}

func (sc *Scene) drawBubble(screen *ebiten.Image, h *VisualHandle) {
	if h.BubbleText == "" || h.BubbleAlpha < 0.05 {
		return
	}
	const charW = 6
	const padX = 5
	const padY = 3
	const lineH = 14

	bgW := float32(utf8.RuneCountInString(h.BubbleText)*charW + padX*2)
	bgH := float32(lineH + padY*2)
	top := float32(h.Y) - 78 - bgH + float32(h.Bob)
	bgX := float32(h.X) - bgW/2

	bg := scaleAlpha(color.RGBA{R: 20, G: 22, B: 20, A: 210}, h.BubbleAlpha)
	vector.FillRect(screen, bgX, top, bgW, bgH, bg, false)
	accent := scaleAlpha(h.Meta.Archetype.Style().Accent, h.BubbleAlpha)
	vector.FillRect(screen, bgX, top, 3, bgH, accent, false)
	border := scaleAlpha(color.RGBA{R: 100, G: 100, B: 100, A: 80}, h.BubbleAlpha)
	vector.StrokeRect(screen, bgX, top, bgW, bgH, 0.5, border, false)

	ebitenutil.DebugPrintAt(screen, h.BubbleText, int(bgX)+padX+3, int(top)+padY)

	// Connector down to the cluster.
	vector.StrokeLine(screen, float32(h.X), top+bgH, float32(h.X), float32(h.Y)-40,
		0.5, border, false)
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
