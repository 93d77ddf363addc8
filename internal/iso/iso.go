// Package iso maps logical world-grid coordinates onto screen pixels using a
// classic 2:1 isometric projection. It is pure arithmetic: no state beyond
// the projection constants, no error cases.
package iso

import "math"

// Projection holds the constants of one isometric view. The zero value is
// unusable; construct with New or fill every field.
type Projection struct {
	TileW   float64 // full diamond width in pixels
	TileH   float64 // full diamond height in pixels
	OriginX float64 // screen x of grid cell (0,0)
	OriginY float64 // screen y of grid cell (0,0)
	BlockH  float64 // vertical pixels per unit of height
}

// New returns a Projection with the given tile metrics and origin, using a
// block height of half the tile height (one "voxel" per half-diamond).
func New(tileW, tileH, originX, originY float64) Projection {
	return Projection{
		TileW:   tileW,
		TileH:   tileH,
		OriginX: originX,
		OriginY: originY,
		BlockH:  tileH / 2,
	}
}

// Project converts a grid position (col, row) at the given height to screen
// coordinates. Height raises the point straight up the screen.
func (p Projection) Project(col, row, height float64) (x, y float64) {
	x = p.OriginX + (col-row)*(p.TileW/2)
	y = p.OriginY + (col+row)*(p.TileH/2) - height*p.BlockH
	return x, y
}

// Unproject inverts Project for height 0, recovering the fractional grid
// position under a screen point. Used for tile picking.
func (p Projection) Unproject(x, y float64) (col, row float64) {
	dx := (x - p.OriginX) / (p.TileW / 2)
	dy := (y - p.OriginY) / (p.TileH / 2)
	col = (dx + dy) / 2
	row = (dy - dx) / 2
	return col, row
}

// PickTile returns the integer grid cell under a screen point, rounding to
// the nearest cell centre.
func (p Projection) PickTile(x, y float64) (col, row int) {
	fc, fr := p.Unproject(x, y)
	return int(math.Round(fc)), int(math.Round(fr))
}
