package view

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// DecorKind selects how a decoration tile is rendered.
type DecorKind int

const (
	DecorGround DecorKind = iota
	DecorBuilding
)

// DecorTile is one static decoration element of a region cluster: a ground
// diamond or a building block, in absolute grid coordinates. Built once per
// scene build, read-only afterwards.
type DecorTile struct {
	Kind     DecorKind
	Col, Row float64
	Height   float64 // building block height in voxel units
	Shade    float64 // ground shade variation in [0,1]
}

const decorNoiseScale = 0.35

// buildDecor derives a region's static cluster decoration from its catalog
// metadata and the shared noise field. Pure layout: the same metadata and
// seed always produce the same tiles.
func buildDecor(meta RegionMeta, noise opensimplex.Noise) []DecorTile {
	style := meta.Archetype.Style()
	r := style.Footprint

	var tiles []DecorTile
	for dc := -r; dc <= r; dc++ {
		for dr := -r; dr <= r; dr++ {
			// Diamond footprint, matching the isometric silhouette.
			if abs(dc)+abs(dr) > r {
				continue
			}
			col := meta.Col + float64(dc)
			row := meta.Row + float64(dr)
			shade := 0.5 + 0.5*noise.Eval2(col*decorNoiseScale, row*decorNoiseScale)
			tiles = append(tiles, DecorTile{
				Kind: DecorGround,
				Col:  col, Row: row,
				Shade: shade,
			})
		}
	}

	// A small building cluster at the centre; taller for grander archetypes.
	// Heights are deterministic per cell so rebuilds do not reshuffle the
	// skyline.
	for _, off := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {-1, -1}} {
		col := meta.Col + off[0]
		row := meta.Row + off[1]
		n := 0.5 + 0.5*noise.Eval2(col*1.7, row*1.7)
		h := style.RoofRise * (0.4 + 0.6*n)
		tiles = append(tiles, DecorTile{
			Kind: DecorBuilding,
			Col:  col, Row: row,
			Height: h,
		})
	}
	return tiles
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
