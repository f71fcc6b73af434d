package domain

// GridWidth is the engine's hex grid stride. Tile numbers decompose as
// row = tile / GridWidth, col = tile % GridWidth.
const GridWidth = 200

// Tile is a single-integer tile address on the current map.
type Tile int

// Row returns the grid row of the tile.
func (t Tile) Row() int { return int(t) / GridWidth }

// Col returns the grid column of the tile.
func (t Tile) Col() int { return int(t) % GridWidth }

// DistanceTo is a coarse tile distance estimate (Chebyshev on the grid
// decomposition), used when the snapshot carries no authoritative distance
// field for a pair of tiles.
func (t Tile) DistanceTo(other Tile) int {
	dr := t.Row() - other.Row()
	if dr < 0 {
		dr = -dr
	}
	dc := t.Col() - other.Col()
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}
