package world

import (
	"math"

	"github.com/skyfall/arcade/internal/core/ecs"
)

// Grid is a uniform cell grid used as the contact broad phase. Cell size is
// kept at least twice the largest collider half-extent, so any overlapping
// pair sits in the same or adjacent cells.
// Accessed only from the simulation goroutine.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]ecs.EntityID
}

type cellKey struct {
	cx, cy int32
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.EntityID),
	}
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// Fit grows the cell size to cover a collider with the given half extents.
// Only valid right before Reset.
func (g *Grid) Fit(halfW, halfH float64) {
	if need := 2 * math.Max(halfW, halfH); need > g.cellSize {
		g.cellSize = need
	}
}

func (g *Grid) key(x, y float64) cellKey {
	return cellKey{
		cx: int32(math.Floor(x / g.cellSize)),
		cy: int32(math.Floor(y / g.cellSize)),
	}
}

// Reset empties every cell but keeps the allocations.
func (g *Grid) Reset() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
}

// Add places an entity into the cell containing (x, y).
func (g *Grid) Add(id ecs.EntityID, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], id)
}

// Nearby calls fn for every entity in the 3x3 neighbourhood of cells around
// (x, y). Caller does the exact overlap test.
func (g *Grid) Nearby(x, y float64, fn func(ecs.EntityID)) {
	c := g.key(x, y)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for _, id := range g.cells[cellKey{cx: c.cx + dx, cy: c.cy + dy}] {
				fn(id)
			}
		}
	}
}
