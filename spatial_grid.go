package main

import "math"

// cellKey uniquely identifies a grid cell
type cellKey struct {
	cx, cy int
}

// bodyEntry is one collidable segment pair (segIdx, segIdx+1) of a snake.
type bodyEntry struct {
	snakeID string
	segIdx  int
	a, b    Point
}

// maxPairCells bounds how many cells one segment pair may span per axis.
// Longer pairs (only possible from unvalidated remote snapshots) go to a list
// that every body query scans.
const maxPairCells = 16

type foodEntry struct {
	id  string
	pos Point
}

// SpatialGrid is a uniform hash grid rebuilt every tick. Food and snake bodies
// live in separate indexes so each query only walks what it needs.
type SpatialGrid struct {
	cellSize    float64
	food        map[cellKey][]foodEntry
	bodies      map[cellKey][]bodyEntry
	longBodies  []bodyEntry
	maxFoodSize float64 // largest food inserted since the last Clear
}

// NewSpatialGrid creates an empty spatial grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	g := &SpatialGrid{cellSize: cellSize}
	g.Clear()
	return g
}

// Clear empties both indexes.
func (g *SpatialGrid) Clear() {
	g.food = make(map[cellKey][]foodEntry)
	g.bodies = make(map[cellKey][]bodyEntry)
	g.longBodies = g.longBodies[:0]
	g.maxFoodSize = 0
}

func (g *SpatialGrid) cell(v float64) int {
	return int(math.Floor(v / g.cellSize))
}

func (g *SpatialGrid) keyFor(p Point) cellKey {
	return cellKey{cx: g.cell(p.X), cy: g.cell(p.Y)}
}

// eachCell calls fn for every cell overlapping the rectangle [minX,maxX]x[minY,maxY].
func (g *SpatialGrid) eachCell(minX, minY, maxX, maxY float64, fn func(cellKey)) {
	for cx := g.cell(minX); cx <= g.cell(maxX); cx++ {
		for cy := g.cell(minY); cy <= g.cell(maxY); cy++ {
			fn(cellKey{cx, cy})
		}
	}
}

// InsertFood indexes a food item.
func (g *SpatialGrid) InsertFood(f *Food) {
	k := g.keyFor(f.Position)
	g.food[k] = append(g.food[k], foodEntry{id: f.ID, pos: f.Position})
	if f.Size > g.maxFoodSize {
		g.maxFoodSize = f.Size
	}
}

// MaxFoodSize returns the largest food size currently indexed.
func (g *SpatialGrid) MaxFoodSize() float64 {
	return g.maxFoodSize
}

// InsertSnakeBody indexes every collidable segment pair of the snake under
// each cell its bounding box covers. Pairs starting within the first
// CollisionSkipSegs segments behind the head never collide.
func (g *SpatialGrid) InsertSnakeBody(s *Snake) {
	for i := CollisionSkipSegs; i+1 < len(s.Segments); i++ {
		e := bodyEntry{snakeID: s.ID, segIdx: i, a: s.Segments[i], b: s.Segments[i+1]}
		minX, maxX := math.Min(e.a.X, e.b.X), math.Max(e.a.X, e.b.X)
		minY, maxY := math.Min(e.a.Y, e.b.Y), math.Max(e.a.Y, e.b.Y)
		if (maxX-minX)/g.cellSize >= maxPairCells-1 || (maxY-minY)/g.cellSize >= maxPairCells-1 {
			g.longBodies = append(g.longBodies, e)
			continue
		}
		g.eachCell(minX, minY, maxX, maxY, func(k cellKey) {
			g.bodies[k] = append(g.bodies[k], e)
		})
	}
}

// NearbyFood returns food IDs within radius of (x,y)
func (g *SpatialGrid) NearbyFood(x, y, radius float64) []string {
	center := Point{X: x, Y: y}
	results := []string{}
	g.eachCell(x-radius, y-radius, x+radius, y+radius, func(k cellKey) {
		for _, e := range g.food[k] {
			if Distance(e.pos, center) <= radius {
				results = append(results, e.id)
			}
		}
	})
	return results
}

// NearbySnakeBody returns the segment pairs passing within radius of (x,y),
// excluding the snake identified by excludeID. Each pair appears once.
func (g *SpatialGrid) NearbySnakeBody(x, y, radius float64, excludeID string) []bodyEntry {
	center := Point{X: x, Y: y}
	type pairKey struct {
		snakeID string
		segIdx  int
	}
	seen := map[pairKey]bool{}
	results := []bodyEntry{}
	consider := func(e bodyEntry) {
		k := pairKey{e.snakeID, e.segIdx}
		if e.snakeID == excludeID || seen[k] {
			return
		}
		seen[k] = true
		if DistanceToSegment(center, e.a, e.b) < radius {
			results = append(results, e)
		}
	}
	g.eachCell(x-radius, y-radius, x+radius, y+radius, func(k cellKey) {
		for _, e := range g.bodies[k] {
			consider(e)
		}
	})
	for _, e := range g.longBodies {
		consider(e)
	}
	return results
}

// FoodInViewport returns the viewer form of every indexed food item inside the
// rectangle with top-left (vx,vy) and size vw x vh.
func (g *SpatialGrid) FoodInViewport(food *FoodSet, vx, vy, vw, vh float64) []FoodView {
	result := []FoodView{}
	g.eachCell(vx, vy, vx+vw, vy+vh, func(k cellKey) {
		for _, e := range g.food[k] {
			if e.pos.X < vx || e.pos.X > vx+vw || e.pos.Y < vy || e.pos.Y > vy+vh {
				continue
			}
			if f, ok := food.Get(e.id); ok {
				result = append(result, f.View())
			}
		}
	})
	return result
}
