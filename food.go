package main

import (
	"math/rand"

	"github.com/google/uuid"
)

// Food represents a collectible item in the world.
type Food struct {
	ID       string
	Position Point
	Size     float64
	Hue      int
}

// NewFood creates a food item at a random position inside a width x height map.
func NewFood(rng *rand.Rand, width, height float64) *Food {
	return &Food{
		ID:       newFoodID(),
		Position: Point{X: rng.Float64() * width, Y: rng.Float64() * height},
		Size:     FoodSizeMin + rng.Float64()*(FoodSizeMax-FoodSizeMin),
		Hue:      rng.Intn(360),
	}
}

// NewFoodAt creates a food item exactly at p (used for a dead snake's remains).
func NewFoodAt(rng *rand.Rand, p Point) *Food {
	return &Food{
		ID:       newFoodID(),
		Position: p,
		Size:     DeathFoodSize,
		Hue:      rng.Intn(360),
	}
}

// FoodFromDTO converts a wire food into a Food. Entries without an id get one
// so they can still be removed locally.
func FoodFromDTO(d FoodDTO) *Food {
	id := d.ID
	if id == "" {
		id = newFoodID()
	}
	return &Food{ID: id, Position: d.Position, Size: d.Size, Hue: d.Hue}
}

// View converts Food to the compact viewer form.
func (f *Food) View() FoodView {
	return FoodView{
		ID:   f.ID,
		X:    roundTo1(f.Position.X),
		Y:    roundTo1(f.Position.Y),
		Size: roundTo1(f.Size),
		Hue:  f.Hue,
	}
}

// DistanceTo returns distance from food to a point
func (f *Food) DistanceTo(p Point) float64 {
	return Distance(f.Position, p)
}

func newFoodID() string {
	return "f-" + uuid.NewString()
}

// FoodSet is the food collection keyed by id. Insert and remove are
// idempotent so duplicate or reordered remote deliveries are harmless.
// Iteration follows insertion order.
type FoodSet struct {
	byID  map[string]*Food
	order []string
}

// NewFoodSet creates an empty set.
func NewFoodSet() *FoodSet {
	return &FoodSet{byID: make(map[string]*Food)}
}

// Add inserts f, or overwrites the entry with the same id.
// Returns false when the id was already present.
func (s *FoodSet) Add(f *Food) bool {
	if _, ok := s.byID[f.ID]; ok {
		s.byID[f.ID] = f
		return false
	}
	s.byID[f.ID] = f
	s.order = append(s.order, f.ID)
	return true
}

// Remove deletes the food with the given id. Missing ids are a no-op.
func (s *FoodSet) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the food with the given id.
func (s *FoodSet) Get(id string) (*Food, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// Len returns the number of food items.
func (s *FoodSet) Len() int {
	return len(s.order)
}

// Items returns the food items in insertion order.
func (s *FoodSet) Items() []*Food {
	items := make([]*Food, len(s.order))
	for i, id := range s.order {
		items[i] = s.byID[id]
	}
	return items
}

// Replace swaps the whole collection for items.
func (s *FoodSet) Replace(items []*Food) {
	s.byID = make(map[string]*Food, len(items))
	s.order = s.order[:0]
	for _, f := range items {
		s.Add(f)
	}
}
