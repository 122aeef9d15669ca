package main

import "sort"

// Event is one decoded server message. Only the fields matching Type are set.
type Event struct {
	Type    string
	Players map[string]PlayerState // currentPlayers
	Player  PlayerState            // newPlayer, playerMoved
	ID      string                 // disconnect, removePlayer, removeFood
	Foods   []FoodDTO              // currentFoods
	Food    FoodDTO                // addFood
}

// ApplyRemote applies a server event to the world. Remote snakes are pure
// mirrors; food changes are idempotent set operations. Returns false when the
// event changed nothing (unknown id, duplicate, unknown type).
func (w *World) ApplyRemote(ev Event) bool {
	switch ev.Type {
	case MsgCurrentPlayers:
		ids := make([]string, 0, len(ev.Players))
		for id := range ev.Players {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		changed := false
		for _, id := range ids {
			p := ev.Players[id]
			if p.ID == "" {
				p.ID = id
			}
			if w.upsertPlayer(p) {
				changed = true
			}
		}
		return changed

	case MsgNewPlayer:
		if ev.Player.ID == "" || ev.Player.ID == w.LocalID {
			return false
		}
		return w.upsertPlayer(ev.Player)

	case MsgPlayerMoved:
		s, ok := w.Snakes[ev.Player.ID]
		if !ok || s.Control != ControlRemote {
			return false
		}
		s.ApplyMove(ev.Player)
		return true

	case MsgDisconnect, MsgRemovePlayer:
		s, ok := w.Snakes[ev.ID]
		if !ok || s.Control != ControlRemote {
			return false
		}
		return w.RemoveSnake(ev.ID)

	case MsgCurrentFoods:
		items := make([]*Food, 0, len(ev.Foods))
		for _, d := range ev.Foods {
			items = append(items, FoodFromDTO(d))
		}
		w.Food.Replace(items)
		return true

	case MsgAddFood:
		return w.Food.Add(FoodFromDTO(ev.Food))

	case MsgRemoveFood:
		return w.Food.Remove(ev.ID)

	case MsgYouDied:
		local := w.Local()
		if local == nil {
			return false
		}
		local.Dead = true
		w.GameOver = true
		return true
	}
	return false
}

// upsertPlayer creates or refreshes the snake for a player snapshot. The
// snapshot for our own id seeds the local snake once; after that the client
// is authoritative for its own movement.
func (w *World) upsertPlayer(p PlayerState) bool {
	if p.ID == w.LocalID {
		if w.Local() != nil {
			return false
		}
		local := NewSnake(p.ID, ControlLocal, p.Position, p.Color)
		if len(p.Segments) > 0 {
			local.Segments = append([]Point(nil), p.Segments...)
		}
		w.AddSnake(local)
		w.Camera.CenterOn(local.Head(), w.ViewW, w.ViewH)
		return true
	}
	if s, ok := w.Snakes[p.ID]; ok && s.Control == ControlRemote {
		s.ApplySnapshot(p)
		return true
	}
	w.AddSnake(NewRemoteSnake(p))
	return true
}
