package main

// Two protocols live here.
//
// Server link (bridge.go): envelope {"t":name,"d":payload}, names as below.
//   Client → Server:
//     playerMovement {position, angle, segments, length}
//     eatFood        "foodID"
//   Server → Client:
//     currentPlayers {id: Player, ...}
//     newPlayer      Player
//     playerMoved    Player (id, segments, angle, length)
//     disconnect     "playerID"   (alias: removePlayer)
//     currentFoods   [Food, ...]
//     addFood        Food
//     removeFood     "foodID"
//     youDied        (no payload)
//
// Viewer link (viewer.go) uses single-character JSON keys:
//   Viewer → Client:
//     "k" = key     {"t":"k","k":"w","d":1}   (d=1 down, d=0 up)
//     "r" = restart {"t":"r"}
//   Client → Viewer:
//     "w" = welcome {"t":"w","i":"id","m":"solo","ww":1600,"wh":1200,"vw":800,"vh":600}
//     "f" = frame   {"t":"f","n":tick,"c":[x,y],"s":[snakes],"f":[food],"p":score,"o":0}
//     "e" = error   {"t":"e","m":"message"}

// Server link message names
const (
	MsgPlayerMovement = "playerMovement"
	MsgEatFood        = "eatFood"
	MsgCurrentPlayers = "currentPlayers"
	MsgNewPlayer      = "newPlayer"
	MsgPlayerMoved    = "playerMoved"
	MsgDisconnect     = "disconnect"
	MsgRemovePlayer   = "removePlayer"
	MsgCurrentFoods   = "currentFoods"
	MsgAddFood        = "addFood"
	MsgRemoveFood     = "removeFood"
	MsgYouDied        = "youDied"
)

// Viewer message type identifiers, single-char for compact protocol
const (
	ViewMsgKey     = "k"
	ViewMsgRestart = "r"
	ViewMsgWelcome = "w"
	ViewMsgFrame   = "f"
	ViewMsgError   = "e"
)

// PlayerState is a server-described player snapshot.
type PlayerState struct {
	ID       string  `json:"id" msgpack:"id"`
	Position Point   `json:"position" msgpack:"position"`
	Segments []Point `json:"segments" msgpack:"segments"`
	Velocity Point   `json:"velocity" msgpack:"velocity"`
	Angle    float64 `json:"angle" msgpack:"angle"`
	Length   int     `json:"length" msgpack:"length"`
	IsDead   bool    `json:"isDead" msgpack:"isDead"`
	Color    string  `json:"color" msgpack:"color"`
}

// PlayerMovement is pushed to the server every tick for the local snake.
type PlayerMovement struct {
	Position Point   `json:"position" msgpack:"position"`
	Angle    float64 `json:"angle" msgpack:"angle"`
	Segments []Point `json:"segments" msgpack:"segments"`
	Length   int     `json:"length" msgpack:"length"`
}

// FoodDTO is the wire form of a food item.
type FoodDTO struct {
	ID       string  `json:"id,omitempty" msgpack:"id,omitempty"`
	Position Point   `json:"position" msgpack:"position"`
	Size     float64 `json:"size" msgpack:"size"`
	Hue      int     `json:"hue" msgpack:"hue"`
}

// ViewerMessage is the base incoming message from a viewer.
//   {"t":"k","k":"a","d":1}   key a down
//   {"t":"r"}                 restart
type ViewerMessage struct {
	Type string `json:"t"`
	Key  string `json:"k,omitempty"`
	Down int    `json:"d,omitempty"` // 0 or 1
}

// WelcomeMsg is sent to a viewer right after it connects.
type WelcomeMsg struct {
	Type           string  `json:"t"`
	PlayerID       string  `json:"i"`
	Mode           Mode    `json:"m"`
	WorldWidth     float64 `json:"ww"`
	WorldHeight    float64 `json:"wh"`
	ViewportWidth  float64 `json:"vw"`
	ViewportHeight float64 `json:"vh"`
}

// SnakeView is the compact snake for per-frame updates.
// Segments are flat [x,y] pairs rounded to 1 decimal.
type SnakeView struct {
	ID        string       `json:"i"`
	Segments  [][2]float64 `json:"s"`
	Angle     float64      `json:"a"`
	BaseColor string       `json:"c"`
	TailColor string       `json:"x"`
	Dead      int          `json:"d,omitempty"`
}

// FoodView is the compact food item for per-frame updates.
type FoodView struct {
	ID   string  `json:"i"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"z"`
	Hue  int     `json:"h"`
}

// FrameMsg is everything a viewer needs to draw one frame.
type FrameMsg struct {
	Type     string      `json:"t"`
	Tick     int64       `json:"n"`
	Camera   [2]float64  `json:"c"`
	Snakes   []SnakeView `json:"s"`
	Food     []FoodView  `json:"f"`
	Score    int         `json:"p"`
	GameOver int         `json:"o"`
}

// ErrorMsg is sent to a viewer before the connection is refused.
type ErrorMsg struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}
