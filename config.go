package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
)

// Game configuration constants
const (
	// Viewer HTTP server
	ViewerAddr    = ":8090"
	StaticDir     = "./web"
	WebSocketPath = "/ws"
	MaxViewers    = 8
	IPCooldownSec = 2

	// World: rectangular map, origin top-left.
	DefaultWorldWidth     = 1600.0
	DefaultWorldHeight    = 1200.0
	DefaultViewportWidth  = 800.0
	DefaultViewportHeight = 600.0

	// Frame loop
	FrameRate = 60 // simulation steps (and frames) per second

	// Snake
	SnakeSpeed        = 4.0 // px per tick
	AISnakeSpeed      = 3.0 // px per tick
	SnakeInitLength   = 20  // starting target length
	VelocityBlend     = 0.3 // fraction of the gap to desired velocity closed each tick
	WallMargin        = 10.0
	GrowthWrap        = 5 // target length gained per food in wrap mode
	GrowthWall        = 2 // target length gained per food in wall mode
	SnakeTailColor    = "hsl(160, 100%, 30%)"
	PlayerHitRadius   = 12.0 // head-to-body distance that kills the player
	AIHitRadius       = 8.0  // head-to-body distance that kills an AI snake
	CollisionSkipSegs = 3    // segments nearest the other snake's head that never count
	CameraSmoothing   = 0.1

	// Food
	FoodSizeMin       = 4.0
	FoodSizeMax       = 10.0
	DeathFoodEvery    = 3 // every Nth body segment turns into food on death
	DeathFoodSize     = 8.0
	SoloInitialFood   = 80
	SoloMaxFood       = 200
	FoodSpawnInterval = 3 * time.Second

	// Spatial grid
	GridCellSize = 100.0

	// AI
	AICount            = 6
	AITurnSpeed        = 0.12 // fraction of the angle gap closed per tick
	AIJitter           = 0.08 // max random heading noise per tick, radians
	AIRetargetDistance = 50.0 // forage target is kept until this close
	AIEngageRange      = 350.0
	AILeadTicks        = 12.0 // intercept prediction horizon
	AIWallBuffer       = 60.0 // steer to centre when this close to a wall
	AIWanderRate       = 0.6  // wander heading rotation, radians per second
	AIPredatorChance   = 0.3  // share of AI snakes spawned in predator mode
	AIShorterBias      = 0.7  // rival score multiplier when rival is shorter
	AIEqualBias        = 1.2  // rival score multiplier when rival is as long
)

// PlayerColors palette
var PlayerColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#e91e63", "#00bcd4", "#8bc34a",
	"#ff5722", "#607d8b", "#795548", "#673ab7", "#03a9f4",
	"#4caf50", "#ffeb3b", "#ff9800", "#f44336", "#9c27b0",
}

// Mode selects which revision of the game runs.
type Mode string

const (
	ModeSolo   Mode = "solo"   // local snake vs AI, wall boundary
	ModeOnline Mode = "online" // local snake + remote mirrors, wrap boundary
)

var (
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidBoundary = errors.New("invalid boundary")
	ErrInvalidCodec    = errors.New("invalid codec")
	ErrMissingServer   = errors.New("online mode needs a server url")
)

// Config is the runtime configuration assembled from flags and environment.
type Config struct {
	Mode           Mode
	Boundary       Boundary
	ServerURL      string
	PlayerID       string
	Codec          string
	ViewerAddr     string
	StaticDir      string
	WorldWidth     float64
	WorldHeight    float64
	ViewportWidth  float64
	ViewportHeight float64
	AICount        int
	Seed           int64
	LogFile        string
	Debug          bool
}

// LoadConfig parses args and applies SNAKEIO_* environment overrides.
func LoadConfig(args []string) (Config, error) {
	var cfg Config
	var mode, boundary string

	fs := flag.NewFlagSet("snakeio", flag.ContinueOnError)
	fs.StringVar(&mode, "mode", string(ModeSolo), "game mode: solo or online")
	fs.StringVar(&boundary, "boundary", "", "boundary policy override: wrap or wall (default follows mode)")
	fs.StringVar(&cfg.ServerURL, "server", "", "websocket url of the game server (online mode)")
	fs.StringVar(&cfg.PlayerID, "id", "", "player id announced to the server (default random)")
	fs.StringVar(&cfg.Codec, "codec", CodecJSON, "wire codec for the server link: json or msgpack")
	fs.StringVar(&cfg.ViewerAddr, "addr", ViewerAddr, "viewer listen address, e.g. :8090")
	fs.StringVar(&cfg.StaticDir, "static", StaticDir, "directory with viewer static files")
	fs.Float64Var(&cfg.WorldWidth, "width", DefaultWorldWidth, "world width in px")
	fs.Float64Var(&cfg.WorldHeight, "height", DefaultWorldHeight, "world height in px")
	fs.Float64Var(&cfg.ViewportWidth, "view-width", DefaultViewportWidth, "viewport width in px")
	fs.Float64Var(&cfg.ViewportHeight, "view-height", DefaultViewportHeight, "viewport height in px")
	fs.IntVar(&cfg.AICount, "ai", AICount, "number of AI opponents (solo mode)")
	fs.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 = time based)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "rotate logs into this file as well as stderr")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if env := os.Getenv("SNAKEIO_SERVER_URL"); env != "" {
		cfg.ServerURL = env
	}
	if env := os.Getenv("SNAKEIO_STATIC_DIR"); env != "" {
		cfg.StaticDir = env
	}

	cfg.Mode = Mode(mode)
	cfg.Boundary = Boundary(boundary)
	if cfg.Boundary == "" {
		cfg.Boundary = cfg.Mode.DefaultBoundary()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

// DefaultBoundary returns the boundary policy each mode ships with.
func (m Mode) DefaultBoundary() Boundary {
	if m == ModeOnline {
		return BoundaryWrap
	}
	return BoundaryWall
}

// Validate reports every problem with the config at once.
func (c Config) Validate() error {
	var err error
	switch c.Mode {
	case ModeSolo, ModeOnline:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode))
	}
	switch c.Boundary {
	case BoundaryWrap, BoundaryWall:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidBoundary, c.Boundary))
	}
	if _, cerr := CodecByName(c.Codec); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	if c.Mode == ModeOnline && c.ServerURL == "" {
		err = multierr.Append(err, ErrMissingServer)
	}
	if c.WorldWidth <= 2*WallMargin || c.WorldHeight <= 2*WallMargin {
		err = multierr.Append(err, fmt.Errorf("world %vx%v is too small", c.WorldWidth, c.WorldHeight))
	}
	if c.AICount < 0 {
		err = multierr.Append(err, fmt.Errorf("negative ai count %d", c.AICount))
	}
	return err
}
