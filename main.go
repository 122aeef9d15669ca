package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := NewLogger(cfg.LogFile, cfg.Debug)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Errorw("exited with error", "err", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

// run wires the world, the optional server link, the viewer server and the
// loop, then blocks until SIGINT/SIGTERM or the server link drops.
func run(cfg Config, log *zap.SugaredLogger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PlayerID == "" {
		cfg.PlayerID = uuid.NewString()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	world := NewWorld(WorldOptions{
		Width:          cfg.WorldWidth,
		Height:         cfg.WorldHeight,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		Boundary:       cfg.Boundary,
		RemoteFood:     cfg.Mode == ModeOnline,
	}, cfg.PlayerID, rng, log)

	var peer Peer
	switch cfg.Mode {
	case ModeSolo:
		world.SpawnLocal(PlayerColors[rng.Intn(len(PlayerColors))])
		world.SpawnBots(cfg.AICount)
		world.SeedFood(SoloInitialFood)
	case ModeOnline:
		codec, cerr := CodecByName(cfg.Codec)
		if cerr != nil {
			return cerr
		}
		// The local snake appears once the server sends currentPlayers.
		bridge, derr := Dial(ctx, BridgeConfig{URL: cfg.ServerURL, PlayerID: cfg.PlayerID, Codec: codec}, log)
		if derr != nil {
			return derr
		}
		peer = bridge
	}

	keys := &KeyState{}
	metrics := &Metrics{}

	var loop *Loop
	hub := NewViewerHub(keys, func() { loop.RequestRestart() }, WelcomeMsg{
		PlayerID:       cfg.PlayerID,
		Mode:           cfg.Mode,
		WorldWidth:     cfg.WorldWidth,
		WorldHeight:    cfg.WorldHeight,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
	}, metrics, log)
	loop = NewLoop(world, keys, peer, hub, metrics, log)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{Addr: cfg.ViewerAddr, Handler: NewRouter(hub, metrics, cfg.StaticDir, log)}
	go func() {
		log.Infof("viewer listening on %s; open http://localhost%v/", cfg.ViewerAddr, cfg.ViewerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("viewer server", "err", err)
			stop()
		}
	}()

	log.Infow("starting", "mode", cfg.Mode, "boundary", cfg.Boundary, "id", cfg.PlayerID, "seed", cfg.Seed)
	err = loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	log.Info("shut down")
	return err
}
