package main

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SNAKEIO_SERVER_URL", "")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeSolo || cfg.Boundary != BoundaryWall {
		t.Fatalf("expected solo/wall, got %s/%s", cfg.Mode, cfg.Boundary)
	}
	if cfg.Seed == 0 {
		t.Fatalf("expected a time based seed")
	}
	if cfg.AICount != AICount || cfg.Codec != CodecJSON {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigOnlineUsesEnvServer(t *testing.T) {
	t.Setenv("SNAKEIO_SERVER_URL", "ws://localhost:3000/ws")
	cfg, err := LoadConfig([]string{"-mode", "online", "-codec", "msgpack"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Boundary != BoundaryWrap {
		t.Fatalf("expected online mode to default to wrap, got %s", cfg.Boundary)
	}
	if cfg.ServerURL != "ws://localhost:3000/ws" {
		t.Fatalf("expected env server url, got %q", cfg.ServerURL)
	}
}

func TestLoadConfigBoundaryOverride(t *testing.T) {
	cfg, err := LoadConfig([]string{"-boundary", "wrap"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeSolo || cfg.Boundary != BoundaryWrap {
		t.Fatalf("expected solo/wrap, got %s/%s", cfg.Mode, cfg.Boundary)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Setenv("SNAKEIO_SERVER_URL", "")
	_, err := LoadConfig([]string{"-mode", "online", "-codec", "xml", "-boundary", "torus", "-ai", "-1"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), err)
	}
	for _, target := range []error{ErrInvalidCodec, ErrInvalidBoundary, ErrMissingServer} {
		if !errors.Is(err, target) {
			t.Fatalf("expected %v in %v", target, err)
		}
	}
}

func TestLoadConfigRejectsUnknownFlag(t *testing.T) {
	if _, err := LoadConfig([]string{"-nope"}); err == nil {
		t.Fatalf("expected unknown flag to fail")
	}
}
