package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Simulation.TPS != 30 {
		t.Errorf("expected default tps 30, got %d", cfg.Simulation.TPS)
	}
	if cfg.Physics.Gravity != 12.0 {
		t.Errorf("expected default gravity 12.0, got %g", cfg.Physics.Gravity)
	}
	if cfg.Player.WalkSpeed != 3.0 {
		t.Errorf("expected default walk speed 3.0, got %g", cfg.Player.WalkSpeed)
	}
	if len(cfg.Player.Spawn) != 3 {
		t.Errorf("expected 3-component spawn, got %v", cfg.Player.Spawn)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":9090"
physics:
  gravity: 9.81
clues:
  - id: clue-0
    level: 0
    title: "The Gate"
    hint: "Under the arch"
    position: [0, 1, -4]
    proximity: 1.0
obstacles:
  - id: boulder
    center: [2, 0.85, -1]
    radius: 0.85
    movable: true
boundary:
  - [10, 0]
  - [0, -10]
  - [-10, 0]
  - [0, 10]
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("file value not applied: addr %s", cfg.Server.Addr)
	}
	if cfg.Physics.Gravity != 9.81 {
		t.Errorf("file value not applied: gravity %g", cfg.Physics.Gravity)
	}
	// Незаданные значения остаются по умолчанию
	if cfg.Player.JumpForce != 5.0 {
		t.Errorf("default not preserved: jumpForce %g", cfg.Player.JumpForce)
	}
	if len(cfg.Clues) != 1 || cfg.Clues[0].ID != "clue-0" {
		t.Errorf("clues not loaded: %+v", cfg.Clues)
	}
	if len(cfg.Obstacles) != 1 || !cfg.Obstacles[0].Movable {
		t.Errorf("obstacles not loaded: %+v", cfg.Obstacles)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load with defaults failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero tps",
			mutate:  func(c *Config) { c.Simulation.TPS = 0 },
			wantErr: "simulation.tps",
		},
		{
			name:    "negative gravity",
			mutate:  func(c *Config) { c.Physics.Gravity = -1 },
			wantErr: "physics.gravity",
		},
		{
			name:    "air resistance above 1",
			mutate:  func(c *Config) { c.Physics.AirResistance = 1.5 },
			wantErr: "airResistance",
		},
		{
			name:    "bad spawn",
			mutate:  func(c *Config) { c.Player.Spawn = []float64{1, 2} },
			wantErr: "player.spawn",
		},
		{
			name:    "fov out of range",
			mutate:  func(c *Config) { c.Camera.FOVDegrees = 200 },
			wantErr: "fovDegrees",
		},
		{
			name: "obstacle without radius",
			mutate: func(c *Config) {
				c.Obstacles = []ObstacleConfig{{ID: "b", Center: []float64{0, 0, 0}}}
			},
			wantErr: "radius",
		},
		{
			name: "clue without proximity",
			mutate: func(c *Config) {
				c.Clues = []ClueConfig{{ID: "c", Position: []float64{0, 0, 0}}}
			},
			wantErr: "proximity",
		},
		{
			name: "two-vertex boundary",
			mutate: func(c *Config) {
				c.Boundary = [][]float64{{1, 0}, {0, 1}}
			},
			wantErr: "boundary",
		},
		{
			name: "decoration without id",
			mutate: func(c *Config) {
				c.Decorations = []DecorationConfig{{Position: []float64{0, 0, 0}, Radius: 1}}
			},
			wantErr: "decorations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
