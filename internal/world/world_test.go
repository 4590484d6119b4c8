package world

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"relic-hunt/internal/config"
	"relic-hunt/internal/physics"
)

// testConfig — минимальная валидная сцена: пол, одно препятствие,
// граница-ромб, две улики и декорация.
func testConfig() *config.Config {
	return &config.Config{
		Physics: config.PhysicsConfig{GroundLevel: 0},
		Player:  config.PlayerConfig{Spawn: []float64{0, 1, 6}},
		Obstacles: []config.ObstacleConfig{
			{ID: "boulder", Center: []float64{2, 0.85, -1}, Radius: 0.85, PushStrength: 2.0, EscapeDistance: 2.0, Movable: true},
		},
		Boundary: [][]float64{{10, 0}, {0, -10}, {-10, 0}, {0, 10}},
		Clues: []config.ClueConfig{
			{ID: "clue-1", Level: 1, Title: "The Well", Hint: "Look down", Position: []float64{-3, 1, 0}, Proximity: 3},
			{ID: "clue-0", Level: 0, Title: "The Gate", Hint: "Under the arch", Position: []float64{0, 1, -4}, Radius: 0.4, Proximity: 1},
		},
		Decorations: []config.DecorationConfig{
			{ID: "statue", Position: []float64{4, 1, 4}, Radius: 0.7},
		},
	}
}

func TestBuild(t *testing.T) {
	w, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 1 препятствие + граница + 2 улики + 1 декорация
	if got := len(w.Objects()); got != 5 {
		t.Fatalf("expected 5 objects, got %d", got)
	}
	if w.Spawn() != (mgl64.Vec3{0, 1, 6}) {
		t.Errorf("unexpected spawn: %v", w.Spawn())
	}

	obj, ok := w.Object("clue-0")
	if !ok || obj.Kind != KindClue {
		t.Fatalf("clue-0 missing or wrong kind")
	}
	if obj.Clue.Radius != 0.4 {
		t.Errorf("expected explicit clue radius 0.4, got %g", obj.Clue.Radius)
	}

	obj, ok = w.Object("clue-1")
	if !ok {
		t.Fatalf("clue-1 missing")
	}
	// Радиус не задан — применяется значение по умолчанию
	if obj.Clue.Radius != 0.5 {
		t.Errorf("expected default clue radius 0.5, got %g", obj.Clue.Radius)
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	cfg := testConfig()
	cfg.Decorations = append(cfg.Decorations, config.DecorationConfig{
		ID: "boulder", Position: []float64{0, 0, 0}, Radius: 1,
	})

	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestBuildRejectsClueLevelGap(t *testing.T) {
	cfg := testConfig()
	cfg.Clues[0].Level = 2 // уровни 0 и 2 — дыра в последовательности

	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "levels") {
		t.Fatalf("expected clue level error, got %v", err)
	}
}

func TestBuildRejectsDuplicateClueLevels(t *testing.T) {
	cfg := testConfig()
	cfg.Clues[0].Level = 0

	if _, err := Build(cfg); err == nil {
		t.Fatal("expected error for duplicate clue levels")
	}
}

func TestBuildRejectsTinyBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.Boundary = [][]float64{{1, 0}, {0, 1}}

	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "3 vertices") {
		t.Fatalf("expected boundary size error, got %v", err)
	}
}

func TestBuildRejectsSelfIntersectingBoundary(t *testing.T) {
	cfg := testConfig()
	// Контур-бабочка: рёбра 0-1 и 2-3 пересекаются
	cfg.Boundary = [][]float64{{-5, -5}, {5, 5}, {5, -5}, {-5, 5}}

	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "self-intersecting") {
		t.Fatalf("expected self-intersection error, got %v", err)
	}
}

func TestCollidersDerivation(t *testing.T) {
	w, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	colliders := w.Colliders()
	var planes, spheres, polygons int
	for _, c := range colliders {
		switch c.Kind {
		case physics.ColliderPlane:
			planes++
		case physics.ColliderSphere:
			spheres++
		case physics.ColliderPolygon:
			polygons++
		}
	}

	if planes != 1 || spheres != 1 || polygons != 1 {
		t.Errorf("expected 1 plane, 1 sphere, 1 polygon; got %d/%d/%d", planes, spheres, polygons)
	}
}

func TestTargetsDerivation(t *testing.T) {
	w, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	kinds := make(map[string]physics.TargetKind)
	interactive := make(map[string]bool)
	for _, tgt := range w.Targets() {
		kinds[tgt.ID] = tgt.Kind
		interactive[tgt.ID] = tgt.Interactive
	}

	// Граница в прицеливании не участвует
	if len(kinds) != 4 {
		t.Fatalf("expected 4 targets, got %d", len(kinds))
	}
	if kinds["clue-0"] != physics.TargetInteractive || !interactive["clue-0"] {
		t.Errorf("clue must be an interactive target")
	}
	if kinds["boulder"] != physics.TargetMesh || interactive["boulder"] {
		t.Errorf("obstacle must be a non-interactive mesh target")
	}
	if kinds["statue"] != physics.TargetSurface {
		t.Errorf("decoration must be a surface target")
	}
}

func TestMoveObject(t *testing.T) {
	w, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	newPos := mgl64.Vec3{-2, 0.85, 3}
	if err := w.MoveObject("boulder", newPos); err != nil {
		t.Fatalf("moving movable obstacle failed: %v", err)
	}
	obj, _ := w.Object("boulder")
	if obj.Position != newPos {
		t.Errorf("obstacle position not updated: %v", obj.Position)
	}

	if err := w.MoveObject("clue-0", newPos); err == nil {
		t.Error("expected error moving a clue")
	}
	if err := w.MoveObject("ghost", newPos); err == nil {
		t.Error("expected error moving unknown object")
	}
}

func TestMoveObjectImmovable(t *testing.T) {
	cfg := testConfig()
	cfg.Obstacles[0].Movable = false
	w, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := w.MoveObject("boulder", mgl64.Vec3{1, 1, 1}); err == nil {
		t.Error("expected error moving immovable obstacle")
	}
}

func TestObjectsStableOrder(t *testing.T) {
	w, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	first := w.Objects()
	second := w.Objects()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("object order is not stable: %s vs %s at %d", first[i].ID, second[i].ID, i)
		}
	}
}
