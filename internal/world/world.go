// Package world строит неизменяемую модель сцены из конфигурации:
// объекты с закрытыми вариантами ролей, коллайдеры для резолвера и
// прокси-цели для прицеливания.
package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"relic-hunt/internal/config"
	"relic-hunt/internal/physics"
)

// World — модель сцены на одну сессию. Объекты конфигурируются один
// раз при построении; единственная разрешённая мутация — перемещение
// manipulable-препятствия через MoveObject, и её владелец обязан
// применять между тиками.
type World struct {
	mu      sync.RWMutex
	objects map[string]*Object
	order   []string // стабильный порядок обхода для детерминизма

	spawn       mgl64.Vec3
	groundLevel float64
}

// TunablesFromConfig собирает константы физики из конфигурации.
func TunablesFromConfig(cfg *config.Config) physics.Tunables {
	t := physics.DefaultTunables()
	t.Gravity = cfg.Physics.Gravity
	t.GroundLevel = cfg.Physics.GroundLevel
	t.AirResistance = cfg.Physics.AirResistance
	t.Margin = cfg.Physics.Margin
	t.Epsilon = cfg.Physics.Epsilon
	t.BounceMultiplier = cfg.Physics.BounceMultiplier
	t.UnstickThreshold = cfg.Physics.UnstickThreshold
	t.PlayerRadius = cfg.Player.Radius
	t.PlayerHeight = cfg.Player.Height
	t.CrouchHeight = cfg.Player.CrouchHeight
	t.WalkSpeed = cfg.Player.WalkSpeed
	t.CrouchSpeed = cfg.Player.CrouchSpeed
	t.JumpForce = cfg.Player.JumpForce
	t.FlySpeed = cfg.Player.FlySpeed
	t.MaxFlyHeight = cfg.Player.MaxFlyHeight
	return t
}

// Build собирает мир из конфигурации. Любая патология геометрии —
// ошибка построения, сессия не стартует.
func Build(cfg *config.Config) (*World, error) {
	w := &World{
		objects:     make(map[string]*Object),
		spawn:       vec3(cfg.Player.Spawn),
		groundLevel: cfg.Physics.GroundLevel,
	}

	for _, o := range cfg.Obstacles {
		if err := w.add(&Object{
			ID:       o.ID,
			Kind:     KindObstacle,
			Position: vec3(o.Center),
			Obstacle: &ObstacleData{
				Radius:         o.Radius,
				PushStrength:   o.PushStrength,
				EscapeDistance: o.EscapeDistance,
				Movable:        o.Movable,
			},
		}); err != nil {
			return nil, err
		}
	}

	if len(cfg.Boundary) > 0 {
		vertices := make([]mgl64.Vec2, len(cfg.Boundary))
		for i, v := range cfg.Boundary {
			vertices[i] = mgl64.Vec2{v[0], v[1]}
		}
		if err := validateBoundary(vertices); err != nil {
			return nil, err
		}
		if err := w.add(&Object{
			ID:       "boundary",
			Kind:     KindBoundary,
			Boundary: &BoundaryData{Vertices: vertices},
		}); err != nil {
			return nil, err
		}
	}

	if err := validateClueLevels(cfg.Clues); err != nil {
		return nil, err
	}
	for _, c := range cfg.Clues {
		radius := c.Radius
		if radius <= 0 {
			radius = 0.5
		}
		if err := w.add(&Object{
			ID:       c.ID,
			Kind:     KindClue,
			Position: vec3(c.Position),
			Clue: &ClueData{
				Level:     c.Level,
				Title:     c.Title,
				Hint:      c.Hint,
				Radius:    radius,
				Proximity: c.Proximity,
			},
		}); err != nil {
			return nil, err
		}
	}

	for _, d := range cfg.Decorations {
		if err := w.add(&Object{
			ID:         d.ID,
			Kind:       KindDecoration,
			Position:   vec3(d.Position),
			Decoration: &DecorationData{Radius: d.Radius},
		}); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *World) add(obj *Object) error {
	if _, exists := w.objects[obj.ID]; exists {
		return fmt.Errorf("duplicate object id %q", obj.ID)
	}
	w.objects[obj.ID] = obj
	w.order = append(w.order, obj.ID)
	return nil
}

// validateClueLevels требует непрерывную последовательность уровней
// 0..N-1 без дублей — иначе прогрессия зашла бы в тупик.
func validateClueLevels(clues []config.ClueConfig) error {
	levels := make([]int, 0, len(clues))
	for _, c := range clues {
		levels = append(levels, c.Level)
	}
	sort.Ints(levels)
	for i, lvl := range levels {
		if lvl != i {
			return fmt.Errorf("clue levels must form 0..%d without gaps, got level %d at position %d",
				len(levels)-1, lvl, i)
		}
	}
	return nil
}

// validateBoundary требует простой (несамопересекающийся) замкнутый
// контур минимум из трёх вершин.
func validateBoundary(vertices []mgl64.Vec2) error {
	n := len(vertices)
	if n < 3 {
		return fmt.Errorf("boundary polygon needs at least 3 vertices, got %d", n)
	}
	for i := 0; i < n; i++ {
		a1 := vertices[i]
		a2 := vertices[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Соседние рёбра делят вершину и пересекаться не могут
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := vertices[j]
			b2 := vertices[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return fmt.Errorf("boundary polygon is self-intersecting: edge %d crosses edge %d", i, j)
			}
		}
	}
	return nil
}

func segmentsIntersect(p1, p2, p3, p4 mgl64.Vec2) bool {
	d1 := cross2(p4.Sub(p3), p1.Sub(p3))
	d2 := cross2(p4.Sub(p3), p2.Sub(p3))
	d3 := cross2(p2.Sub(p1), p3.Sub(p1))
	d4 := cross2(p2.Sub(p1), p4.Sub(p1))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

func vec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Spawn возвращает точку появления игрока.
func (w *World) Spawn() mgl64.Vec3 {
	return w.spawn
}

// GroundLevel возвращает уровень пола.
func (w *World) GroundLevel() float64 {
	return w.groundLevel
}

// Object возвращает объект по идентификатору.
func (w *World) Object(id string) (*Object, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	obj, ok := w.objects[id]
	return obj, ok
}

// Objects возвращает объекты в стабильном порядке добавления.
func (w *World) Objects() []*Object {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Object, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.objects[id])
	}
	return out
}

// MoveObject переставляет manipulable-объект. Возвращает ошибку для
// неизвестных и неподвижных объектов. Вызывающий обязан протолкнуть
// новый центр в резолвер между тиками.
func (w *World) MoveObject(id string, pos mgl64.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	obj, ok := w.objects[id]
	if !ok {
		return fmt.Errorf("unknown object %q", id)
	}
	if obj.Kind != KindObstacle || obj.Obstacle == nil || !obj.Obstacle.Movable {
		return fmt.Errorf("object %q is not movable", id)
	}
	obj.Position = pos
	return nil
}

// Colliders собирает статические коллайдеры для резолвера: плоскость
// пола, сферы препятствий и (опционально) граничный полигон.
func (w *World) Colliders() []physics.Collider {
	w.mu.RLock()
	defer w.mu.RUnlock()

	colliders := []physics.Collider{physics.NewPlaneCollider(w.groundLevel)}
	for _, id := range w.order {
		obj := w.objects[id]
		switch obj.Kind {
		case KindObstacle:
			colliders = append(colliders, physics.NewSphereCollider(
				obj.ID, obj.Position,
				obj.Obstacle.Radius, obj.Obstacle.PushStrength, obj.Obstacle.EscapeDistance,
			))
		case KindBoundary:
			colliders = append(colliders, physics.NewPolygonCollider(obj.Boundary.Vertices))
		}
	}
	return colliders
}

// Targets собирает сферические прокси для прицеливания. Улики
// интерактивны, препятствия и декорации — видимая не-земля.
func (w *World) Targets() []physics.Target {
	w.mu.RLock()
	defer w.mu.RUnlock()

	targets := make([]physics.Target, 0, len(w.order))
	for _, id := range w.order {
		obj := w.objects[id]
		switch obj.Kind {
		case KindClue:
			targets = append(targets, physics.Target{
				ID:          obj.ID,
				Center:      obj.Position,
				Radius:      obj.Clue.Radius,
				Kind:        physics.TargetInteractive,
				Interactive: true,
				Visible:     true,
			})
		case KindObstacle:
			targets = append(targets, physics.Target{
				ID:      obj.ID,
				Center:  obj.Position,
				Radius:  obj.Obstacle.Radius,
				Kind:    physics.TargetMesh,
				Visible: true,
			})
		case KindDecoration:
			targets = append(targets, physics.Target{
				ID:      obj.ID,
				Center:  obj.Position,
				Radius:  obj.Decoration.Radius,
				Kind:    physics.TargetSurface,
				Visible: true,
			})
		}
	}
	return targets
}
