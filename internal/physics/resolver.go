package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Resolution — результат разрешения коллизий на один тик.
type Resolution struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Grounded bool
}

// Resolver принимает кандидатную позицию от интегратора и исправляет
// её по статической геометрии мира. Детерминирован: одинаковые входы
// всегда дают одинаковый результат, внутренних счётчиков нет.
//
// Фиксированный порядок стадий за тик:
//  1. граница-полигон (жёсткая стена: откат горизонтали к позиции до тика);
//  2. сферические препятствия (выталкивание с отскоком);
//  3. плоскость земли (кламп + флаг Grounded);
//  4. аварийное выталкивание застрявшего игрока.
//
// Препятствия проверяются до земли, чтобы отскок в воздухе не
// перетирался логикой приземления. Отказ по границе глушит стадии
// препятствий только по горизонтали — вертикаль и земля обрабатываются
// в любом случае.
type Resolver struct {
	cfg         Tunables
	groundLevel float64
	spheres     []*SphereCollider
	boundary    *PolygonCollider
}

// NewResolver раскладывает список коллайдеров по стадиям. Плоскость,
// если она задана, перекрывает уровень земли из Tunables; полигонов
// границы поддерживается не больше одного — это конфигурационная
// опция, а не отдельный код-путь.
func NewResolver(cfg Tunables, colliders []Collider) *Resolver {
	r := &Resolver{
		cfg:         cfg,
		groundLevel: cfg.GroundLevel,
	}
	for _, c := range colliders {
		switch c.Kind {
		case ColliderPlane:
			if c.Plane != nil {
				r.groundLevel = c.Plane.Point.Y()
			}
		case ColliderSphere:
			if c.Sphere != nil {
				r.spheres = append(r.spheres, c.Sphere)
			}
		case ColliderPolygon:
			if c.Polygon != nil && len(c.Polygon.Vertices) >= 3 {
				r.boundary = c.Polygon
			}
		}
	}
	return r
}

// GroundLevel возвращает действующий уровень пола.
func (r *Resolver) GroundLevel() float64 {
	return r.groundLevel
}

// MoveObstacle проталкивает новый центр сферического препятствия.
// Вызывать строго между тиками (через очередь отложенных записей
// игрового цикла), не посреди разрешения.
func (r *Resolver) MoveObstacle(id string, center mgl64.Vec3) bool {
	for _, s := range r.spheres {
		if s.ID == id {
			s.Center = center
			return true
		}
	}
	return false
}

// Resolve исправляет кандидатную позицию и скорость.
// prev — позиция до тика, candidate — выход интегратора.
func (r *Resolver) Resolve(prev, candidate, velocity mgl64.Vec3) Resolution {
	pos := candidate
	vel := velocity

	// Стадия 1: граница прогулочной зоны. Снаружи — полный откат
	// горизонтального смещения, не скольжение вдоль ребра.
	rejected := false
	if r.boundary != nil {
		probe := mgl64.Vec2{pos.X(), pos.Z()}
		if !PointInPolygon(probe, r.boundary.Vertices) {
			pos[0] = prev.X()
			pos[2] = prev.Z()
			vel[0] = 0
			vel[2] = 0
			rejected = true
		}
	}

	// Стадия 2: сферические препятствия. Пропускается на тике отката
	// по границе — она уже решила судьбу горизонтальных осей.
	if !rejected {
		for _, obs := range r.spheres {
			pos, vel = r.resolveSphere(obs, pos, vel)
		}
	}

	// Стадия 3: плоскость земли.
	grounded := false
	floor := r.groundLevel + r.cfg.PlayerRadius
	if pos.Y() <= floor {
		pos[1] = floor
		vel[1] = 0
		grounded = true
	}

	// Стадия 4: аварийное выталкивание. Патологическое состояние
	// (телепорт, гонка при перемещении препятствия), не часть
	// нормального разрешения.
	for _, obs := range r.spheres {
		offset := pos.Sub(obs.Center)
		if offset.Len() >= r.cfg.UnstickThreshold {
			continue
		}
		dir := offset
		if dir.Len() < 1e-9 {
			dir = mgl64.Vec3{1, 0, 0}
		} else {
			dir = dir.Normalize()
		}
		pos = obs.Center.Add(dir.Mul(obs.EscapeDistance))
		vel[0] = 0
		vel[2] = 0
	}

	return Resolution{Position: pos, Velocity: vel, Grounded: grounded}
}

// resolveSphere выталкивает игрока из одного препятствия с отскоком.
func (r *Resolver) resolveSphere(obs *SphereCollider, pos, vel mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	minDistance := obs.Radius + r.cfg.PlayerRadius + r.cfg.Margin
	offset := pos.Sub(obs.Center)
	distance := offset.Len()
	if distance >= minDistance {
		return pos, vel
	}

	// Направление центр -> игрок по горизонтали; вертикаль сохраняется
	dir := mgl64.Vec3{offset.X(), 0, offset.Z()}
	if dir.Len() < 1e-9 {
		dir = mgl64.Vec3{1, 0, 0}
	} else {
		dir = dir.Normalize()
	}

	separation := minDistance + r.cfg.Epsilon
	pos[0] = obs.Center.X() + dir.X()*separation
	pos[2] = obs.Center.Z() + dir.Z()*separation

	// Отскок, не остановка: видимый "bounce" от препятствия
	push := obs.PushStrength * r.cfg.BounceMultiplier
	vel[0] = dir.X() * push
	vel[2] = dir.Z() * push
	return pos, vel
}

// DistanceToNearestObstacle — вспомогательная проверка для телеметрии
// и тестов: дистанция до ближайшего центра препятствия.
func (r *Resolver) DistanceToNearestObstacle(pos mgl64.Vec3) float64 {
	nearest := math.Inf(1)
	for _, obs := range r.spheres {
		if d := pos.Sub(obs.Center).Len(); d < nearest {
			nearest = d
		}
	}
	return nearest
}
