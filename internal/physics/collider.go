package physics

import "github.com/go-gl/mathgl/mgl64"

// ColliderKind — тип статического коллайдера.
type ColliderKind int

const (
	ColliderPlane ColliderKind = iota
	ColliderSphere
	ColliderPolygon
)

// Collider — закрытый tagged-вариант статической геометрии мира.
// Коллайдеры собираются один раз при построении мира и для сессии
// неизменны; единственное исключение — центр сферы может быть
// передвинут снаружи (манипулируемый объект), и тогда владелец обязан
// явно протолкнуть новый центр в Resolver между тиками.
type Collider struct {
	Kind    ColliderKind
	Plane   *PlaneCollider
	Sphere  *SphereCollider
	Polygon *PolygonCollider
}

// PlaneCollider — горизонтальная плоскость пола. Point.Y задаёт
// уровень земли, Normal всегда смотрит вверх.
type PlaneCollider struct {
	Normal mgl64.Vec3
	Point  mgl64.Vec3
}

// SphereCollider — сферическое препятствие (колонна, камень, скан
// объекта). PushStrength задаёт силу отталкивания, EscapeDistance —
// дистанцию аварийного выталкивания для застрявшего игрока.
type SphereCollider struct {
	ID             string
	Center         mgl64.Vec3
	Radius         float64
	PushStrength   float64
	EscapeDistance float64
}

// PolygonCollider — граница прогулочной зоны: простой замкнутый
// контур в плоскости земли, вершины в координатах (x, z).
type PolygonCollider struct {
	Vertices []mgl64.Vec2
}

// NewPlaneCollider создаёт коллайдер пола на высоте y.
func NewPlaneCollider(y float64) Collider {
	return Collider{
		Kind: ColliderPlane,
		Plane: &PlaneCollider{
			Normal: mgl64.Vec3{0, 1, 0},
			Point:  mgl64.Vec3{0, y, 0},
		},
	}
}

// NewSphereCollider создаёт сферическое препятствие.
func NewSphereCollider(id string, center mgl64.Vec3, radius, push, escape float64) Collider {
	return Collider{
		Kind: ColliderSphere,
		Sphere: &SphereCollider{
			ID:             id,
			Center:         center,
			Radius:         radius,
			PushStrength:   push,
			EscapeDistance: escape,
		},
	}
}

// NewPolygonCollider создаёт граничный полигон из вершин (x, z).
func NewPolygonCollider(vertices []mgl64.Vec2) Collider {
	verts := make([]mgl64.Vec2, len(vertices))
	copy(verts, vertices)
	return Collider{
		Kind:    ColliderPolygon,
		Polygon: &PolygonCollider{Vertices: verts},
	}
}

// PointInPolygon проверяет принадлежность точки (x, z) простому
// замкнутому полигону методом чётности пересечений луча.
func PointInPolygon(p mgl64.Vec2, vertices []mgl64.Vec2) bool {
	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y() > p.Y()) != (vj.Y() > p.Y()) &&
			p.X() < (vj.X()-vi.X())*(p.Y()-vi.Y())/(vj.Y()-vi.Y())+vi.X() {
			inside = !inside
		}
		j = i
	}
	return inside
}
