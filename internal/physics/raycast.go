package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// TargetKind — классификация попадания. Используется только для
// презентации (цвет прицела), не для игровой логики.
type TargetKind string

const (
	TargetInteractive TargetKind = "interactive"
	TargetGround      TargetKind = "ground"
	TargetSurface     TargetKind = "surface"
	TargetMesh        TargetKind = "mesh"
	TargetVoid        TargetKind = "void"
)

// Target — сферический прокси объекта сцены для прицеливания.
// Настоящая геометрия (облако точек) живёт на клиенте; серверу для
// выбора цели хватает центра и радиуса.
type Target struct {
	ID          string
	Center      mgl64.Vec3
	Radius      float64
	Kind        TargetKind
	Interactive bool
	Visible     bool
}

// Hit — результат прицеливания. Пересчитывается каждый тик и нигде не
// сохраняется. HasHit означает попадание в реальный объект сцены;
// синтетическое попадание в землю приходит с HasHit=false, но Point,
// Kind и Distance заполнены всегда — потребитель обязан получить
// пригодную мировую точку.
type Hit struct {
	HasHit   bool
	Point    mgl64.Vec3
	ObjectID string
	Kind     TargetKind
	Distance float64
}

// Camera — параметры камеры для построения луча из экранных координат.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
	FOV      float64 // вертикальный угол обзора, радианы
	Aspect   float64
}

// Forward возвращает направление взгляда камеры.
func (c Camera) Forward() mgl64.Vec3 {
	sinYaw, cosYaw := math.Sincos(c.Yaw)
	sinPitch, cosPitch := math.Sincos(c.Pitch)
	return mgl64.Vec3{-sinYaw * cosPitch, sinPitch, -cosYaw * cosPitch}
}

// ScreenRay строит мировой луч из нормализованной позиции указателя
// ([-1, 1] по каждой оси, y вверх).
func (c Camera) ScreenRay(nx, ny float64) (origin, dir mgl64.Vec3) {
	forward := c.Forward()
	sinYaw, cosYaw := math.Sincos(c.Yaw)
	right := mgl64.Vec3{cosYaw, 0, -sinYaw}
	up := right.Cross(forward)

	tanHalf := math.Tan(c.FOV / 2)
	dir = forward.
		Add(right.Mul(nx * tanHalf * c.Aspect)).
		Add(up.Mul(ny * tanHalf)).
		Normalize()
	return c.Position, dir
}

// Raycaster выбирает ближайшую подходящую цель по лучу из камеры.
type Raycaster struct {
	groundLevel float64
	targets     []Target
}

// NewRaycaster создаёт рейкастер над набором прокси-целей сцены.
func NewRaycaster(groundLevel float64, targets []Target) *Raycaster {
	return &Raycaster{groundLevel: groundLevel, targets: targets}
}

// SetTargets заменяет набор целей (например, после перемещения
// манипулируемого объекта). Вызывать между тиками.
func (rc *Raycaster) SetTargets(targets []Target) {
	rc.targets = targets
}

type rayCandidate struct {
	target   Target
	distance float64
}

// Cast пускает луч из camera через указатель (nx, ny) и возвращает
// ближайшее подходящее попадание.
//
// Выбор: все пересечения сортируются по дистанции, затем предпочтение
// (a) первой интерактивной цели, (b) первой видимой не-земле,
// (c) просто ближайшей. Если луч не задел ничего — аналитическое
// пересечение с плоскостью земли, чтобы потребитель всегда получил
// мировую точку.
func (rc *Raycaster) Cast(camera Camera, nx, ny float64) Hit {
	origin, dir := camera.ScreenRay(nx, ny)

	var candidates []rayCandidate
	for _, t := range rc.targets {
		if d, ok := intersectSphere(origin, dir, t.Center, t.Radius); ok {
			candidates = append(candidates, rayCandidate{target: t, distance: d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	// (a) первая интерактивная цель
	for _, c := range candidates {
		if c.target.Interactive {
			return hitFromCandidate(origin, dir, c)
		}
	}
	// (b) первая видимая не-земля
	for _, c := range candidates {
		if c.target.Visible && c.target.Kind != TargetGround {
			return hitFromCandidate(origin, dir, c)
		}
	}
	// (c) просто ближайшая
	if len(candidates) > 0 {
		return hitFromCandidate(origin, dir, candidates[0])
	}

	return rc.groundFallback(origin, dir)
}

func hitFromCandidate(origin, dir mgl64.Vec3, c rayCandidate) Hit {
	return Hit{
		HasHit:   true,
		Point:    origin.Add(dir.Mul(c.distance)),
		ObjectID: c.target.ID,
		Kind:     c.target.Kind,
		Distance: c.distance,
	}
}

// groundFallback — синтетическое попадание в плоскость земли.
// Y точки принудительно ставится ровно в groundLevel, чтобы убрать
// накопленную плавающую ошибку.
func (rc *Raycaster) groundFallback(origin, dir mgl64.Vec3) Hit {
	const farDistance = 1000.0

	t := farDistance
	if math.Abs(dir.Y()) > 1e-9 {
		if tt := (rc.groundLevel - origin.Y()) / dir.Y(); tt > 0 {
			t = tt
		}
	}
	point := origin.Add(dir.Mul(t))
	point[1] = rc.groundLevel
	return Hit{
		HasHit:   false,
		Point:    point,
		Kind:     TargetGround,
		Distance: t,
	}
}

// intersectSphere возвращает дистанцию до ближней точки входа луча в
// сферу. Попадания позади начала луча отбрасываются.
func intersectSphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t := -b - sqrtDisc
	if t < 0 {
		// Начало луча внутри сферы — берём точку выхода
		t = -b + sqrtDisc
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
