package world

import "github.com/go-gl/mathgl/mgl64"

// ObjectKind — закрытый набор ролей объектов сцены. Роль назначается
// один раз при построении мира; никакого сравнения строковых имён в
// рантайме.
type ObjectKind int

const (
	KindClue ObjectKind = iota
	KindObstacle
	KindBoundary
	KindDecoration
)

func (k ObjectKind) String() string {
	switch k {
	case KindClue:
		return "clue"
	case KindObstacle:
		return "obstacle"
	case KindBoundary:
		return "boundary"
	case KindDecoration:
		return "decoration"
	}
	return "unknown"
}

// Object — объект сцены. Заполнено ровно одно из полей данных,
// соответствующее Kind.
type Object struct {
	ID       string
	Kind     ObjectKind
	Position mgl64.Vec3

	Clue       *ClueData
	Obstacle   *ObstacleData
	Boundary   *BoundaryData
	Decoration *DecorationData
}

// ClueData — улика сценария: порядковый уровень, текст подсказки и
// индивидуальный порог дистанции клика.
type ClueData struct {
	Level     int
	Title     string
	Hint      string
	Radius    float64
	Proximity float64
}

// ObstacleData — сферическое препятствие. Movable разрешает внешнее
// перемещение (режим манипуляции).
type ObstacleData struct {
	Radius         float64
	PushStrength   float64
	EscapeDistance float64
	Movable        bool
}

// BoundaryData — граница прогулочной зоны, контур (x, z).
type BoundaryData struct {
	Vertices []mgl64.Vec2
}

// DecorationData — нейтральная геометрия сцены, участвует только в
// прицеливании.
type DecorationData struct {
	Radius float64
}
