package physics

import "math"

// InputDeadzone — минимальная величина аналогового ввода, ниже которой
// движение не регистрируется. Цифровая клавиатура deadzone не проходит:
// она всегда даёт 0 или 1.
const InputDeadzone = 0.1

// Input — снимок состояния управления на один тик симуляции.
// Снимок собирается на клиенте (клавиатура, виртуальный джойстик,
// mouse-look) и приходит по WebSocket уже готовым; сервер его только
// читает. Снимок эфемерный и нигде не сохраняется.
type Input struct {
	// Горизонтальное намерение, каждая ось в [-1, 1]
	Forward float64
	Right   float64

	// Ориентация камеры в радианах. Pitch ограничен [-pi/2, pi/2]
	// производителем, но мы перестраховываемся в ClampPitch.
	Yaw   float64
	Pitch float64

	// Дискретные входы
	Jump    bool
	Fly     bool
	Descend bool
	Crouch  bool

	// Позиция указателя в NDC [-1, 1] для прицеливания
	PointerX float64
	PointerY float64
}

// HasMoveIntent сообщает, есть ли горизонтальное намерение движения.
// Порог 0.1 на каждую ось — см. контракт интегратора.
func (in Input) HasMoveIntent() bool {
	return math.Abs(in.Forward) > InputDeadzone || math.Abs(in.Right) > InputDeadzone
}

// ApplyDeadzone обнуляет аналоговый ввод, если суммарная величина
// (магнитуда джойстика) ниже мёртвой зоны.
func ApplyDeadzone(forward, right float64) (float64, float64) {
	if math.Hypot(forward, right) < InputDeadzone {
		return 0, 0
	}
	return forward, right
}

// ClampPitch ограничивает наклон камеры вертикалью.
func ClampPitch(pitch float64) float64 {
	const limit = math.Pi / 2
	if pitch > limit {
		return limit
	}
	if pitch < -limit {
		return -limit
	}
	return pitch
}

// Clamp приводит снимок к допустимым диапазонам. Вызывается на границе
// транспорта, чтобы в симуляцию не попадали значения вне контракта.
func (in Input) Clamp() Input {
	in.Forward = clampAxis(in.Forward)
	in.Right = clampAxis(in.Right)
	in.Pitch = ClampPitch(in.Pitch)
	in.PointerX = clampAxis(in.PointerX)
	in.PointerY = clampAxis(in.PointerY)
	return in
}

func clampAxis(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
