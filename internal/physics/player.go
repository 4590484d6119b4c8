package physics

import "github.com/go-gl/mathgl/mgl64"

// PlayerState — состояние капсулы игрока. Единственный писатель —
// тик симуляции (интегратор + резолвер коллизий); все остальные
// потребители (камера, HUD) читают снимок уже завершённого тика.
// Инвариант после прохода по земле: Position.Y >= groundLevel + playerRadius.
type PlayerState struct {
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3
	Grounded     bool
	Crouching    bool
}

// NewPlayerState создаёт состояние в точке спавна из конфигурации мира.
func NewPlayerState(spawn mgl64.Vec3) *PlayerState {
	return &PlayerState{Position: spawn}
}

// Snapshot возвращает копию состояния для читателей вне тика.
func (p *PlayerState) Snapshot() PlayerState {
	return *p
}
