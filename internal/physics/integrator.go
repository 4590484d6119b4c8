package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Integrator превращает снимок ввода и прошедшее время в кандидатную
// позицию капсулы. Кандидат дальше уходит в Resolver; сам интегратор
// коллизий не знает.
type Integrator struct {
	cfg Tunables
}

// NewIntegrator создаёт интегратор с заданными константами движения.
func NewIntegrator(cfg Tunables) *Integrator {
	return &Integrator{cfg: cfg}
}

// Step выполняет один шаг интегрирования и возвращает кандидатную
// позицию. Скорость и флаг приседания игрока мутируются на месте,
// позиция — нет: её подтверждает Resolver.
//
// Горизонталь — прямое присваивание скорости от ввода (без инерции),
// вертикаль — гравитация каждый тик плюс импульсы прыжка/полёта.
// dt ограничен сверху MaxStep, чтобы большой кадровый лаг не давал
// сквозного пролёта через геометрию.
func (it *Integrator) Step(p *PlayerState, in Input, dt float64) mgl64.Vec3 {
	if dt <= 0 {
		return p.Position
	}
	if dt > it.cfg.MaxStep {
		dt = it.cfg.MaxStep
	}

	p.Crouching = in.Crouch

	// Горизонтальное намерение: скорость назначается, а не набирается
	if in.HasMoveIntent() {
		speed := it.cfg.WalkSpeed
		if p.Crouching {
			speed = it.cfg.CrouchSpeed
		}
		sin, cos := math.Sincos(in.Yaw)
		forward := mgl64.Vec3{-sin, 0, -cos}
		right := mgl64.Vec3{cos, 0, -sin}
		horizontal := forward.Mul(in.Forward).Add(right.Mul(in.Right)).Mul(speed)
		p.Velocity[0] = horizontal.X()
		p.Velocity[2] = horizontal.Z()
	} else {
		// Жёсткая остановка без кривой замедления
		p.Velocity[0] = 0
		p.Velocity[2] = 0
	}

	// Вертикаль: гравитация каждый тик
	p.Acceleration[1] = -it.cfg.Gravity

	if in.Jump && p.Grounded {
		// Импульс, не добавка
		p.Velocity[1] = it.cfg.JumpForce
	}
	if in.Fly && !p.Grounded && p.Position.Y() < it.cfg.MaxFlyHeight {
		if p.Velocity[1] < it.cfg.FlySpeed {
			p.Velocity[1] = it.cfg.FlySpeed
		}
	}
	if in.Descend && !p.Grounded {
		p.Velocity[1] = -it.cfg.FlySpeed
	}

	// Интегрирование
	p.Velocity = p.Velocity.Add(p.Acceleration.Mul(dt))

	// Затухание применяется каждый тик, даже если скорость только что
	// была перезаписана вводом — так делал исходный контроллер, эффект
	// заметен только на кадре после отпускания ввода
	p.Velocity[0] *= it.cfg.AirResistance
	p.Velocity[2] *= it.cfg.AirResistance

	candidate := p.Position.Add(p.Velocity.Mul(dt))

	// Потолок полёта
	ceiling := it.cfg.MaxFlyHeight + it.cfg.PlayerHeight/2
	if candidate[1] > ceiling {
		candidate[1] = ceiling
		if p.Velocity[1] > 0 {
			p.Velocity[1] = 0
		}
	}

	return candidate
}
