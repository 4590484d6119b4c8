package physics

// Tunables — константы движения и коллизий. Заполняются один раз из
// конфигурации мира при старте сессии и дальше не меняются.
type Tunables struct {
	// Гравитация, м/с^2, положительное число (прикладывается вниз)
	Gravity float64

	// Геометрия мира и игрока
	GroundLevel  float64
	PlayerRadius float64
	PlayerHeight float64
	CrouchHeight float64

	// Скорости
	WalkSpeed    float64
	CrouchSpeed  float64
	JumpForce    float64
	FlySpeed     float64
	MaxFlyHeight float64

	// Горизонтальный множитель "сопротивления воздуха" (< 1),
	// применяется каждый тик
	AirResistance float64

	// Коллизии со сферами
	Margin           float64 // зазор поверх суммы радиусов
	Epsilon          float64 // отступ после выталкивания
	BounceMultiplier float64 // усиление отскока поверх pushStrength
	UnstickThreshold float64 // дистанция, ниже которой игрок считается застрявшим

	// Максимальный шаг интегрирования, сек
	MaxStep float64
}

// DefaultTunables — значения по умолчанию для площадки сканированного
// памятника. Перекрываются конфигурацией.
func DefaultTunables() Tunables {
	return Tunables{
		Gravity:          12.0,
		GroundLevel:      0.0,
		PlayerRadius:     0.3,
		PlayerHeight:     1.7,
		CrouchHeight:     0.9,
		WalkSpeed:        3.0,
		CrouchSpeed:      1.2,
		JumpForce:        5.0,
		FlySpeed:         4.0,
		MaxFlyHeight:     25.0,
		AirResistance:    0.9,
		Margin:           0.1,
		Epsilon:          0.01,
		BounceMultiplier: 1.5,
		UnstickThreshold: 0.2,
		MaxStep:          1.0 / 30.0,
	}
}
