// Package config загружает и проверяет конфигурацию сессии: сетевые
// настройки, константы физики, геометрию мира и сценарий охоты за
// сокровищами. Ошибки конфигурации фатальны — сессия не стартует.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — полная конфигурация сервера, загруженная один раз при старте.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Assets     AssetsConfig     `mapstructure:"assets"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Physics    PhysicsConfig    `mapstructure:"physics"`
	Player     PlayerConfig     `mapstructure:"player"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Obstacles   []ObstacleConfig   `mapstructure:"obstacles"`
	Boundary    [][]float64        `mapstructure:"boundary"`
	Clues       []ClueConfig       `mapstructure:"clues"`
	Decorations []DecorationConfig `mapstructure:"decorations"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"staticDir"`
	SavePath  string `mapstructure:"savePath"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AssetsConfig — источники окружения (облако точек памятника) и
// политика повторов при его проверке на старте.
type AssetsConfig struct {
	Environment string        `mapstructure:"environment"`
	Fallback    string        `mapstructure:"fallback"`
	Retries     int           `mapstructure:"retries"`
	RetryDelay  time.Duration `mapstructure:"retryDelay"`
}

type SimulationConfig struct {
	TPS int `mapstructure:"tps"`
}

// PhysicsConfig — константы движения и коллизий (см. physics.Tunables).
type PhysicsConfig struct {
	Gravity          float64 `mapstructure:"gravity"`
	GroundLevel      float64 `mapstructure:"groundLevel"`
	AirResistance    float64 `mapstructure:"airResistance"`
	Margin           float64 `mapstructure:"margin"`
	Epsilon          float64 `mapstructure:"epsilon"`
	BounceMultiplier float64 `mapstructure:"bounceMultiplier"`
	UnstickThreshold float64 `mapstructure:"unstickThreshold"`
}

type PlayerConfig struct {
	Spawn        []float64 `mapstructure:"spawn"`
	Radius       float64   `mapstructure:"radius"`
	Height       float64   `mapstructure:"height"`
	CrouchHeight float64   `mapstructure:"crouchHeight"`
	WalkSpeed    float64   `mapstructure:"walkSpeed"`
	CrouchSpeed  float64   `mapstructure:"crouchSpeed"`
	JumpForce    float64   `mapstructure:"jumpForce"`
	FlySpeed     float64   `mapstructure:"flySpeed"`
	MaxFlyHeight float64   `mapstructure:"maxFlyHeight"`
}

type CameraConfig struct {
	FOVDegrees float64 `mapstructure:"fovDegrees"`
	Aspect     float64 `mapstructure:"aspect"`
}

// ObstacleConfig — сферическое препятствие. Movable помечает объект,
// который можно переставлять в режиме манипуляции.
type ObstacleConfig struct {
	ID             string    `mapstructure:"id"`
	Center         []float64 `mapstructure:"center"`
	Radius         float64   `mapstructure:"radius"`
	PushStrength   float64   `mapstructure:"pushStrength"`
	EscapeDistance float64   `mapstructure:"escapeDistance"`
	Movable        bool      `mapstructure:"movable"`
}

// ClueConfig — одна улика сценария. Proximity — индивидуальный порог
// дистанции клика, у первой улики он обычно жёстче.
type ClueConfig struct {
	ID        string    `mapstructure:"id"`
	Level     int       `mapstructure:"level"`
	Title     string    `mapstructure:"title"`
	Hint      string    `mapstructure:"hint"`
	Position  []float64 `mapstructure:"position"`
	Radius    float64   `mapstructure:"radius"`
	Proximity float64   `mapstructure:"proximity"`
}

// DecorationConfig — нейтральная геометрия сцены (статуи, руины).
// Участвует только в прицеливании.
type DecorationConfig struct {
	ID       string    `mapstructure:"id"`
	Position []float64 `mapstructure:"position"`
	Radius   float64   `mapstructure:"radius"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.staticDir", "./static")
	v.SetDefault("server.savePath", "./savegame.json")

	v.SetDefault("log.level", "info")

	v.SetDefault("assets.environment", "./static/assets/site.splat")
	v.SetDefault("assets.fallback", "./static/assets/site_lowres.splat")
	v.SetDefault("assets.retries", 3)
	v.SetDefault("assets.retryDelay", 2*time.Second)

	v.SetDefault("simulation.tps", 30)

	v.SetDefault("physics.gravity", 12.0)
	v.SetDefault("physics.groundLevel", 0.0)
	v.SetDefault("physics.airResistance", 0.9)
	v.SetDefault("physics.margin", 0.1)
	v.SetDefault("physics.epsilon", 0.01)
	v.SetDefault("physics.bounceMultiplier", 1.5)
	v.SetDefault("physics.unstickThreshold", 0.2)

	v.SetDefault("player.spawn", []float64{0, 1.0, 6.0})
	v.SetDefault("player.radius", 0.3)
	v.SetDefault("player.height", 1.7)
	v.SetDefault("player.crouchHeight", 0.9)
	v.SetDefault("player.walkSpeed", 3.0)
	v.SetDefault("player.crouchSpeed", 1.2)
	v.SetDefault("player.jumpForce", 5.0)
	v.SetDefault("player.flySpeed", 4.0)
	v.SetDefault("player.maxFlyHeight", 25.0)

	v.SetDefault("camera.fovDegrees", 60.0)
	v.SetDefault("camera.aspect", 16.0/9.0)
}

// Load читает конфигурацию: значения по умолчанию, затем YAML-файл
// (если задан), затем переменные окружения с префиксом RELIC.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RELIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию до старта сессии. Любая ошибка здесь
// фатальна и возвращается вызывающему.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	if c.Simulation.TPS <= 0 {
		return fmt.Errorf("simulation.tps must be positive, got %d", c.Simulation.TPS)
	}
	if c.Physics.Gravity <= 0 {
		return fmt.Errorf("physics.gravity must be positive, got %g", c.Physics.Gravity)
	}
	if c.Physics.AirResistance <= 0 || c.Physics.AirResistance > 1 {
		return fmt.Errorf("physics.airResistance must be in (0, 1], got %g", c.Physics.AirResistance)
	}
	if c.Player.Radius <= 0 {
		return fmt.Errorf("player.radius must be positive, got %g", c.Player.Radius)
	}
	if len(c.Player.Spawn) != 3 {
		return fmt.Errorf("player.spawn must have 3 components, got %d", len(c.Player.Spawn))
	}
	if c.Player.WalkSpeed <= 0 || c.Player.CrouchSpeed <= 0 {
		return fmt.Errorf("player speeds must be positive")
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		return fmt.Errorf("camera.fovDegrees must be in (0, 180), got %g", c.Camera.FOVDegrees)
	}
	if c.Assets.Retries < 1 {
		return fmt.Errorf("assets.retries must be at least 1, got %d", c.Assets.Retries)
	}

	for i, o := range c.Obstacles {
		if o.ID == "" {
			return fmt.Errorf("obstacles[%d]: id is empty", i)
		}
		if len(o.Center) != 3 {
			return fmt.Errorf("obstacle %s: center must have 3 components", o.ID)
		}
		if o.Radius <= 0 {
			return fmt.Errorf("obstacle %s: radius must be positive, got %g", o.ID, o.Radius)
		}
	}

	if len(c.Boundary) > 0 && len(c.Boundary) < 3 {
		return fmt.Errorf("boundary must have at least 3 vertices, got %d", len(c.Boundary))
	}
	for i, v := range c.Boundary {
		if len(v) != 2 {
			return fmt.Errorf("boundary[%d]: vertex must be an (x, z) pair", i)
		}
	}

	for i, cl := range c.Clues {
		if cl.ID == "" {
			return fmt.Errorf("clues[%d]: id is empty", i)
		}
		if len(cl.Position) != 3 {
			return fmt.Errorf("clue %s: position must have 3 components", cl.ID)
		}
		if cl.Proximity <= 0 {
			return fmt.Errorf("clue %s: proximity must be positive, got %g", cl.ID, cl.Proximity)
		}
	}

	for i, d := range c.Decorations {
		if d.ID == "" {
			return fmt.Errorf("decorations[%d]: id is empty", i)
		}
		if len(d.Position) != 3 {
			return fmt.Errorf("decoration %s: position must have 3 components", d.ID)
		}
		if d.Radius <= 0 {
			return fmt.Errorf("decoration %s: radius must be positive, got %g", d.ID, d.Radius)
		}
	}
	return nil
}
