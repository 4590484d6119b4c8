package game

import (
	"time"

	"github.com/rs/zerolog"

	"relic-hunt/internal/physics"
)

// StateSink — исходящий контракт к транспорту: кадры состояния для
// презентера камеры и HUD, прогресс, тексты улик. Реализуется
// WebSocket-сервером; ядро про транспорт не знает.
type StateSink interface {
	SendState(sessionID string, frame SessionFrame)
	SendProgress(sessionID string, snap ProgressSnapshot)
	SendClue(sessionID string, clue Clue)
	SendInfo(sessionID string, text string)
}

// SimulationSystem — интеграция движения и разрешение коллизий.
// Выполняется первой: забирает отложенный ввод на границе тика,
// строит кандидатную позицию и фиксирует исправленное состояние.
type SimulationSystem struct {
	name       string
	priority   int
	ticker     *GameTicker
	integrator *physics.Integrator
	resolver   *physics.Resolver
}

// NewSimulationSystem создаёт систему симуляции.
func NewSimulationSystem(ticker *GameTicker, integrator *physics.Integrator, resolver *physics.Resolver) *SimulationSystem {
	return &SimulationSystem{
		name:       "SimulationSystem",
		priority:   10, // строго до прицеливания и трансляции
		ticker:     ticker,
		integrator: integrator,
		resolver:   resolver,
	}
}

// Update выполняет шаг симуляции для каждой сессии.
func (ss *SimulationSystem) Update(dt time.Duration) error {
	dtSec := dt.Seconds()
	ss.ticker.ForEachSession(func(s *Session) {
		s.beginTick()

		prev := s.player.Position
		candidate := ss.integrator.Step(s.player, s.input, dtSec)
		res := ss.resolver.Resolve(prev, candidate, s.player.Velocity)

		s.player.Position = res.Position
		s.player.Velocity = res.Velocity
		s.player.Grounded = res.Grounded
	})
	return nil
}

func (ss *SimulationSystem) Name() string  { return ss.name }
func (ss *SimulationSystem) Priority() int { return ss.priority }

// TargetingSystem — прицеливание и обработка кликов. Выполняется после
// симуляции и видит состояние игрока ровно этого, уже завершённого
// тика — никогда полуобновлённое.
type TargetingSystem struct {
	name      string
	priority  int
	ticker    *GameTicker
	raycaster *physics.Raycaster
	tunables  physics.Tunables
	fov       float64
	aspect    float64
	sink      StateSink
	logger    zerolog.Logger
}

// NewTargetingSystem создаёт систему прицеливания.
func NewTargetingSystem(ticker *GameTicker, raycaster *physics.Raycaster, tunables physics.Tunables, fov, aspect float64, sink StateSink, logger zerolog.Logger) *TargetingSystem {
	return &TargetingSystem{
		name:      "TargetingSystem",
		priority:  20,
		ticker:    ticker,
		raycaster: raycaster,
		tunables:  tunables,
		fov:       fov,
		aspect:    aspect,
		sink:      sink,
		logger:    logger.With().Str("system", "targeting").Logger(),
	}
}

// Update пересчитывает попадание прицела каждой сессии и обрабатывает
// накопленные клики, каждый ровно один раз.
func (ts *TargetingSystem) Update(dt time.Duration) error {
	ts.ticker.ForEachSession(func(s *Session) {
		camera := ts.cameraFor(s)

		// Попадание под текущим указателем — для цвета прицела
		s.hit = ts.raycaster.Cast(camera, s.input.PointerX, s.input.PointerY)

		for _, click := range s.takeClicks() {
			hit := ts.raycaster.Cast(camera, click.X, click.Y)
			result := s.progression.Click(hit, s.player.Position)

			switch {
			case result.Accepted:
				ts.logger.Info().Str("session", s.ID).
					Int("level", result.Clue.Level).Str("clue", result.Clue.ID).
					Msg("clue unlocked")
				ts.sink.SendClue(s.ID, *result.Clue)
				ts.sink.SendProgress(s.ID, s.progression.Snapshot())
			case result.Reason != "":
				ts.sink.SendInfo(s.ID, result.Reason)
			}
		}
	})
	return nil
}

// cameraFor строит камеру сессии: глаз на половине высоты капсулы,
// при приседании — высоты приседа.
func (ts *TargetingSystem) cameraFor(s *Session) physics.Camera {
	eyeOffset := ts.tunables.PlayerHeight / 2
	if s.player.Crouching {
		eyeOffset = ts.tunables.CrouchHeight / 2
	}
	eye := s.player.Position
	eye[1] += eyeOffset
	return physics.Camera{
		Position: eye,
		Yaw:      s.input.Yaw,
		Pitch:    s.input.Pitch,
		FOV:      ts.fov,
		Aspect:   ts.aspect,
	}
}

func (ts *TargetingSystem) Name() string  { return ts.name }
func (ts *TargetingSystem) Priority() int { return ts.priority }

// BroadcastSystem — трансляция кадров состояния клиентам. Выполняется
// последней: читает уже завершённый тик.
type BroadcastSystem struct {
	name     string
	priority int
	ticker   *GameTicker
	sink     StateSink
}

// NewBroadcastSystem создаёт систему трансляции.
func NewBroadcastSystem(ticker *GameTicker, sink StateSink) *BroadcastSystem {
	return &BroadcastSystem{
		name:     "BroadcastSystem",
		priority: 30,
		ticker:   ticker,
		sink:     sink,
	}
}

// Update отправляет каждой сессии кадр состояния.
func (bs *BroadcastSystem) Update(dt time.Duration) error {
	bs.ticker.ForEachSession(func(s *Session) {
		bs.sink.SendState(s.ID, s.Frame())
	})
	return nil
}

func (bs *BroadcastSystem) Name() string  { return bs.name }
func (bs *BroadcastSystem) Priority() int { return bs.priority }

// SessionReaperSystem убирает сессии, от которых давно нет ни ввода,
// ни кликов. Закрытие соединения — забота транспорта через onExpire.
type SessionReaperSystem struct {
	name     string
	priority int
	ticker   *GameTicker
	timeout  time.Duration
	onExpire func(sessionID string)
	logger   zerolog.Logger
}

// NewSessionReaperSystem создаёт систему очистки неактивных сессий.
func NewSessionReaperSystem(ticker *GameTicker, timeout time.Duration, onExpire func(string), logger zerolog.Logger) *SessionReaperSystem {
	return &SessionReaperSystem{
		name:     "SessionReaperSystem",
		priority: 40,
		ticker:   ticker,
		timeout:  timeout,
		onExpire: onExpire,
		logger:   logger.With().Str("system", "reaper").Logger(),
	}
}

// Update удаляет просроченные сессии.
func (sr *SessionReaperSystem) Update(dt time.Duration) error {
	now := time.Now()
	var expired []string
	sr.ticker.ForEachSession(func(s *Session) {
		if now.Sub(s.LastSeen()) > sr.timeout {
			expired = append(expired, s.ID)
		}
	})
	for _, id := range expired {
		sr.ticker.RemoveSession(id)
		sr.logger.Info().Str("session", id).Msg("inactive session removed")
		if sr.onExpire != nil {
			sr.onExpire(id)
		}
	}
	return nil
}

func (sr *SessionReaperSystem) Name() string  { return sr.name }
func (sr *SessionReaperSystem) Priority() int { return sr.priority }
