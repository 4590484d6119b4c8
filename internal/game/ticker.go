package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// System — интерфейс всех игровых систем тика. Системы выполняются в
// порядке приоритета (меньше = раньше); порядок внутри тика строгий:
// интеграция движения -> коллизии -> фиксация состояния игрока ->
// прицеливание -> трансляция.
type System interface {
	Update(dt time.Duration) error
	Name() string
	Priority() int
}

// GameTicker — основной менеджер игрового цикла. Один логический
// писатель состояния игроков: сам тик. Внешние записи (перемещение
// препятствия, загрузка сохранения) откладываются в очередь и
// применяются на границе тика, не посреди него.
type GameTicker struct {
	// Конфигурация
	targetTPS    int
	tickDuration time.Duration
	maxTickTime  time.Duration

	// Состояние
	isRunning    bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time

	// Сессии игроков
	sessions   map[string]*Session
	sessionsMu sync.RWMutex

	// Системы
	systems   []System
	systemsMu sync.RWMutex

	// Очередь отложенных внешних записей
	writes chan func()

	// Управление
	ctx    context.Context
	cancel context.CancelFunc

	// Метрики
	perf            *perfMonitor
	averageTickTime time.Duration
	maxObservedTick time.Duration
	slowTicks       uint64

	logger           zerolog.Logger
	warningThreshold time.Duration
}

// NewGameTicker создаёт тикер с целевой частотой targetTPS.
func NewGameTicker(targetTPS int, logger zerolog.Logger) *GameTicker {
	if targetTPS <= 0 {
		targetTPS = 30
	}
	tickDuration := time.Second / time.Duration(targetTPS)
	ctx, cancel := context.WithCancel(context.Background())

	return &GameTicker{
		targetTPS:        targetTPS,
		tickDuration:     tickDuration,
		maxTickTime:      tickDuration * 2,
		sessions:         make(map[string]*Session),
		writes:           make(chan func(), 256),
		ctx:              ctx,
		cancel:           cancel,
		perf:             newPerfMonitor(),
		logger:           logger.With().Str("component", "ticker").Logger(),
		warningThreshold: tickDuration / 2,
	}
}

// Start запускает игровой цикл.
func (gt *GameTicker) Start() {
	if gt.isRunning {
		return
	}
	gt.isRunning = true
	gt.startTime = time.Now()
	gt.lastTickTime = gt.startTime

	gt.logger.Info().Int("tps", gt.targetTPS).Dur("tick", gt.tickDuration).
		Msg("starting game loop")

	go gt.gameLoop()
}

// Stop останавливает игровой цикл.
func (gt *GameTicker) Stop() {
	if !gt.isRunning {
		return
	}
	gt.logger.Info().Uint64("ticks", gt.tickCount).Msg("stopping game loop")
	gt.cancel()
	gt.isRunning = false
}

// RegisterSystem добавляет систему и держит список отсортированным по
// приоритету.
func (gt *GameTicker) RegisterSystem(system System) {
	gt.systemsMu.Lock()
	defer gt.systemsMu.Unlock()

	gt.systems = append(gt.systems, system)
	sort.SliceStable(gt.systems, func(i, j int) bool {
		return gt.systems[i].Priority() < gt.systems[j].Priority()
	})
	gt.perf.initSystem(system.Name())

	gt.logger.Info().Str("system", system.Name()).Int("priority", system.Priority()).
		Msg("registered system")
}

// QueueWrite откладывает внешнюю запись до границы следующего тика.
// При переполнении очереди запись выполняется синхронно до старта
// цикла — это возможно только на инициализации.
func (gt *GameTicker) QueueWrite(f func()) {
	select {
	case gt.writes <- f:
	default:
		gt.logger.Warn().Msg("write queue full, applying inline")
		f()
	}
}

// AddSession регистрирует сессию игрока.
func (gt *GameTicker) AddSession(s *Session) {
	gt.sessionsMu.Lock()
	gt.sessions[s.ID] = s
	gt.sessionsMu.Unlock()
	gt.logger.Info().Str("session", s.ID).Msg("session added")
}

// RemoveSession удаляет сессию игрока.
func (gt *GameTicker) RemoveSession(id string) {
	gt.sessionsMu.Lock()
	delete(gt.sessions, id)
	gt.sessionsMu.Unlock()
	gt.logger.Info().Str("session", id).Msg("session removed")
}

// Session возвращает сессию по идентификатору.
func (gt *GameTicker) Session(id string) (*Session, bool) {
	gt.sessionsMu.RLock()
	defer gt.sessionsMu.RUnlock()
	s, ok := gt.sessions[id]
	return s, ok
}

// ForEachSession обходит сессии в стабильном порядке идентификаторов —
// детерминизм тика не должен зависеть от порядка карты.
func (gt *GameTicker) ForEachSession(fn func(*Session)) {
	gt.sessionsMu.RLock()
	ids := make([]string, 0, len(gt.sessions))
	for id := range gt.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sessions := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, gt.sessions[id])
	}
	gt.sessionsMu.RUnlock()

	for _, s := range sessions {
		fn(s)
	}
}

// SessionCount возвращает число активных сессий.
func (gt *GameTicker) SessionCount() int {
	gt.sessionsMu.RLock()
	defer gt.sessionsMu.RUnlock()
	return len(gt.sessions)
}

// TickCount возвращает число выполненных тиков.
func (gt *GameTicker) TickCount() uint64 {
	return gt.tickCount
}

// gameLoop — основной цикл с фиксированным шагом.
func (gt *GameTicker) gameLoop() {
	ticker := time.NewTicker(gt.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-gt.ctx.Done():
			return
		case tickTime := <-ticker.C:
			gt.executeTick(tickTime)
		}
	}
}

// executeTick выполняет один игровой тик: отложенные записи, затем все
// системы по приоритету.
func (gt *GameTicker) executeTick(tickTime time.Time) {
	tickStart := time.Now()
	deltaTime := tickTime.Sub(gt.lastTickTime)

	if deltaTime > gt.tickDuration*2 {
		gt.logger.Warn().Dur("delta", deltaTime).Dur("expected", gt.tickDuration).
			Msg("large gap between ticks")
		gt.slowTicks++
	}

	gt.tickCount++
	gt.lastTickTime = tickTime

	gt.applyQueuedWrites()
	gt.executeAllSystems(deltaTime)

	totalTickTime := time.Since(tickStart)
	gt.updateTickMetrics(totalTickTime)
	gt.checkPerformance(totalTickTime)
}

// applyQueuedWrites применяет внешние записи на границе тика.
func (gt *GameTicker) applyQueuedWrites() {
	for {
		select {
		case f := <-gt.writes:
			f()
		default:
			return
		}
	}
}

func (gt *GameTicker) executeAllSystems(deltaTime time.Duration) {
	gt.systemsMu.RLock()
	systems := make([]System, len(gt.systems))
	copy(systems, gt.systems)
	gt.systemsMu.RUnlock()

	for _, system := range systems {
		gt.executeSystem(system, deltaTime)
	}
}

// executeSystem выполняет одну систему с замером времени. Паника
// внутри системы ловится здесь: тик считается no-op для этой системы,
// предыдущее валидное состояние сохраняется, цикл продолжает жить.
func (gt *GameTicker) executeSystem(system System, deltaTime time.Duration) {
	systemStart := time.Now()
	systemName := system.Name()

	defer func() {
		if r := recover(); r != nil {
			gt.logger.Error().Str("system", systemName).Interface("panic", r).
				Msg("panic inside system, tick skipped")
			gt.perf.recordError(systemName)
		}
	}()

	err := system.Update(deltaTime)
	gt.perf.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		gt.logger.Error().Err(err).Str("system", systemName).Msg("system update failed")
		gt.perf.recordError(systemName)
	}
}

func (gt *GameTicker) updateTickMetrics(tickTime time.Duration) {
	if tickTime > gt.maxObservedTick {
		gt.maxObservedTick = tickTime
	}
	// Простое скользящее среднее
	if gt.averageTickTime == 0 {
		gt.averageTickTime = tickTime
	} else {
		gt.averageTickTime = (gt.averageTickTime*9 + tickTime) / 10
	}
}

func (gt *GameTicker) checkPerformance(tickTime time.Duration) {
	if tickTime > gt.maxTickTime {
		gt.logger.Warn().Dur("tick", tickTime).Dur("max", gt.maxTickTime).
			Msg("tick exceeded maximum budget")
	} else if tickTime > gt.warningThreshold {
		gt.logger.Warn().Dur("tick", tickTime).Dur("target", gt.tickDuration).
			Msg("slow tick")
	}
}

// Stats возвращает статистику игрового цикла.
func (gt *GameTicker) Stats() map[string]interface{} {
	uptime := time.Since(gt.startTime)
	actualTPS := 0.0
	if uptime > 0 {
		actualTPS = float64(gt.tickCount) / uptime.Seconds()
	}
	return map[string]interface{}{
		"target_tps":        gt.targetTPS,
		"actual_tps":        actualTPS,
		"tick_count":        gt.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": gt.averageTickTime,
		"max_observed_tick": gt.maxObservedTick,
		"slow_ticks":        gt.slowTicks,
		"sessions":          gt.SessionCount(),
		"systems":           gt.perf.stats(),
	}
}

// perfMonitor отслеживает производительность систем.
type perfMonitor struct {
	mu      sync.Mutex
	metrics map[string]*systemMetrics
}

type systemMetrics struct {
	lastTime   time.Duration
	averageEMA time.Duration
	maxTime    time.Duration
	executions uint64
	errors     uint64
}

func newPerfMonitor() *perfMonitor {
	return &perfMonitor{metrics: make(map[string]*systemMetrics)}
}

func (pm *perfMonitor) initSystem(name string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.metrics[name] = &systemMetrics{}
}

func (pm *perfMonitor) recordExecution(name string, d time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	m, ok := pm.metrics[name]
	if !ok {
		return
	}
	m.lastTime = d
	m.executions++
	if d > m.maxTime {
		m.maxTime = d
	}
	if m.averageEMA == 0 {
		m.averageEMA = d
	} else {
		m.averageEMA = (m.averageEMA*9 + d) / 10
	}
}

func (pm *perfMonitor) recordError(name string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if m, ok := pm.metrics[name]; ok {
		m.errors++
	}
}

func (pm *perfMonitor) stats() map[string]interface{} {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	out := make(map[string]interface{}, len(pm.metrics))
	for name, m := range pm.metrics {
		out[name] = map[string]interface{}{
			"last_time":  m.lastTime,
			"average":    m.averageEMA,
			"max_time":   m.maxTime,
			"executions": m.executions,
			"errors":     m.errors,
		}
	}
	return out
}
