package game

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"relic-hunt/internal/physics"
)

// clickEvent — клик указателя в NDC, ждёт обработки в тике.
type clickEvent struct {
	X, Y float64
}

// Session — состояние одного подключённого игрока. Физикой сессии
// владеет тик (единственный писатель); горутина чтения WebSocket
// только складывает входящие снимки и клики в pending-поля, которые
// тик забирает атомарно на своей границе.
type Session struct {
	ID string

	// Поля ниже трогает только тик
	player      *physics.PlayerState
	progression *Progression
	input       physics.Input // применённый снимок текущего тика
	clicks      []clickEvent  // клики, вынутые на этот тик
	hit         physics.Hit   // прицеливание завершённого тика

	// Очередь внешних записей, охраняется mu
	mu            sync.Mutex
	pendingInput  *physics.Input
	pendingClicks []clickEvent
	pendingStart  bool
	lastSeen      time.Time
}

// SessionFrame — снимок сессии для трансляции клиенту: позиция и
// ориентация для презентера камеры, попадание для прицела.
type SessionFrame struct {
	Position  mgl64.Vec3
	Yaw       float64
	Pitch     float64
	Grounded  bool
	Crouching bool
	Hit       physics.Hit
}

// NewSession создаёт сессию в точке спавна со свежей прогрессией.
func NewSession(id string, spawn mgl64.Vec3, clues []Clue) *Session {
	return &Session{
		ID:          id,
		player:      physics.NewPlayerState(spawn),
		progression: NewProgression(clues),
		lastSeen:    time.Now(),
	}
}

// QueueInput откладывает снимок ввода до границы следующего тика.
// Снимок приводится к контрактным диапазонам на входе.
func (s *Session) QueueInput(in physics.Input) {
	in = in.Clamp()
	s.mu.Lock()
	s.pendingInput = &in
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// QueueClick откладывает клик указателя.
func (s *Session) QueueClick(nx, ny float64) {
	s.mu.Lock()
	s.pendingClicks = append(s.pendingClicks, clickEvent{X: nx, Y: ny})
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// QueueStart откладывает запуск сценария.
func (s *Session) QueueStart() {
	s.mu.Lock()
	s.pendingStart = true
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// beginTick атомарно забирает отложенные записи. Новый снимок ввода
// замещает применённый; если клиент ничего не прислал, действует
// последний снимок (контракт "текущее состояние ввода").
func (s *Session) beginTick() {
	s.mu.Lock()
	if s.pendingInput != nil {
		s.input = *s.pendingInput
		s.pendingInput = nil
	}
	s.clicks = s.pendingClicks
	s.pendingClicks = nil
	start := s.pendingStart
	s.pendingStart = false
	s.mu.Unlock()

	if start {
		s.progression.Start()
	}
}

// takeClicks отдаёт клики текущего тика ровно один раз.
func (s *Session) takeClicks() []clickEvent {
	clicks := s.clicks
	s.clicks = nil
	return clicks
}

// Frame возвращает снимок завершённого тика.
func (s *Session) Frame() SessionFrame {
	return SessionFrame{
		Position:  s.player.Position,
		Yaw:       s.input.Yaw,
		Pitch:     s.input.Pitch,
		Grounded:  s.player.Grounded,
		Crouching: s.player.Crouching,
		Hit:       s.hit,
	}
}

// Progress возвращает срез прогрессии сессии.
func (s *Session) Progress() ProgressSnapshot {
	return s.progression.Snapshot()
}

// Touch отмечает активность клиента без игрового ввода (ping).
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen возвращает время последней активности клиента.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
