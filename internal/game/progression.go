package game

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"relic-hunt/internal/physics"
	"relic-hunt/internal/world"
)

// Phase — фаза сценария охоты за сокровищами.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseComplete
)

// Clue — улика сценария в порядке прохождения.
type Clue struct {
	ID        string
	Level     int
	Title     string
	Hint      string
	Position  mgl64.Vec3
	Proximity float64
}

// ClickResult — ответ машины прогрессии на клик.
type ClickResult struct {
	Accepted bool
	Reason   string // пояснение отказа для HUD, пустое при Accepted
	Clue     *Clue  // открытая улика при Accepted
}

// Progression — строго упорядоченная последовательность гейтов улик.
// NotStarted -> InProgress(level 0..N-1) -> Complete. Уровень только
// растёт, ровно на единицу за принятый клик. Единственный писатель —
// тик сессии, мьютекс не нужен.
type Progression struct {
	clues     []Clue
	phase     Phase
	current   int
	completed []int
}

// ProgressSnapshot — срез прогрессии для HUD.
type ProgressSnapshot struct {
	Started        bool
	Complete       bool
	CurrentLevel   int
	TreasuresFound int
	TotalTreasures int
}

// CluesFromWorld собирает улики из модели сцены.
func CluesFromWorld(w *world.World) []Clue {
	var clues []Clue
	for _, obj := range w.Objects() {
		if obj.Kind != world.KindClue || obj.Clue == nil {
			continue
		}
		clues = append(clues, Clue{
			ID:        obj.ID,
			Level:     obj.Clue.Level,
			Title:     obj.Clue.Title,
			Hint:      obj.Clue.Hint,
			Position:  obj.Position,
			Proximity: obj.Clue.Proximity,
		})
	}
	return clues
}

// NewProgression создаёт машину прогрессии над набором улик.
func NewProgression(clues []Clue) *Progression {
	sorted := make([]Clue, len(clues))
	copy(sorted, clues)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	return &Progression{clues: sorted}
}

// Start запускает сценарий. Повторный вызов — no-op.
func (p *Progression) Start() {
	if p.phase != PhaseNotStarted {
		return
	}
	if len(p.clues) == 0 {
		p.phase = PhaseComplete
		return
	}
	p.phase = PhaseInProgress
}

// Click обрабатывает клик по результату прицеливания. Принимается
// только клик по улике текущего уровня в пределах её индивидуального
// порога дистанции; всё остальное — отказ без ошибки и без смены
// состояния.
func (p *Progression) Click(hit physics.Hit, playerPos mgl64.Vec3) ClickResult {
	if p.phase == PhaseNotStarted {
		return ClickResult{Reason: "the hunt has not started yet"}
	}
	if p.phase == PhaseComplete {
		return ClickResult{Reason: "the hunt is already complete"}
	}
	if !hit.HasHit {
		return ClickResult{}
	}

	clue := p.clueByID(hit.ObjectID)
	if clue == nil {
		return ClickResult{}
	}
	if clue.Level != p.current {
		return ClickResult{Reason: "this clue is not yet available"}
	}
	if playerPos.Sub(clue.Position).Len() > clue.Proximity {
		return ClickResult{Reason: "move closer to examine the clue"}
	}

	unlocked := *clue
	p.advance()
	return ClickResult{Accepted: true, Clue: &unlocked}
}

// advance двигает уровень ровно на единицу, монотонно, с переходом в
// Complete на последней улике.
func (p *Progression) advance() {
	p.completed = append(p.completed, p.current)
	p.current++
	if p.current >= len(p.clues) {
		p.phase = PhaseComplete
	}
}

func (p *Progression) clueByID(id string) *Clue {
	for i := range p.clues {
		if p.clues[i].ID == id {
			return &p.clues[i]
		}
	}
	return nil
}

// Phase возвращает текущую фазу сценария.
func (p *Progression) Phase() Phase {
	return p.phase
}

// CurrentLevel возвращает уровень текущей улики.
func (p *Progression) CurrentLevel() int {
	return p.current
}

// CompletedLevels возвращает копию списка пройденных уровней.
func (p *Progression) CompletedLevels() []int {
	out := make([]int, len(p.completed))
	copy(out, p.completed)
	return out
}

// Snapshot — срез для HUD-индикатора прогресса.
func (p *Progression) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		Started:        p.phase != PhaseNotStarted,
		Complete:       p.phase == PhaseComplete,
		CurrentLevel:   p.current,
		TreasuresFound: len(p.completed),
		TotalTreasures: len(p.clues),
	}
}
