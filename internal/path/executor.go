package path

import (
	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/annel0/voxel-nav/internal/physics"
	"github.com/annel0/voxel-nav/internal/vec"
)

const (
	// Сколько узлов вперёд просматривается при поиске агента на пути
	nodeLookahead = 8

	// Максимальное горизонтальное отклонение от пути до провала сегмента
	maxPathDeviation = 2.5

	// Максимальный перепад высоты между агентом и узлом пути
	maxYDeviation = 2

	// Сколько тиков агент может не продвигаться, прежде чем сегмент провален
	maxTicksWithoutProgress = 120

	// Минимальная длина прямого участка впереди для включения спринта
	sprintRunLength = 3

	// Средняя скорость агента: тиков на прохождение одного узла
	ticksPerNode = 4
)

// AgentView — узкий интерфейс чтения состояния агента, который нужен
// исполнителю пути
type AgentView interface {
	// Feet возвращает блок, в котором находятся ноги агента
	Feet() vec.Vec3

	// Position возвращает непрерывную позицию агента
	Position() vec.Vec3Float

	// OnGround сообщает, стоит ли агент на земле
	OnGround() bool
}

// Executor ведёт агента по одному сегменту пути и отслеживает его прогресс.
// Состояния failed и finished терминальны и взаимоисключающи.
type Executor struct {
	path     *Path
	view     AgentView
	collider *physics.BoxCollider

	position            int // Индекс текущего узла
	ticksWithoutAdvance int
	failed              bool
	finished            bool
	sprinting           bool
}

// NewExecutor создаёт исполнителя для указанного пути
func NewExecutor(p *Path, view AgentView) *Executor {
	return &Executor{
		path:     p,
		view:     view,
		collider: physics.NewAgentCollider(),
	}
}

// Path возвращает исполняемый путь
func (e *Executor) Path() *Path {
	return e.path
}

// Failed сообщает, провален ли сегмент
func (e *Executor) Failed() bool {
	return e.failed
}

// Finished сообщает, дошёл ли агент до конца сегмента
func (e *Executor) Finished() bool {
	return e.finished
}

// Sprinting сообщает, должен ли агент бежать на текущем участке
func (e *Executor) Sprinting() bool {
	return e.sprinting
}

// CurrentTarget возвращает узел, к которому агент движется сейчас
func (e *Executor) CurrentTarget() (vec.Vec3, bool) {
	next := e.position + 1
	if e.failed || e.finished || next >= e.path.Length() {
		return vec.Vec3{}, false
	}
	return e.path.Positions[next], true
}

// Tick продвигает исполнителя на один игровой тик.
// Возвращает, безопасно ли сейчас отменить сегмент.
func (e *Executor) Tick() bool {
	if e.failed || e.finished {
		return true
	}

	feet := e.view.Feet()

	// Ищем агента среди ближайших узлов впереди
	advanced := false
	limit := e.position + nodeLookahead
	if limit > e.path.Length() {
		limit = e.path.Length()
	}
	for i := e.position; i < limit; i++ {
		if e.path.Positions[i].Equals(feet) {
			if i > e.position {
				advanced = true
			}
			e.position = i
			break
		}
	}

	if e.position == e.path.Length()-1 && feet.Equals(e.path.Dest()) {
		e.finished = true
		e.sprinting = false
		return true
	}

	if e.strayedFromPath(feet) {
		logging.Debug("Агент сошёл с пути возле узла %d, сегмент провален", e.position)
		e.failed = true
		e.sprinting = false
		return true
	}

	if advanced {
		e.ticksWithoutAdvance = 0
	} else {
		e.ticksWithoutAdvance++
		if e.ticksWithoutAdvance > maxTicksWithoutProgress {
			logging.Debug("Агент застрял на узле %d (%d тиков), сегмент провален", e.position, e.ticksWithoutAdvance)
			e.failed = true
			e.sprinting = false
			return true
		}
	}

	e.sprinting = e.straightRunAhead() >= sprintRunLength

	return e.view.OnGround()
}

// strayedFromPath проверяет, удалился ли агент от ближайших узлов пути
func (e *Executor) strayedFromPath(feet vec.Vec3) bool {
	pos := e.view.Position()
	limit := e.position + nodeLookahead
	if limit > e.path.Length() {
		limit = e.path.Length()
	}
	for i := e.position; i < limit; i++ {
		node := e.path.Positions[i]
		dy := feet.Y - node.Y
		if dy < 0 {
			dy = -dy
		}
		if dy <= maxYDeviation && physics.HorizontalDeviation(pos, node) <= maxPathDeviation {
			return false
		}
	}
	return true
}

// straightRunAhead возвращает длину прямого горизонтального участка впереди
func (e *Executor) straightRunAhead() int {
	run := 0
	for i := e.position + 1; i < e.path.Length(); i++ {
		prev := e.path.Positions[i-1]
		cur := e.path.Positions[i]
		if cur.Y != prev.Y {
			break
		}
		if run > 0 {
			first := e.path.Positions[e.position]
			second := e.path.Positions[e.position+1]
			if cur.X-prev.X != second.X-first.X || cur.Z-prev.Z != second.Z-first.Z {
				break
			}
		}
		run++
	}
	return run
}

// TicksRemaining оценивает, сколько тиков осталось до конца сегмента
func (e *Executor) TicksRemaining() float64 {
	remaining := e.path.Length() - 1 - e.position
	if remaining < 0 {
		remaining = 0
	}
	return float64(remaining * ticksPerNode)
}

// TrySplice пытается привить next к текущему пути до его конца.
// Если привить нельзя (в том числе при next == nil), возвращает сам себя.
func (e *Executor) TrySplice(next *Executor) *Executor {
	if next == nil {
		return e
	}

	graftAt := -1
	for i := e.position; i < e.path.Length()-1; i++ {
		if e.path.Positions[i].Equals(next.path.Src()) {
			graftAt = i
			break
		}
	}
	if graftAt < 0 {
		return e
	}

	combined := make([]vec.Vec3, 0, graftAt+next.path.Length())
	combined = append(combined, e.path.Positions[:graftAt]...)
	combined = append(combined, next.path.Positions...)

	spliced := &Path{
		Positions:          combined,
		Goal:               next.path.Goal,
		NumNodesConsidered: e.path.NumNodesConsidered + next.path.NumNodesConsidered,
	}

	result := NewExecutor(spliced, e.view)
	result.position = e.position
	result.ticksWithoutAdvance = e.ticksWithoutAdvance
	logging.Debug("Сегменты склеены: %d узлов до прививки, %d после", graftAt, next.path.Length())
	return result
}

// BeginFromCurrent пытается войти в путь с текущей позиции агента,
// отрезая уже неактуальный префикс. Возвращает true при успехе.
func (e *Executor) BeginFromCurrent() bool {
	idx := e.path.IndexOf(e.view.Feet())
	if idx < 0 {
		return false
	}
	e.position = idx
	e.ticksWithoutAdvance = 0
	return true
}
