package calc

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/annel0/voxel-nav/internal/path"
	"github.com/annel0/voxel-nav/internal/vec"
)

const (
	// Стоимости движений (в условных тиках)
	walkCost = 1.0
	jumpCost = 2.0
	fallCost = 0.5 // За каждый блок падения

	// Коэффициент предпочтения узлов предыдущего пути
	favoringFactor = 0.9

	// Максимальная глубина спуска за один шаг
	maxFallHeight = 3

	// Насколько эвристика частичного пути должна быть лучше стартовой,
	// чтобы частичный путь считался полезным
	minImprovement = 5.0

	// Раз в сколько итераций проверяются таймауты
	timeCheckInterval = 64
)

// cardinalMoves — четыре горизонтальных направления движения
var cardinalMoves = [...]struct{ dx, dz int }{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// aStarNode — узел поиска
type aStarNode struct {
	pos       vec.Vec3
	g         float64 // Стоимость от старта
	h         float64 // Эвристика до цели
	f         float64 // g + h
	heapIndex int
	parent    *aStarNode
}

// openSet — двоичная куча узлов по возрастанию f
type openSet []*aStarNode

func (os openSet) Len() int            { return len(os) }
func (os openSet) Less(i, j int) bool  { return os[i].f < os[j].f }
func (os openSet) Swap(i, j int)       { os[i], os[j] = os[j], os[i]; os[i].heapIndex = i; os[j].heapIndex = j }
func (os *openSet) Push(x interface{}) { n := x.(*aStarNode); n.heapIndex = len(*os); *os = append(*os, n) }
func (os *openSet) Pop() interface{} {
	old := *os
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*os = old[:n-1]
	return node
}

// AStar выполняет поиск пути шагающего агента по воксельному миру.
// Реализует Searcher; один экземпляр — один расчёт.
type AStar struct {
	start   vec.Vec3
	goal    goal.Goal
	context *Context
	favored map[vec.Vec3]struct{}

	cancelled atomic.Bool

	mu              sync.Mutex // Защищает best и nodesConsidered от чтения из тик-потока
	best            *aStarNode
	startH          float64
	nodesConsidered int
}

// NewAStar создаёт расчёт от старта к цели. Узлы предыдущего пути
// (если он задан) получают скидку к стоимости, чтобы новый сегмент
// тяготел к уже проверенному маршруту.
func NewAStar(start vec.Vec3, g goal.Goal, previous *path.Path, ctx *Context) *AStar {
	favored := make(map[vec.Vec3]struct{})
	if previous != nil {
		for _, pos := range previous.Positions {
			favored[pos] = struct{}{}
		}
	}
	return &AStar{
		start:   start,
		goal:    g,
		context: ctx,
		favored: favored,
		startH:  g.Heuristic(start),
	}
}

// Start возвращает стартовый блок расчёта
func (a *AStar) Start() vec.Vec3 {
	return a.start
}

// Goal возвращает цель расчёта
func (a *AStar) Goal() goal.Goal {
	return a.goal
}

// Cancel кооперативно останавливает расчёт; идемпотентен
func (a *AStar) Cancel() {
	a.cancelled.Store(true)
}

// BestSoFar возвращает лучший найденный частичный путь, если он
// существенно приближает к цели
func (a *AStar) BestSoFar() (*path.Path, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pathToBestLocked()
}

// pathToBestLocked строит путь до лучшего узла; вызывается под a.mu
func (a *AStar) pathToBestLocked() (*path.Path, bool) {
	if a.best == nil || a.startH-a.best.h < minImprovement {
		return nil, false
	}
	return a.reconstruct(a.best), true
}

// Calculate выполняет расчёт. По истечении primary возвращается лучший
// частичный сегмент (если есть), по истечении failure расчёт сдаётся.
func (a *AStar) Calculate(primary, failure time.Duration) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Паника в расчёте пути от %v к %v: %v", a.start, a.goal, r)
			result = Result{Type: ResultException}
		}
	}()

	startTime := time.Now()
	primaryDeadline := startTime.Add(primary)
	failureDeadline := startTime.Add(failure)

	nodes := make(map[vec.Vec3]*aStarNode)
	startNode := &aStarNode{pos: a.start, g: 0, h: a.startH, f: a.startH}
	nodes[a.start] = startNode

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, startNode)

	iterations := 0
	for open.Len() > 0 {
		if a.cancelled.Load() {
			return Result{Type: ResultCancellation}
		}

		iterations++
		if iterations%timeCheckInterval == 0 {
			now := time.Now()
			if now.After(failureDeadline) {
				return Result{Type: ResultFailure}
			}
			if now.After(primaryDeadline) {
				if partial, ok := a.BestSoFar(); ok {
					return Result{Type: ResultSuccessSegment, Path: partial}
				}
			}
		}

		current := heap.Pop(open).(*aStarNode)

		a.mu.Lock()
		a.nodesConsidered++
		if a.best == nil || current.h < a.best.h || (current.h == a.best.h && current.g < a.best.g) {
			a.best = current
		}
		a.mu.Unlock()

		if a.goal.IsInGoal(current.pos) {
			return Result{Type: ResultSuccessToGoal, Path: a.reconstruct(current)}
		}

		for _, move := range cardinalMoves {
			neighbor, cost, ok := a.stepTo(current.pos, move.dx, move.dz)
			if !ok {
				continue
			}
			if _, fav := a.favored[neighbor]; fav {
				cost *= favoringFactor
			}

			tentative := current.g + cost
			existing, seen := nodes[neighbor]
			if seen && tentative >= existing.g {
				continue
			}

			if !seen {
				existing = &aStarNode{pos: neighbor, h: a.goal.Heuristic(neighbor)}
				nodes[neighbor] = existing
				existing.g = tentative
				existing.f = tentative + existing.h
				existing.parent = current
				heap.Push(open, existing)
			} else {
				existing.g = tentative
				existing.f = tentative + existing.h
				existing.parent = current
				heap.Fix(open, existing.heapIndex)
			}
		}
	}

	// Пространство поиска исчерпано
	return a.timeoutResult()
}

// timeoutResult возвращает частичный сегмент, если он полезен, иначе провал
func (a *AStar) timeoutResult() Result {
	if partial, ok := a.BestSoFar(); ok {
		return Result{Type: ResultSuccessSegment, Path: partial}
	}
	return Result{Type: ResultFailure}
}

// stepTo проверяет шаг из from в горизонтальном направлении (dx, dz):
// по ровному, с подъёмом на один блок или со спуском до maxFallHeight.
// Возвращает позицию, стоимость шага и признак проходимости.
func (a *AStar) stepTo(from vec.Vec3, dx, dz int) (vec.Vec3, float64, bool) {
	world := a.context.World
	target := from.Offset(dx, 0, dz)

	// Не заходим в незагруженные чанки
	if !world.IsChunkLoaded(target.X, target.Z) {
		return vec.Vec3{}, 0, false
	}

	// По ровному
	if world.CanStandAt(target) {
		return target, walkCost, true
	}

	// Подъём на блок: нужен запас над головой на текущей позиции
	up := target.Above()
	if world.CanStandAt(up) && world.CanWalkThrough(from.Offset(0, 2, 0)) {
		return up, jumpCost, true
	}

	// Спуск: колонна в направлении движения должна быть свободна
	if world.CanWalkThrough(target) && world.CanWalkThrough(target.Above()) {
		for fall := 1; fall <= maxFallHeight; fall++ {
			landing := target.Offset(0, -fall, 0)
			if world.CanStandAt(landing) {
				return landing, walkCost + float64(fall)*fallCost, true
			}
			if !world.CanWalkThrough(landing) {
				break
			}
		}
	}

	return vec.Vec3{}, 0, false
}

// reconstruct восстанавливает путь от стартового узла до указанного
func (a *AStar) reconstruct(node *aStarNode) *path.Path {
	count := 0
	for n := node; n != nil; n = n.parent {
		count++
	}

	positions := make([]vec.Vec3, count)
	for n := node; n != nil; n = n.parent {
		count--
		positions[count] = n.pos
	}

	return &path.Path{
		Positions:          positions,
		Goal:               a.goal,
		NumNodesConsidered: a.nodesConsidered,
	}
}
