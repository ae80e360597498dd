package core

import (
	"sync"

	"github.com/annel0/voxel-nav/internal/calc"
	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/annel0/voxel-nav/internal/observability"
	"github.com/annel0/voxel-nav/internal/path"
	"github.com/annel0/voxel-nav/internal/vec"
)

// PathStore владеет текущим и заготовленным путями, активным расчётом,
// ожидаемым стартом и целью.
//
// Дисциплина блокировок (всегда в этом порядке, иначе возможен deadlock):
//  1. pathMu — current, next, expectedStart, goal
//  2. calcMu — activeSearch
//
// Завершение расчёта коммитит (установку current/next, сброс activeSearch)
// атомарно под обеими блокировками.
type PathStore struct {
	pathMu sync.Mutex
	calcMu sync.Mutex

	current          *path.Executor
	next             *path.Executor
	activeSearch     calc.Searcher
	expectedStart    vec.Vec3
	hasExpectedStart bool
	goal             goal.Goal

	// Узкие ручки наружу: очередь событий и фабрики; обратной ссылки
	// на ядро у хранилища нет
	events         *eventQueue
	metrics        *observability.CoreMetrics
	newExecutor    func(*path.Path) *path.Executor
	onPathAccepted func(start vec.Vec3)
}

// newPathStore создаёт хранилище путей
func newPathStore(events *eventQueue, newExecutor func(*path.Path) *path.Executor, onPathAccepted func(vec.Vec3)) *PathStore {
	return &PathStore{
		events:         events,
		metrics:        observability.GetCoreMetrics(),
		newExecutor:    newExecutor,
		onPathAccepted: onPathAccepted,
	}
}

// SetExpectedStart записывает блок, с которого должен начинаться
// следующий или текущий путь
func (ps *PathStore) SetExpectedStart(pos vec.Vec3) {
	ps.pathMu.Lock()
	ps.expectedStart = pos
	ps.hasExpectedStart = true
	ps.pathMu.Unlock()
}

// ExpectedStart возвращает ожидаемый стартовый блок
func (ps *PathStore) ExpectedStart() (vec.Vec3, bool) {
	ps.pathMu.Lock()
	defer ps.pathMu.Unlock()
	return ps.expectedStart, ps.hasExpectedStart
}

// CurrentPath возвращает исполняемый сегмент (может быть nil)
func (ps *PathStore) CurrentPath() *path.Executor {
	ps.pathMu.Lock()
	defer ps.pathMu.Unlock()
	return ps.current
}

// NextPath возвращает заготовленный следующий сегмент (может быть nil)
func (ps *PathStore) NextPath() *path.Executor {
	ps.pathMu.Lock()
	defer ps.pathMu.Unlock()
	return ps.next
}

// Goal возвращает текущую цель (может быть nil)
func (ps *PathStore) Goal() goal.Goal {
	ps.pathMu.Lock()
	defer ps.pathMu.Unlock()
	return ps.goal
}

// ActiveSearch возвращает активный расчёт (может быть nil)
func (ps *PathStore) ActiveSearch() calc.Searcher {
	ps.calcMu.Lock()
	defer ps.calcMu.Unlock()
	return ps.activeSearch
}

// ensureCalcLockHeld — контракт времени выполнения: запуск и сброс расчёта
// разрешены только под calcMu. TryLock успешен, только если блокировка
// свободна, то есть вызывающий её не держит.
func (ps *PathStore) ensureCalcLockHeld() {
	if ps.calcMu.TryLock() {
		ps.calcMu.Unlock()
		panic("PathStore: запуск расчёта без удержания calcMu")
	}
}

// startNewCalculation регистрирует расчёт как активный.
// Контракт: вызывающий держит pathMu и calcMu; активного расчёта нет;
// контекст пригоден для фонового использования.
func (ps *PathStore) startNewCalculation(searcher calc.Searcher, context *calc.Context, start vec.Vec3) {
	ps.ensureCalcLockHeld()
	if ps.activeSearch != nil {
		panic("PathStore: расчёт уже выполняется")
	}
	if !context.SafeForThreadedUse {
		panic("PathStore: контекст не пригоден для фонового расчёта")
	}

	ps.expectedStart = start
	ps.hasExpectedStart = true
	ps.activeSearch = searcher
}

// HandlePauseResume сбрасывает состояние путей при паузе: агент продолжит
// с нового места, старые сегменты и расчёт больше не актуальны
func (ps *PathStore) HandlePauseResume(newPosition vec.Vec3) {
	ps.pathMu.Lock()
	defer ps.pathMu.Unlock()

	ps.current = nil
	ps.next = nil
	ps.expectedStart = newPosition
	ps.hasExpectedStart = true

	ps.calcMu.Lock()
	if ps.activeSearch != nil {
		ps.activeSearch.Cancel()
		ps.activeSearch = nil
	}
	ps.calcMu.Unlock()
}

// completeCalculation принимает итог фонового расчёта. Вызывается в потоке
// воркера; коммит результата и сброс активного расчёта происходят атомарно
// под pathMu и calcMu.
func (ps *PathStore) completeCalculation(result calc.Result, start vec.Vec3, logIt bool) {
	ps.pathMu.Lock()
	defer ps.pathMu.Unlock()

	var exec *path.Executor
	if result.Path != nil {
		exec = ps.newExecutor(result.Path)
	}

	if ps.current == nil {
		ps.acceptInitialResult(exec, result, start)
	} else {
		ps.acceptNextSegmentResult(exec, result)
	}

	ps.logCalculationOutcome(logIt, start)

	ps.calcMu.Lock()
	ps.activeSearch = nil
	ps.calcMu.Unlock()
}

// acceptInitialResult обрабатывает итог первичного расчёта
func (ps *PathStore) acceptInitialResult(exec *path.Executor, result calc.Result, start vec.Vec3) {
	if exec != nil {
		pathStart := exec.Path().Src()
		if ps.hasExpectedStart && pathStart.Equals(ps.expectedStart) {
			ps.events.Add(EventCalcFinishedNowExecuting)
			ps.current = exec
			ps.onPathAccepted(start)
		} else {
			logging.Warn("Отброшен осиротевший сегмент: ожидался старт %v, получен %v", ps.expectedStart, pathStart)
			ps.metrics.OrphanPaths.Inc()
		}
		return
	}

	if result.Type != calc.ResultCancellation && result.Type != calc.ResultException {
		ps.events.Add(EventCalcFailed)
		ps.metrics.SearchesFailed.Inc()
	}
}

// acceptNextSegmentResult обрабатывает итог расчёта следующего сегмента
func (ps *PathStore) acceptNextSegmentResult(exec *path.Executor, result calc.Result) {
	if ps.next != nil {
		// Два расчёта следующего сегмента одновременно невозможны;
		// если сюда попали — состояние нарушено
		logging.Warn("Недопустимое состояние PathStore: следующий сегмент уже установлен, новый отброшен")
		return
	}

	if exec == nil {
		ps.events.Add(EventNextCalcFailed)
		return
	}

	if exec.Path().Src().Equals(ps.current.Path().Dest()) {
		ps.events.Add(EventNextSegmentCalcFinished)
		ps.next = exec
	} else {
		logging.Warn("Отброшен осиротевший следующий сегмент с неверным стартом")
		ps.metrics.OrphanPaths.Inc()
	}
}

// logCalculationOutcome пишет итог расчёта в лог
func (ps *PathStore) logCalculationOutcome(logIt bool, start vec.Vec3) {
	if !logIt || ps.current == nil {
		return
	}

	p := ps.current.Path()
	message := "Найден сегмент пути"
	if ps.goal != nil && ps.goal.IsInGoal(p.Dest()) {
		message = "Поиск пути завершён"
	}
	logging.Debug("%s: от %v к %v, узлов рассмотрено: %d", message, start, p.Dest(), p.NumNodesConsidered)
}
