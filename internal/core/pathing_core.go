package core

import (
	stdcontext "context"
	"math"
	"time"

	"github.com/annel0/voxel-nav/internal/calc"
	"github.com/annel0/voxel-nav/internal/config"
	"github.com/annel0/voxel-nav/internal/eventbus"
	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/annel0/voxel-nav/internal/observability"
	"github.com/annel0/voxel-nav/internal/path"
	"github.com/annel0/voxel-nav/internal/vec"
)

// PathingCore — тиковая машина состояний навигации. Владеет PathStore,
// резолвером старта и арбитром процессов; фоновые расчёты уходят в
// одиночный воркер и возвращают результат через PathStore.
type PathingCore struct {
	settings *config.Store
	ctx      PlayerContext
	world    calc.WorldView
	input    InputSink
	handler  EventHandler
	glider   Glider

	store    *PathStore
	resolver *StartResolver
	arbiter  *ControlArbiter

	queue   eventQueue
	metrics *observability.CoreMetrics

	// Снапшот настроек на текущий тик
	tickSettings config.Settings

	// Контекст следующего расчёта (от команды процесса либо стандартный)
	calcContext *calc.Context

	// Флаги тиковой машины; трогает только тик-поток
	safeToCancel        bool
	pauseRequested      bool
	pausedThisTick      bool
	wasUnpausedLastTick bool
	cancelRequested     bool
	calcFailedLastTick  bool

	// База оценки ETA; защищена store.pathMu
	elapsedTicks int
	initialPos   *vec.Vec3

	// Сквозной счётчик тиков для зеркала событий; трогает только тик-поток
	totalTicks uint64

	jobs chan func()
	quit chan struct{}
}

// NewPathingCore создаёт ядро навигации. glider может быть nil, если
// подсистема полёта отсутствует.
func NewPathingCore(settings *config.Store, ctx PlayerContext, world calc.WorldView, input InputSink, handler EventHandler, glider Glider) *PathingCore {
	c := &PathingCore{
		settings:     settings,
		ctx:          ctx,
		world:        world,
		input:        input,
		handler:      handler,
		glider:       glider,
		metrics:      observability.GetCoreMetrics(),
		tickSettings: settings.Snapshot(),
		jobs:         make(chan func(), 4),
		quit:         make(chan struct{}),
	}

	view := agentView{ctx: ctx}
	c.store = newPathStore(
		&c.queue,
		func(p *path.Path) *path.Executor { return path.NewExecutor(p, view) },
		c.resetETALocked,
	)
	c.resolver = NewStartResolver(ctx, world)
	c.arbiter = newControlArbiter(c)

	go c.worker()
	return c
}

// worker — одиночный исполнитель фоновых расчётов
func (c *PathingCore) worker() {
	for {
		select {
		case job := <-c.jobs:
			job()
		case <-c.quit:
			return
		}
	}
}

// Close останавливает воркер фоновых расчётов
func (c *PathingCore) Close() {
	close(c.quit)
}

// Arbiter возвращает арбитра процессов для регистрации
func (c *PathingCore) Arbiter() *ControlArbiter {
	return c.arbiter
}

// Store возвращает хранилище путей
func (c *PathingCore) Store() *PathStore {
	return c.store
}

// PathStart возвращает логический стартовый блок нового пути
func (c *PathingCore) PathStart() vec.Vec3 {
	return c.resolver.PathStart()
}

// queueEvent ставит событие в очередь; его заберёт ближайший дренаж
func (c *PathingCore) queueEvent(event PathEvent) {
	c.queue.Add(event)
}

// processPathEvents переносит накопленные события в обработчик игры
// и зеркалирует их во внешнюю шину
func (c *PathingCore) processPathEvents() {
	events := c.queue.Drain()

	failed := false
	for _, event := range events {
		if event == EventCalcFailed {
			failed = true
		}
	}
	c.calcFailedLastTick = failed

	for _, event := range events {
		c.handler.OnPathEvent(event)
		eventbus.PublishPathEvent(stdcontext.Background(), event.String(), c.totalTicks)
	}
}

// Tick продвигает ядро на один игровой тик
func (c *PathingCore) Tick(phase TickPhase) {
	c.totalTicks++
	c.processPathEvents()
	if phase == TickOut {
		c.cancelSegment()
		c.arbiter.TerminateAllProcesses()
		return
	}

	c.tickSettings = c.settings.Snapshot()
	c.store.SetExpectedStart(c.resolver.PathStart())
	c.arbiter.preTick()
	c.updatePath()

	c.store.pathMu.Lock()
	c.elapsedTicks++
	c.store.pathMu.Unlock()

	c.metrics.Ticks.Inc()
	c.processPathEvents()
	c.arbiter.postTick()
}

// updatePath — сердце тика: пауза, отмена, продвижение исполнителя,
// обработка завершения сегмента
func (c *PathingCore) updatePath() {
	c.pausedThisTick = false

	if c.cancelRequested {
		c.cancelRequested = false
		c.clearInputControls()
		return
	}

	if c.pauseRequested && c.safeToCancel {
		c.pauseRequested = false
		c.pausedThisTick = true
		if c.wasUnpausedLastTick {
			c.clearInputControls()
			c.store.HandlePauseResume(c.ctx.PlayerFeet())
		}
		c.wasUnpausedLastTick = false
		return
	}

	c.wasUnpausedLastTick = true

	c.store.pathMu.Lock()
	defer c.store.pathMu.Unlock()

	c.validateActiveSearch()
	if c.store.current == nil {
		return
	}
	c.safeToCancel = c.store.current.Tick()
	c.dispatchCompletion()
}

// clearInputControls освобождает перехват ввода
func (c *PathingCore) clearInputControls() {
	c.input.ClearAllKeys()
	c.input.StopBreakingBlock()
}

// validateActiveSearch отменяет расчёт, чей старт потерял связь и с текущим
// путём, и с позицией агента, и с ожидаемым стартом — его результат уже
// некуда привить. Вызывается под pathMu.
func (c *PathingCore) validateActiveSearch() {
	c.store.calcMu.Lock()
	search := c.store.activeSearch
	c.store.calcMu.Unlock()
	if search == nil {
		return
	}

	searchStart := search.Start()
	feet := c.ctx.PlayerFeet()

	detachedFromCurrent := c.store.current == nil || !c.store.current.Path().Dest().Equals(searchStart)
	if !detachedFromCurrent {
		return
	}
	if searchStart.Equals(feet) {
		return
	}
	if c.store.hasExpectedStart && searchStart.Equals(c.store.expectedStart) {
		return
	}
	if best, ok := search.BestSoFar(); ok {
		if best.Contains(feet) {
			return
		}
		if c.store.hasExpectedStart && best.Contains(c.store.expectedStart) {
			return
		}
	}

	search.Cancel()
}

// dispatchCompletion выбирает реакцию на состояние текущего сегмента.
// Вызывается под pathMu; current != nil.
func (c *PathingCore) dispatchCompletion() {
	cur := c.store.current
	if !cur.Failed() && !cur.Finished() {
		c.handleOngoing()
		return
	}

	if c.store.goal == nil || c.store.goal.IsInGoal(c.ctx.PlayerFeet()) {
		c.reachedGoal()
		return
	}

	if c.store.next != nil && !c.nextIsValid() {
		logging.Debug("Следующий сегмент не содержит текущую позицию, отброшен")
		c.queueEvent(EventDiscardNext)
		c.store.next = nil
	}

	if c.store.next != nil {
		c.continueToNext()
		return
	}

	c.calculateNewPath()
}

// nextIsValid проверяет, что заготовленный сегмент достижим: он содержит
// позицию агента либо ожидаемый старт
func (c *PathingCore) nextIsValid() bool {
	p := c.store.next.Path()
	if p.Contains(c.ctx.PlayerFeet()) {
		return true
	}
	return c.store.hasExpectedStart && p.Contains(c.store.expectedStart)
}

// reachedGoal завершает путь у цели
func (c *PathingCore) reachedGoal() {
	logging.Debug("Готово. Цель: %v", c.store.goal)
	c.queueEvent(EventAtGoal)
	c.store.next = nil
	c.store.current = nil
	c.clearInputControls()
	if c.tickSettings.DisconnectOnArrival {
		c.ctx.Disconnect()
	}
}

// continueToNext переводит заготовленный сегмент в текущий
func (c *PathingCore) continueToNext() {
	logging.Debug("Продолжаем по заготовленному сегменту")
	c.queueEvent(EventContinuingOntoPlannedNext)
	c.store.current = c.store.next
	c.store.next = nil
	c.store.current.Tick()
}

// calculateNewPath запускает первичный расчёт после завершения сегмента
func (c *PathingCore) calculateNewPath() {
	c.store.calcMu.Lock()
	defer c.store.calcMu.Unlock()

	if c.store.activeSearch != nil {
		c.queueEvent(EventPathFinishedNextStillCalculating)
		return
	}
	c.queueEvent(EventCalcStarted)
	c.findPathThreadedLocked(c.store.expectedStart, true, true)
}

// handleOngoing сопровождает исполняемый сегмент: ранний переход, склейка,
// избавление от дубля, планирование наперёд
func (c *PathingCore) handleOngoing() {
	if c.safeToCancel && c.store.next != nil && c.store.next.BeginFromCurrent() {
		logging.Debug("Ранний переход на следующий сегмент...")
		c.queueEvent(EventSplicingOntoNextEarly)
		c.store.current = c.store.next
		c.store.next = nil
		c.store.current.Tick()
		return
	}

	if c.tickSettings.SplicePath {
		c.store.current = c.store.current.TrySplice(c.store.next)
	}

	if c.store.next != nil && c.store.current.Path().Dest().Equals(c.store.next.Path().Dest()) {
		c.store.next = nil
	}

	c.planAhead()
}

// planAhead запускает расчёт следующего сегмента, когда текущий почти
// закончился, а цель ещё не достигнута
func (c *PathingCore) planAhead() {
	c.store.calcMu.Lock()
	defer c.store.calcMu.Unlock()

	if c.store.activeSearch != nil || c.store.next != nil || c.store.goal == nil {
		return
	}
	if c.store.goal.IsInGoal(c.store.current.Path().Dest()) {
		return
	}
	if c.store.current.TicksRemaining() >= float64(c.tickSettings.PlanningTickLookahead) {
		return
	}

	logging.Debug("Сегмент почти закончен. Планируем наперёд...")
	c.queueEvent(EventNextSegmentCalcStarted)
	c.findPathThreadedLocked(c.store.current.Path().Dest(), false, false)
}

// findPathThreadedLocked создаёт расчёт и отдаёт его воркеру.
// primary выбирает пару таймаутов: первичный расчёт против плана наперёд.
// Вызывается под pathMu и calcMu.
func (c *PathingCore) findPathThreadedLocked(start vec.Vec3, primary, logIt bool) {
	g := c.store.goal
	if g == nil {
		logging.Debug("Цель не задана")
		return
	}

	var primaryMS, failureMS int64
	if primary {
		primaryMS = c.tickSettings.PrimaryTimeoutMS
		failureMS = c.tickSettings.FailureTimeoutMS
	} else {
		primaryMS = c.tickSettings.PlanAheadPrimaryTimeoutMS
		failureMS = c.tickSettings.PlanAheadFailureTimeoutMS
	}

	var previous *path.Path
	if c.store.current != nil {
		previous = c.store.current.Path()
	}

	calcCtx := c.calcContext
	if calcCtx == nil {
		calcCtx = calc.NewContext(c.world, true)
	}

	searcher := c.createSearcher(start, g, previous, calcCtx)
	if !searcher.Goal().Equals(g) {
		logging.Debug("Цель %v упрощена до %v: её чанк не загружен", g, searcher.Goal())
	}

	c.store.startNewCalculation(searcher, calcCtx, start)

	kind := "initial"
	if !primary {
		kind = "plan_ahead"
	}
	c.metrics.SearchesStarted.WithLabelValues(kind).Inc()

	primaryTimeout := time.Duration(primaryMS) * time.Millisecond
	failureTimeout := time.Duration(failureMS) * time.Millisecond

	c.jobs <- func() {
		_, span := observability.StartSearchSpan(stdcontext.Background(), !primary)
		defer span.End()

		if logIt {
			logging.Debug("Начинаем поиск пути от %v к %v", start, g)
		}
		result := searcher.Calculate(primaryTimeout, failureTimeout)
		c.store.completeCalculation(result, start, logIt)
	}
}

// createSearcher строит расчёт, упрощая блочную цель до GoalXZ,
// если её чанк не загружен
func (c *PathingCore) createSearcher(start vec.Vec3, g goal.Goal, previous *path.Path, calcCtx *calc.Context) calc.Searcher {
	transformed := g
	if c.tickSettings.SimplifyUnloadedY {
		if rg, ok := g.(goal.RenderPosGoal); ok {
			pos := rg.GoalPos()
			if !c.ctx.IsChunkLoaded(pos.X, pos.Z) {
				transformed = goal.NewGoalXZ(pos.X, pos.Z)
			}
		}
	}
	return calc.NewAStar(start, transformed, previous, calcCtx)
}

// SetGoal устанавливает цель без запуска расчёта
func (c *PathingCore) SetGoal(g goal.Goal) {
	c.store.pathMu.Lock()
	c.store.goal = g
	c.store.pathMu.Unlock()
}

// SetGoalAndPath устанавливает цель и запускает первичный расчёт,
// если путь ещё не исполняется и расчёта нет
func (c *PathingCore) SetGoalAndPath(command *PathingCommand) {
	c.store.pathMu.Lock()
	defer c.store.pathMu.Unlock()

	c.store.goal = command.Goal
	if command.Context != nil {
		c.calcContext = command.Context
	} else {
		c.calcContext = calc.NewContext(c.world, true)
	}

	if c.store.goal == nil {
		return
	}

	feet := c.ctx.PlayerFeet()
	if !c.store.hasExpectedStart {
		c.store.expectedStart = feet
		c.store.hasExpectedStart = true
	}
	if c.store.goal.IsInGoal(feet) || c.store.goal.IsInGoal(c.store.expectedStart) {
		return
	}
	if c.store.current != nil {
		return
	}

	c.store.calcMu.Lock()
	defer c.store.calcMu.Unlock()
	if c.store.activeSearch != nil {
		return
	}
	c.queueEvent(EventCalcStarted)
	c.findPathThreadedLocked(c.store.expectedStart, true, true)
}

// RequestPause запрашивает паузу; она наступит, когда отмена станет безопасной
func (c *PathingCore) RequestPause() {
	c.pauseRequested = true
}

// IsPathing сообщает, исполняется ли путь прямо сейчас (и не на паузе)
func (c *PathingCore) IsPathing() bool {
	return c.store.CurrentPath() != nil && !c.pausedThisTick
}

// HasActiveSearch сообщает, идёт ли фоновый расчёт
func (c *PathingCore) HasActiveSearch() bool {
	return c.store.ActiveSearch() != nil
}

// CalcFailedLastTick сообщает, провалился ли расчёт в прошлом тике
func (c *PathingCore) CalcFailedLastTick() bool {
	return c.calcFailedLastTick
}

// IsSafeToCancel сообщает, безопасно ли сейчас бросить текущий сегмент.
// Без активного пути слово за подсистемой полёта.
func (c *PathingCore) IsSafeToCancel() bool {
	c.store.pathMu.Lock()
	defer c.store.pathMu.Unlock()
	return c.isSafeToCancelLocked()
}

// isSafeToCancelLocked — вариант для вызова под pathMu
func (c *PathingCore) isSafeToCancelLocked() bool {
	if c.store.current == nil {
		if c.glider == nil {
			return true
		}
		return !c.glider.IsActive() || c.glider.IsSafeToCancel()
	}
	return c.safeToCancel
}

// CancelSegmentIfSafe отменяет текущий сегмент, если это безопасно
func (c *PathingCore) CancelSegmentIfSafe() {
	if c.IsSafeToCancel() {
		c.cancelSegment()
	}
}

// cancelSegment — безусловная отмена сегмента: события, сброс путей,
// освобождение ввода
func (c *PathingCore) cancelSegment() {
	c.queueEvent(EventCanceled)

	c.store.pathMu.Lock()
	defer c.store.pathMu.Unlock()

	c.store.calcMu.Lock()
	if c.store.activeSearch != nil {
		c.store.activeSearch.Cancel()
	}
	c.store.calcMu.Unlock()

	if c.store.current != nil {
		c.store.current = nil
		c.clearInputControls()
	}
	c.store.next = nil
}

// SoftCancelIfSafe отменяет наш активный расчёт и, если безопасно,
// сбрасывает пути; освобождение ввода произойдёт в следующем тике
func (c *PathingCore) SoftCancelIfSafe() {
	c.store.pathMu.Lock()

	c.store.calcMu.Lock()
	if c.store.activeSearch != nil {
		c.store.activeSearch.Cancel() // отменяем только свой расчёт
	}
	c.store.calcMu.Unlock()

	if !c.isSafeToCancelLocked() {
		c.store.pathMu.Unlock()
		return
	}
	c.store.current = nil
	c.store.next = nil
	c.store.pathMu.Unlock()

	c.cancelRequested = true
}

// Terminate безопасно отменяет сегмент и завершает все процессы
func (c *PathingCore) Terminate() {
	if c.IsSafeToCancel() {
		c.cancelSegment()
	}
	c.arbiter.TerminateAllProcesses()
}

// ForceCancel — полный сброс независимо от безопасности
func (c *PathingCore) ForceCancel() {
	c.Terminate()
	c.cancelSegment()
	c.store.calcMu.Lock()
	c.store.activeSearch = nil
	c.store.calcMu.Unlock()
}

// resetETALocked сбрасывает базу оценки времени до цели.
// Вызывается под pathMu.
func (c *PathingCore) resetETALocked(start vec.Vec3) {
	c.elapsedTicks = 0
	c.initialPos = &start
}

// EstimatedTicksToGoal оценивает, сколько тиков осталось до цели,
// экстраполируя прогресс эвристики. Второй результат ложен, когда
// оценка не определена.
func (c *PathingCore) EstimatedTicksToGoal() (float64, bool) {
	feet := c.ctx.PlayerFeet()

	c.store.pathMu.Lock()
	defer c.store.pathMu.Unlock()

	g := c.store.goal
	if g == nil {
		return 0, false
	}
	if g.IsInGoal(feet) {
		if c.store.hasExpectedStart {
			c.resetETALocked(c.store.expectedStart)
		} else {
			c.resetETALocked(feet)
		}
		return 0, true
	}
	if c.initialPos == nil || c.elapsedTicks == 0 {
		return 0, false
	}

	current := g.Heuristic(feet)
	start := g.Heuristic(*c.initialPos)
	if current == start {
		return 0, false
	}

	eta := math.Abs(current-g.HeuristicResidual()) * float64(c.elapsedTicks) / math.Abs(start-current)
	return eta, true
}
