package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/vec"
)

// tickUntil гоняет тики, пока условие не выполнится или не выйдет лимит
func tickUntil(c *PathingCore, maxTicks int, each func(), cond func() bool) bool {
	for i := 0; i < maxTicks; i++ {
		c.Tick(TickIn)
		if each != nil {
			each()
		}
		if cond() {
			return true
		}
		time.Sleep(3 * time.Millisecond)
	}
	return false
}

// stepAlong телепортирует агента на следующий узел текущего пути
func stepAlong(c *PathingCore, player *testPlayer) {
	if exec := c.Store().CurrentPath(); exec != nil {
		if node, ok := exec.CurrentTarget(); ok {
			player.feet = node
		}
	}
}

func TestGoalAlreadyReached(t *testing.T) {
	c, player, _, recorder := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 0, Y: 64, Z: 0}
	proc := &stubProcess{
		name:    "goto",
		active:  true,
		command: &PathingCommand{Type: CommandSetGoalAndPath, Goal: goal.NewGoalBlock(player.feet)},
	}
	c.Arbiter().Register(proc)

	for i := 0; i < 5; i++ {
		c.Tick(TickIn)
	}

	assert.Empty(t, recorder.list(), "цель в текущем блоке не должна порождать событий")
	assert.False(t, c.HasActiveSearch(), "расчёт не должен запускаться")
	eta, ok := c.EstimatedTicksToGoal()
	require.True(t, ok)
	assert.Equal(t, 0.0, eta)
}

func TestInitialSearchSuccess(t *testing.T) {
	c, player, _, recorder := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 5, Y: 64, Z: 5}
	target := goal.NewGoalBlock(vec.Vec3{X: 10, Y: 64, Z: 5})
	proc := &stubProcess{
		name:    "goto",
		active:  true,
		command: &PathingCommand{Type: CommandSetGoalAndPath, Goal: target},
	}
	c.Arbiter().Register(proc)

	ok := tickUntil(c, 200, nil, func() bool {
		return recorder.has(EventCalcFinishedNowExecuting)
	})
	require.True(t, ok, "расчёт должен завершиться")

	events := recorder.list()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, EventCalcStarted, events[0])
	assert.Equal(t, EventCalcFinishedNowExecuting, events[1])

	current := c.Store().CurrentPath()
	require.NotNil(t, current)
	assert.True(t, current.Path().Src().Equals(vec.Vec3{X: 5, Y: 64, Z: 5}),
		"путь должен начинаться с ожидаемого старта")
}

func TestPlanAheadAndContinue(t *testing.T) {
	c, player, _, recorder := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 0, Y: 64, Z: 0}
	target := goal.NewGoalBlock(vec.Vec3{X: 12, Y: 64, Z: 0})
	proc := &stubProcess{
		name:    "goto",
		active:  true,
		command: &PathingCommand{Type: CommandSetGoalAndPath, Goal: target},
	}
	c.Arbiter().Register(proc)

	// Короткий сегмент, не доходящий до цели: ядро должно запланировать
	// следующий заранее
	installCurrent(c, player, straightSegment(0, 4, 64, 0, target))

	ok := tickUntil(c, 200, nil, func() bool {
		return recorder.has(EventNextSegmentCalcFinished)
	})
	require.True(t, ok, "следующий сегмент должен быть рассчитан")
	assert.True(t, recorder.has(EventNextSegmentCalcStarted))

	next := c.Store().NextPath()
	require.NotNil(t, next)
	assert.True(t, next.Path().Src().Equals(vec.Vec3{X: 4, Y: 64, Z: 0}),
		"следующий сегмент должен начинаться в конце текущего")

	// Ведём агента до конца текущего сегмента — ядро переключится
	ok = tickUntil(c, 300, func() { stepAlong(c, player) }, func() bool {
		return recorder.has(EventContinuingOntoPlannedNext)
	})
	require.True(t, ok, "ядро должно перейти на заготовленный сегмент")
	assert.Nil(t, c.Store().NextPath(), "после перехода заготовка пуста")

	// И в итоге дойдёт до цели
	ok = tickUntil(c, 300, func() { stepAlong(c, player) }, func() bool {
		return recorder.has(EventAtGoal)
	})
	require.True(t, ok, "агент должен дойти до цели")
	assert.Nil(t, c.Store().CurrentPath())
}

func TestPauseClearsState(t *testing.T) {
	c, player, input, _ := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 7, Y: 64, Z: 5}
	proc := &stubProcess{
		name:    "pause",
		active:  true,
		command: &PathingCommand{Type: CommandRequestPause},
	}
	c.Arbiter().Register(proc)

	segment := straightSegment(7, 12, 64, 5, nil)
	installCurrent(c, player, segment)

	// Расчёт, привязанный к концу текущего пути: тиковая валидация его
	// не трогает, а пауза обязана отменить
	search := &fakeSearcher{start: segment.Dest(), g: goal.NewGoalXZ(40, 5)}
	c.store.calcMu.Lock()
	c.store.activeSearch = search
	c.store.calcMu.Unlock()

	// Первый тик: пауза запрошена, но safeToCancel ещё не подтверждён
	c.Tick(TickIn)
	require.NotNil(t, c.Store().CurrentPath())

	// Второй тик: исполнитель подтвердил безопасность, пауза наступает
	c.Tick(TickIn)

	assert.Nil(t, c.Store().CurrentPath(), "пауза должна сбросить текущий путь")
	assert.Nil(t, c.Store().NextPath(), "пауза должна сбросить заготовку")
	assert.True(t, search.cancelled, "пауза должна отменить активный расчёт")
	assert.Nil(t, c.Store().ActiveSearch())

	expected, okStart := c.Store().ExpectedStart()
	require.True(t, okStart)
	assert.True(t, expected.Equals(vec.Vec3{X: 7, Y: 64, Z: 5}),
		"ожидаемый старт должен стать текущим блоком агента")

	assert.Greater(t, input.clears, 0, "перехват ввода должен быть освобождён")
	assert.Greater(t, input.stops, 0)
}

func TestValidateCancelsDetachedSearch(t *testing.T) {
	c, player, _, _ := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 0, Y: 64, Z: 0}
	proc := &stubProcess{
		name:    "hold",
		active:  true,
		command: &PathingCommand{Type: CommandRevalidateGoalAndPath, Goal: goal.NewGoalXZ(90, 90)},
	}
	c.Arbiter().Register(proc)

	// Расчёт, чей старт не связан ни с путём, ни с агентом, ни с ожидаемым стартом
	search := &fakeSearcher{start: vec.Vec3{X: 99, Y: 64, Z: 99}, g: goal.NewGoalXZ(90, 90)}
	c.store.calcMu.Lock()
	c.store.activeSearch = search
	c.store.calcMu.Unlock()

	c.Tick(TickIn)

	assert.True(t, search.cancelled, "оторванный расчёт должен быть отменён")
}

func TestValidateKeepsUsefulSearch(t *testing.T) {
	c, player, _, _ := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 3, Y: 64, Z: 3}
	proc := &stubProcess{
		name:    "hold",
		active:  true,
		command: &PathingCommand{Type: CommandRevalidateGoalAndPath, Goal: goal.NewGoalXZ(90, 90)},
	}
	c.Arbiter().Register(proc)

	// Старт расчёта совпадает с позицией агента — результат ещё пригоден
	search := &fakeSearcher{start: vec.Vec3{X: 3, Y: 64, Z: 3}, g: goal.NewGoalXZ(90, 90)}
	c.store.calcMu.Lock()
	c.store.activeSearch = search
	c.store.calcMu.Unlock()

	c.Tick(TickIn)

	assert.False(t, search.cancelled, "пригодный расчёт не должен отменяться")
}

func TestCancelSegmentClearsEverything(t *testing.T) {
	c, player, input, _ := newTestCore(64)
	defer c.Close()

	player.feet = vec.Vec3{X: 0, Y: 64, Z: 0}
	installCurrent(c, player, straightSegment(0, 5, 64, 0, nil))
	c.store.pathMu.Lock()
	c.store.next = c.store.newExecutor(straightSegment(5, 9, 64, 0, nil))
	c.store.pathMu.Unlock()

	c.cancelSegment()

	assert.Nil(t, c.Store().CurrentPath())
	assert.Nil(t, c.Store().NextPath())
	assert.Greater(t, input.clears, 0)

	events := c.queue.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventCanceled, events[0])
}

func TestIsSafeToCancelDelegatesToGlider(t *testing.T) {
	player := &testPlayer{feet: vec.Vec3{Y: 64}, ground: true}
	glider := &stubGlider{active: true, safe: false}
	c := newCoreWithGlider(player, glider)
	defer c.Close()

	assert.False(t, c.IsSafeToCancel(), "активный небезопасный полёт запрещает отмену")

	glider.safe = true
	assert.True(t, c.IsSafeToCancel())

	glider.active = false
	glider.safe = false
	assert.True(t, c.IsSafeToCancel(), "неактивный полёт не мешает отмене")
}

func TestEstimatedTicksToGoalExtrapolates(t *testing.T) {
	c, player, _, _ := newTestCore(64)
	defer c.Close()

	g := goal.NewGoalBlock(vec.Vec3{X: 10, Y: 64, Z: 0})
	c.SetGoal(g)

	start := vec.Vec3{X: 0, Y: 64, Z: 0}
	c.store.pathMu.Lock()
	c.resetETALocked(start)
	c.elapsedTicks = 10
	c.store.pathMu.Unlock()

	// Агент прошёл половину за 10 тиков — впереди ещё примерно столько же
	player.feet = vec.Vec3{X: 5, Y: 64, Z: 0}
	eta, ok := c.EstimatedTicksToGoal()
	require.True(t, ok)
	assert.InDelta(t, 10.0, eta, 0.01)

	// Без прогресса оценка не определена
	player.feet = start
	c.store.pathMu.Lock()
	c.elapsedTicks = 10
	c.initialPos = &start
	c.store.pathMu.Unlock()
	_, ok = c.EstimatedTicksToGoal()
	assert.False(t, ok)
}
