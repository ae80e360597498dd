package core

import (
	"sync"
	"time"

	"github.com/annel0/voxel-nav/internal/calc"
	"github.com/annel0/voxel-nav/internal/config"
	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/path"
	"github.com/annel0/voxel-nav/internal/vec"
)

// flatTestWorld — бесконечная равнина с поверхностью на высоте height
type flatTestWorld struct {
	height int
}

func (w flatTestWorld) CanWalkOn(p vec.Vec3) bool      { return p.Y < w.height }
func (w flatTestWorld) CanWalkThrough(p vec.Vec3) bool { return p.Y >= w.height }
func (w flatTestWorld) CanStandAt(p vec.Vec3) bool {
	return w.CanWalkOn(p.Below()) && w.CanWalkThrough(p) && w.CanWalkThrough(p.Above())
}
func (w flatTestWorld) IsChunkLoaded(x, z int) bool { return true }

// testPlayer — управляемый из теста агент
type testPlayer struct {
	feet         vec.Vec3
	ground       bool
	disconnected bool
}

func (p *testPlayer) PlayerFeet() vec.Vec3 { return p.feet }
func (p *testPlayer) PlayerPosition() vec.Vec3Float {
	return vec.Vec3Float{X: float64(p.feet.X) + 0.5, Y: float64(p.feet.Y), Z: float64(p.feet.Z) + 0.5}
}
func (p *testPlayer) PlayerOnGround() bool        { return p.ground }
func (p *testPlayer) IsChunkLoaded(x, z int) bool { return true }
func (p *testPlayer) Disconnect()                 { p.disconnected = true }

// testInput считает освобождения перехвата ввода
type testInput struct {
	clears int
	stops  int
}

func (i *testInput) ClearAllKeys()      { i.clears++ }
func (i *testInput) StopBreakingBlock() { i.stops++ }

// eventRecorder запоминает события в порядке доставки
type eventRecorder struct {
	mu     sync.Mutex
	events []PathEvent
}

func (r *eventRecorder) OnPathEvent(event PathEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *eventRecorder) list() []PathEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PathEvent(nil), r.events...)
}

func (r *eventRecorder) has(event PathEvent) bool {
	for _, e := range r.list() {
		if e == event {
			return true
		}
	}
	return false
}

// stubProcess — процесс с фиксированной командой
type stubProcess struct {
	name      string
	active    bool
	temporary bool
	priority  float64
	command   *PathingCommand
	released  int
}

func (p *stubProcess) IsActive() bool      { return p.active }
func (p *stubProcess) IsTemporary() bool   { return p.temporary }
func (p *stubProcess) Priority() float64   { return p.priority }
func (p *stubProcess) Release()            { p.released++ }
func (p *stubProcess) DisplayName() string { return p.name }

func (p *stubProcess) OnTick(calcFailedLastTick, safeToCancel bool) *PathingCommand {
	return p.command
}

// fakeSearcher — подменный расчёт для проверки правил отмены
type fakeSearcher struct {
	start     vec.Vec3
	g         goal.Goal
	best      *path.Path
	cancelled bool
}

func (f *fakeSearcher) Start() vec.Vec3 { return f.start }
func (f *fakeSearcher) Goal() goal.Goal { return f.g }
func (f *fakeSearcher) BestSoFar() (*path.Path, bool) {
	return f.best, f.best != nil
}
func (f *fakeSearcher) Calculate(primary, failure time.Duration) calc.Result {
	return calc.Result{Type: calc.ResultCancellation}
}
func (f *fakeSearcher) Cancel() { f.cancelled = true }

// stubGlider — подменная подсистема полёта
type stubGlider struct {
	active bool
	safe   bool
}

func (g *stubGlider) IsActive() bool       { return g.active }
func (g *stubGlider) IsSafeToCancel() bool { return g.safe }

// newCoreWithGlider собирает ядро с подсистемой полёта
func newCoreWithGlider(player *testPlayer, glider Glider) *PathingCore {
	settings := config.NewStore(config.Defaults())
	return NewPathingCore(settings, player, flatTestWorld{height: 64}, &testInput{}, &eventRecorder{}, glider)
}

// newTestCore собирает ядро на плоском мире
func newTestCore(height int) (*PathingCore, *testPlayer, *testInput, *eventRecorder) {
	player := &testPlayer{feet: vec.Vec3{X: 0, Y: height, Z: 0}, ground: true}
	input := &testInput{}
	recorder := &eventRecorder{}
	settings := config.NewStore(config.Defaults())
	c := NewPathingCore(settings, player, flatTestWorld{height: height}, input, recorder, nil)
	return c, player, input, recorder
}

// straightSegment строит путь по оси X на указанной высоте
func straightSegment(fromX, toX, y, z int, g goal.Goal) *path.Path {
	positions := make([]vec.Vec3, 0, toX-fromX+1)
	for x := fromX; x <= toX; x++ {
		positions = append(positions, vec.Vec3{X: x, Y: y, Z: z})
	}
	return &path.Path{Positions: positions, Goal: g}
}

// installCurrent ставит исполняемый сегмент в обход расчёта
func installCurrent(c *PathingCore, player *testPlayer, p *path.Path) *path.Executor {
	exec := path.NewExecutor(p, agentView{ctx: player})
	c.store.pathMu.Lock()
	c.store.current = exec
	c.store.pathMu.Unlock()
	return exec
}
