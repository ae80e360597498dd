package path

import (
	"testing"

	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/vec"
)

// fakeAgent — управляемый из теста агент
type fakeAgent struct {
	feet     vec.Vec3
	onGround bool
}

func (f *fakeAgent) Feet() vec.Vec3 { return f.feet }
func (f *fakeAgent) Position() vec.Vec3Float {
	return vec.Vec3Float{X: float64(f.feet.X) + 0.5, Y: float64(f.feet.Y), Z: float64(f.feet.Z) + 0.5}
}
func (f *fakeAgent) OnGround() bool { return f.onGround }

func (f *fakeAgent) moveTo(pos vec.Vec3) { f.feet = pos }

// straightPath строит путь по оси X на указанной высоте
func straightPath(fromX, toX, y, z int, g goal.Goal) *Path {
	positions := make([]vec.Vec3, 0, toX-fromX+1)
	for x := fromX; x <= toX; x++ {
		positions = append(positions, vec.Vec3{X: x, Y: y, Z: z})
	}
	return &Path{Positions: positions, Goal: g}
}

func TestExecutorWalksToFinish(t *testing.T) {
	p := straightPath(0, 4, 64, 0, goal.NewGoalBlock(vec.Vec3{X: 4, Y: 64, Z: 0}))
	agent := &fakeAgent{feet: p.Src(), onGround: true}
	exec := NewExecutor(p, agent)

	for x := 0; x <= 4; x++ {
		agent.moveTo(vec.Vec3{X: x, Y: 64, Z: 0})
		safe := exec.Tick()
		if !safe {
			t.Fatalf("Отмена должна быть безопасной на земле (узел %d)", x)
		}
		if exec.Failed() {
			t.Fatalf("Сегмент не должен проваливаться на узле %d", x)
		}
	}

	if !exec.Finished() {
		t.Error("Сегмент должен завершиться в последнем узле")
	}
	if exec.Failed() {
		t.Error("Завершённый сегмент не может быть провален")
	}
}

func TestExecutorFailsWhenStrayed(t *testing.T) {
	p := straightPath(0, 10, 64, 0, nil)
	agent := &fakeAgent{feet: p.Src(), onGround: true}
	exec := NewExecutor(p, agent)

	exec.Tick()
	agent.moveTo(vec.Vec3{X: 50, Y: 64, Z: 50})
	exec.Tick()

	if !exec.Failed() {
		t.Error("Сегмент должен проваливаться, когда агент далеко от пути")
	}
	if exec.Finished() {
		t.Error("Провалившийся сегмент не может быть завершён")
	}
}

func TestExecutorSprintsOnStraight(t *testing.T) {
	p := straightPath(0, 10, 64, 0, nil)
	agent := &fakeAgent{feet: p.Src(), onGround: true}
	exec := NewExecutor(p, agent)

	exec.Tick()
	if !exec.Sprinting() {
		t.Error("На длинной прямой агент должен бежать")
	}
}

func TestTrySpliceGrafts(t *testing.T) {
	current := NewExecutor(straightPath(0, 5, 64, 0, nil), &fakeAgent{onGround: true})

	// Следующий сегмент начинается в середине текущего
	next := NewExecutor(&Path{Positions: []vec.Vec3{
		{X: 3, Y: 64, Z: 0},
		{X: 3, Y: 64, Z: 1},
		{X: 3, Y: 64, Z: 2},
	}}, &fakeAgent{onGround: true})

	spliced := current.TrySplice(next)
	if spliced == current {
		t.Fatal("Склейка должна была произойти")
	}

	p := spliced.Path()
	expectedDest := vec.Vec3{X: 3, Y: 64, Z: 2}
	if !p.Dest().Equals(expectedDest) {
		t.Errorf("Ожидался конец %v, получен %v", expectedDest, p.Dest())
	}
	if !p.Src().Equals(vec.Vec3{X: 0, Y: 64, Z: 0}) {
		t.Errorf("Начало склеенного пути должно сохраниться, получено %v", p.Src())
	}
	// Узлы до прививки + узлы следующего сегмента
	if p.Length() != 3+3 {
		t.Errorf("Ожидалось 6 узлов, получено %d", p.Length())
	}
}

func TestTrySpliceIdempotent(t *testing.T) {
	current := NewExecutor(straightPath(0, 5, 64, 0, nil), &fakeAgent{onGround: true})

	if got := current.TrySplice(nil); got != current {
		t.Error("TrySplice(nil) должен вернуть исходного исполнителя")
	}

	// Сегмент, не касающийся текущего пути
	detached := NewExecutor(straightPath(20, 25, 64, 0, nil), &fakeAgent{onGround: true})
	if got := current.TrySplice(detached); got != current {
		t.Error("Несвязанный сегмент не должен склеиваться")
	}
}

func TestBeginFromCurrent(t *testing.T) {
	agent := &fakeAgent{feet: vec.Vec3{X: 3, Y: 64, Z: 0}, onGround: true}
	exec := NewExecutor(straightPath(0, 5, 64, 0, nil), agent)

	if !exec.BeginFromCurrent() {
		t.Fatal("Агент стоит на пути — вход должен удаться")
	}
	if target, ok := exec.CurrentTarget(); !ok || !target.Equals(vec.Vec3{X: 4, Y: 64, Z: 0}) {
		t.Errorf("После входа следующий узел должен быть (4,64,0), получен %v", target)
	}

	agent.moveTo(vec.Vec3{X: 50, Y: 64, Z: 0})
	if exec.BeginFromCurrent() {
		t.Error("Вне пути вход должен провалиться")
	}
}

func TestTicksRemaining(t *testing.T) {
	agent := &fakeAgent{feet: vec.Vec3{X: 0, Y: 64, Z: 0}, onGround: true}
	exec := NewExecutor(straightPath(0, 5, 64, 0, nil), agent)

	full := exec.TicksRemaining()
	if full <= 0 {
		t.Fatal("На свежем сегменте оценка должна быть положительной")
	}

	// После продвижения по пути оценка уменьшается
	agent.moveTo(vec.Vec3{X: 3, Y: 64, Z: 0})
	exec.Tick()
	if exec.TicksRemaining() >= full {
		t.Error("Оценка должна уменьшаться по мере продвижения")
	}
}
