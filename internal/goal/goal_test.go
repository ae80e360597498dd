package goal

import (
	"testing"

	"github.com/annel0/voxel-nav/internal/vec"
)

func TestGoalBlock(t *testing.T) {
	g := NewGoalBlock(vec.Vec3{X: 10, Y: 64, Z: 5})

	if !g.IsInGoal(vec.Vec3{X: 10, Y: 64, Z: 5}) {
		t.Error("Ожидалось попадание в цель в её блоке")
	}
	if g.IsInGoal(vec.Vec3{X: 10, Y: 65, Z: 5}) {
		t.Error("Блок выше цели не должен удовлетворять цели")
	}
	if h := g.Heuristic(g.Pos); h != 0 {
		t.Errorf("Эвристика в цели должна быть 0, получено %f", h)
	}
	if g.Heuristic(vec.Vec3{X: 0, Y: 64, Z: 5}) <= 0 {
		t.Error("Эвристика вне цели должна быть положительной")
	}
}

func TestGoalBlockEquals(t *testing.T) {
	a := NewGoalBlock(vec.Vec3{X: 1, Y: 2, Z: 3})
	b := NewGoalBlock(vec.Vec3{X: 1, Y: 2, Z: 3})
	c := NewGoalBlock(vec.Vec3{X: 1, Y: 2, Z: 4})

	if !a.Equals(b) {
		t.Error("Ожидалось равенство одинаковых целей")
	}
	if a.Equals(c) {
		t.Error("Ожидалось неравенство разных целей")
	}
	if a.Equals(NewGoalXZ(1, 3)) {
		t.Error("Цели разных типов не должны быть равны")
	}
}

func TestGoalXZIgnoresHeight(t *testing.T) {
	g := NewGoalXZ(10, 5)

	if !g.IsInGoal(vec.Vec3{X: 10, Y: 1, Z: 5}) {
		t.Error("GoalXZ должна игнорировать высоту")
	}
	if !g.IsInGoal(vec.Vec3{X: 10, Y: 255, Z: 5}) {
		t.Error("GoalXZ должна игнорировать высоту")
	}
	if g.IsInGoal(vec.Vec3{X: 11, Y: 1, Z: 5}) {
		t.Error("Соседняя колонна не должна удовлетворять GoalXZ")
	}
}

func TestHorizontalCostDiagonal(t *testing.T) {
	// Чисто диагональное смещение дешевле манхэттенского
	diag := HorizontalCost(3, 3)
	manhattan := 6.0
	if diag >= manhattan {
		t.Errorf("Диагональная стоимость %f должна быть меньше %f", diag, manhattan)
	}

	straight := HorizontalCost(4, 0)
	if straight != 4 {
		t.Errorf("Прямое смещение должно стоить 4, получено %f", straight)
	}
}

func TestVerticalCostAsymmetric(t *testing.T) {
	up := VerticalCost(3)
	down := VerticalCost(-3)
	if up <= down {
		t.Errorf("Подъём (%f) должен быть дороже спуска (%f)", up, down)
	}
}
