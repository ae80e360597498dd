package goal

import (
	"fmt"

	"github.com/annel0/voxel-nav/internal/vec"
)

// GoalXZ — цель "достичь колонны (X, Z)" без учёта высоты.
// До неё упрощаются блочные цели, чанк которых не загружен.
type GoalXZ struct {
	X int
	Z int
}

// NewGoalXZ создаёт цель достижения колонны
func NewGoalXZ(x, z int) GoalXZ {
	return GoalXZ{X: x, Z: z}
}

// IsInGoal проверяет, находится ли позиция в целевой колонне
func (g GoalXZ) IsInGoal(pos vec.Vec3) bool {
	return pos.X == g.X && pos.Z == g.Z
}

// Heuristic возвращает горизонтальную оценку стоимости
func (g GoalXZ) Heuristic(pos vec.Vec3) float64 {
	return HorizontalCost(float64(pos.X-g.X), float64(pos.Z-g.Z))
}

// HeuristicResidual возвращает остаточную стоимость в цели
func (g GoalXZ) HeuristicResidual() float64 {
	return 0
}

// Equals проверяет равенство целей
func (g GoalXZ) Equals(other Goal) bool {
	o, ok := other.(GoalXZ)
	return ok && g.X == o.X && g.Z == o.Z
}

// String возвращает читаемое представление цели
func (g GoalXZ) String() string {
	return fmt.Sprintf("GoalXZ{x=%d, z=%d}", g.X, g.Z)
}
