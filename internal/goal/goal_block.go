package goal

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-nav/internal/vec"
)

// GoalBlock — цель "встать в конкретный блок"
type GoalBlock struct {
	Pos vec.Vec3
}

// NewGoalBlock создаёт цель достижения указанного блока
func NewGoalBlock(pos vec.Vec3) GoalBlock {
	return GoalBlock{Pos: pos}
}

// IsInGoal проверяет, совпадает ли позиция с целевым блоком
func (g GoalBlock) IsInGoal(pos vec.Vec3) bool {
	return pos.Equals(g.Pos)
}

// Heuristic возвращает оценку стоимости: горизонтальная диагональная
// метрика плюс штраф за перепад высоты
func (g GoalBlock) Heuristic(pos vec.Vec3) float64 {
	dx := float64(pos.X - g.Pos.X)
	dz := float64(pos.Z - g.Pos.Z)
	dy := float64(g.Pos.Y - pos.Y) // Положительный — цель выше агента
	return HorizontalCost(dx, dz) + VerticalCost(dy)
}

// HeuristicResidual возвращает остаточную стоимость в цели
func (g GoalBlock) HeuristicResidual() float64 {
	return 0
}

// GoalPos возвращает целевой блок
func (g GoalBlock) GoalPos() vec.Vec3 {
	return g.Pos
}

// Equals проверяет равенство целей
func (g GoalBlock) Equals(other Goal) bool {
	o, ok := other.(GoalBlock)
	return ok && g.Pos.Equals(o.Pos)
}

// String возвращает читаемое представление цели
func (g GoalBlock) String() string {
	return fmt.Sprintf("GoalBlock{x=%d, y=%d, z=%d}", g.Pos.X, g.Pos.Y, g.Pos.Z)
}

// HorizontalCost возвращает стоимость горизонтального перемещения на (dx, dz)
// при движении по сетке с диагоналями
func HorizontalCost(dx, dz float64) float64 {
	dx = math.Abs(dx)
	dz = math.Abs(dz)
	straight := math.Abs(dx - dz)
	diagonal := math.Min(dx, dz)
	return straight + diagonal*math.Sqrt2
}

// VerticalCost возвращает стоимость перепада высоты dy
// (спуск дешевле подъёма)
func VerticalCost(dy float64) float64 {
	if dy > 0 {
		return dy * 2 // подъём: прыжок на каждый блок
	}
	return -dy // спуск: падение
}
