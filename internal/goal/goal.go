// Package goal описывает цели навигации: предикат достижения плюс эвристика.
package goal

import (
	"github.com/annel0/voxel-nav/internal/vec"
)

// Goal представляет цель навигации
type Goal interface {
	// IsInGoal проверяет, удовлетворяет ли позиция цели
	IsInGoal(pos vec.Vec3) bool

	// Heuristic возвращает оценку стоимости пути от позиции до цели
	Heuristic(pos vec.Vec3) float64

	// HeuristicResidual возвращает остаточную стоимость в самой цели
	HeuristicResidual() float64

	// Equals проверяет равенство целей по значению
	Equals(other Goal) bool

	// String возвращает читаемое представление цели
	String() string
}

// RenderPosGoal — цель, привязанная к конкретному блоку мира.
// Такая цель может быть упрощена до GoalXZ, если её чанк не загружен.
type RenderPosGoal interface {
	Goal

	// GoalPos возвращает блок, к которому привязана цель
	GoalPos() vec.Vec3
}
