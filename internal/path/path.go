// Package path содержит геометрический путь и его исполнителя.
package path

import (
	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/vec"
)

// Path представляет конечную последовательность блоков от старта к цели
type Path struct {
	Positions          []vec.Vec3 // Узлы пути, от старта к концу
	Goal               goal.Goal  // Цель, ради которой путь был рассчитан
	NumNodesConsidered int        // Сколько узлов рассмотрел поиск
}

// Src возвращает первый блок пути
func (p *Path) Src() vec.Vec3 {
	return p.Positions[0]
}

// Dest возвращает последний блок пути
func (p *Path) Dest() vec.Vec3 {
	return p.Positions[len(p.Positions)-1]
}

// Length возвращает число узлов пути
func (p *Path) Length() int {
	return len(p.Positions)
}

// Contains проверяет, содержит ли путь указанный блок
func (p *Path) Contains(pos vec.Vec3) bool {
	return p.IndexOf(pos) >= 0
}

// IndexOf возвращает индекс первого вхождения блока в путь или -1
func (p *Path) IndexOf(pos vec.Vec3) int {
	for i, node := range p.Positions {
		if node.Equals(pos) {
			return i
		}
	}
	return -1
}
