// Package calc содержит асинхронный расчёт пути и его контекст.
package calc

import "github.com/annel0/voxel-nav/internal/vec"

// WorldView — что нужно расчёту пути от мира
type WorldView interface {
	// CanWalkOn сообщает, можно ли стоять на блоке
	CanWalkOn(pos vec.Vec3) bool

	// CanWalkThrough сообщает, можно ли пройти сквозь блок
	CanWalkThrough(pos vec.Vec3) bool

	// CanStandAt сообщает, может ли агент занять блок
	CanStandAt(pos vec.Vec3) bool

	// IsChunkLoaded сообщает, загружен ли чанк колонны (x, z)
	IsChunkLoaded(x, z int) bool
}

// Context — снапшот окружения для одного расчёта пути.
// Только контексты с SafeForThreadedUse можно передавать фоновому расчёту.
type Context struct {
	World              WorldView
	SafeForThreadedUse bool
}

// NewContext создаёт контекст расчёта поверх указанного мира
func NewContext(world WorldView, safeForThreadedUse bool) *Context {
	return &Context{
		World:              world,
		SafeForThreadedUse: safeForThreadedUse,
	}
}
