// Package core реализует ядро навигации: арбитраж процессов, жизненный
// цикл путей и пошаговое исполнение с правилами безопасной отмены.
package core

import (
	"github.com/annel0/voxel-nav/internal/vec"
)

// TickPhase — фаза игрового тика
type TickPhase int

const (
	// TickIn — агент в мире, ядро работает
	TickIn TickPhase = iota

	// TickOut — агент вне мира (меню, телепорт), ядро сворачивается
	TickOut
)

// PlayerContext — что ядру нужно знать об агенте и мире
type PlayerContext interface {
	// PlayerFeet возвращает блок, в котором находятся ноги агента
	PlayerFeet() vec.Vec3

	// PlayerPosition возвращает непрерывную позицию агента
	PlayerPosition() vec.Vec3Float

	// PlayerOnGround сообщает, стоит ли агент на земле
	PlayerOnGround() bool

	// IsChunkLoaded сообщает, загружен ли чанк колонны (x, z)
	IsChunkLoaded(x, z int) bool

	// Disconnect отключает агента от мира
	Disconnect()
}

// InputSink — слой перехвата ввода, который ядро освобождает при отмене
type InputSink interface {
	// ClearAllKeys отпускает все удерживаемые клавиши
	ClearAllKeys()

	// StopBreakingBlock прерывает начатое разрушение блока
	StopBreakingBlock()
}

// Glider — подсистема полёта; к её флагу безопасности ядро обращается,
// когда активного пути нет
type Glider interface {
	// IsActive сообщает, управляет ли подсистема агентом сейчас
	IsActive() bool

	// IsSafeToCancel сообщает, можно ли сейчас прервать полёт
	IsSafeToCancel() bool
}

// agentView адаптирует PlayerContext к узкому интерфейсу исполнителя пути
type agentView struct {
	ctx PlayerContext
}

func (v agentView) Feet() vec.Vec3          { return v.ctx.PlayerFeet() }
func (v agentView) Position() vec.Vec3Float { return v.ctx.PlayerPosition() }
func (v agentView) OnGround() bool          { return v.ctx.PlayerOnGround() }
