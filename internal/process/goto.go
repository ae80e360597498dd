// Package process содержит процессы-клиенты ядра навигации.
package process

import (
	"github.com/annel0/voxel-nav/internal/core"
	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/logging"
)

// GoTo — простейший процесс: вести агента к заданной цели, пока она
// не достигнута или расчёт не провалился
type GoTo struct {
	ctx  core.PlayerContext
	goal goal.Goal
}

// NewGoTo создаёт процесс навигации к цели
func NewGoTo(ctx core.PlayerContext) *GoTo {
	return &GoTo{ctx: ctx}
}

// SetGoal задаёт цель и активирует процесс
func (p *GoTo) SetGoal(g goal.Goal) {
	p.goal = g
}

// IsActive сообщает, есть ли у процесса цель
func (p *GoTo) IsActive() bool {
	return p.goal != nil
}

// IsTemporary — GoTo владеет путём постоянно
func (p *GoTo) IsTemporary() bool {
	return false
}

// Priority возвращает базовый приоритет
func (p *GoTo) Priority() float64 {
	return 0
}

// OnTick выдаёт команду навигации к цели
func (p *GoTo) OnTick(calcFailedLastTick, safeToCancel bool) *core.PathingCommand {
	if calcFailedLastTick {
		logging.Info("Расчёт пути к %v не удался, процесс останавливается", p.goal)
		p.goal = nil
		return &core.PathingCommand{Type: core.CommandCancelAndSetGoal}
	}

	if p.goal.IsInGoal(p.ctx.PlayerFeet()) {
		logging.Info("Цель %v достигнута", p.goal)
		p.goal = nil
		return &core.PathingCommand{Type: core.CommandCancelAndSetGoal}
	}

	return &core.PathingCommand{Type: core.CommandSetGoalAndPath, Goal: p.goal}
}

// Release сбрасывает цель
func (p *GoTo) Release() {
	p.goal = nil
}

// DisplayName возвращает имя процесса
func (p *GoTo) DisplayName() string {
	return "GoTo"
}
