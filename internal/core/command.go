package core

import (
	"github.com/annel0/voxel-nav/internal/calc"
	"github.com/annel0/voxel-nav/internal/goal"
)

// PathingCommandType — тип команды процесса ядру
type PathingCommandType int

const (
	// CommandSetGoalAndPath — установить цель и при необходимости начать расчёт
	CommandSetGoalAndPath PathingCommandType = iota

	// CommandSetGoalAndPause — установить цель и запросить паузу
	CommandSetGoalAndPause

	// CommandRequestPause — запросить паузу; выполняется, когда отмена безопасна
	CommandRequestPause

	// CommandCancelAndSetGoal — установить цель и отменить текущий сегмент,
	// если это безопасно
	CommandCancelAndSetGoal

	// CommandRevalidateGoalAndPath — установить цель и в конце тика мягко
	// отменить путь, если его конец перестал удовлетворять цели (управляется
	// настройкой cancel_on_goal_invalidation)
	CommandRevalidateGoalAndPath

	// CommandForceRevalidateGoalAndPath — то же, но отмена безусловная
	CommandForceRevalidateGoalAndPath

	// CommandDefer — пропустить этот процесс, дать слово следующему
	CommandDefer
)

// String возвращает каноническое имя типа команды
func (t PathingCommandType) String() string {
	switch t {
	case CommandSetGoalAndPath:
		return "SET_GOAL_AND_PATH"
	case CommandSetGoalAndPause:
		return "SET_GOAL_AND_PAUSE"
	case CommandRequestPause:
		return "REQUEST_PAUSE"
	case CommandCancelAndSetGoal:
		return "CANCEL_AND_SET_GOAL"
	case CommandRevalidateGoalAndPath:
		return "REVALIDATE_GOAL_AND_PATH"
	case CommandForceRevalidateGoalAndPath:
		return "FORCE_REVALIDATE_GOAL_AND_PATH"
	case CommandDefer:
		return "DEFER"
	default:
		return "UNKNOWN"
	}
}

// PathingCommand — директива процесса: что делать с целью и путём.
// Context задаётся, когда процессу нужен особый контекст расчёта;
// иначе ядро создаёт стандартный.
type PathingCommand struct {
	Type    PathingCommandType
	Goal    goal.Goal
	Context *calc.Context
}
