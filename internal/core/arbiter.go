package core

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/logging"
)

// ControlArbiter каждый тик решает, какой процесс управляет навигацией,
// и переводит его команду в операции ядра. Получает ядро по ссылке при
// создании; сам владеет реестром процессов и упорядоченным списком активных.
type ControlArbiter struct {
	core *PathingCore

	registered map[Process]struct{}
	active     []Process

	previous       Process
	current        Process
	currentCommand *PathingCommand
}

// newControlArbiter создаёт арбитра для указанного ядра
func newControlArbiter(core *PathingCore) *ControlArbiter {
	return &ControlArbiter{
		core:       core,
		registered: make(map[Process]struct{}),
	}
}

// Register регистрирует процесс, сбрасывая его состояние
func (a *ControlArbiter) Register(process Process) {
	process.Release() // Сбрасываем состояние процесса
	a.registered[process] = struct{}{}
}

// InControl возвращает процесс, управлявший навигацией в этом тике
func (a *ControlArbiter) InControl() (Process, bool) {
	return a.current, a.current != nil
}

// MostRecentCommand возвращает последнюю принятую команду
func (a *ControlArbiter) MostRecentCommand() (*PathingCommand, bool) {
	return a.currentCommand, a.currentCommand != nil
}

// TerminateAllProcesses сбрасывает арбитраж и освобождает все процессы
func (a *ControlArbiter) TerminateAllProcesses() {
	a.previous = nil
	a.current = nil
	a.currentCommand = nil
	a.active = nil

	for process := range a.registered {
		process.Release()
		if process.IsActive() && !process.IsTemporary() {
			panic(fmt.Sprintf("процесс %s остался активным после освобождения", process.DisplayName()))
		}
	}
}

// preTick — арбитраж: выбрать управляющий процесс и исполнить его команду
func (a *ControlArbiter) preTick() {
	a.previous = a.current
	a.current = nil

	a.currentCommand = a.executeProcessQueue()
	if a.currentCommand == nil {
		a.core.CancelSegmentIfSafe()
		a.core.SetGoal(nil)
		return
	}

	// Смена управляющего процесса: непостоянный предшественник теряет путь
	if a.current != a.previous &&
		a.currentCommand.Type != CommandRequestPause &&
		a.previous != nil &&
		!a.previous.IsTemporary() {
		a.core.CancelSegmentIfSafe()
	}

	a.dispatchCommand(a.currentCommand)
}

// dispatchCommand переводит команду процесса в операции ядра
func (a *ControlArbiter) dispatchCommand(command *PathingCommand) {
	switch command.Type {
	case CommandSetGoalAndPause:
		a.core.SetGoalAndPath(command)
		a.core.RequestPause()
	case CommandRequestPause:
		a.core.RequestPause()
	case CommandCancelAndSetGoal:
		a.core.SetGoal(command.Goal)
		a.core.CancelSegmentIfSafe()
	case CommandForceRevalidateGoalAndPath, CommandRevalidateGoalAndPath:
		if !a.core.IsPathing() && !a.core.HasActiveSearch() {
			a.core.SetGoalAndPath(command)
		}
	case CommandSetGoalAndPath:
		if command.Goal != nil {
			a.core.SetGoalAndPath(command)
		}
	default:
		panic(fmt.Sprintf("неизвестный тип команды: %v", command.Type))
	}
}

// postTick — ревалидация команды в конце тика: если конец текущего пути
// перестал удовлетворять цели, путь мягко отменяется и команда
// переиздаётся
func (a *ControlArbiter) postTick() {
	if a.currentCommand == nil {
		return
	}

	switch a.currentCommand.Type {
	case CommandForceRevalidateGoalAndPath:
		if a.currentCommand.Goal == nil ||
			a.requiresForceRevalidation(a.currentCommand.Goal) ||
			a.requiresGoalRevalidation(a.currentCommand.Goal) {
			a.core.SoftCancelIfSafe()
		}
		a.core.SetGoalAndPath(a.currentCommand)
	case CommandRevalidateGoalAndPath:
		if a.core.tickSettings.CancelOnGoalInvalidation &&
			(a.currentCommand.Goal == nil || a.requiresGoalRevalidation(a.currentCommand.Goal)) {
			a.core.SoftCancelIfSafe()
		}
		a.core.SetGoalAndPath(a.currentCommand)
	}
}

// requiresForceRevalidation: текущий путь ведёт мимо новой цели,
// и сама цель сменилась
func (a *ControlArbiter) requiresForceRevalidation(newGoal goal.Goal) bool {
	current := a.core.Store().CurrentPath()
	if current == nil {
		return false
	}
	if newGoal.IsInGoal(current.Path().Dest()) {
		return false
	}
	return current.Path().Goal == nil || !newGoal.Equals(current.Path().Goal)
}

// requiresGoalRevalidation: конец пути удовлетворял старой цели,
// но не удовлетворяет новой
func (a *ControlArbiter) requiresGoalRevalidation(newGoal goal.Goal) bool {
	current := a.core.Store().CurrentPath()
	if current == nil {
		return false
	}
	intendedGoal := current.Path().Goal
	endPosition := current.Path().Dest()
	return intendedGoal != nil && intendedGoal.IsInGoal(endPosition) && !newGoal.IsInGoal(endPosition)
}

// executeProcessQueue опрашивает активные процессы в порядке убывания
// приоритета и возвращает первую принятую команду
func (a *ControlArbiter) executeProcessQueue() *PathingCommand {
	a.updateActiveList()
	sort.SliceStable(a.active, func(i, j int) bool {
		return a.active[i].Priority() > a.active[j].Priority()
	})

	for i := 0; i < len(a.active); i++ {
		process := a.active[i]
		wasInControlLastTick := process == a.previous
		calcFailedLastTick := a.core.CalcFailedLastTick()
		safeToCancel := a.core.IsSafeToCancel()

		command := process.OnTick(wasInControlLastTick && calcFailedLastTick, safeToCancel)

		if command == nil {
			if process.IsActive() {
				panic(fmt.Sprintf("активный процесс %s вернул nil вместо команды", process.DisplayName()))
			}
			continue
		}
		if command.Type == CommandDefer {
			continue
		}

		a.current = process
		if !process.IsTemporary() {
			// Победил постоянный процесс — остальные освобождаются
			for j := i + 1; j < len(a.active); j++ {
				logging.Trace("Процесс %s освобождён: управление у %s", a.active[j].DisplayName(), process.DisplayName())
				a.active[j].Release()
			}
		}
		return command
	}
	return nil
}

// updateActiveList синхронизирует список активных процессов с реестром:
// новые активные встают в начало, неактивные удаляются
func (a *ControlArbiter) updateActiveList() {
	for process := range a.registered {
		if process.IsActive() {
			if !a.containsActive(process) {
				a.active = append([]Process{process}, a.active...)
			}
		} else {
			a.removeActive(process)
		}
	}
}

func (a *ControlArbiter) containsActive(process Process) bool {
	for _, p := range a.active {
		if p == process {
			return true
		}
	}
	return false
}

func (a *ControlArbiter) removeActive(process Process) {
	for i, p := range a.active {
		if p == process {
			a.active = append(a.active[:i], a.active[i+1:]...)
			return
		}
	}
}
