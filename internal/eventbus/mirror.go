package eventbus

import (
	"context"
	"strconv"
)

// Тип и источник конвертов, в которых ядро зеркалирует события пути
const (
	PathEventType   = "PathEvent"
	PathEventSource = "pathing-core"
)

// Зеркало событий навигации. Ядро публикует сюда каждое доставленное
// обработчику игры событие пути; наблюдатели видят имя события и тик,
// но не внутреннее состояние ядра. Пока зеркало не выбрано, публикация
// беззвучно пропускается.
var mirrorBus EventBus

// InitMirror выбирает шину, в которую зеркалируются события пути
func InitMirror(bus EventBus) { mirrorBus = bus }

// PublishPathEvent зеркалирует событие пути. event — каноническое имя
// события (CALC_STARTED, AT_GOAL, …), tick — номер тика ядра, на котором
// событие доставлено обработчику игры.
func PublishPathEvent(ctx context.Context, event string, tick uint64) error {
	if mirrorBus == nil {
		return nil
	}

	ev := NewEnvelope(PathEventType, PathEventSource, event)
	ev.Metadata = map[string]string{"tick": strconv.FormatUint(tick, 10)}
	return mirrorBus.Publish(ctx, ev)
}
