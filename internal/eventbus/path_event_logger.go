package eventbus

import (
	"context"

	"github.com/annel0/voxel-nav/internal/logging"
)

// StartPathEventLogger подписывается на зеркалируемые события пути и ведёт
// их журнал: имя события и тик, на котором ядро его доставило. Конверты
// других типов не трогает. Функция неблокирующая.
func StartPathEventLogger(bus EventBus) error {
	filter := Filter{Types: []string{PathEventType}, Sources: []string{PathEventSource}}
	_, err := bus.Subscribe(context.Background(), filter, func(ctx context.Context, ev *Envelope) {
		logging.Debug("🧭 Событие пути %s на тике %s (id=%s)", ev.Payload, ev.Metadata["tick"], ev.ID)
	})
	if err != nil {
		return err
	}
	logging.Info("🪵 Журнал событий пути: подписка активирована")
	return nil
}
