package eventbus

import (
	"net/http"
	"time"

	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsExporter управляет HTTP-эндпоинтом Prometheus и периодически
// переносит Stats шины в Counter/Gauge. Экспортер не делает предположений
// о конкретной реализации шины — только интерфейс EventBus.
type MetricsExporter struct {
	bus  EventBus
	quit chan struct{}
	done chan struct{}
	// Prometheus metrics
	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер, но не запускает HTTP-сервер.
func NewMetricsExporter(bus EventBus) *MetricsExporter {
	me := &MetricsExporter{
		bus:  bus,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pathing_events",
			Name:      "published_total",
			Help:      "Общее число опубликованных событий навигации.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pathing_events",
			Name:      "consumed_total",
			Help:      "Общее число доставленных событий подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pathing_events",
			Name:      "dropped_total",
			Help:      "Событий, отброшенных из-за ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pathing_events",
			Name:      "inflight",
			Help:      "Количество событий в очереди (не доставленных).",
		}),
	}

	// Регистрируем метрики в глобальном регистре Prometheus.
	prometheus.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (m *MetricsExporter) StartHTTP(addr string) {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go m.loop()
}

// Stop останавливает обновление метрик.
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer close(m.done)

	// Для коррекции Counter нужно хранить прошлое значение и прибавлять дельту.
	var prev Stats

	for {
		select {
		case <-ticker.C:
			stats := m.bus.Metrics()

			deltaPub := stats.Published - prev.Published
			deltaCons := stats.Consumed - prev.Consumed
			deltaDrop := stats.Dropped - prev.Dropped

			if deltaPub > 0 {
				m.published.Add(float64(deltaPub))
			}
			if deltaCons > 0 {
				m.consumed.Add(float64(deltaCons))
			}
			if deltaDrop > 0 {
				m.dropped.Add(float64(deltaDrop))
			}

			m.inflight.Set(float64(stats.InFlight))

			prev = stats
		case <-m.quit:
			return
		}
	}
}
