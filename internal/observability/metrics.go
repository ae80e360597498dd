package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics — счётчики ядра навигации
type CoreMetrics struct {
	Ticks           prometheus.Counter
	SearchesStarted *prometheus.CounterVec
	SearchesFailed  prometheus.Counter
	OrphanPaths     prometheus.Counter
}

var (
	coreMetrics *CoreMetrics
	metricsOnce sync.Once
)

// GetCoreMetrics возвращает зарегистрированный набор метрик ядра
func GetCoreMetrics() *CoreMetrics {
	metricsOnce.Do(func() {
		coreMetrics = &CoreMetrics{
			Ticks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "pathing",
				Name:      "ticks_total",
				Help:      "Общее число обработанных тиков ядра.",
			}),
			SearchesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "pathing",
				Name:      "searches_started_total",
				Help:      "Запущенных расчётов пути по типу (initial/plan_ahead).",
			}, []string{"kind"}),
			SearchesFailed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "pathing",
				Name:      "searches_failed_total",
				Help:      "Расчётов пути, завершившихся без результата.",
			}),
			OrphanPaths: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "pathing",
				Name:      "orphan_paths_total",
				Help:      "Отброшенных путей с несовпадающим стартом.",
			}),
		}
		prometheus.MustRegister(
			coreMetrics.Ticks,
			coreMetrics.SearchesStarted,
			coreMetrics.SearchesFailed,
			coreMetrics.OrphanPaths,
		)
	})
	return coreMetrics
}
