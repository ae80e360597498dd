package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings содержит все настройки, которые читает ядро поиска пути.
// Структура неизменяемая: ядро работает только со снапшотами (см. Store).
type Settings struct {
	// Таймауты первичного расчёта пути
	PrimaryTimeoutMS int64 `yaml:"primary_timeout_ms"`
	FailureTimeoutMS int64 `yaml:"failure_timeout_ms"`

	// Таймауты расчёта следующего сегмента (план наперёд)
	PlanAheadPrimaryTimeoutMS int64 `yaml:"plan_ahead_primary_timeout_ms"`
	PlanAheadFailureTimeoutMS int64 `yaml:"plan_ahead_failure_timeout_ms"`

	// За сколько тиков до конца сегмента начинать расчёт следующего
	PlanningTickLookahead int `yaml:"planning_tick_lookahead"`

	// Склеивать ли следующий сегмент с текущим без перепланирования
	SplicePath bool `yaml:"splice_path"`

	// Упрощать ли цель до GoalXZ, если её чанк не загружен
	SimplifyUnloadedY bool `yaml:"simplify_unloaded_y"`

	// Мягко отменять путь, если его конец перестал удовлетворять цели
	CancelOnGoalInvalidation bool `yaml:"cancel_on_goal_invalidation"`

	// Отключаться от мира по прибытии к цели
	DisconnectOnArrival bool `yaml:"disconnect_on_arrival"`

	// Порт Prometheus метрик (0 — не запускать)
	MetricsPort int `yaml:"metrics_port"`
}

// Defaults возвращает настройки по умолчанию
func Defaults() Settings {
	return Settings{
		PrimaryTimeoutMS:          500,
		FailureTimeoutMS:          2000,
		PlanAheadPrimaryTimeoutMS: 4000,
		PlanAheadFailureTimeoutMS: 5000,
		PlanningTickLookahead:     150,
		SplicePath:                true,
		SimplifyUnloadedY:         true,
		CancelOnGoalInvalidation:  true,
		DisconnectOnArrival:       false,
		MetricsPort:               0,
	}
}

// GetMetricsPort возвращает порт метрик с приоритетом: config -> env -> 0
func (s *Settings) GetMetricsPort() int {
	if s.MetricsPort > 0 {
		return s.MetricsPort
	}
	if envVal := os.Getenv("NAV_METRICS_PORT"); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return 0
}

// Load читает YAML файл настроек поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV NAV_CONFIG или возвращает дефолты.
func Load(path string) (Settings, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("NAV_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
