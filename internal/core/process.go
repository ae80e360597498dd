package core

// Process — подсистема, претендующая на управление навигацией.
// Арбитр каждый тик опрашивает активные процессы в порядке убывания
// приоритета и отдаёт управление первому, кто вернул команду не-DEFER.
type Process interface {
	// IsActive сообщает, хочет ли процесс участвовать в арбитраже
	IsActive() bool

	// IsTemporary сообщает, может ли процесс уступать управление,
	// не инвалидируя текущий путь
	IsTemporary() bool

	// Priority возвращает приоритет процесса (больше — важнее)
	Priority() float64

	// OnTick вызывается у активного процесса каждый тик.
	// calcFailedLastTick истинен, если процесс управлял в прошлом тике
	// и расчёт пути провалился; safeToCancel — можно ли сейчас безопасно
	// отменить текущий сегмент. Активный процесс обязан вернуть команду
	// (хотя бы DEFER); nil от активного процесса — ошибка программиста.
	OnTick(calcFailedLastTick, safeToCancel bool) *PathingCommand

	// Release сбрасывает состояние процесса при потере управления
	Release()

	// DisplayName возвращает имя процесса для логов
	DisplayName() string
}
