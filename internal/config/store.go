package config

import "sync/atomic"

// Store хранит актуальный снапшот настроек и позволяет менять их на лету.
// Тик-поток читает Snapshot() один раз в начале тика и работает с копией;
// фоновые потоки никогда не читают настройки напрямую.
type Store struct {
	current atomic.Pointer[Settings]
	updates chan Settings
}

// NewStore создаёт хранилище с указанным начальным снапшотом
func NewStore(initial Settings) *Store {
	s := &Store{
		updates: make(chan Settings, 16),
	}
	s.current.Store(&initial)
	return s
}

// Snapshot возвращает текущий снапшот настроек
func (s *Store) Snapshot() Settings {
	return *s.current.Load()
}

// Apply атомарно заменяет снапшот и уведомляет подписчиков
func (s *Store) Apply(settings Settings) {
	s.current.Store(&settings)
	select {
	case s.updates <- settings:
	default:
		// Канал заполнен — подписчик всё равно увидит актуальный снапшот
	}
}

// Updates возвращает канал уведомлений о смене настроек
func (s *Store) Updates() <-chan Settings {
	return s.updates
}
