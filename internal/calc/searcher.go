package calc

import (
	"time"

	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/path"
	"github.com/annel0/voxel-nav/internal/vec"
)

// Searcher представляет один асинхронный расчёт пути.
// Calculate выполняется в фоновом потоке; Cancel и BestSoFar можно
// вызывать из тик-потока в любой момент.
type Searcher interface {
	// Start возвращает стартовый блок расчёта
	Start() vec.Vec3

	// Goal возвращает цель расчёта (возможно, упрощённую)
	Goal() goal.Goal

	// BestSoFar возвращает лучший найденный на данный момент частичный путь
	BestSoFar() (*path.Path, bool)

	// Calculate выполняет расчёт с двумя таймаутами: по истечении primary
	// возвращается лучший частичный путь (если есть), по истечении failure
	// расчёт сдаётся
	Calculate(primary, failure time.Duration) Result

	// Cancel кооперативно останавливает расчёт; идемпотентен
	Cancel()
}
