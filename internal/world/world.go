package world

import (
	"sync"

	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/annel0/voxel-nav/internal/vec"
)

// World управляет чанками воксельного мира и отвечает на запросы проходимости.
// Доступ к блокам потокобезопасен: мир читают и тик-поток, и фоновый расчёт пути.
type World struct {
	mu        sync.RWMutex        // Мьютекс для доступа к чанкам
	chunks    map[vec.Vec2]*Chunk // Загруженные чанки
	generator *Generator          // Генератор ландшафта (nil — пустой мир)
}

// NewWorld создаёт пустой мир без генератора
func NewWorld() *World {
	return &World{
		chunks: make(map[vec.Vec2]*Chunk),
	}
}

// NewGeneratedWorld создаёт мир с генератором ландшафта на основе сида
func NewGeneratedWorld(seed int64) *World {
	return &World{
		chunks:    make(map[vec.Vec2]*Chunk),
		generator: NewGenerator(seed),
	}
}

// IsChunkLoaded сообщает, загружен ли чанк, содержащий колонну (x, z)
func (w *World) IsChunkLoaded(x, z int) bool {
	coords := vec.Vec2{X: x, Y: z}.ToChunkCoords()
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.chunks[coords]
	return ok
}

// LoadChunk загружает (генерируя при необходимости) чанк с указанными координатами
func (w *World) LoadChunk(coords vec.Vec2) *Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()

	if chunk, ok := w.chunks[coords]; ok {
		return chunk
	}

	var chunk *Chunk
	if w.generator != nil {
		chunk = w.generator.GenerateChunk(coords)
	} else {
		chunk = NewChunk(coords)
	}
	w.chunks[coords] = chunk
	logging.Debug("Чанк (%d,%d) загружен", coords.X, coords.Y)
	return chunk
}

// LoadArea загружает квадрат чанков вокруг колонны (x, z) с указанным радиусом
func (w *World) LoadArea(x, z, radius int) {
	center := vec.Vec2{X: x, Y: z}.ToChunkCoords()
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			w.LoadChunk(vec.Vec2{X: center.X + dx, Y: center.Y + dz})
		}
	}
}

// BlockAt возвращает блок по глобальной позиции.
// Для незагруженных чанков возвращает AirBlockID.
func (w *World) BlockAt(pos vec.Vec3) BlockID {
	coords := pos.ToColumn().ToChunkCoords()
	w.mu.RLock()
	defer w.mu.RUnlock()

	chunk, ok := w.chunks[coords]
	if !ok {
		return AirBlockID
	}
	return chunk.BlockAt(pos)
}

// SetBlock устанавливает блок по глобальной позиции (чанк должен быть загружен)
func (w *World) SetBlock(pos vec.Vec3, id BlockID) {
	coords := pos.ToColumn().ToChunkCoords()
	w.mu.Lock()
	defer w.mu.Unlock()

	if chunk, ok := w.chunks[coords]; ok {
		chunk.SetBlock(pos, id)
	}
}

// SurfaceY возвращает высоту поверхности колонны (x, z): Y первого свободного блока
func (w *World) SurfaceY(x, z int) int {
	coords := vec.Vec2{X: x, Y: z}.ToChunkCoords()
	w.mu.RLock()
	defer w.mu.RUnlock()

	chunk, ok := w.chunks[coords]
	if !ok {
		return 0
	}
	return chunk.ColumnHeight(vec.Vec2{X: x, Y: z}.LocalInChunk())
}

// CanWalkOn сообщает, можно ли стоять на блоке
func (w *World) CanWalkOn(pos vec.Vec3) bool {
	return w.BlockAt(pos).IsSolid()
}

// CanWalkThrough сообщает, можно ли пройти сквозь блок
func (w *World) CanWalkThrough(pos vec.Vec3) bool {
	return w.BlockAt(pos).IsPassable()
}

// CanStandAt сообщает, может ли агент занять блок: опора снизу,
// сам блок и блок над головой свободны
func (w *World) CanStandAt(pos vec.Vec3) bool {
	return w.CanWalkOn(pos.Below()) && w.CanWalkThrough(pos) && w.CanWalkThrough(pos.Above())
}
