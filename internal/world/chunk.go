package world

import (
	"github.com/annel0/voxel-nav/internal/vec"
)

// ChunkSize — размер чанка в блоках по осям X и Z
const ChunkSize = 16

// Chunk представляет колонну мира 16x16.
// Ландшафт хранится картой высот: ниже высоты колонны минус один — камень,
// на высоте минус один — поверхностный блок колонны, выше — воздух.
// Точечные изменения поверх ландшафта лежат в overrides.
type Chunk struct {
	Coords    vec.Vec2 // Координаты чанка (X, Z)
	heights   [ChunkSize][ChunkSize]int
	surface   [ChunkSize][ChunkSize]BlockID
	overrides map[vec.Vec3]BlockID
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords:    coords,
		overrides: make(map[vec.Vec3]BlockID),
	}
}

// SetColumn задаёт высоту и поверхностный блок колонны (локальные координаты)
func (c *Chunk) SetColumn(local vec.Vec2, height int, surface BlockID) {
	c.heights[local.X][local.Y] = height
	c.surface[local.X][local.Y] = surface
}

// ColumnHeight возвращает высоту колонны (локальные координаты)
func (c *Chunk) ColumnHeight(local vec.Vec2) int {
	return c.heights[local.X][local.Y]
}

// BlockAt возвращает блок по глобальной позиции (позиция должна лежать в чанке)
func (c *Chunk) BlockAt(pos vec.Vec3) BlockID {
	if id, ok := c.overrides[pos]; ok {
		return id
	}

	local := pos.ToColumn().LocalInChunk()
	height := c.heights[local.X][local.Y]
	switch {
	case pos.Y < 0:
		return StoneBlockID
	case pos.Y < height-1:
		return StoneBlockID
	case pos.Y == height-1:
		return c.surface[local.X][local.Y]
	default:
		return AirBlockID
	}
}

// SetBlock устанавливает блок по глобальной позиции
func (c *Chunk) SetBlock(pos vec.Vec3, id BlockID) {
	c.overrides[pos] = id
}
