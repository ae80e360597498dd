package world

import (
	"github.com/annel0/voxel-nav/internal/util"
	"github.com/annel0/voxel-nav/internal/vec"
)

// Константы высот для генерации
const (
	SeaLevel      = 62   // Уровень воды
	BaseHeight    = 56.0 // Минимальная высота ландшафта
	HeightRange   = 24.0 // Амплитуда высот
	MountainStart = 0.80 // Выше этого значения шума — камень без травы
	SandMax       = 0.35 // Ниже этого значения шума — песчаные низины
)

// Generator генерирует ландшафт мира по шуму Перлина
type Generator struct {
	Seed       int64   // Сид для генерации шума
	NoiseScale float64 // Масштаб основного шума (высота)
	noise      *util.NoiseGenerator
}

// NewGenerator создаёт новый генератор ландшафта
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:       seed,
		NoiseScale: 0.05, // Настройка сглаженности ландшафта
		noise:      util.NewNoiseGenerator(seed),
	}
}

// GenerateChunk генерирует чанк по его координатам
func (g *Generator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)

	globalStartX := coords.X << 4 // chunkX * 16
	globalStartZ := coords.Y << 4 // chunkZ * 16

	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			globalX := globalStartX + x
			globalZ := globalStartZ + z

			// Координаты для шума (масштабированные)
			noiseX := float64(globalX) * g.NoiseScale
			noiseZ := float64(globalZ) * g.NoiseScale

			// Генерация высоты на основе шума Перлина
			value := g.noise.Noise2D(noiseX, noiseZ)
			height := int(BaseHeight + value*HeightRange)

			surface := g.surfaceFor(value, height)
			chunk.SetColumn(vec.Vec2{X: x, Y: z}, height, surface)
		}
	}

	return chunk
}

// surfaceFor выбирает поверхностный блок по значению шума и высоте
func (g *Generator) surfaceFor(value float64, height int) BlockID {
	switch {
	case height <= SeaLevel:
		return WaterBlockID
	case value < SandMax:
		return SandBlockID
	case value > MountainStart:
		return StoneBlockID
	default:
		return GrassBlockID
	}
}
