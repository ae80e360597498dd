package util

import (
	"github.com/aquilax/go-perlin"
)

// NoiseGenerator оборачивает шум Перлина для детерминированной генерации ландшафта
type NoiseGenerator struct {
	perlin *perlin.Perlin
}

// NewNoiseGenerator создаёт генератор шума с указанным сидом
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &NoiseGenerator{
		perlin: perlin.NewPerlin(alpha, beta, n, seed),
	}
}

// Noise2D возвращает значение шума Перлина для указанных координат (от 0 до 1)
func (ng *NoiseGenerator) Noise2D(x, y float64) float64 {
	// Получаем значение шума (от -1 до 1)
	noise := ng.perlin.Noise2D(x, y)

	// Преобразуем в диапазон от 0 до 1
	return (noise + 1.0) / 2.0
}
