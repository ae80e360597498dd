package physics

import (
	"math"

	"github.com/annel0/voxel-nav/internal/vec"
)

// BoxCollider представляет габариты агента в блоках (квадратное основание)
type BoxCollider struct {
	Width  float64 // Ширина основания в блоках
	Height float64 // Высота в блоках
}

// NewAgentCollider возвращает коллайдер стандартного агента
func NewAgentCollider() *BoxCollider {
	return &BoxCollider{Width: 0.6, Height: 1.8}
}

// OverlapsBlock проверяет, пересекает ли основание агента,
// стоящего в точке pos, горизонтальные границы блока
func (bc *BoxCollider) OverlapsBlock(pos vec.Vec3Float, block vec.Vec3) bool {
	half := bc.Width / 2
	return pos.X+half > float64(block.X) &&
		pos.X-half < float64(block.X)+1 &&
		pos.Z+half > float64(block.Z) &&
		pos.Z-half < float64(block.Z)+1
}

// HorizontalDeviation возвращает горизонтальное расстояние от агента
// до центра блока
func HorizontalDeviation(pos vec.Vec3Float, block vec.Vec3) float64 {
	dx := pos.X - (float64(block.X) + 0.5)
	dz := pos.Z - (float64(block.Z) + 0.5)
	return math.Sqrt(dx*dx + dz*dz)
}
