package vec

import "math"

// Vec3Float представляет непрерывную позицию агента в мире
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// ToVec3 возвращает блок, в котором находится точка (floor по всем осям)
func (v Vec3Float) ToVec3() Vec3 {
	return Vec3{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

// FromVec3 создает Vec3Float из позиции блока
func FromVec3(v Vec3) Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3Float) Mul(scalar float64) Vec3Float {
	return Vec3Float{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Length возвращает длину вектора
func (v Vec3Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	return v.Sub(other).Length()
}

// HorizontalDistanceSqTo возвращает квадрат расстояния до точки в плоскости XZ
func (v Vec3Float) HorizontalDistanceSqTo(x, z float64) float64 {
	dx := v.X - x
	dz := v.Z - z
	return dx*dx + dz*dz
}
