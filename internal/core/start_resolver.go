package core

import (
	"math"
	"sort"

	"github.com/annel0/voxel-nav/internal/calc"
	"github.com/annel0/voxel-nav/internal/vec"
)

const (
	// Радиус перебора соседних колонн вокруг ног агента
	startSearchRadius = 1

	// Дистанция "подкрадывания": насколько далеко от центра блока агент
	// может стоять, не падая с кромки
	maxEdgeDistance = 0.8

	// Сколько ближайших кандидатов проверяется
	closestPositionsToCheck = 4
)

// StartResolver выбирает логический стартовый блок нового расчёта пути
// по физическому положению агента. Гарантирует, что путь начинается
// с блока, который агент может легально занять.
type StartResolver struct {
	ctx   PlayerContext
	world calc.WorldView
}

// NewStartResolver создаёт резолвер стартовой позиции
func NewStartResolver(ctx PlayerContext, world calc.WorldView) *StartResolver {
	return &StartResolver{ctx: ctx, world: world}
}

// PathStart возвращает стартовый блок для нового расчёта пути
func (sr *StartResolver) PathStart() vec.Vec3 {
	feet := sr.ctx.PlayerFeet()

	if sr.world.CanWalkOn(feet.Below()) {
		return feet
	}

	if !sr.ctx.PlayerOnGround() {
		return sr.midairStart(feet)
	}
	return sr.groundedEdgeStart(feet)
}

// midairStart обрабатывает агента в воздухе
func (sr *StartResolver) midairStart(feet vec.Vec3) vec.Vec3 {
	if sr.world.CanWalkOn(feet.Below().Below()) {
		return feet.Below()
	}
	return feet
}

// groundedEdgeStart обрабатывает агента, стоящего на кромке над пустотой:
// перебираем девять соседних колонн, ближайшие четыре проверяем на
// пригодность
func (sr *StartResolver) groundedEdgeStart(feet vec.Vec3) vec.Vec3 {
	pos := sr.ctx.PlayerPosition()
	candidates := sr.nearbyPositionsSortedByDistance(feet, pos.X, pos.Z)

	limit := closestPositionsToCheck
	if limit > len(candidates) {
		limit = len(candidates)
	}
	for i := 0; i < limit; i++ {
		if sr.isValidStandingPosition(candidates[i], pos) {
			return candidates[i]
		}
	}

	return feet
}

// nearbyPositionsSortedByDistance возвращает соседние колонны, отсортированные
// по квадрату горизонтального расстояния от агента до центра блока
func (sr *StartResolver) nearbyPositionsSortedByDistance(center vec.Vec3, playerX, playerZ float64) []vec.Vec3 {
	positions := make([]vec.Vec3, 0, (2*startSearchRadius+1)*(2*startSearchRadius+1))

	for dx := -startSearchRadius; dx <= startSearchRadius; dx++ {
		for dz := -startSearchRadius; dz <= startSearchRadius; dz++ {
			positions = append(positions, vec.Vec3{
				X: center.X + dx,
				Y: center.Y,
				Z: center.Z + dz,
			})
		}
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return squaredCenterDistance(positions[i], playerX, playerZ) <
			squaredCenterDistance(positions[j], playerX, playerZ)
	})

	return positions
}

// squaredCenterDistance возвращает квадрат расстояния от агента до центра блока
func squaredCenterDistance(pos vec.Vec3, playerX, playerZ float64) float64 {
	dx := (float64(pos.X) + 0.5) - playerX
	dz := (float64(pos.Z) + 0.5) - playerZ
	return dx*dx + dz*dz
}

// isValidStandingPosition проверяет кандидата: в пределах дистанции
// подкрадывания и пригоден для стояния
func (sr *StartResolver) isValidStandingPosition(pos vec.Vec3, playerPos vec.Vec3Float) bool {
	if !sr.isWithinSneakingRange(pos, playerPos) {
		return false
	}
	return sr.world.CanStandAt(pos)
}

// isWithinSneakingRange проверяет дистанцию подкрадывания хотя бы по одной оси.
// Здесь намеренно "или", а не "и" — так ведёт себя движок агента.
func (sr *StartResolver) isWithinSneakingRange(pos vec.Vec3, playerPos vec.Vec3Float) bool {
	xDist := math.Abs((float64(pos.X) + 0.5) - playerPos.X)
	zDist := math.Abs((float64(pos.Z) + 0.5) - playerPos.Z)
	return xDist <= maxEdgeDistance || zDist <= maxEdgeDistance
}
