package world

import (
	"testing"

	"github.com/annel0/voxel-nav/internal/vec"
)

func TestChunkColumnBlocks(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 0, Y: 0})
	chunk.SetColumn(vec.Vec2{X: 3, Y: 4}, 64, GrassBlockID)

	// Ниже поверхности — камень
	if id := chunk.BlockAt(vec.Vec3{X: 3, Y: 10, Z: 4}); id != StoneBlockID {
		t.Errorf("Ожидался StoneBlockID под поверхностью, получен %d", id)
	}

	// Поверхностный блок
	if id := chunk.BlockAt(vec.Vec3{X: 3, Y: 63, Z: 4}); id != GrassBlockID {
		t.Errorf("Ожидался GrassBlockID на поверхности, получен %d", id)
	}

	// Над поверхностью — воздух
	if id := chunk.BlockAt(vec.Vec3{X: 3, Y: 64, Z: 4}); id != AirBlockID {
		t.Errorf("Ожидался AirBlockID над поверхностью, получен %d", id)
	}
}

func TestChunkOverrides(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 0, Y: 0})
	chunk.SetColumn(vec.Vec2{X: 0, Y: 0}, 64, GrassBlockID)

	pos := vec.Vec3{X: 0, Y: 70, Z: 0}
	chunk.SetBlock(pos, StoneBlockID)

	if id := chunk.BlockAt(pos); id != StoneBlockID {
		t.Errorf("Ожидался установленный StoneBlockID, получен %d", id)
	}
}

func TestWorldWalkability(t *testing.T) {
	w := NewWorld()
	chunk := w.LoadChunk(vec.Vec2{X: 0, Y: 0})
	chunk.SetColumn(vec.Vec2{X: 5, Y: 5}, 64, GrassBlockID)

	standPos := vec.Vec3{X: 5, Y: 64, Z: 5}
	if !w.CanStandAt(standPos) {
		t.Error("Агент должен мочь стоять на поверхности колонны")
	}
	if w.CanStandAt(standPos.Above()) {
		t.Error("Агент не должен мочь стоять в воздухе")
	}
	if w.CanWalkThrough(standPos.Below()) {
		t.Error("Поверхностный блок не должен быть проходимым")
	}
}

func TestWorldChunkLoaded(t *testing.T) {
	w := NewWorld()

	if w.IsChunkLoaded(5, 5) {
		t.Error("Чанк не должен считаться загруженным до LoadChunk")
	}

	w.LoadChunk(vec.Vec2{X: 0, Y: 0})
	if !w.IsChunkLoaded(5, 5) {
		t.Error("Чанк должен считаться загруженным после LoadChunk")
	}
	if w.IsChunkLoaded(20, 5) {
		t.Error("Соседний чанк не должен считаться загруженным")
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(42).GenerateChunk(vec.Vec2{X: 1, Y: 2})
	b := NewGenerator(42).GenerateChunk(vec.Vec2{X: 1, Y: 2})

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			local := vec.Vec2{X: x, Y: z}
			if a.ColumnHeight(local) != b.ColumnHeight(local) {
				t.Fatalf("Генерация не детерминирована в колонне (%d,%d)", x, z)
			}
		}
	}
}
