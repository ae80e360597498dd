package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/annel0/voxel-nav/internal/config"
	"github.com/annel0/voxel-nav/internal/core"
	"github.com/annel0/voxel-nav/internal/eventbus"
	"github.com/annel0/voxel-nav/internal/goal"
	"github.com/annel0/voxel-nav/internal/logging"
	"github.com/annel0/voxel-nav/internal/observability"
	"github.com/annel0/voxel-nav/internal/process"
	"github.com/annel0/voxel-nav/internal/vec"
	"github.com/annel0/voxel-nav/internal/world"
)

// simPlayer — симулируемый агент: каждый тик подтягивается к текущему
// узлу исполняемого пути
type simPlayer struct {
	world *world.World
	pos   vec.Vec3Float
}

func (p *simPlayer) PlayerFeet() vec.Vec3          { return p.pos.ToVec3() }
func (p *simPlayer) PlayerPosition() vec.Vec3Float { return p.pos }
func (p *simPlayer) PlayerOnGround() bool          { return true }
func (p *simPlayer) IsChunkLoaded(x, z int) bool   { return p.world.IsChunkLoaded(x, z) }

func (p *simPlayer) Disconnect() {
	logging.Info("🚪 Отключение от мира по прибытии")
}

// Перехват ввода в симуляции не моделируется
func (p *simPlayer) ClearAllKeys()      {}
func (p *simPlayer) StopBreakingBlock() {}

// Advance двигает агента к центру целевого блока с указанной скоростью
func (p *simPlayer) Advance(target vec.Vec3, speed float64) {
	cx := float64(target.X) + 0.5
	cz := float64(target.Z) + 0.5

	dx := cx - p.pos.X
	dz := cz - p.pos.Z
	dist := (vec.Vec3Float{X: dx, Z: dz}).Length()

	if dist <= speed {
		p.pos.X = cx
		p.pos.Z = cz
		p.pos.Y = float64(target.Y)
		return
	}

	p.pos.X += dx / dist * speed
	p.pos.Z += dz / dist * speed
	if dist < 0.7 {
		p.pos.Y = float64(target.Y)
	}
}

// eventLogger печатает события пути в лог
type eventLogger struct{}

func (eventLogger) OnPathEvent(event core.PathEvent) {
	logging.Info("🧭 PathEvent: %s", event)
}

// findSolidColumn ищет ближайшую к (x, z) колонну с твёрдой поверхностью
func findSolidColumn(w *world.World, x, z int) (int, int) {
	for radius := 0; radius < 32; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				cx, cz := x+dx, z+dz
				y := w.SurfaceY(cx, cz)
				if w.CanWalkOn(vec.Vec3{X: cx, Y: y - 1, Z: cz}) {
					return cx, cz
				}
			}
		}
	}
	return x, z
}

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML файлу настроек")
		seed       = flag.Int64("seed", 12345, "сид генерации мира")
		maxTicks   = flag.Int("ticks", 3000, "лимит тиков симуляции")
		targetX    = flag.Int("x", 40, "целевая колонна X")
		targetZ    = flag.Int("z", 37, "целевая колонна Z")
	)
	flag.Parse()

	if err := logging.InitDefaultLogger("sim"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск симуляции навигации (seed=%d)...", *seed)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("Ошибка чтения настроек: %v", err)
		os.Exit(1)
	}
	store := config.NewStore(cfg)

	// Шина событий для внешних наблюдателей
	bus := eventbus.NewMemoryBus(256)
	eventbus.InitMirror(bus)
	if err := eventbus.StartPathEventLogger(bus); err != nil {
		logging.Error("Ошибка подписки журнала событий пути: %v", err)
	}
	if port := cfg.GetMetricsPort(); port > 0 {
		exporter := eventbus.NewMetricsExporter(bus)
		exporter.StartHTTP(fmt.Sprintf(":%d", port))
	}

	// Трассировка включается переменной окружения NAV_OTEL
	if os.Getenv("NAV_OTEL") != "" {
		shutdown, err := observability.InitTelemetry(context.Background(), "voxel-nav-sim")
		if err != nil {
			logging.Error("Ошибка инициализации телеметрии: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Мир и агент
	w := world.NewGeneratedWorld(*seed)
	w.LoadArea(0, 0, 4)

	spawnX, spawnZ := findSolidColumn(w, 8, 8)
	spawnY := w.SurfaceY(spawnX, spawnZ)
	player := &simPlayer{
		world: w,
		pos:   vec.Vec3Float{X: float64(spawnX) + 0.5, Y: float64(spawnY), Z: float64(spawnZ) + 0.5},
	}
	logging.Info("Агент в (%d, %d, %d)", spawnX, spawnY, spawnZ)

	// Ядро и процесс GoTo
	c := core.NewPathingCore(store, player, w, player, eventLogger{}, nil)
	defer c.Close()

	gotoProc := process.NewGoTo(player)
	c.Arbiter().Register(gotoProc)

	tx, tz := findSolidColumn(w, *targetX, *targetZ)
	ty := w.SurfaceY(tx, tz)
	target := goal.NewGoalBlock(vec.Vec3{X: tx, Y: ty, Z: tz})
	gotoProc.SetGoal(target)
	logging.Info("Цель: %v", target)

	// Главный цикл симуляции
	const agentSpeed = 0.25 // блоков за тик
	for tick := 0; tick < *maxTicks; tick++ {
		c.Tick(core.TickIn)

		if exec := c.Store().CurrentPath(); exec != nil {
			if node, ok := exec.CurrentTarget(); ok {
				player.Advance(node, agentSpeed)
			}
		}

		if tick%200 == 0 {
			if eta, ok := c.EstimatedTicksToGoal(); ok {
				logging.Info("Тик %d: агент в %v, ETA %.0f тиков", tick, player.PlayerFeet(), eta)
			}
		}

		if tick > 10 && !gotoProc.IsActive() {
			logging.Info("✅ Симуляция завершена на тике %d", tick)
			break
		}

		time.Sleep(2 * time.Millisecond)
	}

	c.Tick(core.TickOut)
	logging.Info("Итог: агент в %v, цель была %v", player.PlayerFeet(), target)
}
