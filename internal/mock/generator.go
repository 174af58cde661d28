package mock

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/presence-bridge/backend/internal/activity"
)

// fakeApp is one scripted detectable the generator cycles through.
type fakeApp struct {
	id        string
	name      string
	liveTicks int // ticks the app stays "running" (repeats exercise dedup)
}

var script = []fakeApp{
	{id: "100", name: "Rocket Game", liveTicks: 6},
	{id: "200", name: "Pixel Painter", liveTicks: 4},
	{id: "300", name: "Synth Studio", liveTicks: 8},
}

// Generator feeds scripted process-detection events into the producer
// channel so the bridge can be demoed without any real detectable process.
type Generator struct {
	events   chan<- activity.ProcessEvent
	interval time.Duration
}

func NewGenerator(events chan<- activity.ProcessEvent) *Generator {
	return &Generator{
		events:   events,
		interval: 2 * time.Second,
	}
}

func (g *Generator) Start(ctx context.Context) {
	go g.run(ctx)
}

func (g *Generator) run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	app := 0
	tick := 0
	pid := uint64(1000 + rand.Intn(9000))
	start := time.Now().UnixMilli()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := script[app%len(script)]
			if tick < cur.liveTicks {
				p := pid
				g.events <- activity.ProcessEvent{
					ID:        cur.id,
					Name:      cur.name,
					Timestamp: strconv.FormatInt(start, 10),
					PID:       &p,
				}
				tick++
				continue
			}

			// App "exits": one quiet tick, then move to the next one.
			g.events <- activity.ProcessEvent{ID: activity.NullSession}
			app++
			tick = 0
			pid = uint64(1000 + rand.Intn(9000))
			start = time.Now().UnixMilli()
		}
	}
}
