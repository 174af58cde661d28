package detect

import (
	"context"
	"log"
	"time"

	"github.com/presence-bridge/backend/internal/activity"
	"github.com/presence-bridge/backend/internal/config"
	"github.com/shirou/gopsutil/v3/process"
)

// RunningProcess is the slice of process-table state the matcher needs.
type RunningProcess struct {
	Name      string
	PID       uint64
	StartedAt int64 // epoch milliseconds
}

// Watcher polls the OS process table and reports whether any detectable
// process is running. It reports on every tick; the connector's dedup
// turns the level-triggered stream into edge-triggered broadcasts.
type Watcher struct {
	detectables []config.Detectable
	interval    time.Duration
	events      chan<- activity.ProcessEvent
}

func NewWatcher(cfg *config.Config, events chan<- activity.ProcessEvent) *Watcher {
	interval := time.Duration(cfg.Detect.PollInterval)
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		detectables: cfg.Detect.Detectables,
		interval:    interval,
		events:      events,
	}
}

func (w *Watcher) Start(ctx context.Context) {
	if len(w.detectables) == 0 {
		log.Println("Process watcher disabled: no detectables configured")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("Process watcher started (%d detectables, every %s)", len(w.detectables), w.interval)

	w.scan()

	for {
		select {
		case <-ctx.Done():
			log.Println("Process watcher stopped")
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	procs, err := process.Processes()
	if err != nil {
		log.Printf("Process scan error: %v", err)
		return
	}

	running := make([]RunningProcess, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		created, err := p.CreateTime()
		if err != nil {
			created = 0
		}
		running = append(running, RunningProcess{
			Name:      name,
			PID:       uint64(p.Pid),
			StartedAt: created,
		})
	}

	w.emit(Match(running, w.detectables))
}

func (w *Watcher) emit(ev activity.ProcessEvent) {
	select {
	case w.events <- ev:
	default:
		// Consumer is behind; the next tick re-reports the same state.
		log.Println("Process event channel full, dropping tick")
	}
}
