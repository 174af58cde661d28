package detect

import (
	"strconv"
	"strings"

	"github.com/presence-bridge/backend/internal/activity"
	"github.com/presence-bridge/backend/internal/config"
)

// Match scans the process list against the detectable database and returns
// the event to report this tick. Detectable order sets precedence: the
// first detectable with a running executable wins. When nothing matches
// the event carries the null-session sentinel.
func Match(procs []RunningProcess, detectables []config.Detectable) activity.ProcessEvent {
	for _, d := range detectables {
		for _, exe := range d.Executables {
			for _, p := range procs {
				if !strings.EqualFold(p.Name, exe) {
					continue
				}
				pid := p.PID
				ev := activity.ProcessEvent{
					ID:   d.ID,
					Name: d.Name,
					PID:  &pid,
				}
				if p.StartedAt > 0 {
					ev.Timestamp = strconv.FormatInt(p.StartedAt, 10)
				}
				return ev
			}
		}
	}
	return activity.ProcessEvent{ID: activity.NullSession}
}
