package detect

import (
	"testing"

	"github.com/presence-bridge/backend/internal/activity"
	"github.com/presence-bridge/backend/internal/config"
)

var testDetectables = []config.Detectable{
	{ID: "100", Name: "Rocket Game", Executables: []string{"rocketgame.exe", "rocketgame"}},
	{ID: "200", Name: "Tracker", Executables: []string{"tracker"}},
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		procs  []RunningProcess
		wantID string
	}{
		{
			name:   "NoProcesses",
			procs:  nil,
			wantID: activity.NullSession,
		},
		{
			name: "NoMatch",
			procs: []RunningProcess{
				{Name: "bash", PID: 1},
				{Name: "systemd", PID: 2},
			},
			wantID: activity.NullSession,
		},
		{
			name: "ExactMatch",
			procs: []RunningProcess{
				{Name: "bash", PID: 1},
				{Name: "rocketgame", PID: 42, StartedAt: 1700000000000},
			},
			wantID: "100",
		},
		{
			name: "CaseInsensitive",
			procs: []RunningProcess{
				{Name: "RocketGame.EXE", PID: 42},
			},
			wantID: "100",
		},
		{
			name: "FirstDetectableWins",
			procs: []RunningProcess{
				{Name: "tracker", PID: 7},
				{Name: "rocketgame", PID: 42},
			},
			wantID: "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Match(tt.procs, testDetectables)
			if ev.ID != tt.wantID {
				t.Errorf("Match() id = %q, want %q", ev.ID, tt.wantID)
			}
		})
	}
}

func TestMatch_PopulatesEventFields(t *testing.T) {
	ev := Match([]RunningProcess{
		{Name: "rocketgame", PID: 42, StartedAt: 1700000000000},
	}, testDetectables)

	if ev.Name != "Rocket Game" {
		t.Errorf("name = %q", ev.Name)
	}
	if ev.PID == nil || *ev.PID != 42 {
		t.Errorf("pid = %v, want 42", ev.PID)
	}
	if ev.Timestamp != "1700000000000" {
		t.Errorf("timestamp = %q", ev.Timestamp)
	}
}

func TestMatch_UnknownStartTimeLeftEmpty(t *testing.T) {
	ev := Match([]RunningProcess{{Name: "tracker", PID: 7}}, testDetectables)
	if ev.Timestamp != "" {
		t.Errorf("timestamp = %q, want empty for unknown start time", ev.Timestamp)
	}
}

func TestMatch_EmptyDetectables(t *testing.T) {
	ev := Match([]RunningProcess{{Name: "anything", PID: 1}}, nil)
	if ev.ID != activity.NullSession {
		t.Errorf("id = %q, want null sentinel", ev.ID)
	}
}
