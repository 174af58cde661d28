package activity

// Cmd tags and sentinels understood by the connector.
const (
	// SetActivity is the command tag that carries an activity argument
	// bundle. Any other tag is passed through to clients unmodified.
	SetActivity = "SET_ACTIVITY"

	// NullSession is the process-detection sentinel meaning "no detectable
	// process is currently running".
	NullSession = "null"
)

// Activity is the displayable presence record embedded in an outbound
// payload. Field names match the wire format consumed by UI clients.
type Activity struct {
	ApplicationID string                 `json:"application_id"`
	Name          string                 `json:"name"`
	Timestamps    *Timestamps            `json:"timestamps,omitempty"`
	Type          int                    `json:"type"`
	Metadata      map[string]interface{} `json:"metadata"`
	Flags         int                    `json:"flags"`
}

// Timestamps carries the activity start time as a string of epoch
// milliseconds. "0" means unknown.
type Timestamps struct {
	Start string `json:"start"`
}

// Args is the optional argument bundle on an activity command. A nil
// Activity means "clear whatever is currently shown".
type Args struct {
	Activity *Activity `json:"activity"`
	PID      *uint64   `json:"pid"`
}

// Cmd is an activity command arriving from the IPC socket or the HTTP
// control endpoint. Commands other than SET_ACTIVITY are broadcast as-is.
type Cmd struct {
	Cmd           string `json:"cmd"`
	ApplicationID string `json:"application_id"`
	Args          *Args  `json:"args"`
}

// ProcessEvent is a single report from the process-detection watcher.
// The watcher is level-triggered: it reports the same process on every
// poll tick while it runs, and NullSession once nothing matches.
type ProcessEvent struct {
	ID        string
	Name      string
	Timestamp string
	PID       *uint64
}
