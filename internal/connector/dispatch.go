package connector

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/presence-bridge/backend/internal/activity"
)

func (c *Connector) drainIPC(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.ipc:
			if !ok {
				return
			}
			c.dispatchCmd(cmd, "ipc")
		}
	}
}

func (c *Connector) drainSocket(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.sock:
			if !ok {
				return
			}
			c.dispatchSocket(cmd)
		}
	}
}

func (c *Connector) drainProcess(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.proc:
			if !ok {
				return
			}
			c.dispatchProcess(ev)
		}
	}
}

// dispatchCmd handles a SET_ACTIVITY command from the IPC or socket-command
// producer. Commands pass straight through per message; only the
// process-detection producer keeps dedup state.
func (c *Connector) dispatchCmd(cmd activity.Cmd, source string) {
	if c.ClientCount() == 0 {
		log.Printf("No clients connected, skipping %s command", source)
		return
	}

	cmd.Normalize()

	if cmd.Args == nil {
		log.Printf("Invalid %s activity command (no args), skipping", source)
		return
	}

	pid := *cmd.Args.PID

	if cmd.Args.Activity == nil {
		log.Printf("Sending empty payload for %s command", source)
		c.broadcastEmpty(pid, strconv.FormatUint(pid, 10))
		return
	}

	act := cmd.Args.Activity
	act.ApplicationID = cmd.ApplicationID

	payload := activity.Payload{
		Activity: act,
		PID:      pid,
		SocketID: strconv.FormatUint(pid, 10),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing %s activity: %v", source, err)
		return
	}
	log.Printf("Sending payload for %s activity: %s", source, act.Name)
	c.broadcast(data)
}

// dispatchSocket handles commands from the socket-originated control
// channel. Anything other than SET_ACTIVITY is already a well-formed
// control message and is passed through to clients as-is.
func (c *Connector) dispatchSocket(cmd activity.Cmd) {
	if c.ClientCount() == 0 {
		log.Printf("No clients connected, skipping socket command")
		return
	}

	if cmd.Cmd != activity.SetActivity {
		data, err := json.Marshal(cmd)
		if err != nil {
			log.Printf("Error serializing socket command: %v", err)
			return
		}
		log.Printf("Sending passthrough payload for socket command %s", cmd.Cmd)
		c.broadcast(data)
		return
	}

	c.dispatchCmd(cmd, "socket")
}

// dispatchProcess turns the watcher's level-triggered reports into
// edge-triggered broadcasts. It announces a session once, suppresses
// repeats, and closes every live session with an empty payload before
// announcing a new one or going idle.
func (c *Connector) dispatchProcess(ev activity.ProcessEvent) {
	if c.ClientCount() == 0 {
		return
	}

	if ev.ID == activity.NullSession {
		c.presence.mu.Lock()
		if c.presence.activeSession == "" {
			c.presence.mu.Unlock()
			return
		}
		pid := c.presence.lastPID
		socketID := c.presence.activeSession
		c.presence.activeSession = ""
		c.presence.mu.Unlock()

		log.Printf("Activity ended, sending empty payload for %s", socketID)
		c.broadcastEmpty(pid, socketID)
		return
	}

	pid := uint64(0)
	if ev.PID != nil {
		pid = *ev.PID
	}

	c.presence.mu.Lock()
	if c.presence.activeSession == ev.ID {
		c.presence.mu.Unlock()
		log.Printf("Already sent payload for activity: %s", ev.Name)
		return
	}
	prevSession := c.presence.activeSession
	prevPID := c.presence.lastPID
	c.presence.activeSession = ev.ID
	c.presence.lastPID = pid
	c.presence.mu.Unlock()

	// Close out the previous session before announcing the new one so
	// clients never show stale activity.
	if prevSession != "" {
		log.Printf("Session changed, sending empty payload for %s", prevSession)
		c.broadcastEmpty(prevPID, prevSession)
	}

	start := ev.Timestamp
	if start == "" {
		start = "0"
	}

	payload := activity.Payload{
		Activity: &activity.Activity{
			ApplicationID: ev.ID,
			Name:          ev.Name,
			Timestamps:    &activity.Timestamps{Start: start},
			Metadata:      map[string]interface{}{},
		},
		PID:      pid,
		SocketID: ev.ID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing process activity: %v", err)
		return
	}
	log.Printf("Sending payload for activity: %s", ev.Name)
	c.broadcast(data)
}

func (c *Connector) broadcastEmpty(pid uint64, socketID string) {
	data, err := json.Marshal(activity.EmptyPayload(pid, socketID))
	if err != nil {
		log.Printf("Error serializing empty payload: %v", err)
		return
	}
	c.broadcast(data)
}
