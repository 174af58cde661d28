package activity

// Normalize fills the implicit defaults on a command before dispatch logic
// runs. It is pure and idempotent. Field-by-field mapping:
//
//	Args == nil               -> left nil (dispatch drops the command)
//	Args.PID == nil           -> 0
//	Activity == nil           -> left nil (dispatch sends an empty payload)
//	Activity.Timestamps == nil -> {Start: "0"}
//	Activity.Timestamps.Start == "" -> "0"
//	Activity.Metadata == nil  -> {}
func (c *Cmd) Normalize() {
	if c.Args == nil {
		return
	}
	if c.Args.PID == nil {
		var zero uint64
		c.Args.PID = &zero
	}
	act := c.Args.Activity
	if act == nil {
		return
	}
	if act.Timestamps == nil {
		act.Timestamps = &Timestamps{Start: "0"}
	} else if act.Timestamps.Start == "" {
		act.Timestamps.Start = "0"
	}
	if act.Metadata == nil {
		act.Metadata = map[string]interface{}{}
	}
}
