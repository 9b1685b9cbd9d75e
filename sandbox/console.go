package sandbox

// Console records console calls made by a snippet. Every logging method
// (log, info, warn, error, debug) lands in the same queue; assertions
// consume the queue oldest first.
type Console struct {
	calls [][]any
}

// NewConsole returns an empty console.
func NewConsole() *Console {
	return &Console{}
}

// Log enqueues one call with its arguments.
func (c *Console) Log(args ...any) {
	c.calls = append(c.calls, append([]any(nil), args...))
}

// Shift removes and returns the oldest call.
func (c *Console) Shift() ([]any, bool) {
	if len(c.calls) == 0 {
		return nil, false
	}
	call := c.calls[0]
	c.calls[0] = nil
	c.calls = c.calls[1:]
	return call, true
}

// Len returns the number of queued calls.
func (c *Console) Len() int {
	return len(c.calls)
}
