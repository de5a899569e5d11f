package response

import "github.com/nativepg/pgclient/pgerr"

// Composite sequences N handlers over a single response: each sub-handler
// consumes messages until it reports [Done], then the next sub-handler
// takes over. Useful for pipelines that prepare and execute in the same
// Sync segment (Parse then Bind then Execute), where each step's messages
// should land on a distinct [Handler].
type Composite struct {
	handlers []Handler
	idx      int
	err      error
}

// NewComposite constructs a composite handler over handlers, applied in
// order.
func NewComposite(handlers ...Handler) *Composite {
	return &Composite{handlers: handlers}
}

// Err reports the first non-empty sub-handler error.
func (c *Composite) Err() error {
	return c.err
}

// OnMessage implements [Handler], routing to whichever sub-handler is
// currently active.
func (c *Composite) OnMessage(tag byte, body []byte) (HandlerResult, error) {
	if c.idx >= len(c.handlers) {
		err := pgerr.New(pgerr.KindIncompatibleResponseLength, "message received after all composite sub-handlers completed")
		if c.err == nil {
			c.err = err
		}
		return Done, err
	}

	res, err := c.handlers[c.idx].OnMessage(tag, body)
	if err != nil && c.err == nil {
		c.err = err
	}

	if res == Done {
		c.idx++
		if c.idx < len(c.handlers) {
			return NeedsMore, err
		}
		return Done, err
	}

	return NeedsMore, err
}
