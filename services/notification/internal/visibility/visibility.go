package visibility

import (
	"sync"

	"kuzeykoc/services/notification/internal/worker"
)

// Resyncer is the delivery side that wants one immediate re-read when
// the page comes back.
type Resyncer interface {
	Resync()
}

// WorkerPort forwards visibility changes to the background worker.
type WorkerPort interface {
	Send(msg worker.Message)
}

// Coordinator tracks page visibility for one session. A transition to
// visible triggers exactly one resync; repeated reports of the same
// state are ignored.
type Coordinator struct {
	selector Resyncer
	worker   WorkerPort

	mu      sync.Mutex
	visible bool
}

// NewCoordinator starts in the visible state, matching a page that just
// connected.
func NewCoordinator(selector Resyncer, w WorkerPort) *Coordinator {
	return &Coordinator{
		selector: selector,
		worker:   w,
		visible:  true,
	}
}

func (c *Coordinator) SetVisible(visible bool) {
	c.mu.Lock()
	if visible == c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = visible
	c.mu.Unlock()

	if c.worker != nil {
		c.worker.Send(worker.VisibilityChangeMessage{IsVisible: visible})
	}
	if visible {
		c.selector.Resync()
	}
}

func (c *Coordinator) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}
