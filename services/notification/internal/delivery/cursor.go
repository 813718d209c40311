package delivery

import "time"

// Cursor is the per-session bookkeeping a delivery channel uses to
// avoid re-presenting notifications: the createdAt of the newest
// delivered record plus the set of delivered identifiers. The set is
// never evicted within a session; it is bounded by realistic
// per-session notification volume. Not safe for concurrent use, the
// owning Selector serializes access.
type Cursor struct {
	lastCheck time.Time
	delivered map[string]struct{}
}

func NewCursor() *Cursor {
	return &Cursor{delivered: make(map[string]struct{})}
}

func (c *Cursor) Delivered(id string) bool {
	_, ok := c.delivered[id]
	return ok
}

func (c *Cursor) MarkDelivered(id string, createdAt time.Time) {
	c.delivered[id] = struct{}{}
	if createdAt.After(c.lastCheck) {
		c.lastCheck = createdAt
	}
}

func (c *Cursor) LastCheck() time.Time {
	return c.lastCheck
}

func (c *Cursor) DeliveredCount() int {
	return len(c.delivered)
}
