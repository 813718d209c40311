package delivery

import (
	"context"
	"sync"
	"time"

	"kuzeykoc/pkg/logger"
	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/presenter"
	"kuzeykoc/services/notification/internal/realtime"
)

// State of a coach delivery session.
type State int32

const (
	StateInitializing State = iota
	StateSubscribing
	StateRealtimeActive
	StatePollingActive
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateSubscribing:
		return "subscribing"
	case StateRealtimeActive:
		return "realtime"
	case StatePollingActive:
		return "polling"
	}
	return "unknown"
}

// Store is the read side of the notification table the selector polls.
type Store interface {
	GetUnread(coachID string) ([]entity.Notification, error)
}

// Presenter renders one notification as a user-visible alert.
type Presenter interface {
	Present(title, body string, opts presenter.Options)
}

// Selector keeps the unread notifications of one coach session in sync
// with the store, preferring the realtime channel and degrading to
// polling when it fails or drops. Duplicate presentation across
// channels is suppressed purely by cursor membership.
type Selector struct {
	coachID    string
	store      Store
	subscriber realtime.Subscriber
	presenter  Presenter
	logger     *logger.Logger

	pollInterval       time.Duration
	safetyPollInterval time.Duration

	mu       sync.Mutex
	state    State
	cursor   *Cursor
	rendered []entity.Notification

	resync chan struct{}
}

func NewSelector(
	coachID string,
	store Store,
	subscriber realtime.Subscriber,
	p Presenter,
	log *logger.Logger,
	pollInterval time.Duration,
) *Selector {
	return &Selector{
		coachID:    coachID,
		store:      store,
		subscriber: subscriber,
		presenter:  p,
		logger:     log,

		pollInterval: pollInterval,
		// Safety net while realtime is healthy, so a silently dropped
		// event is recovered without waiting for a state change
		safetyPollInterval: 3 * pollInterval,

		state:  StateInitializing,
		cursor: NewCursor(),
		resync: make(chan struct{}, 1),
	}
}

// Run drives the session state machine until ctx is cancelled. All
// timers are released on return.
func (s *Selector) Run(ctx context.Context) {
	s.seed()

	s.setState(StateSubscribing)
	events, stop, err := s.subscriber.Subscribe(ctx, s.coachID)
	if err != nil {
		// Silent degradation, never surfaced to the coach
		s.logger.Warn("Realtime subscription failed for coach %s, falling back to polling: %v", s.coachID, err)
		s.setState(StatePollingActive)
		s.pollLoop(ctx)
		return
	}

	s.setState(StateRealtimeActive)
	s.realtimeLoop(ctx, events, stop)
	if ctx.Err() != nil {
		return
	}

	// Subscription dropped mid-session
	s.logger.Warn("Realtime subscription dropped for coach %s, falling back to polling", s.coachID)
	s.setState(StatePollingActive)
	s.pollLoop(ctx)
}

// seed issues the one-time unread read that primes the cursor and the
// rendered list. Seeded records are delivered here exactly once and
// later polls will not re-present them.
func (s *Selector) seed() {
	notifications, err := s.store.GetUnread(s.coachID)
	if err != nil {
		s.logger.Error("Seed read failed for coach %s: %v", s.coachID, err)
		return
	}
	for i := range notifications {
		s.deliver(notifications[i])
	}
}

func (s *Selector) realtimeLoop(ctx context.Context, events <-chan entity.Notification, stop func()) {
	defer stop()

	safety := time.NewTicker(s.safetyPollInterval)
	defer safety.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			s.deliver(n)
		case <-safety.C:
			s.pollOnce()
		case <-s.resync:
			s.pollOnce()
		}
	}
}

func (s *Selector) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce()
		case <-s.resync:
			s.pollOnce()
		}
	}
}

// pollOnce re-reads unread rows and delivers anything unseen. A failed
// read is logged and dropped: the next cycle is independent.
func (s *Selector) pollOnce() {
	notifications, err := s.store.GetUnread(s.coachID)
	if err != nil {
		s.logger.Error("Notification poll failed for coach %s: %v", s.coachID, err)
		return
	}
	for i := range notifications {
		s.deliver(notifications[i])
	}
}

func (s *Selector) deliver(n entity.Notification) {
	s.mu.Lock()
	if s.cursor.Delivered(n.ID) {
		s.mu.Unlock()
		return
	}
	s.cursor.MarkDelivered(n.ID, n.CreatedAt)
	s.rendered = append([]entity.Notification{n}, s.rendered...)
	s.mu.Unlock()

	s.presenter.Present(n.Title, n.Message, presenter.Options{
		ID:      n.ID,
		Tag:     string(n.Kind),
		Payload: n.Payload,
	})
}

// Resync requests one immediate re-read, typically when the page
// regains visibility after being backgrounded or throttled.
func (s *Selector) Resync() {
	select {
	case s.resync <- struct{}{}:
	default: // one pending resync is enough
	}
}

// MarkRead drops an acknowledged notification from the rendered list.
// The cursor keeps its identifier so it is never presented again.
func (s *Selector) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rendered {
		if s.rendered[i].ID == id {
			s.rendered = append(s.rendered[:i], s.rendered[i+1:]...)
			return
		}
	}
}

func (s *Selector) Unread() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Notification, len(s.rendered))
	copy(out, s.rendered)
	return out
}

func (s *Selector) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rendered)
}

func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Selector) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
