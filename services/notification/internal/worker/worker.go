package worker

import (
	"context"
	"fmt"
	"time"

	"kuzeykoc/pkg/logger"
	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/realtime"
)

const coachRoute = "/coach"

// Fetcher reads the unread notifications of a coach using the handed
// over credentials, independent of any page session.
type Fetcher interface {
	FetchUnread(ctx context.Context, coach CoachData, creds Credentials) ([]entity.Notification, error)
}

// PlatformNotifier raises a notification at the platform level, outside
// any page.
type PlatformNotifier interface {
	Show(ctx context.Context, coachID string, notice realtime.SystemNotice) error
}

// Worker is the persistent background checker. It keeps watching for
// new notifications while no page is open, using only what lives in its
// durable cache.
type Worker struct {
	cache    DurableCache
	fetcher  Fetcher
	notifier PlatformNotifier
	logger   *logger.Logger

	pollInterval    time.Duration
	activationDelay time.Duration

	inbox  chan Message
	clicks chan ClickEvent

	// Owned by the Run goroutine; tests drive handle/cycle directly on
	// a single goroutine.
	ticker  *time.Ticker
	visible bool
}

func NewWorker(
	cache DurableCache,
	fetcher Fetcher,
	notifier PlatformNotifier,
	log *logger.Logger,
	pollInterval time.Duration,
	activationDelay time.Duration,
) *Worker {
	return &Worker{
		cache:    cache,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   log,

		pollInterval:    pollInterval,
		activationDelay: activationDelay,

		inbox:  make(chan Message, 16),
		clicks: make(chan ClickEvent, 8),
	}
}

// Send hands a page message to the worker. It never blocks; if the
// worker is gone or backlogged the message is dropped and logged, the
// page must not stall on it.
func (w *Worker) Send(msg Message) {
	select {
	case w.inbox <- msg:
	default:
		w.logger.Warn("Worker inbox full, dropping %T", msg)
	}
}

// Clicks streams user interactions with worker-raised notifications.
func (w *Worker) Clicks() <-chan ClickEvent {
	return w.clicks
}

// Run drives the worker until ctx is cancelled. The periodic check only
// starts after a short activation delay, so a page opened moments later
// gets to hand over fresh state first.
func (w *Worker) Run(ctx context.Context) {
	grace := time.NewTimer(w.activationDelay)
	defer grace.Stop()

	var tick <-chan time.Time
	defer func() {
		if w.ticker != nil {
			w.ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-grace.C:
			w.ticker = time.NewTicker(w.tickInterval())
			tick = w.ticker.C
			w.cycle(ctx)
		case <-tick:
			w.cycle(ctx)
		case msg := <-w.inbox:
			w.handle(ctx, msg)
		}
	}
}

// tickInterval relaxes the background cadence while a page is visible:
// the foreground delivery session covers the coach then, the worker
// only needs to keep its marker warm.
func (w *Worker) tickInterval() time.Duration {
	if w.visible {
		return 2 * w.pollInterval
	}
	return w.pollInterval
}

func (w *Worker) handle(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case StoreCoachDataMessage:
		if err := w.cache.SetCoach(ctx, m.Coach); err != nil {
			w.logger.Error("Failed to store coach data: %v", err)
		}
	case StoreCredentialsMessage:
		if err := w.cache.SetCredentials(ctx, m.Credentials); err != nil {
			w.logger.Error("Failed to store credentials: %v", err)
			return
		}
		// Fresh credentials mean the background check can run right away
		w.cycle(ctx)
	case ShowNotificationMessage:
		w.showForPage(ctx, m)
	case VisibilityChangeMessage:
		if m.IsVisible != w.visible {
			w.logger.Info("Page visibility changed: visible=%v", m.IsVisible)
		}
		w.visible = m.IsVisible
		if w.ticker != nil {
			w.ticker.Reset(w.tickInterval())
		}
	default:
		w.logger.Warn("Unknown worker message %T", msg)
	}
}

func (w *Worker) showForPage(ctx context.Context, m ShowNotificationMessage) {
	coach, err := w.cache.GetCoach(ctx)
	if err != nil || coach == nil {
		w.logger.Warn("Cannot show page notification, no coach data: %v", err)
		return
	}
	tag := m.Tag
	if tag == "" {
		tag = "coach-notification"
	}
	notice := realtime.SystemNotice{
		Title:              m.Title,
		Body:               m.Body,
		Tag:                tag,
		RequireInteraction: true,
		Actions:            []string{"open", "close"},
		Route:              coachRoute,
	}
	if err := w.notifier.Show(ctx, coach.ID, notice); err != nil {
		w.logger.Error("Failed to show notification: %v", err)
	}
}

// cycle is one background check: load state, fetch unread rows, show
// the ones newer than the last check. The marker advances to the newest
// created_at actually shown, never to the wall clock, so a row
// committed during the cycle with an earlier timestamp is still picked
// up next time. A failed cycle retries the same window.
func (w *Worker) cycle(ctx context.Context) {
	coach, err := w.cache.GetCoach(ctx)
	if err != nil {
		w.logger.Error("Failed to load coach data: %v", err)
		return
	}
	creds, err := w.cache.GetCredentials(ctx)
	if err != nil {
		w.logger.Error("Failed to load credentials: %v", err)
		return
	}
	if coach == nil || creds == nil {
		// Not ready yet, wait for the page to hand state over
		return
	}

	notifications, err := w.fetcher.FetchUnread(ctx, *coach, *creds)
	if err != nil {
		w.logger.Error("Background notification check failed: %v", err)
		return
	}

	lastCheck, err := w.cache.GetLastCheck(ctx, coach.ID)
	if err != nil {
		w.logger.Warn("Failed to load last check marker, using epoch: %v", err)
	}

	shown := 0
	var newest time.Time
	for i := range notifications {
		n := &notifications[i]
		if !n.CreatedAt.After(lastCheck) {
			continue
		}
		notice := realtime.SystemNotice{
			Title:              n.Title,
			Body:               n.Message,
			Tag:                fmt.Sprintf("coach-notification-%s", n.ID),
			RequireInteraction: true,
			Actions:            []string{"open", "close"},
			Route:              coachRoute,
			Payload:            n.Payload,
		}
		if err := w.notifier.Show(ctx, coach.ID, notice); err != nil {
			w.logger.Error("Failed to show notification %s: %v", n.ID, err)
			continue
		}
		shown++
		if n.CreatedAt.After(newest) {
			newest = n.CreatedAt
		}
	}

	if shown > 0 {
		if err := w.cache.SetLastCheck(ctx, coach.ID, newest); err != nil {
			w.logger.Error("Failed to advance last check marker: %v", err)
		}
	}
}

// HandleNotificationClick resolves a click on a worker-raised
// notification. A close action dismisses silently, anything else
// navigates to the coach dashboard.
func (w *Worker) HandleNotificationClick(action string) {
	if action == "close" {
		return
	}
	event := ClickEvent{Action: "open", Route: coachRoute}
	select {
	case w.clicks <- event:
	default:
		w.logger.Warn("Click listener backlogged, dropping click event")
	}
}

// RepoFetcher adapts the notification store read to the worker's
// credential-gated fetch. Credentials are validated for presence only,
// the store connection itself is service-owned.
type RepoFetcher struct {
	store Store
}

// Store is the read side the fetcher needs.
type Store interface {
	GetUnread(coachID string) ([]entity.Notification, error)
}

func NewRepoFetcher(store Store) *RepoFetcher {
	return &RepoFetcher{store: store}
}

func (f *RepoFetcher) FetchUnread(ctx context.Context, coach CoachData, creds Credentials) ([]entity.Notification, error) {
	if creds.URL == "" || creds.AnonKey == "" {
		return nil, fmt.Errorf("incomplete credentials")
	}
	return f.store.GetUnread(coach.ID)
}

// ChannelNotifier publishes worker notifications onto the coach's
// system channel, where any listening client renders them.
type ChannelNotifier struct {
	channel *realtime.RedisChannel
}

func NewChannelNotifier(channel *realtime.RedisChannel) *ChannelNotifier {
	return &ChannelNotifier{channel: channel}
}

func (n *ChannelNotifier) Show(ctx context.Context, coachID string, notice realtime.SystemNotice) error {
	return n.channel.PublishSystemNotice(ctx, coachID, notice)
}
