package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"kuzeykoc/pkg/logger"
	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu        sync.Mutex
	coach     *CoachData
	creds     *Credentials
	lastCheck map[string]time.Time
}

func newMemCache() *memCache {
	return &memCache{lastCheck: make(map[string]time.Time)}
}

func (c *memCache) SetCoach(ctx context.Context, coach CoachData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coach = &coach
	return nil
}

func (c *memCache) GetCoach(ctx context.Context) (*CoachData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coach, nil
}

func (c *memCache) SetCredentials(ctx context.Context, creds Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = &creds
	return nil
}

func (c *memCache) GetCredentials(ctx context.Context) (*Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds, nil
}

func (c *memCache) SetLastCheck(ctx context.Context, coachID string, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCheck[coachID] = t
	return nil
}

func (c *memCache) GetLastCheck(ctx context.Context, coachID string) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.lastCheck[coachID]; ok {
		return t, nil
	}
	return time.Unix(0, 0), nil
}

type fakeFetcher struct {
	mu            sync.Mutex
	notifications []entity.Notification
	err           error
}

func (f *fakeFetcher) FetchUnread(ctx context.Context, coach CoachData, creds Credentials) ([]entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []realtime.SystemNotice
	err     error
}

func (n *recordingNotifier) Show(ctx context.Context, coachID string, notice realtime.SystemNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notice)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

func setupWorker() (*Worker, *memCache, *fakeFetcher, *recordingNotifier) {
	cache := newMemCache()
	fetcher := &fakeFetcher{}
	notifier := &recordingNotifier{}
	w := NewWorker(cache, fetcher, notifier, logger.New(), 20*time.Millisecond, 10*time.Millisecond)
	return w, cache, fetcher, notifier
}

func TestCycle_NotReadyWithoutHandover(t *testing.T) {
	w, _, fetcher, notifier := setupWorker()
	fetcher.notifications = []entity.Notification{
		{ID: "n-1", CoachID: "coach-1", Title: "a", Message: "b", CreatedAt: time.Now()},
	}

	// No coach data and no credentials yet
	w.cycle(context.Background())
	assert.Equal(t, 0, notifier.count())
}

func TestCycle_ShowsNewAndAdvancesMarker(t *testing.T) {
	w, cache, fetcher, notifier := setupWorker()
	ctx := context.Background()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))
	require.NoError(t, cache.SetCredentials(ctx, Credentials{URL: "http://store", AnonKey: "key"}))

	old := time.Now().Add(-time.Hour)
	fresh := time.Now()
	require.NoError(t, cache.SetLastCheck(ctx, "coach-1", old.Add(time.Minute)))
	fetcher.notifications = []entity.Notification{
		{ID: "n-old", CoachID: "coach-1", Title: "eski", Message: "m", CreatedAt: old},
		{ID: "n-new", CoachID: "coach-1", Title: "yeni", Message: "m", CreatedAt: fresh},
	}

	w.cycle(ctx)

	// Only the row newer than the marker was shown
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "yeni", notifier.notices[0].Title)
	assert.Equal(t, "coach-notification-n-new", notifier.notices[0].Tag)
	assert.True(t, notifier.notices[0].RequireInteraction)
	assert.Equal(t, "/coach", notifier.notices[0].Route)

	marker, _ := cache.GetLastCheck(ctx, "coach-1")
	assert.True(t, marker.After(old))

	// Second cycle shows nothing new
	w.cycle(ctx)
	assert.Equal(t, 1, notifier.count())
}

func TestCycle_MarkerFollowsNewestShownCreatedAt(t *testing.T) {
	w, cache, fetcher, notifier := setupWorker()
	ctx := context.Background()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))
	require.NoError(t, cache.SetCredentials(ctx, Credentials{URL: "http://store", AnonKey: "key"}))

	created := time.Now().Add(-time.Second)
	fetcher.notifications = []entity.Notification{
		{ID: "n-1", CoachID: "coach-1", Title: "a", Message: "m", CreatedAt: created},
	}

	w.cycle(ctx)
	require.Equal(t, 1, notifier.count())

	// The marker is the created_at of the shown row, not the wall clock
	marker, _ := cache.GetLastCheck(ctx, "coach-1")
	assert.Equal(t, created, marker)

	// A row committed during the first cycle carries a timestamp after
	// the shown row but before the wall clock at marker time; it must
	// still be delivered on the next cycle
	fetcher.mu.Lock()
	fetcher.notifications = append(fetcher.notifications, entity.Notification{
		ID: "n-2", CoachID: "coach-1", Title: "b", Message: "m",
		CreatedAt: created.Add(time.Millisecond),
	})
	fetcher.mu.Unlock()

	w.cycle(ctx)
	assert.Equal(t, 2, notifier.count())
}

func TestCycle_FirstRunTreatsEverythingAsNew(t *testing.T) {
	w, cache, fetcher, notifier := setupWorker()
	ctx := context.Background()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))
	require.NoError(t, cache.SetCredentials(ctx, Credentials{URL: "http://store", AnonKey: "key"}))

	fetcher.notifications = []entity.Notification{
		{ID: "n-1", CoachID: "coach-1", Title: "a", Message: "m", CreatedAt: time.Now().Add(-24 * time.Hour)},
		{ID: "n-2", CoachID: "coach-1", Title: "b", Message: "m", CreatedAt: time.Now()},
	}

	// No marker stored: epoch default makes both rows new
	w.cycle(ctx)
	assert.Equal(t, 2, notifier.count())
}

func TestCycle_FetchErrorKeepsMarker(t *testing.T) {
	w, cache, fetcher, notifier := setupWorker()
	ctx := context.Background()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))
	require.NoError(t, cache.SetCredentials(ctx, Credentials{URL: "http://store", AnonKey: "key"}))
	fetcher.err = fmt.Errorf("store down")

	w.cycle(ctx)

	assert.Equal(t, 0, notifier.count())
	marker, _ := cache.GetLastCheck(ctx, "coach-1")
	assert.Equal(t, time.Unix(0, 0), marker)
}

func TestHandle_StoreCredentialsTriggersImmediateCycle(t *testing.T) {
	w, cache, fetcher, notifier := setupWorker()
	ctx := context.Background()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))
	fetcher.notifications = []entity.Notification{
		{ID: "n-1", CoachID: "coach-1", Title: "a", Message: "m", CreatedAt: time.Now()},
	}

	w.handle(ctx, StoreCredentialsMessage{Credentials: Credentials{URL: "http://store", AnonKey: "key"}})

	assert.Equal(t, 1, notifier.count())
}

func TestHandle_ShowNotificationUsesDefaultTag(t *testing.T) {
	w, cache, _, notifier := setupWorker()
	ctx := context.Background()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))

	w.handle(ctx, ShowNotificationMessage{Title: "Başlık", Body: "Mesaj"})

	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "coach-notification", notifier.notices[0].Tag)
}

func TestHandle_VisibilityStretchesCadence(t *testing.T) {
	w, _, _, _ := setupWorker()
	ctx := context.Background()

	assert.Equal(t, w.pollInterval, w.tickInterval())

	w.handle(ctx, VisibilityChangeMessage{IsVisible: true})
	assert.Equal(t, 2*w.pollInterval, w.tickInterval())

	w.handle(ctx, VisibilityChangeMessage{IsVisible: false})
	assert.Equal(t, w.pollInterval, w.tickInterval())
}

func TestHandleNotificationClick(t *testing.T) {
	w, _, _, _ := setupWorker()

	w.HandleNotificationClick("close")
	select {
	case <-w.Clicks():
		t.Fatal("close must not emit a click event")
	default:
	}

	w.HandleNotificationClick("open")
	select {
	case click := <-w.Clicks():
		assert.Equal(t, "open", click.Action)
		assert.Equal(t, "/coach", click.Route)
	default:
		t.Fatal("expected a click event")
	}
}

func TestRun_PeriodicCheckAfterActivationDelay(t *testing.T) {
	w, cache, fetcher, notifier := setupWorker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cache.SetCoach(ctx, CoachData{ID: "coach-1"}))
	require.NoError(t, cache.SetCredentials(ctx, Credentials{URL: "http://store", AnonKey: "key"}))
	fetcher.notifications = []entity.Notification{
		{ID: "n-1", CoachID: "coach-1", Title: "a", Message: "m", CreatedAt: time.Now()},
	}

	go w.Run(ctx)

	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRepoFetcher_RequiresCredentials(t *testing.T) {
	fetcher := NewRepoFetcher(storeFunc(func(coachID string) ([]entity.Notification, error) {
		return []entity.Notification{{ID: "n-1"}}, nil
	}))

	_, err := fetcher.FetchUnread(context.Background(), CoachData{ID: "coach-1"}, Credentials{})
	assert.Error(t, err)

	rows, err := fetcher.FetchUnread(context.Background(), CoachData{ID: "coach-1"},
		Credentials{URL: "http://store", AnonKey: "key"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

type storeFunc func(coachID string) ([]entity.Notification, error)

func (f storeFunc) GetUnread(coachID string) ([]entity.Notification, error) {
	return f(coachID)
}
