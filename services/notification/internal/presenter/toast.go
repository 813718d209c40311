package presenter

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultToastDuration keeps a toast on screen long enough to read it.
const DefaultToastDuration = 8 * time.Second

type Toast struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Listener receives each toast as it is shown, e.g. to stream it to a
// connected page.
type Listener func(Toast)

// ToastFeed holds the in-page transient alerts. Showing a new toast
// clears the previous ones; expired toasts disappear from Active reads.
type ToastFeed struct {
	mu       sync.Mutex
	duration time.Duration
	toasts   []Toast
	listener Listener
	now      func() time.Time
}

func NewToastFeed(duration time.Duration) *ToastFeed {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &ToastFeed{duration: duration, now: time.Now}
}

func (f *ToastFeed) SetListener(l Listener) {
	f.mu.Lock()
	f.listener = l
	f.mu.Unlock()
}

func (f *ToastFeed) Show(title, body string) Toast {
	f.mu.Lock()
	now := f.now()
	toast := Toast{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: now.Add(f.duration),
	}
	// Clear prior toasts before showing the new one
	f.toasts = []Toast{toast}
	listener := f.listener
	f.mu.Unlock()

	if listener != nil {
		listener(toast)
	}
	return toast
}

// Dismiss removes a toast before its auto-dismiss deadline.
func (f *ToastFeed) Dismiss(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.toasts {
		if f.toasts[i].ID == id {
			f.toasts = append(f.toasts[:i], f.toasts[i+1:]...)
			return
		}
	}
}

// Active returns the toasts still within their display window.
func (f *ToastFeed) Active() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	active := make([]Toast, 0, len(f.toasts))
	for _, t := range f.toasts {
		if t.ExpiresAt.After(now) {
			active = append(active, t)
		}
	}
	return active
}
