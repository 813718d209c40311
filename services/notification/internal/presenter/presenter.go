package presenter

import (
	"encoding/json"
	"sync"

	"kuzeykoc/pkg/logger"
)

type Options struct {
	ID      string
	Tag     string
	Payload json.RawMessage
}

// Permission mirrors the platform notification permission tri-state.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

// SystemSink raises a platform-level notification. Implementations
// replace an existing notification carrying the same tag instead of
// stacking a new one.
type SystemSink interface {
	Show(title, body, tag string, payload json.RawMessage) error
}

// CueSink plays a short audible/vibration cue.
type CueSink interface {
	Play() error
}

// Presenter renders a notification through every available mechanism:
// platform notification when permitted, always an in-page toast, and a
// cue. No failure propagates to the caller.
type Presenter struct {
	system SystemSink
	toasts *ToastFeed
	cue    CueSink
	logger *logger.Logger

	mu         sync.Mutex
	permission Permission
	prompted   bool
	prompt     func() Permission
}

// New builds a presenter. prompt is the platform permission request; it
// is invoked at most once per session and never after an explicit
// denial. A nil prompt leaves an undecided permission undecided.
func New(system SystemSink, toasts *ToastFeed, cue CueSink, prompt func() Permission, log *logger.Logger) *Presenter {
	return &Presenter{
		system: system,
		toasts: toasts,
		cue:    cue,
		logger: log,
		prompt: prompt,
	}
}

func (p *Presenter) Present(title, body string, opts Options) {
	if p.ensurePermission() == PermissionGranted && p.system != nil {
		if err := p.system.Show(title, body, opts.Tag, opts.Payload); err != nil {
			p.logger.Warn("System notification failed: %v", err)
		}
	}

	// The toast is the guaranteed-visible fallback, shown regardless of
	// permission state
	p.toasts.Show(title, body)

	if p.cue != nil {
		if err := p.cue.Play(); err != nil {
			p.logger.Info("Notification cue unavailable: %v", err)
		}
	}
}

func (p *Presenter) ensurePermission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.permission == PermissionDefault && !p.prompted && p.prompt != nil {
		p.prompted = true
		p.permission = p.prompt()
	}
	return p.permission
}

// SetPermission records an externally known permission state, e.g. one
// restored from a previous session.
func (p *Presenter) SetPermission(perm Permission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permission = perm
	if perm == PermissionDenied {
		p.prompted = true
	}
}

func (p *Presenter) PermissionState() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}
