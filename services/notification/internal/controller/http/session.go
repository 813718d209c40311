package http

import (
	"encoding/json"
	"sync"

	"kuzeykoc/services/notification/internal/presenter"
	"kuzeykoc/services/notification/internal/worker"

	"github.com/gorilla/websocket"
)

// session serializes writes to one websocket connection. gorilla allows
// a single concurrent writer, and a session has several producers: the
// delivery loop, the toast feed and the system notice relay.
type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newSession(conn *websocket.Conn) *session {
	return &session{conn: conn}
}

func (s *session) write(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// clientMessage is a page-to-server frame.
type clientMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Visible bool   `json:"visible,omitempty"`
	State   string `json:"state,omitempty"`
	Action  string `json:"action,omitempty"`
}

// sessionPresenter writes the full notification frame to the page and
// then runs the regular presentation chain.
type sessionPresenter struct {
	session   *session
	presenter *presenter.Presenter
}

func (sp *sessionPresenter) Present(title, body string, opts presenter.Options) {
	_ = sp.session.write(map[string]interface{}{
		"type":    "notification",
		"id":      opts.ID,
		"title":   title,
		"body":    body,
		"tag":     opts.Tag,
		"payload": json.RawMessage(opts.Payload),
	})
	sp.presenter.Present(title, body, opts)
}

// workerSink raises platform notifications through the background
// worker, which owns the platform surface.
type workerSink struct {
	worker *worker.Worker
}

func (s workerSink) Show(title, body, tag string, payload json.RawMessage) error {
	s.worker.Send(worker.ShowNotificationMessage{Title: title, Body: body, Tag: tag})
	return nil
}

// cueSink asks the page to play the notification cue. The page may have
// no audio output; a failed write is the only error here and the caller
// swallows it.
type cueSink struct {
	session *session
}

func (s cueSink) Play() error {
	return s.session.write(map[string]string{"type": "cue"})
}
