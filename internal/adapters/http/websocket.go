package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/camslew/internal/adapters/nats"
	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is a client request: {"action":"subscribe","camera":"12"}.
// An empty camera means every camera.
type wsMessage struct {
	Action string `json:"action"`
	Camera string `json:"camera"`
}

// wsEvent wraps a committed slew relayed to the client.
type wsEvent struct {
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

type wsReply struct {
	Status  string `json:"status,omitempty"`
	Subject string `json:"subject,omitempty"`
	Error   string `json:"error,omitempty"`
}

func wsSubject(camera string) string {
	if camera == "" {
		return natsadapter.SlewSubjectPattern
	}
	return natsadapter.SlewSubject(domain.CameraID(camera))
}

type unsubscriber interface {
	Unsubscribe() error
}

type subscribeFunc func(subject string, cb nats.MsgHandler) (unsubscriber, error)

// wsRelay tracks the subjects one client listens to and forwards matching
// slew events through send. While the all-cameras subscription is active,
// per-camera subscriptions stay silent so each event is sent once.
type wsRelay struct {
	subscribe subscribeFunc
	send      func(v any) error

	mu   sync.Mutex // guards subs; NATS callbacks read it
	subs map[string]unsubscriber
}

func newWSRelay(subscribe subscribeFunc, send func(v any) error) *wsRelay {
	return &wsRelay{subscribe: subscribe, send: send, subs: make(map[string]unsubscriber)}
}

func (r *wsRelay) forwarder(subject string) nats.MsgHandler {
	return func(msg *nats.Msg) {
		if subject != natsadapter.SlewSubjectPattern && r.subscribed(natsadapter.SlewSubjectPattern) {
			return
		}
		_ = r.send(wsEvent{Type: "slew.committed", Subject: msg.Subject, Data: msg.Data})
	}
}

func (r *wsRelay) subscribed(subject string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[subject]
	return ok
}

// handle applies one client message and returns the reply to send back.
func (r *wsRelay) handle(raw []byte) wsReply {
	var m wsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return wsReply{Error: "invalid JSON"}
	}
	subject := wsSubject(m.Camera)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch m.Action {
	case "subscribe":
		if _, ok := r.subs[subject]; ok {
			return wsReply{Status: "already subscribed", Subject: subject}
		}
		s, err := r.subscribe(subject, r.forwarder(subject))
		if err != nil {
			return wsReply{Error: "subscribe failed: " + err.Error()}
		}
		r.subs[subject] = s
		return wsReply{Status: "subscribed", Subject: subject}

	case "unsubscribe":
		s, ok := r.subs[subject]
		if !ok {
			return wsReply{Error: "not subscribed to " + subject}
		}
		_ = s.Unsubscribe()
		delete(r.subs, subject)
		return wsReply{Status: "unsubscribed", Subject: subject}

	default:
		return wsReply{Error: "unknown action: " + m.Action}
	}
}

func (r *wsRelay) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for subject, s := range r.subs {
		_ = s.Unsubscribe()
		delete(r.subs, subject)
	}
}

// WebSocketHandler upgrades to WebSocket and relays committed slews to the
// client. Every connection starts subscribed to all cameras.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	subscribe := func(subject string, cb nats.MsgHandler) (unsubscriber, error) {
		return nc.Subscribe(subject, cb)
	}

	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		logger := slog.Default().With("remote_addr", c.RemoteAddr().String())
		logger.Info("ws client connected")

		// NATS callbacks, pings and replies all write to the same conn.
		var mu sync.Mutex
		write := func(kind int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(kind, data)
		}
		send := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return write(websocket.TextMessage, data)
		}

		relay := newWSRelay(subscribe, send)
		defer relay.close()
		if reply := relay.handle([]byte(`{"action":"subscribe"}`)); reply.Error != "" {
			logger.Error("ws default subscribe", "error", reply.Error)
			return
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			_ = send(relay.handle(msg))
		}
		logger.Info("ws client disconnected")
	}
}
