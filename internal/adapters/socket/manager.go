package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/camaradigital/plenario/internal/core/domain"
	"github.com/camaradigital/plenario/internal/core/ports"
)

type Config struct {
	URL           string
	DialTimeout   time.Duration
	AckTimeout    time.Duration
	WriteTimeout  time.Duration
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
	MaxAttempts   int
	EventBuffer   int
}

func (c Config) withDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 20 * time.Second
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = time.Second
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 256
	}
	return c
}

// Manager owns the single physical connection to the realtime channel. It is
// constructed once per signed-in session and disposed with Disconnect on
// sign-out or tenant change. Connection failures never surface as errors to
// callers; they feed the retry cycle and are observable through Status.
type Manager struct {
	cfg      Config
	logger   *slog.Logger
	clientID string

	events chan domain.Event

	mu          sync.Mutex
	ctx         context.Context
	conn        *websocket.Conn
	phase       ports.ConnPhase
	tenantID    string
	token       string
	attempts    int
	intentional bool
	retry       *time.Timer
	gen         uint64 // bumped on every (re)connect decision; stale goroutines check it and bail
}

func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg.withDefaults(),
		logger:   logger,
		clientID: uuid.NewString(),
		events:   make(chan domain.Event, cfg.withDefaults().EventBuffer),
		phase:    ports.PhaseDisconnected,
	}
}

var _ ports.Feed = (*Manager)(nil)

func (m *Manager) Connect(ctx context.Context, tenantID, token string) {
	m.mu.Lock()
	// One physical connection per signed-in session: tear down any previous
	// one before dialing, so events are never delivered twice.
	m.teardownLocked()
	m.ctx = ctx
	m.tenantID = tenantID
	m.token = token
	m.intentional = false
	m.attempts = 0
	m.gen++
	gen := m.gen
	m.phase = ports.PhaseConnecting
	m.mu.Unlock()

	go m.dial(gen)
}

func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intentional = true
	m.gen++
	m.teardownLocked()
	m.tenantID = ""
	m.token = ""
	m.attempts = 0
	m.phase = ports.PhaseDisconnected
	m.logger.Info("realtime feed disconnected")
}

func (m *Manager) Reconnect() {
	m.mu.Lock()
	if m.phase == ports.PhaseConnected {
		m.mu.Unlock()
		return
	}
	if m.tenantID == "" || m.token == "" {
		m.mu.Unlock()
		return
	}
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.attempts = 0
	m.intentional = false
	m.gen++
	gen := m.gen
	m.phase = ports.PhaseConnecting
	m.mu.Unlock()

	m.logger.Info("manual reconnect requested")
	go m.dial(gen)
}

func (m *Manager) Events() <-chan domain.Event {
	return m.events
}

func (m *Manager) Status() ports.ConnStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ports.ConnStatus{
		Connected:   m.phase == ports.PhaseConnected,
		Phase:       m.phase,
		TenantID:    m.tenantID,
		HasToken:    m.token != "",
		Attempts:    m.attempts,
		MaxAttempts: m.cfg.MaxAttempts,
	}
}

// teardownLocked stops the pending retry timer and closes the live
// connection. Callers hold m.mu.
func (m *Manager) teardownLocked() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

type authPayload struct {
	Token    string `json:"token"`
	TenantID string `json:"tenantId"`
}

type authAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type joinPayload struct {
	Room string `json:"room"`
}

func (m *Manager) dial(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.intentional {
		m.mu.Unlock()
		return
	}
	ctx := m.ctx
	tenantID, token := m.tenantID, m.token
	m.phase = ports.PhaseConnecting
	m.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.DialTimeout}
	header := http.Header{"X-Client-ID": []string{m.clientID}}
	conn, _, err := dialer.DialContext(ctx, m.cfg.URL, header)
	if err != nil {
		m.logger.Warn("dial failed", "url", m.cfg.URL, "error", err)
		m.scheduleRetry(gen)
		return
	}

	m.mu.Lock()
	if gen != m.gen || m.intentional {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.conn = conn
	m.phase = ports.PhaseAuthenticating
	m.mu.Unlock()

	// The server must acknowledge the credential before the client is
	// usable. A rejection is terminal: a bad token will not be retried.
	if err := m.authenticate(conn, tenantID, token); err != nil {
		if errors.Is(err, domain.ErrAuthRejected) {
			conn.Close()
			m.mu.Lock()
			if gen == m.gen {
				m.conn = nil
				m.phase = ports.PhaseAuthRejected
			}
			m.mu.Unlock()
			return
		}
		conn.Close()
		m.logger.Warn("authentication handshake failed", "error", err)
		m.scheduleRetry(gen)
		return
	}

	if err := m.writeFrame(conn, "join_room", joinPayload{Room: "tenant_" + tenantID}); err != nil {
		conn.Close()
		m.logger.Warn("join_room failed", "error", err)
		m.scheduleRetry(gen)
		return
	}
	conn.SetReadDeadline(time.Time{})

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.phase = ports.PhaseConnected
	m.attempts = 0
	m.mu.Unlock()

	m.logger.Info("realtime feed connected", "tenant_id", tenantID, "room", "tenant_"+tenantID)
	go m.readLoop(conn, gen)
}

func (m *Manager) authenticate(conn *websocket.Conn, tenantID, token string) error {
	if err := m.writeFrame(conn, "authenticate", authPayload{Token: token, TenantID: tenantID}); err != nil {
		return fmt.Errorf("send authenticate: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(m.cfg.AckTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read authenticate ack: %w", err)
	}

	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Event != "authenticated" {
		return fmt.Errorf("unexpected handshake frame %q", string(raw))
	}
	var ack authAck
	if err := json.Unmarshal(frame.Data, &ack); err != nil {
		return fmt.Errorf("decode authenticate ack: %w", err)
	}
	if !ack.Success {
		m.logger.Error("authentication rejected", "reason", ack.Error)
		return domain.ErrAuthRejected
	}
	return nil
}

func (m *Manager) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			stale := gen != m.gen
			intentional := m.intentional
			if !stale && !intentional {
				m.conn = nil
			}
			m.mu.Unlock()

			if stale || intentional {
				return
			}
			m.logger.Warn("connection lost", "error", err)
			m.scheduleRetry(gen)
			return
		}

		ev, ok := Decode(raw)
		if !ok {
			m.logger.Debug("dropping unrecognized frame", "frame", string(raw))
			continue
		}

		select {
		case m.events <- ev:
		default:
			m.logger.Warn("event buffer full, dropping event")
		}
	}
}

func (m *Manager) scheduleRetry(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.intentional {
		return
	}
	if m.attempts >= m.cfg.MaxAttempts {
		m.phase = ports.PhaseFailed
		m.logger.Error("reconnect budget exhausted", "attempts", m.attempts)
		return
	}

	m.attempts++
	delay := backoffDelay(m.cfg.ReconnectBase, m.cfg.ReconnectMax, m.attempts)
	m.phase = ports.PhaseReconnecting
	m.gen++
	next := m.gen

	m.logger.Info("scheduling reconnect",
		"attempt", m.attempts,
		"max_attempts", m.cfg.MaxAttempts,
		"delay", delay,
	)
	m.retry = time.AfterFunc(delay, func() { m.dial(next) })
}

func (m *Manager) writeFrame(conn *websocket.Conn, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
	return conn.WriteJSON(wireFrame{Event: event, Data: payload})
}

// backoffDelay is base doubled per attempt, capped: base, 2*base, 4*base, ...
func backoffDelay(base, ceiling time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}
