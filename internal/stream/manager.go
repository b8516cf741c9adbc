package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avertin/pricepulse/internal/model"
)

// Sink receives decoded price data from the stream.
// *pricestore.Store satisfies it.
type Sink interface {
	MergeSnapshot(map[string]model.PriceQuote)
	UpsertOne(model.PriceQuote) (model.PriceQuote, bool)
}

// Manager owns the streaming connection lifecycle: it holds at most one
// open connection, classifies inbound frames into the sink, and schedules
// at most one pending reconnect at a time.
type Manager struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	client    *client
	connID    uuid.UUID
	pending   *time.Timer // the single outstanding reconnect timer, nil if none
	stopped   bool
	observers []StateObserver

	wg sync.WaitGroup
}

// NewManager creates a stream manager. It does not connect.
func NewManager(cfg Config, sink Sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg.withDefaults(),
		sink:   sink,
		logger: logger,
		state:  StateDisconnected,
	}
}

// OnStateChange registers a connectivity observer.
func (m *Manager) OnStateChange(obs StateObserver) {
	m.mu.Lock()
	m.observers = append(m.observers, obs)
	m.mu.Unlock()
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect opens the streaming connection. It is idempotent: while the
// connection is Open (or a connect is already in flight) it is a no-op.
// A failed dial schedules a reconnect like any other close.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.state == StateOpen || m.state == StateConnecting {
		m.mu.Unlock()
		return nil
	}
	obs := m.transitionLocked(StateConnecting)
	m.mu.Unlock()
	notify(obs, StateConnecting)

	cl := newClient(m.cfg, m.logger)
	if err := cl.connect(ctx); err != nil {
		m.logger.Warn("stream connect failed", "url", m.cfg.URL, "error", err)
		m.scheduleReconnect()
		return err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		cl.close()
		return ErrStopped
	}
	m.client = cl
	m.connID = uuid.New()
	id := m.connID
	obs = m.transitionLocked(StateOpen)
	m.mu.Unlock()
	notify(obs, StateOpen)

	m.logger.Info("stream open", "url", m.cfg.URL, "conn_id", id)

	m.wg.Add(1)
	go m.dispatchLoop(cl, id)

	return nil
}

// Send serializes and transmits a message if the connection is Open;
// otherwise the message is silently dropped. There is no outbound queue.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	cl := m.client
	open := m.state == StateOpen
	m.mu.Unlock()

	if !open || cl == nil {
		m.logger.Debug("outbound message dropped, stream not open")
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := cl.send(data); err != nil {
		// Transport error: logged only. The read loop's close signal is
		// the sole recovery trigger.
		m.logger.Warn("stream write failed", "error", err)
	}
	return nil
}

// Ping sends a liveness probe.
func (m *Manager) Ping() error {
	return m.Send(pingMessage{Type: "ping"})
}

// Stop shuts the manager down: cancels any pending reconnect, closes the
// connection, and transitions to Disconnected. The manager cannot be
// reused afterwards.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	cl := m.client
	m.client = nil
	obs := m.transitionLocked(StateDisconnected)
	m.mu.Unlock()
	notify(obs, StateDisconnected)

	if cl != nil {
		cl.close()
	}
	m.wg.Wait()

	m.logger.Info("stream stopped")
	return nil
}

// dispatchLoop processes inbound frames one at a time. Each frame is fully
// applied to the sink (or discarded) before the next one is read, so a
// reconnect triggered by the connection closing can never interleave with
// a frame handler: the close is only observed after the channel drains.
func (m *Manager) dispatchLoop(cl *client, id uuid.UUID) {
	defer m.wg.Done()

	for data := range cl.messages {
		m.handleFrame(data)
	}

	m.handleClose(id)
}

// handleFrame classifies a raw frame and applies it to the sink. Malformed
// or unrecognized frames are logged and discarded; the connection stays up.
func (m *Manager) handleFrame(data []byte) {
	frame, err := DecodeFrame(data)
	if err != nil {
		m.logger.Warn("discarding malformed frame", "error", err)
		return
	}

	switch frame.Kind {
	case KindSnapshot:
		m.sink.MergeSnapshot(frame.Snapshot)
		m.logger.Debug("snapshot applied", "symbols", len(frame.Snapshot))

	case KindHeartbeat:
		// Liveness only, no state mutation.

	case KindDelta:
		prev, had := m.sink.UpsertOne(frame.Delta)
		if had {
			m.logger.Debug("delta applied",
				"symbol", frame.Delta.Symbol,
				"price", frame.Delta.Price,
				"previous", prev.Price,
			)
		} else {
			m.logger.Debug("delta applied",
				"symbol", frame.Delta.Symbol,
				"price", frame.Delta.Price,
			)
		}

	case KindUnknown:
		m.logger.Warn("discarding unrecognized frame", "size", len(data))
	}
}

// handleClose reacts to the connection's close signal. Stale signals from
// an already-replaced connection are ignored, so repeated closes cannot
// stack reconnect timers.
func (m *Manager) handleClose(id uuid.UUID) {
	m.mu.Lock()
	if m.stopped || id != m.connID {
		m.mu.Unlock()
		return
	}
	m.client = nil
	m.mu.Unlock()

	m.logger.Warn("stream closed", "conn_id", id, "reconnect_in", m.cfg.ReconnectDelay)
	m.scheduleReconnect()
}

// scheduleReconnect transitions to Reconnecting and arms the reconnect
// timer unless one is already outstanding.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	obs := m.transitionLocked(StateReconnecting)
	if m.pending == nil {
		m.pending = time.AfterFunc(m.cfg.ReconnectDelay, m.reconnect)
	}
	m.mu.Unlock()
	notify(obs, StateReconnecting)
}

// reconnect fires when the reconnect timer elapses.
func (m *Manager) reconnect() {
	m.mu.Lock()
	m.pending = nil
	stopped := m.stopped
	m.mu.Unlock()

	if stopped {
		return
	}

	m.logger.Info("reconnecting stream", "url", m.cfg.URL)
	// A dial failure inside Connect schedules the next attempt; retries
	// continue indefinitely at the fixed delay.
	m.Connect(context.Background())
}

// transitionLocked updates the state and returns the observers to notify.
// Callers must hold m.mu and notify after releasing it. A nil return means
// the state did not change.
func (m *Manager) transitionLocked(s State) []StateObserver {
	if m.state == s {
		return nil
	}
	m.state = s
	return slices.Clone(m.observers)
}

func notify(obs []StateObserver, s State) {
	for _, o := range obs {
		o(s)
	}
}
