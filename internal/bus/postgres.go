// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Default bus configuration values.
const (
	defaultPublishTimeout   = 3 * time.Second
	defaultChannelPrefix    = "playgrid"
	defaultReconnectInitial = 100 * time.Millisecond
	defaultReconnectMax     = 30 * time.Second
)

// maxNotifyPayload is the PostgreSQL NOTIFY payload limit. Envelopes
// are small; hitting this means an operation argument is oversized.
const maxNotifyPayload = 8000

// PostgresBus implements Bus on PostgreSQL LISTEN/NOTIFY. Requests are
// broadcast on one channel, responses correlated by event ID on a
// second. Listener connections reconnect with exponential backoff.
type PostgresBus struct {
	pool   *pgxpool.Pool
	origin string
	cfg    busConfig

	mu      sync.Mutex
	handler Handler
	pending map[ulid.ULID]chan Event
	started bool

	// notify is the outbound send, a seam for tests.
	notify func(ctx context.Context, channel, payload string) error

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

type busConfig struct {
	publishTimeout   time.Duration
	channelPrefix    string
	reconnectInitial time.Duration
	reconnectMax     time.Duration
	metrics          *Metrics
}

// Option configures a PostgresBus.
type Option func(*busConfig)

// WithPublishTimeout sets how long Publish waits for a responder.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *busConfig) { c.publishTimeout = d }
}

// WithChannelPrefix sets the LISTEN/NOTIFY channel name prefix, letting
// several networks share one database.
func WithChannelPrefix(prefix string) Option {
	return func(c *busConfig) { c.channelPrefix = prefix }
}

// WithMetrics attaches bus traffic counters.
func WithMetrics(m *Metrics) Option {
	return func(c *busConfig) { c.metrics = m }
}

// WithReconnectConfig sets the listener reconnect backoff bounds.
func WithReconnectConfig(initial, maxInterval time.Duration) Option {
	return func(c *busConfig) {
		c.reconnectInitial = initial
		c.reconnectMax = maxInterval
	}
}

// NewPostgresBus creates a bus over the given pool. origin is this
// process's server name, stamped on every published event.
func NewPostgresBus(pool *pgxpool.Pool, origin string, opts ...Option) *PostgresBus {
	cfg := busConfig{
		publishTimeout:   defaultPublishTimeout,
		channelPrefix:    defaultChannelPrefix,
		reconnectInitial: defaultReconnectInitial,
		reconnectMax:     defaultReconnectMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &PostgresBus{
		pool:    pool,
		origin:  origin,
		cfg:     cfg,
		pending: make(map[ulid.ULID]chan Event),
	}
	b.notify = b.pgNotify
	return b
}

func (b *PostgresBus) requestChannel() string  { return b.cfg.channelPrefix + "_requests" }
func (b *PostgresBus) responseChannel() string { return b.cfg.channelPrefix + "_responses" }

// Subscribe implements Bus.
func (b *PostgresBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// Start begins listening on the request and response channels. It
// returns once both listeners are spawned; listeners run until Stop.
func (b *PostgresBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return oops.Errorf("bus already started")
	}
	b.started = true

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	// Requests are handled off the listener goroutine: an owner
	// executing an operation may itself publish (activation fans out
	// teleports) and must not block its own request loop.
	handleRequest := func(ctx context.Context, payload string) {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handleRequest(ctx, payload)
		}()
	}
	b.wg.Add(2)
	go b.listen(runCtx, b.requestChannel(), handleRequest)
	go b.listen(runCtx, b.responseChannel(), b.handleResponse)
	return nil
}

// Stop cancels the listeners and waits for them to drain.
func (b *PostgresBus) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.started = false
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
}

// Publish implements Bus.
func (b *PostgresBus) Publish(ctx context.Context, ev Event) (Event, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return ev, oops.With("op", ev.Op).Wrap(err)
	}
	if len(payload) > maxNotifyPayload {
		return ev, oops.Code("EVENT_TOO_LARGE").
			With("op", ev.Op).
			With("size", len(payload)).
			Errorf("event payload exceeds NOTIFY limit")
	}

	respCh := make(chan Event, 1)
	b.mu.Lock()
	b.pending[ev.ID] = respCh
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, ev.ID)
		b.mu.Unlock()
	}()

	if err := b.notify(ctx, b.requestChannel(), string(payload)); err != nil {
		return ev, oops.Code("BUS_PUBLISH_FAILED").With("op", ev.Op).Wrap(err)
	}
	if m := b.cfg.metrics; m != nil {
		m.Published.WithLabelValues(ev.Op).Inc()
	}

	timer := time.NewTimer(b.cfg.publishTimeout)
	defer timer.Stop()

	select {
	case resp := <-respCh:
		return resp, nil
	case <-timer.C:
		if m := b.cfg.metrics; m != nil {
			m.Timeouts.Inc()
			m.Unclaimed.Inc()
		}
		slog.Warn("bus publish unclaimed",
			"op", ev.Op,
			"target", ev.Target,
			"timeout", b.cfg.publishTimeout,
		)
		return ev, nil
	case <-ctx.Done():
		return ev, ctx.Err()
	}
}

// pgNotify sends a payload on a channel through the pool.
func (b *PostgresBus) pgNotify(ctx context.Context, channel, payload string) error {
	_, err := b.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, channel, payload)
	if err != nil {
		return oops.With("channel", channel).Wrap(err)
	}
	return nil
}

// reconnectPolicy hands out reconnect delays. Repeated failures escalate
// exponentially up to a cap; a session that reached LISTEN starts the
// escalation over.
type reconnectPolicy struct {
	initial time.Duration
	max     time.Duration
	backoff retry.Backoff
}

func newReconnectPolicy(initial, max time.Duration) *reconnectPolicy {
	return &reconnectPolicy{initial: initial, max: max}
}

// next returns the delay before the following connection attempt.
func (p *reconnectPolicy) next(healthy bool) (time.Duration, bool) {
	if healthy || p.backoff == nil {
		p.backoff = retry.WithCappedDuration(p.max, retry.NewExponential(p.initial))
	}
	return p.backoff.Next()
}

// listen holds a dedicated connection on the given channel, dispatching
// each notification payload, reconnecting with backoff on failure.
func (b *PostgresBus) listen(ctx context.Context, channel string, dispatch func(context.Context, string)) {
	defer b.wg.Done()

	policy := newReconnectPolicy(b.cfg.reconnectInitial, b.cfg.reconnectMax)

	for {
		healthy, err := b.listenOnce(ctx, channel, dispatch)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("bus listener disconnected, reconnecting",
			"channel", channel,
			"error", err,
		)

		delay, stop := policy.next(healthy)
		if stop {
			return
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// listenOnce runs one LISTEN session until the connection breaks or the
// context is cancelled. The healthy result reports whether LISTEN was
// established before the session ended.
func (b *PostgresBus) listenOnce(ctx context.Context, channel string, dispatch func(context.Context, string)) (healthy bool, err error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return false, oops.With("channel", channel).Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgIdentifier(channel)); err != nil {
		return false, oops.With("channel", channel).Wrap(err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return true, oops.With("channel", channel).Wrap(err)
		}
		dispatch(ctx, notification.Payload)
	}
}

// handleRequest runs the subscribed handler for an inbound request and
// responds when this process claimed it.
func (b *PostgresBus) handleRequest(ctx context.Context, payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.Warn("bus dropped undecodable request", "error", err)
		return
	}

	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h == nil {
		return
	}

	out, handled := h(ctx, ev)
	if !handled {
		return
	}
	if m := b.cfg.metrics; m != nil {
		m.Handled.WithLabelValues(ev.Op).Inc()
	}

	resp, err := json.Marshal(out)
	if err != nil {
		slog.Error("bus failed to encode response", "op", ev.Op, "error", err)
		return
	}
	if err := b.notify(ctx, b.responseChannel(), string(resp)); err != nil {
		slog.Error("bus failed to send response",
			"op", ev.Op,
			"target", ev.Target,
			"error", err,
		)
	}
}

// handleResponse delivers an inbound response to the waiting publisher,
// if it is still waiting. Responses for other processes' requests have
// no pending entry here and are ignored.
func (b *PostgresBus) handleResponse(_ context.Context, payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.Warn("bus dropped undecodable response", "error", err)
		return
	}

	b.mu.Lock()
	ch, ok := b.pending[ev.ID]
	if ok {
		delete(b.pending, ev.ID)
	}
	b.mu.Unlock()

	if ok {
		ch <- ev
	}
}

// pgIdentifier quotes a channel name for LISTEN, which takes an
// identifier rather than a bind parameter.
func pgIdentifier(name string) string {
	return `"` + name + `"`
}
