// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// DashboardTopic is sent after changes, at most once per throttle window.
// Changes inside a window are folded into one more event when it closes.
const DashboardTopic = "dashboard.updated"

// Defaults used when an option is not given.
const (
	DefaultDashboardThrottle = 2 * time.Second
	DefaultHeartbeat         = 25 * time.Second
	DefaultReplay            = 128
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type frame struct {
	id    uint64
	topic string
	raw   []byte
}

type client struct {
	ch     chan []byte
	topics []string
}

// wants reports whether the client subscribed to topic. Each entry matches
// by prefix, so "lead." covers every lead event. No entries means all.
func (c *client) wants(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, t := range c.topics {
		if strings.HasPrefix(topic, t) {
			return true
		}
	}
	return false
}

type subscribeReq struct {
	c     *client
	after uint64
}

type changeReq struct {
	topic string
	data  any
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set, the event sequence,
// the replay history and the dashboard throttle. Public methods talk to it
// over channels.
type Broker struct {
	dashboardMin time.Duration
	dashboard    func() any
	heartbeat    time.Duration
	replay       int

	subscribeCh   chan subscribeReq
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithDashboardThrottle sets the minimum gap between dashboard events.
func WithDashboardThrottle(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.dashboardMin = d
		}
	}
}

// WithDashboard sets the payload builder for dashboard events. It runs on
// the broker loop and must not block.
func WithDashboard(fn func() any) Option {
	return func(b *Broker) {
		b.dashboard = fn
	}
}

// WithHeartbeat sets how often idle streams get a comment line.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.heartbeat = d
		}
	}
}

// WithReplay sets how many recent events are kept for Last-Event-ID
// resumption. Zero disables replay.
func WithReplay(n int) Option {
	return func(b *Broker) {
		if n >= 0 {
			b.replay = n
		}
	}
}

// NewBroker creates a new SSE broker and starts its event loop.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		dashboardMin:  DefaultDashboardThrottle,
		heartbeat:     DefaultHeartbeat,
		replay:        DefaultReplay,
		subscribeCh:   make(chan subscribeReq),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]*client)
	history := make([]frame, 0, b.replay)
	var (
		seq           uint64
		lastDashboard time.Time
		pending       bool
		trailing      *time.Timer
		trailingC     <-chan time.Time
	)
	defer func() {
		if trailing != nil {
			trailing.Stop()
		}
	}()

	deliver := func(c *client, f frame) {
		if !c.wants(f.topic) {
			return
		}
		select {
		case c.ch <- f.raw:
		default:
			// Slow client; drop rather than stall the loop.
		}
	}

	broadcast := func(topic string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		seq++
		f := frame{
			id:    seq,
			topic: topic,
			raw:   []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, topic, payload)),
		}
		if b.replay > 0 {
			if len(history) == b.replay {
				copy(history, history[1:])
				history = history[:len(history)-1]
			}
			history = append(history, f)
		}
		for _, c := range clients {
			deliver(c, f)
		}
	}

	sendDashboard := func() {
		pending = false
		lastDashboard = time.Now()
		var data any = map[string]string{}
		if b.dashboard != nil {
			data = b.dashboard()
		}
		broadcast(DashboardTopic, data)
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case req := <-b.subscribeCh:
			clients[req.c.ch] = req.c
			if req.after > 0 {
				for _, f := range history {
					if f.id > req.after {
						deliver(req.c, f)
					}
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event.Type, event.Data)

		case req := <-b.changeCh:
			broadcast(req.topic, req.data)

			wait := b.dashboardMin - time.Since(lastDashboard)
			switch {
			case wait <= 0:
				sendDashboard()
			case trailingC == nil:
				pending = true
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
			default:
				pending = true
			}

		case <-trailingC:
			trailingC = nil
			if pending {
				sendDashboard()
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client for the given topic prefixes (all topics when
// none are given) and returns its channel.
func (b *Broker) Subscribe(topics ...string) chan []byte {
	return b.SubscribeFrom(0, topics...)
}

// SubscribeFrom is Subscribe plus replay of retained events with an id
// greater than after.
func (b *Broker) SubscribeFrom(after uint64, topics ...string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscribeReq{c: &client{ch: ch, topics: topics}, after: after}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes a state change under its topic name, followed by
// a throttled dashboard event so clients can refresh aggregates.
func (b *Broker) PublishChange(topic string, data any) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{topic: topic, data: data}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
//
// Query parameter "topics" takes comma-separated topic prefixes. A
// reconnecting client's Last-Event-ID header (or "last_event_id" parameter)
// replays retained events it missed.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var topics []string
	for _, t := range strings.Split(r.URL.Query().Get("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	lastID := r.Header.Get("Last-Event-ID")
	if lastID == "" {
		lastID = r.URL.Query().Get("last_event_id")
	}
	after, _ := strconv.ParseUint(lastID, 10, 64)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeFrom(after, topics...)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.heartbeat)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
