// Package realtime fans newly committed messages out to the live viewers of
// a thread. Delivery is at-least-once: a sender's own optimistic append may
// come back through the bus, and de-duplication is the subscriber's job.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JiggaBS/AutoAndrewProject-sub000/internal/domain"
)

var (
	messagesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_messages_published_total",
		Help: "Messages handed to the realtime bus for fan-out",
	})
	messagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_messages_dropped_total",
		Help: "Deliveries dropped because a subscriber's buffer was full",
	})
	subscriptionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscriptions_active",
		Help: "Currently open thread subscriptions",
	})
)

const subscriptionBuffer = 128

// Bus routes inserts to per-thread subscriptions. One Bus serves the whole
// process; threads are isolated from each other, no cross-thread ordering
// exists or is promised.
type Bus struct {
	mu      sync.RWMutex
	threads map[domain.RequestId]map[string]*Subscription
}

func NewBus() *Bus {
	return &Bus{threads: make(map[domain.RequestId]map[string]*Subscription)}
}

// Subscription is an explicit handle owned by whoever opened it. Tear it
// down with Unsubscribe; operations on a dead handle are no-ops.
type Subscription struct {
	id        string
	requestId domain.RequestId
	bus       *Bus

	ch   chan *domain.Message
	done chan struct{}
	once sync.Once
}

// Subscribe registers onInsert for a thread. Deliveries arrive on a
// dedicated goroutine in publish order for this subscription; onInsert must
// not block for long or deliveries will be dropped.
func (b *Bus) Subscribe(requestId domain.RequestId, onInsert func(*domain.Message)) *Subscription {
	sub := &Subscription{
		id:        uuid.NewString(),
		requestId: requestId,
		bus:       b,
		ch:        make(chan *domain.Message, subscriptionBuffer),
		done:      make(chan struct{}),
	}

	b.mu.Lock()
	subs, ok := b.threads[requestId]
	if !ok {
		subs = make(map[string]*Subscription)
		b.threads[requestId] = subs
	}
	subs[sub.id] = sub
	b.mu.Unlock()

	subscriptionsActive.Inc()
	go sub.deliverLoop(onInsert)
	return sub
}

// Publish fans msg out to every live subscription of its thread. Slow
// subscribers lose messages rather than blocking the writer; the session
// layer compensates with a full refetch on visibility regain.
func (b *Bus) Publish(msg *domain.Message) {
	messagesPublished.Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.threads[msg.RequestId] {
		select {
		case <-sub.done:
		case sub.ch <- msg:
		default:
			messagesDropped.Inc()
			slog.Warn("realtime delivery dropped, subscriber too slow", "request_id", msg.RequestId, "subscription", sub.id)
		}
	}
}

// Unsubscribe synchronously removes the handle from the bus; no delivery is
// scheduled after it returns. The delivery goroutine winds down on its own
// and discards anything still buffered. Calling it twice is safe.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		if subs, ok := s.bus.threads[s.requestId]; ok {
			delete(subs, s.id)
			if len(subs) == 0 {
				delete(s.bus.threads, s.requestId)
			}
		}
		s.bus.mu.Unlock()

		close(s.done)
		subscriptionsActive.Dec()
	})
}

func (s *Subscription) deliverLoop(onInsert func(*domain.Message)) {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.ch:
			onInsert(msg)
		}
	}
}
