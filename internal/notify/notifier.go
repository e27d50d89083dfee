// Package notify fans creation events out to registered observers.
//
// Every observer owns a buffered channel. Publish never blocks: an event is
// offered to each channel exactly once, and an observer whose buffer is full
// is dropped instead of being skipped, so no observer ever sees a later event
// after missing an earlier one. Delivery to the network happens in a writer
// goroutine per observer that drains the channel.
package notify

import (
	"log/slog"
	"sync"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// DefaultBufferSize is used when a non-positive buffer size is configured.
const DefaultBufferSize = 64

// Drop reasons reported to the recorder.
const (
	ReasonSlow           = "slow"
	ReasonDeliveryFailed = "delivery_failed"
)

type recorder interface {
	SubscribersChanged(n int)
	EventPublished()
	ObserverDropped(reason string)
}

// Subscription is an observer registration handle.
type Subscription struct {
	id uint64
	ch chan domain.Event
}

// ID returns the notifier-unique subscription id.
func (s *Subscription) ID() uint64 { return s.id }

// Events returns the receive side of the observer channel. It is closed when
// the subscription ends for any reason.
func (s *Subscription) Events() <-chan domain.Event { return s.ch }

// Notifier maintains the observer set. The zero value is not usable; call New.
type Notifier struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	buffer int
	log    *slog.Logger
	rec    recorder
}

// New creates a Notifier. rec may be nil.
func New(log *slog.Logger, bufferSize int, rec recorder) *Notifier {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Notifier{
		subs:   make(map[uint64]*Subscription),
		buffer: bufferSize,
		log:    log.With("component", "notifier"),
		rec:    rec,
	}
}

// Subscribe registers a new observer. It receives only events published
// after this call returns. After Close the returned subscription is already
// closed.
func (n *Notifier) Subscribe() *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	sub := &Subscription{id: n.nextID, ch: make(chan domain.Event, n.buffer)}
	if n.closed {
		close(sub.ch)
		return sub
	}

	n.subs[sub.id] = sub
	n.rec.SubscribersChanged(len(n.subs))
	n.log.Debug("observer subscribed", slog.Uint64("subscription_id", sub.id))
	return sub
}

// Unsubscribe deregisters an observer and closes its channel. Calling it
// twice, with nil, or with a subscription that was already dropped is a no-op.
func (n *Notifier) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.removeLocked(sub) {
		n.log.Debug("observer unsubscribed", slog.Uint64("subscription_id", sub.id))
	}
}

// Fail reports that delivering to sub failed. The observer is dropped and
// the error is logged; it is never surfaced to the publisher.
func (n *Notifier) Fail(sub *Subscription, err error) {
	if sub == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.removeLocked(sub) {
		n.rec.ObserverDropped(ReasonDeliveryFailed)
		n.log.Debug("observer dropped after delivery failure",
			slog.Uint64("subscription_id", sub.id),
			slog.String("error", err.Error()),
		)
	}
}

// Publish offers a creation event carrying a private copy of rec to every
// current observer. It never blocks.
func (n *Notifier) Publish(rec domain.ServiceRecord) {
	ev := domain.NewServiceCreated(rec)

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.rec.EventPublished()

	for _, sub := range n.subs {
		select {
		case sub.ch <- ev:
		default:
			n.removeLocked(sub)
			n.rec.ObserverDropped(ReasonSlow)
			n.log.Warn("observer dropped: buffer full",
				slog.Uint64("subscription_id", sub.id),
				slog.Int("buffer", n.buffer),
			)
		}
	}
}

// Len returns the number of registered observers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close ends every subscription. Later publishes are discarded and later
// subscriptions start closed.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for _, sub := range n.subs {
		n.removeLocked(sub)
	}
}

func (n *Notifier) removeLocked(sub *Subscription) bool {
	cur, ok := n.subs[sub.id]
	if !ok || cur != sub {
		return false
	}
	delete(n.subs, sub.id)
	close(sub.ch)
	n.rec.SubscribersChanged(len(n.subs))
	return true
}

type nopRecorder struct{}

func (nopRecorder) SubscribersChanged(int)  {}
func (nopRecorder) EventPublished()         {}
func (nopRecorder) ObserverDropped(string) {}
