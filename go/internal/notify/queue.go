package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Category classifies a notification and selects its expiry.
type Category string

const (
	CategoryPlayerLeft        Category = "player-left"
	CategoryPlayerJoined      Category = "player-joined"
	CategoryPlayerReconnected Category = "player-reconnected"
	CategoryHostChanged       Category = "host-changed"
	CategoryDisconnected      Category = "disconnected"
	CategoryPlayerKicked      Category = "player-kicked"
	CategoryPlayerRemoved     Category = "player-removed"
)

const (
	defaultExpiry      = 4 * time.Second
	disconnectedExpiry = 10 * time.Second
)

// Notification is one transient human-readable event.
type Notification struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is a self-expiring list of recent notifications. Each entry is
// removed by a per-id timer; removing an entry early cancels its timer so a
// long-running process never leaks scheduled work.
type Queue struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	items  []Notification
	timers map[string]clockwork.Timer
	done   chan struct{}
	closed bool
}

// NewQueue creates a notification queue driven by the given clock.
func NewQueue(clock clockwork.Clock) *Queue {
	return &Queue{
		clock:  clock,
		timers: make(map[string]clockwork.Timer),
		done:   make(chan struct{}),
	}
}

// Add appends a notification and schedules its expiry. Returns the id.
func (q *Queue) Add(category Category, message string) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ""
	}

	n := Notification{
		ID:        uuid.NewString(),
		Category:  category,
		Message:   message,
		CreatedAt: q.clock.Now(),
	}
	q.items = append(q.items, n)

	expiry := defaultExpiry
	if category == CategoryDisconnected {
		expiry = disconnectedExpiry
	}

	timer := q.clock.NewTimer(expiry)
	q.timers[n.ID] = timer
	go q.waitExpiry(n.ID, timer)

	log.Debug().
		Str("notification_id", n.ID).
		Str("category", string(category)).
		Dur("expiry", expiry).
		Msg("notification queued")

	return n.ID
}

func (q *Queue) waitExpiry(id string, timer clockwork.Timer) {
	select {
	case <-timer.Chan():
		q.Remove(id)
	case <-q.done:
		stopAndDrainTimer(timer)
	}
}

// Remove deletes a notification by id and cancels its expiry timer. Removing
// an unknown id is a no-op.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		stopAndDrainTimer(timer)
		delete(q.timers, id)
	}

	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
}

// List returns the current notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Close cancels all pending expiry timers. The queue accepts no further
// notifications.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
	for id, timer := range q.timers {
		stopAndDrainTimer(timer)
		delete(q.timers, id)
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent
// goroutine leaks, per the time.Timer.Stop documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
