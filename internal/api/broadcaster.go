// Package api exposes kestrelasm as an assemble-as-a-service HTTP+WebSocket
// endpoint: submit source, poll or subscribe for its result. Adapted from
// the teacher's VM-session broadcaster/server pair, replacing live execution
// state with assemble-job state.
package api

import "sync"

// EventType categorizes a broadcast event.
type EventType string

const (
	// EventTypeStatus reports a job's queued/running/done/failed transition.
	EventTypeStatus EventType = "status"
	// EventTypeDiagnostic reports one diagnostic produced while assembling.
	EventTypeDiagnostic EventType = "diagnostic"
)

// BroadcastEvent is one event sent to subscribed WebSocket clients.
type BroadcastEvent struct {
	Type  EventType              `json:"type"`
	JobID string                 `json:"jobId"`
	Data  map[string]interface{} `json:"data"`
}

// Subscription is a client's filtered view of the broadcast stream.
type Subscription struct {
	JobID      string // empty = all jobs
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans events out to subscribed clients over buffered,
// non-blocking channels so one slow client can't stall the others.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.JobID != "" && sub.JobID != event.JobID {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new filtered subscription.
func (b *Broadcaster) Subscribe(jobID string, eventTypes []EventType) *Subscription {
	m := make(map[EventType]bool)
	for _, et := range eventTypes {
		m[et] = true
	}
	sub := &Subscription{JobID: jobID, EventTypes: m, Channel: make(chan BroadcastEvent, 64)}
	b.register <- sub
	return sub
}

// Unsubscribe removes and closes a subscription.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast sends event to all matching subscribers, dropping it if the
// broadcaster itself is backed up.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastStatus announces a job's status transition.
func (b *Broadcaster) BroadcastStatus(jobID, status string) {
	b.Broadcast(BroadcastEvent{Type: EventTypeStatus, JobID: jobID, Data: map[string]interface{}{"status": status}})
}

// BroadcastDiagnostic announces a single diagnostic message.
func (b *Broadcaster) BroadcastDiagnostic(jobID, message string) {
	b.Broadcast(BroadcastEvent{Type: EventTypeDiagnostic, JobID: jobID, Data: map[string]interface{}{"message": message}})
}

// Close shuts the broadcaster down and closes all subscriptions.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount reports the number of active subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
