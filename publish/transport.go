// Package publish delivers a session's trajectory and visualization to external subscribers.
package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"go.viam.com/waypoints/arm"
)

// Transport sends a message on a named topic.
type Transport interface {
	Publish(ctx context.Context, topic string, msg interface{}) error
}

// Topics are the channel names of one arm's session.
type Topics struct {
	// InteractiveMarkers carries the marker and menu registration.
	InteractiveMarkers string
	// Visualization carries the marker set, republished every tick.
	Visualization string
	// Poses carries the trajectory, only on an explicit publish.
	Poses string
}

// TopicsFor returns the topic names for side.
func TopicsFor(side arm.Side) Topics {
	return Topics{
		InteractiveMarkers: fmt.Sprintf("trajectory_markers_%s", side),
		Visualization:      fmt.Sprintf("trajectory_markers_path_%s", side),
		Poses:              fmt.Sprintf("trajectory_poses_%s", side),
	}
}

// Tee returns a transport that publishes to every transport, combining their errors.
func Tee(transports ...Transport) Transport {
	return tee(transports)
}

type tee []Transport

func (t tee) Publish(ctx context.Context, topic string, msg interface{}) error {
	var err error
	for _, transport := range t {
		err = multierr.Combine(err, transport.Publish(ctx, topic, msg))
	}
	return err
}

// Message is a published payload as kept by a Broker.
type Message struct {
	Topic     string      `json:"topic"`
	Published time.Time   `json:"published"`
	Payload   interface{} `json:"payload"`
}

// Broker is an in-process transport. It keeps the latest message of every topic and fans
// messages out to subscribers. Slow subscribers miss messages rather than block publishers.
type Broker struct {
	clock clock.Clock

	mu          sync.Mutex
	latest      map[string]Message
	subscribers map[string]map[chan Message]struct{}
}

// NewBroker returns an empty broker.
func NewBroker(clk clock.Clock) *Broker {
	return &Broker{
		clock:       clk,
		latest:      map[string]Message{},
		subscribers: map[string]map[chan Message]struct{}{},
	}
}

// Publish records msg as the latest on topic and offers it to every subscriber.
func (b *Broker) Publish(ctx context.Context, topic string, msg interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := Message{Topic: topic, Published: b.clock.Now(), Payload: msg}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest[topic] = message
	for sub := range b.subscribers[topic] {
		select {
		case sub <- message:
		default:
		}
	}
	return nil
}

// Latest returns the last message published on topic.
func (b *Broker) Latest(topic string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	message, ok := b.latest[topic]
	return message, ok
}

// Topics returns the names of every topic that has been published on.
func (b *Broker) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.latest))
	for name := range b.latest {
		names = append(names, name)
	}
	return names
}

// Subscribe returns a channel receiving messages on topic until cancel is called.
func (b *Broker) Subscribe(topic string, buffer int) (<-chan Message, func()) {
	sub := make(chan Message, buffer)
	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = map[chan Message]struct{}{}
	}
	b.subscribers[topic][sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return sub, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers[topic], sub)
			b.mu.Unlock()
			close(sub)
		})
	}
}
