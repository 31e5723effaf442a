package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker. While the broker is
// unreachable, messages are held in a bounded buffer and replayed in
// order once the connection comes back.
type RealPublisher struct {
	client paho.Client

	mu     sync.Mutex
	buffer *ringBuffer

	onBark func()
}

// NewRealPublisher creates a publisher for the given broker. The
// connection is established in the background; publishing before the
// first connect simply lands in the buffer.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{
		buffer: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("bark-trainer").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// SubscribeBark registers handler to run for every message on the bark
// topic. Must be called before the first connect completes to avoid
// missing the initial subscription.
func (p *RealPublisher) SubscribeBark(handler func()) {
	p.mu.Lock()
	p.onBark = handler
	p.mu.Unlock()
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// onConnect replays buffered messages and (re)subscribes to the bark
// topic. Paho calls this on every connect, including reconnects.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	pending := p.buffer.drainAll()
	handler := p.onBark
	p.mu.Unlock()

	if handler != nil {
		token := client.Subscribe(TopicBark, 0, func(paho.Client, paho.Message) {
			handler()
		})
		go func() {
			if token.WaitTimeout(5*time.Second) && token.Error() != nil {
				log.Printf("mqtt: subscribe %s: %v", TopicBark, token.Error())
			}
		}()
	}

	if len(pending) == 0 {
		return
	}
	log.Printf("mqtt: connected, replaying %d buffered messages", len(pending))
	for _, msg := range pending {
		client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
}

// publish sends or buffers one message depending on connection state.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.buffer.len()
		p.mu.Unlock()
		log.Printf("mqtt: offline, buffered message (%d pending)", n)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a trainer event to the MQTT broker.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
