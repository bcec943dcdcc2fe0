package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sweeney/stabilizer/internal/logic"
)

// bufferCapacity is the number of messages kept while the broker is unreachable.
const bufferCapacity = 256

// ClientID returns a client ID unique to this process, so several daemons
// can share a broker without kicking each other off.
func ClientID() string {
	return "stabilizer-" + uuid.NewString()[:8]
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while disconnected are buffered and replayed once the connection is back.
type RealPublisher struct {
	client paho.Client
	topic  string

	// mu guards connected and buffer together; connected changes only in
	// the connection handlers.
	mu        sync.Mutex
	connected bool
	buffer    *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker and base topic.
// If the broker cannot be reached within the connect timeout the publisher
// is still returned and keeps retrying in the background.
func NewRealPublisher(broker, topic string) (*RealPublisher, error) {
	p := &RealPublisher{
		topic:  topic,
		buffer: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(SystemTopic(topic), string(WillPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: %s not reachable yet, buffering until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a transition event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	if err := p.publish(bufferedMsg{topic: EventsTopic(p.topic), payload: payload}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) - we want lifecycle events delivered
	msg := bufferedMsg{topic: SystemTopic(p.topic), payload: payload, qos: 1, retained: event.Retained}
	if err := p.publish(msg); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.connected {
		if p.buffer.push(msg) && p.buffer.dropped == 1 {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", bufferCapacity)
		}
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout")
	}
	return token.Error()
}

// onConnect replays messages buffered while disconnected, oldest first,
// before any new publish can reach the client.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs, dropped := p.buffer.drainAll()
	p.connected = true
	if len(msgs) == 0 {
		return
	}
	log.Printf("mqtt: connected, replaying %d buffered messages (%d dropped)", len(msgs), dropped)
	for _, m := range msgs {
		// The handler runs on paho's goroutine; do not wait on tokens here.
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
