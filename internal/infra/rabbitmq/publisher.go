package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const appID = "storefront"

// Publisher sends storefront events to a durable topic exchange, routed by
// pattern. The channel runs in confirm mode, so Publish returns only after the
// broker has acked the message or ctx is done.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	sent     uint64 // delivery tag of the last publish on the current channel
	exchange string
}

// Message is the envelope every event is wrapped in.
type Message struct {
	Pattern string      `json:"pattern"`
	Data    interface{} `json:"data"`
	ID      string      `json:"id,omitempty"`
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	p := &Publisher{conn: conn, exchange: exchange}
	if err := p.openChannel(); err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("RabbitMQ publisher ready on exchange %q", exchange)
	return p, nil
}

// openChannel must be called with mu held, or before p is shared.
func (p *Publisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq: declare exchange %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	p.channel = ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 64))
	p.sent = 0
	return nil
}

func (p *Publisher) dropChannel() {
	if p.channel != nil {
		p.channel.Close()
	}
	p.channel = nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	msg := Message{Pattern: pattern, Data: data, ID: uuid.NewString()}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal %s: %w", pattern, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		if err := p.openChannel(); err != nil {
			return err
		}
	}

	err = p.channel.Publish(p.exchange, pattern, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		AppId:        appID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.dropChannel()
		return fmt.Errorf("rabbitmq: publish %s: %w", pattern, err)
	}
	p.sent++

	// Confirms left over from publishes that timed out arrive first.
	for {
		select {
		case c, ok := <-p.confirms:
			if !ok {
				p.channel = nil
				return errors.New("rabbitmq: channel closed before confirm")
			}
			if c.DeliveryTag < p.sent {
				continue
			}
			if !c.Ack {
				return fmt.Errorf("rabbitmq: broker rejected %s %s", pattern, msg.ID)
			}
			log.Printf("Published %s (%s) to exchange '%s'", pattern, msg.ID, p.exchange)
			return nil
		case <-ctx.Done():
			return fmt.Errorf("rabbitmq: waiting for confirm of %s: %w", msg.ID, ctx.Err())
		}
	}
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropChannel()
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher drops every event. It stands in when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	return nil
}
