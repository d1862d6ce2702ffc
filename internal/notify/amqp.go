package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "topic"

// Publisher sends events to a topic exchange with the event kind as routing
// key. Mail is delivered by a Worker on the other side. A closed channel is
// redialed on the next Notify.
type Publisher struct {
	mu       sync.Mutex
	dial     func() (publishChannel, io.Closer, error)
	conn     io.Closer
	ch       publishChannel
	exchange string
}

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{
		exchange: exchange,
		dial: func() (publishChannel, io.Closer, error) {
			return dialExchange(url, exchange)
		},
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialExchange(url, exchange string) (publishChannel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return ch, conn, nil
}

// connect replaces the current connection. Callers hold mu.
func (p *Publisher) connect() error {
	p.drop()
	ch, conn, err := p.dial()
	if err != nil {
		return err
	}
	p.ch, p.conn = ch, conn
	return nil
}

// drop closes and forgets the current connection. Callers hold mu.
func (p *Publisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Notify(ctx context.Context, ev Event) error {
	msg, err := encode(ev, time.Now())
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, string(ev.Kind), false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		p.drop()
	}
	return err
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func encode(ev Event, now time.Time) (amqp.Publishing, error) {
	if !ev.Kind.Valid() {
		return amqp.Publishing{}, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    now.UTC(),
		Type:         string(ev.Kind),
		Body:         body,
	}, nil
}

func decode(routingKey string, body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Kind == "" {
		ev.Kind = Kind(routingKey)
	}
	if !ev.Kind.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	if ev.To == "" {
		return Event{}, fmt.Errorf("event %s has no recipient", ev.ID)
	}
	return ev, nil
}
