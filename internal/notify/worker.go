package notify

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"nutrition-scheduler/internal/logger"
)

type WorkerConfig struct {
	URL      string
	Exchange string
	Queue    string
	// DLX and DLQ receive messages that could not be delivered. Empty
	// DLX disables dead-lettering.
	DLX      string
	DLQ      string
	Prefetch int
	Consumer string
}

// Worker consumes published events and hands them to a Dispatcher, usually
// a Mailer. Failed deliveries are nacked without requeue so they land in the
// dead-letter queue instead of looping.
type Worker struct {
	cfg  WorkerConfig
	next Dispatcher

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewWorker(cfg WorkerConfig, next Dispatcher) *Worker {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	return &Worker{cfg: cfg, next: next}
}

// Connect declares the topology: exchange, queue bound to every event kind
// and the optional dead-letter pair.
func (w *Worker) Connect() error {
	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}
	fail := func(err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	args := amqp.Table{}
	if w.cfg.DLX != "" {
		args["x-dead-letter-exchange"] = w.cfg.DLX
		if err := ch.ExchangeDeclare(w.cfg.DLX, exchangeKind, true, false, false, false, nil); err != nil {
			return fail(fmt.Errorf("declare dlx failed: %w", err))
		}
		if _, err := ch.QueueDeclare(w.cfg.DLQ, true, false, false, false, nil); err != nil {
			return fail(fmt.Errorf("declare dlq failed: %w", err))
		}
		if err := ch.QueueBind(w.cfg.DLQ, "#", w.cfg.DLX, false, nil); err != nil {
			return fail(fmt.Errorf("bind dlq failed: %w", err))
		}
	}
	if err := ch.ExchangeDeclare(w.cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("declare exchange failed: %w", err))
	}
	q, err := ch.QueueDeclare(w.cfg.Queue, true, false, false, false, args)
	if err != nil {
		return fail(fmt.Errorf("declare queue failed: %w", err))
	}
	for _, k := range Kinds {
		if err := ch.QueueBind(q.Name, string(k), w.cfg.Exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind %s failed: %w", k, err))
		}
	}
	if err := ch.Qos(w.cfg.Prefetch, 0, false); err != nil {
		return fail(fmt.Errorf("set qos failed: %w", err))
	}
	w.conn, w.ch = conn, ch
	return nil
}

func (w *Worker) Close() {
	if w.ch != nil {
		_ = w.ch.Close()
	}
	if w.conn != nil {
		_ = w.conn.Close()
	}
}

// Run blocks until ctx is done or the delivery channel closes.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.ch.ConsumeWithContext(ctx, w.cfg.Queue, w.cfg.Consumer, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, d.RoutingKey, d.Body); err != nil {
				log.Warn("delivery failed", "key", d.RoutingKey, "id", d.MessageId, "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) handle(ctx context.Context, key string, body []byte) error {
	ev, err := decode(key, body)
	if err != nil {
		return err
	}
	return w.next.Notify(ctx, ev)
}
