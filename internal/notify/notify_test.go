package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-scheduler/internal/logger"
)

func sampleEvent() Event {
	return Event{
		Kind: KindScheduledNutritionist,
		To:   "nutri@example.com",
		Payload: Payload{
			ClientName: "Bruno",
			Date:       "10/03/2025",
			StartTime:  "09:00",
			EndTime:    "10:00",
		},
	}
}

func TestEncode(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should stamp an id and route by kind", func(t *testing.T) {
		msg, err := encode(sampleEvent(), now)
		require.NoError(t, err)
		assert.NotEmpty(t, msg.MessageId)
		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
		assert.Equal(t, string(KindScheduledNutritionist), msg.Type)

		var back Event
		require.NoError(t, json.Unmarshal(msg.Body, &back))
		assert.Equal(t, msg.MessageId, back.ID)
		assert.Equal(t, "Bruno", back.Payload.ClientName)
	})

	t.Run("Should keep an existing id", func(t *testing.T) {
		ev := sampleEvent()
		ev.ID = "fixed"
		msg, err := encode(ev, now)
		require.NoError(t, err)
		assert.Equal(t, "fixed", msg.MessageId)
	})

	t.Run("Should refuse unknown kinds", func(t *testing.T) {
		ev := sampleEvent()
		ev.Kind = "appointment.rescheduled"
		_, err := encode(ev, now)
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestWorker_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("Should pass decoded events on", func(t *testing.T) {
		var got Event
		w := NewWorker(WorkerConfig{}, DispatcherFunc(func(_ context.Context, ev Event) error {
			got = ev
			return nil
		}))
		msg, err := encode(sampleEvent(), time.Now())
		require.NoError(t, err)

		require.NoError(t, w.handle(ctx, string(KindScheduledNutritionist), msg.Body))
		assert.Equal(t, "nutri@example.com", got.To)
		assert.Equal(t, KindScheduledNutritionist, got.Kind)
	})

	t.Run("Should fall back to the routing key for the kind", func(t *testing.T) {
		var got Kind
		w := NewWorker(WorkerConfig{}, DispatcherFunc(func(_ context.Context, ev Event) error {
			got = ev.Kind
			return nil
		}))
		body := []byte(`{"to":"c@example.com","payload":{"name":"Bruno"}}`)
		require.NoError(t, w.handle(ctx, string(KindConfirmed), body))
		assert.Equal(t, KindConfirmed, got)
	})

	t.Run("Should reject malformed messages", func(t *testing.T) {
		called := false
		w := NewWorker(WorkerConfig{}, DispatcherFunc(func(context.Context, Event) error {
			called = true
			return nil
		}))
		assert.Error(t, w.handle(ctx, "x", []byte("{")))
		assert.ErrorIs(t, w.handle(ctx, "appointment.unknown", []byte(`{"to":"a@b.c"}`)), ErrUnknownKind)
		assert.Error(t, w.handle(ctx, string(KindCanceled), []byte(`{}`)))
		assert.False(t, called)
	})

	t.Run("Should surface dispatcher errors", func(t *testing.T) {
		boom := errors.New("smtp down")
		w := NewWorker(WorkerConfig{}, DispatcherFunc(func(context.Context, Event) error { return boom }))
		msg, err := encode(sampleEvent(), time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, w.handle(ctx, "", msg.Body), boom)
	})
}

func TestRender(t *testing.T) {
	t.Run("Should render every kind", func(t *testing.T) {
		for _, k := range Kinds {
			ev := sampleEvent()
			ev.Kind = k
			ev.Payload.Name = "Bruno"
			subject, text, html, err := Render(ev)
			require.NoError(t, err, k)
			assert.NotEmpty(t, subject)
			assert.Contains(t, text, "10/03/2025")
			assert.Contains(t, text, "09:00 to 10:00")
			assert.Contains(t, html, "Bruno")
		}
	})

	t.Run("Should escape names in HTML", func(t *testing.T) {
		ev := sampleEvent()
		ev.Kind = KindScheduled
		ev.Payload.Name = "<b>x</b>"
		_, text, html, err := Render(ev)
		require.NoError(t, err)
		assert.Contains(t, text, "<b>x</b>")
		assert.NotContains(t, html, "<b>x</b>")
	})
}

func TestMailer_Compose(t *testing.T) {
	t.Run("Should build a multipart message", func(t *testing.T) {
		m, err := NewMailer(SMTPConfig{Host: "localhost", Port: 2525, From: "agenda@example.com"})
		require.NoError(t, err)

		msg, err := m.compose(sampleEvent())
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = msg.WriteTo(&buf)
		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "New appointment scheduled")
		assert.Contains(t, out, "nutri@example.com")
		assert.Contains(t, out, "text/html")
	})

	t.Run("Should reject a bad recipient", func(t *testing.T) {
		m, err := NewMailer(SMTPConfig{Host: "localhost", Port: 2525, From: "agenda@example.com"})
		require.NoError(t, err)
		ev := sampleEvent()
		ev.To = "not an address"
		_, err = m.compose(ev)
		assert.Error(t, err)
	})
}

func TestLogDispatcher(t *testing.T) {
	t.Run("Should log the event", func(t *testing.T) {
		var buf bytes.Buffer
		l := logger.New(&logger.Config{Level: logger.InfoLevel, Output: &buf})
		ctx := logger.ContextWithLogger(context.Background(), l)

		require.NoError(t, LogDispatcher{}.Notify(ctx, sampleEvent()))
		assert.Contains(t, buf.String(), "appointment.scheduled.nutritionist")
		assert.Contains(t, buf.String(), "nutri@example.com")
	})
}

type fakeChannel struct {
	closed    bool
	published []string
	err       error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, _ amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, key)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func TestPublisher_Reconnect(t *testing.T) {
	ctx := context.Background()

	newPublisher := func(dials *[]*fakeChannel, dialErr *error) *Publisher {
		return &Publisher{
			exchange: "booking.events",
			dial: func() (publishChannel, io.Closer, error) {
				if *dialErr != nil {
					return nil, nil, *dialErr
				}
				ch := &fakeChannel{}
				*dials = append(*dials, ch)
				return ch, nopCloser{}, nil
			},
		}
	}

	t.Run("Should redial when the channel was closed by the broker", func(t *testing.T) {
		var (
			dials   []*fakeChannel
			dialErr error
		)
		p := newPublisher(&dials, &dialErr)
		require.NoError(t, p.Notify(ctx, sampleEvent()))
		require.Len(t, dials, 1)

		dials[0].closed = true
		require.NoError(t, p.Notify(ctx, sampleEvent()))
		require.Len(t, dials, 2)
		assert.Len(t, dials[0].published, 1)
		assert.Equal(t, []string{string(KindScheduledNutritionist)}, dials[1].published)
	})

	t.Run("Should drop a channel that failed with ErrClosed and redial on the next event", func(t *testing.T) {
		var (
			dials   []*fakeChannel
			dialErr error
		)
		p := newPublisher(&dials, &dialErr)
		require.NoError(t, p.Notify(ctx, sampleEvent()))
		dials[0].err = amqp.ErrClosed

		err := p.Notify(ctx, sampleEvent())
		assert.ErrorIs(t, err, amqp.ErrClosed)
		assert.Len(t, dials, 1)

		require.NoError(t, p.Notify(ctx, sampleEvent()))
		assert.Len(t, dials, 2)
	})

	t.Run("Should report a failed redial", func(t *testing.T) {
		var dials []*fakeChannel
		dialErr := errors.New("connection refused")
		p := newPublisher(&dials, &dialErr)

		err := p.Notify(ctx, sampleEvent())
		assert.ErrorIs(t, err, dialErr)
		assert.Empty(t, dials)
	})
}
