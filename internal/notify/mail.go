package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"sync"
	texttemplate "text/template"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type message struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

const (
	textSignoff = "\nBest regards,\nThe Agenda team\n"
	htmlOpen    = `<div style="font-family: Arial, sans-serif; line-height: 1.6">`
	htmlSlot    = `<ul><li><strong>Date:</strong> {{.Date}}</li><li><strong>Time:</strong> {{.StartTime}} to {{.EndTime}}</li></ul>`
	htmlClient  = `<ul><li><strong>Client:</strong> {{.ClientName}}</li><li><strong>Date:</strong> {{.Date}}</li><li><strong>Time:</strong> {{.StartTime}} to {{.EndTime}}</li></ul>`
	htmlSignoff = `<p style="margin-top: 24px">Best regards,<br /><strong>The Agenda team</strong></p></div>`
)

func newMessage(subject, text, html string) message {
	return message{
		subject: subject,
		text:    texttemplate.Must(texttemplate.New(subject).Parse(text + textSignoff)),
		html:    htmltemplate.Must(htmltemplate.New(subject).Parse(htmlOpen + html + htmlSignoff)),
	}
}

var messages = map[Kind]message{
	KindScheduled: newMessage("Appointment scheduled",
		"Hello, {{.Name}}!\n\nYour appointment has been scheduled.\n\nDate: {{.Date}}\nTime: {{.StartTime}} to {{.EndTime}}\n",
		`<h2>Appointment scheduled</h2><p>Hello, <strong>{{.Name}}</strong>!</p><p>Your appointment has been scheduled.</p>`+htmlSlot+
			`<p>To cancel, use the platform.</p>`),
	KindConfirmed: newMessage("Appointment confirmed",
		"Hello, {{.Name}}!\n\nYour appointment has been confirmed.\n\nDate: {{.Date}}\nTime: {{.StartTime}} to {{.EndTime}}\n",
		`<h2>Appointment confirmed</h2><p>Hello, <strong>{{.Name}}</strong>!</p><p>Your appointment has been confirmed.</p>`+htmlSlot),
	KindCanceled: newMessage("Appointment canceled",
		"Hello, {{.Name}}!\n\nYour appointment has been canceled.\n\nDate: {{.Date}}\nTime: {{.StartTime}} to {{.EndTime}}\n\nYou can book a new appointment on the platform.\n",
		`<h2>Appointment canceled</h2><p>Hello, <strong>{{.Name}}</strong>!</p><p>Your appointment has been canceled.</p>`+htmlSlot+
			`<p>You can book a new appointment on the platform.</p>`),
	KindScheduledNutritionist: newMessage("New appointment scheduled",
		"Hello!\n\nA new appointment has been scheduled.\n\nClient: {{.ClientName}}\nDate: {{.Date}}\nTime: {{.StartTime}} to {{.EndTime}}\n",
		`<h2>New appointment scheduled</h2><p>A new appointment has been scheduled.</p>`+htmlClient),
	KindCanceledNutritionist: newMessage("Appointment canceled",
		"Hello!\n\nThe following appointment has been canceled:\n\nClient: {{.ClientName}}\nDate: {{.Date}}\nTime: {{.StartTime}} to {{.EndTime}}\n",
		`<h2>Appointment canceled</h2>`+htmlClient),
}

// Render returns the subject, plain text and HTML bodies for ev.
func Render(ev Event) (subject, text, html string, err error) {
	m, ok := messages[ev.Kind]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	var tb, hb bytes.Buffer
	if err := m.text.Execute(&tb, ev.Payload); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", ev.Kind, err)
	}
	if err := m.html.Execute(&hb, ev.Payload); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", ev.Kind, err)
	}
	return m.subject, tb.String(), hb.String(), nil
}

// Mailer sends events as multipart e-mails over SMTP.
type Mailer struct {
	mu     sync.Mutex
	client *mail.Client
	from   string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: c, from: cfg.From}, nil
}

func (m *Mailer) Notify(ctx context.Context, ev Event) error {
	msg, err := m.compose(ev)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", ev.Kind, ev.To, err)
	}
	return nil
}

func (m *Mailer) compose(ev Event) (*mail.Msg, error) {
	subject, text, html, err := Render(ev)
	if err != nil {
		return nil, err
	}
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(ev.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}
