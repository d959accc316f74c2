package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"akoben/pkg/logger"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const brand = "Fie Ne Fie"

var subjects = map[Kind]string{
	KindPending:     "Booking Pending - " + brand,
	KindConfirmed:   "Booking Confirmed - " + brand,
	KindRescheduled: "Booking Rescheduled - " + brand,
	KindCancelled:   "Booking Cancelled - " + brand,
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailDispatcher struct {
	sender    Sender
	from      string
	templates map[Kind]*template.Template
	log       *logger.Logger
}

func NewMailDispatcher(sender Sender, from string, log *logger.Logger) (*MailDispatcher, error) {
	templates := make(map[Kind]*template.Template, len(subjects))
	for kind := range subjects {
		tmpl, err := template.New(string(kind)).
			Funcs(template.FuncMap{"date": formatDate}).
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		templates[kind] = tmpl
	}

	return &MailDispatcher{
		sender:    sender,
		from:      from,
		templates: templates,
		log:       log,
	}, nil
}

// NewSMTPSender builds the gomail dialer. Port 465 uses implicit TLS,
// anything else upgrades with STARTTLS.
func NewSMTPSender(host string, port int, username, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, username, password)
}

func (d *MailDispatcher) Send(ctx context.Context, email string, kind Kind, booking BookingContext) error {
	body, err := d.render(kind, booking)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(d.from, brand))
	m.SetHeader("To", email)
	m.SetHeader("Subject", subjects[kind])
	m.SetBody("text/html", body)

	if kind == KindConfirmed {
		receipt, err := RenderReceipt(booking)
		if err != nil {
			return fmt.Errorf("render receipt: %w", err)
		}
		m.Attach(receiptFilename(booking), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(receipt)
			return err
		}))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email, err)
	}

	d.log.Info("Notification email sent", "kind", kind, "booking_id", booking.BookingID)
	return nil
}

func (d *MailDispatcher) render(kind Kind, booking BookingContext) (string, error) {
	tmpl, ok := d.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown notification kind %q", kind)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", booking); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return body.String(), nil
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Format("Mon, 2 Jan 2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return "-"
		}
		return t.Format("Mon, 2 Jan 2006")
	}
	return fmt.Sprint(v)
}
