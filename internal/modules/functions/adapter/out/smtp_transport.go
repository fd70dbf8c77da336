package out

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"

	functionsout "dsaboost/internal/modules/functions/port/out"
)

const smtpTimeout = 30 * time.Second

type SMTPTransport struct {
	client *mail.Client
	from   string
}

// NewSMTPTransport returns a nil transport when addr or from is empty. addr
// is host:port; STARTTLS is used when the server offers it.
func NewSMTPTransport(addr, from, username, password string) (functionsout.MailTransport, error) {
	if addr == "" || from == "" {
		return nil, nil
	}
	host, rawPort, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("parse smtp addr: %w", err)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return nil, fmt.Errorf("parse smtp port: %w", err)
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(smtpTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}
	return &SMTPTransport{client: client, from: from}, nil
}

func (t *SMTPTransport) Send(ctx context.Context, m functionsout.Mail) error {
	msg, err := BuildMessage(t.from, m)
	if err != nil {
		return err
	}
	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// BuildMessage renders m as a single-part HTML message.
func BuildMessage(from string, m functionsout.Mail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}
