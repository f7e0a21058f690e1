package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// DefaultTimeout bounds dialing and each SMTP exchange.
const DefaultTimeout = 15 * time.Second

// SMTPSender delivers mail through an SMTP relay. STARTTLS is used when
// the relay offers it.
type SMTPSender struct {
	host    string
	port    int
	options []gomail.Option
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	if port == 0 {
		port = 25
	}
	options := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTimeout(DefaultTimeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}
	return &SMTPSender{host: host, port: port, options: options}
}

// Send dials the relay and delivers msg. Cancelling ctx aborts the session.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	m, err := msg.build()
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.host, s.options...)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

// build converts msg into a go-mail message with a plain 8bit text body.
func (m Message) build() (*gomail.Msg, error) {
	out := gomail.NewMsg(gomail.WithEncoding(gomail.NoEncoding))
	if err := out.From(m.From); err != nil {
		return nil, fmt.Errorf("mail: invalid sender %q: %w", m.From, err)
	}
	if err := out.To(m.To...); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient: %w", err)
	}
	out.Subject(m.Subject)
	out.SetBodyString(gomail.TypeTextPlain, m.Body)
	return out, nil
}
