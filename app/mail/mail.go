// Package mail sends plain-text email through pluggable backends.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Backends selectable from configuration.
const (
	BackendSMTP   = "smtp"
	BackendLog    = "log"
	BackendMemory = "memory"
)

// DefaultFrom is used when no sender address is configured.
const DefaultFrom = "blog@localhost"

var ErrNoRecipients = errors.New("mail: message has no recipients")

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender abstracts email delivery so handlers can be tested without SMTP.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Options configures New.
type Options struct {
	Backend  string
	Host     string
	Port     int
	Username string
	Password string
}

// New builds the sender selected by opts.Backend.
func New(opts Options, logger *zap.Logger) (Sender, error) {
	switch opts.Backend {
	case BackendSMTP:
		if opts.Host == "" {
			return nil, errors.New("mail: smtp host is required")
		}
		return NewSMTPSender(opts.Host, opts.Port, opts.Username, opts.Password), nil
	case BackendLog, "":
		return NewLogSender(logger), nil
	case BackendMemory:
		return NewOutbox(), nil
	}
	return nil, fmt.Errorf("mail: unknown backend %q", opts.Backend)
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, addr := range append([]string{m.From}, m.To...) {
		if strings.ContainsAny(addr, "\r\n") {
			return fmt.Errorf("mail: invalid address %q", addr)
		}
	}
	return nil
}
