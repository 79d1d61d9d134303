package apitest

import (
	"context"
	"sync"
)

// Mailer delivers one-time codes.
type Mailer interface {
	SendCode(ctx context.Context, email, code string) error
}

// Outbox records every code it is asked to send.
type Outbox struct {
	mu    sync.Mutex
	codes map[string][]string
}

func NewOutbox() *Outbox {
	return &Outbox{codes: make(map[string][]string)}
}

func (o *Outbox) SendCode(_ context.Context, email, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[email] = append(o.codes[email], code)
	return nil
}

// Last returns the most recent code sent to email.
func (o *Outbox) Last(email string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c := o.codes[email]
	if len(c) == 0 {
		return "", false
	}
	return c[len(c)-1], true
}

func (o *Outbox) Count(email string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.codes[email])
}

// LogMailer prints codes instead of mailing them.
type LogMailer func(format string, args ...any)

func (l LogMailer) SendCode(_ context.Context, email, code string) error {
	l("otp for %s: %s", email, code)
	return nil
}
