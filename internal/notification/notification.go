package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/resend/resend-go/v2"
)

const (
	// KindVerificationCode carries a one-time code for phone or email verification.
	KindVerificationCode = "verification_code"
	// KindWelcome is sent once onboarding completes.
	KindWelcome = "welcome"
	// KindSettingsChanged confirms a security-relevant settings change.
	KindSettingsChanged = "settings_changed"
)

// Delivery channels.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Channel     string
	Destination string
	Subject     string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the logger. SMS has no provider wired yet.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"channel", message.Channel,
		"destination", message.Destination,
		"body", message.Body,
	)
	return nil
}

// ResendNotifier delivers email through Resend.
type ResendNotifier struct {
	client *resend.Client
	from   string
}

// NewResendNotifier builds an email notifier for the given API key and sender.
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{client: resend.NewClient(apiKey), from: from}
}

// Send emails the message body as HTML.
func (n *ResendNotifier) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := message.Subject
	if subject == "" {
		subject = "Tangent"
	}
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{message.Destination},
		Subject: subject,
		Html:    fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;"><p>%s</p></div>`, message.Body),
	}
	if _, err := n.client.Emails.Send(params); err != nil {
		return fmt.Errorf("send email via resend: %w", err)
	}
	return nil
}

// Router dispatches messages by channel. Unknown channels go to the fallback.
type Router struct {
	routes   map[string]Notifier
	fallback Notifier
}

// NewRouter builds a channel router.
func NewRouter(fallback Notifier) *Router {
	return &Router{routes: make(map[string]Notifier), fallback: fallback}
}

// Route registers n for channel and returns the router for chaining.
func (r *Router) Route(channel string, n Notifier) *Router {
	r.routes[channel] = n
	return r
}

// Send delivers through the notifier registered for message.Channel.
func (r *Router) Send(ctx context.Context, message Message) error {
	if n, ok := r.routes[message.Channel]; ok {
		return n.Send(ctx, message)
	}
	if r.fallback == nil {
		return fmt.Errorf("no notifier for channel %q", message.Channel)
	}
	return r.fallback.Send(ctx, message)
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Messages returns a copy of recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message sent to destination.
func (r *Recorder) Last(destination string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].Destination == destination {
			return r.messages[i], true
		}
	}
	return Message{}, false
}
