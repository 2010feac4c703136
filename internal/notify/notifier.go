package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/nyinsen/internal/metrics"
)

const (
	KindAlert    = "alert"
	KindReminder = "reminder"

	MethodTelegram = "telegram"
	MethodLog      = "log"
)

type Message struct {
	Kind      string
	Recipient string
	Subject   string
	Body      string
}

// Text renders the message as one plain-text block.
func (message Message) Text() string {
	var builder strings.Builder
	if message.Subject != "" {
		builder.WriteString(message.Subject)
		builder.WriteString("\n")
	}
	if message.Recipient != "" {
		builder.WriteString("To: ")
		builder.WriteString(message.Recipient)
		builder.WriteString("\n")
	}
	builder.WriteString(message.Body)
	return strings.TrimSpace(builder.String())
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
	Method() string
}

// LogNotifier writes messages to the application log. It is used when no
// delivery channel is configured.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{log: log}
}

func (notifier *LogNotifier) Method() string {
	return MethodLog
}

func (notifier *LogNotifier) Notify(_ context.Context, message Message) error {
	notifier.log.WithFields(logrus.Fields{
		"kind":      message.Kind,
		"recipient": message.Recipient,
		"subject":   message.Subject,
	}).Info(message.Body)
	return nil
}

// Instrumented counts deliveries per kind and status.
type Instrumented struct {
	next Notifier
}

func NewInstrumented(next Notifier) *Instrumented {
	return &Instrumented{next: next}
}

func (notifier *Instrumented) Method() string {
	return notifier.next.Method()
}

func (notifier *Instrumented) Notify(ctx context.Context, message Message) error {
	if err := notifier.next.Notify(ctx, message); err != nil {
		metrics.NotificationDeliveriesTotal.WithLabelValues(message.Kind, "failed").Inc()
		return fmt.Errorf("notify via %s: %w", notifier.next.Method(), err)
	}
	metrics.NotificationDeliveriesTotal.WithLabelValues(message.Kind, "sent").Inc()
	return nil
}
