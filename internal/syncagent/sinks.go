package syncagent

import (
	"fmt"

	"bizdir_backend/internal/email"
)

// AlertSink receives alerts raised by the agent. Sinks are best-effort:
// a failing sink is logged by the agent and otherwise ignored.
type AlertSink interface {
	Notify(alert Alert) error
}

// ToastSink buffers alerts for the in-session UI to drain. When the
// buffer is full the alert is dropped rather than blocking the poll
// loop.
type ToastSink struct {
	ch chan Alert
}

func NewToastSink(buffer int) *ToastSink {
	if buffer <= 0 {
		buffer = 16
	}
	return &ToastSink{ch: make(chan Alert, buffer)}
}

func (s *ToastSink) Notify(alert Alert) error {
	select {
	case s.ch <- alert:
		return nil
	default:
		return fmt.Errorf("toast buffer full, alert %s dropped", alert.DeliveryID)
	}
}

// Alerts exposes the drain side for the UI layer.
func (s *ToastSink) Alerts() <-chan Alert {
	return s.ch
}

// EmailSink forwards alerts to the recipient's mailbox, the optional
// platform-level channel.
type EmailSink struct {
	sender  *email.Sender
	address string
}

func NewEmailSink(sender *email.Sender, address string) *EmailSink {
	return &EmailSink{sender: sender, address: address}
}

func (s *EmailSink) Notify(alert Alert) error {
	return s.sender.Send(s.address, "New notification", alert.Message)
}
