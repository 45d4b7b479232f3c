package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"barberdesk/internal/consumer"
	"barberdesk/internal/push"
)

// AppointmentEvent mirrors the payload the booking flow writes to the outbox.
type AppointmentEvent struct {
	AppointmentID string `json:"appointment_id"`
	BarberID      string `json:"barber_id"`
	BarberName    string `json:"barber_name"`
	ServiceName   string `json:"service_name"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CancelReason  string `json:"cancel_reason,omitempty"`
}

// Handler turns appointment lifecycle events into customer notifications,
// recording each attempt before handing the message to the sender.
type Handler struct {
	repo   *Repository
	sender push.Sender
	logger *slog.Logger
}

func NewHandler(repo *Repository, sender push.Sender, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, sender: sender, logger: logger}
}

func (h *Handler) HandleBooked() consumer.Handler {
	return h.handle("booked", func(evt AppointmentEvent) push.Message {
		return push.Message{
			To:      evt.CustomerEmail,
			Subject: "Appointment confirmed",
			Body:    fmt.Sprintf("%s, your %s with %s is confirmed for %s.", evt.CustomerName, evt.ServiceName, evt.BarberName, evt.StartTime),
		}
	})
}

func (h *Handler) HandleCancelled() consumer.Handler {
	return h.handle("cancelled", func(evt AppointmentEvent) push.Message {
		body := fmt.Sprintf("%s, your %s appointment on %s was cancelled.", evt.CustomerName, evt.ServiceName, evt.StartTime)
		if evt.CancelReason != "" {
			body += " Reason: " + evt.CancelReason
		}
		return push.Message{
			To:      evt.CustomerEmail,
			Subject: "Appointment cancelled",
			Body:    body,
		}
	})
}

func (h *Handler) HandleRescheduled() consumer.Handler {
	return h.handle("rescheduled", func(evt AppointmentEvent) push.Message {
		return push.Message{
			To:      evt.CustomerEmail,
			Subject: "Appointment rescheduled",
			Body:    fmt.Sprintf("%s, your %s with %s was moved to %s.", evt.CustomerName, evt.ServiceName, evt.BarberName, evt.StartTime),
		}
	})
}

func (h *Handler) handle(kind string, build func(AppointmentEvent) push.Message) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt AppointmentEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			h.logger.Error("invalid appointment event payload", "err", err)
			return nil
		}
		if evt.AppointmentID == "" || evt.CustomerEmail == "" {
			h.logger.Error("missing appointment event fields", "kind", kind)
			return nil
		}

		message := build(evt)
		status := "sent"
		if err := h.sender.Send(ctx, message); err != nil {
			status = "failed"
			h.logger.Error("notification send failed", "err", err, "recipient", message.To)
		}

		if err := h.repo.Insert(ctx, Notification{
			AppointmentID: evt.AppointmentID,
			Kind:          kind,
			Recipient:     message.To,
			Payload: map[string]any{
				"subject": message.Subject,
				"body":    message.Body,
			},
			Status: status,
		}); err != nil {
			h.logger.Error("failed to persist notification", "err", err)
			return err
		}

		h.logger.Info("notification processed", "appointment_id", evt.AppointmentID, "kind", kind, "status", status)
		return nil
	}
}
