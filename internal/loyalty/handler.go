package loyalty

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"barberdesk/internal/consumer"
	"barberdesk/internal/storage"
)

// One point accrues per full ten minutes of a completed appointment.
// Partial blocks do not count.
const blockMinutes = 10

type completedEvent struct {
	AppointmentID string `json:"appointment_id"`
	CustomerEmail string `json:"customer_email"`
	DurationMins  int    `json:"duration_mins"`
}

type Handler struct {
	repo   *storage.LoyaltyRepository
	logger *slog.Logger
}

func NewHandler(repo *storage.LoyaltyRepository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func Points(durationMins int) int {
	if durationMins <= 0 {
		return 0
	}
	return durationMins / blockMinutes
}

func (h *Handler) HandleCompleted() consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt completedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			h.logger.Error("invalid completed event payload", "err", err)
			return nil
		}
		if evt.AppointmentID == "" || evt.CustomerEmail == "" {
			h.logger.Error("missing completed event fields")
			return nil
		}

		points := Points(evt.DurationMins)
		if points == 0 {
			h.logger.Info("no points accrued", "appointment_id", evt.AppointmentID, "duration_mins", evt.DurationMins)
			return nil
		}

		if err := h.repo.Accrue(ctx, evt.AppointmentID, evt.CustomerEmail, points); err != nil {
			h.logger.Error("loyalty accrual failed", "err", err, "appointment_id", evt.AppointmentID)
			return err
		}

		h.logger.Info("loyalty points accrued", "appointment_id", evt.AppointmentID, "points", points)
		return nil
	}
}
