package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"barberdesk/internal/storage"
)

type LoyaltyStore interface {
	Balance(ctx context.Context, customerEmail string) (storage.LoyaltyBalance, error)
}

type LoyaltyHandler struct {
	loyalty LoyaltyStore
	logger  *slog.Logger
}

func NewLoyaltyHandler(loyalty LoyaltyStore, logger *slog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{loyalty: loyalty, logger: logger}
}

type balanceResponse struct {
	CustomerEmail string `json:"customer_email"`
	Points        int    `json:"points"`
}

func (h *LoyaltyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}

	bal, err := h.loyalty.Balance(r.Context(), email)
	if err != nil {
		http.Error(w, "failed to load balance", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		CustomerEmail: bal.CustomerEmail,
		Points:        bal.Points,
	})
}
