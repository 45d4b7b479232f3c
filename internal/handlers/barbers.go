package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barberdesk/internal/availability"
	"barberdesk/internal/model"
)

type BarberStore interface {
	ListActive(ctx context.Context) ([]model.Barber, error)
	Create(ctx context.Context, b *model.Barber) (string, error)
	SetWorkingHours(ctx context.Context, wh model.WorkingHours) error
	AddTimeOff(ctx context.Context, to *model.TimeOff) (string, error)
}

type BarberHandler struct {
	barbers BarberStore
	logger  *slog.Logger
	loc     *time.Location
}

func NewBarberHandler(barbers BarberStore, logger *slog.Logger, loc *time.Location) *BarberHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BarberHandler{barbers: barbers, logger: logger, loc: loc}
}

type barberItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

type createBarberRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

type workingHoursRequest struct {
	BarberID  string `json:"barber_id"`
	Weekday   int    `json:"weekday"`
	IsWorking bool   `json:"is_working"`
	Start     string `json:"start"` // "HH:MM"
	End       string `json:"end"`
}

type timeOffRequest struct {
	BarberID string `json:"barber_id"`
	Date     string `json:"date"` // "2006-01-02"
	Start    string `json:"start"`
	End      string `json:"end"`
	Reason   string `json:"reason"`
}

func (h *BarberHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barbers, err := h.barbers.ListActive(r.Context())
	if err != nil {
		http.Error(w, "failed to list barbers", http.StatusInternalServerError)
		return
	}

	items := make([]barberItem, 0, len(barbers))
	for _, b := range barbers {
		items = append(items, barberItem{ID: b.ID, Name: b.Name, Bio: b.Bio})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BarberHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBarberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	id, err := h.barbers.Create(r.Context(), &model.Barber{
		Name:     req.Name,
		Bio:      strings.TrimSpace(req.Bio),
		IsActive: true,
	})
	if err != nil {
		http.Error(w, "failed to create barber", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"barber_id": id})
}

func (h *BarberHandler) SetWorkingHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req workingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BarberID = strings.TrimSpace(req.BarberID)
	if req.BarberID == "" || req.Weekday < 0 || req.Weekday > 6 {
		http.Error(w, "barber_id and weekday 0-6 required", http.StatusBadRequest)
		return
	}

	wh := model.WorkingHours{
		BarberID:  req.BarberID,
		Weekday:   req.Weekday,
		IsWorking: req.IsWorking,
	}
	if req.IsWorking {
		startMin, err := availability.MinutesOfDay(req.Start)
		if err != nil {
			http.Error(w, "invalid start", http.StatusBadRequest)
			return
		}
		endMin, err := availability.MinutesOfDay(req.End)
		if err != nil {
			http.Error(w, "invalid end", http.StatusBadRequest)
			return
		}
		if endMin <= startMin {
			http.Error(w, "end must be after start", http.StatusBadRequest)
			return
		}
		wh.StartMinute = startMin
		wh.EndMinute = endMin
	}

	if err := h.barbers.SetWorkingHours(r.Context(), wh); err != nil {
		http.Error(w, "failed to set working hours", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *BarberHandler) AddTimeOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req timeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BarberID = strings.TrimSpace(req.BarberID)
	if req.BarberID == "" || req.Date == "" || req.Start == "" || req.End == "" {
		http.Error(w, "barber_id, date, start, and end required", http.StatusBadRequest)
		return
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	startMin, err := availability.MinutesOfDay(req.Start)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	endMin, err := availability.MinutesOfDay(req.End)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}
	if endMin <= startMin {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}

	id, err := h.barbers.AddTimeOff(r.Context(), &model.TimeOff{
		BarberID:  req.BarberID,
		StartTime: day.Add(time.Duration(startMin) * time.Minute),
		EndTime:   day.Add(time.Duration(endMin) * time.Minute),
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		http.Error(w, "failed to add time off", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"time_off_id": id})
}
