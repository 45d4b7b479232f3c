package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"barberdesk/internal/availability"
	"barberdesk/internal/model"
	"barberdesk/internal/outbox"
	"barberdesk/internal/storage"
)

// SlotSource and ScheduleSource are the read paths the slot endpoints need.
// They are satisfied by the storage repositories and stubbed in tests.
type SlotSource interface {
	GetAppointment(ctx context.Context, appointmentID string) (model.Appointment, error)
	ListBookedForDay(ctx context.Context, barberID string, start, end time.Time) ([]model.Appointment, error)
}

type ScheduleSource interface {
	Get(ctx context.Context, id string) (model.Barber, error)
	WorkingHoursFor(ctx context.Context, barberID string, weekday time.Weekday) (model.WorkingHours, error)
	ListTimeOff(ctx context.Context, barberID string, start, end time.Time) ([]model.TimeOff, error)
}

type CatalogSource interface {
	LoadCatalog(ctx context.Context) (availability.Catalog, error)
}

type BookingHandler struct {
	repo       *storage.BookingRepository
	outboxRepo *outbox.Repository
	slots      SlotSource
	schedule   ScheduleSource
	catalog    CatalogSource
	logger     *slog.Logger
	loc        *time.Location
	stepMins   int
}

func NewBookingHandler(
	repo *storage.BookingRepository,
	outboxRepo *outbox.Repository,
	slots SlotSource,
	schedule ScheduleSource,
	catalog CatalogSource,
	logger *slog.Logger,
	loc *time.Location,
	stepMins int,
) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	if stepMins <= 0 {
		stepMins = 30
	}
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		slots:      slots,
		schedule:   schedule,
		catalog:    catalog,
		logger:     logger,
		loc:        loc,
		stepMins:   stepMins,
	}
}

type bookRequest struct {
	BarberID      string `json:"barber_id"`
	Service       string `json:"service"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type bookResponse struct {
	AppointmentID string `json:"appointment_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type rescheduleRequest struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

type cancelRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type completeRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type appointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	BarberID      string `json:"barber_id"`
	Service       string `json:"service"`
	CustomerName  string `json:"customer_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// Slots returns the day's slot grid for one barber, each slot annotated with
// whether the requested service would fit there. The annotation is advisory:
// the database exclusion constraint is what finally rejects double bookings.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barberID := strings.TrimSpace(r.URL.Query().Get("barber_id"))
	service := strings.TrimSpace(r.URL.Query().Get("service"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if barberID == "" || service == "" || dateStr == "" {
		http.Error(w, "barber_id, service, and date are required", http.StatusBadRequest)
		return
	}

	day, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if _, err := h.schedule.Get(ctx, barberID); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "barber not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load barber", http.StatusInternalServerError)
		return
	}

	wh, err := h.schedule.WorkingHoursFor(ctx, barberID, day.Weekday())
	if err != nil {
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	if !wh.IsWorking {
		writeJSON(w, http.StatusOK, []availability.Slot{})
		return
	}

	catalog, err := h.catalog.LoadCatalog(ctx)
	if err != nil {
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}
	engine := availability.NewEngine(catalog)

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	booked, err := h.slots.ListBookedForDay(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load booked slots", http.StatusInternalServerError)
		return
	}
	timeOff, err := h.schedule.ListTimeOff(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load time off", http.StatusInternalServerError)
		return
	}

	busy := busyWindows(day, booked, timeOff, engine)

	grid := availability.SlotGridMinutes(wh.StartMinute, wh.EndMinute, h.stepMins)

	slots, err := engine.AnnotateGrid(grid, service, busy)
	if err != nil {
		http.Error(w, "failed to compute slots", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BarberID = strings.TrimSpace(req.BarberID)
	req.Service = strings.TrimSpace(req.Service)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.BarberID == "" || req.Service == "" || req.Date == "" || req.Time == "" || req.CustomerName == "" || req.CustomerEmail == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	startMin, err := availability.MinutesOfDay(req.Time)
	if err != nil {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	catalog, err := h.catalog.LoadCatalog(ctx)
	if err != nil {
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}
	engine := availability.NewEngine(catalog)
	duration := engine.Duration(req.Service)

	wh, err := h.schedule.WorkingHoursFor(ctx, req.BarberID, day.Weekday())
	if err != nil {
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	if !wh.IsWorking || startMin < wh.StartMinute || startMin+duration > wh.EndMinute {
		http.Error(w, "requested time is outside working hours", http.StatusUnprocessableEntity)
		return
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	booked, err := h.slots.ListBookedForDay(ctx, req.BarberID, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load booked slots", http.StatusInternalServerError)
		return
	}
	timeOff, err := h.schedule.ListTimeOff(ctx, req.BarberID, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load time off", http.StatusInternalServerError)
		return
	}

	// Advisory pre-check. It gives clean 409s under normal load; the insert
	// below still hits the exclusion constraint if a racing request wins.
	busy := busyWindows(day, booked, timeOff, engine)
	ok, err := engine.SlotAvailable(availability.Candidate{Start: req.Time, Service: req.Service}, busy)
	if err != nil {
		http.Error(w, "failed to check availability", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "time slot already booked", http.StatusConflict)
		return
	}

	startTime := day.Add(time.Duration(startMin) * time.Minute)
	endTime := startTime.Add(time.Duration(duration) * time.Minute)
	appt := &model.Appointment{
		BarberID:      req.BarberID,
		ServiceName:   req.Service,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartTime:     startTime,
		EndTime:       endTime,
		Status:        model.StatusBooked,
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	if err := h.insertAppointmentEvent(ctx, tx, outbox.EventAppointmentBooked, id, appt, nil); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(bookResponse{
		AppointmentID: id,
		StartTime:     startTime.UTC().Format(time.RFC3339),
		EndTime:       endTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" || req.Date == "" || req.Time == "" {
		http.Error(w, "appointment_id, date, and time required", http.StatusBadRequest)
		return
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	startMin, err := availability.MinutesOfDay(req.Time)
	if err != nil {
		http.Error(w, "invalid time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	appt, err := h.slots.GetAppointment(ctx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.Status != model.StatusBooked {
		http.Error(w, "appointment cannot be rescheduled", http.StatusConflict)
		return
	}

	catalog, err := h.catalog.LoadCatalog(ctx)
	if err != nil {
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}
	engine := availability.NewEngine(catalog)
	duration := engine.Duration(appt.ServiceName)

	wh, err := h.schedule.WorkingHoursFor(ctx, appt.BarberID, day.Weekday())
	if err != nil {
		http.Error(w, "failed to load working hours", http.StatusInternalServerError)
		return
	}
	if !wh.IsWorking || startMin < wh.StartMinute || startMin+duration > wh.EndMinute {
		http.Error(w, "requested time is outside working hours", http.StatusUnprocessableEntity)
		return
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	booked, err := h.slots.ListBookedForDay(ctx, appt.BarberID, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load booked slots", http.StatusInternalServerError)
		return
	}
	timeOff, err := h.schedule.ListTimeOff(ctx, appt.BarberID, dayStart, dayEnd)
	if err != nil {
		http.Error(w, "failed to load time off", http.StatusInternalServerError)
		return
	}

	// The appointment being moved must not conflict with itself, so its own
	// window is dropped before the advisory check. Time off still blocks the
	// target window here; the exclusion constraint only sees booked rows.
	busy := busyWindows(day, otherAppointments(booked, appt.ID), timeOff, engine)
	ok, err := engine.SlotAvailable(availability.Candidate{Start: req.Time, Service: appt.ServiceName}, busy)
	if err != nil {
		http.Error(w, "failed to check availability", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "time slot already booked", http.StatusConflict)
		return
	}

	startTime := day.Add(time.Duration(startMin) * time.Minute)
	endTime := startTime.Add(time.Duration(duration) * time.Minute)

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.Reschedule(ctx, tx, appt.ID, startTime, endTime); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		if storage.IsNotFound(err) {
			// The row stopped being booked between the pre-check and the
			// update, most likely a concurrent cancel or completion.
			http.Error(w, "appointment cannot be rescheduled", http.StatusConflict)
			return
		}
		http.Error(w, "failed to reschedule appointment", http.StatusInternalServerError)
		return
	}

	moved := appt
	moved.StartTime = startTime
	moved.EndTime = endTime
	if err := h.insertAppointmentEvent(ctx, tx, outbox.EventAppointmentRescheduled, appt.ID, &moved, nil); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bookResponse{
		AppointmentID: appt.ID,
		StartTime:     startTime.UTC().Format(time.RFC3339),
		EndTime:       endTime.UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	// Cancelling twice is a no-op, not an error.
	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		writeJSON(w, http.StatusOK, cancelResponse{
			AppointmentID: appt.ID,
			Status:        model.StatusCancelled,
			CancelledAt:   appt.CancelledAt.UTC().Format(time.RFC3339),
		})
		return
	}
	if appt.Status != model.StatusBooked {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.Cancel(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	extra := map[string]any{
		"cancelled_at":  cancelledAt.UTC().Format(time.RFC3339),
		"cancel_reason": req.Reason,
	}
	if err := h.insertAppointmentEvent(ctx, tx, outbox.EventAppointmentCancelled, appt.ID, &appt, extra); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cancelResponse{
		AppointmentID: appt.ID,
		Status:        model.StatusCancelled,
		CancelledAt:   cancelledAt.UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.Status != model.StatusBooked {
		http.Error(w, "appointment cannot be completed", http.StatusConflict)
		return
	}

	if err := h.repo.Complete(ctx, tx, appt.ID); err != nil {
		http.Error(w, "failed to complete appointment", http.StatusInternalServerError)
		return
	}

	extra := map[string]any{
		"duration_mins": int(appt.EndTime.Sub(appt.StartTime) / time.Minute),
	}
	if err := h.insertAppointmentEvent(ctx, tx, outbox.EventAppointmentCompleted, appt.ID, &appt, extra); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appt.ID,
		"status":         model.StatusCompleted,
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	barberID := strings.TrimSpace(r.URL.Query().Get("barber_id"))
	customerEmail := strings.TrimSpace(r.URL.Query().Get("customer_email"))
	if barberID == "" && customerEmail == "" {
		http.Error(w, "barber_id or customer_email required", http.StatusBadRequest)
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var appts []model.Appointment
	var err error
	if barberID != "" {
		appts, err = h.repo.ListByBarber(r.Context(), barberID, limit)
	} else {
		appts, err = h.repo.ListByCustomer(r.Context(), customerEmail, limit)
	}
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := appointmentItem{
			AppointmentID: appt.ID,
			BarberID:      appt.BarberID,
			Service:       appt.ServiceName,
			CustomerName:  appt.CustomerName,
			StartTime:     appt.StartTime.UTC().Format(time.RFC3339),
			EndTime:       appt.EndTime.UTC().Format(time.RFC3339),
			Status:        appt.Status,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// busyWindows maps booked appointments and time-off blocks for one local day
// into the engine's minutes-of-day form. Time off is modelled as a synthetic
// busy interval so it masks slots exactly like a booking would.
// otherAppointments drops the appointment being changed from the day's list.
func otherAppointments(booked []model.Appointment, excludeID string) []model.Appointment {
	others := booked[:0:0]
	for _, b := range booked {
		if b.ID != excludeID {
			others = append(others, b)
		}
	}
	return others
}

func busyWindows(day time.Time, booked []model.Appointment, timeOff []model.TimeOff, engine *availability.Engine) []availability.Booked {
	busy := make([]availability.Booked, 0, len(booked)+len(timeOff))
	for _, a := range booked {
		start := a.StartTime.In(day.Location())
		// The persisted span wins over a catalog lookup: the service's
		// duration may have changed since the appointment was booked.
		busy = append(busy, availability.Booked{
			ID:          a.ID,
			Start:       availability.FormatMinutes(clampMinutes(day, start)),
			Service:     a.ServiceName,
			DurationMin: int(a.EndTime.Sub(a.StartTime) / time.Minute),
		})
	}
	for _, to := range timeOff {
		start := clampMinutes(day, to.StartTime.In(day.Location()))
		end := clampMinutes(day, to.EndTime.In(day.Location()))
		if end <= start {
			continue
		}
		busy = append(busy, availability.Booked{
			ID:          to.ID,
			Start:       availability.FormatMinutes(start),
			Service:     "",
			DurationMin: end - start,
		})
	}
	return busy
}

// clampMinutes projects t onto the given day's minute scale, clamping
// instants outside the day to its edges.
func clampMinutes(day time.Time, t time.Time) int {
	minutes := int(t.Sub(day) / time.Minute)
	if minutes < 0 {
		return 0
	}
	if minutes > 24*60 {
		return 24 * 60
	}
	return minutes
}

func (h *BookingHandler) insertAppointmentEvent(ctx context.Context, tx pgx.Tx, eventType, id string, appt *model.Appointment, extra map[string]any) error {
	barberName := ""
	if h.schedule != nil {
		if b, err := h.schedule.Get(ctx, appt.BarberID); err == nil {
			barberName = b.Name
		}
	}
	payload := map[string]any{
		"appointment_id": id,
		"barber_id":      appt.BarberID,
		"barber_name":    barberName,
		"service_name":   appt.ServiceName,
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     eventType,
		Payload:       raw,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
