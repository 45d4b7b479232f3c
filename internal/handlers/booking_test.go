package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"barberdesk/internal/availability"
	"barberdesk/internal/model"
)

type stubSlotSource struct {
	booked []model.Appointment
}

func (s *stubSlotSource) GetAppointment(_ context.Context, id string) (model.Appointment, error) {
	for _, a := range s.booked {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Appointment{}, pgx.ErrNoRows
}

func (s *stubSlotSource) ListBookedForDay(_ context.Context, _ string, _, _ time.Time) ([]model.Appointment, error) {
	return s.booked, nil
}

type stubScheduleSource struct {
	barber  model.Barber
	hours   model.WorkingHours
	timeOff []model.TimeOff
}

func (s *stubScheduleSource) Get(_ context.Context, id string) (model.Barber, error) {
	return s.barber, nil
}

func (s *stubScheduleSource) WorkingHoursFor(_ context.Context, barberID string, weekday time.Weekday) (model.WorkingHours, error) {
	return s.hours, nil
}

func (s *stubScheduleSource) ListTimeOff(_ context.Context, _ string, _, _ time.Time) ([]model.TimeOff, error) {
	return s.timeOff, nil
}

type stubCatalogSource struct {
	catalog availability.Catalog
}

func (s *stubCatalogSource) LoadCatalog(_ context.Context) (availability.Catalog, error) {
	return s.catalog, nil
}

func newSlotsHandler(t *testing.T, slots *stubSlotSource, schedule *stubScheduleSource) *BookingHandler {
	t.Helper()
	catalog := &stubCatalogSource{catalog: availability.Catalog{
		"Haircut":         30,
		"Haircut + Beard": 45,
	}}
	return NewBookingHandler(nil, nil, slots, schedule, catalog, testLogger(), time.UTC, 30)
}

func workingDay() model.WorkingHours {
	return model.WorkingHours{
		IsWorking:   true,
		StartMinute: 9 * 60,
		EndMinute:   18 * 60,
	}
}

func mustDay(t *testing.T, date string) time.Time {
	t.Helper()
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	return day
}

func decodeSlots(t *testing.T, body []byte) map[string]bool {
	t.Helper()
	var slots []availability.Slot
	if err := json.Unmarshal(body, &slots); err != nil {
		t.Fatalf("invalid slots response: %v", err)
	}
	out := make(map[string]bool, len(slots))
	for _, s := range slots {
		out[s.Time] = s.Available
	}
	return out
}

func TestSlotsFullDayGrid(t *testing.T) {
	h := newSlotsHandler(t, &stubSlotSource{}, &stubScheduleSource{hours: workingDay()})

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1&service=Haircut&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	slots := decodeSlots(t, rec.Body.Bytes())
	if len(slots) != 18 {
		t.Fatalf("expected 18 slots for a 09:00-18:00 day, got %d", len(slots))
	}
	for tm, ok := range slots {
		if !ok {
			t.Fatalf("slot %s should be available on an empty day", tm)
		}
	}
}

func TestSlotsMaskedByBooking(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	booked := []model.Appointment{{
		ID:          "a1",
		ServiceName: "Haircut + Beard",
		StartTime:   day.Add(10 * time.Hour),
		EndTime:     day.Add(10*time.Hour + 45*time.Minute),
		Status:      model.StatusBooked,
	}}
	h := newSlotsHandler(t, &stubSlotSource{booked: booked}, &stubScheduleSource{hours: workingDay()})

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1&service=Haircut&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	slots := decodeSlots(t, rec.Body.Bytes())
	if slots["10:00"] {
		t.Fatal("10:00 overlaps the 10:00-10:45 booking")
	}
	if slots["10:30"] {
		t.Fatal("10:30-11:00 clips the 10:00-10:45 booking")
	}
	if !slots["11:00"] {
		t.Fatal("11:00 should be free")
	}
	if !slots["09:30"] {
		t.Fatal("09:30-10:00 abuts the booking and should be free")
	}
}

func TestSlotsMaskedByTimeOff(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	schedule := &stubScheduleSource{
		hours: workingDay(),
		timeOff: []model.TimeOff{{
			ID:        "to1",
			StartTime: day.Add(13 * time.Hour),
			EndTime:   day.Add(14 * time.Hour),
		}},
	}
	h := newSlotsHandler(t, &stubSlotSource{}, schedule)

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1&service=Haircut&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	slots := decodeSlots(t, rec.Body.Bytes())
	if slots["13:00"] || slots["13:30"] {
		t.Fatal("slots inside the 13:00-14:00 time off must be unavailable")
	}
	if !slots["12:30"] {
		t.Fatal("12:30-13:00 ends when time off starts and should be free")
	}
	if !slots["14:00"] {
		t.Fatal("14:00 starts when time off ends and should be free")
	}
}

func TestSlotsNonWorkingDay(t *testing.T) {
	h := newSlotsHandler(t, &stubSlotSource{}, &stubScheduleSource{hours: model.WorkingHours{IsWorking: false}})

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1&service=Haircut&date=2026-08-31", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var slots []availability.Slot
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected empty grid on a day off, got %d slots", len(slots))
	}
}

func TestSlotsMissingParams(t *testing.T) {
	h := newSlotsHandler(t, &stubSlotSource{}, &stubScheduleSource{hours: workingDay()})

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400 for missing params, got %d", rec.Code)
	}
}

func TestSlotsInvalidDate(t *testing.T) {
	h := newSlotsHandler(t, &stubSlotSource{}, &stubScheduleSource{hours: workingDay()})

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1&service=Haircut&date=tomorrow", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestBookRejectsMalformedTime(t *testing.T) {
	h := newSlotsHandler(t, &stubSlotSource{}, &stubScheduleSource{hours: workingDay()})

	body := `{"barber_id":"b1","service":"Haircut","date":"2026-09-01","time":"9am","customer_name":"Ana","customer_email":"ana@example.com"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400 for malformed time, got %d", rec.Code)
	}
}

func TestBookRejectsOutsideWorkingHours(t *testing.T) {
	h := newSlotsHandler(t, &stubSlotSource{}, &stubScheduleSource{hours: workingDay()})

	body := `{"barber_id":"b1","service":"Haircut","date":"2026-09-01","time":"18:00","customer_name":"Ana","customer_email":"ana@example.com"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	if rec.Code != 422 {
		t.Fatalf("expected 422 outside working hours, got %d", rec.Code)
	}
}

func TestBookAdvisoryConflict(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	booked := []model.Appointment{{
		ID:          "a1",
		ServiceName: "Haircut + Beard",
		StartTime:   day.Add(10 * time.Hour),
		EndTime:     day.Add(10*time.Hour + 45*time.Minute),
		Status:      model.StatusBooked,
	}}
	h := newSlotsHandler(t, &stubSlotSource{booked: booked}, &stubScheduleSource{hours: workingDay()})

	body := `{"barber_id":"b1","service":"Haircut","date":"2026-09-01","time":"10:30","customer_name":"Ana","customer_email":"ana@example.com"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Book(rec, req)

	if rec.Code != 409 {
		t.Fatalf("expected 409 for conflicting slot, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSlotsMinuteGrainedWorkingHours(t *testing.T) {
	schedule := &stubScheduleSource{hours: model.WorkingHours{
		IsWorking:   true,
		StartMinute: 9*60 + 30,
		EndMinute:   17*60 + 30,
	}}
	h := newSlotsHandler(t, &stubSlotSource{}, schedule)

	req := httptest.NewRequest("GET", "/api/v1/slots?barber_id=b1&service=Haircut&date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	slots := decodeSlots(t, rec.Body.Bytes())
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots for 09:30-17:30, got %d", len(slots))
	}
	if _, found := slots["09:00"]; found {
		t.Fatal("09:00 is before the 09:30 opening and would be rejected at booking time")
	}
	if ok, found := slots["09:30"]; !found || !ok {
		t.Fatal("09:30 should open the day and be available")
	}
	if ok, found := slots["17:00"]; !found || !ok {
		t.Fatal("17:00-17:30 fits the working hours and should be offered")
	}
	if _, found := slots["17:30"]; found {
		t.Fatal("17:30 is the closing boundary and must not appear")
	}
}

func rescheduleFixture(booked []model.Appointment, timeOff []model.TimeOff) *BookingHandler {
	schedule := &stubScheduleSource{hours: workingDay(), timeOff: timeOff}
	catalog := &stubCatalogSource{catalog: availability.Catalog{"Haircut": 30}}
	return NewBookingHandler(nil, nil, &stubSlotSource{booked: booked}, schedule, catalog, testLogger(), time.UTC, 30)
}

func TestRescheduleIntoTimeOff(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	booked := []model.Appointment{{
		ID:          "a1",
		BarberID:    "b1",
		ServiceName: "Haircut",
		StartTime:   day.Add(10 * time.Hour),
		EndTime:     day.Add(10*time.Hour + 30*time.Minute),
		Status:      model.StatusBooked,
	}}
	timeOff := []model.TimeOff{{
		ID:        "to1",
		BarberID:  "b1",
		StartTime: day.Add(13 * time.Hour),
		EndTime:   day.Add(14 * time.Hour),
	}}
	h := rescheduleFixture(booked, timeOff)

	body := `{"appointment_id":"a1","date":"2026-09-01","time":"13:00"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings/reschedule", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Reschedule(rec, req)

	if rec.Code != 409 {
		t.Fatalf("expected 409 moving into a time-off window, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRescheduleConflictsWithOtherBooking(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	booked := []model.Appointment{
		{
			ID:          "a1",
			BarberID:    "b1",
			ServiceName: "Haircut",
			StartTime:   day.Add(10 * time.Hour),
			EndTime:     day.Add(10*time.Hour + 30*time.Minute),
			Status:      model.StatusBooked,
		},
		{
			ID:          "a2",
			BarberID:    "b1",
			ServiceName: "Haircut",
			StartTime:   day.Add(11 * time.Hour),
			EndTime:     day.Add(11*time.Hour + 30*time.Minute),
			Status:      model.StatusBooked,
		},
	}
	h := rescheduleFixture(booked, nil)

	body := `{"appointment_id":"a1","date":"2026-09-01","time":"11:00"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings/reschedule", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Reschedule(rec, req)

	if rec.Code != 409 {
		t.Fatalf("expected 409 for a slot held by another booking, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRescheduleOutsideWorkingHours(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	booked := []model.Appointment{{
		ID:          "a1",
		BarberID:    "b1",
		ServiceName: "Haircut",
		StartTime:   day.Add(10 * time.Hour),
		EndTime:     day.Add(10*time.Hour + 30*time.Minute),
		Status:      model.StatusBooked,
	}}
	h := rescheduleFixture(booked, nil)

	body := `{"appointment_id":"a1","date":"2026-09-01","time":"18:00"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings/reschedule", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Reschedule(rec, req)

	if rec.Code != 422 {
		t.Fatalf("expected 422 outside working hours, got %d", rec.Code)
	}
}

func TestRescheduleUnknownAppointment(t *testing.T) {
	h := rescheduleFixture(nil, nil)

	body := `{"appointment_id":"missing","date":"2026-09-01","time":"10:00"}`
	req := httptest.NewRequest("POST", "/api/v1/bookings/reschedule", jsonBody(body))
	rec := httptest.NewRecorder()
	h.Reschedule(rec, req)

	if rec.Code != 404 {
		t.Fatalf("expected 404 for unknown appointment, got %d", rec.Code)
	}
}

func TestRescheduleExcludesOwnWindow(t *testing.T) {
	day := mustDay(t, "2026-09-01")
	engine := availability.NewEngine(availability.Catalog{"Haircut": 30})
	booked := []model.Appointment{{
		ID:          "a1",
		BarberID:    "b1",
		ServiceName: "Haircut",
		StartTime:   day.Add(10 * time.Hour),
		EndTime:     day.Add(10*time.Hour + 30*time.Minute),
		Status:      model.StatusBooked,
	}}

	busy := busyWindows(day, otherAppointments(booked, "a1"), nil, engine)
	ok, err := engine.SlotAvailable(availability.Candidate{Start: "10:00", Service: "Haircut"}, busy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("an appointment must not conflict with its own current window")
	}

	busy = busyWindows(day, otherAppointments(booked, "someone-else"), nil, engine)
	ok, err = engine.SlotAvailable(availability.Candidate{Start: "10:00", Service: "Haircut"}, busy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("the window must still block every other appointment")
	}
}
