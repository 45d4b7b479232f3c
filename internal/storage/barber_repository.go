package storage

import (
	"context"
	"time"

	"barberdesk/internal/model"
	"barberdesk/libs/db"
)

type BarberRepository struct {
	pool *db.Pool
}

func NewBarberRepository(pool *db.Pool) *BarberRepository {
	return &BarberRepository{pool: pool}
}

func (r *BarberRepository) ListActive(ctx context.Context) ([]model.Barber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(bio, ''), is_active, created_at
		FROM barbers
		WHERE is_active
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var barbers []model.Barber
	for rows.Next() {
		var b model.Barber
		if err := rows.Scan(&b.ID, &b.Name, &b.Bio, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		barbers = append(barbers, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return barbers, nil
}

func (r *BarberRepository) Get(ctx context.Context, id string) (model.Barber, error) {
	var b model.Barber
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(bio, ''), is_active, created_at
		FROM barbers
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Bio, &b.IsActive, &b.CreatedAt)
	if err != nil {
		return model.Barber{}, err
	}
	return b, nil
}

func (r *BarberRepository) Create(ctx context.Context, b *model.Barber) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO barbers (name, bio, is_active)
		VALUES ($1, $2, $3)
		RETURNING id
	`, b.Name, b.Bio, b.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// WorkingHoursFor returns the barber's schedule for one weekday. Barbers
// without an explicit row fall back to the shop default, Tuesday through
// Saturday 09:00 to 18:00.
func (r *BarberRepository) WorkingHoursFor(ctx context.Context, barberID string, weekday time.Weekday) (model.WorkingHours, error) {
	var wh model.WorkingHours
	err := r.pool.QueryRow(ctx, `
		SELECT barber_id, weekday, is_working, start_minute, end_minute
		FROM working_hours
		WHERE barber_id = $1 AND weekday = $2
	`, barberID, int(weekday)).Scan(&wh.BarberID, &wh.Weekday, &wh.IsWorking, &wh.StartMinute, &wh.EndMinute)
	if err == nil {
		return wh, nil
	}
	if !IsNotFound(err) {
		return model.WorkingHours{}, err
	}
	return model.DefaultWorkingHours(barberID, weekday), nil
}

func (r *BarberRepository) SetWorkingHours(ctx context.Context, wh model.WorkingHours) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO working_hours (barber_id, weekday, is_working, start_minute, end_minute)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (barber_id, weekday) DO UPDATE
		SET is_working = EXCLUDED.is_working,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute
	`, wh.BarberID, wh.Weekday, wh.IsWorking, wh.StartMinute, wh.EndMinute)
	return err
}

// ListTimeOff returns time-off entries for a barber that touch [start, end).
func (r *BarberRepository) ListTimeOff(ctx context.Context, barberID string, start, end time.Time) ([]model.TimeOff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, barber_id, start_time, end_time, COALESCE(reason, '')
		FROM time_off
		WHERE barber_id = $1
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, barberID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.TimeOff
	for rows.Next() {
		var to model.TimeOff
		if err := rows.Scan(&to.ID, &to.BarberID, &to.StartTime, &to.EndTime, &to.Reason); err != nil {
			return nil, err
		}
		entries = append(entries, to)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

func (r *BarberRepository) AddTimeOff(ctx context.Context, to *model.TimeOff) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO time_off (barber_id, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, to.BarberID, to.StartTime, to.EndTime, to.Reason).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
