package model

import "time"

type Barber struct {
	ID        string
	Name      string
	Bio       string
	IsActive  bool
	CreatedAt time.Time
}

// WorkingHours describes one weekday of a barber's schedule.
// Minutes are minutes since midnight on the shop's local clock;
// the interval is half-open: [StartMinute, EndMinute).
type WorkingHours struct {
	BarberID    string
	Weekday     int // 0=Sunday .. 6=Saturday
	IsWorking   bool
	StartMinute int
	EndMinute   int
}

// DefaultWorkingHours is the shop schedule for barbers without explicit
// rows: Tuesday through Saturday, 09:00 to 18:00.
func DefaultWorkingHours(barberID string, weekday time.Weekday) WorkingHours {
	wh := WorkingHours{
		BarberID:    barberID,
		Weekday:     int(weekday),
		StartMinute: 9 * 60,
		EndMinute:   18 * 60,
	}
	wh.IsWorking = weekday >= time.Tuesday && weekday <= time.Saturday
	return wh
}

type TimeOff struct {
	ID        string
	BarberID  string
	StartTime time.Time
	EndTime   time.Time
	Reason    string
	CreatedAt time.Time
}
