package model

import "time"

// Service is a catalog entry. Name is the key appointments reference;
// DurationMins drives slot conflict checks.
type Service struct {
	ID           string
	Name         string
	DurationMins int
	Price        string
	Description  string
	IsActive     bool
	CreatedAt    time.Time
}
