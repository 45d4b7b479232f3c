package model

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "admin" or "customer"
	CreatedAt    time.Time
}
