package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal identity record trips and jobs hang off.
// Authentication and session management live in an upstream service;
// this table exists so ownership and cascade rules have something to
// reference.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}
