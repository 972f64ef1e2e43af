package user

import "time"

// User is an externally authenticated identity. Users are created by the
// authentication layer; this core only reads them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
