package domain

import "time"

// User is a person logging exercises. Usernames are unique.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
