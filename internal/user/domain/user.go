// Package domain contains the user model. Users are owned by the identity
// side of the platform; this service reads them for display names on tokens.
package domain

import "time"

// User is a platform account.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
