// Package domain contains the group model. Groups are owned by an external
// directory; this service reads memberships to grant bulk session access.
package domain

import "time"

// Group is an externally managed set of users.
type Group struct {
	ID        string
	Name      string
	MemberIDs []string
	CreatedAt time.Time
}
