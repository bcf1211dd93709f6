package domain

import "time"

// Project is the collaboration boundary memberships and invites refer to.
// Task and column modeling lives outside this service.
type Project struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
