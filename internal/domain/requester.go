package domain

import "time"

// Requester is the identity record tickets are issued against, keyed by
// national ID. Records are never deleted, only deactivated; the priority
// eligibility flag is the only field an administrator may change.
type Requester struct {
	NationalID string
	FirstName  string
	LastName   string
	Email      string
	Priority   bool
	Active     bool
	CreatedAt  time.Time
}
