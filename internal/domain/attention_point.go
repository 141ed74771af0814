package domain

// AttentionPoint is a service position. An occupied point references the
// single in-progress ticket it is serving; a free point references none.
type AttentionPoint struct {
	ID              int64
	Availability    bool
	CurrentTicketID *int64
}
