package models

import "time"

// order status
const (
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusInProgress     = "in_progress"
	StatusComplete       = "complete"
)

// KnownStatuses lists the conventional lifecycle statuses in order.
// The store accepts other operator-defined values verbatim.
var KnownStatuses = []string{
	StatusPendingPayment,
	StatusPaid,
	StatusInProgress,
	StatusComplete,
}

// IsKnownStatus reports whether s is one of the conventional statuses.
func IsKnownStatus(s string) bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order is order entity
type Order struct {
	ID            string
	Name          string
	Facebook      string
	Email         string
	OrderType     string
	Details       string
	Filenames     []string
	Status        string
	PaypalOrderID string
	Verified      bool
	CreatedAt     time.Time
}
