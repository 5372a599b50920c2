package mandate

import (
	"time"
)

// Mandate is one standing direct-debit authorization saved for a user.
// Rows are created only when a redirect flow completes (or a payment source is
// imported) and are never mutated afterwards; they disappear only when the
// owning user is deleted.
type Mandate struct {
	ID        uint
	UserID    uint
	Label     string
	MandateID string
	Created   time.Time
}
