package history

import "time"

// Entry is one audit record: a free-text description of an operation a user
// performed, with a server-assigned UTC timestamp. Entries are append-only;
// the only mutation the store supports is a per-user bulk clear.
type Entry struct {
	ID          int64     `json:"id"`
	Description string    `json:"requestData"`
	Timestamp   time.Time `json:"requestDate"`
}
