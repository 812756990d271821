package reconcile

// Outcome is the aggregate result of one reconciliation pass across all
// configured servers.
type Outcome struct {
	Changed bool     `json:"changed"`
	Errors  []string `json:"errors"`
}

// Failed reports whether any fetch, add or delete failed anywhere in the
// pass. A single failure marks the whole pass as failed, even when other
// operations succeeded.
func (o Outcome) Failed() bool {
	return len(o.Errors) > 0
}
