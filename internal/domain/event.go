package domain

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

// ChangeEvent is a write observed on an access request. Before is nil
// for creations.
type ChangeEvent struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	RequestID string         `json:"requestId"`
	Before    *AccessRequest `json:"before,omitempty"`
	After     *AccessRequest `json:"after"`
}

// PreviousStatus is empty for creations.
func (e ChangeEvent) PreviousStatus() Status {
	if e.Before == nil {
		return ""
	}
	return e.Before.Status
}

func (e ChangeEvent) NewStatus() Status {
	if e.After == nil {
		return ""
	}
	return e.After.Status
}

// Outcome is the result of one pipeline run.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)
