package repository

import (
	"context"
	"time"

	"accreditation-backend/internal/domain"
)

type AccessRequestRepository interface {
	GetByID(ctx context.Context, id string) (*domain.AccessRequest, error)

	// ApplyReview atomically moves the request to status if the lifecycle
	// allows it from the stored status; reviewedAt is assigned by the store
	ApplyReview(ctx context.Context, id string, status domain.Status, reviewerID string) (*domain.AccessRequest, error)
	// Redeem atomically marks an approved request as redeemed and stores the
	// handed-out wristband code
	Redeem(ctx context.Context, id string, wristbandCode string) (*domain.AccessRequest, error)

	// Pipeline outcome writes; timestamps are assigned by the store
	SetCredentialURL(ctx context.Context, id string, url string) error
	MarkEmailSent(ctx context.Context, id string) error
	MarkEmailFailed(ctx context.Context, id string, message string) error

	ListEmailFailures(ctx context.Context, limit int) ([]domain.AccessRequest, error)
}

type MatchdayRepository interface {
	// GetActive returns nil, nil when no matchday is flagged active
	GetActive(ctx context.Context) (*domain.Matchday, error)
	Upsert(ctx context.Context, m *domain.Matchday) error
}

type ReferenceRepository interface {
	Get(ctx context.Context, kind domain.ReferenceKind, id string) (*domain.Reference, error)
	Upsert(ctx context.Context, kind domain.ReferenceKind, ref *domain.Reference) error
}

// DispatchEntry is one pipeline run recorded in the dispatch ledger
type DispatchEntry struct {
	ID          string
	EventKey    string
	RequestID   string
	Action      string
	RunID       string
	Outcome     domain.Outcome
	PDFURL      string
	Error       string
	CreatedOn   time.Time
	CompletedOn *time.Time
}

type DispatchLogRepository interface {
	// Claim records the start of a run. It returns false when the event key
	// was already claimed by an earlier delivery.
	Claim(ctx context.Context, entry *DispatchEntry) (bool, error)
	Complete(ctx context.Context, eventKey string, outcome domain.Outcome, pdfURL, errMsg string) error
	GetByEventKey(ctx context.Context, eventKey string) (*DispatchEntry, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// DocumentChange is one access request write seen by a change feed
type DocumentChange struct {
	Kind       ChangeKind
	Request    *domain.AccessRequest
	UpdateTime time.Time
}

// AccessRequestFeed streams writes on the access request collection. The
// first batch delivered has initial set and describes the existing documents.
// fn receives the listener's context.
type AccessRequestFeed interface {
	Listen(ctx context.Context, fn func(ctx context.Context, changes []DocumentChange, initial bool) error) error
}
