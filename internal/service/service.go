package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accreditation-backend/internal/credential"
	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/email"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Action is the pipeline branch chosen for a status change.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Status is the request status that selects the action.
func (a Action) Status() domain.Status {
	switch a {
	case ActionApprove:
		return domain.StatusApproved
	case ActionReject:
		return domain.StatusRejected
	}
	return ""
}

func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionApprove, ActionReject:
		return Action(raw), nil
	}
	return "", fmt.Errorf("%w: decision must be approve or reject, got %q", ErrInvalidInput, raw)
}

// EventKey identifies one transition of one request in the dispatch ledger.
func EventKey(requestID string, status domain.Status) string {
	return requestID + "/" + string(status)
}

// RunResult summarises one pipeline invocation.
type RunResult struct {
	RunID     string
	RequestID string
	Action    Action
	Outcome   domain.Outcome
	PDFURL    string
	Duplicate bool
}

type CredentialPipeline interface {
	// Run executes the action for req. A failed run has already been
	// recorded on the request when the error is returned.
	Run(ctx context.Context, action Action, req *domain.AccessRequest) (*RunResult, error)
}

type CredentialRenderer interface {
	Render(ctx context.Context, in credential.Input) ([]byte, error)
}

// Artifact is an uploaded credential document.
type Artifact struct {
	Key      string
	FileName string
	URL      string
}

type ArtifactService interface {
	UploadCredential(ctx context.Context, requestID string, data []byte, now time.Time) (*Artifact, error)
}

type EmailService interface {
	Validate() error
	SendApproval(ctx context.Context, req *domain.AccessRequest, artifact *Artifact, pdf []byte) (*email.Receipt, error)
	SendRejection(ctx context.Context, req *domain.AccessRequest) (*email.Receipt, error)
	SendFailureDigest(ctx context.Context, recipients []string, failures []domain.AccessRequest, generatedAt time.Time) error
}

type ReviewService interface {
	Review(ctx context.Context, session *domain.Session, requestID string, decision Action) (*domain.AccessRequest, error)
	Redeem(ctx context.Context, session *domain.Session, requestID, wristbandCode string) (*domain.AccessRequest, error)
}
