package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"accreditation-backend/internal/credential"
	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type credentialPipeline struct {
	requests  repository.AccessRequestRepository
	matchdays repository.MatchdayRepository
	refs      repository.ReferenceRepository
	renderer  CredentialRenderer
	artifacts ArtifactService
	emails    EmailService
	ledger    repository.DispatchLogRepository

	now      func() time.Time
	newRunID func() string
}

// PipelineOption customises a credential pipeline.
type PipelineOption func(*credentialPipeline)

// WithDispatchLog enables duplicate suppression through the dispatch ledger.
func WithDispatchLog(ledger repository.DispatchLogRepository) PipelineOption {
	return func(p *credentialPipeline) { p.ledger = ledger }
}

func WithClock(now func() time.Time) PipelineOption {
	return func(p *credentialPipeline) { p.now = now }
}

func WithRunIDs(next func() string) PipelineOption {
	return func(p *credentialPipeline) { p.newRunID = next }
}

func NewCredentialPipeline(
	requests repository.AccessRequestRepository,
	matchdays repository.MatchdayRepository,
	refs repository.ReferenceRepository,
	renderer CredentialRenderer,
	artifacts ArtifactService,
	emails EmailService,
	opts ...PipelineOption,
) CredentialPipeline {
	p := &credentialPipeline{
		requests:  requests,
		matchdays: matchdays,
		refs:      refs,
		renderer:  renderer,
		artifacts: artifacts,
		emails:    emails,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *credentialPipeline) Run(ctx context.Context, action Action, req *domain.AccessRequest) (*RunResult, error) {
	if req == nil || req.ID == "" {
		return nil, fmt.Errorf("%w: access request is required", ErrInvalidInput)
	}
	if action.Status() == "" {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	result := &RunResult{RunID: p.newRunID(), RequestID: req.ID, Action: action}
	log := logger.WithRun(result.RunID, req.ID).With("action", string(action))
	eventKey := EventKey(req.ID, action.Status())

	if p.ledger != nil {
		claimed, err := p.ledger.Claim(ctx, &repository.DispatchEntry{
			EventKey:  eventKey,
			RequestID: req.ID,
			Action:    string(action),
			RunID:     result.RunID,
		})
		switch {
		case err != nil:
			log.Warn("Dispatch ledger unavailable, running without duplicate check", "eventKey", eventKey, "error", err)
		case !claimed:
			log.Info("Transition already dispatched, skipping", "eventKey", eventKey)
			result.Outcome = domain.OutcomeSkipped
			result.Duplicate = true
			return result, nil
		}
	}

	log.Info("Credential pipeline started")
	start := time.Now()

	// Outcome writes must land even when the caller's deadline already fired.
	wctx := context.WithoutCancel(ctx)

	var err error
	switch action {
	case ActionApprove:
		result.PDFURL, err = p.approve(ctx, log, req)
	case ActionReject:
		err = p.reject(ctx, log, req)
	}

	if err != nil {
		result.Outcome = domain.OutcomeFailed
		log.Error("Credential pipeline failed", "error", err, "duration", time.Since(start))
		if werr := p.requests.MarkEmailFailed(wctx, req.ID, err.Error()); werr != nil {
			log.Error("Failed to record notification failure", "error", werr)
		}
	} else {
		result.Outcome = domain.OutcomeSent
		log.Info("Credential pipeline completed", "pdfUrl", result.PDFURL, "duration", time.Since(start))
	}

	if p.ledger != nil {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		if cerr := p.ledger.Complete(wctx, eventKey, result.Outcome, result.PDFURL, errMsg); cerr != nil {
			log.Warn("Failed to complete dispatch entry", "eventKey", eventKey, "error", cerr)
		}
	}
	return result, err
}

func (p *credentialPipeline) approve(ctx context.Context, log *slog.Logger, req *domain.AccessRequest) (string, error) {
	if err := p.emails.Validate(); err != nil {
		return "", fmt.Errorf("email configuration: %w", err)
	}

	names, matchday := p.lookup(ctx, log, req)

	pdf, err := p.renderer.Render(ctx, credential.Input{Request: req, Names: names, Matchday: matchday})
	if err != nil {
		return "", fmt.Errorf("failed to render credential: %w", err)
	}

	artifact, err := p.artifacts.UploadCredential(ctx, req.ID, pdf, p.now())
	if err != nil {
		return "", err
	}

	if err := p.requests.SetCredentialURL(ctx, req.ID, artifact.URL); err != nil {
		return "", fmt.Errorf("failed to store credential url: %w", err)
	}

	receipt, err := p.emails.SendApproval(ctx, req, artifact, pdf)
	if err != nil {
		return "", fmt.Errorf("failed to send approval email: %w", err)
	}
	log.Info("Approval email sent", "provider", receipt.Provider, "messageID", receipt.MessageID)

	p.markSent(ctx, log, req.ID)
	return artifact.URL, nil
}

func (p *credentialPipeline) reject(ctx context.Context, log *slog.Logger, req *domain.AccessRequest) error {
	if err := p.emails.Validate(); err != nil {
		return fmt.Errorf("email configuration: %w", err)
	}
	receipt, err := p.emails.SendRejection(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send rejection email: %w", err)
	}
	log.Info("Rejection email sent", "provider", receipt.Provider, "messageID", receipt.MessageID)

	p.markSent(ctx, log, req.ID)
	return nil
}

// markSent runs after the email left; a failed write must not flag the
// request as unsent.
func (p *credentialPipeline) markSent(ctx context.Context, log *slog.Logger, id string) {
	if err := p.requests.MarkEmailSent(context.WithoutCancel(ctx), id); err != nil {
		log.Error("Email sent but recording it failed", "error", err)
	}
}

// lookup resolves the display names and the active matchday concurrently.
// Failures never abort the run; they fall back and get logged.
func (p *credentialPipeline) lookup(ctx context.Context, log *slog.Logger, req *domain.AccessRequest) (domain.ReferenceNames, *domain.Matchday) {
	var (
		names    domain.ReferenceNames
		matchday *domain.Matchday
	)

	g, gctx := errgroup.WithContext(ctx)
	resolve := func(kind domain.ReferenceKind, id string, dst *string) {
		g.Go(func() error {
			ref, err := p.refs.Get(gctx, kind, id)
			switch {
			case err != nil && errors.Is(err, domain.ErrNotFound):
				log.Warn("Reference not found, using fallback", "kind", kind, "id", id)
			case err != nil:
				log.Warn("Reference lookup failed, using fallback", "kind", kind, "id", id, "error", err)
			case ref != nil:
				*dst = ref.Name
			}
			return nil
		})
	}
	resolve(domain.ReferenceArea, req.AreaID, &names.Area)
	resolve(domain.ReferenceFunction, req.FunctionID, &names.Function)
	resolve(domain.ReferenceCompany, req.CompanyID, &names.Company)

	g.Go(func() error {
		m, err := p.matchdays.GetActive(gctx)
		if err != nil {
			log.Warn("Active matchday lookup failed, rendering placeholder", "error", err)
			return nil
		}
		if m == nil {
			log.Info("No active matchday, rendering placeholder")
		}
		matchday = m
		return nil
	})

	_ = g.Wait()
	return names.NamesOrFallback(), matchday
}
