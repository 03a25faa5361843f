package service

import (
	"context"
	"fmt"
	"strings"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type reviewService struct {
	requests repository.AccessRequestRepository
}

func NewReviewService(requests repository.AccessRequestRepository) ReviewService {
	return &reviewService{requests: requests}
}

func (s *reviewService) Review(ctx context.Context, session *domain.Session, requestID string, decision Action) (*domain.AccessRequest, error) {
	target := decision.Status()
	if target == "" {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}
	if session == nil {
		return nil, ErrForbidden
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !session.CanReview(req) {
		logger.Warn("Review denied", "uid", session.UID, "role", session.Role, "requestID", requestID)
		return nil, fmt.Errorf("%w: %s cannot review request %s", ErrForbidden, session.Role, requestID)
	}
	if _, err := domain.Transition(req.Status, target); err != nil {
		return nil, err
	}

	updated, err := s.requests.ApplyReview(ctx, requestID, target, session.UID)
	if err != nil {
		return nil, err
	}
	logger.Info("Access request reviewed", "requestID", requestID, "status", target, "reviewer", session.UID)
	return updated, nil
}

func (s *reviewService) Redeem(ctx context.Context, session *domain.Session, requestID, wristbandCode string) (*domain.AccessRequest, error) {
	if !session.CanRedeem() {
		return nil, ErrForbidden
	}
	code := strings.TrimSpace(wristbandCode)
	if code == "" || code == domain.WristbandUnassigned {
		return nil, fmt.Errorf("%w: wristband code is required", ErrInvalidInput)
	}

	updated, err := s.requests.Redeem(ctx, requestID, code)
	if err != nil {
		return nil, err
	}
	logger.Info("Credential redeemed", "requestID", requestID, "wristband", code, "staff", session.UID)
	return updated, nil
}
