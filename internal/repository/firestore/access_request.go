package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type accessRequestRepository struct {
	client     *fs.Client
	collection string
}

func NewAccessRequestRepository(client *fs.Client, collection string) repository.AccessRequestRepository {
	return &accessRequestRepository{client: client, collection: collection}
}

func (r *accessRequestRepository) doc(id string) *fs.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *accessRequestRepository) GetByID(ctx context.Context, id string) (*domain.AccessRequest, error) {
	logger.DatabaseCall("GET", r.collection, "id", id)
	snap, err := r.doc(id).Get(ctx)
	logger.DatabaseResult("GET", err, "id", id)
	if err != nil {
		return nil, wrapNotFound(err, "access request", id)
	}
	return decodeAccessRequest(snap)
}

func (r *accessRequestRepository) ApplyReview(ctx context.Context, id string, to domain.Status, reviewerID string) (*domain.AccessRequest, error) {
	return r.transition(ctx, id, to, reviewUpdates(to, reviewerID), func(req *domain.AccessRequest) {
		now := time.Now().UTC()
		req.ReviewedBy = reviewerID
		req.ReviewedAt = &now
	})
}

func (r *accessRequestRepository) Redeem(ctx context.Context, id string, wristbandCode string) (*domain.AccessRequest, error) {
	return r.transition(ctx, id, domain.StatusRedeemed, redeemUpdates(wristbandCode), func(req *domain.AccessRequest) {
		req.WristbandCode = wristbandCode
	})
}

// transition reads the stored status and writes the change in one
// transaction so concurrent reviewers cannot both win.
func (r *accessRequestRepository) transition(ctx context.Context, id string, to domain.Status, updates []fs.Update, apply func(*domain.AccessRequest)) (*domain.AccessRequest, error) {
	ref := r.doc(id)
	var result *domain.AccessRequest

	logger.DatabaseCall("TRANSACTION", r.collection, "id", id, "to", to)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *fs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return wrapNotFound(err, "access request", id)
		}
		req, err := decodeAccessRequest(snap)
		if err != nil {
			return err
		}
		if _, err := domain.Transition(req.Status, to); err != nil {
			return err
		}
		if err := tx.Update(ref, updates); err != nil {
			return err
		}
		req.Status = to
		apply(req)
		result = req
		return nil
	})
	logger.DatabaseResult("TRANSACTION", err, "id", id, "to", to)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *accessRequestRepository) SetCredentialURL(ctx context.Context, id string, url string) error {
	return r.update(ctx, id, credentialUpdates(url))
}

func (r *accessRequestRepository) MarkEmailSent(ctx context.Context, id string) error {
	return r.update(ctx, id, emailSentUpdates())
}

func (r *accessRequestRepository) MarkEmailFailed(ctx context.Context, id string, message string) error {
	return r.update(ctx, id, emailFailedUpdates(message))
}

func (r *accessRequestRepository) update(ctx context.Context, id string, updates []fs.Update) error {
	logger.DatabaseCall("UPDATE", r.collection, "id", id, "fields", len(updates))
	_, err := r.doc(id).Update(ctx, updates)
	logger.DatabaseResult("UPDATE", err, "id", id)
	if err != nil {
		return wrapNotFound(err, "access request", id)
	}
	return nil
}

func (r *accessRequestRepository) ListEmailFailures(ctx context.Context, limit int) ([]domain.AccessRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	logger.DatabaseCall("QUERY", r.collection, "filter", "emailSent == false", "limit", limit)
	iter := r.client.Collection(r.collection).
		Where("emailSent", "==", false).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []domain.AccessRequest
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.DatabaseResult("QUERY", err)
			return nil, fmt.Errorf("failed to list email failures: %w", err)
		}
		req, err := decodeAccessRequest(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	logger.DatabaseResult("QUERY", nil, "count", len(out))
	return out, nil
}

func decodeAccessRequest(snap *fs.DocumentSnapshot) (*domain.AccessRequest, error) {
	var req domain.AccessRequest
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode access request %q: %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}

func reviewUpdates(to domain.Status, reviewerID string) []fs.Update {
	return []fs.Update{
		{Path: "status", Value: string(to)},
		{Path: "reviewedBy", Value: reviewerID},
		{Path: "reviewedAt", Value: fs.ServerTimestamp},
	}
}

func redeemUpdates(wristbandCode string) []fs.Update {
	return []fs.Update{
		{Path: "status", Value: string(domain.StatusRedeemed)},
		{Path: "wristbandCode", Value: wristbandCode},
	}
}

func credentialUpdates(url string) []fs.Update {
	return []fs.Update{
		{Path: "pdfUrl", Value: url},
		{Path: "pdfGeneratedAt", Value: fs.ServerTimestamp},
	}
}

func emailSentUpdates() []fs.Update {
	return []fs.Update{
		{Path: "emailSent", Value: true},
		{Path: "emailSentAt", Value: fs.ServerTimestamp},
		{Path: "emailError", Value: fs.Delete},
		{Path: "emailErrorAt", Value: fs.Delete},
	}
}

func emailFailedUpdates(message string) []fs.Update {
	return []fs.Update{
		{Path: "emailSent", Value: false},
		{Path: "emailError", Value: message},
		{Path: "emailErrorAt", Value: fs.ServerTimestamp},
	}
}
