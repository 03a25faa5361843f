package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type referenceRepository struct {
	client *fs.Client
}

func NewReferenceRepository(client *fs.Client) repository.ReferenceRepository {
	return &referenceRepository{client: client}
}

func collectionFor(kind domain.ReferenceKind) (string, error) {
	switch kind {
	case domain.ReferenceArea:
		return AreasCollection, nil
	case domain.ReferenceFunction:
		return FunctionsCollection, nil
	case domain.ReferenceCompany:
		return CompaniesCollection, nil
	}
	return "", fmt.Errorf("unknown reference kind %q", kind)
}

func (r *referenceRepository) Get(ctx context.Context, kind domain.ReferenceKind, id string) (*domain.Reference, error) {
	col, err := collectionFor(kind)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%s with empty id: %w", kind, domain.ErrNotFound)
	}

	logger.DatabaseCall("GET", col, "id", id)
	snap, err := r.client.Collection(col).Doc(id).Get(ctx)
	logger.DatabaseResult("GET", err, "id", id)
	if err != nil {
		return nil, wrapNotFound(err, string(kind), id)
	}

	var ref domain.Reference
	if err := snap.DataTo(&ref); err != nil {
		return nil, fmt.Errorf("failed to decode %s %q: %w", kind, id, err)
	}
	ref.ID = snap.Ref.ID
	return &ref, nil
}

func (r *referenceRepository) Upsert(ctx context.Context, kind domain.ReferenceKind, ref *domain.Reference) error {
	col, err := collectionFor(kind)
	if err != nil {
		return err
	}
	if ref.ID == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	logger.DatabaseCall("SET", col, "id", ref.ID)
	_, err = r.client.Collection(col).Doc(ref.ID).Set(ctx, ref)
	logger.DatabaseResult("SET", err, "id", ref.ID)
	if err != nil {
		return fmt.Errorf("failed to save %s %q: %w", kind, ref.ID, err)
	}
	return nil
}
