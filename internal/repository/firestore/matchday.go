package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type matchdayRepository struct {
	client *fs.Client
}

func NewMatchdayRepository(client *fs.Client) repository.MatchdayRepository {
	return &matchdayRepository{client: client}
}

func (r *matchdayRepository) GetActive(ctx context.Context) (*domain.Matchday, error) {
	logger.DatabaseCall("QUERY", MatchdaysCollection, "filter", "active == true")
	iter := r.client.Collection(MatchdaysCollection).
		Where("active", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		logger.DatabaseResult("QUERY", nil, "found", false)
		return nil, nil
	}
	if err != nil {
		logger.DatabaseResult("QUERY", err)
		return nil, fmt.Errorf("failed to query active matchday: %w", err)
	}
	logger.DatabaseResult("QUERY", nil, "found", true, "id", snap.Ref.ID)

	var m domain.Matchday
	if err := snap.DataTo(&m); err != nil {
		return nil, fmt.Errorf("failed to decode matchday %q: %w", snap.Ref.ID, err)
	}
	m.ID = snap.Ref.ID
	return &m, nil
}

func (r *matchdayRepository) Upsert(ctx context.Context, m *domain.Matchday) error {
	col := r.client.Collection(MatchdaysCollection)
	ref := col.NewDoc()
	if m.ID != "" {
		ref = col.Doc(m.ID)
	}
	logger.DatabaseCall("SET", MatchdaysCollection, "id", ref.ID)
	_, err := ref.Set(ctx, m)
	logger.DatabaseResult("SET", err, "id", ref.ID)
	if err != nil {
		return fmt.Errorf("failed to save matchday: %w", err)
	}
	m.ID = ref.ID
	return nil
}
