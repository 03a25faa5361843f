package firestore

import (
	"errors"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/repository"
)

const (
	DefaultRequestsCollection = "accessRequests"
	MatchdaysCollection       = "matchdays"
	AreasCollection           = "areas"
	FunctionsCollection       = "functions"
	CompaniesCollection       = "companies"
)

// Store groups the Firestore backed repositories over one client.
type Store struct {
	client *fs.Client
	repository.AccessRequestRepository
	repository.MatchdayRepository
	repository.ReferenceRepository
	repository.AccessRequestFeed
}

func NewStore(client *fs.Client, requestsCollection string) *Store {
	if requestsCollection == "" {
		requestsCollection = DefaultRequestsCollection
	}
	return &Store{
		client:                  client,
		AccessRequestRepository: NewAccessRequestRepository(client, requestsCollection),
		MatchdayRepository:      NewMatchdayRepository(client),
		ReferenceRepository:     NewReferenceRepository(client),
		AccessRequestFeed:       NewAccessRequestFeed(client, requestsCollection),
	}
}

func (s *Store) Client() *fs.Client {
	return s.client
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// wrapNotFound maps a missing document onto domain.ErrNotFound.
func wrapNotFound(err error, what, id string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) || errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %q: %w", what, id, err)
}
