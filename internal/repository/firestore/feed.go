package firestore

import (
	"context"
	"errors"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type accessRequestFeed struct {
	client     *fs.Client
	collection string
}

func NewAccessRequestFeed(client *fs.Client, collection string) repository.AccessRequestFeed {
	return &accessRequestFeed{client: client, collection: collection}
}

// Listen blocks on a snapshot listener until ctx is done or fn fails.
func (f *accessRequestFeed) Listen(ctx context.Context, fn func(ctx context.Context, changes []repository.DocumentChange, initial bool) error) error {
	it := f.client.Collection(f.collection).Snapshots(ctx)
	defer it.Stop()

	logger.ExternalServiceCall("firestore", "listen", "collection", f.collection)
	initial := true
	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				logger.ExternalServiceResult("firestore", "listen", nil, "collection", f.collection, "stopped", true)
				return ctx.Err()
			}
			logger.ExternalServiceResult("firestore", "listen", err, "collection", f.collection)
			return fmt.Errorf("snapshot listener on %s failed: %w", f.collection, err)
		}

		changes := make([]repository.DocumentChange, 0, len(qs.Changes))
		for _, c := range qs.Changes {
			req, err := decodeAccessRequest(c.Doc)
			if err != nil {
				logger.Warn("Skipping undecodable access request", "id", c.Doc.Ref.ID, "error", err)
				continue
			}
			changes = append(changes, repository.DocumentChange{
				Kind:       changeKind(c.Kind),
				Request:    req,
				UpdateTime: c.Doc.UpdateTime,
			})
		}

		if err := fn(ctx, changes, initial); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("change handler failed: %w", err)
		}
		initial = false
	}
}

func changeKind(k fs.DocumentChangeKind) repository.ChangeKind {
	switch k {
	case fs.DocumentAdded:
		return repository.ChangeAdded
	case fs.DocumentRemoved:
		return repository.ChangeRemoved
	}
	return repository.ChangeModified
}
