package trigger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

const defaultWatchConcurrency = 4

// Watcher turns a document change feed into change events. It keeps the
// last seen status per request because the feed only delivers the new
// document.
type Watcher struct {
	feed        repository.AccessRequestFeed
	handler     *Handler
	concurrency int
	statuses    map[string]domain.Status
}

func NewWatcher(feed repository.AccessRequestFeed, handler *Handler, concurrency int) *Watcher {
	if concurrency <= 0 {
		concurrency = defaultWatchConcurrency
	}
	return &Watcher{
		feed:        feed,
		handler:     handler,
		concurrency: concurrency,
		statuses:    make(map[string]domain.Status),
	}
}

// Run blocks until ctx is cancelled or the feed fails.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Access request watcher started")
	err := w.feed.Listen(ctx, w.apply)
	logger.Info("Access request watcher stopped", "error", err)
	return err
}

func (w *Watcher) apply(ctx context.Context, changes []repository.DocumentChange, initial bool) error {
	if initial {
		for _, c := range changes {
			if c.Kind != repository.ChangeRemoved {
				w.statuses[c.Request.ID] = c.Request.Status
			}
		}
		logger.Info("Watcher seeded status cache", "documents", len(w.statuses))
		return nil
	}

	events := make([]domain.ChangeEvent, 0, len(changes))
	for _, c := range changes {
		if ev, ok := w.toEvent(c); ok {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil
	}

	// In-flight runs outlive shutdown; Listen waits for them before returning.
	runCtx := context.WithoutCancel(ctx)

	// one change per document per snapshot, so events in a batch are independent
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for _, ev := range events {
		ev := ev
		g.Go(func() error {
			// Handle only fails on refused events, which are logged there
			_, _ = w.handler.Handle(runCtx, ev)
			return nil
		})
	}
	return g.Wait()
}

func (w *Watcher) toEvent(c repository.DocumentChange) (domain.ChangeEvent, bool) {
	req := c.Request
	eventID := fmt.Sprintf("%s@%d", req.ID, c.UpdateTime.UnixNano())

	switch c.Kind {
	case repository.ChangeRemoved:
		delete(w.statuses, req.ID)
		return domain.ChangeEvent{}, false

	case repository.ChangeAdded:
		w.statuses[req.ID] = req.Status
		return domain.ChangeEvent{ID: eventID, Kind: domain.EventCreated, RequestID: req.ID, After: req}, true
	}

	prev, known := w.statuses[req.ID]
	w.statuses[req.ID] = req.Status
	if !known {
		logger.Warn("Modified request missing from status cache, skipping", "requestID", req.ID, "status", req.Status)
		return domain.ChangeEvent{}, false
	}
	before := &domain.AccessRequest{ID: req.ID, Status: prev}
	return domain.ChangeEvent{ID: eventID, Kind: domain.EventUpdated, RequestID: req.ID, Before: before, After: req}, true
}
