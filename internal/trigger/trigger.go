package trigger

import (
	"context"
	"errors"
	"fmt"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/service"
)

// ActionNone means the event needs no pipeline run.
const ActionNone service.Action = ""

var ErrMalformedEvent = errors.New("malformed change event")

// Decide maps a change event onto the pipeline action it requires.
func Decide(ev domain.ChangeEvent) (service.Action, error) {
	if ev.After == nil {
		return ActionNone, fmt.Errorf("%w: missing new document", ErrMalformedEvent)
	}

	switch ev.Kind {
	case domain.EventCreated:
		if ev.After.Status == domain.StatusApproved {
			return service.ActionApprove, nil
		}
		return ActionNone, nil

	case domain.EventUpdated:
		if ev.Before == nil {
			return ActionNone, fmt.Errorf("%w: update without previous document", ErrMalformedEvent)
		}
		from, to := ev.PreviousStatus(), ev.NewStatus()
		if from == to {
			return ActionNone, nil
		}
		if to != domain.StatusApproved && to != domain.StatusRejected {
			return ActionNone, nil
		}
		if _, err := domain.Transition(from, to); err != nil {
			return ActionNone, err
		}
		if to == domain.StatusApproved {
			return service.ActionApprove, nil
		}
		return service.ActionReject, nil
	}
	return ActionNone, fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, ev.Kind)
}

// Result reports what the handler did with one event.
type Result struct {
	EventID   string
	RequestID string
	Action    service.Action
	Run       *service.RunResult
	RunError  error
}

type Handler struct {
	pipeline service.CredentialPipeline
}

func NewHandler(pipeline service.CredentialPipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// Handle decides and runs the pipeline. Only decision errors are returned;
// pipeline failures are already recorded on the request and end here.
func (h *Handler) Handle(ctx context.Context, ev domain.ChangeEvent) (*Result, error) {
	normalize(&ev)
	res := &Result{EventID: ev.ID, RequestID: ev.RequestID}

	action, err := Decide(ev)
	if err != nil {
		logger.Warn("Change event refused", "eventID", ev.ID, "requestID", ev.RequestID,
			"from", ev.PreviousStatus(), "to", ev.NewStatus(), "error", err)
		return res, err
	}
	res.Action = action
	if action == ActionNone {
		logger.Debug("Change event needs no action", "eventID", ev.ID, "requestID", ev.RequestID,
			"kind", ev.Kind, "from", ev.PreviousStatus(), "to", ev.NewStatus())
		return res, nil
	}

	run, err := h.pipeline.Run(ctx, action, ev.After)
	res.Run = run
	if err != nil {
		res.RunError = err
		logger.Error("Credential pipeline ended with failure", "eventID", ev.ID, "requestID", ev.RequestID, "error", err)
	}
	return res, nil
}

// normalize fills the request id from whichever side carries it.
func normalize(ev *domain.ChangeEvent) {
	if ev.RequestID == "" && ev.After != nil {
		ev.RequestID = ev.After.ID
	}
	if ev.After != nil && ev.After.ID == "" {
		ev.After.ID = ev.RequestID
	}
	if ev.Before != nil && ev.Before.ID == "" {
		ev.Before.ID = ev.RequestID
	}
}
