package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/trigger"
)

const maxEventBytes = 1 << 20

// pushEnvelope is the Pub/Sub push wrapper; data carries a ChangeEvent
type pushEnvelope struct {
	Message *struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type eventResponse struct {
	EventID   string `json:"eventId,omitempty"`
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
	RunID     string `json:"runId,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Error     string `json:"error,omitempty"`
}

type EventHandler struct {
	handler *trigger.Handler
}

func NewEventHandler(handler *trigger.Handler) *EventHandler {
	return &EventHandler{handler: handler}
}

// HandlePush accepts a change event either raw or inside a Pub/Sub push
// envelope. Anything past decoding is acknowledged with 2xx so the
// platform does not redeliver.
func (h *EventHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", trigger.ErrMalformedEvent, err))
		return
	}
	ev, err := decodeChangeEvent(body)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.handler.Handle(r.Context(), ev)
	resp := eventResponse{EventID: res.EventID, RequestID: res.RequestID, Action: string(res.Action)}
	if resp.Action == "" {
		resp.Action = "none"
	}
	if errors.Is(err, trigger.ErrMalformedEvent) {
		writeError(w, err)
		return
	}
	if err != nil {
		// refused transitions are final, redelivery would not change them
		resp.Error = err.Error()
		writeJSON(w, http.StatusAccepted, resp)
		return
	}
	if res.Run != nil {
		resp.RunID = res.Run.RunID
		resp.Outcome = string(res.Run.Outcome)
	}
	if res.RunError != nil {
		resp.Error = res.RunError.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeChangeEvent(body []byte) (domain.ChangeEvent, error) {
	var (
		ev        domain.ChangeEvent
		env       pushEnvelope
		messageID string
	)
	if err := json.Unmarshal(body, &env); err == nil && env.Message != nil {
		data, err := base64.StdEncoding.DecodeString(env.Message.Data)
		if err != nil {
			return ev, fmt.Errorf("%w: message data is not base64", trigger.ErrMalformedEvent)
		}
		body = data
		messageID = env.Message.MessageID
	}

	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", trigger.ErrMalformedEvent, err)
	}
	if ev.ID == "" {
		ev.ID = messageID
	}
	return ev, nil
}
