package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/service"
)

type reviewRequest struct {
	Decision string `json:"decision"`
}

type redeemRequest struct {
	WristbandCode string `json:"wristbandCode"`
}

type ReviewHandler struct {
	reviews service.ReviewService
}

func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// HandleReview approves or rejects a pending request. The status write
// fires the credential pipeline through the change trigger.
func (h *ReviewHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	session, _ := domain.SessionFrom(r.Context())

	var body reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	decision, err := service.ParseAction(body.Decision)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.reviews.Review(r.Context(), session, mux.Vars(r)["id"], decision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *ReviewHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	session, _ := domain.SessionFrom(r.Context())

	var body redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	req, err := h.reviews.Redeem(r.Context(), session, mux.Vars(r)["id"], body.WristbandCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
