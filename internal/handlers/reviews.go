package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"procurement/db"
	"procurement/internal/apperr"
)

// CreateBidFeedbackHandler добавляет отзыв на автора предложения.
// Отзыв оставляет ответственный за организацию тендера; указанный автор
// обязан совпадать с создателем предложения.
func (h *Handler) CreateBidFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	bidID, err := parseUUIDParam(chi.URLParam(r, "bidId"), "bidId")
	if err != nil {
		writeError(w, err)
		return
	}

	authorUsername := strings.TrimSpace(r.URL.Query().Get("authorUsername"))
	if authorUsername == "" {
		writeError(w, apperr.New(apperr.InvalidInput, "authorUsername is required"))
		return
	}

	var input struct {
		Content string `json:"content"`
		Rating  int    `json:"rating"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if input.Content == "" {
		writeError(w, apperr.New(apperr.InvalidInput, "content is required"))
		return
	}
	if err := validateRating(input.Rating); err != nil {
		writeError(w, err)
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		writeError(w, err)
		return
	}

	tender, err := h.Store.GetTender(r.Context(), bid.TenderID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.requireResponsible(r.Context(), actor.ID, tender.OrganizationID); err != nil {
		writeError(w, err)
		return
	}

	author, err := h.Store.GetEmployeeByUsername(r.Context(), authorUsername)
	if err != nil {
		writeError(w, err)
		return
	}

	if bid.CreatorID != author.ID {
		writeError(w, apperr.New(apperr.InvalidInput, "the specified author did not create this bid"))
		return
	}

	review := &db.Review{
		BidID:      bid.ID,
		ReviewerID: actor.ID,
		AuthorID:   author.ID,
		Content:    input.Content,
		Rating:     input.Rating,
	}
	if err := h.Store.CreateReview(r.Context(), review); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, review)
}

// GetBidReviewsHandler возвращает отзывы на автора для ответственного за
// организацию тендера. Автор должен иметь предложение на этот тендер, но
// отзывы возвращаются по всем его предложениям на любые тендеры.
func (h *Handler) GetBidReviewsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	authorUsername := strings.TrimSpace(r.URL.Query().Get("authorUsername"))
	if authorUsername == "" {
		writeError(w, apperr.New(apperr.InvalidInput, "authorUsername is required"))
		return
	}

	tender, err := h.tenderForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	author, err := h.Store.GetEmployeeByUsername(r.Context(), authorUsername)
	if err != nil {
		writeError(w, err)
		return
	}

	hasBids, err := h.Store.AuthorHasBidOnTender(r.Context(), author.ID, tender.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !hasBids {
		writeError(w, apperr.New(apperr.NotFound, "no bids found for this author in the specified tender"))
		return
	}

	reviews, err := h.Store.ReviewsByAuthor(r.Context(), author.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}
