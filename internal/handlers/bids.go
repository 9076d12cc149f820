package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"procurement/db"
	"procurement/internal/apperr"
	"procurement/models"
)

// Ответ по одному предложению с вложенными решениями.
type bidResponse struct {
	db.Bid
	Decisions []db.BidDecision `json:"decisions"`
}

func (h *Handler) bidWithDecisions(r *http.Request, bid *db.Bid) (*bidResponse, error) {
	decisions, err := h.Store.BidDecisions(r.Context(), bid.ID)
	if err != nil {
		return nil, err
	}
	return &bidResponse{Bid: *bid, Decisions: decisions}, nil
}

// CreateBidHandler обрабатывает POST /api/bids/new.
// Предложение подаётся от первой организации, за которую отвечает автор.
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input struct {
		TenderID    string  `json:"tenderId"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	if err := validateTitle(input.Title); err != nil {
		writeError(w, err)
		return
	}
	if err := validateDescription(input.Description); err != nil {
		writeError(w, err)
		return
	}
	if err := validateAmount(input.Amount); err != nil {
		writeError(w, err)
		return
	}
	tenderID, err := parseUUIDParam(input.TenderID, "tenderId")
	if err != nil {
		writeError(w, err)
		return
	}

	organizationID, err := h.Store.FirstResponsibility(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		writeError(w, err)
		return
	}

	bid := &db.Bid{
		TenderID:       tender.ID,
		Title:          input.Title,
		Description:    input.Description,
		Amount:         input.Amount,
		OrganizationID: organizationID,
		CreatorID:      actor.ID,
	}
	if err := h.Store.CreateBid(r.Context(), bid); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bid)
}

// GetBidsHandler возвращает последние ревизии предложений, видимые актору:
// предложения его организаций и опубликованные на тендеры его организаций.
func (h *Handler) GetBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	bids, err := h.Store.ListBids(r.Context(), actor.ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bids)
}

// GetUserBidsHandler возвращает последние ревизии предложений пользователя
func (h *Handler) GetUserBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	bids, err := h.Store.ListUserBids(r.Context(), actor.ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bids)
}

// GetTenderBidsHandler — опубликованные предложения на тендер; доступно
// только ответственным за организацию тендера.
func (h *Handler) GetTenderBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tender, err := h.tenderForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	bids, err := h.Store.ListTenderBids(r.Context(), tender.ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bids)
}

// bidForActor загружает ревизию предложения и проверяет, что актор
// отвечает за организацию предложения.
func (h *Handler) bidForActor(r *http.Request, actor *db.Employee) (*db.Bid, error) {
	bidID, err := parseUUIDParam(chi.URLParam(r, "bidId"), "bidId")
	if err != nil {
		return nil, err
	}
	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		return nil, err
	}
	if err := h.requireResponsible(r.Context(), actor.ID, bid.OrganizationID); err != nil {
		return nil, err
	}
	return bid, nil
}

// UpdateBidStatusHandler меняет статус текущей строки на месте.
func (h *Handler) UpdateBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	newStatus := models.BidStatus(r.URL.Query().Get("new_status"))
	if !models.ValidBidStatus(newStatus) {
		writeError(w, apperr.New(apperr.InvalidInput, "invalid status"))
		return
	}

	bid, err := h.bidForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.Store.SetBidStatus(r.Context(), bid.ID, newStatus)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.bidWithDecisions(r, updated)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// EditBidHandler создаёт новую ревизию предложения.
func (h *Handler) EditBidHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Amount      *float64 `json:"amount"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	current, err := h.bidForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	next := *current
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			writeError(w, err)
			return
		}
		next.Title = *input.Title
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			writeError(w, err)
			return
		}
		next.Description = *input.Description
	}
	if input.Amount != nil {
		if err := validateAmount(*input.Amount); err != nil {
			writeError(w, err)
			return
		}
		next.Amount = *input.Amount
	}
	next.Version = current.Version + 1

	if err := h.Store.SaveBidRevision(r.Context(), &next); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.bidWithDecisions(r, &next)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RollbackBidHandler создаёт новую ревизию с содержимым и статусом целевой
// версии; created_at остаётся от текущей ревизии.
func (h *Handler) RollbackBidHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		writeError(w, apperr.New(apperr.InvalidInput, "invalid version number"))
		return
	}

	bid, err := h.bidForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	// Версия отсчитывается от текущей ревизии корня, а не от адресованной строки.
	current, err := h.Store.LatestBid(r.Context(), bid.RootID)
	if err != nil {
		writeError(w, err)
		return
	}

	target, err := h.Store.BidByVersion(r.Context(), current.RootID, version)
	if err != nil {
		writeError(w, err)
		return
	}

	next := *target
	next.Version = current.Version + 1
	next.CreatedAt = current.CreatedAt

	if err := h.Store.SaveBidRevision(r.Context(), &next); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.bidWithDecisions(r, &next)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type decisionResponse struct {
	Status  models.BidStatus `json:"status"`
	Message string           `json:"message"`
}

// SubmitBidDecisionHandler принимает решение ответственного за организацию
// тендера. Одно REJECTED отклоняет предложение сразу; APPROVED одобряет
// после min(3, число ответственных) голосов. По терминальному предложению
// решения не принимаются.
func (h *Handler) SubmitBidDecisionHandler(w http.ResponseWriter, r *http.Request) {
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

	decision := models.Decision(r.URL.Query().Get("decision"))
	if !models.ValidDecision(decision) {
		writeError(w, apperr.New(apperr.InvalidInput, "invalid decision, allowed: APPROVED, REJECTED"))
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		writeError(w, err)
		return
	}

	if bid.Status.Terminal() {
		writeError(w, apperr.Newf(apperr.Conflict, "bid is already %s, no further decisions allowed", bid.Status))
		return
	}

	tender, err := h.Store.GetTender(r.Context(), bid.TenderID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Решения принимает сторона заказчика, не подавшая предложение.
	if err := h.requireResponsible(r.Context(), actor.ID, tender.OrganizationID); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.Store.SubmitBidDecision(r.Context(), bid, actor.ID, decision, tender.OrganizationID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := decisionResponse{Status: status}
	switch status {
	case models.BidRejected:
		resp.Message = "bid has been rejected"
	case models.BidApproved:
		resp.Message = "bid has been approved"
	default:
		resp.Message = "decision recorded, awaiting further responses"
	}
	writeJSON(w, http.StatusOK, resp)
}
