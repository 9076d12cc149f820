package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"procurement/db"
	"procurement/internal/apperr"
	"procurement/models"
)

// CreateTenderHandler обрабатывает POST /api/tenders/new.
// Тендер публикуется от первой организации, за которую отвечает автор.
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ServiceType string `json:"serviceType"`
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
	if err := validateServiceType(input.ServiceType); err != nil {
		writeError(w, err)
		return
	}

	organizationID, err := h.Store.FirstResponsibility(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	tender := &db.Tender{
		Title:          input.Title,
		Description:    input.Description,
		ServiceType:    input.ServiceType,
		OrganizationID: organizationID,
		CreatorID:      actor.ID,
	}
	if err := h.Store.CreateTender(r.Context(), tender); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tender)
}

// GetTendersHandler возвращает последние ревизии тендеров, видимые актору.
// Без username отдаются только опубликованные.
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	serviceType := r.URL.Query().Get("service_type")
	if serviceType != "" {
		if err := validateServiceType(serviceType); err != nil {
			writeError(w, err)
			return
		}
	}

	actorID := uuid.Nil
	if username := strings.TrimSpace(r.URL.Query().Get("username")); username != "" {
		actor, err := h.Store.GetEmployeeByUsername(r.Context(), username)
		if err != nil {
			writeError(w, err)
			return
		}
		actorID = actor.ID
	}

	tenders, err := h.Store.ListTenders(r.Context(), actorID, serviceType, params.Limit, params.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tenders)
}

// GetUserTendersHandler возвращает тендеры организаций пользователя
func (h *Handler) GetUserTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tenders, err := h.Store.ListUserTenders(r.Context(), actor.ID, params.Limit, params.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tenders)
}

// tenderForActor загружает ревизию тендера и проверяет права актора.
func (h *Handler) tenderForActor(r *http.Request, actor *db.Employee) (*db.Tender, error) {
	tenderID, err := parseUUIDParam(chi.URLParam(r, "tenderId"), "tenderId")
	if err != nil {
		return nil, err
	}
	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		return nil, err
	}
	if err := h.requireResponsible(r.Context(), actor.ID, tender.OrganizationID); err != nil {
		return nil, err
	}
	return tender, nil
}

// ChangeTenderStatusHandler меняет статус на месте, без новой ревизии.
func (h *Handler) ChangeTenderStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	newStatus := models.TenderStatus(r.URL.Query().Get("new_status"))
	if newStatus != models.TenderPublished && newStatus != models.TenderClosed {
		writeError(w, apperr.New(apperr.InvalidInput, "invalid status, allowed: PUBLISHED, CLOSED"))
		return
	}

	tender, err := h.tenderForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.Store.SetTenderStatus(r.Context(), tender.ID, newStatus)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// EditTenderHandler создаёт новую ревизию: непереданные поля берутся из
// текущей, created_at наследуется, версия увеличивается на 1.
func (h *Handler) EditTenderHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		ServiceType *string `json:"serviceType"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	current, err := h.tenderForActor(r, actor)
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
	if input.ServiceType != nil {
		if err := validateServiceType(*input.ServiceType); err != nil {
			writeError(w, err)
			return
		}
		next.ServiceType = *input.ServiceType
	}
	next.Version = current.Version + 1

	if err := h.Store.SaveTenderRevision(r.Context(), &next); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &next)
}

// RollbackTenderHandler создаёт новую ревизию с содержимым и статусом
// целевой версии; created_at остаётся от текущей ревизии.
func (h *Handler) RollbackTenderHandler(w http.ResponseWriter, r *http.Request) {
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

	tender, err := h.tenderForActor(r, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	// Версия отсчитывается от текущей ревизии корня, а не от адресованной строки.
	current, err := h.Store.LatestTender(r.Context(), tender.RootID)
	if err != nil {
		writeError(w, err)
		return
	}

	target, err := h.Store.TenderByVersion(r.Context(), current.RootID, version)
	if err != nil {
		writeError(w, err)
		return
	}

	next := *target
	next.Version = current.Version + 1
	next.CreatedAt = current.CreatedAt

	if err := h.Store.SaveTenderRevision(r.Context(), &next); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &next)
}
