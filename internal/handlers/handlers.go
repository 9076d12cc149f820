package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"procurement/db"
	"procurement/internal/apperr"
	"procurement/models"
)

// Handler оборачивает хранилище для доступа к данным
type Handler struct {
	Store StorageInterface
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface) *Handler {
	return &Handler{Store: store}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 50, Offset: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError приводит любую ошибку к таксономии и отвечает {kind, message}.
// Внутренние ошибки логируются с причиной, наружу уходит общий текст.
func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	if ae.Kind == apperr.Internal {
		log.Printf("internal error: %v", ae)
		ae = apperr.New(apperr.Internal, "internal server error")
	}
	writeJSON(w, httpStatus(ae.Kind), errorResponse{Kind: ae.Kind.String(), Message: ae.Message})
}

func httpStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// actorFromRequest разрешает личность по query-параметру username.
// Система доверяет переданному имени: аутентификации нет.
func (h *Handler) actorFromRequest(r *http.Request) (*db.Employee, error) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		return nil, apperr.New(apperr.Unauthorized, "username is required")
	}
	return h.Store.GetEmployeeByUsername(r.Context(), username)
}

func (h *Handler) requireResponsible(ctx context.Context, userID, organizationID uuid.UUID) error {
	responsible, err := h.Store.IsResponsible(ctx, userID, organizationID)
	if err != nil {
		return err
	}
	if !responsible {
		return apperr.New(apperr.Forbidden, "user is not authorized for this organization")
	}
	return nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1048576))
	if err != nil {
		return apperr.New(apperr.InvalidInput, "failed to read request body")
	}
	defer r.Body.Close()
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.New(apperr.InvalidInput, "invalid JSON format")
	}
	return nil
}

func parseUUIDParam(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.InvalidInput, "invalid %s", name)
	}
	return id, nil
}

// Валидация полей согласно спецификации API

func validateTitle(title string) error {
	if len(title) < 3 || len(title) > 100 {
		return apperr.New(apperr.InvalidInput, "title must be from 3 to 100 characters long")
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > 500 {
		return apperr.New(apperr.InvalidInput, "description must not exceed 500 characters")
	}
	return nil
}

func validateServiceType(serviceType string) error {
	if !models.ValidServiceType(serviceType) {
		return apperr.New(apperr.InvalidInput, "invalid service type, allowed: Construction, IT Services, Consulting")
	}
	return nil
}

func validateAmount(amount float64) error {
	if amount <= 0 {
		return apperr.New(apperr.InvalidInput, "amount must be greater than 0")
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperr.New(apperr.InvalidInput, "rating must be between 1 and 5")
	}
	return nil
}
