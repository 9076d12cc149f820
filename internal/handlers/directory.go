package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"procurement/db"
	"procurement/internal/apperr"
	"procurement/models"
)

// Справочные ручки: пользователи, организации, ответственные.

func (h *Handler) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || len(input.Username) > 50 {
		writeError(w, apperr.New(apperr.InvalidInput, "username is required and must not exceed 50 characters"))
		return
	}

	employee := &db.Employee{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := h.Store.CreateEmployee(r.Context(), employee); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

type employeeResponse struct {
	db.Employee
	Organizations []db.Organization `json:"organizations"`
}

// ListEmployeesHandler возвращает пользователей с их организациями
func (h *Handler) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	result := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		orgs, err := h.Store.EmployeeOrganizations(r.Context(), e.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		result = append(result, employeeResponse{Employee: e, Organizations: orgs})
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string                  `json:"name"`
		Description string                  `json:"description"`
		Type        models.OrganizationType `json:"type"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, err)
		return
	}

	if input.Name == "" || len(input.Name) > 100 {
		writeError(w, apperr.New(apperr.InvalidInput, "name is required and must not exceed 100 characters"))
		return
	}
	if !models.ValidOrganizationType(input.Type) {
		writeError(w, apperr.New(apperr.InvalidInput, "invalid organization type, allowed: IE, LLC, JSC"))
		return
	}

	org := &db.Organization{
		Name:        input.Name,
		Description: input.Description,
		Type:        input.Type,
	}
	if err := h.Store.CreateOrganization(r.Context(), org); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// AddResponsibleHandler назначает пользователя ответственным за организацию
func (h *Handler) AddResponsibleHandler(w http.ResponseWriter, r *http.Request) {
	organizationID, err := parseUUIDParam(chi.URLParam(r, "organizationId"), "organizationId")
	if err != nil {
		writeError(w, err)
		return
	}

	actor, err := h.actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.Store.GetOrganization(r.Context(), organizationID); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Store.AddResponsible(r.Context(), organizationID, actor.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// GetOrganizationTendersHandler возвращает все ревизии тендеров организации
// для просмотра истории.
func (h *Handler) GetOrganizationTendersHandler(w http.ResponseWriter, r *http.Request) {
	organizationID, err := parseUUIDParam(chi.URLParam(r, "organizationId"), "organizationId")
	if err != nil {
		writeError(w, err)
		return
	}

	tenders, err := h.Store.ListOrganizationTenders(r.Context(), organizationID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tenders)
}
