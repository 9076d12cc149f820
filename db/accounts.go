package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"procurement/internal/apperr"
	"procurement/models"
)

// Employee (Пользователь)
type Employee struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Organization (Организация)
type Organization struct {
	ID          uuid.UUID               `db:"id" json:"id"`
	Name        string                  `db:"name" json:"name"`
	Description string                  `db:"description" json:"description"`
	Type        models.OrganizationType `db:"type" json:"type"`
	CreatedAt   time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time               `db:"updated_at" json:"updatedAt"`
}

func (s *Storage) CreateEmployee(ctx context.Context, e *Employee) error {
	e.ID = uuid.New()
	query := `
        INSERT INTO employee (id, username, first_name, last_name)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	err := s.q.QueryRowxContext(ctx, query, e.ID, e.Username, e.FirstName, e.LastName).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "username already taken")
	}
	return err
}

func (s *Storage) GetEmployeeByUsername(ctx context.Context, username string) (*Employee, error) {
	e := &Employee{}
	query := `SELECT * FROM employee WHERE username=$1`
	if err := s.q.GetContext(ctx, e, query, username); err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return e, nil
}

func (s *Storage) ListEmployees(ctx context.Context) ([]Employee, error) {
	employees := []Employee{}
	query := `SELECT * FROM employee ORDER BY created_at`
	err := s.q.SelectContext(ctx, &employees, query)
	return employees, err
}

func (s *Storage) CreateOrganization(ctx context.Context, o *Organization) error {
	o.ID = uuid.New()
	query := `
        INSERT INTO organization (id, name, description, type)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	return s.q.QueryRowxContext(ctx, query, o.ID, o.Name, o.Description, o.Type).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (s *Storage) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	o := &Organization{}
	query := `SELECT * FROM organization WHERE id=$1`
	if err := s.q.GetContext(ctx, o, query, id); err != nil {
		return nil, notFoundOr(err, "organization not found")
	}
	return o, nil
}

// AddResponsible добавляет пользователя в ответственные за организацию.
func (s *Storage) AddResponsible(ctx context.Context, organizationID, userID uuid.UUID) error {
	query := `
        INSERT INTO organization_responsible (id, organization_id, user_id)
        VALUES ($1, $2, $3)`
	_, err := s.q.ExecContext(ctx, query, uuid.New(), organizationID, userID)
	if isUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "user is already responsible for this organization")
	}
	return err
}

func (s *Storage) IsResponsible(ctx context.Context, userID, organizationID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM organization_responsible WHERE user_id=$1 AND organization_id=$2`
	if err := s.q.GetContext(ctx, &count, query, userID, organizationID); err != nil {
		return false, err
	}
	return count > 0, nil
}

// FirstResponsibility возвращает первую организацию, за которую отвечает
// пользователь. Используется при создании тендера/предложения.
func (s *Storage) FirstResponsibility(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var organizationID uuid.UUID
	query := `
        SELECT organization_id FROM organization_responsible
        WHERE user_id=$1
        ORDER BY organization_id
        LIMIT 1`
	if err := s.q.GetContext(ctx, &organizationID, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, apperr.New(apperr.Forbidden, "user is not responsible for any organization")
		}
		return uuid.Nil, err
	}
	return organizationID, nil
}

func (s *Storage) ResponsibleCount(ctx context.Context, organizationID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM organization_responsible WHERE organization_id=$1`
	err := s.q.GetContext(ctx, &count, query, organizationID)
	return count, err
}

// EmployeeOrganizations возвращает организации, за которые отвечает пользователь.
func (s *Storage) EmployeeOrganizations(ctx context.Context, userID uuid.UUID) ([]Organization, error) {
	orgs := []Organization{}
	query := `
        SELECT o.* FROM organization o
        JOIN organization_responsible r ON r.organization_id = o.id
        WHERE r.user_id = $1
        ORDER BY o.created_at`
	err := s.q.SelectContext(ctx, &orgs, query, userID)
	return orgs, err
}
