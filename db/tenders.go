package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"procurement/internal/apperr"
	"procurement/models"
)

// Tender (Тендер) — одна ревизия. Редактирование и откат создают новую
// строку с тем же root_id; строка с максимальной версией считается текущей.
type Tender struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	RootID         uuid.UUID           `db:"root_id" json:"tenderRootId"`
	Title          string              `db:"title" json:"title"`
	Description    string              `db:"description" json:"description"`
	ServiceType    string              `db:"service_type" json:"serviceType"`
	Status         models.TenderStatus `db:"status" json:"status"`
	OrganizationID uuid.UUID           `db:"organization_id" json:"organizationId"`
	CreatorID      uuid.UUID           `db:"creator_id" json:"creatorId"`
	Version        int                 `db:"version" json:"version"`
	CreatedAt      time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updatedAt"`
}

// CreateTender создаёт первую ревизию: version=1, новый root_id.
func (s *Storage) CreateTender(ctx context.Context, t *Tender) error {
	t.ID = uuid.New()
	t.RootID = uuid.New()
	t.Version = 1
	t.Status = models.TenderCreated
	query := `
        INSERT INTO tender
            (id, root_id, title, description, service_type, status, organization_id, creator_id, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, 1)
        RETURNING created_at, updated_at`
	return s.q.QueryRowxContext(ctx, query,
		t.ID, t.RootID, t.Title, t.Description, t.ServiceType, t.Status, t.OrganizationID, t.CreatorID).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *Storage) GetTender(ctx context.Context, id uuid.UUID) (*Tender, error) {
	t := &Tender{}
	query := `SELECT * FROM tender WHERE id=$1`
	if err := s.q.GetContext(ctx, t, query, id); err != nil {
		return nil, notFoundOr(err, "tender not found")
	}
	return t, nil
}

// LatestTender возвращает текущую (максимальную) ревизию корня.
func (s *Storage) LatestTender(ctx context.Context, rootID uuid.UUID) (*Tender, error) {
	t := &Tender{}
	query := `
        SELECT * FROM tender
        WHERE root_id=$1
        ORDER BY version DESC
        LIMIT 1`
	if err := s.q.GetContext(ctx, t, query, rootID); err != nil {
		return nil, notFoundOr(err, "tender not found")
	}
	return t, nil
}

func (s *Storage) TenderByVersion(ctx context.Context, rootID uuid.UUID, version int) (*Tender, error) {
	t := &Tender{}
	query := `SELECT * FROM tender WHERE root_id=$1 AND version=$2`
	if err := s.q.GetContext(ctx, t, query, rootID, version); err != nil {
		return nil, notFoundOr(err, "version not found for the tender")
	}
	return t, nil
}

// SaveTenderRevision вставляет следующую ревизию. created_at задаёт
// вызывающий (наследуется от текущей ревизии), updated_at ставится сейчас.
// Гонка двух правок одного корня упирается в уникальность (root_id, version).
func (s *Storage) SaveTenderRevision(ctx context.Context, t *Tender) error {
	t.ID = uuid.New()
	query := `
        INSERT INTO tender
            (id, root_id, title, description, service_type, status, organization_id, creator_id, version, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        RETURNING updated_at`
	err := s.q.QueryRowxContext(ctx, query,
		t.ID, t.RootID, t.Title, t.Description, t.ServiceType, t.Status,
		t.OrganizationID, t.CreatorID, t.Version, t.CreatedAt).
		Scan(&t.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "tender was edited concurrently, retry with the latest version")
	}
	return err
}

// SetTenderStatus меняет статус текущей строки на месте, без новой версии.
func (s *Storage) SetTenderStatus(ctx context.Context, id uuid.UUID, status models.TenderStatus) (*Tender, error) {
	t := &Tender{}
	query := `
        UPDATE tender
        SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING *`
	if err := s.q.GetContext(ctx, t, query, status, id); err != nil {
		return nil, notFoundOr(err, "tender not found")
	}
	return t, nil
}

// ListTenders отдаёт последние ревизии, видимые актору: опубликованные —
// всем, прочие — только ответственным за организацию тендера. Для
// анонимного запроса передаётся uuid.Nil.
func (s *Storage) ListTenders(ctx context.Context, actorID uuid.UUID, serviceType string, limit, offset int) ([]Tender, error) {
	tenders := []Tender{}
	query := `
        SELECT t.* FROM tender t
        JOIN (
            SELECT root_id, MAX(version) AS max_version
            FROM tender
            GROUP BY root_id
        ) lv ON lv.root_id = t.root_id AND lv.max_version = t.version
        WHERE ($1 = '' OR t.service_type = $1)
          AND (t.status = 'PUBLISHED' OR EXISTS (
                SELECT 1 FROM organization_responsible r
                WHERE r.user_id = $2 AND r.organization_id = t.organization_id))
        ORDER BY t.created_at, t.root_id
        LIMIT $3 OFFSET $4`
	err := s.q.SelectContext(ctx, &tenders, query, serviceType, actorID, limit, offset)
	return tenders, err
}

// ListUserTenders — последние ревизии тендеров организаций пользователя.
func (s *Storage) ListUserTenders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Tender, error) {
	tenders := []Tender{}
	query := `
        SELECT t.* FROM tender t
        JOIN (
            SELECT root_id, MAX(version) AS max_version
            FROM tender
            GROUP BY root_id
        ) lv ON lv.root_id = t.root_id AND lv.max_version = t.version
        JOIN organization_responsible r ON r.organization_id = t.organization_id
        WHERE r.user_id = $1
        ORDER BY t.created_at, t.root_id
        LIMIT $2 OFFSET $3`
	err := s.q.SelectContext(ctx, &tenders, query, userID, limit, offset)
	return tenders, err
}

// ListOrganizationTenders — все ревизии тендеров организации, для
// просмотра истории.
func (s *Storage) ListOrganizationTenders(ctx context.Context, organizationID uuid.UUID) ([]Tender, error) {
	tenders := []Tender{}
	query := `
        SELECT * FROM tender
        WHERE organization_id = $1
        ORDER BY root_id, version`
	err := s.q.SelectContext(ctx, &tenders, query, organizationID)
	return tenders, err
}
