package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"procurement/internal/apperr"
	"procurement/models"
)

// Bid (Предложение) — одна ревизия, по аналогии с Tender.
// quorum хранится, но движком решений не читается: порог пересчитывается
// на каждом решении от числа ответственных организации тендера.
type Bid struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	RootID         uuid.UUID        `db:"root_id" json:"bidRootId"`
	Title          string           `db:"title" json:"title"`
	Description    string           `db:"description" json:"description"`
	Amount         float64          `db:"amount" json:"amount"`
	Status         models.BidStatus `db:"status" json:"status"`
	TenderID       uuid.UUID        `db:"tender_id" json:"tenderId"`
	OrganizationID uuid.UUID        `db:"organization_id" json:"organizationId"`
	CreatorID      uuid.UUID        `db:"creator_id" json:"creatorId"`
	Version        int              `db:"version" json:"version"`
	Quorum         *int             `db:"quorum" json:"quorum"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updatedAt"`
}

// BidDecision — решение ответственного по предложению. Неизменяемое,
// не более одного на пару (предложение, пользователь).
type BidDecision struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	BidID        uuid.UUID       `db:"bid_id" json:"bidId"`
	UserID       uuid.UUID       `db:"user_id" json:"userId"`
	Decision     models.Decision `db:"decision" json:"decision"`
	DecisionDate time.Time       `db:"decision_date" json:"decisionDate"`
}

func (s *Storage) CreateBid(ctx context.Context, b *Bid) error {
	b.ID = uuid.New()
	b.RootID = uuid.New()
	b.Version = 1
	b.Status = models.BidCreated
	query := `
        INSERT INTO bid
            (id, root_id, title, description, amount, status, tender_id, organization_id, creator_id, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
        RETURNING created_at, updated_at`
	return s.q.QueryRowxContext(ctx, query,
		b.ID, b.RootID, b.Title, b.Description, b.Amount, b.Status,
		b.TenderID, b.OrganizationID, b.CreatorID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (s *Storage) GetBid(ctx context.Context, id uuid.UUID) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bid WHERE id=$1`
	if err := s.q.GetContext(ctx, b, query, id); err != nil {
		return nil, notFoundOr(err, "bid not found")
	}
	return b, nil
}

func (s *Storage) LatestBid(ctx context.Context, rootID uuid.UUID) (*Bid, error) {
	b := &Bid{}
	query := `
        SELECT * FROM bid
        WHERE root_id=$1
        ORDER BY version DESC
        LIMIT 1`
	if err := s.q.GetContext(ctx, b, query, rootID); err != nil {
		return nil, notFoundOr(err, "bid not found")
	}
	return b, nil
}

func (s *Storage) BidByVersion(ctx context.Context, rootID uuid.UUID, version int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bid WHERE root_id=$1 AND version=$2`
	if err := s.q.GetContext(ctx, b, query, rootID, version); err != nil {
		return nil, notFoundOr(err, "version not found for the bid")
	}
	return b, nil
}

// SaveBidRevision вставляет следующую ревизию предложения; см. SaveTenderRevision.
func (s *Storage) SaveBidRevision(ctx context.Context, b *Bid) error {
	b.ID = uuid.New()
	query := `
        INSERT INTO bid
            (id, root_id, title, description, amount, status, tender_id, organization_id, creator_id, version, quorum, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
        RETURNING updated_at`
	err := s.q.QueryRowxContext(ctx, query,
		b.ID, b.RootID, b.Title, b.Description, b.Amount, b.Status,
		b.TenderID, b.OrganizationID, b.CreatorID, b.Version, b.Quorum, b.CreatedAt).
		Scan(&b.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "bid was edited concurrently, retry with the latest version")
	}
	return err
}

func (s *Storage) SetBidStatus(ctx context.Context, id uuid.UUID, status models.BidStatus) (*Bid, error) {
	b := &Bid{}
	query := `
        UPDATE bid
        SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING *`
	if err := s.q.GetContext(ctx, b, query, status, id); err != nil {
		return nil, notFoundOr(err, "bid not found")
	}
	return b, nil
}

// ListBids — последние ревизии, видимые актору: собственные предложения
// его организаций, либо опубликованные предложения на тендеры его организаций.
func (s *Storage) ListBids(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]Bid, error) {
	bids := []Bid{}
	query := `
        SELECT b.* FROM bid b
        JOIN (
            SELECT root_id, MAX(version) AS max_version
            FROM bid
            GROUP BY root_id
        ) lv ON lv.root_id = b.root_id AND lv.max_version = b.version
        WHERE EXISTS (
                SELECT 1 FROM organization_responsible r
                WHERE r.user_id = $1 AND r.organization_id = b.organization_id)
           OR (b.status = 'PUBLISHED' AND EXISTS (
                SELECT 1 FROM tender t
                JOIN organization_responsible r ON r.organization_id = t.organization_id
                WHERE t.id = b.tender_id AND r.user_id = $1))
        ORDER BY b.created_at, b.root_id
        LIMIT $2 OFFSET $3`
	err := s.q.SelectContext(ctx, &bids, query, actorID, limit, offset)
	return bids, err
}

func (s *Storage) ListUserBids(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Bid, error) {
	bids := []Bid{}
	query := `
        SELECT b.* FROM bid b
        JOIN (
            SELECT root_id, MAX(version) AS max_version
            FROM bid
            GROUP BY root_id
        ) lv ON lv.root_id = b.root_id AND lv.max_version = b.version
        WHERE b.creator_id = $1
        ORDER BY b.created_at, b.root_id
        LIMIT $2 OFFSET $3`
	err := s.q.SelectContext(ctx, &bids, query, userID, limit, offset)
	return bids, err
}

// ListTenderBids — опубликованные последние ревизии предложений на тендер.
func (s *Storage) ListTenderBids(ctx context.Context, tenderID uuid.UUID, limit, offset int) ([]Bid, error) {
	bids := []Bid{}
	query := `
        SELECT b.* FROM bid b
        JOIN (
            SELECT root_id, MAX(version) AS max_version
            FROM bid
            GROUP BY root_id
        ) lv ON lv.root_id = b.root_id AND lv.max_version = b.version
        WHERE b.tender_id = $1 AND b.status = 'PUBLISHED'
        ORDER BY b.created_at, b.root_id
        LIMIT $2 OFFSET $3`
	err := s.q.SelectContext(ctx, &bids, query, tenderID, limit, offset)
	return bids, err
}

func (s *Storage) BidDecisions(ctx context.Context, bidID uuid.UUID) ([]BidDecision, error) {
	decisions := []BidDecision{}
	query := `SELECT * FROM bid_decision WHERE bid_id=$1 ORDER BY decision_date`
	err := s.q.SelectContext(ctx, &decisions, query, bidID)
	return decisions, err
}

// SubmitBidDecision фиксирует решение и применяет правило кворума в одной
// транзакции: одно REJECTED отклоняет предложение сразу; APPROVED
// засчитывается, и при min(3, числа ответственных) одобрений предложение
// одобряется. Повторное решение того же пользователя — Conflict по
// уникальному ограничению, без предварительной проверки.
func (s *Storage) SubmitBidDecision(ctx context.Context, bid *Bid, userID uuid.UUID, decision models.Decision, tenderOrgID uuid.UUID) (models.BidStatus, error) {
	status := bid.Status
	err := s.inTx(ctx, func(tx *Storage) error {
		insert := `
            INSERT INTO bid_decision (id, bid_id, user_id, decision)
            VALUES ($1, $2, $3, $4)`
		if _, err := tx.q.ExecContext(ctx, insert, uuid.New(), bid.ID, userID, decision); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.Conflict, "user has already submitted a decision for this bid")
			}
			return err
		}

		if decision == models.DecisionRejected {
			if _, err := tx.SetBidStatus(ctx, bid.ID, models.BidRejected); err != nil {
				return err
			}
			status = models.BidRejected
			return nil
		}

		responsible, err := tx.ResponsibleCount(ctx, tenderOrgID)
		if err != nil {
			return err
		}
		quorum := responsible
		if quorum > 3 {
			quorum = 3
		}

		var approvals int
		count := `SELECT COUNT(1) FROM bid_decision WHERE bid_id=$1 AND decision='APPROVED'`
		if err := tx.q.GetContext(ctx, &approvals, count, bid.ID); err != nil {
			return err
		}

		if approvals >= quorum {
			if _, err := tx.SetBidStatus(ctx, bid.ID, models.BidApproved); err != nil {
				return err
			}
			status = models.BidApproved
		}
		return nil
	})
	return status, err
}
