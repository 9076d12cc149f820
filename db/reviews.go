package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review (Отзыв) — только добавляется, не редактируется и не удаляется.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BidID      uuid.UUID `db:"bid_id" json:"bidId"`
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewerId"`
	AuthorID   uuid.UUID `db:"author_id" json:"authorId"`
	Content    string    `db:"content" json:"content"`
	Rating     int       `db:"rating" json:"rating"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateReview(ctx context.Context, r *Review) error {
	r.ID = uuid.New()
	query := `
        INSERT INTO review (id, bid_id, reviewer_id, author_id, content, rating)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`
	return s.q.QueryRowxContext(ctx, query,
		r.ID, r.BidID, r.ReviewerID, r.AuthorID, r.Content, r.Rating).
		Scan(&r.CreatedAt)
}

// AuthorHasBidOnTender проверяет, подавал ли автор предложения на тендер.
func (s *Storage) AuthorHasBidOnTender(ctx context.Context, authorID, tenderID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM bid WHERE creator_id=$1 AND tender_id=$2`
	if err := s.q.GetContext(ctx, &count, query, authorID, tenderID); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReviewsByAuthor возвращает отзывы по всем предложениям автора, по всем
// тендерам сразу, не только по запрошенному.
func (s *Storage) ReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]Review, error) {
	reviews := []Review{}
	query := `
        SELECT rv.* FROM review rv
        JOIN bid b ON b.id = rv.bid_id
        WHERE b.creator_id = $1
        ORDER BY rv.created_at`
	err := s.q.SelectContext(ctx, &reviews, query, authorID)
	return reviews, err
}
