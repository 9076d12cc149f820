package handlers

import (
	"context"

	"github.com/google/uuid"

	"procurement/db"
	"procurement/models"
)

type StorageInterface interface {
	CreateEmployee(ctx context.Context, e *db.Employee) error
	GetEmployeeByUsername(ctx context.Context, username string) (*db.Employee, error)
	ListEmployees(ctx context.Context) ([]db.Employee, error)
	EmployeeOrganizations(ctx context.Context, userID uuid.UUID) ([]db.Organization, error)

	CreateOrganization(ctx context.Context, o *db.Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*db.Organization, error)
	AddResponsible(ctx context.Context, organizationID, userID uuid.UUID) error
	IsResponsible(ctx context.Context, userID, organizationID uuid.UUID) (bool, error)
	FirstResponsibility(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	ResponsibleCount(ctx context.Context, organizationID uuid.UUID) (int, error)

	CreateTender(ctx context.Context, t *db.Tender) error
	GetTender(ctx context.Context, id uuid.UUID) (*db.Tender, error)
	LatestTender(ctx context.Context, rootID uuid.UUID) (*db.Tender, error)
	TenderByVersion(ctx context.Context, rootID uuid.UUID, version int) (*db.Tender, error)
	SaveTenderRevision(ctx context.Context, t *db.Tender) error
	SetTenderStatus(ctx context.Context, id uuid.UUID, status models.TenderStatus) (*db.Tender, error)
	ListTenders(ctx context.Context, actorID uuid.UUID, serviceType string, limit, offset int) ([]db.Tender, error)
	ListUserTenders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]db.Tender, error)
	ListOrganizationTenders(ctx context.Context, organizationID uuid.UUID) ([]db.Tender, error)

	CreateBid(ctx context.Context, b *db.Bid) error
	GetBid(ctx context.Context, id uuid.UUID) (*db.Bid, error)
	LatestBid(ctx context.Context, rootID uuid.UUID) (*db.Bid, error)
	BidByVersion(ctx context.Context, rootID uuid.UUID, version int) (*db.Bid, error)
	SaveBidRevision(ctx context.Context, b *db.Bid) error
	SetBidStatus(ctx context.Context, id uuid.UUID, status models.BidStatus) (*db.Bid, error)
	ListBids(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]db.Bid, error)
	ListUserBids(ctx context.Context, userID uuid.UUID, limit, offset int) ([]db.Bid, error)
	ListTenderBids(ctx context.Context, tenderID uuid.UUID, limit, offset int) ([]db.Bid, error)
	BidDecisions(ctx context.Context, bidID uuid.UUID) ([]db.BidDecision, error)
	SubmitBidDecision(ctx context.Context, bid *db.Bid, userID uuid.UUID, decision models.Decision, tenderOrgID uuid.UUID) (models.BidStatus, error)

	CreateReview(ctx context.Context, r *db.Review) error
	AuthorHasBidOnTender(ctx context.Context, authorID, tenderID uuid.UUID) (bool, error)
	ReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]db.Review, error)
}
