package handlers_test

import (
	"context"

	"github.com/google/uuid"

	"procurement/db"
	"procurement/internal/apperr"
	"procurement/models"
)

func notFoundErr(message string) error {
	return apperr.New(apperr.NotFound, message)
}

// MockStorage реализует StorageInterface. Поля-функции позволяют
// переопределить поведение в конкретном тесте.
type MockStorage struct {
	employee    *db.Employee
	responsible bool
	firstOrg    uuid.UUID

	GetEmployeeByUsernameFunc func(ctx context.Context, username string) (*db.Employee, error)
	GetTenderFunc             func(ctx context.Context, id uuid.UUID) (*db.Tender, error)
	LatestTenderFunc          func(ctx context.Context, rootID uuid.UUID) (*db.Tender, error)
	TenderByVersionFunc       func(ctx context.Context, rootID uuid.UUID, version int) (*db.Tender, error)
	SaveTenderRevisionFunc    func(ctx context.Context, t *db.Tender) error
	SetTenderStatusFunc       func(ctx context.Context, id uuid.UUID, status models.TenderStatus) (*db.Tender, error)
	ListTendersFunc           func(ctx context.Context, actorID uuid.UUID, serviceType string, limit, offset int) ([]db.Tender, error)
	GetBidFunc                func(ctx context.Context, id uuid.UUID) (*db.Bid, error)
	LatestBidFunc             func(ctx context.Context, rootID uuid.UUID) (*db.Bid, error)
	BidByVersionFunc          func(ctx context.Context, rootID uuid.UUID, version int) (*db.Bid, error)
	SaveBidRevisionFunc       func(ctx context.Context, b *db.Bid) error
	SubmitBidDecisionFunc     func(ctx context.Context, bid *db.Bid, userID uuid.UUID, decision models.Decision, tenderOrgID uuid.UUID) (models.BidStatus, error)
	AuthorHasBidOnTenderFunc  func(ctx context.Context, authorID, tenderID uuid.UUID) (bool, error)
	ReviewsByAuthorFunc       func(ctx context.Context, authorID uuid.UUID) ([]db.Review, error)
}

func (m *MockStorage) CreateEmployee(ctx context.Context, e *db.Employee) error {
	e.ID = uuid.New()
	return nil
}

func (m *MockStorage) GetEmployeeByUsername(ctx context.Context, username string) (*db.Employee, error) {
	if m.GetEmployeeByUsernameFunc != nil {
		return m.GetEmployeeByUsernameFunc(ctx, username)
	}
	if m.employee == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return m.employee, nil
}

func (m *MockStorage) ListEmployees(ctx context.Context) ([]db.Employee, error) {
	if m.employee == nil {
		return []db.Employee{}, nil
	}
	return []db.Employee{*m.employee}, nil
}

func (m *MockStorage) EmployeeOrganizations(ctx context.Context, userID uuid.UUID) ([]db.Organization, error) {
	return []db.Organization{}, nil
}

func (m *MockStorage) CreateOrganization(ctx context.Context, o *db.Organization) error {
	o.ID = uuid.New()
	return nil
}

func (m *MockStorage) GetOrganization(ctx context.Context, id uuid.UUID) (*db.Organization, error) {
	return &db.Organization{ID: id, Name: "Org", Type: models.OrgLimited}, nil
}

func (m *MockStorage) AddResponsible(ctx context.Context, organizationID, userID uuid.UUID) error {
	return nil
}

func (m *MockStorage) IsResponsible(ctx context.Context, userID, organizationID uuid.UUID) (bool, error) {
	return m.responsible, nil
}

func (m *MockStorage) FirstResponsibility(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if m.firstOrg == uuid.Nil {
		return uuid.Nil, apperr.New(apperr.Forbidden, "user is not responsible for any organization")
	}
	return m.firstOrg, nil
}

func (m *MockStorage) ResponsibleCount(ctx context.Context, organizationID uuid.UUID) (int, error) {
	return 1, nil
}

func (m *MockStorage) CreateTender(ctx context.Context, t *db.Tender) error {
	t.ID = uuid.New()
	t.RootID = uuid.New()
	t.Version = 1
	t.Status = models.TenderCreated
	return nil
}

func (m *MockStorage) GetTender(ctx context.Context, id uuid.UUID) (*db.Tender, error) {
	if m.GetTenderFunc != nil {
		return m.GetTenderFunc(ctx, id)
	}
	return &db.Tender{ID: id, RootID: uuid.New(), Title: "Test Tender", Version: 1, Status: models.TenderCreated}, nil
}

func (m *MockStorage) LatestTender(ctx context.Context, rootID uuid.UUID) (*db.Tender, error) {
	if m.LatestTenderFunc != nil {
		return m.LatestTenderFunc(ctx, rootID)
	}
	return &db.Tender{ID: uuid.New(), RootID: rootID, Version: 1}, nil
}

func (m *MockStorage) TenderByVersion(ctx context.Context, rootID uuid.UUID, version int) (*db.Tender, error) {
	if m.TenderByVersionFunc != nil {
		return m.TenderByVersionFunc(ctx, rootID, version)
	}
	return &db.Tender{ID: uuid.New(), RootID: rootID, Title: "Tender Version", Version: version}, nil
}

func (m *MockStorage) SaveTenderRevision(ctx context.Context, t *db.Tender) error {
	if m.SaveTenderRevisionFunc != nil {
		return m.SaveTenderRevisionFunc(ctx, t)
	}
	t.ID = uuid.New()
	return nil
}

func (m *MockStorage) SetTenderStatus(ctx context.Context, id uuid.UUID, status models.TenderStatus) (*db.Tender, error) {
	if m.SetTenderStatusFunc != nil {
		return m.SetTenderStatusFunc(ctx, id, status)
	}
	return &db.Tender{ID: id, Status: status, Version: 1}, nil
}

func (m *MockStorage) ListTenders(ctx context.Context, actorID uuid.UUID, serviceType string, limit, offset int) ([]db.Tender, error) {
	if m.ListTendersFunc != nil {
		return m.ListTendersFunc(ctx, actorID, serviceType, limit, offset)
	}
	return []db.Tender{{ID: uuid.New(), Title: "Sample Tender", Status: models.TenderPublished}}, nil
}

func (m *MockStorage) ListUserTenders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]db.Tender, error) {
	return []db.Tender{{ID: uuid.New(), Title: "User Tender"}}, nil
}

func (m *MockStorage) ListOrganizationTenders(ctx context.Context, organizationID uuid.UUID) ([]db.Tender, error) {
	return []db.Tender{}, nil
}

func (m *MockStorage) CreateBid(ctx context.Context, b *db.Bid) error {
	b.ID = uuid.New()
	b.RootID = uuid.New()
	b.Version = 1
	b.Status = models.BidCreated
	return nil
}

func (m *MockStorage) GetBid(ctx context.Context, id uuid.UUID) (*db.Bid, error) {
	if m.GetBidFunc != nil {
		return m.GetBidFunc(ctx, id)
	}
	return &db.Bid{
		ID:       id,
		RootID:   uuid.New(),
		Title:    "Test Bid",
		Amount:   100,
		Status:   models.BidPublished,
		TenderID: uuid.New(),
		Version:  1,
	}, nil
}

func (m *MockStorage) LatestBid(ctx context.Context, rootID uuid.UUID) (*db.Bid, error) {
	if m.LatestBidFunc != nil {
		return m.LatestBidFunc(ctx, rootID)
	}
	return &db.Bid{ID: uuid.New(), RootID: rootID, Version: 1}, nil
}

func (m *MockStorage) BidByVersion(ctx context.Context, rootID uuid.UUID, version int) (*db.Bid, error) {
	if m.BidByVersionFunc != nil {
		return m.BidByVersionFunc(ctx, rootID, version)
	}
	return &db.Bid{ID: uuid.New(), RootID: rootID, Title: "Bid Version", Version: version}, nil
}

func (m *MockStorage) SaveBidRevision(ctx context.Context, b *db.Bid) error {
	if m.SaveBidRevisionFunc != nil {
		return m.SaveBidRevisionFunc(ctx, b)
	}
	b.ID = uuid.New()
	return nil
}

func (m *MockStorage) SetBidStatus(ctx context.Context, id uuid.UUID, status models.BidStatus) (*db.Bid, error) {
	return &db.Bid{ID: id, Status: status, Version: 1}, nil
}

func (m *MockStorage) ListBids(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]db.Bid, error) {
	return []db.Bid{{ID: uuid.New(), Title: "Visible Bid", Status: models.BidPublished}}, nil
}

func (m *MockStorage) ListUserBids(ctx context.Context, userID uuid.UUID, limit, offset int) ([]db.Bid, error) {
	return []db.Bid{{ID: uuid.New(), Title: "User Bid", CreatorID: userID}}, nil
}

func (m *MockStorage) ListTenderBids(ctx context.Context, tenderID uuid.UUID, limit, offset int) ([]db.Bid, error) {
	return []db.Bid{{ID: uuid.New(), Title: "Tender Bid", TenderID: tenderID, Status: models.BidPublished}}, nil
}

func (m *MockStorage) BidDecisions(ctx context.Context, bidID uuid.UUID) ([]db.BidDecision, error) {
	return []db.BidDecision{}, nil
}

func (m *MockStorage) SubmitBidDecision(ctx context.Context, bid *db.Bid, userID uuid.UUID, decision models.Decision, tenderOrgID uuid.UUID) (models.BidStatus, error) {
	if m.SubmitBidDecisionFunc != nil {
		return m.SubmitBidDecisionFunc(ctx, bid, userID, decision, tenderOrgID)
	}
	return bid.Status, nil
}

func (m *MockStorage) CreateReview(ctx context.Context, r *db.Review) error {
	r.ID = uuid.New()
	return nil
}

func (m *MockStorage) AuthorHasBidOnTender(ctx context.Context, authorID, tenderID uuid.UUID) (bool, error) {
	if m.AuthorHasBidOnTenderFunc != nil {
		return m.AuthorHasBidOnTenderFunc(ctx, authorID, tenderID)
	}
	return true, nil
}

func (m *MockStorage) ReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]db.Review, error) {
	if m.ReviewsByAuthorFunc != nil {
		return m.ReviewsByAuthorFunc(ctx, authorID)
	}
	return []db.Review{}, nil
}
