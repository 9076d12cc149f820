// Package models содержит перечисления домена закупок и их проверки.
package models

type TenderStatus string

const (
	TenderCreated   TenderStatus = "CREATED"
	TenderPublished TenderStatus = "PUBLISHED"
	TenderClosed    TenderStatus = "CLOSED"
)

type BidStatus string

const (
	BidCreated   BidStatus = "CREATED"
	BidPublished BidStatus = "PUBLISHED"
	BidCanceled  BidStatus = "CANCELED"
	BidApproved  BidStatus = "APPROVED"
	BidRejected  BidStatus = "REJECTED"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidCreated, BidPublished, BidCanceled, BidApproved, BidRejected:
		return true
	default:
		return false
	}
}

// Terminal: по предложению в этом статусе решения больше не принимаются.
func (s BidStatus) Terminal() bool {
	return s == BidApproved || s == BidRejected
}

type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

func ValidDecision(d Decision) bool {
	return d == DecisionApproved || d == DecisionRejected
}

type OrganizationType string

const (
	OrgIndividual OrganizationType = "IE"
	OrgLimited    OrganizationType = "LLC"
	OrgJointStock OrganizationType = "JSC"
)

func ValidOrganizationType(t OrganizationType) bool {
	switch t {
	case OrgIndividual, OrgLimited, OrgJointStock:
		return true
	default:
		return false
	}
}

var serviceTypes = map[string]bool{
	"Construction": true,
	"IT Services":  true,
	"Consulting":   true,
}

func ValidServiceType(t string) bool {
	return serviceTypes[t]
}
