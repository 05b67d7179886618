package models

type UserRole string
type TenderStatus string
type BidStatus string
type NotificationType string

const (
	UserRoleBidder        UserRole = "bidder"
	UserRoleOfficer       UserRole = "procurement_officer"
	UserRoleAdministrator UserRole = "administrator"

	TenderStatusOpen      TenderStatus = "open"
	TenderStatusClosed    TenderStatus = "closed"
	TenderStatusAwarded   TenderStatus = "awarded"
	TenderStatusCancelled TenderStatus = "cancelled"

	BidStatusDraft       BidStatus = "draft"
	BidStatusSubmitted   BidStatus = "submitted"
	BidStatusUnderReview BidStatus = "under_review"
	BidStatusAccepted    BidStatus = "accepted"
	BidStatusRejected    BidStatus = "rejected"

	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Valid reports whether the role is one of the closed set. Unknown roles are
// rejected at the auth boundary, never downstream.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleBidder, UserRoleOfficer, UserRoleAdministrator:
		return true
	}
	return false
}

// Evaluator roles may score bids and decide their outcome.
func (r UserRole) Evaluator() bool {
	return r == UserRoleOfficer || r == UserRoleAdministrator
}

func (s TenderStatus) Valid() bool {
	switch s {
	case TenderStatusOpen, TenderStatusClosed, TenderStatusAwarded, TenderStatusCancelled:
		return true
	}
	return false
}

func (s BidStatus) Valid() bool {
	switch s {
	case BidStatusDraft, BidStatusSubmitted, BidStatusUnderReview, BidStatusAccepted, BidStatusRejected:
		return true
	}
	return false
}

// Terminal statuses accept no further lifecycle, score or amount mutation.
func (s BidStatus) Terminal() bool {
	return s == BidStatusAccepted || s == BidStatusRejected
}

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}
