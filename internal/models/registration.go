package models

import "time"

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	StatusPending     RegistrationStatus = "Pending"
	StatusConfirmed   RegistrationStatus = "Confirmed"
	StatusApproved    RegistrationStatus = "Approved"
	StatusRejected    RegistrationStatus = "Rejected"
	StatusDisapproved RegistrationStatus = "Disapproved"
)

// RegistrationStatuses lists every accepted status in display order.
var RegistrationStatuses = []RegistrationStatus{
	StatusPending,
	StatusConfirmed,
	StatusApproved,
	StatusRejected,
	StatusDisapproved,
}

// Valid reports whether s is one of the five known statuses.
func (s RegistrationStatus) Valid() bool {
	for _, known := range RegistrationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Notifies reports whether moving into s sends the school an email.
func (s RegistrationStatus) Notifies() bool {
	return s.Valid() && s != StatusPending
}

// Registration is one school's entry in the competition.
type Registration struct {
	ID             string             `db:"id" json:"id"`
	RegNumber      string             `db:"reg_number" json:"regNumber"`
	SchoolName     string             `db:"school_name" json:"schoolName"`
	CoachName      string             `db:"coach_name" json:"coachName"`
	Email          string             `db:"email" json:"email"`
	Phone          string             `db:"phone" json:"phone"`
	Address        string             `db:"address" json:"address"`
	State          string             `db:"state" json:"state"`
	Reason         string             `db:"reason" json:"reason"`
	LogoPath       string             `db:"logo_path" json:"logo"`
	ReceiptPath    string             `db:"receipt_path" json:"receipt"`
	Status         RegistrationStatus `db:"status" json:"status"`
	DateRegistered time.Time          `db:"date_registered" json:"dateRegistered"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updatedAt"`
}

// FileRefs returns the non-empty stored file references of the registration.
func (r *Registration) FileRefs() []string {
	refs := make([]string, 0, 2)
	if r.LogoPath != "" {
		refs = append(refs, r.LogoPath)
	}
	if r.ReceiptPath != "" {
		refs = append(refs, r.ReceiptPath)
	}
	return refs
}

// RegistrationFiles holds the stored file references of one registration.
type RegistrationFiles struct {
	ID          string `db:"id"`
	LogoPath    string `db:"logo_path"`
	ReceiptPath string `db:"receipt_path"`
}
