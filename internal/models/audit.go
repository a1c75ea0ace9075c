package models

import "time"

// Audit actions recorded for admin mutations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionConfirmPayment = "CONFIRM_PAYMENT"
	AuditActionStatusChange   = "STATUS_CHANGE"
	AuditActionDelete         = "REGISTRATION_DELETE"
	AuditActionSendEmail      = "SEND_EMAIL"
)

// AuditResourceRegistration names the registrations resource in audit rows.
const AuditResourceRegistration = "registration"

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	AdminID    *string   `db:"admin_id" json:"adminId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	Payload    []byte    `db:"payload" json:"payload,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
