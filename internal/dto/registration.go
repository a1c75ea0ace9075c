package dto

import (
	"io"

	"github.com/visionafrica/debate-portal/internal/models"
)

// RegisterRequest contains the text fields of the public registration form.
type RegisterRequest struct {
	SchoolName string `form:"schoolName" json:"schoolName" validate:"required,max=200"`
	CoachName  string `form:"coachName" json:"coachName" validate:"required,max=200"`
	Email      string `form:"email" json:"email" validate:"required,email,max=254"`
	Phone      string `form:"phone" json:"phone" validate:"required,phonenumber"`
	Address    string `form:"address" json:"address" validate:"required,max=500"`
	State      string `form:"state" json:"state" validate:"required,max=100"`
	Reason     string `form:"reason" json:"reason" validate:"required,max=2000"`
}

// FileUpload is one uploaded multipart file.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// RegistrationFiles bundles the two files a registration carries.
type RegistrationFiles struct {
	Logo    *FileUpload
	Receipt *FileUpload
}

// UpdateStatusRequest sets a registration's status.
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// RegistrationOutcome is the result of an admin mutation: the affected
// record plus any side effects that failed without undoing it.
type RegistrationOutcome struct {
	Registration *models.Registration `json:"registration"`
	Warnings     []string             `json:"-"`
}

// Warn appends a warning message.
func (o *RegistrationOutcome) Warn(msg string) {
	o.Warnings = append(o.Warnings, msg)
}
