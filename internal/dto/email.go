package dto

// SendEmailRequest is an admin-authored message to any address.
type SendEmailRequest struct {
	Email      string      `form:"email" json:"email" validate:"required,email"`
	Subject    string      `form:"subject" json:"subject" validate:"required,max=300"`
	Message    string      `form:"message" json:"message" validate:"required"`
	Attachment *FileUpload `form:"-" json:"-"`
}
