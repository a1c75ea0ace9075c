package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/service"
	"github.com/visionafrica/debate-portal/pkg/response"
)

type exportService interface {
	ExportRegistrations(ctx context.Context, format string) (*service.ExportFile, error)
}

type emailService interface {
	SendAdminEmail(ctx context.Context, req dto.SendEmailRequest, actor service.Actor) error
}

// AdminHandler serves the protected registration management endpoints.
type AdminHandler struct {
	registrations registrationService
	lifecycle     lifecycleService
	exports       exportService
	email         emailService
	maxBody       int64
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(registrations registrationService, lifecycle lifecycleService, exports exportService, email emailService, maxUpload int64) *AdminHandler {
	var maxBody int64
	if maxUpload > 0 {
		maxBody = maxUpload + 1<<20
	}
	return &AdminHandler{registrations: registrations, lifecycle: lifecycle, exports: exports, email: email, maxBody: maxBody}
}

// List godoc
// @Summary List registered schools
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/registrations [get]
// @Router /admin/schools [get]
func (h *AdminHandler) List(c *gin.Context) {
	regs, err := h.registrations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs)
}

// Get godoc
// @Summary Get one registration
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/registrations/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg)
}

// Export godoc
// @Summary Export registrations
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/registrations/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	file, err := h.exports.ExportRegistrations(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// ConfirmPayment godoc
// @Summary Confirm a school's payment
// @Description Sets the status to Confirmed and queues the confirmation email.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/confirm/{id} [put]
func (h *AdminHandler) ConfirmPayment(c *gin.Context) {
	outcome, err := h.lifecycle.ConfirmPayment(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome.Registration, response.Message("Payment confirmed", outcome.Warnings))
}

// UpdateStatus godoc
// @Summary Change a registration's status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/schools/status/{id} [put]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err))
		return
	}
	outcome, err := h.lifecycle.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome.Registration, response.Message("Status updated to "+string(outcome.Registration.Status), outcome.Warnings))
}

// Delete godoc
// @Summary Delete a school
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/schools/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	outcome, err := h.lifecycle.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome.Registration, response.Message("School deleted successfully", outcome.Warnings))
}

// SendEmail godoc
// @Summary Email any address
// @Description JSON body, or multipart form with an optional attachment.
// @Tags Admin
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SendEmailRequest true "Message"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/send-email [post]
func (h *AdminHandler) SendEmail(c *gin.Context) {
	limitBody(c, h.maxBody)

	var req dto.SendEmailRequest
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
		attachment, closeAttachment, err := formFile(c, "attachment")
		if err != nil {
			response.Error(c, err)
			return
		}
		defer closeAttachment()
		req.Attachment = attachment
	} else if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err))
		return
	}

	if err := h.email.SendAdminEmail(c.Request.Context(), req, actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"email": req.Email}, response.Message("Email sent successfully", nil))
}
