package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/models"
	"github.com/visionafrica/debate-portal/internal/service"
	"github.com/visionafrica/debate-portal/pkg/response"
)

type registrationService interface {
	Register(ctx context.Context, req dto.RegisterRequest, files dto.RegistrationFiles) (*models.Registration, error)
	List(ctx context.Context) ([]models.Registration, error)
	Get(ctx context.Context, id string) (*models.Registration, error)
}

type lifecycleService interface {
	ConfirmPayment(ctx context.Context, id string, actor service.Actor) (*dto.RegistrationOutcome, error)
	UpdateStatus(ctx context.Context, id string, status string, actor service.Actor) (*dto.RegistrationOutcome, error)
	Delete(ctx context.Context, id string, actor service.Actor) (*dto.RegistrationOutcome, error)
}

// RegistrationHandler serves the public registration endpoints.
type RegistrationHandler struct {
	registrations registrationService
	lifecycle     lifecycleService
	maxBody       int64
}

// NewRegistrationHandler constructs the handler. maxUpload is the per-file
// limit; the request body may carry two files plus the text fields.
func NewRegistrationHandler(registrations registrationService, lifecycle lifecycleService, maxUpload int64) *RegistrationHandler {
	var maxBody int64
	if maxUpload > 0 {
		maxBody = 2*maxUpload + 1<<20
	}
	return &RegistrationHandler{registrations: registrations, lifecycle: lifecycle, maxBody: maxBody}
}

// Register godoc
// @Summary Submit a school registration
// @Description Multipart form with the school details, a logo image and a payment receipt (PDF or image).
// @Tags Registration
// @Accept multipart/form-data
// @Produce json
// @Param schoolName formData string true "School name"
// @Param coachName formData string true "Coach name"
// @Param email formData string true "Contact email"
// @Param phone formData string true "Phone number, digits only"
// @Param address formData string true "Address"
// @Param state formData string true "State"
// @Param reason formData string true "Why the school wants to take part"
// @Param logo formData file true "School logo"
// @Param receipt formData file true "Payment receipt"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /registration/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	limitBody(c, h.maxBody)

	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	logo, closeLogo, err := formFile(c, "logo")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeLogo()
	receipt, closeReceipt, err := formFile(c, "receipt")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeReceipt()

	reg, err := h.registrations.Register(c.Request.Context(), req, dto.RegistrationFiles{Logo: logo, Receipt: receipt})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg, response.Message("Registration successful", nil))
}

// List godoc
// @Summary List registrations
// @Description Every registration, newest first.
// @Tags Registration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registration [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	regs, err := h.registrations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs)
}

// Delete godoc
// @Summary Delete a registration
// @Description Removes the record and its uploaded files. File clean-up failures are reported as warnings.
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registration/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	outcome, err := h.lifecycle.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome.Registration, response.Message("Registration deleted successfully", outcome.Warnings))
}
