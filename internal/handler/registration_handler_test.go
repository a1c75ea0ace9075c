package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
)

var registerFields = map[string]string{
	"schoolName": "Kings College",
	"coachName":  "Ada Obi",
	"email":      "coach@kings.edu.ng",
	"phone":      "08031234567",
	"address":    "1 Marina Road",
	"state":      "Lagos",
	"reason":     "Debate",
}

func TestRegisterMultipart(t *testing.T) {
	app := newTestApp(t)

	req := multipartRequest(t, http.MethodPost, "/api/registration/register", registerFields,
		formFileField{field: "logo", name: "logo.png", content: []byte("logo-bytes")},
		formFileField{field: "receipt", name: "receipt.pdf", content: []byte("%PDF-1.4")},
	)
	rec := app.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Registration successful", env.Meta["message"])
	var reg models.Registration
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, "VARSDB-2025-0001", reg.RegNumber)

	assert.Equal(t, "Kings College", app.registrations.registerReq.SchoolName)
	assert.Equal(t, "08031234567", app.registrations.registerReq.Phone)
	require.NotNil(t, app.registrations.registerFiles.Logo)
	require.NotNil(t, app.registrations.registerFiles.Receipt)
	assert.Equal(t, "receipt.pdf", app.registrations.registerFiles.Receipt.Filename)
	assert.Equal(t, []byte("logo-bytes"), app.registrations.logoContent)
}

func TestRegisterWithoutFilesPassesNil(t *testing.T) {
	app := newTestApp(t)
	app.registrations.registerErr = appErrors.Clone(appErrors.ErrValidation, "logo file is required")

	rec := app.do(multipartRequest(t, http.MethodPost, "/api/registration/register", registerFields))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, app.registrations.registerFiles.Logo)
	assert.Equal(t, "logo file is required", decodeEnvelope(t, rec).Error.Message)
}

func TestRegisterRejectsOversizedBody(t *testing.T) {
	app := newTestApp(t)

	req := multipartRequest(t, http.MethodPost, "/api/registration/register", registerFields,
		formFileField{field: "logo", name: "logo.png", content: bytes.Repeat([]byte("x"), 4<<20)},
	)
	rec := app.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Upload too large", decodeEnvelope(t, rec).Error.Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.registrations.registerErr = appErrors.ErrAlreadyRegistered

	rec := app.do(multipartRequest(t, http.MethodPost, "/api/registration/register", registerFields))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This email is already registered", decodeEnvelope(t, rec).Error.Message)
}

func TestListRegistrationsIsPublic(t *testing.T) {
	app := newTestApp(t)
	app.registrations.regs = []models.Registration{{ID: "b"}, {ID: "a"}}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/registration", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var regs []models.Registration
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &regs))
	assert.Len(t, regs, 2)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestDeleteRegistrationRequiresAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodDelete, "/api/registration/r1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, app.lifecycle.calls)

	app.lifecycle.warnings = []string{"Registration deleted but file uploads/1-logo.png could not be removed."}
	req := httptest.NewRequest(http.MethodDelete, "/api/registration/r1", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec = app.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Registration deleted successfully", env.Meta["message"])
	assert.Equal(t, []interface{}{"Registration deleted but file uploads/1-logo.png could not be removed."}, env.Meta["warnings"])
	require.Len(t, app.lifecycle.calls, 1)
	assert.Equal(t, "admin-1", app.lifecycle.calls[0].actor.AdminID)
}
