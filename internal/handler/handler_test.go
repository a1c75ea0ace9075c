package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/middleware"
	"github.com/visionafrica/debate-portal/internal/models"
	"github.com/visionafrica/debate-portal/internal/service"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeRegistrationSrv struct {
	registerReq   dto.RegisterRequest
	registerFiles dto.RegistrationFiles
	logoContent   []byte
	registerErr   error
	regs          []models.Registration
	getErr        error
}

func (f *fakeRegistrationSrv) Register(ctx context.Context, req dto.RegisterRequest, files dto.RegistrationFiles) (*models.Registration, error) {
	f.registerReq = req
	f.registerFiles = files
	if files.Logo != nil {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(files.Logo.Content)
		f.logoContent = buf.Bytes()
	}
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Registration{ID: "r1", RegNumber: "VARSDB-2025-0001", SchoolName: req.SchoolName, Status: models.StatusPending}, nil
}

func (f *fakeRegistrationSrv) List(ctx context.Context) ([]models.Registration, error) {
	return f.regs, nil
}

func (f *fakeRegistrationSrv) Get(ctx context.Context, id string) (*models.Registration, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Registration{ID: id}, nil
}

type lifecycleCall struct {
	op     string
	id     string
	status string
	actor  service.Actor
}

type fakeLifecycleSrv struct {
	calls    []lifecycleCall
	err      error
	warnings []string
}

func (f *fakeLifecycleSrv) outcome(id string, status models.RegistrationStatus) (*dto.RegistrationOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.RegistrationOutcome{Registration: &models.Registration{ID: id, Status: status}, Warnings: f.warnings}, nil
}

func (f *fakeLifecycleSrv) ConfirmPayment(ctx context.Context, id string, actor service.Actor) (*dto.RegistrationOutcome, error) {
	f.calls = append(f.calls, lifecycleCall{op: "confirm", id: id, actor: actor})
	return f.outcome(id, models.StatusConfirmed)
}

func (f *fakeLifecycleSrv) UpdateStatus(ctx context.Context, id string, status string, actor service.Actor) (*dto.RegistrationOutcome, error) {
	f.calls = append(f.calls, lifecycleCall{op: "status", id: id, status: status, actor: actor})
	return f.outcome(id, models.RegistrationStatus(status))
}

func (f *fakeLifecycleSrv) Delete(ctx context.Context, id string, actor service.Actor) (*dto.RegistrationOutcome, error) {
	f.calls = append(f.calls, lifecycleCall{op: "delete", id: id, actor: actor})
	return f.outcome(id, models.StatusPending)
}

type fakeExportSrv struct {
	format string
}

func (f *fakeExportSrv) ExportRegistrations(ctx context.Context, format string) (*service.ExportFile, error) {
	f.format = format
	if format == "xml" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.ExportFile{Filename: "registrations-20250309.csv", ContentType: "text/csv; charset=utf-8", Content: []byte("RegNumber\n")}, nil
}

type fakeEmailSrv struct {
	req        dto.SendEmailRequest
	attachment []byte
	err        error
}

func (f *fakeEmailSrv) SendAdminEmail(ctx context.Context, req dto.SendEmailRequest, actor service.Actor) error {
	f.req = req
	if req.Attachment != nil {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(req.Attachment.Content)
		f.attachment = buf.Bytes()
	}
	return f.err
}

type fakeAuthSrv struct {
	err error
}

func (f *fakeAuthSrv) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{Admin: models.AdminInfo{ID: "a1", Username: req.Username}, Token: "signed-token", ExpiresIn: 3600}, nil
}

func (f *fakeAuthSrv) TokenTTL() time.Duration { return time.Hour }

type fakeDBChecker struct{ err error }

func (f fakeDBChecker) CheckDatabase(ctx context.Context) error { return f.err }

// testProtect admits requests carrying "Bearer ok" and stores a fixed admin.
func testProtect(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer ok" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(middleware.ContextAdminKey, &models.Admin{ID: "admin-1", Username: "admin"})
	c.Next()
}

type testApp struct {
	router        *gin.Engine
	registrations *fakeRegistrationSrv
	lifecycle     *fakeLifecycleSrv
	exports       *fakeExportSrv
	email         *fakeEmailSrv
	auth          *fakeAuthSrv
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := &testApp{
		registrations: &fakeRegistrationSrv{},
		lifecycle:     &fakeLifecycleSrv{},
		exports:       &fakeExportSrv{},
		email:         &fakeEmailSrv{},
		auth:          &fakeAuthSrv{},
	}
	app.router = gin.New()
	RegisterRoutes(app.router, "/api", Handlers{
		Registration: NewRegistrationHandler(app.registrations, app.lifecycle, 1024),
		Admin:        NewAdminHandler(app.registrations, app.lifecycle, app.exports, app.email, 1024),
		Auth:         NewAuthHandler(app.auth, false),
		Metrics:      NewMetricsHandler(nil, fakeDBChecker{}),
		Protect:      testProtect,
		UploadsDir:   t.TempDir(),
	})
	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type formFileField struct {
	field, name string
	content     []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFileField) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
