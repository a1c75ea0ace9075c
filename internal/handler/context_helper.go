package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/middleware"
	"github.com/visionafrica/debate-portal/internal/service"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
)

func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if admin := middleware.CurrentAdmin(c); admin != nil {
		actor.AdminID = admin.ID
	}
	return actor
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFile opens an optional multipart file. The returned closer is never nil.
func formFile(c *gin.Context, field string) (*dto.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, bindError(err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, appErrors.Internal(err, "failed to read upload")
	}
	return &dto.FileUpload{Filename: header.Filename, Size: header.Size, Content: file}, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// bindError maps request decoding failures, including bodies over the size cap.
func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "Upload too large")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload")
}

func limitBody(c *gin.Context, limit int64) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
}
