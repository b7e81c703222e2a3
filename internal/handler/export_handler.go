package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
	"github.com/noah-isme/school-tests-api/pkg/export"
	"github.com/noah-isme/school-tests-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, format export.Format) ([]byte, error)
}

// ExportHandler renders the test calendar as a file.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Tests godoc
// @Summary Export test calendar
// @Tags Export
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /export/tests [get]
func (h *ExportHandler) Tests(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Invalid 'format' param"))
		return
	}
	body, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=tests.%s", format))
	c.Data(http.StatusOK, format.ContentType(), body)
}
