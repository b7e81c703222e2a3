package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	"github.com/noah-isme/school-tests-api/pkg/response"
)

type testService interface {
	List(ctx context.Context) ([]models.Test, error)
	Lookup(ctx context.Context, idOrDate string) (*models.Test, error)
	Create(ctx context.Context, actor *models.Student, payload validation.Payload) (*models.Test, error)
	Update(ctx context.Context, actor *models.Student, id string, payload validation.Payload) (*models.Test, error)
	Delete(ctx context.Context, actor *models.Student, id string) error
}

// TestHandler manages scheduled tests.
type TestHandler struct {
	service testService
}

// NewTestHandler constructs the handler.
func NewTestHandler(service testService) *TestHandler {
	return &TestHandler{service: service}
}

// List godoc
// @Summary List tests
// @Tags Tests
// @Produce json
// @Success 200 {array} models.Test
// @Failure 500 {object} response.ErrorBody
// @Router /test [get]
func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tests)
}

// Lookup godoc
// @Summary Get test by id or day
// @Description A valid id is looked up directly. Anything else is parsed as a date and the first test of that day is returned. Responds with null when nothing matches
// @Tags Tests
// @Produce json
// @Param idOrDate path string true "Test ID or date"
// @Success 200 {object} models.Test
// @Failure 400 {object} response.ErrorBody
// @Router /test/{idOrDate} [get]
func (h *TestHandler) Lookup(c *gin.Context) {
	test, err := h.service.Lookup(c.Request.Context(), c.Param("idOrDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, test)
}

// Create godoc
// @Summary Create test
// @Description Admin only. Listed students get the test mirrored in
// @Tags Tests
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.TestPayload true "Test payload"
// @Success 200 {object} models.Test
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /test [post]
func (h *TestHandler) Create(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	test, err := h.service.Create(c.Request.Context(), principalFromContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, test)
}

// Update godoc
// @Summary Update test
// @Description Admin only. Falsy fields and students are ignored
// @Tags Tests
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Test ID"
// @Param payload body models.TestPayload true "Test payload"
// @Success 200 {object} models.Test
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /test/{id} [put]
func (h *TestHandler) Update(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	test, err := h.service.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, test)
}

// Delete godoc
// @Summary Delete test
// @Description Admin only. Removes the test from every listed student
// @Tags Tests
// @Param id path string true "Test ID"
// @Success 200
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /test/{id} [delete]
func (h *TestHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Status(c, http.StatusOK)
}
