package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/pkg/response"
)

type studentService interface {
	Get(ctx context.Context, actor *models.Student, id string) (*models.Student, error)
}

// StudentHandler exposes student lookups.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.service.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}
