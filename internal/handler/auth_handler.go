package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-tests-api/internal/middleware"
	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
	"github.com/noah-isme/school-tests-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, principal *models.Student, req models.LoginRequest) (*models.Student, string, error)
}

type accountService interface {
	Signup(ctx context.Context, actor *models.Student, payload validation.Payload) (*models.Student, error)
	Update(ctx context.Context, actor *models.Student, id string, payload validation.Payload) (*models.Student, error)
	Delete(ctx context.Context, actor *models.Student, id string) (bool, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// AuthHandler wires session and account endpoints.
type AuthHandler struct {
	auth     authService
	accounts accountService
	cookie   CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth authService, accounts accountService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts, cookie: cookie}
}

// Login godoc
// @Summary Log in as admin
// @Description Checks admin credentials and sets the signed session cookie
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := models.LoginRequest{
		Username: stringField(payload, "username"),
		Password: stringField(payload, "password"),
	}

	student, cookie, err := h.auth.Login(c.Request.Context(), principalFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookie(c, h.cookie, cookie)
	response.OK(c, student)
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie
// @Tags Authentication
// @Success 200
// @Router /auth/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c, h.cookie)
	middleware.ClearPrincipal(c)
	response.Status(c, http.StatusOK)
}

// Me godoc
// @Summary Current student
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.Student
// @Failure 401 {object} response.ErrorBody
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	student := principalFromContext(c)
	if student == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, student)
}

// Signup godoc
// @Summary Create student
// @Description Admin only. Listed tests get the new student mirrored in
// @Tags Students
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.StudentPayload true "Student payload"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.accounts.Signup(c.Request.Context(), principalFromContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Update godoc
// @Summary Update student
// @Description Admin only. Falsy fields are ignored
// @Tags Students
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentPayload true "Student payload"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /auth/{id} [put]
func (h *AuthHandler) Update(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.accounts.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Delete godoc
// @Summary Delete student
// @Description Admin only. Removes the student from every test; deleting yourself logs you out
// @Tags Students
// @Param id path string true "Student ID"
// @Success 200
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /auth/{id} [delete]
func (h *AuthHandler) Delete(c *gin.Context) {
	self, err := h.accounts.Delete(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if self {
		clearSessionCookie(c, h.cookie)
		middleware.ClearPrincipal(c)
	}
	response.Status(c, http.StatusOK)
}
