package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-tests-api/internal/middleware"
	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

type authServiceMock struct {
	student       *models.Student
	cookie        string
	err           error
	lastReq       models.LoginRequest
	lastPrincipal *models.Student
}

func (m *authServiceMock) Login(ctx context.Context, principal *models.Student, req models.LoginRequest) (*models.Student, string, error) {
	m.lastReq = req
	m.lastPrincipal = principal
	return m.student, m.cookie, m.err
}

type accountServiceMock struct {
	student     *models.Student
	err         error
	selfDeleted bool
	lastActor   *models.Student
	lastID      string
	lastPayload validation.Payload
}

func (m *accountServiceMock) Signup(ctx context.Context, actor *models.Student, payload validation.Payload) (*models.Student, error) {
	m.lastActor, m.lastPayload = actor, payload
	return m.student, m.err
}

func (m *accountServiceMock) Update(ctx context.Context, actor *models.Student, id string, payload validation.Payload) (*models.Student, error) {
	m.lastActor, m.lastID, m.lastPayload = actor, id, payload
	return m.student, m.err
}

func (m *accountServiceMock) Delete(ctx context.Context, actor *models.Student, id string) (bool, error) {
	m.lastActor, m.lastID = actor, id
	return m.selfDeleted, m.err
}

var testCookie = CookieConfig{Name: "token", MaxAge: 72 * time.Hour}

func TestAuthHandlerLoginSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &authServiceMock{student: &models.Student{ID: "s-1", Username: "root", IsAdmin: true}, cookie: "s:jwt.sig"}
	handler := NewAuthHandler(auth, &accountServiceMock{}, testCookie)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"root","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LoginRequest{Username: "root", Password: "secret1"}, auth.lastReq)

	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, "token=s%3Ajwt.sig"), cookie)
	assert.Contains(t, cookie, "Max-Age=259200")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, w.Body.String(), `"_id":"s-1"`)
}

func TestAuthHandlerLoginError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := &authServiceMock{err: appErrors.ErrAlreadyLoggedIn}
	handler := NewAuthHandler(auth, &accountServiceMock{}, testCookie)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/auth/login", nil)
	admin := &models.Student{ID: "s-1", IsAdmin: true}
	c.Set(middleware.ContextStudentKey, admin)

	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"err":"You're already logged in"}`, w.Body.String())
	assert.Same(t, admin, auth.lastPrincipal)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{}, &accountServiceMock{}, testCookie)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/auth/logout", nil)
	c.Set(middleware.ContextStudentKey, &models.Student{ID: "s-1"})

	handler.Logout(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Nil(t, middleware.Principal(c))
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{}, &accountServiceMock{}, testCookie)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/auth/me", nil)
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"err":"You're not logged in"}`, w.Body.String())
}

func TestAuthHandlerUpdatePassesIDAndPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accounts := &accountServiceMock{student: &models.Student{ID: "s-2", Username: "bob"}}
	handler := NewAuthHandler(&authServiceMock{}, accounts, testCookie)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/auth/s-2", bytes.NewBufferString(`{"username":"bob"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s-2"}}
	admin := &models.Student{ID: "s-1", IsAdmin: true}
	c.Set(middleware.ContextStudentKey, admin)

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-2", accounts.lastID)
	assert.Same(t, admin, accounts.lastActor)
	assert.Equal(t, "bob", accounts.lastPayload["username"])
}

func TestAuthHandlerDeleteSelfClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	accounts := &accountServiceMock{selfDeleted: true}
	handler := NewAuthHandler(&authServiceMock{}, accounts, testCookie)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/auth/s-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "s-1"}}
	c.Set(middleware.ContextStudentKey, &models.Student{ID: "s-1"})

	handler.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=;")
	assert.Nil(t, middleware.Principal(c))

	accounts.selfDeleted = false
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/auth/s-2", nil)
	c.Set(middleware.ContextStudentKey, &models.Student{ID: "s-1", IsAdmin: true})
	handler.Delete(c)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
	assert.NotNil(t, middleware.Principal(c))
}
