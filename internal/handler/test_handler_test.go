package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-tests-api/internal/middleware"
	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
	"github.com/noah-isme/school-tests-api/pkg/export"
)

type testServiceMock struct {
	listResp    []models.Test
	lookupResp  *models.Test
	resp        *models.Test
	err         error
	lastKey     string
	lastActor   *models.Student
	lastPayload validation.Payload
	exportBody  []byte
	lastFormat  export.Format
}

func (m *testServiceMock) List(ctx context.Context) ([]models.Test, error) {
	return m.listResp, m.err
}

func (m *testServiceMock) Lookup(ctx context.Context, idOrDate string) (*models.Test, error) {
	m.lastKey = idOrDate
	return m.lookupResp, m.err
}

func (m *testServiceMock) Create(ctx context.Context, actor *models.Student, payload validation.Payload) (*models.Test, error) {
	m.lastActor, m.lastPayload = actor, payload
	return m.resp, m.err
}

func (m *testServiceMock) Update(ctx context.Context, actor *models.Student, id string, payload validation.Payload) (*models.Test, error) {
	m.lastActor, m.lastKey, m.lastPayload = actor, id, payload
	return m.resp, m.err
}

func (m *testServiceMock) Delete(ctx context.Context, actor *models.Student, id string) error {
	m.lastActor, m.lastKey = actor, id
	return m.err
}

func (m *testServiceMock) Export(ctx context.Context, format export.Format) ([]byte, error) {
	m.lastFormat = format
	return m.exportBody, m.err
}

func TestTestHandlerListEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTestHandler(&testServiceMock{listResp: []models.Test{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/test", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestTestHandlerLookupWritesNullWhenNothingMatches(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &testServiceMock{}
	handler := NewTestHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/test/2024-05-01", nil)
	c.Params = gin.Params{{Key: "idOrDate", Value: "2024-05-01"}}

	handler.Lookup(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
	assert.Equal(t, "2024-05-01", mockSvc.lastKey)
}

func TestTestHandlerCreatePassesPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &testServiceMock{resp: &models.Test{ID: "t-1", Subject: "Math"}}
	handler := NewTestHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(`{"subject":"Math"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	admin := &models.Student{ID: "s-1", IsAdmin: true}
	c.Set(middleware.ContextStudentKey, admin)

	handler.Create(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, admin, mockSvc.lastActor)
	assert.Equal(t, "Math", mockSvc.lastPayload["subject"])
	assert.Contains(t, w.Body.String(), `"subject":"Math"`)
}

func TestTestHandlerDeleteErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTestHandler(&testServiceMock{err: appErrors.ErrNotAdmin})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/test/t-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"err":"You're not an admin"}`, w.Body.String())
}

func TestTestHandlerHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTestHandler(&testServiceMock{err: appErrors.Internal(errors.New("connection reset"), "failed to list tests")})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/test", nil)

	handler.List(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"err":"Unknown error"}`, w.Body.String())
}

func TestExportHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &testServiceMock{exportBody: []byte("Date,Subject\n")}
	handler := NewExportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/export/tests", nil)
	handler.Tests(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, mockSvc.lastFormat)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=tests.csv", w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/export/tests?format=xlsx", nil)
	handler.Tests(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"err":"Invalid 'format' param"}`, w.Body.String())
}
