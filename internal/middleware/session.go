package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-tests-api/internal/models"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
	"github.com/noah-isme/school-tests-api/pkg/response"
)

// ContextStudentKey is the gin context key storing the acting student.
const ContextStudentKey = "currentStudent"

const contextResolvedKey = "sessionResolved"

// PrincipalResolver maps a signed session cookie to its student.
type PrincipalResolver interface {
	Resolve(ctx context.Context, cookie string) (*models.Student, error)
}

// Populate resolves the session cookie when present. It never rejects.
func Populate(resolver PrincipalResolver, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		resolve(c, resolver, cookieName, logger)
		c.Next()
	}
}

// Require rejects requests without a resolvable session.
func Require(resolver PrincipalResolver, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		student := Principal(c)
		if student == nil && !c.GetBool(contextResolvedKey) {
			student = resolve(c, resolver, cookieName, logger)
		}
		if student == nil {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func resolve(c *gin.Context, resolver PrincipalResolver, cookieName string, logger *zap.Logger) *models.Student {
	c.Set(contextResolvedKey, true)
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie == "" {
		ClearPrincipal(c)
		return nil
	}
	student, err := resolver.Resolve(c.Request.Context(), cookie)
	if err != nil {
		logger.Debug("session not resolved", zap.Error(err))
		ClearPrincipal(c)
		return nil
	}
	c.Set(ContextStudentKey, student)
	return student
}

// Principal returns the acting student, or nil when anonymous.
func Principal(c *gin.Context) *models.Student {
	value, ok := c.Get(ContextStudentKey)
	if !ok {
		return nil
	}
	student, _ := value.(*models.Student)
	return student
}

// ClearPrincipal drops the acting student for the rest of the request.
func ClearPrincipal(c *gin.Context) {
	c.Set(ContextStudentKey, (*models.Student)(nil))
}
