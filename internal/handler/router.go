package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-tests-api/internal/middleware"
	"github.com/noah-isme/school-tests-api/internal/service"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
	"github.com/noah-isme/school-tests-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-tests-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-tests-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-tests-api/pkg/response"
)

// RouterDeps collects everything the HTTP surface needs.
type RouterDeps struct {
	Auth     *service.AuthService
	Students *service.StudentService
	Tests    *service.TestService
	Metrics  *service.MetricsService
	DB       Pinger
	Logger   *zap.Logger

	Cookie         CookieConfig
	AllowedOrigins []string
	EnableDocs     bool
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.Populate(deps.Auth, deps.Cookie.Name, log))

	requireSession := middleware.Require(deps.Auth, deps.Cookie.Name, log)

	authHandler := NewAuthHandler(deps.Auth, deps.Students, deps.Cookie)
	testHandler := NewTestHandler(deps.Tests)
	studentHandler := NewStudentHandler(deps.Students)
	exportHandler := NewExportHandler(deps.Tests)
	metricsHandler := NewMetricsHandler(deps.Metrics, deps.DB)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	auth := r.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
	auth.GET("/me", requireSession, authHandler.Me)
	auth.POST("/signup", requireSession, authHandler.Signup)
	auth.PUT("/:id", requireSession, authHandler.Update)
	auth.DELETE("/:id", requireSession, authHandler.Delete)

	tests := r.Group("/test")
	tests.GET("", testHandler.List)
	tests.GET("/:idOrDate", testHandler.Lookup)
	tests.POST("", requireSession, testHandler.Create)
	tests.PUT("/:id", requireSession, testHandler.Update)
	tests.DELETE("/:id", requireSession, testHandler.Delete)

	r.GET("/students/:id", requireSession, studentHandler.Get)
	r.GET("/export/tests", exportHandler.Tests)

	if deps.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrRouteNotFound)
	})

	return r
}
