package api

import (
	"net/http"

	"github.com/crestline-ir/internal/api/handlers"
	"github.com/crestline-ir/internal/api/middleware"
	"github.com/crestline-ir/internal/blob"
	"github.com/crestline-ir/internal/config"
	"github.com/crestline-ir/internal/services"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metrics        *metrics.MetricsCollector
	authHandler    *handlers.AuthHandler
	docHandler     *handlers.DocumentHandler
	adminDocs      *handlers.AdminDocumentHandler
	adminUsers     *handlers.AdminUserHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
}

type Services struct {
	Users    *services.UserService
	Access   *services.AccessService
	Versions *services.VersionService
	Grants   *services.GrantService
	Admin    *services.AdminService
	Audit    *services.AuditService
	Sessions *services.SessionService
}

func NewRouter(
	cfg *config.Configuration,
	svc Services,
	stores *store.Stores,
	blobs blob.Store,
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	authMiddleware := middleware.NewAuthMiddleware(svc.Sessions, stores.Users)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())

	return &Router{
		engine:         engine,
		logger:         logger,
		metrics:        metricsCollector,
		authHandler:    handlers.NewAuthHandler(svc.Users, svc.Sessions, cfg, logger),
		docHandler:     handlers.NewDocumentHandler(svc.Access, svc.Users, blobs, cfg, logger),
		adminDocs:      handlers.NewAdminDocumentHandler(svc.Versions, svc.Grants, blobs, logger),
		adminUsers:     handlers.NewAdminUserHandler(svc.Users, svc.Admin, svc.Audit, logger),
		authMiddleware: authMiddleware,
		reqMiddleware:  reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "crestline"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
			"sizes":     r.metrics.GetSizes(),
		})
	})

	r.engine.POST("/login", r.authHandler.Login)
	r.engine.GET("/logout", r.authHandler.Logout)
	r.engine.POST("/webhooks/esign", r.authHandler.EsignWebhook)

	authorized := r.engine.Group("/")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.GET("/documents", r.docHandler.ListDocuments)
		authorized.GET("/documents/:id/download", r.docHandler.DownloadDocument)
		authorized.GET("/nda", r.docHandler.NdaStatus)
	}

	admin := r.engine.Group("/admin")
	admin.Use(r.authMiddleware.RequireAuth(), r.authMiddleware.RequireAdmin())
	{
		admin.POST("/documents", r.adminDocs.CreateDocument)
		admin.DELETE("/documents/:id", r.adminDocs.DeleteDocument)
		admin.GET("/documents/:id/versions", r.adminDocs.ListVersions)
		admin.POST("/documents/:id/versions", r.adminDocs.CreateVersion)
		admin.POST("/documents/:id/versions/:version/restore", r.adminDocs.RestoreVersion)
		admin.DELETE("/documents/:id/versions/:version", r.adminDocs.DeleteVersion)
		admin.GET("/documents/:id/grants", r.adminDocs.ListGrants)
		admin.PUT("/documents/:id/grants", r.adminDocs.SyncGrants)
		admin.POST("/documents/:id/grants/:userID", r.adminDocs.AddGrant)
		admin.DELETE("/documents/:id/grants/:userID", r.adminDocs.RevokeGrant)

		admin.GET("/users", r.adminUsers.ListUsers)
		admin.POST("/users", r.adminUsers.CreateUser)
		admin.POST("/users/:id/nda/reset", r.adminUsers.ResetNda)
		admin.PUT("/users/:id/role", r.adminUsers.ChangeRole)

		admin.POST("/bulk/nda-reset", r.adminUsers.BulkResetNdas)
		admin.POST("/bulk/assign-documents", r.adminUsers.BulkAssignAllDocuments)
		admin.POST("/bulk/role", r.adminUsers.BulkChangeRole)
		admin.POST("/bulk/delete-users", r.adminUsers.BulkDeleteUsers)

		admin.GET("/activity", r.adminUsers.ListActivity)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
