package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertystore/internal/authz"
	"propertystore/internal/cache"
	"propertystore/internal/handlers"
	"propertystore/internal/middleware"
)

// Handlers — всё, что нужно маршрутам.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Clients   *handlers.ClientHandler
	Deals     *handlers.DealHandler
	Pipelines *handlers.PipelineHandler
	Requests  *handlers.RequestHandler
	Props     *handlers.PropertyHandler
	Analytics *handlers.AnalyticsHandler
	Portal    *handlers.PortalHandler
	Documents *handlers.DocumentHandler
	Board     *handlers.BoardHandler
	Health    gin.HandlerFunc
}

type Options struct {
	Tokens         *authz.Tokens
	Cache          cache.Cache // для Idempotency-Key, может быть nil
	IdempotencyTTL time.Duration
	Log            logrus.FieldLogger
}

func SetupRoutes(r *gin.Engine, h Handlers, opt Options) *gin.Engine {
	if opt.IdempotencyTTL == 0 {
		opt.IdempotencyTTL = 10 * time.Minute
	}
	auth := middleware.Auth(opt.Tokens)
	idem := middleware.Idempotency(opt.Cache, opt.IdempotencyTTL, opt.Log)
	staff := middleware.RequireStaff()

	if h.Health != nil {
		r.GET("/healthz", h.Health)
	}

	api := r.Group("/api")

	// ---- public
	api.GET("/Properties", h.Props.List)
	api.GET("/Properties/:id", h.Props.GetByID)
	api.POST("/Requests", idem, h.Requests.Create)
	api.POST("/requests", idem, h.Requests.Create)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/client/auth/login", h.Auth.ClientLogin)

	// ---- realtor
	rt := api.Group("", auth, staff, idem)
	{
		rt.GET("/users/me", h.Users.Me)
		rt.POST("/users", middleware.RequireRoles(authz.RoleAdmin), h.Users.Create)

		props := rt.Group("/Properties")
		props.GET("/all", h.Props.ListAll)
		props.POST("", h.Props.Create)
		props.PUT("/:id", h.Props.Update)
		props.DELETE("/:id", h.Props.Delete)
		props.POST("/:id/images", h.Props.AddImage)
		props.DELETE("/:id/images/:imageId", h.Props.DeleteImage)
		props.PUT("/:id/images/:imageId/main", h.Props.SetMainImage)
		rt.POST("/FileUpload/property-image", h.Props.UploadImage)

		// фронтенд обращается и к /Clients, и к /clients, то же с заявками
		for _, prefix := range []string{"/Clients", "/clients"} {
			clients := rt.Group(prefix)
			clients.GET("", h.Clients.List)
			clients.POST("", h.Clients.Create)
			clients.GET("/:id", h.Clients.GetByID)
			clients.PUT("/:id", h.Clients.Update)
			clients.DELETE("/:id", h.Clients.Delete)
			clients.GET("/:id/requests", h.Clients.Requests)
			clients.GET("/:id/documents", h.Documents.List)
			clients.POST("/:id/documents", h.Documents.Upload)
			clients.GET("/:id/documents/:docId/download", h.Documents.Download)
			clients.DELETE("/:id/documents/:docId", h.Documents.Delete)
		}

		for _, prefix := range []string{"/Requests", "/requests"} {
			reqs := rt.Group(prefix)
			reqs.GET("", h.Requests.List)
			reqs.GET("/status/:status", h.Requests.List)
			reqs.GET("/:id", h.Requests.GetByID)
			reqs.PUT("/:id/status", h.Requests.UpdateStatus)
			reqs.POST("/:id/promote", h.Requests.Promote)
		}

		deals := rt.Group("/deals")
		deals.GET("", h.Deals.List)
		deals.POST("", h.Deals.Create)
		deals.GET("/active", h.Deals.Active)
		deals.GET("/overdue", h.Deals.Overdue)
		deals.GET("/trend", h.Analytics.Trend)
		deals.GET("/pipeline/:id", h.Deals.ByPipeline)
		deals.GET("/pipeline/:id/analytics", h.Analytics.PipelineSummary)
		deals.GET("/pipeline/:id/stages-analytics", h.Analytics.StageStats)
		deals.GET("/pipeline/:id/funnel", h.Analytics.Funnel)
		deals.GET("/pipeline/:id/property-types", h.Analytics.PropertyTypes)
		deals.GET("/:id", h.Deals.GetByID)
		deals.PUT("/:id", h.Deals.Update)
		deals.DELETE("/:id", h.Deals.Delete)
		deals.GET("/:id/with-details", h.Deals.WithDetails)
		deals.PUT("/:id/move-stage", h.Deals.MoveStage)
		deals.PUT("/:id/close", h.Deals.Close)
		deals.PUT("/:id/reopen", h.Deals.Reopen)
		deals.GET("/:id/summary.pdf", h.Deals.SummaryPDF)

		rt.GET("/dealstages/pipeline/:pipelineId", h.Pipelines.Stages)
		rt.POST("/dealstages/pipeline/:pipelineId", h.Pipelines.AddStage)

		pipelines := rt.Group("/pipelines")
		pipelines.GET("", h.Pipelines.List)
		pipelines.POST("", h.Pipelines.Create)
		pipelines.GET("/:id", h.Pipelines.GetByID)

		rt.GET("/dashboard/metrics", h.Analytics.Dashboard)
		rt.POST("/client/auth/activate", h.Auth.Activate)
	}

	// ---- client portal
	cl := api.Group("/client", auth, middleware.RequireRoles(authz.RoleClient), idem)
	{
		cl.POST("/auth/change-password", h.Auth.ChangePassword)
		cl.POST("/auth/consent", h.Auth.Consent)
		cl.GET("/profile", h.Portal.Profile)
		cl.GET("/profile/deals", h.Portal.Deals)
		cl.GET("/profile/deals/:id", h.Portal.Deal)
		cl.GET("/documents", h.Documents.List)
		cl.POST("/documents", h.Documents.Upload)
		cl.GET("/documents/:docId/download", h.Documents.Download)
		cl.DELETE("/documents/:docId", h.Documents.Delete)
	}

	// токен в ?access_token=, браузер не ставит заголовки на WebSocket
	r.GET("/ws/board", auth, staff, h.Board.ServeWS)

	return r
}
