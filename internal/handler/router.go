package handler

import (
	"net/http"

	"bakery-flashsale/internal/domain/user"
	"bakery-flashsale/internal/handler/api"
	"bakery-flashsale/internal/handler/middleware"
	"bakery-flashsale/internal/metrics"
	"bakery-flashsale/internal/pkg/config"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Sale        *api.SaleHandler
	Reservation *api.ReservationHandler
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	m *metrics.Metrics,
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg, logger, m)
	setupRoutes(engine, m, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger.GetSlogLogger()))
	engine.Use(m.Middleware())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, logger.GetSlogLogger()))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, m *metrics.Metrics, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	operatorOnly := []gin.HandlerFunc{authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleOperator)}
	customerOnly := []gin.HandlerFunc{authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleCustomer)}
	serviceOnly := []gin.HandlerFunc{authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleService)}

	apiGroup := engine.Group("/api")
	{
		sales := apiGroup.Group("/sales")
		{
			addRoutes(sales, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Sale.Create, Mw: operatorOnly},
				{Method: http.MethodGet, Path: "/:saleId", Handler: h.Sale.Get},
				{Method: http.MethodPost, Path: "/:saleId/cancel", Handler: h.Sale.Cancel, Mw: operatorOnly},
				{Method: http.MethodGet, Path: "/:saleId/stock", Handler: h.Sale.Stock},
				{Method: http.MethodGet, Path: "/:saleId/items/:productId/stock", Handler: h.Sale.ItemStock},
				{Method: http.MethodGet, Path: "/:saleId/items/:productId/reservations", Handler: h.Reservation.ListOutstanding, Mw: customerOnly},
			})
		}

		reservations := apiGroup.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Reservation.Reserve, Mw: customerOnly},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.GetReservation, Mw: []gin.HandlerFunc{authMiddleware.RequireAuth()}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservation.Cancel, Mw: customerOnly},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Reservation.Confirm, Mw: serviceOnly},
				{Method: http.MethodPost, Path: "/:id/release", Handler: h.Reservation.Release, Mw: operatorOnly},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw[:len(r.Mw):len(r.Mw)], r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
