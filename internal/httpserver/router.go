package httpserver

import (
	"net/http"
	"time"

	"operator-panel/internal/config"
	"operator-panel/internal/repository/authstate"
	"operator-panel/internal/repository/session"
	"operator-panel/internal/service/customization"
	"operator-panel/internal/service/importer"
	"operator-panel/internal/service/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Deps carries the wired services and stores the router needs.
type Deps struct {
	Cfg              config.Config
	SearchSvc        *search.Service
	ImportSvc        *importer.Service
	CustomizationSvc *customization.Service
	Sessions         session.Repository
	AuthStates       authstate.Repository
}

// buildRouter wires routes for the app.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	// App Proxy surface, reached through the storefront domain. The
	// storefront page calls it cross-origin, hence the permissive CORS.
	proxy := router.Group("/proxy")
	proxy.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	proxy.Use(appProxyVerifier(deps.Cfg.APISecret, logger))
	proxy.GET("/customers", searchHandler(deps.SearchSvc, logger))
	proxy.POST("/import-customer", importHandler(deps.ImportSvc, logger))

	// Admin UI surface for managing the cc-ivr payment customization.
	admin := router.Group("/admin")
	admin.GET("/payment-customizations", listCustomizationsHandler(deps.CustomizationSvc, logger))
	admin.POST("/payment-customizations", createCustomizationHandler(deps.CustomizationSvc, logger))
	admin.POST("/payment-customizations/:id/enable", setCustomizationEnabledHandler(deps.CustomizationSvc, logger, true))
	admin.POST("/payment-customizations/:id/disable", setCustomizationEnabledHandler(deps.CustomizationSvc, logger, false))
	admin.DELETE("/payment-customizations/:id", deleteCustomizationHandler(deps.CustomizationSvc, logger))

	// Checkout-time decision boundary for the cc-ivr function.
	router.POST("/function/cart-payment-methods/run", paymentFunctionHandler())

	// OAuth install flow.
	router.GET("/auth", authBeginHandler(deps.Cfg, deps.AuthStates, logger))
	router.GET("/auth/callback", authCallbackHandler(deps.Cfg, deps.AuthStates, deps.Sessions, logger))

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
