package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/erp/console/internal/application/screen"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/infrastructure/logger"
	"github.com/erp/console/internal/infrastructure/telemetry"
	"github.com/erp/console/internal/interfaces/http/handler"
	"github.com/erp/console/internal/interfaces/http/middleware"
)

// Config holds the settings of the console HTTP surface
type Config struct {
	Name        string
	Version     string
	APIVersion  string
	APIURL      string
	LoginPath   string
	LandingPath string
	MetricsPath string
	MaxBodySize int64
	CORS        middleware.CORSConfig
	Tracing     middleware.TracingConfig
	// LoginLimiter throttles POST /auth/login per client IP; nil disables it
	LoginLimiter *middleware.RateLimiter
}

// Deps are the collaborators the routes are served from
type Deps struct {
	Logger   *zap.Logger
	Sessions handler.Sessions
	Screens  *screen.Registry
	Markers  *screen.MarkerStore
	// Metrics enables request metrics and the scrape endpoint when set
	Metrics *prometheus.Registry
}

// New builds the gin engine serving the console API. Middleware order:
// request ID, recovery, access log, security headers, CORS, tracing,
// request metrics, body limit.
func New(cfg Config, deps Deps) *gin.Engine {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing)...)
	if deps.Metrics != nil {
		engine.Use(middleware.NewHTTPMetrics(deps.Metrics).Middleware())
		engine.GET(cfg.MetricsPath, gin.WrapH(telemetry.Handler(deps.Metrics)))
	}
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	var opts []RouterOption
	if cfg.APIVersion != "" {
		opts = append(opts, WithAPIVersion(cfg.APIVersion))
	}
	r := NewRouter(engine, opts...)

	system := handler.NewSystemHandler(cfg.Name, cfg.Version, cfg.APIURL)
	engine.GET("/health", system.Health)
	r.Register(NewDomainGroup("system", "").GET("/health", system.Health))

	r.Register(authRoutes(cfg, deps))
	if products, ok := deps.Screens.Products(); ok {
		r.Register(productRoutes(cfg, deps, products))
	}
	r.Register(screenRoutes(cfg, deps, r.Prefix()))
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		h := handler.BaseHandler{}
		h.NotFound(c, "Route not found")
	})
	return engine
}

func guardFor(cfg Config, deps Deps, roles middleware.RolesFunc) gin.HandlerFunc {
	return middleware.Guard(middleware.GuardConfig{
		Sessions:    deps.Sessions,
		Roles:       roles,
		LoginPath:   cfg.LoginPath,
		LandingPath: cfg.LandingPath,
	})
}

func authRoutes(cfg Config, deps Deps) *DomainGroup {
	auth := handler.NewAuthHandler(deps.Sessions, cfg.LoginPath, cfg.LandingPath)
	g := NewDomainGroup("auth", "/auth")

	login := []gin.HandlerFunc{auth.Login}
	if cfg.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(cfg.LoginLimiter)}, login...)
	}
	g.POST("/login", login...)
	g.POST("/logout", auth.Logout)
	g.GET("/session", auth.Session)
	return g
}

func productRoutes(cfg Config, deps Deps, products *screen.ProductScreen) *DomainGroup {
	h := handler.NewProductHandler(products)
	g := NewDomainGroup("products", "/products").
		Use(guardFor(cfg, deps, middleware.Roles(products.Meta().Roles...)))
	g.GET("/options/packing-units", h.PackingUnits)
	g.GET("/options/pouches", h.Pouches)
	g.POST("/select", h.Select)
	return g
}

// screenRoles requires the roles of the screen named by :entity. Unknown
// screens pass the guard and are answered 404 by the handler.
func screenRoles(screens *screen.Registry) middleware.RolesFunc {
	return func(c *gin.Context) []identity.Role {
		if s, ok := screens.Get(c.Param("entity")); ok {
			return s.Meta().Roles
		}
		return nil
	}
}

func screenRoutes(cfg Config, deps Deps, prefix string) *DomainGroup {
	h := handler.NewScreenHandler(deps.Screens, deps.Markers, prefix)

	root := NewDomainGroup("screens", "")
	root.Group("navigation", "").
		Use(guardFor(cfg, deps, nil)).
		GET("/navigation", h.Navigation)

	g := root.Group("entities", "").Use(guardFor(cfg, deps, screenRoles(deps.Screens)))
	g.GET("/:entity", h.List)
	g.POST("/:entity", h.Create)
	g.GET("/:entity/new", h.NewForm)
	g.GET("/:entity/:id", h.Detail)
	g.PUT("/:entity/:id", h.Update)
	g.DELETE("/:entity/:id", h.Delete)
	g.GET("/:entity/:id/form", h.EditForm)
	g.GET("/:entity/:id/print", h.Print)
	g.GET("/:entity/:id/print.pdf", h.PrintPDF)
	g.POST("/:entity/:id/print-marker", h.PrintMarker)
	return root
}
