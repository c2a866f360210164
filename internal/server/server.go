package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/api"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/auth"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/config"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/logging"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the dashboard pages and the JSON API
type Server struct {
	router *gin.Engine
	api    *api.Handler
	logger *zap.Logger
}

// NewServer wires the API and the dashboard pages onto one gin engine.
func NewServer(cfg *config.AppConfig, st store.Backend, am *auth.Manager, logger *zap.Logger) (*Server, error) {
	logger = logging.OrNop(logger)
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir := config.ResolveDataDir(cfg)
	h := api.NewHandler(st, am, api.Options{
		RestrictStatusEdit: cfg.Auth.RestrictStatusEdit,
		ReportFilename:     cfg.Report.Filename,
		ReportSheetName:    cfg.Report.SheetName,
		UploadDir:          config.UploadDir(dataDir),
	}, logger.Named("api"))

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	// composite staff ids may contain escaped slashes
	router.UseRawPath = true
	// client IPs key the login limiter
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid server.trusted_proxies: %w", err)
	}
	router.Use(logging.Recovery(logger), logging.Middleware(logger.Named("http")))
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		router: router,
		api:    h,
		logger: logger,
	}
	s.setupRoutes(cfg.Server.DevMode)
	return s, nil
}

// setupRoutes registers page and API routes
func (s *Server) setupRoutes(devMode bool) {
	if devMode {
		// CORS for a separately served frontend
		s.router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
		})
	}

	s.api.RegisterRoutes(s.router.Group("/api"))

	pages := s.router.Group("/", s.api.SessionMiddleware())
	{
		pages.GET("/", s.dashboardPage)
		pages.GET("/login", s.loginPage)
		pages.POST("/login", s.loginSubmit)
		pages.POST("/logout", s.logoutSubmit)
		pages.POST("/upload", s.api.RequireAdmin(), s.uploadSubmit)
		pages.POST("/staff/:id/training-status", s.statusSubmit)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
