package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/auth"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/calculator"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/exporter"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/importer"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/logging"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/store"
)

// Options tune the handler beyond its dependencies.
type Options struct {
	RestrictStatusEdit bool   // only admins may change training status
	ReportFilename     string // download name of the export
	ReportSheetName    string
	UploadDir          string // uploads are spooled here; empty means os.TempDir
	MaxUploadBytes     int64
}

// Handler serves the dashboard API.
type Handler struct {
	store       store.Backend
	auth        *auth.Manager
	calc        *calculator.Calculator
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	opts        Options
	logger      *zap.Logger

	// serializes dataset writes (status edits, uploads)
	writeMu sync.Mutex
}

// NewHandler wires the handler and its import coordinator.
func NewHandler(st store.Backend, am *auth.Manager, opts Options, logger *zap.Logger) *Handler {
	logger = logging.OrNop(logger)
	if opts.ReportFilename == "" {
		opts.ReportFilename = exporter.DefaultFilename
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Handler{
		store:       st,
		auth:        am,
		calc:        calculator.NewCalculator(),
		coordinator: importer.NewCoordinator(st, logger.Named("importer")),
		exporter:    exporter.NewExporter(opts.ReportSheetName),
		opts:        opts,
		logger:      logger,
	}
}

// RegisterRoutes mounts the JSON API. The session middleware must run first.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.Use(h.SessionMiddleware())

	// system
	router.GET("/status", h.GetStatus)

	// session
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/session", h.GetSession)

	// dashboard
	router.GET("/filters", h.GetFilters)
	router.GET("/dashboard", h.GetDashboard)
	router.PATCH("/staff/:id/training-status", h.UpdateTrainingStatus)

	// data in/out
	router.POST("/import", h.RequireAdmin(), h.Import)
	router.GET("/export", h.Export)
}
