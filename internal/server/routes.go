package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/export"
	"github.com/covera-app/covera/internal/normalize"
	"github.com/covera-app/covera/internal/repository"
	"github.com/covera-app/covera/internal/services/contract"
	"github.com/covera-app/covera/internal/services/documents"
	"github.com/covera-app/covera/internal/services/report"
	"github.com/covera-app/covera/internal/services/vendor"
)

// Dependencies holds everything the HTTP handlers need. Extractor may be nil
// when no model API key is configured; attach still works, /extract does not.
type Dependencies struct {
	Store          repository.KVStore
	Engine         *compliance.Engine
	Vendors        *vendor.Service
	Contracts      *contract.Service
	Reports        *report.Service
	Exports        *export.Service
	Extractor      documents.Extractor
	MaxUploadBytes int64
	Version        string
	Logger         *slog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Vendors   *VendorHandler
	Contracts *ContractHandler
	Reports   *ReportHandler
	Extract   *ExtractHandler
}

func NewHandlers(deps *Dependencies) *Handlers {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 20 << 20
	}
	if deps.Engine == nil {
		deps.Engine = compliance.NewEngine(nil)
	}
	up := uploads{max: deps.MaxUploadBytes}
	return &Handlers{
		Health:    &HealthHandler{store: deps.Store, version: deps.Version},
		Vendors:   &VendorHandler{svc: deps.Vendors, contracts: deps.Contracts, uploads: up},
		Contracts: &ContractHandler{svc: deps.Contracts, uploads: up},
		Reports:   &ReportHandler{reports: deps.Reports, exports: deps.Exports},
		Extract: &ExtractHandler{
			extractor:  deps.Extractor,
			normalizer: normalize.New(deps.Engine),
			uploads:    up,
			logger:     deps.Logger,
		},
	}
}

// NewEcho builds the configured echo instance with every route registered.
func NewEcho(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	h := NewHandlers(deps)
	e.HTTPErrorHandler = NewErrorHandler(deps.Logger)
	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(RequestLogger(deps.Logger))
	RegisterRoutes(e, h)
	return e
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.GET("/health", h.Health.HandleHealth)

	org := e.Group("/api/orgs/:org", OrgScope())

	org.GET("/vendors", h.Vendors.HandleList)
	org.POST("/vendors", h.Vendors.HandleCreate)
	org.POST("/vendors/import", h.Vendors.HandleImport)
	org.GET("/vendors/:id", h.Vendors.HandleGet)
	org.PUT("/vendors/:id", h.Vendors.HandleUpdate)
	org.DELETE("/vendors/:id", h.Vendors.HandleDelete)
	org.POST("/vendors/:id/documents", h.Vendors.HandleAttach)
	org.GET("/vendors.csv", h.Reports.HandleVendorsCSV)

	org.GET("/contracts", h.Contracts.HandleList)
	org.POST("/contracts", h.Contracts.HandleCreate)
	org.GET("/contracts/:id", h.Contracts.HandleGet)
	org.PUT("/contracts/:id", h.Contracts.HandleUpdate)
	org.DELETE("/contracts/:id", h.Contracts.HandleDelete)
	org.POST("/contracts/:id/documents", h.Contracts.HandleAttach)

	org.POST("/extract", h.Extract.HandleExtract)
	org.POST("/seed", h.Vendors.HandleSeed)

	org.GET("/reports/summary", h.Reports.HandleSummary)
	org.GET("/alerts", h.Reports.HandleAlerts)
	org.GET("/export.xlsx", h.Reports.HandleXLSX)
}
