package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/compliance"
	"github.com/covera-app/covera/internal/export"
	"github.com/covera-app/covera/internal/extraction"
	repo "github.com/covera-app/covera/internal/repository"
	"github.com/covera-app/covera/internal/server"
	"github.com/covera-app/covera/internal/services/contract"
	"github.com/covera-app/covera/internal/services/documents"
	"github.com/covera-app/covera/internal/services/report"
	"github.com/covera-app/covera/internal/services/vendor"
)

// Version is set at build time.
var Version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("COVERA_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer store.Close()
	if err := repo.HealthCheck(ctx, store, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping store", "error", err)
		os.Exit(1)
	}

	// Without an API key the API still serves; attach skips extraction and
	// /extract answers 503.
	var extractor documents.Extractor
	if svc, err := extraction.NewFromConfig(cfg, logger); err != nil {
		logger.Warn("document extraction disabled", "error", err)
	} else {
		extractor = svc
	}

	engine := compliance.NewEngine(nil)
	vendors := vendor.NewService(repo.NewVendorRepository(store, logger), engine, extractor, logger)
	contracts := contract.NewService(repo.NewContractRepository(store, logger), engine, extractor, logger)
	reports := report.NewService(vendors, contracts, engine, logger)

	e := server.NewEcho(&server.Dependencies{
		Store:          store,
		Engine:         engine,
		Vendors:        vendors,
		Contracts:      contracts,
		Reports:        reports,
		Exports:        export.NewService(reports, logger),
		Extractor:      extractor,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Version:        Version,
		Logger:         logger,
	})
	gs, hs := server.NewGRPCServer(server.NewComplianceService(engine, reports, logger), logger)

	g, gctx := errgroup.WithContext(ctx)
	if addr := cfg.Server.HTTPAddr; addr != "" {
		g.Go(func() error {
			logger.Info("coverad http listening", "addr", addr, "version", Version)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if addr := cfg.Server.GRPCAddr; addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", addr, "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			logger.Info("coverad grpc listening", "addr", addr)
			return gs.Serve(lis)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hs.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := e.Shutdown(shutdownCtx)
		gs.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
