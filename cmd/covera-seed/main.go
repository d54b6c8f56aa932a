package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/compliance"
	repo "github.com/covera-app/covera/internal/repository"
	"github.com/covera-app/covera/internal/services/contract"
	"github.com/covera-app/covera/internal/services/vendor"
)

func main() {
	org := flag.String("org", "", "organization id (required)")
	csvPath := flag.String("csv", "", "import vendors from this CSV instead of seeding demo data")
	flag.Parse()

	cfg, err := common.LoadConfig(os.Getenv("COVERA_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)
	if *org == "" {
		logger.Error("usage: covera-seed -org <id> [-csv vendors.csv]")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	store, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := compliance.NewEngine(nil)
	vendors := vendor.NewService(repo.NewVendorRepository(store, logger), engine, nil, logger)
	contracts := contract.NewService(repo.NewContractRepository(store, logger), engine, nil, logger)

	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			logger.Error("open csv", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		res, err := vendors.ImportCSV(ctx, *org, f)
		if err != nil {
			logger.Error("import failed", "error", err)
			os.Exit(1)
		}
		for _, re := range res.Errors {
			logger.Warn("row skipped", "row", re.Row, "reason", re.Message)
		}
		logger.Info("import done", "org_id", *org, "created", len(res.Created), "skipped", len(res.Errors))
		return
	}

	vs, err := vendors.SeedDemo(ctx, *org)
	if err != nil {
		logger.Error("seed vendors", "error", err)
		os.Exit(1)
	}
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
		logger.Info("vendor seeded", "id", v.ID, "name", v.Name, "status", v.Status)
	}
	cs, err := contracts.SeedDemo(ctx, *org, ids)
	if err != nil {
		logger.Error("seed contracts", "error", err)
		os.Exit(1)
	}
	logger.Info("seed done", "org_id", *org, "vendors", len(vs), "contracts", len(cs))
}
