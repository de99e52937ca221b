package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okwera/fintrack/internal/config"
	"github.com/okwera/fintrack/internal/database"
	"github.com/okwera/fintrack/internal/database/repository"
	"github.com/okwera/fintrack/internal/logging"
	"github.com/okwera/fintrack/internal/prefs"
	"github.com/okwera/fintrack/internal/service"
	"github.com/okwera/fintrack/internal/testdata"
	"github.com/okwera/fintrack/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	logger, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer closeLog()

	// repositories
	txRepo := repository.NewTransactionRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	if len(os.Args) > 1 && os.Args[1] == "--seed" {
		if err := testdata.Seed(ctx, txRepo); err != nil {
			log.Fatalf("seed: %v", err)
		}
		fmt.Println("sample data inserted")
		return
	}

	// services
	tracker := service.NewTracker(txRepo, cfg.Rules(), logger)
	portability := service.NewPortability(txRepo, settingsRepo)

	uiPrefs, err := prefs.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("loading prefs failed, using defaults")
	}

	p := tea.NewProgram(tui.New(ctx,
		tui.Repos{Transactions: txRepo, Settings: settingsRepo},
		tui.Services{Tracker: tracker, Portability: portability},
		uiPrefs,
		cfg.Validation.FreeformCategories,
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
