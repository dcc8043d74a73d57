package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"go-inventory-bom/internal/config"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/internal/service"
	"go-inventory-bom/pkg/database"
	"go-inventory-bom/pkg/logger"
)

// rebuild-unit-rates repairs cached RateToRoot values, e.g. rows written before descendant
// recomputation existed or edited by hand.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env file not found, relying on system env")
	}
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.GetLogger()

	db, err := database.Open(cfg.DatabaseOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}

	changed, err := service.RebuildUnitRates(context.Background(), db, repository.NewUnitRepo(db))
	if err != nil {
		logger.LogError(log, "rebuild-unit-rates", "main", "rebuild failed, nothing written", nil, err)
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{"changed": changed}).Info("unit rates rebuilt")
}
