package main

import (
	"context"
	"flag"
	"log"

	"ai-teacher/internal/config"
	"ai-teacher/internal/database"
	"ai-teacher/internal/logger"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "database/migrations", "directory containing *.up.sql files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.NewSQLXOracleDB(ctx, cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, *dir); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
	l.Info("Migrations complete", zap.String("dir", *dir))
}
