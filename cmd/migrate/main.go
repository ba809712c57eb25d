// Command migrate applies the goose migrations embedded in the migrations
// package.
//
//	migrate up | down | status | redo | version | reset | up-to VERSION
package main

import (
	"context"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/migrations"
	"github.com/noah-isme/sma-teamwork-api/pkg/config"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
	"github.com/noah-isme/sma-teamwork-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zap.NewStdLog(logr))
	if err := goose.SetDialect("postgres"); err != nil {
		logr.Fatal("failed to set goose dialect", zap.Error(err))
	}

	if err := goose.RunContext(ctx, command, db.DB, ".", args...); err != nil {
		logr.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
	logr.Info("migration finished", zap.String("command", command))
}
