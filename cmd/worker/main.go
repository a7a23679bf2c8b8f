package main

import (
	"context"
	"flag"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/config"
	postgres_wrapper "github.com/tothtamas28/exchange/pkg/infra/postgres"
	"github.com/tothtamas28/exchange/pkg/logging"
	"github.com/tothtamas28/exchange/pkg/repo"
	"github.com/tothtamas28/exchange/pkg/worker"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	undo := logging.Init(logging.INFO, "exchange-worker")
	defer undo()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if cfg.JournalDB == nil || cfg.Kafka == nil {
		zap.S().Error("worker needs journal_db and kafka config")
		panic("incomplete config")
	}

	ctx := context.Background()

	db, err := postgres_wrapper.InitPostgres(cfg.JournalDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	journal := repo.NewJournal(db)

	w := worker.NewWorker(journal)
	if err := w.Start(ctx, *cfg.Kafka); err != nil {
		zap.S().Errorf("worker stopped with err: %v", err)
	}
}
