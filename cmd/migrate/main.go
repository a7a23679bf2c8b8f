package main

import (
	"flag"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/tothtamas28/exchange/config"
	"github.com/tothtamas28/exchange/pkg/infra"
	"github.com/tothtamas28/exchange/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	undo := logging.Init(logging.DEBUG, "exchange-migrate")
	defer undo()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if cfg.JournalDB == nil {
		panic("journal_db config missing")
	}

	mgTool := infra.GetMigrateTool()
	mgTool.Migrate("file://migrations/sql", cfg.JournalDB.MigrationConnURL)
}
