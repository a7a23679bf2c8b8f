package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tothtamas28/exchange/config"
	"github.com/tothtamas28/exchange/pkg/exchange"
	"github.com/tothtamas28/exchange/pkg/feed"
	"github.com/tothtamas28/exchange/pkg/httpgw"
	redis_wrapper "github.com/tothtamas28/exchange/pkg/infra/redis"
	"github.com/tothtamas28/exchange/pkg/logging"
	"github.com/tothtamas28/exchange/pkg/marketdata"
	"github.com/tothtamas28/exchange/pkg/notify"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	undo := logging.Init(logging.INFO, "exchange")
	defer undo()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	dispatcher := notify.NewDispatcher(notify.NewWebhookDeliverer(cfg.Webhook), 1024, 4)
	defer dispatcher.Close()

	opts := []exchange.Option{
		exchange.WithNotifier(dispatcher),
	}

	if cfg.Kafka != nil {
		publisher := feed.NewPublisher(*cfg.Kafka)
		defer publisher.Close()
		opts = append(opts,
			exchange.WithNotifier(publisher),
			exchange.WithTradeCallback(publisher.OnTrade),
		)
	}

	if cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Errorf("init redis fail with err: %v", err)
			panic(err)
		}
		ticker := marketdata.NewTicker(rdb)
		opts = append(opts, exchange.WithTradeCallback(ticker.OnTrade))
	}

	ex := exchange.New(cfg.Pair, opts...)

	app := httpgw.NewApp(ex)
	go func() {
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			zap.S().Errorf("http listen fail with err: %v", err)
		}
	}()
	zap.S().Infof("%s serving %s on %s", cfg.ServiceName, cfg.Pair.Symbol(), cfg.HTTP.Addr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	fmt.Println("Shutting down...")

	_ = app.Shutdown()

	fmt.Println("Exited cleanly.")
}
