package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tothtamas28/exchange/pkg/feed"
	postgres_wrapper "github.com/tothtamas28/exchange/pkg/infra/postgres"
	redis_wrapper "github.com/tothtamas28/exchange/pkg/infra/redis"
	"github.com/tothtamas28/exchange/pkg/model"
	"github.com/tothtamas28/exchange/pkg/notify"
)

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	ServiceName string     `yaml:"service_name"`
	Pair        model.Pair `yaml:"pair"`
	HTTP        HTTPConfig `yaml:"http"`

	Webhook *notify.WebhookConfig `yaml:"webhook"`

	// optional sinks; nil disables the component
	JournalDB *postgres_wrapper.PostgresConfig `yaml:"journal_db"`
	Redis     *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka     *feed.Config                     `yaml:"kafka"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)

	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	cfg.applyDefaults()

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "exchange"
	}
	if c.Pair.Base == "" {
		c.Pair = model.Pair{Base: "BTC", Quote: "USD"}
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Kafka != nil {
		c.Kafka.WithDefaults()
	}
}
