// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environement variables.
type Config struct {
	DBDriver         string        `mapstructure:"DB_DRIVER"`
	DBSource         string        `mapstructure:"DB_SOURCE"`
	ServerAddress    string        `mapstructure:"SERVER_ADDRESS"`
	LedgerBaseURL    string        `mapstructure:"LEDGER_BASE_URL"`
	LedgerTimeout    time.Duration `mapstructure:"LEDGER_TIMEOUT"`
	RedisAddress     string        `mapstructure:"REDIS_ADDRESS"`
	EventChannel     string        `mapstructure:"EVENT_CHANNEL"`
	ReconcileWorkers int           `mapstructure:"RECONCILE_WORKERS"`
	Environement     string        `mapstructure:"GO_ENV"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	if c.ReconcileWorkers <= 0 {
		c.ReconcileWorkers = 8
	}

	if c.EventChannel == "" {
		c.EventChannel = "wallet.events"
	}

	return c, nil
}
