package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the client layer reads at startup.
type Config struct {
	BackendURL     string        `mapstructure:"BACKEND_URL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFile        string        `mapstructure:"LOG_FILE"`
	JaegerAddress  string        `mapstructure:"JAEGER_ADDRESS"`
	CasbinModel    string        `mapstructure:"CASBIN_MODEL"`
	CasbinPolicy   string        `mapstructure:"CASBIN_POLICY"`
	StrictGuard    bool          `mapstructure:"STRICT_GUARD"`
}

// Load reads config.yaml when present and lets environment variables
// override everything.
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("BACKEND_URL", "http://localhost:8080")
	viper.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("JAEGER_ADDRESS", "")
	viper.SetDefault("CASBIN_MODEL", "./rbac_model.conf")
	viper.SetDefault("CASBIN_POLICY", "./policy.csv")
	viper.SetDefault("STRICT_GUARD", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	return cfg
}
