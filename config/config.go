package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	WebPort               int           `mapstructure:"WEB_PORT"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	TaxonomyPath          string        `mapstructure:"TAXONOMY_PATH"`
	CatalogPath           string        `mapstructure:"CATALOG_PATH"`
	CatalogSource         string        `mapstructure:"CATALOG_SOURCE"`
	EmbeddingHost         string        `mapstructure:"EMBEDDING_HOST"`
	EmbeddingTimeout      time.Duration `mapstructure:"EMBEDDING_TIMEOUT"`
	PassageLimit          int           `mapstructure:"PASSAGE_LIMIT"`
	RetrievalEnabled      bool          `mapstructure:"RETRIEVAL_ENABLED"`
	DefaultTimeBudget     int           `mapstructure:"DEFAULT_TIME_BUDGET_MINUTES"`
	MinutesPerUnit        int           `mapstructure:"MINUTES_PER_UNIT"`
	MaxPathItems          int           `mapstructure:"MAX_PATH_ITEMS"`
	ResponseCacheSize     int           `mapstructure:"RESPONSE_CACHE_SIZE"`
	ClarifyThreshold      int           `mapstructure:"CLARIFY_THRESHOLD"`
	DirectAnswerThreshold int           `mapstructure:"DIRECT_ANSWER_THRESHOLD"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("WEB_PORT", 8084)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("TAXONOMY_PATH", "./data/taxonomy.yaml")
	viper.SetDefault("CATALOG_PATH", "./data/catalog.yaml")
	viper.SetDefault("CATALOG_SOURCE", "yaml")
	viper.SetDefault("EMBEDDING_HOST", "http://localhost:8081")
	viper.SetDefault("EMBEDDING_TIMEOUT", 30)
	viper.SetDefault("PASSAGE_LIMIT", 8)
	viper.SetDefault("RETRIEVAL_ENABLED", false)
	viper.SetDefault("DEFAULT_TIME_BUDGET_MINUTES", 120)
	viper.SetDefault("MINUTES_PER_UNIT", 12)
	viper.SetDefault("MAX_PATH_ITEMS", 12)
	viper.SetDefault("RESPONSE_CACHE_SIZE", 256)
	viper.SetDefault("CLARIFY_THRESHOLD", 50)
	viper.SetDefault("DIRECT_ANSWER_THRESHOLD", 75)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.CatalogSource = strings.ToLower(strings.TrimSpace(config.CatalogSource))
	if config.CatalogSource == "" {
		config.CatalogSource = "yaml"
	}
	if config.ClarifyThreshold <= 0 || config.ClarifyThreshold >= config.DirectAnswerThreshold {
		config.ClarifyThreshold = 50
		config.DirectAnswerThreshold = 75
	}
	if config.MinutesPerUnit <= 0 {
		config.MinutesPerUnit = 12
	}

	// Convert seconds to proper time.Duration
	config.EmbeddingTimeout = config.EmbeddingTimeout * time.Second

	return &config
}
