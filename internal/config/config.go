package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Census   CensusConfig
	Ingest   IngestConfig
	Worker   WorkerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	StatisticsCacheTTL time.Duration
	POICacheTTL        time.Duration
}

// CensusConfig configures the client for the external statistics API.
type CensusConfig struct {
	BaseURL        string
	APIKey         string
	StateFIPS      string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryInterval  time.Duration
}

type IngestConfig struct {
	MaxTxOperations int
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			StatisticsCacheTTL: time.Duration(viper.GetInt("STATISTICS_CACHE_TTL")) * time.Second,
			POICacheTTL:        time.Duration(viper.GetInt("POI_CACHE_TTL")) * time.Second,
		},
		Census: CensusConfig{
			BaseURL:        viper.GetString("CENSUS_BASE_URL"),
			APIKey:         viper.GetString("CENSUS_API_KEY"),
			StateFIPS:      viper.GetString("CENSUS_STATE_FIPS"),
			RequestTimeout: time.Duration(viper.GetInt("CENSUS_REQUEST_TIMEOUT")) * time.Second,
			MaxRetries:     viper.GetInt("CENSUS_MAX_RETRIES"),
			RetryInterval:  time.Duration(viper.GetInt("CENSUS_RETRY_INTERVAL")) * time.Millisecond,
		},
		Ingest: IngestConfig{
			MaxTxOperations: viper.GetInt("INGEST_MAX_TX_OPERATIONS"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Set default values if not provided
	if cfg.Census.BaseURL == "" {
		cfg.Census.BaseURL = "https://api.census.gov/data"
	}
	if cfg.Census.StateFIPS == "" {
		cfg.Census.StateFIPS = "40"
	}
	if cfg.Census.RequestTimeout == 0 {
		cfg.Census.RequestTimeout = 30 * time.Second
	}
	if cfg.Census.MaxRetries == 0 {
		cfg.Census.MaxRetries = 3
	}
	if cfg.Census.RetryInterval == 0 {
		cfg.Census.RetryInterval = 500 * time.Millisecond
	}
	if cfg.Ingest.MaxTxOperations == 0 {
		cfg.Ingest.MaxTxOperations = 20
	}
	if cfg.Cache.StatisticsCacheTTL == 0 {
		cfg.Cache.StatisticsCacheTTL = time.Hour
	}
	if cfg.Cache.POICacheTTL == 0 {
		cfg.Cache.POICacheTTL = 15 * time.Minute
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "poi-recompute-workers"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
