package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Update    UpdateConfig    `mapstructure:"update"`
	Engine    EngineConfig    `mapstructure:"engine"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// UpdateConfig controls the signature database refresh cycle.
type UpdateConfig struct {
	DataURL       string        `mapstructure:"data_url"`
	TipsURL       string        `mapstructure:"tips_url"`
	SponsorURL    string        `mapstructure:"sponsor_url"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
	ScheduleEvery time.Duration `mapstructure:"schedule_every"`
	Enabled       bool          `mapstructure:"enabled"`
}

// EngineConfig controls matching-engine behavior.
type EngineConfig struct {
	ThrottleWindow  time.Duration `mapstructure:"throttle_window"`
	DomainCacheSize int           `mapstructure:"domain_cache_size"`
	SignalQueueSize int           `mapstructure:"signal_queue_size"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/parsaban")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("PARSABAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("database.host", "PARSABAN_DATABASE_HOST")
	v.BindEnv("database.port", "PARSABAN_DATABASE_PORT")
	v.BindEnv("database.user", "PARSABAN_DATABASE_USER")
	v.BindEnv("database.password", "PARSABAN_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "PARSABAN_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "PARSABAN_DATABASE_SSLMODE")
	v.BindEnv("redis.host", "PARSABAN_REDIS_HOST")
	v.BindEnv("redis.port", "PARSABAN_REDIS_PORT")
	v.BindEnv("redis.password", "PARSABAN_REDIS_PASSWORD")
	v.BindEnv("update.data_url", "PARSABAN_UPDATE_DATA_URL")
	v.BindEnv("update.tips_url", "PARSABAN_UPDATE_TIPS_URL")
	v.BindEnv("update.sponsor_url", "PARSABAN_UPDATE_SPONSOR_URL")
	v.BindEnv("app.environment", "PARSABAN_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "parsaban")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "dev")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "parsaban")
	v.SetDefault("database.dbname", "parsaban")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "parsaban:")

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("update.fetch_timeout", 30*time.Second)
	v.SetDefault("update.min_interval", 15*time.Minute)
	v.SetDefault("update.schedule_every", 6*time.Hour)
	v.SetDefault("update.enabled", true)

	v.SetDefault("engine.throttle_window", 2*time.Minute)
	v.SetDefault("engine.domain_cache_size", 100)
	v.SetDefault("engine.signal_queue_size", 256)
}
