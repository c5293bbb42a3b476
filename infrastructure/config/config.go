package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Cors     CorsConfig
	Logger   LoggerConfig
	Jaeger   JaegerConfig
	Sentry   SentryConfig
	Room     RoomConfig
	Realtime RealtimeConfig
}

type ServerConfig struct {
	InternalPort string
	ExternalPort string
	RunMode      string
	Domain       string
	LobbyPath    string
}

type LoggerConfig struct {
	FilePath   string
	Encoding   string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type PostgresConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	DbName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	Db           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	PoolTimeout  time.Duration
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type CorsConfig struct {
	AllowOrigins string
}

type JaegerConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
}

type SentryConfig struct {
	Dsn            string
	Debug          bool
	SendDefaultPII bool
}

type RoomConfig struct {
	// Capacity is the maximum number of admitted members per room.
	Capacity int
	// DefaultTTLSeconds replaces any requested TTL that is not in AllowedTTLSeconds.
	DefaultTTLSeconds  int
	AllowedTTLSeconds  []int
	DefaultPageSize    int
	MaxPageSize        int
	EventHistoryLength int
	AnalyticsTimeout   time.Duration
}

type RealtimeConfig struct {
	// Driver selects the broadcaster backend: "redis" or "amqp".
	Driver         string
	ChannelPrefix  string
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	ClientBufferSz int
}

func GetConfig() *Config {
	cfgPath := getConfigPath(os.Getenv("APP_ENV"))
	v, err := LoadConfig(cfgPath, "yml")
	if err != nil {
		log.Fatalf("Error in load config %v", err)
	}

	cfg, err := ParseConfig(v)
	if err != nil {
		log.Fatalf("Error in parse config %v", err)
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.ExternalPort = envPort
		log.Printf("Set external port from environment -> %s", cfg.Server.ExternalPort)
	} else {
		log.Printf("Using external port from config -> %s", cfg.Server.ExternalPort)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		log.Printf("Unable to parse config: %v", err)
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func LoadConfig(filename string, fileType string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigName(filename)

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./infrastructure/config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../infrastructure/config")
	v.AddConfigPath("../../infrastructure/config") // from cmd/api

	if wd, err := os.Getwd(); err == nil {
		v.AddConfigPath(filepath.Join(wd, "config"))
		v.AddConfigPath(filepath.Join(wd, "infrastructure", "config"))
	}

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		log.Printf("Unable to read config: %v", err)
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())
	return v, nil
}

func getConfigPath(env string) string {
	switch env {
	case "docker":
		return "config-docker"
	case "production":
		return "config-production"
	default:
		return "config-development"
	}
}

func (c *Config) applyDefaults() {
	if c.Server.LobbyPath == "" {
		c.Server.LobbyPath = "/anonymous"
	}
	if c.Room.Capacity <= 0 {
		c.Room.Capacity = 2
	}
	if c.Room.DefaultTTLSeconds <= 0 {
		c.Room.DefaultTTLSeconds = 600
	}
	if len(c.Room.AllowedTTLSeconds) == 0 {
		c.Room.AllowedTTLSeconds = []int{600, 1800, 3600, 43200, 86400}
	}
	if c.Room.DefaultPageSize <= 0 {
		c.Room.DefaultPageSize = 50
	}
	if c.Room.MaxPageSize <= 0 {
		c.Room.MaxPageSize = 200
	}
	if c.Room.EventHistoryLength <= 0 {
		c.Room.EventHistoryLength = 100
	}
	if c.Room.AnalyticsTimeout <= 0 {
		c.Room.AnalyticsTimeout = 5 * time.Second
	}
	if c.Realtime.Driver == "" {
		c.Realtime.Driver = "redis"
	}
	if c.Realtime.ChannelPrefix == "" {
		c.Realtime.ChannelPrefix = "realtime:"
	}
	if c.Realtime.WriteTimeout <= 0 {
		c.Realtime.WriteTimeout = 10 * time.Second
	}
	if c.Realtime.PongTimeout <= 0 {
		c.Realtime.PongTimeout = 60 * time.Second
	}
	if c.Realtime.ClientBufferSz <= 0 {
		c.Realtime.ClientBufferSz = 64
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "rooms"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.InternalPort == "" {
		return errors.New("server.internalPort is required")
	}
	if c.Server.ExternalPort == "" {
		return errors.New("server.externalPort is required")
	}
	if c.Server.Domain == "" {
		return errors.New("server.domain is required")
	}

	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			return errors.New("postgres.host is required")
		}
		if c.Postgres.Port == "" {
			return errors.New("postgres.port is required")
		}
		if c.Postgres.DbName == "" {
			return errors.New("postgres.dbName is required")
		}
	}

	if c.Redis.Host == "" {
		return errors.New("redis.host is required")
	}
	if c.Redis.Port == "" {
		return errors.New("redis.port is required")
	}

	if c.Room.Capacity < 1 {
		return errors.New("room.capacity must be at least 1")
	}
	if !c.IsAllowedTTL(c.Room.DefaultTTLSeconds) {
		return fmt.Errorf("room.defaultTTLSeconds %d is not in room.allowedTTLSeconds", c.Room.DefaultTTLSeconds)
	}

	switch c.Realtime.Driver {
	case "redis":
	case "amqp":
		if c.RabbitMQ.URI == "" {
			return errors.New("rabbitmq.uri is required when realtime.driver is amqp")
		}
	default:
		return fmt.Errorf("realtime.driver %q is not supported: supported drivers: [redis, amqp]", c.Realtime.Driver)
	}

	return nil
}

func (c *Config) IsAllowedTTL(seconds int) bool {
	for _, allowed := range c.Room.AllowedTTLSeconds {
		if allowed == seconds {
			return true
		}
	}
	return false
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "release" || c.Server.RunMode == "production"
}

func (c *Config) GetPostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.DbName,
		c.Postgres.SSLMode,
	)
}

func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
