package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/db/queue"
	"github.com/erain9/matchingo/pkg/messaging/redis"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Kafka drivers
const (
	DriverKafkaGo = "kafka-go"
	DriverSarama  = "sarama"
)

// EnvPrefix prefixes every environment override, e.g. MATCHINGO_GRPC_ADDR
const EnvPrefix = "MATCHINGO"

// Config represents the application configuration
type Config struct {
	Server struct {
		GRPCAddr  string `yaml:"grpc_addr"`
		HTTPAddr  string `yaml:"http_addr"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"server"`

	Engine struct {
		TradeHistoryCapacity int `yaml:"trade_history_capacity"`
	} `yaml:"engine"`

	Auth struct {
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret"`
		MaxSkew   time.Duration `yaml:"max_skew"`
	} `yaml:"auth"`

	Publisher struct {
		Buffer int `yaml:"buffer"`
	} `yaml:"publisher"`

	Redis struct {
		Enabled       bool   `yaml:"enabled"`
		Addr          string `yaml:"addr"`
		Password      string `yaml:"password"`
		DB            int    `yaml:"db"`
		ChannelPrefix string `yaml:"channel_prefix"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		Driver     string `yaml:"driver"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
		// Echo tails the topic and logs every message (sarama driver only)
		Echo bool `yaml:"echo"`
	} `yaml:"kafka"`

	Telemetry struct {
		Enabled        bool   `yaml:"enabled"`
		Endpoint       string `yaml:"endpoint"`
		ServiceVersion string `yaml:"service_version"`
	} `yaml:"telemetry"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg := &Config{}
	cfg.Server.GRPCAddr = ":50051"
	cfg.Server.HTTPAddr = ":8080"
	cfg.Server.LogLevel = "info"
	cfg.Server.LogFormat = "pretty"
	cfg.Engine.TradeHistoryCapacity = core.DefaultTradeHistoryCapacity
	cfg.Auth.APIKey = "test-key"
	cfg.Auth.APISecret = "test-secret"
	cfg.Publisher.Buffer = 4096
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.ChannelPrefix = redis.DefaultChannelPrefix
	cfg.Kafka.Driver = DriverKafkaGo
	cfg.Kafka.BrokerAddr = queue.DefaultBroker
	cfg.Kafka.Topic = queue.DefaultTopic
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.ServiceVersion = "dev"
	return cfg
}

// Load builds a configuration from defaults, then the first existing env
// file (".env" when none are named), then the YAML file at path when it is
// not empty, then MATCHINGO_* environment variables. The result is
// validated.
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
		break
	}

	cfg := Default()

	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("grpc_addr", &cfg.Server.GRPCAddr)
	str("http_addr", &cfg.Server.HTTPAddr)
	str("log_level", &cfg.Server.LogLevel)
	str("log_format", &cfg.Server.LogFormat)

	num("trade_history_capacity", &cfg.Engine.TradeHistoryCapacity)

	str("api_key", &cfg.Auth.APIKey)
	str("api_secret", &cfg.Auth.APISecret)
	if v.IsSet("auth_max_skew") {
		cfg.Auth.MaxSkew = v.GetDuration("auth_max_skew")
	}

	num("publisher_buffer", &cfg.Publisher.Buffer)

	boolean("redis_enabled", &cfg.Redis.Enabled)
	str("redis_addr", &cfg.Redis.Addr)
	str("redis_password", &cfg.Redis.Password)
	num("redis_db", &cfg.Redis.DB)
	str("redis_channel_prefix", &cfg.Redis.ChannelPrefix)

	boolean("kafka_enabled", &cfg.Kafka.Enabled)
	str("kafka_driver", &cfg.Kafka.Driver)
	str("kafka_broker_addr", &cfg.Kafka.BrokerAddr)
	str("kafka_topic", &cfg.Kafka.Topic)
	boolean("kafka_echo", &cfg.Kafka.Echo)

	boolean("telemetry_enabled", &cfg.Telemetry.Enabled)
	str("otel_endpoint", &cfg.Telemetry.Endpoint)
	str("service_version", &cfg.Telemetry.ServiceVersion)
}

// Validate reports the first inconsistent setting
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return fmt.Errorf("server.grpc_addr must not be empty")
	}
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr must not be empty")
	}
	switch strings.ToLower(c.Server.LogFormat) {
	case "json", "pretty":
	default:
		return fmt.Errorf("server.log_format must be json or pretty, got %q", c.Server.LogFormat)
	}
	if c.Engine.TradeHistoryCapacity <= 0 {
		return fmt.Errorf("engine.trade_history_capacity must be positive")
	}
	if c.Auth.APIKey == "" || c.Auth.APISecret == "" {
		return fmt.Errorf("auth.api_key and auth.api_secret must be set")
	}
	if c.Auth.MaxSkew < 0 {
		return fmt.Errorf("auth.max_skew must not be negative")
	}
	if c.Publisher.Buffer <= 0 {
		return fmt.Errorf("publisher.buffer must be positive")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must not be empty when redis is enabled")
	}
	if c.Kafka.Enabled {
		switch c.Kafka.Driver {
		case DriverKafkaGo, DriverSarama:
		default:
			return fmt.Errorf("kafka.driver must be %s or %s, got %q", DriverKafkaGo, DriverSarama, c.Kafka.Driver)
		}
		if c.Kafka.BrokerAddr == "" || c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.broker_addr and kafka.topic must not be empty when kafka is enabled")
		}
	}
	return nil
}

// LoadConfig parses command line flags and loads the configuration. Flags
// given explicitly win over every other source.
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("matchingo", flag.ContinueOnError)
	configFile := fs.String("config", "", "Path to config file (YAML)")
	envFile := fs.String("env_file", ".env", "Path to a dotenv file")
	grpcAddr := fs.String("grpc_addr", "", "The gRPC listen address")
	httpAddr := fs.String("http_addr", "", "The HTTP listen address")
	logLevel := fs.String("log_level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log_format", "", "Log format: json, pretty")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := Load(*configFile, *envFile)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "grpc_addr":
			cfg.Server.GRPCAddr = *grpcAddr
		case "http_addr":
			cfg.Server.HTTPAddr = *httpAddr
		case "log_level":
			cfg.Server.LogLevel = *logLevel
		case "log_format":
			cfg.Server.LogFormat = *logFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
