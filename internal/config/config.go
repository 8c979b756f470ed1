package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// StorageDriverEnv selects the document store backend ("mongo", "postgres" or "memory").
	StorageDriverEnv = "STORAGE_DRIVER"

	// MongoURLEnv is the environment variable for the MongoDB connection string.
	MongoURLEnv = "MONGO_URL"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// WebServerPortEnv is the environment variable for the web frontend port.
	WebServerPortEnv = "WEB_SERVER_PORT"

	// APIBaseURLEnv is the environment variable for the catalog API address used by the web frontend.
	APIBaseURLEnv = "API_BASE_URL"

	// EventsDriverEnv selects where product events are published ("", "sqs" or "rabbitmq").
	EventsDriverEnv = "EVENTS_DRIVER"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// RabbitMQURLEnv is the environment variable for the AMQP broker URL.
	RabbitMQURLEnv = "RABBITMQ_URL"

	// RabbitMQQueueEnv is the environment variable for the AMQP queue name.
	RabbitMQQueueEnv = "RABBITMQ_QUEUE"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	EventsSQS      = "sqs"
	EventsRabbitMQ = "rabbitmq"

	DefaultMongoURL      = "mongodb://localhost:27017"
	DefaultDBName        = "ecommerce_db"
	DefaultAPIBaseURL    = "http://localhost:8001"
	DefaultRabbitMQQueue = "product_events"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrUnsupportedDriver is returned when a driver setting names an unknown backend.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Storage       Storage
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	WebServer     Server
	APIBaseURL    string
	Events        Events
	AWS           AWSConfig
	RabbitMQ      RabbitMQConfig
}

// Storage selects the product store.
type Storage struct {
	Driver   string
	MongoURL string
}

// Events selects the product event transport. An empty Driver disables publishing.
type Events struct {
	Driver string
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// RabbitMQConfig represents AMQP broker settings.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case StorageMongo:
		if err := allNonEmpty(map[string]string{
			MongoURLEnv: c.Storage.MongoURL,
			DBNameEnv:   c.Database.Name,
		}); err != nil {
			return fmt.Errorf("mongo configuration incomplete: %w", err)
		}
	case StoragePostgres:
		if err := allNonEmpty(map[string]string{
			DBHostEnv: c.Database.Host,
			DBUserEnv: c.Database.User,
			DBNameEnv: c.Database.Name,
		}); err != nil {
			return fmt.Errorf("database configuration incomplete: %w", err)
		}
		if err := allNumbers(map[string]string{
			DBPortEnv: c.Database.Port,
		}); err != nil {
			return fmt.Errorf("invalid port number: %w", err)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("%w for key %s: %q", ErrUnsupportedDriver, StorageDriverEnv, c.Storage.Driver)
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Driver {
	case "":
		return nil
	case EventsSQS:
		if err := allNonEmpty(map[string]string{
			SQSQueueURLEnv: c.AWS.SQSQueueURL,
		}); err != nil {
			return fmt.Errorf("AWS configuration incomplete: %w", err)
		}
	case EventsRabbitMQ:
		if err := allNonEmpty(map[string]string{
			RabbitMQURLEnv:   c.RabbitMQ.URL,
			RabbitMQQueueEnv: c.RabbitMQ.Queue,
		}); err != nil {
			return fmt.Errorf("RabbitMQ configuration incomplete: %w", err)
		}
	default:
		return fmt.Errorf("%w for key %s: %q", ErrUnsupportedDriver, EventsDriverEnv, c.Events.Driver)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	return c.validateEvents()
}

func (c *Config) validateWeb() error {
	if err := allNonEmpty(map[string]string{
		WebServerPortEnv: c.WebServer.Port,
		APIBaseURLEnv:    c.APIBaseURL,
	}); err != nil {
		return fmt.Errorf("web configuration incomplete: %w", err)
	}
	if err := allNumbers(map[string]string{
		WebServerPortEnv: c.WebServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}
	return nil
}

func (c *Config) validateConsumer() error {
	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
	}); err != nil {
		return fmt.Errorf("AWS configuration incomplete: %w", err)
	}
	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func readEnv() *Config {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	return &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Storage: Storage{
			Driver:   getEnv(StorageDriverEnv, StorageMongo),
			MongoURL: getEnv(MongoURLEnv, DefaultMongoURL),
		},
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     getEnv(DBNameEnv, DefaultDBName),
			Port:     os.Getenv(DBPortEnv),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		WebServer: Server{
			Port: os.Getenv(WebServerPortEnv),
		},
		APIBaseURL: getEnv(APIBaseURLEnv, DefaultAPIBaseURL),
		Events: Events{
			Driver: os.Getenv(EventsDriverEnv),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   os.Getenv(RabbitMQURLEnv),
			Queue: getEnv(RabbitMQQueueEnv, DefaultRabbitMQQueue),
		},
	}
}

// LoadFromEnv loads the catalog API configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	conf := readEnv()
	if err := conf.validateAPI(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadWebFromEnv loads the web frontend configuration.
func LoadWebFromEnv() (*Config, error) {
	conf := readEnv()
	if err := conf.validateWeb(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadConsumerFromEnv loads the notification consumer configuration.
func LoadConsumerFromEnv() (*Config, error) {
	conf := readEnv()
	if err := conf.validateConsumer(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
