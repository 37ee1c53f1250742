package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Reasoning  ReasoningConfig
	Qdrant     QdrantConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Allocation AllocationConfig
	Seed       SeedConfig

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool `env:"-"`
}

type ServerConfig struct {
	Port     string `env:"PORT" envDefault:"3000"`
	Env      string `env:"ENV" envDefault:"development"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
	LogDebug bool   `env:"LOG_DEBUG" envDefault:"false"`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"talent_allocator"`
}

type ReasoningConfig struct {
	Provider         string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiEmbedModel string        `env:"GEMINI_EMBED_MODEL" envDefault:"text-embedding-004"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	CallTimeout      time.Duration `env:"LLM_CALL_TIMEOUT" envDefault:"45s"`
	MaxRetries       int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	RetryDelay       time.Duration `env:"LLM_RETRY_DELAY" envDefault:"2s"`
}

type QdrantConfig struct {
	URL        string `env:"QDRANT_URL"`
	APIKey     string `env:"QDRANT_API_KEY"`
	Collection string `env:"QDRANT_COLLECTION" envDefault:"positions"`
}

type RedisConfig struct {
	URL string        `env:"REDIS_URL"`
	TTL time.Duration `env:"REDIS_TTL" envDefault:"24h"`
}

type StorageConfig struct {
	UploadPath  string `env:"UPLOAD_PATH" envDefault:"./uploads"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE" envDefault:"10485760"`
}

type WorkerConfig struct {
	Concurrency     int           `env:"WORKER_CONCURRENCY" envDefault:"3"`
	EvalConcurrency int           `env:"EVAL_CONCURRENCY" envDefault:"4"`
	PollInterval    time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"10s"`
}

type AllocationConfig struct {
	MatchConfidenceThreshold float64 `env:"MATCH_CONFIDENCE_THRESHOLD" envDefault:"0.8"`
}

type SeedConfig struct {
	PositionsFile string `env:"SEED_POSITIONS_FILE"`
	OnEmpty       bool   `env:"SEED_ON_EMPTY" envDefault:"true"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.EnvFileLoaded = godotenv.Load() == nil

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Reasoning.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.Reasoning.Provider)
	}

	if c.Allocation.MatchConfidenceThreshold < 0 || c.Allocation.MatchConfidenceThreshold > 1 {
		return fmt.Errorf("MATCH_CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.Allocation.MatchConfidenceThreshold)
	}

	if c.Worker.Concurrency < 1 || c.Worker.EvalConcurrency < 1 {
		return fmt.Errorf("worker concurrency must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverMySQL {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
