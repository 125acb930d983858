package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/frontend"
	"github.com/Ramsey-B/poppy/pkg/llm"
	"github.com/Ramsey-B/poppy/pkg/seed"
	"github.com/Ramsey-B/poppy/pkg/tracing/exporters"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"poppy-api"`
	Port                          int      `env:"PORT" env-default:"8003"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"120"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Database driver: mysql, mariadb, postgres, pgx or sqlite
	DatabaseDriver string `env:"DB_DRIVER" env-default:"mysql"`
	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:"127.0.0.1"`
	// Database port
	DatabasePort int `env:"DB_PORT" env-default:"3307"`
	// Database user
	DatabaseUserName string `env:"DB_USER" env-default:"movies"`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:"moviespwd"`
	// Database name, or the file path when the driver is sqlite
	DatabaseName string `env:"DB_NAME" env-default:"moviesdb"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SSL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`

	// Ollama base URL
	OllamaURL        string  `env:"OLLAMA_URL" env-default:"http://localhost:11434"`
	LLMDefaultModel  string  `env:"LLM_DEFAULT_MODEL" env-default:"llama2"`
	LLMForceModel    string  `env:"LLM_FORCE_MODEL" env-default:""`
	LLMIncludeSchema bool    `env:"LLM_INCLUDE_SCHEMA" env-default:"true"`
	LLMTemperature   float64 `env:"LLM_TEMPERATURE" env-default:"0.1"`
	LLMTopP          float64 `env:"LLM_TOP_P" env-default:"0.9"`
	LLMMaxTokens     int     `env:"LLM_MAX_TOKENS" env-default:"500"`
	// Zero disables the timeout
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" env-default:"0s"`

	SeedTSVPath      string        `env:"SEED_TSV" env-default:"/seed/data.tsv"`
	SeedWaitAttempts int           `env:"SEED_WAIT_ATTEMPTS" env-default:"60"`
	SeedWaitDelay    time.Duration `env:"SEED_WAIT_DELAY" env-default:"2s"`

	// UI server
	UIPort         int           `env:"UI_PORT" env-default:"8000"`
	BackendURL     string        `env:"BACKEND_URL" env-default:"http://localhost:8003"`
	UIDefaultModel string        `env:"UI_DEFAULT_MODEL" env-default:"gemma3:1b-it-qat"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" env-default:"120s"`

	MetricsEnabled bool `env:"METRICS_ENABLED" env-default:"true"`
	// Read-only listing of the server's databases
	AdminEnabled bool `env:"ADMIN_ENABLED" env-default:"false"`

	OTLPEnabled  bool   `env:"OTLP_ENABLED" env-default:"false"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure bool   `env:"OTLP_INSECURE" env-default:"true"`
}

// Load builds the config from, lowest precedence first: the env-default
// tags, the optional settings file, an optional .env file and the process
// environment. file may be empty.
func Load(file string) (*Config, error) {
	// .env is optional, the environment always wins
	_ = godotenv.Load()

	if file != "" {
		if err := exportFile(file); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	cfg.AllowOrigins = splitList(cfg.AllowOrigins)
	cfg.AllowMethods = splitList(cfg.AllowMethods)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// exportFile reads a yaml, toml, json or dotenv settings file and exports
// every key that the environment does not already set, so that BindEnv sees
// it. Keys are the env names, case insensitive.
func exportFile(file string) error {
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, fileValue(v.Get(key))); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}
	return nil
}

// fileValue renders a settings value the way BindEnv parses it. Lists become
// comma separated.
func fileValue(value any) string {
	if list, ok := value.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(value)
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case database.DriverMySQL, database.DriverMariaDB, database.DriverPostgres, database.DriverPgx, database.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}

	if c.LLMTimeout < 0 {
		return fmt.Errorf("LLM_TIMEOUT must not be negative")
	}

	switch c.OTLPProtocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("unsupported OTLP_PROTOCOL %q", c.OTLPProtocol)
	}

	return nil
}

// splitList flattens "a,b" entries that come from a single env value.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Database() database.Config {
	return database.Config{
		Driver:          c.DatabaseDriver,
		Host:            c.DatabaseHost,
		Port:            c.DatabasePort,
		User:            c.DatabaseUserName,
		Password:        c.DatabasePassword,
		Name:            c.DatabaseName,
		SSLMode:         c.DatabaseSSLMode,
		MaxOpenConns:    c.DatabaseMaxOpenConns,
		MaxIdleConns:    c.DatabaseMaxIdleConns,
		ConnMaxLifetime: c.DatabaseConnMaxLifetime,
	}
}

func (c *Config) LLM() llm.Config {
	return llm.Config{
		BaseURL:       c.OllamaURL,
		DefaultModel:  c.LLMDefaultModel,
		ForceModel:    c.LLMForceModel,
		IncludeSchema: c.LLMIncludeSchema,
		Temperature:   c.LLMTemperature,
		TopP:          c.LLMTopP,
		MaxTokens:     c.LLMMaxTokens,
		Timeout:       c.LLMTimeout,
	}
}

func (c *Config) Seed() seed.Config {
	return seed.Config{
		Path:         c.SeedTSVPath,
		WaitAttempts: c.SeedWaitAttempts,
		WaitDelay:    c.SeedWaitDelay,
	}
}

func (c *Config) Frontend() frontend.Config {
	return frontend.Config{
		BackendURL:     c.BackendURL,
		OllamaURL:      c.OllamaURL,
		DefaultModel:   c.UIDefaultModel,
		BackendTimeout: c.BackendTimeout,
	}
}

func (c *Config) OTLP() exporters.OTLPConfig {
	cfg := exporters.DefaultOTLPConfig()
	cfg.Endpoint = c.OTLPEndpoint
	cfg.Protocol = c.OTLPProtocol
	cfg.Insecure = c.OTLPInsecure
	return cfg
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.HttpServerReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.HttpServerWriteTimeoutSeconds) * time.Second
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.HttpServerIdleTimeoutSeconds) * time.Second
}

func (c *Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.ReadHeaderTimeoutSeconds) * time.Second
}
