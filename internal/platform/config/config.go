package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Persistence backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AdminJWTSecret  string
	ShutdownTimeout time.Duration
}

// Persistence selects where the ledger snapshot is written.
type Persistence struct {
	Backend      string
	SnapshotPath string
	PostgresDSN  string
	RedisKey     string
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Broadcast configures real-time fan-out.
type Broadcast struct {
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
	QueueSize    int
	HistorySize  int
}

// Sheets configures the spreadsheet mirror.
type Sheets struct {
	PostgresDSN string
	QueueSize   int
}

// Policy toggles optional ledger rules.
type Policy struct {
	RequireRegistration bool
	EnforceWindow       bool
}

// Logging selects the slog handler.
type Logging struct {
	Level  string
	Format string
}

// Config is the full process configuration.
type Config struct {
	Server      Server
	Persistence Persistence
	Redis       RedisConfig
	Broadcast   Broadcast
	Sheets      Sheets
	Policy      Policy
	Logging     Logging
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            getEnv("LEDGER_ADDR", ":8080"),
			AdminJWTSecret:  os.Getenv("ADMIN_JWT_SECRET"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Persistence: Persistence{
			Backend:      strings.ToLower(getEnv("PERSISTENCE_BACKEND", BackendFile)),
			SnapshotPath: getEnv("SNAPSHOT_PATH", "data/ledger.json"),
			PostgresDSN:  os.Getenv("PERSISTENCE_POSTGRES_DSN"),
			RedisKey:     getEnv("PERSISTENCE_REDIS_KEY", "voteledger:snapshot"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Broadcast: Broadcast{
			RedisChannel: os.Getenv("BROADCAST_REDIS_CHANNEL"),
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "voteledger.events"),
			QueueSize:    getInt("BROADCAST_QUEUE_SIZE", 256),
			HistorySize:  getInt("BROADCAST_HISTORY_SIZE", 100),
		},
		Sheets: Sheets{
			PostgresDSN: os.Getenv("SHEETS_POSTGRES_DSN"),
			QueueSize:   getInt("SHEETS_QUEUE_SIZE", 512),
		},
		Policy: Policy{
			RequireRegistration: getBool("LEDGER_REQUIRE_REGISTRATION"),
			EnforceWindow:       getBool("LEDGER_ENFORCE_WINDOW"),
		},
		Logging: Logging{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration that cannot work at all.
func (c Config) Validate() error {
	switch c.Persistence.Backend {
	case BackendFile:
		if c.Persistence.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the file backend")
		}
	case BackendPostgres:
		if c.Persistence.PostgresDSN == "" {
			return fmt.Errorf("PERSISTENCE_POSTGRES_DSN is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown PERSISTENCE_BACKEND %q", c.Persistence.Backend)
	}
	if c.Broadcast.RedisChannel != "" && c.Redis.URL == "" {
		return fmt.Errorf("BROADCAST_REDIS_CHANNEL requires REDIS_URL")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
