package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	strutil "lettings/pkg/platform/strings"
)

// Inspection store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	Environment    string
	TrustedProxies []netip.Prefix

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration

	InspectionStore string
	SeedFile        string
	TxTimeout       time.Duration
	AuditBuffer     int

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers         string
	NotifyTopic     string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// IsDevelopment reports whether relaxed defaults (dev signing key, text logs) apply.
func (s Server) IsDevelopment() bool {
	return strings.EqualFold(s.Environment, "development")
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv loads an optional .env file and builds the Server config from the
// environment. Unset backends stay empty and main falls back to in-memory stores.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:            getEnv("LETTINGS_ADDR", ":8080"),
		Environment:     getEnv("LETTINGS_ENV", "development"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "lettings"),
		JWTAudience:     getEnv("JWT_AUDIENCE", "lettings-api"),
		TokenTTL:        getDuration("TOKEN_TTL", 15*time.Minute),
		InspectionStore: strings.ToLower(getEnv("INSPECTION_STORE", "")),
		SeedFile:        getEnv("SEED_FILE", ""),
		TxTimeout:       getDuration("TX_TIMEOUT", 5*time.Second),
		AuditBuffer:     getInt("AUDIT_BUFFER", 256),
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         getEnv("KAFKA_BROKERS", ""),
			NotifyTopic:     getEnv("KAFKA_NOTIFY_TOPIC", "lettings.events"),
			Acks:            getEnv("KAFKA_ACKS", "all"),
			Retries:         getInt("KAFKA_RETRIES", 3),
			DeliveryTimeout: getDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
		},
	}

	proxies, err := parsePrefixes(getEnv("TRUSTED_PROXIES", ""))
	if err != nil {
		return Server{}, err
	}
	cfg.TrustedProxies = proxies

	if cfg.JWTSigningKey == "" {
		if !cfg.IsDevelopment() {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required outside development")
		}
		cfg.JWTSigningKey = devSigningKey
	}

	if cfg.InspectionStore == "" {
		cfg.InspectionStore = StoreMemory
		if cfg.Database.URL != "" {
			cfg.InspectionStore = StorePostgres
		}
	}
	switch cfg.InspectionStore {
	case StoreMemory:
	case StorePostgres:
		if cfg.Database.URL == "" {
			return Server{}, fmt.Errorf("INSPECTION_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if cfg.Redis.URL == "" {
			return Server{}, fmt.Errorf("INSPECTION_STORE=redis requires REDIS_URL")
		}
	default:
		return Server{}, fmt.Errorf("unknown INSPECTION_STORE %q", cfg.InspectionStore)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n >= 0 {
		return n
	}
	return fallback
}

func parsePrefixes(csv string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strutil.SplitList(csv) {
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", part, err)
		}
		out = append(out, p)
	}
	return out, nil
}
