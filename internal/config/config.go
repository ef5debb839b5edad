package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Brokers         []string
	GroupID         string
	StateDir        string
	HTTPAddr        string
	RedisAddr       string
	MongoURI        string
	OTLPEndpoint    string
	CacheTTL        time.Duration
	ShutdownTimeout time.Duration
	RateLimitPerMin int
}

// Load reads configuration from the environment, with a .env file as
// fallback. service names the consumer group so each service keeps its own
// committed offsets.
func Load(service string) (*Config, error) {
	_ = godotenv.Load()

	brokers := strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ",")

	cacheTTL, _ := time.ParseDuration(os.Getenv("AREA_STATUS_CACHE_TTL"))
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	shutdownTimeout, _ := time.ParseDuration(os.Getenv("SHUTDOWN_TIMEOUT"))
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}

	rateLimit, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_MIN"))
	if rateLimit == 0 {
		rateLimit = 60
	}

	return &Config{
		Brokers:         brokers,
		GroupID:         envOr("GROUP_ID", service),
		StateDir:        envOr("STATE_DIR", "/var/lib/ticket-master/"+service),
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		MongoURI:        os.Getenv("MONGO_URI"),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		CacheTTL:        cacheTTL,
		ShutdownTimeout: shutdownTimeout,
		RateLimitPerMin: rateLimit,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
