package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Scanner ScannerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	TopicEvents string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	PrometheusPort string
}

// ScannerConfig bounds the camera decode loop.
type ScannerConfig struct {
	FramesPerSecond int
	DetectionBoxPx  int
	SessionTTL      time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	fps, _ := strconv.Atoi(getEnv("SCANNER_FPS", "10"))
	boxPx, _ := strconv.Atoi(getEnv("SCANNER_BOX_PX", "250"))
	sessionTTL, _ := strconv.Atoi(getEnv("SCAN_SESSION_TTL_SECONDS", "600"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:     splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			TopicEvents: getEnv("KAFKA_TOPIC_WAREHOUSE_EVENTS", "warehouse-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			PrometheusPort: getEnv("PROMETHEUS_PORT", "9090"),
		},
		Scanner: ScannerConfig{
			FramesPerSecond: fps,
			DetectionBoxPx:  boxPx,
			SessionTTL:      time.Duration(sessionTTL) * time.Second,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// splitNonEmpty splits a comma list, returning nil for an empty value so
// optional integrations (Kafka, Redis) stay disabled when unconfigured.
func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
