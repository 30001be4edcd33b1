package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"food-delivery-relay/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN keeps the history database inside the process
const MemoryDSN = "file::memory:?cache=shared"

type Config struct {
	Port         string
	GinMode      string
	JWTSecret    []byte
	DBPath       string
	CORSOrigin   string
	KafkaBrokers []string
	KafkaTopic   string
	ServiceName  string
	SendBuffer   int
}

func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      os.Getenv("GIN_MODE"),
		JWTSecret:    []byte(getEnv("JWT_SECRET", "food_delivery_relay_secret")),
		DBPath:       getEnv("DB_PATH", MemoryDSN),
		CORSOrigin:   getEnv("CORS_ORIGIN", "*"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "delivery.events"),
		ServiceName:  getEnv("SERVICE_NAME", "delivery-relay"),
		SendBuffer:   getInt("WS_SEND_BUFFER", 256),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// OpenDB opens the status-history database and migrates it
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// an in-memory sqlite database lives per connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.OrderStatusHistory{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
