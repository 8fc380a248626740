package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	ServerAddress  string
	JWTSecret      string
	PairingCode    string
	DeviceID       string
	DatabaseURL    string
	MigrationsPath string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	MQTTBrokerURL  string
	CalculatorURL  string
	Timezone       *time.Location
	CacheTTL       time.Duration
	DefaultLat     float64
	DefaultLon     float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwt := os.Getenv("JWT_SECRET")
	if jwt == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	pairing := os.Getenv("PAIRING_CODE")
	if pairing == "" {
		return nil, fmt.Errorf("PAIRING_CODE is required")
	}
	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		return nil, fmt.Errorf("DEVICE_ID is required")
	}

	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	migrations := os.Getenv("MIGRATIONS_PATH")
	if migrations == "" {
		migrations = "./migrations"
	}
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	broker := os.Getenv("MQTT_BROKER_URL")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	calcURL := os.Getenv("CALCULATOR_URL")
	if calcURL == "" {
		calcURL = "https://api.aladhan.com"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "UTC"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cacheTTL := 24 * time.Hour
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		cacheTTL, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
	}

	lat, lon, err := parseCoords(os.Getenv("DEFAULT_LATITUDE"), os.Getenv("DEFAULT_LONGITUDE"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:    os.Getenv("APP_ENV"),
		ServerAddress:  addr,
		JWTSecret:      jwt,
		PairingCode:    pairing,
		DeviceID:       deviceID,
		DatabaseURL:    dbURL,
		MigrationsPath: migrations,
		RedisAddress:   redisAddr,
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:  broker,
		CalculatorURL:  calcURL,
		Timezone:       tz,
		CacheTTL:       cacheTTL,
		DefaultLat:     lat,
		DefaultLon:     lon,
	}, nil
}

func parseCoords(latRaw, lonRaw string) (float64, float64, error) {
	if latRaw == "" && lonRaw == "" {
		return 0, 0, nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DEFAULT_LATITUDE: %w", err)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DEFAULT_LONGITUDE: %w", err)
	}
	return lat, lon, nil
}
