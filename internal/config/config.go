// Package config reads application configuration from environment
// variables, with an optional .env file loaded first.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the location fallback. Used when the geolocation chain
// cannot produce a real position.
const (
	DefaultCountry   = "Kenya"
	DefaultLatitude  = -1.28333
	DefaultLongitude = 36.81667
)

// Config holds all runtime configuration. Absent station base URL or
// map credential degrade functionality rather than failing startup.
type Config struct {
	// Remote services
	StationsBaseURL string
	GeoIPURL        string
	DirectionsURL   string
	MapboxToken     string

	// Location fallback
	DefaultCountry   string
	DefaultLatitude  float64
	DefaultLongitude float64

	// Storage and server
	DBPath string
	Port   int
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StationsBaseURL: getEnv("STATIONS_BASE_URL", ""),
		GeoIPURL:        getEnv("GEOIP_URL", ""),
		DirectionsURL:   getEnv("DIRECTIONS_URL", ""),
		MapboxToken:     getEnv("MAPBOX_TOKEN", ""),

		DefaultCountry:   getEnv("DEFAULT_COUNTRY", DefaultCountry),
		DefaultLatitude:  getEnvFloat("DEFAULT_LATITUDE", DefaultLatitude),
		DefaultLongitude: getEnvFloat("DEFAULT_LONGITUDE", DefaultLongitude),

		DBPath: getEnv("DB_PATH", "fuelmap.db"),
		Port:   getEnvInt("PORT", 8080),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
