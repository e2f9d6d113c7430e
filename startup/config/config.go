package config

import (
	"os"
	"strings"
)

type Config struct {
	Port                string
	TravelDBHost        string
	TravelDBPort        string
	TravelDBName        string
	SecretKey           string
	ListingCacheHost    string
	ListingCachePort    string
	JaegerAddress       string
	AllowedOrigins      []string
	FirebaseCredentials string
}

func NewConfig() *Config {
	return &Config{
		Port:                os.Getenv("PORT"),
		TravelDBHost:        os.Getenv("TRAVEL_DB_HOST"),
		TravelDBPort:        os.Getenv("TRAVEL_DB_PORT"),
		TravelDBName:        os.Getenv("DB_NAME"),
		SecretKey:           os.Getenv("SECRET_KEY"),
		ListingCacheHost:    os.Getenv("LISTING_CACHE_HOST"),
		ListingCachePort:    os.Getenv("LISTING_CACHE_PORT"),
		JaegerAddress:       os.Getenv("JAEGER_ADDRESS"),
		AllowedOrigins:      splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		FirebaseCredentials: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
	}
}

func splitOrigins(value string) []string {
	if value == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(value, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
