package config

import (
	"os"
	"time"
)

type StoreBackend string

const (
	StorePostgres  StoreBackend = "postgres"
	StoreFirestore StoreBackend = "firestore"
)

const (
	defaultPort     = "8080"
	defaultTimezone = "America/Caracas"
)

type Config struct {
	Port             string
	ProjectID        string
	LogLevel         string
	StoreBackend     StoreBackend
	DatabaseURL      string
	KMSKeyName       string
	RouterSecret     string
	RouterSecretName string
	Timezone         string
}

func New() *Config {
	return &Config{
		Port:             getEnv("PORT", defaultPort),
		ProjectID:        os.Getenv("PROJECTID"),
		LogLevel:         os.Getenv("LOGLEVEL"),
		StoreBackend:     getStoreBackend(os.Getenv("STOREBACKEND")),
		DatabaseURL:      os.Getenv("DATABASEURL"),
		KMSKeyName:       os.Getenv("KMSKEYNAME"),
		RouterSecret:     os.Getenv("ROUTERSECRET"),
		RouterSecretName: os.Getenv("ROUTERSECRETNAME"),
		Timezone:         getEnv("TIMEZONE", defaultTimezone),
	}
}

// Location resolves Timezone, falling back to UTC when the zone database does
// not know it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getStoreBackend(backend string) StoreBackend {
	switch backend {
	case "firestore":
		return StoreFirestore
	default: // "postgres"
		return StorePostgres
	}
}
