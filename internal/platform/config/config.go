// Package config carga la configuración del proceso desde variables
// de entorno, con un .env opcional para desarrollo local.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDSN       string
	ExportDir   string
	LogLevel    string
	LogFormat   string
	AppName     string
	CORSOrigins []string
}

// Load lee el .env si existe (el entorno real tiene prioridad) y arma
// la configuración con defaults de desarrollo.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DBDSN:       os.Getenv("DB_DSN"),
		ExportDir:   getEnvOrDefault("EXPORT_DIR", "exports"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "console"),
		AppName:     getEnvOrDefault("APP_NAME", "vet-clinic-api"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
