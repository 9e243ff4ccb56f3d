package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	TelegramToken     string
	GeminiAPIKey      string
	PostgresDSN       string
	CatalogFile       string
	AllowEmptySecrets bool
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		CatalogFile:       strings.TrimSpace(os.Getenv("CATALOG_XLSX_FILE")),
		AllowEmptySecrets: getEnvBool("ALLOW_EMPTY_SECRETS", false),
	}

	// Validatsiya
	if !config.AllowEmptySecrets {
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable bo'sh")
		}
	}

	return config, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

