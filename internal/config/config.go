package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"business-directory/internal/models"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	DBPath        string
	SessionSecret string
	LogFile       string
	Packages      []models.PremiumPackage
}

// Load reads configuration from the environment (a .env file is honored if
// present) and from config/packages.yaml when it exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getEnv("ADDR", ":5000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBPath:        getEnv("DB_PATH", "directory.db"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-in-production"),
		LogFile:       getEnv("LOG_FILE", "directory.log"),
	}

	pkgs, err := loadPackages("config/packages.yaml")
	if err != nil {
		return nil, err
	}
	cfg.Packages = pkgs

	return cfg, nil
}

// DefaultPackages mirrors the published premium tiers.
func DefaultPackages() []models.PremiumPackage {
	return []models.PremiumPackage{
		{
			Name:         "Basic",
			PriceUSD:     29,
			DurationDays: 30,
			Features: []string{
				"Higher placement in listings",
				"Enhanced visibility",
				"Basic analytics on views",
			},
		},
		{
			Name:         "Standard",
			PriceUSD:     49,
			DurationDays: 60,
			Features: []string{
				"Featured on category pages",
				"Enhanced listing details",
				"Priority in search results",
			},
		},
		{
			Name:         "Premium",
			PriceUSD:     99,
			DurationDays: 90,
			Features: []string{
				"Featured on homepage",
				"Enhanced listing details",
				"Featured in search results",
				"Analytics dashboard access",
			},
		},
	}
}

func loadPackages(path string) ([]models.PremiumPackage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPackages(), nil
		}
		return nil, err
	}

	var pkgs []models.PremiumPackage
	if err := yaml.Unmarshal(data, &pkgs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(pkgs) == 0 {
		return DefaultPackages(), nil
	}
	return pkgs, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
