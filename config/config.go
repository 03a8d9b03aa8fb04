package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/site-ai-auditor/backend/auditor"
)

// Config is the resolved service configuration.
type Config struct {
	Port    string
	GinMode string
	DataDir string
	Weights []auditor.CategoryWeight
}

// Load resolves configuration from .env files, environment variables and
// an optional weights override file. A broken override is rejected in favor
// of the built-in weight table rather than failing startup.
func Load() *Config {
	loadEnv()

	cfg := &Config{
		Port:    getenv("PORT", "8082"),
		GinMode: os.Getenv("GIN_MODE"),
		DataDir: getenv("DATA_DIR", "data"),
		Weights: auditor.DefaultWeights(),
	}

	weightsFile := getenv("WEIGHTS_FILE", "weights.yaml")
	if weights, err := loadWeights(weightsFile); err != nil {
		log.Printf("Ignoring weights override %s: %v", weightsFile, err)
	} else if weights != nil {
		cfg.Weights = weights
	}

	return cfg
}

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// loadWeights reads a category -> weight mapping from a YAML file. A
// missing file is not an error; it just means the defaults apply.
func loadWeights(path string) ([]auditor.CategoryWeight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	overrides := make(map[string]float64)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	weights, err := auditor.WeightsWithOverrides(overrides)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded scoring weight overrides from %s", path)
	return weights, nil
}
