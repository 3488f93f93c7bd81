package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env style files into the environment. Variables already
// set win. Missing files are ignored.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Token returns the market data token named by the config.
func (m MarketConfig) Token() string {
	return strings.TrimSpace(os.Getenv(m.TokenEnv))
}

// EnvBool reads a boolean flag such as FXPLAN_TRACING.
func EnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
