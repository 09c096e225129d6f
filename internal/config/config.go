package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port string

	ClientCSVPath string
	StaticDir     string
	RegionsDir    string
	PromptsPath   string
	DBPath        string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	AllowedOrigins []string
	LogLevel       string
}

// Load reads the process environment, after merging a .env file from the
// working directory if one exists. Nothing here is required: a missing
// OPENAI_API_KEY only disables the completion path.
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("config: no .env file")
		} else {
			logger.Warn("config: .env file not loaded", zap.Error(err))
		}
	}

	c := &Config{
		Port:           getEnv("PORT", "3000"),
		ClientCSVPath:  getEnv("CLIENT_CSV_PATH", "data/client_data.csv"),
		StaticDir:      getEnv("STATIC_DIR", "public"),
		RegionsDir:     os.Getenv("REGIONS_DIR"),
		PromptsPath:    getEnv("PROMPTS_PATH", "templates/prompts.yaml"),
		DBPath:         getEnv("DB_PATH", "data/transcripts.sqlite"),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if !c.HasCompletionKey() {
		logger.Warn("config: OPENAI_API_KEY is not set; /chat will return an error until you add it")
	}
	return c
}

// HasCompletionKey reports whether the completion proxy can reach the model.
func (c *Config) HasCompletionKey() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
