package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogMode  string
	DBDriver string
	DBDSN    string

	// Provider credentials. An empty value means that provider reports
	// needs_key and answers with an explanatory message instead of
	// calling out.
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	GoogleBaseURL    string
	OpenAIBaseURL    string
	AnthropicBaseURL string

	UploadDir string
}

func Load() Config {
	// A missing .env is fine; real deployments use plain env vars.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	return Config{
		Port:     port,
		LogMode:  logMode,
		DBDriver: driver,
		DBDSN:    os.Getenv("DB_DSN"),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		GoogleBaseURL:    os.Getenv("GOOGLE_BASE_URL"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),

		UploadDir: uploadDir,
	}
}
