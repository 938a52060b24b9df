package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	ChatModel       string
	CorpusDir       string
	UsersDir        string
	HTTPPort        string
	JWTSecret       string
	OCRLanguage     string
	LLMTimeoutSecs  int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		ChatModel:       getEnv("CHAT_MODEL", "deepseek-chat"),
		CorpusDir:       getEnv("CORPUS_DIR", "library"),
		UsersDir:        getEnv("USERS_DIR", "users"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		OCRLanguage:     getEnv("OCR_LANGUAGE", "spa"),
		LLMTimeoutSecs:  getEnvAsInt("LLM_TIMEOUT_SECONDS", 60),
	}

	if AppConfig.DeepSeekAPIKey == "" {
		log.Fatal("DEEPSEEK_API_KEY environment variable is required")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
