package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	WebhookURL string

	TelegramBotToken string

	// Провайдеры генерации
	LLMProvider    string // openai | gemini | deepseek
	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIKey   string
	GeminiModel    string
	DeepseekAPIKey string
	DeepseekModel  string

	// Необязательные бэкенды
	DatabaseURL string // Postgres: кэш переводов + история викторин
	RedisAddr   string // сессии в Redis вместо памяти процесса
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	// .env подхватываем, если лежит рядом; в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8000"),
		WebhookURL: getEnv("WEBHOOK_URL", ""),

		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),

		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DeepseekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepseekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
	}

	// обязателен только ключ выбранного провайдера, остальные — по желанию
	switch cfg.LLMProvider {
	case "gemini":
		cfg.GeminiAPIKey = mustEnv("GEMINI_API_KEY")
	case "deepseek":
		cfg.DeepseekAPIKey = mustEnv("DEEPSEEK_API_KEY")
	default:
		cfg.OpenAIAPIKey = mustEnv("OPENAI_API_KEY")
	}

	return cfg
}
