package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"english-bot/api/internal/config"
	"english-bot/api/internal/dialog"
	"english-bot/api/internal/llm"
	"english-bot/api/internal/llm/deepseek"
	"english-bot/api/internal/llm/gemini"
	"english-bot/api/internal/llm/openai"
	"english-bot/api/internal/quiz"
	"english-bot/api/internal/session"
	"english-bot/api/internal/store"
	"english-bot/api/internal/telegram"
)

func main() {
	cfg := config.Load()

	// Prefer platform PORT env var; fallback to cfg.Port; then to 8080
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}

	// --- Postgres (необязателен: без него нет кэша переводов и /stats) ---
	var (
		db           *sql.DB
		translations *store.TranslationRepo
		results      *store.QuizResultRepo
	)
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("sql.Open: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			cancel()
			log.Fatalf("db.Ping: %v", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			cancel()
			log.Fatalf("store.Migrate: %v", err)
		}
		cancel()
		log.Printf("db connected")

		translations = store.NewTranslationRepo(db)
		results = store.NewQuizResultRepo(db)
	} else {
		log.Printf("DATABASE_URL is empty: translation cache and /stats disabled")
	}

	// --- Сессии: Redis или память процесса ---
	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.ConnectRedis(cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
	}

	// --- Telegram bot ---
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	botAPI.Debug = false

	// Провайдеры генерации: собираем те, для которых есть ключ
	var providers telegram.Providers
	if cfg.OpenAIAPIKey != "" {
		providers.OpenAI = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.GeminiAPIKey != "" {
		providers.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.DeepseekAPIKey != "" {
		providers.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel)
	}

	var def llm.Provider
	switch cfg.LLMProvider {
	case "gemini":
		if providers.Gemini == nil {
			log.Fatal("LLM_PROVIDER=gemini, but GEMINI_API_KEY is empty")
		}
		def = providers.Gemini
	case "deepseek":
		if providers.Deepseek == nil {
			log.Fatal("LLM_PROVIDER=deepseek, but DEEPSEEK_API_KEY is empty")
		}
		def = providers.Deepseek
	default:
		if providers.OpenAI == nil {
			log.Fatal("LLM_PROVIDER=openai, but OPENAI_API_KEY is empty")
		}
		def = providers.OpenAI
	}
	manager := llm.NewManager(def)
	gateway := llm.NewGateway(manager)

	quizEngine := quiz.NewEngine(gateway)
	router := &dialog.Router{
		Sessions:     sessions,
		Quiz:         quizEngine,
		LLM:          gateway,
		Translations: translations,
		Results:      results,
	}

	bot := telegram.NewBot(botAPI, router, manager, providers, results)

	// --- HTTP mux (DefaultServeMux) ---
	// ListenForWebhook регистрирует обработчик на default mux, поэтому
	// healthz живёт там же.
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := "0.0.0.0:" + cfg.Port

	// --- Choose mode: Webhook vs Polling ---
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL != "" {
		startWebhookMode(addr, botAPI, bot, webhookURL)
	} else {
		startPollingMode(addr, bot)
	}
}

// ---------------- Modes -----------------

func startWebhookMode(addr string, botAPI *tgbotapi.BotAPI, bot *telegram.Bot, baseURL string) {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(botAPI.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := botAPI.Request(wh); err != nil {
		log.Fatal(err)
	}

	updates := botAPI.ListenForWebhook(path)

	go func() {
		for upd := range updates {
			bot.HandleUpdate(upd)
		}
		log.Printf("webhook updates channel closed")
	}()

	log.Printf("health server listening on %s/healthz", addr)
	log.Printf("webhook listening on %s%s", addr, path)
	if err := http.ListenAndServe(addr, nil); err != nil { // DefaultServeMux
		log.Fatal(err)
	}
}

func startPollingMode(addr string, bot *telegram.Bot) {
	// HTTP server (healthz) для polling не обязателен, но пусть будет
	go func() {
		log.Printf("health server listening on %s/healthz", addr)
		if err := http.ListenAndServe(addr, nil); err != nil { // DefaultServeMux
			log.Fatal(err)
		}
	}()

	bot.RunPolling(context.Background())
}

// ---------------- Helpers -----------------

func shortHash(s string) string {
	// лёгкий хэш для пути вебхука (не крипто, но стабильно для токена)
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	// 16-символный hex
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
