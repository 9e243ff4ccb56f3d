package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bestoffer/assistant-bot/config"
	"github.com/bestoffer/assistant-bot/internal/delivery/telegram"
	"github.com/bestoffer/assistant-bot/internal/domain/repository"
	"github.com/bestoffer/assistant-bot/internal/infrastructure/gemini"
	"github.com/bestoffer/assistant-bot/internal/infrastructure/parser"
	"github.com/bestoffer/assistant-bot/internal/infrastructure/storage"
	"github.com/bestoffer/assistant-bot/internal/usecase"
	"github.com/bestoffer/assistant-bot/pkg/logger"
)

func main() {
	initDefaultTimezone()

	logger.Init()
	logger.InfoLogger.Println("🚀 Ilova ishga tushmoqda...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Konfiguratsiya yuklanmadi: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if cfg.AllowEmptySecrets && isEmptyOrDisabled(cfg.TelegramToken) {
		logger.InfoLogger.Println("TELEGRAM_BOT_TOKEN yo'q. Bot vaqtincha ishga tushmaydi.")
		<-sigChan
		return
	}

	// 1. Storage: postgres bo'lsa postgres, aks holda in-memory
	var (
		assistantRepo repository.AssistantRepository
		orderRepo     repository.OrderRepository
	)
	dsn := cfg.PostgresDSN
	if dsn == "" {
		dsn = storage.BuildPostgresDSNFromEnv()
	}
	if dsn != "" {
		db, err := storage.OpenPostgres(dsn)
		if err != nil {
			log.Fatalf("❌ Postgres ulanmadi: %v", err)
		}
		defer db.Close()
		assistantRepo = storage.NewPostgresAssistantRepository(db)
		orderRepo = storage.NewPostgresOrderRepository(db)
		logger.InfoLogger.Println("✅ Postgres storage tayyor")
	} else {
		memRepo := storage.NewMemoryAssistantRepository()
		memOrders := storage.NewMemoryOrderRepository()
		if cfg.CatalogFile != "" {
			if err := seedMemoryCatalog(memRepo, memOrders, cfg.CatalogFile); err != nil {
				log.Fatalf("❌ Katalog yuklanmadi: %v", err)
			}
			logger.InfoLogger.Printf("✅ Katalog yuklandi: %s", cfg.CatalogFile)
		}
		assistantRepo = memRepo
		orderRepo = memOrders
		logger.InfoLogger.Println("✅ In-memory storage tayyor")
	}

	// 2. Gemini wording override (ixtiyoriy)
	var aiRepo repository.AIRepository
	if !isEmptyOrDisabled(cfg.GeminiAPIKey) {
		aiRepo, err = gemini.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("❌ Gemini client yaratilmadi: %v", err)
		}
		defer aiRepo.Close()
		logger.InfoLogger.Println("✅ Gemini AI client tayyor (gemini-2.5-flash)")
	} else {
		logger.InfoLogger.Println("ℹ️ GEMINI_API_KEY yo'q, javoblar qoida asosida qoladi")
	}

	// 3. Use case
	assistantUseCase := usecase.NewAssistantUseCase(assistantRepo, orderRepo, aiRepo)
	logger.InfoLogger.Println("✅ Use case tayyor")

	// 4. Telegram bot handler
	botHandler, err := telegram.NewBotHandler(cfg.TelegramToken, assistantUseCase)
	if err != nil {
		log.Fatalf("❌ Bot handler yaratilmadi: %v", err)
	}
	logger.InfoLogger.Printf("✅ Telegram bot tayyor: @%s", botHandler.GetBotUsername())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := botHandler.Start(ctx); err != nil {
			logger.ErrorLogger.Printf("❌ Bot xatosi: %v", err)
		}
	}()

	logger.InfoLogger.Println("🤖 Bot ishlayapti. To'xtatish uchun Ctrl+C ni bosing.")

	<-sigChan
	logger.InfoLogger.Println("⏳ To'xtatish signali qabul qilindi...")

	cancel()
	logger.InfoLogger.Println("✅ Bot to'xtatildi.")
}

// seedMemoryCatalog loads the xlsx catalog into both in-memory stores.
// Every known customer sees the same pool in this mode, so it is seeded
// under customer 0 and per-customer on first contact is not needed.
func seedMemoryCatalog(repo *storage.MemoryAssistantRepository, orders *storage.MemoryOrderRepository, path string) error {
	candidates, err := parser.LoadCatalogFile(path)
	if err != nil {
		return err
	}
	repo.SeedPool(0, candidates)
	for _, c := range candidates {
		orders.SeedMerchantName(c.MerchantID, c.MerchantName)
		orders.SeedProduct(c.ProductID, c.EffectivePrice, c.FreeDelivery)
	}
	return nil
}

func initDefaultTimezone() {
	const tzName = "Asia/Baghdad"
	if loc, err := time.LoadLocation(tzName); err == nil {
		time.Local = loc
		return
	}
	time.Local = time.FixedZone(tzName, 3*60*60)
}

func isEmptyOrDisabled(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.EqualFold(value, "disabled")
}
