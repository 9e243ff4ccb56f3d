package telegram

import (
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bestoffer/assistant-bot/internal/usecase"
)

// BotHandler Telegram bot handler
type BotHandler struct {
	bot       *tgbotapi.BotAPI
	assistant usecase.AssistantUseCase

	// User language preferences ("ar" default)
	langMu   sync.RWMutex
	userLang map[int64]string

	// Per-user processing guard so one user cannot stack turns
	processingMu sync.RWMutex
	processing   map[int64]bool

	// Telegram user -> assistant session pin
	sessionMu sync.RWMutex
	sessions  map[int64]int64

	workerPool *workerPool

	botStartedAt time.Time
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(token string, assistant usecase.AssistantUseCase) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	handler := &BotHandler{
		bot:          bot,
		assistant:    assistant,
		userLang:     make(map[int64]string),
		processing:   make(map[int64]bool),
		sessions:     make(map[int64]int64),
		botStartedAt: time.Now(),
	}
	handler.workerPool = newWorkerPool(handler, defaultWorkerCount)

	return handler, nil
}

// GetBotUsername returns the bot's username from Telegram API state.
func (h *BotHandler) GetBotUsername() string {
	return h.bot.Self.UserName
}

func (h *BotHandler) beginProcessing(userID int64) bool {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	if h.processing[userID] {
		return false
	}
	h.processing[userID] = true
	return true
}

func (h *BotHandler) endProcessing(userID int64) {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	delete(h.processing, userID)
}

func (h *BotHandler) pinnedSession(userID int64) int64 {
	h.sessionMu.RLock()
	defer h.sessionMu.RUnlock()
	return h.sessions[userID]
}

func (h *BotHandler) pinSession(userID, sessionID int64) {
	h.sessionMu.Lock()
	defer h.sessionMu.Unlock()
	h.sessions[userID] = sessionID
}
