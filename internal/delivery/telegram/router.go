package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Start botni ishga tushirish
func (h *BotHandler) Start(ctx context.Context) error {
	h.workerPool.start(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.workerPool.shutdown()
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				go h.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage xabarni qayta ishlash
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil || !message.Chat.IsPrivate() {
		return
	}
	// Long-poll backlog from before this process started is stale
	if message.Time().Before(h.botStartedAt) {
		return
	}
	userID := message.From.ID

	if message.IsCommand() || strings.HasPrefix(strings.TrimSpace(message.Text), "/") {
		h.handleCommand(ctx, message)
		return
	}
	if strings.TrimSpace(message.Text) == "" {
		return
	}

	if !h.beginProcessing(userID) {
		h.sendMessage(message.Chat.ID, t(h.getUserLang(userID),
			"لحظة، ما زلت اجهز ردي على رسالتك السابقة.",
			"One moment, I'm still working on your previous message."))
		return
	}

	req := &messageRequest{
		ctx:     ctx,
		userID:  userID,
		chatID:  message.Chat.ID,
		text:    message.Text,
		lang:    h.getUserLang(userID),
		traceID: newTraceID(),
	}
	log.Printf("[router] queued message trace=%s user=%d len=%d", req.traceID, userID, len(message.Text))
	h.workerPool.submit(req)
}
