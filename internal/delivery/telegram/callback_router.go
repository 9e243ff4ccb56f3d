package telegram

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
	"github.com/bestoffer/assistant-bot/internal/usecase"
)

const callbackTimeout = 30 * time.Second

func (h *BotHandler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.From == nil {
		return
	}
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	lang := h.getUserLang(userID)

	// Telegram talabi: callbackga darhol javob berish kerak
	if _, err := h.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("failed to answer callback for user %d: %v", userID, err)
	}

	action, token, ok := strings.Cut(query.Data, ":")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()

	switch action {
	case "draft_confirm":
		h.confirmDraft(ctx, userID, chatID, lang, token)
	case "draft_cancel":
		h.cancelDraft(ctx, userID, chatID, lang)
	}
}

func (h *BotHandler) confirmDraft(ctx context.Context, userID, chatID int64, lang, token string) {
	result, err := h.assistant.ConfirmDraft(ctx, userID, token, usecase.ConfirmOptions{
		SessionID: h.pinnedSession(userID),
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAddressRequired):
			h.sendMessage(chatID, t(lang,
				"احتاج عنوان توصيل حتى اثبت الطلب. ضيف عنوانك بالتطبيق وبعدين اضغط تأكيد.",
				"I need a delivery address to place the order. Add one in the app, then tap confirm again."))
		case errors.Is(err, usecase.ErrDraftExpired):
			h.sendMessage(chatID, t(lang,
				"انتهت صلاحية هذا الطلب. خبرني شتريد وأسويلك واحد جديد.",
				"That order suggestion expired. Tell me what you want and I'll prepare a new one."))
		case errors.Is(err, usecase.ErrDraftNotFound):
			h.sendMessage(chatID, t(lang,
				"ما لقيت طلب معلق. خبرني شتشتهي وأجهزلك واحد.",
				"I couldn't find a pending order. Tell me what you're craving and I'll prepare one."))
		default:
			log.Printf("draft confirm failed for user %d: %v", userID, err)
			h.sendMessage(chatID, t(lang,
				"ما كدرت اثبت الطلب، جرب مرة ثانية.",
				"I couldn't confirm the order. Please try again."))
		}
		return
	}

	h.pinSession(userID, result.SessionID)
	h.sendMessage(chatID, result.AssistantMessage.Text)
	if result.CreatedOrder != nil {
		h.sendMessage(chatID, formatOrderLine(lang, result.CreatedOrder))
	}
}

func (h *BotHandler) cancelDraft(ctx context.Context, userID, chatID int64, lang string) {
	result, err := h.assistant.Chat(ctx, userID, entity.ChatRequest{
		Message:   t(lang, "الغاء", "cancel"),
		SessionID: h.pinnedSession(userID),
	})
	if err != nil {
		log.Printf("draft cancel failed for user %d: %v", userID, err)
		h.sendMessage(chatID, t(lang,
			"ما كدرت الغي الطلب، جرب مرة ثانية.",
			"I couldn't cancel the order. Please try again."))
		return
	}
	h.pinSession(userID, result.SessionID)
	h.sendMessage(chatID, result.AssistantMessage.Text)
}
