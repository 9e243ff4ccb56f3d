package telegram

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
	"github.com/bestoffer/assistant-bot/internal/usecase"
)

func (h *BotHandler) sendMessage(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("failed to send message to chat %d: %v", chatID, err)
	}
}

// sendChatResult delivers the assistant reply; a pending draft adds
// confirm/cancel buttons under the message.
func (h *BotHandler) sendChatResult(chatID, userID int64, result *entity.ChatResult) {
	text := result.AssistantMessage.Text

	if result.CreatedOrder != nil {
		h.sendMessage(chatID, text)
		return
	}

	draft := result.Draft
	if draft == nil || draft.Status != entity.DraftPending {
		h.sendMessage(chatID, text)
		return
	}

	lang := h.getUserLang(userID)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = draftButtons(lang, draft.Token)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("failed to send draft message to chat %d: %v", chatID, err)
	}
}

func draftButtons(lang, token string) tgbotapi.InlineKeyboardMarkup {
	confirm := tgbotapi.NewInlineKeyboardButtonData(
		t(lang, "✅ تأكيد الطلب", "✅ Confirm order"),
		"draft_confirm:"+token)
	cancel := tgbotapi.NewInlineKeyboardButtonData(
		t(lang, "❌ إلغاء", "❌ Cancel"),
		"draft_cancel:"+token)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(confirm, cancel),
	)
}

func formatOrderLine(lang string, order *entity.Order) string {
	return fmt.Sprintf(t(lang,
		"رقم الطلب: %d — %s — %s",
		"Order #%d — %s — %s"),
		order.ID, order.MerchantName, usecase.FormatIqd(order.TotalAmount))
}
