package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	lang := h.getUserLang(userID)

	command := message.Command()
	if command == "" {
		command = strings.TrimPrefix(strings.Fields(strings.TrimSpace(message.Text))[0], "/")
	}

	switch command {
	case "start":
		payload, err := h.assistant.GetCurrentConversation(ctx, userID, h.pinnedSession(userID))
		if err != nil {
			log.Printf("failed to open conversation for user %d: %v", userID, err)
			h.sendMessage(chatID, t(lang,
				"صار خطأ بفتح المحادثة، جرب مرة ثانية.",
				"Could not open the conversation. Please try again."))
			return
		}
		h.pinSession(userID, payload.SessionID)
		if len(payload.Messages) > 0 {
			h.sendMessage(chatID, payload.Messages[len(payload.Messages)-1].Text)
		}

	case "lang":
		arg := strings.ToLower(strings.TrimSpace(message.CommandArguments()))
		switch arg {
		case "en", "english":
			h.setUserLang(userID, "en")
			h.sendMessage(chatID, "Language switched to English.")
		case "ar", "arabic", "عربي":
			h.setUserLang(userID, "ar")
			h.sendMessage(chatID, "تم التحويل الى العربية.")
		default:
			h.sendMessage(chatID, t(lang,
				"الاستعمال: ‎/lang ar او ‎/lang en",
				"Usage: /lang ar or /lang en"))
		}

	case "cancel":
		h.submitText(ctx, message, t(lang, "الغاء", "cancel"))

	case "help":
		h.sendMessage(chatID, t(lang,
			"اكتب شتريد تاكل وبساعدك: اقترح مطاعم واكلات، واجهز لك طلب جاهز للتأكيد.\n"+
				"‎/start محادثة جديدة\n‎/cancel الغاء الطلب المعلق\n‎/lang تغيير اللغة",
			"Tell me what you feel like eating and I'll help: I suggest restaurants and dishes and prepare an order for you to confirm.\n"+
				"/start open the conversation\n/cancel cancel the pending order\n/lang switch language"))

	default:
		h.sendMessage(chatID, t(lang,
			"ما اعرف هذا الامر. جرب ‎/help",
			"Unknown command. Try /help"))
	}
}

// submitText routes a synthetic text through the normal pipeline
func (h *BotHandler) submitText(ctx context.Context, message *tgbotapi.Message, text string) {
	userID := message.From.ID
	if !h.beginProcessing(userID) {
		return
	}
	h.workerPool.submit(&messageRequest{
		ctx:     ctx,
		userID:  userID,
		chatID:  message.Chat.ID,
		text:    text,
		lang:    h.getUserLang(userID),
		traceID: newTraceID(),
	})
}
