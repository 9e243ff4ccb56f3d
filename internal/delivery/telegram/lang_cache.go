package telegram

// Language helpers
func (h *BotHandler) setUserLang(userID int64, lang string) {
	h.langMu.Lock()
	defer h.langMu.Unlock()
	if lang != "en" {
		lang = "ar"
	}
	h.userLang[userID] = lang
}

func (h *BotHandler) getUserLang(userID int64) string {
	h.langMu.RLock()
	defer h.langMu.RUnlock()
	if lang, ok := h.userLang[userID]; ok {
		return lang
	}
	return "ar"
}
