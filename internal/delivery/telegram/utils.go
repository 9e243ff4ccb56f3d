package telegram

import "github.com/google/uuid"

// newTraceID tags one update through the worker pool logs
func newTraceID() string {
	return uuid.New().String()
}

func t(lang, ar, en string) string {
	if lang == "en" {
		return en
	}
	return ar
}
