package entity

// ChatRequest the chat entry point input
type ChatRequest struct {
	Message      string
	SessionID    int64 // 0 = latest or new
	ConfirmDraft bool
	DraftToken   string
	AddressID    int64
	Note         string
	CreateDraft  bool // force draft materialization
}

// Suggestions ranked output returned with a chat turn
type Suggestions struct {
	Merchants []MerchantSuggestion `json:"merchants"`
	Products  []ProductSuggestion  `json:"products"`
}

// ConversationPayload transcript tail + draft + profile view for one session
type ConversationPayload struct {
	SessionID int64             `json:"sessionId"`
	Messages  []ChatMessage     `json:"messages"`
	Draft     *Draft            `json:"draftOrder"`
	Addresses []Address         `json:"addresses"`
	Profile   ProfileProjection `json:"profile"`
}

// ChatResult everything one chat turn produces
type ChatResult struct {
	ConversationPayload
	AssistantMessage ChatMessage `json:"assistantMessage"`
	Suggestions      Suggestions `json:"suggestions"`
	CreatedOrder     *Order      `json:"createdOrder"`
}
