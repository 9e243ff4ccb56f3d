package repository

import "context"

// ReplyContext the structured request handed to the wording model
type ReplyContext struct {
	Language       string `json:"language"`
	IntentSummary  any    `json:"intent"`
	ProfileSummary any    `json:"profile"`
	Merchants      any    `json:"merchants,omitempty"`
	Products       any    `json:"products,omitempty"`
	Draft          any    `json:"draft,omitempty"`
	CreatedOrder   any    `json:"createdOrder,omitempty"`
	RuleBasedText  string `json:"ruleBasedText"`
}

// AIRepository best-effort reply-wording override. Implementations may
// only rephrase RuleBasedText; callers ignore every error and fall back
// to the deterministic reply.
type AIRepository interface {
	RewriteReply(ctx context.Context, reqCtx ReplyContext) (string, error)
	Close() error
}
