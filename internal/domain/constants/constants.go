package constants

import "time"

// Pricing konstantalari (IQD)
const (
	// FixedServiceFee is charged once per draft with a non-empty basket
	FixedServiceFee = 500

	// FixedDeliveryFee is waived when any draft item carries free delivery
	FixedDeliveryFee = 1000

	MinBudgetIqd = 500
	MaxBudgetIqd = 500000

	MinQuantity = 1
	MaxQuantity = 8
)

// Profile signal-map bounds
const (
	MaxTokenSignals    = 150
	MaxCategorySignals = 90
	MaxMerchantSignals = 90
	MaxAudienceSignals = 30

	MaxDietaryNotes      = 10
	MaxPreferredCuisines = 12
	MaxMerchantNameList  = 20
	MaxIssueHistory      = 20
	MaxSatisfactionNotes = 20
)

// Signal decay factors and keep floors
const (
	MerchantDecay = 0.992
	MerchantFloor = 0.25
	TokenDecay    = 0.985
	TokenFloor    = 0.15
	AudienceDecay = 0.993
	AudienceFloor = 0.20

	// One-shot reinforcement when a draft becomes a real order
	ConfirmedMerchantBoost = 2.5
	ConfirmedTokenBoost    = 1.25
)

// Conversation machine
const (
	CoreSlotCount       = 6
	MinFilledSlots      = 3
	MinTurnsDefault     = 3
	MinTurnsEagerIntent = 2 // RECOMMEND / MOOD_BASED
)

// Draft lifecycle
const (
	// DraftTTL bounds how long a pending draft stays confirmable
	DraftTTL = 30 * time.Minute
)

// Ranking output bounds
const (
	MaxProductSuggestions  = 12
	MaxMerchantSuggestions = 6
	MerchantGroupingWindow = 40
	DraftCandidateWindow   = 30
	DraftItemsPerMerchant  = 3
)

// Session / transcript bounds
const (
	DefaultTranscriptLimit = 50
	RecentContextLimit     = 12
	DefaultPoolLimit       = 900
)

// AI reply override
const (
	// GeminiModelName model used for wording-only reply overrides
	GeminiModelName = "gemini-2.5-flash"

	AITemperature = 0.3
	AITopK        = 20
	AITopP        = 0.9

	// OverrideTimeout bounds the best-effort rewrite; on expiry the
	// deterministic text is used unchanged
	OverrideTimeout = 6 * time.Second

	// MaxOverrideChars truncates whatever the model returns
	MaxOverrideChars = 1800
)
