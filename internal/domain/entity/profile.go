package entity

import (
	"encoding/json"
	"time"
)

// Phase of the slot-filling dialogue, persisted with the profile
type Phase string

const (
	PhaseDiscovery      Phase = "discovery"
	PhaseUnderstanding  Phase = "understanding"
	PhaseRecommendation Phase = "recommendation"
	PhaseSupport        Phase = "support"
	PhaseCheckout       Phase = "checkout"
)

// ConversationModel tracks per-customer dialogue slots across sessions.
// A filled slot is never cleared, only overwritten by a newer signal.
type ConversationModel struct {
	Phase               Phase     `json:"phase"`
	Turns               int       `json:"turns"`
	ClarificationTurns  int       `json:"clarificationTurns"`
	RecommendationTurns int       `json:"recommendationTurns"`
	LastQuestionSlot    string    `json:"lastQuestionSlot"`
	LastQuestionAt      time.Time `json:"lastQuestionAt"`

	Cuisine         string   `json:"cuisine"`
	BudgetLevel     string   `json:"budgetLevel"`
	BudgetIqd       int      `json:"budgetIqd"`
	SpeedPriority   string   `json:"speedPriority"`
	QualityPriority string   `json:"qualityPriority"`
	MealType        string   `json:"mealType"`
	SpiceLevel      string   `json:"spiceLevel"`
	AudienceType    string   `json:"audienceType"`
	PeopleCount     int      `json:"peopleCount"`
	Dietary         []string `json:"dietary"`
	City            string   `json:"city"`
	Area            string   `json:"area"`
}

// ProfileCounters coarse preference counters bumped per turn
type ProfileCounters struct {
	Cheap        int `json:"cheap"`
	TopRated     int `json:"topRated"`
	FreeDelivery int `json:"freeDelivery"`
	Ordering     int `json:"ordering"`
}

// ConversationSummary advisory rollup of how the customer talks to the bot
type ConversationSummary struct {
	SmallTalkCount  int    `json:"smallTalkCount"`
	OffTopicCount   int    `json:"offTopicCount"`
	ConfirmedDrafts int    `json:"confirmedDrafts"`
	LastIntent      string `json:"lastIntent"`
	LastTopic       string `json:"lastTopic"`
}

// Profile is the persistent, decaying preference document, one per
// customer. Created lazily with defaults, merged on every turn, never
// deleted. Signal maps are trimmed to a bounded size after each update.
type Profile struct {
	Language          string   `json:"language"`
	Style             string   `json:"style"`
	City              string   `json:"city"`
	Area              string   `json:"area"`
	DietaryNotes      []string `json:"dietaryNotes"`
	PreferredCuisines []string `json:"preferredCuisines"`

	PricePreference string `json:"pricePreference"`
	SpeedTier       string `json:"speedTier"`
	QualityTier     string `json:"qualityTier"`

	FavoriteMerchants []string `json:"favoriteMerchants"`
	DislikedMerchants []string `json:"dislikedMerchants"`
	IssueHistory      []string `json:"issueHistory"`
	SatisfactionNotes []string `json:"satisfactionNotes"`

	Counters ProfileCounters `json:"counters"`

	CategorySignals map[string]float64 `json:"categorySignals"`
	MerchantSignals map[string]float64 `json:"merchantSignals"`
	TokenSignals    map[string]float64 `json:"tokenSignals"`
	AudienceSignals map[string]float64 `json:"audienceSignals"`

	Conversation ConversationSummary `json:"conversation"`
	Model        ConversationModel   `json:"conversationModel"`

	LoyaltyLevel       string `json:"loyaltyLevel"`
	LearningConfidence string `json:"learningConfidence"`

	// Extra holds unknown/legacy document fields so a write never drops
	// what a newer or older build persisted.
	Extra map[string]json.RawMessage `json:"-"`
}

// ProfileProjection compact view returned with the conversation payload
type ProfileProjection struct {
	PricePreference string             `json:"pricePreference"`
	LoyaltyLevel    string             `json:"loyaltyLevel"`
	Confidence      string             `json:"learningConfidence"`
	Counters        ProfileCounters    `json:"counters"`
	TopCategories   []WeightedKey      `json:"topCategories"`
	FavoriteTokens  []WeightedKey      `json:"favoriteTokens"`
	TopMerchants    []WeightedKey      `json:"topMerchants"`
	TopAudiences    []WeightedKey      `json:"topAudiences"`
	Conversation    ConversationSummary `json:"conversation"`
}

// WeightedKey one (key, weight) pair from a signal map
type WeightedKey struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}
