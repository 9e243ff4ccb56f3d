package entity

// PrimaryIntent is the single resolved intent tag for a chat turn
type PrimaryIntent string

const (
	IntentBrowse      PrimaryIntent = "BROWSE"
	IntentRecommend   PrimaryIntent = "RECOMMEND"
	IntentMoodBased   PrimaryIntent = "MOOD_BASED"
	IntentOrderDirect PrimaryIntent = "ORDER_DIRECT"
	IntentOffers      PrimaryIntent = "OFFERS"
	IntentDiscoverNew PrimaryIntent = "DISCOVER_NEW"
	IntentEvaluate    PrimaryIntent = "EVALUATE"
	IntentSupport     PrimaryIntent = "SUPPORT"
)

// AudienceType who the order is for
type AudienceType string

const (
	AudienceUnknown AudienceType = "unknown"
	AudienceSolo    AudienceType = "solo"
	AudienceFamily  AudienceType = "family"
	AudienceGroup   AudienceType = "group"
)

// SmallTalkType classifies non-order pleasantries
type SmallTalkType string

const (
	SmallTalkNone     SmallTalkType = "none"
	SmallTalkGreeting SmallTalkType = "greeting"
	SmallTalkThanks   SmallTalkType = "thanks"
	SmallTalkChitchat SmallTalkType = "chitchat"
)

// OffTopicTheme themes an off-topic message for the one-liner reply
type OffTopicTheme string

const (
	OffTopicNone     OffTopicTheme = "none"
	OffTopicWeather  OffTopicTheme = "weather"
	OffTopicJoke     OffTopicTheme = "joke"
	OffTopicIdentity OffTopicTheme = "bot_identity"
	OffTopicMood     OffTopicTheme = "mood"
	OffTopicGeneral  OffTopicTheme = "general"
)

// Intent is the structured result of one message, derived and ephemeral.
// BudgetIqd and PeopleCount use 0 for "not stated".
type Intent struct {
	NormalizedText string
	Tokens         []string

	WantsCheap        bool
	WantsTopRated     bool
	WantsFreeDelivery bool
	WantsFast         bool
	OrderIntent       bool
	ConfirmIntent     bool
	CancelIntent      bool
	SupportIntent     bool
	ComparisonIntent  bool
	OffTopicIntent    bool

	OffTopicTheme OffTopicTheme
	SmallTalkType SmallTalkType

	CategoryHints     []string
	BudgetIqd         int
	RequestedQuantity int
	PeopleCount       int
	AudienceType      AudienceType
	MealType          string
	SpiceLevel        string
	DietaryNotes      []string

	// DetectedLanguage is "ar" or "en"; ExplicitLanguage is non-empty only
	// when the user asked to switch languages this turn.
	DetectedLanguage string
	ExplicitLanguage string

	Primary PrimaryIntent
}
