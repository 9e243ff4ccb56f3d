package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// offTopicNeedsTokens keeps the source heuristic that an utterance with
// zero surviving tokens is not flagged off-topic. Not load-bearing.
var offTopicNeedsTokens = true

var (
	reBudget   = regexp.MustCompile(`(\d{2,6})\s*([\p{L}]*)`)
	reQuantity = regexp.MustCompile(`(?:x|qty|عدد|قطعه|حبه)\s*(\d{1,2})`)
	rePeople   = regexp.MustCompile(`(\d{1,2})\s*(?:شخص|اشخاص|نفر|انفار|person|persons|people)`)
)

// IntentExtractor turns one normalized message into an Intent record.
// Pure over (text, vocabulary): no state survives between calls.
type IntentExtractor struct {
	sets *KeywordSets
	norm *Normalizer

	normalized map[*[]Keyword][]string
}

// NewIntentExtractor pre-normalizes every keyword list once
func NewIntentExtractor(sets *KeywordSets, norm *Normalizer) *IntentExtractor {
	e := &IntentExtractor{
		sets:       sets,
		norm:       norm,
		normalized: make(map[*[]Keyword][]string),
	}
	for _, list := range []*[]Keyword{
		&sets.Cheap, &sets.TopRated, &sets.FreeDelivery, &sets.Fast,
		&sets.Order, &sets.Confirm, &sets.Cancel, &sets.Support,
		&sets.Comparison, &sets.Offers, &sets.DiscoverNew, &sets.Evaluate,
		&sets.MoodBased, &sets.Greeting, &sets.Thanks, &sets.Chitchat,
		&sets.OrderDomain, &sets.Group, &sets.Family, &sets.Solo,
		&sets.WeatherChitchat, &sets.JokeChitchat, &sets.BotIdentity,
		&sets.MoodChitchat, &sets.Breakfast, &sets.Lunch, &sets.Dinner,
		&sets.Snack, &sets.Spicy, &sets.Mild, &sets.Dietary,
		&sets.SwitchToArabic, &sets.SwitchToEnglish,
	} {
		e.normalized[list] = e.normalizeList(*list)
	}
	return e
}

func (e *IntentExtractor) normalizeList(list []Keyword) []string {
	out := make([]string, 0, len(list))
	for _, kw := range list {
		if n := e.norm.Normalize(kw.Text); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (e *IntentExtractor) contains(text string, list *[]Keyword) bool {
	for _, kw := range e.normalized[list] {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (e *IntentExtractor) categoryHints(text string) []string {
	var hints []string
	for _, hint := range e.sets.Categories {
		for _, kw := range hint.Words {
			if n := e.norm.Normalize(kw.Text); n != "" && strings.Contains(text, n) {
				hints = append(hints, hint.Key)
				break
			}
		}
	}
	return hints
}

// extractBudgetIqd returns the first in-range amount, applying the
// thousand multiplier for a trailing unit word. 0 = no usable budget.
func (e *IntentExtractor) extractBudgetIqd(text string) int {
	thousand := e.norm.Normalize("الف")
	for _, match := range reBudget.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.Atoi(match[1])
		if err != nil || amount == 0 {
			continue
		}
		unit := match[2]
		if unit == thousand || unit == "k" {
			amount *= 1000
		}
		if amount >= constants.MinBudgetIqd && amount <= constants.MaxBudgetIqd {
			return amount
		}
	}
	return 0
}

func extractRequestedQuantity(text string) int {
	match := reQuantity.FindStringSubmatch(text)
	if match == nil {
		return 1
	}
	quantity, err := strconv.Atoi(match[1])
	if err != nil {
		return 1
	}
	return clampInt(quantity, constants.MinQuantity, constants.MaxQuantity)
}

func (e *IntentExtractor) extractPeopleCount(text string, audience entity.AudienceType) int {
	if match := rePeople.FindStringSubmatch(text); match != nil {
		if count, err := strconv.Atoi(match[1]); err == nil && count > 0 {
			return count
		}
	}
	switch audience {
	case entity.AudienceSolo:
		return 1
	case entity.AudienceFamily:
		return 4
	case entity.AudienceGroup:
		return 6
	}
	return 0
}

func (e *IntentExtractor) smallTalkType(text string) entity.SmallTalkType {
	switch {
	case text == "":
		return entity.SmallTalkNone
	case e.contains(text, &e.sets.Greeting):
		return entity.SmallTalkGreeting
	case e.contains(text, &e.sets.Thanks):
		return entity.SmallTalkThanks
	case e.contains(text, &e.sets.Chitchat):
		return entity.SmallTalkChitchat
	}
	return entity.SmallTalkNone
}

func (e *IntentExtractor) audienceType(text string) entity.AudienceType {
	switch {
	case text == "":
		return entity.AudienceUnknown
	case e.contains(text, &e.sets.Group):
		return entity.AudienceGroup
	case e.contains(text, &e.sets.Family):
		return entity.AudienceFamily
	case e.contains(text, &e.sets.Solo):
		return entity.AudienceSolo
	}
	return entity.AudienceUnknown
}

func (e *IntentExtractor) offTopicTheme(text string) entity.OffTopicTheme {
	switch {
	case text == "":
		return entity.OffTopicNone
	case e.contains(text, &e.sets.WeatherChitchat):
		return entity.OffTopicWeather
	case e.contains(text, &e.sets.JokeChitchat):
		return entity.OffTopicJoke
	case e.contains(text, &e.sets.BotIdentity):
		return entity.OffTopicIdentity
	case e.contains(text, &e.sets.MoodChitchat):
		return entity.OffTopicMood
	}
	return entity.OffTopicGeneral
}

func (e *IntentExtractor) mealType(text string) string {
	switch {
	case e.contains(text, &e.sets.Breakfast):
		return "breakfast"
	case e.contains(text, &e.sets.Lunch):
		return "lunch"
	case e.contains(text, &e.sets.Dinner):
		return "dinner"
	case e.contains(text, &e.sets.Snack):
		return "snack"
	}
	return ""
}

func (e *IntentExtractor) spiceLevel(text string) string {
	switch {
	case e.contains(text, &e.sets.Mild):
		return "mild"
	case e.contains(text, &e.sets.Spicy):
		return "spicy"
	}
	return ""
}

func (e *IntentExtractor) dietaryNotes(text string) []string {
	var notes []string
	for _, kw := range e.normalized[&e.sets.Dietary] {
		if strings.Contains(text, kw) {
			notes = append(notes, kw)
		}
	}
	return notes
}

func detectLanguage(raw string) string {
	if countArabicRunes(raw) > 0 {
		return "ar"
	}
	return "en"
}

// Detect runs every extraction over one raw message
func (e *IntentExtractor) Detect(message string) entity.Intent {
	text := e.norm.Normalize(message)
	tokens := e.norm.Tokenize(message)

	intent := entity.Intent{
		NormalizedText: text,
		Tokens:         tokens,

		WantsCheap:        e.contains(text, &e.sets.Cheap),
		WantsTopRated:     e.contains(text, &e.sets.TopRated),
		WantsFreeDelivery: e.contains(text, &e.sets.FreeDelivery),
		WantsFast:         e.contains(text, &e.sets.Fast),
		OrderIntent:       e.contains(text, &e.sets.Order),
		ConfirmIntent:     e.contains(text, &e.sets.Confirm),
		CancelIntent:      e.contains(text, &e.sets.Cancel),
		SupportIntent:     e.contains(text, &e.sets.Support),
		ComparisonIntent:  e.contains(text, &e.sets.Comparison),

		SmallTalkType:    e.smallTalkType(text),
		AudienceType:     e.audienceType(text),
		CategoryHints:    e.categoryHints(text),
		BudgetIqd:        e.extractBudgetIqd(text),
		MealType:         e.mealType(text),
		SpiceLevel:       e.spiceLevel(text),
		DietaryNotes:     e.dietaryNotes(text),
		DetectedLanguage: detectLanguage(message),
	}
	intent.RequestedQuantity = extractRequestedQuantity(text)
	intent.PeopleCount = e.extractPeopleCount(text, intent.AudienceType)

	switch {
	case e.contains(text, &e.sets.SwitchToEnglish):
		intent.ExplicitLanguage = "en"
	case e.contains(text, &e.sets.SwitchToArabic):
		intent.ExplicitLanguage = "ar"
	}

	hasDomainTerms := e.contains(text, &e.sets.OrderDomain) ||
		len(intent.CategoryHints) > 0 ||
		intent.BudgetIqd > 0

	hardOrderSignals := intent.OrderIntent || intent.ConfirmIntent ||
		intent.CancelIntent || intent.WantsCheap || intent.WantsTopRated ||
		intent.WantsFreeDelivery || intent.WantsFast

	intent.OffTopicIntent = !hardOrderSignals && !hasDomainTerms &&
		intent.SmallTalkType != entity.SmallTalkGreeting &&
		(!offTopicNeedsTokens || len(tokens) > 0)
	if intent.OffTopicIntent {
		intent.OffTopicTheme = e.offTopicTheme(text)
	} else {
		intent.OffTopicTheme = entity.OffTopicNone
	}

	intent.Primary = e.resolvePrimary(text, intent)
	return intent
}

// resolvePrimary fixed priority order: support > discover-new > offers >
// evaluate > mood-based > recommend > order-direct > browse
func (e *IntentExtractor) resolvePrimary(text string, intent entity.Intent) entity.PrimaryIntent {
	preferenceSignal := intent.WantsCheap || intent.WantsTopRated ||
		intent.WantsFreeDelivery || intent.WantsFast ||
		len(intent.CategoryHints) > 0 || intent.BudgetIqd > 0

	switch {
	case intent.SupportIntent:
		return entity.IntentSupport
	case e.contains(text, &e.sets.DiscoverNew):
		return entity.IntentDiscoverNew
	case e.contains(text, &e.sets.Offers):
		return entity.IntentOffers
	case e.contains(text, &e.sets.Evaluate) || intent.ComparisonIntent:
		return entity.IntentEvaluate
	case e.contains(text, &e.sets.MoodBased):
		return entity.IntentMoodBased
	case preferenceSignal:
		return entity.IntentRecommend
	case intent.OrderIntent:
		return entity.IntentOrderDirect
	}
	return entity.IntentBrowse
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
