package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// The profile is a whole-document JSON blob replaced on every write.
// Unknown keys from other builds survive a round trip through Extra so
// a rollout never erases what a newer build persisted.

// DefaultProfile returns the lazily created profile with every field at
// its documented default.
func DefaultProfile() *entity.Profile {
	return &entity.Profile{
		Language:        "ar",
		Style:           "neutral",
		PricePreference: "balanced",
		SpeedTier:       "normal",
		QualityTier:     "normal",
		CategorySignals: map[string]float64{},
		MerchantSignals: map[string]float64{},
		TokenSignals:    map[string]float64{},
		AudienceSignals: map[string]float64{},
		Conversation: entity.ConversationSummary{
			LastIntent: "unknown",
			LastTopic:  "none",
		},
		Model: entity.ConversationModel{
			Phase: entity.PhaseDiscovery,
		},
		LoyaltyLevel:       "new",
		LearningConfidence: "cold",
	}
}

// knownProfileKeys is derived from the struct's own JSON encoding so the
// Extra split never drifts from the field list.
var knownProfileKeys = func() map[string]struct{} {
	raw, err := json.Marshal(DefaultProfile())
	if err != nil {
		panic(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(err)
	}
	keys := make(map[string]struct{}, len(doc))
	for key := range doc {
		keys[key] = struct{}{}
	}
	return keys
}()

// ParseProfile decodes a stored document, applying defaults for missing
// fields and stashing unknown keys. nil/empty input yields the default
// profile. A malformed document is an error: silently resetting a
// customer's history is worse than failing the turn.
func ParseProfile(document []byte) (*entity.Profile, error) {
	profile := DefaultProfile()
	if len(document) == 0 {
		return profile, nil
	}
	if err := json.Unmarshal(document, profile); err != nil {
		return nil, fmt.Errorf("parse profile document: %w", err)
	}
	if profile.CategorySignals == nil {
		profile.CategorySignals = map[string]float64{}
	}
	if profile.MerchantSignals == nil {
		profile.MerchantSignals = map[string]float64{}
	}
	if profile.TokenSignals == nil {
		profile.TokenSignals = map[string]float64{}
	}
	if profile.AudienceSignals == nil {
		profile.AudienceSignals = map[string]float64{}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("parse profile document: %w", err)
	}
	for key, raw := range doc {
		if _, known := knownProfileKeys[key]; known {
			continue
		}
		if profile.Extra == nil {
			profile.Extra = map[string]json.RawMessage{}
		}
		profile.Extra[key] = raw
	}
	return profile, nil
}

// EncodeProfile serializes the profile back to one document, re-merging
// the preserved unknown keys.
func EncodeProfile(profile *entity.Profile) ([]byte, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile document: %w", err)
	}
	if len(profile.Extra) == 0 {
		return raw, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode profile document: %w", err)
	}
	for key, value := range profile.Extra {
		if _, known := doc[key]; !known {
			doc[key] = value
		}
	}
	return json.Marshal(doc)
}

func bumpMapCount(m map[string]float64, key string, amount float64) {
	if key == "" {
		return
	}
	m[key] += amount
}

// decaySignalMap returns a decayed copy, dropping entries that fall
// below the keep floor. Weights are rounded to 4 decimals so repeated
// decay stays byte-stable across stores.
func decaySignalMap(m map[string]float64, decay, minKeep float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for key, value := range m {
		next := math.Round(value*decay*10000) / 10000
		if next >= minKeep {
			out[key] = next
		}
	}
	return out
}

// trimSignalMap keeps the maxEntries highest weights. Ties break on key
// order so the result does not depend on map iteration.
func trimSignalMap(m map[string]float64, maxEntries int) map[string]float64 {
	if len(m) <= maxEntries {
		return m
	}
	type pair struct {
		key    string
		weight float64
	}
	ordered := make([]pair, 0, len(m))
	for key, weight := range m {
		ordered = append(ordered, pair{key, weight})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].weight != ordered[j].weight {
			return ordered[i].weight > ordered[j].weight
		}
		return ordered[i].key < ordered[j].key
	})
	out := make(map[string]float64, maxEntries)
	for _, p := range ordered[:maxEntries] {
		out[p.key] = p.weight
	}
	return out
}

// boostTokenSignals reinforces at most the first 10 tokens
func boostTokenSignals(m map[string]float64, tokens []string, amount float64) {
	limit := len(tokens)
	if limit > 10 {
		limit = 10
	}
	for _, token := range tokens[:limit] {
		if len([]rune(token)) < 2 {
			continue
		}
		bumpMapCount(m, token, amount)
	}
}

func appendUnique(list []string, value string, cap int) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	list = append(list, value)
	if len(list) > cap {
		list = list[len(list)-cap:]
	}
	return list
}

// mergeProfileSignals folds one turn's intent into the profile: decay
// first, then reinforcement, then trim, then the coarse tier recompute.
func mergeProfileSignals(profile *entity.Profile, intent entity.Intent) {
	profile.MerchantSignals = decaySignalMap(profile.MerchantSignals, constants.MerchantDecay, constants.MerchantFloor)
	profile.TokenSignals = decaySignalMap(profile.TokenSignals, constants.TokenDecay, constants.TokenFloor)
	profile.AudienceSignals = decaySignalMap(profile.AudienceSignals, constants.AudienceDecay, constants.AudienceFloor)

	if intent.WantsCheap {
		profile.Counters.Cheap++
	}
	if intent.WantsTopRated {
		profile.Counters.TopRated++
	}
	if intent.WantsFreeDelivery {
		profile.Counters.FreeDelivery++
	}
	if intent.OrderIntent {
		profile.Counters.Ordering++
	}
	if intent.SmallTalkType != entity.SmallTalkNone {
		profile.Conversation.SmallTalkCount++
	}
	if intent.OffTopicIntent {
		profile.Conversation.OffTopicCount++
	}

	for _, category := range intent.CategoryHints {
		bumpMapCount(profile.CategorySignals, category, 1)
		profile.PreferredCuisines = appendUnique(profile.PreferredCuisines, category, constants.MaxPreferredCuisines)
	}
	if intent.AudienceType != entity.AudienceUnknown {
		bumpMapCount(profile.AudienceSignals, string(intent.AudienceType), 1.1)
	}
	for _, note := range intent.DietaryNotes {
		profile.DietaryNotes = appendUnique(profile.DietaryNotes, note, constants.MaxDietaryNotes)
	}

	if !intent.OffTopicIntent {
		boostTokenSignals(profile.TokenSignals, intent.Tokens, 1)
	}
	profile.TokenSignals = trimSignalMap(profile.TokenSignals, constants.MaxTokenSignals)
	profile.CategorySignals = trimSignalMap(profile.CategorySignals, constants.MaxCategorySignals)
	profile.MerchantSignals = trimSignalMap(profile.MerchantSignals, constants.MaxMerchantSignals)
	profile.AudienceSignals = trimSignalMap(profile.AudienceSignals, constants.MaxAudienceSignals)

	cheapBias := float64(profile.Counters.Cheap) + float64(profile.Counters.FreeDelivery)*0.4
	topRatedBias := float64(profile.Counters.TopRated)
	switch {
	case cheapBias-topRatedBias >= 2:
		profile.PricePreference = "cheap"
	case topRatedBias-cheapBias >= 3:
		profile.PricePreference = "premium"
	default:
		profile.PricePreference = "balanced"
	}

	if intent.WantsFast {
		profile.SpeedTier = "fast"
	}
	if intent.WantsTopRated {
		profile.QualityTier = "high"
	}

	if intent.ExplicitLanguage != "" {
		profile.Language = intent.ExplicitLanguage
	} else if profile.Language == "" {
		profile.Language = intent.DetectedLanguage
	}
	if intent.WantsFast {
		profile.Style = "rush"
	}

	switch {
	case intent.OffTopicIntent:
		profile.Conversation.LastIntent = "off_topic"
	case intent.OrderIntent:
		profile.Conversation.LastIntent = "order"
	case intent.SmallTalkType != entity.SmallTalkNone:
		profile.Conversation.LastIntent = "small_talk"
	default:
		profile.Conversation.LastIntent = "browse"
	}
	if intent.OffTopicIntent {
		profile.Conversation.LastTopic = string(intent.OffTopicTheme)
	} else if len(intent.CategoryHints) > 0 {
		profile.Conversation.LastTopic = intent.CategoryHints[0]
	} else {
		profile.Conversation.LastTopic = "none"
	}
}

// learnFromConfirmedDraft applies the one-shot reinforcement when a
// draft becomes a real order: merchant weight and item-name tokens get
// a much stronger bump than browsing ever does.
func learnFromConfirmedDraft(profile *entity.Profile, draft *entity.Draft, norm *Normalizer) {
	profile.Counters.Ordering++
	profile.Conversation.ConfirmedDrafts++
	profile.Conversation.LastIntent = "draft_confirmed"

	bumpMapCount(profile.MerchantSignals, fmt.Sprintf("%d", draft.MerchantID), constants.ConfirmedMerchantBoost)
	for _, item := range draft.Items {
		boostTokenSignals(profile.TokenSignals, norm.Tokenize(item.ProductName), constants.ConfirmedTokenBoost)
	}
	profile.FavoriteMerchants = appendUnique(profile.FavoriteMerchants, draft.MerchantName, constants.MaxMerchantNameList)

	profile.MerchantSignals = trimSignalMap(profile.MerchantSignals, constants.MaxMerchantSignals)
	profile.TokenSignals = trimSignalMap(profile.TokenSignals, constants.MaxTokenSignals)
	profile.AudienceSignals = trimSignalMap(profile.AudienceSignals, constants.MaxAudienceSignals)
}

// enrichProfileAfterConversation recomputes the advisory loyalty and
// confidence labels. Neither feeds back into ranking.
func enrichProfileAfterConversation(profile *entity.Profile) {
	activity := profile.Counters.Ordering + 3*profile.Conversation.ConfirmedDrafts
	switch {
	case activity >= 12:
		profile.LoyaltyLevel = "gold"
	case activity >= 5:
		profile.LoyaltyLevel = "silver"
	case activity >= 1:
		profile.LoyaltyLevel = "bronze"
	default:
		profile.LoyaltyLevel = "new"
	}

	cardinality := len(profile.TokenSignals) + len(profile.CategorySignals) +
		len(profile.MerchantSignals) + len(profile.AudienceSignals)
	switch {
	case cardinality >= 120:
		profile.LearningConfidence = "high"
	case cardinality >= 40:
		profile.LearningConfidence = "medium"
	case cardinality >= 10:
		profile.LearningConfidence = "low"
	default:
		profile.LearningConfidence = "cold"
	}
}

func topWeightedKeys(m map[string]float64, limit int) []entity.WeightedKey {
	out := make([]entity.WeightedKey, 0, len(m))
	for key, weight := range m {
		out = append(out, entity.WeightedKey{Key: key, Weight: weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ProjectProfile builds the compact view returned with each payload
func ProjectProfile(profile *entity.Profile) entity.ProfileProjection {
	return entity.ProfileProjection{
		PricePreference: profile.PricePreference,
		LoyaltyLevel:    profile.LoyaltyLevel,
		Confidence:      profile.LearningConfidence,
		Counters:        profile.Counters,
		TopCategories:   topWeightedKeys(profile.CategorySignals, 5),
		FavoriteTokens:  topWeightedKeys(profile.TokenSignals, 7),
		TopMerchants:    topWeightedKeys(profile.MerchantSignals, 5),
		TopAudiences:    topWeightedKeys(profile.AudienceSignals, 3),
		Conversation:    profile.Conversation,
	}
}
