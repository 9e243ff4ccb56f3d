package usecase

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

func TestParseProfileDefaults(t *testing.T) {
	profile, err := ParseProfile(nil)
	if err != nil {
		t.Fatalf("ParseProfile(nil) error: %v", err)
	}
	if profile.Language != "ar" {
		t.Errorf("Language = %q, want ar", profile.Language)
	}
	if profile.PricePreference != "balanced" {
		t.Errorf("PricePreference = %q, want balanced", profile.PricePreference)
	}
	if profile.Model.Phase != entity.PhaseDiscovery {
		t.Errorf("Phase = %q, want discovery", profile.Model.Phase)
	}
}

func TestParseProfileMalformedIsAnError(t *testing.T) {
	if _, err := ParseProfile([]byte("{not json")); err == nil {
		t.Fatal("ParseProfile on malformed input should error, got nil")
	}
}

func TestProfileExtraKeysSurviveRoundTrip(t *testing.T) {
	document := []byte(`{"language":"en","futureField":{"a":1},"anotherOne":"x"}`)
	profile, err := ParseProfile(document)
	if err != nil {
		t.Fatalf("ParseProfile error: %v", err)
	}
	if profile.Language != "en" {
		t.Errorf("Language = %q, want en", profile.Language)
	}

	encoded, err := EncodeProfile(profile)
	if err != nil {
		t.Fatalf("EncodeProfile error: %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &out); err != nil {
		t.Fatalf("re-decode error: %v", err)
	}
	if _, ok := out["futureField"]; !ok {
		t.Error("futureField was dropped on round trip")
	}
	if _, ok := out["anotherOne"]; !ok {
		t.Error("anotherOne was dropped on round trip")
	}
}

func TestMergeProfileSignalsReinforcesAndDecays(t *testing.T) {
	e := newTestExtractor()
	profile := DefaultProfile()

	intent := e.Detect("بريد برغر رخيص")
	mergeProfileSignals(profile, intent)

	if profile.CategorySignals["burgers"] != 1 {
		t.Errorf("CategorySignals[burgers] = %v, want 1", profile.CategorySignals["burgers"])
	}
	if profile.Counters.Cheap != 1 {
		t.Errorf("Counters.Cheap = %d, want 1", profile.Counters.Cheap)
	}
	if profile.TokenSignals["برغر"] != 1 {
		t.Errorf("TokenSignals[برغر] = %v, want 1", profile.TokenSignals["برغر"])
	}

	// A second cheap turn pushes the price preference to cheap
	mergeProfileSignals(profile, e.Detect("اريد شي رخيص"))
	if profile.PricePreference != "cheap" {
		t.Errorf("PricePreference = %q, want cheap", profile.PricePreference)
	}
}

func TestMergeProfileSignalsOffTopicLearnsNoTokens(t *testing.T) {
	e := newTestExtractor()
	profile := DefaultProfile()

	mergeProfileSignals(profile, e.Detect("شلون الجو اليوم"))
	if len(profile.TokenSignals) != 0 {
		t.Fatalf("off-topic turn wrote token signals: %v", profile.TokenSignals)
	}
	if profile.Conversation.OffTopicCount != 1 {
		t.Errorf("OffTopicCount = %d, want 1", profile.Conversation.OffTopicCount)
	}
	if profile.Conversation.LastTopic != "weather" {
		t.Errorf("LastTopic = %q, want weather", profile.Conversation.LastTopic)
	}
}

func TestSignalMapsStayBounded(t *testing.T) {
	profile := DefaultProfile()
	for i := 0; i < constants.MaxTokenSignals+80; i++ {
		bumpMapCount(profile.TokenSignals, fmt.Sprintf("token-%03d", i), float64(i%9)+1)
	}
	profile.TokenSignals = trimSignalMap(profile.TokenSignals, constants.MaxTokenSignals)
	if len(profile.TokenSignals) != constants.MaxTokenSignals {
		t.Fatalf("len(TokenSignals) = %d, want %d", len(profile.TokenSignals), constants.MaxTokenSignals)
	}
}

func TestDecaySignalMapDropsBelowFloor(t *testing.T) {
	m := map[string]float64{"strong": 5, "weak": 0.12}
	out := decaySignalMap(m, constants.TokenDecay, constants.TokenFloor)
	if _, ok := out["weak"]; ok {
		t.Error("weak entry should have decayed out")
	}
	if out["strong"] != 4.925 {
		t.Errorf("strong = %v, want 4.925 (rounded to 4 decimals)", out["strong"])
	}
}

func TestLearnFromConfirmedDraft(t *testing.T) {
	norm := newTestNormalizer()
	profile := DefaultProfile()
	draft := &entity.Draft{
		MerchantID:   42,
		MerchantName: "مطعم بغداد",
		Items: []entity.DraftItem{
			{ProductName: "برغر لحم", Quantity: 2},
		},
	}

	learnFromConfirmedDraft(profile, draft, norm)

	if profile.MerchantSignals["42"] != constants.ConfirmedMerchantBoost {
		t.Errorf("MerchantSignals[42] = %v, want %v", profile.MerchantSignals["42"], constants.ConfirmedMerchantBoost)
	}
	if profile.TokenSignals["برغر"] != constants.ConfirmedTokenBoost {
		t.Errorf("TokenSignals[برغر] = %v, want %v", profile.TokenSignals["برغر"], constants.ConfirmedTokenBoost)
	}
	if len(profile.FavoriteMerchants) != 1 || profile.FavoriteMerchants[0] != "مطعم بغداد" {
		t.Errorf("FavoriteMerchants = %v", profile.FavoriteMerchants)
	}
	if profile.Conversation.ConfirmedDrafts != 1 {
		t.Errorf("ConfirmedDrafts = %d, want 1", profile.Conversation.ConfirmedDrafts)
	}
}

func TestEnrichProfileTiers(t *testing.T) {
	profile := DefaultProfile()
	enrichProfileAfterConversation(profile)
	if profile.LoyaltyLevel != "new" || profile.LearningConfidence != "cold" {
		t.Fatalf("fresh profile tiers = %s/%s, want new/cold", profile.LoyaltyLevel, profile.LearningConfidence)
	}

	profile.Counters.Ordering = 3
	profile.Conversation.ConfirmedDrafts = 3
	enrichProfileAfterConversation(profile)
	if profile.LoyaltyLevel != "gold" {
		t.Errorf("LoyaltyLevel = %q, want gold", profile.LoyaltyLevel)
	}
}
