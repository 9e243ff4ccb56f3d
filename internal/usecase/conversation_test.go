package usecase

import (
	"testing"
	"time"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

var defaultTrack = []string{"cuisine", "budget", "speed", "meal", "audience", "dietary"}

func TestApplyIntentToModelSlotsOnlyMoveForward(t *testing.T) {
	e := newTestExtractor()
	model := &entity.ConversationModel{}

	applyIntentToModel(model, e.Detect("بريد برغر"))
	if model.Cuisine != "burgers" {
		t.Fatalf("Cuisine = %q, want burgers", model.Cuisine)
	}

	// A later turn without a cuisine signal must not clear the slot
	applyIntentToModel(model, e.Detect("شي رخيص"))
	if model.Cuisine != "burgers" {
		t.Errorf("Cuisine cleared to %q after signal-free turn", model.Cuisine)
	}
	if model.BudgetLevel != "cheap" {
		t.Errorf("BudgetLevel = %q, want cheap", model.BudgetLevel)
	}
	if model.Turns != 2 {
		t.Errorf("Turns = %d, want 2", model.Turns)
	}
}

func TestBudgetLevels(t *testing.T) {
	cases := []struct {
		budget int
		want   string
	}{
		{5000, "cheap"},
		{8000, "medium"},
		{19999, "medium"},
		{20000, "premium"},
	}
	for _, c := range cases {
		if got := budgetLevelFor(c.budget); got != c.want {
			t.Errorf("budgetLevelFor(%d) = %q, want %q", c.budget, got, c.want)
		}
	}
}

func TestDecideConversationModeGating(t *testing.T) {
	e := newTestExtractor()
	model := &entity.ConversationModel{}
	intent := e.Detect("بريد برغر رخيص بسرعة")

	// Turn 1: three slots filled but not enough turns yet
	applyIntentToModel(model, intent)
	decision := decideConversationMode(model, intent, defaultTrack)
	if decision.Mode != ModeDiscovery {
		t.Fatalf("turn 1 Mode = %q, want discovery", decision.Mode)
	}

	// Turn 2: RECOMMEND intent lowers the turn floor to 2
	applyIntentToModel(model, intent)
	decision = decideConversationMode(model, intent, defaultTrack)
	if decision.Mode != ModeRecommendation {
		t.Fatalf("turn 2 Mode = %q, want recommendation (eager intent)", decision.Mode)
	}
	if decision.FilledSlots < 3 {
		t.Errorf("FilledSlots = %d, want >= 3", decision.FilledSlots)
	}
}

func TestDecideConversationModeNeedsSlots(t *testing.T) {
	e := newTestExtractor()
	model := &entity.ConversationModel{}
	intent := e.Detect("شنو ناصحني اليوم")

	// Many turns but almost no slots: stay in discovery
	for i := 0; i < 5; i++ {
		applyIntentToModel(model, intent)
	}
	decision := decideConversationMode(model, intent, defaultTrack)
	if decision.Mode != ModeDiscovery {
		t.Fatalf("Mode = %q, want discovery with empty slots", decision.Mode)
	}
	if decision.MissingSlot == "" {
		t.Error("MissingSlot must name the next question slot")
	}
}

func TestSupportBypassesSlotFilling(t *testing.T) {
	e := newTestExtractor()
	model := &entity.ConversationModel{}
	intent := e.Detect("عندي مشكلة بطلبي")

	applyIntentToModel(model, intent)
	decision := decideConversationMode(model, intent, defaultTrack)
	if decision.Mode != ModeSpecialized {
		t.Fatalf("Mode = %q, want specialized for support", decision.Mode)
	}

	recordModeTransition(model, decision, intent, time.Now())
	if model.Phase != entity.PhaseSupport {
		t.Errorf("Phase = %q, want support", model.Phase)
	}
}

func TestNextMissingSlotAvoidsRepeatingQuestion(t *testing.T) {
	model := &entity.ConversationModel{LastQuestionSlot: "cuisine"}
	if got := nextMissingSlot(model, defaultTrack); got != "budget" {
		t.Fatalf("nextMissingSlot = %q, want budget (cuisine was just asked)", got)
	}

	// When only the last-asked slot is missing it is asked again
	model = &entity.ConversationModel{
		Cuisine:          "pizza",
		BudgetLevel:      "cheap",
		SpeedPriority:    "fast",
		MealType:         "dinner",
		AudienceType:     "solo",
		LastQuestionSlot: "dietary",
	}
	if got := nextMissingSlot(model, defaultTrack); got != "dietary" {
		t.Fatalf("nextMissingSlot = %q, want dietary", got)
	}
}

func TestRecordModeTransitionPhases(t *testing.T) {
	e := newTestExtractor()
	model := &entity.ConversationModel{}
	intent := e.Detect("بريد بيتزا")

	applyIntentToModel(model, intent)
	decision := decideConversationMode(model, intent, defaultTrack)
	recordModeTransition(model, decision, intent, time.Now())
	if model.Phase != entity.PhaseUnderstanding {
		t.Fatalf("Phase = %q, want understanding (one slot filled)", model.Phase)
	}
	if model.ClarificationTurns != 1 {
		t.Errorf("ClarificationTurns = %d, want 1", model.ClarificationTurns)
	}
	if model.LastQuestionSlot == "" {
		t.Error("LastQuestionSlot must record the asked slot")
	}
}
