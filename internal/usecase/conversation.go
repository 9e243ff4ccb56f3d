package usecase

import (
	"time"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// ConversationMode what the current turn is allowed to do
type ConversationMode string

const (
	ModeDiscovery      ConversationMode = "discovery"
	ModeRecommendation ConversationMode = "recommendation"
	ModeSpecialized    ConversationMode = "specialized"
)

// ConversationDecision one turn's mode plus the slot to ask about next
// (discovery only).
type ConversationDecision struct {
	Mode        ConversationMode
	MissingSlot string
	FilledSlots int
}

// applyIntentToModel fills conversation slots from the turn's intent.
// Slots only move forward: an absent signal never clears a value.
func applyIntentToModel(model *entity.ConversationModel, intent entity.Intent) {
	model.Turns++

	if len(intent.CategoryHints) > 0 {
		model.Cuisine = intent.CategoryHints[0]
	}
	if intent.BudgetIqd > 0 {
		model.BudgetIqd = intent.BudgetIqd
		model.BudgetLevel = budgetLevelFor(intent.BudgetIqd)
	} else if intent.WantsCheap {
		model.BudgetLevel = "cheap"
	}
	if intent.WantsFast {
		model.SpeedPriority = "fast"
	}
	if intent.WantsTopRated {
		model.QualityPriority = "high"
	}
	if intent.MealType != "" {
		model.MealType = intent.MealType
	}
	if intent.SpiceLevel != "" {
		model.SpiceLevel = intent.SpiceLevel
	}
	if intent.AudienceType != entity.AudienceUnknown {
		model.AudienceType = string(intent.AudienceType)
	}
	if intent.PeopleCount > 0 {
		model.PeopleCount = intent.PeopleCount
	}
	for _, note := range intent.DietaryNotes {
		model.Dietary = appendUnique(model.Dietary, note, constants.MaxDietaryNotes)
	}
}

func budgetLevelFor(budgetIqd int) string {
	switch {
	case budgetIqd < 8000:
		return "cheap"
	case budgetIqd < 20000:
		return "medium"
	}
	return "premium"
}

// slotFilled reports whether one of the six tracked question slots has
// a usable value.
func slotFilled(model *entity.ConversationModel, slot string) bool {
	switch slot {
	case "cuisine":
		return model.Cuisine != ""
	case "budget":
		return model.BudgetIqd > 0 || model.BudgetLevel != ""
	case "speed":
		return model.SpeedPriority != ""
	case "meal":
		return model.MealType != ""
	case "audience":
		return model.AudienceType != "" || model.PeopleCount > 0
	case "dietary":
		return len(model.Dietary) > 0
	}
	return false
}

func countFilledSlots(model *entity.ConversationModel, track []string) int {
	filled := 0
	for _, slot := range track {
		if slotFilled(model, slot) {
			filled++
		}
	}
	return filled
}

// nextMissingSlot walks the track order, skipping the last-asked slot
// when any other slot is still outstanding.
func nextMissingSlot(model *entity.ConversationModel, track []string) string {
	var missing []string
	for _, slot := range track {
		if !slotFilled(model, slot) {
			missing = append(missing, slot)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	for _, slot := range missing {
		if slot != model.LastQuestionSlot {
			return slot
		}
	}
	return missing[0]
}

func specializedIntent(intent entity.Intent) bool {
	if intent.SupportIntent || intent.ComparisonIntent {
		return true
	}
	switch intent.Primary {
	case entity.IntentOffers, entity.IntentDiscoverNew, entity.IntentEvaluate:
		return true
	}
	return false
}

// decideConversationMode gates recommendation behind both a minimum
// turn count and a minimum filled-slot count. Support, comparison and
// the specialized intents bypass slot-filling entirely.
func decideConversationMode(model *entity.ConversationModel, intent entity.Intent, track []string) ConversationDecision {
	filled := countFilledSlots(model, track)
	if specializedIntent(intent) {
		return ConversationDecision{Mode: ModeSpecialized, FilledSlots: filled}
	}

	minTurns := constants.MinTurnsDefault
	if intent.Primary == entity.IntentRecommend || intent.Primary == entity.IntentMoodBased {
		minTurns = constants.MinTurnsEagerIntent
	}
	if model.Turns >= minTurns && filled >= constants.MinFilledSlots {
		return ConversationDecision{Mode: ModeRecommendation, FilledSlots: filled}
	}
	return ConversationDecision{
		Mode:        ModeDiscovery,
		MissingSlot: nextMissingSlot(model, track),
		FilledSlots: filled,
	}
}

// recordModeTransition applies the decision's side effects on counters
// and phase. Checkout and cancel transitions happen at the usecase
// level since they depend on draft outcomes, not on this decision.
func recordModeTransition(model *entity.ConversationModel, decision ConversationDecision, intent entity.Intent, now time.Time) {
	switch decision.Mode {
	case ModeDiscovery:
		model.ClarificationTurns++
		if decision.MissingSlot != "" {
			model.LastQuestionSlot = decision.MissingSlot
			model.LastQuestionAt = now
		}
	case ModeRecommendation, ModeSpecialized:
		model.RecommendationTurns++
	}

	switch {
	case intent.SupportIntent:
		model.Phase = entity.PhaseSupport
	case decision.Mode == ModeRecommendation:
		model.Phase = entity.PhaseRecommendation
	case decision.Mode == ModeDiscovery && model.ClarificationTurns > 0 && decision.FilledSlots > 0:
		model.Phase = entity.PhaseUnderstanding
	case decision.Mode == ModeDiscovery:
		model.Phase = entity.PhaseDiscovery
	}
}
