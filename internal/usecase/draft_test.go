package usecase

import (
	"strings"
	"testing"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

func scoredForDraft() []entity.ScoredCandidate {
	return []entity.ScoredCandidate{
		{Candidate: entity.Candidate{ProductID: 1, MerchantID: 10, MerchantName: "بيت البرغر", ProductName: "برغر لحم", EffectivePrice: 6000}, Score: 9},
		{Candidate: entity.Candidate{ProductID: 2, MerchantID: 20, MerchantName: "بيتزا النخلة", ProductName: "بيتزا", EffectivePrice: 12000}, Score: 8},
		{Candidate: entity.Candidate{ProductID: 3, MerchantID: 20, MerchantName: "بيتزا النخلة", ProductName: "بيتزا خضار", EffectivePrice: 10000}, Score: 7},
		{Candidate: entity.Candidate{ProductID: 4, MerchantID: 10, MerchantName: "بيت البرغر", ProductName: "برغر دجاج", EffectivePrice: 5000}, Score: 5},
	}
}

func TestBuildDraftCandidatePicksBestSummedMerchant(t *testing.T) {
	// Merchant 10 holds the single top product (9+5=14) but merchant 20
	// sums higher (8+7=15) and must win the bundle.
	draft := BuildDraftCandidate(scoredForDraft(), 1, entity.AudienceSolo)
	if draft == nil {
		t.Fatal("BuildDraftCandidate returned nil")
	}
	if draft.MerchantID != 20 {
		t.Fatalf("MerchantID = %d, want 20", draft.MerchantID)
	}
	if len(draft.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(draft.Items))
	}
	if draft.Items[0].ProductID != 2 {
		t.Errorf("Items[0].ProductID = %d, want 2", draft.Items[0].ProductID)
	}
}

func TestBuildDraftCandidateFeesAndTotals(t *testing.T) {
	draft := BuildDraftCandidate(scoredForDraft(), 1, entity.AudienceSolo)
	if draft.Subtotal != 22000 {
		t.Fatalf("Subtotal = %d, want 22000", draft.Subtotal)
	}
	if draft.ServiceFee != 500 {
		t.Errorf("ServiceFee = %d, want 500", draft.ServiceFee)
	}
	if draft.DeliveryFee != 1000 {
		t.Errorf("DeliveryFee = %d, want 1000", draft.DeliveryFee)
	}
	if draft.TotalAmount != 23500 {
		t.Errorf("TotalAmount = %d, want 23500", draft.TotalAmount)
	}
}

func TestBuildDraftCandidateFreeDeliveryWaivesFee(t *testing.T) {
	scored := []entity.ScoredCandidate{
		{Candidate: entity.Candidate{ProductID: 1, MerchantID: 10, ProductName: "شاورما", EffectivePrice: 4000, FreeDelivery: true}, Score: 5},
	}
	draft := BuildDraftCandidate(scored, 1, entity.AudienceSolo)
	if !draft.HasFreeDelivery {
		t.Fatal("HasFreeDelivery = false, want true")
	}
	if draft.DeliveryFee != 0 {
		t.Errorf("DeliveryFee = %d, want 0", draft.DeliveryFee)
	}
	if draft.TotalAmount != 4500 {
		t.Errorf("TotalAmount = %d, want 4500 (subtotal + service fee only)", draft.TotalAmount)
	}
}

func TestBuildDraftCandidateAudienceQuantityFloors(t *testing.T) {
	draft := BuildDraftCandidate(scoredForDraft(), 1, entity.AudienceGroup)
	if draft.Items[0].Quantity != 3 {
		t.Fatalf("group Items[0].Quantity = %d, want 3", draft.Items[0].Quantity)
	}
	// The floor lifts only the primary line
	if draft.Items[1].Quantity != 1 {
		t.Errorf("group Items[1].Quantity = %d, want 1", draft.Items[1].Quantity)
	}

	draft = BuildDraftCandidate(scoredForDraft(), 1, entity.AudienceFamily)
	if draft.Items[0].Quantity != 2 {
		t.Errorf("family Items[0].Quantity = %d, want 2", draft.Items[0].Quantity)
	}

	// An explicit quantity above the floor is kept
	draft = BuildDraftCandidate(scoredForDraft(), 5, entity.AudienceGroup)
	if draft.Items[0].Quantity != 5 {
		t.Errorf("explicit Items[0].Quantity = %d, want 5", draft.Items[0].Quantity)
	}
}

func TestBuildDraftCandidateCapsItemsPerMerchant(t *testing.T) {
	var scored []entity.ScoredCandidate
	for i := 0; i < 6; i++ {
		scored = append(scored, entity.ScoredCandidate{
			Candidate: entity.Candidate{ProductID: int64(i + 1), MerchantID: 10, ProductName: "وجبة", EffectivePrice: 3000},
			Score:     float64(10 - i),
		})
	}
	draft := BuildDraftCandidate(scored, 1, entity.AudienceSolo)
	if len(draft.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(draft.Items))
	}
}

func TestBuildDraftCandidateEmptyPool(t *testing.T) {
	if draft := BuildDraftCandidate(nil, 1, entity.AudienceSolo); draft != nil {
		t.Fatalf("BuildDraftCandidate(nil) = %+v, want nil", draft)
	}
}

func TestBuildDraftRationale(t *testing.T) {
	e := newTestExtractor()

	rationale := BuildDraftRationale(e.Detect("بريد برغر رخيص"))
	if !strings.Contains(rationale, "price-sensitive ranking") {
		t.Errorf("rationale %q misses the price signal", rationale)
	}
	if !strings.Contains(rationale, "category alignment") {
		t.Errorf("rationale %q misses the category signal", rationale)
	}

	if got := BuildDraftRationale(entity.Intent{}); got != "history-based ranking" {
		t.Errorf("empty-intent rationale = %q, want history-based ranking", got)
	}
}

func TestNewDraftToken(t *testing.T) {
	first, err := NewDraftToken()
	if err != nil {
		t.Fatalf("NewDraftToken error: %v", err)
	}
	second, err := NewDraftToken()
	if err != nil {
		t.Fatalf("NewDraftToken error: %v", err)
	}
	if !strings.HasPrefix(first, "drf_") {
		t.Errorf("token %q misses the drf_ prefix", first)
	}
	if first == second {
		t.Error("two tokens came out identical")
	}
}
