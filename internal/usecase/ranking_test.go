package usecase

import (
	"testing"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

func newTestRanker() *Ranker {
	sets := DefaultKeywordSets()
	return NewRanker(sets, NewNormalizer(sets))
}

func testPool() []entity.Candidate {
	return []entity.Candidate{
		{
			ProductID: 1, MerchantID: 10, ProductName: "برغر لحم مشوي",
			CategoryName: "برغر", MerchantName: "بيت البرغر",
			EffectivePrice: 6000, MerchantAvgRating: 4.2, MerchantCompletedOrders: 120,
		},
		{
			ProductID: 2, MerchantID: 20, ProductName: "بيتزا مارغريتا",
			CategoryName: "بيتزا", MerchantName: "بيتزا النخلة",
			EffectivePrice: 12000, MerchantAvgRating: 4.8, MerchantCompletedOrders: 300,
		},
		{
			ProductID: 3, MerchantID: 30, ProductName: "شاورما دجاج",
			CategoryName: "شاورما", MerchantName: "شاورما الملك",
			EffectivePrice: 4000, MerchantAvgRating: 3.9, MerchantCompletedOrders: 80,
			FreeDelivery: true,
		},
	}
}

func TestRankProductsCategoryAndTokensWin(t *testing.T) {
	e := newTestExtractor()
	r := newTestRanker()
	intent := e.Detect("بريد برغر")

	scored := r.RankProducts(testPool(), intent, DefaultProfile(), r.BuildHistoryWeights(entity.HistorySignals{}, nil))
	if len(scored) != 3 {
		t.Fatalf("len(scored) = %d, want 3", len(scored))
	}
	if scored[0].ProductID != 1 {
		t.Fatalf("top product = %d, want the burger (1)", scored[0].ProductID)
	}
	if scored[0].Match.CategoryMatch != 1 {
		t.Errorf("CategoryMatch = %v, want 1", scored[0].Match.CategoryMatch)
	}
}

func TestRankProductsDeterministic(t *testing.T) {
	e := newTestExtractor()
	r := newTestRanker()
	intent := e.Detect("شي رخيص")
	weights := r.BuildHistoryWeights(entity.HistorySignals{}, nil)

	first := r.RankProducts(testPool(), intent, DefaultProfile(), weights)
	second := r.RankProducts(testPool(), intent, DefaultProfile(), weights)
	for i := range first {
		if first[i].ProductID != second[i].ProductID {
			t.Fatalf("ordering unstable at %d: %d vs %d", i, first[i].ProductID, second[i].ProductID)
		}
	}
	// Cheap intent favors the cheapest item
	if first[0].ProductID != 3 {
		t.Errorf("top product = %d, want the cheapest (3)", first[0].ProductID)
	}
}

func TestRankProductsBudgetPenalty(t *testing.T) {
	e := newTestExtractor()
	r := newTestRanker()
	weights := r.BuildHistoryWeights(entity.HistorySignals{}, nil)

	intent := e.Detect("عندي 5000 دينار")
	if intent.BudgetIqd != 5000 {
		t.Fatalf("BudgetIqd = %d, want 5000", intent.BudgetIqd)
	}
	scored := r.RankProducts(testPool(), intent, DefaultProfile(), weights)
	if scored[len(scored)-1].ProductID != 2 {
		t.Errorf("most over-budget product (2) should rank last, got order %v",
			[]int64{scored[0].ProductID, scored[1].ProductID, scored[2].ProductID})
	}
}

func TestRankProductsHistoryMerchantBoost(t *testing.T) {
	e := newTestExtractor()
	r := newTestRanker()

	history := entity.HistorySignals{
		Merchants: []entity.MerchantHistory{
			{MerchantID: 20, MerchantName: "بيتزا النخلة", OrdersCount: 9},
		},
	}
	weights := r.BuildHistoryWeights(history, nil)
	if weights.Merchant[20] != 1 {
		t.Fatalf("Merchant[20] weight = %v, want 1", weights.Merchant[20])
	}

	scored := r.RankProducts(testPool(), e.Detect("جوعان"), DefaultProfile(), weights)
	if scored[0].MerchantID != 20 {
		t.Errorf("history merchant should lead, got merchant %d", scored[0].MerchantID)
	}
}

func TestBuildMerchantSuggestionsGroupsAndCaps(t *testing.T) {
	e := newTestExtractor()
	r := newTestRanker()
	pool := testPool()
	// Second product for merchant 10
	pool = append(pool, entity.Candidate{
		ProductID: 4, MerchantID: 10, ProductName: "برغر دجاج",
		CategoryName: "برغر", MerchantName: "بيت البرغر",
		EffectivePrice: 5000, MerchantAvgRating: 4.2, MerchantCompletedOrders: 120,
	})

	scored := r.RankProducts(pool, e.Detect("بريد برغر"), DefaultProfile(), r.BuildHistoryWeights(entity.HistorySignals{}, nil))
	merchants := BuildMerchantSuggestions(scored)
	if len(merchants) != 3 {
		t.Fatalf("len(merchants) = %d, want 3", len(merchants))
	}
	if merchants[0].MerchantID != 10 {
		t.Fatalf("top merchant = %d, want 10", merchants[0].MerchantID)
	}
	if len(merchants[0].TopProducts) != 2 {
		t.Errorf("TopProducts = %v, want both burgers", merchants[0].TopProducts)
	}
	if merchants[0].MinPrice != 5000 || merchants[0].MaxPrice != 6000 {
		t.Errorf("price band = %d..%d, want 5000..6000", merchants[0].MinPrice, merchants[0].MaxPrice)
	}
}

func TestBuildProductSuggestionsCapped(t *testing.T) {
	e := newTestExtractor()
	r := newTestRanker()

	var pool []entity.Candidate
	for i := 0; i < 20; i++ {
		pool = append(pool, entity.Candidate{
			ProductID: int64(i + 1), MerchantID: int64(i + 1),
			ProductName: "وجبة", EffectivePrice: 3000 + i*100,
		})
	}
	scored := r.RankProducts(pool, e.Detect("جوعان"), DefaultProfile(), r.BuildHistoryWeights(entity.HistorySignals{}, nil))
	products := BuildProductSuggestions(scored)
	if len(products) != 12 {
		t.Fatalf("len(products) = %d, want 12", len(products))
	}
}
