package usecase

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// HistoryWeights precomputed [0,1] weights from the customer's own
// order history plus platform-wide aggregates.
type HistoryWeights struct {
	Merchant           map[int64]float64
	Category           map[string]float64
	FavoriteProductIDs map[int64]struct{}
	GlobalMerchant     map[int64]float64
	GlobalCategory     map[string]float64
	GlobalProduct      map[int64]float64
}

// Ranker scores pool candidates against intent, profile and history.
// Scoring is a pure weighted sum: same inputs, same ordering.
type Ranker struct {
	sets *KeywordSets
	norm *Normalizer
}

func NewRanker(sets *KeywordSets, norm *Normalizer) *Ranker {
	return &Ranker{sets: sets, norm: norm}
}

func clamp01(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// BuildHistoryWeights min-max normalizes each statistic so one heavy
// orderer does not dominate the weighted sum.
func (r *Ranker) BuildHistoryWeights(history entity.HistorySignals, global *entity.GlobalSignals) HistoryWeights {
	weights := HistoryWeights{
		Merchant:           map[int64]float64{},
		Category:           map[string]float64{},
		FavoriteProductIDs: map[int64]struct{}{},
		GlobalMerchant:     map[int64]float64{},
		GlobalCategory:     map[string]float64{},
		GlobalProduct:      map[int64]float64{},
	}

	merchantMax := 1
	for _, item := range history.Merchants {
		if item.OrdersCount > merchantMax {
			merchantMax = item.OrdersCount
		}
	}
	for _, item := range history.Merchants {
		weights.Merchant[item.MerchantID] = clamp01(float64(item.OrdersCount) / float64(merchantMax))
	}

	categoryMax := 1
	for _, item := range history.Categories {
		if item.ItemsCount > categoryMax {
			categoryMax = item.ItemsCount
		}
	}
	for _, item := range history.Categories {
		weights.Category[r.norm.Normalize(item.CategoryName)] = clamp01(float64(item.ItemsCount) / float64(categoryMax))
	}

	for _, item := range history.FavoriteProducts {
		weights.FavoriteProductIDs[item.ProductID] = struct{}{}
	}

	if global == nil {
		return weights
	}

	globalMerchantMax := 1
	for _, item := range global.Merchants {
		if item.DeliveredOrders > globalMerchantMax {
			globalMerchantMax = item.DeliveredOrders
		}
	}
	for _, item := range global.Merchants {
		weights.GlobalMerchant[item.MerchantID] = clamp01(float64(item.DeliveredOrders) / float64(globalMerchantMax))
	}

	globalCategoryMax := 1
	for _, item := range global.Categories {
		if item.ItemsCount > globalCategoryMax {
			globalCategoryMax = item.ItemsCount
		}
	}
	for _, item := range global.Categories {
		weights.GlobalCategory[r.norm.Normalize(item.CategoryName)] = clamp01(float64(item.ItemsCount) / float64(globalCategoryMax))
	}

	globalProductMax := 1
	for _, item := range global.Products {
		if item.SoldUnits > globalProductMax {
			globalProductMax = item.SoldUnits
		}
	}
	for _, item := range global.Products {
		weights.GlobalProduct[item.ProductID] = clamp01(float64(item.SoldUnits) / float64(globalProductMax))
	}
	return weights
}

// computeTokenMatchScore hit ratio of query tokens inside the
// normalized candidate text
func (r *Ranker) computeTokenMatchScore(queryTokens []string, candidateText string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	normalized := r.norm.Normalize(candidateText)
	if normalized == "" {
		return 0
	}
	hits := 0
	for _, token := range queryTokens {
		if strings.Contains(normalized, token) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// mapCategoryToHint folds a raw store category name onto a hint key so
// it can match the intent's category hints. Unmapped categories pass
// through normalized.
func (r *Ranker) mapCategoryToHint(categoryName string) string {
	normalized := r.norm.Normalize(categoryName)
	for _, hint := range r.sets.Categories {
		for _, word := range hint.Words {
			if n := r.norm.Normalize(word.Text); n != "" && strings.Contains(normalized, n) {
				return hint.Key
			}
		}
	}
	return normalized
}

// RankProducts scores the whole pool and returns it sorted by
// descending score, ties kept in input order.
func (r *Ranker) RankProducts(pool []entity.Candidate, intent entity.Intent, profile *entity.Profile, weights HistoryWeights) []entity.ScoredCandidate {
	if len(pool) == 0 {
		return nil
	}

	minPrice, maxPrice := pool[0].EffectivePrice, pool[0].EffectivePrice
	maxCompleted := 1
	for _, candidate := range pool {
		if candidate.EffectivePrice < minPrice {
			minPrice = candidate.EffectivePrice
		}
		if candidate.EffectivePrice > maxPrice {
			maxPrice = candidate.EffectivePrice
		}
		if candidate.MerchantCompletedOrders > maxCompleted {
			maxCompleted = candidate.MerchantCompletedOrders
		}
	}
	priceRange := float64(maxPrice - minPrice)
	if priceRange < 1 {
		priceRange = 1
	}

	weightPrice := 1.1
	if intent.WantsCheap || profile.PricePreference == "cheap" {
		weightPrice = 2.8
	}
	weightRating := 1.3
	if intent.WantsTopRated || profile.PricePreference == "premium" {
		weightRating = 2.6
	}

	learnedTokens := make([]string, 0, 10)
	for _, pair := range topWeightedKeys(profile.TokenSignals, 10) {
		learnedTokens = append(learnedTokens, pair.Key)
	}

	scored := make([]entity.ScoredCandidate, 0, len(pool))
	for _, candidate := range pool {
		queryText := strings.Join([]string{
			candidate.ProductName,
			candidate.ProductDescription,
			candidate.CategoryName,
			candidate.MerchantName,
		}, " ")

		match := entity.MatchBreakdown{
			TokenMatch:        r.computeTokenMatchScore(intent.Tokens, queryText),
			PriceScore:        1 - float64(candidate.EffectivePrice-minPrice)/priceRange,
			RatingScore:       clamp01(candidate.MerchantAvgRating / 5),
			PopularityScore:   clamp01(float64(candidate.MerchantCompletedOrders) / float64(maxCompleted)),
			HistoryMerchant:   weights.Merchant[candidate.MerchantID],
			HistoryCategory:   weights.Category[r.norm.Normalize(candidate.CategoryName)],
			GlobalMerchant:    weights.GlobalMerchant[candidate.MerchantID],
			GlobalCategory:    weights.GlobalCategory[r.norm.Normalize(candidate.CategoryName)],
			GlobalProduct:     weights.GlobalProduct[candidate.ProductID],
			LearnedTokenMatch: r.computeTokenMatchScore(learnedTokens, queryText),
		}

		categoryHint := r.mapCategoryToHint(candidate.CategoryName)
		for _, hint := range intent.CategoryHints {
			if hint == categoryHint {
				match.CategoryMatch = 1
				break
			}
		}
		match.ProfileCategory = clamp01(profile.CategorySignals[categoryHint] / 6)
		match.ProfileMerchant = clamp01(profile.MerchantSignals[strconv.FormatInt(candidate.MerchantID, 10)] / 8)

		score := match.TokenMatch*4.2 +
			match.CategoryMatch*2.3 +
			match.PriceScore*weightPrice +
			match.RatingScore*weightRating +
			match.PopularityScore*1.1 +
			match.HistoryMerchant*1.5 +
			match.HistoryCategory*1.2 +
			match.GlobalMerchant*0.9 +
			match.GlobalCategory*0.7 +
			match.GlobalProduct*0.8 +
			match.ProfileCategory*1.4 +
			match.ProfileMerchant*1.8 +
			match.LearnedTokenMatch*1.2

		if _, favorite := weights.FavoriteProductIDs[candidate.ProductID]; favorite || candidate.IsFavorite {
			score += 1.5
		}

		if intent.WantsFreeDelivery {
			if candidate.FreeDelivery {
				score += 1.7
			} else {
				score -= 0.4
			}
		}
		if intent.WantsFast {
			score += match.PopularityScore * 0.9
		}
		switch intent.AudienceType {
		case entity.AudienceGroup:
			if candidate.FreeDelivery {
				score += 0.55
			}
		case entity.AudienceFamily:
			score += match.CategoryMatch * 0.35
		case entity.AudienceSolo:
			score += match.PriceScore * 0.25
		}

		if intent.BudgetIqd > 0 {
			if candidate.EffectivePrice <= intent.BudgetIqd {
				score += 0.8
			} else {
				deltaRatio := float64(candidate.EffectivePrice-intent.BudgetIqd) / float64(intent.BudgetIqd)
				penalty := deltaRatio * 2.4
				if penalty > 3.2 {
					penalty = 3.2
				}
				score -= penalty
			}
		}

		scored = append(scored, entity.ScoredCandidate{
			Candidate: candidate,
			Score:     score,
			Match:     match,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// BuildMerchantSuggestions groups the highest-scored products by
// merchant and reports compact merchant cards.
func BuildMerchantSuggestions(scored []entity.ScoredCandidate) []entity.MerchantSuggestion {
	window := scored
	if len(window) > constants.MerchantGroupingWindow {
		window = window[:constants.MerchantGroupingWindow]
	}

	type group struct {
		suggestion entity.MerchantSuggestion
		scoreSum   float64
		scoreCount int
	}
	var order []int64
	groups := map[int64]*group{}

	for _, candidate := range window {
		g, seen := groups[candidate.MerchantID]
		if !seen {
			g = &group{suggestion: entity.MerchantSuggestion{
				MerchantID:       candidate.MerchantID,
				MerchantName:     candidate.MerchantName,
				MerchantType:     candidate.MerchantType,
				MerchantImageURL: candidate.MerchantImageURL,
				MinPrice:         candidate.EffectivePrice,
				AvgRating:        candidate.MerchantAvgRating,
				AvgDeliveryMins:  candidate.MerchantAvgDeliveryMins,
				CompletedOrders:  candidate.MerchantCompletedOrders,
			}}
			groups[candidate.MerchantID] = g
			order = append(order, candidate.MerchantID)
		}

		g.scoreSum += candidate.Score
		g.scoreCount++
		if candidate.EffectivePrice < g.suggestion.MinPrice {
			g.suggestion.MinPrice = candidate.EffectivePrice
		}
		if candidate.EffectivePrice > g.suggestion.MaxPrice {
			g.suggestion.MaxPrice = candidate.EffectivePrice
		}
		g.suggestion.HasFreeDelivery = g.suggestion.HasFreeDelivery || candidate.FreeDelivery
		if len(g.suggestion.TopProducts) < 3 {
			g.suggestion.TopProducts = append(g.suggestion.TopProducts, candidate.ProductName)
		}
	}

	out := make([]entity.MerchantSuggestion, 0, len(order))
	for _, merchantID := range order {
		g := groups[merchantID]
		g.suggestion.AverageScore = g.scoreSum / float64(g.scoreCount)
		out = append(out, g.suggestion)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageScore > out[j].AverageScore
	})
	if len(out) > constants.MaxMerchantSuggestions {
		out = out[:constants.MaxMerchantSuggestions]
	}
	return out
}

// BuildProductSuggestions flattens the top scored products into the
// caller-facing shape.
func BuildProductSuggestions(scored []entity.ScoredCandidate) []entity.ProductSuggestion {
	limit := len(scored)
	if limit > constants.MaxProductSuggestions {
		limit = constants.MaxProductSuggestions
	}
	out := make([]entity.ProductSuggestion, 0, limit)
	for _, product := range scored[:limit] {
		out = append(out, entity.ProductSuggestion{
			ProductID:       product.ProductID,
			MerchantID:      product.MerchantID,
			MerchantName:    product.MerchantName,
			ProductName:     product.ProductName,
			CategoryName:    product.CategoryName,
			EffectivePrice:  product.EffectivePrice,
			BasePrice:       product.BasePrice,
			DiscountedPrice: product.DiscountedPrice,
			OfferLabel:      product.OfferLabel,
			FreeDelivery:    product.FreeDelivery,
			ProductImageURL: product.ProductImageURL,
			MerchantRating:  product.MerchantAvgRating,
			CompletedOrders: product.MerchantCompletedOrders,
			IsFavorite:      product.IsFavorite,
			Score:           product.Score,
		})
	}
	return out
}
