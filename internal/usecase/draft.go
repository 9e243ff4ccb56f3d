package usecase

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// BuildDraftCandidate groups the best-scored products by merchant,
// keeps each merchant's top 3 items, and picks the merchant with the
// highest summed score. Ties stay with the earlier merchant in score
// order. Returns nil when the pool gives nothing to bundle.
func BuildDraftCandidate(scored []entity.ScoredCandidate, requestedQuantity int, audience entity.AudienceType) *entity.DraftCandidate {
	if len(scored) == 0 {
		return nil
	}

	window := scored
	if len(window) > constants.DraftCandidateWindow {
		window = window[:constants.DraftCandidateWindow]
	}

	var order []int64
	groups := map[int64][]entity.ScoredCandidate{}
	for _, candidate := range window {
		if _, seen := groups[candidate.MerchantID]; !seen {
			order = append(order, candidate.MerchantID)
		}
		groups[candidate.MerchantID] = append(groups[candidate.MerchantID], candidate)
	}

	var selected []entity.ScoredCandidate
	bestGroupScore := 0.0
	for _, merchantID := range order {
		items := groups[merchantID]
		if len(items) > constants.DraftItemsPerMerchant {
			items = items[:constants.DraftItemsPerMerchant]
		}
		groupScore := 0.0
		for _, item := range items {
			groupScore += item.Score
		}
		if selected == nil || groupScore > bestGroupScore {
			bestGroupScore = groupScore
			selected = items
		}
	}
	if len(selected) == 0 {
		return nil
	}

	primaryQuantity := requestedQuantity
	if primaryQuantity < constants.MinQuantity {
		primaryQuantity = constants.MinQuantity
	}
	switch audience {
	case entity.AudienceGroup:
		if primaryQuantity < 3 {
			primaryQuantity = 3
		}
	case entity.AudienceFamily:
		if primaryQuantity < 2 {
			primaryQuantity = 2
		}
	}

	draft := &entity.DraftCandidate{
		MerchantID:   selected[0].MerchantID,
		MerchantName: selected[0].MerchantName,
		MerchantType: selected[0].MerchantType,
	}
	for index, item := range selected {
		quantity := 1
		if index == 0 {
			quantity = primaryQuantity
		}
		line := entity.DraftItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Quantity:     quantity,
			UnitPrice:    item.EffectivePrice,
			LineTotal:    item.EffectivePrice * quantity,
			FreeDelivery: item.FreeDelivery,
		}
		draft.Items = append(draft.Items, line)
		draft.Subtotal += line.LineTotal
		draft.HasFreeDelivery = draft.HasFreeDelivery || line.FreeDelivery
	}

	if draft.Subtotal > 0 {
		draft.ServiceFee = constants.FixedServiceFee
	}
	if !draft.HasFreeDelivery {
		draft.DeliveryFee = constants.FixedDeliveryFee
	}
	draft.TotalAmount = draft.Subtotal + draft.ServiceFee + draft.DeliveryFee
	return draft
}

// BuildDraftRationale one line explaining which signals shaped the pick
func BuildDraftRationale(intent entity.Intent) string {
	var reasons []string
	if intent.WantsCheap {
		reasons = append(reasons, "price-sensitive ranking")
	}
	if intent.WantsTopRated {
		reasons = append(reasons, "rating-sensitive ranking")
	}
	if intent.WantsFreeDelivery {
		reasons = append(reasons, "free-delivery preference")
	}
	if len(intent.CategoryHints) > 0 {
		reasons = append(reasons, "category alignment")
	}
	if intent.AudienceType != entity.AudienceUnknown {
		reasons = append(reasons, fmt.Sprintf("audience:%s", intent.AudienceType))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "history-based ranking")
	}
	return strings.Join(reasons, " | ")
}

// NewDraftToken opaque draft handle, unguessable by construction
func NewDraftToken() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate draft token: %w", err)
	}
	return "drf_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
