package entity

// Candidate is one recommendation-pool row: an available product with its
// merchant aggregate stats attached by the store query.
type Candidate struct {
	ProductID          int64
	MerchantID         int64
	ProductName        string
	ProductDescription string
	CategoryName       string

	EffectivePrice  int
	BasePrice       int
	DiscountedPrice int // 0 when no discount
	FreeDelivery    bool
	OfferLabel      string
	ProductImageURL string

	MerchantName            string
	MerchantType            string
	MerchantImageURL        string
	MerchantAvgRating       float64
	MerchantAvgDeliveryMins float64 // 0 when unknown
	MerchantCompletedOrders int
	IsFavorite              bool
}

// ScoredCandidate a pool row with its ranking score and match breakdown
type ScoredCandidate struct {
	Candidate
	Score float64
	Match MatchBreakdown
}

// MatchBreakdown per-factor contributions, kept for draft rationale and debugging
type MatchBreakdown struct {
	TokenMatch        float64
	CategoryMatch     float64
	PriceScore        float64
	RatingScore       float64
	PopularityScore   float64
	HistoryMerchant   float64
	HistoryCategory   float64
	GlobalMerchant    float64
	GlobalCategory    float64
	GlobalProduct     float64
	ProfileCategory   float64
	ProfileMerchant   float64
	LearnedTokenMatch float64
}

// MerchantSuggestion aggregated merchant card built from scored products
type MerchantSuggestion struct {
	MerchantID       int64    `json:"merchantId"`
	MerchantName     string   `json:"merchantName"`
	MerchantType     string   `json:"merchantType"`
	MerchantImageURL string   `json:"merchantImageUrl"`
	AverageScore     float64  `json:"averageScore"`
	MinPrice         int      `json:"minPrice"`
	MaxPrice         int      `json:"maxPrice"`
	AvgRating        float64  `json:"avgRating"`
	AvgDeliveryMins  float64  `json:"avgDeliveryMinutes"`
	CompletedOrders  int      `json:"completedOrders"`
	HasFreeDelivery  bool     `json:"hasFreeDelivery"`
	TopProducts      []string `json:"topProducts"`
}

// ProductSuggestion one ranked product returned to the caller
type ProductSuggestion struct {
	ProductID        int64   `json:"productId"`
	MerchantID       int64   `json:"merchantId"`
	MerchantName     string  `json:"merchantName"`
	ProductName      string  `json:"productName"`
	CategoryName     string  `json:"categoryName"`
	EffectivePrice   int     `json:"effectivePrice"`
	BasePrice        int     `json:"basePrice"`
	DiscountedPrice  int     `json:"discountedPrice"`
	OfferLabel       string  `json:"offerLabel"`
	FreeDelivery     bool    `json:"freeDelivery"`
	ProductImageURL  string  `json:"productImageUrl"`
	MerchantRating   float64 `json:"merchantAvgRating"`
	CompletedOrders  int     `json:"merchantCompletedOrders"`
	IsFavorite       bool    `json:"isFavorite"`
	Score            float64 `json:"score"`
}
