package entity

// MerchantHistory per-customer aggregate for one merchant
type MerchantHistory struct {
	MerchantID   int64
	MerchantName string
	OrdersCount  int
}

// CategoryHistory per-customer aggregate for one category
type CategoryHistory struct {
	CategoryName string
	ItemsCount   int
}

// FavoriteProduct one explicitly favorited, still-available product
type FavoriteProduct struct {
	ProductID      int64
	MerchantID     int64
	ProductName    string
	EffectivePrice int
}

// HistorySignals per-customer order statistics used by the ranker
type HistorySignals struct {
	Merchants        []MerchantHistory
	Categories       []CategoryHistory
	FavoriteProducts []FavoriteProduct
}

// GlobalMerchantStat platform-wide delivered-order count for one merchant
type GlobalMerchantStat struct {
	MerchantID      int64
	DeliveredOrders int
}

// GlobalCategoryStat platform-wide delivered item count for one category
type GlobalCategoryStat struct {
	CategoryName string
	ItemsCount   int
}

// GlobalProductStat platform-wide sold units for one product
type GlobalProductStat struct {
	ProductID int64
	SoldUnits int
}

// GlobalSignals platform-wide aggregates, min-max normalized by the ranker
type GlobalSignals struct {
	Merchants  []GlobalMerchantStat
	Categories []GlobalCategoryStat
	Products   []GlobalProductStat
}
