package entity

import "time"

// DraftStatus monotonic draft state: pending -> confirmed|cancelled|expired
type DraftStatus string

const (
	DraftPending   DraftStatus = "pending"
	DraftConfirmed DraftStatus = "confirmed"
	DraftCancelled DraftStatus = "cancelled"
	DraftExpired   DraftStatus = "expired"
)

// DraftItem one line of a draft basket
type DraftItem struct {
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int    `json:"unitPrice"`
	LineTotal    int    `json:"lineTotal"`
	FreeDelivery bool   `json:"freeDelivery"`
}

// DraftCandidate a priced, unpersisted merchant/item bundle picked from
// ranking output
type DraftCandidate struct {
	MerchantID      int64
	MerchantName    string
	MerchantType    string
	Items           []DraftItem
	Subtotal        int
	ServiceFee      int
	DeliveryFee     int
	TotalAmount     int
	HasFreeDelivery bool
}

// Draft a persisted, time-limited, unconfirmed order bundle
type Draft struct {
	ID            int64
	Token         string
	CustomerID    int64
	SessionID     int64
	MerchantID    int64
	MerchantName  string
	MerchantType  string
	AddressID     int64 // 0 when unresolved
	Note          string
	Items         []DraftItem
	Subtotal      int
	ServiceFee    int
	DeliveryFee   int
	TotalAmount   int
	Rationale     string
	Status        DraftStatus
	LinkedOrderID int64
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Expired reports whether the draft's TTL has elapsed at now
func (d *Draft) Expired(now time.Time) bool {
	return d.ExpiresAt.Before(now)
}
