package entity

import "time"

// Session one chat session of a customer
type Session struct {
	ID            int64
	CustomerID    int64
	Title         string
	LastMessageAt time.Time
	CreatedAt     time.Time
}

// ChatMessage one transcript entry, role is "user" or "assistant"
type ChatMessage struct {
	ID        int64
	SessionID int64
	Role      string
	Text      string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Address a delivery address of a customer
type Address struct {
	ID             int64
	Label          string
	City           string
	Block          string
	BuildingNumber string
	Apartment      string
	IsDefault      bool
}

// Order the record returned by the external order-placement collaborator
type Order struct {
	ID           int64
	Status       string
	MerchantID   int64
	MerchantName string
	TotalAmount  int
	CreatedAt    time.Time
}

// OrderItem one line of an order placement request
type OrderItem struct {
	ProductID int64
	Quantity  int
}

// OrderRequest what draft confirmation hands to the order collaborator
type OrderRequest struct {
	MerchantID int64
	AddressID  int64
	Note       string
	Items      []OrderItem
}
