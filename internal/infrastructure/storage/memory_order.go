package storage

import (
	"context"
	"sync"
	"time"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

type memoryOrderProduct struct {
	price        int
	freeDelivery bool
}

// MemoryOrderRepository stands in for the platform's order service
// (tests, local runs). It reprices orders from a seeded catalog the
// way the real collaborator would, so totals are never trusted from
// the caller.
type MemoryOrderRepository struct {
	mu sync.Mutex

	nextOrderID   int64
	orders        []entity.Order
	merchantNames map[int64]string
	products      map[int64]memoryOrderProduct
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		merchantNames: make(map[int64]string),
		products:      make(map[int64]memoryOrderProduct),
	}
}

// SeedMerchantName registers a merchant name for created orders
func (m *MemoryOrderRepository) SeedMerchantName(merchantID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merchantNames[merchantID] = name
}

// SeedProduct registers a product price for order repricing
func (m *MemoryOrderRepository) SeedProduct(productID int64, price int, freeDelivery bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[productID] = memoryOrderProduct{price: price, freeDelivery: freeDelivery}
}

// CreatedOrders returns every order placed so far (tests)
func (m *MemoryOrderRepository) CreatedOrders() []entity.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *MemoryOrderRepository) CreateOrder(ctx context.Context, customerID int64, req entity.OrderRequest) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextOrderID++

	subtotal := 0
	freeDelivery := false
	for _, item := range req.Items {
		product := m.products[item.ProductID]
		subtotal += product.price * item.Quantity
		freeDelivery = freeDelivery || product.freeDelivery
	}
	total := subtotal
	if subtotal > 0 {
		total += constants.FixedServiceFee
	}
	if !freeDelivery {
		total += constants.FixedDeliveryFee
	}

	order := entity.Order{
		ID:           m.nextOrderID,
		Status:       "pending",
		MerchantID:   req.MerchantID,
		MerchantName: m.merchantNames[req.MerchantID],
		TotalAmount:  total,
		CreatedAt:    time.Now(),
	}
	m.orders = append(m.orders, order)
	copied := order
	return &copied, nil
}
