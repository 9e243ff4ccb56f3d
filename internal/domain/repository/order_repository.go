package repository

import (
	"context"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// OrderRepository the external order-placement collaborator. Draft
// confirmation delegates here and only flips draft status after a
// successful return.
type OrderRepository interface {
	CreateOrder(ctx context.Context, customerID int64, req entity.OrderRequest) (*entity.Order, error)
}
