package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
	"github.com/bestoffer/assistant-bot/internal/domain/repository"
)

// postgresOrderRepository places confirmed drafts as real platform
// orders. Prices are always re-read from the product table inside the
// transaction; the caller's totals are advisory only.
type postgresOrderRepository struct {
	db *sql.DB
}

// NewPostgresOrderRepository wraps an open connection pool
func NewPostgresOrderRepository(db *sql.DB) repository.OrderRepository {
	return &postgresOrderRepository{db: db}
}

func (r *postgresOrderRepository) CreateOrder(ctx context.Context, customerID int64, req entity.OrderRequest) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback()

	subtotal := 0
	freeDelivery := false
	type pricedItem struct {
		productID int64
		quantity  int
		unitPrice int
	}
	var priced []pricedItem
	for _, item := range req.Items {
		var (
			unitPrice    int
			itemFreeShip bool
		)
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(discounted_price, price), free_delivery
			 FROM product
			 WHERE id = $1 AND merchant_id = $2 AND is_available = TRUE`,
			item.ProductID, req.MerchantID).Scan(&unitPrice, &itemFreeShip)
		if err != nil {
			return nil, fmt.Errorf("failed to price product %d: %w", item.ProductID, err)
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		subtotal += unitPrice * quantity
		freeDelivery = freeDelivery || itemFreeShip
		priced = append(priced, pricedItem{productID: item.ProductID, quantity: quantity, unitPrice: unitPrice})
	}

	serviceFee := 0
	if subtotal > 0 {
		serviceFee = constants.FixedServiceFee
	}
	deliveryFee := constants.FixedDeliveryFee
	if freeDelivery {
		deliveryFee = 0
	}
	total := subtotal + serviceFee + deliveryFee

	var addressID any
	if req.AddressID != 0 {
		addressID = req.AddressID
	}

	order := entity.Order{MerchantID: req.MerchantID, TotalAmount: total}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO customer_order
		   (customer_user_id, merchant_id, address_id, note,
		    subtotal, service_fee, delivery_fee, total_amount, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'pending')
		 RETURNING id, status, created_at`,
		customerID, req.MerchantID, addressID, req.Note,
		subtotal, serviceFee, deliveryFee, total).
		Scan(&order.ID, &order.Status, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range priced {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_item (order_id, product_id, quantity, unit_price)
			 VALUES ($1,$2,$3,$4)`,
			order.ID, item.productID, item.quantity, item.unitPrice); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT name FROM merchant WHERE id = $1`,
		req.MerchantID).Scan(&order.MerchantName); err != nil {
		return nil, fmt.Errorf("failed to resolve merchant name: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &order, nil
}
