package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
	"github.com/bestoffer/assistant-bot/internal/domain/repository"
)

// postgresAssistantRepository backs the pipeline with the platform's
// postgres schema. Draft items and chat metadata live in JSONB columns;
// the profile is one JSONB document per customer.
type postgresAssistantRepository struct {
	db *sql.DB
}

// NewPostgresAssistantRepository wraps an open connection pool
func NewPostgresAssistantRepository(db *sql.DB) repository.AssistantRepository {
	return &postgresAssistantRepository{db: db}
}

func (r *postgresAssistantRepository) GetSessionByID(ctx context.Context, customerID, sessionID int64) (*entity.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, customer_user_id, COALESCE(title, ''), last_message_at, created_at
		 FROM ai_chat_session
		 WHERE id = $1 AND customer_user_id = $2
		 LIMIT 1`,
		sessionID, customerID)

	var session entity.Session
	err := row.Scan(&session.ID, &session.CustomerID, &session.Title, &session.LastMessageAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, nil
}

func (r *postgresAssistantRepository) GetLatestSession(ctx context.Context, customerID int64) (*entity.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, customer_user_id, COALESCE(title, ''), last_message_at, created_at
		 FROM ai_chat_session
		 WHERE customer_user_id = $1
		 ORDER BY last_message_at DESC, id DESC
		 LIMIT 1`,
		customerID)

	var session entity.Session
	err := row.Scan(&session.ID, &session.CustomerID, &session.Title, &session.LastMessageAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest session: %w", err)
	}
	return &session, nil
}

func (r *postgresAssistantRepository) CreateSession(ctx context.Context, customerID int64, title string) (*entity.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO ai_chat_session (customer_user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, customer_user_id, COALESCE(title, ''), last_message_at, created_at`,
		customerID, title)

	var session entity.Session
	if err := row.Scan(&session.ID, &session.CustomerID, &session.Title, &session.LastMessageAt, &session.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

func (r *postgresAssistantRepository) InsertMessage(ctx context.Context, sessionID int64, role, text string, metadata map[string]any) (entity.ChatMessage, error) {
	var metadataJSON any
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return entity.ChatMessage{}, fmt.Errorf("failed to marshal message metadata: %w", err)
		}
		metadataJSON = raw
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO ai_chat_message (session_id, role, text, metadata)
		 VALUES ($1, $2::ai_chat_role, $3, $4)
		 RETURNING id, created_at`,
		sessionID, role, text, metadataJSON)

	message := entity.ChatMessage{SessionID: sessionID, Role: role, Text: text, Metadata: metadata}
	if err := row.Scan(&message.ID, &message.CreatedAt); err != nil {
		return entity.ChatMessage{}, fmt.Errorf("failed to insert message: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE ai_chat_session SET last_message_at = NOW() WHERE id = $1`,
		sessionID); err != nil {
		return entity.ChatMessage{}, fmt.Errorf("failed to touch session: %w", err)
	}
	return message, nil
}

func (r *postgresAssistantRepository) ListMessages(ctx context.Context, sessionID int64, limit int) ([]entity.ChatMessage, error) {
	if limit < 1 {
		limit = 40
	}
	if limit > 120 {
		limit = 120
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role, text, metadata, created_at
		 FROM (
		   SELECT id, role, text, metadata, created_at
		   FROM ai_chat_message
		   WHERE session_id = $1
		   ORDER BY id DESC
		   LIMIT $2
		 ) x
		 ORDER BY id ASC`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []entity.ChatMessage
	for rows.Next() {
		var (
			message     entity.ChatMessage
			metadataRaw []byte
		)
		if err := rows.Scan(&message.ID, &message.Role, &message.Text, &metadataRaw, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		message.SessionID = sessionID
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &message.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode message metadata: %w", err)
			}
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *postgresAssistantRepository) GetProfile(ctx context.Context, customerID int64) ([]byte, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT preference_json
		 FROM ai_customer_profile
		 WHERE customer_user_id = $1
		 LIMIT 1`,
		customerID)

	var document []byte
	err := row.Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return document, nil
}

func (r *postgresAssistantRepository) UpsertProfile(ctx context.Context, customerID int64, document []byte, note string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_customer_profile (customer_user_id, preference_json, last_summary)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (customer_user_id)
		 DO UPDATE SET preference_json = EXCLUDED.preference_json,
		               last_summary = EXCLUDED.last_summary`,
		customerID, document, note)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *postgresAssistantRepository) ListRecommendationPool(ctx context.Context, customerID int64, limit int) ([]entity.Candidate, error) {
	if limit < 20 {
		limit = 20
	}
	if limit > 1500 {
		limit = 1500
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT
		   p.id,
		   p.merchant_id,
		   p.name,
		   COALESCE(p.description, ''),
		   COALESCE(c.name, ''),
		   COALESCE(p.discounted_price, p.price),
		   p.price,
		   COALESCE(p.discounted_price, 0),
		   p.free_delivery,
		   COALESCE(p.offer_label, ''),
		   COALESCE(p.image_url, ''),
		   m.name,
		   m.type,
		   COALESCE(m.image_url, ''),
		   COALESCE(
		     AVG(o.merchant_rating)
		       FILTER (WHERE o.status = 'delivered' AND o.merchant_rating IS NOT NULL),
		     0
		   )::double precision,
		   COALESCE(
		     AVG(o.estimated_delivery_minutes)
		       FILTER (WHERE o.estimated_delivery_minutes IS NOT NULL),
		     0
		   )::double precision,
		   COUNT(o.id) FILTER (WHERE o.status = 'delivered')::int,
		   EXISTS (
		     SELECT 1 FROM customer_favorite_product f
		     WHERE f.customer_user_id = $1 AND f.product_id = p.id
		   )
		 FROM product p
		 JOIN merchant m ON m.id = p.merchant_id
		 LEFT JOIN merchant_category c ON c.id = p.category_id
		 LEFT JOIN customer_order o ON o.merchant_id = m.id
		 WHERE p.is_available = TRUE
		   AND m.is_approved = TRUE
		   AND m.is_disabled = FALSE
		   AND m.is_open = TRUE
		 GROUP BY p.id, m.id, c.name
		 ORDER BY p.id DESC
		 LIMIT $2`,
		customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendation pool: %w", err)
	}
	defer rows.Close()

	var pool []entity.Candidate
	for rows.Next() {
		var candidate entity.Candidate
		if err := rows.Scan(
			&candidate.ProductID,
			&candidate.MerchantID,
			&candidate.ProductName,
			&candidate.ProductDescription,
			&candidate.CategoryName,
			&candidate.EffectivePrice,
			&candidate.BasePrice,
			&candidate.DiscountedPrice,
			&candidate.FreeDelivery,
			&candidate.OfferLabel,
			&candidate.ProductImageURL,
			&candidate.MerchantName,
			&candidate.MerchantType,
			&candidate.MerchantImageURL,
			&candidate.MerchantAvgRating,
			&candidate.MerchantAvgDeliveryMins,
			&candidate.MerchantCompletedOrders,
			&candidate.IsFavorite,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pool row: %w", err)
		}
		pool = append(pool, candidate)
	}
	return pool, rows.Err()
}

func (r *postgresAssistantRepository) GetHistorySignals(ctx context.Context, customerID int64) (entity.HistorySignals, error) {
	var signals entity.HistorySignals

	rows, err := r.db.QueryContext(ctx,
		`SELECT o.merchant_id, m.name, COUNT(*)::int
		 FROM customer_order o
		 JOIN merchant m ON m.id = o.merchant_id
		 WHERE o.customer_user_id = $1 AND o.status <> 'cancelled'
		 GROUP BY o.merchant_id, m.name
		 ORDER BY COUNT(*) DESC
		 LIMIT 12`,
		customerID)
	if err != nil {
		return signals, fmt.Errorf("failed to query merchant history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entity.MerchantHistory
		if err := rows.Scan(&item.MerchantID, &item.MerchantName, &item.OrdersCount); err != nil {
			return signals, fmt.Errorf("failed to scan merchant history: %w", err)
		}
		signals.Merchants = append(signals.Merchants, item)
	}
	if err := rows.Err(); err != nil {
		return signals, err
	}

	categoryRows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(c.name, 'general'), SUM(oi.quantity)::int
		 FROM customer_order o
		 JOIN order_item oi ON oi.order_id = o.id
		 LEFT JOIN product p ON p.id = oi.product_id
		 LEFT JOIN merchant_category c ON c.id = p.category_id
		 WHERE o.customer_user_id = $1 AND o.status <> 'cancelled'
		 GROUP BY COALESCE(c.name, 'general')
		 ORDER BY SUM(oi.quantity) DESC
		 LIMIT 16`,
		customerID)
	if err != nil {
		return signals, fmt.Errorf("failed to query category history: %w", err)
	}
	defer categoryRows.Close()
	for categoryRows.Next() {
		var item entity.CategoryHistory
		if err := categoryRows.Scan(&item.CategoryName, &item.ItemsCount); err != nil {
			return signals, fmt.Errorf("failed to scan category history: %w", err)
		}
		signals.Categories = append(signals.Categories, item)
	}
	if err := categoryRows.Err(); err != nil {
		return signals, err
	}

	favoriteRows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.merchant_id, p.name, COALESCE(p.discounted_price, p.price)
		 FROM customer_favorite_product f
		 JOIN product p ON p.id = f.product_id
		 JOIN merchant m ON m.id = p.merchant_id
		 WHERE f.customer_user_id = $1
		   AND p.is_available = TRUE
		   AND m.is_approved = TRUE
		   AND m.is_disabled = FALSE
		 ORDER BY f.created_at DESC
		 LIMIT 30`,
		customerID)
	if err != nil {
		return signals, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer favoriteRows.Close()
	for favoriteRows.Next() {
		var item entity.FavoriteProduct
		if err := favoriteRows.Scan(&item.ProductID, &item.MerchantID, &item.ProductName, &item.EffectivePrice); err != nil {
			return signals, fmt.Errorf("failed to scan favorite: %w", err)
		}
		signals.FavoriteProducts = append(signals.FavoriteProducts, item)
	}
	return signals, favoriteRows.Err()
}

func (r *postgresAssistantRepository) GetGlobalSignals(ctx context.Context) (entity.GlobalSignals, error) {
	var signals entity.GlobalSignals

	merchantRows, err := r.db.QueryContext(ctx,
		`SELECT o.merchant_id, COUNT(*)::int
		 FROM customer_order o
		 WHERE o.status = 'delivered'
		 GROUP BY o.merchant_id
		 ORDER BY COUNT(*) DESC
		 LIMIT 40`)
	if err != nil {
		return signals, fmt.Errorf("failed to query global merchants: %w", err)
	}
	defer merchantRows.Close()
	for merchantRows.Next() {
		var item entity.GlobalMerchantStat
		if err := merchantRows.Scan(&item.MerchantID, &item.DeliveredOrders); err != nil {
			return signals, fmt.Errorf("failed to scan global merchant: %w", err)
		}
		signals.Merchants = append(signals.Merchants, item)
	}
	if err := merchantRows.Err(); err != nil {
		return signals, err
	}

	categoryRows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(c.name, 'general'), SUM(oi.quantity)::int
		 FROM customer_order o
		 JOIN order_item oi ON oi.order_id = o.id
		 LEFT JOIN product p ON p.id = oi.product_id
		 LEFT JOIN merchant_category c ON c.id = p.category_id
		 WHERE o.status = 'delivered'
		 GROUP BY COALESCE(c.name, 'general')
		 ORDER BY SUM(oi.quantity) DESC
		 LIMIT 40`)
	if err != nil {
		return signals, fmt.Errorf("failed to query global categories: %w", err)
	}
	defer categoryRows.Close()
	for categoryRows.Next() {
		var item entity.GlobalCategoryStat
		if err := categoryRows.Scan(&item.CategoryName, &item.ItemsCount); err != nil {
			return signals, fmt.Errorf("failed to scan global category: %w", err)
		}
		signals.Categories = append(signals.Categories, item)
	}
	if err := categoryRows.Err(); err != nil {
		return signals, err
	}

	productRows, err := r.db.QueryContext(ctx,
		`SELECT oi.product_id, SUM(oi.quantity)::int
		 FROM customer_order o
		 JOIN order_item oi ON oi.order_id = o.id
		 WHERE o.status = 'delivered'
		 GROUP BY oi.product_id
		 ORDER BY SUM(oi.quantity) DESC
		 LIMIT 120`)
	if err != nil {
		return signals, fmt.Errorf("failed to query global products: %w", err)
	}
	defer productRows.Close()
	for productRows.Next() {
		var item entity.GlobalProductStat
		if err := productRows.Scan(&item.ProductID, &item.SoldUnits); err != nil {
			return signals, fmt.Errorf("failed to scan global product: %w", err)
		}
		signals.Products = append(signals.Products, item)
	}
	return signals, productRows.Err()
}

func scanAddress(row interface{ Scan(...any) error }) (*entity.Address, error) {
	var address entity.Address
	err := row.Scan(&address.ID, &address.Label, &address.City, &address.Block,
		&address.BuildingNumber, &address.Apartment, &address.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan address: %w", err)
	}
	return &address, nil
}

const addressColumns = `id, COALESCE(label, ''), COALESCE(city, ''), COALESCE(block, ''),
		   COALESCE(building_number, ''), COALESCE(apartment, ''), is_default`

func (r *postgresAssistantRepository) ListCustomerAddresses(ctx context.Context, customerID int64) ([]entity.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressColumns+`
		 FROM customer_address
		 WHERE customer_user_id = $1 AND is_active = TRUE
		 ORDER BY is_default DESC, id DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []entity.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *address)
	}
	return addresses, rows.Err()
}

func (r *postgresAssistantRepository) GetAddressByID(ctx context.Context, customerID, addressID int64) (*entity.Address, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+`
		 FROM customer_address
		 WHERE customer_user_id = $1 AND id = $2 AND is_active = TRUE
		 LIMIT 1`,
		customerID, addressID)
	return scanAddress(row)
}

func (r *postgresAssistantRepository) GetDefaultAddress(ctx context.Context, customerID int64) (*entity.Address, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+`
		 FROM customer_address
		 WHERE customer_user_id = $1 AND is_active = TRUE
		 ORDER BY is_default DESC, id DESC
		 LIMIT 1`,
		customerID)
	return scanAddress(row)
}

const draftSelect = `SELECT
	   d.id, d.token, d.customer_user_id, COALESCE(d.session_id, 0),
	   d.merchant_id, m.name, m.type, COALESCE(d.address_id, 0),
	   COALESCE(d.note, ''), d.items_json, d.subtotal, d.service_fee,
	   d.delivery_fee, d.total_amount, COALESCE(d.rationale, ''), d.status,
	   COALESCE(d.linked_order_id, 0), d.expires_at, d.created_at
	 FROM ai_order_draft d
	 JOIN merchant m ON m.id = d.merchant_id`

func scanDraft(row interface{ Scan(...any) error }) (*entity.Draft, error) {
	var (
		draft    entity.Draft
		itemsRaw []byte
	)
	err := row.Scan(&draft.ID, &draft.Token, &draft.CustomerID, &draft.SessionID,
		&draft.MerchantID, &draft.MerchantName, &draft.MerchantType, &draft.AddressID,
		&draft.Note, &itemsRaw, &draft.Subtotal, &draft.ServiceFee,
		&draft.DeliveryFee, &draft.TotalAmount, &draft.Rationale, &draft.Status,
		&draft.LinkedOrderID, &draft.ExpiresAt, &draft.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}
	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &draft.Items); err != nil {
			return nil, fmt.Errorf("failed to decode draft items: %w", err)
		}
	}
	return &draft, nil
}

func (r *postgresAssistantRepository) CreateDraft(ctx context.Context, draft entity.Draft) (*entity.Draft, error) {
	itemsJSON, err := json.Marshal(draft.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft items: %w", err)
	}

	var sessionID, addressID any
	if draft.SessionID != 0 {
		sessionID = draft.SessionID
	}
	if draft.AddressID != 0 {
		addressID = draft.AddressID
	}

	var draftID int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO ai_order_draft
		   (token, customer_user_id, session_id, merchant_id, address_id, note,
		    items_json, subtotal, service_fee, delivery_fee, total_amount,
		    rationale, expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 RETURNING id`,
		draft.Token, draft.CustomerID, sessionID, draft.MerchantID, addressID,
		draft.Note, itemsJSON, draft.Subtotal, draft.ServiceFee, draft.DeliveryFee,
		draft.TotalAmount, draft.Rationale, draft.ExpiresAt).Scan(&draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert draft: %w", err)
	}

	row := r.db.QueryRowContext(ctx, draftSelect+` WHERE d.id = $1 LIMIT 1`, draftID)
	return scanDraft(row)
}

func (r *postgresAssistantRepository) GetDraftByToken(ctx context.Context, customerID int64, token string) (*entity.Draft, error) {
	row := r.db.QueryRowContext(ctx,
		draftSelect+` WHERE d.customer_user_id = $1 AND d.token = $2 LIMIT 1`,
		customerID, token)
	return scanDraft(row)
}

func (r *postgresAssistantRepository) GetLatestPendingDraft(ctx context.Context, customerID, sessionID int64) (*entity.Draft, error) {
	row := r.db.QueryRowContext(ctx,
		draftSelect+`
		 WHERE d.customer_user_id = $1
		   AND d.session_id = $2
		   AND d.status = 'pending'
		 ORDER BY d.created_at DESC
		 LIMIT 1`,
		customerID, sessionID)
	return scanDraft(row)
}

func (r *postgresAssistantRepository) MarkDraftConfirmed(ctx context.Context, draftID, orderID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ai_order_draft
		 SET status = 'confirmed', linked_order_id = $2
		 WHERE id = $1 AND status = 'pending'`,
		draftID, orderID)
	if err != nil {
		return fmt.Errorf("failed to confirm draft: %w", err)
	}
	return nil
}

func (r *postgresAssistantRepository) MarkDraftCancelled(ctx context.Context, draftID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ai_order_draft
		 SET status = 'cancelled'
		 WHERE id = $1 AND status = 'pending'`,
		draftID)
	if err != nil {
		return fmt.Errorf("failed to cancel draft: %w", err)
	}
	return nil
}

func (r *postgresAssistantRepository) ExpireOldDrafts(ctx context.Context, customerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ai_order_draft
		 SET status = 'expired'
		 WHERE customer_user_id = $1
		   AND status = 'pending'
		   AND expires_at < NOW()`,
		customerID)
	if err != nil {
		return fmt.Errorf("failed to expire drafts: %w", err)
	}
	return nil
}
