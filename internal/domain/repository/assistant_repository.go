package repository

import (
	"context"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// AssistantRepository persistence contracts the core pipeline consumes.
// Implementations: in-memory (tests, local runs) and postgres.
type AssistantRepository interface {
	// Sessions and transcript
	GetSessionByID(ctx context.Context, customerID, sessionID int64) (*entity.Session, error)
	GetLatestSession(ctx context.Context, customerID int64) (*entity.Session, error)
	CreateSession(ctx context.Context, customerID int64, title string) (*entity.Session, error)
	InsertMessage(ctx context.Context, sessionID int64, role, text string, metadata map[string]any) (entity.ChatMessage, error)
	ListMessages(ctx context.Context, sessionID int64, limit int) ([]entity.ChatMessage, error)

	// Preference profile (whole-document read/replace, last write wins)
	GetProfile(ctx context.Context, customerID int64) ([]byte, error)
	UpsertProfile(ctx context.Context, customerID int64, document []byte, note string) error

	// Ranking inputs
	ListRecommendationPool(ctx context.Context, customerID int64, limit int) ([]entity.Candidate, error)
	GetHistorySignals(ctx context.Context, customerID int64) (entity.HistorySignals, error)
	GetGlobalSignals(ctx context.Context) (entity.GlobalSignals, error)

	// Addresses
	ListCustomerAddresses(ctx context.Context, customerID int64) ([]entity.Address, error)
	GetAddressByID(ctx context.Context, customerID, addressID int64) (*entity.Address, error)
	GetDefaultAddress(ctx context.Context, customerID int64) (*entity.Address, error)

	// Draft lifecycle; ExpireOldDrafts must run before any draft read
	CreateDraft(ctx context.Context, draft entity.Draft) (*entity.Draft, error)
	GetDraftByToken(ctx context.Context, customerID int64, token string) (*entity.Draft, error)
	GetLatestPendingDraft(ctx context.Context, customerID, sessionID int64) (*entity.Draft, error)
	MarkDraftConfirmed(ctx context.Context, draftID, orderID int64) error
	MarkDraftCancelled(ctx context.Context, draftID int64) error
	ExpireOldDrafts(ctx context.Context, customerID int64) error
}
