package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
)

// MemoryAssistantRepository keeps the full assistant state in process.
// Used by tests and local runs without a database. Seed* methods load
// fixture data; they are not part of the repository contract.
type MemoryAssistantRepository struct {
	mu sync.RWMutex

	nextSessionID int64
	nextMessageID int64
	nextDraftID   int64

	sessions  []entity.Session
	messages  map[int64][]entity.ChatMessage // sessionID -> transcript
	profiles  map[int64][]byte
	drafts    []entity.Draft
	addresses map[int64][]entity.Address
	pool      map[int64][]entity.Candidate
	history   map[int64]entity.HistorySignals
	global    entity.GlobalSignals

	now func() time.Time
}

// NewMemoryAssistantRepository empty in-memory store
func NewMemoryAssistantRepository() *MemoryAssistantRepository {
	return &MemoryAssistantRepository{
		messages:  make(map[int64][]entity.ChatMessage),
		profiles:  make(map[int64][]byte),
		addresses: make(map[int64][]entity.Address),
		pool:      make(map[int64][]entity.Candidate),
		history:   make(map[int64]entity.HistorySignals),
		now:       time.Now,
	}
}

// SetClock overrides the time source (tests)
func (m *MemoryAssistantRepository) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// SeedPool loads the recommendation pool served to one customer
func (m *MemoryAssistantRepository) SeedPool(customerID int64, candidates []entity.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool[customerID] = append([]entity.Candidate(nil), candidates...)
}

// SeedAddresses loads a customer's delivery addresses
func (m *MemoryAssistantRepository) SeedAddresses(customerID int64, addresses []entity.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[customerID] = append([]entity.Address(nil), addresses...)
}

// SeedHistory loads a customer's aggregate order history
func (m *MemoryAssistantRepository) SeedHistory(customerID int64, history entity.HistorySignals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[customerID] = history
}

// SeedGlobal loads the platform-wide aggregates
func (m *MemoryAssistantRepository) SeedGlobal(global entity.GlobalSignals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global = global
}

func (m *MemoryAssistantRepository) GetSessionByID(ctx context.Context, customerID, sessionID int64) (*entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, session := range m.sessions {
		if session.ID == sessionID && session.CustomerID == customerID {
			copied := session
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MemoryAssistantRepository) GetLatestSession(ctx context.Context, customerID int64) (*entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *entity.Session
	for i := range m.sessions {
		session := m.sessions[i]
		if session.CustomerID != customerID {
			continue
		}
		if latest == nil || session.LastMessageAt.After(latest.LastMessageAt) {
			copied := session
			latest = &copied
		}
	}
	return latest, nil
}

func (m *MemoryAssistantRepository) CreateSession(ctx context.Context, customerID int64, title string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSessionID++
	session := entity.Session{
		ID:            m.nextSessionID,
		CustomerID:    customerID,
		Title:         title,
		LastMessageAt: m.now(),
		CreatedAt:     m.now(),
	}
	m.sessions = append(m.sessions, session)
	return &session, nil
}

func (m *MemoryAssistantRepository) InsertMessage(ctx context.Context, sessionID int64, role, text string, metadata map[string]any) (entity.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMessageID++
	message := entity.ChatMessage{
		ID:        m.nextMessageID,
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		Metadata:  metadata,
		CreatedAt: m.now(),
	}
	m.messages[sessionID] = append(m.messages[sessionID], message)
	for i := range m.sessions {
		if m.sessions[i].ID == sessionID {
			m.sessions[i].LastMessageAt = message.CreatedAt
		}
	}
	return message, nil
}

func (m *MemoryAssistantRepository) ListMessages(ctx context.Context, sessionID int64, limit int) ([]entity.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	messages := m.messages[sessionID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	out := make([]entity.ChatMessage, len(messages))
	copy(out, messages)
	return out, nil
}

func (m *MemoryAssistantRepository) GetProfile(ctx context.Context, customerID int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	document := m.profiles[customerID]
	if document == nil {
		return nil, nil
	}
	out := make([]byte, len(document))
	copy(out, document)
	return out, nil
}

func (m *MemoryAssistantRepository) UpsertProfile(ctx context.Context, customerID int64, document []byte, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(document))
	copy(stored, document)
	m.profiles[customerID] = stored
	return nil
}

func (m *MemoryAssistantRepository) ListRecommendationPool(ctx context.Context, customerID int64, limit int) ([]entity.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pool, ok := m.pool[customerID]
	if !ok {
		// customer 0 holds the shared catalog seeded at startup
		pool = m.pool[0]
	}
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	out := make([]entity.Candidate, len(pool))
	copy(out, pool)
	return out, nil
}

func (m *MemoryAssistantRepository) GetHistorySignals(ctx context.Context, customerID int64) (entity.HistorySignals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history[customerID], nil
}

func (m *MemoryAssistantRepository) GetGlobalSignals(ctx context.Context) (entity.GlobalSignals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.global, nil
}

func (m *MemoryAssistantRepository) ListCustomerAddresses(ctx context.Context, customerID int64) ([]entity.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addresses := m.addresses[customerID]
	out := make([]entity.Address, len(addresses))
	copy(out, addresses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsDefault && !out[j].IsDefault
	})
	return out, nil
}

func (m *MemoryAssistantRepository) GetAddressByID(ctx context.Context, customerID, addressID int64) (*entity.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, address := range m.addresses[customerID] {
		if address.ID == addressID {
			copied := address
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MemoryAssistantRepository) GetDefaultAddress(ctx context.Context, customerID int64) (*entity.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, address := range m.addresses[customerID] {
		if address.IsDefault {
			copied := address
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MemoryAssistantRepository) CreateDraft(ctx context.Context, draft entity.Draft) (*entity.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDraftID++
	draft.ID = m.nextDraftID
	if draft.Status == "" {
		draft.Status = entity.DraftPending
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = m.now()
	}
	m.drafts = append(m.drafts, draft)
	copied := draft
	return &copied, nil
}

func (m *MemoryAssistantRepository) GetDraftByToken(ctx context.Context, customerID int64, token string) (*entity.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.drafts {
		if m.drafts[i].Token == token && m.drafts[i].CustomerID == customerID {
			copied := m.drafts[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MemoryAssistantRepository) GetLatestPendingDraft(ctx context.Context, customerID, sessionID int64) (*entity.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *entity.Draft
	for i := range m.drafts {
		draft := m.drafts[i]
		if draft.CustomerID != customerID || draft.SessionID != sessionID || draft.Status != entity.DraftPending {
			continue
		}
		if latest == nil || draft.CreatedAt.After(latest.CreatedAt) {
			copied := draft
			latest = &copied
		}
	}
	return latest, nil
}

func (m *MemoryAssistantRepository) MarkDraftConfirmed(ctx context.Context, draftID, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.drafts {
		if m.drafts[i].ID == draftID && m.drafts[i].Status == entity.DraftPending {
			m.drafts[i].Status = entity.DraftConfirmed
			m.drafts[i].LinkedOrderID = orderID
		}
	}
	return nil
}

func (m *MemoryAssistantRepository) MarkDraftCancelled(ctx context.Context, draftID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.drafts {
		if m.drafts[i].ID == draftID && m.drafts[i].Status == entity.DraftPending {
			m.drafts[i].Status = entity.DraftCancelled
		}
	}
	return nil
}

func (m *MemoryAssistantRepository) ExpireOldDrafts(ctx context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for i := range m.drafts {
		draft := &m.drafts[i]
		if draft.CustomerID == customerID && draft.Status == entity.DraftPending && draft.ExpiresAt.Before(now) {
			draft.Status = entity.DraftExpired
		}
	}
	return nil
}
