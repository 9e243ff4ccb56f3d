package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bestoffer/assistant-bot/internal/domain/entity"
	"github.com/bestoffer/assistant-bot/internal/domain/repository"
	"github.com/bestoffer/assistant-bot/internal/infrastructure/storage"
)

type stubAIRepository struct {
	text string
	err  error
}

func (s *stubAIRepository) RewriteReply(ctx context.Context, reqCtx repository.ReplyContext) (string, error) {
	return s.text, s.err
}

func (s *stubAIRepository) Close() error { return nil }

func newTestAssistant() (AssistantUseCase, *storage.MemoryAssistantRepository, *storage.MemoryOrderRepository) {
	repo := storage.NewMemoryAssistantRepository()
	orders := storage.NewMemoryOrderRepository()

	catalog := []entity.Candidate{
		{ProductID: 1, MerchantID: 10, MerchantName: "بيت البرغر", ProductName: "برغر لحم",
			CategoryName: "برغر", EffectivePrice: 6000, MerchantAvgRating: 4.2, MerchantCompletedOrders: 120},
		{ProductID: 4, MerchantID: 10, MerchantName: "بيت البرغر", ProductName: "برغر دجاج",
			CategoryName: "برغر", EffectivePrice: 5000, MerchantAvgRating: 4.2, MerchantCompletedOrders: 120},
		{ProductID: 2, MerchantID: 20, MerchantName: "بيتزا النخلة", ProductName: "بيتزا مارغريتا",
			CategoryName: "بيتزا", EffectivePrice: 12000, MerchantAvgRating: 4.8, MerchantCompletedOrders: 300},
		{ProductID: 3, MerchantID: 30, MerchantName: "شاورما الملك", ProductName: "شاورما دجاج",
			CategoryName: "شاورما", EffectivePrice: 4000, MerchantAvgRating: 3.9, MerchantCompletedOrders: 80,
			FreeDelivery: true},
	}
	repo.SeedPool(0, catalog)
	repo.SeedAddresses(7, []entity.Address{
		{ID: 5, Label: "البيت", City: "بغداد", IsDefault: true},
	})
	for _, candidate := range catalog {
		orders.SeedMerchantName(candidate.MerchantID, candidate.MerchantName)
		orders.SeedProduct(candidate.ProductID, candidate.EffectivePrice, candidate.FreeDelivery)
	}

	return NewAssistantUseCase(repo, orders, nil), repo, orders
}

func TestChatEmptyMessage(t *testing.T) {
	assistant, _, _ := newTestAssistant()

	_, err := assistant.Chat(context.Background(), 7, entity.ChatRequest{Message: "   "})
	if !errors.Is(err, ErrMessageRequired) {
		t.Fatalf("err = %v, want ErrMessageRequired", err)
	}
}

func TestChatFirstTurnStaysInDiscovery(t *testing.T) {
	assistant, _, _ := newTestAssistant()

	result, err := assistant.Chat(context.Background(), 7, entity.ChatRequest{Message: "بريد برغر رخيص بسرعة"})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if result.Draft != nil {
		t.Errorf("first turn created a draft: %+v", result.Draft)
	}
	// welcome + user + assistant
	if len(result.Messages) != 3 {
		t.Errorf("len(Messages) = %d, want 3", len(result.Messages))
	}
	if result.Messages[0].Role != "assistant" {
		t.Errorf("Messages[0].Role = %q, want assistant (welcome)", result.Messages[0].Role)
	}
	if result.AssistantMessage.Text == "" {
		t.Error("AssistantMessage.Text is empty")
	}
	if len(result.Suggestions.Merchants) == 0 {
		t.Error("Suggestions.Merchants is empty")
	}
}

func TestChatOrderIntentCreatesDraftInRecommendationMode(t *testing.T) {
	assistant, _, _ := newTestAssistant()
	ctx := context.Background()

	first, err := assistant.Chat(ctx, 7, entity.ChatRequest{Message: "بريد برغر رخيص بسرعة"})
	if err != nil {
		t.Fatalf("turn 1 error: %v", err)
	}
	second, err := assistant.Chat(ctx, 7, entity.ChatRequest{
		Message:   "بريد برغر رخيص بسرعة",
		SessionID: first.SessionID,
	})
	if err != nil {
		t.Fatalf("turn 2 error: %v", err)
	}
	if second.Draft == nil {
		t.Fatal("turn 2 produced no draft")
	}
	if second.Draft.Status != entity.DraftPending {
		t.Errorf("Draft.Status = %q, want pending", second.Draft.Status)
	}
	if second.Draft.MerchantID != 10 {
		t.Errorf("Draft.MerchantID = %d, want the burger merchant (10)", second.Draft.MerchantID)
	}
	if second.Draft.AddressID != 5 {
		t.Errorf("Draft.AddressID = %d, want the default address (5)", second.Draft.AddressID)
	}
	if second.AssistantMessage.Metadata["type"] != "draft_created" {
		t.Errorf("assistant message type = %v, want draft_created", second.AssistantMessage.Metadata["type"])
	}
}

func TestConfirmDraftCreatesExactlyOneOrder(t *testing.T) {
	assistant, repo, orders := newTestAssistant()
	ctx := context.Background()

	var draft *entity.Draft
	var sessionID int64
	for i := 0; i < 2; i++ {
		result, err := assistant.Chat(ctx, 7, entity.ChatRequest{Message: "بريد برغر رخيص بسرعة", SessionID: sessionID})
		if err != nil {
			t.Fatalf("turn %d error: %v", i+1, err)
		}
		sessionID = result.SessionID
		draft = result.Draft
	}
	if draft == nil {
		t.Fatal("no draft to confirm")
	}

	result, err := assistant.ConfirmDraft(ctx, 7, draft.Token, ConfirmOptions{SessionID: sessionID})
	if err != nil {
		t.Fatalf("ConfirmDraft error: %v", err)
	}
	if result.CreatedOrder == nil {
		t.Fatal("CreatedOrder is nil")
	}
	if result.CreatedOrder.TotalAmount != draft.TotalAmount {
		t.Errorf("order total = %d, draft total = %d; repriced totals must match",
			result.CreatedOrder.TotalAmount, draft.TotalAmount)
	}
	if got := orders.CreatedOrders(); len(got) != 1 {
		t.Fatalf("created %d orders, want exactly 1", len(got))
	}

	stored, err := repo.GetDraftByToken(ctx, 7, draft.Token)
	if err != nil {
		t.Fatalf("GetDraftByToken error: %v", err)
	}
	if stored.Status != entity.DraftConfirmed {
		t.Errorf("stored draft status = %q, want confirmed", stored.Status)
	}
	if stored.LinkedOrderID != result.CreatedOrder.ID {
		t.Errorf("LinkedOrderID = %d, want %d", stored.LinkedOrderID, result.CreatedOrder.ID)
	}
	if result.Draft != nil {
		t.Error("payload still reports a pending draft after confirmation")
	}
}

func TestConfirmDraftWithoutAddress(t *testing.T) {
	assistant, repo, _ := newTestAssistant()
	ctx := context.Background()

	// No addresses for this customer, so the draft carries none
	repo.SeedAddresses(7, nil)

	var draft *entity.Draft
	var sessionID int64
	for i := 0; i < 2; i++ {
		result, err := assistant.Chat(ctx, 7, entity.ChatRequest{Message: "بريد برغر رخيص بسرعة", SessionID: sessionID})
		if err != nil {
			t.Fatalf("turn %d error: %v", i+1, err)
		}
		sessionID = result.SessionID
		draft = result.Draft
	}
	if draft == nil {
		t.Fatal("no draft to confirm")
	}

	_, err := assistant.ConfirmDraft(ctx, 7, draft.Token, ConfirmOptions{SessionID: sessionID})
	if !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("err = %v, want ErrAddressRequired", err)
	}
}

func TestConfirmDraftUnknownToken(t *testing.T) {
	assistant, _, _ := newTestAssistant()

	_, err := assistant.ConfirmDraft(context.Background(), 7, "drf_missing", ConfirmOptions{})
	if !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound", err)
	}
}

func TestConfirmDraftLazyExpiry(t *testing.T) {
	assistant, repo, orders := newTestAssistant()
	ctx := context.Background()

	// A pending draft whose TTL already passed is expired by the next
	// call before any lookup, so it reads as not found.
	created, err := repo.CreateDraft(ctx, entity.Draft{
		Token:      "drf_stale",
		CustomerID: 7,
		SessionID:  1,
		MerchantID: 10,
		AddressID:  5,
		Items:      []entity.DraftItem{{ProductID: 1, Quantity: 1, UnitPrice: 6000}},
		Status:     entity.DraftPending,
		ExpiresAt:  time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateDraft error: %v", err)
	}

	_, err = assistant.ConfirmDraft(ctx, 7, created.Token, ConfirmOptions{})
	if !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound", err)
	}
	stored, err := repo.GetDraftByToken(ctx, 7, created.Token)
	if err != nil {
		t.Fatalf("GetDraftByToken error: %v", err)
	}
	if stored.Status != entity.DraftExpired {
		t.Errorf("stored draft status = %q, want expired", stored.Status)
	}
	if len(orders.CreatedOrders()) != 0 {
		t.Error("an order was created from an expired draft")
	}
}

func TestConfirmDraftExpiredUnderSkewedStoreClock(t *testing.T) {
	assistant, repo, _ := newTestAssistant()
	ctx := context.Background()

	// The store clock lags behind wall time, so the lazy sweep keeps the
	// draft pending; the confirmation check still sees it as expired and
	// cancels it.
	repo.SetClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	created, err := repo.CreateDraft(ctx, entity.Draft{
		Token:      "drf_skewed",
		CustomerID: 7,
		SessionID:  1,
		MerchantID: 10,
		AddressID:  5,
		Items:      []entity.DraftItem{{ProductID: 1, Quantity: 1, UnitPrice: 6000}},
		Status:     entity.DraftPending,
		ExpiresAt:  time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateDraft error: %v", err)
	}

	_, err = assistant.ConfirmDraft(ctx, 7, created.Token, ConfirmOptions{})
	if !errors.Is(err, ErrDraftExpired) {
		t.Fatalf("err = %v, want ErrDraftExpired", err)
	}
	stored, err := repo.GetDraftByToken(ctx, 7, created.Token)
	if err != nil {
		t.Fatalf("GetDraftByToken error: %v", err)
	}
	if stored.Status != entity.DraftCancelled {
		t.Errorf("stored draft status = %q, want cancelled", stored.Status)
	}
}

func TestChatCancelIntentDropsPendingDraft(t *testing.T) {
	assistant, repo, _ := newTestAssistant()
	ctx := context.Background()

	var draft *entity.Draft
	var sessionID int64
	for i := 0; i < 2; i++ {
		result, err := assistant.Chat(ctx, 7, entity.ChatRequest{Message: "بريد برغر رخيص بسرعة", SessionID: sessionID})
		if err != nil {
			t.Fatalf("turn %d error: %v", i+1, err)
		}
		sessionID = result.SessionID
		draft = result.Draft
	}
	if draft == nil {
		t.Fatal("no draft to cancel")
	}

	result, err := assistant.Chat(ctx, 7, entity.ChatRequest{Message: "الغاء", SessionID: sessionID})
	if err != nil {
		t.Fatalf("cancel turn error: %v", err)
	}
	if result.Draft != nil {
		t.Error("payload still reports a pending draft after cancel")
	}
	if result.AssistantMessage.Metadata["type"] != "draft_cancelled" {
		t.Errorf("assistant message type = %v, want draft_cancelled", result.AssistantMessage.Metadata["type"])
	}

	stored, err := repo.GetDraftByToken(ctx, 7, draft.Token)
	if err != nil {
		t.Fatalf("GetDraftByToken error: %v", err)
	}
	if stored.Status != entity.DraftCancelled {
		t.Errorf("stored draft status = %q, want cancelled", stored.Status)
	}

	document, err := repo.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	profile, err := ParseProfile(document)
	if err != nil {
		t.Fatalf("ParseProfile error: %v", err)
	}
	if profile.Model.Phase != entity.PhaseDiscovery {
		t.Errorf("Phase = %q, want discovery after cancel", profile.Model.Phase)
	}
}

func TestChatStaleSessionIDRecovers(t *testing.T) {
	assistant, _, _ := newTestAssistant()

	result, err := assistant.Chat(context.Background(), 7, entity.ChatRequest{
		Message:   "بريد بيتزا",
		SessionID: 9999,
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if result.SessionID == 0 || result.SessionID == 9999 {
		t.Errorf("SessionID = %d, want a freshly resolved session", result.SessionID)
	}
}

func TestGetCurrentConversationSeedsWelcome(t *testing.T) {
	assistant, _, _ := newTestAssistant()

	payload, err := assistant.GetCurrentConversation(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("GetCurrentConversation error: %v", err)
	}
	if len(payload.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1 (welcome only)", len(payload.Messages))
	}
	if payload.Messages[0].Metadata["type"] != "welcome" {
		t.Errorf("message type = %v, want welcome", payload.Messages[0].Metadata["type"])
	}
	if len(payload.Addresses) != 1 {
		t.Errorf("len(Addresses) = %d, want 1", len(payload.Addresses))
	}
}

func TestChatWordingOverrideReplacesText(t *testing.T) {
	repo := storage.NewMemoryAssistantRepository()
	orders := storage.NewMemoryOrderRepository()
	repo.SeedPool(0, []entity.Candidate{
		{ProductID: 1, MerchantID: 10, MerchantName: "بيت البرغر", ProductName: "برغر لحم",
			CategoryName: "برغر", EffectivePrice: 6000},
	})
	assistant := NewAssistantUseCase(repo, orders, &stubAIRepository{text: "صياغة محسنة"})

	result, err := assistant.Chat(context.Background(), 7, entity.ChatRequest{Message: "بريد برغر"})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if result.AssistantMessage.Text != "صياغة محسنة" {
		t.Fatalf("AssistantMessage.Text = %q, want the override", result.AssistantMessage.Text)
	}
}

func TestChatWordingOverrideFailureKeepsRuleText(t *testing.T) {
	repo := storage.NewMemoryAssistantRepository()
	orders := storage.NewMemoryOrderRepository()
	repo.SeedPool(0, []entity.Candidate{
		{ProductID: 1, MerchantID: 10, MerchantName: "بيت البرغر", ProductName: "برغر لحم",
			CategoryName: "برغر", EffectivePrice: 6000},
	})
	assistant := NewAssistantUseCase(repo, orders, &stubAIRepository{err: errors.New("model unavailable")})

	result, err := assistant.Chat(context.Background(), 7, entity.ChatRequest{Message: "بريد برغر"})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if result.AssistantMessage.Text == "" {
		t.Fatal("AssistantMessage.Text is empty, want the deterministic reply")
	}
}

func TestChatConfirmKeywordWithoutDraft(t *testing.T) {
	assistant, _, _ := newTestAssistant()

	_, err := assistant.Chat(context.Background(), 7, entity.ChatRequest{Message: "تمام ثبت الطلب"})
	if !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("err = %v, want ErrDraftNotFound", err)
	}
}
