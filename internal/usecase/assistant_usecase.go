package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/entity"
	"github.com/bestoffer/assistant-bot/internal/domain/repository"
)

// Input-validation and draft-lifecycle failures surfaced to callers.
// Delivery layers map these to their own status codes.
var (
	ErrMessageRequired = errors.New("MESSAGE_REQUIRED")
	ErrAddressRequired = errors.New("ADDRESS_REQUIRED")
	ErrDraftItemsEmpty = errors.New("DRAFT_ITEMS_EMPTY")
	ErrDraftNotFound   = errors.New("DRAFT_NOT_FOUND")
	ErrDraftExpired    = errors.New("DRAFT_EXPIRED")
)

// ConfirmOptions optional inputs of a draft confirmation
type ConfirmOptions struct {
	SessionID int64
	AddressID int64
	Note      string
}

// AssistantUseCase the conversational ordering pipeline
type AssistantUseCase interface {
	Chat(ctx context.Context, customerID int64, req entity.ChatRequest) (*entity.ChatResult, error)
	ConfirmDraft(ctx context.Context, customerID int64, token string, opts ConfirmOptions) (*entity.ChatResult, error)
	GetCurrentConversation(ctx context.Context, customerID, sessionID int64) (*entity.ConversationPayload, error)
}

type assistantUseCase struct {
	repo   repository.AssistantRepository
	orders repository.OrderRepository
	ai     repository.AIRepository // nil disables the wording override

	sets      *KeywordSets
	norm      *Normalizer
	extractor *IntentExtractor
	ranker    *Ranker

	now func() time.Time
}

// NewAssistantUseCase wires the pipeline. ai may be nil.
func NewAssistantUseCase(
	repo repository.AssistantRepository,
	orders repository.OrderRepository,
	ai repository.AIRepository,
) AssistantUseCase {
	sets := DefaultKeywordSets()
	norm := NewNormalizer(sets)
	return &assistantUseCase{
		repo:      repo,
		orders:    orders,
		ai:        ai,
		sets:      sets,
		norm:      norm,
		extractor: NewIntentExtractor(sets, norm),
		ranker:    NewRanker(sets, norm),
		now:       time.Now,
	}
}

// resolveSession returns the requested session when it still exists,
// otherwise falls back to the customer's latest session or a fresh one.
// A stale session id from an old client must never fail the turn.
func (u *assistantUseCase) resolveSession(ctx context.Context, customerID, sessionID int64) (*entity.Session, error) {
	if sessionID != 0 {
		session, err := u.repo.GetSessionByID(ctx, customerID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		if session != nil {
			return session, nil
		}
	}

	session, err := u.repo.GetLatestSession(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	if session != nil {
		return session, nil
	}
	session, err = u.repo.CreateSession(ctx, customerID, "assistant")
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (u *assistantUseCase) ensureWelcomeMessage(ctx context.Context, sessionID int64, lang string) error {
	messages, err := u.repo.ListMessages(ctx, sessionID, 2)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) > 0 {
		return nil
	}
	_, err = u.repo.InsertMessage(ctx, sessionID, "assistant", WelcomeMessage(lang), map[string]any{
		"type": "welcome",
	})
	if err != nil {
		return fmt.Errorf("failed to insert welcome message: %w", err)
	}
	return nil
}

func (u *assistantUseCase) loadProfile(ctx context.Context, customerID int64) (*entity.Profile, error) {
	document, err := u.repo.GetProfile(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	profile, err := ParseProfile(document)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *assistantUseCase) saveProfile(ctx context.Context, customerID int64, profile *entity.Profile, note string) error {
	document, err := EncodeProfile(profile)
	if err != nil {
		return err
	}
	if err := u.repo.UpsertProfile(ctx, customerID, document, note); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (u *assistantUseCase) buildPayload(ctx context.Context, customerID, sessionID int64, profile *entity.Profile) (entity.ConversationPayload, error) {
	messages, err := u.repo.ListMessages(ctx, sessionID, constants.DefaultTranscriptLimit)
	if err != nil {
		return entity.ConversationPayload{}, fmt.Errorf("failed to list messages: %w", err)
	}
	draft, err := u.repo.GetLatestPendingDraft(ctx, customerID, sessionID)
	if err != nil {
		return entity.ConversationPayload{}, fmt.Errorf("failed to get pending draft: %w", err)
	}
	addresses, err := u.repo.ListCustomerAddresses(ctx, customerID)
	if err != nil {
		return entity.ConversationPayload{}, fmt.Errorf("failed to list addresses: %w", err)
	}
	return entity.ConversationPayload{
		SessionID: sessionID,
		Messages:  messages,
		Draft:     draft,
		Addresses: addresses,
		Profile:   ProjectProfile(profile),
	}, nil
}

// scenarioPriority folds the intent and the learned tiers onto the
// blueprint priority axis.
func scenarioPriority(intent entity.Intent, profile *entity.Profile) string {
	switch {
	case intent.WantsFast || profile.SpeedTier == "fast":
		return "fast"
	case intent.WantsCheap || profile.PricePreference == "cheap":
		return "cheap"
	case intent.WantsTopRated || profile.PricePreference == "premium":
		return "quality"
	}
	return "balanced"
}

func (u *assistantUseCase) pickBlueprint(intent entity.Intent, profile *entity.Profile, seed string) ScenarioBlueprint {
	audience := profile.Model.AudienceType
	if intent.AudienceType != entity.AudienceUnknown {
		audience = string(intent.AudienceType)
	}
	meal := profile.Model.MealType
	if intent.MealType != "" {
		meal = intent.MealType
	}
	if meal == "" {
		meal = "any"
	}
	return PickScenarioBlueprint(
		string(intent.Primary),
		profile.Style,
		audience,
		meal,
		scenarioPriority(intent, profile),
		seed,
	)
}

// applyWordingOverride lets the optional model rephrase the reply. Any
// failure, timeout or empty result keeps the deterministic text.
func (u *assistantUseCase) applyWordingOverride(ctx context.Context, reqCtx repository.ReplyContext) string {
	if u.ai == nil {
		return reqCtx.RuleBasedText
	}
	overrideCtx, cancel := context.WithTimeout(ctx, constants.OverrideTimeout)
	defer cancel()

	text, err := u.ai.RewriteReply(overrideCtx, reqCtx)
	if err != nil {
		log.Printf("reply override skipped: %v", err)
		return reqCtx.RuleBasedText
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return reqCtx.RuleBasedText
	}
	if runes := []rune(text); len(runes) > constants.MaxOverrideChars {
		text = string(runes[:constants.MaxOverrideChars])
	}
	return text
}

func replyLanguage(profile *entity.Profile, intent entity.Intent) string {
	if intent.ExplicitLanguage != "" {
		return intent.ExplicitLanguage
	}
	if profile.Language != "" {
		return profile.Language
	}
	return intent.DetectedLanguage
}

// Chat runs one full turn: normalize, extract, merge profile, decide
// mode, rank, optionally draft, compose the reply.
func (u *assistantUseCase) Chat(ctx context.Context, customerID int64, req entity.ChatRequest) (*entity.ChatResult, error) {
	if err := u.repo.ExpireOldDrafts(ctx, customerID); err != nil {
		return nil, fmt.Errorf("failed to expire drafts: %w", err)
	}

	session, err := u.resolveSession(ctx, customerID, req.SessionID)
	if err != nil {
		return nil, err
	}

	profile, err := u.loadProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := u.ensureWelcomeMessage(ctx, session.ID, profile.Language); err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	intent := u.extractor.Detect(message)
	wantsConfirm := req.ConfirmDraft || intent.ConfirmIntent
	if message == "" && !wantsConfirm {
		return nil, ErrMessageRequired
	}

	if message != "" {
		_, err = u.repo.InsertMessage(ctx, session.ID, "user", message, map[string]any{
			"budgetIqd":     intent.BudgetIqd,
			"categoryHints": intent.CategoryHints,
			"audienceType":  string(intent.AudienceType),
			"offTopicTheme": string(intent.OffTopicTheme),
			"primaryIntent": string(intent.Primary),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert user message: %w", err)
		}
	}

	if intent.CancelIntent {
		return u.cancelPendingDraft(ctx, customerID, session, profile, intent)
	}

	if wantsConfirm {
		return u.ConfirmDraft(ctx, customerID, req.DraftToken, ConfirmOptions{
			SessionID: session.ID,
			AddressID: req.AddressID,
			Note:      req.Note,
		})
	}

	// Independent ranking inputs, fetched concurrently
	var (
		history entity.HistorySignals
		global  entity.GlobalSignals
		pool    []entity.Candidate
		recent  []entity.ChatMessage

		wg                                         sync.WaitGroup
		historyErr, globalErr, poolErr, messagesErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		history, historyErr = u.repo.GetHistorySignals(ctx, customerID)
	}()
	go func() {
		defer wg.Done()
		global, globalErr = u.repo.GetGlobalSignals(ctx)
	}()
	go func() {
		defer wg.Done()
		pool, poolErr = u.repo.ListRecommendationPool(ctx, customerID, constants.DefaultPoolLimit)
	}()
	go func() {
		defer wg.Done()
		recent, messagesErr = u.repo.ListMessages(ctx, session.ID, constants.RecentContextLimit)
	}()
	wg.Wait()
	for _, fetchErr := range []error{historyErr, globalErr, poolErr, messagesErr} {
		if fetchErr != nil {
			return nil, fmt.Errorf("failed to load ranking inputs: %w", fetchErr)
		}
	}

	previousLanguage := profile.Language
	mergeProfileSignals(profile, intent)
	applyIntentToModel(&profile.Model, intent)

	seed := fmt.Sprintf("%d|%d|%d", customerID, session.ID, profile.Model.Turns)
	blueprint := u.pickBlueprint(intent, profile, seed)
	decision := decideConversationMode(&profile.Model, intent, blueprint.TrackOrder)
	recordModeTransition(&profile.Model, decision, intent, u.now())
	enrichProfileAfterConversation(profile)

	if err := u.saveProfile(ctx, customerID, profile, "updated_from_chat"); err != nil {
		return nil, err
	}

	weights := u.ranker.BuildHistoryWeights(history, &global)
	ranked := u.ranker.RankProducts(pool, intent, profile, weights)
	merchants := BuildMerchantSuggestions(ranked)
	products := BuildProductSuggestions(ranked)

	lang := replyLanguage(profile, intent)
	recentContext := SummarizeRecentContext(recent, lang)

	// Drafts only materialize in recommendation mode; discovery turns
	// keep asking questions no matter how strong the order signal is.
	var createdDraft *entity.Draft
	shouldDraft := (intent.OrderIntent || req.CreateDraft) &&
		decision.Mode == ModeRecommendation && !intent.OffTopicIntent
	if shouldDraft && len(ranked) > 0 {
		createdDraft, err = u.materializeDraft(ctx, customerID, session.ID, req.AddressID, intent, ranked)
		if err != nil {
			return nil, err
		}
		if createdDraft != nil {
			bumpMapCount(profile.MerchantSignals, strconv.FormatInt(createdDraft.MerchantID, 10), 1.1)
			profile.MerchantSignals = trimSignalMap(profile.MerchantSignals, constants.MaxMerchantSignals)
			profile.Conversation.LastIntent = "draft_created"
			if err := u.saveProfile(ctx, customerID, profile, "updated_from_draft_created"); err != nil {
				return nil, err
			}
		}
	}

	ruleText := ComposeReply(ReplyInput{
		Intent:           intent,
		Profile:          profile,
		Decision:         decision,
		Blueprint:        blueprint,
		Merchants:        merchants,
		Products:         products,
		Draft:            createdDraft,
		LanguageSwitched: intent.ExplicitLanguage != "" && intent.ExplicitLanguage != previousLanguage,
		RecentContext:    recentContext,
		Language:         lang,
		Seed:             seed,
	})
	assistantText := u.applyWordingOverride(ctx, repository.ReplyContext{
		Language:       lang,
		IntentSummary:  intent,
		ProfileSummary: ProjectProfile(profile),
		Merchants:      merchants,
		Products:       products,
		Draft:          createdDraft,
		RuleBasedText:  ruleText,
	})

	messageType := "recommendation"
	draftToken := ""
	if createdDraft != nil {
		messageType = "draft_created"
		draftToken = createdDraft.Token
	}
	assistantMessage, err := u.repo.InsertMessage(ctx, session.ID, "assistant", assistantText, map[string]any{
		"type":           messageType,
		"draftToken":     draftToken,
		"merchantsCount": len(merchants),
		"productsCount":  len(products),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert assistant message: %w", err)
	}

	payload, err := u.buildPayload(ctx, customerID, session.ID, profile)
	if err != nil {
		return nil, err
	}
	return &entity.ChatResult{
		ConversationPayload: payload,
		AssistantMessage:    assistantMessage,
		Suggestions:         entity.Suggestions{Merchants: merchants, Products: products},
	}, nil
}

func (u *assistantUseCase) materializeDraft(ctx context.Context, customerID, sessionID, addressID int64, intent entity.Intent, ranked []entity.ScoredCandidate) (*entity.Draft, error) {
	candidate := BuildDraftCandidate(ranked, intent.RequestedQuantity, intent.AudienceType)
	if candidate == nil {
		return nil, nil
	}

	var address *entity.Address
	var err error
	if addressID != 0 {
		address, err = u.repo.GetAddressByID(ctx, customerID, addressID)
		if err != nil {
			return nil, fmt.Errorf("failed to get address: %w", err)
		}
	}
	if address == nil {
		address, err = u.repo.GetDefaultAddress(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get default address: %w", err)
		}
	}
	var resolvedAddressID int64
	if address != nil {
		resolvedAddressID = address.ID
	}

	token, err := NewDraftToken()
	if err != nil {
		return nil, err
	}
	now := u.now()
	draft := entity.Draft{
		Token:        token,
		CustomerID:   customerID,
		SessionID:    sessionID,
		MerchantID:   candidate.MerchantID,
		MerchantName: candidate.MerchantName,
		MerchantType: candidate.MerchantType,
		AddressID:    resolvedAddressID,
		Note:         "suggested_draft_generated_by_ai",
		Items:        candidate.Items,
		Subtotal:     candidate.Subtotal,
		ServiceFee:   candidate.ServiceFee,
		DeliveryFee:  candidate.DeliveryFee,
		TotalAmount:  candidate.TotalAmount,
		Rationale:    BuildDraftRationale(intent),
		Status:       entity.DraftPending,
		ExpiresAt:    now.Add(constants.DraftTTL),
		CreatedAt:    now,
	}
	created, err := u.repo.CreateDraft(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return created, nil
}

func (u *assistantUseCase) cancelPendingDraft(ctx context.Context, customerID int64, session *entity.Session, profile *entity.Profile, intent entity.Intent) (*entity.ChatResult, error) {
	pending, err := u.repo.GetLatestPendingDraft(ctx, customerID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending draft: %w", err)
	}
	if pending != nil {
		if err := u.repo.MarkDraftCancelled(ctx, pending.ID); err != nil {
			return nil, fmt.Errorf("failed to cancel draft: %w", err)
		}
	}

	// Explicit cancel is the only backward phase transition
	profile.Model.Phase = entity.PhaseDiscovery
	profile.Conversation.LastIntent = "draft_cancelled"
	if err := u.saveProfile(ctx, customerID, profile, "updated_from_draft_cancelled"); err != nil {
		return nil, err
	}

	lang := replyLanguage(profile, intent)
	text := pick(lang,
		"تم إلغاء السلة. كلي شتحب تطلب هسه وأسويلك ترتيب جديد.",
		"The basket is cancelled. Tell me what you would like now and I will build a fresh one.")
	cancelMessage, err := u.repo.InsertMessage(ctx, session.ID, "assistant", text, map[string]any{
		"type": "draft_cancelled",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert cancel message: %w", err)
	}

	payload, err := u.buildPayload(ctx, customerID, session.ID, profile)
	if err != nil {
		return nil, err
	}
	return &entity.ChatResult{
		ConversationPayload: payload,
		AssistantMessage:    cancelMessage,
	}, nil
}

// ConfirmDraft turns a pending draft into a real order. The draft only
// flips to confirmed after the order collaborator returns.
func (u *assistantUseCase) ConfirmDraft(ctx context.Context, customerID int64, token string, opts ConfirmOptions) (*entity.ChatResult, error) {
	if err := u.repo.ExpireOldDrafts(ctx, customerID); err != nil {
		return nil, fmt.Errorf("failed to expire drafts: %w", err)
	}

	session, err := u.resolveSession(ctx, customerID, opts.SessionID)
	if err != nil {
		return nil, err
	}

	var draft *entity.Draft
	if token != "" {
		draft, err = u.repo.GetDraftByToken(ctx, customerID, token)
	} else {
		draft, err = u.repo.GetLatestPendingDraft(ctx, customerID, session.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil || draft.Status != entity.DraftPending {
		return nil, ErrDraftNotFound
	}
	if draft.Expired(u.now()) {
		if err := u.repo.MarkDraftCancelled(ctx, draft.ID); err != nil {
			return nil, fmt.Errorf("failed to cancel expired draft: %w", err)
		}
		return nil, ErrDraftExpired
	}

	addressID := draft.AddressID
	if opts.AddressID != 0 {
		addressID = opts.AddressID
	}
	if addressID == 0 {
		return nil, ErrAddressRequired
	}
	if len(draft.Items) == 0 {
		return nil, ErrDraftItemsEmpty
	}

	items := make([]entity.OrderItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, entity.OrderItem{ProductID: item.ProductID, Quantity: quantity})
	}

	var noteParts []string
	for _, part := range []string{draft.Note, opts.Note, "created_via_ai_assistant"} {
		if strings.TrimSpace(part) != "" {
			noteParts = append(noteParts, part)
		}
	}

	order, err := u.orders.CreateOrder(ctx, customerID, entity.OrderRequest{
		MerchantID: draft.MerchantID,
		AddressID:  addressID,
		Note:       strings.Join(noteParts, " | "),
		Items:      items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err := u.repo.MarkDraftConfirmed(ctx, draft.ID, order.ID); err != nil {
		return nil, fmt.Errorf("failed to confirm draft: %w", err)
	}

	profile, err := u.loadProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}
	learnFromConfirmedDraft(profile, draft, u.norm)
	profile.Model.Phase = entity.PhaseCheckout
	enrichProfileAfterConversation(profile)
	if err := u.saveProfile(ctx, customerID, profile, "updated_from_draft_confirmation"); err != nil {
		return nil, err
	}

	lang := profile.Language
	ruleText := ComposeReply(ReplyInput{
		Intent:           entity.Intent{},
		Profile:          profile,
		CreatedOrder:     order,
		ConfirmFromDraft: true,
		Language:         lang,
	})
	assistantText := u.applyWordingOverride(ctx, repository.ReplyContext{
		Language:       lang,
		ProfileSummary: ProjectProfile(profile),
		CreatedOrder:   order,
		RuleBasedText:  ruleText,
	})

	assistantMessage, err := u.repo.InsertMessage(ctx, session.ID, "assistant", assistantText, map[string]any{
		"type":       "draft_confirmed",
		"draftToken": draft.Token,
		"orderId":    order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert assistant message: %w", err)
	}

	payload, err := u.buildPayload(ctx, customerID, session.ID, profile)
	if err != nil {
		return nil, err
	}
	return &entity.ChatResult{
		ConversationPayload: payload,
		AssistantMessage:    assistantMessage,
		CreatedOrder:        order,
	}, nil
}

// GetCurrentConversation loads the transcript tail, pending draft and
// profile view without producing a new turn.
func (u *assistantUseCase) GetCurrentConversation(ctx context.Context, customerID, sessionID int64) (*entity.ConversationPayload, error) {
	if err := u.repo.ExpireOldDrafts(ctx, customerID); err != nil {
		return nil, fmt.Errorf("failed to expire drafts: %w", err)
	}
	session, err := u.resolveSession(ctx, customerID, sessionID)
	if err != nil {
		return nil, err
	}
	profile, err := u.loadProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := u.ensureWelcomeMessage(ctx, session.ID, profile.Language); err != nil {
		return nil, err
	}
	payload, err := u.buildPayload(ctx, customerID, session.ID, profile)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}
