package wizard

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/aksi-clean/api/internal/domain"
)

var (
	// ErrWizardInvalidInput flags malformed payload data sent to the wizard.
	ErrWizardInvalidInput = errors.New("wizard: invalid input")

	receiptNumberPattern = regexp.MustCompile(`^AKSI-[A-Z0-9]{1,10}-\d{8}-\d{6}-\d{3}$`)
	uniqueTagPattern     = regexp.MustCompile(`^[A-Za-z0-9-_]{3,20}$`)
)

// PriceCalculator computes the final price for one item draft.
type PriceCalculator interface {
	Calculate(ctx context.Context, params domain.PriceCalculationParams) (domain.PriceCalculationResult, error)
}

// CatalogLookup resolves catalog reference data needed while pricing a draft.
type CatalogLookup interface {
	GetPriceListItem(ctx context.Context, categoryCode, itemName string) (domain.PriceListItem, error)
	GetModifiers(ctx context.Context, codes []string) ([]domain.PriceModifier, error)
}

// TransitionResult reports the outcome of one event application. Rejected
// transitions are not errors: the session stays in From and Reason says why.
type TransitionResult struct {
	SessionID string     `json:"sessionId"`
	From      OrderState `json:"from"`
	To        OrderState `json:"to"`
	Rejected  bool       `json:"rejected"`
	Reason    string     `json:"reason,omitempty"`
}

// ServiceDeps enumerates the orchestrator's collaborators.
type ServiceDeps struct {
	Store       SessionStore
	Calculator  PriceCalculator
	Catalog     CatalogLookup
	ExpediteBps int64
	Logger      *zap.Logger
}

// Service drives wizard sessions: it applies events to the top-level and
// substep machines, evaluates stage guards, and invokes the pricing engine
// at the pricing substep's final-calculation step. All of that happens under
// the session's lock so a session only ever observes serialized mutations.
type Service struct {
	store       SessionStore
	calculator  PriceCalculator
	catalog     CatalogLookup
	expediteBps int64
	logger      *zap.Logger
}

// NewService validates deps and builds the wizard orchestrator.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("wizard: session store is required")
	}
	if deps.Calculator == nil {
		return nil, errors.New("wizard: price calculator is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("wizard: catalog lookup is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       deps.Store,
		calculator:  deps.Calculator,
		catalog:     deps.Catalog,
		expediteBps: deps.ExpediteBps,
		logger:      logger,
	}, nil
}

// StartSession opens a new session and advances it into client selection.
func (s *Service) StartSession(ctx context.Context) (Session, error) {
	created, err := s.store.Create(ctx)
	if err != nil {
		return Session{}, err
	}
	return s.store.Update(ctx, created.ID, func(sess *Session) error {
		sess.State = StateClientSelection
		return nil
	})
}

// GetSession returns a read-only snapshot of the session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	return s.store.Get(ctx, sessionID)
}

// SendEvent applies a top-level order event. Guarded edges re-check their
// stage prerequisites under the session lock; a failed guard rejects the
// event without touching state.
func (s *Service) SendEvent(ctx context.Context, sessionID string, event OrderEvent) (TransitionResult, error) {
	var result TransitionResult
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		result = s.applyOrderEvent(sess, event)
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if result.Rejected {
		s.logger.Debug("wizard: event rejected",
			zap.String("session_id", sessionID),
			zap.String("event", string(event)),
			zap.String("state", string(result.From)),
			zap.String("reason", result.Reason))
	}
	return result, nil
}

func (s *Service) applyOrderEvent(sess *Session, event OrderEvent) TransitionResult {
	result := TransitionResult{SessionID: sess.ID, From: sess.State, To: sess.State}

	if stage, guarded := guardedEdges[event]; guarded && !stageGuardHolds(*sess, stage) {
		result.Rejected = true
		result.Reason = fmt.Sprintf("stage %d prerequisites not met", stage)
		return result
	}
	switch event {
	case EventItemAdded:
		if sess.Draft == nil || sess.Draft.Pricing == nil {
			result.Rejected = true
			result.Reason = "item draft is not priced"
			return result
		}
	case EventDeleteItem:
		if len(sess.Items) == 0 {
			result.Rejected = true
			result.Reason = "no items to delete"
			return result
		}
	}

	next, ok := NextOrderState(sess.State, event)
	if !ok {
		result.Rejected = true
		result.Reason = fmt.Sprintf("event %s not allowed in state %s", event, sess.State)
		return result
	}

	switch event {
	case EventStartItemWizard:
		if next == StateItemBasicInfo {
			draft := ItemDraft{}
			sess.Draft = &draft
			sess.Steps = newStepStates()
		}
	case EventCancelItemWizard:
		sess.Draft = nil
		sess.Steps = newStepStates()
	case EventItemAdded:
		sess.Items = append(sess.Items, *sess.Draft)
		sess.Draft = nil
		sess.Steps = newStepStates()
	case EventDeleteItem:
		// DELETE_ITEM stays in ITEM_MANAGEMENT and removes the most
		// recently added item.
		sess.Items = sess.Items[:len(sess.Items)-1]
	}

	sess.State = next
	if next.IsTerminal() {
		sess.Active = false
	}
	result.To = next
	return result
}

// guardedEdges maps events whose top-level transition is protected by a
// stage-completion guard.
var guardedEdges = map[OrderEvent]Stage{
	EventOrderInfoCompleted: Stage1ClientAndBasics,
	EventItemsCompleted:     Stage2Items,
}

// SelectClient stores the chosen client and advances past client selection.
func (s *Service) SelectClient(ctx context.Context, sessionID, clientID string) (TransitionResult, error) {
	if clientID == "" {
		return TransitionResult{}, fmt.Errorf("%w: client id is empty", ErrWizardInvalidInput)
	}
	var result TransitionResult
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		sess.Extended[KeySelectedClientID] = clientID
		result = s.applyOrderEvent(sess, EventClientSelected)
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}
	return result, nil
}

// InitializeOrder records the order identifiers and, with stage 1 now
// satisfiable, fires ORDER_INFO_COMPLETED.
func (s *Service) InitializeOrder(ctx context.Context, sessionID, receiptNumber, uniqueTag, branchID string) (TransitionResult, error) {
	if !receiptNumberPattern.MatchString(receiptNumber) {
		return TransitionResult{}, fmt.Errorf("%w: malformed receipt number %q", ErrWizardInvalidInput, receiptNumber)
	}
	if !uniqueTagPattern.MatchString(uniqueTag) {
		return TransitionResult{}, fmt.Errorf("%w: malformed unique tag %q", ErrWizardInvalidInput, uniqueTag)
	}
	if branchID == "" {
		return TransitionResult{}, fmt.Errorf("%w: branch id is empty", ErrWizardInvalidInput)
	}
	var result TransitionResult
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		sess.Extended[KeyReceiptNumber] = receiptNumber
		sess.Extended[KeyUniqueTag] = uniqueTag
		sess.Extended[KeyBranchID] = branchID
		result = s.applyOrderEvent(sess, EventOrderInfoCompleted)
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}
	return result, nil
}

// UpdateDraft mutates the in-flight item draft under the session lock.
func (s *Service) UpdateDraft(ctx context.Context, sessionID string, fn func(*ItemDraft) error) (Session, error) {
	return s.store.Update(ctx, sessionID, func(sess *Session) error {
		if sess.Draft == nil {
			return fmt.Errorf("%w: no item draft in flight", ErrWizardInvalidInput)
		}
		return fn(sess.Draft)
	})
}

// SendBasicInfoEvent advances the basic-info substep machine.
func (s *Service) SendBasicInfoEvent(ctx context.Context, sessionID string, event BasicInfoEvent) (BasicInfoState, bool, error) {
	var (
		state BasicInfoState
		ok    bool
	)
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		state, ok = NextBasicInfoState(sess.Steps.BasicInfo, event)
		sess.Steps.BasicInfo = state
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return state, ok, nil
}

// SendStainsEvent advances the stains-and-defects substep machine.
func (s *Service) SendStainsEvent(ctx context.Context, sessionID string, event StainsEvent) (StainsState, bool, error) {
	var (
		state StainsState
		ok    bool
	)
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		state, ok = NextStainsState(sess.Steps.Stains, event)
		sess.Steps.Stains = state
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return state, ok, nil
}

// SendPhotosEvent advances the photo documentation substep machine.
func (s *Service) SendPhotosEvent(ctx context.Context, sessionID string, event PhotosEvent) (PhotosState, bool, error) {
	var (
		state PhotosState
		ok    bool
	)
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		state, ok = NextPhotosState(sess.Steps.Photos, event)
		sess.Steps.Photos = state
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return state, ok, nil
}

// SendPricingEvent advances the pricing substep machine. CALCULATE_FINAL_PRICE
// additionally runs the pricing engine against the current draft; a failed
// calculation lands the substep in ERROR with the failure recorded.
func (s *Service) SendPricingEvent(ctx context.Context, sessionID string, event PricingEvent) (PricingState, bool, error) {
	var (
		state   PricingState
		ok      bool
		calcErr error
	)
	_, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		state, ok = NextPricingState(sess.Steps.Pricing, event)
		if ok && event == PricingCalculateFinal {
			if priceErr := s.priceDraft(ctx, sess); priceErr != nil {
				calcErr = priceErr
				state, _ = NextPricingState(state, PricingHandleError)
			}
		}
		sess.Steps.Pricing = state
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if calcErr != nil {
		s.logger.Warn("wizard: final price calculation failed",
			zap.String("session_id", sessionID),
			zap.Error(calcErr))
		return state, false, calcErr
	}
	return state, ok, nil
}

// priceDraft resolves catalog data for the draft and runs the calculator,
// storing the breakdown on the draft.
func (s *Service) priceDraft(ctx context.Context, sess *Session) error {
	draft := sess.Draft
	if draft == nil {
		return fmt.Errorf("%w: no item draft in flight", ErrWizardInvalidInput)
	}
	item, err := s.catalog.GetPriceListItem(ctx, draft.CategoryCode, draft.ItemName)
	if err != nil {
		return fmt.Errorf("resolve price list item: %w", err)
	}
	modifiers, err := s.catalog.GetModifiers(ctx, draft.ModifierCodes)
	if err != nil {
		return fmt.Errorf("resolve modifiers: %w", err)
	}
	result, err := s.calculator.Calculate(ctx, domain.PriceCalculationParams{
		CategoryCode:    draft.CategoryCode,
		ItemName:        item.Name,
		UnitOfMeasure:   item.UnitOfMeasure,
		BasePrice:       item.BasePrice,
		PriceBlack:      item.PriceBlack,
		PriceColor:      item.PriceColor,
		Color:           draft.Color,
		Quantity:        draft.Quantity,
		Modifiers:       modifiers,
		RangeSelections: draft.RangeSelections,
		FixedCounts:     draft.FixedCounts,
		Expedited:       draft.Expedited,
		ExpediteBps:     s.expediteBps,
	})
	if err != nil {
		return err
	}
	draft.PriceListID = item.ID
	draft.UnitOfMeasure = item.UnitOfMeasure
	draft.Pricing = &result
	return nil
}

// Cancel aborts the session from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, sessionID string) (TransitionResult, error) {
	return s.SendEvent(ctx, sessionID, EventCancelOrder)
}
