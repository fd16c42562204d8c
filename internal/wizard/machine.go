package wizard

// table is a transition map keyed by current state then event. Lookups that
// miss are rejected; the caller keeps its current state.
type table[S, E comparable] map[S]map[E]S

func (t table[S, E]) next(state S, event E) (S, bool) {
	row, ok := t[state]
	if !ok {
		return state, false
	}
	to, ok := row[event]
	if !ok {
		return state, false
	}
	return to, true
}

// orderTransitions is the top-level wizard machine. CANCEL_ORDER is accepted
// from every non-terminal state; terminal states accept nothing.
var orderTransitions = table[OrderState, OrderEvent]{
	StateInitial: {
		EventStartOrder: StateClientSelection,
	},
	StateClientSelection: {
		EventClientSelected: StateOrderInitialization,
	},
	StateOrderInitialization: {
		EventOrderInfoCompleted: StateItemManagement,
	},
	StateItemManagement: {
		EventAddItem:         StateItemWizardActive,
		EventDeleteItem:      StateItemManagement,
		EventItemsCompleted:  StateExecutionParams,
		EventStartItemWizard: StateItemWizardActive,
	},
	StateItemWizardActive: {
		EventStartItemWizard:  StateItemBasicInfo,
		EventCancelItemWizard: StateItemManagement,
	},
	StateItemBasicInfo: {
		EventBasicInfoCompleted: StateItemCharacteristics,
		EventCancelItemWizard:   StateItemManagement,
	},
	StateItemCharacteristics: {
		EventCharacteristicsComplete: StateItemDefectsStains,
		EventGoBack:                  StateItemBasicInfo,
		EventCancelItemWizard:        StateItemManagement,
	},
	StateItemDefectsStains: {
		EventDefectsCompleted: StateItemPricing,
		EventGoBack:           StateItemCharacteristics,
		EventCancelItemWizard: StateItemManagement,
	},
	StateItemPricing: {
		EventPricingCompleted: StateItemPhotos,
		EventGoBack:           StateItemDefectsStains,
		EventCancelItemWizard: StateItemManagement,
	},
	StateItemPhotos: {
		EventPhotosCompleted:  StateItemCompleted,
		EventSkipPhotos:       StateItemCompleted,
		EventGoBack:           StateItemPricing,
		EventCancelItemWizard: StateItemManagement,
	},
	StateItemCompleted: {
		EventItemAdded: StateItemManagement,
	},
	StateExecutionParams: {
		EventExecutionParamsSet: StateGlobalDiscounts,
	},
	StateGlobalDiscounts: {
		EventDiscountsApplied: StatePaymentProcessing,
	},
	StatePaymentProcessing: {
		EventPaymentProcessed: StateAdditionalInfo,
	},
	StateAdditionalInfo: {
		EventAdditionalInfoCompleted: StateOrderConfirmation,
	},
	StateOrderConfirmation: {
		EventReviewOrder: StateOrderReview,
	},
	StateOrderReview: {
		EventOrderApproved: StateLegalAspects,
	},
	StateLegalAspects: {
		EventTermsAccepted: StateReceiptGeneration,
	},
	StateReceiptGeneration: {
		EventReceiptGenerated: StateCompleted,
	},
}

// NextOrderState applies event to state. The second return value reports
// whether the transition was defined; rejected events leave state unchanged.
func NextOrderState(state OrderState, event OrderEvent) (OrderState, bool) {
	if state.IsTerminal() {
		return state, false
	}
	if event == EventCancelOrder {
		return StateCancelled, true
	}
	return orderTransitions.next(state, event)
}

// StageOf maps a state to the wizard stage it belongs to. Terminal and
// initial states report stage 0.
func StageOf(state OrderState) Stage {
	switch state {
	case StateClientSelection, StateOrderInitialization:
		return Stage1ClientAndBasics
	case StateItemManagement, StateItemWizardActive, StateItemBasicInfo,
		StateItemCharacteristics, StateItemDefectsStains, StateItemPricing,
		StateItemPhotos, StateItemCompleted:
		return Stage2Items
	case StateExecutionParams, StateGlobalDiscounts, StatePaymentProcessing,
		StateAdditionalInfo:
		return Stage3OrderParams
	case StateOrderConfirmation, StateOrderReview, StateLegalAspects,
		StateReceiptGeneration:
		return Stage4Confirmation
	default:
		return 0
	}
}
