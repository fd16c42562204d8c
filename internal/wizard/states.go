// Package wizard implements the multi-stage order creation state machine:
// a top-level machine driving the four intake stages plus nested per-substep
// machines for item data entry. All machines are explicit transition tables;
// events are the only mutation trigger and undefined (state, event) pairs are
// rejected no-ops.
package wizard

// OrderState is the top-level wizard stage.
type OrderState string

const (
	StateInitial OrderState = "INITIAL"

	// Stage 1: client and order basics.
	StateClientSelection     OrderState = "CLIENT_SELECTION"
	StateOrderInitialization OrderState = "ORDER_INITIALIZATION"

	// Stage 2: item manager and the nested item sub-wizard.
	StateItemManagement      OrderState = "ITEM_MANAGEMENT"
	StateItemWizardActive    OrderState = "ITEM_WIZARD_ACTIVE"
	StateItemBasicInfo       OrderState = "ITEM_BASIC_INFO"
	StateItemCharacteristics OrderState = "ITEM_CHARACTERISTICS"
	StateItemDefectsStains   OrderState = "ITEM_DEFECTS_STAINS"
	StateItemPricing         OrderState = "ITEM_PRICING"
	StateItemPhotos          OrderState = "ITEM_PHOTOS"
	StateItemCompleted       OrderState = "ITEM_COMPLETED"

	// Stage 3: order-wide parameters.
	StateExecutionParams   OrderState = "EXECUTION_PARAMS"
	StateGlobalDiscounts   OrderState = "GLOBAL_DISCOUNTS"
	StatePaymentProcessing OrderState = "PAYMENT_PROCESSING"
	StateAdditionalInfo    OrderState = "ADDITIONAL_INFO"

	// Stage 4: confirmation and completion.
	StateOrderConfirmation OrderState = "ORDER_CONFIRMATION"
	StateOrderReview       OrderState = "ORDER_REVIEW"
	StateLegalAspects      OrderState = "LEGAL_ASPECTS"
	StateReceiptGeneration OrderState = "RECEIPT_GENERATION"

	StateCompleted OrderState = "COMPLETED"
	StateCancelled OrderState = "CANCELLED"
)

// IsTerminal reports whether the wizard has finished.
func (s OrderState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// OrderEvent drives top-level wizard transitions.
type OrderEvent string

const (
	EventStartOrder OrderEvent = "START_ORDER"

	EventClientSelected     OrderEvent = "CLIENT_SELECTED"
	EventOrderInfoCompleted OrderEvent = "ORDER_INFO_COMPLETED"

	EventAddItem                 OrderEvent = "ADD_ITEM"
	EventStartItemWizard         OrderEvent = "START_ITEM_WIZARD"
	EventBasicInfoCompleted      OrderEvent = "BASIC_INFO_COMPLETED"
	EventCharacteristicsComplete OrderEvent = "CHARACTERISTICS_COMPLETED"
	EventDefectsCompleted        OrderEvent = "DEFECTS_COMPLETED"
	EventPricingCompleted        OrderEvent = "PRICING_COMPLETED"
	EventPhotosCompleted         OrderEvent = "PHOTOS_COMPLETED"
	EventSkipPhotos              OrderEvent = "SKIP_PHOTOS"
	EventItemAdded               OrderEvent = "ITEM_ADDED"
	EventGoBack                  OrderEvent = "GO_BACK"
	EventCancelItemWizard        OrderEvent = "CANCEL_ITEM_WIZARD"
	EventDeleteItem              OrderEvent = "DELETE_ITEM"
	EventItemsCompleted          OrderEvent = "ITEMS_COMPLETED"

	EventExecutionParamsSet      OrderEvent = "EXECUTION_PARAMS_SET"
	EventDiscountsApplied        OrderEvent = "DISCOUNTS_APPLIED"
	EventPaymentProcessed        OrderEvent = "PAYMENT_PROCESSED"
	EventAdditionalInfoCompleted OrderEvent = "ADDITIONAL_INFO_COMPLETED"

	EventReviewOrder      OrderEvent = "REVIEW_ORDER"
	EventOrderApproved    OrderEvent = "ORDER_APPROVED"
	EventTermsAccepted    OrderEvent = "TERMS_ACCEPTED"
	EventReceiptGenerated OrderEvent = "RECEIPT_GENERATED"

	EventCancelOrder OrderEvent = "CANCEL_ORDER"
)

// Stage identifies a top-level wizard stage for guard evaluation.
type Stage int

const (
	Stage1ClientAndBasics Stage = iota + 1
	Stage2Items
	Stage3OrderParams
	Stage4Confirmation
)
