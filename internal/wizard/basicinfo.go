package wizard

// BasicInfoState tracks the item basic-info substep (category, name, quantity).
type BasicInfoState string

const (
	BasicInfoNotStarted        BasicInfoState = "NOT_STARTED"
	BasicInfoSelectingCategory BasicInfoState = "SELECTING_SERVICE_CATEGORY"
	BasicInfoSelectingItemName BasicInfoState = "SELECTING_ITEM_NAME"
	BasicInfoEnteringQuantity  BasicInfoState = "ENTERING_QUANTITY"
	BasicInfoValidating        BasicInfoState = "VALIDATING"
	BasicInfoCompleted         BasicInfoState = "COMPLETED"
	BasicInfoValidationError   BasicInfoState = "VALIDATION_ERROR"
)

// BasicInfoEvent drives the basic-info substep.
type BasicInfoEvent string

const (
	BasicInfoStart            BasicInfoEvent = "START_SUBSTEP"
	BasicInfoCategorySelected BasicInfoEvent = "SERVICE_CATEGORY_SELECTED"
	BasicInfoItemNameSelected BasicInfoEvent = "ITEM_NAME_SELECTED"
	BasicInfoQuantityEntered  BasicInfoEvent = "QUANTITY_ENTERED"
	BasicInfoValidate         BasicInfoEvent = "VALIDATE"
	BasicInfoValidationOK     BasicInfoEvent = "VALIDATION_SUCCESS"
	BasicInfoValidationFail   BasicInfoEvent = "VALIDATION_FAILED"
	BasicInfoComplete         BasicInfoEvent = "COMPLETE_SUBSTEP"
	BasicInfoReset            BasicInfoEvent = "RESET"
)

var basicInfoTransitions = table[BasicInfoState, BasicInfoEvent]{
	BasicInfoNotStarted: {
		BasicInfoStart: BasicInfoSelectingCategory,
	},
	BasicInfoSelectingCategory: {
		BasicInfoCategorySelected: BasicInfoSelectingItemName,
	},
	BasicInfoSelectingItemName: {
		BasicInfoItemNameSelected: BasicInfoEnteringQuantity,
	},
	BasicInfoEnteringQuantity: {
		// quantity edits re-enter the same state
		BasicInfoQuantityEntered: BasicInfoEnteringQuantity,
		BasicInfoValidate:        BasicInfoValidating,
	},
	BasicInfoValidating: {
		BasicInfoValidationOK:   BasicInfoCompleted,
		BasicInfoValidationFail: BasicInfoValidationError,
	},
}

// NextBasicInfoState applies event to state. RESET is accepted from any
// state; everything else follows the table, with undefined pairs rejected.
func NextBasicInfoState(state BasicInfoState, event BasicInfoEvent) (BasicInfoState, bool) {
	if event == BasicInfoReset {
		return BasicInfoNotStarted, true
	}
	return basicInfoTransitions.next(state, event)
}
