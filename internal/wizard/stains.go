package wizard

// StainsState tracks the stains-and-defects substep. The substep is optional:
// COMPLETE_SUBSTEP straight from NOT_STARTED marks it done without data.
type StainsState string

const (
	StainsNotStarted      StainsState = "NOT_STARTED"
	StainsSelectingStains StainsState = "SELECTING_STAINS"
	StainsSelectingDefect StainsState = "SELECTING_DEFECTS"
	StainsAssessingRisks  StainsState = "ASSESSING_RISKS"
	StainsValidating      StainsState = "VALIDATING"
	StainsCompleted       StainsState = "COMPLETED"
	StainsValidationError StainsState = "VALIDATION_ERROR"
)

// StainsEvent drives the stains-and-defects substep.
type StainsEvent string

const (
	StainsStart           StainsEvent = "START_SUBSTEP"
	StainsStainsSelected  StainsEvent = "STAINS_SELECTED"
	StainsDefectsSelected StainsEvent = "DEFECTS_SELECTED"
	StainsRisksAssessed   StainsEvent = "RISKS_ASSESSED"
	StainsValidate        StainsEvent = "VALIDATE"
	StainsValidationOK    StainsEvent = "VALIDATION_SUCCESS"
	StainsValidationFail  StainsEvent = "VALIDATION_FAILED"
	StainsComplete        StainsEvent = "COMPLETE_SUBSTEP"
	StainsReset           StainsEvent = "RESET"
)

var stainsTransitions = table[StainsState, StainsEvent]{
	StainsNotStarted: {
		StainsStart:    StainsSelectingStains,
		StainsComplete: StainsCompleted,
	},
	StainsSelectingStains: {
		StainsStainsSelected: StainsSelectingDefect,
	},
	StainsSelectingDefect: {
		StainsDefectsSelected: StainsAssessingRisks,
	},
	StainsAssessingRisks: {
		StainsRisksAssessed: StainsAssessingRisks,
		StainsValidate:      StainsValidating,
	},
	StainsValidating: {
		StainsValidationOK:   StainsCompleted,
		StainsValidationFail: StainsValidationError,
	},
}

// NextStainsState applies event to state; RESET returns to NOT_STARTED from
// anywhere, undefined pairs are rejected.
func NextStainsState(state StainsState, event StainsEvent) (StainsState, bool) {
	if event == StainsReset {
		return StainsNotStarted, true
	}
	return stainsTransitions.next(state, event)
}
