package wizard

import "testing"

func TestBasicInfoHappyPath(t *testing.T) {
	steps := []struct {
		event BasicInfoEvent
		want  BasicInfoState
	}{
		{BasicInfoStart, BasicInfoSelectingCategory},
		{BasicInfoCategorySelected, BasicInfoSelectingItemName},
		{BasicInfoItemNameSelected, BasicInfoEnteringQuantity},
		{BasicInfoQuantityEntered, BasicInfoEnteringQuantity},
		{BasicInfoValidate, BasicInfoValidating},
		{BasicInfoValidationOK, BasicInfoCompleted},
	}
	state := BasicInfoNotStarted
	for _, step := range steps {
		next, ok := NextBasicInfoState(state, step.event)
		if !ok || next != step.want {
			t.Fatalf("event %s in %s: got (%s, %v), want %s", step.event, state, next, ok, step.want)
		}
		state = next
	}
}

func TestBasicInfoQuantityEnteredWhileSelectingCategory(t *testing.T) {
	next, ok := NextBasicInfoState(BasicInfoSelectingCategory, BasicInfoQuantityEntered)
	if ok {
		t.Fatal("out-of-order quantity event must be rejected")
	}
	if next != BasicInfoSelectingCategory {
		t.Fatalf("state changed to %s, want unchanged", next)
	}
}

func TestBasicInfoValidationFailureAndReset(t *testing.T) {
	next, ok := NextBasicInfoState(BasicInfoValidating, BasicInfoValidationFail)
	if !ok || next != BasicInfoValidationError {
		t.Fatalf("got (%s, %v)", next, ok)
	}
	// terminal except for RESET
	if _, ok := NextBasicInfoState(BasicInfoValidationError, BasicInfoValidate); ok {
		t.Fatal("VALIDATION_ERROR accepted a non-reset event")
	}
	next, ok = NextBasicInfoState(BasicInfoValidationError, BasicInfoReset)
	if !ok || next != BasicInfoNotStarted {
		t.Fatalf("reset: got (%s, %v)", next, ok)
	}
}

func TestBasicInfoResetFromEveryState(t *testing.T) {
	states := []BasicInfoState{
		BasicInfoNotStarted, BasicInfoSelectingCategory, BasicInfoSelectingItemName,
		BasicInfoEnteringQuantity, BasicInfoValidating, BasicInfoCompleted,
		BasicInfoValidationError,
	}
	for _, state := range states {
		next, ok := NextBasicInfoState(state, BasicInfoReset)
		if !ok || next != BasicInfoNotStarted {
			t.Fatalf("reset from %s: got (%s, %v)", state, next, ok)
		}
	}
	// reset is idempotent
	next, ok := NextBasicInfoState(BasicInfoNotStarted, BasicInfoReset)
	if !ok || next != BasicInfoNotStarted {
		t.Fatalf("repeated reset: got (%s, %v)", next, ok)
	}
}

func TestStainsOptionalCompletion(t *testing.T) {
	next, ok := NextStainsState(StainsNotStarted, StainsComplete)
	if !ok || next != StainsCompleted {
		t.Fatalf("got (%s, %v), want (%s, true)", next, ok, StainsCompleted)
	}
}

func TestStainsFullPath(t *testing.T) {
	steps := []struct {
		event StainsEvent
		want  StainsState
	}{
		{StainsStart, StainsSelectingStains},
		{StainsStainsSelected, StainsSelectingDefect},
		{StainsDefectsSelected, StainsAssessingRisks},
		{StainsRisksAssessed, StainsAssessingRisks},
		{StainsValidate, StainsValidating},
		{StainsValidationOK, StainsCompleted},
	}
	state := StainsNotStarted
	for _, step := range steps {
		next, ok := NextStainsState(state, step.event)
		if !ok || next != step.want {
			t.Fatalf("event %s in %s: got (%s, %v), want %s", step.event, state, next, ok, step.want)
		}
		state = next
	}
}

func TestPhotosSkip(t *testing.T) {
	for _, from := range []PhotosState{PhotosNotStarted, PhotosCapturing} {
		next, ok := NextPhotosState(from, PhotosSkip)
		if !ok || next != PhotosCompleted {
			t.Fatalf("skip from %s: got (%s, %v)", from, next, ok)
		}
	}
	if _, ok := NextPhotosState(PhotosReviewing, PhotosSkip); ok {
		t.Fatal("skip must not be allowed once reviewing")
	}
}

func TestPhotosCaptureLoopAndValidation(t *testing.T) {
	steps := []struct {
		event PhotosEvent
		want  PhotosState
	}{
		{PhotosStart, PhotosCapturing},
		{PhotosUploaded, PhotosCapturing},
		{PhotosUploaded, PhotosCapturing},
		{PhotosRemoved, PhotosCapturing},
		{PhotosReview, PhotosReviewing},
		{PhotosValidate, PhotosValidating},
		{PhotosValidationOK, PhotosCompleted},
	}
	state := PhotosNotStarted
	for _, step := range steps {
		next, ok := NextPhotosState(state, step.event)
		if !ok || next != step.want {
			t.Fatalf("event %s in %s: got (%s, %v), want %s", step.event, state, next, ok, step.want)
		}
		state = next
	}
}

func TestPricingSubstepPath(t *testing.T) {
	steps := []struct {
		event PricingEvent
		want  PricingState
	}{
		{PricingInitialize, PricingCalculatingBase},
		{PricingCalculateBase, PricingSelectingMods},
		{PricingAddModifier, PricingSelectingMods},
		{PricingRemoveModifier, PricingSelectingMods},
		{PricingCalculateFinal, PricingCalculatingFinal},
		{PricingConfirm, PricingCompleted},
	}
	state := PricingInitial
	for _, step := range steps {
		next, ok := NextPricingState(state, step.event)
		if !ok || next != step.want {
			t.Fatalf("event %s in %s: got (%s, %v), want %s", step.event, state, next, ok, step.want)
		}
		state = next
	}
}

func TestPricingSubstepErrorAndReset(t *testing.T) {
	for _, from := range []PricingState{PricingCalculatingBase, PricingSelectingMods, PricingCalculatingFinal} {
		next, ok := NextPricingState(from, PricingHandleError)
		if !ok || next != PricingError {
			t.Fatalf("handle error from %s: got (%s, %v)", from, next, ok)
		}
	}
	if _, ok := NextPricingState(PricingError, PricingConfirm); ok {
		t.Fatal("ERROR accepted a non-reset event")
	}
	next, ok := NextPricingState(PricingError, PricingReset)
	if !ok || next != PricingInitial {
		t.Fatalf("reset: got (%s, %v)", next, ok)
	}
}
