package wizard

// PhotosState tracks the photo documentation substep. Photos are optional:
// SKIP completes the substep from NOT_STARTED or while capturing.
type PhotosState string

const (
	PhotosNotStarted      PhotosState = "NOT_STARTED"
	PhotosCapturing       PhotosState = "CAPTURING_PHOTOS"
	PhotosReviewing       PhotosState = "REVIEWING_PHOTOS"
	PhotosValidating      PhotosState = "VALIDATING"
	PhotosCompleted       PhotosState = "COMPLETED"
	PhotosValidationError PhotosState = "VALIDATION_ERROR"
)

// PhotosEvent drives the photo documentation substep.
type PhotosEvent string

const (
	PhotosStart          PhotosEvent = "START_SUBSTEP"
	PhotosUploaded       PhotosEvent = "PHOTO_UPLOADED"
	PhotosRemoved        PhotosEvent = "PHOTO_REMOVED"
	PhotosReview         PhotosEvent = "REVIEW"
	PhotosValidate       PhotosEvent = "VALIDATE"
	PhotosValidationOK   PhotosEvent = "VALIDATION_SUCCESS"
	PhotosValidationFail PhotosEvent = "VALIDATION_FAILED"
	PhotosComplete       PhotosEvent = "COMPLETE_SUBSTEP"
	PhotosSkip           PhotosEvent = "SKIP"
	PhotosReset          PhotosEvent = "RESET"
)

var photosTransitions = table[PhotosState, PhotosEvent]{
	PhotosNotStarted: {
		PhotosStart: PhotosCapturing,
		PhotosSkip:  PhotosCompleted,
	},
	PhotosCapturing: {
		PhotosUploaded: PhotosCapturing,
		PhotosRemoved:  PhotosCapturing,
		PhotosReview:   PhotosReviewing,
		PhotosSkip:     PhotosCompleted,
	},
	PhotosReviewing: {
		// going back for more shots is allowed
		PhotosStart:    PhotosCapturing,
		PhotosValidate: PhotosValidating,
	},
	PhotosValidating: {
		PhotosValidationOK:   PhotosCompleted,
		PhotosValidationFail: PhotosValidationError,
	},
}

// NextPhotosState applies event to state; RESET returns to NOT_STARTED from
// anywhere, undefined pairs are rejected.
func NextPhotosState(state PhotosState, event PhotosEvent) (PhotosState, bool) {
	if event == PhotosReset {
		return PhotosNotStarted, true
	}
	return photosTransitions.next(state, event)
}
