package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/httpx"
	"github.com/aksi-clean/api/internal/services"
	"github.com/aksi-clean/api/internal/wizard"
)

const maxWizardBodySize = 32 * 1024

// WizardHandlers drives order intake sessions over HTTP. Every mutation maps
// onto one wizard event or extended-state write, so the handler layer stays a
// thin translation between JSON and the session machine.
type WizardHandlers struct {
	authn    *auth.Authenticator
	wizard   *wizard.Service
	clients  services.ClientService
	branches services.BranchService
	counters services.CounterService
	photos   services.PhotoService
}

// NewWizardHandlers constructs a new WizardHandlers instance.
func NewWizardHandlers(
	authn *auth.Authenticator,
	svc *wizard.Service,
	clients services.ClientService,
	branches services.BranchService,
	counters services.CounterService,
	photos services.PhotoService,
) *WizardHandlers {
	return &WizardHandlers{
		authn:    authn,
		wizard:   svc,
		clients:  clients,
		branches: branches,
		counters: counters,
		photos:   photos,
	}
}

// Routes registers the /wizard endpoints.
func (h *WizardHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/sessions", h.startSession)
	r.Get("/sessions/{sessionID}", h.getSession)
	r.Post("/sessions/{sessionID}/events", h.sendEvent)
	r.Post("/sessions/{sessionID}/client", h.selectClient)
	r.Post("/sessions/{sessionID}/order-info", h.initializeOrder)
	r.Put("/sessions/{sessionID}/draft", h.updateDraft)
	r.Post("/sessions/{sessionID}/steps/{step}/events", h.sendStepEvent)
	r.Post("/sessions/{sessionID}/photos:upload-url", h.createPhotoUploadURL)
	r.Post("/sessions/{sessionID}/photos:download-url", h.createPhotoDownloadURL)
	r.Post("/sessions/{sessionID}:cancel", h.cancelSession)
}

type sessionResponse struct {
	Session wizard.Session `json:"session"`
}

type transitionResponse struct {
	Transition wizard.TransitionResult `json:"transition"`
}

type sendEventRequest struct {
	Event string `json:"event"`
}

type selectClientRequest struct {
	ClientID string `json:"clientId"`
}

type orderInfoRequest struct {
	ReceiptNumber string `json:"receiptNumber"`
	UniqueTag     string `json:"uniqueTag"`
	BranchID      string `json:"branchId"`
}

type orderInfoResponse struct {
	Transition    wizard.TransitionResult `json:"transition"`
	ReceiptNumber string                  `json:"receiptNumber"`
}

type stepEventResponse struct {
	Step         string `json:"step"`
	State        string `json:"state"`
	Transitioned bool   `json:"transitioned"`
}

type photoUploadRequest struct {
	ItemID      string            `json:"itemId"`
	FileName    string            `json:"fileName"`
	ContentType string            `json:"contentType"`
	ContentMD5  string            `json:"contentMd5"`
	Metadata    map[string]string `json:"metadata"`
}

type photoDownloadRequest struct {
	ObjectPath  string `json:"objectPath"`
	Disposition string `json:"disposition"`
}

type photoURLResponse struct {
	ObjectPath string            `json:"objectPath"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	ExpiresAt  string            `json:"expiresAt"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// draftUpdateRequest applies a partial update to the in-flight item draft.
// Absent fields leave the draft untouched.
type draftUpdateRequest struct {
	CategoryCode    *string          `json:"categoryCode"`
	ItemName        *string          `json:"itemName"`
	Quantity        *int64           `json:"quantity"`
	Color           *string          `json:"color"`
	Material        *string          `json:"material"`
	FillerType      *string          `json:"fillerType"`
	WearLevel       *int             `json:"wearLevel"`
	Stains          []string         `json:"stains"`
	Defects         []string         `json:"defects"`
	RiskNotes       *string          `json:"riskNotes"`
	PhotoKeys       []string         `json:"photoKeys"`
	ModifierCodes   []string         `json:"modifierCodes"`
	RangeSelections map[string]int64 `json:"rangeSelections"`
	FixedCounts     map[string]int64 `json:"fixedCounts"`
	Expedited       *bool            `json:"expedited"`
}

func (h *WizardHandlers) startSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	sess, err := h.wizard.StartSession(ctx)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, sessionResponse{Session: sess})
}

func (h *WizardHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	sess, err := h.wizard.GetSession(ctx, sessionID)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: sess})
}

func (h *WizardHandlers) sendEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req sendEventRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	event := wizard.OrderEvent(strings.TrimSpace(req.Event))
	if event == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "event is required", http.StatusBadRequest))
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	result, err := h.wizard.SendEvent(ctx, sessionID, event)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, transitionResponse{Transition: result})
}

func (h *WizardHandlers) selectClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req selectClientRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	clientID := strings.TrimSpace(req.ClientID)
	if h.clients != nil {
		if _, err := h.clients.GetClient(ctx, clientID); err != nil {
			switch {
			case errors.Is(err, services.ErrClientInvalidInput):
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
			case errors.Is(err, services.ErrClientNotFound):
				httpx.WriteError(ctx, w, httpx.NewError("client_not_found", "client not found", http.StatusNotFound))
			default:
				httpx.WriteError(ctx, w, httpx.NewError("client_unavailable", "client directory unavailable", http.StatusServiceUnavailable))
			}
			return
		}
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	result, err := h.wizard.SelectClient(ctx, sessionID, clientID)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, transitionResponse{Transition: result})
}

func (h *WizardHandlers) initializeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req orderInfoRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	branchID := strings.TrimSpace(req.BranchID)
	receipt := strings.TrimSpace(req.ReceiptNumber)
	if receipt == "" {
		generated, err := h.generateReceiptNumber(ctx, branchID)
		if err != nil {
			writeWizardError(ctx, w, err)
			return
		}
		receipt = generated
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	result, err := h.wizard.InitializeOrder(ctx, sessionID, receipt, strings.TrimSpace(req.UniqueTag), branchID)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderInfoResponse{Transition: result, ReceiptNumber: receipt})
}

// generateReceiptNumber resolves the branch code and draws the next receipt
// number from the branch-scoped counter sequence.
func (h *WizardHandlers) generateReceiptNumber(ctx context.Context, branchID string) (string, error) {
	if h.branches == nil || h.counters == nil {
		return "", errors.New("receipt number generation unavailable")
	}
	branch, err := h.branches.GetBranch(ctx, branchID)
	if err != nil {
		return "", err
	}
	return h.counters.NextReceiptNumber(ctx, branch.Code)
}

func (h *WizardHandlers) updateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req draftUpdateRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	sess, err := h.wizard.UpdateDraft(ctx, sessionID, func(draft *wizard.ItemDraft) error {
		applyDraftUpdate(draft, req)
		return nil
	})
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessionResponse{Session: sess})
}

func applyDraftUpdate(draft *wizard.ItemDraft, req draftUpdateRequest) {
	if req.CategoryCode != nil {
		draft.CategoryCode = strings.TrimSpace(*req.CategoryCode)
	}
	if req.ItemName != nil {
		draft.ItemName = strings.TrimSpace(*req.ItemName)
	}
	if req.Quantity != nil {
		draft.Quantity = *req.Quantity
	}
	if req.Color != nil {
		draft.Color = strings.TrimSpace(*req.Color)
	}
	if req.Material != nil {
		draft.Material = strings.TrimSpace(*req.Material)
	}
	if req.FillerType != nil {
		draft.FillerType = strings.TrimSpace(*req.FillerType)
	}
	if req.WearLevel != nil {
		draft.WearLevel = *req.WearLevel
	}
	if req.Stains != nil {
		draft.Stains = req.Stains
	}
	if req.Defects != nil {
		draft.Defects = req.Defects
	}
	if req.RiskNotes != nil {
		draft.RiskNotes = strings.TrimSpace(*req.RiskNotes)
	}
	if req.PhotoKeys != nil {
		draft.PhotoKeys = req.PhotoKeys
	}
	if req.ModifierCodes != nil {
		draft.ModifierCodes = req.ModifierCodes
	}
	if req.RangeSelections != nil {
		draft.RangeSelections = req.RangeSelections
	}
	if req.FixedCounts != nil {
		draft.FixedCounts = req.FixedCounts
	}
	if req.Expedited != nil {
		draft.Expedited = *req.Expedited
	}
}

func (h *WizardHandlers) sendStepEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req sendEventRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	event := strings.TrimSpace(req.Event)
	if event == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "event is required", http.StatusBadRequest))
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	step := strings.TrimSpace(chi.URLParam(r, "step"))

	var (
		state        string
		transitioned bool
		err          error
	)
	switch step {
	case "basic-info":
		var s wizard.BasicInfoState
		s, transitioned, err = h.wizard.SendBasicInfoEvent(ctx, sessionID, wizard.BasicInfoEvent(event))
		state = string(s)
	case "stains":
		var s wizard.StainsState
		s, transitioned, err = h.wizard.SendStainsEvent(ctx, sessionID, wizard.StainsEvent(event))
		state = string(s)
	case "photos":
		var s wizard.PhotosState
		s, transitioned, err = h.wizard.SendPhotosEvent(ctx, sessionID, wizard.PhotosEvent(event))
		state = string(s)
	case "pricing":
		var s wizard.PricingState
		s, transitioned, err = h.wizard.SendPricingEvent(ctx, sessionID, wizard.PricingEvent(event))
		state = string(s)
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unknown wizard step", http.StatusBadRequest))
		return
	}
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stepEventResponse{Step: step, State: state, Transitioned: transitioned})
}

func (h *WizardHandlers) createPhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}
	if h.photos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("photo_unavailable", "photo storage unavailable", http.StatusServiceUnavailable))
		return
	}

	var req photoUploadRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	sess, err := h.wizard.GetSession(ctx, sessionID)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	if !sess.Active {
		httpx.WriteError(ctx, w, httpx.NewError("session_inactive", "wizard session is no longer active", http.StatusConflict))
		return
	}

	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		// The draft in flight occupies the slot after the committed items.
		itemID = fmt.Sprintf("item-%d", len(sess.Items))
	}

	result, err := h.photos.CreateUploadURL(ctx, services.PhotoUploadCommand{
		SessionID:   sessionID,
		ItemID:      itemID,
		FileName:    strings.TrimSpace(req.FileName),
		ContentType: strings.TrimSpace(req.ContentType),
		ContentMD5:  strings.TrimSpace(req.ContentMD5),
		Metadata:    req.Metadata,
	})
	if err != nil {
		writePhotoError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildPhotoURLResponse(result))
}

func (h *WizardHandlers) createPhotoDownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.photos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("photo_unavailable", "photo storage unavailable", http.StatusServiceUnavailable))
		return
	}

	var req photoDownloadRequest
	if err := decodeJSONBody(r, maxWizardBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	result, err := h.photos.CreateDownloadURL(ctx, services.PhotoDownloadCommand{
		ObjectPath:  strings.TrimSpace(req.ObjectPath),
		Disposition: strings.TrimSpace(req.Disposition),
	})
	if err != nil {
		writePhotoError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPhotoURLResponse(result))
}

func buildPhotoURLResponse(result services.PhotoURL) photoURLResponse {
	return photoURLResponse{
		ObjectPath: result.ObjectPath,
		URL:        result.URL,
		Method:     result.Method,
		ExpiresAt:  formatTime(result.ExpiresAt),
		Headers:    result.Headers,
	}
}

func writePhotoError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPhotoInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPhotoForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "access to the photo is denied", http.StatusForbidden))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("photo_unavailable", "failed to sign photo url", http.StatusServiceUnavailable))
	}
}

func (h *WizardHandlers) cancelSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.wizard == nil {
		httpx.WriteError(ctx, w, httpx.NewError("wizard_unavailable", "wizard service unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	result, err := h.wizard.Cancel(ctx, sessionID)
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, transitionResponse{Transition: result})
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

func writeWizardError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, wizard.ErrWizardInvalidInput), errors.Is(err, services.ErrPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, wizard.ErrSessionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("session_not_found", "wizard session not found", http.StatusNotFound))
	case errors.Is(err, wizard.ErrSessionInactive):
		httpx.WriteError(ctx, w, httpx.NewError("session_inactive", "wizard session is no longer active", http.StatusConflict))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_not_found", "price list entry not found", http.StatusNotFound))
	case errors.Is(err, services.ErrBranchNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("branch_not_found", "branch not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCounterExhausted):
		httpx.WriteError(ctx, w, httpx.NewError("counter_exhausted", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("wizard_error", "failed to process wizard request", http.StatusInternalServerError))
	}
}
