package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/httpx"
	"github.com/aksi-clean/api/internal/services"
)

const maxClientBodySize = 16 * 1024

// ClientHandlers manages the customer directory endpoints used during intake.
type ClientHandlers struct {
	authn   *auth.Authenticator
	clients services.ClientService
}

// NewClientHandlers constructs a new ClientHandlers instance.
func NewClientHandlers(authn *auth.Authenticator, clients services.ClientService) *ClientHandlers {
	return &ClientHandlers{
		authn:   authn,
		clients: clients,
	}
}

// Routes registers the /clients endpoints.
func (h *ClientHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.searchClients)
	r.Post("/", h.createClient)
	r.Get("/{clientID}", h.getClient)
	r.Put("/{clientID}", h.updateClient)
}

type clientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Source    string `json:"source"`
	Notes     string `json:"notes"`
}

type clientPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	Source    string `json:"source,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type clientResponse struct {
	Client clientPayload `json:"client"`
}

type clientListResponse struct {
	Items []clientPayload `json:"items"`
}

func (h *ClientHandlers) createClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.clients == nil {
		httpx.WriteError(ctx, w, httpx.NewError("client_unavailable", "client service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req clientRequest
	if err := decodeJSONBody(r, maxClientBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	client, err := h.clients.CreateClient(ctx, upsertCommandFromRequest("", req))
	if err != nil {
		writeClientError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, clientResponse{Client: buildClientPayload(client)})
}

func (h *ClientHandlers) updateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.clients == nil {
		httpx.WriteError(ctx, w, httpx.NewError("client_unavailable", "client service unavailable", http.StatusServiceUnavailable))
		return
	}

	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	if clientID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "client id is required", http.StatusBadRequest))
		return
	}

	var req clientRequest
	if err := decodeJSONBody(r, maxClientBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	client, err := h.clients.UpdateClient(ctx, upsertCommandFromRequest(clientID, req))
	if err != nil {
		writeClientError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, clientResponse{Client: buildClientPayload(client)})
}

func (h *ClientHandlers) getClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.clients == nil {
		httpx.WriteError(ctx, w, httpx.NewError("client_unavailable", "client service unavailable", http.StatusServiceUnavailable))
		return
	}

	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	client, err := h.clients.GetClient(ctx, clientID)
	if err != nil {
		writeClientError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, clientResponse{Client: buildClientPayload(client)})
}

func (h *ClientHandlers) searchClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.clients == nil {
		httpx.WriteError(ctx, w, httpx.NewError("client_unavailable", "client service unavailable", http.StatusServiceUnavailable))
		return
	}

	query := r.URL.Query()
	results, err := h.clients.SearchClients(ctx, services.ClientSearchQuery{
		Phone:    strings.TrimSpace(query.Get("phone")),
		LastName: strings.TrimSpace(query.Get("last_name")),
	})
	if err != nil {
		writeClientError(ctx, w, err)
		return
	}

	items := make([]clientPayload, 0, len(results))
	for _, client := range results {
		items = append(items, buildClientPayload(client))
	}
	writeJSONResponse(w, http.StatusOK, clientListResponse{Items: items})
}

func upsertCommandFromRequest(clientID string, req clientRequest) services.UpsertClientCommand {
	return services.UpsertClientCommand{
		ClientID:  clientID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Source:    req.Source,
		Notes:     req.Notes,
	}
}

func buildClientPayload(client services.Client) clientPayload {
	return clientPayload{
		ID:        client.ID,
		FirstName: client.FirstName,
		LastName:  client.LastName,
		Phone:     client.Phone,
		Email:     client.Email,
		Address:   client.Address,
		Source:    client.Source,
		Notes:     client.Notes,
		CreatedAt: formatTime(client.CreatedAt),
		UpdatedAt: formatTime(client.UpdatedAt),
	}
}

func writeClientError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrClientInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrClientNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("client_not_found", "client not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("client_unavailable", "failed to process client request", http.StatusServiceUnavailable))
	}
}
