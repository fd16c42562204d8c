package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/repositories"
)

type stubClientRepository struct {
	mu      sync.Mutex
	clients map[string]domain.Client
	nextID  int
	err     error
}

func newStubClientRepository() *stubClientRepository {
	return &stubClientRepository{clients: map[string]domain.Client{}}
}

func (s *stubClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Client{}, s.err
	}
	s.nextID++
	client.ID = "client-" + strconv.Itoa(s.nextID)
	s.clients[client.ID] = client
	return client, nil
}

func (s *stubClientRepository) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Client{}, s.err
	}
	existing, ok := s.clients[client.ID]
	if !ok {
		return domain.Client{}, fmt.Errorf("%w: client %s", repositories.ErrNotFound, client.ID)
	}
	client.CreatedAt = existing.CreatedAt
	s.clients[client.ID] = client
	return client, nil
}

func (s *stubClientRepository) FindByID(ctx context.Context, clientID string) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Client{}, s.err
	}
	client, ok := s.clients[clientID]
	if !ok {
		return domain.Client{}, fmt.Errorf("%w: client %s", repositories.ErrNotFound, clientID)
	}
	return client, nil
}

func (s *stubClientRepository) Search(ctx context.Context, query repositories.ClientSearchQuery) ([]domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var matches []domain.Client
	for _, client := range s.clients {
		if query.Phone != "" && client.Phone != query.Phone {
			continue
		}
		if query.LastName != "" && client.LastName != query.LastName {
			continue
		}
		matches = append(matches, client)
	}
	return matches, nil
}

func newClientFixture(t *testing.T, repo *stubClientRepository) ClientService {
	t.Helper()
	svc, err := NewClientService(ClientServiceDeps{
		Repository: repo,
		Clock:      func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewClientService: %v", err)
	}
	return svc
}

func TestClientServiceCreateAndGet(t *testing.T) {
	repo := newStubClientRepository()
	svc := newClientFixture(t, repo)

	created, err := svc.CreateClient(context.Background(), UpsertClientCommand{
		FirstName: "  Олена ",
		LastName:  "Шевченко",
		Phone:     "+380501234567",
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if created.FirstName != "Олена" {
		t.Fatalf("expected trimmed first name, got %q", created.FirstName)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected timestamps set from clock, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.GetClient(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.Phone != "+380501234567" {
		t.Fatalf("unexpected phone %q", got.Phone)
	}
}

func TestClientServiceValidation(t *testing.T) {
	svc := newClientFixture(t, newStubClientRepository())

	cases := []UpsertClientCommand{
		{LastName: "Шевченко", Phone: "+380501234567"},
		{FirstName: "Олена", Phone: "+380501234567"},
		{FirstName: "Олена", LastName: "Шевченко", Phone: "abc"},
		{FirstName: "Олена", LastName: "Шевченко", Phone: "123"},
	}
	for i, cmd := range cases {
		if _, err := svc.CreateClient(context.Background(), cmd); !errors.Is(err, ErrClientInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}

	if _, err := svc.UpdateClient(context.Background(), UpsertClientCommand{
		FirstName: "Олена", LastName: "Шевченко", Phone: "+380501234567",
	}); !errors.Is(err, ErrClientInvalidInput) {
		t.Fatalf("expected missing id to be invalid, got %v", err)
	}
}

func TestClientServiceUpdateMissingClient(t *testing.T) {
	svc := newClientFixture(t, newStubClientRepository())

	_, err := svc.UpdateClient(context.Background(), UpsertClientCommand{
		ClientID:  "client-404",
		FirstName: "Олена",
		LastName:  "Шевченко",
		Phone:     "+380501234567",
	})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientServiceSearch(t *testing.T) {
	repo := newStubClientRepository()
	svc := newClientFixture(t, repo)

	if _, err := svc.CreateClient(context.Background(), UpsertClientCommand{
		FirstName: "Олена", LastName: "Шевченко", Phone: "+380501234567",
	}); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	found, err := svc.SearchClients(context.Background(), ClientSearchQuery{Phone: "+380501234567"})
	if err != nil {
		t.Fatalf("SearchClients: %v", err)
	}
	if len(found) != 1 || found[0].LastName != "Шевченко" {
		t.Fatalf("unexpected search result %v", found)
	}

	if _, err := svc.SearchClients(context.Background(), ClientSearchQuery{}); !errors.Is(err, ErrClientInvalidInput) {
		t.Fatalf("expected empty query to be invalid, got %v", err)
	}

	repo.err = errors.New("firestore: deadline exceeded")
	if _, err := svc.SearchClients(context.Background(), ClientSearchQuery{Phone: "+380501234567"}); !errors.Is(err, ErrClientUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
