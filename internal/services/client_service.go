package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aksi-clean/api/internal/repositories"
)

var (
	// ErrClientInvalidInput indicates the intake data failed validation.
	ErrClientInvalidInput = errors.New("client: invalid input")
	// ErrClientNotFound indicates the requested client does not exist.
	ErrClientNotFound = errors.New("client: not found")
	// ErrClientUnavailable indicates the client directory backend failed.
	ErrClientUnavailable = errors.New("client: unavailable")

	clientPhonePattern = regexp.MustCompile(`^\+?[0-9()\-\s]{6,20}$`)
)

const clientNameMaxLength = 80

// ClientServiceDeps bundles dependencies for NewClientService.
type ClientServiceDeps struct {
	Repository repositories.ClientRepository
	Clock      func() time.Time
}

type clientService struct {
	repo  repositories.ClientRepository
	clock func() time.Time
}

// NewClientService wires a ClientService backed by the given repository.
func NewClientService(deps ClientServiceDeps) (ClientService, error) {
	if deps.Repository == nil {
		return nil, errors.New("client service requires repository")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &clientService{repo: deps.Repository, clock: clock}, nil
}

var _ ClientService = (*clientService)(nil)

func (s *clientService) CreateClient(ctx context.Context, cmd UpsertClientCommand) (Client, error) {
	client, err := clientFromCommand(cmd)
	if err != nil {
		return Client{}, err
	}
	now := s.clock().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return Client{}, translateClientError(err)
	}
	return created, nil
}

func (s *clientService) UpdateClient(ctx context.Context, cmd UpsertClientCommand) (Client, error) {
	if strings.TrimSpace(cmd.ClientID) == "" {
		return Client{}, fmt.Errorf("%w: client id is required", ErrClientInvalidInput)
	}
	client, err := clientFromCommand(cmd)
	if err != nil {
		return Client{}, err
	}
	client.ID = strings.TrimSpace(cmd.ClientID)
	client.UpdatedAt = s.clock().UTC()
	updated, err := s.repo.Update(ctx, client)
	if err != nil {
		return Client{}, translateClientError(err)
	}
	return updated, nil
}

func (s *clientService) GetClient(ctx context.Context, clientID string) (Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Client{}, fmt.Errorf("%w: client id is required", ErrClientInvalidInput)
	}
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return Client{}, translateClientError(err)
	}
	return client, nil
}

func (s *clientService) SearchClients(ctx context.Context, query ClientSearchQuery) ([]Client, error) {
	query.Phone = strings.TrimSpace(query.Phone)
	query.LastName = strings.TrimSpace(query.LastName)
	if query.Phone == "" && query.LastName == "" {
		return nil, fmt.Errorf("%w: phone or last name is required", ErrClientInvalidInput)
	}
	clients, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, translateClientError(err)
	}
	return clients, nil
}

func clientFromCommand(cmd UpsertClientCommand) (Client, error) {
	firstName := strings.TrimSpace(cmd.FirstName)
	lastName := strings.TrimSpace(cmd.LastName)
	phone := strings.TrimSpace(cmd.Phone)
	switch {
	case firstName == "" || lastName == "":
		return Client{}, fmt.Errorf("%w: first and last name are required", ErrClientInvalidInput)
	case utf8.RuneCountInString(firstName) > clientNameMaxLength || utf8.RuneCountInString(lastName) > clientNameMaxLength:
		return Client{}, fmt.Errorf("%w: name exceeds %d characters", ErrClientInvalidInput, clientNameMaxLength)
	case !clientPhonePattern.MatchString(phone):
		return Client{}, fmt.Errorf("%w: phone %q is malformed", ErrClientInvalidInput, phone)
	}
	return Client{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Email:     strings.TrimSpace(cmd.Email),
		Address:   strings.TrimSpace(cmd.Address),
		Source:    strings.TrimSpace(cmd.Source),
		Notes:     strings.TrimSpace(cmd.Notes),
	}, nil
}

func translateClientError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrClientNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrClientUnavailable, err)
}
