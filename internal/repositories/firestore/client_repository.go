package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/aksi-clean/api/internal/domain"
	pfirestore "github.com/aksi-clean/api/internal/platform/firestore"
	"github.com/aksi-clean/api/internal/repositories"
)

const clientsCollection = "clients"

type clientDocument struct {
	FirstName string    `firestore:"firstName"`
	LastName  string    `firestore:"lastName"`
	Phone     string    `firestore:"phone"`
	Email     string    `firestore:"email,omitempty"`
	Address   string    `firestore:"address,omitempty"`
	Source    string    `firestore:"source,omitempty"`
	Notes     string    `firestore:"notes,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// ClientRepository persists clients in Firestore.
type ClientRepository struct {
	base *pfirestore.BaseRepository[clientDocument]
}

// NewClientRepository constructs a Firestore-backed client repository.
func NewClientRepository(provider *pfirestore.Provider) (*ClientRepository, error) {
	if provider == nil {
		return nil, errors.New("client repository requires firestore provider")
	}
	return &ClientRepository{
		base: pfirestore.NewBaseRepository[clientDocument](provider, clientsCollection, nil, nil),
	}, nil
}

// Create stores a new client under a generated id.
func (r *ClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	now := time.Now().UTC()
	id := client.ID
	if strings.TrimSpace(id) == "" {
		id = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	}
	doc := fromDomainClient(client, now)
	doc.CreatedAt = now
	if _, err := r.base.Set(ctx, id, doc); err != nil {
		return domain.Client{}, err
	}
	saved := toDomainClient(id, doc)
	return saved, nil
}

// Update overwrites an existing client, keeping its creation timestamp.
func (r *ClientRepository) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	if strings.TrimSpace(client.ID) == "" {
		return domain.Client{}, errors.New("client repository: client id is required")
	}
	existing, err := r.base.Get(ctx, client.ID)
	if err != nil {
		return domain.Client{}, translateClientError(client.ID, err)
	}
	now := time.Now().UTC()
	doc := fromDomainClient(client, now)
	doc.CreatedAt = existing.Data.CreatedAt
	if _, err := r.base.Set(ctx, client.ID, doc); err != nil {
		return domain.Client{}, err
	}
	return toDomainClient(client.ID, doc), nil
}

// FindByID loads one client by document id.
func (r *ClientRepository) FindByID(ctx context.Context, clientID string) (domain.Client, error) {
	if strings.TrimSpace(clientID) == "" {
		return domain.Client{}, errors.New("client repository: client id is required")
	}
	doc, err := r.base.Get(ctx, clientID)
	if err != nil {
		return domain.Client{}, translateClientError(clientID, err)
	}
	return toDomainClient(doc.ID, doc.Data), nil
}

// Search filters clients by phone and/or last name. Empty query fields are
// ignored; at least one must be set.
func (r *ClientRepository) Search(ctx context.Context, query repositories.ClientSearchQuery) ([]domain.Client, error) {
	phone := strings.TrimSpace(query.Phone)
	lastName := strings.TrimSpace(query.LastName)
	if phone == "" && lastName == "" {
		return nil, errors.New("client repository: search requires phone or last name")
	}
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if phone != "" {
			q = q.Where("phone", "==", phone)
		}
		if lastName != "" {
			q = q.Where("lastName", "==", lastName)
		}
		return q.Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainClient(doc.ID, doc.Data))
	}
	return out, nil
}

func translateClientError(clientID string, err error) error {
	var ferr *pfirestore.Error
	if errors.As(err, &ferr) && ferr.IsNotFound() {
		return fmt.Errorf("%w: %s", repositories.ErrNotFound, clientID)
	}
	return err
}

func toDomainClient(id string, doc clientDocument) domain.Client {
	return domain.Client{
		ID:        id,
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Phone:     doc.Phone,
		Email:     doc.Email,
		Address:   doc.Address,
		Source:    doc.Source,
		Notes:     doc.Notes,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func fromDomainClient(client domain.Client, now time.Time) clientDocument {
	return clientDocument{
		FirstName: strings.TrimSpace(client.FirstName),
		LastName:  strings.TrimSpace(client.LastName),
		Phone:     strings.TrimSpace(client.Phone),
		Email:     strings.ToLower(strings.TrimSpace(client.Email)),
		Address:   strings.TrimSpace(client.Address),
		Source:    strings.TrimSpace(client.Source),
		Notes:     strings.TrimSpace(client.Notes),
		CreatedAt: client.CreatedAt,
		UpdatedAt: now,
	}
}
