package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/aksi-clean/api/internal/domain"
	pfirestore "github.com/aksi-clean/api/internal/platform/firestore"
	"github.com/aksi-clean/api/internal/repositories"
)

const operatorsCollection = "operators"

type operatorDocument struct {
	Login        string    `firestore:"login"`
	Name         string    `firestore:"name"`
	BranchID     string    `firestore:"branchId"`
	Roles        []string  `firestore:"roles"`
	PasswordHash string    `firestore:"passwordHash"`
	Active       bool      `firestore:"active"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// OperatorRepository reads staff accounts from Firestore.
type OperatorRepository struct {
	base *pfirestore.BaseRepository[operatorDocument]
}

// NewOperatorRepository constructs a Firestore-backed operator repository.
func NewOperatorRepository(provider *pfirestore.Provider) (*OperatorRepository, error) {
	if provider == nil {
		return nil, errors.New("operator repository requires firestore provider")
	}
	return &OperatorRepository{
		base: pfirestore.NewBaseRepository[operatorDocument](provider, operatorsCollection, nil, nil),
	}, nil
}

// FindByLogin resolves an operator by the login they type at sign-in.
// Logins are stored lowercase and must be unique.
func (r *OperatorRepository) FindByLogin(ctx context.Context, login string) (domain.Operator, error) {
	normalized := strings.ToLower(strings.TrimSpace(login))
	if normalized == "" {
		return domain.Operator{}, errors.New("operator repository: login is required")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("login", "==", normalized).Limit(1)
	})
	if err != nil {
		return domain.Operator{}, err
	}
	if len(docs) == 0 {
		return domain.Operator{}, fmt.Errorf("%w: %s", repositories.ErrNotFound, normalized)
	}
	return toDomainOperator(docs[0].ID, docs[0].Data), nil
}

// FindByID loads one operator by document id.
func (r *OperatorRepository) FindByID(ctx context.Context, operatorID string) (domain.Operator, error) {
	if strings.TrimSpace(operatorID) == "" {
		return domain.Operator{}, errors.New("operator repository: operator id is required")
	}
	doc, err := r.base.Get(ctx, operatorID)
	if err != nil {
		var ferr *pfirestore.Error
		if errors.As(err, &ferr) && ferr.IsNotFound() {
			return domain.Operator{}, fmt.Errorf("%w: %s", repositories.ErrNotFound, operatorID)
		}
		return domain.Operator{}, err
	}
	return toDomainOperator(doc.ID, doc.Data), nil
}

func toDomainOperator(id string, doc operatorDocument) domain.Operator {
	return domain.Operator{
		ID:           id,
		Login:        doc.Login,
		Name:         doc.Name,
		BranchID:     doc.BranchID,
		Roles:        append([]string(nil), doc.Roles...),
		PasswordHash: doc.PasswordHash,
		Active:       doc.Active,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
