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

const branchesCollection = "branches"

type branchDocument struct {
	Code      string             `firestore:"code"`
	Name      string             `firestore:"name"`
	Address   string             `firestore:"address,omitempty"`
	Phone     string             `firestore:"phone,omitempty"`
	Active    bool               `firestore:"active"`
	Schedule  []scheduleDocument `firestore:"schedule,omitempty"`
	CreatedAt time.Time          `firestore:"createdAt"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type scheduleDocument struct {
	Weekday int    `firestore:"weekday"`
	Open    string `firestore:"open,omitempty"`
	Close   string `firestore:"close,omitempty"`
	DayOff  bool   `firestore:"dayOff"`
}

// BranchRepository serves branch reference data from Firestore.
type BranchRepository struct {
	base *pfirestore.BaseRepository[branchDocument]
}

// NewBranchRepository constructs a Firestore-backed branch repository.
func NewBranchRepository(provider *pfirestore.Provider) (*BranchRepository, error) {
	if provider == nil {
		return nil, errors.New("branch repository requires firestore provider")
	}
	return &BranchRepository{
		base: pfirestore.NewBaseRepository[branchDocument](provider, branchesCollection, nil, nil),
	}, nil
}

// FindByID loads one branch by document id.
func (r *BranchRepository) FindByID(ctx context.Context, branchID string) (domain.Branch, error) {
	if strings.TrimSpace(branchID) == "" {
		return domain.Branch{}, errors.New("branch repository: branch id is required")
	}
	doc, err := r.base.Get(ctx, branchID)
	if err != nil {
		var ferr *pfirestore.Error
		if errors.As(err, &ferr) && ferr.IsNotFound() {
			return domain.Branch{}, fmt.Errorf("%w: %s", repositories.ErrNotFound, branchID)
		}
		return domain.Branch{}, err
	}
	return toDomainBranch(doc.ID, doc.Data), nil
}

// ListActive returns branches currently accepting orders.
func (r *BranchRepository) ListActive(ctx context.Context) ([]domain.Branch, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("active", "==", true).OrderBy("code", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Branch, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainBranch(doc.ID, doc.Data))
	}
	return out, nil
}

func toDomainBranch(id string, doc branchDocument) domain.Branch {
	branch := domain.Branch{
		ID:        id,
		Code:      doc.Code,
		Name:      doc.Name,
		Address:   doc.Address,
		Phone:     doc.Phone,
		Active:    doc.Active,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, day := range doc.Schedule {
		branch.Schedule = append(branch.Schedule, domain.WorkingHours{
			Weekday: time.Weekday(day.Weekday),
			Open:    day.Open,
			Close:   day.Close,
			DayOff:  day.DayOff,
		})
	}
	return branch
}
