package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	pfirestore "github.com/aksi-clean/api/internal/platform/firestore"
	"github.com/aksi-clean/api/internal/repositories"
)

// Registry bundles every Firestore-backed repository behind the
// repositories.Registry contract and owns the shared provider lifecycle.
type Registry struct {
	provider *pfirestore.Provider

	catalog   *CatalogRepository
	clients   *ClientRepository
	operators *OperatorRepository
	branches  *BranchRepository
	orders    *OrderRepository
	counters  *CounterRepository
	health    repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry builds all repositories against the shared Firestore provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	catalog, err := NewCatalogRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("build catalog repository: %w", err)
	}
	clients, err := NewClientRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("build client repository: %w", err)
	}
	operators, err := NewOperatorRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("build operator repository: %w", err)
	}
	branches, err := NewBranchRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("build branch repository: %w", err)
	}
	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("build order repository: %w", err)
	}
	counters, err := NewCounterRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("build counter repository: %w", err)
	}

	health, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{
			Name:    "firestore",
			Timeout: 2 * time.Second,
			Check: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build health repository: %w", err)
	}

	return &Registry{
		provider:  provider,
		catalog:   catalog,
		clients:   clients,
		operators: operators,
		branches:  branches,
		orders:    orders,
		counters:  counters,
		health:    health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Catalog() repositories.CatalogRepository    { return r.catalog }
func (r *Registry) Clients() repositories.ClientRepository     { return r.clients }
func (r *Registry) Operators() repositories.OperatorRepository { return r.operators }
func (r *Registry) Branches() repositories.BranchRepository    { return r.branches }
func (r *Registry) Orders() repositories.OrderRepository       { return r.orders }
func (r *Registry) Counters() repositories.CounterRepository   { return r.counters }
func (r *Registry) Health() repositories.HealthRepository      { return r.health }
