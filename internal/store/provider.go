package store

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrStoreNotFound = errors.New("store not found")
)

// Provider resolves the store serving a workspace. A single-database
// deployment uses DefaultProvider; multi-workspace setups register one
// store per workspace id.
type Provider interface {
	Provide(workspaceID uuid.UUID) (Store, error)
}

type WorkspaceStoreProvider struct {
	stores map[string]Store
}

func NewWorkspaceStoreProvider() *WorkspaceStoreProvider {
	return &WorkspaceStoreProvider{
		stores: make(map[string]Store),
	}
}

func (p *WorkspaceStoreProvider) Register(workspaceID uuid.UUID, store Store) {
	p.stores[workspaceID.String()] = store
}

func (p *WorkspaceStoreProvider) Provide(workspaceID uuid.UUID) (Store, error) {
	if store, ok := p.stores[workspaceID.String()]; ok {
		return store, nil
	}

	return nil, ErrStoreNotFound
}

type DefaultProvider struct {
	store Store
}

func NewDefaultProvider(store Store) *DefaultProvider {
	return &DefaultProvider{store: store}
}

func (p *DefaultProvider) Provide(workspaceID uuid.UUID) (Store, error) {
	return p.store, nil
}
