package session

import (
	"context"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// Redisが無いとき用。プロセス内だけで保持する
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]model.CartState
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: map[string]model.CartState{}}
}

func (s *MemoryCartStore) Load(ctx context.Context, sessionID string) (model.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.carts[sessionID]), nil
}

func (s *MemoryCartStore) Update(ctx context.Context, sessionID string, fn func(model.CartState) (model.CartState, error)) (model.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(clone(s.carts[sessionID]))
	if err != nil {
		return model.CartState{}, err
	}
	s.carts[sessionID] = clone(next)
	return next, nil
}

func (s *MemoryCartStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func clone(s model.CartState) model.CartState {
	if s.Lines == nil {
		return model.CartState{}
	}
	return model.CartState{Lines: append([]model.CartLine(nil), s.Lines...)}
}

var _ repo.CartStore = (*MemoryCartStore)(nil)
