package repository

import (
	"context"
	"sync"

	"beleads_backend/internal/quota/domain"
	"beleads_backend/platform/apperr"

	"github.com/google/uuid"
)

// MemoryStore keeps accounts in process. A per-subscriber mutex serializes
// Update calls, standing in for the Postgres row lock.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]domain.Account
	locks    map[uuid.UUID]*sync.Mutex
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]domain.Account),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

var _ Store = (*MemoryStore)(nil)

// Put seeds or replaces an account.
func (s *MemoryStore) Put(acct domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acct.SubscriberID] = acct
}

func (s *MemoryStore) Get(_ context.Context, subscriberID uuid.UUID) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[subscriberID]
	if !ok {
		return domain.Account{}, apperr.NotFound("quota account not found")
	}
	return acct, nil
}

func (s *MemoryStore) Update(ctx context.Context, subscriberID uuid.UUID, init domain.Account, fn func(*domain.Account) error) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	rowLock := s.rowLock(subscriberID)
	rowLock.Lock()
	defer rowLock.Unlock()

	s.mu.Lock()
	acct, ok := s.accounts[subscriberID]
	s.mu.Unlock()
	if !ok {
		acct = init
		acct.SubscriberID = subscriberID
	}

	if err := fn(&acct); err != nil {
		return domain.Account{}, err
	}

	s.Put(acct)
	return acct, nil
}

func (s *MemoryStore) rowLock(subscriberID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[subscriberID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[subscriberID] = l
	}
	return l
}
