package registry

import "sync"

// MemoryStorage is an in-memory registry, used in tests.
type MemoryStorage struct {
	loans map[string]*Loan
	mu    sync.Mutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{loans: make(map[string]*Loan)}
}

func (ms *MemoryStorage) Add(l *Loan) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.loans[l.ID] = l
	return nil
}

func (ms *MemoryStorage) Get(id string) (*Loan, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	l, ok := ms.loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (ms *MemoryStorage) List() ([]*Loan, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	list := make([]*Loan, 0, len(ms.loans))
	for _, l := range ms.loans {
		list = append(list, l)
	}
	sortLoans(list)
	return list, nil
}

func (ms *MemoryStorage) MarkReturned(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	l, ok := ms.loans[id]
	if !ok {
		return ErrNotFound
	}
	l.Returned = true
	return nil
}

func (ms *MemoryStorage) Close() error { return nil }
