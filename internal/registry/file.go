package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStorage keeps the registry as a single JSON document. Loads and
// rewrites the whole file per operation, which is fine at this tool's
// volume.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (fs *FileStorage) load() (map[string]*Loan, error) {
	loans := make(map[string]*Loan)
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return loans, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if len(data) == 0 {
		return loans, nil
	}
	if err := json.Unmarshal(data, &loans); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return loans, nil
}

func (fs *FileStorage) save(loans map[string]*Loan) error {
	data, err := json.MarshalIndent(loans, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0o644)
}

func (fs *FileStorage) Add(l *Loan) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	loans, err := fs.load()
	if err != nil {
		return err
	}
	loans[l.ID] = l
	return fs.save(loans)
}

func (fs *FileStorage) Get(id string) (*Loan, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	loans, err := fs.load()
	if err != nil {
		return nil, err
	}
	l, ok := loans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (fs *FileStorage) List() ([]*Loan, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	loans, err := fs.load()
	if err != nil {
		return nil, err
	}
	list := make([]*Loan, 0, len(loans))
	for _, l := range loans {
		list = append(list, l)
	}
	sortLoans(list)
	return list, nil
}

func (fs *FileStorage) MarkReturned(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	loans, err := fs.load()
	if err != nil {
		return err
	}
	l, ok := loans[id]
	if !ok {
		return ErrNotFound
	}
	l.Returned = true
	return fs.save(loans)
}

func (fs *FileStorage) Close() error { return nil }
