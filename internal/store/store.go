package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shakehouse/internal/model"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

const ordersFileName = "pedidos.json"

// OrderStore owns the persisted order collection: a single JSON array file.
// Every mutation is a read-entire-file, mutate-in-memory, write-entire-file
// cycle executed under one mutex, so concurrent writers cannot lose updates.
type OrderStore struct {
	mu   sync.Mutex
	path string
}

// New ensures the data directory and orders file exist and returns the store.
func New(dataDir string) (*OrderStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, ordersFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("init orders file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat orders file: %w", err)
	}

	return &OrderStore{path: path}, nil
}

// LoadAll returns the full persisted collection.
func (s *OrderStore) LoadAll() ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// AppendOne adds one order to the end of the collection and commits it.
func (s *OrderStore) AppendOne(pedido model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pedidos, err := s.readLocked()
	if err != nil {
		return err
	}
	return s.writeLocked(append(pedidos, pedido))
}

// UpdateStatus sets the status of the order with the given id and commits the
// collection. Returns the previous status and the updated record.
func (s *OrderStore) UpdateStatus(id string, newStatus model.Status) (model.Status, *model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pedidos, err := s.readLocked()
	if err != nil {
		return "", nil, err
	}

	for i := range pedidos {
		if pedidos[i].ID != id {
			continue
		}
		oldStatus := pedidos[i].Status
		pedidos[i].Status = newStatus
		if err := s.writeLocked(pedidos); err != nil {
			return "", nil, err
		}
		updated := pedidos[i]
		return oldStatus, &updated, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// Remove deletes the order with the given id, commits the collection and
// returns the removed record.
func (s *OrderStore) Remove(id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pedidos, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	for i := range pedidos {
		if pedidos[i].ID != id {
			continue
		}
		removed := pedidos[i]
		if err := s.writeLocked(append(pedidos[:i], pedidos[i+1:]...)); err != nil {
			return nil, err
		}
		return &removed, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

func (s *OrderStore) readLocked() ([]model.Order, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, s.path, err)
	}

	var pedidos []model.Order
	if err := json.Unmarshal(data, &pedidos); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return pedidos, nil
}

// writeLocked replaces the whole file via a temp file and rename, so a failed
// write leaves the last committed collection intact.
func (s *OrderStore) writeLocked(pedidos []model.Order) error {
	data, err := json.MarshalIndent(pedidos, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode orders: %v", ErrStorageUnavailable, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrStorageUnavailable, s.path, err)
	}
	return nil
}
