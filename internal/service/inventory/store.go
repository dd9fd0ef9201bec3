package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/domain/models"
	"github.com/mamadbah2/cellar/internal/repository"
)

// StorageKey is the key holding the serialized collection.
const StorageKey = "wineCellar"

var (
	// ErrWineNotFound indicates no record carries the requested id.
	ErrWineNotFound = errors.New("wine not found")

	// ErrPersistenceRead marks a stored collection that could not be read or decoded.
	ErrPersistenceRead = errors.New("persistence read failed")

	// ErrPersistenceWrite marks a collection that could not be written back.
	ErrPersistenceWrite = errors.New("persistence write failed")
)

// AddResult describes how Add committed a record.
type AddResult struct {
	Wine   models.Wine
	Merged bool
}

// StockChange describes the outcome of a stock adjustment.
type StockChange struct {
	Wine    models.Wine
	Removed bool
}

// Store owns the cellar collection. Every mutation writes the full collection
// back to the key-value store; write failures are logged and the in-memory
// collection stays authoritative for the session.
type Store struct {
	mu     sync.Mutex
	kv     repository.KeyValue
	key    string
	wines  []models.Wine
	logger *zap.Logger
}

// NewStore wires a store on top of kv. Call Load before serving requests.
func NewStore(kv repository.KeyValue, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, key: StorageKey, logger: logger}
}

// Load reads the persisted collection. Unreadable or corrupt data is logged,
// cleared from storage, and replaced by an empty collection.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wines = nil

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("failed to load cellar", zap.Error(fmt.Errorf("%w: %v", ErrPersistenceRead, err)))
		return
	}
	if !ok {
		s.logger.Info("no stored cellar, starting empty")
		return
	}

	var wines []models.Wine
	if err := json.Unmarshal([]byte(raw), &wines); err != nil {
		s.logger.Error("stored cellar is corrupt, discarding it", zap.Error(fmt.Errorf("%w: %v", ErrPersistenceRead, err)))
		if err := s.kv.Delete(ctx, s.key); err != nil {
			s.logger.Error("failed to clear corrupt cellar", zap.Error(err))
		}
		return
	}

	s.wines = normalize(wines)
	s.logger.Info("cellar loaded", zap.Int("labels", len(s.wines)))
}

// Wines returns a copy of the collection in stored order.
func (s *Store) Wines() []models.Wine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Wine(nil), s.wines...)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Wine{}, ErrWineNotFound
	}
	return s.wines[idx], nil
}

// Add merges wine into an existing record with the same name and vintage, or
// prepends it as a new record.
func (s *Store) Add(ctx context.Context, wine models.Wine) AddResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wine.Stock < 0 {
		wine.Stock = 0
	}

	if idx := FindDuplicate(s.wines, wine); idx >= 0 {
		next := s.clone()
		next[idx] = mergeStock(next[idx], wine)
		s.commit(ctx, next)
		s.logger.Info("merged wine into existing record",
			zap.String("id", next[idx].ID),
			zap.Int("added", wine.Stock),
			zap.Int("stock", next[idx].Stock))
		return AddResult{Wine: next[idx], Merged: true}
	}

	if wine.ID == "" || s.indexOf(wine.ID) >= 0 {
		wine.ID = uuid.NewString()
	}

	next := make([]models.Wine, 0, len(s.wines)+1)
	next = append(next, wine)
	next = append(next, s.wines...)
	s.commit(ctx, next)
	s.logger.Info("wine added", zap.String("id", wine.ID), zap.Int("stock", wine.Stock))
	return AddResult{Wine: wine}
}

// Update replaces the record sharing wine's id.
func (s *Store) Update(ctx context.Context, wine models.Wine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, wine)
}

func (s *Store) update(ctx context.Context, wine models.Wine) error {
	idx := s.indexOf(wine.ID)
	if idx < 0 {
		return ErrWineNotFound
	}
	if wine.Stock < 0 {
		wine.Stock = 0
	}
	next := s.clone()
	next[idx] = wine
	s.commit(ctx, next)
	return nil
}

// Remove deletes the record with the given id. Callers are expected to have
// confirmed the deletion with the user already.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrWineNotFound
	}
	next := make([]models.Wine, 0, len(s.wines)-1)
	next = append(next, s.wines[:idx]...)
	next = append(next, s.wines[idx+1:]...)
	s.commit(ctx, next)
	s.logger.Info("wine removed", zap.String("id", id))
	return nil
}

// IncrementStock adds one bottle.
func (s *Store) IncrementStock(ctx context.Context, id string) (models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Wine{}, ErrWineNotFound
	}
	wine := s.wines[idx]
	wine.Stock++
	if err := s.update(ctx, wine); err != nil {
		return models.Wine{}, err
	}
	return wine, nil
}

// DecrementStock removes one bottle. Taking the last bottle deletes the record.
func (s *Store) DecrementStock(ctx context.Context, id string) (StockChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return StockChange{}, ErrWineNotFound
	}
	wine := s.wines[idx]
	if wine.Stock <= 1 {
		if err := s.remove(ctx, id); err != nil {
			return StockChange{}, err
		}
		wine.Stock = 0
		return StockChange{Wine: wine, Removed: true}, nil
	}

	wine.Stock--
	if err := s.update(ctx, wine); err != nil {
		return StockChange{}, err
	}
	return StockChange{Wine: wine}, nil
}

// SetAcquisitionPrice stores the user's purchase price as entered.
func (s *Store) SetAcquisitionPrice(ctx context.Context, id, price string) (models.Wine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Wine{}, ErrWineNotFound
	}
	wine := s.wines[idx]
	wine.AcquisitionPrice = price
	if err := s.update(ctx, wine); err != nil {
		return models.Wine{}, err
	}
	return wine, nil
}

// ReplaceAll swaps the whole collection, e.g. when restoring a backup.
func (s *Store) ReplaceAll(ctx context.Context, wines []models.Wine) []models.Wine {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := normalize(append([]models.Wine(nil), wines...))
	s.commit(ctx, next)
	s.logger.Info("cellar replaced", zap.Int("labels", len(next)))
	return append([]models.Wine(nil), next...)
}

// commit installs next as the collection and persists it.
func (s *Store) commit(ctx context.Context, next []models.Wine) {
	s.wines = next

	payload, err := json.Marshal(next)
	if err != nil {
		s.logger.Error("failed to encode cellar", zap.Error(fmt.Errorf("%w: %v", ErrPersistenceWrite, err)))
		return
	}
	if err := s.kv.Set(ctx, s.key, string(payload)); err != nil {
		s.logger.Error("failed to save cellar", zap.Error(fmt.Errorf("%w: %v", ErrPersistenceWrite, err)))
	}
}

func (s *Store) clone() []models.Wine {
	return append([]models.Wine(nil), s.wines...)
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.wines {
		if s.wines[i].ID == id {
			return i
		}
	}
	return -1
}

// normalize enforces the collection invariants on data coming from outside:
// every record has a unique id and a non-negative stock.
func normalize(wines []models.Wine) []models.Wine {
	seen := make(map[string]struct{}, len(wines))
	for i := range wines {
		if _, dup := seen[wines[i].ID]; wines[i].ID == "" || dup {
			wines[i].ID = uuid.NewString()
		}
		seen[wines[i].ID] = struct{}{}
		if wines[i].Stock < 0 {
			wines[i].Stock = 0
		}
	}
	return wines
}
