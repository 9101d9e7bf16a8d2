// Package services – BucketService
//
// BucketService manages the persisted, user-editable bucket list overlay.
// Every mutation is idempotent at the API level: re-adding an existing item
// returns the existing entry, and remove/toggle on a missing entry surface
// ErrBucketItemNotFound for the handler to map. Mutations on the same user
// are serialized through a per-user mutex so concurrent add/remove/toggle
// requests cannot lose updates; reads go straight to the database.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-purchase-insights/internal/domain"
	"github.com/tbourn/go-purchase-insights/internal/repo"
)

// BucketRepo defines the repository contract required by BucketService.
type BucketRepo interface {
	ListBucketItems(ctx context.Context, db *gorm.DB, userID string) ([]domain.BucketItem, error)
	GetBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error)
	CreateBucketItem(ctx context.Context, db *gorm.DB, userID, itemName, category, source string) (*domain.BucketItem, error)
	DeleteBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) error
	ToggleBucketItemChecked(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error)
	BucketStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error)
}

// BucketService provides bucket list reads and serialized mutations.
type BucketService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the bucket repository used by this service.
	Repo BucketRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBucketService constructs a BucketService over db and r.
func NewBucketService(db *gorm.DB, r BucketRepo) *BucketService {
	return &BucketService{DB: db, Repo: r, locks: make(map[string]*sync.Mutex)}
}

// userLock returns the mutex serializing mutations for userID.
func (s *BucketService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// List returns the user's bucket list ordered by when entries were added.
// An unknown user yields an empty list, never an error.
func (s *BucketService) List(ctx context.Context, userID string) ([]domain.BucketItem, error) {
	items, err := s.Repo.ListBucketItems(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.BucketItem{}
	}
	return items, nil
}

// Stats returns the entry count and latest update time for the user's list,
// used by the HTTP layer for ETag generation.
func (s *BucketService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return s.Repo.BucketStats(ctx, s.DB, userID)
}

// Add puts itemName on the user's bucket list. Adding an item that is
// already present is a no-op returning the existing entry with created =
// false.
func (s *BucketService) Add(ctx context.Context, userID, itemName, category, source string) (*domain.BucketItem, bool, error) {
	if itemName == "" {
		return nil, false, ErrEmptyItemName
	}
	if source == "" {
		source = domain.SourceUser
	}
	if !domain.ValidSource(source) {
		return nil, false, ErrInvalidSource
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	existing, err := s.Repo.GetBucketItem(ctx, s.DB, userID, itemName)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, repo.ErrNotFound):
		return nil, false, err
	}

	created, err := s.Repo.CreateBucketItem(ctx, s.DB, userID, itemName, category, source)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Remove deletes itemName from the user's bucket list. A missing entry is
// reported as ErrBucketItemNotFound.
func (s *BucketService) Remove(ctx context.Context, userID, itemName string) error {
	if itemName == "" {
		return ErrEmptyItemName
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	err := s.Repo.DeleteBucketItem(ctx, s.DB, userID, itemName)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrBucketItemNotFound
	}
	return err
}

// Toggle flips the checked flag of itemName. A missing entry is reported as
// ErrBucketItemNotFound.
func (s *BucketService) Toggle(ctx context.Context, userID, itemName string) (*domain.BucketItem, error) {
	if itemName == "" {
		return nil, ErrEmptyItemName
	}

	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	it, err := s.Repo.ToggleBucketItemChecked(ctx, s.DB, userID, itemName)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrBucketItemNotFound
	}
	return it, err
}
