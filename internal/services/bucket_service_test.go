package services

import (
	"context"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-purchase-insights/internal/domain"
	"github.com/tbourn/go-purchase-insights/internal/repo"
)

// repoFns adapts the repo package's free functions to the BucketRepo
// interface, mirroring the shim used by the HTTP router.
type repoFns struct{}

func (repoFns) ListBucketItems(ctx context.Context, db *gorm.DB, userID string) ([]domain.BucketItem, error) {
	return repo.ListBucketItems(ctx, db, userID)
}

func (repoFns) GetBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error) {
	return repo.GetBucketItem(ctx, db, userID, itemName)
}

func (repoFns) CreateBucketItem(ctx context.Context, db *gorm.DB, userID, itemName, category, source string) (*domain.BucketItem, error) {
	return repo.CreateBucketItem(ctx, db, userID, itemName, category, source)
}

func (repoFns) DeleteBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) error {
	return repo.DeleteBucketItem(ctx, db, userID, itemName)
}

func (repoFns) ToggleBucketItemChecked(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error) {
	return repo.ToggleBucketItemChecked(ctx, db, userID, itemName)
}

func (repoFns) BucketStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error) {
	return repo.BucketStats(ctx, db, userID)
}

func newBucketService(t *testing.T) *BucketService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:bucketsvc?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.BucketItem{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	db.Exec("DELETE FROM bucket_items")
	return NewBucketService(db, repoFns{})
}

func TestBucketService_AddIsIdempotent(t *testing.T) {
	s := newBucketService(t)
	ctx := context.Background()

	first, created, err := s.Add(ctx, "u1", "Milk", "Groceries", domain.SourceUser)
	if err != nil || !created {
		t.Fatalf("first add: created=%v err=%v", created, err)
	}

	second, created, err := s.Add(ctx, "u1", "Milk", "Groceries", domain.SourceUser)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if created {
		t.Errorf("second add reported created=true; want no-op")
	}
	if second.ID != first.ID {
		t.Errorf("second add returned a different entry: %q vs %q", second.ID, first.ID)
	}

	items, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d; want exactly 1 entry after double add", len(items))
	}
}

func TestBucketService_AddValidation(t *testing.T) {
	s := newBucketService(t)
	ctx := context.Background()

	if _, _, err := s.Add(ctx, "u1", "", "Groceries", domain.SourceUser); err != ErrEmptyItemName {
		t.Errorf("empty item: err = %v; want ErrEmptyItemName", err)
	}
	if _, _, err := s.Add(ctx, "u1", "Milk", "Groceries", "ai"); err != ErrInvalidSource {
		t.Errorf("bad source: err = %v; want ErrInvalidSource", err)
	}
	// Blank source defaults to user-added.
	it, _, err := s.Add(ctx, "u1", "Milk", "Groceries", "")
	if err != nil {
		t.Fatalf("blank source add: %v", err)
	}
	if it.Source != domain.SourceUser {
		t.Errorf("source = %q; want %q", it.Source, domain.SourceUser)
	}
}

func TestBucketService_RemoveMissing(t *testing.T) {
	s := newBucketService(t)
	if err := s.Remove(context.Background(), "u1", "Nope"); err != ErrBucketItemNotFound {
		t.Fatalf("err = %v; want ErrBucketItemNotFound", err)
	}
}

func TestBucketService_RemoveThenReAdd(t *testing.T) {
	s := newBucketService(t)
	ctx := context.Background()

	if _, _, err := s.Add(ctx, "u1", "Milk", "Groceries", domain.SourceRecommended); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove(ctx, "u1", "Milk"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, created, err := s.Add(ctx, "u1", "Milk", "Groceries", domain.SourceUser); err != nil || !created {
		t.Fatalf("re-add: created=%v err=%v; want true, nil", created, err)
	}
}

func TestBucketService_Toggle(t *testing.T) {
	s := newBucketService(t)
	ctx := context.Background()

	if _, _, err := s.Add(ctx, "u1", "Milk", "Groceries", domain.SourceUser); err != nil {
		t.Fatalf("add: %v", err)
	}

	it, err := s.Toggle(ctx, "u1", "Milk")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !it.Checked {
		t.Errorf("checked = false; want true")
	}

	if _, err := s.Toggle(ctx, "u1", "Nope"); err != ErrBucketItemNotFound {
		t.Errorf("toggle missing: err = %v; want ErrBucketItemNotFound", err)
	}
}

func TestBucketService_ListUnknownUserEmpty(t *testing.T) {
	s := newBucketService(t)
	items, err := s.List(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("items = %v; want empty non-nil slice", items)
	}
}

func TestBucketService_ConcurrentAddsSingleEntry(t *testing.T) {
	s := newBucketService(t)
	ctx := context.Background()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, _, err := s.Add(ctx, "u1", "Milk", "Groceries", domain.SourceUser)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent add: %v", err)
		}
	}

	items, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d; want 1 after concurrent adds", len(items))
	}
}
