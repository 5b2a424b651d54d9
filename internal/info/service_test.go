package info

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

type mockStore struct {
	findAllFn   func(ctx context.Context, opts repository.ListOptions) ([]*model.InfoEntry, error)
	findByKeyFn func(ctx context.Context, key string) (*model.InfoEntry, error)
	createFn    func(ctx context.Context, entry *model.InfoEntry) (*model.InfoEntry, error)
	updateFn    func(ctx context.Context, id int64, changes map[string]any) (*model.InfoEntry, error)
	deleteFn    func(ctx context.Context, id int64) error
}

func (m *mockStore) FindAll(ctx context.Context, opts repository.ListOptions) ([]*model.InfoEntry, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, opts)
	}
	return nil, nil
}

func (m *mockStore) FindByKey(ctx context.Context, key string) (*model.InfoEntry, error) {
	if m.findByKeyFn != nil {
		return m.findByKeyFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Create(ctx context.Context, entry *model.InfoEntry) (*model.InfoEntry, error) {
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	created := *entry
	created.ID = 1
	return &created, nil
}

func (m *mockStore) Update(ctx context.Context, id int64, changes map[string]any) (*model.InfoEntry, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, changes)
	}
	return &model.InfoEntry{ID: id}, nil
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func TestService_List_OrdersByKey(t *testing.T) {
	store := &mockStore{
		findAllFn: func(_ context.Context, opts repository.ListOptions) ([]*model.InfoEntry, error) {
			if opts.OrderBy != "key" || opts.Desc {
				t.Errorf("opts = %+v, want key ASC", opts)
			}
			return []*model.InfoEntry{{ID: 1, Key: "contact"}}, nil
		},
	}
	service := NewService(store)

	entries, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "contact" {
		t.Errorf("entries = %v", entries)
	}
}

func TestService_GetByKey_TrimsKey(t *testing.T) {
	var askedKey string
	store := &mockStore{
		findByKeyFn: func(_ context.Context, key string) (*model.InfoEntry, error) {
			askedKey = key
			return &model.InfoEntry{ID: 3, Key: key}, nil
		},
	}
	service := NewService(store)

	got, err := service.GetByKey(context.Background(), "  contact  ")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if askedKey != "contact" {
		t.Errorf("asked key = %q, want trimmed", askedKey)
	}
	if got.ID != 3 {
		t.Errorf("ID = %d, want 3", got.ID)
	}
}

func TestService_GetByKey_MissingReturnsNotFound(t *testing.T) {
	service := NewService(&mockStore{})

	_, err := service.GetByKey(context.Background(), "missing")
	appErr, ok := model.AsAppError(err)
	if !ok {
		t.Fatalf("error = %v, want AppError", err)
	}
	if appErr.Kind != model.KindNotFound {
		t.Errorf("Kind = %q, want %q", appErr.Kind, model.KindNotFound)
	}
}

func TestService_GetByKey_EmptyKeyRejected(t *testing.T) {
	store := &mockStore{
		findByKeyFn: func(context.Context, string) (*model.InfoEntry, error) {
			t.Fatal("FindByKey should not be called for empty key")
			return nil, nil
		},
	}
	service := NewService(store)

	_, err := service.GetByKey(context.Background(), "   ")
	appErr, ok := model.AsAppError(err)
	if !ok {
		t.Fatalf("error = %v, want AppError", err)
	}
	if appErr.Kind != model.KindValidation || appErr.Field != "key" {
		t.Errorf("got %+v, want key validation error", appErr)
	}
}

func TestService_Upsert_CreatesWhenKeyAbsent(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	var created *model.InfoEntry
	store := &mockStore{
		createFn: func(_ context.Context, entry *model.InfoEntry) (*model.InfoEntry, error) {
			created = entry
			stored := *entry
			stored.ID = 10
			return &stored, nil
		},
		updateFn: func(context.Context, int64, map[string]any) (*model.InfoEntry, error) {
			t.Fatal("Update should not be called when the key is new")
			return nil, nil
		},
	}
	service := NewService(store)
	service.now = func() time.Time { return now }

	got, err := service.Upsert(context.Background(), " contact ", UpsertInput{
		Title: "  お問い合わせ  ",
		Email: "info@example.edu",
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if got.ID != 10 {
		t.Errorf("ID = %d, want 10", got.ID)
	}
	if created.Key != "contact" {
		t.Errorf("stored key = %q, want trimmed", created.Key)
	}
	if created.Title != "お問い合わせ" {
		t.Errorf("stored title = %q, want trimmed", created.Title)
	}
	if !created.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", created.UpdatedAt, now)
	}
}

func TestService_Upsert_UpdatesWhenKeyExists(t *testing.T) {
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	var updatedID int64
	var changes map[string]any
	store := &mockStore{
		findByKeyFn: func(_ context.Context, key string) (*model.InfoEntry, error) {
			return &model.InfoEntry{ID: 7, Key: key, Title: "旧タイトル"}, nil
		},
		createFn: func(context.Context, *model.InfoEntry) (*model.InfoEntry, error) {
			t.Fatal("Create should not be called when the key exists")
			return nil, nil
		},
		updateFn: func(_ context.Context, id int64, ch map[string]any) (*model.InfoEntry, error) {
			updatedID = id
			changes = ch
			return &model.InfoEntry{ID: id, Key: "contact"}, nil
		},
	}
	service := NewService(store)
	service.now = func() time.Time { return now }

	_, err := service.Upsert(context.Background(), "contact", UpsertInput{Title: "新タイトル"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if updatedID != 7 {
		t.Errorf("updated ID = %d, want 7", updatedID)
	}
	if changes["title"] != "新タイトル" {
		t.Errorf("changes[title] = %v", changes["title"])
	}
	if got, ok := changes["updated_at"].(time.Time); !ok || !got.Equal(now) {
		t.Errorf("changes[updated_at] = %v, want %v", changes["updated_at"], now)
	}
}

func TestService_Upsert_EmptyKeyRejected(t *testing.T) {
	service := NewService(&mockStore{})

	_, err := service.Upsert(context.Background(), "  ", UpsertInput{Title: "x"})
	appErr, ok := model.AsAppError(err)
	if !ok {
		t.Fatalf("error = %v, want AppError", err)
	}
	if appErr.Kind != model.KindValidation || appErr.Field != "key" {
		t.Errorf("got %+v, want key validation error", appErr)
	}
}

func TestService_DeleteByKey(t *testing.T) {
	var deletedID int64
	store := &mockStore{
		findByKeyFn: func(_ context.Context, key string) (*model.InfoEntry, error) {
			return &model.InfoEntry{ID: 12, Key: key}, nil
		},
		deleteFn: func(_ context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}
	service := NewService(store)

	if err := service.DeleteByKey(context.Background(), "contact"); err != nil {
		t.Fatalf("DeleteByKey() error = %v", err)
	}
	if deletedID != 12 {
		t.Errorf("deleted ID = %d, want 12", deletedID)
	}
}

func TestService_DeleteByKey_MissingReturnsNotFound(t *testing.T) {
	store := &mockStore{
		deleteFn: func(context.Context, int64) error {
			t.Fatal("Delete should not be called for a missing key")
			return nil
		},
	}
	service := NewService(store)

	err := service.DeleteByKey(context.Background(), "missing")
	appErr, ok := model.AsAppError(err)
	if !ok {
		t.Fatalf("error = %v, want AppError", err)
	}
	if appErr.Kind != model.KindNotFound {
		t.Errorf("Kind = %q, want %q", appErr.Kind, model.KindNotFound)
	}
}
