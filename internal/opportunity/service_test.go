package opportunity

import (
	"context"
	"strings"
	"testing"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

type mockStore struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Opportunity, error)
	createFn   func(ctx context.Context, opportunity *model.Opportunity) (*model.Opportunity, error)
	updateFn   func(ctx context.Context, id int64, changes map[string]any) (*model.Opportunity, error)
	deleteFn   func(ctx context.Context, id int64) error
	paginateFn func(ctx context.Context, page, pageSize int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.Opportunity], error)
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (*model.Opportunity, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.Opportunity{ID: id}, nil
}

func (m *mockStore) Create(ctx context.Context, opportunity *model.Opportunity) (*model.Opportunity, error) {
	if m.createFn != nil {
		return m.createFn(ctx, opportunity)
	}
	created := *opportunity
	created.ID = 1
	return &created, nil
}

func (m *mockStore) Update(ctx context.Context, id int64, changes map[string]any) (*model.Opportunity, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, changes)
	}
	return &model.Opportunity{ID: id}, nil
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockStore) Paginate(ctx context.Context, page, pageSize int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.Opportunity], error) {
	if m.paginateFn != nil {
		return m.paginateFn(ctx, page, pageSize, filter, opts)
	}
	return &repository.Page[model.Opportunity]{}, nil
}

type mockTypeStore struct {
	findAllFn func(ctx context.Context, opts repository.ListOptions) ([]*model.OpportunityType, error)
	createFn  func(ctx context.Context, opportunityType *model.OpportunityType) (*model.OpportunityType, error)
}

func (m *mockTypeStore) FindAll(ctx context.Context, opts repository.ListOptions) ([]*model.OpportunityType, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, opts)
	}
	return nil, nil
}

func (m *mockTypeStore) Create(ctx context.Context, opportunityType *model.OpportunityType) (*model.OpportunityType, error) {
	if m.createFn != nil {
		return m.createFn(ctx, opportunityType)
	}
	created := *opportunityType
	created.ID = 1
	return &created, nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(rawHTML string) string {
	return strings.ReplaceAll(rawHTML, "<script>", "")
}

func newTestService(store *mockStore, types *mockTypeStore) *Service {
	return NewService(store, types, passthroughSanitizer{})
}

func TestService_Create_Validation(t *testing.T) {
	service := newTestService(&mockStore{}, &mockTypeStore{})

	tests := []struct {
		name      string
		input     CreateInput
		wantField string
	}{
		{"タイトル空", CreateInput{TypeID: 1}, "title"},
		{"種別未指定", CreateInput{Title: "奨学金募集"}, "type_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), 7, tt.input)
			appErr, ok := model.AsAppError(err)
			if !ok {
				t.Fatalf("error = %v, want AppError", err)
			}
			if appErr.Kind != model.KindValidation || appErr.Field != tt.wantField {
				t.Errorf("got %+v, want %s validation error", appErr, tt.wantField)
			}
		})
	}
}

func TestService_Create_SanitizesAndSetsAuthor(t *testing.T) {
	var stored *model.Opportunity
	store := &mockStore{
		createFn: func(_ context.Context, opportunity *model.Opportunity) (*model.Opportunity, error) {
			stored = opportunity
			return opportunity, nil
		},
	}
	service := newTestService(store, &mockTypeStore{})

	_, err := service.Create(context.Background(), 7, CreateInput{
		Title:       "研究プロジェクト補助員募集",
		Description: "<p>週2日</p><script>x()</script>",
		TypeID:      2,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if stored.AuthorID != 7 {
		t.Errorf("AuthorID = %d, want 7", stored.AuthorID)
	}
	if strings.Contains(stored.Description, "<script>") {
		t.Error("Description was not sanitized")
	}
	if stored.PublishedAt.IsZero() {
		t.Error("PublishedAt was not defaulted")
	}
}

func TestService_List_FiltersByType(t *testing.T) {
	store := &mockStore{
		paginateFn: func(_ context.Context, _, _ int, filter repository.Filter, opts repository.ListOptions) (*repository.Page[model.Opportunity], error) {
			if filter["type_id"] != int64(3) {
				t.Errorf("filter = %v, want type_id=3", filter)
			}
			if opts.OrderBy != "published_at" || !opts.Desc {
				t.Errorf("opts = %+v, want published_at DESC", opts)
			}
			return &repository.Page[model.Opportunity]{}, nil
		},
	}
	service := newTestService(store, &mockTypeStore{})

	if _, err := service.List(context.Background(), 1, 20, 3); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestService_List_NoTypeFilter(t *testing.T) {
	store := &mockStore{
		paginateFn: func(_ context.Context, _, _ int, filter repository.Filter, _ repository.ListOptions) (*repository.Page[model.Opportunity], error) {
			if filter != nil {
				t.Errorf("filter = %v, want nil", filter)
			}
			return &repository.Page[model.Opportunity]{}, nil
		},
	}
	service := newTestService(store, &mockTypeStore{})

	if _, err := service.List(context.Background(), 1, 20, 0); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

func TestService_CreateType_TrimsAndValidates(t *testing.T) {
	var storedName string
	types := &mockTypeStore{
		createFn: func(_ context.Context, opportunityType *model.OpportunityType) (*model.OpportunityType, error) {
			storedName = opportunityType.Name
			return opportunityType, nil
		},
	}
	service := newTestService(&mockStore{}, types)

	if _, err := service.CreateType(context.Background(), " 奨学金 "); err != nil {
		t.Fatalf("CreateType() error = %v", err)
	}
	if storedName != "奨学金" {
		t.Errorf("stored name = %q, want trimmed", storedName)
	}

	if _, err := service.CreateType(context.Background(), ""); err == nil {
		t.Error("CreateType with empty name should fail")
	}
}
