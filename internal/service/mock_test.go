package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/mohamedamineameur/renderback/internal/apperror"
	"github.com/mohamedamineameur/renderback/internal/model"
	"github.com/mohamedamineameur/renderback/internal/validation"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockRecordRepo implements both repository.RecordRepository and
// repository.SeedRepository in memory. Setting err makes every call fail
// with a store error, to simulate the database going away.

type mockRecordRepo struct {
	kind    model.Kind
	records map[string]*model.Record
	order   []string
	nextID  int
	err     error

	batches int // number of CreateBatch calls
}

func newMockRepo(kind model.Kind) *mockRecordRepo {
	return &mockRecordRepo{
		kind:    kind,
		records: make(map[string]*model.Record),
	}
}

func (m *mockRecordRepo) storeErr() error {
	return apperror.StoreFailed(m.err)
}

func (m *mockRecordRepo) Create(_ context.Context, record *model.Record) error {
	if m.err != nil {
		return m.storeErr()
	}
	m.nextID++
	record.ID = fmt.Sprintf("mock-%d", m.nextID)
	stored := *record
	m.records[record.ID] = &stored
	m.order = append(m.order, record.ID)
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id string) (*model.Record, error) {
	if m.err != nil {
		return nil, m.storeErr()
	}
	r, ok := m.records[id]
	if !ok {
		return nil, apperror.NotFound(m.kind.Name)
	}
	result := *r
	return &result, nil
}

func (m *mockRecordRepo) List(_ context.Context) ([]model.Record, error) {
	if m.err != nil {
		return nil, m.storeErr()
	}
	result := []model.Record{}
	for _, id := range m.order {
		if r, ok := m.records[id]; ok {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRecordRepo) Update(_ context.Context, record *model.Record) error {
	if m.err != nil {
		return m.storeErr()
	}
	if _, ok := m.records[record.ID]; !ok {
		return apperror.NotFound(m.kind.Name)
	}
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.storeErr()
	}
	if _, ok := m.records[id]; !ok {
		return apperror.NotFound(m.kind.Name)
	}
	delete(m.records, id)
	return nil
}

func (m *mockRecordRepo) Count(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.storeErr()
	}
	return len(m.records), nil
}

func (m *mockRecordRepo) CreateBatch(ctx context.Context, records []*model.Record) error {
	if m.err != nil {
		return m.storeErr()
	}
	m.batches++
	for _, r := range records {
		if err := m.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func ptr(s string) *string { return &s }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestService creates a RecordService over a mock repository.
func newTestService(t *testing.T, kind model.Kind) (*RecordService, *mockRecordRepo) {
	t.Helper()
	repo := newMockRepo(kind)
	return NewRecordService(kind, repo, validation.New(), testLogger()), repo
}
