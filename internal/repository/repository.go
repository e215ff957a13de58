package repository

import (
	"context"

	"github.com/mohamedamineameur/renderback/internal/model"
)

// RecordRepository is the single-row CRUD contract shared by both collections.
// Not-found conditions come back as apperror.ErrNotFound; every other failure
// is an apperror.ErrStore carrying the driver's message.
type RecordRepository interface {
	Create(ctx context.Context, record *model.Record) error
	GetByID(ctx context.Context, id string) (*model.Record, error)
	List(ctx context.Context) ([]model.Record, error)
	Update(ctx context.Context, record *model.Record) error
	Delete(ctx context.Context, id string) error
}

// SeedRepository is what the startup seeder needs.
type SeedRepository interface {
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, records []*model.Record) error
}
