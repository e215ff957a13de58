package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mohamedamineameur/renderback/internal/model"
	"github.com/mohamedamineameur/renderback/internal/repository"
)

// DefaultCouleurs is inserted, in this order, into an empty Couleur table.
var DefaultCouleurs = []string{"Rouge", "Vert", "Bleu", "Jaune", "Noir", "Blanc"}

// Seeder fills an empty Couleur table with the default colors.
//
// The count-then-insert pair is not atomic: two processes starting at the
// same moment against an empty table can both insert. Deployments run a
// single instance.
type Seeder struct {
	repo   repository.SeedRepository
	names  []string
	logger *slog.Logger
}

// NewCouleurSeeder creates the Seeder for the default colors.
func NewCouleurSeeder(repo repository.SeedRepository, logger *slog.Logger) *Seeder {
	return &Seeder{repo: repo, names: DefaultCouleurs, logger: logger}
}

// Seed inserts the default rows if and only if the collection is empty, and
// returns how many rows it inserted.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seeding: %w", err)
	}
	if count != 0 {
		s.logger.Debug("seed skipped, collection not empty", slog.Int("count", count))
		return 0, nil
	}

	records := make([]*model.Record, len(s.names))
	for i, name := range s.names {
		records[i] = &model.Record{Name: name}
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("seeding: %w", err)
	}

	s.logger.Info("default colors added", slog.Int("count", len(records)))
	return len(records), nil
}
