// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository interfaces, not *database.DB, so tests can hand
// them an in-memory fake and the HTTP layer never sees SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mohamedamineameur/renderback/internal/apperror"
	"github.com/mohamedamineameur/renderback/internal/model"
	"github.com/mohamedamineameur/renderback/internal/repository"
	"github.com/mohamedamineameur/renderback/internal/validation"
)

// RecordInput is the writable part of a record, as sent in request bodies.
//
// Name is a pointer so that a missing key and JSON null can be told apart
// from "": the first two fail validation, the empty string is a valid name.
type RecordInput struct {
	Name *string `json:"name" validate:"required"`
}

// RecordService handles one collection. The server builds one for Livre and
// one for Couleur over their own repositories.
type RecordService struct {
	kind     model.Kind
	repo     repository.RecordRepository
	validate *validation.Validator
	logger   *slog.Logger
}

// NewRecordService creates a RecordService for kind.
func NewRecordService(
	kind model.Kind,
	repo repository.RecordRepository,
	validate *validation.Validator,
	logger *slog.Logger,
) *RecordService {
	return &RecordService{
		kind:     kind,
		repo:     repo,
		validate: validate,
		logger:   logger.With(slog.String("entity", kind.Name)),
	}
}

// Kind reports which collection this service manages.
func (s *RecordService) Kind() model.Kind {
	return s.kind
}

// Create validates and saves a new record. The repository assigns the ID.
//
// The name is stored exactly as given: no trimming, and "" is accepted.
func (s *RecordService) Create(ctx context.Context, in RecordInput) (*model.Record, error) {
	if err := s.validate.Validate(s.kind.Name, in); err != nil {
		return nil, err
	}

	record := &model.Record{Name: *in.Name}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create record",
			slog.String("name", record.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating %s: %w", s.label(), err)
	}

	s.logger.Info("record created",
		slog.String("id", record.ID),
		slog.String("name", record.Name),
	)
	return record, nil
}

// GetByID retrieves a record. Returns apperror.ErrNotFound if it doesn't exist.
func (s *RecordService) GetByID(ctx context.Context, id string) (*model.Record, error) {
	if err := s.requireID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns every record of the collection.
func (s *RecordService) List(ctx context.Context) ([]model.Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list records", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing %s: %w", s.label(), err)
	}
	return records, nil
}

// Update renames an existing record.
//
// STRATEGY: "Fetch then update"
// The lookup runs first, so an unknown id is a 404 even when the body is
// also invalid. There is no version check between the two statements: two
// concurrent renames race and the last write wins.
func (s *RecordService) Update(ctx context.Context, id string, in RecordInput) (*model.Record, error) {
	if err := s.requireID(id); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Validate(s.kind.Name, in); err != nil {
		return nil, err
	}
	record.Name = *in.Name

	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update record",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating %s: %w", s.label(), err)
	}

	s.logger.Info("record updated",
		slog.String("id", record.ID),
		slog.String("name", record.Name),
	)
	return record, nil
}

// Delete removes a record. Returns apperror.ErrNotFound if it doesn't exist.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.requireID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("record deleted", slog.String("id", id))
	return nil
}

func (s *RecordService) requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", s.kind.Name+" id is required")
	}
	return nil
}

func (s *RecordService) label() string {
	return strings.ToLower(s.kind.Name)
}
