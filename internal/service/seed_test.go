package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedamineameur/renderback/internal/apperror"
	"github.com/mohamedamineameur/renderback/internal/model"
)

func TestSeed_EmptyTable(t *testing.T) {
	repo := newMockRepo(model.Couleur)
	seeder := NewCouleurSeeder(repo, testLogger())

	n, err := seeder.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 1, repo.batches, "defaults go in as one batch")

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Rouge", "Vert", "Bleu", "Jaune", "Noir", "Blanc"}, names)
}

func TestSeed_Idempotent(t *testing.T) {
	repo := newMockRepo(model.Couleur)
	seeder := NewCouleurSeeder(repo, testLogger())
	ctx := context.Background()

	_, err := seeder.Seed(ctx)
	require.NoError(t, err)

	n, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, _ := repo.Count(ctx)
	assert.Equal(t, 6, count)
}

func TestSeed_NonEmptyTableIsLeftAlone(t *testing.T) {
	repo := newMockRepo(model.Couleur)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Record{Name: "Orange"}))

	n, err := NewCouleurSeeder(repo, testLogger()).Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, repo.batches)
}

func TestSeed_CountError(t *testing.T) {
	repo := newMockRepo(model.Couleur)
	repo.err = errors.New("no route to host")

	_, err := NewCouleurSeeder(repo, testLogger()).Seed(context.Background())
	assert.True(t, errors.Is(err, apperror.ErrStore))
}

func TestSeed_LogsInsertedCount(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	_, err := NewCouleurSeeder(newMockRepo(model.Couleur), logger).Seed(context.Background())
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "default colors added", line["msg"])
	assert.Equal(t, float64(6), line["count"])
}
