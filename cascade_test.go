package telsearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseNorm(t *testing.T) {
	assert.Equal(t, 0.0, sparseNorm(0))
	assert.Equal(t, 0.5, sparseNorm(10))
	assert.Less(t, sparseNorm(1000), 1.0)
	assert.Greater(t, sparseNorm(30), sparseNorm(20))
}

func TestCascadeEmptyQuery(t *testing.T) {
	engine, _ := setupEngine(t)
	_, err := engine.Cascade(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestCascadeNotReady(t *testing.T) {
	engine, _ := setupEngine(t)
	_, err := engine.Cascade(context.Background(), "prix fibre")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCascadeRuleLayer(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.Rebuild(ctx, testCorpus()))

	// The gamer detector alone clears the rule threshold.
	res, err := engine.Cascade(ctx, "offre gamer")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, LayerRule, res.Layer)
	assert.Equal(t, "doc_gamer", res.DocID)
	assert.GreaterOrEqual(t, res.Score, defaultRuleMinScore)
}

func TestCascadeSparseLayer(t *testing.T) {
	engine, _ := setupEngine(t, WithCascadeThresholds(1000, 0.01, 0.1))
	ctx := context.Background()
	require.NoError(t, engine.Rebuild(ctx, testCorpus()))

	// Only one document carries required-documents passages, so the
	// lexical layer resolves the query on its own.
	res, err := engine.Cascade(ctx, "documents requis nouvelle souscription")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, LayerSparse, res.Layer)
	assert.Equal(t, "doc_fibre_p", res.DocID)
	assert.Greater(t, res.Score, 0.0)
	assert.Less(t, res.Score, 1.0)
}

func TestCascadeDenseLayer(t *testing.T) {
	engine, _ := setupEngine(t, WithCascadeThresholds(1000, 1, 0))
	ctx := context.Background()
	require.NoError(t, engine.Rebuild(ctx, testCorpus()))

	res, err := engine.Cascade(ctx, "quelle offre internet me convient")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, LayerDense, res.Layer)
	assert.NotEmpty(t, res.DocID)
}

func TestCascadeNotFound(t *testing.T) {
	engine, _ := setupEngine(t, WithCascadeThresholds(1000, 1, 1))
	ctx := context.Background()
	require.NoError(t, engine.Rebuild(ctx, testCorpus()))

	res, err := engine.Cascade(ctx, "xylophone quantique")
	require.NoError(t, err)

	assert.False(t, res.Found)
	assert.Equal(t, LayerNotFound, res.Layer)
	assert.Empty(t, res.DocID)
}

func TestCascadeWithoutDenseFallsThrough(t *testing.T) {
	engine, provider := setupEngine(t, WithCascadeThresholds(1000, 1, 0))
	ctx := context.Background()

	provider.GetMockEmbedder().EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, assert.AnError
	}
	require.NoError(t, engine.Rebuild(ctx, testCorpus()))

	res, err := engine.Cascade(ctx, "quelle offre internet me convient")
	require.NoError(t, err)

	assert.False(t, res.Found)
	assert.Equal(t, LayerNotFound, res.Layer)
}
