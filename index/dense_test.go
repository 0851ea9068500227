package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/ai/mock"
	"github.com/poiesic/telsearch/core"
)

func TestBuildDense(t *testing.T) {
	t.Run("embeds all passages", func(t *testing.T) {
		passages := []core.Passage{
			passageWithText("d1", "Idoom Fibre 1.5 Gbps"),
			passageWithText("d2", "Documents requis"),
		}
		embedder := mock.NewMockEmbedder()

		idx, err := BuildDense(context.Background(), passages, embedder)
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Len())
		for i := range passages {
			assert.NotEmpty(t, passages[i].Vector)
		}
	})

	t.Run("reuses stored vectors", func(t *testing.T) {
		passages := []core.Passage{
			passageWithText("d1", "Idoom Fibre"),
			passageWithText("d2", "Documents requis"),
		}
		passages[0].Vector = []float32{1, 0, 0}

		embedder := mock.NewMockEmbedder()
		embedded := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			embedded += len(texts)
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{0, 1, 0}
			}
			return out, nil
		}

		idx, err := BuildDense(context.Background(), passages, embedder)
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Len())
		assert.Equal(t, 1, embedded)
	})

	t.Run("embedder failure fails the build", func(t *testing.T) {
		passages := []core.Passage{passageWithText("d1", "Idoom Fibre")}
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("service down")
		}

		_, err := BuildDense(context.Background(), passages, embedder)
		assert.Error(t, err)
	})

	t.Run("nil embedder rejected", func(t *testing.T) {
		_, err := BuildDense(context.Background(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("batching splits work", func(t *testing.T) {
		var passages []core.Passage
		for i := 0; i < 10; i++ {
			passages = append(passages, passageWithText(string(rune('a'+i)), "texte"))
		}
		embedder := mock.NewMockEmbedder()

		idx, err := BuildDense(context.Background(), passages, embedder,
			WithEmbedBatchSize(3), WithEmbedWorkers(2))
		require.NoError(t, err)
		assert.Equal(t, 10, idx.Len())
		// 10 passages in batches of 3 → 4 calls.
		assert.Equal(t, 4, embedder.CallCount())
	})
}

func TestDenseSearch(t *testing.T) {
	queryVec := []float32{1, 0, 0}
	vectors := map[string][]float32{
		"close":   {0.9, 0.1, 0},
		"farther": {0.5, 0.5, 0},
		"far":     {0, 0, 1},
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = vectors[text]
		}
		return out, nil
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryVec, nil
	}

	passages := []core.Passage{
		passageWithText("p1", "close"),
		passageWithText("p2", "farther"),
		passageWithText("p3", "far"),
	}
	idx, err := BuildDense(context.Background(), passages, embedder)
	require.NoError(t, err)

	t.Run("orders by cosine similarity", func(t *testing.T) {
		hits, err := idx.Search(context.Background(), "query", 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, passages[0].Id, hits[0].ID)
		assert.Equal(t, passages[1].Id, hits[1].ID)
		assert.Equal(t, passages[2].Id, hits[2].ID)
		// Normalized vectors keep similarity within [-1, 1].
		assert.InDelta(t, 0.994, hits[0].Score, 0.01)
		assert.InDelta(t, 0, hits[2].Score, 1e-6)
	})

	t.Run("topK caps results", func(t *testing.T) {
		hits, err := idx.Search(context.Background(), "query", 1)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("query embedding failure surfaces", func(t *testing.T) {
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("service down")
		}
		_, err := idx.Search(context.Background(), "query", 3)
		assert.Error(t, err)
	})
}
