package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/telsearch/ai/mock"
	"github.com/poiesic/telsearch/core"
	"github.com/poiesic/telsearch/storage"
	badgerstore "github.com/poiesic/telsearch/storage/badger"
)

func seedPassages(t *testing.T, repo storage.PassageRepository, n int) {
	t.Helper()
	passages := make([]*core.Passage, n)
	for i := range passages {
		passages[i] = &core.Passage{
			Id:     core.IDFromContent(fmt.Sprintf("doc_p/offer/%d", i)),
			DocID:  "doc_p",
			Type:   core.PassageOffer,
			Text:   fmt.Sprintf("Idoom Fibre offre numéro %d", i),
			Vector: []float32{1, 2, 3},
		}
	}
	require.NoError(t, repo.PutPassages(context.Background(), passages...))
}

func setupRepo(t *testing.T) storage.PassageRepository {
	t.Helper()
	passageRepo, documentRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		passageRepo.Close()
		documentRepo.Close()
		backend.Close()
	})
	return passageRepo
}

func testConfig() *Config {
	return &Config{
		BatchSize:      4,
		ReportInterval: 5,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedderReplacesAllVectors(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	seedPassages(t, repo, 10)

	embedder := mock.NewMockEmbedder()
	var buf bytes.Buffer
	require.NoError(t, NewReembedder(repo, embedder, testConfig(), &buf).Run(ctx))

	// 10 passages in batches of 4 is 3 embedding calls.
	assert.Equal(t, 3, embedder.CallCount())

	stored, err := repo.AllPassages(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 10)
	for _, p := range stored {
		assert.Len(t, p.Vector, 384)
	}
	assert.Contains(t, buf.String(), "Reembedding complete. Processed 10 passages")
}

func TestReembedderEmptyStore(t *testing.T) {
	repo := setupRepo(t)

	var buf bytes.Buffer
	require.NoError(t, NewReembedder(repo, mock.NewMockEmbedder(), testConfig(), &buf).Run(context.Background()))
	assert.Contains(t, buf.String(), "No passages found")
}

func TestReembedderRetriesTransientFailure(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	seedPassages(t, repo, 3)

	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{0.1, 0.2}
		}
		return vectors, nil
	}

	var buf bytes.Buffer
	require.NoError(t, NewReembedder(repo, embedder, testConfig(), &buf).Run(ctx))
	assert.Equal(t, 2, calls)
}

func TestReembedderFailsAfterRetries(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	seedPassages(t, repo, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	var buf bytes.Buffer
	err := NewReembedder(repo, embedder, testConfig(), &buf).Run(ctx)
	assert.ErrorContains(t, err, "embedding failed")
}

func TestReembedderRejectsInvalidBatchSize(t *testing.T) {
	repo := setupRepo(t)
	cfg := testConfig()
	cfg.BatchSize = 0

	err := NewReembedder(repo, mock.NewMockEmbedder(), cfg, &bytes.Buffer{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}
