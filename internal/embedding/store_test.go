package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors per input text
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return []float32{0, 0, 1}, nil
	}
	return v, nil
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestStoreSearchSimilar(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"harbor": {1, 0, 0},
		"vessel": {0.9, 0.1, 0},
		"violin": {0, 1, 0},
		"port":   {0.95, 0, 0},
	}}
	store := NewStore(embedder)
	ctx := context.Background()

	err := store.AddBatch(ctx, []Entry{
		{English: "harbor", Japanese: "港", Status: "review"},
		{English: "vessel", Japanese: "船舶", Status: "new"},
		{English: "violin", Japanese: "バイオリン", Status: "mastered"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	matches, err := store.SearchSimilar(ctx, "port", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "harbor", matches[0].English)
	assert.Equal(t, "vessel", matches[1].English)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestStoreSearchSimilarEmpty(t *testing.T) {
	store := NewStore(&fakeEmbedder{})

	matches, err := store.SearchSimilar(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStoreAddReplacesExisting(t *testing.T) {
	store := NewStore(&fakeEmbedder{})
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, Entry{English: "harbor", Japanese: "港", Status: "new"}))
	require.NoError(t, store.Add(ctx, Entry{English: "harbor", Japanese: "港", Status: "mastered"}))

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "mastered", all[0].Status)
}

func TestStoreAddEmbedderError(t *testing.T) {
	store := NewStore(&fakeEmbedder{err: errors.New("quota exceeded")})

	err := store.Add(context.Background(), Entry{English: "harbor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 0, store.Len())
}

func TestStoreClear(t *testing.T) {
	store := NewStore(&fakeEmbedder{})
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, Entry{English: "harbor", Japanese: "港"}))
	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.All())
}
