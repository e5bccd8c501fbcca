package embedding

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Entry is one word held in the store
type Entry struct {
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Status   string `json:"status"`
}

// Match is a search result with its similarity score
type Match struct {
	Entry
	Similarity float64 `json:"similarity"`
}

// Store keeps embeddings for a user's words in memory and searches them by
// cosine similarity. Safe for concurrent use.
type Store struct {
	embedder Embedder

	mu      sync.RWMutex
	entries map[string]Entry
	vectors map[string][]float32
}

// NewStore creates an empty store using the given embedder
func NewStore(embedder Embedder) *Store {
	return &Store{
		embedder: embedder,
		entries:  make(map[string]Entry),
		vectors:  make(map[string][]float32),
	}
}

// Add embeds a word and stores it, replacing any previous entry for the
// same English form.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	vector, err := s.embedder.Embed(ctx, entry.English)
	if err != nil {
		return fmt.Errorf("embedding %q: %w", entry.English, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.English] = entry
	s.vectors[entry.English] = vector
	return nil
}

// AddBatch adds multiple words, stopping at the first embedding failure
func (s *Store) AddBatch(ctx context.Context, entries []Entry) error {
	for _, entry := range entries {
		if err := s.Add(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// SearchSimilar returns up to limit stored words ranked by cosine similarity
// to the given text, most similar first.
func (s *Store) SearchSimilar(ctx context.Context, text string, limit int) ([]Match, error) {
	s.mu.RLock()
	empty := len(s.vectors) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	target, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	matches := make([]Match, 0, len(s.vectors))
	for english, vector := range s.vectors {
		matches = append(matches, Match{
			Entry:      s.entries[english],
			Similarity: cosineSimilarity(target, vector),
		})
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// All returns every stored word
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].English < entries[j].English
	})
	return entries
}

// Len returns the number of stored words
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all stored words
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	s.vectors = make(map[string][]float32)
}

// cosineSimilarity returns the cosine similarity of two vectors, 0 when
// either has zero magnitude or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
