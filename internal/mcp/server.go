// Package mcp exposes a user's vocabulary to LLM tooling over HTTP: loading
// the word list into the embedding store, similarity search for quiz
// context, and listing the stored words.
package mcp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/example/scanvocab/internal/embedding"
)

// Server is the HTTP tool server
type Server struct {
	store *embedding.Store
}

// NewServer creates a tool server over the given store
func NewServer(store *embedding.Store) *Server {
	return &Server{store: store}
}

// Handler returns the route table for the tool server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools/load_user_words", s.handleLoadUserWords)
	mux.HandleFunc("/tools/search_related_words", s.handleSearchRelatedWords)
	mux.HandleFunc("/tools/get_user_word_list", s.handleGetUserWordList)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe runs the tool server on the given port
func (s *Server) ListenAndServe(port string) error {
	log.Printf("MCP tool server listening on port %s", port)
	return http.ListenAndServe(":"+port, s.Handler())
}

type loadUserWordsRequest struct {
	UserID int64             `json:"user_id"`
	Words  []embedding.Entry `json:"words"`
}

func (s *Server) handleLoadUserWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req loadUserWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// One user's words at a time; a new load replaces the previous set.
	s.store.Clear()
	if err := s.store.AddBatch(r.Context(), req.Words); err != nil {
		log.Printf("Error loading words for user %d: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Loaded %d words for user %d", len(req.Words), req.UserID),
	})
}

type searchRelatedWordsRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
	Limit  int    `json:"limit"`
}

func (s *Server) handleSearchRelatedWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req searchRelatedWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 || req.Text == "" {
		writeError(w, http.StatusBadRequest, "user_id and text are required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 3
	}

	matches, err := s.store.SearchSimilar(r.Context(), req.Text, req.Limit)
	if err != nil {
		log.Printf("Error searching related words: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(matches) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"related_words": []embedding.Match{},
			"message":       "No similar words found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"related_words": matches,
	})
}

type getUserWordListRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) handleGetUserWordList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req getUserWordListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	words := s.store.All()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":     req.UserID,
		"total_words": len(words),
		"words":       words,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
