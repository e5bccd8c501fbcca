package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/scanvocab/internal/embedding"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newTestServer() (*httptest.Server, *embedding.Store) {
	store := embedding.NewStore(&fakeEmbedder{vectors: map[string][]float32{
		"harbor": {1, 0, 0},
		"vessel": {0.9, 0.2, 0},
		"violin": {0, 1, 0},
		"port":   {0.99, 0, 0},
	}})
	return httptest.NewServer(NewServer(store).Handler()), store
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestLoadUserWords(t *testing.T) {
	ts, store := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/tools/load_user_words", map[string]interface{}{
		"user_id": 42,
		"words": []map[string]string{
			{"english": "harbor", "japanese": "港", "status": "review"},
			{"english": "violin", "japanese": "バイオリン", "status": "new"},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 2, store.Len())
}

func TestLoadUserWordsReplacesPrevious(t *testing.T) {
	ts, store := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/tools/load_user_words", map[string]interface{}{
		"user_id": 1,
		"words":   []map[string]string{{"english": "harbor", "japanese": "港"}},
	})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/tools/load_user_words", map[string]interface{}{
		"user_id": 2,
		"words":   []map[string]string{{"english": "violin", "japanese": "バイオリン"}},
	})
	resp.Body.Close()

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "violin", all[0].English)
}

func TestLoadUserWordsMissingUserID(t *testing.T) {
	ts, _ := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/tools/load_user_words", map[string]interface{}{
		"words": []map[string]string{{"english": "harbor", "japanese": "港"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "user_id")
}

func TestSearchRelatedWords(t *testing.T) {
	ts, store := newTestServer()
	defer ts.Close()

	require.NoError(t, store.AddBatch(context.Background(), []embedding.Entry{
		{English: "harbor", Japanese: "港", Status: "review"},
		{English: "vessel", Japanese: "船舶", Status: "new"},
		{English: "violin", Japanese: "バイオリン", Status: "mastered"},
	}))

	resp := postJSON(t, ts.URL+"/tools/search_related_words", map[string]interface{}{
		"user_id": 42,
		"text":    "port",
		"limit":   2,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	related, ok := body["related_words"].([]interface{})
	require.True(t, ok)
	require.Len(t, related, 2)

	first := related[0].(map[string]interface{})
	assert.Equal(t, "harbor", first["english"])
	assert.Equal(t, "港", first["japanese"])
}

func TestSearchRelatedWordsEmptyStore(t *testing.T) {
	ts, _ := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/tools/search_related_words", map[string]interface{}{
		"user_id": 42,
		"text":    "port",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "No similar words found", body["message"])
}

func TestGetUserWordList(t *testing.T) {
	ts, store := newTestServer()
	defer ts.Close()

	require.NoError(t, store.AddBatch(context.Background(), []embedding.Entry{
		{English: "harbor", Japanese: "港", Status: "review"},
		{English: "vessel", Japanese: "船舶", Status: "new"},
	}))

	resp := postJSON(t, ts.URL+"/tools/get_user_word_list", map[string]interface{}{
		"user_id": 42,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(42), body["user_id"])
	assert.Equal(t, float64(2), body["total_words"])
}

func TestToolEndpointsRejectGet(t *testing.T) {
	ts, _ := newTestServer()
	defer ts.Close()

	for _, path := range []string{
		"/tools/load_user_words",
		"/tools/search_related_words",
		"/tools/get_user_word_list",
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}
}
