package bible

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIRemoteFetchNormalizesUpstreamShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genesis 1", r.URL.Path)
		assert.Equal(t, "acf", r.URL.Query().Get("translation"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"reference": "Gênesis 1",
			"verses": [
				{"book_id": "GEN", "book_name": "Gênesis", "chapter": 1, "verse": 1, "text": "No princípio, criou Deus os céus e a terra."},
				{"book_id": "GEN", "book_name": "Gênesis", "chapter": 1, "verse": 2, "text": "A terra, porém, estava sem forma e vazia."}
			]
		}`))
	}))
	defer server.Close()

	remote := &APIRemote{BaseURL: server.URL, HTTPClient: server.Client()}
	payload, err := remote.Fetch(context.Background(), "genesis/1/acf")
	require.NoError(t, err)

	var ch Chapter
	require.NoError(t, json.Unmarshal([]byte(payload), &ch))
	assert.Equal(t, "Gênesis 1", ch.Reference)
	assert.Equal(t, "genesis", ch.BookID)
	assert.Equal(t, "Gênesis", ch.BookName)
	assert.Equal(t, "acf", ch.TranslationID)
	assert.Equal(t, "Almeida Corrigida Fiel", ch.TranslationName)
	require.Len(t, ch.Verses, 2)
	assert.Equal(t, "genesis", ch.Verses[0].BookID)
	assert.Equal(t, 1, ch.Verses[0].Verse)
}

func TestAPIRemoteFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("translation") {
		case "kjv":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{"reference": "Gênesis 99", "verses": []}`))
		}
	}))
	defer server.Close()

	remote := &APIRemote{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := remote.Fetch(context.Background(), "genesis/1/kjv")
	assert.ErrorContains(t, err, "status 404")

	_, err = remote.Fetch(context.Background(), "genesis/1/acf")
	assert.ErrorContains(t, err, "no verses")

	_, err = remote.Fetch(context.Background(), "not-a-key")
	assert.ErrorContains(t, err, "invalid chapter key")

	_, err = remote.Fetch(context.Background(), "genesis/1/vulgate")
	assert.ErrorIs(t, err, ErrUnknownTranslation)
}
