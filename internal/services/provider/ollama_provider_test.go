package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/chat-gateway/internal/services"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
)

func newOllama(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaProvider(&OllamaConfig{Host: srv.URL + "/"}, &services.NoOpLogger{})
}

func TestOllamaCatalogStripsTags(t *testing.T) {
	p := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"llama3.2:latest"},{"name":"llama3.2:1b"},{"name":"mistral"}]}`)
	})

	names, err := p.ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2", "mistral"}, names)

	ok, err := p.Resolve(context.Background(), "llama3.2:latest")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Resolve(context.Background(), "phi3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOllamaCatalogUnreachable(t *testing.T) {
	p := NewOllamaProvider(&OllamaConfig{Host: "http://127.0.0.1:1"}, &services.NoOpLogger{})
	_, err := p.ListCatalog(context.Background())
	assert.True(t, IsType(err, ErrTypeNetwork))
}

func TestOllamaStream(t *testing.T) {
	var got generateRequest
	p := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprintln(w, `{"response":"Hel","done":false}`)
		fmt.Fprintln(w, `{"response":"lo","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
	})

	var deltas []string
	err := p.StreamCompletion(context.Background(), "llama3.2", prompt.Input{Transcript: "T"}, func(s string) error {
		deltas = append(deltas, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, deltas)
	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, "T", got.Prompt)
	assert.True(t, got.Stream)
}

func TestOllamaStreamErrorChunk(t *testing.T) {
	p := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"a","done":false}`)
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	})

	var deltas []string
	err := p.StreamCompletion(context.Background(), "m", prompt.Input{}, func(s string) error {
		deltas = append(deltas, s)
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
	assert.Equal(t, []string{"a"}, deltas)
}

func TestOllamaStreamMissingModel(t *testing.T) {
	p := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})

	err := p.StreamCompletion(context.Background(), "ghost", prompt.Input{}, nil)
	assert.True(t, IsType(err, ErrTypeModel))
}

func TestOllamaStreamCallbackStops(t *testing.T) {
	p := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"a","done":false}`)
		fmt.Fprintln(w, `{"response":"b","done":false}`)
	})

	stop := errors.New("client gone")
	calls := 0
	err := p.StreamCompletion(context.Background(), "m", prompt.Input{}, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestBaseModelName(t *testing.T) {
	assert.Equal(t, "llama3.2", BaseModelName("llama3.2:latest"))
	assert.Equal(t, "mistral", BaseModelName("mistral"))
}
