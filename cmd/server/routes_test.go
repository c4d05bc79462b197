package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/chat-gateway/internal/config"
	"github.com/iyunix/chat-gateway/internal/database"
	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/seed"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
	"github.com/iyunix/chat-gateway/internal/services/provider"
)

type stubProvider struct {
	kind    domain.ModelKind
	catalog []string
	reply   []string
}

func (s *stubProvider) Kind() domain.ModelKind { return s.kind }
func (s *stubProvider) Available() error       { return nil }
func (s *stubProvider) ListCatalog(ctx context.Context) ([]string, error) {
	return s.catalog, nil
}
func (s *stubProvider) Resolve(ctx context.Context, name string) (bool, error) {
	for _, n := range s.catalog {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
func (s *stubProvider) StreamCompletion(ctx context.Context, model string, in prompt.Input, onDelta func(string) error) error {
	for _, d := range s.reply {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		SecretKey:      "test-secret",
		AccessTokenTTL: 30 * time.Minute,
	}
	base := logrus.New()
	base.SetOutput(io.Discard)

	db := database.OpenTest(t)
	data, err := seed.Default()
	require.NoError(t, err)
	_, err = newRepositories(db).seeder(base).Run(context.Background(), data, seed.AdminCredentials{
		Email:    "admin@localhost",
		Password: "adminpass",
	})
	require.NoError(t, err)

	handler, err := buildHandler(cfg, base, db, []provider.Provider{
		&stubProvider{kind: domain.ModelKindLocal, catalog: []string{"llama3.2"}, reply: []string{"Hel", "lo"}},
		&stubProvider{kind: domain.ModelKindCloud, catalog: []string{"gemma-7b-it"}, reply: []string{"Hi"}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, target, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/auth/token", url.Values{"username": {username}, "password": {password}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodOptions, srv.URL+"/chat", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "X-Conversation-ID")

	resp = doJSON(t, http.MethodGet, srv.URL+"/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", `{"username":"alice","email":"alice@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created map[string]interface{}
	decode(t, resp, &created)
	assert.Equal(t, "alice", created["username"])
	assert.NotContains(t, created, "password")

	resp = doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", `{"username":"alice","email":"other@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var detail map[string]string
	decode(t, resp, &detail)
	assert.Equal(t, "Username or email already registered", detail["detail"])

	bad, err := http.PostForm(srv.URL+"/auth/token", url.Values{"username": {"alice"}, "password": {"wrong"}})
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)
	assert.Equal(t, "Bearer", bad.Header.Get("WWW-Authenticate"))

	token := login(t, srv, "alice", "pw")

	resp = doJSON(t, http.MethodGet, srv.URL+"/auth/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]interface{}
	decode(t, resp, &me)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, false, me["is_admin"])

	resp = doJSON(t, http.MethodGet, srv.URL+"/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/auth/me", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestModelsListing(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/models", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Models []struct {
			Name      string `json:"name"`
			IsAvail   bool   `json:"is_avail"`
			ModelType string `json:"model_type"`
		} `json:"models"`
	}
	decode(t, resp, &body)

	byName := map[string]string{}
	for _, m := range body.Models {
		assert.True(t, m.IsAvail, m.Name)
		byName[m.Name] = m.ModelType
	}
	assert.Equal(t, "local", byName["llama3.2"])
	assert.Equal(t, "cloud", byName["gemma-7b-it"])
}

func TestChatConversationLifecycle(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", `{"username":"alice","email":"alice@example.com","password":"pw"}`)
	token := login(t, srv, "alice", "pw")

	resp := doJSON(t, http.MethodPost, srv.URL+"/chat", "", `{"user_input":"hi","model_id":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/chat", token, `{"user_input":"hi"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/chat", token, `{"user_input":"hi","model_id":999}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/chat", token, `{"user_input":"hi","model_id":1,"category_id":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	convID := resp.Header.Get("X-Conversation-ID")
	assert.NotEmpty(t, convID)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(text))

	resp = doJSON(t, http.MethodGet, srv.URL+"/conversations", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Conversations []struct {
			ID       uint    `json:"id"`
			Title    string  `json:"title"`
			Model    *string `json:"model"`
			Category *string `json:"category"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		} `json:"conversations"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Conversations, 1)
	conv := list.Conversations[0]
	require.NotNil(t, conv.Model)
	assert.Equal(t, "llama3.2", *conv.Model)
	require.NotNil(t, conv.Category)
	assert.Equal(t, "Goal Setting", *conv.Category)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "user", conv.Messages[0].Role)
	assert.Equal(t, "Hello", conv.Messages[1].Content)

	resp = doJSON(t, http.MethodPut, srv.URL+"/conversations/"+convID+"/title", token, `{"title":"Plans"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/conversations/"+convID+"/title", token, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", `{"username":"bob","email":"bob@example.com","password":"pw"}`)
	bobToken := login(t, srv, "bob", "pw")
	resp = doJSON(t, http.MethodDelete, srv.URL+"/conversations/"+convID, bobToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/conversations/"+convID, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/conversations/"+convID, token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGuestChat(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/guest/chat", "", `{"user_input":"hi","model":"gemma-7b-it"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Conversation-ID"))
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Hi", string(text))

	resp = doJSON(t, http.MethodPost, srv.URL+"/guest/chat", "", `{"user_input":"hi","model":"mistral"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminTables(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "", `{"username":"alice","email":"alice@example.com","password":"pw"}`)

	resp := doJSON(t, http.MethodGet, srv.URL+"/admin/tables", login(t, srv, "alice", "pw"), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/admin/tables", login(t, srv, "admin", "adminpass"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tables map[string][]map[string]interface{}
	decode(t, resp, &tables)
	assert.Len(t, tables["users"], 2)
	assert.Len(t, tables["categories"], 6)
	assert.Contains(t, tables, "conversations")
}
