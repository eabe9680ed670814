package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/engaja"
)

func TestClientCachesIssueUntilMutation(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/issues/ABC":
			gets.Add(1)
			json.NewEncoder(w).Encode(engaja.IssueView{ID: "ABC", Votes: int(gets.Load())})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/issues/ABC/support":
			json.NewEncoder(w).Encode(engaja.SupportResult{Supported: true, Issue: engaja.IssueView{ID: "ABC"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok")
	ctx := context.Background()

	first, err := c.GetIssue(ctx, "ABC")
	require.NoError(t, err)
	cached, err := c.GetIssue(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	assert.EqualValues(t, 1, gets.Load())

	result, err := c.Support(ctx, "ABC")
	require.NoError(t, err)
	assert.True(t, result.Supported)

	fresh, err := c.GetIssue(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Votes)
}

func TestClientSessionStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/session":
			var req engaja.SessionRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(engaja.SessionResponse{Token: "issued", User: engaja.UserView{Name: req.Name}})
		case "/api/v1/me":
			assert.Equal(t, "Bearer issued", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(engaja.UserView{Name: "Maria"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	session, err := c.Session(context.Background(), engaja.SessionRequest{Name: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, "issued", session.Token)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Maria", me.Name)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "permission denied"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Respond(context.Background(), "ABC", engaja.CommentRequest{Text: "ok"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "permission denied", apiErr.Message)
}
