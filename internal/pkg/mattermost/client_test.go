package mattermost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendDM(t *testing.T) {
	var posted Post
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer bot-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v4/channels/direct":
			var ids []string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
			assert.Equal(t, []string{"user-1", "me"}, ids)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "dm-channel"})
		case "/api/v4/posts":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			posted.ID = "post-1"
			_ = json.NewEncoder(w).Encode(posted)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "bot-token")
	require.NoError(t, c.SendDM(context.Background(), "user-1", "hello"))
	assert.Equal(t, "dm-channel", posted.ChannelID)
	assert.Equal(t, "hello", posted.Message)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "bad").SendDM(context.Background(), "user-1", "hello")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
