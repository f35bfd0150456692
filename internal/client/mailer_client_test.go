package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerClient_CampaignFlow(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
		lead  addLeadRequest
		camp  createCampaignRequest
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		paths = append(paths, r.URL.Path)

		switch r.URL.Path {
		case "/api/v2/campaigns":
			_ = json.NewDecoder(r.Body).Decode(&camp)
			_, _ = w.Write([]byte(`{"id":"camp-9"}`))
		case "/api/v2/leads":
			_ = json.NewDecoder(r.Body).Decode(&lead)
			_, _ = w.Write([]byte(`{"id":"lead-1"}`))
		case "/api/v2/campaigns/camp-9/activate":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewMailerClient(srv.URL, "key-1")
	require.True(t, c.Configured())
	ctx := context.Background()

	id, err := c.CreateCampaign(ctx, "ICU nurses", "Open roles", "Hi {{first_name}}")
	require.NoError(t, err)
	assert.Equal(t, "camp-9", id)

	require.NoError(t, c.AddLead(ctx, id, MailerLead{Email: "ana@example.com", FirstName: "Ana"}))
	require.NoError(t, c.Activate(ctx, id))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/v2/campaigns", "/api/v2/leads", "/api/v2/campaigns/camp-9/activate"}, paths)
	assert.Equal(t, "ICU nurses", camp.Name)
	require.Len(t, camp.Sequences, 1)
	assert.Equal(t, "Open roles", camp.Sequences[0].Steps[0].Variants[0].Subject)
	assert.Equal(t, "camp-9", lead.Campaign)
	assert.Equal(t, "ana@example.com", lead.Email)
}

func TestMailerClient_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	_, err := NewMailerClient(srv.URL, "nope").CreateCampaign(context.Background(), "x", "s", "b")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unexpected status code: 401"))
	assert.Contains(t, err.Error(), `body="bad key"`)
}

func TestMailerClient_MissingID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewMailerClient(srv.URL, "k").CreateCampaign(context.Background(), "x", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}
