package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

func TestBrevoMailer_Send(t *testing.T) {
	var got brevoEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	m := NewBrevoMailer(BrevoConfig{BaseURL: srv.URL, APIKey: "key-123", FromName: "CampusConnect", FromAddr: "no-reply@campus.edu"})
	err := m.Send(context.Background(), ports.Email{To: "a@campus.edu", ToName: "Ali", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)

	assert.Equal(t, "no-reply@campus.edu", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "a@campus.edu", got.To[0].Email)
	assert.Equal(t, "Hi", got.Subject)
	assert.Equal(t, "<p>x</p>", got.HTMLContent)
}

func TestBrevoMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer srv.Close()

	m := NewBrevoMailer(BrevoConfig{BaseURL: srv.URL, APIKey: "bad"})
	err := m.Send(context.Background(), ports.Email{To: "a@campus.edu"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
