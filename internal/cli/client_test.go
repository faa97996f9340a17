package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sess_1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Alice", body["a"])

		w.Header().Set("X-Request-ID", "req-1")
		_, _ = w.Write([]byte(`{"feasible":true}`))
	}))
	defer srv.Close()

	var trace bytes.Buffer
	c := NewClient(srv.URL+"/", "sess_1", &trace)

	var out Feasibility
	require.NoError(t, c.Post(t.Context(), "/api/v1/admin/exclusions", map[string]string{"a": "Alice"}, &out))
	assert.True(t, out.Feasible)
	assert.Contains(t, trace.String(), "> POST "+srv.URL+"/api/v1/admin/exclusions")
	assert.Contains(t, trace.String(), "request req-1")
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"ALREADY_MATCHED","message":"Matching has already been run"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", nil).Post(t.Context(), "/api/v1/admin/match", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "ALREADY_MATCHED", apiErr.Code)
	assert.Equal(t, "Matching has already been run (ALREADY_MATCHED)", err.Error())
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", nil).Get(t.Context(), "/api/v1/health", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestParticipantPathEscapesName(t *testing.T) {
	assert.Equal(t, "/api/v1/admin/participants/Ann%2FMarie%20%3F", participantPath("Ann/Marie ?"))
}
