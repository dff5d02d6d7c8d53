package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chomnr/brute-go/internal/apperr"
)

func TestReport_SendsBearerAuthenticatedJSON(t *testing.T) {
	var gotAuth string
	var gotBody payload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "secret-token")
	err := client.Report("admin", "hunter2", "8.8.8.8", "SSH")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "admin", gotBody.Username)
	assert.Equal(t, "hunter2", gotBody.Password)
	assert.Equal(t, "8.8.8.8", gotBody.IPAddress)
	assert.Equal(t, "SSH", gotBody.Protocol)
}

func TestReport_NonSuccessStatusIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "secret-token")
	err := client.Report("admin", "hunter2", "8.8.8.8", "SSH")
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TransportFailure, appErr.Kind)
}

func TestReport_UnreachableEndpointIsTransportFailure(t *testing.T) {
	client := New("http://127.0.0.1:1", "secret-token")
	err := client.Report("admin", "hunter2", "8.8.8.8", "SSH")
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TransportFailure, appErr.Kind)
}
