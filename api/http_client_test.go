package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Request_Success(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-endpoint", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "abc", r.Header.Get("X-Request-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "value", body["key"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "success"})
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL, time.Second)
	var response map[string]string

	err := client.Request(context.Background(), "POST", "/test-endpoint",
		map[string]string{"X-Request-Id": "abc"}, map[string]string{"key": "value"}, &response)

	require.NoError(t, err)
	assert.Equal(t, "success", response["message"])
}

func TestHTTPClient_Request_Failure(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "bad request"}`))
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL, time.Second)
	var response map[string]string

	err := client.Request(context.Background(), "POST", "/test-endpoint", nil, map[string]string{"key": "value"}, &response)

	require.Error(t, err)
	assert.Equal(t, "unexpected status code: 400 Bad Request", err.Error())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "bad request")
}

func TestHTTPClient_Request_BadJSON(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL, time.Second)
	var response map[string]string

	err := client.Request(context.Background(), "GET", "/", nil, nil, &response)
	assert.Error(t, err)
}

func TestHTTPClient_Request_ContextCanceled(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(mockServer.URL, time.Second)
	err := client.Request(ctx, "GET", "/", nil, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
