package http

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

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "feecast", r.Header.Get("User-Agent"))
		var in map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]int{"days": in["days"] * 2})
	}))
	defer srv.Close()

	c := NewClient(WithHeader("User-Agent", "feecast"))
	var out map[string]int
	require.NoError(t, c.PostJSON(context.Background(), srv.URL, map[string]int{"days": 7}, &out))
	assert.Equal(t, 14, out["days"])
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("nope"))
		default:
			_, _ = w.Write([]byte("{not json"))
		}
	}))
	defer srv.Close()

	c := NewClient()
	var out map[string]interface{}

	err := c.GetJSON(context.Background(), srv.URL+"/busy", &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, IsTemporary(err))

	err = c.GetJSON(context.Background(), srv.URL+"/bad", &out)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "nope", se.Body)
	assert.False(t, IsTemporary(err))

	err = c.GetJSON(context.Background(), srv.URL+"/garbage", &out)
	var de *DecodeError
	assert.True(t, errors.As(err, &de))
	assert.False(t, IsTemporary(err))

	assert.False(t, IsTemporary(nil))
	assert.True(t, IsTemporary(errors.New("connection refused")))
}
