package consult

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lawdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   status >= 300,
		"message": message,
		"data":    data,
	})
}

func TestAPISendsBearerAndDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/bookings/b1", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "accepted", body["status"])
		writeEnvelope(w, http.StatusOK, "Booking updated", models.Booking{ID: "b1", Status: models.StatusActive})
	}))
	defer srv.Close()

	b, err := NewAPI(srv.URL+"/", "tok").UpdateBookingStatus(context.Background(), "b1", "accepted")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, b.Status)
}

func TestAPIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, "invalid booking transition", nil)
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, "tok").UpdateBookingStatus(context.Background(), "b1", "active")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "invalid booking transition", apiErr.Message)
}

func TestAPIHistoryDefaultsToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "Messages fetched", nil)
	}))
	defer srv.Close()

	msgs, err := NewAPI(srv.URL, "").History(context.Background(), "b1")
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestAPICancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewAPI(srv.URL, "").Lawyers(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
