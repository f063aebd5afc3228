package takeout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portabilityServer(t *testing.T, pollsUntilDone int, finalState string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var polls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/portabilityArchive:initiate", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "JSON", body["archiveFormat"])

		_ = json.NewEncoder(w).Encode(map[string]string{"name": "archiveJobs/123"})
	})
	mux.HandleFunc("GET /v1/archiveJobs/123", func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		state := map[string]string{"state": "IN_PROGRESS"}
		if int(n) >= pollsUntilDone {
			state["state"] = finalState
			state["archiveUrl"] = "http://" + r.Host + "/archive"
		}
		_ = json.NewEncoder(w).Encode(state)
	})
	mux.HandleFunc("GET /archive", func(w http.ResponseWriter, r *http.Request) {
		archive := map[string]any{
			"YouTube": map[string]any{
				"My Activity": map[string]any{
					"YouTube History": []map[string]any{
						{"header": "YouTube", "title": "Watched a thing", "time": "2025-02-01T10:00:00Z"},
						{"header": "YouTube Music", "title": "Listened to a thing", "time": "2025-02-01T11:00:00Z"},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(archive)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &polls
}

func TestPortabilityFetchHistory(t *testing.T) {
	server, polls := portabilityServer(t, 3, "COMPLETED")

	client := NewPortabilityClient("test-token",
		WithPortabilityBaseURL(server.URL),
		WithPolling(time.Millisecond, 10),
	)

	entries, err := client.FetchHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Watched a thing", entries[0].Title)
	assert.Equal(t, int64(3), polls.Load(), "polls until the job completes, no further")
}

func TestPortabilityFetchHistoryJobFailure(t *testing.T) {
	server, _ := portabilityServer(t, 1, "FAILED")

	client := NewPortabilityClient("test-token",
		WithPortabilityBaseURL(server.URL),
		WithPolling(time.Millisecond, 10),
	)

	_, err := client.FetchHistory(context.Background())
	assert.ErrorIs(t, err, ErrArchiveFailed)
}

func TestPortabilityFetchHistoryPollBudget(t *testing.T) {
	server, polls := portabilityServer(t, 100, "COMPLETED")

	client := NewPortabilityClient("test-token",
		WithPortabilityBaseURL(server.URL),
		WithPolling(time.Millisecond, 4),
	)

	_, err := client.FetchHistory(context.Background())
	assert.ErrorIs(t, err, ErrArchiveTimeout)
	assert.Equal(t, int64(4), polls.Load(), "polling stops at the budget")
}

func TestPortabilityFetchHistoryHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Data Portability API has not been enabled"},
		})
	}))
	defer server.Close()

	client := NewPortabilityClient("test-token", WithPortabilityBaseURL(server.URL))

	_, err := client.FetchHistory(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data Portability API has not been enabled")
}

func TestHistoryFromArchiveMissingBranch(t *testing.T) {
	entries, err := historyFromArchive([]byte(`{"YouTube": {"Something Else": {}}}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
