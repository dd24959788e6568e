package tautulli_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tautx/internal/tautulli"
	"tautx/internal/testsupport"
)

func newClient(ts *testsupport.TautulliServer) *tautulli.Client {
	return tautulli.New(ts.URL(), testsupport.APIKey, 5*time.Second)
}

func TestPingSucceeds(t *testing.T) {
	t.Parallel()

	ts := testsupport.NewTautulliServer(t)
	ts.HandleData("arnold", "Hasta la vista, baby.")

	if err := newClient(ts).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPingSurfacesAPIError(t *testing.T) {
	t.Parallel()

	ts := testsupport.NewTautulliServer(t)
	ts.HandleData("arnold", "ignored")

	client := tautulli.New(ts.URL(), "wrong-key", 5*time.Second)
	err := client.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Invalid apikey") {
		t.Fatalf("expected apikey error, got %v", err)
	}
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"result": "success", "data": "ok"},
		})
	}))
	defer server.Close()

	client := tautulli.New(server.URL, "key", 5*time.Second)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping after rate limit: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestClientReportsHTTPFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := tautulli.New(server.URL, "key", 5*time.Second)
	err := client.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestFlexNumbersDecodeLooseJSON(t *testing.T) {
	t.Parallel()

	payload := `{
		"rating_key": "123",
		"grandparent_rating_key": 456,
		"year": "",
		"percent_complete": "88.0",
		"view_offset": "3600000",
		"duration": null
	}`
	var record tautulli.HistoryRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record.RatingKey != 123 || record.GrandparentRatingKey != 456 {
		t.Fatalf("unexpected keys: %+v", record)
	}
	if record.Year != 0 {
		t.Fatalf("empty string year should decode to 0, got %d", record.Year)
	}
	if record.PercentComplete == nil || *record.PercentComplete != 88.0 {
		t.Fatalf("unexpected percent: %v", record.PercentComplete)
	}
	if record.ViewOffset == nil || *record.ViewOffset != 3_600_000 {
		t.Fatalf("unexpected view offset: %v", record.ViewOffset)
	}
	if record.Duration != nil {
		t.Fatalf("null duration should stay nil, got %v", *record.Duration)
	}
}
