package resto_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staysync/internal/adapters/resto"
	"staysync/internal/domain"
)

func newTestClient(t *testing.T, base string) *resto.Client {
	t.Helper()
	cl, err := resto.New(base, "tok-123", 100, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := resto.New("http://x", "", 100, time.Second)
	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestListBookings_DecodesEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// Token travels as the basic-auth username with an empty password.
		if u, p, ok := r.BasicAuth(); !ok || u != "tok-123" || p != "" {
			t.Errorf("unexpected auth %q/%q", u, p)
		}
		if got := r.URL.Query().Get("from"); got != "2025-06-01" {
			t.Errorf("unexpected from %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"bookings": []any{
				map[string]any{"id": 501.0, "status": "approved"},
			},
		})
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows, err := newTestClient(t, ts.URL).ListBookings(ctx, day, day, 200)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"].(float64) != 501 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestGetBooking_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := newTestClient(t, ts.URL).GetBooking(ctx, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBooking_SendsPutAndSurfacesMessage(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	fail := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		if fail {
			w.WriteHeader(422)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "covers too large"})
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cl := newTestClient(t, ts.URL)

	if err := cl.UpdateBooking(ctx, 501, map[string]any{"covers": 4}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/bookings/501" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotBody["covers"].(float64) != 4 {
		t.Fatalf("unexpected body: %+v", gotBody)
	}

	fail = true
	err := cl.UpdateBooking(ctx, 501, map[string]any{"covers": 4000})
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) || ue.Status != 422 || ue.Body != "covers too large" {
		t.Fatalf("expected 422 with API message, got %v", err)
	}
}

func TestAddNote_PostsToNotes(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := newTestClient(t, ts.URL).AddNote(ctx, 501, "matched to hotel res"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotPath != "/api/bookings/501/notes" || gotBody["note"] != "matched to hotel res" {
		t.Fatalf("unexpected request: %s %+v", gotPath, gotBody)
	}
}

func TestGetJSON_BadPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := newTestClient(t, ts.URL).GetBooking(ctx, 1)
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) || ue.Kind != domain.UpstreamBadData {
		t.Fatalf("expected bad-data upstream error, got %v", err)
	}
}
