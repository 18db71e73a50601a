package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alswn8268/ai-cii/internal/store"
)

func TestHandleHistory_Disabled(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeChatter{}, &fakeRetriever{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestHandleHistory_ReturnsEntries(t *testing.T) {
	t.Parallel()

	hist, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	ctx := context.Background()
	for _, q := range []string{"첫번째", "두번째", "세번째"} {
		if err := hist.Append(ctx, store.Entry{Query: q, Answer: "a"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	s := newTestServer(t, &fakeChatter{}, &fakeRetriever{}, hist)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?n=2", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}

	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Entries[0].Query != "세번째" {
		t.Errorf("entries[0].query = %q, want newest first", resp.Entries[0].Query)
	}
}

func TestHandleHistory_BadLimit(t *testing.T) {
	t.Parallel()

	hist, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	s := newTestServer(t, &fakeChatter{}, &fakeRetriever{}, hist)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?n=0", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleHistory_EmptyStore(t *testing.T) {
	t.Parallel()

	hist, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	s := newTestServer(t, &fakeChatter{}, &fakeRetriever{}, hist)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()

	s.handleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp historyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || resp.Entries == nil {
		t.Errorf("want empty non-nil entries, got %+v", resp)
	}
}
