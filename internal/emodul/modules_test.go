package emodul

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestListModules(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"id": 1, "udid": "abc123", "name": "House", "version": "TECH: L-8e"}]`)) //nolint:errcheck
	}))

	modules, err := c.ListModules(context.Background())
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}

	if gotPath != "/users/240/modules" {
		t.Errorf("path = %q, want /users/240/modules", gotPath)
	}
	if len(modules) != 1 || modules[0].UDID != "abc123" {
		t.Errorf("modules = %v, want one module with udid abc123", modules)
	}
}

func TestRefreshModule_Serialises(t *testing.T) {
	var inFlight, maxInFlight, total int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			seen := atomic.LoadInt32(&maxInFlight)
			if cur <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&total, 1)
		w.Write([]byte(`{"zones": {"elements": []}, "tiles": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewWithSession(Config{BaseURL: srv.URL}, "240", "tok")

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.RefreshModule(context.Background(), "udid-1"); err != nil {
				t.Errorf("RefreshModule() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("max concurrent module fetches = %d, want 1 (refreshes must serialise)", got)
	}
	if got := atomic.LoadInt32(&total); got != callers {
		t.Errorf("total fetches = %d, want %d", got, callers)
	}
}

func TestRefreshModule_StampsLastUpdate(t *testing.T) {
	c := newTestClient(t, &moduleHandler{payload: `{"zones": {"elements": []}, "tiles": []}`})

	before := time.Now()
	state, err := c.RefreshModule(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("RefreshModule() error = %v", err)
	}

	if state.LastUpdate == nil {
		t.Fatal("snapshot LastUpdate = nil after refresh")
	}
	if state.LastUpdate.Before(before) {
		t.Errorf("LastUpdate = %v, want >= %v", state.LastUpdate, before)
	}

	got, ok := c.ModuleLastUpdate("udid-1")
	if !ok || !got.Equal(*state.LastUpdate) {
		t.Errorf("ModuleLastUpdate() = %v, %v; want %v, true", got, ok, state.LastUpdate)
	}
}

func TestRefreshModule_SnapshotIsACopy(t *testing.T) {
	c := newTestClient(t, &moduleHandler{payload: `{
		"zones": {"elements": [{"zone": {"id": 1, "zoneState": "zoneOn", "visibility": true}}]},
		"tiles": []
	}`})

	state, err := c.RefreshModule(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("RefreshModule() error = %v", err)
	}

	// Mutating the snapshot must not reach the cache.
	delete(state.Zones, 1)

	again, err := c.RefreshModule(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("RefreshModule() error = %v", err)
	}
	if _, ok := again.Zones[1]; !ok {
		t.Error("cache lost zone 1 after a snapshot mutation; snapshots must be copies")
	}
}

func TestRefreshModule_AuthErrorPropagates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))

	_, err := c.RefreshModule(context.Background(), "udid-1")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *AuthError to pass through unwrapped", err)
	}
}

func TestRefreshModule_WrapsGenericFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))

	_, err := c.RefreshModule(context.Background(), "udid-1")
	if err == nil {
		t.Fatal("RefreshModule() error = nil, want refresh failure")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want wrapped *APIError", err)
	}
	if !strings.Contains(err.Error(), "refreshing module udid-1") {
		t.Errorf("error %q does not describe the refresh", err)
	}
}
