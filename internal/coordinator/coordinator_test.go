package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/daroga0002/tech-controllers/internal/emodul"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/config"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/logging"
	"github.com/daroga0002/tech-controllers/internal/session"
)

// fakeClient scripts RefreshModule responses per call.
type fakeClient struct {
	mu        sync.Mutex
	responses []error
	calls     int
	authCalls int
	authErr   error
}

func (f *fakeClient) RefreshModule(_ context.Context, _ string) (emodul.ModuleState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.calls < len(f.responses) {
		err = f.responses[f.calls]
	}
	f.calls++
	if err != nil {
		return emodul.ModuleState{}, err
	}
	return emodul.ModuleState{Zones: map[int]emodul.Zone{101: {}}}, nil
}

func (f *fakeClient) Authenticate(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.authErr
}

func (f *fakeClient) UserID() string { return "240" }
func (f *fakeClient) Token() string  { return "fresh-token" }

func (f *fakeClient) refreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeClient) authenticateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls
}

// fakeSaver records saved sessions.
type fakeSaver struct {
	mu    sync.Mutex
	saved []*session.Session
}

func (f *fakeSaver) Save(_ context.Context, sess *session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, sess)
	return nil
}

// recordingListener captures notifications.
type recordingListener struct {
	mu      sync.Mutex
	updates []string
	errors  []error
}

func (r *recordingListener) OnModuleUpdate(_ context.Context, udid string, _ emodul.ModuleState) {
	r.mu.Lock()
	r.updates = append(r.updates, udid)
	r.mu.Unlock()
}

func (r *recordingListener) OnModuleError(_ context.Context, _ string, err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	r.mu.Unlock()
}

func (r *recordingListener) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *recordingListener) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "json"}, "test")
}

func testConfig() Config {
	return Config{
		Modules:  []Module{{UDID: "udid-1", Name: "Boiler"}},
		Interval: time.Hour,
		Username: "user@example.com",
		Password: "secret",
	}
}

func TestRefreshNotifiesListeners(t *testing.T) {
	client := &fakeClient{}
	listener := &recordingListener{}

	c := New(client, nil, testConfig(), testLogger())
	c.AddListener(listener)

	c.refreshAll(context.Background())

	if listener.updateCount() != 1 {
		t.Errorf("updates = %d, want 1", listener.updateCount())
	}
	if listener.errorCount() != 0 {
		t.Errorf("errors = %d, want 0", listener.errorCount())
	}
}

func TestExpiredSessionRecovers(t *testing.T) {
	authErr := &emodul.AuthError{Status: 401, Message: "expired"}
	client := &fakeClient{responses: []error{authErr, nil}}
	saver := &fakeSaver{}
	listener := &recordingListener{}

	c := New(client, saver, testConfig(), testLogger())
	c.AddListener(listener)

	c.refreshAll(context.Background())

	if client.authenticateCalls() != 1 {
		t.Errorf("Authenticate calls = %d, want 1", client.authenticateCalls())
	}
	if client.refreshCalls() != 2 {
		t.Errorf("RefreshModule calls = %d, want 2 (original + retry)", client.refreshCalls())
	}
	if listener.updateCount() != 1 {
		t.Errorf("updates = %d, want 1 after recovery", listener.updateCount())
	}

	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.saved) != 1 {
		t.Fatalf("saved sessions = %d, want 1", len(saver.saved))
	}
	if saver.saved[0].Token != "fresh-token" {
		t.Errorf("saved token = %q, want fresh-token", saver.saved[0].Token)
	}
	if saver.saved[0].UserID != "240" {
		t.Errorf("saved user id = %q, want 240", saver.saved[0].UserID)
	}
}

func TestReauthenticationFailure(t *testing.T) {
	authErr := &emodul.AuthError{Status: 401, Message: "expired"}
	client := &fakeClient{
		responses: []error{authErr},
		authErr:   errors.New("bad credentials"),
	}
	listener := &recordingListener{}

	c := New(client, nil, testConfig(), testLogger())
	c.AddListener(listener)

	c.refreshAll(context.Background())

	if listener.errorCount() != 1 {
		t.Fatalf("errors = %d, want 1", listener.errorCount())
	}
	if listener.updateCount() != 0 {
		t.Errorf("updates = %d, want 0", listener.updateCount())
	}
	// No retry after failed re-authentication
	if client.refreshCalls() != 1 {
		t.Errorf("RefreshModule calls = %d, want 1", client.refreshCalls())
	}
}

func TestGenericFailureDoesNotReauthenticate(t *testing.T) {
	client := &fakeClient{responses: []error{&emodul.APIError{Status: 500, Message: "boom"}}}
	listener := &recordingListener{}

	c := New(client, nil, testConfig(), testLogger())
	c.AddListener(listener)

	c.refreshAll(context.Background())

	if client.authenticateCalls() != 0 {
		t.Errorf("Authenticate calls = %d, want 0", client.authenticateCalls())
	}
	if listener.errorCount() != 1 {
		t.Errorf("errors = %d, want 1", listener.errorCount())
	}
}

func TestMultipleModules(t *testing.T) {
	client := &fakeClient{}
	listener := &recordingListener{}

	cfg := testConfig()
	cfg.Modules = []Module{{UDID: "udid-1"}, {UDID: "udid-2"}, {UDID: "udid-3"}}

	c := New(client, nil, cfg, testLogger())
	c.AddListener(listener)

	c.refreshAll(context.Background())

	if client.refreshCalls() != 3 {
		t.Errorf("RefreshModule calls = %d, want 3", client.refreshCalls())
	}
	if listener.updateCount() != 3 {
		t.Errorf("updates = %d, want 3", listener.updateCount())
	}
}

func TestStartAndClose(t *testing.T) {
	client := &fakeClient{}
	listener := &recordingListener{}

	cfg := testConfig()
	cfg.Interval = 20 * time.Millisecond

	c := New(client, nil, cfg, testLogger())
	c.AddListener(listener)

	c.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for listener.updateCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	c.Close()

	// At least the immediate round plus one tick
	if got := listener.updateCount(); got < 2 {
		t.Errorf("updates = %d, want >= 2", got)
	}

	after := client.refreshCalls()
	time.Sleep(50 * time.Millisecond)
	if got := client.refreshCalls(); got != after {
		t.Errorf("RefreshModule called after Close: %d -> %d", after, got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New(&fakeClient{}, nil, testConfig(), testLogger())
	c.Start(context.Background())
	c.Close()
	c.Close()
}
