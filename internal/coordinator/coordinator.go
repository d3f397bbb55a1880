package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daroga0002/tech-controllers/internal/emodul"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/logging"
	"github.com/daroga0002/tech-controllers/internal/session"
)

// Client is the eMODUL API surface the coordinator drives.
// Satisfied by *emodul.Client.
type Client interface {
	RefreshModule(ctx context.Context, udid string) (emodul.ModuleState, error)
	Authenticate(ctx context.Context, username, password string) error
	UserID() string
	Token() string
}

// SessionSaver persists a re-authenticated session. Satisfied by
// *session.Store.
type SessionSaver interface {
	Save(ctx context.Context, sess *session.Session) error
}

// Listener receives module state after each successful refresh.
//
// Listeners run on the polling goroutine and should hand work off quickly.
type Listener interface {
	OnModuleUpdate(ctx context.Context, udid string, state emodul.ModuleState)
	OnModuleError(ctx context.Context, udid string, err error)
}

// Module identifies one controller under the coordinator's care.
type Module struct {
	UDID string
	Name string
}

// Config holds coordinator settings.
type Config struct {
	// Modules to poll each interval.
	Modules []Module

	// Interval between refresh rounds. Failed rounds are retried on the
	// next tick rather than with a separate backoff.
	Interval time.Duration

	// Username and Password used to re-authenticate when the stored
	// session expires mid-run.
	Username string
	Password string
}

// Coordinator polls the eMODUL cloud on a fixed interval and fans state out
// to listeners. When the session expires it re-authenticates with the
// configured credentials, persists the new session, and retries the refresh
// once before giving up until the next tick.
type Coordinator struct {
	client   Client
	sessions SessionSaver
	cfg      Config
	logger   *logging.Logger

	listeners  []Listener
	listenerMu sync.RWMutex

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New creates a coordinator. Call Start to begin polling.
func New(client Client, sessions SessionSaver, cfg Config, logger *logging.Logger) *Coordinator {
	return &Coordinator{
		client:   client,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger.With("component", "coordinator"),
		done:     make(chan struct{}),
	}
}

// AddListener registers a listener for module updates. Must be called
// before Start.
func (c *Coordinator) AddListener(l Listener) {
	c.listenerMu.Lock()
	c.listeners = append(c.listeners, l)
	c.listenerMu.Unlock()
}

// Start launches the polling loop. The first refresh round runs
// immediately so listeners see state without waiting a full interval.
func (c *Coordinator) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

// Close stops the polling loop and waits for an in-flight round to finish.
func (c *Coordinator) Close() {
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()

	c.refreshAll(ctx)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshAll(ctx)
		}
	}
}

// refreshAll runs one refresh round over every configured module.
func (c *Coordinator) refreshAll(ctx context.Context) {
	for _, m := range c.cfg.Modules {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		c.refreshModule(ctx, m)
	}
}

// refreshModule refreshes one module, recovering an expired session once.
func (c *Coordinator) refreshModule(ctx context.Context, m Module) {
	c.logger.Debug("refreshing module", "udid", m.UDID, "name", m.Name)

	state, err := c.client.RefreshModule(ctx, m.UDID)
	if emodul.IsAuthError(err) {
		c.logger.Warn("session expired, re-authenticating", "udid", m.UDID)

		if authErr := c.reauthenticate(ctx); authErr != nil {
			c.notifyError(ctx, m.UDID, authErr)
			return
		}
		state, err = c.client.RefreshModule(ctx, m.UDID)
	}
	if err != nil {
		c.logger.Error("module refresh failed", "udid", m.UDID, "error", err)
		c.notifyError(ctx, m.UDID, err)
		return
	}

	c.notifyUpdate(ctx, m.UDID, state)
}

// reauthenticate obtains a fresh session with the configured credentials
// and persists it.
func (c *Coordinator) reauthenticate(ctx context.Context) error {
	if err := c.client.Authenticate(ctx, c.cfg.Username, c.cfg.Password); err != nil {
		return fmt.Errorf("re-authenticating: %w", err)
	}

	if c.sessions != nil {
		sess := &session.Session{
			Username: c.cfg.Username,
			UserID:   c.client.UserID(),
			Token:    c.client.Token(),
		}
		if err := c.sessions.Save(ctx, sess); err != nil {
			// The in-memory session still works; persistence failure
			// only costs a re-authentication on the next restart.
			c.logger.Warn("persisting refreshed session failed", "error", err)
		}
	}

	c.logger.Info("re-authenticated", "user_id", c.client.UserID())
	return nil
}

func (c *Coordinator) notifyUpdate(ctx context.Context, udid string, state emodul.ModuleState) {
	c.listenerMu.RLock()
	defer c.listenerMu.RUnlock()
	for _, l := range c.listeners {
		l.OnModuleUpdate(ctx, udid, state)
	}
}

func (c *Coordinator) notifyError(ctx context.Context, udid string, err error) {
	c.listenerMu.RLock()
	defer c.listenerMu.RUnlock()
	for _, l := range c.listeners {
		l.OnModuleError(ctx, udid, err)
	}
}
