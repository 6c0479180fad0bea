package proxy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dslh/mcp-nexus/internal/config"
	"github.com/dslh/mcp-nexus/internal/logging"
)

const (
	// ClientName is the client name advertised to downstream servers
	ClientName = "nexus-mcp-client"

	// ClientVersion is the client version advertised to downstream servers
	ClientVersion = "0.0.1"
)

// State is the connection state of one configured server.
// Connected and Failed are terminal for the life of the process.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateFailed       State = "failed"
)

// ServerStatus records the outcome of connecting one configured server
type ServerStatus struct {
	Name    string
	State   State
	Version string
	Err     error
}

// Manager owns the registry of downstream sessions.
//
// The registry is written once by ConnectAll and read-only afterwards. The
// RWMutex keeps reads that race startup safe.
type Manager struct {
	mu sync.RWMutex

	dial   Dialer
	logger *zap.SugaredLogger
	impl   *mcp.Implementation

	order    []string
	sessions map[string]*Session

	statusOrder []string
	statuses    map[string]*ServerStatus

	initialized bool
	quiet       bool
}

// Option configures a Manager
type Option func(*Manager)

// WithDialer replaces the subprocess dialer, mostly for tests
func WithDialer(dial Dialer) Option {
	return func(m *Manager) {
		m.dial = dial
	}
}

// WithLogger sets the logger used to report connection progress
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithQuietMode suppresses informational connection logs, leaving warnings
// and errors
func WithQuietMode() Option {
	return func(m *Manager) {
		m.quiet = true
	}
}

// NewManager creates a new connection manager with an empty registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		dial:     CommandDialer,
		logger:   logging.Nop(),
		impl:     &mcp.Implementation{Name: ClientName, Version: ClientVersion},
		sessions: make(map[string]*Session),
		statuses: make(map[string]*ServerStatus),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.quiet {
		m.logger = m.logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	return m
}

// ConnectAll connects to every descriptor, one at a time and in order.
// Servers that fail to start or handshake are logged and skipped; the
// registry ends up holding whatever subset connected. Calls after the first
// are no-ops.
func (m *Manager) ConnectAll(ctx context.Context, descriptors []config.ServerDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		m.logger.Debug("Downstream servers already connected, skipping")
		return
	}
	defer func() { m.initialized = true }()

	for _, d := range descriptors {
		if _, seen := m.statuses[d.Name]; seen {
			m.logger.Warnw("Skipping duplicate server name", "server", d.Name)
			continue
		}

		status := &ServerStatus{Name: d.Name, State: StateDisconnected}
		m.statusOrder = append(m.statusOrder, d.Name)
		m.statuses[d.Name] = status

		status.State = StateConnecting
		session, err := m.connectServer(ctx, d)
		if err != nil {
			status.State = StateFailed
			status.Err = err
			m.logger.Errorw("Failed to connect to downstream server", "server", d.Name, "error", err)
			continue
		}

		status.State = StateConnected
		status.Version = session.Version
		m.order = append(m.order, d.Name)
		m.sessions[d.Name] = session

		m.logger.Infow("Connected to downstream server", "server", d.Name, "version", session.Version)
	}

	m.logger.Infof("Connected to %d of %d downstream servers", len(m.order), len(m.statusOrder))
}

// connectServer establishes a session with a single downstream server
func (m *Manager) connectServer(ctx context.Context, d config.ServerDescriptor) (*Session, error) {
	transport, err := m.dial(ctx, d)
	if err != nil {
		return nil, &ConnectError{Server: d.Name, Err: fmt.Errorf("failed to create transport: %w", err)}
	}

	client := mcp.NewClient(m.impl, nil)
	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, &ConnectError{Server: d.Name, Err: err}
	}

	version := UnknownVersion
	if res := cs.InitializeResult(); res != nil && res.ServerInfo != nil && res.ServerInfo.Version != "" {
		version = res.ServerInfo.Version
	}

	return &Session{
		Name:      d.Name,
		Version:   version,
		Client:    cs,
		transport: transport,
		closer:    cs,
	}, nil
}

// Lookup returns the session registered under name. The boolean is false
// when the server was never configured or failed to connect.
func (m *Manager) Lookup(name string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[name]
	return session, ok
}

// Sessions returns the connected sessions in configuration order
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.order))
	for _, name := range m.order {
		sessions = append(sessions, m.sessions[name])
	}
	return sessions
}

// Names returns the names of the connected servers in configuration order
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// Len returns the number of connected servers
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order)
}

// Initialized reports whether ConnectAll has run
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.initialized
}

// Status returns the connection outcome for a configured server
func (m *Manager) Status(name string) (ServerStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statuses[name]
	if !ok {
		return ServerStatus{}, false
	}
	return *status, true
}

// Statuses returns the connection outcome of every configured server in
// configuration order
func (m *Manager) Statuses() []ServerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ServerStatus, 0, len(m.statusOrder))
	for _, name := range m.statusOrder {
		statuses = append(statuses, *m.statuses[name])
	}
	return statuses
}

// Close closes every session. It is meant to be called once, when the
// process is shutting down.
func (m *Manager) Close() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, name := range m.order {
		if err := m.sessions[name].close(); err != nil {
			m.logger.Warnw("Error closing session", "server", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
